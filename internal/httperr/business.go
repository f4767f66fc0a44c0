package httperr

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Kind classifies a business failure so handlers can pick the right
// HTTP status and callers can distinguish policy rejections from data
// conflicts.
type Kind int

const (
	// KindValidation: malformed input, rejected before any lock is taken.
	KindValidation Kind = iota
	// KindConflict: only detectable inside the locked transaction
	// (slot taken, capacity full, coverage already resolved).
	KindConflict
	// KindPolicy: business rule such as a late-cancellation cutoff.
	KindPolicy
	// KindUnavailable: transaction machinery gave up after retries.
	KindUnavailable
)

type BusinessError struct {
	Code string
	Kind Kind
}

func (e BusinessError) Error() string {
	return e.Code
}

func ErrValidation(code string) error {
	return BusinessError{Code: code, Kind: KindValidation}
}

func ErrConflict(code string) error {
	return BusinessError{Code: code, Kind: KindConflict}
}

func ErrPolicy(code string) error {
	return BusinessError{Code: code, Kind: KindPolicy}
}

func ErrUnavailable(code string) error {
	return BusinessError{Code: code, Kind: KindUnavailable}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func KindOf(err error) (Kind, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return 0, false
}

// IsExclusionConflict reports whether err is a Postgres unique or
// exclusion constraint violation. The partial unique index on
// (coach_id, start_time) is the last line of defense against
// lost-update races, and its violation surfaces here.
func IsExclusionConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" || pgErr.Code == "23P01"
	}
	return false
}

// IsRetryableTx reports whether err is a transient transaction failure
// (serialization failure, deadlock, lock timeout) worth retrying.
func IsRetryableTx(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return true
		}
	}
	return false
}
