package schedule

import "time"

// Slots walks each open interval at the step granularity and emits the
// candidate start instants of a session of the given length. A start
// is emitted only when the whole session fits before the interval end
// and does not overlap anything in the occupied set.
//
// The generator is pure: past-dated candidates are excluded at the
// caller boundary, not here.
func Slots(open []TimeRange, occupied []TimeRange, length, step time.Duration) []time.Time {
	if length <= 0 || step <= 0 {
		return nil
	}

	var starts []time.Time
	for _, window := range open {
		for cur := window.Start; !cur.Add(length).After(window.End); cur = cur.Add(step) {
			candidate := TimeRange{Start: cur, End: cur.Add(length)}
			if OverlapsAny(candidate, occupied) {
				continue
			}
			starts = append(starts, cur)
		}
	}
	return starts
}
