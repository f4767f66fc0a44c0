package payments

import (
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"github.com/Danger0101/coaching-scheduler/internal/models"
)

// CheckoutProvider is the payment boundary: the engine creates holds,
// the provider turns them into a payment flow. Capture and webhooks
// stay outside this service.
type CheckoutProvider interface {
	CreateCheckout(b *models.Booking, productName string, amountCents int64, email string) (string, string, error)
}

// StripeCheckout creates a Stripe checkout session for a priced
// workshop hold. Returns the session id and the redirect URL.
type StripeCheckout struct {
	siteURL string
}

func NewStripeCheckout(secretKey, siteURL string) *StripeCheckout {
	stripe.Key = secretKey
	return &StripeCheckout{siteURL: siteURL}
}

func (s *StripeCheckout) CreateCheckout(
	b *models.Booking,
	productName string,
	amountCents int64,
	email string,
) (string, string, error) {

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{
			"card",
		}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String("usd"),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(productName),
					},
					UnitAmount: stripe.Int64(amountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(fmt.Sprintf("%s/booking/verify-payment/%d/", s.siteURL, b.ID)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/booking/cancel-payment/%d/", s.siteURL, b.ID)),
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	params.AddMetadata("booking_reference", b.Reference)

	sess, err := session.New(params)
	if err != nil {
		return "", "", err
	}
	return sess.ID, sess.URL, nil
}
