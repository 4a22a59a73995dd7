package lib

import (
	"log"
	"os"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

// GetStripeClient reads STRIPE_SECRET_KEY lazily so secrets pulled at boot are picked up.
func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	apiKey := os.Getenv("STRIPE_SECRET_KEY")
	if apiKey == "" {
		log.Println("[Stripe] STRIPE_SECRET_KEY is empty, card checkouts will be rejected")
	}
	stripe.SetAppInfo(&stripe.AppInfo{
		Name: "huletfish-payments",
		URL:  os.Getenv("BACKEND_URL"),
	})
	stripeClient = stripe.NewClient(apiKey)
	return stripeClient
}

func NewStripeClient(c *stripe.Client) {
	stripeClient = c
}
