package payments

import (
	"context"
	"huletfish/src/types"
	"log"
	"time"
)

const (
	StaleCheckoutAge   = 30 * time.Minute
	CheckoutExpiration = 24 * time.Hour
	sweepBatchSize     = 100
)

type SweepResult struct {
	Checked   int `json:"checked"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Expired   int `json:"expired"`
}

// ExpireStalePayments re-verifies checkouts that have been unsettled for a
// while and fails the ones older than CheckoutExpiration that the gateway
// still reports as open. Webhooks that never arrive end up here.
func (s *Service) ExpireStalePayments(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	now := s.now()
	stale, err := s.store.ListStalePayments(ctx, now.Add(-StaleCheckoutAge), sweepBatchSize)
	if err != nil {
		return res, err
	}
	for i := range stale {
		p := &stale[i]
		res.Checked++
		expired := now.Sub(p.CreatedAt) >= CheckoutExpiration
		if p.GatewayRef != nil {
			updated, err := s.reconcile(ctx, p)
			if err != nil {
				log.Printf("[sweeper] Error verifying %s: %s\n", p.PaymentID, err.Error())
				if !expired {
					continue
				}
			} else {
				switch updated.Status {
				case types.PAYMENT_COMPLETED:
					res.Completed++
					continue
				case types.PAYMENT_FAILED:
					res.Failed++
					continue
				}
			}
		}
		if !expired {
			continue
		}
		if _, err := s.applyStatus(ctx, p.PaymentID, GatewayStatus{
			Outcome: OUTCOME_FAILED,
			Status:  "expired",
			Message: "checkout expired",
		}); err != nil {
			log.Printf("[sweeper] Error expiring %s: %s\n", p.PaymentID, err.Error())
			continue
		}
		res.Expired++
	}
	if res.Checked > 0 {
		log.Printf("[sweeper] checked=%d completed=%d failed=%d expired=%d\n", res.Checked, res.Completed, res.Failed, res.Expired)
	}
	return res, nil
}
