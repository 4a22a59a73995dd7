package payments

import (
	"context"
	"encoding/json"
	"errors"
	"huletfish/src/models"
	"huletfish/src/types"
	"log"
	"net/http"
)

// HandleWebhook verifies and applies a gateway callback. Redelivered events
// and events for unknown references are acknowledged without side effects.
func (s *Service) HandleWebhook(ctx context.Context, method types.PaymentMethod, payload []byte, header http.Header) (*WebhookNotification, error) {
	gw, err := s.gateway(method)
	if err != nil {
		return nil, err
	}
	n, err := gw.ParseWebhook(payload, header)
	if err != nil {
		if errors.Is(err, ErrSignatureInvalid) {
			log.Printf("[webhook] Rejected %s webhook: %s\n", method, err.Error())
		}
		return nil, err
	}
	if n.Outcome == OUTCOME_IGNORED || n.Reference == "" {
		log.Printf("[webhook] Ignoring %s event %s (%s)\n", method, n.EventType, n.EventID)
		return n, nil
	}

	var changed *models.Payment
	var event EventType
	err = s.store.Transaction(ctx, func(tx Store) error {
		now := s.now()
		record := &models.WebhookEvent{
			Gateway:   method,
			EventID:   n.EventID,
			EventType: n.EventType,
			Payload:   payloadObject(n.Payload),
		}
		fresh, err := tx.RecordWebhookEvent(ctx, record)
		if err != nil {
			return err
		}
		if !fresh {
			log.Printf("[webhook] Duplicate %s event %s skipped\n", method, n.EventID)
			return nil
		}
		p, err := tx.FindPaymentByGatewayRef(ctx, method, n.Reference)
		if errors.Is(err, ErrNotFound) {
			log.Printf("[webhook] No payment for %s reference %s\n", method, n.Reference)
			msg := "no payment for reference " + n.Reference
			record.ProcessedAt = &now
			record.ProcessingError = &msg
			return tx.SaveWebhookEvent(ctx, record)
		} else if err != nil {
			return err
		}
		event, err = s.applyOutcome(ctx, tx, p, n.GatewayStatus, &models.WebhookEntry{
			Gateway:    method,
			EventID:    n.EventID,
			EventType:  n.EventType,
			Data:       n.Payload,
			ReceivedAt: now,
		})
		if err != nil {
			return err
		}
		record.PaymentID = p.PaymentID
		record.ProcessedAt = &now
		if err := tx.SaveWebhookEvent(ctx, record); err != nil {
			return err
		}
		changed = p
		return nil
	})
	if err != nil {
		log.Printf("[webhook] Error applying %s event %s: %s\n", method, n.EventID, err.Error())
		return nil, err
	}
	if changed != nil && event != "" {
		s.publish(ctx, event, changed)
	}
	return n, nil
}

// Verify asks the gateway for the current state of an unsettled payment and
// applies it. Settled payments are returned as stored.
func (s *Service) Verify(ctx context.Context, paymentID string, userID uint, isAdmin bool) (*models.Payment, error) {
	p, err := s.GetPayment(ctx, paymentID, userID, isAdmin)
	if err != nil {
		return nil, err
	}
	if !unsettled(p) || p.GatewayRef == nil {
		return p, nil
	}
	return s.reconcile(ctx, p)
}

func (s *Service) reconcile(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	gw, err := s.gateway(p.PaymentGateway)
	if err != nil {
		return nil, err
	}
	st, err := gw.Verify(ctx, *p.GatewayRef)
	if err != nil {
		return nil, err
	}
	return s.applyStatus(ctx, p.PaymentID, *st)
}

func (s *Service) applyStatus(ctx context.Context, paymentID string, st GatewayStatus) (*models.Payment, error) {
	var updated *models.Payment
	var event EventType
	err := s.store.Transaction(ctx, func(tx Store) error {
		p, err := tx.FindPayment(ctx, paymentID)
		if err != nil {
			return err
		}
		event, err = s.applyOutcome(ctx, tx, p, st, nil)
		updated = p
		return err
	})
	if err != nil {
		return nil, err
	}
	if event != "" {
		s.publish(ctx, event, updated)
	}
	return updated, nil
}

// applyOutcome moves p according to the gateway status. Settled payments
// never move backwards; a success against a failed payment only revives it
// while the booking has no other active payment.
func (s *Service) applyOutcome(ctx context.Context, tx Store, p *models.Payment, st GatewayStatus, entry *models.WebhookEntry) (EventType, error) {
	if entry != nil {
		p.WebhookEvents = append(p.WebhookEvents, *entry)
	}
	details := p.GatewayDetails.WithProviderReference(st.ProviderRef)
	now := s.now()

	switch st.Outcome {
	case OUTCOME_SUCCEEDED:
		switch p.Status {
		case types.PAYMENT_PENDING, types.PAYMENT_PROCESSING:
		case types.PAYMENT_FAILED:
			other, err := tx.FindActivePayment(ctx, p.BookingID)
			if err == nil && other.ID != p.ID {
				log.Printf("[payments] %s captured after being superseded by %s, needs manual refund\n", p.PaymentID, other.PaymentID)
				p.GatewayDetails = details.WithStatus(st.Status, "captured after being superseded by "+other.PaymentID)
				return "", tx.SavePayment(ctx, p)
			}
			if err != nil && !errors.Is(err, ErrNotFound) {
				return "", err
			}
		default:
			return "", s.saveIfLogged(ctx, tx, p, entry)
		}
		p.Status = types.PAYMENT_COMPLETED
		p.CompletedAt = &now
		p.FailedAt = nil
		p.GatewayDetails = details.WithStatus(st.Status, st.Message)
		if err := tx.SavePayment(ctx, p); err != nil {
			return "", err
		}
		if err := tx.UpdateBookingStatus(ctx, p.BookingID, types.BOOKING_CONFIRMED, types.BOOKING_PAYMENT_PAID); err != nil {
			return "", err
		}
		return EVENT_COMPLETED, nil

	case OUTCOME_FAILED:
		if !unsettled(p) {
			return "", s.saveIfLogged(ctx, tx, p, entry)
		}
		p.Status = types.PAYMENT_FAILED
		p.FailedAt = &now
		p.GatewayDetails = details.WithStatus(st.Status, st.Message)
		if err := tx.SavePayment(ctx, p); err != nil {
			return "", err
		}
		return EVENT_FAILED, nil
	}

	if unsettled(p) {
		p.Status = types.PAYMENT_PROCESSING
		p.GatewayDetails = details.WithStatus(st.Status, st.Message)
	}
	return "", tx.SavePayment(ctx, p)
}

func (s *Service) saveIfLogged(ctx context.Context, tx Store, p *models.Payment, entry *models.WebhookEntry) error {
	if entry == nil {
		return nil
	}
	return tx.SavePayment(ctx, p)
}

func unsettled(p *models.Payment) bool {
	return p.Status == types.PAYMENT_PENDING || p.Status == types.PAYMENT_PROCESSING
}

func payloadObject(payload []byte) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil
	}
	return obj
}
