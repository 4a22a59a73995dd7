package payments

import (
	"context"
	"huletfish/src/models"
	"huletfish/src/types"
	"log"
	"time"
)

type Options struct {
	Locker           Locker
	Publisher        Publisher
	Fees             *FeeSchedule
	DefaultReturnURL string
	Now              func() time.Time
}

// Service coordinates checkout, reconciliation and refunds across gateways.
type Service struct {
	store            Store
	converter        *Converter
	gateways         map[types.PaymentMethod]Gateway
	fees             FeeSchedule
	locker           Locker
	publisher        Publisher
	defaultReturnURL string
	now              func() time.Time
}

func NewService(store Store, converter *Converter, gateways []Gateway, opts Options) *Service {
	s := &Service{
		store:            store,
		converter:        converter,
		gateways:         make(map[types.PaymentMethod]Gateway, len(gateways)),
		fees:             DefaultFeeSchedule(),
		locker:           opts.Locker,
		publisher:        opts.Publisher,
		defaultReturnURL: opts.DefaultReturnURL,
		now:              opts.Now,
	}
	for _, g := range gateways {
		s.gateways[g.Name()] = g
	}
	if opts.Fees != nil {
		s.fees = *opts.Fees
	}
	if s.locker == nil {
		s.locker = nopLocker{}
	}
	if s.publisher == nil {
		s.publisher = nopPublisher{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *Service) gateway(method types.PaymentMethod) (Gateway, error) {
	g, ok := s.gateways[method]
	if !ok {
		return nil, validationError("unsupported payment method %q", method)
	}
	return g, nil
}

// GetPayment returns the payment if userID owns it or isAdmin is set.
func (s *Service) GetPayment(ctx context.Context, paymentID string, userID uint, isAdmin bool) (*models.Payment, error) {
	p, err := s.store.FindPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && !p.OwnedBy(userID) {
		return nil, ErrNotFound
	}
	return p, nil
}

// publish runs after commit; a lost event never rolls back a payment.
func (s *Service) publish(ctx context.Context, t EventType, p *models.Payment) {
	if err := s.publisher.Publish(ctx, eventFor(t, p, s.now())); err != nil {
		log.Printf("[payments] Error publishing %s for %s: %s\n", t, p.PaymentID, err.Error())
	}
}
