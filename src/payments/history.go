package payments

import (
	"context"
	"huletfish/src/models"
	"huletfish/src/types"
)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

type HistoryQuery struct {
	Page   int
	Limit  int
	Status string
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

type HistoryPage struct {
	Payments   []models.Payment `json:"payments"`
	Pagination Pagination       `json:"pagination"`
}

func (s *Service) History(ctx context.Context, userID uint, q HistoryQuery) (*HistoryPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = defaultHistoryLimit
	}
	if q.Limit > maxHistoryLimit {
		q.Limit = maxHistoryLimit
	}
	if q.Status != "" && !types.PaymentStatus(q.Status).Valid() {
		return nil, validationError("unknown payment status %q", q.Status)
	}
	payments, total, err := s.store.ListPayments(ctx, userID, q.Status, q.Page, q.Limit)
	if err != nil {
		return nil, err
	}
	limit := int64(q.Limit)
	return &HistoryPage{
		Payments: payments,
		Pagination: Pagination{
			Page:  q.Page,
			Limit: q.Limit,
			Total: total,
			Pages: (total + limit - 1) / limit,
		},
	}, nil
}
