package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sentinel-sec/storefront/internal/domain/basket"
	"github.com/sentinel-sec/storefront/internal/domain/order"
)

// Status tracks a submission attempt through its lifecycle:
// Idle -> Validating -> (Rejected | Submitting) -> (Persisted | Failed).
type Status int

const (
	StatusIdle Status = iota
	StatusValidating
	StatusRejected
	StatusSubmitting
	StatusPersisted
	StatusFailed
)

var (
	// ErrAuthRequired means the caller must redirect to sign-in; nothing was
	// submitted.
	ErrAuthRequired = errors.New("sign in required to complete purchase")
	// ErrEmptyBasket aborts a submission over a basket with no line items.
	ErrEmptyBasket = errors.New("basket is empty")
	// ErrSubmissionInFlight is returned while a previous submission for the
	// same session has not resolved yet.
	ErrSubmissionInFlight = errors.New("submission already in progress")
)

// PersistError wraps an order write failure. The basket is left intact so the
// attempt can be retried.
type PersistError struct {
	Err error
}

func (e *PersistError) Error() string {
	return "persist order: " + e.Err.Error()
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Service runs checkout submissions against the basket manager and the order
// repository.
type Service struct {
	baskets *basket.Manager
	orders  order.Repository
	now     func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewService creates a checkout Service.
func NewService(baskets *basket.Manager, orders order.Repository) *Service {
	return &Service{
		baskets:  baskets,
		orders:   orders,
		now:      time.Now,
		inFlight: make(map[string]struct{}),
	}
}

// Request is one submission attempt. UserID is empty when the caller holds no
// authenticated identity.
type Request struct {
	Session string
	UserID  string
	Payment PaymentDetails
}

// Result reports where the attempt ended up. Order is set only on
// StatusPersisted.
type Result struct {
	Status Status
	Order  *order.Order
}

// Submit runs one checkout attempt to completion.
//
// Submissions for a session are mutually exclusive: while one is unresolved,
// further attempts return ErrSubmissionInFlight with no side effect. Rejected
// validation, missing identity, and an empty basket all abort before any
// write. On a persistence failure the basket and discount are preserved for
// retry; only a successful write clears them.
func (s *Service) Submit(ctx context.Context, req Request) (*Result, error) {
	if !s.begin(req.Session) {
		return &Result{Status: StatusSubmitting}, ErrSubmissionInFlight
	}
	defer s.end(req.Session)

	if err := req.Payment.Validate(); err != nil {
		return &Result{Status: StatusRejected}, err
	}

	if req.UserID == "" {
		return &Result{Status: StatusRejected}, ErrAuthRequired
	}

	b, err := s.baskets.Load(ctx, req.Session)
	if err != nil {
		return &Result{Status: StatusFailed}, errors.Wrap(err, "load basket")
	}
	if b.Empty() {
		return &Result{Status: StatusRejected}, ErrEmptyBasket
	}

	discount, err := s.baskets.Discount(ctx, req.Session)
	if err != nil {
		return &Result{Status: StatusFailed}, errors.Wrap(err, "load discount")
	}

	total := basket.DiscountedTotal(basket.Total(b.Items), discount).Round(2)

	o := &order.Order{
		ID:        uuid.New().String(),
		UserID:    req.UserID,
		Items:     b.Items,
		Total:     total,
		Discount:  discount,
		CreatedAt: s.now(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return &Result{Status: StatusFailed}, &PersistError{Err: err}
	}

	// The order exists; a failed cleanup must not fail the purchase. The
	// expiry policy reaps a leftover basket on its own, but until then it is
	// open to a repeat purchase, so the failure is logged.
	if err := s.baskets.Clear(ctx, req.Session); err != nil {
		zctx.From(ctx).Warn("basket clear after checkout failed",
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}

	return &Result{Status: StatusPersisted, Order: o}, nil
}

func (s *Service) begin(session string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[session]; busy {
		return false
	}
	s.inFlight[session] = struct{}{}
	return true
}

func (s *Service) end(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, session)
}
