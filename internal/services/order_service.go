package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"backoffice/internal/domain"
	"backoffice/internal/repos"

	"github.com/google/uuid"
)

var ErrIllegalTransition = errors.New("illegal status transition")

// Forward moves follow the fulfilment chain; cancelled and refunded
// branch off every non-terminal state and accept no further moves.
var transitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.StatusPending:         {domain.StatusAwaitingPayment, domain.StatusConfirmed, domain.StatusCancelled, domain.StatusRefunded},
	domain.StatusAwaitingPayment: {domain.StatusConfirmed, domain.StatusCancelled, domain.StatusRefunded},
	domain.StatusConfirmed:       {domain.StatusProcessing, domain.StatusCancelled, domain.StatusRefunded},
	domain.StatusProcessing:      {domain.StatusShipped, domain.StatusCancelled, domain.StatusRefunded},
	domain.StatusShipped:         {domain.StatusDelivered, domain.StatusCancelled, domain.StatusRefunded},
	domain.StatusDelivered:       {domain.StatusCancelled, domain.StatusRefunded},
	domain.StatusCancelled:       {},
	domain.StatusRefunded:        {},
}

func canTransition(from, to domain.OrderStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// OrderService owns all post-creation order mutation. It is the only
// writer of status, is_paid and paid_at; every write appends a history
// row in the same transaction.
type OrderService struct {
	Orders *repos.OrderRepo
}

func NewOrderService(orders *repos.OrderRepo) *OrderService {
	return &OrderService{Orders: orders}
}

func historyPayload(oldV, newV any) string {
	b, _ := json.Marshal(map[string]any{"old_value": oldV, "new_value": newV})
	return string(b)
}

// UpdateStatus moves the order to a new status if the transition table
// allows it, recording status_changed with the old and new values.
func (s *OrderService) UpdateStatus(orderID string, to domain.OrderStatus, actor string) error {
	if !to.Valid() {
		return ErrIllegalTransition
	}
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return err
	}
	if !canTransition(o.Status, to) {
		return ErrIllegalTransition
	}

	h := domain.OrderHistory{
		ID:      uuid.NewString(),
		OrderID: orderID,
		Actor:   actor,
		Action:  domain.ActionStatusChanged,
		Payload: historyPayload(string(o.Status), string(to)),
	}
	return s.Orders.UpdateStatus(orderID, to, h)
}

// MarkAsPaid sets the payment sub-state. Returns false without writing
// anything when the order is already paid, so retried requests stay
// safe.
func (s *OrderService) MarkAsPaid(orderID, actor string) (bool, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return false, err
	}
	if o.IsPaid {
		return false, nil
	}

	paidAt := time.Now().UTC().Format(time.RFC3339)
	h := domain.OrderHistory{
		ID:      uuid.NewString(),
		OrderID: orderID,
		Actor:   actor,
		Action:  domain.ActionPaymentReceived,
		Payload: historyPayload(false, true),
	}
	return s.Orders.SetPaid(orderID, true, paidAt, h)
}

// MarkAsUnpaid reverses a recorded payment. No-op (false) if the order
// was not paid.
func (s *OrderService) MarkAsUnpaid(orderID, actor string) (bool, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return false, err
	}
	if !o.IsPaid {
		return false, nil
	}

	h := domain.OrderHistory{
		ID:      uuid.NewString(),
		OrderID: orderID,
		Actor:   actor,
		Action:  domain.ActionPaymentReversed,
		Payload: historyPayload(true, false),
	}
	return s.Orders.SetPaid(orderID, false, "", h)
}

// Cancel moves the order to cancelled and records order_cancelled.
func (s *OrderService) Cancel(orderID, actor, note string) error {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return err
	}
	if !canTransition(o.Status, domain.StatusCancelled) {
		return ErrIllegalTransition
	}

	h := domain.OrderHistory{
		ID:      uuid.NewString(),
		OrderID: orderID,
		Actor:   actor,
		Action:  domain.ActionOrderCancelled,
		Payload: historyPayload(string(o.Status), string(domain.StatusCancelled)),
		Note:    note,
	}
	return s.Orders.UpdateStatus(orderID, domain.StatusCancelled, h)
}

// IsCancelled derives cancellation from either signal: the status
// column or the presence of an order_cancelled history row. The
// history log is the source of truth; there is no cancelled_at column.
func (s *OrderService) IsCancelled(orderID string) (bool, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return false, err
	}
	if o.Status == domain.StatusCancelled {
		return true, nil
	}
	_, err = s.Orders.LatestHistory(orderID, domain.ActionOrderCancelled)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CancelledAt reads the timestamp of the newest order_cancelled
// history row. Empty when the order was never cancelled.
func (s *OrderService) CancelledAt(orderID string) (string, error) {
	h, err := s.Orders.LatestHistory(orderID, domain.ActionOrderCancelled)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return h.CreatedAt, nil
}
