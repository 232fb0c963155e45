package services

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"footballshop/internal/models"
	"footballshop/pkg/rabbitmq"
)

// ReturnState is the state of one payment-return reconciliation.
type ReturnState string

const (
	// StateLoading is the initial state before Run has decided anything.
	StateLoading ReturnState = "loading"
	// StateAwaitingStatus is terminal: the gateway reported a rejected or
	// cancelled payment, so there is nothing to reconcile.
	StateAwaitingStatus ReturnState = "awaiting_status"
	// StateFetchingOrder means the order lookup is in flight.
	StateFetchingOrder ReturnState = "fetching_order"
	// StateError is terminal: the order id was missing or the lookup failed.
	StateError ReturnState = "error"
	// StateReceipt is terminal: the settled order was loaded for display.
	StateReceipt ReturnState = "receipt"
)

// OrderFetcher is the part of the shop API the reconciler needs.
type OrderFetcher interface {
	GetOrder(ctx context.Context, orderID string) (*models.Order, error)
}

// PaymentEventPublisher publishes confirmation events for reconciled
// receipts. A nil publisher disables publishing.
type PaymentEventPublisher interface {
	PublishPaymentConfirmed(event rabbitmq.PaymentConfirmed) error
}

// ReturnReconciler interprets the payment gateway's return navigation.
// One reconciler is constructed per return; it clears the cart at most
// once on a success status regardless of how many times Run is invoked,
// fetches the authoritative order for display, and runs a countdown
// that navigates back to the storefront when it reaches zero.
type ReturnReconciler struct {
	cart     *CartService
	orders   OrderFetcher
	events   PaymentEventPublisher
	navigate func()

	clearOnce sync.Once
	navOnce   sync.Once
	stopOnce  sync.Once
	stop      chan struct{}

	mu      sync.Mutex
	state   ReturnState
	errMsg  string
	order   *models.Order
	seconds int
}

// NewReturnReconciler creates a reconciler and starts its countdown.
// navigate is invoked at most once in total, either when the countdown
// reaches zero or on an explicit GoHome. Callers must Close the
// reconciler when it is no longer displayed so the timer is released.
func NewReturnReconciler(cart *CartService, orders OrderFetcher, events PaymentEventPublisher, navigate func(), countdownSeconds int) *ReturnReconciler {
	r := &ReturnReconciler{
		cart:     cart,
		orders:   orders,
		events:   events,
		navigate: navigate,
		stop:     make(chan struct{}),
		state:    StateLoading,
		seconds:  countdownSeconds,
	}
	go r.countdown()
	return r
}

// Run reconciles the return navigation's status signal and order id.
//
// Clearing the cart is keyed to the success status alone and guarded to
// happen at most once per reconciler, so a repeated Run cannot clear a
// cart the user has since started refilling. The order lookup never
// retries: by the time the user is back here the payment has already
// been decided externally, so a failed lookup is terminal and the user
// gets the return-to-store action instead.
func (r *ReturnReconciler) Run(ctx context.Context, status, orderID string) ReturnState {
	if status == models.OrderStatusSuccess {
		r.clearOnce.Do(r.cart.Clear)
	}

	if status != models.OrderStatusSuccess {
		return r.setState(StateAwaitingStatus)
	}

	if orderID == "" {
		return r.fail("no order id in return navigation")
	}

	r.setState(StateFetchingOrder)
	order, err := r.orders.GetOrder(ctx, orderID)
	if err != nil {
		return r.fail(err.Error())
	}

	r.mu.Lock()
	r.order = order
	r.state = StateReceipt
	r.mu.Unlock()

	r.publishConfirmed(order)
	return StateReceipt
}

// State returns the current reconciliation state.
func (r *ReturnReconciler) State() ReturnState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Order returns the fetched order, or nil before StateReceipt.
func (r *ReturnReconciler) Order() *models.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.order
}

// ErrorMessage returns the diagnostic message for StateError.
func (r *ReturnReconciler) ErrorMessage() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errMsg
}

// SecondsLeft returns the countdown's remaining seconds.
func (r *ReturnReconciler) SecondsLeft() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seconds
}

// GoHome navigates back to the storefront immediately. The countdown is
// released so it cannot trigger a second navigation later.
func (r *ReturnReconciler) GoHome() {
	r.Close()
	if r.navigate != nil {
		r.navOnce.Do(r.navigate)
	}
}

// Close releases the countdown timer. It is safe to call multiple times
// and must run on every exit path so no navigation fires after the
// reconciler is gone.
func (r *ReturnReconciler) Close() {
	r.stopOnce.Do(func() {
		close(r.stop)
	})
}

func (r *ReturnReconciler) countdown() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.mu.Lock()
			r.seconds--
			expired := r.seconds <= 0
			r.mu.Unlock()

			if expired {
				if r.navigate != nil {
					r.navOnce.Do(r.navigate)
				}
				return
			}
		}
	}
}

func (r *ReturnReconciler) setState(state ReturnState) ReturnState {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = state
	return state
}

func (r *ReturnReconciler) fail(msg string) ReturnState {
	log.Printf("Return reconciliation failed: %s", msg)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = StateError
	r.errMsg = msg
	return StateError
}

// publishConfirmed emits a payment confirmation event for downstream
// consumers. Publishing is best effort and never affects the receipt.
func (r *ReturnReconciler) publishConfirmed(order *models.Order) {
	if r.events == nil {
		return
	}
	event := rabbitmq.PaymentConfirmed{
		EventID:     uuid.New().String(),
		OrderID:     order.ID,
		ReceiptCode: order.ReceiptCode,
		Total:       order.Total,
		Status:      order.Status,
	}
	if err := r.events.PublishPaymentConfirmed(event); err != nil {
		log.Printf("Warning: failed to publish payment confirmed event for order %s: %v", order.ID, err)
	} else {
		log.Printf("Successfully published payment confirmed event for order %s", order.ID)
	}
}
