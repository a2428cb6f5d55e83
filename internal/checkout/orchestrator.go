// Package checkout drives the order placement flow: address validation,
// order creation, payment initialization, the gateway redirect, and the
// verification that runs when the gateway sends the user back.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/miku-nicol/klassyz-hair-client/internal/api"
	"github.com/miku-nicol/klassyz-hair-client/internal/domain"
	"github.com/miku-nicol/klassyz-hair-client/internal/storage"
	apperrors "github.com/miku-nicol/klassyz-hair-client/pkg/errors"
	"github.com/miku-nicol/klassyz-hair-client/pkg/logger"
	"github.com/miku-nicol/klassyz-hair-client/pkg/validator"
)

// State names a position in the checkout flow. Transitions are strictly
// forward; a failed attempt returns to idle so it can be retried.
type State string

const (
	StateIdle                State = "idle"
	StateValidatingAddress   State = "validating_address"
	StateCreatingOrder       State = "creating_order"
	StateInitializingPayment State = "initializing_payment"
	StateRedirecting         State = "redirecting"
	StateVerifyingPayment    State = "verifying_payment"
	StateSettled             State = "settled"
	StateFailed              State = "failed"
)

// API is the slice of the backend client checkout needs.
type API interface {
	GetShippingRates(ctx context.Context) ([]domain.ShippingRate, error)
	CreateOrder(ctx context.Context, input api.CreateOrderInput) (*domain.Order, error)
	InitializePayment(ctx context.Context, orderID string) (string, error)
	ConfirmPayment(ctx context.Context, orderID, reference string) error
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
}

// Navigator receives the destinations the flow steers the user to. The
// orchestrator never renders anything itself.
type Navigator interface {
	ToCart()
	ToReceipt(orderID string)
	ToGateway(authorizationURL string)
}

// SubmitInput is everything Submit needs to place an order.
type SubmitInput struct {
	Address       domain.Address
	ShippingRate  *domain.ShippingRate
	PaymentMethod string
	OrderNote     string
}

// Orchestrator runs the checkout state machine. The order identifier is
// persisted only between payment initialization and verification; both
// terminal outcomes remove it so a later session cannot resume against a
// settled or abandoned order.
type Orchestrator struct {
	api     API
	storage storage.Store
	nav     Navigator
	logger  *slog.Logger

	mu    sync.Mutex
	state State
}

// New creates an orchestrator in the idle state.
func New(backend API, store storage.Store, nav Navigator, log *slog.Logger) *Orchestrator {
	return &Orchestrator{api: backend, storage: store, nav: nav, logger: log, state: StateIdle}
}

// State returns the current flow position.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// ShippingRates fetches the server's rate table for the address form.
func (o *Orchestrator) ShippingRates(ctx context.Context) ([]domain.ShippingRate, error) {
	return o.api.GetShippingRates(ctx)
}

// RateForState finds the rate table row matching a state name,
// case-insensitively.
func RateForState(rates []domain.ShippingRate, state string) (*domain.ShippingRate, bool) {
	for i := range rates {
		if strings.EqualFold(rates[i].State, state) {
			return &rates[i], true
		}
	}
	return nil, false
}

// Submit validates the input, creates the order, initializes payment and
// hands the user to the gateway. No payment call is made before an order
// identifier exists, and the identifier is persisted only once the
// gateway URL is in hand. Any failure returns the flow to idle with
// nothing persisted, so the attempt can simply be retried.
func (o *Orchestrator) Submit(ctx context.Context, input SubmitInput) error {
	log := logger.WithContext(ctx, o.logger)

	o.setState(StateValidatingAddress)
	if err := o.validate(input); err != nil {
		o.setState(StateIdle)
		return err
	}

	o.setState(StateCreatingOrder)
	order, err := o.api.CreateOrder(ctx, api.CreateOrderInput{
		ShippingAddress: input.Address,
		PaymentMethod:   input.PaymentMethod,
		OrderNote:       input.OrderNote,
	})
	if err != nil {
		o.setState(StateIdle)
		return err
	}
	log.InfoContext(ctx, "order created", slog.String("order_id", order.ID))

	o.setState(StateInitializingPayment)
	gatewayURL, err := o.api.InitializePayment(ctx, order.ID)
	if err != nil {
		o.setState(StateIdle)
		return err
	}

	// Persist the identifier before leaving the process; verification
	// after the redirect depends on finding it again.
	if err := o.storage.Set(storage.KeyCurrentOrder, order.ID); err != nil {
		o.setState(StateIdle)
		return apperrors.Wrap(err, "persist order id")
	}

	o.setState(StateRedirecting)
	log.InfoContext(ctx, "redirecting to payment gateway", slog.String("order_id", order.ID))
	o.nav.ToGateway(gatewayURL)
	return nil
}

func (o *Orchestrator) validate(input SubmitInput) error {
	if err := validator.Validate(input.Address); err != nil {
		var verr *validator.ValidationError
		if errors.As(err, &verr) {
			return apperrors.Validation("shipping address is incomplete", verr.Fields())
		}
		return err
	}
	if input.ShippingRate == nil {
		return apperrors.Validation("no shipping rate selected", map[string]string{
			"shippingRate": "select a delivery state before placing the order",
		})
	}
	if input.PaymentMethod == "" {
		return apperrors.Validation("no payment method selected", map[string]string{
			"paymentMethod": "a payment method is required",
		})
	}
	return nil
}

// Resume completes a checkout after the gateway sends the user back.
// The return URL carries the payment reference; the order identifier
// comes from storage. If either is missing the attempt is unrecoverable:
// no verification call is made, the stored identifier is dropped, and
// the user goes back to the cart. A successful verification and a failed
// one both clear the identifier, so the flow can never resume twice.
func (o *Orchestrator) Resume(ctx context.Context, returnURL string) error {
	log := logger.WithContext(ctx, o.logger)

	reference := paymentReference(returnURL)
	orderID, found, err := o.storage.Get(storage.KeyCurrentOrder)
	if err != nil || !found {
		orderID = ""
	}

	if reference == "" || orderID == "" {
		_ = o.storage.Delete(storage.KeyCurrentOrder)
		o.setState(StateFailed)
		log.WarnContext(ctx, "cannot resume checkout",
			slog.Bool("have_reference", reference != ""),
			slog.Bool("have_order_id", orderID != ""),
		)
		o.nav.ToCart()
		return apperrors.RedirectLoss("payment outcome unknown: missing reference or order id")
	}

	o.setState(StateVerifyingPayment)
	confirmErr := o.api.ConfirmPayment(ctx, orderID, reference)
	_ = o.storage.Delete(storage.KeyCurrentOrder)

	if confirmErr != nil {
		o.setState(StateFailed)
		log.WarnContext(ctx, "payment verification failed",
			slog.String("order_id", orderID),
			slog.String("error", confirmErr.Error()),
		)
		o.nav.ToCart()
		return confirmErr
	}

	o.setState(StateSettled)
	log.InfoContext(ctx, "payment verified", slog.String("order_id", orderID))
	o.nav.ToReceipt(orderID)
	return nil
}

// Receipt fetches the settled order for display.
func (o *Orchestrator) Receipt(ctx context.Context, orderID string) (*domain.Order, error) {
	return o.api.GetOrder(ctx, orderID)
}

// paymentReference extracts the gateway reference from the return URL.
// The gateway appends both reference and trxref; either serves.
func paymentReference(returnURL string) string {
	u, err := url.Parse(returnURL)
	if err != nil {
		return ""
	}
	q := u.Query()
	if ref := q.Get("reference"); ref != "" {
		return ref
	}
	return q.Get("trxref")
}
