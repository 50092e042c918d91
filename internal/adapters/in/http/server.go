package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/statemachine"
	"orderflow/internal/pkg/errs"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
)

// OrderService is the part of services.OrderService the HTTP adapter drives.
type OrderService interface {
	Create(ctx context.Context, when time.Time) (*order.Order, error)
	Pay(ctx context.Context, id order.ID, paymentConfirmationNumber string) (statemachine.Outcome, error)
	Fulfill(ctx context.Context, id order.ID) (statemachine.Outcome, error)
	Cancel(ctx context.Context, id order.ID) (statemachine.Outcome, error)
	Change(ctx context.Context, id order.ID, event order.Event, extra map[string]string) (statemachine.Outcome, error)
	Get(ctx context.Context, id order.ID) (queries.GetOrderQueryResponse, error)
}

// Error is the body of every non-2xx response except rejected events.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Order is the JSON view of one order.
type Order struct {
	ID              int64     `json:"id"`
	CreatedAt       time.Time `json:"createdAt"`
	State           string    `json:"state"`
	Terminal        bool      `json:"terminal"`
	AvailableEvents []string  `json:"availableEvents"`
}

// Transition is the JSON view of an Outcome. Rejected events are answered
// with 409 and the same body, From and To both holding the current state.
type Transition struct {
	OrderID int64  `json:"orderId"`
	Event   string `json:"event"`
	Result  string `json:"result"`
	From    string `json:"from"`
	To      string `json:"to"`
}

// PayRequest is the body of POST /api/v1/orders/:orderId/pay.
type PayRequest struct {
	PaymentConfirmationNumber string `json:"paymentConfirmationNumber"`
}

// EventRequest is the body of POST /api/v1/orders/:orderId/events.
type EventRequest struct {
	Event   string            `json:"event"`
	Headers map[string]string `json:"headers"`
}

// Server handles the order HTTP API.
// It translates requests into OrderService calls and domain errors into status codes.
type Server struct {
	orders    OrderService
	validator bodyValidator
	logger    *slog.Logger
	now       func() time.Time
}

// NewServer creates a new HTTP server over the order service. doc is the
// loaded API document used to validate request bodies.
func NewServer(orders OrderService, doc *openapi3.T, logger *slog.Logger) *Server {
	return &Server{
		orders:    orders,
		validator: bodyValidator{doc: doc},
		logger:    logger.With("component", "HTTPServer"),
		now:       time.Now,
	}
}

// CreateOrder handles POST /api/v1/orders - creates a new order in SUBMITTED.
func (s *Server) CreateOrder(ctx echo.Context) error {
	o, err := s.orders.Create(ctx.Request().Context(), s.now().UTC())
	if err != nil {
		return s.fail(ctx, "Failed to create order", err)
	}

	definition := statemachine.OrderDefinition()
	return ctx.JSON(http.StatusCreated, Order{
		ID:              int64(o.ID()),
		CreatedAt:       o.CreatedAt(),
		State:           o.State().String(),
		Terminal:        definition.IsTerminal(o.State()),
		AvailableEvents: eventNames(definition.AvailableEvents(o.State())),
	})
}

// GetOrder handles GET /api/v1/orders/:orderId.
func (s *Server) GetOrder(ctx echo.Context) error {
	id, err := orderID(ctx)
	if err != nil {
		return s.fail(ctx, "Invalid order id", err)
	}

	resp, err := s.orders.Get(ctx.Request().Context(), id)
	if err != nil {
		return s.fail(ctx, "Failed to retrieve order", err)
	}

	return ctx.JSON(http.StatusOK, Order{
		ID:              int64(resp.ID),
		CreatedAt:       resp.CreatedAt,
		State:           resp.State.String(),
		Terminal:        resp.Terminal,
		AvailableEvents: eventNames(resp.AvailableEvents),
	})
}

// PayOrder handles POST /api/v1/orders/:orderId/pay.
func (s *Server) PayOrder(ctx echo.Context) error {
	id, err := orderID(ctx)
	if err != nil {
		return s.fail(ctx, "Invalid order id", err)
	}

	var req PayRequest
	if err := s.bind(ctx, "PayRequest", &req); err != nil {
		return s.fail(ctx, "Invalid request body", err)
	}

	outcome, err := s.orders.Pay(ctx.Request().Context(), id, req.PaymentConfirmationNumber)
	return s.respond(ctx, id, outcome, err)
}

// FulfillOrder handles POST /api/v1/orders/:orderId/fulfill.
func (s *Server) FulfillOrder(ctx echo.Context) error {
	id, err := orderID(ctx)
	if err != nil {
		return s.fail(ctx, "Invalid order id", err)
	}

	outcome, err := s.orders.Fulfill(ctx.Request().Context(), id)
	return s.respond(ctx, id, outcome, err)
}

// CancelOrder handles POST /api/v1/orders/:orderId/cancel.
func (s *Server) CancelOrder(ctx echo.Context) error {
	id, err := orderID(ctx)
	if err != nil {
		return s.fail(ctx, "Invalid order id", err)
	}

	outcome, err := s.orders.Cancel(ctx.Request().Context(), id)
	return s.respond(ctx, id, outcome, err)
}

// SendOrderEvent handles POST /api/v1/orders/:orderId/events - sends any
// event, forwarding the request headers map to the state machine.
func (s *Server) SendOrderEvent(ctx echo.Context) error {
	id, err := orderID(ctx)
	if err != nil {
		return s.fail(ctx, "Invalid order id", err)
	}

	var req EventRequest
	if err := s.bind(ctx, "EventRequest", &req); err != nil {
		return s.fail(ctx, "Invalid request body", err)
	}
	event, err := order.ParseEvent(req.Event)
	if err != nil {
		return s.fail(ctx, "Invalid event", err)
	}

	outcome, err := s.orders.Change(ctx.Request().Context(), id, event, req.Headers)
	return s.respond(ctx, id, outcome, err)
}

func (s *Server) bind(ctx echo.Context, schema string, dst any) error {
	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request body", err)
	}
	return s.validator.decode(schema, body, dst)
}

func (s *Server) respond(ctx echo.Context, id order.ID, outcome statemachine.Outcome, err error) error {
	if err != nil {
		return s.fail(ctx, "Failed to apply event", err)
	}

	status := http.StatusOK
	if outcome.Rejected() {
		status = http.StatusConflict
	}
	return ctx.JSON(status, Transition{
		OrderID: int64(id),
		Event:   outcome.Event.String(),
		Result:  string(outcome.Result),
		From:    outcome.Source.String(),
		To:      outcome.Target.String(),
	})
}

func (s *Server) fail(ctx echo.Context, message string, err error) error {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(ctx.Request().Context(), message,
			"method", ctx.Request().Method,
			"path", ctx.Path(),
			"error", err)
	} else {
		message += ": " + err.Error()
	}
	return ctx.JSON(status, Error{Code: status, Message: message})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrValueIsInvalid), errors.Is(err, errs.ErrValueIsRequired):
		return http.StatusBadRequest
	case errors.Is(err, statemachine.ErrRejected):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func orderID(ctx echo.Context) (order.ID, error) {
	raw := ctx.Param("orderId")
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errs.NewValueIsInvalidErrorWithCause("orderId", err)
	}
	id := order.ID(n)
	if err := id.Validate(); err != nil {
		return 0, err
	}
	return id, nil
}

func eventNames(events []order.Event) []string {
	names := make([]string, len(events))
	for i, e := range events {
		names[i] = e.String()
	}
	return names
}
