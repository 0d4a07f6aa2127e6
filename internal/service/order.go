package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/roastersquare/ordercore/internal/domain"
	"github.com/roastersquare/ordercore/internal/notification"
	"github.com/roastersquare/ordercore/internal/telemetry"
)

// DefaultHighValueThreshold is the order total (minor units) above which an
// order is flagged for manual review.
const DefaultHighValueThreshold = 50_000

// OrderService is the mutation pipeline for the Order aggregate. Every write
// runs validate -> compute -> persist -> side effects; side effects touch the
// Customer and Product aggregates and the notification queue, each
// best-effort and individually logged, and never unwind a successful persist.
type OrderService interface {
	// CreateOrder validates the payload, derives totals, assigns an order
	// number, persists the order, and triggers creation side effects.
	CreateOrder(ctx context.Context, params CreateOrderParams) (*domain.Order, error)

	// UpdateOrder applies a partial update. Status changes are checked
	// against the lifecycle state machine; totals are recomputed from the
	// resulting line items regardless of which fields changed.
	UpdateOrder(ctx context.Context, orderID uuid.UUID, params UpdateOrderParams) (*domain.Order, error)

	// GetOrder retrieves a single order by ID.
	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)

	// GetOrderByNumber retrieves a single order by order number.
	GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)

	// DeleteOrder removes an order outright. Administrative escape hatch:
	// it bypasses the state machine, logs a warning, and does not reverse
	// inventory or customer-stat side effects.
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error

	// Wait blocks until all in-flight asynchronous side effects finish.
	// Call during shutdown.
	Wait()
}

// LineItemParams is one submitted line item. Subtotals are never accepted
// from the client.
type LineItemParams struct {
	ProductID   string `json:"product_id" validate:"required"`
	ProductName string `json:"product_name" validate:"required"`
	SKU         string `json:"sku"`
	UnitPrice   int64  `json:"unit_price" validate:"min=0"`
	Quantity    int    `json:"quantity" validate:"min=1"`
}

// CreateOrderParams is the order submission payload. Any totals or order
// number present in the inbound request are dropped before this struct is
// built; both are derived server-side.
type CreateOrderParams struct {
	CustomerName        string `validate:"required"`
	CustomerEmail       string `validate:"required,email"`
	CustomerPhone       string
	DeliveryAddress     string `validate:"required"`
	SpecialInstructions string

	LineItems    []LineItemParams `validate:"required,min=1,dive"`
	ShippingCost int64            `validate:"min=0"`
	Discount     int64            `validate:"min=0"`

	// Template optionally overrides the notification template enqueued on
	// creation.
	Template domain.NotificationTemplate
}

// UpdateOrderParams is a partial update. Nil pointers leave fields untouched.
type UpdateOrderParams struct {
	OrderStatus   *domain.OrderStatus
	PaymentStatus *domain.PaymentStatus

	// LineItems, when non-nil, replaces the order's line items.
	LineItems []LineItemParams `validate:"omitempty,dive"`

	ShippingCost *int64
	Discount     *int64

	// Template sets the notification template an admin wants used for a
	// subsequent transition that has no fixed template of its own.
	Template *domain.NotificationTemplate

	// OrderNumber is accepted for payload compatibility and ignored; the
	// stored order number is immutable.
	OrderNumber string
}

// SideEffectKind labels the three post-persist side-effect families.
type SideEffectKind string

const (
	SideEffectCustomerStats SideEffectKind = "customer_stats"
	SideEffectInventory     SideEffectKind = "inventory"
	SideEffectNotification  SideEffectKind = "notification"
)

// SideEffectResult is the outcome of one side effect. Key identifies the
// touched aggregate: a product ID, a customer email, or a template name.
type SideEffectResult struct {
	Kind SideEffectKind
	Key  string
	Err  error
}

// SideEffectRecorder receives the outcome of every side-effect batch. An
// external reconciliation job can hang off this hook to replay failures; the
// pipeline itself only logs them.
type SideEffectRecorder func(orderNumber string, results []SideEffectResult)

// Config tunes the pipeline.
type Config struct {
	// HighValueThreshold flags orders above this total for manual review.
	// Zero means DefaultHighValueThreshold.
	HighValueThreshold int64

	// AsyncSideEffects runs the post-persist stage in a goroutine, so the
	// caller returns as soon as the order record is written. Failures are
	// then observable only through logs and the recorder hook.
	AsyncSideEffects bool
}

// Option customizes optional pipeline collaborators.
type Option func(*orderService)

// WithMetrics attaches Prometheus metrics to the pipeline.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *orderService) { s.metrics = m }
}

// WithSideEffectRecorder attaches a recorder for side-effect outcomes.
func WithSideEffectRecorder(rec SideEffectRecorder) Option {
	return func(s *orderService) { s.recorder = rec }
}

type sideEffect struct {
	kind SideEffectKind
	key  string
	run  func(ctx context.Context) error
}

type orderService struct {
	orders     domain.OrderStore
	stats      *CustomerStatsAggregator
	inventory  *InventoryAdjuster
	dispatcher *notification.Dispatcher
	clock      domain.Clock
	logger     zerolog.Logger
	validate   *validator.Validate
	metrics    *telemetry.Metrics
	recorder   SideEffectRecorder
	cfg        Config

	wg sync.WaitGroup
}

// NewOrderService creates the order mutation pipeline.
func NewOrderService(
	orders domain.OrderStore,
	products domain.ProductStore,
	customers domain.CustomerStore,
	dispatcher *notification.Dispatcher,
	clock domain.Clock,
	logger zerolog.Logger,
	cfg Config,
	opts ...Option,
) OrderService {
	if clock == nil {
		clock = domain.SystemClock()
	}
	if cfg.HighValueThreshold == 0 {
		cfg.HighValueThreshold = DefaultHighValueThreshold
	}

	s := &orderService{
		orders:     orders,
		stats:      NewCustomerStatsAggregator(customers, logger),
		inventory:  NewInventoryAdjuster(products, logger),
		dispatcher: dispatcher,
		clock:      clock,
		logger:     logger,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		cfg:        cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder implements the create path of the pipeline.
func (s *orderService) CreateOrder(ctx context.Context, params CreateOrderParams) (*domain.Order, error) {
	// validate
	if err := s.validateParams("order.create", params); err != nil {
		return nil, err
	}
	if params.Template != "" && !params.Template.Valid() {
		return nil, domain.Errorf(domain.EINVALID, "order.create", "unknown notification template: %s", params.Template)
	}

	now := s.clock.Now()
	order := &domain.Order{
		ID: uuid.New(),
		Customer: domain.CustomerInfo{
			Name:                params.CustomerName,
			Email:               params.CustomerEmail,
			Phone:               params.CustomerPhone,
			DeliveryAddress:     params.DeliveryAddress,
			SpecialInstructions: params.SpecialInstructions,
		},
		LineItems:     lineItemsFromParams(params.LineItems),
		ShippingCost:  params.ShippingCost,
		Discount:      params.Discount,
		OrderStatus:   domain.OrderStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		Notification:  domain.Notification{Template: params.Template},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// compute
	applyTotals(order, ComputeTotals(order.LineItems, order.ShippingCost, order.Discount))

	// persist, regenerating the order number on a uniqueness conflict
	for attempt := 1; ; attempt++ {
		order.OrderNumber = GenerateOrderNumber(now)
		err := s.orders.CreateOrder(ctx, order)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrOrderNumberTaken) && attempt < maxOrderNumberAttempts {
			s.logger.Warn().
				Str("order_number", order.OrderNumber).
				Int("attempt", attempt).
				Msg("order number collision, regenerating")
			continue
		}
		return nil, domain.WrapError(err, domain.ErrorCode(err), "order.create", "failed to persist order")
	}

	s.audit(ctx, order.OrderNumber, "order.created", "", order.OrderStatus.String(), nil)

	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
		s.metrics.OrderValue.Observe(float64(order.OrderTotal))
	}

	if order.OrderTotal > s.cfg.HighValueThreshold {
		s.logger.Info().
			Str("order_number", order.OrderNumber).
			Int64("order_total", order.OrderTotal).
			Int64("threshold", s.cfg.HighValueThreshold).
			Msg("high-value order, flagged for manual review")
		if s.metrics != nil {
			s.metrics.HighValueOrders.Inc()
		}
	}

	// side effects run against their own copy; the struct returned to the
	// caller is never written after this point. The store row is
	// authoritative for notification state.
	effectOrder := *order
	s.dispatchSideEffects(ctx, order.OrderNumber, s.createEffects(&effectOrder))

	return order, nil
}

// UpdateOrder implements the update path of the pipeline.
func (s *orderService) UpdateOrder(ctx context.Context, orderID uuid.UUID, params UpdateOrderParams) (*domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	// validate: only actually-changed status fields are checked
	if err := s.validateParams("order.update", params); err != nil {
		return nil, err
	}
	if params.OrderStatus != nil {
		if !params.OrderStatus.Valid() {
			return nil, domain.Errorf(domain.EINVALID, "order.update", "unknown order status: %s", *params.OrderStatus)
		}
		if err := ValidateOrderStatus(order.OrderStatus, *params.OrderStatus); err != nil {
			return nil, err
		}
	}
	if params.PaymentStatus != nil {
		if !params.PaymentStatus.Valid() {
			return nil, domain.Errorf(domain.EINVALID, "order.update", "unknown payment status: %s", *params.PaymentStatus)
		}
		if err := ValidatePaymentStatus(order.PaymentStatus, *params.PaymentStatus); err != nil {
			return nil, err
		}
	}
	// Setting an empty template clears the explicit override; anything else
	// must be a known template.
	if params.Template != nil && *params.Template != "" && !params.Template.Valid() {
		return nil, domain.Errorf(domain.EINVALID, "order.update", "unknown notification template: %s", *params.Template)
	}

	prevOrderStatus := order.OrderStatus
	prevPaymentStatus := order.PaymentStatus
	prevItems := order.LineItems

	if params.OrderNumber != "" && params.OrderNumber != order.OrderNumber {
		s.logger.Warn().
			Str("order_number", order.OrderNumber).
			Str("submitted", params.OrderNumber).
			Msg("attempt to change immutable order number ignored")
	}

	// apply
	if params.LineItems != nil {
		order.LineItems = lineItemsFromParams(params.LineItems)
	}
	if params.ShippingCost != nil {
		order.ShippingCost = *params.ShippingCost
	}
	if params.Discount != nil {
		order.Discount = *params.Discount
	}
	if params.Template != nil {
		order.Notification.Template = *params.Template
	}
	if params.OrderStatus != nil {
		order.OrderStatus = *params.OrderStatus
	}
	if params.PaymentStatus != nil {
		order.PaymentStatus = *params.PaymentStatus
	}

	// compute: totals always re-derive from the current line items
	applyTotals(order, ComputeTotals(order.LineItems, order.ShippingCost, order.Discount))
	order.UpdatedAt = s.clock.Now()

	// persist
	if err := s.orders.UpdateOrder(ctx, order); err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), "order.update", "failed to persist order")
	}

	if order.OrderStatus != prevOrderStatus {
		s.audit(ctx, order.OrderNumber, "order.status_changed", prevOrderStatus.String(), order.OrderStatus.String(), nil)
		if s.metrics != nil {
			s.metrics.StatusTransitions.WithLabelValues(prevOrderStatus.String(), order.OrderStatus.String()).Inc()
		}
		for _, hint := range TransitionHints(order.PaymentStatus, prevOrderStatus, order.OrderStatus) {
			s.logger.Warn().
				Str("order_number", order.OrderNumber).
				Str("event", "order.payment_unreconciled").
				Msg(hint)
		}
	}
	if order.PaymentStatus != prevPaymentStatus {
		s.audit(ctx, order.OrderNumber, "order.payment_status_changed", prevPaymentStatus.String(), order.PaymentStatus.String(), nil)
	}

	// side effects run against their own copy, as in CreateOrder
	effectOrder := *order
	s.dispatchSideEffects(ctx, order.OrderNumber, s.updateEffects(&effectOrder, prevOrderStatus, prevItems))

	return order, nil
}

// GetOrder retrieves a single order by ID.
func (s *orderService) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.orders.GetOrder(ctx, orderID)
}

// GetOrderByNumber retrieves a single order by order number.
func (s *orderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	return s.orders.GetOrderByNumber(ctx, orderNumber)
}

// DeleteOrder removes an order outside the state machine.
func (s *orderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	actor := domain.ActorFromContext(ctx)
	s.logger.Warn().
		Str("order_number", order.OrderNumber).
		Str("event", "order.deleted").
		Str("order_status", order.OrderStatus.String()).
		Str("actor", actor.ID).
		Msg("administrative order deletion; inventory and customer statistics are not reversed")

	if err := s.orders.DeleteOrder(ctx, orderID); err != nil {
		return domain.WrapError(err, domain.ErrorCode(err), "order.delete", "failed to delete order")
	}

	if s.metrics != nil {
		s.metrics.OrdersDeleted.Inc()
	}
	return nil
}

// Wait blocks until in-flight asynchronous side effects complete.
func (s *orderService) Wait() {
	s.wg.Wait()
}

// createEffects assembles the side-effect batch for a freshly created order:
// customer statistics, one stock decrement per sellable line, and the order
// confirmation.
func (s *orderService) createEffects(order *domain.Order) []sideEffect {
	effects := []sideEffect{{
		kind: SideEffectCustomerStats,
		key:  order.Customer.Email,
		run: func(ctx context.Context) error {
			return s.stats.OnOrderCreated(ctx, order)
		},
	}}

	for _, adj := range commitAdjustments(order.LineItems) {
		adj := adj
		effects = append(effects, sideEffect{
			kind: SideEffectInventory,
			key:  adj.ProductID,
			run: func(ctx context.Context) error {
				return s.inventory.Apply(ctx, order.OrderNumber, adj)
			},
		})
	}

	effects = append(effects, sideEffect{
		kind: SideEffectNotification,
		key:  string(domain.TemplateOrderConfirmation),
		run: func(ctx context.Context) error {
			template, err := s.dispatcher.OrderCreated(ctx, order)
			if err != nil {
				return err
			}
			return s.markNotified(ctx, order, template)
		},
	})

	return effects
}

// updateEffects assembles the side-effect batch for an updated order.
func (s *orderService) updateEffects(order *domain.Order, prevStatus domain.OrderStatus, prevItems []domain.LineItem) []sideEffect {
	var effects []sideEffect

	var adjs []StockAdjustment
	switch {
	case prevStatus.Committed() && !order.OrderStatus.Committed():
		// Cancel/refund of a committed order releases the stock that was
		// held for it, using the quantities as they were before this write.
		adjs = reversalAdjustments(prevItems)
	case prevStatus.Committed() && order.OrderStatus.Committed():
		adjs = deltaAdjustments(prevItems, order.LineItems)
	}
	for _, adj := range adjs {
		adj := adj
		effects = append(effects, sideEffect{
			kind: SideEffectInventory,
			key:  adj.ProductID,
			run: func(ctx context.Context) error {
				return s.inventory.Apply(ctx, order.OrderNumber, adj)
			},
		})
	}

	if order.OrderStatus != prevStatus {
		from, to := prevStatus, order.OrderStatus
		effects = append(effects, sideEffect{
			kind: SideEffectNotification,
			key:  to.String(),
			run: func(ctx context.Context) error {
				template, enqueued, err := s.dispatcher.StatusChanged(ctx, order, from, to)
				if err != nil || !enqueued {
					return err
				}
				return s.markNotified(ctx, order, template)
			},
		})
	}

	return effects
}

// markNotified records a successful enqueue on the order record.
func (s *orderService) markNotified(ctx context.Context, order *domain.Order, template domain.NotificationTemplate) error {
	if s.metrics != nil {
		s.metrics.NotificationsSent.WithLabelValues(string(template)).Inc()
	}
	now := s.clock.Now()
	if err := s.orders.MarkNotified(ctx, order.ID, template, now); err != nil {
		return domain.WrapError(err, domain.ErrorCode(err), "order.mark_notified", "failed to record notification on order")
	}
	order.Notification = domain.Notification{Sent: true, SentAt: &now, Template: template}
	return nil
}

// dispatchSideEffects runs the batch inline or, when configured, in the
// background detached from the request context so a client disconnect cannot
// abort half-applied effects.
func (s *orderService) dispatchSideEffects(ctx context.Context, orderNumber string, effects []sideEffect) {
	if len(effects) == 0 {
		return
	}
	if !s.cfg.AsyncSideEffects {
		s.runSideEffects(ctx, orderNumber, effects)
		return
	}

	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runSideEffects(bg, orderNumber, effects)
	}()
}

// runSideEffects executes each effect in order. A failure is logged with
// full context and counted, then the batch proceeds; nothing here can fail
// the already-persisted order write.
func (s *orderService) runSideEffects(ctx context.Context, orderNumber string, effects []sideEffect) []SideEffectResult {
	results := make([]SideEffectResult, 0, len(effects))
	for _, effect := range effects {
		err := effect.run(ctx)
		if err != nil {
			s.logger.Error().
				Str("order_number", orderNumber).
				Str("event", "order.side_effect_failed").
				Str("side_effect", string(effect.kind)).
				Str("key", effect.key).
				Err(err).
				Msg("side effect failed; order write is unaffected")
			if s.metrics != nil {
				s.metrics.SideEffectFailures.WithLabelValues(string(effect.kind)).Inc()
			}
		}
		results = append(results, SideEffectResult{Kind: effect.kind, Key: effect.key, Err: err})
	}
	if s.recorder != nil {
		s.recorder(orderNumber, results)
	}
	return results
}

// audit emits one structured entry per significant pipeline event, the
// stream an external reconciliation pipeline consumes.
func (s *orderService) audit(ctx context.Context, orderNumber, event, from, to string, err error) {
	actor := domain.ActorFromContext(ctx)

	evt := s.logger.Info()
	if err != nil {
		evt = s.logger.Error().Err(err)
	}
	evt = evt.
		Str("order_number", orderNumber).
		Str("event", event).
		Str("actor", actor.ID)
	if from != "" {
		evt = evt.Str("from", from)
	}
	if to != "" {
		evt = evt.Str("to", to)
	}
	if requestID := domain.RequestIDFromContext(ctx); requestID != "" {
		evt = evt.Str("request_id", requestID)
	}
	evt.Msg(event)
}

// validateParams maps validator failures into the domain's field-level
// validation error.
func (s *orderService) validateParams(op string, params interface{}) error {
	err := s.validate.Struct(params)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.Internal(err, op, "payload validation failed")
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Namespace()] = validationMessage(fe)
	}
	return &domain.ValidationError{Op: op, Fields: fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func lineItemsFromParams(params []LineItemParams) []domain.LineItem {
	items := make([]domain.LineItem, len(params))
	for i, p := range params {
		items[i] = domain.LineItem{
			ProductID:   p.ProductID,
			ProductName: p.ProductName,
			SKU:         p.SKU,
			UnitPrice:   p.UnitPrice,
			Quantity:    p.Quantity,
		}
	}
	return items
}
