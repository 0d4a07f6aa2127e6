package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/roastersquare/ordercore/internal/domain"
	"github.com/roastersquare/ordercore/internal/service"
)

// OrderHandler exposes the order pipeline as a JSON API.
type OrderHandler struct {
	svc    service.OrderService
	logger zerolog.Logger
}

// NewOrderHandler creates the order handler.
func NewOrderHandler(svc service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, logger: logger}
}

// Register mounts the order routes.
func (h *OrderHandler) Register(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.POST("/orders", h.createOrder)
	g.GET("/orders/:id", h.getOrder)
	g.GET("/orders/number/:number", h.getOrderByNumber)
	g.PATCH("/orders/:id", h.updateOrder)
	g.DELETE("/orders/:id", h.deleteOrder)
}

type lineItemRequest struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	SKU         string `json:"sku"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int    `json:"quantity"`

	// Subtotal is accepted for payload compatibility and discarded; all
	// amounts are derived server-side.
	Subtotal int64 `json:"subtotal"`
}

type createOrderRequest struct {
	CustomerName        string `json:"customer_name"`
	CustomerEmail       string `json:"customer_email"`
	CustomerPhone       string `json:"customer_phone"`
	DeliveryAddress     string `json:"delivery_address"`
	SpecialInstructions string `json:"special_instructions"`

	LineItems    []lineItemRequest `json:"line_items"`
	ShippingCost int64             `json:"shipping_cost"`
	Discount     int64             `json:"discount"`

	Template string `json:"notification_template"`

	// Accepted and discarded, same as Subtotal above.
	OrderNumber   string `json:"order_number"`
	OrderSubtotal int64  `json:"order_subtotal"`
	OrderTotal    int64  `json:"order_total"`
}

type updateOrderRequest struct {
	OrderStatus   *string `json:"order_status"`
	PaymentStatus *string `json:"payment_status"`

	LineItems    []lineItemRequest `json:"line_items"`
	ShippingCost *int64            `json:"shipping_cost"`
	Discount     *int64            `json:"discount"`

	Template *string `json:"notification_template"`

	OrderNumber   string `json:"order_number"`
	OrderSubtotal int64  `json:"order_subtotal"`
	OrderTotal    int64  `json:"order_total"`
}

func (h *OrderHandler) createOrder(c echo.Context) error {
	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, domain.Invalid("order.create", "malformed request body"))
	}

	params := service.CreateOrderParams{
		CustomerName:        req.CustomerName,
		CustomerEmail:       req.CustomerEmail,
		CustomerPhone:       req.CustomerPhone,
		DeliveryAddress:     req.DeliveryAddress,
		SpecialInstructions: req.SpecialInstructions,
		LineItems:           lineItemParams(req.LineItems),
		ShippingCost:        req.ShippingCost,
		Discount:            req.Discount,
		Template:            domain.NotificationTemplate(req.Template),
	}

	order, err := h.svc.CreateOrder(c.Request().Context(), params)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) getOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorResponse(c, domain.Invalid("order.get", "invalid order ID"))
	}

	order, err := h.svc.GetOrder(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) getOrderByNumber(c echo.Context) error {
	order, err := h.svc.GetOrderByNumber(c.Request().Context(), c.Param("number"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) updateOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorResponse(c, domain.Invalid("order.update", "invalid order ID"))
	}

	var req updateOrderRequest
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, domain.Invalid("order.update", "malformed request body"))
	}

	params := service.UpdateOrderParams{
		ShippingCost: req.ShippingCost,
		Discount:     req.Discount,
		OrderNumber:  req.OrderNumber,
	}
	if req.OrderStatus != nil {
		status := domain.OrderStatus(*req.OrderStatus)
		params.OrderStatus = &status
	}
	if req.PaymentStatus != nil {
		status := domain.PaymentStatus(*req.PaymentStatus)
		params.PaymentStatus = &status
	}
	if req.LineItems != nil {
		params.LineItems = lineItemParams(req.LineItems)
	}
	if req.Template != nil {
		template := domain.NotificationTemplate(*req.Template)
		params.Template = &template
	}

	order, err := h.svc.UpdateOrder(c.Request().Context(), id, params)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) deleteOrder(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return errorResponse(c, domain.Invalid("order.delete", "invalid order ID"))
	}

	if err := h.svc.DeleteOrder(c.Request().Context(), id); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func lineItemParams(items []lineItemRequest) []service.LineItemParams {
	params := make([]service.LineItemParams, len(items))
	for i, item := range items {
		params[i] = service.LineItemParams{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		}
	}
	return params
}
