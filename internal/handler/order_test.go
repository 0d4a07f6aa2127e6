package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roastersquare/ordercore/internal/domain"
	"github.com/roastersquare/ordercore/internal/notification"
	"github.com/roastersquare/ordercore/internal/service"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"unknown_code", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := ErrorCodeToHTTPStatus(tt.code); got != tt.expected {
				t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.expected)
			}
		})
	}
}

func newTestHandler(t *testing.T) (*echo.Echo, *service.MockOrderStore) {
	t.Helper()

	orders := service.NewMockOrderStore()
	svc := service.NewOrderService(
		orders,
		service.NewMockProductStore(&domain.Product{ID: "prod-1", Name: "Ethiopia Yirgacheffe", Stock: 10}),
		service.NewMockCustomerStore(&domain.Customer{ID: uuid.New(), Email: "maria@example.com", Name: "Maria Santos"}),
		notification.NewDispatcher(notification.NewMockTransport(), zerolog.Nop()),
		nil,
		zerolog.Nop(),
		service.Config{},
	)

	e := echo.New()
	NewOrderHandler(svc, zerolog.Nop()).Register(e)
	return e, orders
}

const createBody = `{
	"customer_name": "Maria Santos",
	"customer_email": "maria@example.com",
	"delivery_address": "12 Harbor St",
	"line_items": [
		{"product_id": "prod-1", "product_name": "Ethiopia Yirgacheffe", "unit_price": 1850, "quantity": 2}
	],
	"shipping_cost": 500
}`

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	e, _ := newTestHandler(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/orders", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var order domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, int64(4200), order.OrderTotal)
	assert.NotEmpty(t, order.OrderNumber)
}

func TestOrderHandler_CreateOrder_ClientTotalsIgnored(t *testing.T) {
	e, _ := newTestHandler(t)

	// order_total and order_number in the payload must have no effect.
	body := strings.TrimSuffix(createBody, "\n}") + `,
	"order_number": "RS-20990101-FORGE",
	"order_total": 1
}`
	rec := doRequest(e, http.MethodPost, "/api/v1/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var order domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, int64(4200), order.OrderTotal)
	assert.NotEqual(t, "RS-20990101-FORGE", order.OrderNumber)
}

func TestOrderHandler_CreateOrder_ValidationError(t *testing.T) {
	e, _ := newTestHandler(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/orders", `{"customer_name": "Maria Santos"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Error struct {
			Code   string            `json:"code"`
			Fields map[string]string `json:"fields"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.EINVALID, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.Fields)
}

func TestOrderHandler_GetOrder(t *testing.T) {
	e, _ := newTestHandler(t)

	created := doRequest(e, http.MethodPost, "/api/v1/orders", createBody)
	require.Equal(t, http.StatusCreated, created.Code)
	var order domain.Order
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &order))

	rec := doRequest(e, http.MethodGet, "/api/v1/orders/"+order.ID.String(), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(e, http.MethodGet, "/api/v1/orders/number/"+order.OrderNumber, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOrderHandler_GetOrder_NotFound(t *testing.T) {
	e, _ := newTestHandler(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/orders/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderHandler_GetOrder_BadID(t *testing.T) {
	e, _ := newTestHandler(t)

	rec := doRequest(e, http.MethodGet, "/api/v1/orders/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderHandler_UpdateOrder_StatusTransition(t *testing.T) {
	e, _ := newTestHandler(t)

	created := doRequest(e, http.MethodPost, "/api/v1/orders", createBody)
	var order domain.Order
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &order))

	rec := doRequest(e, http.MethodPatch, "/api/v1/orders/"+order.ID.String(), `{"order_status": "confirmed"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var updated domain.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, domain.OrderStatusConfirmed, updated.OrderStatus)
}

func TestOrderHandler_UpdateOrder_InvalidTransition(t *testing.T) {
	e, _ := newTestHandler(t)

	created := doRequest(e, http.MethodPost, "/api/v1/orders", createBody)
	var order domain.Order
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &order))

	rec := doRequest(e, http.MethodPatch, "/api/v1/orders/"+order.ID.String(), `{"order_status": "delivered"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderHandler_DeleteOrder(t *testing.T) {
	e, orders := newTestHandler(t)

	created := doRequest(e, http.MethodPost, "/api/v1/orders", createBody)
	var order domain.Order
	require.NoError(t, json.Unmarshal(created.Body.Bytes(), &order))

	rec := doRequest(e, http.MethodDelete, "/api/v1/orders/"+order.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, orders.Orders)
}
