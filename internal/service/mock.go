package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/roastersquare/ordercore/internal/domain"
)

// Mock stores for testing. They are map-backed, safe for concurrent use, and
// apply increments atomically under their own lock to mirror the storage
// contract. Func fields override individual methods.

// MockOrderStore is an in-memory domain.OrderStore.
type MockOrderStore struct {
	// CreateOrderFunc allows customizing create behavior, e.g. simulating
	// order number conflicts.
	CreateOrderFunc func(ctx context.Context, order *domain.Order) error

	// UpdateOrderFunc allows customizing update behavior.
	UpdateOrderFunc func(ctx context.Context, order *domain.Order) error

	mu      sync.Mutex
	Orders  map[uuid.UUID]*domain.Order
	CallLog []string
}

// NewMockOrderStore creates a new mock order store.
func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{Orders: make(map[uuid.UUID]*domain.Order)}
}

func (m *MockOrderStore) log(format string, args ...interface{}) {
	m.CallLog = append(m.CallLog, fmt.Sprintf(format, args...))
}

// CreateOrder inserts the order, enforcing order number uniqueness.
func (m *MockOrderStore) CreateOrder(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("CreateOrder(%s)", order.OrderNumber)

	if m.CreateOrderFunc != nil {
		if err := m.CreateOrderFunc(ctx, order); err != nil {
			return err
		}
	}
	for _, existing := range m.Orders {
		if existing.OrderNumber == order.OrderNumber {
			return domain.ErrOrderNumberTaken
		}
	}
	stored := *order
	m.Orders[order.ID] = &stored
	return nil
}

// UpdateOrder replaces the stored record, keeping the stored order number.
func (m *MockOrderStore) UpdateOrder(ctx context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("UpdateOrder(%s)", order.OrderNumber)

	if m.UpdateOrderFunc != nil {
		if err := m.UpdateOrderFunc(ctx, order); err != nil {
			return err
		}
	}
	existing, ok := m.Orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	stored := *order
	stored.OrderNumber = existing.OrderNumber
	m.Orders[order.ID] = &stored
	return nil
}

// GetOrder retrieves a copy of the order by ID.
func (m *MockOrderStore) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	order, ok := m.Orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	out := *order
	return &out, nil
}

// GetOrderByNumber retrieves a copy of the order by number.
func (m *MockOrderStore) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, order := range m.Orders {
		if order.OrderNumber == orderNumber {
			out := *order
			return &out, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

// MarkNotified records a notification enqueue on the stored order.
func (m *MockOrderStore) MarkNotified(ctx context.Context, id uuid.UUID, template domain.NotificationTemplate, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("MarkNotified(%s, %s)", id, template)

	order, ok := m.Orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	order.Notification = domain.Notification{Sent: true, SentAt: &at, Template: template}
	return nil
}

// DeleteOrder removes the order.
func (m *MockOrderStore) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.log("DeleteOrder(%s)", id)

	if _, ok := m.Orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(m.Orders, id)
	return nil
}

// MockProductStore is an in-memory domain.ProductStore.
type MockProductStore struct {
	// AdjustStockFunc allows customizing adjustment behavior.
	AdjustStockFunc func(ctx context.Context, id string, stockDelta, orderCountDelta int64) (int64, error)

	mu       sync.Mutex
	Products map[string]*domain.Product
	CallLog  []string
}

// NewMockProductStore creates a new mock product store.
func NewMockProductStore(products ...*domain.Product) *MockProductStore {
	m := &MockProductStore{Products: make(map[string]*domain.Product)}
	for _, p := range products {
		stored := *p
		m.Products[p.ID] = &stored
	}
	return m
}

// GetProduct retrieves a copy of the product.
func (m *MockProductStore) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	product, ok := m.Products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	out := *product
	return &out, nil
}

// AdjustStock applies the deltas under the store lock.
func (m *MockProductStore) AdjustStock(ctx context.Context, id string, stockDelta, orderCountDelta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("AdjustStock(%s, %d, %d)", id, stockDelta, orderCountDelta))

	if m.AdjustStockFunc != nil {
		return m.AdjustStockFunc(ctx, id, stockDelta, orderCountDelta)
	}

	product, ok := m.Products[id]
	if !ok {
		return 0, domain.ErrProductNotFound
	}
	product.Stock += stockDelta
	product.OrderCount += orderCountDelta
	return product.Stock, nil
}

// MockCustomerStore is an in-memory domain.CustomerStore.
type MockCustomerStore struct {
	// RecordOrderFunc allows customizing stat updates.
	RecordOrderFunc func(ctx context.Context, id uuid.UUID, orderTotal int64, orderedAt time.Time) error

	mu        sync.Mutex
	Customers map[string]*domain.Customer // keyed by email
	CallLog   []string
}

// NewMockCustomerStore creates a new mock customer store.
func NewMockCustomerStore(customers ...*domain.Customer) *MockCustomerStore {
	m := &MockCustomerStore{Customers: make(map[string]*domain.Customer)}
	for _, c := range customers {
		stored := *c
		m.Customers[c.Email] = &stored
	}
	return m
}

// GetCustomerByEmail retrieves a copy of the customer.
func (m *MockCustomerStore) GetCustomerByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	customer, ok := m.Customers[email]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	out := *customer
	return &out, nil
}

// RecordOrder applies the order to the customer's statistics.
func (m *MockCustomerStore) RecordOrder(ctx context.Context, id uuid.UUID, orderTotal int64, orderedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallLog = append(m.CallLog, fmt.Sprintf("RecordOrder(%s, %d)", id, orderTotal))

	if m.RecordOrderFunc != nil {
		return m.RecordOrderFunc(ctx, id, orderTotal, orderedAt)
	}

	for _, customer := range m.Customers {
		if customer.ID != id {
			continue
		}
		customer.OrderStats.TotalOrders++
		customer.OrderStats.TotalSpent += orderTotal
		at := orderedAt
		customer.OrderStats.LastOrderDate = &at
		if customer.OrderStats.FirstOrderDate == nil {
			customer.OrderStats.FirstOrderDate = &at
		}
		return nil
	}
	return domain.ErrCustomerNotFound
}
