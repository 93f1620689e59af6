package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ms-lab/commerce-go/internal/models"
)

type fakeDirectory struct {
	customers map[int]*models.Customer
	calls     int
}

func (f *fakeDirectory) CustomerByID(_ context.Context, id int) (*models.Customer, error) {
	f.calls++
	if c, ok := f.customers[id]; ok {
		return c, nil
	}
	return nil, errors.New("not found")
}

type decrement struct {
	productID int
	quantity  int
}

type fakeCatalog struct {
	products      map[int]*models.Product
	lookups       []int
	decrements    []decrement
	decrementErrs map[int]error
}

func (f *fakeCatalog) ProductByID(_ context.Context, id int) (*models.Product, error) {
	f.lookups = append(f.lookups, id)
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeCatalog) DecrementStock(_ context.Context, id, quantity int) error {
	f.decrements = append(f.decrements, decrement{productID: id, quantity: quantity})
	if err, ok := f.decrementErrs[id]; ok {
		return err
	}
	return nil
}

type fakeStore struct {
	orders    []*models.Order
	createErr error
	nextID    int
}

func (f *fakeStore) Create(_ context.Context, order *models.Order) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	order.ID = f.nextID
	order.OrderDate = time.Now().UTC()
	for i := range order.OrderItems {
		order.OrderItems[i].ID = i + 1
		order.OrderItems[i].OrderID = order.ID
	}
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeStore) All(_ context.Context) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (f *fakeStore) ByID(_ context.Context, id int) (*models.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ByCustomer(_ context.Context, customerID int) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.orders {
		if o.CustomerID == customerID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id int) error {
	for i, o := range f.orders {
		if o.ID == id {
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			return nil
		}
	}
	return errors.New("order not found")
}

func newTestService() (*Service, *fakeDirectory, *fakeCatalog, *fakeStore) {
	directory := &fakeDirectory{customers: map[int]*models.Customer{
		1: {ID: 1, Name: "Ada Lovelace", Email: "ada@example.com"},
	}}
	catalog := &fakeCatalog{
		products:      map[int]*models.Product{},
		decrementErrs: map[int]error{},
	}
	store := &fakeStore{}
	svc := NewService(directory, catalog, store, zap.NewNop().Sugar())
	return svc, directory, catalog, store
}

func manyItems(n int) []models.CreateOrderItemRequest {
	items := make([]models.CreateOrderItemRequest, n)
	for i := range items {
		items[i] = models.CreateOrderItemRequest{ProductID: i + 1, Quantity: 1}
	}
	return items
}

func TestCreateOrder_ValidationFailuresMakeNoRemoteCalls(t *testing.T) {
	tests := []struct {
		name string
		req  models.CreateOrderRequest
	}{
		{
			name: "non-positive customer id",
			req:  models.CreateOrderRequest{CustomerID: 0, OrderItems: manyItems(1)},
		},
		{
			name: "no items",
			req:  models.CreateOrderRequest{CustomerID: 1},
		},
		{
			name: "101 items",
			req:  models.CreateOrderRequest{CustomerID: 1, OrderItems: manyItems(101)},
		},
		{
			name: "non-positive product id",
			req: models.CreateOrderRequest{CustomerID: 1, OrderItems: []models.CreateOrderItemRequest{
				{ProductID: 0, Quantity: 1},
			}},
		},
		{
			name: "non-positive quantity",
			req: models.CreateOrderRequest{CustomerID: 1, OrderItems: []models.CreateOrderItemRequest{
				{ProductID: 10, Quantity: 0},
			}},
		},
		{
			name: "quantity above line ceiling",
			req: models.CreateOrderRequest{CustomerID: 1, OrderItems: []models.CreateOrderItemRequest{
				{ProductID: 10, Quantity: 1001},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, directory, catalog, store := newTestService()

			order, warnings, err := svc.CreateOrder(context.Background(), tt.req)

			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Nil(t, order)
			assert.Empty(t, warnings)
			assert.Zero(t, directory.calls, "no customer lookup expected")
			assert.Empty(t, catalog.lookups, "no product lookup expected")
			assert.Empty(t, catalog.decrements)
			assert.Empty(t, store.orders)
		})
	}
}

func TestCreateOrder_UnknownCustomerSkipsProductLookups(t *testing.T) {
	svc, directory, catalog, store := newTestService()

	req := models.CreateOrderRequest{
		CustomerID: 999,
		OrderItems: []models.CreateOrderItemRequest{{ProductID: 10, Quantity: 1}},
	}
	order, _, err := svc.CreateOrder(context.Background(), req)

	var cErr *CustomerNotFoundError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, 999, cErr.CustomerID)
	assert.Nil(t, order)
	assert.Equal(t, 1, directory.calls)
	assert.Empty(t, catalog.lookups, "customer check must precede product checks")
	assert.Empty(t, store.orders)
}

func TestCreateOrder_SingleLine(t *testing.T) {
	svc, _, catalog, store := newTestService()
	catalog.products[10] = &models.Product{ID: 10, Name: "Widget", Price: 25.00, StockQuantity: 5}

	req := models.CreateOrderRequest{
		CustomerID: 1,
		OrderItems: []models.CreateOrderItemRequest{{ProductID: 10, Quantity: 3}},
	}
	order, warnings, err := svc.CreateOrder(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.Empty(t, warnings)

	assert.Equal(t, "Ada Lovelace", order.CustomerName)
	require.Len(t, order.OrderItems, 1)
	line := order.OrderItems[0]
	assert.Equal(t, 10, line.ProductID)
	assert.Equal(t, "Widget", line.ProductName)
	assert.Equal(t, 25.00, line.UnitPrice)
	assert.Equal(t, 3, line.Quantity)
	assert.Equal(t, 75.00, line.Subtotal)
	assert.Equal(t, 75.00, order.TotalAmount)

	require.Len(t, store.orders, 1)
	assert.Equal(t, []decrement{{productID: 10, quantity: 3}}, catalog.decrements)
}

func TestCreateOrder_TotalIsExactSumOfSubtotals(t *testing.T) {
	svc, _, catalog, _ := newTestService()
	catalog.products[10] = &models.Product{ID: 10, Name: "Widget", Price: 25.00, StockQuantity: 50}
	catalog.products[11] = &models.Product{ID: 11, Name: "Gadget", Price: 9.99, StockQuantity: 50}
	catalog.products[12] = &models.Product{ID: 12, Name: "Sprocket", Price: 0.50, StockQuantity: 50}

	req := models.CreateOrderRequest{
		CustomerID: 1,
		OrderItems: []models.CreateOrderItemRequest{
			{ProductID: 10, Quantity: 2},
			{ProductID: 11, Quantity: 3},
			{ProductID: 12, Quantity: 10},
		},
	}
	order, _, err := svc.CreateOrder(context.Background(), req)

	require.NoError(t, err)
	var sum float64
	for _, item := range order.OrderItems {
		sum += item.Subtotal
	}
	assert.Equal(t, sum, order.TotalAmount)
}

func TestCreateOrder_ZeroStock(t *testing.T) {
	svc, _, catalog, store := newTestService()
	catalog.products[10] = &models.Product{ID: 10, Name: "Widget", Price: 25.00, StockQuantity: 0}

	req := models.CreateOrderRequest{
		CustomerID: 1,
		OrderItems: []models.CreateOrderItemRequest{{ProductID: 10, Quantity: 3}},
	}
	order, _, err := svc.CreateOrder(context.Background(), req)

	var sErr *InsufficientStockError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, 10, sErr.ProductID)
	assert.Equal(t, 0, sErr.Available)
	assert.Nil(t, order)
	assert.Empty(t, store.orders)
	assert.Empty(t, catalog.decrements)
}

func TestCreateOrder_ExactStockIsAccepted(t *testing.T) {
	svc, _, catalog, _ := newTestService()
	catalog.products[10] = &models.Product{ID: 10, Name: "Widget", Price: 10.00, StockQuantity: 4}

	req := models.CreateOrderRequest{
		CustomerID: 1,
		OrderItems: []models.CreateOrderItemRequest{{ProductID: 10, Quantity: 4}},
	}
	order, _, err := svc.CreateOrder(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 4, order.OrderItems[0].Quantity)
	assert.Equal(t, 40.00, order.TotalAmount)
}

func TestCreateOrder_FailureOnLaterLineAbortsEverything(t *testing.T) {
	svc, _, catalog, store := newTestService()
	catalog.products[10] = &models.Product{ID: 10, Name: "Widget", Price: 25.00, StockQuantity: 5}
	// Product 11 does not exist.

	req := models.CreateOrderRequest{
		CustomerID: 1,
		OrderItems: []models.CreateOrderItemRequest{
			{ProductID: 10, Quantity: 1},
			{ProductID: 11, Quantity: 1},
		},
	}
	order, _, err := svc.CreateOrder(context.Background(), req)

	var pErr *ProductNotFoundError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, 11, pErr.ProductID)
	assert.Nil(t, order)
	assert.Empty(t, store.orders, "no partial order may be persisted")
	assert.Empty(t, catalog.decrements, "no prior line's stock may be decremented")
}

func TestCreateOrder_InsufficientStockOnLaterLineAbortsEverything(t *testing.T) {
	svc, _, catalog, store := newTestService()
	catalog.products[10] = &models.Product{ID: 10, Name: "Widget", Price: 25.00, StockQuantity: 5}
	catalog.products[11] = &models.Product{ID: 11, Name: "Gadget", Price: 5.00, StockQuantity: 1}

	req := models.CreateOrderRequest{
		CustomerID: 1,
		OrderItems: []models.CreateOrderItemRequest{
			{ProductID: 10, Quantity: 2},
			{ProductID: 11, Quantity: 2},
		},
	}
	_, _, err := svc.CreateOrder(context.Background(), req)

	var sErr *InsufficientStockError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, 11, sErr.ProductID)
	assert.Equal(t, 1, sErr.Available)
	assert.Empty(t, store.orders)
	assert.Empty(t, catalog.decrements)
}

func TestCreateOrder_StoreFailureSkipsDecrements(t *testing.T) {
	svc, _, catalog, store := newTestService()
	catalog.products[10] = &models.Product{ID: 10, Name: "Widget", Price: 25.00, StockQuantity: 5}
	store.createErr = errors.New("connection reset")

	req := models.CreateOrderRequest{
		CustomerID: 1,
		OrderItems: []models.CreateOrderItemRequest{{ProductID: 10, Quantity: 1}},
	}
	order, _, err := svc.CreateOrder(context.Background(), req)

	var pErr *PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.Nil(t, order)
	assert.Empty(t, catalog.decrements, "mutation must only follow a successful commit")
}

func TestCreateOrder_DecrementFailureKeepsOrder(t *testing.T) {
	svc, _, catalog, store := newTestService()
	catalog.products[10] = &models.Product{ID: 10, Name: "Widget", Price: 25.00, StockQuantity: 5}
	catalog.products[11] = &models.Product{ID: 11, Name: "Gadget", Price: 5.00, StockQuantity: 5}
	catalog.decrementErrs[10] = errors.New("service unavailable")

	req := models.CreateOrderRequest{
		CustomerID: 1,
		OrderItems: []models.CreateOrderItemRequest{
			{ProductID: 10, Quantity: 2},
			{ProductID: 11, Quantity: 1},
		},
	}
	order, warnings, err := svc.CreateOrder(context.Background(), req)

	require.NoError(t, err, "a decrement failure is not a create failure")
	require.NotNil(t, order)
	require.Len(t, store.orders, 1)
	require.Len(t, warnings, 1)
	assert.Equal(t, 10, warnings[0].ProductID)
	assert.Equal(t, 2, warnings[0].Quantity)

	// Both decrements were attempted; the first one's failure did not
	// stop the second.
	assert.Equal(t, []decrement{
		{productID: 10, quantity: 2},
		{productID: 11, quantity: 1},
	}, catalog.decrements)

	// The committed order is retrievable with its original totals.
	stored, err := svc.OrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 55.00, stored.TotalAmount)
	assert.Len(t, stored.OrderItems, 2)
}

func TestCreateOrder_HundredLinesIsAccepted(t *testing.T) {
	svc, _, catalog, store := newTestService()
	for i := 1; i <= 100; i++ {
		catalog.products[i] = &models.Product{ID: i, Name: "P", Price: 1.00, StockQuantity: 10}
	}

	req := models.CreateOrderRequest{CustomerID: 1, OrderItems: manyItems(100)}
	order, warnings, err := svc.CreateOrder(context.Background(), req)

	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Len(t, order.OrderItems, 100)
	assert.Equal(t, 100.00, order.TotalAmount)
	assert.Len(t, store.orders, 1)
}

func TestDeleteOrder(t *testing.T) {
	svc, _, catalog, _ := newTestService()
	catalog.products[10] = &models.Product{ID: 10, Name: "Widget", Price: 25.00, StockQuantity: 5}

	req := models.CreateOrderRequest{
		CustomerID: 1,
		OrderItems: []models.CreateOrderItemRequest{{ProductID: 10, Quantity: 1}},
	}
	order, _, err := svc.CreateOrder(context.Background(), req)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteOrder(context.Background(), order.ID))

	stored, err := svc.OrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Nil(t, stored)
}
