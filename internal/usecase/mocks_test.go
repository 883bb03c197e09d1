package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/orderhub-io/go-backend/internal/domain"
	"github.com/orderhub-io/go-backend/pkg/e"
)

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any)            {}
func (nopLogger) Infof(format string, args ...any)             {}
func (nopLogger) Warnf(format string, args ...any)             {}
func (nopLogger) Errorf(err error, format string, args ...any) {}

// fakeTx подменяет pgx.Tx и считает коммиты и откаты.
type fakeTx struct {
	pgx.Tx
	mu        sync.Mutex
	commits   int
	rollbacks int
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits++
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rollbacks++
	return nil
}

func (f *fakeTx) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commits, f.rollbacks
}

type fakeDB struct {
	tx *fakeTx
}

func newFakeDB() *fakeDB {
	return &fakeDB{tx: &fakeTx{}}
}

func (f *fakeDB) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	return f.tx, nil
}

// memProductRepo — потокобезопасный репозиторий товаров в памяти.
type memProductRepo struct {
	mu          sync.Mutex
	products    map[int64]*domain.Product
	nextID      int64
	lockedIDs   []int64
	withOrders  map[int64]bool
	decremented map[int64]int64
	incremented map[int64]int64
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{
		products:    make(map[int64]*domain.Product),
		nextID:      1,
		withOrders:  make(map[int64]bool),
		decremented: make(map[int64]int64),
		incremented: make(map[int64]int64),
	}
}

func (m *memProductRepo) add(name string, price, stock int64) *domain.Product {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := domain.NewProduct(name, price, stock)
	p.ID = m.nextID
	p.CreatedAt = time.Now()
	m.nextID++
	m.products[p.ID] = p

	cp := *p
	return &cp
}

func (m *memProductRepo) stock(id int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

func (m *memProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *product
	cp.ID = m.nextID
	cp.CreatedAt = time.Now()
	m.nextID++
	m.products[cp.ID] = &cp

	out := cp
	return &out, nil
}

func (m *memProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.products[product.ID]
	if !ok {
		return nil, e.ErrProductNotFound
	}

	stored.Name = product.Name
	stored.Price = product.Price
	stored.Stock = product.Stock
	now := time.Now()
	stored.UpdatedAt = &now

	cp := *stored
	return &cp, nil
}

func (m *memProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}

	cp := *stored
	return &cp, nil
}

func (m *memProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}

	return out, nil
}

func (m *memProductRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.products[id]
	if !ok {
		return nil, e.ErrProductNotFound
	}
	m.lockedIDs = append(m.lockedIDs, id)

	cp := *stored
	return &cp, nil
}

func (m *memProductRepo) DecrementStock(ctx context.Context, id int64, qty int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.products[id]
	if !ok {
		return e.ErrProductNotFound
	}
	if stored.Stock < qty {
		return e.NewInsufficientStockError(stored.Name, stored.Stock, qty)
	}

	stored.Stock -= qty
	m.decremented[id] += qty
	return nil
}

func (m *memProductRepo) IncrementStock(ctx context.Context, id int64, qty int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.products[id]
	if !ok {
		return e.ErrProductNotFound
	}

	stored.Stock += qty
	m.incremented[id] += qty
	return nil
}

func (m *memProductRepo) HasOrderItems(ctx context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.withOrders[id], nil
}

func (m *memProductRepo) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[id]; !ok {
		return e.ErrProductNotFound
	}
	if m.withOrders[id] {
		return e.ErrProductHasOrders
	}

	delete(m.products, id)
	return nil
}

// memOrderRepo — потокобезопасный репозиторий заказов в памяти.
// Как и настоящий репозиторий, GetByID отдаёт позиции с текущим
// состоянием товаров.
type memOrderRepo struct {
	mu       sync.Mutex
	orders   map[int64]*domain.Order
	nextID   int64
	products *memProductRepo
}

func newMemOrderRepo(products *memProductRepo) *memOrderRepo {
	return &memOrderRepo{
		orders:   make(map[int64]*domain.Order),
		nextID:   1,
		products: products,
	}
}

func cloneOrder(order *domain.Order) *domain.Order {
	cp := *order
	cp.Items = make([]domain.OrderItem, len(order.Items))
	copy(cp.Items, order.Items)
	return &cp
}

func (m *memOrderRepo) seed(order *domain.Order) *domain.Order {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := cloneOrder(order)
	cp.ID = m.nextID
	cp.CreatedAt = time.Now()
	m.nextID++
	for i := range cp.Items {
		cp.Items[i].ID = int64(i + 1)
		cp.Items[i].OrderID = cp.ID
	}
	m.orders[cp.ID] = cp

	return cloneOrder(cp)
}

func (m *memOrderRepo) status(id int64) domain.OrderStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.orders[id].Status
}

func (m *memOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.orders[id]
	if !ok || stored.DeletedAt != nil {
		return nil, e.ErrOrderNotFound
	}

	order := cloneOrder(stored)
	for i := range order.Items {
		if product, err := m.products.GetByID(ctx, order.Items[i].ProductID); err == nil {
			order.Items[i].Product = product
		}
	}

	return order, nil
}

func (m *memOrderRepo) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := cloneOrder(order)
	cp.ID = m.nextID
	cp.CreatedAt = time.Now()
	m.nextID++
	for i := range cp.Items {
		cp.Items[i].ID = int64(i + 1)
		cp.Items[i].OrderID = cp.ID
	}
	m.orders[cp.ID] = cloneOrder(cp)

	return cp, nil
}

func (m *memOrderRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.orders[id]
	if !ok || stored.DeletedAt != nil {
		return nil, e.ErrOrderNotFound
	}

	return cloneOrder(stored), nil
}

func (m *memOrderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.orders[id]
	if !ok {
		return e.ErrOrderNotFound
	}

	stored.Status = status
	now := time.Now()
	stored.UpdatedAt = &now
	return nil
}

// memOutboxRepo копит созданные события в памяти.
type memOutboxRepo struct {
	mu        sync.Mutex
	events    []*OutboxEvent
	processed []int64
	nextID    int64
}

func newMemOutboxRepo() *memOutboxRepo {
	return &memOutboxRepo{nextID: 1}
}

func (m *memOutboxRepo) created() []*OutboxEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

func (m *memOutboxRepo) Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *event
	cp.ID = m.nextID
	m.nextID++
	m.events = append(m.events, &cp)

	out := cp
	return &out, nil
}

func (m *memOutboxRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*OutboxEvent, 0, limit)
	for _, ev := range m.events {
		if len(out) == limit {
			break
		}
		if ev.Status != Pending {
			continue
		}
		ev.Status = Processing
		cp := *ev
		out = append(out, &cp)
	}

	return out, nil
}

func (m *memOutboxRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ev := range m.events {
		if ev.ID == id && ev.Status == Processing {
			ev.Status = Processed
			now := time.Now()
			ev.ProcessedAt = &now
			m.processed = append(m.processed, id)
		}
	}

	return nil
}

// memCacheRepo фиксирует обращения к кэшу товаров.
type memCacheRepo struct {
	mu       sync.Mutex
	store    map[int64]ProductInfo
	setCalls int
	delCalls [][]int64
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{store: make(map[int64]ProductInfo)}
}

func (m *memCacheRepo) deleted() [][]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]int64, len(m.delCalls))
	copy(out, m.delCalls)
	return out
}

func (m *memCacheRepo) GetProducts(ctx context.Context, ids []int64) (map[int64]ProductInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[int64]ProductInfo)
	for _, id := range ids {
		if info, ok := m.store[id]; ok {
			out[id] = info
		}
	}

	return out, nil
}

func (m *memCacheRepo) SetProducts(ctx context.Context, products []ProductInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, info := range products {
		m.store[info.ID] = info
	}
	m.setCalls++

	return nil
}

func (m *memCacheRepo) DeleteProducts(ctx context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		delete(m.store, id)
	}
	m.delCalls = append(m.delCalls, ids)

	return nil
}
