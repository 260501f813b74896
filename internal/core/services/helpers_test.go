package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"bloodbank-api/internal/adapters/cache"
	"bloodbank-api/internal/adapters/persistence/memory"
	"bloodbank-api/internal/adapters/persistence/repositories"
	"bloodbank-api/internal/core/domain"
	"bloodbank-api/internal/core/stock"

	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newTestStore() *repositories.Store {
	return memory.NewStoreWithClock(clock)
}

// fakeKV is an in-process cache.KV
type fakeKV struct {
	mu      sync.Mutex
	data    map[string]string
	gets    int
	deletes int
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	v, ok := f.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeKV) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

// recordingNotifier captures every notification
type recordingNotifier struct {
	mu          sync.Mutex
	newRequests []domain.HospitalRequest
	statuses    []domain.RequestStatus
	alerts      []stock.Stats
}

func (n *recordingNotifier) NotifyNewRequest(ctx context.Context, req *domain.HospitalRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newRequests = append(n.newRequests, *req)
}

func (n *recordingNotifier) NotifyRequestStatus(ctx context.Context, req *domain.HospitalRequest) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, req.Status)
}

func (n *recordingNotifier) NotifyStockAlert(ctx context.Context, stats *stock.Stats) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, *stats)
}

func newTestInventory(store *repositories.Store, kv cache.KV) *InventoryService {
	svc := NewInventoryService(store.Lots, store.Transactions, kv, time.Minute, zap.NewNop())
	svc.now = clock
	return svc
}

// seedLot stores an available lot directly, bypassing intake
func seedLot(store *repositories.Store, bt domain.BloodType, units int, expiry time.Time) domain.BloodLot {
	lot := domain.BloodLot{
		BloodType:    bt,
		Component:    domain.WholeBlood,
		Units:        units,
		Location:     domain.LocationMainStorage,
		DonationDate: expiry.AddDate(0, 0, -stock.ShelfLifeDays),
		ExpiryDate:   expiry,
		Status:       domain.LotAvailable,
		Source:       "Test Drive",
	}
	if err := store.Lots.Create(context.Background(), &lot); err != nil {
		panic(err)
	}
	return lot
}

// pausingLots hands out its first ListAvailable snapshot only after release is closed
type pausingLots struct {
	repositories.LotRepository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newPausingLots(inner repositories.LotRepository) *pausingLots {
	return &pausingLots{LotRepository: inner, entered: make(chan struct{}), release: make(chan struct{})}
}

func (p *pausingLots) ListAvailable(ctx context.Context) ([]domain.BloodLot, error) {
	lots, err := p.LotRepository.ListAvailable(ctx)
	p.once.Do(func() {
		close(p.entered)
		<-p.release
	})
	return lots, err
}

// downLots fails every write the way a lost database connection does
type downLots struct {
	repositories.LotRepository
	failReads bool
}

func backendDown(op string) error {
	return &domain.BackendError{Op: op, Err: errors.New("connection refused")}
}

func (d *downLots) ListAvailable(ctx context.Context) ([]domain.BloodLot, error) {
	if d.failReads {
		return nil, backendDown("list available lots")
	}
	return d.LotRepository.ListAvailable(ctx)
}

func (d *downLots) CommitIntake(ctx context.Context, lot *domain.BloodLot, tx *domain.Transaction) error {
	return backendDown("commit intake")
}

func (d *downLots) CommitAllocation(ctx context.Context, updated, depleted []domain.BloodLot, tx *domain.Transaction) error {
	return backendDown("commit allocation")
}
