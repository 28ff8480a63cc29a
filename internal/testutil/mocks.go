package testutil

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/bimakw/wager-analytics/internal/domain/entities"
	"github.com/bimakw/wager-analytics/internal/domain/repositories"
)

// Ensure MockRecordRepository implements BetRecordRepository
var _ repositories.BetRecordRepository = (*MockRecordRepository)(nil)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockRecordRepository is an in-memory implementation of BetRecordRepository
type MockRecordRepository struct {
	mu      sync.RWMutex
	batches []entities.Batch
	records map[string][]entities.RawRecord

	// Function hooks for custom behavior
	VersionFunc     func(ctx context.Context) (string, error)
	SnapshotFunc    func(ctx context.Context) (*entities.Snapshot, error)
	InsertBatchFunc func(ctx context.Context, batch *entities.Batch, rows []entities.RawRecord) error
	ListBatchesFunc func(ctx context.Context, limit int) ([]entities.Batch, error)

	// Call tracking
	Calls []MockCall
}

func NewMockRecordRepository() *MockRecordRepository {
	return &MockRecordRepository{
		batches: make([]entities.Batch, 0),
		records: make(map[string][]entities.RawRecord),
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockRecordRepository) track(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

func (m *MockRecordRepository) Version(ctx context.Context) (string, error) {
	m.track("Version")

	if m.VersionFunc != nil {
		return m.VersionFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versionLocked(), nil
}

func (m *MockRecordRepository) versionLocked() string {
	if len(m.batches) == 0 {
		return repositories.EmptyVersion
	}
	return m.batches[len(m.batches)-1].ID + "." + strconv.Itoa(len(m.batches))
}

func (m *MockRecordRepository) Snapshot(ctx context.Context) (*entities.Snapshot, error) {
	m.track("Snapshot")

	if m.SnapshotFunc != nil {
		return m.SnapshotFunc(ctx)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	// Newest batch wins for a repeated record id
	seen := make(map[string]bool)
	records := make([]entities.RawRecord, 0)
	for i := len(m.batches) - 1; i >= 0; i-- {
		for _, r := range m.records[m.batches[i].ID] {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			records = append(records, r)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	return &entities.Snapshot{Version: m.versionLocked(), Records: records}, nil
}

func (m *MockRecordRepository) InsertBatch(ctx context.Context, batch *entities.Batch, rows []entities.RawRecord) error {
	m.track("InsertBatch", batch, len(rows))

	if m.InsertBatchFunc != nil {
		return m.InsertBatchFunc(ctx, batch, rows)
	}

	batch.CreatedAt = time.Now()
	batch.RowCount = len(rows)
	m.storeBatch(*batch, rows)
	return nil
}

func (m *MockRecordRepository) ListBatches(ctx context.Context, limit int) ([]entities.Batch, error) {
	m.track("ListBatches", limit)

	if m.ListBatchesFunc != nil {
		return m.ListBatchesFunc(ctx, limit)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]entities.Batch, 0, limit)
	for i := len(m.batches) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, m.batches[i])
	}
	return result, nil
}

// AddBatch stores rows under a new batch with the given id
func (m *MockRecordRepository) AddBatch(id string, rows ...entities.RawRecord) {
	m.storeBatch(entities.Batch{
		ID:        id,
		Source:    "test",
		RowCount:  len(rows),
		CreatedAt: time.Now(),
	}, rows)
}

func (m *MockRecordRepository) storeBatch(batch entities.Batch, rows []entities.RawRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]entities.RawRecord, len(rows))
	copy(stored, rows)
	for i := range stored {
		stored[i].BatchID = batch.ID
	}
	m.batches = append(m.batches, batch)
	m.records[batch.ID] = stored
}

// CallCount returns how many times method was called
func (m *MockRecordRepository) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, c := range m.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Reset clears all stored data and calls
func (m *MockRecordRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = make([]entities.Batch, 0)
	m.records = make(map[string][]entities.RawRecord)
	m.Calls = make([]MockCall, 0)
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu sync.RWMutex

	Healthy bool
	Error   error
	Calls   []MockCall
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	var err error
	if !healthy {
		err = errors.New("health check failed")
	}
	return &MockHealthChecker{
		Healthy: healthy,
		Error:   err,
		Calls:   make([]MockCall, 0),
	}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: "HealthCheck", Args: nil})

	return m.Error
}

func (m *MockHealthChecker) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Healthy = healthy
	if healthy {
		m.Error = nil
	} else {
		m.Error = errors.New("health check failed")
	}
}
