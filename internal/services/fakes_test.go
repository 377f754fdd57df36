package services

import (
	"context"
	"fmt"
	"sync"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ports"
)

type fakeContainers struct {
	containers    []*domain.Container
	neighborhoods map[int64]*domain.Neighborhood
	stats         map[int64]domain.CollectionStats
	err           error
}

func (f *fakeContainers) GetContainer(_ context.Context, id int64) (*domain.Container, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.containers {
		if c.ContainerID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("%w: container %d", domain.ErrNotFound, id)
}

func (f *fakeContainers) GetNeighborhood(_ context.Context, id int64) (*domain.Neighborhood, error) {
	if n, ok := f.neighborhoods[id]; ok {
		return n, nil
	}
	return nil, fmt.Errorf("%w: neighborhood %d", domain.ErrNotFound, id)
}

func (f *fakeContainers) ListEligibleContainers(_ context.Context, minFill float64) ([]*domain.Container, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Container
	for _, c := range f.containers {
		if c.Status == domain.ContainerActive && c.Location != nil && c.FillLevel >= minFill {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContainers) ListFullContainers(ctx context.Context, minFill float64, _ int) ([]*domain.Container, error) {
	return f.ListEligibleContainers(ctx, minFill)
}

func (f *fakeContainers) ListActiveContainers(context.Context) ([]*domain.Container, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Container
	for _, c := range f.containers {
		if c.Status == domain.ContainerActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeContainers) GetCollectionStats(_ context.Context, id int64) (domain.CollectionStats, bool, error) {
	s, ok := f.stats[id]
	return s, ok, nil
}

type fakeVehicles struct {
	vehicles []*domain.Vehicle
	err      error
}

func (f *fakeVehicles) ListActiveVehicles(context.Context) ([]*domain.Vehicle, error) {
	return f.vehicles, f.err
}

type fakeTraining struct {
	mu       sync.Mutex
	count    int
	rows     []domain.TrainingRow
	listErr  error
	lists    int
	consumed []int
}

func (f *fakeTraining) VerifiedCount(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count, nil
}

func (f *fakeTraining) ConsumeVerified(_ context.Context, n int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.consumed = append(f.consumed, n)
	f.count = max(0, f.count-n)
	return nil
}

func (f *fakeTraining) ListTrainingRows(context.Context) ([]domain.TrainingRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	return f.rows, f.listErr
}

func (f *fakeTraining) add(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.count += n
}

type fakeModelStore struct {
	mu      sync.Mutex
	stored  *domain.ModelSnapshot
	saves   int
	saveErr error
}

func (f *fakeModelStore) Load(context.Context) (*domain.ModelSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stored == nil {
		return nil, domain.ErrNotFound
	}
	return f.stored, nil
}

func (f *fakeModelStore) Save(_ context.Context, s *domain.ModelSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.stored = s
	return nil
}

type publishedEvent struct {
	topic, key string
	payload    any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, topic, key string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, publishedEvent{topic: topic, key: key, payload: payload})
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.topic
	}
	return out
}

var _ ports.EventPublisher = (*fakePublisher)(nil)

// trainingRows builds n rows where large containers are full and the rest are not.
func trainingRows(n int) []domain.TrainingRow {
	rows := make([]domain.TrainingRow, n)
	for i := range rows {
		capacity, fill := 800, 0.3
		if i%2 == 0 {
			capacity, fill = 1100, 0.9
		}
		rows[i] = domain.TrainingRow{
			ContainerID:       int64(i + 1),
			Type:              domain.ContainerTypes[i%len(domain.ContainerTypes)],
			CapacityLiters:    capacity,
			FillLevel:         fill,
			PopulationDensity: 5000 + float64(i*100),
		}
	}
	return rows
}
