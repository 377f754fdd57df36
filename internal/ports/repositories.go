package ports

import (
	"context"
	"time"
	"waste-collection-service/internal/domain"
)

// Port: read access to collection points and their neighborhoods.
type ContainerRepository interface {
	GetContainer(ctx context.Context, id int64) (*domain.Container, error)
	GetNeighborhood(ctx context.Context, id int64) (*domain.Neighborhood, error)
	// Active containers at or above minFill with known coordinates,
	// ordered by fill level descending, then neighborhood.
	ListEligibleContainers(ctx context.Context, minFill float64) ([]*domain.Container, error)
	// Active containers at or above minFill, regardless of coordinates.
	ListFullContainers(ctx context.Context, minFill float64, limit int) ([]*domain.Container, error)
	// Every active container ordered by id.
	ListActiveContainers(ctx context.Context) ([]*domain.Container, error)
	GetCollectionStats(ctx context.Context, containerID int64) (domain.CollectionStats, bool, error)
}

// Port: reporter lookups.
type UserRepository interface {
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	// Users with at least one report ordered by trust score, then report count.
	Leaderboard(ctx context.Context, limit int) ([]*domain.User, error)
}

// Port: fleet reference data.
type VehicleRepository interface {
	// Active vehicles ordered by id.
	ListActiveVehicles(ctx context.Context) ([]*domain.Vehicle, error)
}

// ReportTx is the view of the store inside one report transaction.
// Lock* reads hold row locks (where the dialect supports them) until commit.
type ReportTx interface {
	LockUser(ctx context.Context, id int64) (*domain.User, error)
	LockContainer(ctx context.Context, id int64) (*domain.Container, error)
	InsertReport(ctx context.Context, r *domain.CitizenReport) (int64, error)
	UpdateUserTrust(ctx context.Context, u *domain.User) error
	UpdateContainerFill(ctx context.Context, c *domain.Container) error
	// IncrementVerified bumps the durable verified-report counter and returns the new value.
	IncrementVerified(ctx context.Context) (int, error)
}

// Port: the report write path.
type ReportStore interface {
	// WithReportTx runs fn in a single transaction. If fn returns an error
	// nothing it wrote is kept.
	WithReportTx(ctx context.Context, fn func(tx ReportTx) error) error
}

// Port: collection events emptying containers.
type CollectionStore interface {
	// RecordCollection logs the event and resets the container to empty, atomically.
	RecordCollection(ctx context.Context, ev *domain.CollectionEvent) (*domain.Container, error)
}

// Port: durable verified-report counter and training data.
type TrainingStore interface {
	VerifiedCount(ctx context.Context) (int, error)
	// ConsumeVerified subtracts n from the counter, never going below zero.
	ConsumeVerified(ctx context.Context, n int) error
	ListTrainingRows(ctx context.Context) ([]domain.TrainingRow, error)
}

// Port: read-only aggregates behind the dashboard.
type StatsRepository interface {
	// Daily counters cover [from, to).
	DashboardStats(ctx context.Context, from, to time.Time, fullThreshold float64) (domain.DashboardStats, error)
	// Most recent months first.
	ListMonthlyTonnage(ctx context.Context, limit int) ([]domain.MonthlyTonnage, error)
}
