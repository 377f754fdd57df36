package domain

import "time"

type ReportOutcome string

const (
	OutcomeVerified ReportOutcome = "verified"
	OutcomePending  ReportOutcome = "pending"
	OutcomeRejected ReportOutcome = "rejected"
)

// TrustUpdate is the result of scoring one report against the current container state.
type TrustUpdate struct {
	Accuracy   float64
	Diff       float64
	Outcome    ReportOutcome
	Delta      float64
	PriorTrust float64
	NewTrust   float64
}

// Represents a single citizen fill report.
// Reports are append-only: they are inserted once and never updated or deleted.
type CitizenReport struct {
	ReportID      int64
	UserID        int64
	ContainerID   int64
	EstimatedFill float64
	Accuracy      float64
	Diff          float64
	Outcome       ReportOutcome
	ActualFull    bool
	HasPhoto      bool
	Notes         string
	SubmittedAt   time.Time
}
