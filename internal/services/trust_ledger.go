package services

import (
	"math"
	"waste-collection-service/internal/domain"
)

// Trust ledger tiers and deltas.
const (
	VerifiedAccuracy = 0.7
	PendingAccuracy  = 0.4

	VerifiedDelta = 0.05
	PendingDelta  = 0.01
	RejectedDelta = -0.03

	PhotoBonus          = 0.02
	PhotoBonusTrustCeil = 0.7
)

// EvaluateReport scores an estimate against the container's true fill level
// and computes the reporter's new trust score.
//
// Trust is floored at zero and has no upper bound. Updates are final: there is
// no correction path for a verification that later proves wrong.
func EvaluateReport(estimate, actual float64, hasPhoto bool, priorTrust float64) domain.TrustUpdate {
	diff := math.Abs(estimate - actual)
	accuracy := clamp(1-diff, 0, 1)

	outcome, delta := tierFor(accuracy)

	// Photo evidence only helps reporters who have not yet earned high trust.
	if hasPhoto && priorTrust < PhotoBonusTrustCeil {
		delta += PhotoBonus
	}

	return domain.TrustUpdate{
		Accuracy:   accuracy,
		Diff:       diff,
		Outcome:    outcome,
		Delta:      delta,
		PriorTrust: priorTrust,
		NewTrust:   math.Max(0, priorTrust+delta),
	}
}

func tierFor(accuracy float64) (domain.ReportOutcome, float64) {
	switch {
	case accuracy >= VerifiedAccuracy:
		return domain.OutcomeVerified, VerifiedDelta
	case accuracy >= PendingAccuracy:
		return domain.OutcomePending, PendingDelta
	default:
		return domain.OutcomeRejected, RejectedDelta
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
