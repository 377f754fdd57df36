package domain

const InitialTrustScore = 0.5

// Represents a citizen reporter and their reliability record.
type User struct {
	UserID          int64
	Name            string
	TrustScore      float64
	TotalReports    int
	AccurateReports int
}

// ApplyTrust records the outcome of one report against the user.
// The new score is computed by the trust ledger and is never negative.
func (u *User) ApplyTrust(update TrustUpdate) {
	u.TrustScore = update.NewTrust
	u.TotalReports++
	if update.Outcome == OutcomeVerified {
		u.AccurateReports++
	}
}

// AccuracyRate returns the share of verified reports as a percentage.
func (u *User) AccuracyRate() float64 {
	if u.TotalReports == 0 {
		return 0
	}
	return float64(u.AccurateReports) / float64(u.TotalReports) * 100
}
