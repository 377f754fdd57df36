package dto

type UserStatsResponse struct {
	UserID          int64   `json:"user_id"`
	Name            string  `json:"name"`
	TrustScore      float64 `json:"trust_score"`
	TotalReports    int     `json:"total_reports"`
	AccurateReports int     `json:"accurate_reports"`
	AccuracyRate    float64 `json:"accuracy_rate"`
}

type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	UserID       int64   `json:"user_id"`
	Name         string  `json:"name"`
	TrustScore   float64 `json:"trust_score"`
	TotalReports int     `json:"total_reports"`
}

type LeaderboardResponse struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}
