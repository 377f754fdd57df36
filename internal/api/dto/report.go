package dto

// Fill level is a percentage (0-100).
type SubmitReportRequest struct {
	UserID      int64    `json:"user_id"`
	ContainerID int64    `json:"container_id"`
	FillLevel   *float64 `json:"fill_level"`
	Notes       string   `json:"notes"`
	HasPhoto    bool     `json:"has_photo"`
}

type SubmitReportResponse struct {
	Success          bool    `json:"success"`
	ReportID         int64   `json:"report_id"`
	ReportStatus     string  `json:"report_status"`
	Accuracy         float64 `json:"accuracy"`
	TrustScore       float64 `json:"trust_score"`
	TrustChange      float64 `json:"trust_change"`
	TotalReports     int     `json:"total_reports"`
	ContainerUpdated bool    `json:"container_updated"`
	ModelUpdated     bool    `json:"model_updated"`
}
