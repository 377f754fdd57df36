package dto

import "time"

type PredictionResponse struct {
	ContainerID     int64     `json:"container_id"`
	ContainerType   string    `json:"container_type"`
	CapacityLiters  int       `json:"capacity_liters"`
	CurrentFill     float64   `json:"current_fill_level"`
	Neighborhood    string    `json:"neighborhood"`
	Population      int       `json:"population"`
	FillProbability float64   `json:"fill_probability"`
	IsFull          bool      `json:"is_full"`
	Confidence      float64   `json:"confidence"`
	ModelVersion    int       `json:"model_version"`
	PredictedAt     time.Time `json:"predicted_at"`
}

type ModelResponse struct {
	Version        int       `json:"version"`
	FeatureColumns []string  `json:"feature_columns"`
	TrainAccuracy  float64   `json:"train_accuracy"`
	TestAccuracy   float64   `json:"test_accuracy"`
	SampleCount    int       `json:"sample_count"`
	TrainedAt      time.Time `json:"trained_at"`
}
