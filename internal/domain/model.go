package domain

import "time"

// Classifier is a fitted binary classifier over a fixed feature ordering.
type Classifier interface {
	// PredictProba returns the positive-class probability for one feature vector.
	PredictProba(features []float64) float64
}

// ModelSnapshot is the active fill classifier plus the metadata needed to use it.
// A snapshot is replaced as a whole; it is never mutated after publication.
type ModelSnapshot struct {
	Version        int
	Classifier     Classifier
	FeatureColumns []string
	TrainAccuracy  float64
	TestAccuracy   float64
	SampleCount    int
	TrainedAt      time.Time
}

// TrainingRow is one active container joined with its neighborhood density
// and collection history.
type TrainingRow struct {
	ContainerID       int64
	Type              ContainerType
	CapacityLiters    int
	FillLevel         float64
	PopulationDensity float64
	Stats             CollectionStats
	HasHistory        bool
}

// Prediction is the classifier's view of one container.
type Prediction struct {
	Container       *Container
	Neighborhood    *Neighborhood
	FillProbability float64
	IsFull          bool
	Confidence      float64
	ModelVersion    int
	PredictedAt     time.Time
}
