package dto

import "time"

type ContainerResponse struct {
	ContainerID      int64      `json:"id"`
	Type             string     `json:"type"`
	CapacityLiters   int        `json:"capacity_liters"`
	FillLevel        float64    `json:"fill_level"`
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
	NeighborhoodID   int64      `json:"neighborhood_id"`
	LastCollectionAt *time.Time `json:"last_collection_date"`
	Status           string     `json:"status"`
}

type ListContainersResponse struct {
	Count      int                 `json:"count"`
	Containers []ContainerResponse `json:"containers"`
}

type RecordCollectionRequest struct {
	VehicleID        *int64     `json:"vehicle_id"`
	TonnageCollected float64    `json:"tonnage_collected"`
	CollectedAt      *time.Time `json:"collected_at"`
}

type RecordCollectionResponse struct {
	EventID         int64             `json:"event_id"`
	FillLevelBefore float64           `json:"fill_level_before"`
	Container       ContainerResponse `json:"container"`
}

// Map markers use short coordinate keys.
type MapContainerResponse struct {
	ContainerID      int64      `json:"id"`
	Type             string     `json:"type"`
	FillLevel        float64    `json:"fill_level"`
	Lat              float64    `json:"lat"`
	Lng              float64    `json:"lng"`
	CapacityLiters   int        `json:"capacity"`
	NeighborhoodID   int64      `json:"neighborhood_id"`
	LastCollectionAt *time.Time `json:"last_collection"`
}

type ContainerMapResponse struct {
	Count      int                    `json:"count"`
	Containers []MapContainerResponse `json:"containers"`
}
