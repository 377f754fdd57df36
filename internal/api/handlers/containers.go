package handlers

import (
	"fmt"
	"net/http"
	"waste-collection-service/internal/api/dto"
	"waste-collection-service/internal/domain"
	"waste-collection-service/internal/ml"
	"waste-collection-service/internal/ports"

	"go.uber.org/zap"
)

type ContainerHandler struct {
	base
	Containers  ports.ContainerRepository
	Collections ports.CollectionStore
}

func NewContainerHandler(containers ports.ContainerRepository, collections ports.CollectionStore, logger *zap.Logger) *ContainerHandler {
	return &ContainerHandler{base: base{Logger: logger}, Containers: containers, Collections: collections}
}

// Full lists containers at or above the full threshold, fullest first.
func (h *ContainerHandler) Full(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r, 50, 500)
	if err != nil {
		h.fail(w, r, "full containers", err)
		return
	}

	containers, err := h.Containers.ListFullContainers(r.Context(), ml.FullThreshold, limit)
	if err != nil {
		h.fail(w, r, "full containers", err)
		return
	}

	res := dto.ListContainersResponse{
		Count:      len(containers),
		Containers: make([]dto.ContainerResponse, 0, len(containers)),
	}
	for _, c := range containers {
		res.Containers = append(res.Containers, containerResponse(c))
	}

	h.writeJSON(w, r, http.StatusOK, res)
}

// All lists every active container ordered by id.
func (h *ContainerHandler) All(w http.ResponseWriter, r *http.Request) {
	containers, err := h.Containers.ListActiveContainers(r.Context())
	if err != nil {
		h.fail(w, r, "all containers", err)
		return
	}

	res := dto.ListContainersResponse{
		Count:      len(containers),
		Containers: make([]dto.ContainerResponse, 0, len(containers)),
	}
	for _, c := range containers {
		res.Containers = append(res.Containers, containerResponse(c))
	}

	h.writeJSON(w, r, http.StatusOK, res)
}

// Map lists located active containers as map markers, fullest first.
func (h *ContainerHandler) Map(w http.ResponseWriter, r *http.Request) {
	containers, err := h.Containers.ListEligibleContainers(r.Context(), 0)
	if err != nil {
		h.fail(w, r, "container map", err)
		return
	}

	res := dto.ContainerMapResponse{
		Containers: make([]dto.MapContainerResponse, 0, len(containers)),
	}
	for _, c := range containers {
		if c.Location == nil {
			continue
		}
		res.Containers = append(res.Containers, dto.MapContainerResponse{
			ContainerID:      c.ContainerID,
			Type:             c.Type.String(),
			FillLevel:        c.FillLevel,
			Lat:              c.Location.Lat,
			Lng:              c.Location.Lon,
			CapacityLiters:   c.CapacityLiters,
			NeighborhoodID:   c.NeighborhoodID,
			LastCollectionAt: c.LastCollectionAt,
		})
	}
	res.Count = len(res.Containers)

	h.writeJSON(w, r, http.StatusOK, res)
}

// Collect records that a container was emptied.
func (h *ContainerHandler) Collect(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.fail(w, r, "record collection", err)
		return
	}

	var req dto.RecordCollectionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, "record collection", err)
		return
	}
	if req.TonnageCollected < 0 {
		h.fail(w, r, "record collection", fmt.Errorf("%w: tonnage_collected cannot be negative", domain.ErrValidation))
		return
	}

	ev := &domain.CollectionEvent{
		ContainerID:      id,
		VehicleID:        req.VehicleID,
		TonnageCollected: req.TonnageCollected,
	}
	if req.CollectedAt != nil {
		ev.CollectedAt = *req.CollectedAt
	}

	c, err := h.Collections.RecordCollection(r.Context(), ev)
	if err != nil {
		h.fail(w, r, "record collection", err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, dto.RecordCollectionResponse{
		EventID:         ev.EventID,
		FillLevelBefore: ev.FillLevelBefore,
		Container:       containerResponse(c),
	})
}

func containerResponse(c *domain.Container) dto.ContainerResponse {
	res := dto.ContainerResponse{
		ContainerID:      c.ContainerID,
		Type:             c.Type.String(),
		CapacityLiters:   c.CapacityLiters,
		FillLevel:        c.FillLevel,
		NeighborhoodID:   c.NeighborhoodID,
		LastCollectionAt: c.LastCollectionAt,
		Status:           string(c.Status),
	}
	if c.Location != nil {
		lat, lon := c.Location.Lat, c.Location.Lon
		res.Latitude, res.Longitude = &lat, &lon
	}
	return res
}
