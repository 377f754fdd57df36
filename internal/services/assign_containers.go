package services

import (
	"errors"
	"slices"
	"waste-collection-service/internal/domain"
)

// NeighborhoodGroup is the unit of vehicle assignment.
type NeighborhoodGroup struct {
	NeighborhoodID int64
	Containers     []*domain.Container
}

// GroupByNeighborhood clusters containers by neighborhood and orders the
// clusters largest first. Ties keep first-appearance order, and containers
// keep their input order inside each group.
func GroupByNeighborhood(containers []*domain.Container) []NeighborhoodGroup {
	index := make(map[int64]int)
	groups := make([]NeighborhoodGroup, 0)

	for _, c := range containers {
		i, ok := index[c.NeighborhoodID]
		if !ok {
			i = len(groups)
			index[c.NeighborhoodID] = i
			groups = append(groups, NeighborhoodGroup{NeighborhoodID: c.NeighborhoodID})
		}
		groups[i].Containers = append(groups[i].Containers, c)
	}

	slices.SortStableFunc(groups, func(a, b NeighborhoodGroup) int {
		return len(b.Containers) - len(a.Containers)
	})

	return groups
}

// AssignRoundRobin hands whole neighborhood groups to vehicles in list order.
//
// The cursor advances once per group regardless of its size, so vehicles are
// balanced by group count rather than container count. This keeps each
// vehicle inside a few neighborhoods without solving a full VRP.
func AssignRoundRobin(vehicles []*domain.Vehicle, groups []NeighborhoodGroup) error {
	if len(vehicles) == 0 {
		return errors.New("assign containers: vehicle list must not be empty")
	}

	for i, g := range groups {
		vehicles[i%len(vehicles)].Load(g.Containers)
	}

	return nil
}
