package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrValidation       = errors.New("validation error")
	ErrInsufficientData = errors.New("insufficient training data")
	ErrExternalService  = errors.New("external service failure")
	ErrModelUnavailable = errors.New("no active model")

	// ErrNoEligibleEntities is the parent of the two route-assignment preconditions.
	ErrNoEligibleEntities   = errors.New("no eligible entities")
	ErrNoActiveVehicles     = fmt.Errorf("%w: no active vehicles", ErrNoEligibleEntities)
	ErrNoEligibleContainers = fmt.Errorf("%w: no eligible containers", ErrNoEligibleEntities)
)
