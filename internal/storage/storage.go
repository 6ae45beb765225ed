package storage

import (
	"errors"
	"sync"

	"github.com/grcstudio/transport-planner/internal/planner"
)

var (
	// ErrInvalidLimits indicates the provided packing limits violate validation rules.
	ErrInvalidLimits = errors.New("packing limits must all be positive numbers")
)

// Storage provides access to the capacity limits used by the planner.
type Storage interface {
	GetLimits() (planner.Limits, error)
	SetLimits(limits planner.Limits) error
}

// MemoryStorage keeps packing limits in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu     sync.RWMutex
	limits planner.Limits
}

// NewMemoryStorage initialises storage with the default bed and truck limits.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		limits: planner.DefaultLimits(),
	}
}

// GetLimits returns the currently configured packing limits.
func (s *MemoryStorage) GetLimits() (planner.Limits, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.limits, nil
}

// SetLimits validates and stores the provided packing limits.
func (s *MemoryStorage) SetLimits(limits planner.Limits) error {
	if err := validateLimits(limits); err != nil {
		return err
	}

	s.mu.Lock()
	s.limits = limits
	s.mu.Unlock()

	return nil
}

func validateLimits(limits planner.Limits) error {
	if limits.BedWidth <= 0 || limits.BedWeightLimit <= 0 ||
		limits.TruckMaxLength <= 0 || limits.TruckWeightLimit <= 0 {
		return ErrInvalidLimits
	}
	return nil
}
