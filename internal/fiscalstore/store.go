// Package fiscalstore remembers the last business premise and electronic
// device an entity fiscalized a document with, so forms can preselect them.
package fiscalstore

import (
	"context"
	"errors"
	"sync"
)

// ErrInvalidCombo is returned when storing a combo with a missing part
var ErrInvalidCombo = errors.New("fiscalstore: premise and device are both required")

// Combo is a business premise / electronic device pair
type Combo struct {
	BusinessPremiseName  string `json:"business_premise_name"`
	ElectronicDeviceName string `json:"electronic_device_name"`
}

func (c Combo) valid() bool {
	return c.BusinessPremiseName != "" && c.ElectronicDeviceName != ""
}

// Store is a key-value store of the last used combo per entity
type Store interface {
	// Get returns the combo for entityID and whether one was stored
	Get(ctx context.Context, entityID string) (Combo, bool, error)
	// Set records combo as the last one used by entityID
	Set(ctx context.Context, entityID string, combo Combo) error
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu     sync.RWMutex
	combos map[string]Combo
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{combos: make(map[string]Combo)}
}

func (s *MemoryStore) Get(_ context.Context, entityID string) (Combo, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.combos[entityID]
	return c, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, entityID string, combo Combo) error {
	if !combo.valid() {
		return ErrInvalidCombo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.combos[entityID] = combo
	return nil
}
