// Package registry keeps the in-memory set of currently visible peers.
package registry

import (
	"sync"

	"lanbeam/internal/models"
)

// Registry is an insertion-ordered device set keyed by (ip, port).
// Only the discovery engine writes it; every mutation notifies
// subscribers with a snapshot of the full list.
type Registry struct {
	mu      sync.RWMutex
	order   []string
	devices map[string]models.DeviceInfo
	subs    []func([]models.DeviceInfo)
}

func New() *Registry {
	return &Registry{
		devices: make(map[string]models.DeviceInfo),
	}
}

// Subscribe registers fn to be called with the current device list after
// every mutation. Subscriptions cannot be removed; a registry lives as
// long as its subscribers.
func (r *Registry) Subscribe(fn func([]models.DeviceInfo)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subs = append(r.subs, fn)
}

// Add inserts d unless a device with the same (ip, port) is already
// present. Duplicates are a no-op: first write wins, attributes are not
// merged.
func (r *Registry) Add(d models.DeviceInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := d.Key()
	if _, exists := r.devices[key]; exists {
		return
	}

	r.devices[key] = d
	r.order = append(r.order, key)
	r.notifyLocked()
}

// Remove deletes any entry matching the (ip, port) of d.
func (r *Registry) Remove(d models.DeviceInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := d.Key()
	if _, exists := r.devices[key]; !exists {
		return
	}

	delete(r.devices, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.notifyLocked()
}

// Clear empties the registry. Safe to call on an already-empty registry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.devices) == 0 {
		return
	}

	r.order = nil
	r.devices = make(map[string]models.DeviceInfo)
	r.notifyLocked()
}

// Devices returns the devices in insertion order.
func (r *Registry) Devices() []models.DeviceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.snapshotLocked()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.devices)
}

// notifyLocked runs subscribers while still holding the lock, so a
// subscriber never observes a list older than the mutation it was
// notified for.
func (r *Registry) notifyLocked() {
	snapshot := r.snapshotLocked()
	for _, fn := range r.subs {
		fn(snapshot)
	}
}

func (r *Registry) snapshotLocked() []models.DeviceInfo {
	out := make([]models.DeviceInfo, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.devices[key])
	}
	return out
}
