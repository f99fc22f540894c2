// Package cache holds short-lived computed views so repeated reads skip
// recomputation. Entries expire on a TTL and are purged on writes.
package cache

import (
	"log/slog"
	"time"
)

// Cache is the generic read-through surface handlers use.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Cleaner is implemented by caches that support expiry sweeps.
type Cleaner interface {
	CleanExpired() int
}

// Manager runs the periodic expiry sweep over registered caches.
type Manager struct {
	caches      []Cleaner
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

func (m *Manager) Register(c Cleaner) {
	m.caches = append(m.caches, c)
}

func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := 0
			for _, c := range m.caches {
				cleaned += c.CleanExpired()
			}
			if cleaned > 0 {
				slog.Debug("Cleaned expired cache entries", "count", cleaned)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop halts the sweep and waits for the goroutine to exit.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	<-m.cleanupDone
}
