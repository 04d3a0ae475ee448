package gateway

import (
	"sync"
	"time"
)

// StatusCache holds the last-observed gateway connection state. It is filled
// once at startup and refreshed whenever a status or connect call runs. The
// cache is informational only: dispatch decisions always ask the gateway
// live, never this cache.
type StatusCache struct {
	mu        sync.RWMutex
	connected bool
	phone     string
	checkedAt time.Time
}

func NewStatusCache() *StatusCache {
	return &StatusCache{}
}

func (s *StatusCache) Update(st StatusResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = st.Ready
	s.phone = st.Phone
	s.checkedAt = time.Now()
}

func (s *StatusCache) Snapshot() (connected bool, phone string, checkedAt time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected, s.phone, s.checkedAt
}
