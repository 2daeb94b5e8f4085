package cache

import "time"

// SetNowFunc replaces the service clock for tests.
func (s *Service) SetNowFunc(now func() time.Time) {
	s.now = now
}
