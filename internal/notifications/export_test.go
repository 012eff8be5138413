package notifications

import "time"

// SetNow pins the service clock in tests.
func (s *Service) SetNow(now func() time.Time) {
	s.now = now
}

// Differs exposes the candidate field diff for tests.
func (c Candidate) Differs(n *Notification) bool {
	return c.differs(n)
}
