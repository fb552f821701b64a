package employee

import "time"

var BirthdayWithin = birthdayWithin

func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}
