package models

// BookingStats holds booking counts per status
type BookingStats struct {
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
	Total     int64 `json:"total"`
}

// Set stores the count for a single status.
func (s *BookingStats) Set(status BookingStatus, n int64) {
	switch status {
	case BookingStatusPending:
		s.Pending = n
	case BookingStatusConfirmed:
		s.Confirmed = n
	case BookingStatusCompleted:
		s.Completed = n
	case BookingStatusCancelled:
		s.Cancelled = n
	}
}
