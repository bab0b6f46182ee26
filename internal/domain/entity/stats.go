package entity

// SiteStats are the counters shown on the home page.
type SiteStats struct {
	Doctors      int64
	Patients     int64
	Reservations int64
}
