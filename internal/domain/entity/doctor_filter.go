package entity

// DoctorFilter is a domain-level filter for searching doctors.
// Used by repository layer to avoid coupling with delivery DTOs.
type DoctorFilter struct {
	Name     string // ILIKE on name
	Location string // ILIKE on location
	Query    string // ILIKE on name OR location
	Limit    int    // 0 means no limit
}

func (f DoctorFilter) IsEmpty() bool {
	return f.Name == "" && f.Location == "" && f.Query == ""
}
