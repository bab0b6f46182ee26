package entity

// Account roles carried in access tokens.
const (
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// NormalizeRole maps anything that is not "doctor" to the patient role.
func NormalizeRole(role string) string {
	if role == RoleDoctor {
		return RoleDoctor
	}
	return RolePatient
}
