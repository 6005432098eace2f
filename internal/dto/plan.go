package dto

// PlanRequest captures POST /students/:studentKey/plan payload. A zero
// semester count falls back to the default horizon of two semesters.
type PlanRequest struct {
	Semesters  int     `json:"semesters"`
	MaxCredits float64 `json:"maxCredits,omitempty"`
	Velocity   float64 `json:"velocity,omitempty"`
}
