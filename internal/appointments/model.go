package appointments

// AppointmentType is a bookable treatment with its fixed slot labels.
type AppointmentType struct {
	ID    string   `json:"_id,omitempty"`
	Name  string   `json:"name"`
	Slots []string `json:"slots"`
}

// Summary is the name-only projection served by GET /appointments.
type Summary struct {
	ID   string `json:"_id,omitempty"`
	Name string `json:"name"`
}

// Reservation is the part of a booking the availability engine reads.
type Reservation struct {
	TreatmentName string `json:"treatmentName"`
	Date          string `json:"date"`
	Slot          string `json:"slot"`
}
