package bookings

import (
	"encoding/json"

	"github.com/wolfman30/doctors-portal/internal/store"
)

// Booking is a patient's reservation of one slot of one treatment on one date.
// TreatmentName matches an appointment type by value; the slot is not checked
// against that type's slot list. Fields the client sends beyond the typed ones
// are kept in Extra and stored with the booking.
type Booking struct {
	ID            string `json:"_id,omitempty"`
	TreatmentName string `json:"treatmentName" validate:"required"`
	PatientName   string `json:"patientName" validate:"required"`
	PatientEmail  string `json:"patientEmail" validate:"required"`
	Date          string `json:"date" validate:"required"`
	Slot          string `json:"slot" validate:"required"`

	Extra store.Document `json:"-"`
}

var bookingKeys = map[string]struct{}{
	"_id": {}, "treatmentName": {}, "patientName": {}, "patientEmail": {}, "date": {}, "slot": {},
}

// bookingFields has Booking's layout without its JSON methods.
type bookingFields Booking

func (b *Booking) UnmarshalJSON(data []byte) error {
	var fields bookingFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	extra := store.Document{}
	for k, v := range all {
		if _, known := bookingKeys[k]; !known {
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		fields.Extra = extra
	}
	*b = Booking(fields)
	return nil
}

func (b Booking) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(bookingFields(b))
	if err != nil || len(b.Extra) == 0 {
		return raw, err
	}
	out := map[string]any{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	for k, v := range b.Extra {
		if _, known := bookingKeys[k]; !known {
			out[k] = v
		}
	}
	return json.Marshal(out)
}

// Result is the POST /booking body. Duplicates carry the existing booking,
// inserts carry the store's insertion result.
type Result struct {
	Success bool                `json:"success"`
	Booking *Booking            `json:"booking,omitempty"`
	Result  *store.InsertResult `json:"result,omitempty"`
}
