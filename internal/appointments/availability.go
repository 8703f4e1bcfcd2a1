package appointments

// ComputeAvailability returns every appointment type with its slots reduced
// to those not taken by a reservation on date for that treatment. Slot order
// is preserved and types with nothing left are returned with an empty list.
// Inputs are not modified.
func ComputeAvailability(date string, types []AppointmentType, reservations []Reservation) []AppointmentType {
	booked := make(map[string]map[string]struct{})
	for _, r := range reservations {
		if r.Date != date {
			continue
		}
		slots, ok := booked[r.TreatmentName]
		if !ok {
			slots = make(map[string]struct{})
			booked[r.TreatmentName] = slots
		}
		slots[r.Slot] = struct{}{}
	}

	out := make([]AppointmentType, 0, len(types))
	for _, t := range types {
		taken := booked[t.Name]
		available := make([]string, 0, len(t.Slots))
		for _, slot := range t.Slots {
			if _, ok := taken[slot]; !ok {
				available = append(available, slot)
			}
		}
		out = append(out, AppointmentType{ID: t.ID, Name: t.Name, Slots: available})
	}
	return out
}
