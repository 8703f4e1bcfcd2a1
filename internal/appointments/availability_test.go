package appointments

import (
	"math/rand"
	"reflect"
	"testing"
)

func cleaning() AppointmentType {
	return AppointmentType{ID: "t1", Name: "Cleaning", Slots: []string{"9am", "10am", "11am"}}
}

func TestComputeAvailability(t *testing.T) {
	booking := Reservation{TreatmentName: "Cleaning", Date: "Nov 23, 2022", Slot: "10am"}

	tests := []struct {
		name         string
		date         string
		types        []AppointmentType
		reservations []Reservation
		want         []AppointmentType
	}{
		{
			name:         "booked slot removed on its date",
			date:         "Nov 23, 2022",
			types:        []AppointmentType{cleaning()},
			reservations: []Reservation{booking},
			want:         []AppointmentType{{ID: "t1", Name: "Cleaning", Slots: []string{"9am", "11am"}}},
		},
		{
			name:         "other dates keep every slot",
			date:         "Nov 24, 2022",
			types:        []AppointmentType{cleaning()},
			reservations: []Reservation{booking},
			want:         []AppointmentType{{ID: "t1", Name: "Cleaning", Slots: []string{"9am", "10am", "11am"}}},
		},
		{
			name:  "bookings for other treatments ignored",
			date:  "Nov 23, 2022",
			types: []AppointmentType{cleaning(), {Name: "Whitening", Slots: []string{"10am"}}},
			reservations: []Reservation{
				{TreatmentName: "Whitening", Date: "Nov 23, 2022", Slot: "10am"},
			},
			want: []AppointmentType{
				{ID: "t1", Name: "Cleaning", Slots: []string{"9am", "10am", "11am"}},
				{Name: "Whitening", Slots: []string{}},
			},
		},
		{
			name:  "fully booked type still returned",
			date:  "d",
			types: []AppointmentType{{Name: "X", Slots: []string{"a", "b"}}},
			reservations: []Reservation{
				{TreatmentName: "X", Date: "d", Slot: "a"},
				{TreatmentName: "X", Date: "d", Slot: "b"},
				{TreatmentName: "X", Date: "d", Slot: "b"},
			},
			want: []AppointmentType{{Name: "X", Slots: []string{}}},
		},
		{
			name:         "unknown slot labels are harmless",
			date:         "d",
			types:        []AppointmentType{{Name: "X", Slots: []string{"a"}}},
			reservations: []Reservation{{TreatmentName: "X", Date: "d", Slot: "zz"}},
			want:         []AppointmentType{{Name: "X", Slots: []string{"a"}}},
		},
		{
			name:  "no types",
			date:  "d",
			types: nil,
			want:  []AppointmentType{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeAvailability(tt.date, tt.types, tt.reservations)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeAvailabilityDoesNotMutateInputs(t *testing.T) {
	types := []AppointmentType{cleaning()}
	reservations := []Reservation{{TreatmentName: "Cleaning", Date: "d", Slot: "9am"}}

	first := ComputeAvailability("d", types, reservations)
	second := ComputeAvailability("d", types, reservations)

	if !reflect.DeepEqual(types[0], cleaning()) {
		t.Fatalf("input mutated: %+v", types[0])
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated calls differ: %+v vs %+v", first, second)
	}
	first[0].Slots[0] = "changed"
	if types[0].Slots[1] != "10am" || second[0].Slots[0] != "10am" {
		t.Fatalf("results share backing arrays")
	}
}

// Available slots equal the type's slots minus the booked set, in order.
func TestComputeAvailabilitySetDifference(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	labels := []string{"08:00 AM", "09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM", "01:00 PM"}
	names := []string{"Cleaning", "Whitening", "Braces"}
	dates := []string{"Nov 23, 2022", "Nov 24, 2022"}

	for iter := 0; iter < 200; iter++ {
		var types []AppointmentType
		for _, name := range names {
			var slots []string
			for _, l := range labels {
				if rng.Intn(2) == 0 {
					slots = append(slots, l)
				}
			}
			types = append(types, AppointmentType{Name: name, Slots: slots})
		}
		var reservations []Reservation
		for i := rng.Intn(10); i > 0; i-- {
			reservations = append(reservations, Reservation{
				TreatmentName: names[rng.Intn(len(names))],
				Date:          dates[rng.Intn(len(dates))],
				Slot:          labels[rng.Intn(len(labels))],
			})
		}
		date := dates[rng.Intn(len(dates))]

		got := ComputeAvailability(date, types, reservations)
		if len(got) != len(types) {
			t.Fatalf("iteration %d: expected %d types, got %d", iter, len(types), len(got))
		}
		for i, typ := range types {
			booked := map[string]bool{}
			for _, r := range reservations {
				if r.Date == date && r.TreatmentName == typ.Name {
					booked[r.Slot] = true
				}
			}
			want := []string{}
			for _, s := range typ.Slots {
				if !booked[s] {
					want = append(want, s)
				}
			}
			if !reflect.DeepEqual(got[i].Slots, want) {
				t.Fatalf("iteration %d type %s: got %v want %v", iter, typ.Name, got[i].Slots, want)
			}
		}
	}
}
