package bookings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingJSONKeepsUnknownFields(t *testing.T) {
	var b Booking
	require.NoError(t, json.Unmarshal([]byte(`{"_id":"client-id","treatmentName":"Cleaning","patientName":"Alice","patientEmail":"alice@example.com","date":"Nov 23, 2022","slot":"9am","phone":"555-0100"}`), &b))

	assert.Equal(t, "client-id", b.ID)
	assert.Equal(t, "Cleaning", b.TreatmentName)
	assert.Equal(t, "555-0100", b.Extra["phone"])
	assert.NotContains(t, b.Extra, "_id")
	assert.NotContains(t, b.Extra, "slot")

	b.Extra["slot"] = "shadowed"
	raw, err := json.Marshal(b)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, "9am", out["slot"])
	assert.Equal(t, "555-0100", out["phone"])
}

func TestBookingJSONWithoutExtras(t *testing.T) {
	raw, err := json.Marshal(aliceBooking())
	require.NoError(t, err)
	assert.JSONEq(t, `{"treatmentName":"Cleaning","patientName":"Alice","patientEmail":"alice@example.com","date":"Nov 23, 2022","slot":"9am"}`, string(raw))

	var b Booking
	require.NoError(t, json.Unmarshal(raw, &b))
	assert.Nil(t, b.Extra)
}
