package appointments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/doctors-portal/internal/store"
	"github.com/wolfman30/doctors-portal/pkg/logging"
)

func seededHandler(t *testing.T, fallback string) *Handler {
	t.Helper()
	ctx := context.Background()
	repo, s := newTestRepository(t)
	_, err := repo.InsertType(ctx, AppointmentType{Name: "Cleaning", Slots: []string{"9am", "10am", "11am"}})
	require.NoError(t, err)
	_, err = s.Collection("bookings").InsertOne(ctx, store.Document{
		"treatmentName": "Cleaning", "patientName": "Alice", "patientEmail": "alice@example.com",
		"date": "Nov 23, 2022", "slot": "10am",
	})
	require.NoError(t, err)
	return NewHandler(repo, fallback, logging.Discard(), nil)
}

func getAvailable(t *testing.T, h *Handler, target string) []AppointmentType {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Available(rec, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var out []AppointmentType
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAvailableForDate(t *testing.T) {
	h := seededHandler(t, "")

	got := getAvailable(t, h, "/available?date=Nov+23,+2022")
	require.Len(t, got, 1)
	assert.Equal(t, "Cleaning", got[0].Name)
	assert.Equal(t, []string{"9am", "11am"}, got[0].Slots)

	got = getAvailable(t, h, "/available?date=Nov+24,+2022")
	assert.Equal(t, []string{"9am", "10am", "11am"}, got[0].Slots)
}

func TestAvailableWithoutDate(t *testing.T) {
	got := getAvailable(t, seededHandler(t, ""), "/available")
	assert.Equal(t, []string{"9am", "10am", "11am"}, got[0].Slots, "missing date reports every slot open")

	got = getAvailable(t, seededHandler(t, "Nov 23, 2022"), "/available")
	assert.Equal(t, []string{"9am", "11am"}, got[0].Slots, "configured fallback date is applied")
}

func TestAvailableFullyBookedReturnsEmptyList(t *testing.T) {
	ctx := context.Background()
	repo, s := newTestRepository(t)
	_, err := repo.InsertType(ctx, AppointmentType{Name: "X", Slots: []string{"a"}})
	require.NoError(t, err)
	_, err = s.Collection("bookings").InsertOne(ctx, store.Document{"treatmentName": "X", "date": "d", "slot": "a"})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	NewHandler(repo, "", logging.Discard(), nil).Available(rec, httptest.NewRequest(http.MethodGet, "/available?date=d", nil))
	assert.JSONEq(t, `[{"_id":"`+mustFirstID(t, repo)+`","name":"X","slots":[]}]`, rec.Body.String())
}

func mustFirstID(t *testing.T, repo Repository) string {
	t.Helper()
	types, err := repo.ListTypes(context.Background())
	require.NoError(t, err)
	return types[0].ID
}

func TestListAppointmentsReturnsNamesOnly(t *testing.T) {
	h := seededHandler(t, "")
	rec := httptest.NewRecorder()
	h.ListAppointments(rec, httptest.NewRequest(http.MethodGet, "/appointments", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "Cleaning", raw[0]["name"])
	assert.NotContains(t, raw[0], "slots")
}

type failingRepository struct{ Repository }

func (failingRepository) ListTypes(context.Context) ([]AppointmentType, error) {
	return nil, errors.New("db down")
}

func (failingRepository) ListSummaries(context.Context) ([]Summary, error) {
	return nil, errors.New("db down")
}

func TestHandlersReportStoreFailures(t *testing.T) {
	h := NewHandler(failingRepository{}, "", logging.Discard(), nil)

	rec := httptest.NewRecorder()
	h.Available(rec, httptest.NewRequest(http.MethodGet, "/available?date=d", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"message":"internal error"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ListAppointments(rec, httptest.NewRequest(http.MethodGet, "/appointments", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
