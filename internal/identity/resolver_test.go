package identity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmura/formsync/models"
)

func testEntry(t *testing.T, payload models.Payload, at time.Time) models.SaveEntry {
	t.Helper()
	return models.NewSaveEntry("test", payload, MonthKey(payload, at), at)
}

func TestMonthKey_FromInspectionDate(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	payload := models.Payload{"current": map[string]any{"inspectionDate": "2025-03-14"}}
	assert.Equal(t, "2025-03", MonthKey(payload, now))

	// Top-level fields work when there is no "current" section.
	payload = models.Payload{"inspectionDate": "2024-12-01"}
	assert.Equal(t, "2024-12", MonthKey(payload, now))
}

func TestMonthKey_FallbackToCurrentMonth(t *testing.T) {
	now := time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)

	for _, date := range []string{"", "soon", "2025/03/14", "25-03-14"} {
		payload := models.Payload{"current": map[string]any{"inspectionDate": date}}
		assert.Equal(t, "2025-03", MonthKey(payload, now), "date %q", date)
	}
}

func TestMonthKey_SnapshotSurvivesMonthBoundary(t *testing.T) {
	created := time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC)
	payload := models.Payload{"current": map[string]any{"driverName": "Sato"}}

	entry := testEntry(t, payload, created)
	require.Equal(t, "2025-03", entry.MonthKey)

	// A retry next month resolves against the stored key, not the clock.
	r := NewResolver("monthly_tire", "acme", "reports")
	info := r.Resolve(entry)
	assert.Equal(t, "2025-03", info.MonthKey)
}

func TestResolve_IgnoresNonIdentityFields(t *testing.T) {
	r := NewResolver("monthly_tire", "acme", "reports")
	at := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

	base := models.Payload{"current": map[string]any{
		"inspectionDate": "2025-03-14",
		"driverName":     "Sato",
		"vehicleNumber":  "TRK-42",
		"truckType":      "flatbed",
		"notes":          "rear left worn",
	}}
	other := models.Payload{"current": map[string]any{
		"inspectionDate": "2025-03-02",
		"driverName":     "Sato",
		"vehicleNumber":  "TRK-42",
		"truckType":      "flatbed",
		"notes":          "all good",
		"pressure":       31.5,
	}}

	a := r.Resolve(testEntry(t, base, at))
	b := r.Resolve(testEntry(t, other, at))
	assert.Equal(t, a.DocumentID, b.DocumentID)
	assert.Equal(t, a.Signature, b.Signature)
}

func TestResolve_Idempotent(t *testing.T) {
	r := NewResolver("monthly_tire", "acme", "reports")
	entry := testEntry(t, models.Payload{"current": map[string]any{
		"inspectionDate": "2025-03-14",
		"driverName":     "Sato",
	}}, time.Now())

	first := r.Resolve(entry)
	second := r.Resolve(entry)
	assert.Equal(t, first, second)
}

func TestSignature_SensitiveToSingleCharacterChange(t *testing.T) {
	base := models.BasicInfo{DriverName: "Sato", VehicleNumber: "TRK-42", TruckType: "flatbed"}
	sig := Signature("2025-03", base)
	require.Len(t, sig, 8)

	variants := []models.BasicInfo{
		{DriverName: "Sata", VehicleNumber: "TRK-42", TruckType: "flatbed"},
		{DriverName: "Sato", VehicleNumber: "TRK-43", TruckType: "flatbed"},
		{DriverName: "Sato", VehicleNumber: "TRK-42", TruckType: "flatbee"},
	}
	for _, v := range variants {
		assert.NotEqual(t, sig, Signature("2025-03", v), "%+v", v)
	}
	assert.NotEqual(t, sig, Signature("2025-04", base))
}

func TestSignature_TrimsAndDefaultsIdentityFields(t *testing.T) {
	a := ExtractBasicInfo(models.Payload{"current": map[string]any{
		"driverName":    "  Sato  ",
		"vehicleNumber": "TRK-42",
	}})
	b := ExtractBasicInfo(models.Payload{"current": map[string]any{
		"driverName":    "Sato",
		"vehicleNumber": "TRK-42",
		"truckType":     "",
	}})

	assert.Equal(t, a, b)
	assert.Equal(t, "", a.TruckType)
}

func TestBuildDocumentID(t *testing.T) {
	id := BuildDocumentID("monthly_tire", "acme_co", "2025-03", "a1b2c3d4")
	assert.Equal(t, "monthly_tire_acme_co_2025-03_a1b2c3d4", id)
}

func TestBuildDocumentID_SanitizesComponents(t *testing.T) {
	id := BuildDocumentID("monthly_tire", "acme co", "2025-03", "a1b2c3d4")
	assert.Equal(t, "monthly_tire_acme_co_2025-03_a1b2c3d4", id)

	id = BuildDocumentID("pre/fix", "株式会社", "2025-03", "a1b2c3d4")
	for _, r := range id {
		assert.Contains(t, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-", string(r))
	}
}

func TestBuildDocumentID_CapsLength(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}

	id := BuildDocumentID(string(long), string(long), "2025-03", "a1b2c3d4")
	assert.LessOrEqual(t, len(id), 200)
}
