package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
)

func TestScheduleRecord_DecodesWireDates(t *testing.T) {
	payload := `{
		"id": "srs1",
		"created": "2024-03-01 09:00:00.000Z",
		"updated": "2024-03-02 10:30:15.250Z",
		"user": "u1",
		"grammar": "g1",
		"ease_factor": 2.5,
		"interval_days": 1,
		"repetition": 0,
		"last_reviewed": "",
		"due_date": "2024-03-03 00:00:00.000Z"
	}`

	var rec ScheduleRecord
	require.NoError(t, json.Unmarshal([]byte(payload), &rec))

	assert.Equal(t, "srs1", rec.RecordID())
	assert.True(t, time.Date(2024, 3, 2, 10, 30, 15, 250_000_000, time.UTC).Equal(rec.LastUpdated()))
	assert.False(t, rec.LastReviewed.IsPresent(), "empty string must decode as absent")
	assert.NoError(t, rec.Validate())
	assert.True(t, rec.IsNew())
}

func TestOptionalTime_PresentRoundTrip(t *testing.T) {
	reviewed := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	data, err := json.Marshal(struct {
		LastReviewed OptionalTime `json:"last_reviewed"`
	}{Present(reviewed)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"last_reviewed":"2024-05-06 07:08:09.000Z"}`, string(data))

	var decoded struct {
		LastReviewed OptionalTime `json:"last_reviewed"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	got, ok := decoded.LastReviewed.Get()
	require.True(t, ok)
	assert.True(t, reviewed.Equal(got))
}

func TestOptionalTime_NullAndEmptyAreAbsent(t *testing.T) {
	for _, raw := range []string{`""`, `null`} {
		var o OptionalTime
		require.NoError(t, json.Unmarshal([]byte(raw), &o))
		assert.False(t, o.IsPresent(), raw)
		assert.Equal(t, `""`, mustMarshal(t, o))
	}
}

func TestTimestamp_RejectsForeignFormat(t *testing.T) {
	var ts Timestamp
	err := json.Unmarshal([]byte(`"03/01/2024"`), &ts)
	assert.Error(t, err)
}

func TestSyncable_ValidateRequiresDates(t *testing.T) {
	rec := ScheduleRecord{
		Syncable:  Syncable{ID: "srs1"},
		ConceptID: "g1",
		DueDate:   At(time.Now()),
	}
	err := rec.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrDecoding)
}

func TestConcept_AcceptsUpdate(t *testing.T) {
	system := Concept{Syncable: Syncable{ID: "g1"}, Usage: "〜ている"}
	owned := system
	owned.Owner = "u1"

	assert.NoError(t, system.AcceptsUpdate(system))
	assert.ErrorIs(t, system.AcceptsUpdate(owned), domainerrors.ErrDecoding)
	assert.ErrorIs(t, owned.AcceptsUpdate(system), domainerrors.ErrDecoding)
}

func mustMarshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}
