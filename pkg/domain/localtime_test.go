package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Dates and timestamps cross both systems as wall-clock values. Nothing may
// shift them into or out of a time zone on the way through.
func TestLocalDateTime_WallClockPreserved(t *testing.T) {
	t.Run("parses and prints without zone conversion", func(t *testing.T) {
		dt, err := ParseLocalDateTime("2024-03-31T01:30:00")
		require.NoError(t, err)
		assert.Equal(t, "2024-03-31T01:30:00", dt.String())
	})

	t.Run("drops fractional seconds", func(t *testing.T) {
		dt, err := ParseLocalDateTime("2024-01-02T10:11:12.987654")
		require.NoError(t, err)
		assert.Equal(t, "2024-01-02T10:11:12", dt.String())
	})

	t.Run("rejects zoned input", func(t *testing.T) {
		_, err := ParseLocalDateTime("2024-01-02T10:11:12Z")
		require.Error(t, err)
	})

	t.Run("json round trip keeps the value", func(t *testing.T) {
		in := NewLocalDateTime(2023, time.October, 29, 1, 59, 59)
		raw, err := json.Marshal(in)
		require.NoError(t, err)
		assert.JSONEq(t, `"2023-10-29T01:59:59"`, string(raw))

		var out LocalDateTime
		require.NoError(t, json.Unmarshal(raw, &out))
		assert.Equal(t, in, out)
	})
}

func TestLocalDate_JSON(t *testing.T) {
	t.Run("null decodes to zero", func(t *testing.T) {
		var d LocalDate
		require.NoError(t, json.Unmarshal([]byte("null"), &d))
		assert.True(t, d.IsZero())
	})

	t.Run("zero encodes to null", func(t *testing.T) {
		raw, err := json.Marshal(LocalDate{})
		require.NoError(t, err)
		assert.Equal(t, "null", string(raw))
	})

	t.Run("pointer fields stay absent", func(t *testing.T) {
		type body struct {
			Born *LocalDate `json:"born,omitempty"`
		}
		raw, err := json.Marshal(body{})
		require.NoError(t, err)
		assert.Equal(t, "{}", string(raw))
	})

	t.Run("rejects non-date strings", func(t *testing.T) {
		var d LocalDate
		assert.Error(t, json.Unmarshal([]byte(`"31/12/2024"`), &d))
		assert.Error(t, json.Unmarshal([]byte(`20241231`), &d))
	})

	t.Run("parses calendar days", func(t *testing.T) {
		d, err := ParseLocalDate("1980-02-29")
		require.NoError(t, err)
		assert.Equal(t, NewLocalDate(1980, time.February, 29), d)
	})
}
