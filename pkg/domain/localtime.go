package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	localDateLayout     = "2006-01-02"
	localDateTimeLayout = "2006-01-02T15:04:05"
)

// LocalDate is a calendar day with no time zone. Both systems exchange dates
// in this form and no conversion happens on the way through.
type LocalDate struct {
	t time.Time
}

// NewLocalDate builds a LocalDate from its calendar parts.
func NewLocalDate(year int, month time.Month, day int) LocalDate {
	return LocalDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseLocalDate parses YYYY-MM-DD.
func ParseLocalDate(s string) (LocalDate, error) {
	t, err := time.Parse(localDateLayout, s)
	if err != nil {
		return LocalDate{}, fmt.Errorf("invalid local date %q: %w", s, err)
	}
	return LocalDate{t: t}, nil
}

func (d LocalDate) IsZero() bool   { return d.t.IsZero() }
func (d LocalDate) String() string { return d.t.Format(localDateLayout) }

func (d LocalDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *LocalDate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = LocalDate{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLocalDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// LocalDateTime is a wall-clock timestamp with no time zone. Fractional
// seconds in input are accepted and dropped on output.
type LocalDateTime struct {
	t time.Time
}

func NewLocalDateTime(year int, month time.Month, day, hour, minute, second int) LocalDateTime {
	return LocalDateTime{t: time.Date(year, month, day, hour, minute, second, 0, time.UTC)}
}

// ParseLocalDateTime parses YYYY-MM-DDTHH:MM:SS with optional fractional seconds.
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	t, err := time.Parse(localDateTimeLayout, s)
	if err != nil {
		return LocalDateTime{}, fmt.Errorf("invalid local date-time %q: %w", s, err)
	}
	return LocalDateTime{t: t.Truncate(time.Second)}, nil
}

func (d LocalDateTime) IsZero() bool   { return d.t.IsZero() }
func (d LocalDateTime) String() string { return d.t.Format(localDateTimeLayout) }

func (d LocalDateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *LocalDateTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = LocalDateTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
