package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the canonical DD/MM/YYYY layout of invoice dates
const DateLayout = "02/01/2006"

// Date is a calendar date without time of day
type Date struct {
	time.Time
}

// NewDate builds a date in UTC
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// String renders the date as DD/MM/YYYY
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as "DD/MM/YYYY"
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "DD/MM/YYYY" string
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}
