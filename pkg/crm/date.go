package crm

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for due dates.
const DateLayout = "2006-01-02"

// dateLayouts are the accepted spellings of a date, DateLayout first.
var dateLayouts = []string{
	DateLayout,
	"2006-1-2",
	time.RFC3339,
	NoteDateLayout,
}

// Date is a calendar date without time of day. The zero Date is "no date"
// and is written as the empty string.
type Date struct {
	time.Time
}

// ParseDate parses a date written as YYYY-MM-DD. Unpadded months and days and
// full timestamps are accepted too; the time of day is dropped. The empty
// string yields the zero Date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q, want %s", s, DateLayout)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON never fails: a value that is not a recognizable date decodes
// as the zero Date, so one bad field cannot make a stored collection unreadable.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		*d = Date{}
		return nil
	}
	*d = parsed
	return nil
}
