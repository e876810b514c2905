package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Unit is the time unit of a task periodicity.
type Unit string

const (
	UnitHours Unit = "hours"
	UnitDays  Unit = "days"
)

// Periodicity is the recurrence interval of a task.
type Periodicity struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// IsZero reports whether the periodicity was never set.
func (p Periodicity) IsZero() bool {
	return p.Value == 0 && p.Unit == ""
}

// UnmarshalJSON accepts the value as a number or a numeric string.
// Anything else decodes to 0.
func (p *Periodicity) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value json.RawMessage `json:"value"`
		Unit  Unit            `json:"unit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.Unit = raw.Unit
	p.Value = parseLooseNumber(raw.Value)
	return nil
}

func parseLooseNumber(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return n
}

// Task is a recurring household chore.
//
// LastDone and PrevLastDone are milliseconds since the Unix epoch.
// PrevLastDone holds the LastDone value captured when the task was last
// marked finished, so the completion can be undone.
type Task struct {
	ID           uint         `json:"id"`
	Title        string       `json:"title"`
	Periodicity  Periodicity  `json:"periodicity"`
	Frequency    *Periodicity `json:"frequency,omitempty"` // legacy name of Periodicity
	Room         string       `json:"room"`
	LastDone     int64        `json:"lastDone"`
	Finished     bool         `json:"finished"`
	PrevLastDone *int64       `json:"prevLastDone,omitempty"`
}
