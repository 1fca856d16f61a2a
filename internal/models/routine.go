package models

import (
	"math"
	"time"
)

const maxRoutineNameLen = 20

// Routine is one item of the daily routine, shown in Order.
type Routine struct {
	Record `yaml:",inline"`

	Order int    `json:"order" yaml:"order"`
	Name  string `json:"name" yaml:"name"`
}

func (r *Routine) Validate() error {
	v := ValidationErrors{}
	v.requireText("name", r.Name, maxRoutineNameLen)
	v.between("order", r.Order, math.MinInt16, math.MaxInt16)
	return v.Err()
}

// RoutineStamp marks one completion of a routine.
type RoutineStamp struct {
	Record `yaml:",inline"`

	RoutineID string    `json:"routine_id" yaml:"routine_id"`
	At        time.Time `json:"at" yaml:"at"`

	RoutineName string `json:"routine_name,omitempty" yaml:"routine_name,omitempty"`
}

func (s *RoutineStamp) Validate() error {
	v := ValidationErrors{}
	v.requireID("routine_id", s.RoutineID)
	if s.At.IsZero() {
		v.Add("at", "this field is required")
	}
	return v.Err()
}

// RoutineTable is a routines-by-days grid of completion counts.
type RoutineTable struct {
	Dates    []Date           `json:"dates"`
	Routines []Routine        `json:"routines"`
	Counts   map[string][]int `json:"counts"` // routine id -> count per date, aligned with Dates
}
