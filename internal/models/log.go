package models

import (
	"math"
	"sort"
	"time"
)

const maxLogTitleLen = 20

// LogTitle is the category a start/finish log belongs to ("sleep", "study").
type LogTitle struct {
	Record `yaml:",inline"`

	Title string `json:"title" yaml:"title"`
}

func (t *LogTitle) Validate() error {
	v := ValidationErrors{}
	v.requireText("title", t.Title, maxLogTitleLen)
	return v.Err()
}

// Log is a span of time under a title.
type Log struct {
	Record `yaml:",inline"`

	TitleID string    `json:"title_id" yaml:"title_id"`
	Start   time.Time `json:"start" yaml:"start"`
	Finish  time.Time `json:"finish" yaml:"finish"`

	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

func (l *Log) Validate() error {
	v := ValidationErrors{}
	v.requireID("title_id", l.TitleID)
	if l.Start.IsZero() {
		v.Add("start", "this field is required")
	}
	if l.Finish.IsZero() {
		v.Add("finish", "this field is required")
	}
	if !l.Start.IsZero() && !l.Finish.IsZero() && l.Finish.Before(l.Start) {
		v.Add("finish", "finish must not be before start")
	}
	return v.Err()
}

// Duration is the length of the span.
func (l *Log) Duration() time.Duration {
	return l.Finish.Sub(l.Start)
}

// Hours is the span length in hours rounded to two decimals.
func (l *Log) Hours() float64 {
	return math.Round(l.Duration().Hours()*100) / 100
}

// DayTotal is the summed log duration for one calendar day.
type DayTotal struct {
	Date  Date    `json:"date"`
	Hours float64 `json:"hours"`
}

// TotalsByDay sums log durations per finish date in loc, oldest day first.
// A span is attributed entirely to the day it finished on.
func TotalsByDay(logs []Log, loc *time.Location) []DayTotal {
	sums := make(map[string]time.Duration)
	var days []Date
	for i := range logs {
		d := NewDate(logs[i].Finish.In(loc))
		key := d.String()
		if _, ok := sums[key]; !ok {
			days = append(days, d)
		}
		sums[key] += logs[i].Duration()
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j].Time) })

	out := make([]DayTotal, 0, len(days))
	for _, d := range days {
		out = append(out, DayTotal{Date: d, Hours: math.Round(sums[d.String()].Hours()*100) / 100})
	}
	return out
}
