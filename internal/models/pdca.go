package models

import (
	"math"
	"unicode/utf8"
)

const (
	maxThemeTitleLen = 40
	maxPlanLen       = 64

	// MaxCheckLen bounds the free-text check log of a PDC entry.
	MaxCheckLen = 200
)

// Theme is the topic a run of PDCA cycles reflects on.
type Theme struct {
	Record `yaml:",inline"`

	Title string `json:"title" yaml:"title"`
}

func (t *Theme) Validate() error {
	v := ValidationErrors{}
	v.requireText("title", t.Title, maxThemeTitleLen)
	return v.Err()
}

// PDC is one plan/do/check entry under a theme.
type PDC struct {
	Record `yaml:",inline"`

	ThemeID string `json:"theme_id" yaml:"theme_id"`
	Plan    string `json:"plan" yaml:"plan"`
	IsDone  bool   `json:"is_done" yaml:"is_done"`
	Check   string `json:"check" yaml:"check"`

	ThemeTitle string `json:"theme_title,omitempty" yaml:"theme_title,omitempty"`
}

func (p *PDC) Validate() error {
	v := ValidationErrors{}
	v.requireID("theme_id", p.ThemeID)
	v.requireText("plan", p.Plan, maxPlanLen)
	v.maxText("check", p.Check, MaxCheckLen)
	return v.Err()
}

// Percentage reports how much of the check log's capacity is filled,
// rounded to one decimal place.
func (p *PDC) Percentage() float64 {
	length := utf8.RuneCountInString(p.Check)
	return math.Round(float64(length)/MaxCheckLen*100*10) / 10
}
