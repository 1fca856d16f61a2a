package models

import (
	"math"
	"time"
)

const (
	maxGenreNameLen     = 20
	maxGenreLanguageLen = 20
	maxNoteTitleLen     = 32
)

// Genre groups notes written in one language.
type Genre struct {
	Record `yaml:",inline"`

	Name     string `json:"name" yaml:"name"`
	Language string `json:"language" yaml:"language"`
}

func (g *Genre) Validate() error {
	v := ValidationErrors{}
	v.requireText("name", g.Name, maxGenreNameLen)
	v.requireText("language", g.Language, maxGenreLanguageLen)
	return v.Err()
}

// Note is a code snippet studied with five spaced reviews.
type Note struct {
	Record `yaml:",inline"`

	GenreID     string `json:"genre_id" yaml:"genre_id"`
	Title       string `json:"title" yaml:"title"`
	Code        string `json:"code" yaml:"code"`
	IsReviewed1 bool   `json:"is_reviewed_1" yaml:"is_reviewed_1"`
	IsReviewed2 bool   `json:"is_reviewed_2" yaml:"is_reviewed_2"`
	IsReviewed3 bool   `json:"is_reviewed_3" yaml:"is_reviewed_3"`
	IsReviewed4 bool   `json:"is_reviewed_4" yaml:"is_reviewed_4"`
	IsReviewed5 bool   `json:"is_reviewed_5" yaml:"is_reviewed_5"`

	GenreName     string `json:"genre_name,omitempty" yaml:"genre_name,omitempty"`
	GenreLanguage string `json:"genre_language,omitempty" yaml:"genre_language,omitempty"`
}

func (n *Note) Validate() error {
	v := ValidationErrors{}
	v.requireID("genre_id", n.GenreID)
	v.requireText("title", n.Title, maxNoteTitleLen)
	if n.Code == "" {
		v.Add("code", "this field is required")
	}
	return v.Err()
}

// Percentage reports review progress. Reviews are counted in order: the
// first review not yet done decides the value, regardless of later flags.
func (n *Note) Percentage() float64 {
	switch {
	case !n.IsReviewed1:
		return 0
	case !n.IsReviewed2:
		return 20
	case !n.IsReviewed3:
		return 40
	case !n.IsReviewed4:
		return 60
	case !n.IsReviewed5:
		return 80
	}
	return 100
}

// DaysElapsed is the number of whole days between creation and now.
func (n *Note) DaysElapsed(now time.Time) int {
	return int(math.Floor(now.Sub(n.CreatedAt).Hours() / 24))
}
