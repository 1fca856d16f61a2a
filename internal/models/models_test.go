package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotePercentage(t *testing.T) {
	tests := []struct {
		name  string
		flags [5]bool
		want  float64
	}{
		{"none", [5]bool{}, 0},
		{"first only", [5]bool{true}, 20},
		{"first two", [5]bool{true, true}, 40},
		{"first three", [5]bool{true, true, true}, 60},
		{"first four", [5]bool{true, true, true, true}, 80},
		{"all five", [5]bool{true, true, true, true, true}, 100},
		{"gap after first", [5]bool{true, false, true, true, true}, 20},
		{"later flags without first", [5]bool{false, true, true, true, true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Note{
				IsReviewed1: tt.flags[0],
				IsReviewed2: tt.flags[1],
				IsReviewed3: tt.flags[2],
				IsReviewed4: tt.flags[3],
				IsReviewed5: tt.flags[4],
			}
			assert.Equal(t, tt.want, n.Percentage())
		})
	}
}

func TestNoteDaysElapsed(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	n := Note{Record: Record{CreatedAt: created}}

	assert.Equal(t, 0, n.DaysElapsed(created.Add(23*time.Hour)))
	assert.Equal(t, 1, n.DaysElapsed(created.Add(24*time.Hour)))
	assert.Equal(t, 10, n.DaysElapsed(created.Add(10*24*time.Hour+time.Minute)))
}

func TestPDCPercentage(t *testing.T) {
	for length := 0; length <= MaxCheckLen; length++ {
		p := PDC{Check: strings.Repeat("x", length)}
		want := float64(length) / 2
		require.Equal(t, want, p.Percentage(), "length %d", length)
	}

	// Characters, not bytes.
	p := PDC{Check: strings.Repeat("振", 3)}
	assert.Equal(t, 1.5, p.Percentage())
}

func TestPDCValidate(t *testing.T) {
	p := PDC{ThemeID: "t", Plan: "read more", Check: strings.Repeat("あ", MaxCheckLen)}
	assert.NoError(t, p.Validate())

	p.Check += "あ"
	v, ok := AsValidation(p.Validate())
	require.True(t, ok)
	assert.Contains(t, v, "check")

	p = PDC{}
	v, ok = AsValidation(p.Validate())
	require.True(t, ok)
	assert.Contains(t, v, "theme_id")
	assert.Contains(t, v, "plan")
	assert.NotContains(t, v, "check")
}

func TestProverbSplit(t *testing.T) {
	tests := []struct {
		content   string
		first     string
		remaining string
	}{
		{"A。B", "A。", "B"},
		{"継続は力なり。そして忍耐。", "継続は力なり。", "そして忍耐。"},
		{"no full stop", "", "no full stop"},
		{"。tail", "。", "tail"},
		{"head。", "head。", ""},
	}

	for _, tt := range tests {
		p := Proverb{Content: tt.content}
		assert.Equal(t, tt.first, p.FirstMessage(), "first of %q", tt.content)
		assert.Equal(t, tt.remaining, p.RemainingMessages(), "remaining of %q", tt.content)
	}
}

func TestWeatherBounds(t *testing.T) {
	valid := Weather{
		Date:               NewDate(time.Now()),
		TemperatureHighest: 20,
		TemperatureLowest:  10,
		RainyPercent:       50,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		mod   func(w *Weather)
		field string
		ok    bool
	}{
		{"high at min", func(w *Weather) { w.TemperatureHighest = -10 }, "temperature_highest", true},
		{"high at max", func(w *Weather) { w.TemperatureHighest = 45 }, "temperature_highest", true},
		{"high below", func(w *Weather) { w.TemperatureHighest = -11 }, "temperature_highest", false},
		{"high above", func(w *Weather) { w.TemperatureHighest = 46 }, "temperature_highest", false},
		{"low at min", func(w *Weather) { w.TemperatureLowest = -20 }, "temperature_lowest", true},
		{"low at max", func(w *Weather) { w.TemperatureLowest = 35 }, "temperature_lowest", true},
		{"low below", func(w *Weather) { w.TemperatureLowest = -21 }, "temperature_lowest", false},
		{"low above", func(w *Weather) { w.TemperatureLowest = 36 }, "temperature_lowest", false},
		{"rain at 0", func(w *Weather) { w.RainyPercent = 0 }, "rainy_percent", true},
		{"rain at 100", func(w *Weather) { w.RainyPercent = 100 }, "rainy_percent", true},
		{"rain negative", func(w *Weather) { w.RainyPercent = -1 }, "rainy_percent", false},
		{"rain over", func(w *Weather) { w.RainyPercent = 101 }, "rainy_percent", false},
		{"missing date", func(w *Weather) { w.Date = Date{} }, "date", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := valid
			tt.mod(&w)
			err := w.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			v, ok := AsValidation(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Contains(t, v, tt.field)
		})
	}
}

func TestLogValidate(t *testing.T) {
	start := time.Date(2024, 3, 1, 23, 0, 0, 0, time.UTC)
	l := Log{TitleID: "x", Start: start, Finish: start.Add(7*time.Hour + 30*time.Minute)}
	require.NoError(t, l.Validate())
	assert.Equal(t, 7.5, l.Hours())

	l.Finish = start.Add(-time.Minute)
	v, ok := AsValidation(l.Validate())
	require.True(t, ok)
	assert.Contains(t, v, "finish")
}

func TestNodeValidate(t *testing.T) {
	n := Node{Record: Record{ID: "n1"}, ConcernID: "c", Content: "why?", TargetIDs: []string{"n2", "n3"}}
	require.NoError(t, n.Validate())

	n.TargetIDs = []string{"n1"}
	v, ok := AsValidation(n.Validate())
	require.True(t, ok)
	assert.Contains(t, v, "target_ids")

	n.TargetIDs = []string{"n2", "n2"}
	_, ok = AsValidation(n.Validate())
	assert.True(t, ok)

	n = Node{ConcernID: "c", Content: "x", NodeType: 7}
	v, ok = AsValidation(n.Validate())
	require.True(t, ok)
	assert.Contains(t, v, "node_type")
}

func TestConcernValidate(t *testing.T) {
	c := Concern{Content: strings.Repeat("a", 40), ConcernType: ConcernSetTarget}
	require.NoError(t, c.Validate())

	c.Content += "a"
	c.ConcernType = 2
	v, ok := AsValidation(c.Validate())
	require.True(t, ok)
	assert.Contains(t, v, "content")
	assert.Contains(t, v, "concern_type")
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "Alice@example.com", NormalizeEmail("  Alice@EXAMPLE.com "))
	assert.Equal(t, "nodomain", NormalizeEmail("nodomain"))
}

func TestDateJSON(t *testing.T) {
	var w Weather
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2018-04-17","rainy_percent":30}`), &w))
	assert.Equal(t, "2018-04-17", w.Date.String())

	out, err := json.Marshal(w)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"date":"2018-04-17"`)

	assert.Error(t, json.Unmarshal([]byte(`{"date":"17/04/2018"}`), &w))
}

func TestValidationErrorsMessage(t *testing.T) {
	v := ValidationErrors{}
	assert.NoError(t, v.Err())

	v.Add("b", "second")
	v.Add("a", "first")
	assert.Equal(t, "validation failed: a: first, b: second", v.Error())
}

func TestTotalsByDay(t *testing.T) {
	at := func(s string) time.Time {
		ts, err := time.Parse(time.RFC3339, s)
		require.NoError(t, err)
		return ts
	}
	logs := []Log{
		{Start: at("2024-03-02T23:00:00Z"), Finish: at("2024-03-03T06:30:00Z")},
		{Start: at("2024-03-01T22:00:00Z"), Finish: at("2024-03-02T05:00:00Z")},
		{Start: at("2024-03-03T13:00:00Z"), Finish: at("2024-03-03T13:20:00Z")},
	}

	got := TotalsByDay(logs, time.UTC)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-03-02", got[0].Date.String())
	assert.Equal(t, 7.0, got[0].Hours)
	assert.Equal(t, "2024-03-03", got[1].Date.String())
	assert.Equal(t, 7.83, got[1].Hours)
}
