package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/lazypower/lifelog/internal/models"
)

const defaultSleepIndexLimit = 30

type logView struct {
	*models.Log
	Hours float64 `json:"hours"`
}

func viewLog(l *models.Log) any {
	return logView{Log: l, Hours: l.Hours()}
}

func (s *Server) logTitleResource() resource[models.LogTitle] {
	return resource[models.LogTitle]{
		list:   s.db.ListLogTitles,
		get:    s.db.GetLogTitle,
		create: s.db.CreateLogTitle,
		update: s.db.UpdateLogTitle,
		record: func(t *models.LogTitle) *models.Record { return &t.Record },
	}
}

func (s *Server) logResource() resource[models.Log] {
	return resource[models.Log]{
		list:   s.db.ListLogs,
		get:    s.db.GetLog,
		create: s.db.CreateLog,
		update: s.db.UpdateLog,
		record: func(l *models.Log) *models.Record { return &l.Record },
		view:   viewLog,
		initial: func(r *http.Request, userID string) (*models.Log, error) {
			now := s.now()
			return &models.Log{Start: now, Finish: now}, nil
		},
	}
}

// handleSleepIndex serves the newest sleep spans for charting. ?limit=
// caps the count; 0 returns every span.
func (s *Server) handleSleepIndex(w http.ResponseWriter, r *http.Request) {
	limit := defaultSleepIndexLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	logs, err := s.db.SleepIndex(currentUser(r).ID, s.opts.Journal.SleepTitle, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]any, 0, len(logs))
	for i := range logs {
		out = append(out, viewLog(&logs[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"title": s.opts.Journal.SleepTitle,
		"logs":  out,
	})
}

// handleSleepTabulate sums sleep per day over the tabulation window.
func (s *Server) handleSleepTabulate(w http.ResponseWriter, r *http.Request) {
	logs, err := s.db.SleepIndex(currentUser(r).ID, s.opts.Journal.SleepTitle, 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	days := s.opts.Journal.TabulateDays
	from := s.today().AddDate(0, 0, -(days - 1))
	totals := models.TotalsByDay(logs, s.opts.Location)

	window := make([]models.DayTotal, 0, days)
	var sum float64
	for _, t := range totals {
		if t.Date.Before(from) {
			continue
		}
		window = append(window, t)
		sum += t.Hours
	}
	avg := 0.0
	if len(window) > 0 {
		avg = math.Round(sum/float64(len(window))*100) / 100
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"title":         s.opts.Journal.SleepTitle,
		"from":          models.NewDate(from),
		"days":          window,
		"average_hours": avg,
	})
}
