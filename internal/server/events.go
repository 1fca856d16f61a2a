package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/lifelog/internal/models"
)

func (s *Server) eventResource() resource[models.Event] {
	return resource[models.Event]{
		list:   s.db.ListEvents,
		get:    s.db.GetEvent,
		create: s.db.CreateEvent,
		update: s.db.UpdateEvent,
		record: func(e *models.Event) *models.Record { return &e.Record },
	}
}

func (s *Server) timestampResource() resource[models.Timestamp] {
	return resource[models.Timestamp]{
		list:   s.db.ListTimestamps,
		get:    s.db.GetTimestamp,
		create: s.db.CreateTimestamp,
		update: s.db.UpdateTimestamp,
		record: func(t *models.Timestamp) *models.Record { return &t.Record },
		initial: func(r *http.Request, userID string) (*models.Timestamp, error) {
			return &models.Timestamp{At: s.now()}, nil
		},
	}
}

// handleEasyEvents lists every event with when it last happened, for
// one-tap stamping.
func (s *Server) handleEasyEvents(w http.ResponseWriter, r *http.Request) {
	stamps, err := s.db.LatestTimestampsByEvent(currentUser(r).ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if stamps == nil {
		stamps = []models.EventStamp{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": stamps})
}

// handleStampEvent records an occurrence of an event right now.
func (s *Server) handleStampEvent(w http.ResponseWriter, r *http.Request) {
	ts := &models.Timestamp{EventID: chi.URLParam(r, "event_id"), At: s.now()}
	if err := s.db.CreateTimestamp(currentUser(r).ID, ts); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ts)
}
