package server

import (
	"net/http"

	"github.com/lazypower/lifelog/internal/models"
)

func (s *Server) routineResource() resource[models.Routine] {
	return resource[models.Routine]{
		list:     s.db.ListRoutines,
		get:      s.db.GetRoutine,
		create:   s.db.CreateRoutine,
		update:   s.db.UpdateRoutine,
		record:   func(r *models.Routine) *models.Record { return &r.Record },
		required: []string{"order"},
		initial: func(r *http.Request, userID string) (*models.Routine, error) {
			next, err := s.db.NextRoutineOrder(userID)
			if err != nil {
				return nil, err
			}
			return &models.Routine{Order: next}, nil
		},
	}
}

func (s *Server) routineStampResource() resource[models.RoutineStamp] {
	return resource[models.RoutineStamp]{
		list:   s.db.ListRoutineStamps,
		get:    s.db.GetRoutineStamp,
		create: s.db.CreateRoutineStamp,
		update: s.db.UpdateRoutineStamp,
		record: func(rs *models.RoutineStamp) *models.Record { return &rs.Record },
		initial: func(r *http.Request, userID string) (*models.RoutineStamp, error) {
			return &models.RoutineStamp{At: s.now()}, nil
		},
	}
}

// handleRoutineTabulate returns the routine-by-day stamp counts for the
// tabulation window ending today.
func (s *Server) handleRoutineTabulate(w http.ResponseWriter, r *http.Request) {
	days := s.opts.Journal.TabulateDays
	from := models.NewDate(s.today().AddDate(0, 0, -(days - 1)))

	table, err := s.db.RoutineStampTable(currentUser(r).ID, from, days, s.opts.Location)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}
