package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/lifelog/internal/models"
)

type noteView struct {
	*models.Note
	Percentage  float64 `json:"percentage"`
	DaysElapsed int     `json:"days_elapsed"`
}

func (s *Server) viewNote(n *models.Note) any {
	return noteView{Note: n, Percentage: n.Percentage(), DaysElapsed: n.DaysElapsed(s.now())}
}

func (s *Server) genreResource() resource[models.Genre] {
	return resource[models.Genre]{
		list:   s.db.ListGenres,
		get:    s.db.GetGenre,
		create: s.db.CreateGenre,
		update: s.db.UpdateGenre,
		record: func(g *models.Genre) *models.Record { return &g.Record },
	}
}

func (s *Server) noteResource() resource[models.Note] {
	return resource[models.Note]{
		list:   s.db.ListNotes,
		get:    s.db.GetNote,
		create: s.db.CreateNote,
		update: s.db.UpdateNote,
		record: func(n *models.Note) *models.Record { return &n.Record },
		view:   s.viewNote,
	}
}

// handleNoteDetail shows one note. page_number is the list page the
// reader came from, echoed back so the client can return to it.
func (s *Server) handleNoteDetail(w http.ResponseWriter, r *http.Request) {
	pageNumber, err := strconv.Atoi(chi.URLParam(r, "page_number"))
	if err != nil || pageNumber < 1 {
		writeError(w, http.StatusBadRequest, "page_number must be a positive integer")
		return
	}
	n, err := s.db.GetNote(currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"note":        s.viewNote(n),
		"page_number": pageNumber,
	})
}
