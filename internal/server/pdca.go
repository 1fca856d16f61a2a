package server

import (
	"net/http"

	"github.com/lazypower/lifelog/internal/models"
	"github.com/lazypower/lifelog/internal/store"
)

type pdcView struct {
	*models.PDC
	Percentage float64 `json:"percentage"`
}

func viewPDC(p *models.PDC) any {
	return pdcView{PDC: p, Percentage: p.Percentage()}
}

func (s *Server) themeResource() resource[models.Theme] {
	return resource[models.Theme]{
		list:   s.db.ListThemes,
		get:    s.db.GetTheme,
		create: s.db.CreateTheme,
		update: s.db.UpdateTheme,
		record: func(t *models.Theme) *models.Record { return &t.Record },
	}
}

// pdcResource lists the undone entries; done ones live under /pdcs_done/.
func (s *Server) pdcResource() resource[models.PDC] {
	return resource[models.PDC]{
		list: func(userID string, p store.Page) (*store.Paged[models.PDC], error) {
			return s.db.ListPDCs(userID, false, p)
		},
		get:    s.db.GetPDC,
		create: s.db.CreatePDC,
		update: s.db.UpdatePDC,
		record: func(p *models.PDC) *models.Record { return &p.Record },
		view:   viewPDC,
	}
}

func (s *Server) handlePDCsDone(w http.ResponseWriter, r *http.Request) {
	page, err := s.db.ListPDCs(currentUser(r).ID, true, s.page(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writePage(w, page, viewPDC)
}

func (s *Server) weatherResource() resource[models.Weather] {
	return resource[models.Weather]{
		list:     s.db.ListWeather,
		get:      s.db.GetWeather,
		create:   s.db.CreateWeather,
		update:   s.db.UpdateWeather,
		record:   func(w *models.Weather) *models.Record { return &w.Record },
		required: []string{"temperature_highest", "temperature_lowest", "rainy_percent"},
		initial: func(r *http.Request, userID string) (*models.Weather, error) {
			return &models.Weather{Date: s.today()}, nil
		},
	}
}
