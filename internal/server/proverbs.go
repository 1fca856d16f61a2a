package server

import (
	"net/http"

	"github.com/lazypower/lifelog/internal/models"
)

func (s *Server) proverbResource() resource[models.Proverb] {
	return resource[models.Proverb]{
		list:   s.db.ListProverbs,
		get:    s.db.GetProverb,
		create: s.db.CreateProverb,
		update: s.db.UpdateProverb,
		record: func(p *models.Proverb) *models.Record { return &p.Record },
	}
}

// handleProverbDetail shows a random proverb split at its first sentence.
func (s *Server) handleProverbDetail(w http.ResponseWriter, r *http.Request) {
	p, err := s.db.RandomProverb(currentUser(r).ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"proverb":            p,
		"first_message":      p.FirstMessage(),
		"remaining_messages": p.RemainingMessages(),
	})
}
