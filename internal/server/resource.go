package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/lifelog/internal/models"
	"github.com/lazypower/lifelog/internal/store"
)

// resource wires the list/new/edit routes for one entity type.
type resource[T any] struct {
	list   func(userID string, p store.Page) (*store.Paged[T], error)
	get    func(userID, id string) (*T, error)
	create func(userID string, v *T) error
	update func(userID string, v *T) error
	record func(v *T) *models.Record

	// required names JSON keys a create must carry and an edit may not null.
	required []string
	// initial returns the values a new form starts with. Nil means a zero T.
	initial func(r *http.Request, userID string) (*T, error)
	// view decorates a record for output. Nil writes the record as is.
	view func(v *T) any
}

func (res resource[T]) render(v *T) any {
	if res.view == nil {
		return v
	}
	return res.view(v)
}

// mount registers:
//
//	GET  /             paginated list
//	GET  /new/         initial values
//	POST /new/         create
//	GET  /edit/{id}/   current values
//	POST /edit/{id}/   update
func mount[T any](r chi.Router, s *Server, res resource[T]) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		page, err := res.list(currentUser(r).ID, s.page(r))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writePage(w, page, res.render)
	})

	r.Get("/new/", func(w http.ResponseWriter, r *http.Request) {
		v := new(T)
		if res.initial != nil {
			var err error
			if v, err = res.initial(r, currentUser(r).ID); err != nil {
				s.fail(w, r, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, res.render(v))
	})

	r.Post("/new/", func(w http.ResponseWriter, r *http.Request) {
		userID := currentUser(r).ID
		v := new(T)
		if err := decodeRequired(r, v, res.required, false); err != nil {
			s.fail(w, r, err)
			return
		}
		if err := res.create(userID, v); err != nil {
			s.fail(w, r, err)
			return
		}
		saved, err := res.get(userID, res.record(v).ID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, res.render(saved))
	})

	r.Get("/edit/{id}/", func(w http.ResponseWriter, r *http.Request) {
		v, err := res.get(currentUser(r).ID, chi.URLParam(r, "id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res.render(v))
	})

	r.Post("/edit/{id}/", func(w http.ResponseWriter, r *http.Request) {
		userID := currentUser(r).ID
		v, err := res.get(userID, chi.URLParam(r, "id"))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		keep := *res.record(v)
		if err := decodeRequired(r, v, res.required, true); err != nil {
			s.fail(w, r, err)
			return
		}
		*res.record(v) = keep
		if err := res.update(userID, v); err != nil {
			s.fail(w, r, err)
			return
		}
		// Reload so joined names follow a changed parent.
		saved, err := res.get(userID, keep.ID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res.render(saved))
	})
}

func writePage[T any](w http.ResponseWriter, page *store.Paged[T], view func(*T) any) {
	items := make([]any, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, view(&page.Items[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":       items,
		"page":        page.Page,
		"page_size":   page.PageSize,
		"total":       page.Total,
		"total_pages": page.TotalPages,
		"has_next":    page.HasNext(),
	})
}
