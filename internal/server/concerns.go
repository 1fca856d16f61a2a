package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lazypower/lifelog/internal/mindgraph"
	"github.com/lazypower/lifelog/internal/models"
)

func (s *Server) concernResource() resource[models.Concern] {
	return resource[models.Concern]{
		list:     s.db.ListConcerns,
		get:      s.db.GetConcern,
		create:   s.db.CreateConcern,
		update:   s.db.UpdateConcern,
		record:   func(c *models.Concern) *models.Record { return &c.Record },
		required: []string{"concern_type"},
	}
}

// handleConcernDetail returns the concern with all of its nodes and edges.
func (s *Server) handleConcernDetail(w http.ResponseWriter, r *http.Request) {
	g, err := s.db.ConcernGraph(currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// handleConcernJSON returns the graph shaped for the front-end renderer.
func (s *Server) handleConcernJSON(w http.ResponseWriter, r *http.Request) {
	g, err := s.db.ConcernGraph(currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mindgraph.New(g.Nodes, g.Edges).Render(g.Concern))
}

// nodeRoutes mounts the node forms of one concern:
//
//	/new_to_root/             node hanging off the concern
//	/edit/{node_id}/          rewrite a node and its targets
//	/{node_id}/new_source/    node pointing at node_id
//	/{node_id}/new_target/    node that node_id points at
func (s *Server) nodeRoutes(r chi.Router) {
	r.Get("/new_to_root/", s.handleNewNodeForm(true))
	r.Post("/new_to_root/", s.handleCreateNode(func(userID string, n *models.Node, _ string) error {
		return s.db.CreateNodeToRoot(userID, n)
	}))

	r.Get("/edit/{node_id}/", s.handleGetNode)
	r.Post("/edit/{node_id}/", s.handleUpdateNode)

	r.Get("/{node_id}/new_source/", s.handleNewNodeForm(false))
	r.Post("/{node_id}/new_source/", s.handleCreateNode(func(userID string, n *models.Node, nodeID string) error {
		return s.db.CreateSourceOf(userID, nodeID, n)
	}))

	r.Get("/{node_id}/new_target/", s.handleNewNodeForm(false))
	r.Post("/{node_id}/new_target/", s.handleCreateNode(func(userID string, n *models.Node, nodeID string) error {
		return s.db.CreateTargetOf(userID, nodeID, n)
	}))
}

// handleNewNodeForm returns the initial values of a new node once the
// concern (and the anchor node, when there is one) is known to exist.
func (s *Server) handleNewNodeForm(toRoot bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := currentUser(r).ID
		concernID := chi.URLParam(r, "id")
		if _, err := s.db.GetConcern(userID, concernID); err != nil {
			s.fail(w, r, err)
			return
		}
		if nodeID := chi.URLParam(r, "node_id"); nodeID != "" {
			if _, err := s.db.GetNode(userID, concernID, nodeID); err != nil {
				s.fail(w, r, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, &models.Node{
			ConcernID: concernID,
			ToRoot:    toRoot,
			TargetIDs: []string{},
		})
	}
}

func (s *Server) handleCreateNode(create func(userID string, n *models.Node, nodeID string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n := new(models.Node)
		if err := decode(r, n); err != nil {
			s.fail(w, r, err)
			return
		}
		n.ConcernID = chi.URLParam(r, "id")
		if err := create(currentUser(r).ID, n, chi.URLParam(r, "node_id")); err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, n)
	}
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	n, err := s.db.GetNode(currentUser(r).ID, chi.URLParam(r, "id"), chi.URLParam(r, "node_id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleUpdateNode(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	n, err := s.db.GetNode(userID, chi.URLParam(r, "id"), chi.URLParam(r, "node_id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	keep, concernID := n.Record, n.ConcernID
	if err := decode(r, n); err != nil {
		s.fail(w, r, err)
		return
	}
	n.Record, n.ConcernID = keep, concernID
	if err := s.db.UpdateNode(userID, n); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}
