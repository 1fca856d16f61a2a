package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lazypower/lifelog/internal/models"
)

// CreateConcern inserts the root of a new mind graph.
func (db *DB) CreateConcern(userID string, c *models.Concern) error {
	c.Content = strings.TrimSpace(c.Content)
	if err := c.Validate(); err != nil {
		return err
	}
	db.stamp(&c.Record, userID)
	_, err := db.Exec(`
		INSERT INTO concerns (id, user_id, content, concern_type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, c.ID, c.UserID, c.Content, c.ConcernType, toMS(c.CreatedAt), toMS(c.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create concern: %w", err)
	}
	return nil
}

func scanConcern(s scanner) (*models.Concern, error) {
	var c models.Concern
	var created, updated int64
	if err := s.Scan(&c.ID, &c.UserID, &c.Content, &c.ConcernType, &created, &updated); err != nil {
		return nil, err
	}
	c.CreatedAt = fromMS(created)
	c.UpdatedAt = fromMS(updated)
	return &c, nil
}

// GetConcern returns one of userID's concerns.
func (db *DB) GetConcern(userID, id string) (*models.Concern, error) {
	c, err := scanConcern(db.QueryRow(`
		SELECT id, user_id, content, concern_type, created_at, updated_at
		FROM concerns WHERE id = ? AND user_id = ?
	`, id, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("concern %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get concern: %w", err)
	}
	return c, nil
}

// ListConcerns returns userID's concerns, newest first.
func (db *DB) ListConcerns(userID string, p Page) (*Paged[models.Concern], error) {
	total, err := db.count(db, `SELECT COUNT(*) FROM concerns WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("count concerns: %w", err)
	}
	limit, offset := p.limitOffset(total)
	rows, err := db.Query(`
		SELECT id, user_id, content, concern_type, created_at, updated_at
		FROM concerns WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list concerns: %w", err)
	}
	defer rows.Close()

	var out []models.Concern
	for rows.Next() {
		c, err := scanConcern(rows)
		if err != nil {
			return nil, fmt.Errorf("scan concern: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newPaged(out, p, total), nil
}

// UpdateConcern rewrites a concern's content and type.
func (db *DB) UpdateConcern(userID string, c *models.Concern) error {
	c.Content = strings.TrimSpace(c.Content)
	if err := c.Validate(); err != nil {
		return err
	}
	c.UserID = userID
	c.UpdatedAt = db.now()
	res, err := db.Exec(`
		UPDATE concerns SET content = ?, concern_type = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, c.Content, c.ConcernType, toMS(c.UpdatedAt), c.ID, userID)
	if err != nil {
		return fmt.Errorf("update concern: %w", err)
	}
	return affected(res, "concern", c.ID)
}

// Graph is a concern with every node and edge beneath it.
type Graph struct {
	Concern models.Concern `json:"concern" yaml:"concern"`
	Nodes   []models.Node  `json:"nodes" yaml:"nodes"`
	Edges   []models.Edge  `json:"edges" yaml:"edges"`
}

// ConcernGraph loads a concern's nodes, each with its target and source
// ids filled in, plus the flat edge list.
func (db *DB) ConcernGraph(userID, concernID string) (*Graph, error) {
	c, err := db.GetConcern(userID, concernID)
	if err != nil {
		return nil, err
	}
	nodes, err := db.ListNodes(userID, concernID)
	if err != nil {
		return nil, err
	}
	edges, err := db.listEdges(db, concernID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Node, len(nodes))
	for i := range nodes {
		nodes[i].TargetIDs = []string{}
		byID[nodes[i].ID] = &nodes[i]
	}
	for _, e := range edges {
		if n, ok := byID[e.SourceID]; ok {
			n.TargetIDs = append(n.TargetIDs, e.TargetID)
		}
		if n, ok := byID[e.TargetID]; ok {
			n.SourceIDs = append(n.SourceIDs, e.SourceID)
		}
	}
	if edges == nil {
		edges = []models.Edge{}
	}
	return &Graph{Concern: *c, Nodes: nodes, Edges: edges}, nil
}
