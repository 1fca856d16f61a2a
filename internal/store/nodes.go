package store

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/lazypower/lifelog/internal/models"
)

const nodeColumns = `id, user_id, concern_id, content, to_root, node_type, created_at, updated_at`

func scanNode(s scanner) (*models.Node, error) {
	var n models.Node
	var created, updated int64
	if err := s.Scan(&n.ID, &n.UserID, &n.ConcernID, &n.Content, &n.ToRoot, &n.NodeType, &created, &updated); err != nil {
		return nil, err
	}
	n.CreatedAt = fromMS(created)
	n.UpdatedAt = fromMS(updated)
	return &n, nil
}

// ListNodes returns the nodes of one of userID's concerns in creation
// order. Target and source ids are not loaded; see ConcernGraph.
func (db *DB) ListNodes(userID, concernID string) ([]models.Node, error) {
	rows, err := db.Query(`
		SELECT `+nodeColumns+` FROM nodes
		WHERE user_id = ? AND concern_id = ?
		ORDER BY id
	`, userID, concernID)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	var out []models.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// GetNode returns a node of the given concern with its targets and sources.
func (db *DB) GetNode(userID, concernID, id string) (*models.Node, error) {
	n, err := scanNode(db.QueryRow(`
		SELECT `+nodeColumns+` FROM nodes
		WHERE id = ? AND user_id = ? AND concern_id = ?
	`, id, userID, concernID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("node %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get node: %w", err)
	}

	if n.TargetIDs, err = db.nodeLinks(`SELECT target_id FROM node_targets WHERE source_id = ? ORDER BY target_id`, id); err != nil {
		return nil, err
	}
	if n.SourceIDs, err = db.nodeLinks(`SELECT source_id FROM node_targets WHERE target_id = ? ORDER BY source_id`, id); err != nil {
		return nil, err
	}
	return n, nil
}

func (db *DB) nodeLinks(query, id string) ([]string, error) {
	rows, err := db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("node links: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var linked string
		if err := rows.Scan(&linked); err != nil {
			return nil, fmt.Errorf("scan node link: %w", err)
		}
		out = append(out, linked)
	}
	return out, rows.Err()
}

func (db *DB) listEdges(q querier, concernID string) ([]models.Edge, error) {
	rows, err := q.Query(`
		SELECT nt.source_id, nt.target_id
		FROM node_targets nt JOIN nodes n ON n.id = nt.source_id
		WHERE n.concern_id = ?
		ORDER BY nt.source_id, nt.target_id
	`, concernID)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	defer rows.Close()

	var out []models.Edge
	for rows.Next() {
		var e models.Edge
		if err := rows.Scan(&e.SourceID, &e.TargetID); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// checkPeers reports a validation error on field unless every id names a
// node of the same user and concern.
func checkPeers(q querier, userID, concernID, field string, nodeIDs []string) error {
	for _, id := range nodeIDs {
		var one int
		err := q.QueryRow(`
			SELECT 1 FROM nodes WHERE id = ? AND user_id = ? AND concern_id = ?
		`, id, userID, concernID).Scan(&one)
		if err == sql.ErrNoRows {
			return models.FieldError(field, fmt.Sprintf("node %s is not part of this concern", id))
		}
		if err != nil {
			return fmt.Errorf("check node %s: %w", id, err)
		}
	}
	return nil
}

func insertEdges(q querier, pairs []models.Edge) error {
	for _, e := range pairs {
		if _, err := q.Exec(`
			INSERT OR IGNORE INTO node_targets (source_id, target_id) VALUES (?, ?)
		`, e.SourceID, e.TargetID); err != nil {
			return fmt.Errorf("link %s -> %s: %w", e.SourceID, e.TargetID, err)
		}
	}
	return nil
}

// CreateNode inserts a node under one of userID's concerns, linking it to
// n.TargetIDs and linking each of sourceIDs to it, all in one transaction.
func (db *DB) CreateNode(userID string, n *models.Node, sourceIDs ...string) error {
	n.Content = strings.TrimSpace(n.Content)
	if err := n.Validate(); err != nil {
		return err
	}
	return db.withTx(func(tx *sql.Tx) error {
		if err := owned(tx, "concerns", userID, n.ConcernID); err != nil {
			return err
		}
		if err := checkPeers(tx, userID, n.ConcernID, "target_ids", n.TargetIDs); err != nil {
			return err
		}
		if err := checkPeers(tx, userID, n.ConcernID, "source_ids", sourceIDs); err != nil {
			return err
		}

		db.stamp(&n.Record, userID)
		if _, err := tx.Exec(`
			INSERT INTO nodes (`+nodeColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, n.ID, n.UserID, n.ConcernID, n.Content, n.ToRoot, n.NodeType,
			toMS(n.CreatedAt), toMS(n.UpdatedAt)); err != nil {
			return fmt.Errorf("create node: %w", err)
		}

		var pairs []models.Edge
		for _, t := range n.TargetIDs {
			pairs = append(pairs, models.Edge{SourceID: n.ID, TargetID: t})
		}
		for _, s := range sourceIDs {
			pairs = append(pairs, models.Edge{SourceID: s, TargetID: n.ID})
		}
		if err := insertEdges(tx, pairs); err != nil {
			return err
		}
		if n.TargetIDs == nil {
			n.TargetIDs = []string{}
		}
		n.SourceIDs = append([]string(nil), sourceIDs...)
		return nil
	})
}

// CreateNodeToRoot adds a node hanging directly off the concern.
func (db *DB) CreateNodeToRoot(userID string, n *models.Node) error {
	n.ToRoot = true
	return db.CreateNode(userID, n)
}

// CreateSourceOf adds a node that points at an existing target node.
func (db *DB) CreateSourceOf(userID, targetID string, n *models.Node) error {
	if _, err := db.GetNode(userID, n.ConcernID, targetID); err != nil {
		return err
	}
	if !slices.Contains(n.TargetIDs, targetID) {
		n.TargetIDs = append(n.TargetIDs, targetID)
	}
	return db.CreateNode(userID, n)
}

// CreateTargetOf adds a node that an existing source node points at.
func (db *DB) CreateTargetOf(userID, sourceID string, n *models.Node) error {
	if _, err := db.GetNode(userID, n.ConcernID, sourceID); err != nil {
		return err
	}
	return db.CreateNode(userID, n, sourceID)
}

// UpdateNode rewrites a node and replaces its outgoing targets with
// n.TargetIDs. Incoming links from other nodes are left alone.
func (db *DB) UpdateNode(userID string, n *models.Node) error {
	n.Content = strings.TrimSpace(n.Content)
	if err := n.Validate(); err != nil {
		return err
	}
	return db.withTx(func(tx *sql.Tx) error {
		if err := checkPeers(tx, userID, n.ConcernID, "target_ids", n.TargetIDs); err != nil {
			return err
		}

		n.UserID = userID
		n.UpdatedAt = db.now()
		res, err := tx.Exec(`
			UPDATE nodes SET content = ?, to_root = ?, node_type = ?, updated_at = ?
			WHERE id = ? AND user_id = ? AND concern_id = ?
		`, n.Content, n.ToRoot, n.NodeType, toMS(n.UpdatedAt), n.ID, userID, n.ConcernID)
		if err != nil {
			return fmt.Errorf("update node: %w", err)
		}
		if err := affected(res, "node", n.ID); err != nil {
			return err
		}

		if _, err := tx.Exec(`DELETE FROM node_targets WHERE source_id = ?`, n.ID); err != nil {
			return fmt.Errorf("clear node targets: %w", err)
		}
		pairs := make([]models.Edge, 0, len(n.TargetIDs))
		for _, t := range n.TargetIDs {
			pairs = append(pairs, models.Edge{SourceID: n.ID, TargetID: t})
		}
		return insertEdges(tx, pairs)
	})
}
