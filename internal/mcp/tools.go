package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lazypower/lifelog/internal/mindgraph"
	"github.com/lazypower/lifelog/internal/models"
	"github.com/lazypower/lifelog/internal/store"
)

const defaultNoteLimit = 20

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_events",
		Description: "List the journal's events with when each last happened",
	}, s.handleListEvents)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_timestamp",
		Description: "Record that an event happened, now or at a given time",
	}, s.handleAddTimestamp)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_notes",
		Description: "List study notes, newest first, with review progress",
	}, s.handleListNotes)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "random_proverb",
		Description: "Pick a random proverb from the journal",
	}, s.handleRandomProverb)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_concerns",
		Description: "List the concerns that have a mind graph",
	}, s.handleListConcerns)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "concern_graph",
		Description: "Get a concern's mind graph as nodes and edges",
	}, s.handleConcernGraph)
}

type emptyInput struct{}

type eventItem struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	LastAt *time.Time `json:"last_at,omitempty"`
}

type listEventsOutput struct {
	Events []eventItem `json:"events"`
}

type addTimestampInput struct {
	Event string `json:"event" jsonschema:"name of the event"`
	At    string `json:"at,omitempty" jsonschema:"when it happened, RFC 3339 or YYYY-MM-DD HH:MM; defaults to now"`
}

type timestampOutput struct {
	ID      string    `json:"id"`
	EventID string    `json:"event_id"`
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

type listNotesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"max notes to return (default 20)"`
}

type noteItem struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Genre      string  `json:"genre"`
	Language   string  `json:"language"`
	Percentage float64 `json:"percentage"`
}

type listNotesOutput struct {
	Notes []noteItem `json:"notes"`
	Total int        `json:"total"`
}

type proverbOutput struct {
	Content           string `json:"content"`
	FirstMessage      string `json:"first_message"`
	RemainingMessages string `json:"remaining_messages"`
}

type concernItem struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	ConcernType string `json:"concern_type"`
}

type listConcernsOutput struct {
	Concerns []concernItem `json:"concerns"`
}

type concernGraphInput struct {
	ConcernID string `json:"concern_id" jsonschema:"id of the concern"`
}

func (s *Server) handleListEvents(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, listEventsOutput, error) {
	stamps, err := s.db.LatestTimestampsByEvent(s.user.ID)
	if err != nil {
		return nil, listEventsOutput{}, fmt.Errorf("list events: %w", err)
	}
	out := listEventsOutput{Events: make([]eventItem, 0, len(stamps))}
	for _, st := range stamps {
		out.Events = append(out.Events, eventItem{ID: st.Event.ID, Name: st.Event.Name, LastAt: st.LastAt})
	}
	return nil, out, nil
}

func parseAt(v string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized time %q", v)
	}
	return t, nil
}

func (s *Server) handleAddTimestamp(ctx context.Context, req *mcp.CallToolRequest, input addTimestampInput) (*mcp.CallToolResult, timestampOutput, error) {
	name := strings.TrimSpace(input.Event)
	if name == "" {
		return nil, timestampOutput{}, errors.New("event is required")
	}
	ev, err := s.db.FindEventByName(s.user.ID, name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, timestampOutput{}, fmt.Errorf("no event named %q", name)
	}
	if err != nil {
		return nil, timestampOutput{}, err
	}

	ts := &models.Timestamp{EventID: ev.ID, At: s.now()}
	if input.At != "" {
		if ts.At, err = parseAt(input.At, s.loc); err != nil {
			return nil, timestampOutput{}, err
		}
	}
	if err := s.db.CreateTimestamp(s.user.ID, ts); err != nil {
		return nil, timestampOutput{}, fmt.Errorf("add timestamp: %w", err)
	}

	return nil, timestampOutput{
		ID:      ts.ID,
		EventID: ev.ID,
		At:      ts.At,
		Message: fmt.Sprintf("Recorded %s at %s", ev.Name, ts.At.In(s.loc).Format("2006-01-02 15:04")),
	}, nil
}

func (s *Server) handleListNotes(ctx context.Context, req *mcp.CallToolRequest, input listNotesInput) (*mcp.CallToolResult, listNotesOutput, error) {
	if input.Limit <= 0 {
		input.Limit = defaultNoteLimit
	}
	page, err := s.db.ListNotes(s.user.ID, store.Page{Number: 1, Size: input.Limit})
	if err != nil {
		return nil, listNotesOutput{}, fmt.Errorf("list notes: %w", err)
	}
	out := listNotesOutput{Notes: make([]noteItem, 0, len(page.Items)), Total: page.Total}
	for i := range page.Items {
		n := &page.Items[i]
		out.Notes = append(out.Notes, noteItem{
			ID:         n.ID,
			Title:      n.Title,
			Genre:      n.GenreName,
			Language:   n.GenreLanguage,
			Percentage: n.Percentage(),
		})
	}
	return nil, out, nil
}

func (s *Server) handleRandomProverb(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, proverbOutput, error) {
	p, err := s.db.RandomProverb(s.user.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, proverbOutput{}, errors.New("no proverbs recorded yet")
	}
	if err != nil {
		return nil, proverbOutput{}, err
	}
	return nil, proverbOutput{
		Content:           p.Content,
		FirstMessage:      p.FirstMessage(),
		RemainingMessages: p.RemainingMessages(),
	}, nil
}

func (s *Server) handleListConcerns(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, listConcernsOutput, error) {
	page, err := s.db.ListConcerns(s.user.ID, store.All)
	if err != nil {
		return nil, listConcernsOutput{}, fmt.Errorf("list concerns: %w", err)
	}
	out := listConcernsOutput{Concerns: make([]concernItem, 0, len(page.Items))}
	for _, c := range page.Items {
		out.Concerns = append(out.Concerns, concernItem{ID: c.ID, Content: c.Content, ConcernType: c.ConcernType.String()})
	}
	return nil, out, nil
}

func (s *Server) handleConcernGraph(ctx context.Context, req *mcp.CallToolRequest, input concernGraphInput) (*mcp.CallToolResult, mindgraph.Rendered, error) {
	g, err := s.db.ConcernGraph(s.user.ID, input.ConcernID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, mindgraph.Rendered{}, fmt.Errorf("concern not found: %s", input.ConcernID)
	}
	if err != nil {
		return nil, mindgraph.Rendered{}, err
	}
	return nil, mindgraph.New(g.Nodes, g.Edges).Render(g.Concern), nil
}
