package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazypower/lifelog/internal/models"
	"github.com/lazypower/lifelog/internal/store"
)

func setupServer(t *testing.T) (*Server, *store.DB) {
	t.Helper()
	db, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	u := &models.User{Email: "me@example.com", IsActive: true, PasswordHash: "!"}
	require.NoError(t, db.CreateUser(u))

	s := NewServer(db, u, "test")
	s.loc = time.UTC
	s.now = func() time.Time { return time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC) }
	return s, db
}

func TestNewServer(t *testing.T) {
	s, _ := setupServer(t)
	assert.NotNil(t, s.mcpServer)
	assert.Equal(t, "me@example.com", s.user.Email)
}

func TestAddTimestampAndListEvents(t *testing.T) {
	s, db := setupServer(t)
	ctx := context.Background()
	require.NoError(t, db.CreateEvent(s.user.ID, &models.Event{Name: "coffee"}))
	require.NoError(t, db.CreateEvent(s.user.ID, &models.Event{Name: "walk"}))

	tests := []struct {
		name    string
		input   addTimestampInput
		wantAt  time.Time
		wantErr string
	}{
		{"defaults to now", addTimestampInput{Event: "coffee"}, time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), ""},
		{"rfc3339", addTimestampInput{Event: "coffee", At: "2024-03-09T07:30:00Z"}, time.Date(2024, 3, 9, 7, 30, 0, 0, time.UTC), ""},
		{"short form", addTimestampInput{Event: " walk ", At: "2024-03-09 18:00"}, time.Date(2024, 3, 9, 18, 0, 0, 0, time.UTC), ""},
		{"unknown event", addTimestampInput{Event: "tea"}, time.Time{}, "no event named"},
		{"blank event", addTimestampInput{}, time.Time{}, "event is required"},
		{"bad time", addTimestampInput{Event: "coffee", At: "yesterday"}, time.Time{}, "unrecognized time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := s.handleAddTimestamp(ctx, &mcp.CallToolRequest{}, tt.input)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, out.At.Equal(tt.wantAt), "at = %v", out.At)
			assert.NotEmpty(t, out.ID)
		})
	}

	_, events, err := s.handleListEvents(ctx, &mcp.CallToolRequest{}, emptyInput{})
	require.NoError(t, err)
	require.Len(t, events.Events, 2)
	assert.Equal(t, "coffee", events.Events[0].Name)
	require.NotNil(t, events.Events[0].LastAt)
	assert.True(t, events.Events[0].LastAt.Equal(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)))
}

func TestListNotes(t *testing.T) {
	s, db := setupServer(t)
	ctx := context.Background()

	g := &models.Genre{Name: "basics", Language: "go"}
	require.NoError(t, db.CreateGenre(s.user.ID, g))
	for _, title := range []string{"maps", "slices", "channels"} {
		require.NoError(t, db.CreateNote(s.user.ID, &models.Note{GenreID: g.ID, Title: title, Code: "x", IsReviewed1: true}))
	}

	_, out, err := s.handleListNotes(ctx, &mcp.CallToolRequest{}, listNotesInput{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Total)
	require.Len(t, out.Notes, 2)
	assert.Equal(t, "go", out.Notes[0].Language)
	assert.Equal(t, 20.0, out.Notes[0].Percentage)
}

func TestRandomProverb(t *testing.T) {
	s, db := setupServer(t)
	ctx := context.Background()

	_, _, err := s.handleRandomProverb(ctx, &mcp.CallToolRequest{}, emptyInput{})
	require.Error(t, err)

	require.NoError(t, db.CreateProverb(s.user.ID, &models.Proverb{Content: "継続は力なり。続ければ分かる。"}))
	_, out, err := s.handleRandomProverb(ctx, &mcp.CallToolRequest{}, emptyInput{})
	require.NoError(t, err)
	assert.Equal(t, "継続は力なり。", out.FirstMessage)
	assert.Equal(t, "続ければ分かる。", out.RemainingMessages)
}

func TestConcernGraph(t *testing.T) {
	s, db := setupServer(t)
	ctx := context.Background()

	c := &models.Concern{Content: "why late", ConcernType: models.ConcernAnalyze}
	require.NoError(t, db.CreateConcern(s.user.ID, c))
	root := &models.Node{ConcernID: c.ID, Content: "overslept"}
	require.NoError(t, db.CreateNodeToRoot(s.user.ID, root))
	cause := &models.Node{ConcernID: c.ID, Content: "alarm off"}
	require.NoError(t, db.CreateSourceOf(s.user.ID, root.ID, cause))

	_, list, err := s.handleListConcerns(ctx, &mcp.CallToolRequest{}, emptyInput{})
	require.NoError(t, err)
	require.Len(t, list.Concerns, 1)
	assert.Equal(t, "why-why analysis", list.Concerns[0].ConcernType)

	_, g, err := s.handleConcernGraph(ctx, &mcp.CallToolRequest{}, concernGraphInput{ConcernID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, c.ID, g.Root.ID)
	assert.Len(t, g.Nodes, 2)
	assert.Len(t, g.Edges, 2)

	_, _, err = s.handleConcernGraph(ctx, &mcp.CallToolRequest{}, concernGraphInput{ConcernID: "missing"})
	assert.ErrorContains(t, err, "concern not found")
}

func TestTodayResource(t *testing.T) {
	s, db := setupServer(t)
	require.NoError(t, db.CreateEvent(s.user.ID, &models.Event{Name: "coffee"}))

	res, err := s.handleTodayResource(context.Background(), &mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)

	var body struct {
		Date     string `json:"date"`
		Events   []any  `json:"events"`
		OpenPDCs int    `json:"open_pdcs"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Contents[0].Text), &body))
	assert.Equal(t, "2024-03-10", body.Date)
	assert.Len(t, body.Events, 1)
	assert.Equal(t, 0, body.OpenPDCs)
}
