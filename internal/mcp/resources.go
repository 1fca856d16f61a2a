package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lazypower/lifelog/internal/models"
	"github.com/lazypower/lifelog/internal/store"
)

const todayURI = "lifelog://today"

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         todayURI,
		Name:        "Today",
		Description: "Today's date, each event's latest stamp, and the open PDC count",
		MIMEType:    "application/json",
	}, s.handleTodayResource)
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	stamps, err := s.db.LatestTimestampsByEvent(s.user.ID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if stamps == nil {
		stamps = []models.EventStamp{}
	}
	open, err := s.db.ListPDCs(s.user.ID, false, store.Page{Number: 1, Size: 1})
	if err != nil {
		return nil, fmt.Errorf("count pdcs: %w", err)
	}

	data, err := json.MarshalIndent(map[string]any{
		"date":      models.NewDate(s.now().In(s.loc)),
		"events":    stamps,
		"open_pdcs": open.Total,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal today: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      todayURI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
