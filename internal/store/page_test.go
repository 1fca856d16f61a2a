package store

import (
	"math"
	"testing"

	"github.com/lazypower/lifelog/internal/models"
)

func TestPageLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		page       Page
		total      int
		wantLimit  int
		wantOffset int
	}{
		{"first page", Page{Number: 1, Size: 20}, 45, 20, 0},
		{"last page", Page{Number: 3, Size: 20}, 45, 20, 40},
		{"past the end", Page{Number: 9, Size: 20}, 45, 20, 40},
		{"max int", Page{Number: math.MaxInt, Size: 20}, 45, 20, 40},
		{"empty listing", Page{Number: 5, Size: 20}, 0, 20, 0},
		{"zero number", Page{Number: 0, Size: 10}, 45, 10, 0},
		{"default size", Page{Number: 2}, 45, DefaultPageSize, DefaultPageSize},
		{"unlimited", Page{Number: 7, Size: -1}, 45, -1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := tt.page.limitOffset(tt.total)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("limitOffset(%d) = %d, %d; want %d, %d", tt.total, limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestListPastLastPage(t *testing.T) {
	db := testDB(t)
	uid := testUser(t, db, "p@example.com")
	for _, name := range []string{"coffee", "walk", "nap"} {
		if err := db.CreateEvent(uid, &models.Event{Name: name}); err != nil {
			t.Fatalf("CreateEvent(%s): %v", name, err)
		}
	}

	page, err := db.ListEvents(uid, Page{Number: math.MaxInt, Size: 2})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if page.Page != 2 {
		t.Errorf("page = %d, want 2", page.Page)
	}
	if len(page.Items) != 1 || page.Items[0].Name != "coffee" {
		t.Errorf("items = %+v, want only the oldest event", page.Items)
	}
	if page.HasNext() {
		t.Error("HasNext = true on the last page")
	}
}
