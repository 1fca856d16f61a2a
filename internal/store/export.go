package store

import (
	"fmt"
	"time"

	"github.com/lazypower/lifelog/internal/models"
)

// Export is a complete dump of one user's journal.
type Export struct {
	ExportedAt    time.Time             `json:"exported_at" yaml:"exported_at"`
	User          models.User           `json:"user" yaml:"user"`
	Events        []models.Event        `json:"events" yaml:"events"`
	Timestamps    []models.Timestamp    `json:"timestamps" yaml:"timestamps"`
	Themes        []models.Theme        `json:"themes" yaml:"themes"`
	PDCs          []models.PDC          `json:"pdcs" yaml:"pdcs"`
	Weather       []models.Weather      `json:"weather" yaml:"weather"`
	LogTitles     []models.LogTitle     `json:"log_titles" yaml:"log_titles"`
	Logs          []models.Log          `json:"logs" yaml:"logs"`
	Proverbs      []models.Proverb      `json:"proverbs" yaml:"proverbs"`
	Routines      []models.Routine      `json:"routines" yaml:"routines"`
	RoutineStamps []models.RoutineStamp `json:"routine_stamps" yaml:"routine_stamps"`
	Genres        []models.Genre        `json:"genres" yaml:"genres"`
	Notes         []models.Note         `json:"notes" yaml:"notes"`
	Concerns      []Graph               `json:"concerns" yaml:"concerns"`
}

// ExportUser collects every record owned by userID.
func (db *DB) ExportUser(userID string) (*Export, error) {
	u, err := db.GetUser(userID)
	if err != nil {
		return nil, err
	}
	out := &Export{ExportedAt: db.now(), User: *u}

	if out.Events, err = items(db.ListEvents(userID, All)); err != nil {
		return nil, fmt.Errorf("export events: %w", err)
	}
	if out.Timestamps, err = items(db.ListTimestamps(userID, All)); err != nil {
		return nil, fmt.Errorf("export timestamps: %w", err)
	}
	if out.Themes, err = items(db.ListThemes(userID, All)); err != nil {
		return nil, fmt.Errorf("export themes: %w", err)
	}
	undone, err := items(db.ListPDCs(userID, false, All))
	if err != nil {
		return nil, fmt.Errorf("export pdcs: %w", err)
	}
	done, err := items(db.ListPDCs(userID, true, All))
	if err != nil {
		return nil, fmt.Errorf("export pdcs: %w", err)
	}
	out.PDCs = append(undone, done...)
	if out.Weather, err = items(db.ListWeather(userID, All)); err != nil {
		return nil, fmt.Errorf("export weather: %w", err)
	}
	if out.LogTitles, err = items(db.ListLogTitles(userID, All)); err != nil {
		return nil, fmt.Errorf("export log titles: %w", err)
	}
	if out.Logs, err = items(db.ListLogs(userID, All)); err != nil {
		return nil, fmt.Errorf("export logs: %w", err)
	}
	if out.Proverbs, err = items(db.ListProverbs(userID, All)); err != nil {
		return nil, fmt.Errorf("export proverbs: %w", err)
	}
	if out.Routines, err = items(db.ListRoutines(userID, All)); err != nil {
		return nil, fmt.Errorf("export routines: %w", err)
	}
	if out.RoutineStamps, err = items(db.ListRoutineStamps(userID, All)); err != nil {
		return nil, fmt.Errorf("export routine stamps: %w", err)
	}
	if out.Genres, err = items(db.ListGenres(userID, All)); err != nil {
		return nil, fmt.Errorf("export genres: %w", err)
	}
	if out.Notes, err = items(db.ListNotes(userID, All)); err != nil {
		return nil, fmt.Errorf("export notes: %w", err)
	}

	concerns, err := items(db.ListConcerns(userID, All))
	if err != nil {
		return nil, fmt.Errorf("export concerns: %w", err)
	}
	out.Concerns = make([]Graph, 0, len(concerns))
	for _, c := range concerns {
		g, err := db.ConcernGraph(userID, c.ID)
		if err != nil {
			return nil, fmt.Errorf("export concern %s: %w", c.ID, err)
		}
		out.Concerns = append(out.Concerns, *g)
	}
	return out, nil
}

func items[T any](p *Paged[T], err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	return p.Items, nil
}
