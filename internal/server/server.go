package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lazypower/lifelog/internal/auth"
	"github.com/lazypower/lifelog/internal/config"
	"github.com/lazypower/lifelog/internal/models"
	"github.com/lazypower/lifelog/internal/store"
)

// Options tune a Server. Zero values fall back to config defaults.
type Options struct {
	Version    string
	CookieName string
	Journal    config.JournalConfig
	Location   *time.Location
}

// Server is the lifelog HTTP API server.
type Server struct {
	db      *store.DB
	auth    *auth.Manager
	opts    Options
	router  chi.Router
	started time.Time
	now     func() time.Time
}

// New creates a Server over db, authenticating requests with am.
func New(db *store.DB, am *auth.Manager, opts Options) *Server {
	def := config.Default()
	if opts.CookieName == "" {
		opts.CookieName = def.Auth.CookieName
	}
	if opts.Journal.SleepTitle == "" {
		opts.Journal.SleepTitle = def.Journal.SleepTitle
	}
	if opts.Journal.PageSize <= 0 {
		opts.Journal.PageSize = def.Journal.PageSize
	}
	if opts.Journal.TabulateDays <= 0 {
		opts.Journal.TabulateDays = def.Journal.TabulateDays
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	s := &Server{
		db:      db,
		auth:    am,
		opts:    opts,
		started: time.Now(),
		now:     time.Now,
	}
	s.routes()
	return s
}

// SetClock overrides the time source used for default form values.
func (s *Server) SetClock(now func() time.Time) {
	s.now = now
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.With(s.requireUser).Get("/me", s.handleMe)
		r.With(s.requireUser).Get("/sessions", s.handleSessions)
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.handleLogin)
		r.With(s.requireUser).Post("/logout", s.handleLogout)
	})

	r.Route("/logs", func(r chi.Router) {
		r.Use(s.requireUser)

		r.Get("/top/", s.handleTop)

		r.Route("/events", func(r chi.Router) {
			mount(r, s, s.eventResource())
			r.Get("/easy/", s.handleEasyEvents)
		})
		r.Route("/timestamps", func(r chi.Router) {
			mount(r, s, s.timestampResource())
			r.Post("/new/{event_id}/", s.handleStampEvent)
			r.Post("/by_name/", s.handleStampByName)
		})
		r.Route("/themes", func(r chi.Router) {
			mount(r, s, s.themeResource())
		})
		r.Route("/pdcs", func(r chi.Router) {
			mount(r, s, s.pdcResource())
		})
		r.Get("/pdcs_done/", s.handlePDCsDone)
		r.Route("/weather", func(r chi.Router) {
			mount(r, s, s.weatherResource())
		})
		r.Route("/log_titles", func(r chi.Router) {
			mount(r, s, s.logTitleResource())
		})
		r.Route("/logs", func(r chi.Router) {
			mount(r, s, s.logResource())
			r.Get("/sleep_index.json/", s.handleSleepIndex)
			r.Get("/sleep_index_tabulate/", s.handleSleepTabulate)
		})
		r.Route("/proverbs", func(r chi.Router) {
			mount(r, s, s.proverbResource())
			r.Get("/detail/", s.handleProverbDetail)
		})
		r.Route("/routines", func(r chi.Router) {
			mount(r, s, s.routineResource())
		})
		r.Route("/routinestamps", func(r chi.Router) {
			mount(r, s, s.routineStampResource())
			r.Get("/tabulate/", s.handleRoutineTabulate)
		})
		r.Route("/genre", func(r chi.Router) {
			mount(r, s, s.genreResource())
		})
		r.Route("/notes", func(r chi.Router) {
			mount(r, s, s.noteResource())
			r.Get("/{id}/detail/{page_number}/", s.handleNoteDetail)
		})
		r.Route("/concerns", func(r chi.Router) {
			mount(r, s, s.concernResource())
			r.Get("/{id}/detail/", s.handleConcernDetail)
			r.Get("/{id}.json/", s.handleConcernJSON)
			r.Route("/{id}/nodes", s.nodeRoutes)
		})
	})

	r.Handle("/*", spaHandler())

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.opts.Version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"user": currentUser(r),
	})
}

// today is the current calendar date in the server's location.
func (s *Server) today() models.Date {
	return models.NewDate(s.now().In(s.opts.Location))
}
