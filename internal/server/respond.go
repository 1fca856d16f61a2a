package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/lazypower/lifelog/internal/logger"
	"github.com/lazypower/lifelog/internal/models"
	"github.com/lazypower/lifelog/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps err onto a response: field errors are 400, missing rows 404,
// anything else a logged 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if v, ok := models.AsValidation(err); ok {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": v})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"err", err,
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return models.FieldError("body", "invalid json: "+err.Error())
	}
	return nil
}

// decodeRequired decodes like decode and reports every key in required that
// the body sets to null, or on a full write (partial false) leaves out.
func decodeRequired(r *http.Request, v any, required []string, partial bool) error {
	if len(required) == 0 {
		return decode(r, v)
	}
	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		body = bytes.TrimSpace(b)
	}

	var fields map[string]json.RawMessage
	if len(body) > 0 {
		if err := json.Unmarshal(body, v); err != nil {
			return models.FieldError("body", "invalid json: "+err.Error())
		}
		json.Unmarshal(body, &fields)
	}

	errs := models.ValidationErrors{}
	for _, key := range required {
		raw, ok := fields[key]
		if (ok && string(raw) == "null") || (!ok && !partial) {
			errs.Add(key, "this field is required")
		}
	}
	return errs.Err()
}

// page reads ?page= with the configured page size.
func (s *Server) page(r *http.Request) store.Page {
	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || n < 1 {
		n = 1
	}
	return store.Page{Number: n, Size: s.opts.Journal.PageSize}
}

// requestLogger logs one line per request after it completes.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logger.Info("http",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"dur", time.Since(start).Round(time.Microsecond),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
