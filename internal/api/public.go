package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sirdesai22/recap-service/internal/db"
	"github.com/sirdesai22/recap-service/internal/models"
	"github.com/sirdesai22/recap-service/internal/render"
)

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.Recaps.ListEvents(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// publicRecap renders the published recap of an event. The default view is
// served from the page cache; gallery navigation and non-default locales are
// rendered per request.
func (s *Server) publicRecap(w http.ResponseWriter, r *http.Request) {
	eventID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recap, err := s.Recaps.FindRecapByEvent(r.Context(), eventID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !recap.Published {
		writeError(w, r, fmt.Errorf("recap for event %s: %w", eventID, db.ErrNotFound))
		return
	}

	rc := render.ContextFromQuery(r.URL.Path, r.URL.Query())
	lang := rc.Language.String()
	cacheable := s.Cache != nil && rc.Stateless()
	if cacheable {
		if page, ok := s.Cache.Get(r.Context(), recap.ID, lang); ok {
			writeHTML(w, page)
			return
		}
	}

	page, err := s.renderPage(rc, recap)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cacheable {
		if err := s.Cache.Set(r.Context(), recap.ID, lang, page); err != nil {
			log.WithError(err).WithField("recap_id", recap.ID).Warn("⚠️ render cache write failed")
		}
	}
	writeHTML(w, page)
}

func (s *Server) renderPage(rc *render.Context, recap *models.EventRecap) ([]byte, error) {
	p, err := render.RecapPage(recap)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := s.Renderer.WritePage(&buf, rc, p); err != nil {
		return nil, fmt.Errorf("render recap %s: %w", recap.ID, err)
	}
	return buf.Bytes(), nil
}

func writeHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	if s.Search == nil {
		writeError(w, r, fmt.Errorf("search: %w", errUnavailable))
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, r, badRequest("q is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	res, err := s.Search.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
