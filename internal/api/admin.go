package api

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/sirdesai22/recap-service/internal/blocks"
	"github.com/sirdesai22/recap-service/internal/editor"
	"github.com/sirdesai22/recap-service/internal/migration"
	"github.com/sirdesai22/recap-service/internal/render"
	"github.com/sirdesai22/recap-service/internal/services"
	"github.com/sirdesai22/recap-service/internal/storage"
)

const (
	maxUploadBytes = 10 << 20
	defaultFolder  = "recaps"
)

// ---------------- RECAPS ----------------

func (s *Server) listRecaps(w http.ResponseWriter, r *http.Request) {
	published := r.URL.Query().Get("published") == "true"
	list, err := s.Recaps.ListRecaps(r.Context(), published)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type createRecapRequest struct {
	EventID uuid.UUID `json:"event_id"`
	Title   string    `json:"title"`
}

func (s *Server) createRecap(w http.ResponseWriter, r *http.Request) {
	var req createRecapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.EventID == uuid.Nil {
		writeError(w, r, badRequest("event_id is required"))
		return
	}
	recap, err := s.Recaps.CreateRecap(r.Context(), req.EventID, req.Title)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recap)
}

func (s *Server) getRecap(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recap, err := s.Recaps.GetRecap(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recap)
}

func (s *Server) updateMeta(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var m services.Meta
	if err := decodeJSON(r, &m); err != nil {
		writeError(w, r, err)
		return
	}
	recap, err := s.Recaps.UpdateMeta(r.Context(), id, m)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recap)
}

func (s *Server) deleteRecap(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.Recaps.DeleteRecap(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) togglePublish(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recap, err := s.Recaps.TogglePublish(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recap)
}

// preview renders a recap whether or not it is published. It never touches
// the page cache.
func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recap, err := s.Recaps.GetRecap(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := s.renderPage(render.ContextFromQuery(r.URL.Path, r.URL.Query()), recap)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeHTML(w, page)
}

// ---------------- BLOCKS ----------------

type addBlockRequest struct {
	Type blocks.Type `json:"type"`
}

func (s *Server) addBlock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req addBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := s.Recaps.AddBlock(r.Context(), id, req.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) saveBlock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var b blocks.ContentBlock
	if err := decodeJSON(r, &b); err != nil {
		writeError(w, r, err)
		return
	}
	b.ID = r.PathValue("blockID")
	saved, err := s.Recaps.SaveBlock(r.Context(), id, b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

type editBlockRequest struct {
	Ops []editor.Op `json:"ops"`
}

func (s *Server) editBlock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req editBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if len(req.Ops) == 0 {
		writeError(w, r, badRequest("ops must not be empty"))
		return
	}
	saved, err := s.Recaps.EditBlock(r.Context(), id, r.PathValue("blockID"), req.Ops)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) deleteBlock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.Recaps.DeleteBlock(r.Context(), id, r.PathValue("blockID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// blockForm returns the form descriptor the admin UI builds its editor from.
func (s *Server) blockForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	recap, err := s.Recaps.GetRecap(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := recap.Blocks()
	if err != nil {
		writeError(w, r, err)
		return
	}
	blockID := r.PathValue("blockID")
	i, ok := blocks.Find(list, blockID)
	if !ok {
		writeError(w, r, fmt.Errorf("block %s: %w", blockID, blocks.ErrBlockNotFound))
		return
	}
	sess, err := editor.NewSession(list[i])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Form())
}

type moveBlockRequest struct {
	Delta int `json:"delta"`
}

func (s *Server) moveBlock(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req moveBlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.Recaps.MoveBlock(r.Context(), id, r.PathValue("blockID"), req.Delta)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ---------------- MIGRATION ----------------

func (s *Server) migrator(r *http.Request) (*migration.Migrator, error) {
	if s.Migrator == nil {
		return nil, fmt.Errorf("migration: %w", errUnavailable)
	}
	dry := false
	if v := r.URL.Query().Get("dry_run"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, badRequest("dry_run must be a boolean")
		}
		dry = b
	}
	return s.Migrator.WithDryRun(dry), nil
}

func (s *Server) migrateAll(w http.ResponseWriter, r *http.Request) {
	m, err := s.migrator(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	results, err := m.Run(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) migrateEvent(w http.ResponseWriter, r *http.Request) {
	m, err := s.migrator(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	res, err := m.MigrateEvent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ---------------- UPLOADS ----------------

type uploadResponse struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// uploadFolder keeps caller-chosen folders inside the bucket prefix.
func uploadFolder(v string) string {
	f := strings.Trim(path.Clean("/"+strings.TrimSpace(v)), "/")
	if f == "" {
		return defaultFolder
	}
	return f
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	if s.Uploads == nil {
		writeError(w, r, fmt.Errorf("uploads: %w", errUnavailable))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, r, badRequest("invalid upload: %v", err))
		return
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, badRequest("file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(data) > maxUploadBytes {
		writeError(w, r, badRequest("file is larger than %d bytes", maxUploadBytes))
		return
	}
	ct := hdr.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = http.DetectContentType(data)
	}

	key := storage.UploadKey(uploadFolder(r.FormValue("folder")), hdr.Filename)
	url, err := s.Uploads.Upload(r.Context(), key, data, ct)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{URL: url, Key: key})
}

// deleteUpload removes an uploaded object by its public URL, for images the
// editor dropped from a gallery.
func (s *Server) deleteUpload(w http.ResponseWriter, r *http.Request) {
	if s.Uploads == nil {
		writeError(w, r, fmt.Errorf("uploads: %w", errUnavailable))
		return
	}
	raw := r.URL.Query().Get("url")
	key, ok := s.Uploads.KeyForURL(raw)
	if !ok {
		writeError(w, r, badRequest("%q is not an uploaded object", raw))
		return
	}
	if err := s.Uploads.Delete(r.Context(), key); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------- SEARCH SYNC ----------------

func queryLimit(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n <= 0 || n > 500 {
		return 100
	}
	return n
}

func (s *Server) listOutbox(w http.ResponseWriter, r *http.Request) {
	if s.Sync == nil {
		writeError(w, r, fmt.Errorf("search sync: %w", errUnavailable))
		return
	}
	list, err := s.Sync.Outbox(r.Context(), queryLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) listDLQ(w http.ResponseWriter, r *http.Request) {
	if s.Sync == nil {
		writeError(w, r, fmt.Errorf("search sync: %w", errUnavailable))
		return
	}
	unresolved := r.URL.Query().Get("unresolved") == "true"
	list, err := s.Sync.DLQ(r.Context(), queryLimit(r), unresolved)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) retryDLQ(w http.ResponseWriter, r *http.Request) {
	if s.Sync == nil {
		writeError(w, r, fmt.Errorf("search sync: %w", errUnavailable))
		return
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, badRequest("id is not a valid dlq id"))
		return
	}
	if err := s.Sync.RetryRecord(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "retried"})
}

func (s *Server) reindex(w http.ResponseWriter, r *http.Request) {
	n, err := s.Recaps.Reindex(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"queued": n})
}
