// Package api serves the public recap pages and the admin editing API.
package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/sirdesai22/recap-service/internal/blocks"
	"github.com/sirdesai22/recap-service/internal/editor"
	"github.com/sirdesai22/recap-service/internal/elastic"
	"github.com/sirdesai22/recap-service/internal/migration"
	"github.com/sirdesai22/recap-service/internal/models"
	"github.com/sirdesai22/recap-service/internal/render"
	"github.com/sirdesai22/recap-service/internal/services"
)

// Recaps is the recap service surface the handlers use.
type Recaps interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListRecaps(ctx context.Context, publishedOnly bool) ([]models.EventRecap, error)
	GetRecap(ctx context.Context, id uuid.UUID) (*models.EventRecap, error)
	FindRecapByEvent(ctx context.Context, eventID uuid.UUID) (*models.EventRecap, error)
	CreateRecap(ctx context.Context, eventID uuid.UUID, title string) (*models.EventRecap, error)
	DeleteRecap(ctx context.Context, id uuid.UUID) error
	TogglePublish(ctx context.Context, id uuid.UUID) (*models.EventRecap, error)
	UpdateMeta(ctx context.Context, id uuid.UUID, m services.Meta) (*models.EventRecap, error)
	AddBlock(ctx context.Context, recapID uuid.UUID, t blocks.Type) (blocks.ContentBlock, error)
	SaveBlock(ctx context.Context, recapID uuid.UUID, b blocks.ContentBlock) (blocks.ContentBlock, error)
	EditBlock(ctx context.Context, recapID uuid.UUID, blockID string, ops []editor.Op) (blocks.ContentBlock, error)
	DeleteBlock(ctx context.Context, recapID uuid.UUID, blockID string) error
	MoveBlock(ctx context.Context, recapID uuid.UUID, blockID string, delta int) ([]blocks.ContentBlock, error)
	Reindex(ctx context.Context) (int, error)
}

type Searcher interface {
	Search(ctx context.Context, q string, limit int) (elastic.SearchResult, error)
}

// Uploader stores admin uploads in the object store.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyForURL(url string) (string, bool)
}

// PageCache holds rendered public pages.
type PageCache interface {
	Get(ctx context.Context, recapID uuid.UUID, lang string) ([]byte, bool)
	Set(ctx context.Context, recapID uuid.UUID, lang string, page []byte) error
}

// SyncAdmin exposes the search sync queues.
type SyncAdmin interface {
	Outbox(ctx context.Context, limit int) ([]models.Outbox, error)
	DLQ(ctx context.Context, limit int, unresolvedOnly bool) ([]models.DLQ, error)
	RetryRecord(ctx context.Context, id int64) error
}

// Deps are the collaborators of the HTTP layer. Search, Uploads, Cache and
// Sync are optional; their routes answer 503 when unset.
type Deps struct {
	Recaps    Recaps
	Migrator  *migration.Migrator
	Renderer  *render.Renderer
	Search    Searcher
	Uploads   Uploader
	Cache     PageCache
	Sync      SyncAdmin
	JWTSecret []byte
	Origins   []string
}

type Server struct {
	Deps
}

func NewServer(d Deps) *Server {
	return &Server{Deps: d}
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /events", s.listEvents)
	mux.HandleFunc("GET /events/{id}/recap", s.publicRecap)
	mux.HandleFunc("GET /api/recaps/search", s.search)

	admin := http.NewServeMux()
	admin.HandleFunc("GET /api/admin/recaps", s.listRecaps)
	admin.HandleFunc("POST /api/admin/recaps", s.createRecap)
	admin.HandleFunc("GET /api/admin/recaps/{id}", s.getRecap)
	admin.HandleFunc("PATCH /api/admin/recaps/{id}", s.updateMeta)
	admin.HandleFunc("DELETE /api/admin/recaps/{id}", s.deleteRecap)
	admin.HandleFunc("POST /api/admin/recaps/{id}/publish", s.togglePublish)
	admin.HandleFunc("GET /api/admin/recaps/{id}/preview", s.preview)
	admin.HandleFunc("POST /api/admin/recaps/{id}/blocks", s.addBlock)
	admin.HandleFunc("PUT /api/admin/recaps/{id}/blocks/{blockID}", s.saveBlock)
	admin.HandleFunc("DELETE /api/admin/recaps/{id}/blocks/{blockID}", s.deleteBlock)
	admin.HandleFunc("POST /api/admin/recaps/{id}/blocks/{blockID}/ops", s.editBlock)
	admin.HandleFunc("GET /api/admin/recaps/{id}/blocks/{blockID}/form", s.blockForm)
	admin.HandleFunc("POST /api/admin/recaps/{id}/blocks/{blockID}/move", s.moveBlock)
	admin.HandleFunc("POST /api/admin/migrate", s.migrateAll)
	admin.HandleFunc("POST /api/admin/events/{id}/migrate", s.migrateEvent)
	admin.HandleFunc("POST /api/admin/uploads", s.upload)
	admin.HandleFunc("DELETE /api/admin/uploads", s.deleteUpload)
	admin.HandleFunc("GET /api/admin/outbox", s.listOutbox)
	admin.HandleFunc("GET /api/admin/dlq", s.listDLQ)
	admin.HandleFunc("POST /api/admin/dlq/{id}/retry", s.retryDLQ)
	admin.HandleFunc("POST /api/admin/reindex", s.reindex)
	mux.Handle("/api/admin/", RequireAdmin(s.JWTSecret, admin))

	c := cors.New(cors.Options{
		AllowedOrigins:   s.Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	return c.Handler(mux)
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, badRequest("%s is not a valid id", name)
	}
	return id, nil
}
