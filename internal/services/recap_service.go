package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sirdesai22/recap-service/internal/blocks"
	"github.com/sirdesai22/recap-service/internal/db"
	"github.com/sirdesai22/recap-service/internal/editor"
	"github.com/sirdesai22/recap-service/internal/models"
)

var (
	ErrDuplicateRecap = errors.New("event already has a recap")
	ErrBlockNotFound  = blocks.ErrBlockNotFound
)

// Invalidator drops cached renderings of a recap.
type Invalidator interface {
	Invalidate(ctx context.Context, recapID uuid.UUID) error
}

// RecapService owns every write to event recaps. Each write runs in one
// transaction together with its outbox event; cached pages are dropped after
// commit.
type RecapService struct {
	store *db.Store
	cache Invalidator
}

func NewRecapService(store *db.Store, cache Invalidator) *RecapService {
	return &RecapService{store: store, cache: cache}
}

type outboxPayload struct {
	Title     string `json:"title"`
	Published bool   `json:"published"`
	Blocks    int    `json:"blocks"`
}

func payloadFor(r *models.EventRecap) outboxPayload {
	p := outboxPayload{Title: r.Title, Published: r.Published}
	if list, err := r.Blocks(); err == nil {
		p.Blocks = len(list)
	}
	return p
}

// ---------------- READS ----------------

func (s *RecapService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.store.ListEvents(ctx)
}

func (s *RecapService) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return s.store.GetEvent(ctx, id)
}

func (s *RecapService) ListRecaps(ctx context.Context, publishedOnly bool) ([]models.EventRecap, error) {
	return s.store.ListRecaps(ctx, publishedOnly)
}

func (s *RecapService) GetRecap(ctx context.Context, id uuid.UUID) (*models.EventRecap, error) {
	return s.store.GetRecap(ctx, id)
}

func (s *RecapService) FindRecapByEvent(ctx context.Context, eventID uuid.UUID) (*models.EventRecap, error) {
	return s.store.FindRecapByEvent(ctx, eventID)
}

// ---------------- RECAP LIFECYCLE ----------------

// CreateRecap starts an empty, unpublished recap for an event. The title
// defaults to the event title.
func (s *RecapService) CreateRecap(ctx context.Context, eventID uuid.UUID, title string) (*models.EventRecap, error) {
	ev, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.FindRecapByEvent(ctx, eventID); err == nil {
		return nil, ErrDuplicateRecap
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	if strings.TrimSpace(title) == "" {
		title = ev.Title
	}
	r := &models.EventRecap{EventID: eventID, Title: title, Summary: ev.Description}
	if err := r.SetBlocks(nil); err != nil {
		return nil, err
	}
	if err := s.InsertRecap(ctx, r); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, ErrDuplicateRecap
		}
		return nil, err
	}
	log.WithFields(log.Fields{"recap_id": r.ID, "event_id": eventID}).Info("📝 Recap created")
	return r, nil
}

// InsertRecap stores a fully built recap. Migration writes through here.
func (s *RecapService) InsertRecap(ctx context.Context, r *models.EventRecap) error {
	return s.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.store.With(tx).CreateRecap(ctx, r); err != nil {
			return err
		}
		return AddOutboxEvent(tx, models.EntityRecap, r.ID, models.OpUpsert, payloadFor(r))
	})
}

func (s *RecapService) DeleteRecap(ctx context.Context, id uuid.UUID) error {
	err := s.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.store.With(tx).DeleteRecap(ctx, id); err != nil {
			return err
		}
		return AddOutboxEvent(tx, models.EntityRecap, id, models.OpDelete, nil)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	log.WithField("recap_id", id).Info("🗑️ Recap deleted")
	return nil
}

// TogglePublish flips the published flag and returns the updated recap.
func (s *RecapService) TogglePublish(ctx context.Context, id uuid.UUID) (*models.EventRecap, error) {
	return s.update(ctx, id, func(r *models.EventRecap) error {
		r.Published = !r.Published
		return nil
	})
}

// Meta carries recap-level fields to change. Nil fields are left alone.
type Meta struct {
	Title            *string         `json:"title,omitempty"`
	Summary          *string         `json:"summary,omitempty"`
	FeaturedImageURL *string         `json:"featured_image_url,omitempty"`
	SeoMeta          *models.SeoMeta `json:"seo_meta,omitempty"`
}

func (s *RecapService) UpdateMeta(ctx context.Context, id uuid.UUID, m Meta) (*models.EventRecap, error) {
	if m.Title != nil && strings.TrimSpace(*m.Title) == "" {
		return nil, fmt.Errorf("title: %w", editor.ErrInvalidValue)
	}
	return s.update(ctx, id, func(r *models.EventRecap) error {
		if m.Title != nil {
			r.Title = strings.TrimSpace(*m.Title)
		}
		if m.Summary != nil {
			r.Summary = *m.Summary
		}
		if m.FeaturedImageURL != nil {
			if *m.FeaturedImageURL == "" {
				r.FeaturedImageURL = nil
			} else {
				r.FeaturedImageURL = m.FeaturedImageURL
			}
		}
		if m.SeoMeta != nil {
			r.SeoMeta = datatypes.NewJSONType(*m.SeoMeta)
		}
		return nil
	})
}

// ---------------- BLOCKS ----------------

// AddBlock appends a default block of type t.
func (s *RecapService) AddBlock(ctx context.Context, recapID uuid.UUID, t blocks.Type) (blocks.ContentBlock, error) {
	var added blocks.ContentBlock
	_, err := s.updateBlocks(ctx, recapID, func(list []blocks.ContentBlock) ([]blocks.ContentBlock, error) {
		out, b, err := blocks.Append(list, t)
		added = b
		return out, err
	})
	return added, err
}

// SaveBlock replaces a stored block's content. Its type and order stay as stored.
func (s *RecapService) SaveBlock(ctx context.Context, recapID uuid.UUID, b blocks.ContentBlock) (blocks.ContentBlock, error) {
	var saved blocks.ContentBlock
	_, err := s.updateBlocks(ctx, recapID, func(list []blocks.ContentBlock) ([]blocks.ContentBlock, error) {
		i, ok := blocks.Find(list, b.ID)
		if !ok {
			return nil, fmt.Errorf("block %s: %w", b.ID, ErrBlockNotFound)
		}
		b.Type = list[i].Type
		if _, err := blocks.Decode(b); err != nil {
			return nil, err
		}
		out, err := blocks.Replace(list, b)
		if err != nil {
			return nil, err
		}
		saved = out[i]
		return out, nil
	})
	return saved, err
}

// EditBlock applies edit operations to one block and saves the result.
// Nothing is written if any operation fails.
func (s *RecapService) EditBlock(ctx context.Context, recapID uuid.UUID, blockID string, ops []editor.Op) (blocks.ContentBlock, error) {
	var saved blocks.ContentBlock
	_, err := s.updateBlocks(ctx, recapID, func(list []blocks.ContentBlock) ([]blocks.ContentBlock, error) {
		i, ok := blocks.Find(list, blockID)
		if !ok {
			return nil, fmt.Errorf("block %s: %w", blockID, ErrBlockNotFound)
		}
		sess, err := editor.NewSession(list[i])
		if err != nil {
			return nil, err
		}
		if err := sess.ApplyAll(ops); err != nil {
			return nil, err
		}
		b, err := sess.Save()
		if err != nil {
			return nil, err
		}
		saved = b
		return blocks.Replace(list, b)
	})
	return saved, err
}

func (s *RecapService) DeleteBlock(ctx context.Context, recapID uuid.UUID, blockID string) error {
	_, err := s.updateBlocks(ctx, recapID, func(list []blocks.ContentBlock) ([]blocks.ContentBlock, error) {
		return blocks.Remove(list, blockID)
	})
	return err
}

// MoveBlock shifts a block delta places in display order.
func (s *RecapService) MoveBlock(ctx context.Context, recapID uuid.UUID, blockID string, delta int) ([]blocks.ContentBlock, error) {
	var moved []blocks.ContentBlock
	_, err := s.updateBlocks(ctx, recapID, func(list []blocks.ContentBlock) ([]blocks.ContentBlock, error) {
		out, err := blocks.Move(list, blockID, delta)
		moved = out
		return out, err
	})
	return moved, err
}

// Reindex queues every recap for the search sync.
func (s *RecapService) Reindex(ctx context.Context) (int, error) {
	var n int
	err := s.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := s.store.With(tx).ListRecapIDs(ctx)
		if err != nil {
			return err
		}
		n = len(ids)
		return AddBatchOutboxEvents(tx, models.EntityRecap, models.OpUpsert, ids)
	})
	return n, err
}

// ---------------- INTERNALS ----------------

func (s *RecapService) updateBlocks(ctx context.Context, id uuid.UUID, fn func([]blocks.ContentBlock) ([]blocks.ContentBlock, error)) (*models.EventRecap, error) {
	return s.update(ctx, id, func(r *models.EventRecap) error {
		list, err := r.Blocks()
		if err != nil {
			return err
		}
		out, err := fn(list)
		if err != nil {
			return err
		}
		return r.SetBlocks(out)
	})
}

func (s *RecapService) update(ctx context.Context, id uuid.UUID, fn func(*models.EventRecap) error) (*models.EventRecap, error) {
	var updated *models.EventRecap
	err := s.store.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		st := s.store.With(tx)
		r, err := st.LockRecap(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
		if err := st.UpdateRecap(ctx, r); err != nil {
			return err
		}
		updated = r
		return AddOutboxEvent(tx, models.EntityRecap, r.ID, models.OpUpsert, payloadFor(r))
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return updated, nil
}

func (s *RecapService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.WithError(err).WithField("recap_id", id).Warn("⚠️ render cache invalidation failed")
	}
}
