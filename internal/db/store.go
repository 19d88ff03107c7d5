package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sirdesai22/recap-service/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Store is the datastore for events and recaps: select by id, select all
// ordered, insert, update by id and delete by id.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// With returns a store bound to tx.
func (s *Store) With(tx *gorm.DB) *Store { return &Store{db: tx} }

// DB exposes the underlying handle for transactions.
func (s *Store) DB() *gorm.DB { return s.db }

func wrap(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", what, ErrDuplicate)
	}
	return fmt.Errorf("%s: %w", what, err)
}

// ---------------- EVENTS ----------------

func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var e models.Event
	if err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, wrap(err, "get event "+id.String())
	}
	return &e, nil
}

// ListEvents returns events oldest first.
func (s *Store) ListEvents(ctx context.Context) ([]models.Event, error) {
	var evts []models.Event
	if err := s.db.WithContext(ctx).Order("date asc").Order("id asc").Find(&evts).Error; err != nil {
		return nil, wrap(err, "list events")
	}
	return evts, nil
}

// ---------------- RECAPS ----------------

func (s *Store) GetRecap(ctx context.Context, id uuid.UUID) (*models.EventRecap, error) {
	var r models.EventRecap
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, wrap(err, "get recap "+id.String())
	}
	return &r, nil
}

// LockRecap loads a recap with a row lock held until the surrounding transaction ends.
func (s *Store) LockRecap(ctx context.Context, id uuid.UUID) (*models.EventRecap, error) {
	var r models.EventRecap
	err := s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&r, "id = ?", id).Error
	if err != nil {
		return nil, wrap(err, "lock recap "+id.String())
	}
	return &r, nil
}

func (s *Store) FindRecapByEvent(ctx context.Context, eventID uuid.UUID) (*models.EventRecap, error) {
	var r models.EventRecap
	if err := s.db.WithContext(ctx).First(&r, "event_id = ?", eventID).Error; err != nil {
		return nil, wrap(err, "find recap for event "+eventID.String())
	}
	return &r, nil
}

// ListRecaps returns recaps most recently edited first.
func (s *Store) ListRecaps(ctx context.Context, publishedOnly bool) ([]models.EventRecap, error) {
	q := s.db.WithContext(ctx).Order("updated_at desc")
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	var out []models.EventRecap
	if err := q.Find(&out).Error; err != nil {
		return nil, wrap(err, "list recaps")
	}
	return out, nil
}

func (s *Store) CreateRecap(ctx context.Context, r *models.EventRecap) error {
	return wrap(s.db.WithContext(ctx).Create(r).Error, "create recap")
}

// ListRecapIDs returns the id of every recap.
func (s *Store) ListRecapIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&models.EventRecap{}).Order("id").Pluck("id", &ids).Error; err != nil {
		return nil, wrap(err, "list recap ids")
	}
	return ids, nil
}

// UpdateRecap writes every column of r. Last write wins.
func (s *Store) UpdateRecap(ctx context.Context, r *models.EventRecap) error {
	res := s.db.WithContext(ctx).Save(r)
	if res.Error != nil {
		return wrap(res.Error, "update recap "+r.ID.String())
	}
	return nil
}

func (s *Store) DeleteRecap(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.EventRecap{}, "id = ?", id)
	if res.Error != nil {
		return wrap(res.Error, "delete recap "+id.String())
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete recap %s: %w", id, ErrNotFound)
	}
	return nil
}
