package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"mosaicchain/core/types"
	"mosaicchain/integrations/exports"
	"mosaicchain/native/gallery"
)

// Event is one engine event committed together with the operation that
// produced it.
type Event struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq        int64     `gorm:"uniqueIndex"`
	Type       string    `gorm:"index;size:64"`
	Community  string    `gorm:"index;size:16"`
	Attributes string    `gorm:"type:text"`
	CreatedAt  time.Time
}

// Tick is one row of a reward tick.
type Tick struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Community string    `gorm:"index;size:16"`
	TickAt    int64     `gorm:"index"`
	MosaicID  uint64
	Place     int
	Grade     int64
	Amount    int64
	Remainder int64
	CreatedAt time.Time
}

// IdempotencyKey stores the response of a write request so a retry with
// the same key replays it instead of executing again.
type IdempotencyKey struct {
	Key       string `gorm:"primaryKey;size:192"`
	RequestID string `gorm:"size:64"`
	Method    string `gorm:"size:8"`
	Path      string `gorm:"size:255"`
	Status    int
	Response  string `gorm:"type:text"`
	CreatedAt time.Time
}

// AutoMigrate performs all schema migrations for the journal.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Event{}, &Tick{}, &IdempotencyKey{})
}

// Journal persists committed events and reward ticks for audit and export.
type Journal struct {
	db *gorm.DB
}

// Open connects to the configured database and migrates the schema.
func Open(driver, dsn string) (*Journal, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("journal: unsupported driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	return New(db)
}

// New wraps an open database handle.
func New(db *gorm.DB) (*Journal, error) {
	if db == nil {
		return nil, errors.New("journal: database required")
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("journal: migrate: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close releases the underlying connection pool.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Append stores the events and ticks of one committed operation in a single
// transaction. Events keep their emission order through Seq.
func (j *Journal) Append(ctx context.Context, evts []*types.Event, ticks []*gallery.TickResult) error {
	if len(evts) == 0 && len(ticks) == 0 {
		return nil
	}
	now := time.Now().UTC()
	return j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int64
		if err := tx.Model(&Event{}).Select("COALESCE(MAX(seq), 0)").Scan(&last).Error; err != nil {
			return err
		}
		for _, evt := range evts {
			if evt == nil {
				continue
			}
			attrs, err := json.Marshal(evt.Attributes)
			if err != nil {
				return err
			}
			last++
			rec := &Event{
				ID:         uuid.New(),
				Seq:        last,
				Type:       evt.Type,
				Community:  evt.Attributes["symbol"],
				Attributes: string(attrs),
				CreatedAt:  now,
			}
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
		}
		for _, row := range exports.Rows(ticks) {
			rec := &Tick{
				ID:        uuid.New(),
				Community: row.Community,
				TickAt:    row.TickAt.Unix(),
				MosaicID:  row.MosaicID,
				Place:     row.Place,
				Grade:     row.Grade,
				Amount:    row.Amount,
				Remainder: row.Remainder,
				CreatedAt: now,
			}
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Events lists journaled events of a community after seq, oldest first.
func (j *Journal) Events(ctx context.Context, community string, after int64, limit int) ([]Event, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	var out []Event
	err := j.db.WithContext(ctx).
		Where("community = ? AND seq > ?", strings.ToUpper(community), after).
		Order("seq ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// Ticks returns the reward tick rows of a community in tick order.
func (j *Journal) Ticks(ctx context.Context, community string) ([]exports.TickRow, error) {
	var recs []Tick
	err := j.db.WithContext(ctx).
		Where("community = ?", strings.ToUpper(community)).
		Order("tick_at ASC, place ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]exports.TickRow, 0, len(recs))
	for _, rec := range recs {
		out = append(out, exports.TickRow{
			Community: rec.Community,
			TickAt:    time.Unix(rec.TickAt, 0).UTC(),
			MosaicID:  rec.MosaicID,
			Place:     rec.Place,
			Grade:     rec.Grade,
			Amount:    rec.Amount,
			Remainder: rec.Remainder,
		})
	}
	return out, nil
}

// LookupIdempotency returns the stored response for key, if any.
func (j *Journal) LookupIdempotency(ctx context.Context, key string) (*IdempotencyKey, bool, error) {
	var rec IdempotencyKey
	err := j.db.WithContext(ctx).First(&rec, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &rec, true, nil
}

// SaveIdempotency records a response. A key saved concurrently by another
// request keeps its first response.
func (j *Journal) SaveIdempotency(ctx context.Context, rec *IdempotencyKey) error {
	if rec.RequestID == "" {
		rec.RequestID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return j.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(rec).Error
}
