package markup

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/soocke/viewer-markup/domain/annotation"
)

type markupRow struct {
	ID        string `gorm:"primaryKey;size:36"`
	Title     string
	CreatedAt time.Time `gorm:"index"`
	Width     int
	Height    int
	PNG       []byte
	Records   []recordRow `gorm:"foreignKey:MarkupID;constraint:OnDelete:CASCADE"`
}

func (markupRow) TableName() string { return "markups" }

type recordRow struct {
	ID       uint   `gorm:"primaryKey"`
	MarkupID string `gorm:"index;size:36"`
	Position int
	OriginX  int
	OriginY  int
	SizeX    int
	SizeY    int
	Text     string
}

func (recordRow) TableName() string { return "records" }

type summaryRow struct {
	ID          string
	Title       string
	CreatedAt   time.Time
	Width       int
	Height      int
	RecordCount int
}

// Store persists markups in SQLite.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

// Open opens (or creates) the database at path. ":memory:" gives a private
// in-memory database. logger may be nil.
func Open(path string, log *slog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("markup: open store: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("markup: access sql interface: %w", err)
	}
	if path == ":memory:" {
		// each connection would see its own empty database
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&markupRow{}, &recordRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("markup: migrate store: %w", err)
	}
	if log != nil {
		log.Info("markup store opened", "path", path)
	}
	return &Store{db: db, logger: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save inserts m together with its records.
func (s *Store) Save(ctx context.Context, m *Markup) error {
	if m == nil {
		return errors.New("markup: nil markup")
	}
	row := markupRow{
		ID:        m.ID.String(),
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
		Width:     m.Width,
		Height:    m.Height,
		PNG:       m.PNG,
		Records:   make([]recordRow, 0, len(m.Records)),
	}
	for i, r := range m.Records {
		row.Records = append(row.Records, recordRow{
			MarkupID: row.ID,
			Position: i,
			OriginX:  r.Origin.X,
			OriginY:  r.Origin.Y,
			SizeX:    r.Size.X,
			SizeY:    r.Size.Y,
			Text:     r.Text,
		})
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&row).Error
	})
	if err != nil {
		return fmt.Errorf("markup: save %s: %w", row.ID, err)
	}
	if s.logger != nil {
		s.logger.Info("markup saved", "id", row.ID, "records", len(row.Records), "bytes", len(row.PNG))
	}
	return nil
}

// Get loads one markup with its image and records in insertion order.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Markup, error) {
	var row markupRow
	err := s.db.WithContext(ctx).
		Preload("Records", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&row, "id = ?", id.String()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("markup: get %s: %w", id, err)
	}
	m := &Markup{
		ID:        id,
		Title:     row.Title,
		CreatedAt: row.CreatedAt,
		Width:     row.Width,
		Height:    row.Height,
		PNG:       row.PNG,
		Records:   make([]annotation.Record, 0, len(row.Records)),
	}
	for _, r := range row.Records {
		m.Records = append(m.Records, annotation.Record{
			Origin: image.Pt(r.OriginX, r.OriginY),
			Size:   image.Pt(r.SizeX, r.SizeY),
			Text:   r.Text,
		})
	}
	return m, nil
}

// List returns all markups, newest first, without images.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	var rows []summaryRow
	err := s.db.WithContext(ctx).
		Model(&markupRow{}).
		Select("markups.id, markups.title, markups.created_at, markups.width, markups.height, " +
			"(SELECT COUNT(*) FROM records WHERE records.markup_id = markups.id) AS record_count").
		Order("markups.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("markup: list: %w", err)
	}
	out := make([]Summary, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("markup row with invalid id skipped", "id", r.ID)
			}
			continue
		}
		out = append(out, Summary{
			ID:          id,
			Title:       r.Title,
			CreatedAt:   r.CreatedAt,
			Width:       r.Width,
			Height:      r.Height,
			RecordCount: r.RecordCount,
		})
	}
	return out, nil
}

// Delete removes a markup and its records.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("markup_id = ?", id.String()).Delete(&recordRow{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&markupRow{}, "id = ?", id.String())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
