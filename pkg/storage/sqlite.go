// Package storage provides a SQLite-backed alternative to fpcore.Index's
// in-memory postings map, for installations whose token index outgrows
// RAM. It is an optional collaborator: nothing in internal/fpcore depends
// on it.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fingermark/fingermark/internal/fpcore"
)

// DefaultDBFile is the SQLite file name used when no path is given.
const DefaultDBFile = "fingermark.sqlite3"

// track is the GORM model backing track metadata.
type track struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"index:idx_track_meta,priority:1"`
	Artist      string `gorm:"index:idx_track_meta,priority:2"`
	Source      string
	DurationSec float64
	CreatedAt   time.Time
}

// posting is the GORM model backing one (token, track, anchor-time) row.
type posting struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	Token      uint32 `gorm:"index:idx_posting_token"`
	TrackID    uint   `gorm:"index:idx_posting_track"`
	AnchorTime int
}

// SQLiteIndexStore persists tracks and postings in a SQLite database via
// GORM, offering the same operations fpcore.Index keeps in memory.
type SQLiteIndexStore struct {
	db   *gorm.DB
	sqlDB *sql.DB
}

// Open creates or opens the SQLite database at path, running migrations.
// An empty path uses DefaultDBFile.
func Open(path string) (*SQLiteIndexStore, error) {
	if path == "" {
		path = DefaultDBFile
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&track{}, &posting{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return &SQLiteIndexStore{db: db, sqlDB: sqlDB}, nil
}

// Close releases the underlying database connection.
func (s *SQLiteIndexStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// RegisterTrack inserts a track row and returns its id.
func (s *SQLiteIndexStore) RegisterTrack(meta fpcore.TrackMetadata) (uint32, error) {
	row := track{Title: meta.Title, Artist: meta.Artist, Source: meta.Source, DurationSec: meta.Duration}
	if err := s.db.Create(&row).Error; err != nil {
		return 0, fmt.Errorf("creating track: %w", err)
	}
	return uint32(row.ID), nil
}

// StorePostings batches a token -> []Posting map into the postings table,
// flushing every 1000 rows to keep memory bounded on large tracks.
func (s *SQLiteIndexStore) StorePostings(postings map[fpcore.Token][]fpcore.Posting) error {
	rows := make([]posting, 0, 1024)
	flush := func() error {
		if len(rows) == 0 {
			return nil
		}
		if err := s.db.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("batch insert postings: %w", err)
		}
		rows = rows[:0]
		return nil
	}

	for tok, ps := range postings {
		for _, p := range ps {
			rows = append(rows, posting{Token: uint32(tok), TrackID: uint(p.TrackID), AnchorTime: p.AnchorTime})
			if len(rows) >= 1000 {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	return flush()
}

// PostingsForTokens retrieves every posting for any of toks in a single
// query, grouped back by token.
func (s *SQLiteIndexStore) PostingsForTokens(toks []fpcore.Token) (map[fpcore.Token][]fpcore.Posting, error) {
	result := make(map[fpcore.Token][]fpcore.Posting)
	if len(toks) == 0 {
		return result, nil
	}

	raw := make([]uint32, len(toks))
	for i, t := range toks {
		raw[i] = uint32(t)
	}

	var rows []posting
	if err := s.db.Where("token IN ?", raw).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying postings: %w", err)
	}
	for _, r := range rows {
		tok := fpcore.Token(r.Token)
		result[tok] = append(result[tok], fpcore.Posting{TrackID: uint32(r.TrackID), AnchorTime: r.AnchorTime})
	}
	return result, nil
}

// DeleteTrack removes a track and every posting it contributed, in one
// transaction.
func (s *SQLiteIndexStore) DeleteTrack(trackID uint32) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("track_id = ?", trackID).Delete(&posting{}).Error; err != nil {
			return err
		}
		return tx.Delete(&track{}, trackID).Error
	})
}

// GetTrack returns the metadata recorded for trackID.
func (s *SQLiteIndexStore) GetTrack(trackID uint32) (fpcore.TrackMetadata, error) {
	var row track
	if err := s.db.First(&row, trackID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fpcore.TrackMetadata{}, fmt.Errorf("track %d not found", trackID)
		}
		return fpcore.TrackMetadata{}, fmt.Errorf("querying track: %w", err)
	}
	return fpcore.TrackMetadata{Title: row.Title, Artist: row.Artist, Source: row.Source, Duration: row.DurationSec}, nil
}

// AllPostings loads the entire postings table, grouped by token. Meant
// for startup hydration of an in-memory fpcore.Index, not the hot query
// path — PostingsForTokens is the one to use for a live Recognise call.
func (s *SQLiteIndexStore) AllPostings() (map[fpcore.Token][]fpcore.Posting, error) {
	var rows []posting
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("querying all postings: %w", err)
	}

	result := make(map[fpcore.Token][]fpcore.Posting, len(rows))
	for _, r := range rows {
		tok := fpcore.Token(r.Token)
		result[tok] = append(result[tok], fpcore.Posting{TrackID: uint32(r.TrackID), AnchorTime: r.AnchorTime})
	}
	return result, nil
}

// NextTrackID returns one past the largest track id currently stored,
// for seeding an in-memory Index's own counter during hydration.
func (s *SQLiteIndexStore) NextTrackID() (uint32, error) {
	var maxID uint
	if err := s.db.Model(&track{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
		return 0, fmt.Errorf("querying max track id: %w", err)
	}
	return uint32(maxID) + 1, nil
}

// ListTracks returns every track id in the store.
func (s *SQLiteIndexStore) ListTracks() ([]uint32, error) {
	var rows []track
	if err := s.db.Select("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing tracks: %w", err)
	}
	ids := make([]uint32, len(rows))
	for i, r := range rows {
		ids[i] = uint32(r.ID)
	}
	return ids, nil
}
