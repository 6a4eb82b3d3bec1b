// Package accesslog records routed page requests for per-page and
// per-language statistics.
package accesslog

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/RobinCoderZhao/pdfsite/pkg/storage"
)

//go:embed schema.sql
var schema string

// Hit is one recorded request.
type Hit struct {
	Path     string
	Language string
	Kind     string
	Page     string
	Target   string
	Status   int
	At       time.Time
}

// PageCount is an aggregated row of TopPages.
type PageCount struct {
	Page     string `json:"page"`
	Language string `json:"language"`
	Hits     int    `json:"hits"`
}

// LanguageCount is an aggregated row of LanguageCounts.
type LanguageCount struct {
	Language string `json:"language"`
	Hits     int    `json:"hits"`
}

// Store provides persistence for hits using the common storage layer.
type Store struct {
	db *storage.DB
}

// NewStore creates a store and applies the schema.
func NewStore(ctx context.Context, db *storage.DB) (*Store, error) {
	if err := db.Migrate(ctx, schema); err != nil {
		return nil, fmt.Errorf("accesslog schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Insert writes hits in one transaction.
func (s *Store) Insert(ctx context.Context, hits []Hit) error {
	if len(hits) == 0 {
		return nil
	}
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO hits (path, language, kind, page, target, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()
		for _, h := range hits {
			if _, err := stmt.ExecContext(ctx,
				h.Path, h.Language, h.Kind, h.Page, h.Target, h.Status, h.At.Unix()); err != nil {
				return fmt.Errorf("insert hit: %w", err)
			}
		}
		return nil
	})
}

// TopPages returns the most requested pages since the given time.
func (s *Store) TopPages(ctx context.Context, since time.Time, limit int) ([]PageCount, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT page, language, COUNT(*) AS n FROM hits
		 WHERE page != '' AND created_at >= ?
		 GROUP BY page, language
		 ORDER BY n DESC, page, language
		 LIMIT ?`, since.Unix(), limit)
	if err != nil {
		return nil, fmt.Errorf("top pages: %w", err)
	}
	defer rows.Close()

	var result []PageCount
	for rows.Next() {
		var pc PageCount
		if err := rows.Scan(&pc.Page, &pc.Language, &pc.Hits); err != nil {
			return nil, err
		}
		result = append(result, pc)
	}
	return result, rows.Err()
}

// LanguageCounts returns hits per language since the given time. Requests
// without a language prefix are reported under "".
func (s *Store) LanguageCounts(ctx context.Context, since time.Time) ([]LanguageCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT language, COUNT(*) AS n FROM hits
		 WHERE created_at >= ?
		 GROUP BY language
		 ORDER BY n DESC, language`, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("language counts: %w", err)
	}
	defer rows.Close()

	var result []LanguageCount
	for rows.Next() {
		var lc LanguageCount
		if err := rows.Scan(&lc.Language, &lc.Hits); err != nil {
			return nil, err
		}
		result = append(result, lc)
	}
	return result, rows.Err()
}

// Prune deletes hits older than cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM hits WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("prune hits: %w", err)
	}
	return res.RowsAffected()
}
