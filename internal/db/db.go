package db

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"search-rag/internal/config"
	"search-rag/internal/models"
)

// sourceRow is the persisted shape of a source record.
type sourceRow struct {
	bun.BaseModel `bun:"table:sources,alias:s"`
	ID            int64     `bun:"id,pk,autoincrement"`
	SessionID     string    `bun:"session_id,notnull"`
	Title         string    `bun:"title"`
	Link          string    `bun:"link,notnull"`
	Text          string    `bun:"text,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(768)"`
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.DSN + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Password))), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*sourceRow)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Store is the postgres-backed source store.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, src models.Source) error {
	row := &sourceRow{
		SessionID: src.SessionID,
		Title:     src.Title,
		Link:      src.Link,
		Text:      src.Text,
		Embedding: src.Embedding,
	}
	_, err := s.db.NewInsert().Model(row).Exec(ctx)
	return err
}

// Scan returns the session's records in insertion order. A positive window
// limits the result to the most recent records.
func (s *Store) Scan(ctx context.Context, sessionID string, window int) ([]models.Source, error) {
	var rows []sourceRow
	q := s.db.NewSelect().
		Model(&rows).
		Where("session_id = ?", sessionID)
	if window > 0 {
		// Take the newest window, then restore insertion order below.
		q = q.OrderExpr("id DESC").Limit(window)
	} else {
		q = q.OrderExpr("id ASC")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	if window > 0 {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}

	out := make([]models.Source, len(rows))
	for i, row := range rows {
		out[i] = models.Source{
			ID:        row.ID,
			SessionID: row.SessionID,
			Title:     row.Title,
			Link:      row.Link,
			Text:      row.Text,
			Embedding: row.Embedding,
		}
	}
	return out, nil
}

func (s *Store) DropSession(ctx context.Context, sessionID string) error {
	_, err := s.db.NewDelete().Model((*sourceRow)(nil)).Where("session_id = ?", sessionID).Exec(ctx)
	return err
}
