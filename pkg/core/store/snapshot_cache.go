package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"reverse_dcf/pkg/core/market"
)

// DefaultMaxAge is how long a cached snapshot is served before the caller
// should refetch. Market prices move; a day is plenty for screening.
const DefaultMaxAge = 24 * time.Hour

// SnapshotCache caches market snapshots. DB (primary) with a file-system
// fallback: if pool is nil, entries live as JSON files under fileDir.
type SnapshotCache struct {
	pool    *pgxpool.Pool
	fileDir string
	maxAge  time.Duration
}

// NewSnapshotCache creates a cache. With a nil pool and empty dir it
// defaults to .cache/market.
func NewSnapshotCache(pool *pgxpool.Pool, dir string) *SnapshotCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "market")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[WARNING] check snapshot cache dir: %v\n", err)
		}
	}
	return &SnapshotCache{pool: pool, fileDir: dir, maxAge: DefaultMaxAge}
}

// Entry is one cached fetch.
type Entry struct {
	ID        string           `json:"id"`
	Ticker    string           `json:"ticker"`
	Snapshot  *market.Snapshot `json:"snapshot"`
	FetchedAt time.Time        `json:"fetched_at"`
	Source    string           `json:"source"` // "quote-api", "html-scrape", "manual"
}

// Get returns a fresh cached snapshot for ticker, or nil on miss/stale.
// A nil result with nil error is a plain miss; callers fetch live.
func (c *SnapshotCache) Get(ctx context.Context, ticker string) (*market.Snapshot, error) {
	ticker = strings.ToUpper(ticker)

	if c.pool != nil {
		query := `
			SELECT snapshot, fetched_at
			FROM market_snapshots
			WHERE ticker = $1
			ORDER BY fetched_at DESC
			LIMIT 1
		`
		var raw []byte
		var fetchedAt time.Time
		err := c.pool.QueryRow(ctx, query, ticker).Scan(&raw, &fetchedAt)
		if err != nil {
			return nil, nil // miss (or DB trouble: treat as miss, fetch live)
		}
		if time.Since(fetchedAt) > c.maxAge {
			return nil, nil
		}
		var snap market.Snapshot
		if err := json.Unmarshal(raw, &snap); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
		}
		return &snap, nil
	}

	if c.fileDir == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.filePath(ticker))
	if err != nil {
		return nil, nil
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached snapshot file: %w", err)
	}
	if time.Since(entry.FetchedAt) > c.maxAge {
		return nil, nil
	}
	return entry.Snapshot, nil
}

// Put stores a snapshot under a fresh entry ID.
func (c *SnapshotCache) Put(ctx context.Context, snap *market.Snapshot, source string) error {
	entry := Entry{
		ID:        uuid.NewString(),
		Ticker:    strings.ToUpper(snap.Ticker),
		Snapshot:  snap,
		FetchedAt: time.Now().UTC(),
		Source:    source,
	}

	if c.pool != nil {
		raw, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("failed to marshal snapshot: %w", err)
		}
		query := `
			INSERT INTO market_snapshots (id, ticker, snapshot, fetched_at, source)
			VALUES ($1, $2, $3, $4, $5)
		`
		if _, err := c.pool.Exec(ctx, query, entry.ID, entry.Ticker, raw, entry.FetchedAt, entry.Source); err != nil {
			return fmt.Errorf("failed to insert snapshot: %w", err)
		}
		return nil
	}

	if c.fileDir == "" {
		return nil // no-op cache
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot entry: %w", err)
	}
	if err := os.WriteFile(c.filePath(entry.Ticker), data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return nil
}

// SetMaxAge overrides the freshness window (tests use a tiny value).
func (c *SnapshotCache) SetMaxAge(d time.Duration) {
	c.maxAge = d
}

func (c *SnapshotCache) filePath(ticker string) string {
	return filepath.Join(c.fileDir, ticker+".json")
}
