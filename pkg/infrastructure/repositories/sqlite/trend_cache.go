// Package sqlite caches inventory trend responses in a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vsinha/skudiag/pkg/domain/entities"
	"github.com/vsinha/skudiag/pkg/domain/repositories"
)

// trends rows are keyed by source so backends sharing a file never see each
// other's series. trend_cache is the older SKU-only table.
var schema = []string{
	`DROP TABLE IF EXISTS trend_cache`,
	`CREATE TABLE IF NOT EXISTS trends (
		source     TEXT NOT NULL,
		sku        TEXT NOT NULL,
		payload    BLOB NOT NULL,
		fetched_at TEXT NOT NULL,
		PRIMARY KEY (source, sku)
	)`,
}

// TrendCache stores zstd-compressed trend payloads keyed by source and SKU
type TrendCache struct {
	conn    *sql.DB
	source  string
	ttl     time.Duration
	now     func() time.Time
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// OpenTrendCache opens or creates the cache database at path. Entries are
// scoped to source, normally the backend base URL. Entries older than ttl
// are treated as missing; a zero ttl never expires.
func OpenTrendCache(path, source string, ttl time.Duration) (*TrendCache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	for _, statement := range schema {
		if _, err := conn.Exec(statement); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		conn.Close()
		encoder.Close()
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	return &TrendCache{
		conn:    conn,
		source:  source,
		ttl:     ttl,
		now:     time.Now,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Close releases the database and codecs
func (c *TrendCache) Close() error {
	c.decoder.Close()
	_ = c.encoder.Close()
	return c.conn.Close()
}

// Get returns the cached trend for sku. The bool is false on a miss, an
// expired entry or an entry that no longer decodes to an aligned series.
func (c *TrendCache) Get(ctx context.Context, sku entities.SKU) (*entities.InventoryTrend, bool, error) {
	var payload []byte
	var fetchedAt string

	err := c.conn.QueryRowContext(ctx,
		`SELECT payload, fetched_at FROM trends WHERE source = ? AND sku = ?`, c.source, string(sku),
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("trend cache lookup failed: %w", err)
	}

	fetched, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return nil, false, fmt.Errorf("invalid fetched_at format: %w", err)
	}
	if c.ttl > 0 && c.now().Sub(fetched) > c.ttl {
		if err := c.Invalidate(ctx, sku); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	raw, err := c.decoder.DecodeAll(payload, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decompress cached trend: %w", err)
	}
	var trend entities.InventoryTrend
	if err := json.Unmarshal(raw, &trend); err != nil {
		return nil, false, c.discard(ctx, sku, fmt.Errorf("failed to decode cached trend: %w", err))
	}
	if err := trend.Validate(); err != nil {
		return nil, false, c.discard(ctx, sku, fmt.Errorf("invalid cached trend: %w", err))
	}
	return &trend, true, nil
}

// Put stores trend for sku, replacing any previous entry
func (c *TrendCache) Put(ctx context.Context, sku entities.SKU, trend *entities.InventoryTrend) error {
	raw, err := json.Marshal(trend)
	if err != nil {
		return fmt.Errorf("failed to encode trend: %w", err)
	}
	payload := c.encoder.EncodeAll(raw, nil)

	_, err = c.conn.ExecContext(ctx, `
		INSERT INTO trends (source, sku, payload, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(source, sku) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at
	`, c.source, string(sku), payload, c.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to store trend: %w", err)
	}
	return nil
}

// Invalidate drops the entry for sku
func (c *TrendCache) Invalidate(ctx context.Context, sku entities.SKU) error {
	if _, err := c.conn.ExecContext(ctx, `DELETE FROM trends WHERE source = ? AND sku = ?`, c.source, string(sku)); err != nil {
		return fmt.Errorf("failed to invalidate trend: %w", err)
	}
	return nil
}

// discard drops an unusable entry and returns cause
func (c *TrendCache) discard(ctx context.Context, sku entities.SKU, cause error) error {
	if err := c.Invalidate(ctx, sku); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}

// Backend serves inventory trends from the cache and everything else from
// the wrapped backend. Cache errors are logged and bypassed.
type Backend struct {
	repositories.Backend
	cache  *TrendCache
	logger *slog.Logger
}

// Verify interface compliance
var _ repositories.Backend = (*Backend)(nil)

// NewBackend wraps next with cache
func NewBackend(next repositories.Backend, cache *TrendCache, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Backend{Backend: next, cache: cache, logger: logger}
}

// GetInventoryTrend returns a cached trend when fresh, otherwise fetches and stores it
func (b *Backend) GetInventoryTrend(ctx context.Context, sku entities.SKU) (*entities.InventoryTrend, error) {
	trend, hit, err := b.cache.Get(ctx, sku)
	if err != nil {
		b.logger.Warn("trend cache read failed", "sku", sku, "error", err)
	}
	if hit {
		b.logger.Debug("trend cache hit", "sku", sku)
		return trend, nil
	}

	trend, err = b.Backend.GetInventoryTrend(ctx, sku)
	if err != nil {
		return nil, err
	}
	if err := b.cache.Put(ctx, sku, trend); err != nil {
		b.logger.Warn("trend cache write failed", "sku", sku, "error", err)
	}
	return trend, nil
}
