package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	_ "github.com/ClickHouse/clickhouse-go/v2"

	"github.com/patrickwarner/adsdk/internal/tracking"
)

// ClickStore defines the interface for persisting received clicks.
// Implementations should handle cases where underlying storage is unavailable
// by returning ErrUnavailable.
type ClickStore interface {
	// RecordClick inserts one received click.
	RecordClick(ctx context.Context, rec ClickRecord) error
	// ClicksByPattern returns the most recent clicks attributed to a pattern.
	ClicksByPattern(ctx context.Context, pattern string, limit int) ([]ClickRecord, error)
}

// ErrUnavailable is returned when the analytics DB is not configured.
var ErrUnavailable = fmt.Errorf("analytics unavailable")

// Analytics wraps a ClickHouse DB connection.
type Analytics struct {
	DB *sql.DB
}

// ClickRecord mirrors a row in the ad_clicks table.
type ClickRecord struct {
	Timestamp  time.Time `json:"timestamp"`
	ReceivedAt time.Time `json:"received_at"`
	AdID       string    `json:"ad_id"`
	AdType     string    `json:"ad_type"`
	DeviceID   string    `json:"device_id"`
	Pattern    string    `json:"pattern"`
	Style      string    `json:"style"`
	DeviceType string    `json:"device_type,omitempty"`
	OS         string    `json:"os,omitempty"`
	Country    string    `json:"country,omitempty"`
	RequestID  string    `json:"request_id"`
}

// NewClickRecord builds the stored row for a click event received at
// receivedAt.
func NewClickRecord(ev tracking.ClickEvent, requestID string, receivedAt time.Time) ClickRecord {
	return ClickRecord{
		Timestamp:  ev.Time().UTC(),
		ReceivedAt: receivedAt.UTC(),
		AdID:       ev.AdID,
		AdType:     ev.AdType,
		DeviceID:   ev.DeviceID,
		Pattern:    ev.AdditionalData.Pattern,
		Style:      ev.AdditionalData.Style,
		RequestID:  requestID,
	}
}

const createClicksTable = `CREATE TABLE IF NOT EXISTS ad_clicks (
       timestamp    DateTime64(3),
       received_at  DateTime64(3),
       ad_id        String,
       ad_type      LowCardinality(String),
       device_id    String,
       pattern      LowCardinality(String),
       style        LowCardinality(String),
       device_type  LowCardinality(String),
       os           String,
       country      LowCardinality(String),
       request_id   String
   ) ENGINE=MergeTree() ORDER BY (pattern, timestamp)`

// InitClickHouse connects to ClickHouse through an otelsql-instrumented
// driver and ensures the ad_clicks table exists.
func InitClickHouse(dsn string, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (*Analytics, error) {
	driverName, err := otelsql.Register("clickhouse",
		otelsql.WithAttributes(
			attribute.String("db.system", "clickhouse"),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("register otelsql: %w", err)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("clickhouse open: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse ping: %w", err)
	}
	if _, err := db.ExecContext(context.Background(), createClicksTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clickhouse create table: %w", err)
	}

	zap.L().Info("Connected to ClickHouse",
		zap.Int("max_open_conns", maxOpenConns),
		zap.Int("max_idle_conns", maxIdleConns))
	return &Analytics{DB: db}, nil
}

// RecordClick inserts a single row into the ad_clicks table.
func (a *Analytics) RecordClick(ctx context.Context, rec ClickRecord) error {
	if a == nil || a.DB == nil {
		return ErrUnavailable
	}
	stmt := `INSERT INTO ad_clicks (timestamp, received_at, ad_id, ad_type, device_id, pattern, style, device_type, os, country, request_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := a.DB.ExecContext(ctx, stmt,
		rec.Timestamp, rec.ReceivedAt, rec.AdID, rec.AdType, rec.DeviceID,
		rec.Pattern, rec.Style, rec.DeviceType, rec.OS, rec.Country, rec.RequestID,
	); err != nil {
		zap.L().Error("clickhouse insert failed", zap.Error(err), zap.String("ad_id", rec.AdID))
		return fmt.Errorf("insert click: %w", err)
	}
	return nil
}

// ClicksByPattern returns up to limit clicks for pattern, newest first.
func (a *Analytics) ClicksByPattern(ctx context.Context, pattern string, limit int) ([]ClickRecord, error) {
	if a == nil || a.DB == nil {
		return nil, ErrUnavailable
	}
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT timestamp, received_at, ad_id, ad_type, device_id, pattern, style, device_type, os, country, request_id FROM ad_clicks WHERE pattern=? ORDER BY timestamp DESC LIMIT ?`
	rows, err := a.DB.QueryContext(ctx, query, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("query clicks: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			zap.L().Warn("rows close", zap.Error(err))
		}
	}()

	var clicks []ClickRecord
	for rows.Next() {
		var rec ClickRecord
		if err := rows.Scan(&rec.Timestamp, &rec.ReceivedAt, &rec.AdID, &rec.AdType, &rec.DeviceID, &rec.Pattern, &rec.Style, &rec.DeviceType, &rec.OS, &rec.Country, &rec.RequestID); err != nil {
			return nil, fmt.Errorf("scan click: %w", err)
		}
		clicks = append(clicks, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return clicks, nil
}

// Close terminates the ClickHouse connection.
func (a *Analytics) Close() {
	if a != nil && a.DB != nil {
		if err := a.DB.Close(); err != nil {
			zap.L().Error("clickhouse close", zap.Error(err))
		}
	}
}

var _ ClickStore = (*Analytics)(nil)
