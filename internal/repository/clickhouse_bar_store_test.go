package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"testing"

	"CoinSage/internal/domain/models"
)

// brokenDriver fails every statement, standing in for a ClickHouse outage.
type brokenDriver struct{ err error }

func (d *brokenDriver) Open(string) (driver.Conn, error) { return &brokenConn{err: d.err}, nil }

type brokenConn struct{ err error }

func (c *brokenConn) Prepare(string) (driver.Stmt, error) { return nil, c.err }
func (c *brokenConn) Close() error                        { return nil }
func (c *brokenConn) Begin() (driver.Tx, error)           { return nil, c.err }

// emptyDriver serves queries that succeed but return zero rows.
type emptyDriver struct{}

func (d *emptyDriver) Open(string) (driver.Conn, error) { return &emptyConn{}, nil }

type emptyConn struct{}

func (c *emptyConn) Prepare(string) (driver.Stmt, error) { return &emptyStmt{}, nil }
func (c *emptyConn) Close() error                        { return nil }
func (c *emptyConn) Begin() (driver.Tx, error)           { return nil, errors.New("no tx") }

type emptyStmt struct{}

func (s *emptyStmt) Close() error  { return nil }
func (s *emptyStmt) NumInput() int { return -1 }
func (s *emptyStmt) Exec([]driver.Value) (driver.Result, error) {
	return driver.ResultNoRows, nil
}
func (s *emptyStmt) Query([]driver.Value) (driver.Rows, error) { return &emptyRows{}, nil }

type emptyRows struct{}

func (r *emptyRows) Columns() []string         { return []string{"close", "close_time"} }
func (r *emptyRows) Close() error              { return nil }
func (r *emptyRows) Next([]driver.Value) error { return io.EOF }

func init() {
	sql.Register("ch-broken", &brokenDriver{err: errors.New("connection refused")})
	sql.Register("ch-empty", &emptyDriver{})
}

func brokenStore(t *testing.T) *CHBarStore {
	t.Helper()
	db, err := sql.Open("ch-broken", "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &CHBarStore{db: db}
}

func TestCHBarStoreOutageIsCollaborator(t *testing.T) {
	s := brokenStore(t)
	ctx := context.Background()

	var collabErr *models.CollaboratorError

	if _, err := s.GetKlines(ctx, "BTCUSDT", "1h", 10); !errors.As(err, &collabErr) {
		t.Fatalf("GetKlines error = %v, want CollaboratorError", err)
	} else if collabErr.Op != "fetch klines" {
		t.Errorf("GetKlines op = %q, want %q", collabErr.Op, "fetch klines")
	}

	if _, err := s.GetCurrentPrice(ctx, "BTCUSDT"); !errors.As(err, &collabErr) {
		t.Fatalf("GetCurrentPrice error = %v, want CollaboratorError", err)
	} else if collabErr.Op != "fetch price" {
		t.Errorf("GetCurrentPrice op = %q, want %q", collabErr.Op, "fetch price")
	}

	if _, err := s.GetTicker24h(ctx, "BTCUSDT"); !errors.As(err, &collabErr) {
		t.Fatalf("GetTicker24h error = %v, want CollaboratorError", err)
	} else if collabErr.Op != "fetch ticker" {
		t.Errorf("GetTicker24h op = %q, want %q", collabErr.Op, "fetch ticker")
	}
}

func TestCHBarStoreEmptyArchivePrice(t *testing.T) {
	db, err := sql.Open("ch-empty", "")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	s := &CHBarStore{db: db}

	var collabErr *models.CollaboratorError
	if _, err := s.GetCurrentPrice(context.Background(), "BTCUSDT"); !errors.As(err, &collabErr) {
		t.Fatalf("error = %v, want CollaboratorError", err)
	} else if collabErr.Op != "fetch price" {
		t.Errorf("op = %q, want %q", collabErr.Op, "fetch price")
	}
}
