package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// AdvisoryLock implements leader election on a Postgres advisory lock. The
// lock is session-scoped, so the same *sql.Conn must both acquire and
// release it; the struct pins one connection for its whole lifetime.
type AdvisoryLock struct {
	conn *sql.Conn
	key  int64
}

func NewAdvisoryLock(db *gorm.DB, key int64) (*AdvisoryLock, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("resolving sql.DB: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("pinning advisory lock connection: %w", err)
	}
	return &AdvisoryLock{conn: conn, key: key}, nil
}

func (l *AdvisoryLock) TryAcquire() (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var acquired bool
	err := l.conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", l.key).Scan(&acquired)
	if err != nil {
		return false, fmt.Errorf("pg_try_advisory_lock(%d): %w", l.key, err)
	}
	return acquired, nil
}

func (l *AdvisoryLock) Release() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var released bool
	err := l.conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", l.key).Scan(&released)
	if err != nil {
		return fmt.Errorf("pg_advisory_unlock(%d): %w", l.key, err)
	}
	return nil
}

// Close returns the pinned connection to the pool.
func (l *AdvisoryLock) Close() error {
	return l.conn.Close()
}

// Pinger adapts the gorm handle to a plain reachability check.
type Pinger struct {
	DB *gorm.DB
}

func (p *Pinger) Ping() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
