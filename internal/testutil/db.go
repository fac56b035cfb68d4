// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/social-graph/internal/model"
)

// NewDB returns a migrated in-memory sqlite database private to t. It has a single
// connection, so transactions run one after another.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	return open(t, fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), 1)
}

// NewFileDB returns a migrated WAL-mode sqlite file with conns connections, for
// tests where transactions must genuinely overlap. Writers take the lock at BEGIN
// and wait up to the busy timeout for each other.
func NewFileDB(t testing.TB, conns int) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "social.db")
	return open(t, "file:"+path+"?_journal_mode=WAL&_busy_timeout=10000&_txlock=immediate", conns)
}

func open(t testing.TB, dsn string, conns int) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(conns)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// CreateUser inserts a user whose ID and username are both name.
func CreateUser(t testing.TB, db *gorm.DB, name string) *model.User {
	t.Helper()
	u := &model.User{ID: name, Username: name, Email: name + "@example.com", Password: "x"}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return u
}

// Clock is a manual time source that advances one second per call.
type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func NewClock() *Clock {
	return &Clock{t: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}
