package database

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dealflow-studio/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Use(zap.NewNop())
	os.Exit(m.Run())
}

func TestSQLitePath(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"sqlite://:memory:", ":memory:"},
		{"sqlite://dealflow.db", "dealflow.db"},
		{"sqlite:///var/lib/dealflow/app.db", "/var/lib/dealflow/app.db"},
		{"sqlite://dealflow.db?_busy_timeout=5000", "dealflow.db?_busy_timeout=5000"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			u, err := url.Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sqlitePath(u))
		})
	}
}

func TestOpenSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dealflow.db")
	db, err := Open(context.Background(), "sqlite://"+path, Options{Verbose: true})
	require.NoError(t, err)

	require.NoError(t, db.Exec("CREATE TABLE probe (id TEXT PRIMARY KEY)").Error)
	require.NoError(t, db.Exec("INSERT INTO probe (id) VALUES ('a')").Error)

	var n int64
	require.NoError(t, db.Table("probe").Count(&n).Error)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, Ping(context.Background(), db))
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "mysql://root@localhost/dealflow", Options{})
	assert.ErrorContains(t, err, "unsupported database scheme")
}

func TestBackoffCapsDelay(t *testing.T) {
	b := backoff{maxRetries: 5, delay: 500 * time.Millisecond, maxDelay: 5 * time.Second}
	assert.Equal(t, 500*time.Millisecond, b.nextDelay(0))
	assert.Equal(t, time.Second, b.nextDelay(1))
	assert.Equal(t, 4*time.Second, b.nextDelay(3))
	assert.Equal(t, 5*time.Second, b.nextDelay(4))
}
