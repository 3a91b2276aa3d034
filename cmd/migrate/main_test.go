package main

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dealflow-studio/engine/internal/testutil"
	"github.com/dealflow-studio/engine/pkg/database"
	"github.com/dealflow-studio/engine/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Use(zap.NewNop())
	os.Exit(m.Run())
}

func TestPrintStatus(t *testing.T) {
	t.Run("migrated", func(t *testing.T) {
		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&out)

		require.NoError(t, printStatus(cmd, testutil.NewDB(t)))
		assert.Contains(t, out.String(), "pipelines")
		assert.Contains(t, out.String(), "companies")
		assert.NotContains(t, out.String(), "missing")
	})

	t.Run("empty database", func(t *testing.T) {
		db, err := database.OpenSQLite(context.Background(), ":memory:", database.Options{})
		require.NoError(t, err)

		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&out)

		err = printStatus(cmd, db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "4 table(s) missing")
		assert.Contains(t, out.String(), "missing")
	})
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["up"])
	assert.True(t, names["status"])
	assert.NotNil(t, root.PersistentFlags().Lookup("database-url"))
}
