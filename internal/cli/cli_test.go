package cli

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"product-api/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(ctx context.Context, args ...string) (string, error) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	return port
}

func TestRootCommand_Help(t *testing.T) {
	out, err := execute(context.Background(), "--help")

	require.NoError(t, err)
	assert.Contains(t, out, "serve")
	assert.Contains(t, out, "migrate")
	assert.Contains(t, out, "seed")
}

func TestMigrate(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		args     []string
		errorMsg string
	}{
		{
			name:     "Rejects memory store",
			envVars:  map[string]string{"STORE_DRIVER": "memory"},
			args:     []string{"migrate", "up"},
			errorMsg: "migrations only apply to the postgres store",
		},
		{
			name:     "Rejects sqlite store",
			envVars:  map[string]string{"STORE_DRIVER": "sqlite"},
			args:     []string{"migrate", "down"},
			errorMsg: "migrations only apply to the postgres store",
		},
		{
			name:     "Invalid configuration",
			envVars:  map[string]string{"LOG_LEVEL": "loud"},
			args:     []string{"migrate", "up"},
			errorMsg: "failed to load configuration",
		},
		{
			name:     "Unexpected argument",
			envVars:  map[string]string{"STORE_DRIVER": "memory"},
			args:     []string{"migrate", "up", "now"},
			errorMsg: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			_, err := execute(context.Background(), tt.args...)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestSeed(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "products.db")
	seedPath := filepath.Join(dir, "products.jsonl")

	lines := []string{
		`{"name":"Widget","description":"A widget","price":9.99,"quantity":10}`,
		`{"id":5,"name":"Preassigned"}`,
		`{"name":"Gadget","price":4.5}`,
	}
	require.NoError(t, os.WriteFile(seedPath, []byte(strings.Join(lines, "\n")+"\n"), 0o600))

	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", dbPath)

	out, err := execute(context.Background(), "seed", "--file", seedPath)
	require.NoError(t, err)
	assert.Contains(t, out, "created 2 products, skipped 1")

	db, err := repository.OpenSQLite(dbPath)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	products, err := repository.NewGormProductRepository(db, zerolog.Nop()).List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Widget", products[0].GetName())
	assert.Equal(t, "Gadget", products[1].GetName())
}

func TestSeed_Errors(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	t.Run("No seed file", func(t *testing.T) {
		_, err := execute(context.Background(), "seed", "--file", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no seed file given")
	})

	t.Run("Missing seed file", func(t *testing.T) {
		_, err := execute(context.Background(), "seed", "--file", filepath.Join(t.TempDir(), "missing.jsonl"))
		require.Error(t, err)
	})
}

func TestServe(t *testing.T) {
	port := freePort(t)
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", strconv.Itoa(port))
	t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "5")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := execute(ctx, "serve")
		done <- err
	}()

	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(healthURL)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestServe_InvalidStoreOverride(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	_, err := execute(context.Background(), "serve", "--store", "mongo")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --store")
}
