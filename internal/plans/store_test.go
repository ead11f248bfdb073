package plans

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"premium-service/internal/common/config"
	"premium-service/internal/common/errors"
	"premium-service/internal/common/logger"
)

// ==========================
// Test Helper Functions
// ==========================

func writePlan(t *testing.T, root, company, name, body string) {
	t.Helper()
	dir := filepath.Join(root, company)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0o644))
}

func createTestStore(t *testing.T) (*FileStore, string) {
	t.Helper()
	root := t.TempDir()
	store, err := NewFileStore(config.PlansConfig{DataDir: root, Extension: ".json"}, logger.NewTestLogger(t))
	require.NoError(t, err)
	return store, root
}

func requireCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	var stdErr *errors.StandardError
	require.True(t, stderrors.As(err, &stdErr), "expected StandardError, got %T: %v", err, err)
	assert.Equal(t, code, stdErr.Code)
}

// ==========================
// Core Functionality Tests
// ==========================

func TestFileStore_Load_Success(t *testing.T) {
	store, root := createTestStore(t)
	writePlan(t, root, "acme", "gold-2025", `{"Gold":{"40":300.0,"41":310.125},"Silver":{"40":200}}`)

	table, err := store.Load(context.Background(), "acme", "gold-2025")
	require.NoError(t, err)

	require.Len(t, table, 2)
	assert.True(t, table["Gold"]["41"].Equal(decimal.RequireFromString("310.125")))
	assert.True(t, table["Silver"]["40"].Equal(decimal.NewFromInt(200)))
}

func TestFileStore_Load_ReadsFreshEachTime(t *testing.T) {
	store, root := createTestStore(t)
	writePlan(t, root, "acme", "gold", `{"Gold":{"40":300}}`)

	first, err := store.Load(context.Background(), "acme", "gold")
	require.NoError(t, err)
	assert.True(t, first["Gold"]["40"].Equal(decimal.NewFromInt(300)))

	writePlan(t, root, "acme", "gold", `{"Gold":{"40":350}}`)

	second, err := store.Load(context.Background(), "acme", "gold")
	require.NoError(t, err)
	assert.True(t, second["Gold"]["40"].Equal(decimal.NewFromInt(350)))
}

func TestFileStore_Load_Errors(t *testing.T) {
	store, root := createTestStore(t)
	writePlan(t, root, "acme", "broken", `{"Gold": {"40": 300,`)
	writePlan(t, root, "acme", "wrong-shape", `{"Gold": [300, 310]}`)
	writePlan(t, root, "acme", "string-premium", `{"Gold": {"40": "300"}}`)
	writePlan(t, root, "acme", "null-doc", `null`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "acme", "dir.json"), 0o755))

	tests := []struct {
		name         string
		company      string
		planFileName string
		code         errors.ErrorCode
	}{
		{"missing company directory", "nobody", "gold", errors.ErrCodePlanDataNotFound},
		{"missing plan file", "acme", "platinum", errors.ErrCodePlanDataNotFound},
		{"truncated json", "acme", "broken", errors.ErrCodePlanDataCorrupt},
		{"array instead of age map", "acme", "wrong-shape", errors.ErrCodePlanDataCorrupt},
		{"premium as string", "acme", "string-premium", errors.ErrCodePlanDataCorrupt},
		{"null document", "acme", "null-doc", errors.ErrCodePlanDataCorrupt},
		{"plan path is a directory", "acme", "dir", errors.ErrCodePlanDataUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := store.Load(context.Background(), tt.company, tt.planFileName)
			assert.Nil(t, table)
			requireCode(t, err, tt.code)
		})
	}
}

func TestFileStore_Load_RejectsUnsafePaths(t *testing.T) {
	store, root := createTestStore(t)
	// A file outside the data directory that a traversal would reach.
	outside := filepath.Join(filepath.Dir(root), "secret.json")
	require.NoError(t, os.WriteFile(outside, []byte(`{"Gold":{"40":1}}`), 0o644))
	t.Cleanup(func() { _ = os.Remove(outside) })

	tests := []struct {
		name         string
		company      string
		planFileName string
	}{
		{"parent company", "..", "secret"},
		{"dot company", ".", "gold"},
		{"traversal in plan name", "acme", "../../secret"},
		{"separator in company", "acme/../..", "secret"},
		{"backslash separator", `acme\..`, "secret"},
		{"hidden file", "acme", ".env"},
		{"empty company", "", "gold"},
		{"blank plan", "acme", "   "},
		{"nul byte", "acme\x00", "gold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Load(context.Background(), tt.company, tt.planFileName)
			requireCode(t, err, errors.ErrCodeInvalidParameters)
		})
	}
}

func TestFileStore_Load_CancelledContext(t *testing.T) {
	store, root := createTestStore(t)
	writePlan(t, root, "acme", "gold", `{"Gold":{"40":300}}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Load(ctx, "acme", "gold")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFileStore_DefaultsExtension(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(config.PlansConfig{DataDir: root}, logger.NewNoOpLogger())
	require.NoError(t, err)

	assert.Equal(t, ".json", store.extension)
	assert.True(t, filepath.IsAbs(store.Root()))
}

func TestFileStore_Ready(t *testing.T) {
	store, root := createTestStore(t)
	assert.NoError(t, store.Ready())

	file := filepath.Join(root, "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	assert.Error(t, DirReady(file))

	require.NoError(t, os.RemoveAll(root))
	assert.Error(t, store.Ready())
}
