package autopilot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promodraft/internal"
	"promodraft/internal/catalog"
	"promodraft/internal/pipeline"
	"promodraft/internal/storage"
)

type rowsSource [][]any

func (r rowsSource) Rows(context.Context) ([][]any, error) { return r, nil }
func (r rowsSource) Describe() string { return "rows" }

type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, _, user string) (string, error) {
	return "promo for " + user[:10], nil
}
func (echoCompleter) Model() string { return "echo" }

func newDrafter(t *testing.T, loads *int) *pipeline.Service {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "promodraft.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return pipeline.NewService(pipeline.Deps{
		DB: db,
		Open: func(context.Context, string) (catalog.Source, error) {
			*loads++
			return rowsSource{{"Name", "Price"}, {"Mouse X", "$25.00"}}, nil
		},
		LLM:    echoCompleter{},
		Layout: internal.Layout{HeaderRows: 1, PriceCol: 1},
	})
}

func TestRunCycle(t *testing.T) {
	loads := 0
	published := ""
	exportDir := t.TempDir()
	svc := NewService(newDrafter(t, &loads), Options{
		Reload:    true,
		ExportDir: exportDir,
		Publish: func(_ context.Context, id string) error {
			published = id
			return nil
		},
	}, nil)

	res, err := svc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Items)
	assert.Equal(t, "Mouse X", res.Draft.Item.Name)
	assert.Equal(t, res.Draft.ID, published)
	assert.True(t, res.Published)
	assert.Equal(t, 1, loads)

	_, err = os.Stat(res.Exported)
	require.NoError(t, err)
	assert.Equal(t, exportDir, filepath.Dir(res.Exported))
}

func TestRunCycleRestoresBeforeLoading(t *testing.T) {
	loads := 0
	svc := NewService(newDrafter(t, &loads), Options{}, nil)

	_, err := svc.RunCycle(context.Background())
	require.NoError(t, err)
	_, err = svc.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
}

func TestRunCyclePublishError(t *testing.T) {
	loads := 0
	svc := NewService(newDrafter(t, &loads), Options{
		Reload:  true,
		Publish: func(context.Context, string) error { return errors.New("imap down") },
	}, nil)

	res, err := svc.RunCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "imap down")
	assert.False(t, res.Published)
	assert.NotEmpty(t, res.Draft.ID)
}

func TestRunStopsOnCancel(t *testing.T) {
	loads := 0
	ctx, cancel := context.WithCancel(context.Background())
	svc := NewService(newDrafter(t, &loads), Options{
		Reload:   true,
		Interval: time.Hour,
		Publish: func(context.Context, string) error {
			cancel()
			return nil
		},
	}, nil)

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	assert.Equal(t, 1, loads)
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Monitor_Z_27_", sanitizeName("Monitor Z 27\""))
	assert.Equal(t, "a_b_c", sanitizeName("a/b:c"))
	assert.Equal(t, "draft", sanitizeName("  "))
}
