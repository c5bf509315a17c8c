package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"promodraft/internal"
	"promodraft/internal/catalog"
	"promodraft/internal/display"
	"promodraft/internal/pipeline"
	"promodraft/internal/storage"
)

type testSource struct{}

func (testSource) Rows(context.Context) ([][]any, error) {
	return [][]any{{"Name", "Price"}, {"Mouse X", "$25.00"}, {"Monitor Z", "1,000"}}, nil
}
func (testSource) Describe() string { return "test" }

type cannedCompleter struct{}

func (cannedCompleter) Complete(context.Context, string, string) (string, error) {
	return "Big **deal** today", nil
}
func (cannedCompleter) Model() string { return "canned" }

func newTestApp(t *testing.T) *app {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "promodraft.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return &app{
		log:      zap.NewNop(),
		db:       db,
		render:   display.NewRenderer(72, true),
		currency: "$",
		svc: pipeline.NewService(pipeline.Deps{
			DB:     db,
			Open:   func(context.Context, string) (catalog.Source, error) { return testSource{}, nil },
			LLM:    cannedCompleter{},
			Layout: internal.Layout{HeaderRows: 1, PriceCol: 1},
		}),
	}
}

func runShell(t *testing.T, a *app, input string) string {
	t.Helper()
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	var out bytes.Buffer
	require.NoError(t, a.shell(cmd, strings.NewReader(input), &out))
	return out.String()
}

func TestShellFlow(t *testing.T) {
	a := newTestApp(t)
	out := runShell(t, a, "load\nlist\npick monitor\ngen\nshow\ndrafts\nquit\n")

	assert.Contains(t, out, "loaded 2 items from test")
	assert.Contains(t, out, "Mouse X")
	assert.Contains(t, out, "$950")
	assert.Contains(t, out, "deal")
	assert.Contains(t, out, "canned")
	assert.NotContains(t, out, "error:")

	drafts, err := a.db.ListDrafts(0)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Monitor Z", drafts[0].Item.Name)
}

func TestShellReportsErrorsAndContinues(t *testing.T) {
	a := newTestApp(t)
	out := runShell(t, a, "gen\nshow\nfrobnicate\npick\n")

	assert.Contains(t, out, pipeline.ErrNothingPicked.Error())
	assert.Contains(t, out, "nothing generated yet")
	assert.Contains(t, out, `unknown command "frobnicate"`)
	assert.Contains(t, out, "catalog is empty")
}

func TestShellRestoresLastLoad(t *testing.T) {
	a := newTestApp(t)
	runShell(t, a, "load\n")

	out := runShell(t, a, "pick mouse\n")
	assert.Contains(t, out, "restored 2 items from test")
	assert.Contains(t, out, "Mouse X")
}
