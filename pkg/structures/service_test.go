package structures

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Dhanunjay2704/autostruct/pkg/config"
	"github.com/Dhanunjay2704/autostruct/pkg/errcodes"
	"github.com/Dhanunjay2704/autostruct/pkg/layout"
	"github.com/Dhanunjay2704/autostruct/pkg/scaffold"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(config.NewForTest())
}

func TestParseTree(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	ctx := context.Background()

	tree, err := svc.ParseTree(ctx, ParseOptions{
		Text:   "project/\n├── src/\n│   └── main.go\n└── README.md\n",
		Format: "ascii",
	})
	require.NoError(t, err)

	nodes, maxDepth := tree.Stats()
	assert.Equal(t, 4, nodes)
	assert.Equal(t, 3, maxDepth)
	assert.Equal(t, "project", tree.Root.Name)
}

func TestParseTree_UnknownFormat(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	_, err := svc.ParseTree(context.Background(), ParseOptions{Text: "{}", Format: "xml"})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "validation_error", codeErr.Code)
	assert.Contains(t, codeErr.Message, "unsupported format")
}

func TestParseTree_ParseError(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	_, err := svc.ParseTree(context.Background(), ParseOptions{Text: `{"a": [1]}`, Format: "json"})
	require.Error(t, err)

	var perr *layout.ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, layout.FormatJSON, perr.Format)
}

func TestParseTree_ValidationError(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	_, err := svc.ParseTree(context.Background(), ParseOptions{Text: `{"a:b": null}`, Format: "json"})
	require.Error(t, err)

	var verr *layout.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "a:b", verr.Path)
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	base := filepath.Join(t.TempDir(), "target")

	summary, err := svc.Run(context.Background(), RunOptions{
		Text:    `{"src": {"main.go": null}, "README.md": null}`,
		Format:  "json",
		BaseDir: base,
		DryRun:  true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, summary.ID)
	assert.Equal(t, RunStatusCompleted, summary.Status)
	assert.True(t, summary.DryRun)
	assert.Equal(t, base, summary.BaseDir)
	require.Len(t, summary.Results, 3)
	for _, result := range summary.Results {
		assert.Equal(t, scaffold.StatusPlanned, result.Status)
	}
	assert.Zero(t, summary.Created)

	// Nothing touches the disk on a dry run.
	_, statErr := os.Stat(base)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_Create(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	base := t.TempDir()

	summary, err := svc.Run(context.Background(), RunOptions{
		Text:    "src:\n  main.go:\nREADME.md:\n",
		Format:  "yaml",
		BaseDir: base,
	})
	require.NoError(t, err)

	assert.Equal(t, RunStatusCompleted, summary.Status)
	assert.False(t, summary.DryRun)
	assert.Equal(t, 3, summary.Created)
	assert.Zero(t, summary.Failed)

	info, err := os.Stat(filepath.Join(base, "src"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	_, err = os.Stat(filepath.Join(base, "src", "main.go"))
	assert.NoError(t, err)

	// Running the same structure again only reports existing entries.
	second, err := svc.Run(context.Background(), RunOptions{
		Text:    "src:\n  main.go:\nREADME.md:\n",
		Format:  "yaml",
		BaseDir: base,
	})
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, second.Status)
	assert.Zero(t, second.Created)
	assert.Equal(t, 3, second.AlreadyExisted)
}

func TestRun_PartialFailure(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	base := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(base, "blocked"), []byte("x"), 0644))

	summary, err := svc.Run(context.Background(), RunOptions{
		Text:    `{"blocked": {"a.txt": null}, "ok.txt": null}`,
		Format:  "json",
		BaseDir: base,
	})
	require.NoError(t, err)

	assert.Equal(t, RunStatusPartialFailure, summary.Status)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 2, summary.Failed)
}

func TestRun_RelativeBasePath(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	_, err := svc.Run(context.Background(), RunOptions{
		Text:    `{"a.txt": null}`,
		Format:  "json",
		BaseDir: "relative/path",
	})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "validation_error", codeErr.Code)
	assert.Contains(t, codeErr.Message, `"base_path" must be an absolute path`)
}

func TestRun_AllowedRoots(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	cfg := config.NewForTest()
	cfg.AllowedRoots = []string{root}
	svc := NewService(cfg)

	inside, err := svc.Run(context.Background(), RunOptions{
		Text:    `{"a.txt": null}`,
		Format:  "json",
		BaseDir: filepath.Join(root, "projects", "demo"),
	})
	require.NoError(t, err)
	assert.Equal(t, RunStatusCompleted, inside.Status)

	_, err = svc.Run(context.Background(), RunOptions{
		Text:    `{"a.txt": null}`,
		Format:  "json",
		BaseDir: filepath.Join(t.TempDir(), "outside"),
	})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "forbidden", codeErr.Code)

	// A ".." escape inside an allowed root is rejected too.
	_, err = svc.Run(context.Background(), RunOptions{
		Text:    `{"a.txt": null}`,
		Format:  "json",
		BaseDir: root + "/sub/../../escape",
	})
	require.Error(t, err)
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "forbidden", codeErr.Code)
}

func TestRun_ParseErrorLeavesDiskUntouched(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	base := filepath.Join(t.TempDir(), "target")

	_, err := svc.Run(context.Background(), RunOptions{
		Text:    `{"a":`,
		Format:  "json",
		BaseDir: base,
	})
	require.Error(t, err)

	var perr *layout.ParseError
	require.ErrorAs(t, err, &perr)

	_, statErr := os.Stat(base)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_InputSizeLimit(t *testing.T) {
	t.Parallel()
	cfg := config.NewForTest()
	cfg.MaxInputBytes = 10
	svc := NewService(cfg)

	_, err := svc.Run(context.Background(), RunOptions{
		Text:    `{"a.txt": null}`,
		Format:  "json",
		BaseDir: t.TempDir(),
	})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, "validation_error", codeErr.Code)
	assert.Contains(t, codeErr.Message, "larger than the limit of 10 bytes")
}

func TestRun_NodeLimit(t *testing.T) {
	t.Parallel()
	cfg := config.NewForTest()
	cfg.MaxNodes = 2
	svc := NewService(cfg)

	_, err := svc.Run(context.Background(), RunOptions{
		Text:    `{"a.txt": null, "b.txt": null, "c.txt": null}`,
		Format:  "json",
		BaseDir: t.TempDir(),
	})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Contains(t, codeErr.Message, "Structure has 3 entries, which is more than the limit of 2.")
}

func TestRun_DepthLimit(t *testing.T) {
	t.Parallel()
	cfg := config.NewForTest()
	cfg.MaxDepth = 2
	svc := NewService(cfg)

	_, err := svc.Run(context.Background(), RunOptions{
		Text:    `{"a": {"b": {"c.txt": null}}}`,
		Format:  "json",
		BaseDir: t.TempDir(),
	})
	require.Error(t, err)

	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Contains(t, codeErr.Message, "Structure is 3 levels deep, which is more than the limit of 2.")
}

func TestPathWithinRoot(t *testing.T) {
	t.Parallel()
	tests := []struct {
		path     string
		root     string
		expected bool
	}{
		{"/srv/projects/demo", "/srv/projects", true},
		{"/srv/projects", "/srv/projects", true},
		{"/srv/projects/", "/srv/projects", true},
		{"/srv/other", "/srv/projects", false},
		{"/srv/projectsx", "/srv/projects", false},
		{"/", "/srv/projects", false},
		{"/srv/projects/a/b/c", "/srv", true},
	}

	for _, tt := range tests {
		t.Run(tt.path+" in "+tt.root, func(t *testing.T) {
			assert.Equal(t, tt.expected, pathWithinRoot(filepath.Clean(tt.path), tt.root))
		})
	}
}

func TestRun_ConcurrentCreatesSameBase(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	base := t.TempDir()

	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := svc.Run(context.Background(), RunOptions{
				Text:    `{"shared": {"a.txt": null, "b.txt": null}}`,
				Format:  "json",
				BaseDir: base,
			})
			done <- err
		}()
	}
	for i := 0; i < 4; i++ {
		require.NoError(t, <-done)
	}

	entries, err := os.ReadDir(filepath.Join(base, "shared"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRunSummary_IDIsUnique(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	base := filepath.Join(t.TempDir(), "x")

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		summary, err := svc.Run(context.Background(), RunOptions{
			Text:    `{"a.txt": null}`,
			Format:  "json",
			BaseDir: base,
			DryRun:  true,
		})
		require.NoError(t, err)
		require.False(t, seen[summary.ID])
		seen[summary.ID] = true
		assert.Len(t, strings.Split(summary.ID, "-"), 5)
	}
}
