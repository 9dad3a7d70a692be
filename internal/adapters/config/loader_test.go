package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/twin/internal/adapters/config"
	"go.trai.ch/twin/internal/core/domain"
	"go.trai.ch/twin/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const fullTwinfile = `
version: "1"
settings:
  cacheTTL: 30s
  minSamples: 5
  reliabilityMargin: 0.2
  speedupFactor: 0.5
  errorHistory: 20
  insufficientData: original
implementations:
  analysis:
    original:
      workingDir: legacy
      timeout: 2s
      environment:
        MODE: slow
      operations:
        summarize: ["python3", "summarize.py"]
    candidate:
      workingDir: /opt/fast
      operations:
        summarize: ["./fast", "summarize"]
        stats: ["./fast", "stats"]
`

func newLoader(t *testing.T) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	return config.NewLoader(mockLogger)
}

func createFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), domain.FilePerm))
	return path
}

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.TwinFileName, fullTwinfile)

	ws, err := newLoader(t).Load(root)
	require.NoError(t, err)

	assert.Equal(t, root, ws.Root)
	assert.Equal(t, domain.Settings{
		CacheTTL:          30 * time.Second,
		MinSamples:        5,
		ReliabilityMargin: 0.2,
		SpeedupFactor:     0.5,
		ErrorHistory:      20,
		InsufficientData:  domain.Original,
	}, ws.Settings)

	require.Len(t, ws.Types, 1)
	spec := ws.Types[0]
	assert.Equal(t, "analysis", spec.Name)

	assert.Equal(t, "analysis/original", spec.Original.Name)
	assert.Equal(t, filepath.Join(root, "legacy"), spec.Original.WorkingDir)
	assert.Equal(t, 2*time.Second, spec.Original.Timeout)
	assert.Equal(t, map[string]string{"MODE": "slow"}, spec.Original.Environment)
	assert.Equal(t, []string{"python3", "summarize.py"}, spec.Original.Operations["summarize"])

	assert.Equal(t, "analysis/candidate", spec.Candidate.Name)
	assert.Equal(t, "/opt/fast", spec.Candidate.WorkingDir)
	assert.Zero(t, spec.Candidate.Timeout)
	assert.Len(t, spec.Candidate.Operations, 2)
}

func TestLoader_Load_WalksUp(t *testing.T) {
	root := t.TempDir()
	createFile(t, root, domain.TwinFileName, fullTwinfile)

	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))

	ws, err := newLoader(t).Load(nested)
	require.NoError(t, err)
	assert.Equal(t, root, ws.Root)
}

func TestLoader_Load_NotFound(t *testing.T) {
	_, err := newLoader(t).Load(t.TempDir())
	require.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestLoader_LoadFile_Defaults(t *testing.T) {
	root := t.TempDir()
	path := createFile(t, root, "custom.yaml", `
implementations:
  echo:
    original:
      operations:
        run: ["cat"]
    candidate:
      operations:
        run: ["cat"]
`)

	ws, err := newLoader(t).LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultSettings(), ws.Settings)
	require.Len(t, ws.Types, 1)
	assert.Equal(t, root, ws.Types[0].Original.WorkingDir)
}

func TestLoader_LoadFile_ZeroTTLDisablesCache(t *testing.T) {
	root := t.TempDir()
	path := createFile(t, root, domain.TwinFileName, `
settings:
  cacheTTL: 0s
  minSamples: 0
`)

	ws, err := newLoader(t).LoadFile(path)
	require.NoError(t, err)
	assert.Zero(t, ws.Settings.CacheTTL)
	assert.Zero(t, ws.Settings.MinSamples)
	assert.Empty(t, ws.Types)
}

func TestLoader_LoadFile_TypesAreSorted(t *testing.T) {
	root := t.TempDir()
	side := `
    original:
      operations: {run: ["true"]}
    candidate:
      operations: {run: ["true"]}`
	path := createFile(t, root, domain.TwinFileName, "implementations:\n  zeta:"+side+"\n  alpha:"+side+"\n")

	ws, err := newLoader(t).LoadFile(path)
	require.NoError(t, err)
	require.Len(t, ws.Types, 2)
	assert.Equal(t, "alpha", ws.Types[0].Name)
	assert.Equal(t, "zeta", ws.Types[1].Name)
}

func TestLoader_LoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "malformed yaml",
			content: "settings: [",
			wantErr: domain.ErrConfigParseFailed,
		},
		{
			name:    "negative ttl",
			content: "settings:\n  cacheTTL: -1s\n",
			wantErr: domain.ErrInvalidSettings,
		},
		{
			name:    "unparsable ttl",
			content: "settings:\n  cacheTTL: soon\n",
			wantErr: domain.ErrInvalidSettings,
		},
		{
			name:    "unknown insufficient data preference",
			content: "settings:\n  insufficientData: both\n",
			wantErr: domain.ErrInvalidSettings,
		},
		{
			name:    "margin out of range",
			content: "settings:\n  reliabilityMargin: 1.5\n",
			wantErr: domain.ErrInvalidSettings,
		},
		{
			name:    "non-positive speedup factor",
			content: "settings:\n  speedupFactor: 0\n",
			wantErr: domain.ErrInvalidSettings,
		},
		{
			name:    "empty error history",
			content: "settings:\n  errorHistory: 0\n",
			wantErr: domain.ErrInvalidSettings,
		},
		{
			name: "missing candidate",
			content: `
implementations:
  analysis:
    original:
      operations: {run: ["true"]}
`,
			wantErr: domain.ErrMissingImplementation,
		},
		{
			name: "empty argv",
			content: `
implementations:
  analysis:
    original:
      operations: {run: []}
    candidate:
      operations: {run: ["true"]}
`,
			wantErr: domain.ErrEmptyCommand,
		},
		{
			name: "bad timeout",
			content: `
implementations:
  analysis:
    original:
      timeout: forever
      operations: {run: ["true"]}
    candidate:
      operations: {run: ["true"]}
`,
			wantErr: domain.ErrInvalidSettings,
		},
		{
			name: "slash in type name",
			content: `
implementations:
  a/b:
    original:
      operations: {run: ["true"]}
    candidate:
      operations: {run: ["true"]}
`,
			wantErr: domain.ErrInvalidRegistration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createFile(t, t.TempDir(), domain.TwinFileName, tt.content)
			_, err := newLoader(t).LoadFile(path)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoader_LoadFile_Unreadable(t *testing.T) {
	_, err := newLoader(t).LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, domain.ErrConfigReadFailed)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_WarnsWithoutImplementations(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := mocks.NewMockLogger(ctrl)
	mockLogger.EXPECT().Warn(gomock.Any()).Times(1)

	path := createFile(t, t.TempDir(), domain.TwinFileName, "version: \"1\"\n")
	_, err := config.NewLoader(mockLogger).LoadFile(path)
	require.NoError(t, err)
}
