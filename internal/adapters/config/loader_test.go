package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/stagehand/internal/adapters/config"
	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/stagehand/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newLoader(t *testing.T) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	return config.NewLoader(log), log
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, domain.ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoader_Load(t *testing.T) {
	loader, _ := newLoader(t)

	cfg, err := loader.Load(filepath.Join("testdata", domain.ConfigFileName))
	require.NoError(t, err)

	assert.Equal(t, "Gradle_Check", cfg.Project)
	assert.Equal(t, "Gradle_Check_", cfg.Prefix)
	assert.True(t, cfg.Flags.TagBuilds)
	assert.True(t, cfg.Flags.Daemon)
	assert.Equal(t, "%maxParallelForks%", cfg.Flags.MaxParallelForks)
	assert.Equal(t, []domain.OS{domain.OSLinux, domain.OSWindows}, cfg.Matrix.OS)
	assert.Equal(t, "%windows.java7.oracle.64bit%", cfg.Matrix.JDKs[0].Paths[domain.OSWindows])
	assert.Equal(t, []domain.EnvVar{
		{Name: "CI_REQUIRES_INVESTIGATION", Value: "true"},
		{Name: "GRADLE_OPTS", Value: "-XX:MaxPermSize=512m"},
	}, cfg.Env)
	assert.Equal(t, []domain.StageSpec{{ID: "QuickFeedback"}, {ID: "ReadyForMerge", After: "QuickFeedback"}}, cfg.Stages)

	require.Len(t, cfg.Jobs, 2)
	sanity := cfg.Jobs[0]
	assert.True(t, sanity.SanityCheck)
	assert.Equal(t, 10, sanity.Timeout)
	assert.Equal(t, []domain.OS{domain.OSLinux}, sanity.Select.OS)

	g := cfg.Jobs[1]
	assert.Equal(t, 90, g.Timeout)
	assert.True(t, g.NotQuick)
	require.NotNil(t, g.BuildCache)
	assert.False(t, *g.BuildCache)
	assert.Equal(t, domain.ParamList{
		domain.Property("gradle_installPath", "dogfood-first"),
		domain.SystemProperty("scan.tag.Gradleception", ""),
	}, g.ExtraParams)

	require.Len(t, g.ExtraSteps, 2)
	assert.Equal(t, domain.RunnerLocalGradle, g.ExtraSteps[0].Runner)
	assert.True(t, g.ExtraSteps[0].InheritParams)
	assert.Equal(t, domain.ModeNormal, g.ExtraSteps[0].Mode)
	assert.Equal(t, domain.RunnerScript, g.ExtraSteps[1].Runner)
	assert.Equal(t, domain.ModeAlways, g.ExtraSteps[1].Mode)
	assert.Equal(t, []domain.OS{domain.OSWindows}, g.ExtraSteps[1].When.OS)
}

func TestLoader_Discovery(t *testing.T) {
	loader, _ := newLoader(t)
	path := writeConfig(t, "version: \"1\"\nproject: Discovered\n")

	nested := filepath.Join(filepath.Dir(path), "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o750))

	cfg, err := loader.Load(nested)
	require.NoError(t, err)
	assert.Equal(t, "Discovered", cfg.Project)
}

func TestLoader_NotFound(t *testing.T) {
	loader, _ := newLoader(t)

	_, err := loader.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestLoader_MissingVersionWarns(t *testing.T) {
	loader, log := newLoader(t)
	log.EXPECT().Warn("configuration has no version, assuming 1")

	cfg, err := loader.Load(writeConfig(t, "project: P\nprefix: \"\"\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Prefix)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"unknown field", "version: \"1\"\nproject: P\nbogus: 1\n", domain.ErrConfigParseFailed},
		{"unsupported version", "version: \"2\"\nproject: P\n", domain.ErrConfiguration},
		{"no project", "version: \"1\"\n", domain.ErrConfiguration},
		{"unknown os", "version: \"1\"\nproject: P\nmatrix: {os: [solaris]}\n", domain.ErrConfiguration},
		{"invalid stage id", "version: \"1\"\nproject: P\nstages: [{id: \"a b\"}]\n", domain.ErrConfiguration},
		{
			"duplicate job",
			"version: \"1\"\nproject: P\njobs: [{id: A, stage: S}, {id: A, stage: S}]\n",
			domain.ErrConfiguration,
		},
		{
			"malformed parameters",
			"version: \"1\"\nproject: P\njobs: [{id: A, stage: S, extraParameters: \"-Pa='b\"}]\n",
			domain.ErrConfiguration,
		},
		{
			"positional parameter",
			"version: \"1\"\nproject: P\njobs: [{id: A, stage: S, extraParameters: \"build\"}]\n",
			domain.ErrConfiguration,
		},
		{
			"unknown runner",
			"version: \"1\"\nproject: P\njobs: [{id: A, stage: S, extraSteps: [{name: X, runner: maven}]}]\n",
			domain.ErrConfiguration,
		},
		{
			"unknown condition flag",
			"version: \"1\"\nproject: P\njobs: [{id: A, stage: S, extraSteps: [{name: X, when: {flags: [nope]}}]}]\n",
			domain.ErrConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader, _ := newLoader(t)
			_, err := loader.Load(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoader_ParametersKeepBackslashes(t *testing.T) {
	loader, _ := newLoader(t)

	cfg, err := loader.Load(writeConfig(t, `version: "1"
project: P
jobs:
  - id: A
    stage: S
    extraParameters: |-
      -Djava7Home=C:\jdk7 -Pdir="D:\work dir\gradle" -Pq='E:\x'
`))
	require.NoError(t, err)
	assert.Equal(t, domain.ParamList{
		domain.SystemProperty("java7Home", `C:\jdk7`),
		domain.Property("dir", `D:\work dir\gradle`),
		domain.Property("q", `E:\x`),
	}, cfg.Jobs[0].ExtraParams)
}

func TestLoader_WarnsOnCacheWithoutGlobalCache(t *testing.T) {
	loader, log := newLoader(t)
	log.EXPECT().Warn("job enables the build cache but it is disabled globally", "job", "A")

	_, err := loader.Load(writeConfig(t, "version: \"1\"\nproject: P\njobs: [{id: A, stage: S, buildCache: true}]\n"))
	require.NoError(t, err)
}
