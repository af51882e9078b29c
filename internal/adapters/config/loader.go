// Package config provides the configuration loader for stagehand.
package config

import (
	"bytes"
	"errors"
	"io"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/google/shlex"
	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/stagehand/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// SupportedVersion is the only configuration schema version understood.
	SupportedVersion = "1"

	defaultMaxParallelForks = "%maxParallelForks%"
	defaultTimeout          = 90
)

var validIDRegex = regexp.MustCompile("^[a-zA-Z0-9_]+$")

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the configuration at path. If path is a directory, stagehand.yaml is
// searched for in it and its parents.
func (l *Loader) Load(path string) (*domain.Config, error) {
	configPath, err := findConfiguration(path)
	if err != nil {
		return nil, err
	}

	var file Stagefile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	cfg, err := l.convert(&file)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return cfg, nil
}

func findConfiguration(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no configuration at path"), "path", path)
		}
		return "", zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}
	if !info.IsDir() {
		return path, nil
	}

	currentDir, err := filepath.Abs(path)
	if err != nil {
		return "", zerr.Wrap(err, "failed to resolve configuration directory")
	}
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "no "+domain.ConfigFileName+" in directory or parents"), "cwd", path)
}

// readAndUnmarshalYAML reads a YAML file and decodes it strictly into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is provided by the user
	data, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(target); err != nil && !errors.Is(err, io.EOF) {
		return zerr.Wrap(domain.ErrConfigParseFailed, err.Error())
	}
	return nil
}

func (l *Loader) convert(file *Stagefile) (*domain.Config, error) {
	if file.Version != "" && file.Version != SupportedVersion {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfiguration, "unsupported configuration version"), "version", file.Version)
	}
	if file.Version == "" {
		l.Logger.Warn("configuration has no version, assuming " + SupportedVersion)
	}
	if file.Project == "" {
		return nil, zerr.Wrap(domain.ErrConfiguration, "project must be set")
	}

	cfg := &domain.Config{
		Version:     SupportedVersion,
		Project:     file.Project,
		Prefix:      file.Project + "_",
		InitScripts: slices.Clone(file.InitScripts),
		ScanTags:    slices.Clone(file.ScanTags),
		BuildCache:  domain.BuildCache(file.BuildCache),
		Credentials: domain.Credentials(file.Credentials),
		Env:         envVars(file.Env),
		Flags: domain.Flags{
			TagBuilds:        file.Flags.TagBuilds,
			Daemon:           true,
			MaxParallelForks: defaultMaxParallelForks,
		},
	}
	if file.Prefix != nil {
		cfg.Prefix = *file.Prefix
	}
	if file.Flags.Daemon != nil {
		cfg.Flags.Daemon = *file.Flags.Daemon
	}
	if file.Flags.MaxParallelForks != nil {
		cfg.Flags.MaxParallelForks = *file.Flags.MaxParallelForks
	}

	for _, m := range file.Mirrors {
		if m.Name == "" || m.URL == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrConfiguration, "mirror needs a name and a url"), "mirror", m.Name)
		}
		cfg.Mirrors = append(cfg.Mirrors, domain.Mirror(m))
	}

	matrix, err := convertMatrix(file.Matrix)
	if err != nil {
		return nil, err
	}
	cfg.Matrix = matrix

	for _, s := range file.Stages {
		if err := validateID("stage", s.ID); err != nil {
			return nil, err
		}
		cfg.Stages = append(cfg.Stages, domain.StageSpec(s))
	}

	seen := make(map[string]bool, len(file.Jobs))
	for i := range file.Jobs {
		dto := &file.Jobs[i]
		if seen[dto.ID] {
			return nil, zerr.With(zerr.Wrap(domain.ErrConfiguration, "duplicate job id"), "job", dto.ID)
		}
		seen[dto.ID] = true

		job, err := convertJob(dto)
		if err != nil {
			return nil, zerr.With(err, "job", dto.ID)
		}
		if job.BuildCache != nil && *job.BuildCache && !cfg.BuildCache.Enabled {
			l.Logger.Warn("job enables the build cache but it is disabled globally", "job", job.ID)
		}
		cfg.Jobs = append(cfg.Jobs, job)
	}

	return cfg, nil
}

func convertMatrix(dto MatrixDTO) (domain.MatrixConfig, error) {
	var m domain.MatrixConfig
	for _, s := range dto.OS {
		os, err := domain.ParseOS(s)
		if err != nil {
			return m, err
		}
		if slices.Contains(m.OS, os) {
			return m, zerr.With(zerr.Wrap(domain.ErrConfiguration, "duplicate operating system"), "os", s)
		}
		m.OS = append(m.OS, os)
	}

	for _, j := range dto.JDKs {
		if j.Name == "" || j.Property == "" {
			return m, zerr.With(zerr.Wrap(domain.ErrConfiguration, "jdk needs a name and a property"), "jdk", j.Name)
		}
		jdk := domain.JDK{Name: j.Name, Property: j.Property, Paths: make(map[domain.OS]string, len(j.Paths))}
		for key, path := range j.Paths {
			os, err := domain.ParseOS(key)
			if err != nil {
				return m, zerr.With(err, "jdk", j.Name)
			}
			jdk.Paths[os] = path
		}
		m.JDKs = append(m.JDKs, jdk)
	}

	for _, ts := range dto.TaskSets {
		if err := validateID("task set", ts.Name); err != nil {
			return m, err
		}
		if len(ts.Tasks) == 0 {
			return m, zerr.With(zerr.Wrap(domain.ErrConfiguration, "task set has no tasks"), "task_set", ts.Name)
		}
		m.TaskSets = append(m.TaskSets, domain.TaskSet{Name: ts.Name, Tasks: slices.Clone(ts.Tasks)})
	}

	m.DaemonModes = slices.Clone(dto.Daemon)
	return m, nil
}

func convertJob(dto *JobDTO) (domain.JobSpec, error) {
	if err := validateID("job", dto.ID); err != nil {
		return domain.JobSpec{}, err
	}
	if dto.Stage == "" {
		return domain.JobSpec{}, zerr.Wrap(domain.ErrConfiguration, "job has no stage")
	}

	selector, err := convertSelector(dto.Select)
	if err != nil {
		return domain.JobSpec{}, err
	}

	extra, err := parseParameters(dto.ExtraParameters)
	if err != nil {
		return domain.JobSpec{}, err
	}

	job := domain.JobSpec{
		ID:          dto.ID,
		Name:        dto.Name,
		Stage:       dto.Stage,
		SanityCheck: dto.SanityCheck,
		NotQuick:    dto.NotQuick,
		Optional:    dto.Optional,
		Select:      selector,
		ExtraParams: extra,
		ScanTags:    slices.Clone(dto.ScanTags),
		Timeout:     dto.Timeout,
		BuildCache:  dto.BuildCache,
		Env:         envVars(dto.Env),
	}
	if job.Timeout == 0 {
		job.Timeout = defaultTimeout
	}

	for _, s := range dto.ExtraSteps {
		step, err := convertStep(s)
		if err != nil {
			return domain.JobSpec{}, zerr.With(err, "step", s.Name)
		}
		job.ExtraSteps = append(job.ExtraSteps, step)
	}
	return job, nil
}

func convertSelector(dto SelectorDTO) (domain.VariantSelector, error) {
	sel := domain.VariantSelector{
		TaskSets: slices.Clone(dto.TaskSets),
		Daemon:   dto.Daemon,
	}
	for _, s := range dto.OS {
		os, err := domain.ParseOS(s)
		if err != nil {
			return sel, err
		}
		sel.OS = append(sel.OS, os)
	}
	return sel, nil
}

func convertStep(dto StepDTO) (domain.StepSpec, error) {
	runner, err := domain.ParseRunner(dto.Runner)
	if err != nil {
		return domain.StepSpec{}, err
	}
	mode, err := domain.ParseExecutionMode(dto.Mode)
	if err != nil {
		return domain.StepSpec{}, err
	}
	params, err := parseParameters(dto.Parameters)
	if err != nil {
		return domain.StepSpec{}, err
	}

	when := domain.Predicate{Flags: slices.Clone(dto.When.Flags)}
	for _, s := range dto.When.OS {
		os, err := domain.ParseOS(s)
		if err != nil {
			return domain.StepSpec{}, err
		}
		when.OS = append(when.OS, os)
	}
	for _, f := range when.Flags {
		if f != domain.FlagTagBuilds && f != domain.FlagDaemon {
			return domain.StepSpec{}, zerr.With(zerr.Wrap(domain.ErrConfiguration, "unknown flag in step condition"), "flag", f)
		}
	}

	return domain.StepSpec{
		Name:          dto.Name,
		Runner:        runner,
		Tasks:         slices.Clone(dto.Tasks),
		Params:        params,
		GradleHome:    dto.GradleHome,
		WorkingDir:    dto.WorkingDir,
		BuildFile:     dto.BuildFile,
		Script:        dto.Script,
		Mode:          mode,
		When:          when,
		InheritParams: dto.InheritParams,
	}, nil
}

// parseParameters tokenises a shell-style parameter string. Quotes group words
// but backslashes are always literal, so Windows paths survive unchanged.
func parseParameters(s string) (domain.ParamList, error) {
	if s == "" {
		return nil, nil
	}
	args, err := shlex.Split(literalBackslashes(s))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrConfiguration, "malformed parameters"), "parameters", s)
	}
	return domain.ParseParams(args)
}

// literalBackslashes doubles every backslash the tokenizer would treat as an
// escape, which is any backslash outside single quotes.
func literalBackslashes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var (
		b     strings.Builder
		quote rune
	)
	b.Grow(len(s) + strings.Count(s, `\`))
	for _, r := range s {
		switch {
		case quote == 0 && (r == '\'' || r == '"'):
			quote = r
		case quote != 0 && r == quote:
			quote = 0
		case r == '\\' && quote != '\'':
			b.WriteRune(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

func envVars(m map[string]string) []domain.EnvVar {
	if len(m) == 0 {
		return nil
	}
	out := make([]domain.EnvVar, 0, len(m))
	for _, name := range slices.Sorted(maps.Keys(m)) {
		out = append(out, domain.EnvVar{Name: name, Value: m[name]})
	}
	return out
}

func validateID(kind, id string) error {
	if !validIDRegex.MatchString(id) {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrConfiguration, "invalid "+kind+" id"), "kind", kind), "id", id)
	}
	return nil
}
