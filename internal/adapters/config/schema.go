package config

// Stagefile represents the structure of the stagehand.yaml configuration file.
type Stagefile struct {
	Version     string            `yaml:"version"`
	Project     string            `yaml:"project"`
	Prefix      *string           `yaml:"prefix"`
	Flags       FlagsDTO          `yaml:"flags"`
	InitScripts []string          `yaml:"initScripts"`
	Matrix      MatrixDTO         `yaml:"matrix"`
	BuildCache  BuildCacheDTO     `yaml:"buildCache"`
	ScanTags    []string          `yaml:"scanTags"`
	Credentials CredentialsDTO    `yaml:"credentials"`
	Env         map[string]string `yaml:"env"`
	Mirrors     []MirrorDTO       `yaml:"mirrors"`
	Stages      []StageDTO        `yaml:"stages"`
	Jobs        []JobDTO          `yaml:"jobs"`
}

// FlagsDTO represents the global switches.
type FlagsDTO struct {
	TagBuilds        bool    `yaml:"tagBuilds"`
	Daemon           *bool   `yaml:"daemon"`
	MaxParallelForks *string `yaml:"maxParallelForks"`
}

// MatrixDTO represents the variant axes.
type MatrixDTO struct {
	OS       []string     `yaml:"os"`
	JDKs     []JDKDTO     `yaml:"jdks"`
	TaskSets []TaskSetDTO `yaml:"taskSets"`
	Daemon   []bool       `yaml:"daemon"`
}

// JDKDTO represents a JDK and its per-OS installation path.
type JDKDTO struct {
	Name     string            `yaml:"name"`
	Property string            `yaml:"property"`
	Paths    map[string]string `yaml:"paths"`
}

// TaskSetDTO represents a named list of Gradle tasks.
type TaskSetDTO struct {
	Name  string   `yaml:"name"`
	Tasks []string `yaml:"tasks"`
}

// BuildCacheDTO represents the remote build cache settings.
type BuildCacheDTO struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Push     bool   `yaml:"push"`
}

// CredentialsDTO represents references to secret CI parameters.
type CredentialsDTO struct {
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	BuildID     string `yaml:"buildId"`
	GitHubToken string `yaml:"githubToken"`
}

// MirrorDTO represents a repository mirror.
type MirrorDTO struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// StageDTO represents a stage definition.
type StageDTO struct {
	ID    string `yaml:"id"`
	After string `yaml:"after"`
}

// SelectorDTO represents a job's variant filter.
type SelectorDTO struct {
	OS       []string `yaml:"os"`
	TaskSets []string `yaml:"taskSets"`
	Daemon   *bool    `yaml:"daemon"`
}

// PredicateDTO represents the condition attached to an extra step.
type PredicateDTO struct {
	OS    []string `yaml:"os"`
	Flags []string `yaml:"flags"`
}

// StepDTO represents an extra build step.
type StepDTO struct {
	Name          string       `yaml:"name"`
	Runner        string       `yaml:"runner"`
	Tasks         []string     `yaml:"tasks"`
	Parameters    string       `yaml:"parameters"`
	InheritParams bool         `yaml:"inheritParams"`
	GradleHome    string       `yaml:"gradleHome"`
	WorkingDir    string       `yaml:"workingDir"`
	BuildFile     string       `yaml:"buildFile"`
	Script        string       `yaml:"script"`
	Mode          string       `yaml:"mode"`
	When          PredicateDTO `yaml:"when"`
}

// JobDTO represents a job definition in the configuration.
type JobDTO struct {
	ID              string            `yaml:"id"`
	Name            string            `yaml:"name"`
	Stage           string            `yaml:"stage"`
	SanityCheck     bool              `yaml:"sanityCheck"`
	NotQuick        bool              `yaml:"notQuick"`
	Optional        bool              `yaml:"optional"`
	Select          SelectorDTO       `yaml:"select"`
	ExtraParameters string            `yaml:"extraParameters"`
	ExtraSteps      []StepDTO         `yaml:"extraSteps"`
	ScanTags        []string          `yaml:"scanTags"`
	Timeout         int               `yaml:"timeout"`
	BuildCache      *bool             `yaml:"buildCache"`
	Env             map[string]string `yaml:"env"`
}
