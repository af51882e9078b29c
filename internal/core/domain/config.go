package domain

import "slices"

// Config is the complete, validated pipeline configuration.
// It is built once by a ConfigLoader and passed by pointer to every builder; nothing
// mutates it afterwards.
type Config struct {
	Version     string
	Project     string
	Prefix      string
	Flags       Flags
	InitScripts []string
	Matrix      MatrixConfig
	BuildCache  BuildCache
	ScanTags    []string
	Credentials Credentials
	Env         []EnvVar
	Mirrors     []Mirror
	Stages      []StageSpec
	Jobs        []JobSpec
}

// Flags are the global switches of the pipeline.
type Flags struct {
	TagBuilds        bool
	Daemon           bool
	MaxParallelForks string
}

// Enabled reports whether the named flag is set. Unknown names are disabled.
func (f Flags) Enabled(name string) bool {
	switch name {
	case FlagTagBuilds:
		return f.TagBuilds
	case FlagDaemon:
		return f.Daemon
	default:
		return false
	}
}

// JDK declares a Java installation and its location on each OS.
type JDK struct {
	Name     string
	Property string
	Paths    map[OS]string
}

// TaskSet is a named, ordered list of Gradle tasks.
type TaskSet struct {
	Name  string
	Tasks []string
}

// MatrixConfig holds the axes variants are expanded from.
type MatrixConfig struct {
	OS          []OS
	JDKs        []JDK
	TaskSets    []TaskSet
	DaemonModes []bool
}

// BuildCache configures the remote build cache parameters.
type BuildCache struct {
	Enabled  bool
	URL      string
	Username string
	Password string
	Push     bool
}

// Params returns the Gradle parameters enabling the cache, or nil when disabled.
func (b BuildCache) Params() ParamList {
	if !b.Enabled {
		return nil
	}
	params := ParamList{Flag("--build-cache")}
	if b.URL != "" {
		params = append(params, SystemProperty("gradle.cache.remote.url", b.URL))
	}
	if b.Username != "" {
		params = append(params, SystemProperty("gradle.cache.remote.username", b.Username))
	}
	if b.Password != "" {
		params = append(params, SystemProperty("gradle.cache.remote.password", b.Password))
	}
	if b.Push {
		params = append(params, SystemProperty("gradle.cache.remote.push", "true"))
	}
	return params
}

// Credentials are references to CI server parameters holding secrets.
// Values are emitted verbatim; they are never resolved here.
type Credentials struct {
	Username    string
	Password    string
	BuildID     string
	GitHubToken string
}

// Params returns the credential properties passed to the main build step.
func (c Credentials) Params() ParamList {
	var params ParamList
	if c.Username != "" {
		params = append(params, Property("teamCityUsername", c.Username))
	}
	if c.Password != "" {
		params = append(params, Property("teamCityPassword", c.Password))
	}
	if c.BuildID != "" {
		params = append(params, Property("teamCityBuildId", c.BuildID))
	}
	return params
}

// EnvVar is an environment variable set on a plan node.
type EnvVar struct {
	Name  string
	Value string
}

// Mirror is a repository mirror exposed to builds through REPO_MIRROR_URLS.
type Mirror struct {
	Name string
	URL  string
}

// StageSpec declares a stage and the stage it runs after.
type StageSpec struct {
	ID    string
	After string
}

// VariantSelector filters the variant matrix for a job. Empty fields match everything.
type VariantSelector struct {
	OS       []OS
	TaskSets []string
	Daemon   *bool
}

// Matches reports whether the variant is selected.
func (s VariantSelector) Matches(v Variant) bool {
	if len(s.OS) > 0 && !slices.Contains(s.OS, v.OS()) {
		return false
	}
	if len(s.TaskSets) > 0 && !slices.Contains(s.TaskSets, v.TaskSet()) {
		return false
	}
	if s.Daemon != nil && *s.Daemon != v.Daemon() {
		return false
	}
	return true
}

// StepSpec is a caller-supplied step inserted between the main build and cleanup.
type StepSpec struct {
	Name       string
	Runner     Runner
	Tasks      []string
	Params     ParamList
	GradleHome string
	WorkingDir string
	BuildFile  string
	Script     string
	Mode       ExecutionMode
	When       Predicate

	// InheritParams prepends the variant's base Gradle parameters to Params.
	InheritParams bool
}

// JobSpec declares a build type that is planned once per selected variant.
type JobSpec struct {
	ID          string
	Name        string
	Stage       string
	SanityCheck bool
	NotQuick    bool
	Optional    bool
	Select      VariantSelector
	ExtraParams ParamList
	ExtraSteps  []StepSpec
	ScanTags    []string
	Timeout     int
	BuildCache  *bool
	Env         []EnvVar
}

// UsesBuildCache reports whether the job runs with the remote build cache.
func (j JobSpec) UsesBuildCache(global BuildCache) bool {
	if j.BuildCache != nil {
		return *j.BuildCache && global.Enabled
	}
	return global.Enabled
}
