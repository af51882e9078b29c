package domain

import (
	"slices"

	"go.trai.ch/zerr"
)

// ExecutionMode controls whether a step runs after an earlier step failed.
type ExecutionMode string

const (
	// ModeNormal runs the step only if every previous step succeeded.
	ModeNormal ExecutionMode = "normal"
	// ModeAlways runs the step regardless of previous step outcomes.
	ModeAlways ExecutionMode = "always"
)

// ParseExecutionMode converts a configuration value into an ExecutionMode.
// An empty value selects ModeNormal.
func ParseExecutionMode(s string) (ExecutionMode, error) {
	switch ExecutionMode(s) {
	case "", ModeNormal:
		return ModeNormal, nil
	case ModeAlways:
		return ModeAlways, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrConfiguration, "unknown execution mode"), "mode", s)
	}
}

// Runner selects the tool a step is run with.
type Runner string

const (
	// RunnerGradleWrapper runs the Gradle wrapper checked into the repository.
	RunnerGradleWrapper Runner = "gradle-wrapper"
	// RunnerLocalGradle runs a Gradle distribution from an explicit home directory.
	RunnerLocalGradle Runner = "local-gradle"
	// RunnerScript runs a shell script.
	RunnerScript Runner = "script"
)

// ParseRunner converts a configuration value into a Runner.
// An empty value selects the Gradle wrapper.
func ParseRunner(s string) (Runner, error) {
	switch s {
	case "", "gradle", "gradleWrapper", string(RunnerGradleWrapper):
		return RunnerGradleWrapper, nil
	case "localGradle", string(RunnerLocalGradle):
		return RunnerLocalGradle, nil
	case string(RunnerScript):
		return RunnerScript, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrConfiguration, "unknown step runner"), "runner", s)
	}
}

// Step is one build step of a plan node.
type Step struct {
	Name       string
	Runner     Runner
	Executable string
	Tasks      []string
	Params     ParamList
	WorkingDir string
	BuildFile  string
	Script     string
	Mode       ExecutionMode
	Quoting    QuoteStyle
}

// Args returns the arguments passed to the executable: params, build file, then tasks.
func (s Step) Args() []string {
	args := s.Params.Render()
	if s.BuildFile != "" {
		args = append(args, "-b", s.BuildFile)
	}
	return append(args, s.Tasks...)
}

// Command renders the step as a single command line. Script steps return their body.
func (s Step) Command() string {
	if s.Runner == RunnerScript {
		return s.Script
	}
	return s.Quoting.Join(append([]string{s.Executable}, s.Args()...))
}

// Clone returns a deep copy of the step.
func (s Step) Clone() Step {
	s.Tasks = slices.Clone(s.Tasks)
	s.Params = slices.Clone(s.Params)
	return s
}

// Flag names understood by Predicate.
const (
	FlagTagBuilds = "tagBuilds"
	FlagDaemon    = "daemon"
)

// Predicate is a declarative condition evaluated against a variant when a plan is built.
// The zero Predicate matches everything.
type Predicate struct {
	// OS restricts the step to the listed operating systems. Empty means any.
	OS []OS
	// Flags lists global flags that must all be enabled.
	Flags []string
}

// Matches reports whether the predicate holds for the variant under the given flags.
func (p Predicate) Matches(v Variant, flags Flags) bool {
	if len(p.OS) > 0 && !slices.Contains(p.OS, v.OS()) {
		return false
	}
	for _, f := range p.Flags {
		if !flags.Enabled(f) {
			return false
		}
	}
	return true
}

// StepTemplate is a step that is only emitted when its predicate matches.
type StepTemplate struct {
	Step Step
	When Predicate
}
