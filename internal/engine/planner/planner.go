// Package planner builds plan nodes: the ordered build steps for one job and variant.
package planner

import (
	"maps"
	"slices"
	"strings"

	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/zerr"
)

// Step names emitted by the planner.
const (
	StepCleanBuildSrc   = "CLEAN_BUILD_SRC"
	StepGradleRunner    = "GRADLE_RUNNER"
	StepCheckCleanM2    = "CHECK_CLEAN_M2"
	StepVerifyTestFiles = "VERIFY_TEST_FILES_CLEANUP"
	StepKillProcesses   = "KILL_PROCESSES_STARTED_BY_GRADLE"
	StepTagBuild        = "TAG_BUILD"
)

const (
	m2CleanScriptUnixLike = `REPO=%teamcity.agent.jvm.user.home%/.m2/repository
if [ -e $REPO ] ; then
    tree $REPO
    rm -rf $REPO
    echo "$REPO was polluted during the build"
    return 1
else
    echo "$REPO does not exist"
fi`

	m2CleanScriptWindows = `IF exist %teamcity.agent.jvm.user.home%\.m2\repository (
    TREE %teamcity.agent.jvm.user.home%\.m2\repository
    RMDIR /S /Q %teamcity.agent.jvm.user.home%\.m2\repository
    EXIT 1
)`
)

// Planner builds plan nodes from a shared, read-only configuration.
type Planner struct {
	cfg *domain.Config
}

// New creates a Planner.
func New(cfg *domain.Config) *Planner {
	return &Planner{cfg: cfg}
}

// NodeID returns the id of the node planned for job and variant.
func (p *Planner) NodeID(job domain.JobSpec, v domain.Variant) string {
	return p.cfg.Prefix + job.ID + "_" + v.Name()
}

// BaseParams returns the parameters shared by every Gradle step of a variant.
func (p *Planner) BaseParams(v domain.Variant) domain.ParamList {
	params := domain.ParamList{}
	if p.cfg.Flags.MaxParallelForks != "" {
		params = append(params, domain.Property("maxParallelForks", p.cfg.Flags.MaxParallelForks))
	}
	params = append(params, domain.Flag("-s"))
	if v.Daemon() {
		params = append(params, domain.Flag("--daemon"))
	} else {
		params = append(params, domain.Flag("--no-daemon"))
	}
	params = append(params, domain.Flag("--continue"))
	for _, script := range p.cfg.InitScripts {
		params = append(params, domain.InitScript(script))
	}
	for _, home := range v.JavaHomes() {
		params = append(params, domain.SystemProperty(home.Property, home.Path))
	}
	return append(params, domain.SystemProperty("org.gradle.internal.tasks.createops", ""))
}

// Build creates the plan node for job on variant within stage.
func (p *Planner) Build(stage domain.Stage, job domain.JobSpec, v domain.Variant) (domain.PlanNode, error) {
	if job.Stage != stage.ID().String() {
		return domain.PlanNode{}, zerr.With(zerr.With(zerr.Wrap(domain.ErrConfiguration, "job planned in a foreign stage"),
			"job", job.ID), "stage", stage.ID().String())
	}

	templates, err := p.templates(stage, job, v)
	if err != nil {
		return domain.PlanNode{}, zerr.With(err, "job", job.ID)
	}

	steps := make([]domain.Step, 0, len(templates))
	for _, tpl := range templates {
		if tpl.When.Matches(v, p.cfg.Flags) {
			step := tpl.Step
			step.Quoting = v.OS().QuoteStyle()
			steps = append(steps, step)
		}
	}

	name := job.Name
	if name == "" {
		name = job.ID
	}

	return domain.NewPlanNode(domain.PlanNodeSpec{
		ID:          p.NodeID(job, v),
		Name:        name + " (" + v.Name() + ")",
		Kind:        domain.NodeBuild,
		Stage:       stage.ID(),
		Job:         job.ID,
		Variant:     &v,
		Steps:       steps,
		SanityCheck: job.SanityCheck,
		NotQuick:    job.NotQuick,
		Optional:    job.Optional,
		Timeout:     job.Timeout,
		Env:         p.env(job, v),
	}), nil
}

// BuildTrigger creates the step-less node that completes when stage does.
func (p *Planner) BuildTrigger(stage domain.Stage) domain.PlanNode {
	return domain.NewPlanNode(domain.PlanNodeSpec{
		ID:    domain.TriggerID(p.cfg.Prefix, stage.ID()).String(),
		Name:  "Stage " + stage.ID().String() + " (Trigger)",
		Kind:  domain.NodeTrigger,
		Stage: stage.ID(),
	})
}

// templates lists every candidate step in execution order. Conditional steps carry
// predicates evaluated by Build.
func (p *Planner) templates(stage domain.Stage, job domain.JobSpec, v domain.Variant) ([]domain.StepTemplate, error) {
	base := p.BaseParams(v)
	windows := domain.Predicate{OS: []domain.OS{domain.OSWindows}}
	unixLike := domain.Predicate{OS: []domain.OS{domain.OSLinux, domain.OSMacOS}}

	templates := []domain.StepTemplate{
		{Step: domain.Step{
			Name:       StepCleanBuildSrc,
			Runner:     domain.RunnerGradleWrapper,
			Executable: wrapper(v.OS(), ".."),
			Tasks:      []string{"clean"},
			Params:     base,
			WorkingDir: "buildSrc",
			BuildFile:  "build.gradle.kts",
			Mode:       domain.ModeNormal,
		}},
		{Step: domain.Step{
			Name:       StepGradleRunner,
			Runner:     domain.RunnerGradleWrapper,
			Executable: wrapper(v.OS(), "."),
			Tasks:      append([]string{"clean"}, v.Tasks()...),
			Params:     p.mainParams(base, stage, job),
			Mode:       domain.ModeNormal,
		}},
	}

	for _, spec := range job.ExtraSteps {
		step, err := extraStep(spec, v, base)
		if err != nil {
			return nil, err
		}
		templates = append(templates, domain.StepTemplate{Step: step, When: spec.When})
	}

	templates = append(templates,
		domain.StepTemplate{When: unixLike, Step: domain.Step{
			Name:   StepCheckCleanM2,
			Runner: domain.RunnerScript,
			Script: m2CleanScriptUnixLike,
			Mode:   domain.ModeAlways,
		}},
		domain.StepTemplate{When: windows, Step: domain.Step{
			Name:   StepCheckCleanM2,
			Runner: domain.RunnerScript,
			Script: m2CleanScriptWindows,
			Mode:   domain.ModeAlways,
		}},
		domain.StepTemplate{Step: domain.Step{
			Name:       StepVerifyTestFiles,
			Runner:     domain.RunnerGradleWrapper,
			Executable: wrapper(v.OS(), "."),
			Tasks:      []string{"verifyTestFilesCleanup"},
			Params:     base,
			Mode:       domain.ModeAlways,
		}},
		domain.StepTemplate{When: windows, Step: domain.Step{
			Name:       StepKillProcesses,
			Runner:     domain.RunnerGradleWrapper,
			Executable: wrapper(v.OS(), "."),
			Tasks:      []string{"killExistingProcessesStartedByGradle"},
			Params:     base,
			Mode:       domain.ModeAlways,
		}},
		domain.StepTemplate{When: domain.Predicate{Flags: []string{domain.FlagTagBuilds}}, Step: domain.Step{
			Name:       StepTagBuild,
			Runner:     domain.RunnerGradleWrapper,
			Executable: wrapper(v.OS(), "."),
			Tasks:      []string{"tagBuild"},
			Params:     p.tagParams(base),
			BuildFile:  "gradle/buildTagging.gradle",
			Mode:       domain.ModeAlways,
		}},
	)
	return templates, nil
}

// mainParams orders the main build parameters: base, build cache, job extras,
// credentials, scan tags.
func (p *Planner) mainParams(base domain.ParamList, stage domain.Stage, job domain.JobSpec) domain.ParamList {
	var cache domain.ParamList
	if job.UsesBuildCache(p.cfg.BuildCache) {
		cache = p.cfg.BuildCache.Params()
	}

	tags := make(domain.ParamList, 0, len(p.cfg.ScanTags)+len(job.ScanTags)+1)
	for _, tag := range slices.Concat(p.cfg.ScanTags, job.ScanTags, []string{stage.ID().String()}) {
		tags = append(tags, domain.SystemProperty("scan.tag."+tag, ""))
	}

	return base.Concat(cache, job.ExtraParams, p.cfg.Credentials.Params(), tags)
}

func (p *Planner) tagParams(base domain.ParamList) domain.ParamList {
	params := base.Concat(p.cfg.Credentials.Params())
	if token := p.cfg.Credentials.GitHubToken; token != "" {
		params = params.With(domain.Property("githubToken", token))
	}
	return params
}

// env merges the node environment. Job values override global ones; the result is
// sorted by name.
func (p *Planner) env(job domain.JobSpec, v domain.Variant) []domain.EnvVar {
	vars := make(map[string]string)
	if v.OS().UnixLike() {
		vars["LC_ALL"] = "en_US.UTF-8"
	}
	if len(p.cfg.Mirrors) > 0 {
		mirrors := make([]string, len(p.cfg.Mirrors))
		for i, m := range p.cfg.Mirrors {
			mirrors[i] = m.Name + ":" + m.URL
		}
		vars["REPO_MIRROR_URLS"] = strings.Join(mirrors, ",")
	}
	for _, e := range p.cfg.Env {
		vars[e.Name] = e.Value
	}
	for _, e := range job.Env {
		vars[e.Name] = e.Value
	}

	out := make([]domain.EnvVar, 0, len(vars))
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		out = append(out, domain.EnvVar{Name: name, Value: vars[name]})
	}
	return out
}

func extraStep(spec domain.StepSpec, v domain.Variant, base domain.ParamList) (domain.Step, error) {
	if spec.Name == "" {
		return domain.Step{}, zerr.Wrap(domain.ErrConfiguration, "extra step has no name")
	}

	step := domain.Step{
		Name:       spec.Name,
		Runner:     spec.Runner,
		Tasks:      slices.Clone(spec.Tasks),
		Params:     slices.Clone(spec.Params),
		WorkingDir: spec.WorkingDir,
		BuildFile:  spec.BuildFile,
		Mode:       spec.Mode,
	}
	if step.Mode == "" {
		step.Mode = domain.ModeNormal
	}
	if spec.InheritParams {
		step.Params = base.Concat(spec.Params)
	}

	switch spec.Runner {
	case domain.RunnerScript:
		if spec.Script == "" {
			return domain.Step{}, zerr.With(zerr.Wrap(domain.ErrConfiguration, "script step has no script"), "step", spec.Name)
		}
		step.Script = spec.Script
		step.Params = nil
	case domain.RunnerLocalGradle:
		if spec.GradleHome == "" {
			return domain.Step{}, zerr.With(zerr.Wrap(domain.ErrConfiguration, "local gradle step has no gradle home"),
				"step", spec.Name)
		}
		step.Executable = localGradle(v.OS(), spec.GradleHome)
	default:
		step.Runner = domain.RunnerGradleWrapper
		step.Executable = wrapper(v.OS(), ".")
	}
	return step, nil
}

// wrapper returns the wrapper script in dir for the agent OS.
func wrapper(os domain.OS, dir string) string {
	if os == domain.OSWindows {
		return dir + `\gradlew.bat`
	}
	return dir + "/gradlew"
}

func localGradle(os domain.OS, home string) string {
	if os == domain.OSWindows {
		return home + `\bin\gradle.bat`
	}
	return home + "/bin/gradle"
}
