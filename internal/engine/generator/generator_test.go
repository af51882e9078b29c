package generator_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/stagehand/internal/adapters/telemetry"
	"go.trai.ch/stagehand/internal/core/domain"
	"go.trai.ch/stagehand/internal/core/ports/mocks"
	"go.trai.ch/stagehand/internal/engine/generator"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func testConfig() *domain.Config {
	jdk := func(name, prop string) domain.JDK {
		return domain.JDK{Name: name, Property: prop, Paths: map[domain.OS]string{
			domain.OSLinux:   "/opt/" + name,
			domain.OSWindows: `C:\` + name,
		}}
	}
	return &domain.Config{
		Project: "Gradle_Check",
		Prefix:  "Gradle_Check_",
		Flags:   domain.Flags{TagBuilds: true, Daemon: true, MaxParallelForks: "%maxParallelForks%"},
		Matrix: domain.MatrixConfig{
			OS:   []domain.OS{domain.OSLinux, domain.OSWindows},
			JDKs: []domain.JDK{jdk("java7", "java7Home"), jdk("java9", "java9Home")},
			TaskSets: []domain.TaskSet{
				{Name: "sanity", Tasks: []string{"sanityCheck"}},
				{Name: "quick", Tasks: []string{"build"}},
			},
		},
		ScanTags: []string{"CI"},
		Stages: []domain.StageSpec{
			{ID: "ReadyForMerge", After: "QuickFeedback"},
			{ID: "QuickFeedback"},
		},
		Jobs: []domain.JobSpec{
			{ID: "Platform", Stage: "ReadyForMerge", Select: domain.VariantSelector{TaskSets: []string{"quick"}}},
			{ID: "Gradleception", Stage: "ReadyForMerge", NotQuick: true, Optional: true,
				Select: domain.VariantSelector{OS: []domain.OS{domain.OSLinux}, TaskSets: []string{"quick"}}},
			{ID: "SanityCheck", Stage: "QuickFeedback", SanityCheck: true,
				Select: domain.VariantSelector{OS: []domain.OS{domain.OSLinux}, TaskSets: []string{"sanity"}}},
			{ID: "Quick", Stage: "QuickFeedback",
				Select: domain.VariantSelector{OS: []domain.OS{domain.OSLinux}, TaskSets: []string{"quick"}}},
		},
	}
}

func newGenerator(t *testing.T) *generator.Generator {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	return generator.New(telemetry.NewNoOpTracer(), log)
}

func nodeIDs(p *domain.Pipeline) []string {
	ids := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		ids[i] = n.ID().String()
	}
	return ids
}

func TestGenerate_Layout(t *testing.T) {
	p, err := newGenerator(t).Generate(context.Background(), testConfig())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Gradle_Check_SanityCheck_linux_sanity",
		"Gradle_Check_Quick_linux_quick",
		"Gradle_Check_Stage_QuickFeedback_Trigger",
		"Gradle_Check_Platform_linux_quick",
		"Gradle_Check_Platform_windows_quick",
		"Gradle_Check_Gradleception_linux_quick",
		"Gradle_Check_Stage_ReadyForMerge_Trigger",
	}, nodeIDs(p))

	require.Len(t, p.Stages, 2)
	assert.Equal(t, "QuickFeedback", p.Stages[0].ID().String())
	assert.Equal(t, "ReadyForMerge", p.Stages[1].ID().String())
}

func TestGenerate_EveryNodeGatedBySanity(t *testing.T) {
	p, err := newGenerator(t).Generate(context.Background(), testConfig())
	require.NoError(t, err)

	sanity := domain.NewInternedString("Gradle_Check_SanityCheck_linux_sanity")
	for _, n := range p.Nodes {
		var toSanity []domain.Edge
		for _, e := range p.EdgesFrom(n.ID()) {
			if e.To == sanity {
				toSanity = append(toSanity, e)
			}
		}
		if n.ID() == sanity {
			assert.Empty(t, toSanity)
			continue
		}
		require.Len(t, toSanity, 1, n.ID().String())
		assert.Equal(t, domain.FailureCancel, toSanity[0].OnFailure)
		assert.Equal(t, domain.FailureCancel, toSanity[0].OnCancel)
	}
}

func TestGenerate_ExecutionOrderRespectsDependencies(t *testing.T) {
	p, err := newGenerator(t).Generate(context.Background(), testConfig())
	require.NoError(t, err)

	require.Len(t, p.ExecutionOrder, len(p.Nodes))
	assert.Equal(t, "Gradle_Check_SanityCheck_linux_sanity", p.ExecutionOrder[0].String())

	position := make(map[domain.InternedString]int, len(p.ExecutionOrder))
	for i, id := range p.ExecutionOrder {
		position[id] = i
	}
	for _, e := range p.Edges {
		assert.Less(t, position[e.To], position[e.From], "%s must run before %s", e.To, e.From)
	}
}

func TestGenerate_TriggerAndNotQuickEdges(t *testing.T) {
	p, err := newGenerator(t).Generate(context.Background(), testConfig())
	require.NoError(t, err)

	id := domain.NewInternedString
	assert.Equal(t, []domain.Edge{
		domain.CancelEdge(id("Gradle_Check_Gradleception_linux_quick"), id("Gradle_Check_Stage_QuickFeedback_Trigger")),
		domain.CancelEdge(id("Gradle_Check_Gradleception_linux_quick"), id("Gradle_Check_SanityCheck_linux_sanity")),
	}, p.EdgesFrom(id("Gradle_Check_Gradleception_linux_quick")))

	assert.Equal(t, []domain.Edge{
		domain.CancelEdge(id("Gradle_Check_Stage_ReadyForMerge_Trigger"), id("Gradle_Check_Platform_linux_quick")),
		domain.CancelEdge(id("Gradle_Check_Stage_ReadyForMerge_Trigger"), id("Gradle_Check_Platform_windows_quick")),
		domain.IgnoreEdge(id("Gradle_Check_Stage_ReadyForMerge_Trigger"), id("Gradle_Check_Gradleception_linux_quick")),
		domain.CancelEdge(id("Gradle_Check_Stage_ReadyForMerge_Trigger"), id("Gradle_Check_Stage_QuickFeedback_Trigger")),
		domain.CancelEdge(id("Gradle_Check_Stage_ReadyForMerge_Trigger"), id("Gradle_Check_SanityCheck_linux_sanity")),
	}, p.EdgesFrom(id("Gradle_Check_Stage_ReadyForMerge_Trigger")))

	assert.Len(t, p.ArtifactsFrom(id("Gradle_Check_Quick_linux_quick")), 1)
	assert.Empty(t, p.ArtifactsFrom(id("Gradle_Check_Stage_QuickFeedback_Trigger")))
}

func TestGenerate_Deterministic(t *testing.T) {
	g := newGenerator(t)
	first, err := g.Generate(context.Background(), testConfig())
	require.NoError(t, err)

	for range 5 {
		again, err := g.Generate(context.Background(), testConfig())
		require.NoError(t, err)

		diff := cmp.Diff(first, again,
			cmp.AllowUnexported(domain.Variant{}, domain.Stage{}, domain.PlanNode{}),
			cmp.Comparer(func(a, b domain.InternedString) bool { return a == b }),
		)
		assert.Empty(t, diff)
	}
}

func TestGenerate_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Config)
		want   error
	}{
		{
			name:   "no sanity check",
			mutate: func(c *domain.Config) { c.Jobs = c.Jobs[:2] },
			want:   domain.ErrNoSanityCheck,
		},
		{
			name: "two sanity checks",
			mutate: func(c *domain.Config) {
				c.Jobs[3].SanityCheck = true
			},
			want: domain.ErrConfiguration,
		},
		{
			name: "sanity check selects several variants",
			mutate: func(c *domain.Config) {
				c.Jobs[2].Select = domain.VariantSelector{TaskSets: []string{"sanity"}}
			},
			want: domain.ErrConfiguration,
		},
		{
			name:   "unknown stage",
			mutate: func(c *domain.Config) { c.Jobs[0].Stage = "Nightly" },
			want:   domain.ErrMissingStage,
		},
		{
			name: "stage cycle",
			mutate: func(c *domain.Config) {
				c.Stages[1].After = "ReadyForMerge"
			},
			want: domain.ErrCycleDetected,
		},
		{
			name: "missing jdk path",
			mutate: func(c *domain.Config) {
				c.Matrix.OS = append(c.Matrix.OS, domain.OSMacOS)
			},
			want: domain.ErrConfiguration,
		},
		{
			name: "notQuick in first stage",
			mutate: func(c *domain.Config) {
				c.Jobs[3].NotQuick = true
			},
			want: domain.ErrMissingNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)

			_, err := newGenerator(t).Generate(context.Background(), cfg)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGenerate_SanityCheckMustNotWait(t *testing.T) {
	cfg := testConfig()
	cfg.Jobs[2].Stage = "ReadyForMerge"
	cfg.Jobs[2].NotQuick = true

	_, err := newGenerator(t).Generate(context.Background(), cfg)
	require.ErrorIs(t, err, domain.ErrCycleDetected)

	zErr, ok := err.(*zerr.Error)
	require.True(t, ok)
	assert.Contains(t, zErr.Metadata()["cycle"], "Gradle_Check_SanityCheck_linux_sanity")
}

func TestGenerate_Spans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := trace.NewTracerProvider(trace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info("plan generated", gomock.Any()).Times(1)

	g := generator.New(telemetry.NewOTelTracer("test"), log)
	_, err := g.Generate(context.Background(), testConfig())
	require.NoError(t, err)

	var names []string
	for _, s := range sr.Ended() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"stages", "expand", "build", "resolve", "generate"}, names)
}

func TestStages(t *testing.T) {
	stages, err := newGenerator(t).Stages(context.Background(), testConfig())
	require.NoError(t, err)
	require.Len(t, stages, 2)
	assert.Equal(t, "QuickFeedback", stages[0].ID().String())
}
