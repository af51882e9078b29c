package domain

import "go.trai.ch/zerr"

var (
	// ErrConfiguration is returned when the pipeline configuration is incomplete or inconsistent.
	ErrConfiguration = zerr.New("invalid configuration")

	// ErrConfigNotFound is returned when no configuration file is found.
	ErrConfigNotFound = zerr.New("configuration file not found")

	// ErrConfigReadFailed is returned when the configuration file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the configuration file is not valid YAML for the schema.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrCycleDetected is returned when a precedence or dependency cycle is detected.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrStageAlreadyExists is returned when attempting to add a stage with an id that already exists.
	ErrStageAlreadyExists = zerr.New("stage already exists")

	// ErrMissingStage is returned when a stage references a preceding stage that was never added.
	ErrMissingStage = zerr.New("missing stage")

	// ErrNodeAlreadyExists is returned when attempting to add a plan node with an id that already exists.
	ErrNodeAlreadyExists = zerr.New("plan node already exists")

	// ErrMissingNode is returned when dependency resolution references a node absent from the graph.
	ErrMissingNode = zerr.New("missing plan node")

	// ErrNoSanityCheck is returned when no job is designated as the sanity check.
	ErrNoSanityCheck = zerr.New("no sanity check job configured")

	// ErrUnknownFormat is returned when an output format has no registered renderer.
	ErrUnknownFormat = zerr.New("unknown output format")

	// ErrPlanDrift is returned when the generated plan differs from the recorded one.
	ErrPlanDrift = zerr.New("plan drift detected")
)
