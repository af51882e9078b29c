package domain

const (
	// ConfigFileName is the configuration file looked up by default.
	ConfigFileName = "stagehand.yaml"

	// DefaultStateDir is the directory holding recorded plan state.
	DefaultStateDir = ".stagehand"

	// StateFileName is the file inside DefaultStateDir that stores plan records.
	StateFileName = "state.json"
)
