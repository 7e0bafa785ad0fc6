package ir

// Version constants for persisted records and the engine.
const (
	// IRVersion is the version of the persisted step and run records.
	IRVersion = "1"

	// EngineVersion is the emulator engine version.
	EngineVersion = "0.1.0"
)
