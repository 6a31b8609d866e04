package config

const (
	// Startup errors
	ErrLoadConfigFmt      = "Failed to load config: %v"
	ErrInitializeStoreFmt = "Failed to initialize note store: %v"

	// Config errors
	ErrWriteConfigContentFmt = "Failed to write config content: %v"
	ErrCreateTempFileFmt     = "Failed to create temp file: %v"
)
