package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed
	// into the target struct.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrNilPointer is returned when a nil pointer is passed to Load.
	ErrNilPointer = errors.New("nil pointer provided to config loader")

	// ErrConfigNotLoaded is returned when a cached config cannot be retrieved
	// after a successful parse. Indicates a bug in the loader itself.
	ErrConfigNotLoaded = errors.New("configuration has not been loaded")
)
