package metadata

import "errors"

var (
	// ErrResolution indicates the metadata file or topic number could not
	// be resolved into a module reference. Wraps the specific cause.
	ErrResolution = errors.New("metadata resolution failed")

	// ErrTopicOutOfRange indicates a topic number outside the module list.
	ErrTopicOutOfRange = errors.New("topic number out of range")

	// ErrMalformedMetadata indicates the metadata file did not parse.
	ErrMalformedMetadata = errors.New("malformed metadata file")
)
