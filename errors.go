package recall

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or message failed validation.
	ErrValidation = errors.New("validation error")

	// ErrConfiguration indicates missing or malformed configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrProviderConnection indicates an external tool provider could not be
	// reached or did not complete its handshake.
	ErrProviderConnection = errors.New("tool provider connection failed")

	// ErrGeneration indicates the model backend or agent runtime failed
	// while producing a reply.
	ErrGeneration = errors.New("generation failed")

	// ErrHistoryUnavailable indicates the history store could not be read
	// or written, or returned a corrupt record.
	ErrHistoryUnavailable = errors.New("history unavailable")

	// ErrDuplicateToolName indicates two tools share a name.
	ErrDuplicateToolName = errors.New("duplicate tool name")

	// ErrEmptyToolName indicates a tool without a name.
	ErrEmptyToolName = errors.New("tool name is empty")

	// ErrRegistryFrozen indicates a registration after the agent was built.
	ErrRegistryFrozen = errors.New("tool registry is frozen")

	// ErrToolUnavailable indicates a remote tool whose provider has gone away.
	ErrToolUnavailable = errors.New("tool unavailable")

	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrStreamNotReady indicates Message() was called before Next().
	ErrStreamNotReady = errors.New("stream not ready: call Next() first")

	// ErrStreamClosed indicates an operation on a closed stream.
	ErrStreamClosed = errors.New("stream closed")
)
