// Package recall defines the domain types of a streaming command-line agent
// with persistent conversation memory.
//
// The root package holds only interfaces and value types. Implementations
// live in subpackages named after the dependency they wrap: openai and
// gemini for model backends, sqlite and json for history stores, mcp for
// external tool providers. The agent package runs the model/tool loop, the
// respond package turns it into a persisted stream of fragments, and repl
// drives it from a terminal.
package recall
