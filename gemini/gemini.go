// Package gemini implements [recall.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between recall's
// domain types and the Gemini API types. Streaming uses the SDK's iter.Seq2
// iterator, wrapped into the pull-based [recall.Stream] interface.
package gemini

const (
	// DefaultModel is used when neither the client nor the request names a model.
	DefaultModel     = "gemini-2.5-flash"
	defaultMaxTokens = 65536
)
