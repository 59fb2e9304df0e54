package recall

// Usage tracks token consumption.
//
// Invariant across all providers:
//
//	InputTokens     = non-cached input tokens
//	CacheReadTokens = tokens served from cache (cache hit)
//
// Providers normalize their API-specific fields to this invariant (e.g. the
// OpenAI-compatible backend subtracts cached_tokens from prompt_tokens) and
// clamp derived values to zero.
type Usage struct {
	InputTokens     int
	OutputTokens    int
	CacheReadTokens int
}
