package mcp

// CleanOutput exposes cleanOutput for external tests.
var CleanOutput = cleanOutput
