package recall

// Role represents the role of a message sender. The values double as the
// role column of persisted history.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)
