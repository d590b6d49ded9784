package contract

// ToolRequest is one tool call chosen by the model.
type ToolRequest struct {
	CallID string         `json:"call_id,omitempty"`
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args,omitempty"`
}

// ToolResult carries the single human-readable string a tool hands back to the model.
// Failures are phrased inside Output; there is no structured error channel.
type ToolResult struct {
	CallID string `json:"call_id,omitempty"`
	Tool   string `json:"tool"`
	Output string `json:"output"`
}
