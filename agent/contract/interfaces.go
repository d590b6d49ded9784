package contract

import (
	"context"

	"github.com/cloudwego/eino/schema"

	statex "github.com/tanpawarit/Chative-Voice-Agents/agent/state"
)

// ToolGateway runs a persona's tools against one conversation's state.
type ToolGateway interface {
	Infos() []*schema.ToolInfo
	Execute(ctx context.Context, st *statex.SessionState, req ToolRequest) ToolResult
}
