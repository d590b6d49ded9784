package runtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/tanpawarit/Chative-Voice-Agents/agent/contract"
	statex "github.com/tanpawarit/Chative-Voice-Agents/agent/state"
)

// MaxToolRounds bounds how many times one user turn may go back to the tools.
const MaxToolRounds = 8

// DefaultHistoryMessages is how many transcript messages a session keeps and replays.
const DefaultHistoryMessages = 60

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply   string
	Persona string
}

type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session *statex.SessionState
	Agent   *Agent
	Message string
	Rounds  int

	// Failure is a turn error raised after tools already changed the session. The
	// session is still saved so their effects are not replayed on the next turn.
	Failure error
}

func validateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}

// loadOrCreateState starts unknown sessions on the default persona.
func loadOrCreateState(ctx context.Context, in *GraphState, store statex.Store, agents map[string]*Agent, defaultPersona string) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := store.Load(ctx, in.SessionID)
	if err != nil {
		if !errors.Is(err, statex.ErrStateNotFound) {
			return nil, err
		}
		st = statex.NewSessionState(in.SessionID, defaultPersona, in.Now)
	}

	agent, ok := agents[st.Persona]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownPersona, st.Persona)
	}
	in.Session = st
	in.Agent = agent
	return in, nil
}

// runModel sends the transcript to the persona's model and executes requested tools in
// call order until the model answers without tool calls.
func runModel(ctx context.Context, in *GraphState, historyLimit int) (*GraphState, error) {
	if in == nil || in.Session == nil || in.Agent == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	agent := in.Agent

	chatModel := agent.Model
	if infos := agent.Tools.Infos(); len(infos) > 0 {
		bound, err := chatModel.WithTools(infos)
		if err != nil {
			return nil, fmt.Errorf("%w: bind tools for persona=%s: %v", contractx.ErrModelInvoke, agent.Persona.Name, err)
		}
		chatModel = bound
	}

	user := schema.UserMessage(in.Text)
	history := in.Session.Transcript
	msgs := make([]*schema.Message, 0, len(history)+2)
	msgs = append(msgs, schema.SystemMessage(agent.Persona.Instructions))
	msgs = append(msgs, history...)
	msgs = append(msgs, user)
	turn := []*schema.Message{user}
	// completed marks the end of the last tool round whose results are all in turn.
	completed := len(turn)

	fail := func(err error) (*GraphState, error) {
		if in.Rounds == 0 {
			return nil, err
		}
		in.Session.AppendMessages(turn[:completed]...)
		in.Session.TrimTranscript(historyLimit)
		in.Failure = err
		return in, nil
	}

	for round := 0; ; round++ {
		resp, err := chatModel.Generate(ctx, msgs)
		if err != nil {
			return fail(fmt.Errorf("%w: persona=%s: %v", contractx.ErrModelInvoke, agent.Persona.Name, err))
		}
		if resp == nil {
			return fail(fmt.Errorf("%w: empty model response", contractx.ErrSchemaViolation))
		}
		msgs = append(msgs, resp)
		turn = append(turn, resp)

		if len(resp.ToolCalls) == 0 {
			in.Message = resp.Content
			break
		}
		if round >= MaxToolRounds {
			return fail(fmt.Errorf("%w: persona=%s rounds=%d", contractx.ErrToolRounds, agent.Persona.Name, round))
		}

		reqs, err := toToolRequests(resp.ToolCalls)
		if err != nil {
			return fail(err)
		}
		for _, req := range reqs {
			res := agent.Tools.Execute(ctx, in.Session, req)
			msg := schema.ToolMessage(res.Output, res.CallID)
			msg.Name = res.Tool
			msgs = append(msgs, msg)
			turn = append(turn, msg)
		}
		in.Rounds = round + 1
		completed = len(turn)
	}

	in.Session.AppendMessages(turn...)
	in.Session.TrimTranscript(historyLimit)
	in.Session.Turns++
	return in, nil
}

func toToolRequests(calls []schema.ToolCall) ([]contractx.ToolRequest, error) {
	reqs := make([]contractx.ToolRequest, 0, len(calls))
	for _, call := range calls {
		tool := strings.TrimSpace(call.Function.Name)
		if tool == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}

		args := map[string]any{}
		rawArgs := strings.TrimSpace(call.Function.Arguments)
		if rawArgs != "" {
			if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, tool, err)
			}
		}

		reqs = append(reqs, contractx.ToolRequest{
			CallID: call.ID,
			Tool:   tool,
			Args:   args,
		})
	}
	return reqs, nil
}

func saveState(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Session.Touch(in.Now)
	if err := in.Session.Validate(); err != nil {
		return nil, fmt.Errorf("state validation failed: %w", err)
	}
	if err := store.Save(ctx, in.Session); err != nil {
		return nil, err
	}
	return in, nil
}

func finalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	if in.Failure != nil {
		return GraphOutput{}, in.Failure
	}

	reply := strings.TrimSpace(in.Message)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: model returned empty reply", contractx.ErrValidation)
	}
	out := GraphOutput{Reply: reply}
	if in.Session != nil {
		out.Persona = in.Session.Persona
	}
	return out, nil
}
