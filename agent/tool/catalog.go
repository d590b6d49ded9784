package tool

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/catalog"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/commerce"
	contractx "github.com/tanpawarit/Chative-Voice-Agents/agent/contract"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/fraud"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/game"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/improv"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/lead"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/record"
	statex "github.com/tanpawarit/Chative-Voice-Agents/agent/state"
	logx "github.com/tanpawarit/Chative-Voice-Agents/pkg/logger"
	metricsx "github.com/tanpawarit/Chative-Voice-Agents/pkg/metrics"
)

// Tool sets. A persona binds exactly one.
const (
	SetEcommerce  = "ecommerce"
	SetGrocery    = "grocery"
	SetFraud      = "fraud"
	SetGameMaster = "gamemaster"
	SetImprov     = "improv"
	SetSDR        = "sdr"
)

// apology is what the model hears when a store or network call failed underneath a tool.
const apology = "Sorry, I couldn't complete that just now because of a system problem. Please try again in a moment."

// Handler runs one tool. Domain outcomes, including every refusal, are phrased in the
// returned text; a non-nil error means infrastructure failed and is never shown verbatim.
type Handler func(ctx context.Context, env *Env, st *statex.SessionState, args Args) (string, error)

type Tool struct {
	Info *schema.ToolInfo
	Run  Handler
}

func describe(name, desc string, params map[string]*schema.ParameterInfo) *schema.ToolInfo {
	if params == nil {
		params = map[string]*schema.ParameterInfo{}
	}
	return &schema.ToolInfo{
		Name:        name,
		Desc:        desc,
		ParamsOneOf: schema.NewParamsOneOfByParams(params),
	}
}

// ForSet returns a fresh copy of the named tool set in declaration order.
func ForSet(name string) ([]Tool, bool) {
	var tools []Tool
	switch name {
	case SetEcommerce:
		tools = ecommerceTools()
	case SetGrocery:
		tools = groceryTools()
	case SetFraud:
		tools = fraudTools()
	case SetGameMaster:
		tools = gameMasterTools()
	case SetImprov:
		tools = improvTools()
	case SetSDR:
		tools = sdrTools()
	default:
		return nil, false
	}
	return tools, true
}

// Env is everything a tool may touch besides the session: content loaded at startup,
// record stores, and injectable randomness and time.
type Env struct {
	Catalog *catalog.Catalog
	FAQ     catalog.FAQ
	Show    catalog.Show

	Orders        record.Store[commerce.Order]
	GroceryOrders record.Store[commerce.GroceryOrder]
	Cases         record.Store[fraud.Case]
	Leads         record.Store[lead.Lead]
	Notifier      record.Notifier

	Rand    improv.Rand
	Roller  game.Roller
	Now     func() time.Time
	Metrics *metricsx.Recorder
}

// withDefaults fills what the caller left out so every tool works in memory.
func (e Env) withDefaults() *Env {
	if e.Catalog == nil {
		e.Catalog = catalog.Empty()
	}
	if e.Orders == nil {
		e.Orders = record.NewMemoryStore[commerce.Order]()
	}
	if e.GroceryOrders == nil {
		e.GroceryOrders = record.NewMemoryStore[commerce.GroceryOrder]()
	}
	if e.Cases == nil {
		e.Cases = record.NewMemoryStore[fraud.Case]()
	}
	if e.Leads == nil {
		e.Leads = record.NewMemoryStore[lead.Lead]()
	}
	if e.Notifier == nil {
		e.Notifier = record.NoopNotifier{}
	}
	if e.Rand == nil {
		e.Rand = globalRand{}
	}
	if e.Roller == nil {
		e.Roller = game.RandomRoller(nil)
	}
	if e.Now == nil {
		e.Now = time.Now
	}
	return &e
}

// globalRand draws from the process-wide source, which is safe across sessions.
type globalRand struct{}

func (globalRand) IntN(n int) int   { return rand.IntN(n) }
func (globalRand) Float64() float64 { return rand.Float64() }

// notify hands a terminal record to the notifier. Failures are only logged.
func (e *Env) notify(ctx context.Context, st *statex.SessionState, kind, id string, payload any) {
	e.Metrics.ObserveRecord(kind)
	ev := record.Event{
		Kind:     kind,
		RecordID: id,
		Persona:  st.Persona,
		At:       e.Now().UTC(),
		Payload:  payload,
	}
	if err := e.Notifier.Notify(ctx, ev); err != nil {
		log := logx.For("tool")
		log.Warn().Err(err).
			Str("session_id", st.SessionID).
			Str("kind", kind).
			Str("record_id", id).
			Msg("record notification failed")
	}
}

// Executor dispatches one persona's tool calls.
type Executor struct {
	persona string
	env     *Env
	tools   map[string]Tool
	infos   []*schema.ToolInfo
	log     zerolog.Logger
}

var _ contractx.ToolGateway = (*Executor)(nil)

func NewExecutor(persona string, env Env, tools []Tool) *Executor {
	e := &Executor{
		persona: persona,
		env:     env.withDefaults(),
		tools:   make(map[string]Tool, len(tools)),
		infos:   make([]*schema.ToolInfo, 0, len(tools)),
		log:     logx.For("tool").With().Str("persona", persona).Logger(),
	}
	for _, t := range tools {
		if t.Info == nil || strings.TrimSpace(t.Info.Name) == "" || t.Run == nil {
			continue
		}
		if _, dup := e.tools[t.Info.Name]; dup {
			continue
		}
		e.tools[t.Info.Name] = t
		e.infos = append(e.infos, t.Info)
	}
	return e
}

func (e *Executor) Infos() []*schema.ToolInfo {
	return append([]*schema.ToolInfo(nil), e.infos...)
}

// Execute always answers with text. Unknown tools and infrastructure failures become
// messages the model can relay; the conversation keeps going either way.
func (e *Executor) Execute(ctx context.Context, st *statex.SessionState, req contractx.ToolRequest) contractx.ToolResult {
	res := contractx.ToolResult{CallID: req.CallID, Tool: req.Tool}
	started := time.Now()

	t, ok := e.tools[req.Tool]
	if !ok {
		e.env.Metrics.ObserveTool(e.persona, req.Tool, "unknown_tool", time.Since(started))
		e.log.Warn().Str("tool", req.Tool).Msg("model called an unknown tool")
		res.Output = fmt.Sprintf("tool=%s is unavailable for persona=%s", req.Tool, e.persona)
		return res
	}
	if st == nil {
		res.Output = apology
		return res
	}

	out, err := t.Run(ctx, e.env, st, Args(req.Args))
	took := time.Since(started)
	if err != nil {
		e.env.Metrics.ObserveTool(e.persona, req.Tool, "failed", took)
		e.log.Error().Err(err).
			Str("session_id", st.SessionID).
			Str("tool", req.Tool).
			Dur("took", took).
			Msg("tool failed")
		res.Output = apology
		return res
	}

	e.env.Metrics.ObserveTool(e.persona, req.Tool, "ok", took)
	e.log.Debug().
		Str("session_id", st.SessionID).
		Str("tool", req.Tool).
		Dur("took", took).
		Msg("tool executed")
	res.Output = out
	return res
}
