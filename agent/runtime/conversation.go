// Package runtime drives text-mode conversations: one eino graph per user turn over a
// persona's model and tools.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/Chative-Voice-Agents/agent/contract"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/persona"
	statex "github.com/tanpawarit/Chative-Voice-Agents/agent/state"
	logx "github.com/tanpawarit/Chative-Voice-Agents/pkg/logger"
	metricsx "github.com/tanpawarit/Chative-Voice-Agents/pkg/metrics"
)

// Agent is a persona ready to talk: its model and the tools bound to it.
type Agent struct {
	Persona persona.Persona
	Model   einomodel.ToolCallingChatModel
	Tools   contractx.ToolGateway
}

type Config struct {
	// DefaultPersona is used when a message arrives for a session nobody started.
	DefaultPersona string
	// HistoryMessages caps the stored transcript. Zero means DefaultHistoryMessages.
	HistoryMessages int
	Metrics         *metricsx.Recorder
}

type Conversation struct {
	store  statex.Store
	agents map[string]*Agent
	order  []string

	defaultPersona  string
	historyMessages int
	metrics         *metricsx.Recorder
	log             zerolog.Logger

	graphRunner compose.Runnable[GraphInput, GraphOutput]

	// One turn at a time per session; load and save must not interleave.
	mu    sync.Mutex
	locks map[string]*sessionLock

	now func() time.Time
}

func New(store statex.Store, agents []Agent, cfg Config) (*Conversation, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if len(agents) == 0 {
		return nil, errors.New("at least one agent is required")
	}

	c := &Conversation{
		store:   store,
		agents:  make(map[string]*Agent, len(agents)),
		metrics: cfg.Metrics,
		log:     logx.For("runtime"),
		locks:   map[string]*sessionLock{},
		now:     time.Now,
	}
	c.historyMessages = cfg.HistoryMessages
	if c.historyMessages <= 0 {
		c.historyMessages = DefaultHistoryMessages
	}
	for i := range agents {
		a := agents[i]
		name := a.Persona.Name
		if strings.TrimSpace(name) == "" {
			return nil, errors.New("agent persona name is required")
		}
		if a.Model == nil {
			return nil, fmt.Errorf("agent %s: chat model is required", name)
		}
		if a.Tools == nil {
			return nil, fmt.Errorf("agent %s: tool gateway is required", name)
		}
		if _, dup := c.agents[name]; dup {
			return nil, fmt.Errorf("agent %s registered twice", name)
		}
		c.agents[name] = &a
		c.order = append(c.order, name)
	}

	c.defaultPersona = strings.ToLower(strings.TrimSpace(cfg.DefaultPersona))
	if c.defaultPersona == "" {
		c.defaultPersona = c.order[0]
	}
	if _, ok := c.agents[c.defaultPersona]; !ok {
		return nil, fmt.Errorf("%w: default %s", contractx.ErrUnknownPersona, c.defaultPersona)
	}

	graphRunner, err := c.compileHandleMessageGraph(context.Background())
	if err != nil {
		return nil, err
	}
	c.graphRunner = graphRunner

	return c, nil
}

// Personas lists the agents in registration order.
func (c *Conversation) Personas() []persona.Persona {
	out := make([]persona.Persona, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.agents[name].Persona)
	}
	return out
}

// Start opens a fresh session for personaName, replacing any state under sessionID.
// An empty sessionID gets a generated one.
func (c *Conversation) Start(ctx context.Context, sessionID, personaName string) (*statex.SessionState, error) {
	name := strings.ToLower(strings.TrimSpace(personaName))
	if name == "" {
		name = c.defaultPersona
	}
	if _, ok := c.agents[name]; !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrUnknownPersona, personaName)
	}

	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	unlock := c.lock(sessionID)
	defer unlock()

	st := statex.NewSessionState(sessionID, name, c.now())
	if err := c.store.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("save new session: %w", err)
	}
	c.log.Info().Str("session_id", sessionID).Str("persona", name).Msg("session started")
	return st, nil
}

func (c *Conversation) HandleMessage(ctx context.Context, sessionID string, text string) (string, error) {
	unlock := c.lock(strings.TrimSpace(sessionID))
	defer unlock()

	out, err := c.graphRunner.Invoke(ctx, GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		c.metrics.ObserveTurn("unknown", "error")
		c.log.Error().Err(err).Str("session_id", sessionID).Msg("turn failed")
		return "", err
	}
	c.metrics.ObserveTurn(out.Persona, "ok")
	return out.Reply, nil
}

// End discards the session state. Persisted records are not touched.
func (c *Conversation) End(ctx context.Context, sessionID string) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return ErrInvalidSession
	}

	unlock := c.lock(sessionID)
	defer unlock()

	if err := c.store.Delete(ctx, sessionID); err != nil {
		return err
	}
	c.log.Info().Str("session_id", sessionID).Msg("session ended")
	return nil
}

// sessionLock is released from the map once nobody holds or waits on it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (c *Conversation) lock(sessionID string) func() {
	c.mu.Lock()
	l, ok := c.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		c.locks[sessionID] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.locks, sessionID)
		}
		c.mu.Unlock()
	}
}
