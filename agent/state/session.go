package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/commerce"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/fraud"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/game"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/improv"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/lead"
)

// SessionState is everything one conversation accumulates. Tools mutate it; the runtime
// saves it after every turn and deletes it when the conversation ends.
// Persona-specific parts stay nil for personas that do not use them.
type SessionState struct {
	// Identity
	SessionID string `json:"session_id"`
	Persona   string `json:"persona"`
	Version   int    `json:"version"`

	// Commerce
	Cart        commerce.Cart     `json:"cart"`
	LastShown   []string          `json:"last_shown,omitempty"` // product ids, for "the second one"
	Buyer       commerce.Buyer    `json:"buyer"`
	Customer    commerce.Customer `json:"customer"`
	LastOrderID string            `json:"last_order_id,omitempty"`

	// Fraud, game master, improv, lead capture
	Fraud  fraud.Session `json:"fraud"`
	Game   *game.State   `json:"game,omitempty"`
	Improv *improv.Game  `json:"improv,omitempty"`
	Lead   *lead.Lead    `json:"lead,omitempty"`

	// Conversation
	Transcript []*schema.Message `json:"transcript,omitempty"`
	Turns      int               `json:"turns"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrNilSessionState = errors.New("session state is nil")
	ErrInvalidSession  = errors.New("session id is empty")
	ErrMissingPersona  = errors.New("session persona is empty")
	ErrCorruptCart     = errors.New("cart line has quantity below 1")
)

func NewSessionState(sessionID, persona string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		Persona:   persona,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// AppendMessages adds messages to the transcript, dropping nils.
func (s *SessionState) AppendMessages(msgs ...*schema.Message) {
	for _, m := range msgs {
		if m != nil {
			s.Transcript = append(s.Transcript, m)
		}
	}
}

// TrimTranscript drops the oldest turns until at most limit messages remain. Cuts only
// happen before a user message so tool calls stay next to their results. When the
// newest turn alone is longer than limit, that turn is kept whole.
func (s *SessionState) TrimTranscript(limit int) {
	if limit <= 0 || len(s.Transcript) <= limit {
		return
	}
	cut := -1
	for i := len(s.Transcript) - limit; i < len(s.Transcript); i++ {
		if s.Transcript[i] != nil && s.Transcript[i].Role == schema.User {
			cut = i
			break
		}
	}
	if cut < 0 {
		for i := len(s.Transcript) - 1; i >= 0; i-- {
			if s.Transcript[i] != nil && s.Transcript[i].Role == schema.User {
				cut = i
				break
			}
		}
	}
	if cut <= 0 {
		return
	}
	s.Transcript = append([]*schema.Message(nil), s.Transcript[cut:]...)
}

func (s *SessionState) Validate() error {
	if s == nil {
		return ErrNilSessionState
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	if strings.TrimSpace(s.Persona) == "" {
		return ErrMissingPersona
	}
	for _, item := range s.Cart.Items {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: %s x%d", ErrCorruptCart, item.Name, item.Quantity)
		}
	}
	return nil
}
