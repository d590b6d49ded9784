// Package persona binds instructions, a tool set and voice settings into one addressable agent.
package persona

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/catalog"
	contractx "github.com/tanpawarit/Chative-Voice-Agents/agent/contract"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/prompt"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/tool"
)

const (
	Health     = "health"
	Retail     = "retail"
	Fraud      = "fraud"
	Ecommerce  = "ecommerce"
	Grocery    = "grocery"
	Improv     = "improv"
	GameMaster = "gamemaster"
	SDR        = "sdr"
	Tutor      = "tutor"
)

const defaultSTT = "deepgram/nova-3"

// Voice is what the external voice pipeline needs to speak as the persona.
// SpeechVoice is used by the local text REPL when it synthesises replies.
type Voice struct {
	STTModel    string `json:"stt_model"`
	STTLanguage string `json:"stt_language"`
	TTSVoice    string `json:"tts_voice"`
	TTSStyle    string `json:"tts_style,omitempty"`
	SpeechVoice string `json:"speech_voice"`
}

type Persona struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	Instructions string `json:"-"`
	ToolSet      string `json:"tool_set,omitempty"`
	Voice        Voice  `json:"voice"`
	Model        string `json:"model,omitempty"`
	// Temperature below zero keeps the configured model temperature.
	Temperature float32 `json:"temperature"`
}

// Tools returns a fresh copy of the persona's tools. Tool-less personas get nil.
func (p Persona) Tools() ([]tool.Tool, error) {
	if p.ToolSet == "" {
		return nil, nil
	}
	tools, ok := tool.ForSet(p.ToolSet)
	if !ok {
		return nil, fmt.Errorf("persona %s: unknown tool set %q", p.Name, p.ToolSet)
	}
	return tools, nil
}

// Content is the startup data folded into instructions and handed to tools.
type Content struct {
	Ecommerce *catalog.Catalog
	Retail    *catalog.Catalog
	Grocery   *catalog.Catalog
	FAQ       catalog.FAQ
	Show      catalog.Show
	Concepts  []catalog.Concept
}

// CatalogFor returns the product catalog a commerce persona sells from.
func (c Content) CatalogFor(name string) *catalog.Catalog {
	var cat *catalog.Catalog
	switch name {
	case Ecommerce:
		cat = c.Ecommerce
	case Retail:
		cat = c.Retail
	case Grocery:
		cat = c.Grocery
	}
	if cat == nil {
		return catalog.Empty()
	}
	return cat
}

type definition struct {
	title       string
	toolSet     string
	voice       Voice
	temperature float32
	context     func(Content) string
}

var definitions = map[string]definition{
	Health: {
		title: "Apollo health assistant",
		voice: Voice{TTSVoice: "en-US-natalie", TTSStyle: "Conversational", SpeechVoice: "nova"},
		// First-aid advice stays conservative.
		temperature: 0.4,
	},
	Retail: {
		title:       "Retail order-taker",
		toolSet:     tool.SetEcommerce,
		voice:       Voice{TTSVoice: "en-US-natalie", SpeechVoice: "alloy"},
		temperature: -1,
		context:     func(c Content) string { return storeContext(c.CatalogFor(Retail)) },
	},
	Fraud: {
		title:       "SecureBank fraud desk",
		toolSet:     tool.SetFraud,
		voice:       Voice{STTLanguage: "en-IN", TTSVoice: "en-IN-arjun", SpeechVoice: "onyx"},
		temperature: 0.3,
	},
	Ecommerce: {
		title:       "TechStyle shopping assistant",
		toolSet:     tool.SetEcommerce,
		voice:       Voice{TTSVoice: "en-US-natalie", SpeechVoice: "shimmer"},
		temperature: -1,
		context:     func(c Content) string { return storeContext(c.CatalogFor(Ecommerce)) },
	},
	Grocery: {
		title:       "FreshMart grocery assistant",
		toolSet:     tool.SetGrocery,
		voice:       Voice{STTLanguage: "en-IN", TTSVoice: "en-IN-aarav", SpeechVoice: "echo"},
		temperature: -1,
		context:     func(c Content) string { return groceryContext(c.CatalogFor(Grocery)) },
	},
	Improv: {
		title:       "Improv Battle host",
		toolSet:     tool.SetImprov,
		voice:       Voice{TTSVoice: "en-US-terrell", SpeechVoice: "fable"},
		temperature: 0.9,
		context:     func(c Content) string { return showContext(c.Show) },
	},
	GameMaster: {
		title:       "Witcher game master",
		toolSet:     tool.SetGameMaster,
		voice:       Voice{TTSVoice: "en-UK-hazel", SpeechVoice: "fable"},
		temperature: 0.8,
	},
	SDR: {
		title:       "Sales development rep",
		toolSet:     tool.SetSDR,
		voice:       Voice{STTLanguage: "en-IN", TTSVoice: "en-IN-natalie", SpeechVoice: "nova"},
		temperature: -1,
		context:     func(c Content) string { return faqContext(c.FAQ) },
	},
	Tutor: {
		title:       "Active recall tutor",
		voice:       Voice{TTSVoice: "en-US-matthew", SpeechVoice: "alloy"},
		temperature: -1,
		context:     func(c Content) string { return conceptContext(c.Concepts) },
	},
}

// Registry holds every built persona.
type Registry struct {
	personas map[string]Persona
}

// NewRegistry builds all personas. Every persona must have embedded instructions.
func NewRegistry(prompts prompt.PromptSet, content Content) (*Registry, error) {
	r := &Registry{personas: make(map[string]Persona, len(definitions))}
	for name, def := range definitions {
		base, err := prompts.Get(name)
		if err != nil {
			return nil, fmt.Errorf("persona %s: %w", name, err)
		}
		if def.toolSet != "" {
			if _, ok := tool.ForSet(def.toolSet); !ok {
				return nil, fmt.Errorf("persona %s: unknown tool set %q", name, def.toolSet)
			}
		}

		instructions := base
		if def.context != nil {
			if extra := strings.TrimSpace(def.context(content)); extra != "" {
				instructions += "\n\n" + extra
			}
		}

		voice := def.voice
		if voice.STTModel == "" {
			voice.STTModel = defaultSTT
		}
		if voice.STTLanguage == "" {
			voice.STTLanguage = "en-US"
		}

		r.personas[name] = Persona{
			Name:         name,
			Title:        def.title,
			Instructions: instructions,
			ToolSet:      def.toolSet,
			Voice:        voice,
			Temperature:  def.temperature,
		}
	}
	return r, nil
}

func (r *Registry) Get(name string) (Persona, error) {
	p, ok := r.personas[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Persona{}, fmt.Errorf("%w: %s", contractx.ErrUnknownPersona, name)
	}
	return p, nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.personas))
	for name := range r.personas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the personas sorted by name.
func (r *Registry) All() []Persona {
	out := make([]Persona, 0, len(r.personas))
	for _, name := range r.Names() {
		out = append(out, r.personas[name])
	}
	return out
}
