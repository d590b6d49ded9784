package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/catalog"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/commerce"
	contractx "github.com/tanpawarit/Chative-Voice-Agents/agent/contract"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/fraud"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/lead"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/persona"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/prompt"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/record"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/runtime"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/tool"
	configx "github.com/tanpawarit/Chative-Voice-Agents/pkg/config"
	metricsx "github.com/tanpawarit/Chative-Voice-Agents/pkg/metrics"
	openrouterx "github.com/tanpawarit/Chative-Voice-Agents/pkg/openrouter"
	qstashx "github.com/tanpawarit/Chative-Voice-Agents/pkg/qstash"
)

const (
	ModeChat  = "chat"
	ModeServe = "serve"

	RecordJSON     = "json"
	RecordPostgres = "postgres"

	SessionMemory = "memory"
	SessionRedis  = "redis"
)

// AppConfig is read with prefix VOICE.
type AppConfig struct {
	Mode           string `envconfig:"MODE" default:"chat"`
	Persona        string `envconfig:"PERSONA" default:"ecommerce"`
	DataDir        string `split_words:"true" default:"data"`
	ListenAddr     string `split_words:"true" default:":8080"`
	RecordBackend  string `split_words:"true" default:"json"`
	SessionBackend string `split_words:"true" default:"memory"`
	SessionID      string `split_words:"true"`
}

func (c *AppConfig) Validate() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	c.Persona = strings.ToLower(strings.TrimSpace(c.Persona))
	c.RecordBackend = strings.ToLower(strings.TrimSpace(c.RecordBackend))
	c.SessionBackend = strings.ToLower(strings.TrimSpace(c.SessionBackend))

	if c.Mode != ModeChat && c.Mode != ModeServe {
		return fmt.Errorf("%w: mode must be chat or serve, got %q", contractx.ErrValidation, c.Mode)
	}
	if c.RecordBackend != RecordJSON && c.RecordBackend != RecordPostgres {
		return fmt.Errorf("%w: record backend must be json or postgres, got %q", contractx.ErrValidation, c.RecordBackend)
	}
	if c.SessionBackend != SessionMemory && c.SessionBackend != SessionRedis {
		return fmt.Errorf("%w: session backend must be memory or redis, got %q", contractx.ErrValidation, c.SessionBackend)
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("%w: data dir is required", contractx.ErrValidation)
	}
	if c.Mode == ModeServe && strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("%w: listen addr is required to serve", contractx.ErrValidation)
	}
	return nil
}

// Records are the persisted stores every persona writes to.
type Records struct {
	EcommerceOrders record.Store[commerce.Order]
	RetailOrders    record.Store[commerce.Order]
	GroceryOrders   record.Store[commerce.GroceryOrder]
	Cases           record.Store[fraud.Case]
	Leads           record.Store[lead.Lead]

	db *bun.DB
}

func (r *Records) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func openRecords(ctx context.Context, appCfg *AppConfig) (*Records, error) {
	if appCfg.RecordBackend != RecordPostgres {
		return jsonRecords(appCfg.DataDir), nil
	}

	pgCfg, err := configx.New[record.PostgresConfig]("POSTGRES")
	if err != nil {
		return nil, err
	}
	db := record.OpenPostgres(*pgCfg)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres record store: %w", err)
	}
	if err := record.CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	records := bunRecords(db)
	if err := seedCases(ctx, records, appCfg.DataDir); err != nil {
		db.Close()
		return nil, err
	}
	return records, nil
}

// seedCases loads the shipped fraud case database into an empty Cases store. Cases are
// an input document as well as an output one, so a fresh database would otherwise
// have nothing to look up.
func seedCases(ctx context.Context, records *Records, dir string) error {
	src := record.NewJSONFileStore[fraud.Case](filepath.Join(dir, "fraud_cases.json"), record.WithEnvelope("cases"))
	n, err := record.Seed[fraud.Case](ctx, records.Cases, src)
	if err != nil {
		return fmt.Errorf("seed fraud cases: %w", err)
	}
	if n > 0 {
		log.Info().Int("cases", n).Msg("fraud cases seeded")
	}
	return nil
}

// jsonRecords lays the stores out the way the data directory is shipped.
func jsonRecords(dir string) *Records {
	return &Records{
		EcommerceOrders: record.NewJSONFileStore[commerce.Order](filepath.Join(dir, "ecommerce_orders.json")),
		RetailOrders:    record.NewJSONFileStore[commerce.Order](filepath.Join(dir, "retail_orders.json")),
		GroceryOrders:   record.NewJSONFileStore[commerce.GroceryOrder](filepath.Join(dir, "orders.json")),
		Cases:           record.NewJSONFileStore[fraud.Case](filepath.Join(dir, "fraud_cases.json"), record.WithEnvelope("cases")),
		Leads:           lead.NewDirStore(filepath.Join(dir, "leads"), nil),
	}
}

func bunRecords(db *bun.DB) *Records {
	return &Records{
		EcommerceOrders: record.NewBunStore[commerce.Order](db, "ecommerce_orders"),
		RetailOrders:    record.NewBunStore[commerce.Order](db, "retail_orders"),
		GroceryOrders:   record.NewBunStore[commerce.GroceryOrder](db, "grocery_orders"),
		Cases:           record.NewBunStore[fraud.Case](db, "fraud_cases"),
		Leads:           record.NewBunStore[lead.Lead](db, "leads"),
		db:              db,
	}
}

// loadPersonas reads every content document under dir. Missing files leave that
// persona with empty content; malformed ones are logged and skipped.
func loadPersonas(dir string) (*persona.Registry, persona.Content, error) {
	warn := func(err error) {
		if err != nil {
			log.Warn().Err(err).Str("data_dir", dir).Msg("content document ignored")
		}
	}

	var content persona.Content
	var err error

	content.Ecommerce, err = catalog.Load(filepath.Join(dir, "product_catalog.json"))
	warn(err)
	content.Retail, err = catalog.Load(filepath.Join(dir, "retail_catalog.json"))
	warn(err)
	content.Grocery, err = catalog.Load(filepath.Join(dir, "grocery_catalog.json"))
	warn(err)
	content.FAQ, err = catalog.LoadFAQ(filepath.Join(dir, "razorpay_faq.json"))
	warn(err)
	content.Show, err = catalog.LoadShow(filepath.Join(dir, "improv_scenarios.json"))
	warn(err)
	content.Concepts, err = catalog.LoadConcepts(filepath.Join(dir, "day4_tutor_content.json"))
	warn(err)

	registry, err := persona.NewRegistry(prompt.LoadPromptSet(), content)
	if err != nil {
		return nil, persona.Content{}, err
	}
	return registry, content, nil
}

// newNotifier publishes record events to QStash when it is configured.
func newNotifier() record.Notifier {
	qstashCfg, err := configx.Decode[qstashx.Config]("QSTASH")
	if err != nil || !qstashCfg.Enabled() {
		return record.NoopNotifier{}
	}
	client, err := qstashx.NewClient(*qstashCfg)
	if err != nil {
		if !errors.Is(err, qstashx.ErrDisabled) {
			log.Warn().Err(err).Msg("qstash notifications disabled")
		}
		return record.NoopNotifier{}
	}
	return record.NewPublishNotifier(client)
}

func buildAgents(
	ctx context.Context,
	registry *persona.Registry,
	content persona.Content,
	records *Records,
	notifier record.Notifier,
	llmCfg openrouterx.Config,
	metrics *metricsx.Recorder,
) ([]runtime.Agent, error) {
	agents := make([]runtime.Agent, 0, len(registry.Names()))
	for _, p := range registry.All() {
		tools, err := p.Tools()
		if err != nil {
			return nil, err
		}

		env := tool.Env{
			Catalog:       content.CatalogFor(p.Name),
			FAQ:           content.FAQ,
			Show:          content.Show,
			Orders:        records.EcommerceOrders,
			GroceryOrders: records.GroceryOrders,
			Cases:         records.Cases,
			Leads:         records.Leads,
			Notifier:      notifier,
			Metrics:       metrics,
		}
		if p.Name == persona.Retail {
			env.Orders = records.RetailOrders
		}

		modelCfg := llmCfg.Override(p.Model, p.Temperature)
		chatModel, err := modelCfg.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("persona %s: %w", p.Name, err)
		}

		agents = append(agents, runtime.Agent{
			Persona: p,
			Model:   chatModel,
			Tools:   tool.NewExecutor(p.Name, env, tools),
		})
	}
	return agents, nil
}
