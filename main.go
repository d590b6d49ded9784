package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tanpawarit/Chative-Voice-Agents/agent/gateway"
	"github.com/tanpawarit/Chative-Voice-Agents/agent/runtime"
	statex "github.com/tanpawarit/Chative-Voice-Agents/agent/state"
	configx "github.com/tanpawarit/Chative-Voice-Agents/pkg/config"
	_ "github.com/tanpawarit/Chative-Voice-Agents/pkg/logger/autoload"
	metricsx "github.com/tanpawarit/Chative-Voice-Agents/pkg/metrics"
	openrouterx "github.com/tanpawarit/Chative-Voice-Agents/pkg/openrouter"
	speechx "github.com/tanpawarit/Chative-Voice-Agents/pkg/speech"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal().Err(err).Msg("voice agents stopped")
	}
}

func run(ctx context.Context) error {
	appCfg, err := configx.New[AppConfig]("VOICE")
	if err != nil {
		return err
	}
	openRouterCfg, err := configx.New[openrouterx.Config]("OPENROUTER")
	if err != nil {
		return err
	}

	metrics := metricsx.New()

	records, err := openRecords(ctx, appCfg)
	if err != nil {
		return err
	}
	defer records.Close()

	sessions, err := openSessions(ctx, appCfg)
	if err != nil {
		return err
	}

	registry, content, err := loadPersonas(appCfg.DataDir)
	if err != nil {
		return err
	}

	agents, err := buildAgents(ctx, registry, content, records, newNotifier(), *openRouterCfg, metrics)
	if err != nil {
		return err
	}

	conv, err := runtime.New(sessions, agents, runtime.Config{
		DefaultPersona: appCfg.Persona,
		Metrics:        metrics,
	})
	if err != nil {
		return err
	}

	switch appCfg.Mode {
	case ModeServe:
		return serve(ctx, appCfg.ListenAddr, gateway.NewHandler(conv, metrics))
	default:
		return chat(ctx, conv, appCfg)
	}
}

func chat(ctx context.Context, conv *runtime.Conversation, appCfg *AppConfig) error {
	repl := &runtime.REPL{
		Conversation: conv,
		SessionID:    appCfg.SessionID,
		Persona:      appCfg.Persona,
	}

	speechCfg, err := configx.New[speechx.Config]("SPEECH")
	if err != nil {
		return err
	}
	if speechCfg.Enabled() {
		synth, err := speechx.New(*speechCfg)
		if err != nil {
			return err
		}
		repl.Speaker = synth
	}

	return repl.Run(ctx, os.Stdin, os.Stdout)
}

func serve(ctx context.Context, addr string, h *gateway.Handler) error {
	server := gateway.NewServer(h)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("gateway listening")
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("gateway: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown gateway: %w", err)
	}
	log.Info().Msg("gateway stopped")
	return nil
}

func openSessions(ctx context.Context, appCfg *AppConfig) (statex.Store, error) {
	if appCfg.SessionBackend != SessionRedis {
		return statex.NewMemoryStore(), nil
	}
	redisCfg, err := configx.New[statex.RedisConfig]("REDIS")
	if err != nil {
		return nil, err
	}
	store, err := statex.NewRedisStore(redisCfg.Client(), redisCfg.Options()...)
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("redis session store: %w", err)
	}
	return store, nil
}
