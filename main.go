package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/checkpoint"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/graph"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/llm"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/model"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/record"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/session"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/tools"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/usage"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/core"
	"github.com/eVolpe-AI/AI-HR-Agent/internal/server"
	logx "github.com/eVolpe-AI/AI-HR-Agent/pkg/logger"
	pkgredis "github.com/eVolpe-AI/AI-HR-Agent/pkg/redis"
)

// AppConfig defines all configurable parameters of the agent, sourced
// from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL"`

	// Storage selects the persistence backend for checkpoints and usage
	// records: redis or memory.
	Storage string `envconfig:"STORAGE_BACKEND" default:"redis"`
	Redis   pkgredis.Config

	// MintURL is the HCM backend address used to build record links.
	MintURL string `envconfig:"MINT_API_URL"`

	LLM        model.LLMConfig
	Gate       model.ToolGateConfig
	History    model.HistoryEnvConfig
	UsageLimit model.UsageLimitConfig
	Server     server.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	env := core.ParseEnvironment(cfg.Environment)
	logx.Init(logx.LoggerOpts{Environment: env, Level: cfg.LogLevel})

	historyCfg := cfg.History.HistoryConfig()
	if err := historyCfg.Validate(); err != nil {
		logx.Fatal().Err(err).Msg("invalid history configuration")
	}
	if !model.KnownProvider(cfg.LLM.Provider) {
		logx.Fatal().
			Str("provider", cfg.LLM.Provider).
			Strs("known", model.Providers()).
			Msg("unknown LLM provider")
	}

	var checkpoints checkpoint.Store
	var usageStore usage.Store
	switch cfg.Storage {
	case "memory":
		checkpoints = checkpoint.NewMemoryStore()
		usageStore = usage.NewMemoryStore()
	default:
		rdb, err := cfg.Redis.New()
		if err != nil {
			logx.Fatal().Err(err).Msg("failed to initialise Redis client")
		}
		defer rdb.Close()
		checkpoints = checkpoint.NewRedisStore(rdb, 0)
		usageStore = usage.NewRedisStore(rdb)
	}

	records := record.NewMemorySystem(cfg.MintURL)
	registry := tools.NewDefaultRegistry()
	logx.Info().Strs("tools", registry.Names()).Msg("tool registry initialised")

	factory := llm.NewFactory(cfg.LLM, registry.ToolInfos())
	client := llm.NewClient(factory)

	engine := graph.NewEngine(client, registry, records, usageStore)
	guard := usage.NewGuard(usageStore)

	deps := session.Deps{
		Engine:      engine,
		Checkpoints: checkpoints,
		Guard:       guard,
		Registry:    registry,
	}
	sessionCfg := session.Config{
		LLM:        cfg.LLM,
		Gate:       cfg.Gate,
		History:    historyCfg,
		UsageLimit: cfg.UsageLimit.Limit(),
	}

	srv := server.New(cfg.Server, func(userID, chatID, mintUserID string) *session.Session {
		return session.New(deps, sessionCfg, userID, chatID, mintUserID)
	})

	if err := srv.ListenAndServe(ctx); err != nil {
		logx.Fatal().Err(err).Msg("server stopped")
	}
}
