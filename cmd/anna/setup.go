package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sandevgo/annabot/internal/config"
	"github.com/sandevgo/annabot/internal/core"
	"github.com/sandevgo/annabot/internal/providers/embed"
	"github.com/sandevgo/annabot/internal/providers/llm"
	"github.com/sandevgo/annabot/internal/providers/mcp"
	"github.com/sandevgo/annabot/internal/service/agent"
	"github.com/sandevgo/annabot/internal/service/chat"
	"github.com/sandevgo/annabot/internal/service/command"
	"github.com/sandevgo/annabot/internal/service/decision"
	"github.com/sandevgo/annabot/internal/service/filter"
	"github.com/sandevgo/annabot/internal/service/ingest"
	"github.com/sandevgo/annabot/internal/service/memory"
	"github.com/sandevgo/annabot/internal/service/personality"
	"github.com/sandevgo/annabot/internal/service/state"
	"github.com/sandevgo/annabot/internal/service/synthesis"
	"github.com/sandevgo/annabot/internal/service/thought"
	"github.com/sandevgo/annabot/internal/service/tools"
	"github.com/sandevgo/annabot/internal/storage/sqlite"
	"github.com/sandevgo/annabot/internal/transport/cli"
	"github.com/sandevgo/annabot/internal/transport/telegram"
	"github.com/sandevgo/annabot/pkg/log"
	"github.com/sandevgo/annabot/pkg/retry"
	"github.com/sandevgo/annabot/pkg/srv"
)

// NewServices wires the agent. stop is called when the user speaks the kill phrase.
func NewServices(ctx context.Context, stop func()) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetEnvPath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	llmCfg := config.NewLLMConfig(ctx)
	decisionCfg := config.NewDecisionConfig(ctx)
	chatCfg := config.NewChatConfig(ctx)
	controlsCfg := config.NewControlsConfig(ctx)
	memoryCfg := config.NewMemoryConfig(ctx)

	// 2. Storage
	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	// 3. AI Provider
	provider, err := llm.NewDynamicProvider(ctx, llmCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	controls := state.NewControls(state.Options{
		ChatEngagement:      controlsCfg.ChatEngagement,
		ContentFilter:       controlsCfg.ContentFilter,
		MemorySearch:        controlsCfg.MemorySearch,
		LimitProcessing:     controlsCfg.LimitProcessing,
		MinResponseInterval: controlsCfg.MinResponseInterval,
		KillPhrase:          controlsCfg.KillPhrase,
		DisabledTools:       controlsCfg.DisabledTools,
	}, provider)

	// 4. Memory
	searcher, recorder, memServices := initMemory(ctx, db, memoryCfg)
	services = append(services, memServices...)

	// 5. Persona
	persona := personality.NewFile(appCfg.GetPersonalityPath(), appCfg.AgentName, appCfg.UserName)
	if err := persona.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to load personality, using defaults")
	}
	services = append(services, personality.NewWatcher(persona, appCfg.PersonalityReload, func() {
		logger.Info().Str("agent", persona.Personality().AgentName).Msg("personality reloaded")
	}))

	// 6. Cognitive core
	session, err := initSession(ctx, appCfg, llmCfg, decisionCfg, chatCfg, memoryCfg, controls, provider, persona, searcher, recorder)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize agent session")
	}
	loop, err := agent.NewLoop(session, controls, appCfg.TickInterval, stop)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize agent loop")
	}
	loop.SetQueueSize(appCfg.QueueSize)

	// 7. Tools
	registry, toolServices, err := initTools(ctx, appCfg, controls)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tools")
	}
	services = append(services, toolServices...)
	services = append(services, tools.NewSupervisor(registry, loop.Emit))

	router := command.New(command.NewCommands(command.Deps{
		Controls: controls,
		Tools:    registry,
		Status:   session,
		Models:   modelLister(provider),
		Submit:   loop.Submit,
	}))

	services = append(services, loop)

	// 8. Transports
	transports, err := initTransports(ctx, appCfg, loop, router, persona, stop)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

func initMemory(ctx context.Context, db *sql.DB, cfg *config.MemoryConfig) (core.MemorySearcher, core.MemoryRecorder, []srv.Service) {
	if !cfg.Enabled {
		log.FromCtx(ctx).Info().Msg("memory disabled")
		return nil, nil, nil
	}

	repo := sqlite.NewMemoryRepo(db)

	base := embed.NewOllama(cfg.EmbeddingURL, cfg.EmbeddingKey, cfg.EmbeddingModel)
	query, passage := embed.NewDualEncoder(base, cfg.QueryPrefix, cfg.DocumentPrefix)

	sessionID := uuid.NewString()
	log.FromCtx(ctx).Info().
		Str("model", cfg.EmbeddingModel).
		Str("session", sessionID).
		Msg("memory enabled")

	recorder := memory.NewRecorder(repo, sessionID)
	worker := memory.NewEmbedderWorker(repo, passage, cfg.EmbedInterval)
	searcher := memory.NewSearcher(repo, query, cfg.MinSimilarity, cfg.ScanLimit)

	return searcher, recorder, []srv.Service{worker, recorder}
}

func initSession(
	ctx context.Context,
	appCfg *config.AppConfig,
	llmCfg *config.LLMConfig,
	decisionCfg *config.DecisionConfig,
	chatCfg *config.ChatConfig,
	memoryCfg *config.MemoryConfig,
	controls *state.Controls,
	provider *llm.DynamicProvider,
	persona core.PersonalityProvider,
	searcher core.MemorySearcher,
	recorder core.MemoryRecorder,
) (*agent.Session, error) {
	buffer, err := thought.NewBuffer(appCfg.BufferCapacity, nil)
	if err != nil {
		return nil, err
	}

	tracker, err := chat.NewTracker(chat.Thresholds{
		Capacity:        chatCfg.Capacity,
		QuestionMaxAge:  chatCfg.QuestionMaxAge,
		AccumulationMin: chatCfg.AccumulationMin,
		Cooldown:        chatCfg.Cooldown,
		HardCap:         chatCfg.HardCap,
	}, nil)
	if err != nil {
		return nil, err
	}

	engine, err := decision.NewEngine(decision.Thresholds{
		GreetingCooldown:            decisionCfg.GreetingCooldown,
		UserWaitMin:                 decisionCfg.UserWaitMin,
		UserWaitMax:                 decisionCfg.UserWaitMax,
		SaturationMinThoughts:       decisionCfg.SaturationMinThoughts,
		SaturationMinNonObservation: decisionCfg.SaturationMinNonObservation,
		SaturationIdle:              decisionCfg.SaturationIdle,
		FlowIdle:                    decisionCfg.FlowIdle,
		FlowMinConversational:       decisionCfg.FlowMinConversational,
		AccumulatedMinThoughts:      decisionCfg.AccumulatedMinThoughts,
		AccumulatedIdle:             decisionCfg.AccumulatedIdle,
		Commands:                    decisionCfg.Commands,
		Greetings:                   decisionCfg.Greetings,
	}, appCfg.AgentName, nil)
	if err != nil {
		return nil, err
	}
	engine.WithPersonality(persona)

	prompts := synthesis.NewPromptBuilder(synthesis.TiktokenCounter(), appCfg.PromptMaxTokens, appCfg.MaxResponseChars)
	synth := synthesis.New(provider, prompts, llmCfg.Timeout, provider.GetModel)

	regex, err := filter.NewRegex(filter.DefaultCategories())
	if err != nil {
		return nil, err
	}

	p := agent.Params{
		Buffer:        buffer,
		Tracker:       tracker,
		Engine:        engine,
		Synthesizer:   synth,
		Interpreter:   ingest.NewInterpreter(appCfg.UserName, nil),
		Controls:      controls,
		Personality:   persona,
		Filter:        regex,
		Memory:        searcher,
		Recorder:      recorder,
		MemoryK:       memoryCfg.TopK,
		MemoryTimeout: memoryCfg.SearchTimeout,
		ChatSummary:   chatCfg.SummarySize,
	}

	log.FromCtx(ctx).Info().
		Str("agent", appCfg.AgentName).
		Dur("tick", appCfg.TickInterval).
		Int("buffer", appCfg.BufferCapacity).
		Msg("agent session ready")
	return agent.NewSession(p)
}

func initTools(ctx context.Context, cfg *config.AppConfig, controls *state.Controls) (*tools.Registry, []srv.Service, error) {
	var services []srv.Service

	entries := []tools.Entry{
		{Tool: tools.NewClock(cfg.ClockInterval, nil), Capability: "tells the time and announces it periodically", Default: true},
	}
	if cfg.EnableFetch {
		entries = append(entries, tools.Entry{Tool: tools.NewFetch(), Capability: "fetches a web page as text", Default: true})
	}

	pool := mcp.NewPool()
	services = append(services, srv.NewCleanup(pool.Close))

	serverTools, err := mcp.LoadServerTools(ctx, mcp.NewFileStorage(cfg.GetMCPConfigPath()), pool, retry.NewDefaultRetrier())
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to load mcp servers")
	}
	for _, st := range serverTools {
		entries = append(entries, tools.Entry{Tool: st, Capability: st.Capability(), Default: st.EnabledByDefault()})
	}

	registry, err := tools.NewRegistry(controls, entries...)
	if err != nil {
		return nil, nil, err
	}
	return registry, services, nil
}

func modelLister(p llm.Provider) command.ModelLister {
	return func(ctx context.Context) ([]string, error) {
		models, err := p.Models(ctx)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(models))
		for _, m := range models {
			ids = append(ids, m.ID)
		}
		return ids, nil
	}
}

func initTransports(ctx context.Context, cfg *config.AppConfig, loop *agent.Loop, router core.CmdRouter, persona core.PersonalityProvider, stop func()) ([]srv.Service, error) {
	var services []srv.Service

	// Telegram Bot
	if cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, loop, router)
		if err != nil {
			return nil, err
		}
		loop.AddSpeaker(bot)
		services = append(services, bot)
	}

	// Terminal
	if cfg.EnableCLI {
		rl, err := cli.NewReadLine(loop, router, persona, cfg.GetHistoryPath())
		if err != nil {
			return nil, err
		}
		rl.OnExit(stop)
		loop.AddSpeaker(rl)
		services = append(services, rl)
	}

	if len(services) == 0 {
		log.FromCtx(ctx).Warn().Msg("no transport enabled, the agent will only hear its tools")
	}
	return services, nil
}

func initEnv(ctx context.Context, envFile string) error {
	logger := log.FromCtx(ctx)

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
