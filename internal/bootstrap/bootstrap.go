package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"lenai/internal/config"
	"lenai/internal/contextmgr"
	"lenai/internal/conversation"
	"lenai/internal/defaults"
	"lenai/internal/i18n"
	"lenai/internal/logging"
	"lenai/internal/orchestrator"
	"lenai/internal/provider"
	"lenai/internal/storage"
)

// Options 构建选项
// Options tweaks Build.
type Options struct {
	// Ephemeral keeps everything in memory; nothing touches the base dir.
	Ephemeral bool
}

// BuildResult 与 UI 无关的构建结果，供 main 构造 TUI 或 REPL
// BuildResult is UI-agnostic; main uses it to construct the TUI or the REPL.
type BuildResult struct {
	Orch         *orchestrator.Orchestrator
	Store        storage.Store
	State        *storage.State
	Gateway      *provider.Gateway
	Images       *provider.ImagePipeline
	Tokenizer    *contextmgr.Tokenizer
	I18n         *i18n.I18n
	Logger       *slog.Logger
	SystemPrompt string
	DBPath       string

	logCloser io.Closer
}

// Close 关闭存储与日志文件
// Close releases the store and the log file.
func (r *BuildResult) Close() error {
	var errs []error
	if r.Store != nil {
		errs = append(errs, r.Store.Close())
	}
	if r.logCloser != nil {
		errs = append(errs, r.logCloser.Close())
	}
	return errors.Join(errs...)
}

// Build 按文档顺序初始化并返回 BuildResult；调用方负责 defer result.Close()
// Build initializes in doc order and returns BuildResult; caller must defer result.Close()
func Build(cfg config.Config, opts Options) (*BuildResult, error) {
	logger, logCloser := initLogger(cfg, opts)
	tr := i18n.New(cfg.UI.Locale)

	store, dbPath, err := openStore(cfg, opts)
	if err != nil {
		_ = logCloser.Close()
		return nil, err
	}
	logger.Info("storage ready", "path", dbPath, "ephemeral", opts.Ephemeral)

	state := storage.NewState(store, logger)
	state.DefaultTitle = tr.T("chat.default_title")
	repo := conversation.Load(state)

	classifier, err := buildClassifier(cfg)
	if err != nil {
		_ = store.Close()
		_ = logCloser.Close()
		return nil, err
	}

	systemPrompt := strings.TrimSpace(cfg.SystemPrompt)
	if systemPrompt == "" {
		systemPrompt = defaults.DefaultSystemPrompt
	}
	gateway := provider.NewGateway(systemPrompt, logger, buildProviders(cfg)...)
	images := buildImagePipeline(cfg, logger)

	orch := orchestrator.New(repo, gateway, images, classifier, state, orchestrator.Options{
		I18n:           tr,
		Logger:         logger,
		EnvCredentials: cfg.EnvCredentials,
	})

	return &BuildResult{
		Orch:         orch,
		Store:        store,
		State:        state,
		Gateway:      gateway,
		Images:       images,
		Tokenizer:    contextmgr.NewTokenizerForModel(cfg.Providers.OpenAI.Model),
		I18n:         tr,
		Logger:       logger,
		SystemPrompt: systemPrompt,
		DBPath:       dbPath,
		logCloser:    logCloser,
	}, nil
}

func initLogger(cfg config.Config, opts Options) (*slog.Logger, io.Closer) {
	level := logging.ParseLevel(cfg.Storage.LogLevel)
	if opts.Ephemeral {
		return logging.Discard(), nopCloser{}
	}
	logger, closer, err := logging.New(cfg.Storage.BaseDir, level)
	if err != nil {
		logger.Warn("file logging unavailable", "err", err)
	}
	return logger, closer
}

func openStore(cfg config.Config, opts Options) (storage.Store, string, error) {
	if opts.Ephemeral {
		return storage.NewMemoryStore(), ":memory:", nil
	}
	dbPath := cfg.DBPath()
	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, "", fmt.Errorf("init storage: %w", err)
	}
	return store, dbPath, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
