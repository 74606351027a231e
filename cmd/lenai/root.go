package main

import (
	"fmt"
	"os"
	"path/filepath"

	"lenai/internal/bootstrap"
	"lenai/internal/config"
	"lenai/internal/repl"
	"lenai/internal/storage"
	"lenai/internal/tui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type rootOptions struct {
	configPath string
	plain      bool
	ephemeral  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "lenai",
		Short:         "LenAI chat client",
		Long:          "LenAI: multi-provider chat with image generation. Conversations are kept in a local SQLite file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, opts)
		},
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config JSON/JSONC")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Use the line-based REPL instead of the full-screen UI")
	cmd.Flags().BoolVar(&opts.ephemeral, "ephemeral", false, "Keep everything in memory for this run")

	cmd.AddCommand(
		newImportCmd(opts),
		newExportCmd(opts),
		newKeysCmd(opts),
		newInitCmd(),
	)
	return cmd
}

func runChat(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return reportErr(cmd, "load config", err)
	}
	res, err := bootstrap.Build(cfg, bootstrap.Options{Ephemeral: opts.ephemeral})
	if err != nil {
		return reportErr(cmd, "init", err)
	}
	defer res.Close()

	ctx := cmd.Context()
	if opts.plain || !term.IsTerminal(int(os.Stdout.Fd())) {
		historyPath := ""
		if !opts.ephemeral {
			historyPath = filepath.Join(cfg.Storage.BaseDir, "history")
		}
		in, err := lineInput(cmd, historyPath)
		if err != nil {
			res.Logger.Warn("readline unavailable, using plain stdin", "err", err)
		}
		defer in.Close()
		loop := repl.NewLoop(res.Orch, in, cmd.OutOrStdout(), res.Tokenizer, res.SystemPrompt)
		if err := loop.Run(ctx); err != nil {
			return reportErr(cmd, "repl", err)
		}
		return nil
	}

	if err := tui.Run(ctx, res.Orch, res.Tokenizer, res.SystemPrompt); err != nil {
		return reportErr(cmd, "tui", err)
	}
	return nil
}

// lineInput 交互终端使用 readline，管道输入逐行读取
// lineInput uses readline on an interactive terminal and a plain line reader for pipes.
func lineInput(cmd *cobra.Command, historyPath string) (repl.LineInput, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return repl.NewBasicLineInput(os.Stdin, cmd.OutOrStdout()), nil
	}
	return repl.NewLineInput(historyPath)
}

// openStore 打开配置指定的 SQLite 存储，供子命令使用
// openStore opens the configured SQLite store for the maintenance subcommands.
func openStore(opts *rootOptions) (config.Config, *storage.SQLiteStore, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	store, err := storage.NewSQLiteStore(cfg.DBPath())
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, store, nil
}

func reportErr(cmd *cobra.Command, msg string, err error) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "error: %s: %v\n", msg, err)
	return err
}
