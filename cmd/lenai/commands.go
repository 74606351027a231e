package main

import (
	"fmt"

	"lenai/internal/chat"
	"lenai/internal/config"
	"lenai/internal/orchestrator"
	"lenai/internal/storage"

	"github.com/spf13/cobra"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a browser localStorage export",
		Long:  "Import the JSON dump of the browser build's localStorage (lenai_historico, lenai_keys, lenai_tema).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore(opts)
			if err != nil {
				return reportErr(cmd, "import", err)
			}
			defer store.Close()

			report, err := storage.ImportBrowserExport(args[0], store)
			if err != nil {
				return reportErr(cmd, "import", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d conversations (keys: %t, theme: %t)\n",
				report.Conversations, report.Credentials, report.Theme)
			return nil
		},
	}
}

func newExportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Print the conversation history as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, err := openStore(opts)
			if err != nil {
				return reportErr(cmd, "export", err)
			}
			defer store.Close()

			if err := storage.ExportHistory(store, cmd.OutOrStdout()); err != nil {
				return reportErr(cmd, "export", err)
			}
			return nil
		},
	}
}

func newKeysCmd(opts *rootOptions) *cobra.Command {
	keys := &cobra.Command{
		Use:   "keys",
		Short: "Show or set provider API keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, err := openStore(opts)
			if err != nil {
				return reportErr(cmd, "keys", err)
			}
			defer store.Close()

			stored := storage.NewState(store, nil).LoadCredentials()
			effective := cfg.SeedCredentials(stored)
			out := cmd.OutOrStdout()
			for _, slot := range chat.Slots {
				source := ""
				if stored.Get(slot) == "" && effective.Get(slot) != "" {
					source = " (env)"
				}
				fmt.Fprintf(out, "%-9s %-7s %s%s\n", slot, orchestrator.SlotLabel(slot), chat.Masked(effective.Get(slot)), source)
			}
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <openai|gemini|claude> <token>",
		Short: "Store a provider key (\"-\" clears it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, err := chat.ParseSlot(args[0])
			if err != nil {
				return reportErr(cmd, "keys set", err)
			}
			_, store, err := openStore(opts)
			if err != nil {
				return reportErr(cmd, "keys set", err)
			}
			defer store.Close()

			token := args[1]
			if token == "-" {
				token = ""
			}
			state := storage.NewState(store, nil)
			creds := state.LoadCredentials()
			creds.Set(slot, token)
			state.SaveCredentials(creds)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", orchestrator.SlotLabel(slot), chat.Masked(creds.Get(slot)))
			return nil
		},
	}
	keys.AddCommand(set)
	return keys
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a project config scaffold (.lenai/config.json)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := config.InitProjectConfigScaffold(dir)
			if err != nil {
				return reportErr(cmd, "init", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}
