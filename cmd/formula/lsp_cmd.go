package main

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"formula/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the language server for descriptor files on stdio",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		debounce, _ := cmd.Flags().GetDuration("debounce")
		server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
			Catalog:        e.catalog,
			MaxDiagnostics: e.maxDiagnostics,
			Debounce:       debounce,
			Log:            os.Stderr,
		})
		err = server.Run(cmd.Context())
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		return err
	},
}

func init() {
	lspCmd.Flags().Duration("debounce", 200*time.Millisecond, "delay before diagnostics after an edit")
}
