// Package cli implements the command-line interface for toxedit.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"toxedit/internal/config"
	"toxedit/internal/core"
	"toxedit/internal/llm"
	"toxedit/internal/store"
)

// cmdContext holds common resources for CLI commands
type cmdContext struct {
	Config *config.Config
	Store  *store.Store
	Orch   *core.Orchestrator
}

// Close releases resources held by cmdContext
func (c *cmdContext) Close() {
	if c.Store != nil {
		c.Store.Close()
	}
}

// initContext initializes config and store (no generator)
func initContext() *cmdContext {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		exitError("failed to open store: %v", err)
	}

	if err := st.Initialize(); err != nil {
		st.Close()
		exitError("failed to initialize store: %v", err)
	}

	return &cmdContext{Config: cfg, Store: st}
}

// initFullContext initializes config, store, and the edit orchestrator
func initFullContext() *cmdContext {
	ctx := initContext()

	gen, err := newGenerator(ctx.Config)
	if err != nil {
		ctx.Close()
		exitError("failed to create generator: %v", err)
	}
	ctx.Orch = core.New(ctx.Store, gen, nil, ctx.Config.GenTimeout())

	return ctx
}

// newGenerator builds the configured text-generation collaborator.
func newGenerator(cfg *config.Config) (llm.Generator, error) {
	switch cfg.LLM.Provider {
	case "mock":
		return &llm.Mock{}, nil
	case "openai", "":
		return llm.NewOpenAI(os.Getenv("OPENAI_API_KEY"), cfg.LLM.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

var rootCmd = &cobra.Command{
	Use:   "toxedit",
	Short: "Toxicology record edit engine",
	Long: `Toxedit applies natural-language and form-based edits to ingredient
toxicology records. Every edit is validated, applied atomically, and
saved as a new immutable version, so a full audit history is kept
per editing thread.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(serveCmd)
}

// exitError prints an error and exits
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}

// shortID returns first 8 characters of an ID
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// formatTime renders timestamps in git-log style.
func formatTime(t time.Time) string {
	return t.Format("Mon Jan 2 15:04:05 2006")
}
