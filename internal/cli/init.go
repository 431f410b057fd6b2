package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"toxedit/internal/config"
	"toxedit/internal/store"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new toxedit data directory",
	Long: `Initialize a new toxedit data directory in the current directory.
This creates a .toxedit directory holding the configuration and the
version database.`,
	Run: runInit,
}

func runInit(cmd *cobra.Command, args []string) {
	if _, err := config.FindRoot(); err == nil {
		exitError("toxedit data directory already exists")
	}

	cfg, err := config.Initialize()
	if err != nil {
		exitError("failed to initialize: %v", err)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		exitError("failed to create database: %v", err)
	}
	defer st.Close()

	if err := st.Initialize(); err != nil {
		exitError("failed to initialize database: %v", err)
	}

	fmt.Printf("Initialized toxedit data directory in %s\n", cfg.Path())
}
