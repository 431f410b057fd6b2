package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log <thread>",
	Short: "Show the version history of an editing thread",
	Long:  `Display the version history of an editing thread, oldest first.`,
	Args:  cobra.ExactArgs(1),
	Run:   runLog,
}

var logOneline bool

func init() {
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "Show each version on a single line")
}

func runLog(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	entries, err := c.Store.History(args[0])
	if err != nil {
		exitError("failed to get history: %v", err)
	}

	if len(entries) == 0 {
		fmt.Println("No versions yet")
		return
	}

	yellow := color.New(color.FgYellow)
	magenta := color.New(color.FgMagenta)
	latest := entries[len(entries)-1].Version

	for _, e := range entries {
		if logOneline {
			yellow.Printf("v%d ", e.Version)
			if e.Version == latest {
				color.New(color.FgCyan).Print("(current) ")
			}
			if e.BatchID != "" {
				magenta.Printf("[batch %s] ", shortID(e.BatchID))
			}
			fmt.Println(e.Summary)
			continue
		}

		yellow.Printf("version %d", e.Version)
		if e.Version == latest {
			color.New(color.FgCyan).Print(" (current)")
		}
		if e.BatchID != "" {
			magenta.Printf(" [batch %s]", shortID(e.BatchID))
		}
		if e.FallbackUsed {
			magenta.Print(" [fallback]")
		}
		fmt.Println()
		fmt.Printf("Ingredient: %s\n", e.INCIName)
		fmt.Printf("Date:       %s\n", formatTime(e.CreatedAt))
		if e.PatchCount > 0 {
			fmt.Printf("Patches:    %d\n", e.PatchCount)
		}
		fmt.Printf("\n    %s\n\n", e.Summary)
	}
}
