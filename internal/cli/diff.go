package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"toxedit/internal/core"
)

var diffCmd = &cobra.Command{
	Use:   "diff <thread> <from> <to>",
	Short: "Show changes between two versions of a thread",
	Long:  `Show the field-level differences between two stored versions of an editing thread.`,
	Args:  cobra.ExactArgs(3),
	Run:   runDiff,
}

var diffStat bool

func init() {
	diffCmd.Flags().BoolVar(&diffStat, "stat", false, "Show diffstat instead of full diff")
}

func runDiff(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	var from, to int
	if _, err := fmt.Sscanf(args[1], "%d", &from); err != nil {
		exitError("from must be an integer: %v", err)
	}
	if _, err := fmt.Sscanf(args[2], "%d", &to); err != nil {
		exitError("to must be an integer: %v", err)
	}

	// Diff only reads; no generator is needed.
	orch := core.New(c.Store, nil, nil, 0)
	diff, err := orch.Diff(args[0], from, to)
	if err != nil {
		exitError("failed to compute diff: %v", err)
	}

	if diff.TotalChanges() == 0 {
		fmt.Println("No changes")
		return
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	if diffStat {
		if len(diff.Added) > 0 {
			green.Printf(" %d fields added(+)\n", len(diff.Added))
		}
		if len(diff.Changed) > 0 {
			yellow.Printf(" %d fields changed(~)\n", len(diff.Changed))
		}
		if len(diff.Removed) > 0 {
			red.Printf(" %d fields removed(-)\n", len(diff.Removed))
		}
		fmt.Printf(" %d fields changed total\n", diff.TotalChanges())
		return
	}

	for _, change := range diff.Added {
		green.Printf("+++ %s\n", change.Field)
		green.Printf("    %s\n\n", indentJSON(change.New))
	}
	for _, change := range diff.Changed {
		yellow.Printf("~~~ %s\n", change.Field)
		red.Printf("  - %s\n", indentJSON(change.Old))
		green.Printf("  + %s\n\n", indentJSON(change.New))
	}
	for _, change := range diff.Removed {
		red.Printf("--- %s\n", change.Field)
		red.Printf("    %s\n\n", indentJSON(change.Old))
	}
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "    ", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
