package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"toxedit/internal/models"
)

var showCmd = &cobra.Command{
	Use:   "show <thread> [version]",
	Short: "Show a stored record version",
	Long: `Show a stored version of an editing thread, including the full
record and the patch operations that produced it. Defaults to the
current version.`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runShow,
}

var showRecordOnly bool

func init() {
	showCmd.Flags().BoolVar(&showRecordOnly, "record", false, "Print only the record JSON")
}

func runShow(cmd *cobra.Command, args []string) {
	c := initContext()
	defer c.Close()

	threadID := args[0]

	var v *models.Version
	var err error
	if len(args) > 1 {
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil || n < 1 {
			exitError("version must be a positive integer")
		}
		v, err = c.Store.GetVersion(threadID, n)
		if err != nil {
			exitError("version not found: %v", err)
		}
	} else {
		v, err = c.Store.Current(threadID)
		if err != nil {
			exitError("failed to load current version: %v", err)
		}
		if v == nil {
			exitError("no versions for thread %s", threadID)
		}
	}

	recordJSON, err := json.MarshalIndent(v.Record, "", "  ")
	if err != nil {
		exitError("failed to render record: %v", err)
	}

	if showRecordOnly {
		fmt.Println(string(recordJSON))
		return
	}

	yellow := color.New(color.FgYellow)
	magenta := color.New(color.FgMagenta)

	yellow.Printf("version %d", v.Version)
	if v.BatchID != "" {
		magenta.Printf(" [batch %s]", shortID(v.BatchID))
	}
	if v.FallbackUsed {
		magenta.Print(" [fallback]")
	}
	fmt.Println()
	fmt.Printf("Ingredient:  %s\n", v.INCIName)
	fmt.Printf("Date:        %s\n", formatTime(v.CreatedAt))
	if v.Instruction != "" {
		fmt.Printf("Instruction: %s\n", v.Instruction)
	}
	fmt.Printf("\n    %s\n\n", v.Summary)

	if len(v.PatchOps) > 0 {
		fmt.Println("Patch operations:")
		for _, op := range v.PatchOps {
			fmt.Printf("  %-8s %s\n", op.Op, op.Path)
		}
		fmt.Println()
	}

	fmt.Println(string(recordJSON))
}
