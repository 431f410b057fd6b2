package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"toxedit/internal/models"
)

var editCmd = &cobra.Command{
	Use:   "edit [instruction]",
	Short: "Apply an edit instruction to an ingredient record",
	Long: `Apply an edit instruction to an ingredient's toxicology record.

The instruction is routed by intent: natural-language edits go through
patch generation, correction-form payloads are applied directly, and
pasted form text is parsed first. The result is saved as a new version
on the ingredient's editing thread.`,
	Args: cobra.ExactArgs(1),
	Run:  runEdit,
}

var (
	editINCI     string
	editThread   string
	editPayloads string
)

func init() {
	editCmd.Flags().StringVar(&editINCI, "inci", "", "Ingredient INCI name")
	editCmd.Flags().StringVar(&editThread, "thread", "", "Editing thread ID (new thread when omitted)")
	editCmd.Flags().StringVar(&editPayloads, "payloads", "", "Structured form payloads as JSON, e.g. '{\"noael\":{\"value\":200,...}}'")
}

func runEdit(cmd *cobra.Command, args []string) {
	c := initFullContext()
	defer c.Close()

	req := models.EditRequest{
		INCIName:    editINCI,
		Instruction: args[0],
		ThreadID:    editThread,
	}

	if editPayloads != "" {
		var payloads map[string]map[string]any
		if err := json.Unmarshal([]byte(editPayloads), &payloads); err != nil {
			exitError("invalid --payloads JSON: %v", err)
		}
		req.Payloads = payloads
	}

	result, err := c.Orch.Edit(context.Background(), req)
	if err != nil {
		exitError("edit failed: %v", err)
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Printf("[%s v%d] ", shortID(result.ThreadID), result.Version)
	fmt.Println(result.Summary)
	fmt.Printf("Ingredient: %s\n", result.INCIName)
	fmt.Printf("Path:       %s\n", strings.ToLower(string(result.PathTaken)))
	if result.FallbackUsed {
		yellow.Println("Note: patch generation failed; full-rewrite fallback was used")
	}
	fmt.Printf("Thread:     %s\n", result.ThreadID)
}
