package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"toxedit/internal/models"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Apply a batch of edits from a JSON file",
	Long: `Apply a batch of edit items from a JSON file.

The file holds an array of items:

  [{"inci_name": "Retinol", "instruction": "Change NOAEL to 200"}, ...]

Each distinct ingredient gets its own editing thread. Items for the
same ingredient run in order on that thread; distinct ingredients run
in parallel. A failing item is reported but never aborts the batch.`,
	Args: cobra.ExactArgs(1),
	Run:  runBatch,
}

func runBatch(cmd *cobra.Command, args []string) {
	data, err := os.ReadFile(args[0])
	if err != nil {
		exitError("read batch file: %v", err)
	}

	var items []models.BatchEditItem
	if err := json.Unmarshal(data, &items); err != nil {
		exitError("parse batch file: %v", err)
	}
	if len(items) == 0 {
		exitError("batch file holds no items")
	}
	for i, item := range items {
		if item.INCIName == "" {
			exitError("items[%d]: inci_name is required", i)
		}
	}

	c := initFullContext()
	defer c.Close()

	result, err := c.Orch.EditBatch(context.Background(), items)
	if err != nil {
		exitError("batch failed: %v", err)
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	fmt.Printf("Batch %s: %d items across %d threads\n",
		shortID(result.BatchID), len(result.Items), len(result.ThreadMap))

	failed := 0
	for i, item := range result.Items {
		if item.Error != "" {
			failed++
			red.Printf("  [%d] %s: %s\n", i, item.INCIName, item.Error)
			continue
		}
		green.Printf("  [%d] %s v%d: ", i, item.INCIName, item.Result.Version)
		fmt.Println(item.Result.Summary)
	}

	if failed > 0 {
		red.Printf("%d of %d items failed\n", failed, len(result.Items))
		os.Exit(1)
	}
}
