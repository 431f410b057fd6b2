package core

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"toxedit/internal/models"
)

// EditBatch fans a list of edit requests out across per-ingredient threads.
// The first occurrence of an ingredient creates its thread; later
// occurrences reuse it, so edits within a batch compose. Items on the same
// thread run sequentially in request order; distinct threads run
// independently. One item's failure never aborts the batch.
func (o *Orchestrator) EditBatch(ctx context.Context, items []models.BatchEditItem) (*models.BatchResult, error) {
	batchID := uuid.NewString()
	threadMap := make(map[string]string)
	results := make([]models.BatchItemResult, len(items))

	// Group item indexes by ingredient, preserving request order within
	// each group.
	queues := make(map[string][]int)
	var order []string
	for i, item := range items {
		if _, ok := threadMap[item.INCIName]; !ok {
			threadMap[item.INCIName] = uuid.NewString()
			order = append(order, item.INCIName)
		}
		queues[item.INCIName] = append(queues[item.INCIName], i)
	}

	var wg sync.WaitGroup
	for _, inci := range order {
		wg.Add(1)
		go func(inci string, indexes []int) {
			defer wg.Done()
			threadID := threadMap[inci]
			for _, i := range indexes {
				res, err := o.Edit(ctx, models.EditRequest{
					INCIName:    items[i].INCIName,
					Instruction: items[i].Instruction,
					ThreadID:    threadID,
					BatchID:     batchID,
					IsBatch:     true,
				})
				results[i] = models.BatchItemResult{
					INCIName: inci,
					ThreadID: threadID,
				}
				if err != nil {
					o.log.Warn("batch item failed", "batch", batchID, "inci", inci, "error", err)
					results[i].Error = err.Error()
					continue
				}
				results[i].Result = res
			}
		}(inci, queues[inci])
	}
	wg.Wait()

	return &models.BatchResult{
		BatchID:   batchID,
		ThreadMap: threadMap,
		Items:     results,
	}, nil
}
