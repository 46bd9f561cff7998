package tasks

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/bordereaux/internal/pipeline"
)

// ProcessFileTask runs one bordereaux file through the pipeline.
type ProcessFileTask struct {
	FileID uint `json:"file_id"`
}

// Config returns the queue configuration for file processing tasks.
func (t ProcessFileTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "process_file",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ProcessFileProcessor creates a processor function for ProcessFileTask.
func ProcessFileProcessor(orch *pipeline.Orchestrator) backlite.QueueProcessor[ProcessFileTask] {
	return func(ctx context.Context, task ProcessFileTask) error {
		err := orch.ProcessFile(ctx, task.FileID)
		if errors.Is(err, pipeline.ErrSkipped) {
			// Another worker won the claim; the task is done.
			log.Printf("[TASK] file %d already claimed, skipping", task.FileID)
			return nil
		}
		if err != nil {
			// The file is already marked failed with the reason recorded;
			// retrying would lose the claim race against its own failure
			// state, so the task completes here.
			log.Printf("[TASK] file %d finished in failed state: %v", task.FileID, err)
		}
		return nil
	}
}

// NewProcessFileQueue creates a backlite queue for file processing tasks.
func NewProcessFileQueue(orch *pipeline.Orchestrator) backlite.Queue {
	return backlite.NewQueue(ProcessFileProcessor(orch))
}
