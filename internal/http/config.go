package http

import (
	"github.com/mrlokans/bordereaux/internal/database"
	"github.com/mrlokans/bordereaux/internal/pipeline"
	"github.com/mrlokans/bordereaux/internal/services"
	"github.com/mrlokans/bordereaux/internal/tasks"
)

// RouterConfig carries every dependency the HTTP layer needs. Optional
// members may be nil; the affected routes degrade gracefully.
type RouterConfig struct {
	Database     *database.Database
	Intake       *services.IntakeService
	Orchestrator *pipeline.Orchestrator

	// TaskClient is optional; without it, reprocessed and uploaded files
	// wait for the next scheduled sweep instead of being enqueued directly.
	TaskClient *tasks.Client

	Version string
}
