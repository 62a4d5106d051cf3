package worker

import (
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/go-taskgenie/internal/activities"
	"github.com/ahrav/go-taskgenie/pkg/activity"
)

// RegisterAll registers the work item activities with w. Call once during
// startup, before the worker is started.
func RegisterAll(w sdkworker.Worker, eng activities.Engine) {
	acts := activities.NewActivities(activity.NewBaseActivities(), eng)

	w.RegisterActivity(acts.EvaluateWorkItem)
	w.RegisterActivity(acts.GenerateChildren)
	w.RegisterActivity(acts.RefineChildren)
}
