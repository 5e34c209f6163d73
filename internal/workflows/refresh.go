package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

// RefreshInput is the input for DatasetRefreshWorkflow.
type RefreshInput struct {
	// Reason ends up in the workflow log, e.g. "cron" or "manual".
	Reason string
}

// DatasetRefreshWorkflow imports the dataset and then tells every API
// instance to reload. The import is not rolled back when the notification
// fails; instances pick the data up on their next refresh.
func DatasetRefreshWorkflow(ctx workflow.Context, input RefreshInput) (domain.DatasetLoaded, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting dataset refresh", "reason", input.Reason)

	importCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 10 * time.Second,
			MaximumAttempts: 3,
		},
	})
	var event domain.DatasetLoaded
	if err := workflow.ExecuteActivity(importCtx, "ImportDataset").Get(ctx, &event); err != nil {
		return domain.DatasetLoaded{}, err
	}

	notifyCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 5,
		},
	})
	if err := workflow.ExecuteActivity(notifyCtx, "NotifyRefreshed", event).Get(ctx, nil); err != nil {
		logger.Warn("notification failed after import", "event_id", event.ID, "error", err)
		return event, err
	}

	logger.Info("Dataset refresh complete", "event_id", event.ID, "count", event.Count)
	return event, nil
}
