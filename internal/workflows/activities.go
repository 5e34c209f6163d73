package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/adapters/dataset"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/ports"
	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/usecases"
)

// Importer loads the dataset into storage.
type Importer interface {
	Import(ctx context.Context) (domain.DatasetLoaded, error)
}

// RefreshActivities holds the activity implementations for DatasetRefreshWorkflow.
// The Importer should not publish on its own; NotifyRefreshed does that with
// Temporal retries behind it.
type RefreshActivities struct {
	Datasets  Importer
	Publisher ports.EventPublisher
}

// ImportDataset runs one import. A missing or empty dataset is not retried.
func (a *RefreshActivities) ImportDataset(ctx context.Context) (domain.DatasetLoaded, error) {
	event, err := a.Datasets.Import(ctx)
	if err != nil {
		if errors.Is(err, dataset.ErrNoDataset) || errors.Is(err, usecases.ErrEmptyDataset) {
			return domain.DatasetLoaded{}, temporal.NewNonRetryableApplicationError(err.Error(), "DatasetUnavailable", err)
		}
		return domain.DatasetLoaded{}, fmt.Errorf("import dataset: %w", err)
	}
	activity.GetLogger(ctx).Info("dataset imported", "source", event.Source, "count", event.Count, "dropped", event.Dropped)
	return event, nil
}

// NotifyRefreshed announces the import so API instances reload their snapshot.
func (a *RefreshActivities) NotifyRefreshed(ctx context.Context, event domain.DatasetLoaded) error {
	if a.Publisher == nil {
		activity.GetLogger(ctx).Warn("no publisher configured, skipping notification", "event_id", event.ID)
		return nil
	}
	if err := a.Publisher.PublishDatasetLoaded(ctx, event); err != nil {
		return fmt.Errorf("publish dataset loaded %s: %w", event.ID, err)
	}
	return nil
}
