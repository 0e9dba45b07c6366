package storage

import (
	"context"

	"noshow-dashboard/models"
)

// RawReader is the interface any tabular file source must satisfy.
type RawReader interface {
	ReadRaw(ctx context.Context) ([]*models.RawAppointment, error)
}

// DatasetReader is satisfied by sources that already hold typed appointments.
type DatasetReader interface {
	FetchAll(ctx context.Context) (models.Dataset, error)
	Close() error
}

// DashboardExporter is the interface for writing a recomputed dashboard out.
type DashboardExporter interface {
	Export(d *models.Dashboard) error
}
