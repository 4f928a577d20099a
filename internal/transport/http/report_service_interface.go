package http

import (
	"context"

	"hospitalcli/internal/services"
)

// ReportServiceInterface defines the report operations the API exposes
type ReportServiceInterface interface {
	Latest(ctx context.Context) (*services.Report, error)
	Refresh(ctx context.Context) (*services.Report, error)
}
