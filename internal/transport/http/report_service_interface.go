package http

import (
	"context"

	"github.com/BasioMeusPuga/BhavCopyParser/internal/services"
	"github.com/BasioMeusPuga/BhavCopyParser/pkg/contracts/domain"
)

// ReportServiceInterface defines the report operations the HTTP layer needs
type ReportServiceInterface interface {
	Generate(ctx context.Context, req services.GenerateRequest) (*services.RunResult, error)
	ListReports(dir string) ([]domain.ReportFile, error)
	LatestReport(dir string) (domain.ReportFile, bool, error)
	ReportPath(dir, name string) (string, error)
	ReadReport(dir, name string) (*domain.Report, error)
}
