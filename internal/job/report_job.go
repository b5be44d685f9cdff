package job

import (
	"context"

	"github.com/xxxsen/stackusage/internal/service"
)

type ReportJob struct {
	reports *service.ReportService
}

func NewReportJob(reports *service.ReportService) *ReportJob {
	return &ReportJob{reports: reports}
}

func (j *ReportJob) Name() string {
	return "usage_report"
}

func (j *ReportJob) Run(ctx context.Context) error {
	if j.reports == nil {
		return nil
	}
	_, err := j.reports.Run(ctx)
	return err
}
