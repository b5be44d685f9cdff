package service

import (
	"context"
	"io"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/stackusage/internal/export"
	"github.com/xxxsen/stackusage/internal/report"
	"github.com/xxxsen/stackusage/internal/stackapi"
)

// ReportService runs the whole pipeline: fetch every collection, aggregate,
// print the console report, write artifacts.
type ReportService struct {
	client   *stackapi.Client
	exporter *export.Exporter
	console  io.Writer
}

func NewReportService(client *stackapi.Client, exporter *export.Exporter, console io.Writer) *ReportService {
	return &ReportService{client: client, exporter: exporter, console: console}
}

func (s *ReportService) Run(ctx context.Context) (*report.Report, error) {
	logger := logutil.GetLogger(ctx)
	start := time.Now()

	snap, err := s.client.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("snapshot fetched",
		zap.Int("questions", len(snap.Questions)),
		zap.Int("answers", len(snap.Answers)),
		zap.Int("users", len(snap.Users)),
	)

	rep := report.Build(snap)
	if rep.Summary.UnmatchedAnswerCount > 0 {
		logger.Warn("answers without a fetched question were not attributed to tags",
			zap.Int("count", rep.Summary.UnmatchedAnswerCount))
	}

	if s.console != nil {
		report.Render(s.console, rep)
	}

	if err := s.exporter.Export(ctx, snap, rep); err != nil {
		return nil, err
	}
	logger.Info("report complete",
		zap.Int("tags", len(rep.Tags)),
		zap.Duration("duration", time.Since(start)),
	)
	return rep, nil
}
