package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/stackusage/internal/config"
	"github.com/xxxsen/stackusage/internal/export"
	"github.com/xxxsen/stackusage/internal/filestore"
	"github.com/xxxsen/stackusage/internal/handler"
	"github.com/xxxsen/stackusage/internal/job"
	"github.com/xxxsen/stackusage/internal/middleware"
	"github.com/xxxsen/stackusage/internal/render"
	"github.com/xxxsen/stackusage/internal/schedule"
	"github.com/xxxsen/stackusage/internal/service"
	"github.com/xxxsen/stackusage/internal/stackapi"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "stackusage",
		Short: "usage metrics reporter for a Stack Overflow Enterprise instance",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "fetch data, print the usage report, and write artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runOnce(cfg)
		},
	}

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "run the report on a cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if cfg.Schedule.Spec == "" {
				return fmt.Errorf("schedule.spec is required")
			}
			return runScheduled(cfg)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the latest report artifacts over http",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}

	rootCmd.AddCommand(runCmd, scheduleCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("run error", zap.Error(err))
	}
}

func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Info("config loaded",
		zap.String("config", configPath),
		zap.String("base_url", cfg.API.BaseURL),
		zap.String("artifact_store", cfg.ArtifactStore.Type),
	)
	return cfg, nil
}

func buildReportService(cfg *config.Config) (*service.ReportService, error) {
	store, err := filestore.New(cfg.ArtifactStore)
	if err != nil {
		return nil, fmt.Errorf("init artifact store: %w", err)
	}
	client := stackapi.NewClient(cfg.API)
	exporter := export.NewExporter(store)
	return service.NewReportService(client, exporter, os.Stdout), nil
}

func runOnce(cfg *config.Config) error {
	reports, err := buildReportService(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	_, err = reports.Run(ctx)
	return err
}

func runScheduled(cfg *config.Config) error {
	reports, err := buildReportService(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewReportJob(reports), cfg.Schedule.Spec); err != nil {
		return err
	}
	scheduler.Start(ctx)

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("scheduler stopping...")
	scheduler.Stop()
	return nil
}

func runServer(cfg *config.Config) error {
	store, err := filestore.New(cfg.ArtifactStore)
	if err != nil {
		return fmt.Errorf("init artifact store: %w", err)
	}
	renderer := render.NewHTMLRenderer(8, 30*time.Second)

	deps := handler.RouterDeps{
		Reports: handler.NewReportHandler(store, renderer),
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Serve.Port)
	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.Serve.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
