package main

import (
	"context"
	"errors"
	"github.com/abalx/nginx-log-analyzer/common/log"
	"github.com/abalx/nginx-log-analyzer/config"
	"github.com/abalx/nginx-log-analyzer/history"
	"github.com/abalx/nginx-log-analyzer/locator"
	"github.com/abalx/nginx-log-analyzer/parser/nginx"
	"github.com/abalx/nginx-log-analyzer/pipeline"
	"github.com/abalx/nginx-log-analyzer/view"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	cfg, cfgErr := config.ParseFlagsAsConfig()
	if cfgErr != nil {
		log.WithError(cfgErr, "can't load configuration")
		os.Exit(1)
	}
	if cfg.DebugMode {
		log.GlobalDebugEnabled = true
	}
	scriptLogErr := log.SetupScriptLog(cfg.ScriptLog)
	if scriptLogErr != nil {
		log.WithError(scriptLogErr, "can't setup script log")
		os.Exit(1)
	}

	applicationCtx, applicationCancel := context.WithCancel(context.Background())
	defer applicationCancel()
	go cancelOnSignal(applicationCancel)

	runErr := run(applicationCtx, cfg)
	if runErr != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logLocator, locatorErr := locator.NewLocator(cfg.LogDir)
	if locatorErr != nil {
		log.WithError(locatorErr, "can't setup log locator")
		return locatorErr
	}

	htmlReport, htmlReportErr := view.NewHTMLReport(cfg.ReportDir, cfg.TemplatePath)
	if htmlReportErr != nil {
		log.WithError(htmlReportErr, "can't setup html report view")
		return htmlReportErr
	}

	latestLog, findErr := logLocator.FindLatest()
	if findErr != nil {
		if errors.Is(findErr, locator.ErrNoLogFound) {
			log.Info("log file is not found in %v", cfg.LogDir)
			return nil
		}
		log.WithError(findErr, "can't select log file")
		return findErr
	}
	if htmlReport.Exists(latestLog.Date) {
		log.Info("a report for %v already exists: %v", latestLog.Path, htmlReport.ReportPath(latestLog.Date))
		return nil
	}

	lineParser, parserErr := nginx.NewLineToRecordParser(cfg.ParserURLStringCacheSize)
	if parserErr != nil {
		log.WithError(parserErr, "can't setup nginx log parser")
		return parserErr
	}

	analysis, pipelineErr := pipeline.NewPipeline(
		logLocator, lineParser,
		cfg.ReportSize, cfg.ErrorThreshold, cfg.FileReadBufSizeInBytes,
	)
	if pipelineErr != nil {
		log.WithError(pipelineErr, "can't setup analysis pipeline")
		return pipelineErr
	}

	result, runErr := analysis.Run(ctx)
	if runErr != nil {
		log.WithError(runErr, "analysis of %v failed", latestLog.Path)
		return runErr
	}

	reportPath, renderErr := htmlReport.Render(result.Rows, result.Log.Date)
	if renderErr != nil {
		log.WithError(renderErr, "can't render html report")
		return renderErr
	}
	log.Info("report is ready: %v", reportPath)

	recordRunHistory(ctx, cfg, result, reportPath)

	stdOutView, viewErr := view.NewIOView(os.Stdout, cfg.SummaryTopRows)
	if viewErr != nil {
		log.WithError(viewErr, "can't setup io view")
		return viewErr
	}
	stdOutView.PrintSummary(result.TotalLines, result.FailedLines, result.Rows)
	return nil
}

// recordRunHistory is best effort: a broken history store should not
// fail a run whose report is already on disk.
func recordRunHistory(ctx context.Context, cfg config.Config, result pipeline.Result, reportPath string) {
	if cfg.HistoryDB == "" {
		return
	}
	store, openErr := history.Open(cfg.HistoryDB)
	if openErr != nil {
		log.WithError(openErr, "can't open history store")
		return
	}
	defer log.OnError(store.Close, "can't close history store")()

	recordErr := store.RecordRun(ctx, history.Run{
		LogDate:     result.Log.Date,
		LogPath:     result.Log.Path,
		TotalLines:  result.TotalLines,
		FailedLines: result.FailedLines,
		URLCount:    result.DistinctURLs,
		ReportPath:  reportPath,
		CreatedAt:   time.Now().UTC(),
	})
	if recordErr != nil {
		log.WithError(recordErr, "can't record run history")
	}
}

func cancelOnSignal(cancel context.CancelFunc) {
	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGTERM, syscall.SIGINT)
	<-stopCh
	log.Info("interrupted, shutting down")
	cancel()
}
