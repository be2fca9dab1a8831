package pipeline

import (
	"context"
	"errors"
	"fmt"
	"github.com/abalx/nginx-log-analyzer/common/log"
	"github.com/abalx/nginx-log-analyzer/common/pnc"
	"github.com/abalx/nginx-log-analyzer/file"
	"github.com/abalx/nginx-log-analyzer/locator"
	"github.com/abalx/nginx-log-analyzer/stat"
	"io"
)

var (
	// ErrNoLogFound mirrors the locator sentinel at the engine boundary.
	ErrNoLogFound = locator.ErrNoLogFound

	// ErrTooManyParseErrors reports that the failure ratio exceeded the
	// configured threshold. The report is not built in that case, since
	// statistics derived from a majority-unparseable file are misleading.
	ErrTooManyParseErrors = errors.New("too many parse errors")

	// ErrEmptyLog reports that the selected file had no lines at all.
	ErrEmptyLog = errors.New("log file is empty")
)

type logSelector interface {
	FindLatest() (locator.LogFileRef, error)
}

type lineReader interface {
	ReadOneLineAsSlice() ([]byte, error)
	Close() error
}

type lineParser interface {
	Parse(line []byte) (stat.Record, error)
}

// Result is the engine output handed to the rendering and logging
// collaborators.
type Result struct {
	Log          locator.LogFileRef
	Rows         []stat.Row
	TotalLines   uint64
	FailedLines  uint64
	DistinctURLs int
}

/*
A component that orchestrates one full analysis run:
select log -> stream lines -> parse -> aggregate -> check error budget -> build report.

Responsibilities:
	- absorb per-line parse failures into a counter and keep going
	- abort the whole run when the failure ratio exceeds the threshold

Attention:
	- the run is a single sequential pass, the context is only consulted
	between lines so an external cancel lands promptly
*/
type Pipeline struct {
	selector       logSelector
	openReader     func(ref locator.LogFileRef) (lineReader, error)
	parser         lineParser
	reportSize     uint
	errorThreshold float64
}

func NewPipeline(
	selector logSelector, parser lineParser,
	reportSize uint, errorThreshold float64, readBufSize uint,
) (*Pipeline, error) {
	if selector == nil {
		return nil, fmt.Errorf("selector can't be nil")
	}
	if parser == nil {
		return nil, fmt.Errorf("parser can't be nil")
	}
	if reportSize == 0 {
		return nil, fmt.Errorf("reportSize can't be zero")
	}
	if errorThreshold < 0 || errorThreshold > 1 {
		return nil, fmt.Errorf("errorThreshold should be a fraction within [0.0, 1.0]")
	}
	result := &Pipeline{
		selector: selector,
		openReader: func(ref locator.LogFileRef) (lineReader, error) {
			return file.NewReader(ref.Path, readBufSize)
		},
		parser:         parser,
		reportSize:     reportSize,
		errorThreshold: errorThreshold,
	}
	return result, nil
}

func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	ref, findErr := p.selector.FindLatest()
	if findErr != nil {
		return Result{}, findErr
	}
	log.Debug("selected log: %v; date: %v; compressed: %v", ref.Path, ref.Date, ref.Compressed)

	storage, storageErr := stat.NewStorage(1024)
	if storageErr != nil {
		return Result{}, storageErr
	}
	streamErr := p.stream(ctx, ref, storage)
	if streamErr != nil {
		return Result{}, streamErr
	}

	snapshot := storage.Snapshot()
	result := Result{
		Log:          ref,
		TotalLines:   snapshot.TotalLines,
		FailedLines:  snapshot.FailedLines,
		DistinctURLs: len(snapshot.PerURL),
	}
	if snapshot.TotalLines == 0 {
		return result, fmt.Errorf("%v: %w", ref.Path, ErrEmptyLog)
	}
	failureRatio := float64(snapshot.FailedLines) / float64(snapshot.TotalLines)
	if failureRatio > p.errorThreshold {
		return result, fmt.Errorf(
			"failure ratio %.3f is over threshold %.3f: %w",
			failureRatio, p.errorThreshold, ErrTooManyParseErrors,
		)
	}

	result.Rows = stat.BuildReport(snapshot, p.reportSize)
	return result, nil
}

func (p *Pipeline) stream(ctx context.Context, ref locator.LogFileRef, storage *stat.Storage) error {
	reader, readerErr := p.openReader(ref)
	if readerErr != nil {
		return readerErr
	}
	defer log.OnError(reader.Close, "can't close reader of %v", ref.Path)()

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line, lineErr := reader.ReadOneLineAsSlice()
		if lineErr == io.EOF {
			return nil
		}
		if lineErr != nil {
			return fmt.Errorf("can't read %v: %v", ref.Path, lineErr)
		}
		p.consumeLine(line, storage)
	}
}

// consumeLine is separated so a parser panic on one pathological line is
// contained and counted as a plain failure.
func (p *Pipeline) consumeLine(line []byte, storage *stat.Storage) {
	stored := false
	defer func() {
		if !stored {
			storage.StoreFailure()
		}
	}()
	defer pnc.PanicHandle()
	record, parseErr := p.parser.Parse(line)
	if parseErr != nil {
		log.Debug("can't parse line: %v", parseErr)
		return
	}
	storage.Store(record)
	stored = true
}
