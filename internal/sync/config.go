package sync

import (
	"github.com/dl-alexandre/dsync/internal/logging"
	"github.com/dl-alexandre/dsync/internal/sync/batch"
	"github.com/dl-alexandre/dsync/internal/sync/exclude"
	"github.com/dl-alexandre/dsync/internal/sync/policy"
	"github.com/dl-alexandre/dsync/internal/sync/progress"
	"github.com/dl-alexandre/dsync/internal/types"
	"github.com/dl-alexandre/dsync/internal/utils"
)

// ExportTarget is a resolved export conversion for one virtual item kind.
type ExportTarget struct {
	MimeType  string
	Extension string
}

// Options are the user-facing knobs for a sync run.
type Options struct {
	Mode         policy.Mode
	Concurrency  int
	AbortOnError bool
	DryRun       bool
	PreScan      bool
	// ExportFormats overrides the default export format per virtual kind,
	// keyed by kind name ("document", "spreadsheet", ...) with a format
	// name from the known format table ("pdf", "docx", ...).
	ExportFormats map[string]string
	// Exclude adds patterns on top of exclude.DefaultPatterns. Matching
	// items are reported as skipped; matching directories are pruned.
	Exclude      []string
	ProgressSink progress.Sink
	Logger       logging.Logger
}

// Config is a validated Options, ready to drive an Engine.
type Config struct {
	Mode              policy.Mode
	Concurrency       int
	FolderConcurrency int
	AbortOnError      bool
	// DryRun computes and reports decisions without moving any bytes or
	// touching the remote store.
	DryRun  bool
	PreScan bool
	Exports map[types.ItemKind]ExportTarget
	Exclude *exclude.Matcher
	Tracker *progress.Tracker
	Logger  logging.Logger
}

var kindNames = map[string]types.ItemKind{
	"document":     types.KindDocument,
	"spreadsheet":  types.KindSpreadsheet,
	"presentation": types.KindPresentation,
	"map":          types.KindMap,
	"google-app":   types.KindGoogleApp,
}

// NewConfig validates options and resolves export formats. An unknown mode,
// kind, or format is a configuration error; nothing is transferred.
func NewConfig(opts Options) (*Config, error) {
	mode := opts.Mode
	if mode == "" {
		mode = policy.ModeDefault
	}
	if !mode.Valid() {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			"unknown comparison mode: "+string(mode)).
			WithContext("mode", string(mode)).
			Build())
	}

	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = utils.DefaultConcurrency
	}
	if concurrency < 1 {
		concurrency = 1
	}

	formats := make(map[types.ItemKind]string, len(utils.DefaultExportFormats))
	for kind, format := range utils.DefaultExportFormats {
		formats[kind] = format
	}
	for kindName, format := range opts.ExportFormats {
		kind, ok := kindNames[kindName]
		if !ok {
			return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
				"unknown export kind: "+kindName).
				WithContext("kind", kindName).
				Build())
		}
		formats[kind] = format
	}

	exports := make(map[types.ItemKind]ExportTarget, len(formats))
	for kind, format := range formats {
		mimeType, ok := utils.FormatMappings[format]
		if !ok {
			return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidMimeType,
				"unknown export format: "+format).
				WithContext("format", format).
				Build())
		}
		exports[kind] = ExportTarget{MimeType: mimeType, Extension: "." + format}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}

	return &Config{
		Mode:              mode,
		Concurrency:       concurrency,
		FolderConcurrency: batch.FolderConcurrency(concurrency),
		AbortOnError:      opts.AbortOnError,
		DryRun:            opts.DryRun,
		PreScan:           opts.PreScan,
		Exports:           exports,
		Exclude:           exclude.New(opts.Exclude),
		Tracker:           progress.NewTracker(opts.ProgressSink),
		Logger:            logger,
	}, nil
}
