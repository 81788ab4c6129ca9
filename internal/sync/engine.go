package sync

import (
	"context"

	"github.com/dl-alexandre/dsync/internal/drive"
	"github.com/dl-alexandre/dsync/internal/localfs"
	"github.com/dl-alexandre/dsync/internal/logging"
	"github.com/dl-alexandre/dsync/internal/resolver"
	"github.com/dl-alexandre/dsync/internal/types"
	"github.com/dl-alexandre/dsync/internal/utils"
)

// Engine runs differential sync between a remote store and the local
// filesystem. It holds no per-run state; every run starts from a fresh
// comparison of both sides.
type Engine struct {
	store    drive.Store
	fs       *localfs.FS
	cfg      *Config
	resolver *resolver.Resolver
	logger   logging.Logger
}

// New creates an engine over a remote store and local filesystem.
func New(store drive.Store, fs *localfs.FS, cfg *Config) *Engine {
	return &Engine{
		store:    store,
		fs:       fs,
		cfg:      cfg,
		resolver: resolver.New(store, resolver.DefaultCacheTTL),
		logger:   cfg.Logger,
	}
}

// Sync resolves the transfer direction from the endpoint pair and runs it.
// The returned outcomes cover every visited leaf item; the error is non-nil
// only for fatal failures (bad endpoints, unreachable root, abort-on-error).
func (e *Engine) Sync(ctx context.Context, reqCtx *types.RequestContext, source, dest string) ([]Outcome, error) {
	src := ParseEndpoint(source)
	dst := ParseEndpoint(dest)
	direction, err := ResolveDirection(src, dst)
	if err != nil {
		return nil, err
	}

	e.logger.Info("sync starting",
		logging.F("direction", direction.String()),
		logging.F("mode", string(e.cfg.Mode)),
		logging.F("concurrency", e.cfg.Concurrency),
		logging.F("dryRun", e.cfg.DryRun),
	)

	if direction == DirectionDownload {
		rootID, err := e.resolveEndpoint(ctx, reqCtx, src)
		if err != nil {
			return nil, err
		}
		return e.Download(ctx, reqCtx, rootID, dst.Path)
	}
	destID, err := e.resolveEndpoint(ctx, reqCtx, dst)
	if err != nil {
		return nil, err
	}
	return e.Upload(ctx, reqCtx, src.Path, destID)
}

// resolveEndpoint resolves a remote endpoint's optional sub-path down to a
// concrete item identifier. A trailing shortcut resolves to its target.
func (e *Engine) resolveEndpoint(ctx context.Context, reqCtx *types.RequestContext, ep Endpoint) (string, error) {
	if ep.SubPath == "" {
		return ep.ID, nil
	}
	item, err := e.resolver.Resolve(ctx, reqCtx, ep.ID, ep.SubPath)
	if err != nil {
		return "", err
	}
	if item.Kind == types.KindShortcut && item.Shortcut != nil {
		return item.Shortcut.ID, nil
	}
	return item.ID, nil
}

// Download syncs a remote item or folder tree into a local directory.
func (e *Engine) Download(ctx context.Context, reqCtx *types.RequestContext, rootID, destDir string) ([]Outcome, error) {
	e.cfg.Tracker.Reset()

	root, err := e.store.GetItem(ctx, reqCtx, rootID)
	if err != nil {
		return nil, err
	}
	if !e.cfg.DryRun {
		if err := e.fs.MkdirAll(destDir); err != nil {
			return nil, err
		}
	}

	// A non-folder root is a single transfer, no traversal.
	if root.Kind != types.KindFolder {
		e.cfg.Tracker.SetTotal(1)
		out := e.downloadItem(ctx, reqCtx, root, destDir)
		e.cfg.Tracker.Finish()
		return []Outcome{out}, nil
	}

	if e.cfg.PreScan {
		e.cfg.Tracker.Scanning()
		total, err := e.countRemote(ctx, reqCtx, rootID, "")
		if err != nil {
			e.logger.Warn("pre-scan failed, continuing without totals",
				logging.F("error", err.Error()))
		} else {
			e.cfg.Tracker.SetTotal(total)
		}
	}

	outcomes, err := e.walkRemote(ctx, reqCtx, rootID, destDir, "")
	e.cfg.Tracker.Finish()
	e.logSummary(outcomes)
	return outcomes, err
}

// Upload syncs a local file or directory tree into a remote folder.
func (e *Engine) Upload(ctx context.Context, reqCtx *types.RequestContext, sourcePath, destID string) ([]Outcome, error) {
	e.cfg.Tracker.Reset()

	local, err := e.fs.Stat(sourcePath)
	if err != nil {
		return nil, err
	}
	if !local.Exists {
		return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidPath,
			"source path does not exist: "+sourcePath).
			WithContext("path", sourcePath).
			Build())
	}

	if !local.IsDir {
		e.cfg.Tracker.SetTotal(1)
		out := e.uploadItem(ctx, reqCtx, sourcePath, destID)
		e.cfg.Tracker.Finish()
		return []Outcome{out}, nil
	}

	if e.cfg.PreScan {
		e.cfg.Tracker.Scanning()
		total, err := e.countLocal(sourcePath, "")
		if err != nil {
			e.logger.Warn("pre-scan failed, continuing without totals",
				logging.F("error", err.Error()))
		} else {
			e.cfg.Tracker.SetTotal(total)
		}
	}

	outcomes, err := e.walkLocal(ctx, reqCtx, sourcePath, destID, "")
	e.cfg.Tracker.Finish()
	e.logSummary(outcomes)
	return outcomes, err
}

func (e *Engine) logSummary(outcomes []Outcome) {
	s := Summarize(outcomes)
	e.logger.Info("sync finished",
		logging.F("total", s.Total),
		logging.F("transferred", s.Transferred),
		logging.F("skipped", s.Skipped),
		logging.F("failed", s.Failed),
	)
}
