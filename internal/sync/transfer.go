package sync

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/dl-alexandre/dsync/internal/localfs"
	"github.com/dl-alexandre/dsync/internal/logging"
	"github.com/dl-alexandre/dsync/internal/sync/policy"
	"github.com/dl-alexandre/dsync/internal/types"
	"github.com/dl-alexandre/dsync/internal/utils"
)

// downloadItem transfers one remote leaf into destDir and reports exactly
// one progress event for it, whatever the outcome.
func (e *Engine) downloadItem(ctx context.Context, reqCtx *types.RequestContext, item *types.RemoteItem, destDir string) Outcome {
	out := e.download(ctx, reqCtx, item, destDir)
	switch {
	case out.Err != nil:
		e.cfg.Tracker.ReportError(item.Name)
		e.logger.Warn("item failed",
			logging.F("item", item.Name),
			logging.F("id", item.ID),
			logging.F("error", out.Err.Error()),
		)
	case out.Transferred:
		e.cfg.Tracker.ReportTransferred(item.Name)
	default:
		e.cfg.Tracker.ReportSkipped(item.Name)
	}
	return out
}

func (e *Engine) download(ctx context.Context, reqCtx *types.RequestContext, item *types.RemoteItem, destDir string) Outcome {
	// Shortcuts borrow the target's identity for content I/O but keep
	// their own name and timestamps for the local path and comparison.
	contentID := item.ID
	kind := item.Kind
	if item.Kind == types.KindShortcut {
		if item.Shortcut == nil || item.Shortcut.ID == "" {
			return errorOutcome(item.Name, item.ID,
				fmt.Errorf("shortcut %q has no target", item.Name))
		}
		contentID = item.Shortcut.ID
		kind = utils.KindForMimeType(item.Shortcut.MimeType)
		if kind == types.KindFolder {
			return errorOutcome(item.Name, item.ID,
				fmt.Errorf("shortcut %q points to a folder", item.Name))
		}
	}

	name := localfs.SanitizeName(item.Name)
	exportMime := ""
	if kind.IsVirtual() {
		target, ok := e.cfg.Exports[kind]
		if !ok {
			return errorOutcome(name, item.ID,
				fmt.Errorf("no export format for %s item %q", kind, item.Name))
		}
		name += target.Extension
		exportMime = target.MimeType
	}
	destPath := filepath.Join(destDir, name)

	local, err := e.fs.Stat(destPath)
	if err != nil {
		return errorOutcome(destPath, item.ID, err)
	}

	decision := policy.Decide(item, local, e.cfg.Mode)
	if !decision.Transfer {
		return Outcome{Path: destPath, ItemID: item.ID, Reason: decision.Reason}
	}
	if e.cfg.DryRun {
		return Outcome{Path: destPath, ItemID: item.ID, Transferred: true, Reason: decision.Reason}
	}

	var body io.ReadCloser
	if exportMime != "" {
		body, err = e.store.ExportContent(ctx, reqCtx, contentID, exportMime)
	} else {
		body, err = e.store.FetchContent(ctx, reqCtx, contentID)
	}
	if err != nil {
		return errorOutcome(destPath, item.ID, err)
	}
	defer body.Close()

	dst, err := e.fs.Create(destPath)
	if err != nil {
		return errorOutcome(destPath, item.ID, err)
	}
	written, err := io.Copy(dst, body)
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errorOutcome(destPath, item.ID, err)
	}

	// Pin local timestamps to the remote item's at one-second resolution
	// so the next run sees the file as up to date.
	created := item.CreateTime().Truncate(time.Second)
	modified := item.ModTime().Truncate(time.Second)
	if err := e.fs.Chtimes(destPath, created, modified); err != nil {
		return errorOutcome(destPath, item.ID, err)
	}

	return Outcome{
		Path:        destPath,
		ItemID:      item.ID,
		Transferred: true,
		Reason:      decision.Reason,
		Size:        written,
	}
}
