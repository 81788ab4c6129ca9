package sync

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/dl-alexandre/dsync/internal/drive"
	"github.com/dl-alexandre/dsync/internal/logging"
	"github.com/dl-alexandre/dsync/internal/sync/policy"
	"github.com/dl-alexandre/dsync/internal/types"
)

// uploadItem pushes one local file under a remote parent and reports exactly
// one progress event for it.
func (e *Engine) uploadItem(ctx context.Context, reqCtx *types.RequestContext, localPath, parentID string) Outcome {
	name := filepath.Base(localPath)
	out := e.upload(ctx, reqCtx, localPath, parentID)
	switch {
	case out.Err != nil:
		e.cfg.Tracker.ReportError(name)
		e.logger.Warn("item failed",
			logging.F("item", name),
			logging.F("error", out.Err.Error()),
		)
	case out.Transferred:
		e.cfg.Tracker.ReportTransferred(name)
	default:
		e.cfg.Tracker.ReportSkipped(name)
	}
	return out
}

func (e *Engine) upload(ctx context.Context, reqCtx *types.RequestContext, localPath, parentID string) Outcome {
	name := filepath.Base(localPath)

	local, err := e.fs.Stat(localPath)
	if err != nil {
		return errorOutcome(localPath, "", err)
	}
	if !local.Exists {
		return errorOutcome(localPath, "", fmt.Errorf("local file %q disappeared", localPath))
	}

	existing, err := e.store.FindChildByName(ctx, reqCtx, parentID, name)
	if err != nil {
		return errorOutcome(localPath, "", err)
	}

	// Remote modified time mirrors the local mtime so a later run in
	// either direction sees the pair as in sync.
	modified := local.ModTime.UTC().Truncate(time.Second).Format(time.RFC3339)
	mimeType := contentTypeForName(name)

	if existing == nil {
		if e.cfg.DryRun {
			return Outcome{Path: localPath, Transferred: true, Reason: policy.ReasonCreated}
		}
		src, err := e.fs.Open(localPath)
		if err != nil {
			return errorOutcome(localPath, "", err)
		}
		defer src.Close()

		created, err := e.store.CreateFile(ctx, reqCtx, drive.CreateOptions{
			ParentID:     parentID,
			Name:         name,
			MimeType:     mimeType,
			ModifiedTime: modified,
		}, src)
		if err != nil {
			return errorOutcome(localPath, "", err)
		}
		return Outcome{
			Path:        localPath,
			ItemID:      created.ID,
			Transferred: true,
			Reason:      policy.ReasonCreated,
			Size:        local.Size,
		}
	}

	if existing.Kind == types.KindFolder {
		return errorOutcome(localPath, existing.ID,
			fmt.Errorf("remote %q is a folder, cannot replace with file", name))
	}

	decision := policy.DecideUpload(local, existing, e.cfg.Mode)
	if !decision.Transfer {
		return Outcome{Path: localPath, ItemID: existing.ID, Reason: decision.Reason}
	}
	reason := decision.Reason
	if reason == policy.ReasonLocalNewer {
		reason = policy.ReasonUpdated
	}
	if e.cfg.DryRun {
		return Outcome{Path: localPath, ItemID: existing.ID, Transferred: true, Reason: reason}
	}

	src, err := e.fs.Open(localPath)
	if err != nil {
		return errorOutcome(localPath, existing.ID, err)
	}
	defer src.Close()

	updated, err := e.store.UpdateContent(ctx, reqCtx, existing.ID, drive.UpdateOptions{
		MimeType:     mimeType,
		ModifiedTime: modified,
	}, src)
	if err != nil {
		return errorOutcome(localPath, existing.ID, err)
	}
	return Outcome{
		Path:        localPath,
		ItemID:      updated.ID,
		Transferred: true,
		Reason:      reason,
		Size:        local.Size,
	}
}

// contentTypeForName infers an upload MIME type from the file extension.
func contentTypeForName(name string) string {
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		return "application/octet-stream"
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}
