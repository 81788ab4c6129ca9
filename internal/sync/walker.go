package sync

import (
	"context"
	"path"
	"path/filepath"

	"github.com/dl-alexandre/dsync/internal/localfs"
	"github.com/dl-alexandre/dsync/internal/logging"
	"github.com/dl-alexandre/dsync/internal/sync/batch"
	"github.com/dl-alexandre/dsync/internal/sync/policy"
	"github.com/dl-alexandre/dsync/internal/types"
)

// walkRemote traverses a remote folder page by page, downloading leaves and
// recursing into subfolders. Within each page, leaf outcomes come before
// folder outcomes, and pages keep their listing order, so the flattened
// result is deterministic for a fixed listing order.
//
// relDir is the slash-separated path from the sync root, used for exclusion
// matching. Excluded leaves become skipped outcomes; excluded folders are
// pruned without outcomes.
//
// A failed subtree becomes an error outcome and does not disturb its
// siblings. The returned error is non-nil only when this folder's own
// listing fails or when AbortOnError stops the run.
func (e *Engine) walkRemote(ctx context.Context, reqCtx *types.RequestContext, folderID, destDir, relDir string) ([]Outcome, error) {
	var outcomes []Outcome
	pageToken := ""
	for {
		page, err := e.store.ListChildren(ctx, reqCtx, folderID, pageToken)
		if err != nil {
			return outcomes, err
		}
		leaves, folders := partitionRemote(page.Items)

		kept := leaves[:0]
		for _, item := range leaves {
			if e.cfg.Exclude.IsExcluded(path.Join(relDir, item.Name), false) {
				e.cfg.Tracker.ReportSkipped(item.Name)
				outcomes = append(outcomes, Outcome{
					Path:   filepath.Join(destDir, localfs.SanitizeName(item.Name)),
					ItemID: item.ID,
					Reason: policy.ReasonExcluded,
				})
				continue
			}
			kept = append(kept, item)
		}

		leafOuts, _ := batch.Run(ctx, kept, batch.Options{
			Concurrency: e.cfg.Concurrency,
			Logger:      e.logger,
		}, func(ctx context.Context, item *types.RemoteItem) (Outcome, error) {
			return e.downloadItem(ctx, reqCtx, item, destDir), nil
		})
		outcomes = append(outcomes, leafOuts...)
		if e.cfg.AbortOnError {
			if err := firstOutcomeErr(leafOuts); err != nil {
				return outcomes, err
			}
		}

		keptFolders := folders[:0]
		for _, item := range folders {
			if e.cfg.Exclude.IsExcluded(path.Join(relDir, item.Name), true) {
				e.logger.Debug("pruning excluded folder",
					logging.F("folder", item.Name),
					logging.F("id", item.ID),
				)
				continue
			}
			keptFolders = append(keptFolders, item)
		}

		folderOuts, _ := batch.Run(ctx, keptFolders, batch.Options{
			Concurrency: e.cfg.FolderConcurrency,
			Logger:      e.logger,
		}, func(ctx context.Context, item *types.RemoteItem) ([]Outcome, error) {
			subdir := filepath.Join(destDir, localfs.SanitizeName(item.Name))
			if !e.cfg.DryRun {
				if err := e.fs.MkdirAll(subdir); err != nil {
					return []Outcome{errorOutcome(subdir, item.ID, err)}, nil
				}
			}
			subOuts, werr := e.walkRemote(ctx, reqCtx, item.ID, subdir, path.Join(relDir, item.Name))
			if werr != nil {
				e.logger.Warn("subtree aborted",
					logging.F("folder", item.Name),
					logging.F("id", item.ID),
					logging.F("error", werr.Error()),
				)
				subOuts = append(subOuts, errorOutcome(subdir, item.ID, werr))
			}
			return subOuts, nil
		})
		for _, sub := range folderOuts {
			outcomes = append(outcomes, sub...)
			if e.cfg.AbortOnError {
				if err := firstOutcomeErr(sub); err != nil {
					return outcomes, err
				}
			}
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			return outcomes, nil
		}
	}
}

func partitionRemote(items []*types.RemoteItem) (leaves, folders []*types.RemoteItem) {
	for _, item := range items {
		if item.Kind == types.KindFolder {
			folders = append(folders, item)
		} else {
			leaves = append(leaves, item)
		}
	}
	return leaves, folders
}

// countRemote sizes a subtree by sequential listing, for progress totals.
// Excluded folders are pruned to match the walk; excluded leaves still count
// because the walk reports them as skipped.
func (e *Engine) countRemote(ctx context.Context, reqCtx *types.RequestContext, folderID, relDir string) (int64, error) {
	var total int64
	pageToken := ""
	for {
		page, err := e.store.ListChildren(ctx, reqCtx, folderID, pageToken)
		if err != nil {
			return total, err
		}
		for _, item := range page.Items {
			if item.Kind == types.KindFolder {
				rel := path.Join(relDir, item.Name)
				if e.cfg.Exclude.IsExcluded(rel, true) {
					continue
				}
				sub, err := e.countRemote(ctx, reqCtx, item.ID, rel)
				if err != nil {
					return total, err
				}
				total += sub
			} else {
				total++
			}
		}
		pageToken = page.NextPageToken
		if pageToken == "" {
			return total, nil
		}
	}
}
