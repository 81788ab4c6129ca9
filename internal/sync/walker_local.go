package sync

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/dl-alexandre/dsync/internal/logging"
	"github.com/dl-alexandre/dsync/internal/sync/batch"
	"github.com/dl-alexandre/dsync/internal/sync/policy"
	"github.com/dl-alexandre/dsync/internal/types"
)

// walkLocal mirrors walkRemote for the upload direction: files in a local
// directory upload concurrently, subdirectories are ensured remotely and
// recursed into. Ordering, exclusion, and error handling match the remote
// walk.
func (e *Engine) walkLocal(ctx context.Context, reqCtx *types.RequestContext, localDir, parentID, relDir string) ([]Outcome, error) {
	entries, err := e.fs.ReadDir(localDir)
	if err != nil {
		return nil, err
	}
	files, dirs := partitionLocal(entries)

	var outcomes []Outcome

	kept := files[:0]
	for _, entry := range files {
		if e.cfg.Exclude.IsExcluded(path.Join(relDir, entry.Name()), false) {
			e.cfg.Tracker.ReportSkipped(entry.Name())
			outcomes = append(outcomes, Outcome{
				Path:   filepath.Join(localDir, entry.Name()),
				Reason: policy.ReasonExcluded,
			})
			continue
		}
		kept = append(kept, entry)
	}

	fileOuts, _ := batch.Run(ctx, kept, batch.Options{
		Concurrency: e.cfg.Concurrency,
		Logger:      e.logger,
	}, func(ctx context.Context, entry os.FileInfo) (Outcome, error) {
		return e.uploadItem(ctx, reqCtx, filepath.Join(localDir, entry.Name()), parentID), nil
	})
	outcomes = append(outcomes, fileOuts...)
	if e.cfg.AbortOnError {
		if err := firstOutcomeErr(fileOuts); err != nil {
			return outcomes, err
		}
	}

	keptDirs := dirs[:0]
	for _, entry := range dirs {
		if e.cfg.Exclude.IsExcluded(path.Join(relDir, entry.Name()), true) {
			e.logger.Debug("pruning excluded directory",
				logging.F("dir", filepath.Join(localDir, entry.Name())),
			)
			continue
		}
		keptDirs = append(keptDirs, entry)
	}

	dirOuts, _ := batch.Run(ctx, keptDirs, batch.Options{
		Concurrency: e.cfg.FolderConcurrency,
		Logger:      e.logger,
	}, func(ctx context.Context, entry os.FileInfo) ([]Outcome, error) {
		subPath := filepath.Join(localDir, entry.Name())
		folderID, err := e.ensureRemoteFolder(ctx, reqCtx, parentID, entry.Name())
		if err != nil {
			return []Outcome{errorOutcome(subPath, "", err)}, nil
		}
		subOuts, werr := e.walkLocal(ctx, reqCtx, subPath, folderID, path.Join(relDir, entry.Name()))
		if werr != nil {
			e.logger.Warn("subtree aborted",
				logging.F("dir", subPath),
				logging.F("error", werr.Error()),
			)
			subOuts = append(subOuts, errorOutcome(subPath, folderID, werr))
		}
		return subOuts, nil
	})
	for _, sub := range dirOuts {
		outcomes = append(outcomes, sub...)
		if e.cfg.AbortOnError {
			if err := firstOutcomeErr(sub); err != nil {
				return outcomes, err
			}
		}
	}

	return outcomes, nil
}

func partitionLocal(entries []os.FileInfo) (files, dirs []os.FileInfo) {
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry)
		} else {
			files = append(files, entry)
		}
	}
	return files, dirs
}

// ensureRemoteFolder finds or creates a folder named name under parentID and
// returns its identifier. In dry-run mode a missing folder gets a synthetic
// identifier so the walk can still descend and plan.
func (e *Engine) ensureRemoteFolder(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (string, error) {
	existing, err := e.store.FindChildByName(ctx, reqCtx, parentID, name)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if existing.Kind != types.KindFolder {
			return "", fmt.Errorf("remote %q exists and is not a folder", name)
		}
		return existing.ID, nil
	}
	if e.cfg.DryRun {
		return "dryrun:" + parentID + "/" + name, nil
	}
	created, err := e.store.CreateFolder(ctx, reqCtx, parentID, name)
	if err != nil {
		return "", err
	}
	return created.ID, nil
}

// countLocal sizes a local subtree for progress totals, pruning excluded
// directories the same way the walk does.
func (e *Engine) countLocal(localDir, relDir string) (int64, error) {
	entries, err := e.fs.ReadDir(localDir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, entry := range entries {
		if entry.IsDir() {
			rel := path.Join(relDir, entry.Name())
			if e.cfg.Exclude.IsExcluded(rel, true) {
				continue
			}
			sub, err := e.countLocal(filepath.Join(localDir, entry.Name()), rel)
			if err != nil {
				return total, err
			}
			total += sub
		} else {
			total++
		}
	}
	return total, nil
}
