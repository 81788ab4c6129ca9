// Package resolver turns slash-separated remote paths into item identifiers
// by walking child names from a known root.
package resolver

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dl-alexandre/dsync/internal/drive"
	"github.com/dl-alexandre/dsync/internal/types"
	"github.com/dl-alexandre/dsync/internal/utils"
)

// DefaultCacheTTL bounds how long a resolved path stays valid. Remote
// renames within the window resolve to the old item.
const DefaultCacheTTL = 30 * time.Second

// Resolver resolves paths against a remote store with a small TTL cache.
type Resolver struct {
	store    drive.Store
	cacheTTL time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	item     *types.RemoteItem
	expireAt time.Time
}

// New creates a resolver. A zero or negative TTL disables caching.
func New(store drive.Store, cacheTTL time.Duration) *Resolver {
	return &Resolver{
		store:    store,
		cacheTTL: cacheTTL,
		entries:  make(map[string]cacheEntry),
	}
}

// Resolve walks relPath segment by segment under rootID and returns the item
// the full path names. Shortcuts on intermediate segments are followed to
// their targets. An empty relPath resolves to the root item itself.
func (r *Resolver) Resolve(ctx context.Context, reqCtx *types.RequestContext, rootID, relPath string) (*types.RemoteItem, error) {
	relPath = normalizePath(relPath)
	if relPath == "" {
		return r.store.GetItem(ctx, reqCtx, rootID)
	}

	cacheKey := rootID + "/" + relPath
	if item, ok := r.cached(cacheKey); ok {
		return item, nil
	}

	parentID := rootID
	segments := strings.Split(relPath, "/")
	var item *types.RemoteItem
	for i, segment := range segments {
		found, err := r.store.FindChildByName(ctx, reqCtx, parentID, segment)
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, utils.NewAppError(utils.NewCLIError(utils.ErrCodeFileNotFound,
				"no item named "+segment+" under "+strings.Join(segments[:i], "/")).
				WithContext("path", relPath).
				Build())
		}
		item = found
		parentID = found.ID
		if found.Kind == types.KindShortcut && found.Shortcut != nil {
			parentID = found.Shortcut.ID
		}
	}

	r.put(cacheKey, item)
	return item, nil
}

func (r *Resolver) cached(key string) (*types.RemoteItem, bool) {
	if r.cacheTTL <= 0 {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[key]
	if !ok || time.Now().After(entry.expireAt) {
		return nil, false
	}
	return entry.item, true
}

func (r *Resolver) put(key string, item *types.RemoteItem) {
	if r.cacheTTL <= 0 {
		return
	}
	r.mu.Lock()
	r.entries[key] = cacheEntry{item: item, expireAt: time.Now().Add(r.cacheTTL)}
	r.mu.Unlock()
}

// Invalidate drops every cached entry.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	r.entries = make(map[string]cacheEntry)
	r.mu.Unlock()
}

func normalizePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	var kept []string
	for _, segment := range strings.Split(p, "/") {
		if segment == "" || segment == "." {
			continue
		}
		kept = append(kept, segment)
	}
	return strings.Join(kept, "/")
}
