package drive

import (
	"context"
	"io"

	"github.com/dl-alexandre/dsync/internal/types"
)

// CreateOptions describes a file to be created under a parent.
type CreateOptions struct {
	ParentID     string
	Name         string
	MimeType     string
	ModifiedTime string // RFC3339; empty leaves the server default
}

// UpdateOptions describes a content replacement on an existing file.
type UpdateOptions struct {
	MimeType     string
	ModifiedTime string // RFC3339; empty leaves the server default
}

// Store is the remote object store the sync engine talks to. The production
// implementation is backed by the Drive API; tests use an in-memory fake.
//
// All operations may fail with not-found, permission, or transient-network
// errors; the engine treats each as an item-level failure.
type Store interface {
	// ListChildren returns one page of a parent's direct children. An empty
	// next-page token means the listing is complete.
	ListChildren(ctx context.Context, reqCtx *types.RequestContext, parentID, pageToken string) (*types.ItemPage, error)

	// GetItem fetches metadata for a single item by identifier.
	GetItem(ctx context.Context, reqCtx *types.RequestContext, fileID string) (*types.RemoteItem, error)

	// FetchContent opens the raw byte stream of a binary item.
	FetchContent(ctx context.Context, reqCtx *types.RequestContext, fileID string) (io.ReadCloser, error)

	// ExportContent converts a virtual document to the given MIME type and
	// opens the resulting byte stream.
	ExportContent(ctx context.Context, reqCtx *types.RequestContext, fileID, mimeType string) (io.ReadCloser, error)

	// CreateFile creates a new file with content under a parent.
	CreateFile(ctx context.Context, reqCtx *types.RequestContext, opts CreateOptions, content io.Reader) (*types.RemoteItem, error)

	// UpdateContent replaces an existing file's content.
	UpdateContent(ctx context.Context, reqCtx *types.RequestContext, fileID string, opts UpdateOptions, content io.Reader) (*types.RemoteItem, error)

	// FindChildByName looks up a direct child by exact name. A nil item with
	// a nil error means no such child exists.
	FindChildByName(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (*types.RemoteItem, error)

	// CreateFolder creates an empty folder under a parent.
	CreateFolder(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (*types.RemoteItem, error)
}
