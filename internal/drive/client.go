package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dl-alexandre/dsync/internal/api"
	"github.com/dl-alexandre/dsync/internal/types"
	"github.com/dl-alexandre/dsync/internal/utils"
	"google.golang.org/api/drive/v3"
)

const itemFields = "id,name,mimeType,size,createdTime,modifiedTime,parents,shortcutDetails"

// DriveStore implements Store against the Drive v3 API.
type DriveStore struct {
	client *api.Client
}

// NewDriveStore creates a Store backed by the Drive API.
func NewDriveStore(client *api.Client) *DriveStore {
	return &DriveStore{client: client}
}

// ListChildren returns one page of a folder's direct children.
func (s *DriveStore) ListChildren(ctx context.Context, reqCtx *types.RequestContext, parentID, pageToken string) (*types.ItemPage, error) {
	reqCtx = reqCtx.ForParent(parentID)

	query := fmt.Sprintf("'%s' in parents and trashed = false", parentID)
	call := s.client.Service().Files.List().Q(query).
		PageSize(utils.DefaultPageSize).
		Fields("nextPageToken,files(" + itemFields + ")").
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	result, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (*drive.FileList, error) {
		return call.Do()
	})
	if err != nil {
		return nil, err
	}

	items := make([]*types.RemoteItem, len(result.Files))
	for i, f := range result.Files {
		items[i] = convertItem(f)
	}

	return &types.ItemPage{
		Items:         items,
		NextPageToken: result.NextPageToken,
	}, nil
}

// GetItem fetches metadata for a single item.
func (s *DriveStore) GetItem(ctx context.Context, reqCtx *types.RequestContext, fileID string) (*types.RemoteItem, error) {
	reqCtx = reqCtx.ForFile(fileID)

	call := s.client.Service().Files.Get(fileID).Fields(itemFields).Context(ctx)
	result, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (*drive.File, error) {
		return call.Do()
	})
	if err != nil {
		return nil, err
	}

	return convertItem(result), nil
}

// FetchContent opens the raw byte stream of a binary item.
func (s *DriveStore) FetchContent(ctx context.Context, reqCtx *types.RequestContext, fileID string) (io.ReadCloser, error) {
	reqCtx = reqCtx.ForFile(fileID)

	call := s.client.Service().Files.Get(fileID).Context(ctx)
	resp, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (*http.Response, error) {
		return call.Download()
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// ExportContent converts a virtual document and opens the resulting stream.
func (s *DriveStore) ExportContent(ctx context.Context, reqCtx *types.RequestContext, fileID, mimeType string) (io.ReadCloser, error) {
	reqCtx = reqCtx.ForFile(fileID)

	call := s.client.Service().Files.Export(fileID, mimeType).Context(ctx)
	resp, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (*http.Response, error) {
		return call.Download()
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// CreateFile creates a new file with content under a parent.
func (s *DriveStore) CreateFile(ctx context.Context, reqCtx *types.RequestContext, opts CreateOptions, content io.Reader) (*types.RemoteItem, error) {
	if opts.ParentID != "" {
		reqCtx = reqCtx.ForParent(opts.ParentID)
	}

	metadata := &drive.File{
		Name:         opts.Name,
		MimeType:     opts.MimeType,
		ModifiedTime: opts.ModifiedTime,
	}
	if opts.ParentID != "" {
		metadata.Parents = []string{opts.ParentID}
	}

	call := s.client.Service().Files.Create(metadata).
		Media(content).
		Fields(itemFields).
		Context(ctx)

	result, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (*drive.File, error) {
		return call.Do()
	})
	if err != nil {
		return nil, err
	}

	return convertItem(result), nil
}

// UpdateContent replaces an existing file's content.
func (s *DriveStore) UpdateContent(ctx context.Context, reqCtx *types.RequestContext, fileID string, opts UpdateOptions, content io.Reader) (*types.RemoteItem, error) {
	reqCtx = reqCtx.ForFile(fileID)

	metadata := &drive.File{
		MimeType:     opts.MimeType,
		ModifiedTime: opts.ModifiedTime,
	}

	call := s.client.Service().Files.Update(fileID, metadata).
		Media(content).
		Fields(itemFields).
		Context(ctx)

	result, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (*drive.File, error) {
		return call.Do()
	})
	if err != nil {
		return nil, err
	}

	return convertItem(result), nil
}

// FindChildByName looks up a direct child by exact name.
func (s *DriveStore) FindChildByName(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (*types.RemoteItem, error) {
	reqCtx = reqCtx.ForParent(parentID)

	query := fmt.Sprintf("'%s' in parents and name = '%s' and trashed = false",
		parentID, escapeQueryValue(name))
	call := s.client.Service().Files.List().Q(query).
		PageSize(1).
		Fields("files(" + itemFields + ")").
		Context(ctx)

	result, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (*drive.FileList, error) {
		return call.Do()
	})
	if err != nil {
		return nil, err
	}
	if len(result.Files) == 0 {
		return nil, nil
	}

	return convertItem(result.Files[0]), nil
}

// CreateFolder creates an empty folder under a parent.
func (s *DriveStore) CreateFolder(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (*types.RemoteItem, error) {
	reqCtx = reqCtx.ForParent(parentID)

	metadata := &drive.File{
		Name:     name,
		MimeType: utils.MimeTypeFolder,
	}
	if parentID != "" {
		metadata.Parents = []string{parentID}
	}

	call := s.client.Service().Files.Create(metadata).Fields(itemFields).Context(ctx)
	result, err := api.ExecuteWithRetry(ctx, s.client, reqCtx, func() (*drive.File, error) {
		return call.Do()
	})
	if err != nil {
		return nil, err
	}

	return convertItem(result), nil
}

// escapeQueryValue escapes a string literal for a Drive query expression.
func escapeQueryValue(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `'`, `\'`)
}

func convertItem(f *drive.File) *types.RemoteItem {
	item := &types.RemoteItem{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		Kind:         utils.KindForMimeType(f.MimeType),
		Size:         f.Size,
		CreatedTime:  f.CreatedTime,
		ModifiedTime: f.ModifiedTime,
		Parents:      f.Parents,
	}
	if f.ShortcutDetails != nil {
		item.Shortcut = &types.ShortcutTarget{
			ID:       f.ShortcutDetails.TargetId,
			MimeType: f.ShortcutDetails.TargetMimeType,
		}
	}
	return item
}
