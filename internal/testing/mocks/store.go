package mocks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dl-alexandre/dsync/internal/drive"
	"github.com/dl-alexandre/dsync/internal/types"
	"github.com/dl-alexandre/dsync/internal/utils"
)

// FakeStore is an in-memory drive.Store for engine tests. It keeps a real
// parent/child tree, supports pagination, and allows per-item error
// injection. All methods are safe for concurrent use.
type FakeStore struct {
	mu       sync.Mutex
	items    map[string]*types.RemoteItem
	children map[string][]string
	content  map[string][]byte
	exports  map[string][]byte
	nextID   int

	// PageSize caps ListChildren pages; zero means everything in one page.
	PageSize int
	// ListErr fails ListChildren for the given parent ID.
	ListErr map[string]error
	// FetchErr fails FetchContent and ExportContent for the given item ID.
	FetchErr map[string]error

	// Calls counts store method invocations by name.
	Calls map[string]int
}

// NewFakeStore returns an empty store with a root folder named "root".
func NewFakeStore() *FakeStore {
	s := &FakeStore{
		items:    make(map[string]*types.RemoteItem),
		children: make(map[string][]string),
		content:  make(map[string][]byte),
		exports:  make(map[string][]byte),
		ListErr:  make(map[string]error),
		FetchErr: make(map[string]error),
		Calls:    make(map[string]int),
	}
	s.items["root"] = &types.RemoteItem{
		ID:       "root",
		Name:     "root",
		MimeType: utils.MimeTypeFolder,
		Kind:     types.KindFolder,
	}
	return s
}

func (s *FakeStore) newID() string {
	s.nextID++
	return fmt.Sprintf("id-%d", s.nextID)
}

// AddFolder creates a folder under parentID and returns it.
func (s *FakeStore) AddFolder(parentID, name string) *types.RemoteItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := &types.RemoteItem{
		ID:       s.newID(),
		Name:     name,
		MimeType: utils.MimeTypeFolder,
		Kind:     types.KindFolder,
		Parents:  []string{parentID},
	}
	s.items[item.ID] = item
	s.children[parentID] = append(s.children[parentID], item.ID)
	return item
}

// AddFile creates a binary file under parentID and returns it.
func (s *FakeStore) AddFile(parentID, name string, content []byte, modified time.Time) *types.RemoteItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := &types.RemoteItem{
		ID:           s.newID(),
		Name:         name,
		MimeType:     "application/octet-stream",
		Kind:         types.KindBinary,
		Size:         int64(len(content)),
		ModifiedTime: modified.UTC().Format(time.RFC3339),
		CreatedTime:  modified.UTC().Format(time.RFC3339),
		Parents:      []string{parentID},
	}
	s.items[item.ID] = item
	s.children[parentID] = append(s.children[parentID], item.ID)
	s.content[item.ID] = content
	return item
}

// AddVirtual creates a virtual document under parentID whose export stream
// yields exported regardless of requested MIME type.
func (s *FakeStore) AddVirtual(parentID, name, mimeType string, exported []byte, modified time.Time) *types.RemoteItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := &types.RemoteItem{
		ID:           s.newID(),
		Name:         name,
		MimeType:     mimeType,
		Kind:         utils.KindForMimeType(mimeType),
		ModifiedTime: modified.UTC().Format(time.RFC3339),
		CreatedTime:  modified.UTC().Format(time.RFC3339),
		Parents:      []string{parentID},
	}
	s.items[item.ID] = item
	s.children[parentID] = append(s.children[parentID], item.ID)
	s.exports[item.ID] = exported
	return item
}

// AddShortcut creates a shortcut under parentID pointing at target.
func (s *FakeStore) AddShortcut(parentID, name string, target *types.RemoteItem, modified time.Time) *types.RemoteItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	item := &types.RemoteItem{
		ID:           s.newID(),
		Name:         name,
		MimeType:     utils.MimeTypeShortcut,
		Kind:         types.KindShortcut,
		ModifiedTime: modified.UTC().Format(time.RFC3339),
		CreatedTime:  modified.UTC().Format(time.RFC3339),
		Parents:      []string{parentID},
	}
	if target != nil {
		item.Shortcut = &types.ShortcutTarget{ID: target.ID, MimeType: target.MimeType}
	}
	s.items[item.ID] = item
	s.children[parentID] = append(s.children[parentID], item.ID)
	return item
}

// SetModified rewrites an item's modified timestamp.
func (s *FakeStore) SetModified(itemID string, modified time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[itemID].ModifiedTime = modified.UTC().Format(time.RFC3339)
}

// Item returns the stored item by ID.
func (s *FakeStore) Item(itemID string) *types.RemoteItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[itemID]
}

// Content returns the stored raw content of an item.
func (s *FakeStore) Content(itemID string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content[itemID]
}

func (s *FakeStore) count(method string) {
	s.mu.Lock()
	s.Calls[method]++
	s.mu.Unlock()
}

// ListChildren implements drive.Store.
func (s *FakeStore) ListChildren(ctx context.Context, reqCtx *types.RequestContext, parentID, pageToken string) (*types.ItemPage, error) {
	s.count("ListChildren")
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ListErr[parentID]; err != nil {
		return nil, err
	}
	ids, ok := s.children[parentID]
	if _, exists := s.items[parentID]; !exists && !ok {
		return nil, fmt.Errorf("parent %q not found", parentID)
	}

	start := 0
	if pageToken != "" {
		if _, err := fmt.Sscanf(pageToken, "page-%d", &start); err != nil {
			return nil, fmt.Errorf("bad page token %q", pageToken)
		}
	}
	end := len(ids)
	next := ""
	if s.PageSize > 0 && start+s.PageSize < len(ids) {
		end = start + s.PageSize
		next = fmt.Sprintf("page-%d", end)
	}

	page := &types.ItemPage{NextPageToken: next}
	for _, id := range ids[start:end] {
		copied := *s.items[id]
		page.Items = append(page.Items, &copied)
	}
	return page, nil
}

// GetItem implements drive.Store.
func (s *FakeStore) GetItem(ctx context.Context, reqCtx *types.RequestContext, fileID string) (*types.RemoteItem, error) {
	s.count("GetItem")
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[fileID]
	if !ok {
		return nil, fmt.Errorf("item %q not found", fileID)
	}
	copied := *item
	return &copied, nil
}

// FetchContent implements drive.Store.
func (s *FakeStore) FetchContent(ctx context.Context, reqCtx *types.RequestContext, fileID string) (io.ReadCloser, error) {
	s.count("FetchContent")
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FetchErr[fileID]; err != nil {
		return nil, err
	}
	content, ok := s.content[fileID]
	if !ok {
		return nil, fmt.Errorf("no content for %q", fileID)
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

// ExportContent implements drive.Store.
func (s *FakeStore) ExportContent(ctx context.Context, reqCtx *types.RequestContext, fileID, mimeType string) (io.ReadCloser, error) {
	s.count("ExportContent")
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.FetchErr[fileID]; err != nil {
		return nil, err
	}
	exported, ok := s.exports[fileID]
	if !ok {
		return nil, fmt.Errorf("no export for %q", fileID)
	}
	return io.NopCloser(bytes.NewReader(exported)), nil
}

// CreateFile implements drive.Store.
func (s *FakeStore) CreateFile(ctx context.Context, reqCtx *types.RequestContext, opts drive.CreateOptions, content io.Reader) (*types.RemoteItem, error) {
	s.count("CreateFile")
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item := &types.RemoteItem{
		ID:           s.newID(),
		Name:         opts.Name,
		MimeType:     opts.MimeType,
		Kind:         utils.KindForMimeType(opts.MimeType),
		Size:         int64(len(data)),
		ModifiedTime: opts.ModifiedTime,
		CreatedTime:  opts.ModifiedTime,
	}
	if opts.ParentID != "" {
		item.Parents = []string{opts.ParentID}
		s.children[opts.ParentID] = append(s.children[opts.ParentID], item.ID)
	}
	s.items[item.ID] = item
	s.content[item.ID] = data
	copied := *item
	return &copied, nil
}

// UpdateContent implements drive.Store.
func (s *FakeStore) UpdateContent(ctx context.Context, reqCtx *types.RequestContext, fileID string, opts drive.UpdateOptions, content io.Reader) (*types.RemoteItem, error) {
	s.count("UpdateContent")
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[fileID]
	if !ok {
		return nil, fmt.Errorf("item %q not found", fileID)
	}
	item.Size = int64(len(data))
	if opts.MimeType != "" {
		item.MimeType = opts.MimeType
	}
	if opts.ModifiedTime != "" {
		item.ModifiedTime = opts.ModifiedTime
	}
	s.content[fileID] = data
	copied := *item
	return &copied, nil
}

// FindChildByName implements drive.Store.
func (s *FakeStore) FindChildByName(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (*types.RemoteItem, error) {
	s.count("FindChildByName")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.children[parentID] {
		if s.items[id].Name == name {
			copied := *s.items[id]
			return &copied, nil
		}
	}
	return nil, nil
}

// CreateFolder implements drive.Store.
func (s *FakeStore) CreateFolder(ctx context.Context, reqCtx *types.RequestContext, parentID, name string) (*types.RemoteItem, error) {
	s.count("CreateFolder")
	s.mu.Lock()
	defer s.mu.Unlock()
	item := &types.RemoteItem{
		ID:       s.newID(),
		Name:     name,
		MimeType: utils.MimeTypeFolder,
		Kind:     types.KindFolder,
		Parents:  []string{parentID},
	}
	s.items[item.ID] = item
	s.children[parentID] = append(s.children[parentID], item.ID)
	copied := *item
	return &copied, nil
}

var _ drive.Store = (*FakeStore)(nil)
