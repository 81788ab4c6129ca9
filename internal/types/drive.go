package types

import "time"

// ItemKind is the closed set of content-type families the engine handles.
// Every remote MIME type maps onto exactly one kind.
type ItemKind int

const (
	KindBinary ItemKind = iota
	KindFolder
	KindDocument
	KindSpreadsheet
	KindPresentation
	KindMap
	KindGoogleApp
	KindShortcut
)

func (k ItemKind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindDocument:
		return "document"
	case KindSpreadsheet:
		return "spreadsheet"
	case KindPresentation:
		return "presentation"
	case KindMap:
		return "map"
	case KindGoogleApp:
		return "google-app"
	case KindShortcut:
		return "shortcut"
	default:
		return "binary"
	}
}

// IsVirtual reports whether content for this kind has no fixed binary form
// and must be exported to a concrete format before transfer.
func (k ItemKind) IsVirtual() bool {
	switch k {
	case KindDocument, KindSpreadsheet, KindPresentation, KindMap, KindGoogleApp:
		return true
	}
	return false
}

// ShortcutTarget is the item a shortcut points at.
type ShortcutTarget struct {
	ID       string `json:"targetId"`
	MimeType string `json:"targetMimeType"`
}

// RemoteItem represents one node in the remote hierarchy.
// Timestamps are RFC3339 strings as returned by the Drive API.
type RemoteItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	MimeType     string          `json:"mimeType"`
	Kind         ItemKind        `json:"-"`
	Size         int64           `json:"size,omitempty"`
	CreatedTime  string          `json:"createdTime,omitempty"`
	ModifiedTime string          `json:"modifiedTime,omitempty"`
	Parents      []string        `json:"parents,omitempty"`
	Shortcut     *ShortcutTarget `json:"shortcutDetails,omitempty"`
}

// ModTime parses the item's modification timestamp. The zero time is
// returned when the field is absent or malformed.
func (f *RemoteItem) ModTime() time.Time {
	return parseRFC3339(f.ModifiedTime)
}

// CreateTime parses the item's creation timestamp, falling back to the
// modification timestamp when absent.
func (f *RemoteItem) CreateTime() time.Time {
	if t := parseRFC3339(f.CreatedTime); !t.IsZero() {
		return t
	}
	return f.ModTime()
}

// HasSize reports whether the remote store returned a byte size for this
// item. Virtual documents report none.
func (f *RemoteItem) HasSize() bool {
	return f.Size > 0 || !f.Kind.IsVirtual()
}

func parseRFC3339(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ItemPage is one page of a paginated child listing.
type ItemPage struct {
	Items         []*RemoteItem `json:"items"`
	NextPageToken string        `json:"nextPageToken,omitempty"`
}
