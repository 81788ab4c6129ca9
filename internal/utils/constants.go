package utils

import (
	"strings"

	"github.com/dl-alexandre/dsync/internal/types"
)

// Retry configuration
const (
	DefaultMaxRetries   = 3
	DefaultRetryDelayMs = 1000
	MaxRetryDelayMs     = 32000
)

// Sync defaults
const (
	DefaultConcurrency = 5
	DefaultPageSize    = 100
)

// Schema version for the CLI output envelope
const SchemaVersion = "1.0"

// OAuth scopes
const (
	ScopeFull     = "https://www.googleapis.com/auth/drive"
	ScopeFile     = "https://www.googleapis.com/auth/drive.file"
	ScopeReadonly = "https://www.googleapis.com/auth/drive.readonly"
)

// ScopesSync are the scopes requested for sync operations
var ScopesSync = []string{ScopeFull}

// Google Workspace MIME types
const (
	MimeTypeDocument     = "application/vnd.google-apps.document"
	MimeTypeSpreadsheet  = "application/vnd.google-apps.spreadsheet"
	MimeTypePresentation = "application/vnd.google-apps.presentation"
	MimeTypeMap          = "application/vnd.google-apps.map"
	MimeTypeFolder       = "application/vnd.google-apps.folder"
	MimeTypeShortcut     = "application/vnd.google-apps.shortcut"
	mimeTypePrefixGoogle = "application/vnd.google-apps."
)

// KindForMimeType maps a remote MIME type onto the closed ItemKind set.
func KindForMimeType(mimeType string) types.ItemKind {
	switch mimeType {
	case MimeTypeFolder:
		return types.KindFolder
	case MimeTypeShortcut:
		return types.KindShortcut
	case MimeTypeDocument:
		return types.KindDocument
	case MimeTypeSpreadsheet:
		return types.KindSpreadsheet
	case MimeTypePresentation:
		return types.KindPresentation
	case MimeTypeMap:
		return types.KindMap
	}
	if strings.HasPrefix(mimeType, mimeTypePrefixGoogle) {
		return types.KindGoogleApp
	}
	return types.KindBinary
}

// FormatMappings maps convenience format names to MIME types
var FormatMappings = map[string]string{
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"txt":  "text/plain",
	"html": "text/html",
	"csv":  "text/csv",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"svg":  "image/svg+xml",
	"kml":  "application/vnd.google-earth.kml+xml",
}

// DefaultExportFormats is the per-family export format used when the
// configuration does not override it.
var DefaultExportFormats = map[types.ItemKind]string{
	types.KindDocument:     "docx",
	types.KindSpreadsheet:  "xlsx",
	types.KindPresentation: "pptx",
	types.KindMap:          "kml",
	types.KindGoogleApp:    "pdf",
}
