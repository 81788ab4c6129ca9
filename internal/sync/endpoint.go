package sync

import (
	"strings"

	"github.com/dl-alexandre/dsync/internal/utils"
)

// RemotePrefix marks an endpoint as a remote item identifier. Anything
// without the prefix is a local filesystem path; there is no guessing.
const RemotePrefix = "drive:"

// Direction is which way bytes flow in a sync run.
type Direction int

const (
	DirectionDownload Direction = iota
	DirectionUpload
)

func (d Direction) String() string {
	if d == DirectionUpload {
		return "upload"
	}
	return "download"
}

// Endpoint is one side of a sync pair.
type Endpoint struct {
	Remote bool
	// ID is the remote item identifier when Remote is true.
	ID string
	// SubPath is an optional slash-separated path of child names below ID,
	// resolved by name at the start of the run ("drive:ID/Reports/2024").
	SubPath string
	// Path is the local path when Remote is false.
	Path string
}

// ParseEndpoint splits a raw endpoint designator into its remote or
// local form.
func ParseEndpoint(raw string) Endpoint {
	if strings.HasPrefix(raw, RemotePrefix) {
		rest := strings.TrimPrefix(raw, RemotePrefix)
		id, subPath, _ := strings.Cut(rest, "/")
		return Endpoint{Remote: true, ID: id, SubPath: subPath}
	}
	return Endpoint{Path: raw}
}

// ResolveDirection determines the transfer direction from a source and
// destination pair. Exactly one side must be remote.
func ResolveDirection(source, dest Endpoint) (Direction, error) {
	switch {
	case source.Remote && !dest.Remote:
		return DirectionDownload, nil
	case !source.Remote && dest.Remote:
		return DirectionUpload, nil
	case source.Remote && dest.Remote:
		return 0, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			"both endpoints are remote; exactly one side must be a local path").
			Build())
	default:
		return 0, utils.NewAppError(utils.NewCLIError(utils.ErrCodeInvalidArgument,
			"neither endpoint is remote; prefix the remote side with \""+RemotePrefix+"\"").
			Build())
	}
}
