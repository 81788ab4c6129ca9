package types

// RequestType categorizes API requests for logging and request shaping
type RequestType string

const (
	RequestTypeListOrSearch RequestType = "list_or_search"
	RequestTypeMetadata     RequestType = "metadata"
	RequestTypeContent      RequestType = "content"
	RequestTypeMutation     RequestType = "mutation"
)

// RequestContext carries per-invocation identifiers across API calls
type RequestContext struct {
	Profile           string
	DriveID           string
	InvolvedFileIDs   []string
	InvolvedParentIDs []string
	RequestType       RequestType
	TraceID           string
}

// ForFile returns a copy of the context with fileID recorded. Callers running
// concurrent API calls each get their own copy so the slices are never shared.
func (rc *RequestContext) ForFile(fileID string) *RequestContext {
	c := *rc
	c.InvolvedFileIDs = append(append([]string{}, rc.InvolvedFileIDs...), fileID)
	return &c
}

// ForParent returns a copy of the context with parentID recorded.
func (rc *RequestContext) ForParent(parentID string) *RequestContext {
	c := *rc
	c.InvolvedParentIDs = append(append([]string{}, rc.InvolvedParentIDs...), parentID)
	return &c
}
