package profile

// Profile is a named, reusable sync invocation. It stores configuration
// only; runs never persist per-item state, every run re-compares both sides.
type Profile struct {
	Name          string            `json:"name"`
	Source        string            `json:"source"`
	Dest          string            `json:"dest"`
	Mode          string            `json:"mode"`
	Concurrency   int               `json:"concurrency"`
	AbortOnError  bool              `json:"abortOnError"`
	ExportFormats map[string]string `json:"exportFormats,omitempty"`
	Exclude       []string          `json:"exclude,omitempty"`
	UpdatedAt     int64             `json:"updatedAt"`
}
