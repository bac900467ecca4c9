package cache

import "sort"

// Keyer builds cache keys. Implementations must be deterministic: equal
// inputs always produce equal keys.
type Keyer interface {
	HTTPKey(namespace, key string) string
	FrameKey(revisionHash, prevDigest string, opts FrameKeyOpts) string
	TimelineKey(revisionHashes []string, opts FrameKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// FrameKeyOpts are the layout options that change a computed frame.
type FrameKeyOpts struct {
	Width      float64  `json:"width"`
	Height     float64  `json:"height"`
	MaxDepth   int      `json:"max_depth"`
	MaxNodes   int      `json:"max_nodes"`
	Iterations int      `json:"iterations"`
	Encoding   string   `json:"encoding"`
	Exclude    []string `json:"exclude,omitempty"`
}

// ArtifactKeyOpts are the render options that change an output file.
type ArtifactKeyOpts struct {
	Format     string   `json:"format"`
	VizType    string   `json:"viz_type"`
	MinRadius  float64  `json:"min_radius"`
	Highlight  []string `json:"highlight,omitempty"`
	ShowLabels bool     `json:"show_labels"`
	Title      string   `json:"title,omitempty"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>". Keys stay readable so cached
// API responses can be inspected by hand.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// FrameKey keys one frame by the revision it was computed from and the
// cache it was computed against.
func (DefaultKeyer) FrameKey(revisionHash, prevDigest string, opts FrameKeyOpts) string {
	return hashKey("frame", revisionHash, prevDigest, normalizeFrameOpts(opts))
}

// TimelineKey keys a full run over an ordered list of revisions.
func (DefaultKeyer) TimelineKey(revisionHashes []string, opts FrameKeyOpts) string {
	return hashKey("timeline", revisionHashes, normalizeFrameOpts(opts))
}

// ArtifactKey keys one rendered output of a layout.
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	if len(opts.Highlight) > 0 {
		h := append([]string(nil), opts.Highlight...)
		sort.Strings(h)
		opts.Highlight = h
	}
	return hashKey("artifact", layoutHash, opts)
}

// Exclude patterns are a set; order must not change the key.
func normalizeFrameOpts(opts FrameKeyOpts) FrameKeyOpts {
	if len(opts.Exclude) > 0 {
		ex := append([]string(nil), opts.Exclude...)
		sort.Strings(ex)
		opts.Exclude = ex
	}
	return opts
}

var _ Keyer = DefaultKeyer{}
