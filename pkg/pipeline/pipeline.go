// Package pipeline runs the load → layout → render pipeline for treerings.
//
// The CLI, the HTTP server and the watch loop all go through a [Runner]
// so that caching and defaults behave the same everywhere.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read revisions from a file, a local git repository or GitHub
//  2. Layout: compute one frame per revision, each biased by the cache of
//     the frame before it
//  3. Render: write every frame as SVG, PNG, PDF or JSON
//
// Frames are cached under a key built from the revision fingerprint, the
// digest of the incoming layout cache and the layout options, so a
// cached frame is only reused when its whole history matches.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	revs, err := pipeline.Load(ctx, c, pipeline.Source{File: "revisions.json"}, opts)
//	result, err := runner.Execute(ctx, revs, opts)
//	svg := result.Artifacts["v1.0"]["svg"]
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/log"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/matzehuels/treerings/pkg/cache"
	"github.com/matzehuels/treerings/pkg/config"
	"github.com/matzehuels/treerings/pkg/engine"
	"github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/layoutcache"
	"github.com/matzehuels/treerings/pkg/pack"
	"github.com/matzehuels/treerings/pkg/palette"
	"github.com/matzehuels/treerings/pkg/reflow"
	"github.com/matzehuels/treerings/pkg/render/circles"
	"github.com/matzehuels/treerings/pkg/revision"
)

// Visualization types.
const (
	VizTypeCircles  = "circles"
	VizTypeNodelink = "nodelink"
	VizTypeRadial   = "radial"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = VizTypeCircles

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
)

// DefaultPNGScale doubles the canvas for raster output.
const DefaultPNGScale = 2.0

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
}

// ValidVizTypes is the set of supported visualization types.
var ValidVizTypes = map[string]bool{
	VizTypeCircles:  true,
	VizTypeNodelink: true,
	VizTypeRadial:   true,
}

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout options
	Width       float64  `json:"width,omitempty"`
	Height      float64  `json:"height,omitempty"`
	HeightRatio float64  `json:"height_ratio,omitempty"`
	MaxDepth    int      `json:"max_depth,omitempty"`
	MaxNodes    int      `json:"max_nodes,omitempty"`
	Iterations  int      `json:"iterations,omitempty"`
	Encoding    string   `json:"color_encoding,omitempty"`
	Exclude     []string `json:"exclude,omitempty"`
	Refresh     bool     `json:"refresh,omitempty"`

	// Render options
	VizType    string   `json:"viz_type,omitempty"`
	Formats    []string `json:"formats,omitempty"`
	MinRadius  float64  `json:"min_circle_radius,omitempty"`
	Highlight  []string `json:"highlight,omitempty"`
	HideLabels bool     `json:"hide_labels,omitempty"`
	Title      bool     `json:"title,omitempty"` // draw the revision tag above the canvas
	PNGScale   float64  `json:"png_scale,omitempty"`

	// Runtime options (not serialized)
	Logger      *log.Logger `json:"-"`
	GitHubToken string      `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// FromConfig maps a loaded configuration onto pipeline options.
func FromConfig(cfg *config.Config) Options {
	return Options{
		Width:       cfg.Layout.Width,
		Height:      cfg.Layout.Height,
		HeightRatio: cfg.Layout.HeightRatio,
		MaxDepth:    cfg.Layout.MaxDepth,
		MaxNodes:    cfg.Layout.MaxNodes,
		Iterations:  cfg.Layout.Iterations,
		Encoding:    cfg.Render.ColorEncoding,
		Exclude:     cfg.Input.Exclude,
		VizType:     cfg.Render.VizType,
		Formats:     cfg.Render.Formats,
		MinRadius:   cfg.Render.MinCircleRadius,
		Highlight:   cfg.Render.Highlight,
		HideLabels:  !cfg.Render.ShowLabels,
		GitHubToken: cfg.GitHub.Token,
	}
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if !ValidVizTypes[vizType] {
		return errors.New(errors.ErrCodeInvalidVizType, "invalid viz_type: %q (must be one of: circles, nodelink)", vizType)
	}
	return nil
}

// ValidateAndSetDefaults applies defaults and checks every field.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if !palette.Encoding(o.Encoding).Valid() {
		return errors.New(errors.ErrCodeInvalidEncoding, "unknown color encoding %q", o.Encoding)
	}
	err := validation.ValidateStruct(o,
		validation.Field(&o.Width, validation.Min(1.0)),
		validation.Field(&o.Height, validation.Min(1.0)),
		validation.Field(&o.HeightRatio, validation.Min(0.1)),
		validation.Field(&o.MaxDepth, validation.Min(1)),
		validation.Field(&o.MaxNodes, validation.Min(1)),
		validation.Field(&o.Iterations, validation.Min(1)),
		validation.Field(&o.MinRadius, validation.Min(0.0)),
		validation.Field(&o.PNGScale, validation.Min(0.1), validation.Max(16.0)),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	if _, err := revision.NewFilter(o.Exclude...); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// WithOverrides decodes a JSON options object over a copy of o. The
// copy is validated again on its next use.
func (o Options) WithOverrides(data []byte) (Options, error) {
	out := o
	out.validated = false
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return Options{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode options")
	}
	out.validated = false
	return out, nil
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Width == 0 {
		o.Width = pack.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = pack.DefaultHeight
	}
	if o.HeightRatio == 0 {
		o.HeightRatio = pack.DefaultHeightRatio
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = reflow.DefaultMaxDepth
	}
	if o.MaxNodes == 0 {
		o.MaxNodes = engine.DefaultMaxNodes
	}
	if o.Iterations == 0 {
		o.Iterations = reflow.DefaultIterations
	}
	if o.Encoding == "" {
		o.Encoding = string(palette.EncodingType)
	}
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.MinRadius == 0 {
		o.MinRadius = circles.DefaultMinRadius
	}
	if o.PNGScale == 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// IsNodelink reports whether the tree is drawn as boxes and edges
// (ranked or radial) rather than circles.
func (o *Options) IsNodelink() bool {
	return o.VizType == VizTypeNodelink || o.VizType == VizTypeRadial
}

// EngineOptions builds the engine configuration.
func (o *Options) EngineOptions() (engine.Options, error) {
	filter, err := revision.NewFilter(o.Exclude...)
	if err != nil {
		return engine.Options{}, err
	}
	po := pack.DefaultOptions()
	po.Width = o.Width
	po.Height = o.Height * o.HeightRatio

	ro := reflow.DefaultOptions()
	ro.Width = o.Width
	ro.Height = o.Height
	ro.MaxDepth = o.MaxDepth
	ro.Iterations = o.Iterations

	return engine.Options{
		Pack:     po,
		Reflow:   ro,
		MaxNodes: o.MaxNodes,
		Encoding: palette.Encoding(o.Encoding),
		Filter:   filter,
		Logger:   o.Logger,
	}, nil
}

// FrameKeyOpts returns cache key options for frame computation.
func (o *Options) FrameKeyOpts() cache.FrameKeyOpts {
	return cache.FrameKeyOpts{
		Width:      o.Width,
		Height:     o.Height * o.HeightRatio,
		MaxDepth:   o.MaxDepth,
		MaxNodes:   o.MaxNodes,
		Iterations: o.Iterations,
		Encoding:   o.Encoding,
		Exclude:    o.Exclude,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format, tag string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format:     format,
		VizType:    o.VizType,
		MinRadius:  o.MinRadius,
		Highlight:  o.Highlight,
		ShowLabels: !o.HideLabels,
	}
	if o.Title {
		k.Title = tag
	}
	if format == FormatPNG {
		k.Format += "@" + strconv.FormatFloat(o.PNGScale, 'f', -1, 64)
	}
	return k
}

// digest renders a cache digest as a key component. The empty cache of
// the first frame gets an empty string.
func digest(c *layoutcache.Cache) string {
	if c.Len() == 0 {
		return ""
	}
	return fmt.Sprintf("%016x", c.Digest())
}
