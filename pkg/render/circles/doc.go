// Package circles renders a laid-out frame as nested circles.
//
// # Overview
//
// [RenderSVG] draws every visible node of an [engine.Layout]: directories
// as pale translucent discs, files as discs filled with their color.
// The root, the loose-file bucket and anything deeper than the frame's
// maximum depth are not drawn.
//
// # Labels
//
// Directory labels are drawn only when the name fits, roughly half a
// character per unit of radius, and are truncated further on small
// circles. File labels are hidden below the minimum radius (default 15)
// and truncated to the circle's width unless the file is highlighted.
//
// # Options
//
//   - [WithHighlight]: glow and full labels for changed files
//   - [WithMinRadius]: minimum radius for file labels
//   - [WithSelected]: thicker outline for one path
//   - [WithTitle]: heading above the scene
//   - [WithoutLabels]: circles only
//
// PNG and PDF output go through [render.ToPNG] and [render.ToPDF], and
// [RenderJSON] writes the layout itself.
//
// [engine.Layout]: github.com/matzehuels/treerings/pkg/engine.Layout
// [render.ToPNG]: github.com/matzehuels/treerings/pkg/render.ToPNG
// [render.ToPDF]: github.com/matzehuels/treerings/pkg/render.ToPDF
package circles
