// Package pkg provides the core libraries for treerings repository visualization.
//
// # Overview
//
// Treerings lays out each tagged revision of a repository's file tree as
// nested circles. Circles that exist in consecutive revisions keep their
// place, so the frames of a timeline read like the growth rings of a tree.
// The pkg directory is organized into four areas:
//
//  1. Domain logic: [revision], [hierarchy], [pack], [reflow], [engine]
//  2. Rendering: [render/circles], [render/nodelink], [palette]
//  3. Infrastructure: [cache], [store], [config], [observability]
//  4. Orchestration: [pipeline], [timeline], [integrations]
//
// # Architecture
//
// The data flow for one timeline:
//
//	revisions (file, local git repository, GitHub tags)
//	         ↓
//	    [hierarchy] package (weighted, pruned directory tree)
//	         ↓
//	    [pack] package (initial circle packing)
//	         ↓
//	    [reflow] package (pull circles toward the previous frame)
//	         ↓
//	    [engine] package (one frame plus the cache for the next one)
//	         ↓
//	    SVG/PDF/PNG/JSON output
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/treerings/pkg/engine"
//	    "github.com/matzehuels/treerings/pkg/render/circles"
//	    "github.com/matzehuels/treerings/pkg/revision"
//	)
//
//	// 1. Read revisions, oldest first
//	revs, _ := revision.ReadFile("history.json")
//
//	// 2. Lay out every revision, threading the cache between frames
//	eng, _ := engine.New(engine.DefaultOptions())
//	frames, _, _ := eng.Timeline(context.Background(), revs)
//
//	// 3. Render the last frame
//	svg := circles.RenderSVG(frames[len(frames)-1].Export())
//
// Most callers go through [pipeline.Runner] instead, which adds caching,
// input filtering and parallel rendering.
//
// # Stability
//
// The engine output for a given input sequence is deterministic: packing
// uses a seeded generator and every map iteration is sorted first.
//
// [revision]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/revision
// [hierarchy]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/hierarchy
// [pack]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/pack
// [reflow]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/reflow
// [engine]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/engine
// [render/circles]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/render/circles
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/render/nodelink
// [palette]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/palette
// [cache]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/pipeline#Runner
// [timeline]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/timeline
// [integrations]: https://pkg.go.dev/github.com/matzehuels/treerings/pkg/integrations
package pkg
