// Package engine runs the temporal circle-pack layout for one revision at a
// time.
//
// # Pipeline
//
// [Engine.Layout] takes a revision and the cache written by the previous
// frame and runs, to completion and without suspension:
//
//  1. filter: drop excluded entries ([revision.Filter])
//  2. normalize and sort: [hierarchy.Build] with the cached sort keys
//  3. pack: [pack.Pack] into the 1000 x 1300 packing area
//  4. reflow: [reflow.Reflow] biased toward the cached positions
//  5. snapshot: [layoutcache.Snapshot] of the finished tree
//
// The returned cache replaces the previous one; nothing is merged. An
// empty revision short-circuits with [ErrEmptyRevision] and leaves the
// caller's cache untouched.
//
// # Timelines
//
// [Engine.Timeline] lays out a whole sequence, threading the cache from
// each frame into the next. Empty revisions are skipped.
//
// # Usage
//
//	e, err := engine.New(engine.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	frames, cache, err := e.Timeline(ctx, revs)
package engine
