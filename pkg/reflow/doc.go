// Package reflow nudges a fresh circle packing toward the previous frame's
// layout so consecutive revisions morph instead of re-shuffling.
//
// Each sibling group runs a fixed number of ticks of a damped force
// simulation:
//
//   - a weak pull toward the canvas center for depths up to 2
//   - a pull toward the parent center (0.3 horizontal, 0.8 vertical)
//   - a pull toward the node's cached position (0.5), or toward the
//     canvas center (0.3) for nodes the cache has never seen
//   - eight collision passes using radius plus a depth-scaled padding
//
// After every tick positions are clamped into the canvas and, when the
// group has a parent, into the parent circle with [Contain]. A settle pass
// then alternates position-based separation and clamping until siblings
// are both apart and contained. Groups too small to simulate get the
// settle pass only.
//
// Once a group settles, each directory drags its subtree along by the
// distance it moved. Directories with more than four children then reflow
// their own children against a cache shifted by the same amount. A final
// pass re-applies containment top down so every child ends inside its
// parent.
//
// No randomness is involved beyond a fixed-seed jitter for exactly
// coincident centers, so results are reproducible for the same input and
// cache.
package reflow
