// Package hierarchy turns a flat [revision.Revision] into the weighted,
// ordered tree that the circle packer consumes.
//
// # Normalization
//
// [Build] nests entries under their parent paths (synthesizing implied
// directories and skipping malformed paths), collapses chains of
// single-child directories into one node named "a/b/c", derives each
// node's extension and synthetic weight, and moves loose top-level files
// into a bucket node at [LooseBucketPath] so the top layer holds only
// directories.
//
// # Weights
//
// A file's weight is 100 for media and font extensions, otherwise its byte
// size clamped to 15000 (9000 when the extension is unknown to the color
// policy). The sibling index is added so equal files never tie. A
// directory weighs the sum of its children.
//
// # Stable Ordering
//
// Each node gets a sort key from [ResolveSortKey]: a key cached from the
// previous frame wins, new children of an established parent sort last,
// "public" gets a fixed key below every weighted sibling, and everything
// else falls back to weight minus sibling index. [Sort] orders siblings by key then name, both descending.
package hierarchy
