// Package revision models the raw input of the layout engine: a sequence
// of repository snapshots, one per tracked tag, each a flat list of
// slash-delimited tree entries.
//
// # Input Shapes
//
// Revisions are read from a JSON array (the shape of a GitHub trees export)
// or from YAML with the same keys:
//
//	[
//	  {"tag_name": "v1.0.0", "tree": [
//	    {"path": "src", "type": "tree"},
//	    {"path": "src/shape.js", "type": "blob", "size": 1000}
//	  ]}
//	]
//
// Directory entries are optional; the tree normalizer synthesizes any
// directory implied by a file path.
//
// # Sources
//
// [ReadFile] and [Decode] load serialized revisions. [FromGit] builds them
// straight from the tags of a local repository using go-git. The GitHub
// client in pkg/integrations/github produces the same type from the REST API.
//
// [Filter] drops entries matching doublestar globs before layout, and
// [Fingerprint] hashes a revision for cache keys.
package revision
