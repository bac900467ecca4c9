// Package palette implements the color policies handed to the tree
// normalizer. Every policy also answers whether an extension is known,
// which decides the weight cap of a file.
package palette

import (
	"github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/hierarchy"
	"github.com/matzehuels/treerings/pkg/revision"
)

// Encoding selects what a circle's color represents.
type Encoding string

const (
	EncodingType        Encoding = "type"
	EncodingChanges     Encoding = "number-of-changes"
	EncodingLastChanged Encoding = "last-change"
)

// Encodings lists the supported encodings.
var Encodings = []Encoding{EncodingType, EncodingChanges, EncodingLastChanged}

// Valid reports whether e is supported.
func (e Encoding) Valid() bool {
	for _, v := range Encodings {
		if e == v {
			return true
		}
	}
	return false
}

// Fallback colors.
const (
	Neutral = hierarchy.NeutralColor // unknown extension under the type encoding
	Blank   = "#f4f4f4"              // no data under the scale encodings
)

// ForEncoding returns the policy for enc. The scale encodings derive
// their domain from rev's files.
func ForEncoding(enc Encoding, rev revision.Revision) (hierarchy.ColorPolicy, error) {
	switch enc {
	case EncodingType, "":
		return ByType{}, nil
	case EncodingChanges:
		return ByChanges(rev), nil
	case EncodingLastChanged:
		return ByLastChange(rev), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidEncoding, "unknown color encoding %q", enc)
	}
}

// Known reports whether ext has an entry in the extension table.
func Known(ext string) bool {
	_, ok := extensionColors[ext]
	return ok
}

// ByType colors files by extension and directories by the most common
// extension among their children (first seen wins ties).
type ByType struct{}

func (ByType) Known(ext string) bool { return Known(ext) }

func (ByType) Color(n *hierarchy.Node) string {
	ext := n.Extension
	if !n.IsLeaf() {
		ext = majority(n.ChildExtensions())
	}
	if c, ok := extensionColors[ext]; ok {
		return c
	}
	return Neutral
}

func majority(exts []string) string {
	counts := make(map[string]int, len(exts))
	best, bestN := "", 0
	for _, e := range exts {
		counts[e]++
	}
	for _, e := range exts {
		if counts[e] > bestN {
			best, bestN = e, counts[e]
		}
	}
	return best
}
