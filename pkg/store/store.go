// Package store persists computed timelines so the HTTP API can serve
// them after the request that created them.
//
// Three backends implement [Store]:
//   - [MemoryStore]: process-local, for tests and single-instance servers
//   - [FileStore]: one JSON file per timeline, for the CLI
//   - [MongoStore]: a MongoDB collection, for shared deployments
//
// Timelines are identified by random UUIDs assigned in [NewTimeline].
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/treerings/pkg/engine"
	"github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/layoutcache"
)

// Timeline is one stored run: every frame of a revision sequence plus
// the cache left after the last frame, so a later run can continue it.
type Timeline struct {
	ID        string          `json:"id" bson:"_id"`
	Source    string          `json:"source" bson:"source"`
	CreatedAt time.Time       `json:"created_at" bson:"created_at"`
	Tags      []string        `json:"tags" bson:"tags"`
	Frames    []engine.Layout `json:"frames,omitempty" bson:"frames,omitempty"`
	Cache     json.RawMessage `json:"cache,omitempty" bson:"cache,omitempty"`
}

// Summary is the listing form of a timeline, without frames.
type Summary struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	Tags      []string  `json:"tags"`
	Frames    int       `json:"frames"`
}

// NewTimeline builds a timeline with a fresh ID from computed frames.
func NewTimeline(source string, frames []*engine.Frame, final *layoutcache.Cache) (*Timeline, error) {
	layouts := make([]engine.Layout, len(frames))
	for i, f := range frames {
		layouts[i] = f.Export()
	}
	return FromLayouts(source, layouts, final)
}

// FromLayouts builds a timeline with a fresh ID from exported layouts,
// as returned by the cached pipeline.
func FromLayouts(source string, frames []engine.Layout, final *layoutcache.Cache) (*Timeline, error) {
	t := &Timeline{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: time.Now().UTC(),
		Tags:      make([]string, len(frames)),
		Frames:    frames,
	}
	for i, f := range frames {
		t.Tags[i] = f.Tag
	}
	if final != nil {
		data, err := json.Marshal(final)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "encode layout cache")
		}
		t.Cache = data
	}
	return t, nil
}

// Summary returns the listing form of t.
func (t *Timeline) Summary() Summary {
	return Summary{ID: t.ID, Source: t.Source, CreatedAt: t.CreatedAt, Tags: t.Tags, Frames: len(t.Frames)}
}

// Frame returns the frame at index i.
func (t *Timeline) Frame(i int) (engine.Layout, error) {
	if i < 0 || i >= len(t.Frames) {
		return engine.Layout{}, errors.New(errors.ErrCodeRevisionNotFound, "frame %d out of range [0, %d)", i, len(t.Frames))
	}
	return t.Frames[i], nil
}

// LayoutCache decodes the stored final cache. It returns nil when the
// timeline has none.
func (t *Timeline) LayoutCache() (*layoutcache.Cache, error) {
	if len(t.Cache) == 0 {
		return nil, nil
	}
	var c layoutcache.Cache
	if err := json.Unmarshal(t.Cache, &c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode layout cache")
	}
	return &c, nil
}

// Store is the interface for timeline storage backends.
type Store interface {
	// Save inserts or replaces a timeline.
	Save(ctx context.Context, t *Timeline) error

	// Get retrieves a timeline by ID. A missing ID yields an error with
	// code [errors.ErrCodeTimelineNotFound].
	Get(ctx context.Context, id string) (*Timeline, error)

	// List returns up to limit summaries, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Delete removes a timeline. Deleting a missing ID is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeTimelineNotFound, "timeline %s not found", id)
}
