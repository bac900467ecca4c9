package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/treerings/pkg/buildinfo"
	"github.com/matzehuels/treerings/pkg/errors"
	"github.com/matzehuels/treerings/pkg/layoutcache"
	"github.com/matzehuels/treerings/pkg/pipeline"
	"github.com/matzehuels/treerings/pkg/revision"
	"github.com/matzehuels/treerings/pkg/store"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) version(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, buildinfo.Get())
}

// createRequest is the body of POST /timelines. Either Revisions or a
// GitHub Source must be given.
type createRequest struct {
	Revisions    []revision.Revision `json:"revisions,omitempty"`
	Source       *pipeline.Source    `json:"source,omitempty"`
	ContinueFrom string              `json:"continue_from,omitempty"`
	Options      json.RawMessage     `json:"options,omitempty"`
}

func (s *Server) createTimeline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	opts, err := s.defaults.WithOverrides(req.Options)
	if err != nil {
		s.writeError(w, err)
		return
	}
	opts.Logger = s.logger
	ctx := r.Context()

	revs, source := req.Revisions, "request"
	switch {
	case len(revs) > 0 && req.Source != nil:
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "give either revisions or source, not both"))
		return
	case req.Source != nil:
		if req.Source.File != "" || req.Source.GitDir != "" {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "only github sources are accepted over HTTP"))
			return
		}
		revs, err = pipeline.Load(ctx, s.runner.Cache, *req.Source, opts)
		if err != nil {
			s.writeError(w, err)
			return
		}
		source = req.Source.String()
	case len(revs) == 0:
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "no revisions given"))
		return
	}

	var prev *layoutcache.Cache
	if req.ContinueFrom != "" {
		base, err := s.store.Get(ctx, req.ContinueFrom)
		if err != nil {
			s.writeError(w, err)
			return
		}
		if prev, err = base.LayoutCache(); err != nil {
			s.writeError(w, err)
			return
		}
	}

	result, err := s.runner.Timeline(ctx, revs, prev, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	tl, err := store.FromLayouts(source, result.Layouts(), result.Final)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Save(ctx, tl); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/timelines/"+tl.ID)
	s.writeJSON(w, http.StatusCreated, tl.Summary())
}

func (s *Server) listTimelines(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"timelines": list})
}

func (s *Server) getTimeline(w http.ResponseWriter, r *http.Request) {
	tl, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tl)
}

func (s *Server) deleteTimeline(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getFrame serves GET /timelines/{id}/frames/{index}[.{format}]. Render
// options come from the query string: highlight (comma separated),
// min_radius, labels, title and scale.
func (s *Server) getFrame(w http.ResponseWriter, r *http.Request) {
	indexStr, format, hasFormat := strings.Cut(chi.URLParam(r, "frame"), ".")
	index, err := strconv.Atoi(indexStr)
	if err != nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid frame index %q", indexStr))
		return
	}
	if !hasFormat {
		format = pipeline.FormatJSON
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}

	tl, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	layout, err := tl.Frame(index)
	if err != nil {
		s.writeError(w, err)
		return
	}

	opts, err := s.frameOptions(r, format)
	if err != nil {
		s.writeError(w, err)
		return
	}
	artifacts, err := s.runner.Render(r.Context(), pipeline.Frame{Tag: layout.Tag, Layout: layout}, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifacts[format])
}

func (s *Server) frameOptions(r *http.Request, format string) (pipeline.Options, error) {
	opts, err := s.defaults.WithOverrides(nil)
	if err != nil {
		return opts, err
	}
	opts.Logger = s.logger
	opts.Formats = []string{format}
	// Stored frames carry no revisions to rebuild a node-link tree from.
	opts.VizType = pipeline.VizTypeCircles

	q := r.URL.Query()
	if v := q.Get("highlight"); v != "" {
		opts.Highlight = strings.Split(v, ",")
	}
	if v := q.Get("labels"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid labels %q", v)
		}
		opts.HideLabels = !b
	}
	if v := q.Get("title"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid title %q", v)
		}
		opts.Title = b
	}
	for name, dst := range map[string]*float64{"min_radius": &opts.MinRadius, "scale": &opts.PNGScale} {
		if v := q.Get(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, v)
			}
			*dst = f
		}
	}
	return opts, nil
}
