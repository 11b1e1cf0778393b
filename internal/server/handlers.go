package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/osumercury/badgemaker/pkg/buildinfo"
	"github.com/osumercury/badgemaker/pkg/errors"
	bio "github.com/osumercury/badgemaker/pkg/io"
	"github.com/osumercury/badgemaker/pkg/observability"
	"github.com/osumercury/badgemaker/pkg/raster"
	"github.com/osumercury/badgemaker/pkg/render"
)

// Response headers.
const (
	HeaderRenderID = "X-Render-ID"
	HeaderWarnings = "X-Render-Warnings"
)

// pathProperties name files on the server; they are confined to the asset
// directory like backgrounds.
var pathProperties = map[string]bool{
	"script-file":        true,
	"path-to-logo":       true,
	"path-to-background": true,
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

type propertyInfo struct {
	Key         string `json:"key"`
	Type        string `json:"type"`
	Default     string `json:"default"`
	Description string `json:"description,omitempty"`
}

type rendererInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Properties  []propertyInfo `json:"properties"`
}

// RenderRequest is the body of POST /render/{name}.
type RenderRequest struct {
	Badge      bio.Record        `json:"badge"`
	Size       *bio.Size         `json:"size,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	Quality    string            `json:"quality,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Short(),
	})
}

func (s *Server) handleRenderers(w http.ResponseWriter, r *http.Request) {
	env := s.runner.Env(raster.High)
	var out []rendererInfo
	for _, name := range s.registry.Names() {
		rend, err := s.registry.New(name, env)
		if err != nil {
			continue
		}
		info := rendererInfo{Name: name, Description: rend.Describe()}
		for _, p := range rend.ListProperties() {
			info.Properties = append(info.Properties, propertyInfo{
				Key:         p.Key,
				Type:        p.Kind.String(),
				Default:     p.Default,
				Description: p.Description,
			})
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")
	if !s.registry.Has(name) {
		s.fail(w, r, http.StatusNotFound, errors.New(errors.ErrCodeUnknownRenderer, "unknown renderer %q", name))
		return
	}

	var req RenderRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.fail(w, r, http.StatusBadRequest, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	if err := s.confine(&req); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	size := bio.DefaultSize()
	if req.Size != nil {
		if err := req.Size.Validate(); err != nil {
			s.fail(w, r, http.StatusBadRequest, err)
			return
		}
		size = *req.Size
	}

	rend, err := s.registry.New(name, s.runner.Env(raster.ParseQuality(req.Quality)))
	if err != nil {
		s.fail(w, r, http.StatusNotFound, err)
		return
	}
	var warnings []string
	for _, err := range render.ApplyProperties(rend, req.Properties) {
		warnings = append(warnings, errors.UserMessage(err))
	}

	b := req.Badge.Badge(ctx, bio.ReadOptions{
		Dir:    s.assetDir,
		Size:   size,
		Images: s.runner.Images,
		Logger: s.logger,
	})

	start := time.Now()
	img := rend.Render(ctx, b)
	observability.Pipeline().OnBadgeRendered(ctx, name, time.Since(start), false)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		s.fail(w, r, http.StatusInternalServerError, errors.Wrap(errors.ErrCodeInternal, err, "encode PNG"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set(HeaderRenderID, uuid.NewString())
	if len(warnings) > 0 {
		w.Header().Set(HeaderWarnings, strings.Join(warnings, "; "))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// confine rewrites every file reference in req to live under the asset
// directory, or rejects the request when there is none.
func (s *Server) confine(req *RenderRequest) error {
	check := func(what, path string) (string, error) {
		if s.assetDir == "" {
			return "", errors.New(errors.ErrCodeInvalidPath, "%s not allowed: server has no asset directory", what)
		}
		if err := errors.ValidatePath(path); err != nil {
			return "", err
		}
		return filepath.Join(s.assetDir, filepath.FromSlash(path)), nil
	}

	if req.Badge.Background != "" {
		if _, err := check("background", req.Badge.Background); err != nil {
			return err
		}
	}
	for key, v := range req.Properties {
		if !pathProperties[key] || v == "" {
			continue
		}
		resolved, err := check(key, v)
		if err != nil {
			return err
		}
		req.Properties[key] = resolved
	}
	return nil
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	s.logger.Warn("request failed", "path", r.URL.Path, "status", status, "err", err)
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: errors.GetCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
