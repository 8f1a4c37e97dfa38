package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/matzehuels/navtree/pkg/buildinfo"
	"github.com/matzehuels/navtree/pkg/dashboard"
	"github.com/matzehuels/navtree/pkg/errors"
	"github.com/matzehuels/navtree/pkg/httputil"
	navio "github.com/matzehuels/navtree/pkg/io"
)

const watchWriteTimeout = 10 * time.Second

type healthResponse struct {
	Status  string         `json:"status"`
	Backend string         `json:"backend"`
	Build   buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Backend: s.name, Build: buildinfo.Get()})
}

func (s *Server) handleDashboards(w http.ResponseWriter, r *http.Request) {
	entries, err := s.backend.Dashboards(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Clone(entries))
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if err := checkSchema(s.schema, body); err != nil {
		s.fail(w, r, err)
		return
	}
	entries, err := navio.ReadJSON(bytes.NewReader(body))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := navio.Validate(entries); err != nil {
		if structural(err) {
			writeError(w, http.StatusUnprocessableEntity, errors.GetCode(err), errors.UserMessage(err))
			return
		}
		s.fail(w, r, err)
		return
	}
	if err := s.backend.ReplaceDashboards(r.Context(), entries); err != nil {
		s.fail(w, r, err)
		return
	}
	if s.hub.Publish(entries) {
		s.logger.Info("dashboards replaced", "entries", len(entries), "req", requestID(r))
	}
	writeJSON(w, http.StatusOK, entries)
}

// structural reports whether a Validate failure concerns the shape of the
// hierarchy rather than a single field.
func structural(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeOrphanEntry, errors.ErrCodeInvalidFormat:
		return true
	}
	return false
}

type linkBody struct {
	Link string `json:"link"`
}

func (s *Server) handleScaffold(w http.ResponseWriter, r *http.Request) {
	var body linkBody
	if !s.decodeBody(w, r, &body) {
		return
	}
	if err := s.backend.ScaffoldReport(r.Context(), body.Link); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("report scaffolded", "link", body.Link, "req", requestID(r))
	writeJSON(w, http.StatusCreated, body)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	link, ok := s.linkParam(w, r)
	if !ok {
		return
	}
	doc, err := s.backend.Report(r.Context(), link)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	link, ok := s.linkParam(w, r)
	if !ok {
		return
	}
	var body linkBody
	if !s.decodeBody(w, r, &body) {
		return
	}
	if err := s.backend.RenameReport(r.Context(), link, body.Link); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("report renamed", "from", link, "to", body.Link, "req", requestID(r))
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	link, ok := s.linkParam(w, r)
	if !ok {
		return
	}
	if err := s.backend.DeleteReport(r.Context(), link); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("report deleted", "link", link, "req", requestID(r))
	w.WriteHeader(http.StatusNoContent)
}

// handleWatch streams the current collection followed by every published
// update until the client goes away or the server shuts down.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket accept failed", "err", err)
		return
	}
	defer conn.CloseNow()

	updates, unsubscribe := s.hub.Subscribe()
	defer unsubscribe()

	// The feed is one-way; CloseRead handles control frames and cancels ctx
	// once the peer closes.
	ctx := conn.CloseRead(r.Context())

	current, err := s.backend.Dashboards(ctx)
	if err != nil {
		s.logger.Warn("watch: load dashboards", "err", err)
		conn.Close(websocket.StatusInternalError, "load dashboards")
		return
	}
	if err := writeFrame(ctx, conn, dashboard.Clone(current)); err != nil {
		return
	}

	s.logger.Debug("watch subscriber connected", "subscribers", s.hub.Subscribers())
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case entries, ok := <-updates:
			if !ok {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			}
			if err := writeFrame(ctx, conn, entries); err != nil {
				s.logger.Debug("watch subscriber dropped", "err", err)
				return
			}
		}
	}
}

func writeFrame(ctx context.Context, conn *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, watchWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, v)
}

// linkParam returns the unescaped {link} path segment.
func (s *Server) linkParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	link := chi.URLParam(r, "link")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(link)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidLink, "malformed link in path")
			return "", false
		}
		link = unescaped
	}
	return link, true
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput, "request body exceeds limit")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "failed to read request body")
		return nil, false
	}
	return body, true
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, ok := s.readBody(w, r)
	if !ok {
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, errors.ErrCodeInvalidFormat, "invalid json body")
		return false
	}
	return true
}

// fail writes err with the status of its code. Server errors are logged.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "req", requestID(r), "err", err)
	}
	writeError(w, status, code, errors.UserMessage(err))
}

func requestID(r *http.Request) string { return middleware.GetReqID(r.Context()) }

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code errors.Code, message string) {
	writeJSON(w, status, httputil.ErrorBody{Code: code, Message: message})
}
