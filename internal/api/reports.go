package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/pbaille/unikit/internal/export"
	"github.com/pbaille/unikit/internal/share"
)

func (s *Server) buildReport(r *http.Request) (*export.Document, error) {
	q := r.URL.Query()
	return export.Build(s.svc, q.Get("kind"), q.Get("format"), s.now())
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.buildReport(r)
	if err != nil {
		s.reportError(w, err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	if doc.Ext == "xlsx" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName()))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Body)
}

func (s *Server) shareReport(w http.ResponseWriter, r *http.Request) {
	if s.share == nil {
		writeError(w, http.StatusNotImplemented, "sharing is not configured")
		return
	}
	doc, err := s.buildReport(r)
	if err != nil {
		s.reportError(w, err)
		return
	}
	name := share.ObjectName(doc.Base, doc.Ext, s.now())
	url, err := s.share.Upload(r.Context(), name, bytes.NewReader(doc.Body), int64(len(doc.Body)), doc.ContentType)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.log.Info("report shared", zap.String("name", name), zap.String("url", url))
	writeJSON(w, http.StatusCreated, map[string]string{"name": name, "url": url})
}

func (s *Server) reportError(w http.ResponseWriter, err error) {
	if errors.Is(err, export.ErrFormat) || errors.Is(err, export.ErrKind) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.fail(w, err)
}
