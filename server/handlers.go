package server

import (
	"bytes"
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"noshow-dashboard/models"
	"noshow-dashboard/storage"
)

//go:embed index.html
var indexHTML []byte

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":  "ok",
		"rows":    len(s.dash.Dataset()),
		"clients": s.hub.Count(),
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.dash.Options())
}

// handleDashboard recomputes every view for the filter in the query string.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	out := s.dash.Recompute(filterFromQuery(r.URL.Query()))
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   out,
	})
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !knownChart(name) {
		s.writeError(w, r, http.StatusNotFound, "unknown chart: "+name)
		return
	}

	out := s.dash.Recompute(filterFromQuery(r.URL.Query()))
	var buf bytes.Buffer
	if err := renderChart(&buf, out.Chart(name)); err != nil {
		s.logger.Error("[server] %v req=%s", err, middleware.GetReqID(r.Context()))
		s.writeError(w, r, http.StatusInternalServerError, "chart rendering failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	out := s.dash.Recompute(filterFromQuery(r.URL.Query()))
	var buf bytes.Buffer
	if err := storage.WriteDashboardCSV(&buf, out); err != nil {
		s.logger.Error("[server] export csv: %v", err)
		s.writeError(w, r, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="dashboard.csv"`)
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	out := s.dash.Recompute(filterFromQuery(r.URL.Query()))
	var buf bytes.Buffer
	if err := storage.WriteDashboardXLSX(&buf, out); err != nil {
		s.logger.Error("[server] export xlsx: %v", err)
		s.writeError(w, r, http.StatusInternalServerError, "export failed")
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="dashboard.xlsx"`)
	_, _ = buf.WriteTo(w)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]interface{}{
		"status":     "error",
		"error":      msg,
		"request_id": middleware.GetReqID(r.Context()),
	})
}

func knownChart(name string) bool {
	for _, n := range models.ChartNames {
		if n == name {
			return true
		}
	}
	return false
}
