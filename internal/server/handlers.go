package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Veraticus/calcman/internal/catalog"
	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/sitemap"
)

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.List())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	def, err := s.store.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req calculatorRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	def, err := req.toDefinition()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	added, err := s.store.Add(r.Context(), def)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/calculators/"+added.ID)
	writeJSON(w, http.StatusCreated, added)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req updateRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	patch, err := req.toPatch(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.store.Update(r.Context(), id, patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRenderSEO(w http.ResponseWriter, r *http.Request) {
	year := s.now().Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1 {
			s.writeError(w, r, &common.ParseError{Path: "year", Reason: fmt.Sprintf("not a valid year: %q", raw)})
			return
		}
		year = y
	}
	rendered, err := s.store.RenderSEO(r.PathValue("id"), year)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

func (s *Server) handleGetFormulas(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.GlobalFormulas())
}

func (s *Server) handleUpdateFormulas(w http.ResponseWriter, r *http.Request) {
	var req formulasRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	formulas := req.toModel()
	if err := s.store.UpdateGlobalFormulas(r.Context(), formulas); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, formulas)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Export()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", sitemap.ExportFilename(snap.ExportedAt)))
	if err := catalog.EncodeSnapshot(w, snap); err != nil {
		s.logger.Error("failed to write export", "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	snap, err := catalog.DecodeSnapshot(r.Body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.store.Import(r.Context(), snap); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("Configuration imported", "calculators", s.store.Len())
	writeJSON(w, http.StatusOK, map[string]int{"imported": len(snap.Calculators)})
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", sitemap.ContentType)
	if err := sitemap.Encode(w, s.store.SitemapData()); err != nil {
		s.logger.Error("failed to write sitemap", "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"calculators": s.store.Len(),
	})
}
