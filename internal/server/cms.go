package server

import (
	"errors"
	"net/http"
)

// AjaxPath is the CMS admin-ajax endpoint.
const AjaxPath = "/wp-admin/admin-ajax.php"

// CMS actions and their payload fields.
const (
	ActionAddCalculator     = "add_calculator"
	ActionUpdateSEOFormulas = "update_seo_formulas"
	ActionListCalculators   = "list_calculators"

	FieldAction         = "action"
	FieldCalculatorData = "calculator_data"
	FieldFormulas       = "formulas"
)

// ajaxResponse is the envelope every CMS reply uses.
type ajaxResponse struct {
	Data    any  `json:"data,omitempty"`
	Success bool `json:"success"`
}

func (s *Server) handleAjax(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(s.cfg.MaxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.ajaxError(w, r, err)
		return
	}

	switch action := r.FormValue(FieldAction); action {
	case ActionAddCalculator:
		var req calculatorRequest
		if err := decodeJSONString(r.FormValue(FieldCalculatorData), &req); err != nil {
			s.ajaxError(w, r, err)
			return
		}
		def, err := req.toDefinition()
		if err != nil {
			s.ajaxError(w, r, err)
			return
		}
		added, err := s.store.Add(r.Context(), def)
		if err != nil {
			s.ajaxError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ajaxResponse{Success: true, Data: added})

	case ActionUpdateSEOFormulas:
		var req formulasRequest
		if err := decodeJSONString(r.FormValue(FieldFormulas), &req); err != nil {
			s.ajaxError(w, r, err)
			return
		}
		formulas := req.toModel()
		if err := s.store.UpdateGlobalFormulas(r.Context(), formulas); err != nil {
			s.ajaxError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, ajaxResponse{Success: true, Data: formulas})

	case ActionListCalculators:
		writeJSON(w, http.StatusOK, ajaxResponse{Success: true, Data: s.store.List()})

	default:
		writeJSON(w, http.StatusBadRequest, ajaxResponse{
			Data: errorResponse{Error: "unknown action " + quoteOrEmpty(action), Field: FieldAction},
		})
	}
}

func (s *Server) ajaxError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("ajax request failed",
			"action", r.FormValue(FieldAction),
			"request_id", RequestIDFromContext(r.Context()),
			"error", err)
	}
	writeJSON(w, status, ajaxResponse{Data: errorBody(status, err)})
}

func quoteOrEmpty(s string) string {
	if s == "" {
		return "(empty)"
	}
	return `"` + s + `"`
}
