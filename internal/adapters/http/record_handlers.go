package httpadapter

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/mzheleznov/rxpilot/internal/core/usecase"
)

func (rt *Router) listRecords(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	patientID := strings.TrimSpace(r.URL.Query().Get("patientId"))
	if patientID == "" {
		writeError(w, http.StatusBadRequest, "patientId query parameter is required", "")
		return
	}

	records, err := rt.deps.Records.ListRecords(r.Context(), principal.ClinicID, patientID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, records)
}

func (rt *Router) listRecentRecords(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer", "")
			return
		}
		limit = parsed
	}

	records, err := rt.deps.Records.ListRecentRecords(r.Context(), principal.ClinicID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, records)
}

func (rt *Router) createRecord(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var in usecase.CreateRecordInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", "")
		return
	}

	out, err := rt.deps.Records.CreateRecord(r.Context(), principal.ClinicID, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, out)
}
