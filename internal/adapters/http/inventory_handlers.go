package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

func (rt *Router) listMedicines(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	medicines, err := rt.deps.Inventory.ListMedicines(r.Context(), principal.ClinicID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, medicines)
}

func (rt *Router) getMedicine(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	medicine, err := rt.deps.Inventory.GetMedicine(r.Context(), principal.ClinicID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, medicine)
}

func (rt *Router) createMedicine(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var medicine domain.Medicine
	if err := json.NewDecoder(r.Body).Decode(&medicine); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", "")
		return
	}

	created, err := rt.deps.Inventory.CreateMedicine(r.Context(), principal.ClinicID, medicine)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

func (rt *Router) updateMedicine(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var medicine domain.Medicine
	if err := json.NewDecoder(r.Body).Decode(&medicine); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", "")
		return
	}

	updated, err := rt.deps.Inventory.UpdateMedicine(r.Context(), principal.ClinicID, r.PathValue("id"), medicine)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, updated)
}

func (rt *Router) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	if err := rt.deps.Inventory.DeleteMedicine(r.Context(), principal.ClinicID, r.PathValue("id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (rt *Router) dashboardMetrics(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	dashboard, err := rt.deps.Inventory.Dashboard(r.Context(), principal.ClinicID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, dashboard)
}
