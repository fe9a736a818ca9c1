package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

func (rt *Router) listPatients(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	patients, err := rt.deps.Patients.ListPatients(r.Context(), principal.ClinicID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, patients)
}

func (rt *Router) getPatient(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	patient, err := rt.deps.Patients.GetPatient(r.Context(), principal.ClinicID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, patient)
}

func (rt *Router) createPatient(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var patient domain.Patient
	if err := json.NewDecoder(r.Body).Decode(&patient); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", "")
		return
	}

	created, err := rt.deps.Patients.CreatePatient(r.Context(), principal.ClinicID, patient)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

func (rt *Router) updatePatient(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var patient domain.Patient
	if err := json.NewDecoder(r.Body).Decode(&patient); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", "")
		return
	}

	updated, err := rt.deps.Patients.UpdatePatient(r.Context(), principal.ClinicID, r.PathValue("id"), patient)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, updated)
}
