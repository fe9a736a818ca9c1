package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
)

func (rt *Router) verifyDrugAccess(w http.ResponseWriter, r *http.Request) {
	if _, ok := principalFromContext(r.Context()); !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req struct {
		DrugName string `json:"drugName"`
		RxCUI    string `json:"rxcui"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", "")
		return
	}
	if strings.TrimSpace(req.DrugName) == "" {
		writeError(w, http.StatusBadRequest, "drugName is required", "")
		return
	}

	result, err := rt.deps.Verify.Verify(r.Context(), req.DrugName, req.RxCUI)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

func (rt *Router) trialSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := rt.deps.Trials.Summarize(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

func (rt *Router) searchDrugs(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	concepts, err := rt.deps.Reference.SearchDrugs(r.Context(), name)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, concepts)
}

func (rt *Router) drugProperties(w http.ResponseWriter, r *http.Request) {
	properties, err := rt.deps.Reference.GetDrugProperties(r.Context(), r.PathValue("rxcui"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, properties)
}
