package httpadapter

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

// classification uploads are capped; rash photos are phone-camera sized.
const maxClassificationUpload = 10 << 20

func (rt *Router) suggestMedication(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var req domain.SuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", "")
		return
	}

	outcome, err := rt.deps.Suggest.Suggest(r.Context(), principal, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, outcome)
}

func (rt *Router) classifyImage(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	if err := r.ParseMultipartForm(maxClassificationUpload); err != nil {
		writeError(w, http.StatusBadRequest, "multipart form expected", "")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'image' is required", "")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxClassificationUpload))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read image", "")
		return
	}

	outcome, err := rt.deps.Classify.Classify(r.Context(), principal, domain.ClassificationRequest{
		Image: domain.InlineImage{
			MIMEType: header.Header.Get("Content-Type"),
			Data:     data,
		},
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, outcome)
}
