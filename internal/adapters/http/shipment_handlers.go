package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

func (rt *Router) listShipments(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	shipments, err := rt.deps.Shipments.ListShipments(r.Context(), principal.ClinicID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, shipments)
}

func (rt *Router) getShipment(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	shipment, err := rt.deps.Shipments.GetShipment(r.Context(), principal.ClinicID, r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, shipment)
}

func (rt *Router) createShipment(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var shipment domain.Shipment
	if err := json.NewDecoder(r.Body).Decode(&shipment); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", "")
		return
	}

	created, err := rt.deps.Shipments.CreateShipment(r.Context(), principal.ClinicID, shipment)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusCreated, created)
}

func (rt *Router) updateShipment(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var shipment domain.Shipment
	if err := json.NewDecoder(r.Body).Decode(&shipment); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", "")
		return
	}

	updated, err := rt.deps.Shipments.UpdateShipment(r.Context(), principal.ClinicID, r.PathValue("id"), shipment)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusOK, updated)
}

// submitTrackingEvent accepts a courier callback and enqueues it; the worker
// applies it asynchronously, so the API answers 202.
func (rt *Router) submitTrackingEvent(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", "")
		return
	}

	var event domain.TrackingEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json", "")
		return
	}
	event.ClinicID = principal.ClinicID
	event.ShipmentID = r.PathValue("id")

	if err := rt.deps.Shipments.SubmitTrackingEvent(r.Context(), event); err != nil {
		writeDomainError(w, err)
		return
	}
	writeData(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
