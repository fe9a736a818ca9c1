package httpadapter

import (
	"net/http"

	"github.com/mzheleznov/rxpilot/internal/core/ports"
	"github.com/mzheleznov/rxpilot/internal/core/usecase"
	"github.com/mzheleznov/rxpilot/internal/infrastructure/auth"
	"github.com/mzheleznov/rxpilot/internal/observability/metrics"
)

// RouterDeps bundles everything the HTTP surface needs. The AI flows are
// taken as inbound ports so tests can stand in fakes; Metrics may be nil
// in tests; everything else is required.
type RouterDeps struct {
	Auth      *usecase.AuthUseCase
	Sessions  *auth.SessionManager
	Suggest   ports.SuggestionService
	Classify  ports.ClassificationService
	Verify    ports.VerificationService
	Trials    ports.TrialSummaryService
	Inventory *usecase.InventoryUseCase
	Shipments *usecase.ShipmentUseCase
	Patients  *usecase.PatientUseCase
	Records   *usecase.RecordUseCase
	Reference *usecase.DrugReferenceUseCase
	Metrics   *metrics.HTTPServerMetrics

	RateLimitRPS   float64
	RateLimitBurst int
}

type Router struct {
	deps RouterDeps
}

func NewRouter(deps RouterDeps) *Router {
	return &Router{deps: deps}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.deps.Metrics != nil {
		mux.Handle("GET /metrics", rt.deps.Metrics.Handler())
	}

	mux.HandleFunc("POST /v1/auth/users", rt.signup)
	mux.HandleFunc("POST /v1/auth/sessions", rt.login)
	mux.HandleFunc("DELETE /v1/auth/sessions", rt.logout)

	protected := http.NewServeMux()
	protected.HandleFunc("GET /v1/auth/me", rt.profile)

	protected.HandleFunc("POST /v1/rxai/suggestions", rt.suggestMedication)
	protected.HandleFunc("POST /v1/rxai/classifications", rt.classifyImage)

	protected.HandleFunc("POST /v1/pharmanet/verifications", rt.verifyDrugAccess)
	protected.HandleFunc("GET /v1/pharmanet/trial-summaries/{id}", rt.trialSummary)
	protected.HandleFunc("GET /v1/pharmanet/drugs", rt.searchDrugs)
	protected.HandleFunc("GET /v1/pharmanet/drugs/{rxcui}", rt.drugProperties)

	protected.HandleFunc("GET /v1/medicines", rt.listMedicines)
	protected.HandleFunc("POST /v1/medicines", rt.createMedicine)
	protected.HandleFunc("GET /v1/medicines/{id}", rt.getMedicine)
	protected.HandleFunc("PUT /v1/medicines/{id}", rt.updateMedicine)
	protected.HandleFunc("DELETE /v1/medicines/{id}", rt.deleteMedicine)
	protected.HandleFunc("GET /v1/dashboard/metrics", rt.dashboardMetrics)

	protected.HandleFunc("GET /v1/shipments", rt.listShipments)
	protected.HandleFunc("POST /v1/shipments", rt.createShipment)
	protected.HandleFunc("GET /v1/shipments/{id}", rt.getShipment)
	protected.HandleFunc("PUT /v1/shipments/{id}", rt.updateShipment)
	protected.HandleFunc("POST /v1/shipments/{id}/tracking-events", rt.submitTrackingEvent)

	protected.HandleFunc("GET /v1/patients", rt.listPatients)
	protected.HandleFunc("POST /v1/patients", rt.createPatient)
	protected.HandleFunc("GET /v1/patients/{id}", rt.getPatient)
	protected.HandleFunc("PUT /v1/patients/{id}", rt.updatePatient)

	protected.HandleFunc("GET /v1/records", rt.listRecords)
	protected.HandleFunc("GET /v1/records/recent", rt.listRecentRecords)
	protected.HandleFunc("POST /v1/records", rt.createRecord)

	mux.Handle("/v1/", sessionMiddleware(rt.deps.Sessions, protected))

	var handler http.Handler = mux
	if rt.deps.Metrics != nil {
		handler = rt.deps.Metrics.Middleware("rxpilot-api", handler)
	}
	handler = rateLimitMiddleware(handler, rt.deps.RateLimitRPS, rt.deps.RateLimitBurst)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
