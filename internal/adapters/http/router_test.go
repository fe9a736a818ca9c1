package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
	"github.com/mzheleznov/rxpilot/internal/core/usecase"
	"github.com/mzheleznov/rxpilot/internal/infrastructure/auth"
)

const testSessionSecret = "0123456789abcdef0123456789abcdef"

type stubInvoker struct {
	responses map[string]string
}

func (s *stubInvoker) Generate(_ context.Context, model, _ string) (string, error) {
	answer, ok := s.responses[model]
	if !ok {
		return "", fmt.Errorf("no canned answer for model %s", model)
	}
	return answer, nil
}

func (s *stubInvoker) GenerateWithImage(ctx context.Context, model, prompt string, _ domain.InlineImage) (string, error) {
	return s.Generate(ctx, model, prompt)
}

type memUserStore struct {
	byEmail map[string]*domain.User
	byID    map[string]*domain.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{byEmail: map[string]*domain.User{}, byID: map[string]*domain.User{}}
}

func (s *memUserStore) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("user %s not found", email))
	}
	return user, nil
}

func (s *memUserStore) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("user %s not found", id))
	}
	return user, nil
}

func (s *memUserStore) CreateUser(_ context.Context, user *domain.User) error {
	s.byEmail[user.Email] = user
	s.byID[user.ID] = user
	return nil
}

type memMedicineStore struct {
	items map[string]*domain.Medicine
}

func (s *memMedicineStore) ListMedicines(_ context.Context, clinicID string) ([]domain.Medicine, error) {
	var out []domain.Medicine
	for _, m := range s.items {
		if m.ClinicID == clinicID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *memMedicineStore) GetMedicine(_ context.Context, clinicID, medicineID string) (*domain.Medicine, error) {
	m, ok := s.items[medicineID]
	if !ok || m.ClinicID != clinicID {
		return nil, domain.WrapError(domain.ErrNotFound, "get medicine", fmt.Errorf("medicine %s not found", medicineID))
	}
	copied := *m
	return &copied, nil
}

func (s *memMedicineStore) CreateMedicine(_ context.Context, medicine *domain.Medicine) error {
	copied := *medicine
	s.items[medicine.ID] = &copied
	return nil
}

func (s *memMedicineStore) UpdateMedicine(_ context.Context, medicine *domain.Medicine) error {
	if _, ok := s.items[medicine.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update medicine", fmt.Errorf("medicine %s not found", medicine.ID))
	}
	copied := *medicine
	s.items[medicine.ID] = &copied
	return nil
}

func (s *memMedicineStore) DeleteMedicine(_ context.Context, clinicID, medicineID string) error {
	m, ok := s.items[medicineID]
	if !ok || m.ClinicID != clinicID {
		return domain.WrapError(domain.ErrNotFound, "delete medicine", fmt.Errorf("medicine %s not found", medicineID))
	}
	delete(s.items, medicineID)
	return nil
}

type memShipmentStore struct {
	items map[string]*domain.Shipment
}

func (s *memShipmentStore) ListShipments(_ context.Context, clinicID string) ([]domain.Shipment, error) {
	var out []domain.Shipment
	for _, sh := range s.items {
		if sh.ClinicID == clinicID {
			out = append(out, *sh)
		}
	}
	return out, nil
}

func (s *memShipmentStore) GetShipment(_ context.Context, clinicID, shipmentID string) (*domain.Shipment, error) {
	sh, ok := s.items[shipmentID]
	if !ok || sh.ClinicID != clinicID {
		return nil, domain.WrapError(domain.ErrNotFound, "get shipment", fmt.Errorf("shipment %s not found", shipmentID))
	}
	copied := *sh
	return &copied, nil
}

func (s *memShipmentStore) CreateShipment(_ context.Context, shipment *domain.Shipment) error {
	copied := *shipment
	s.items[shipment.ID] = &copied
	return nil
}

func (s *memShipmentStore) UpdateShipment(_ context.Context, shipment *domain.Shipment) error {
	copied := *shipment
	s.items[shipment.ID] = &copied
	return nil
}

type memPatientStore struct {
	items map[string]*domain.Patient
}

func (s *memPatientStore) ListPatients(_ context.Context, clinicID string) ([]domain.Patient, error) {
	var out []domain.Patient
	for _, p := range s.items {
		if p.ClinicID == clinicID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *memPatientStore) GetPatient(_ context.Context, clinicID, patientID string) (*domain.Patient, error) {
	p, ok := s.items[patientID]
	if !ok || p.ClinicID != clinicID {
		return nil, domain.WrapError(domain.ErrNotFound, "get patient", fmt.Errorf("patient %s not found", patientID))
	}
	copied := *p
	return &copied, nil
}

func (s *memPatientStore) FindPatientByName(_ context.Context, clinicID, name string) (*domain.Patient, error) {
	for _, p := range s.items {
		if p.ClinicID == clinicID && strings.EqualFold(p.Name, name) {
			copied := *p
			return &copied, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "find patient", fmt.Errorf("patient %s not found", name))
}

func (s *memPatientStore) CreatePatient(_ context.Context, patient *domain.Patient) error {
	copied := *patient
	s.items[patient.ID] = &copied
	return nil
}

func (s *memPatientStore) UpdatePatient(_ context.Context, patient *domain.Patient) error {
	copied := *patient
	s.items[patient.ID] = &copied
	return nil
}

type memRecordStore struct {
	records   []domain.RecordEntry
	createErr error
}

func (s *memRecordStore) ListRecords(_ context.Context, clinicID, patientID string) ([]domain.RecordEntry, error) {
	var out []domain.RecordEntry
	for _, rec := range s.records {
		if rec.ClinicID == clinicID && rec.PatientID == patientID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *memRecordStore) ListRecentRecords(_ context.Context, clinicID string, limit int) ([]domain.RecordEntry, error) {
	var out []domain.RecordEntry
	for _, rec := range s.records {
		if rec.ClinicID == clinicID {
			out = append(out, rec)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memRecordStore) CreateRecord(_ context.Context, record *domain.RecordEntry) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.records = append(s.records, *record)
	return nil
}

type stubQueue struct {
	published []domain.TrackingEvent
}

func (q *stubQueue) PublishTrackingEvent(_ context.Context, event domain.TrackingEvent) error {
	q.published = append(q.published, event)
	return nil
}

func (q *stubQueue) SubscribeTrackingEvents(context.Context, func(context.Context, domain.TrackingEvent) error) error {
	return nil
}

type stubDirectory struct {
	concepts   []domain.DrugConcept
	properties *domain.DrugProperties
}

func (d *stubDirectory) SearchDrugs(context.Context, string) ([]domain.DrugConcept, error) {
	return d.concepts, nil
}

func (d *stubDirectory) GetDrugProperties(_ context.Context, rxcui string) (*domain.DrugProperties, error) {
	if d.properties == nil {
		return nil, domain.WrapError(domain.ErrNotFound, "drug properties", fmt.Errorf("rxcui %s not found", rxcui))
	}
	return d.properties, nil
}

type stubRegistry struct {
	study *domain.TrialStudy
}

func (r *stubRegistry) GetTrial(_ context.Context, trialID string) (*domain.TrialStudy, error) {
	if r.study == nil {
		return nil, domain.WrapError(domain.ErrNotFound, "get trial", fmt.Errorf("trial %s not found", trialID))
	}
	return r.study, nil
}

type stubSuggestionService struct {
	outcome      *domain.SuggestionOutcome
	gotPrincipal domain.Principal
}

func (s *stubSuggestionService) Suggest(_ context.Context, principal domain.Principal, _ domain.SuggestionRequest) (*domain.SuggestionOutcome, error) {
	s.gotPrincipal = principal
	return s.outcome, nil
}

type routerFixture struct {
	handler   http.Handler
	sessions  *auth.SessionManager
	users     *memUserStore
	medicines *memMedicineStore
	shipments *memShipmentStore
	patients  *memPatientStore
	records   *memRecordStore
	queue     *stubQueue
	invoker   *stubInvoker
}

const (
	testPrimaryModel  = "med-primary"
	testFallbackModel = "med-fallback"
)

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	sessions, err := auth.NewSessionManager(testSessionSecret, time.Hour)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	fixture := &routerFixture{
		sessions:  sessions,
		users:     newMemUserStore(),
		medicines: &memMedicineStore{items: map[string]*domain.Medicine{}},
		shipments: &memShipmentStore{items: map[string]*domain.Shipment{}},
		patients:  &memPatientStore{items: map[string]*domain.Patient{}},
		records:   &memRecordStore{},
		queue:     &stubQueue{},
		invoker:   &stubInvoker{responses: map[string]string{}},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	orchestrator := usecase.NewOrchestrator(fixture.invoker, usecase.PipelineConfig{
		PrimaryModel:  testPrimaryModel,
		FallbackModel: testFallbackModel,
	}, nil)

	router := NewRouter(RouterDeps{
		Auth:     usecase.NewAuthUseCase(fixture.users),
		Sessions: sessions,
		Suggest:  usecase.NewSuggestMedicationUseCase(orchestrator, fixture.patients, fixture.records, logger, nil),
		Classify: usecase.NewClassifyImageUseCase(orchestrator),
		Verify:   usecase.NewVerifyDrugAccessUseCase(orchestrator),
		Trials: usecase.NewSummarizeTrialUseCase(&stubRegistry{study: &domain.TrialStudy{
			NCTID:        "NCT01234567",
			BriefTitle:   "Insulin Cold Chain Study",
			BriefSummary: "Evaluates cold chain handling.",
		}}, fixture.invoker, testPrimaryModel),
		Inventory: usecase.NewInventoryUseCase(fixture.medicines, fixture.shipments),
		Shipments: usecase.NewShipmentUseCase(fixture.shipments, fixture.medicines, fixture.queue, logger),
		Patients:  usecase.NewPatientUseCase(fixture.patients),
		Records:   usecase.NewRecordUseCase(fixture.patients, fixture.records),
		Reference: usecase.NewDrugReferenceUseCase(&stubDirectory{concepts: []domain.DrugConcept{
			{RxCUI: "1191", Name: "aspirin"},
		}}, nil, time.Minute, logger),
	})
	fixture.handler = router.Handler()
	return fixture
}

func (f *routerFixture) authCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token, err := f.sessions.Issue(&domain.User{
		ID:       "user-1",
		ClinicID: "clinic-1",
		Role:     domain.RoleUser,
	})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return &http.Cookie{Name: auth.SessionCookieName, Value: token}
}

func (f *routerFixture) do(t *testing.T, method, target string, body []byte, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)
	return res
}

func decodeEnvelope(t *testing.T, res *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func dataAsMap(t *testing.T, env envelope) map[string]any {
	t.Helper()
	m, ok := env.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %T", env.Data)
	}
	return m
}

func TestHealthz(t *testing.T) {
	fixture := newRouterFixture(t)
	res := fixture.do(t, http.MethodGet, "/healthz", nil, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	fixture := newRouterFixture(t)

	res := fixture.do(t, http.MethodGet, "/v1/medicines", nil, nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without cookie, got %d", res.Code)
	}
	env := decodeEnvelope(t, res)
	if env.Success {
		t.Fatalf("expected success=false for unauthorized response")
	}

	res = fixture.do(t, http.MethodGet, "/v1/medicines", nil, &http.Cookie{
		Name:  auth.SessionCookieName,
		Value: "not-a-token",
	})
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", res.Code)
	}
}

func TestSignupLoginProfileFlow(t *testing.T) {
	fixture := newRouterFixture(t)

	signupBody, _ := json.Marshal(map[string]string{
		"fullName": "Dr. Lee",
		"email":    "dr.lee@clinic.test",
		"password": "s3cret!",
		"clinicId": "clinic-1",
	})
	res := fixture.do(t, http.MethodPost, "/v1/auth/users", signupBody, nil)
	if res.Code != http.StatusCreated {
		t.Fatalf("signup expected 201, got %d: %s", res.Code, res.Body.String())
	}

	loginBody, _ := json.Marshal(map[string]string{
		"email":    "Dr.Lee@clinic.test",
		"password": "s3cret!",
	})
	res = fixture.do(t, http.MethodPost, "/v1/auth/sessions", loginBody, nil)
	if res.Code != http.StatusOK {
		t.Fatalf("login expected 200, got %d: %s", res.Code, res.Body.String())
	}

	var sessionCookie *http.Cookie
	for _, cookie := range res.Result().Cookies() {
		if cookie.Name == auth.SessionCookieName {
			sessionCookie = cookie
		}
	}
	if sessionCookie == nil || sessionCookie.Value == "" {
		t.Fatalf("expected session cookie in login response")
	}
	if !sessionCookie.HttpOnly {
		t.Fatalf("expected HttpOnly session cookie")
	}

	res = fixture.do(t, http.MethodGet, "/v1/auth/me", nil, sessionCookie)
	if res.Code != http.StatusOK {
		t.Fatalf("profile expected 200, got %d: %s", res.Code, res.Body.String())
	}
	profile := dataAsMap(t, decodeEnvelope(t, res))
	if profile["email"] != "dr.lee@clinic.test" {
		t.Fatalf("unexpected profile email: %v", profile["email"])
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	fixture := newRouterFixture(t)

	signupBody, _ := json.Marshal(map[string]string{
		"fullName": "Dr. Lee",
		"email":    "dr.lee@clinic.test",
		"password": "s3cret!",
		"clinicId": "clinic-1",
	})
	fixture.do(t, http.MethodPost, "/v1/auth/users", signupBody, nil)

	loginBody, _ := json.Marshal(map[string]string{
		"email":    "dr.lee@clinic.test",
		"password": "wrong",
	})
	res := fixture.do(t, http.MethodPost, "/v1/auth/sessions", loginBody, nil)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad password, got %d", res.Code)
	}
}

func TestMedicineCRUDOverHTTP(t *testing.T) {
	fixture := newRouterFixture(t)
	cookie := fixture.authCookie(t)

	createBody, _ := json.Marshal(map[string]any{
		"name":         "Amoxicillin",
		"manufacturer": "Medley Pharma",
		"batchNo":      "AMX-2026-01",
		"quantity":     120,
		"expiryDate":   "2026-12-31",
	})
	res := fixture.do(t, http.MethodPost, "/v1/medicines", createBody, cookie)
	if res.Code != http.StatusCreated {
		t.Fatalf("create expected 201, got %d: %s", res.Code, res.Body.String())
	}
	created := dataAsMap(t, decodeEnvelope(t, res))
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("expected generated medicine id")
	}

	res = fixture.do(t, http.MethodGet, "/v1/medicines/"+id, nil, cookie)
	if res.Code != http.StatusOK {
		t.Fatalf("get expected 200, got %d", res.Code)
	}

	res = fixture.do(t, http.MethodGet, "/v1/medicines", nil, cookie)
	if res.Code != http.StatusOK {
		t.Fatalf("list expected 200, got %d", res.Code)
	}

	res = fixture.do(t, http.MethodDelete, "/v1/medicines/"+id, nil, cookie)
	if res.Code != http.StatusOK {
		t.Fatalf("delete expected 200, got %d", res.Code)
	}

	res = fixture.do(t, http.MethodGet, "/v1/medicines/"+id, nil, cookie)
	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", res.Code)
	}
}

func TestSubmitTrackingEventScopesToSession(t *testing.T) {
	fixture := newRouterFixture(t)
	cookie := fixture.authCookie(t)

	body, _ := json.Marshal(map[string]any{
		"clinicId":   "someone-elses-clinic",
		"shipmentId": "spoofed",
		"status":     "In Transit",
	})
	res := fixture.do(t, http.MethodPost, "/v1/shipments/ship-1/tracking-events", body, cookie)
	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}

	if len(fixture.queue.published) != 1 {
		t.Fatalf("expected 1 published event, got %d", len(fixture.queue.published))
	}
	event := fixture.queue.published[0]
	if event.ClinicID != "clinic-1" {
		t.Fatalf("expected clinic id from session, got %q", event.ClinicID)
	}
	if event.ShipmentID != "ship-1" {
		t.Fatalf("expected shipment id from path, got %q", event.ShipmentID)
	}
}

func TestSuggestionEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)
	cookie := fixture.authCookie(t)

	fixture.invoker.responses[testPrimaryModel] = "```json\n" + `{
		"drugClass": "Antipyretic",
		"recommendedMedications": [{"name": "Paracetamol", "dosage": "500mg", "frequency": "q6h", "duration": "3 days"}],
		"sideEffects": ["nausea"],
		"interactions": [],
		"followUp": "Return if fever persists.",
		"confidence": 85,
		"secondOpinionNeeded": false
	}` + "\n```"

	body, _ := json.Marshal(map[string]any{
		"name":     "Jane Doe",
		"age":      34,
		"symptoms": "fever and headache",
	})
	res := fixture.do(t, http.MethodPost, "/v1/rxai/suggestions", body, cookie)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}

	data := dataAsMap(t, decodeEnvelope(t, res))
	suggestion, ok := data["suggestion"].(map[string]any)
	if !ok {
		t.Fatalf("expected suggestion object, got %T", data["suggestion"])
	}
	if suggestion["drugClass"] != "Antipyretic" {
		t.Fatalf("unexpected drug class: %v", suggestion["drugClass"])
	}
	if len(fixture.records.records) != 1 {
		t.Fatalf("expected one persisted record, got %d", len(fixture.records.records))
	}
}

func TestSuggestionRouteForwardsSessionPrincipal(t *testing.T) {
	sessions, err := auth.NewSessionManager(testSessionSecret, time.Hour)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	service := &stubSuggestionService{outcome: &domain.SuggestionOutcome{
		Suggestion: domain.SuggestionResult{DrugClass: "Antipyretic"},
	}}
	handler := NewRouter(RouterDeps{Sessions: sessions, Suggest: service}).Handler()

	token, err := sessions.Issue(&domain.User{ID: "user-1", ClinicID: "clinic-1", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	body, _ := json.Marshal(map[string]any{"name": "Jane Doe", "age": 34, "symptoms": "fever"})
	req := httptest.NewRequest(http.MethodPost, "/v1/rxai/suggestions", bytes.NewReader(body))
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if service.gotPrincipal.ClinicID != "clinic-1" {
		t.Fatalf("expected clinic-1 principal, got %q", service.gotPrincipal.ClinicID)
	}
	data := dataAsMap(t, decodeEnvelope(t, res))
	suggestion, ok := data["suggestion"].(map[string]any)
	if !ok || suggestion["drugClass"] != "Antipyretic" {
		t.Fatalf("unexpected suggestion payload: %v", data["suggestion"])
	}
}

func TestSuggestionEndpointReturnsOKWhenRecordWriteFails(t *testing.T) {
	fixture := newRouterFixture(t)
	cookie := fixture.authCookie(t)

	fixture.records.createErr = domain.WrapError(domain.ErrTemporary, "create record",
		fmt.Errorf("connection reset by peer"))
	fixture.invoker.responses[testPrimaryModel] = "```json\n" + `{
		"drugClass": "Antipyretic",
		"recommendedMedications": [{"name": "Paracetamol", "dosage": "500mg", "frequency": "q6h", "duration": "3 days"}],
		"sideEffects": [],
		"interactions": [],
		"followUp": "Return if fever persists.",
		"confidence": 90,
		"secondOpinionNeeded": false
	}` + "\n```"

	body, _ := json.Marshal(map[string]any{
		"name":     "Jane Doe",
		"age":      34,
		"symptoms": "fever and headache",
	})
	res := fixture.do(t, http.MethodPost, "/v1/rxai/suggestions", body, cookie)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 despite record write failure, got %d: %s", res.Code, res.Body.String())
	}

	env := decodeEnvelope(t, res)
	if !env.Success {
		t.Fatalf("expected success=true, got %s", res.Body.String())
	}
	data := dataAsMap(t, env)
	if _, ok := data["suggestion"].(map[string]any); !ok {
		t.Fatalf("expected suggestion object, got %T", data["suggestion"])
	}
	if recordID, ok := data["recordId"]; ok {
		t.Fatalf("expected recordId to be omitted, got %v", recordID)
	}
	if len(fixture.records.records) != 0 {
		t.Fatalf("expected no persisted records, got %d", len(fixture.records.records))
	}
}

func TestSuggestionValidation(t *testing.T) {
	fixture := newRouterFixture(t)
	cookie := fixture.authCookie(t)

	body, _ := json.Marshal(map[string]any{"name": "", "age": 34, "symptoms": "fever"})
	res := fixture.do(t, http.MethodPost, "/v1/rxai/suggestions", body, cookie)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %d", res.Code)
	}
}

func TestClassificationRequiresImageField(t *testing.T) {
	fixture := newRouterFixture(t)
	cookie := fixture.authCookie(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	_ = form.WriteField("note", "no image here")
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/rxai/classifications", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.AddCookie(cookie)
	res := httptest.NewRecorder()
	fixture.handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without image field, got %d", res.Code)
	}
}

func TestClassificationEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)
	cookie := fixture.authCookie(t)

	fixture.invoker.responses[testPrimaryModel] = `{
		"classification": "Contact Dermatitis",
		"confidence": 78,
		"differentialDiagnosis": ["eczema"],
		"recommendations": ["topical steroid"]
	}`

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, err := form.CreateFormFile("image", "rash.jpg")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write([]byte{0xff, 0xd8, 0xff, 0xe0})
	_ = form.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/rxai/classifications", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.AddCookie(cookie)
	res := httptest.NewRecorder()
	fixture.handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	data := dataAsMap(t, decodeEnvelope(t, res))
	classification, ok := data["classification"].(map[string]any)
	if !ok {
		t.Fatalf("expected classification object, got %T", data["classification"])
	}
	if classification["classification"] != "Contact Dermatitis" {
		t.Fatalf("unexpected classification: %v", classification["classification"])
	}
}

func TestDrugSearchEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)
	cookie := fixture.authCookie(t)

	res := fixture.do(t, http.MethodGet, "/v1/pharmanet/drugs?name=aspirin", nil, cookie)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	env := decodeEnvelope(t, res)
	concepts, ok := env.Data.([]any)
	if !ok || len(concepts) != 1 {
		t.Fatalf("expected one concept, got %v", env.Data)
	}
}

func TestTrialSummaryEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)
	cookie := fixture.authCookie(t)

	fixture.invoker.responses[testPrimaryModel] = "This study looks at how insulin survives shipping."

	res := fixture.do(t, http.MethodGet, "/v1/pharmanet/trial-summaries/NCT01234567", nil, cookie)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	data := dataAsMap(t, decodeEnvelope(t, res))
	if data["trialId"] != "NCT01234567" {
		t.Fatalf("unexpected trial id: %v", data["trialId"])
	}
	if data["summary"] == "" {
		t.Fatalf("expected non-empty summary")
	}
}

func TestVerificationEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)
	cookie := fixture.authCookie(t)

	fixture.invoker.responses[testPrimaryModel] = `{"verified": true, "reason": "licensed clinician session"}`

	body, _ := json.Marshal(map[string]string{"drugName": "oxycodone", "rxcui": "7804"})
	res := fixture.do(t, http.MethodPost, "/v1/pharmanet/verifications", body, cookie)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	data := dataAsMap(t, decodeEnvelope(t, res))
	if data["verified"] != true {
		t.Fatalf("expected verified=true, got %v", data["verified"])
	}
}

func TestVerificationHandlerRejectsMissingPrincipal(t *testing.T) {
	rt := NewRouter(RouterDeps{})

	body, _ := json.Marshal(map[string]string{"drugName": "oxycodone"})
	req := httptest.NewRequest(http.MethodPost, "/v1/pharmanet/verifications", bytes.NewReader(body))
	res := httptest.NewRecorder()
	rt.verifyDrugAccess(res, req)

	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without principal, got %d", res.Code)
	}
}

func TestCreateRecordEndpoint(t *testing.T) {
	fixture := newRouterFixture(t)
	cookie := fixture.authCookie(t)

	body, _ := json.Marshal(map[string]any{
		"patientName": "John Smith",
		"patientAge":  42,
		"drugClass":   "Analgesic",
		"dosage":      "400mg",
		"confidence":  81,
		"symptoms":    "back pain",
	})
	res := fixture.do(t, http.MethodPost, "/v1/records", body, cookie)
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", res.Code, res.Body.String())
	}
	data := dataAsMap(t, decodeEnvelope(t, res))
	if data["recordId"] == "" || data["patientId"] == "" {
		t.Fatalf("expected record and patient ids, got %v", data)
	}

	patientID, _ := data["patientId"].(string)
	res = fixture.do(t, http.MethodGet, "/v1/records?patientId="+patientID, nil, cookie)
	if res.Code != http.StatusOK {
		t.Fatalf("list records expected 200, got %d", res.Code)
	}
}

func TestListRecordsRequiresPatientID(t *testing.T) {
	fixture := newRouterFixture(t)
	cookie := fixture.authCookie(t)

	res := fixture.do(t, http.MethodGet, "/v1/records", nil, cookie)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without patientId, got %d", res.Code)
	}
}
