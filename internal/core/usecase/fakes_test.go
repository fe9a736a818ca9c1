package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

// fakeInvoker returns a canned text per model id and records every call.
type fakeInvoker struct {
	responses map[string]string
	errs      map[string]error
	calls     []string
	images    []domain.InlineImage
}

func (f *fakeInvoker) Generate(_ context.Context, model, _ string) (string, error) {
	f.calls = append(f.calls, model)
	if err := f.errs[model]; err != nil {
		return "", err
	}
	text, ok := f.responses[model]
	if !ok {
		return "", fmt.Errorf("unexpected model %q", model)
	}
	return text, nil
}

func (f *fakeInvoker) GenerateWithImage(ctx context.Context, model, prompt string, image domain.InlineImage) (string, error) {
	f.images = append(f.images, image)
	return f.Generate(ctx, model, prompt)
}

type fakePatientStore struct {
	byName    map[string]*domain.Patient
	created   []*domain.Patient
	createErr error
	findErr   error
}

func (f *fakePatientStore) ListPatients(context.Context, string) ([]domain.Patient, error) {
	return nil, nil
}

func (f *fakePatientStore) GetPatient(_ context.Context, _, id string) (*domain.Patient, error) {
	for _, p := range f.byName {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get patient", fmt.Errorf("patient %s", id))
}

func (f *fakePatientStore) FindPatientByName(_ context.Context, _, name string) (*domain.Patient, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if p, ok := f.byName[name]; ok {
		return p, nil
	}
	return nil, domain.WrapError(domain.ErrNotFound, "find patient", fmt.Errorf("patient %q", name))
}

func (f *fakePatientStore) CreatePatient(_ context.Context, p *domain.Patient) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byName == nil {
		f.byName = map[string]*domain.Patient{}
	}
	f.byName[p.Name] = p
	f.created = append(f.created, p)
	return nil
}

func (f *fakePatientStore) UpdatePatient(context.Context, *domain.Patient) error { return nil }

type fakeRecordStore struct {
	records   []*domain.RecordEntry
	createErr error
}

func (f *fakeRecordStore) ListRecords(context.Context, string, string) ([]domain.RecordEntry, error) {
	out := make([]domain.RecordEntry, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRecordStore) ListRecentRecords(context.Context, string, int) ([]domain.RecordEntry, error) {
	return f.ListRecords(context.Background(), "", "")
}

func (f *fakeRecordStore) CreateRecord(_ context.Context, r *domain.RecordEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.records = append(f.records, r)
	return nil
}

type recordedPipeline struct {
	flow       string
	confidence *float64
	fallback   domain.FallbackOutcome
	failures   []string
}

func (r *recordedPipeline) PipelineCompleted(flow string, confidence *float64, fallback domain.FallbackOutcome) {
	r.flow = flow
	r.confidence = confidence
	r.fallback = fallback
}

func (r *recordedPipeline) PersistenceFailed(flow string) {
	r.failures = append(r.failures, flow)
}

type fakeMedicineStore struct {
	items map[string]*domain.Medicine
}

func (f *fakeMedicineStore) ListMedicines(context.Context, string) ([]domain.Medicine, error) {
	out := make([]domain.Medicine, 0, len(f.items))
	for _, m := range f.items {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeMedicineStore) GetMedicine(_ context.Context, _, id string) (*domain.Medicine, error) {
	if m, ok := f.items[id]; ok {
		copied := *m
		return &copied, nil
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get medicine", fmt.Errorf("medicine %s", id))
}

func (f *fakeMedicineStore) CreateMedicine(_ context.Context, m *domain.Medicine) error {
	if f.items == nil {
		f.items = map[string]*domain.Medicine{}
	}
	f.items[m.ID] = m
	return nil
}

func (f *fakeMedicineStore) UpdateMedicine(_ context.Context, m *domain.Medicine) error {
	if _, ok := f.items[m.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update medicine", fmt.Errorf("medicine %s", m.ID))
	}
	f.items[m.ID] = m
	return nil
}

func (f *fakeMedicineStore) DeleteMedicine(_ context.Context, _, id string) error {
	if _, ok := f.items[id]; !ok {
		return domain.WrapError(domain.ErrNotFound, "delete medicine", fmt.Errorf("medicine %s", id))
	}
	delete(f.items, id)
	return nil
}

type fakeShipmentStore struct {
	items map[string]*domain.Shipment
}

func (f *fakeShipmentStore) ListShipments(context.Context, string) ([]domain.Shipment, error) {
	out := make([]domain.Shipment, 0, len(f.items))
	for _, s := range f.items {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeShipmentStore) GetShipment(_ context.Context, _, id string) (*domain.Shipment, error) {
	if s, ok := f.items[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, domain.WrapError(domain.ErrNotFound, "get shipment", fmt.Errorf("shipment %s", id))
}

func (f *fakeShipmentStore) CreateShipment(_ context.Context, s *domain.Shipment) error {
	if f.items == nil {
		f.items = map[string]*domain.Shipment{}
	}
	f.items[s.ID] = s
	return nil
}

func (f *fakeShipmentStore) UpdateShipment(_ context.Context, s *domain.Shipment) error {
	if _, ok := f.items[s.ID]; !ok {
		return domain.WrapError(domain.ErrNotFound, "update shipment", fmt.Errorf("shipment %s", s.ID))
	}
	f.items[s.ID] = s
	return nil
}

type fakeTrackingQueue struct {
	published []domain.TrackingEvent
	err       error
}

func (f *fakeTrackingQueue) PublishTrackingEvent(_ context.Context, event domain.TrackingEvent) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, event)
	return nil
}

func (f *fakeTrackingQueue) SubscribeTrackingEvents(context.Context, func(context.Context, domain.TrackingEvent) error) error {
	return nil
}

func floatPtr(v float64) *float64 { return &v }

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
}
