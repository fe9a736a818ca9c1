package rxnorm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

func TestSearchDrugsParsesConceptGroups(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/drugs.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("name"); got != "aspirin" {
			t.Errorf("name = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"drugGroup": {
				"conceptGroup": [
					{"tty": "SBD"},
					{"tty": "SCD", "conceptProperties": [
						{"rxcui": "1191", "name": "aspirin 325 MG Oral Tablet", "synonym": "", "tty": "SCD"},
						{"rxcui": "1293", "name": "aspirin 81 MG Oral Tablet", "synonym": "baby aspirin", "tty": "SCD"}
					]}
				]
			}
		}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	concepts, err := client.SearchDrugs(context.Background(), "aspirin")
	if err != nil {
		t.Fatalf("SearchDrugs: %v", err)
	}
	if len(concepts) != 2 {
		t.Fatalf("concepts = %+v", concepts)
	}
	if concepts[0].RxCUI != "1191" || concepts[1].Synonym != "baby aspirin" {
		t.Errorf("concepts = %+v", concepts)
	}
}

func TestSearchDrugsEmptyGroup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"drugGroup": {"name": "nonexistent"}}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	concepts, err := client.SearchDrugs(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("SearchDrugs: %v", err)
	}
	if len(concepts) != 0 {
		t.Errorf("concepts = %+v", concepts)
	}
}

func TestGetDrugProperties(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rxcui/1191/properties.json" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"properties": {"rxcui": "1191", "name": "aspirin", "tty": "IN", "language": "ENG"}}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	props, err := client.GetDrugProperties(context.Background(), "1191")
	if err != nil {
		t.Fatalf("GetDrugProperties: %v", err)
	}
	if props.Name != "aspirin" || props.TermType != "IN" {
		t.Errorf("props = %+v", props)
	}
}

func TestGetDrugPropertiesUnknownRxCUI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// RxNav returns 200 with an empty object for unknown ids.
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	_, err := client.GetDrugProperties(context.Background(), "0")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetDrugPropertiesServerErrorIsTemporary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	_, err := client.GetDrugProperties(context.Background(), "1191")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("err = %v, want ErrTemporary", err)
	}
}
