package trials

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

func TestGetTrial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		expr := r.URL.Query().Get("expr")
		if !strings.Contains(expr, "NCT01234567") {
			t.Errorf("expr = %q", expr)
		}
		_, _ = w.Write([]byte(`{
			"StudyFieldsResponse": {
				"NStudiesFound": 1,
				"StudyFields": [{
					"NCTId": ["NCT01234567"],
					"BriefTitle": ["Phase 3 Study of Drug X"],
					"BriefSummary": ["Evaluates Drug X."],
					"DetailedDescription": []
				}]
			}
		}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	study, err := client.GetTrial(context.Background(), "NCT01234567")
	if err != nil {
		t.Fatalf("GetTrial: %v", err)
	}
	if study.NCTID != "NCT01234567" || study.BriefTitle != "Phase 3 Study of Drug X" {
		t.Errorf("study = %+v", study)
	}
	if study.DetailedDescription != "" {
		t.Errorf("detailedDescription = %q", study.DetailedDescription)
	}
}

func TestGetTrialNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"StudyFieldsResponse": {"NStudiesFound": 0, "StudyFields": []}}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	_, err := client.GetTrial(context.Background(), "NCT00000000")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestGetTrialUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := New(server.URL, time.Second, nil)
	_, err := client.GetTrial(context.Background(), "NCT01234567")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("err = %v, want ErrTemporary", err)
	}
}
