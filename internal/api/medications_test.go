package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/avavoice/ava-server/internal/domain"
)

func newMedicationServer(t *testing.T) (*httptest.Server, *fakeRepo) {
	t.Helper()
	repo := newFakeRepo()
	h := NewMedicationHandler(NewHandler(repo, testUserID))
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, repo
}

func createMedication(t *testing.T, srv *httptest.Server, name string) domain.Medication {
	t.Helper()
	resp := postJSON(t, srv.URL+"/api/medications", map[string]interface{}{
		"name":            name,
		"dosage":          "500mg",
		"frequency":       "daily",
		"medication_time": "08:00",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var med domain.Medication
	decodeEnvelope(t, resp, &med)
	return med
}

func TestMedicationCreateAndGet(t *testing.T) {
	srv, _ := newMedicationServer(t)

	med := createMedication(t, srv, "Metformin")
	if med.ID == "" {
		t.Fatal("expected a generated medication ID")
	}
	if med.UserID != testUserID {
		t.Errorf("user_id = %q, want default user", med.UserID)
	}
	if !med.IsActive {
		t.Error("new medication should be active")
	}

	resp, err := http.Get(srv.URL + "/api/medications/" + med.ID)
	if err != nil {
		t.Fatal(err)
	}
	var got domain.Medication
	decodeEnvelope(t, resp, &got)
	if got.Name != "Metformin" {
		t.Errorf("name = %q", got.Name)
	}
}

func TestMedicationCreateRequiresName(t *testing.T) {
	srv, _ := newMedicationServer(t)

	resp := postJSON(t, srv.URL+"/api/medications", map[string]string{"dosage": "500mg"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestMedicationGetUnknown(t *testing.T) {
	srv, _ := newMedicationServer(t)

	resp, err := http.Get(srv.URL + "/api/medications/missing")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestMedicationListSkipsDeactivated(t *testing.T) {
	srv, _ := newMedicationServer(t)

	keep := createMedication(t, srv, "Metformin")
	drop := createMedication(t, srv, "Aspirin")

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/medications/"+drop.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deactivate status = %d, want 200", resp.StatusCode)
	}

	listResp, err := http.Get(srv.URL + "/api/medications")
	if err != nil {
		t.Fatal(err)
	}
	var meds []domain.Medication
	decodeEnvelope(t, listResp, &meds)
	if len(meds) != 1 || meds[0].ID != keep.ID {
		t.Errorf("active medications = %+v", meds)
	}
}

func TestMedicationUpdate(t *testing.T) {
	srv, _ := newMedicationServer(t)

	med := createMedication(t, srv, "Metformin")
	url := srv.URL + "/api/medications/" + med.ID

	resp := putJSON(t, url, map[string]interface{}{
		"name":            "Metformin XR",
		"dosage":          "1000mg",
		"frequency":       "daily",
		"medication_time": "20:00",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, want 200", resp.StatusCode)
	}
	var updated domain.Medication
	decodeEnvelope(t, resp, &updated)
	if updated.Name != "Metformin XR" || updated.Dosage != "1000mg" {
		t.Errorf("updated = %+v", updated)
	}
}

func TestMedicationLogLifecycle(t *testing.T) {
	srv, _ := newMedicationServer(t)

	med := createMedication(t, srv, "Metformin")

	resp := postJSON(t, srv.URL+"/api/medications/"+med.ID+"/logs", map[string]string{
		"scheduled_time": "08:00",
		"status":         domain.MedicationTaken,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("log status = %d, want 201", resp.StatusCode)
	}
	resp.Body.Close()

	badResp := postJSON(t, srv.URL+"/api/medications/"+med.ID+"/logs", map[string]string{
		"scheduled_time": "08:00",
		"status":         "forgotten",
	})
	if badResp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid status code = %d, want 400", badResp.StatusCode)
	}
	badResp.Body.Close()

	listResp, err := http.Get(srv.URL + "/api/medications/" + med.ID + "/logs")
	if err != nil {
		t.Fatal(err)
	}
	var logs []domain.MedicationLog
	decodeEnvelope(t, listResp, &logs)
	if len(logs) != 1 || logs[0].Status != domain.MedicationTaken {
		t.Errorf("logs = %+v", logs)
	}
}
