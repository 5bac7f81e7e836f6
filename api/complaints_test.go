package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/mycity/intake/api"
	"github.com/mycity/intake/internal/notify"
	"github.com/mycity/intake/pkg/models"
	"github.com/mycity/intake/pkg/repository/mock"
)

type fakePhotoStore struct {
	SavedName string
	SavedData []byte
	Err       error
}

func (f *fakePhotoStore) SavePhoto(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.SavedName = originalName
	f.SavedData = data
	return "http://localhost:8080/uploads/fake.jpg", nil
}

type enqueueCall struct {
	Type    string
	Payload any
}

type fakeQueue struct {
	mu    sync.Mutex
	Calls []enqueueCall
	Err   error
}

func (f *fakeQueue) Enqueue(ctx context.Context, typ string, payload any, priority, maxAttempts int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return 0, f.Err
	}
	f.Calls = append(f.Calls, enqueueCall{Type: typ, Payload: payload})
	return int64(len(f.Calls)), nil
}

func multipartBody(t *testing.T, fields map[string]string, photo []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if photo != nil {
		fw, err := mw.CreateFormFile("photo", "pothole.jpg")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(photo); err != nil {
			t.Fatalf("write photo: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestSubmitComplaint(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]string
		photo      []byte
		storeErr   error
		wantStatus int
		check      func(t *testing.T, m *mock.Mocks, body []byte)
	}{
		{
			name:       "MissingDescription",
			fields:     map[string]string{"email": "a@b.c"},
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, m *mock.Mocks, body []byte) {
				if len(m.ComplaintRepo.Stored) != 0 {
					t.Fatalf("complaint stored despite bad request")
				}
			},
		},
		{
			name:       "BadLatitude",
			fields:     map[string]string{"description": "pothole", "lat": "abc"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "BadLongitude",
			fields:     map[string]string{"description": "pothole", "lng": "abc"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MinimalSuccess",
			fields:     map[string]string{"description": "broken streetlight"},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, body []byte) {
				var c models.Complaint
				if err := json.Unmarshal(body, &c); err != nil {
					t.Fatalf("unmarshal complaint: %v", err)
				}
				if c.ID == "" {
					t.Fatalf("empty complaint id")
				}
				if c.Status != models.StatusPending {
					t.Fatalf("expected status Pending, got %q", c.Status)
				}
				if c.Created == 0 {
					t.Fatalf("created timestamp not set")
				}
				if c.Updated != nil {
					t.Fatalf("updated set on fresh complaint")
				}
				if len(m.ComplaintRepo.Stored) != 1 {
					t.Fatalf("expected 1 stored complaint, got %d", len(m.ComplaintRepo.Stored))
				}
			},
		},
		{
			name: "WithCoordinatesAndEmail",
			fields: map[string]string{
				"description": "overflowing bin",
				"email":       "citizen@example.com",
				"lat":         "41.0082",
				"lng":         "28.9784",
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, body []byte) {
				var c models.Complaint
				if err := json.Unmarshal(body, &c); err != nil {
					t.Fatalf("unmarshal complaint: %v", err)
				}
				if c.Email != "citizen@example.com" {
					t.Fatalf("email not stored: %q", c.Email)
				}
				if c.Lat == nil || *c.Lat != 41.0082 {
					t.Fatalf("lat not stored: %v", c.Lat)
				}
				if c.Lng == nil || *c.Lng != 28.9784 {
					t.Fatalf("lng not stored: %v", c.Lng)
				}
			},
		},
		{
			name:       "WithPhoto",
			fields:     map[string]string{"description": "graffiti"},
			photo:      []byte("fake image bytes"),
			wantStatus: http.StatusOK,
			check: func(t *testing.T, m *mock.Mocks, body []byte) {
				var c models.Complaint
				if err := json.Unmarshal(body, &c); err != nil {
					t.Fatalf("unmarshal complaint: %v", err)
				}
				if !strings.Contains(c.PhotoURL, "/uploads/") {
					t.Fatalf("photo url not set: %q", c.PhotoURL)
				}
			},
		},
		{
			name:       "PhotoStoreFailure",
			fields:     map[string]string{"description": "graffiti"},
			photo:      []byte("fake image bytes"),
			storeErr:   errors.New("disk full"),
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, m *mock.Mocks, body []byte) {
				if len(m.ComplaintRepo.Stored) != 0 {
					t.Fatalf("complaint stored despite failed upload")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := mock.NewMocks()
			photos := &fakePhotoStore{Err: tt.storeErr}
			handler := api.NewComplaintsHandler(mocks.ComplaintRepo, photos, nil, 5<<20)

			body, contentType := multipartBody(t, tt.fields, tt.photo)
			req := httptest.NewRequest(http.MethodPost, "/api/complaints", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			handler.Submit(w, req)

			res := w.Result()
			defer res.Body.Close()
			data, _ := io.ReadAll(res.Body)
			if res.StatusCode != tt.wantStatus {
				t.Fatalf("expected status %d got %d body=%s", tt.wantStatus, res.StatusCode, string(data))
			}
			if tt.check != nil {
				tt.check(t, mocks, data)
			}
		})
	}
}

func TestGetComplaint(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.ComplaintRepo.Stored = []models.Complaint{
		{ID: "abc-123", Description: "noise", Status: models.StatusPending, Created: 1000},
	}
	handler := api.NewComplaintsHandler(mocks.ComplaintRepo, nil, nil, 0)

	t.Run("Found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/complaints/abc-123", nil)
		req = mux.SetURLVars(req, map[string]string{"id": "abc-123"})
		w := httptest.NewRecorder()

		handler.Get(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", w.Code)
		}
		var c models.Complaint
		if err := json.NewDecoder(w.Body).Decode(&c); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if c.ID != "abc-123" || c.Description != "noise" {
			t.Fatalf("wrong complaint returned: %+v", c)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/complaints/nope", nil)
		req = mux.SetURLVars(req, map[string]string{"id": "nope"})
		w := httptest.NewRecorder()

		handler.Get(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404 got %d", w.Code)
		}
	})
}

func TestListComplaintsCapAndOrder(t *testing.T) {
	mocks := mock.NewMocks()
	for i := 0; i < 120; i++ {
		mocks.ComplaintRepo.Stored = append(mocks.ComplaintRepo.Stored, models.Complaint{
			ID:          fmt.Sprintf("c-%03d", i),
			Description: "x",
			Status:      models.StatusPending,
			Created:     int64(1000 + i),
		})
	}
	handler := api.NewComplaintsHandler(mocks.ComplaintRepo, nil, nil, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/complaints", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var out []models.Complaint
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 100 {
		t.Fatalf("expected list capped at 100, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i-1].Created < out[i].Created {
			t.Fatalf("list not newest first at index %d", i)
		}
	}
	if out[0].ID != "c-119" {
		t.Fatalf("expected newest complaint first, got %s", out[0].ID)
	}
}

func TestListComplaintsEmpty(t *testing.T) {
	mocks := mock.NewMocks()
	handler := api.NewComplaintsHandler(mocks.ComplaintRepo, nil, nil, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/complaints", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Fatalf("expected empty JSON array, got %q", got)
	}
}

func TestListResolved(t *testing.T) {
	mocks := mock.NewMocks()
	u1, u2 := int64(2000), int64(3000)
	mocks.ComplaintRepo.Stored = []models.Complaint{
		{ID: "p-1", Status: models.StatusPending, Created: 1},
		{ID: "r-1", Status: models.StatusResolved, Created: 2, Updated: &u1},
		{ID: "r-2", Status: models.StatusResolved, Created: 3, Updated: &u2},
	}
	handler := api.NewComplaintsHandler(mocks.ComplaintRepo, nil, nil, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/resolved", nil)
	w := httptest.NewRecorder()

	handler.ListResolved(w, req)

	var out []models.Complaint
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 resolved complaints, got %d", len(out))
	}
	if out[0].ID != "r-2" || out[1].ID != "r-1" {
		t.Fatalf("resolved feed not ordered by update time: %s, %s", out[0].ID, out[1].ID)
	}
}

func TestUpdateStatus(t *testing.T) {
	newMocks := func() *mock.Mocks {
		m := mock.NewMocks()
		m.ComplaintRepo.Stored = []models.Complaint{
			{ID: "c-1", Description: "leak", Email: "citizen@example.com", Status: models.StatusPending, Created: 1000},
			{ID: "c-2", Description: "anon leak", Status: models.StatusPending, Created: 1001},
		}
		return m
	}

	t.Run("InvalidStatusRejected", func(t *testing.T) {
		mocks := newMocks()
		queue := &fakeQueue{}
		handler := api.NewComplaintsHandler(mocks.ComplaintRepo, nil, queue, 0)

		req := httptest.NewRequest(http.MethodPut, "/api/complaints/c-1/status",
			strings.NewReader(`{"status":"Closed"}`))
		req = mux.SetURLVars(req, map[string]string{"id": "c-1"})
		w := httptest.NewRecorder()

		handler.UpdateStatus(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", w.Code)
		}
		if mocks.ComplaintRepo.Stored[0].Status != models.StatusPending {
			t.Fatalf("status changed despite invalid input")
		}
		if len(queue.Calls) != 0 {
			t.Fatalf("notification queued despite rejected update")
		}
	})

	t.Run("MissingStatus", func(t *testing.T) {
		mocks := newMocks()
		handler := api.NewComplaintsHandler(mocks.ComplaintRepo, nil, nil, 0)

		req := httptest.NewRequest(http.MethodPut, "/api/complaints/c-1/status", strings.NewReader(`{}`))
		req = mux.SetURLVars(req, map[string]string{"id": "c-1"})
		w := httptest.NewRecorder()

		handler.UpdateStatus(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 got %d", w.Code)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		mocks := newMocks()
		handler := api.NewComplaintsHandler(mocks.ComplaintRepo, nil, nil, 0)

		req := httptest.NewRequest(http.MethodPut, "/api/complaints/nope/status",
			strings.NewReader(`{"status":"Resolved"}`))
		req = mux.SetURLVars(req, map[string]string{"id": "nope"})
		w := httptest.NewRecorder()

		handler.UpdateStatus(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404 got %d", w.Code)
		}
	})

	t.Run("SuccessQueuesNotification", func(t *testing.T) {
		mocks := newMocks()
		queue := &fakeQueue{}
		handler := api.NewComplaintsHandler(mocks.ComplaintRepo, nil, queue, 0)

		req := httptest.NewRequest(http.MethodPut, "/api/complaints/c-1/status",
			strings.NewReader(`{"status":"Resolved"}`))
		req = mux.SetURLVars(req, map[string]string{"id": "c-1"})
		w := httptest.NewRecorder()

		handler.UpdateStatus(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
		}
		var c models.Complaint
		if err := json.NewDecoder(w.Body).Decode(&c); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if c.Status != models.StatusResolved {
			t.Fatalf("expected Resolved, got %q", c.Status)
		}
		if c.Updated == nil {
			t.Fatalf("updated timestamp not set")
		}
		if len(queue.Calls) != 1 {
			t.Fatalf("expected 1 queued notification, got %d", len(queue.Calls))
		}
		call := queue.Calls[0]
		if call.Type != notify.JobTypeStatusChange {
			t.Fatalf("wrong job type %q", call.Type)
		}
		payload, ok := call.Payload.(notify.StatusChangePayload)
		if !ok {
			t.Fatalf("unexpected payload type %T", call.Payload)
		}
		if payload.Email != "citizen@example.com" || payload.Status != "Resolved" {
			t.Fatalf("wrong payload: %+v", payload)
		}
	})

	t.Run("NoEmailNoNotification", func(t *testing.T) {
		mocks := newMocks()
		queue := &fakeQueue{}
		handler := api.NewComplaintsHandler(mocks.ComplaintRepo, nil, queue, 0)

		req := httptest.NewRequest(http.MethodPut, "/api/complaints/c-2/status",
			strings.NewReader(`{"status":"In Progress"}`))
		req = mux.SetURLVars(req, map[string]string{"id": "c-2"})
		w := httptest.NewRecorder()

		handler.UpdateStatus(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d", w.Code)
		}
		if len(queue.Calls) != 0 {
			t.Fatalf("notification queued for complaint without email")
		}
	})

	t.Run("EnqueueFailureDoesNotFailRequest", func(t *testing.T) {
		mocks := newMocks()
		queue := &fakeQueue{Err: errors.New("queue down")}
		handler := api.NewComplaintsHandler(mocks.ComplaintRepo, nil, queue, 0)

		req := httptest.NewRequest(http.MethodPut, "/api/complaints/c-1/status",
			strings.NewReader(`{"status":"Resolved"}`))
		req = mux.SetURLVars(req, map[string]string{"id": "c-1"})
		w := httptest.NewRecorder()

		handler.UpdateStatus(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 despite enqueue failure, got %d", w.Code)
		}
	})
}
