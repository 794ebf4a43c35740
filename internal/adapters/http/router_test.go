package httpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stephanofer/atlas/internal/auth"
	"github.com/stephanofer/atlas/internal/core/domain"
)

type fileStoreFake struct {
	validSig string
	content  string
	openErr  error
}

func (f *fileStoreFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}

func (f *fileStoreFake) VerifySignature(_ string, expires int64, sig string) bool {
	return time.Now().Unix() <= expires && sig == f.validSig
}

type notificationServiceFake struct {
	list       []domain.Notification
	listErr    error
	markedID   string
	markedUser string
}

func (f *notificationServiceFake) ListNotifications(_ context.Context, _, _ string, _ bool) ([]domain.Notification, error) {
	return f.list, f.listErr
}

func (f *notificationServiceFake) MarkNotificationRead(_ context.Context, _, userID, notificationID string) error {
	f.markedID = notificationID
	f.markedUser = userID
	return nil
}

func testSessions(t *testing.T) *auth.SessionManager {
	t.Helper()
	m, err := auth.NewSessionManager("router-test-secret", time.Hour, nil, nil)
	if err != nil {
		t.Fatalf("NewSessionManager() error = %v", err)
	}
	return m
}

// testToken signs a session token with the shared test secret so
// handlers behind the auth middleware can be exercised without a
// credential store.
func testToken(t *testing.T) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":  "user-1",
		"cid":  "comp-1",
		"role": "admin",
		"aid":  "area-legal",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("router-test-secret"))
	if err != nil {
		t.Fatalf("sign test token: %v", err)
	}
	return token
}

func newTestRouter(t *testing.T, notifications *notificationServiceFake, files *fileStoreFake) http.Handler {
	t.Helper()
	rt := NewRouter(nil, nil, nil, nil, nil, nil, nil, nil, notifications,
		testSessions(t), files, nil, Options{})
	return rt.Handler()
}

func TestHealthz(t *testing.T) {
	handler := newTestRouter(t, &notificationServiceFake{}, &fileStoreFake{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}

func TestProtectedRouteRejectsMissingToken(t *testing.T) {
	handler := newTestRouter(t, &notificationServiceFake{}, &fileStoreFake{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/notifications", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestProtectedRouteRejectsForgedToken(t *testing.T) {
	handler := newTestRouter(t, &notificationServiceFake{}, &fileStoreFake{})

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1", "cid": "comp-1", "role": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("otro-secreto"))
	if err != nil {
		t.Fatalf("sign forged token: %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestListNotificationsWithValidToken(t *testing.T) {
	notifications := &notificationServiceFake{list: []domain.Notification{
		{ID: "n-1", CompanyID: "comp-1", UserID: "user-1", Title: "Nuevo documento recibido"},
	}}
	handler := newTestRouter(t, notifications, &fileStoreFake{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/notifications", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Notifications []domain.Notification `json:"notifications"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Notifications) != 1 || body.Notifications[0].ID != "n-1" {
		t.Fatalf("body = %+v", body)
	}
}

func TestMarkNotificationReadUsesPathValue(t *testing.T) {
	notifications := &notificationServiceFake{}
	handler := newTestRouter(t, notifications, &fileStoreFake{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/notifications/n-42/read", nil)
	req.Header.Set("Authorization", "Bearer "+testToken(t))
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if notifications.markedID != "n-42" || notifications.markedUser != "user-1" {
		t.Fatalf("marked %q for %q", notifications.markedID, notifications.markedUser)
	}
}

func TestServeFileRequiresValidSignature(t *testing.T) {
	files := &fileStoreFake{validSig: "firma-ok", content: "%PDF-1.7"}
	handler := newTestRouter(t, &notificationServiceFake{}, files)

	expires := time.Now().Add(time.Hour).Unix()

	rec := httptest.NewRecorder()
	url := fmt.Sprintf("/v1/files/comp-1/documents/doc-1.pdf?exp=%d&sig=firma-ok", expires)
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "%PDF-1.7" {
		t.Fatalf("body = %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	url = fmt.Sprintf("/v1/files/comp-1/documents/doc-1.pdf?exp=%d&sig=firma-mala", expires)
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for a bad signature", rec.Code)
	}

	rec = httptest.NewRecorder()
	url = fmt.Sprintf("/v1/files/comp-1/documents/doc-1.pdf?exp=%d&sig=firma-ok", time.Now().Add(-time.Minute).Unix())
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, url, nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for an expired link", rec.Code)
	}
}
