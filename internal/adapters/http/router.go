package httpadapter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/stephanofer/atlas/internal/auth"
	"github.com/stephanofer/atlas/internal/core/domain"
	"github.com/stephanofer/atlas/internal/core/ports"
	"github.com/stephanofer/atlas/internal/observability/metrics"
)

// FileStore is what the signed file endpoint needs from blob storage:
// signature verification plus raw reads.
type FileStore interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	VerifySignature(key string, expires int64, sig string) bool
}

// Options holds the traffic knobs applied around the mux.
type Options struct {
	ServiceName    string
	RateLimitRPS   int
	RateLimitBurst int
	MaxInFlight    int
	QueueWait      time.Duration
}

type Router struct {
	documents     ports.DocumentService
	derivations   ports.DerivationService
	activity      ports.ActivityRecorder
	history       ports.HistoryReader
	registrar     ports.CompanyRegistrar
	users         ports.UserManager
	areas         ports.AreaManager
	dashboard     ports.DashboardReader
	notifications ports.NotificationService
	sessions      *auth.SessionManager
	files         FileStore
	metrics       *metrics.HTTPServerMetrics
	opts          Options
}

func NewRouter(
	documents ports.DocumentService,
	derivations ports.DerivationService,
	activity ports.ActivityRecorder,
	history ports.HistoryReader,
	registrar ports.CompanyRegistrar,
	users ports.UserManager,
	areas ports.AreaManager,
	dashboard ports.DashboardReader,
	notifications ports.NotificationService,
	sessions *auth.SessionManager,
	files FileStore,
	m *metrics.HTTPServerMetrics,
	opts Options,
) *Router {
	if opts.ServiceName == "" {
		opts.ServiceName = "api"
	}
	if opts.QueueWait <= 0 {
		opts.QueueWait = 2 * time.Second
	}
	return &Router{
		documents:     documents,
		derivations:   derivations,
		activity:      activity,
		history:       history,
		registrar:     registrar,
		users:         users,
		areas:         areas,
		dashboard:     dashboard,
		notifications: notifications,
		sessions:      sessions,
		files:         files,
		metrics:       m,
		opts:          opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", rt.healthz)

	mux.HandleFunc("POST /v1/auth/register", rt.register)
	mux.HandleFunc("POST /v1/auth/login", rt.login)
	mux.HandleFunc("POST /v1/auth/logout", rt.authMiddleware(rt.logout))

	mux.HandleFunc("POST /v1/documents", rt.authMiddleware(rt.uploadDocument))
	mux.HandleFunc("GET /v1/documents", rt.authMiddleware(rt.listDocuments))
	mux.HandleFunc("GET /v1/documents/{document_id}", rt.authMiddleware(rt.getDocument))
	mux.HandleFunc("POST /v1/documents/{document_id}/derive", rt.authMiddleware(rt.deriveDocument))
	mux.HandleFunc("GET /v1/documents/{document_id}/download", rt.authMiddleware(rt.downloadDocument))
	mux.HandleFunc("GET /v1/documents/{document_id}/preview", rt.authMiddleware(rt.previewDocument))
	mux.HandleFunc("GET /v1/documents/{document_id}/history", rt.authMiddleware(rt.documentHistory))

	mux.HandleFunc("GET /v1/files/{key...}", rt.serveFile)

	mux.HandleFunc("POST /v1/areas", rt.authMiddleware(rt.createArea))
	mux.HandleFunc("GET /v1/areas", rt.authMiddleware(rt.listAreas))
	mux.HandleFunc("PUT /v1/areas/{area_id}", rt.authMiddleware(rt.updateArea))
	mux.HandleFunc("DELETE /v1/areas/{area_id}", rt.authMiddleware(rt.deleteArea))
	mux.HandleFunc("GET /v1/areas/{area_id}/users", rt.authMiddleware(rt.listAreaUsers))

	mux.HandleFunc("POST /v1/users", rt.authMiddleware(rt.createUser))
	mux.HandleFunc("GET /v1/users", rt.authMiddleware(rt.listUsers))
	mux.HandleFunc("PATCH /v1/users/{user_id}/role", rt.authMiddleware(rt.changeUserRole))
	mux.HandleFunc("PATCH /v1/users/{user_id}/status", rt.authMiddleware(rt.changeUserStatus))
	mux.HandleFunc("PATCH /v1/users/{user_id}/area", rt.authMiddleware(rt.assignUserArea))

	mux.HandleFunc("GET /v1/dashboard/stats", rt.authMiddleware(rt.dashboardStats))
	mux.HandleFunc("GET /v1/dashboard/recent-documents", rt.authMiddleware(rt.dashboardRecentDocuments))
	mux.HandleFunc("GET /v1/dashboard/recent-activity", rt.authMiddleware(rt.dashboardRecentActivity))

	mux.HandleFunc("GET /v1/notifications", rt.authMiddleware(rt.listNotifications))
	mux.HandleFunc("POST /v1/notifications/{notification_id}/read", rt.authMiddleware(rt.markNotificationRead))

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.opts.MaxInFlight, rt.opts.QueueWait)
	handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.opts.ServiceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps domain error kinds onto HTTP statuses. Internal
// failures stay opaque to the client.
func writeError(w http.ResponseWriter, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": message})
}

func parseHistoryOrder(raw string) domain.HistoryOrder {
	if raw == string(domain.OldestFirst) {
		return domain.OldestFirst
	}
	return domain.NewestFirst
}
