package httpadapter

import (
	"net/http"
)

func (rt *Router) listNotifications(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"

	list, err := rt.notifications.ListNotifications(r.Context(), claims.CompanyID, claims.UserID, unreadOnly)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": list})
}

func (rt *Router) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	notificationID := r.PathValue("notification_id")

	if err := rt.notifications.MarkNotificationRead(r.Context(), claims.CompanyID, claims.UserID, notificationID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

func (rt *Router) dashboardStats(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	stats, err := rt.dashboard.Stats(r.Context(), claims.CompanyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (rt *Router) dashboardRecentDocuments(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	docs, err := rt.dashboard.RecentDocuments(r.Context(), claims.CompanyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) dashboardRecentActivity(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	entries, err := rt.dashboard.RecentActivity(r.Context(), claims.CompanyID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activity": entries})
}
