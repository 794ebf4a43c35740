package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/stephanofer/atlas/internal/core/domain"
	"github.com/stephanofer/atlas/internal/core/ports"
)

const (
	maxMultipartMemory = 32 << 20
	previewURLTTL      = time.Hour
)

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	priority, err := domain.ParsePriority(r.FormValue("priority"))
	if err != nil {
		writeError(w, domain.WrapError(domain.ErrValidation, "parse priority", err))
		return
	}

	doc, err := rt.documents.Create(r.Context(), ports.CreateDocumentInput{
		CompanyID:    claims.CompanyID,
		ActorID:      claims.UserID,
		OriginAreaID: claims.AreaID,
		Title:        r.FormValue("title"),
		Description:  r.FormValue("description"),
		FileName:     fileHeader.Filename,
		FileSize:     fileHeader.Size,
		MimeType:     fileHeader.Header.Get("Content-Type"),
		Body:         file,
		TargetAreaID: r.FormValue("target_area_id"),
		TargetUserID: r.FormValue("target_user_id"),
		Priority:     priority,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordDocumentCreated(rt.opts.ServiceName, doc.FileSize)
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())

	filter := domain.DocumentFilter{
		AreaID: r.URL.Query().Get("area_id"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseDocumentStatus(raw)
		if err != nil {
			writeError(w, domain.WrapError(domain.ErrValidation, "parse status", err))
			return
		}
		filter.Status = status
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
			return
		}
		filter.Limit = limit
	}

	docs, err := rt.documents.List(r.Context(), claims.CompanyID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) getDocument(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	documentID := r.PathValue("document_id")

	detail, err := rt.documents.Get(r.Context(), claims.CompanyID, documentID)
	if err != nil {
		writeError(w, err)
		return
	}

	// The view record never blocks the read.
	if err := rt.activity.RecordView(r.Context(), claims.CompanyID, claims.UserID, documentID); err != nil {
		slog.Warn("record view failed",
			"request_id", requestIDFromContext(r.Context()),
			"document_id", documentID,
			"error", err,
		)
	}

	writeJSON(w, http.StatusOK, detail)
}

type deriveRequest struct {
	TargetAreaID string `json:"target_area_id"`
	TargetUserID string `json:"target_user_id"`
	Comment      string `json:"comment"`
}

func (rt *Router) deriveDocument(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	documentID := r.PathValue("document_id")

	var req deriveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	result, err := rt.derivations.Derive(
		r.Context(),
		claims.CompanyID,
		claims.UserID,
		documentID,
		req.TargetAreaID,
		req.TargetUserID,
		req.Comment,
	)
	if err != nil {
		if rt.metrics != nil {
			rt.metrics.RecordDerivation(rt.opts.ServiceName, "error", 0)
		}
		writeError(w, err)
		return
	}

	if rt.metrics != nil {
		rt.metrics.RecordDerivation(rt.opts.ServiceName, "success", result.Attempts)
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) downloadDocument(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	documentID := r.PathValue("document_id")

	body, doc, err := rt.documents.Download(r.Context(), claims.CompanyID, claims.UserID, documentID)
	if err != nil {
		writeError(w, err)
		return
	}
	defer body.Close()

	if rt.metrics != nil {
		rt.metrics.RecordDownload(rt.opts.ServiceName)
	}

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	if doc.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.FileSize, 10))
	}
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("download stream interrupted",
			"request_id", requestIDFromContext(r.Context()),
			"document_id", documentID,
			"error", err,
		)
	}
}

func (rt *Router) previewDocument(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	documentID := r.PathValue("document_id")

	url, err := rt.documents.PreviewURL(r.Context(), claims.CompanyID, documentID, previewURLTTL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"url":        url,
		"expires_in": int(previewURLTTL.Seconds()),
	})
}

func (rt *Router) documentHistory(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	documentID := r.PathValue("document_id")
	order := parseHistoryOrder(r.URL.Query().Get("order"))

	entries, err := rt.history.ListHistory(r.Context(), claims.CompanyID, documentID, order)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// serveFile streams a blob referenced by a signed URL. The signature
// is the only gate; no session is required so previews can be embedded.
func (rt *Router) serveFile(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	expires, err := strconv.ParseInt(r.URL.Query().Get("exp"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expiry"})
		return
	}
	sig := r.URL.Query().Get("sig")
	if !rt.files.VerifySignature(key, expires, sig) {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid or expired signature"})
		return
	}

	body, err := rt.files.Open(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("file stream interrupted",
			"request_id", requestIDFromContext(r.Context()),
			"key", key,
			"error", err,
		)
	}
}
