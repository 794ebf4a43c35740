package domain

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"
)

type DocumentStatus string

const (
	StatusPending  DocumentStatus = "pending"
	StatusInReview DocumentStatus = "in_review"
	StatusApproved DocumentStatus = "approved"
	StatusRejected DocumentStatus = "rejected"
	StatusDerived  DocumentStatus = "derived"
	StatusArchived DocumentStatus = "archived"
)

func ParseDocumentStatus(s string) (DocumentStatus, error) {
	switch DocumentStatus(s) {
	case StatusPending, StatusInReview, StatusApproved, StatusRejected, StatusDerived, StatusArchived:
		return DocumentStatus(s), nil
	default:
		return "", WrapError(ErrValidation, "parse document status", fmt.Errorf("unknown status %q", s))
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityNormal, nil
	}
	switch Priority(s) {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return Priority(s), nil
	default:
		return "", WrapError(ErrValidation, "parse priority", fmt.Errorf("unknown priority %q", s))
	}
}

// Document is the central entity. CurrentAreaID/CurrentUserID always
// reflect the latest derivation target. OriginAreaID and CreatedBy are
// write-once at creation. Version is the optimistic-concurrency counter
// bumped by every derivation. Documents are archived via Status, never
// deleted.
type Document struct {
	ID            string         `json:"id"`
	CompanyID     string         `json:"company_id"`
	Title         string         `json:"title"`
	Description   string         `json:"description,omitempty"`
	FileName      string         `json:"file_name"`
	FilePath      string         `json:"file_path"`
	FileSize      int64          `json:"file_size"`
	FileType      string         `json:"file_type"`
	MimeType      string         `json:"mime_type"`
	CurrentAreaID string         `json:"current_area_id,omitempty"`
	CurrentUserID string         `json:"current_user_id,omitempty"`
	OriginAreaID  string         `json:"origin_area_id,omitempty"`
	CreatedBy     string         `json:"created_by"`
	Status        DocumentStatus `json:"status"`
	Priority      Priority       `json:"priority"`
	Version       int64          `json:"version"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// DocumentDetail is a Document joined with the display names of its
// referenced area/user rows, fetched in one store read.
type DocumentDetail struct {
	Document
	CurrentAreaName string `json:"current_area_name,omitempty"`
	CurrentUserName string `json:"current_user_name,omitempty"`
	OriginAreaName  string `json:"origin_area_name,omitempty"`
	CreatorName     string `json:"creator_name,omitempty"`
}

// DocumentFilter narrows tenant document listings.
type DocumentFilter struct {
	Status DocumentStatus
	AreaID string
	Limit  int
}

// MaxFileSize is the upload ceiling in bytes.
const MaxFileSize = 10 << 20

// AllowedMimeTypes is the upload allow-list.
var AllowedMimeTypes = map[string]struct{}{
	"application/pdf":    {},
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"image/jpeg": {},
	"image/png":  {},
}

// BlockedExtensions is the executable deny-list, checked before the
// MIME allow-list so a renamed binary is rejected with the security
// message rather than the format one.
var BlockedExtensions = []string{".exe", ".bat", ".sh", ".cmd", ".msi", ".app", ".dll", ".com"}

// PreviewableTypes are file extensions the detail view can render
// inline through a signed URL.
var PreviewableTypes = map[string]struct{}{
	"pdf": {}, "jpg": {}, "jpeg": {}, "png": {},
}

// ValidateUpload checks every document-creation constraint that does
// not require a store read. It must pass before any blob or metadata
// write is attempted.
func ValidateUpload(title, description, fileName, mimeType string, fileSize int64) error {
	titleLen := utf8.RuneCountInString(strings.TrimSpace(title))
	if titleLen < 3 {
		return WrapError(ErrValidation, "validate upload", errors.New("title must be at least 3 characters"))
	}
	if titleLen > 200 {
		return WrapError(ErrValidation, "validate upload", errors.New("title must not exceed 200 characters"))
	}
	if utf8.RuneCountInString(description) > 500 {
		return WrapError(ErrValidation, "validate upload", errors.New("description must not exceed 500 characters"))
	}
	if fileSize <= 0 {
		return WrapError(ErrValidation, "validate upload", errors.New("file is empty"))
	}
	if fileSize > MaxFileSize {
		return WrapError(ErrValidation, "validate upload", errors.New("file must not exceed 10MB"))
	}
	lower := strings.ToLower(fileName)
	for _, ext := range BlockedExtensions {
		if strings.HasSuffix(lower, ext) {
			return WrapError(ErrValidation, "validate upload", fmt.Errorf("file extension %s is blocked", ext))
		}
	}
	if _, ok := AllowedMimeTypes[mimeType]; !ok {
		return WrapError(ErrValidation, "validate upload", fmt.Errorf("mime type %q is not allowed", mimeType))
	}
	return nil
}

// FileExtension returns the extension without the dot, lowercased, or
// "unknown" when the name carries none.
func FileExtension(fileName string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fileName)), ".")
	if ext == "" {
		return "unknown"
	}
	return ext
}

// Previewable reports whether the detail view should request a signed
// preview URL for this document.
func (d *Document) Previewable() bool {
	_, ok := PreviewableTypes[strings.ToLower(d.FileType)]
	return ok
}
