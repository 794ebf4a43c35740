package ports

import (
	"context"
	"io"
	"time"

	"github.com/stephanofer/atlas/internal/core/domain"
)

// CreateDocumentInput carries everything the upload operation needs.
// ActorID and OriginAreaID come from the caller's session, not the form.
type CreateDocumentInput struct {
	CompanyID    string
	ActorID      string
	OriginAreaID string

	Title       string
	Description string
	FileName    string
	FileSize    int64
	MimeType    string
	Body        io.Reader

	TargetAreaID string
	TargetUserID string
	Priority     domain.Priority
}

// DeriveResult returns the updated document together with the ledger
// entry the derivation appended, so callers can refresh their view
// without a second read.
type DeriveResult struct {
	Document *domain.Document     `json:"document"`
	Entry    *domain.HistoryEntry `json:"history_entry"`
	// Attempts counts the optimistic-concurrency tries the derivation
	// needed. Not part of the API payload; callers feed it to metrics.
	Attempts int `json:"-"`
}

// DocumentService is the inbound contract for the document lifecycle.
type DocumentService interface {
	Create(ctx context.Context, input CreateDocumentInput) (*domain.Document, error)
	Get(ctx context.Context, companyID, documentID string) (*domain.DocumentDetail, error)
	List(ctx context.Context, companyID string, filter domain.DocumentFilter) ([]domain.Document, error)
	Download(ctx context.Context, companyID, actorID, documentID string) (io.ReadCloser, *domain.Document, error)
	PreviewURL(ctx context.Context, companyID, documentID string, ttl time.Duration) (string, error)
}

// DerivationService routes a document to a new area/user and appends
// the matching ledger entry as one logical operation.
type DerivationService interface {
	Derive(ctx context.Context, companyID, actorID, documentID, targetAreaID, targetUserID, comment string) (*DeriveResult, error)
}

// ActivityRecorder appends view/download facts. Each call produces its
// own ledger entry; repeats are never deduplicated.
type ActivityRecorder interface {
	RecordView(ctx context.Context, companyID, actorID, documentID string) error
	RecordDownload(ctx context.Context, companyID, actorID, documentID string) error
}

// HistoryReader lists a document's ledger.
type HistoryReader interface {
	ListHistory(ctx context.Context, companyID, documentID string, order domain.HistoryOrder) ([]domain.HistoryEntry, error)
}

// RegisterCompanyInput creates a tenant with its first admin.
type RegisterCompanyInput struct {
	CompanyName string
	FullName    string
	Email       string
	Password    string
}

// CompanyRegistrar provisions a new tenant.
type CompanyRegistrar interface {
	Register(ctx context.Context, input RegisterCompanyInput) (*domain.Company, *domain.User, error)
}

// CreateUserInput creates a principal inside an existing tenant.
type CreateUserInput struct {
	CompanyID string
	ActorID   string

	Email    string
	FullName string
	Password string
	Role     domain.Role
	AreaID   string
	Position string
}

// UserManager covers the admin-side user operations. Role and status
// changes honor the active-admin floor.
type UserManager interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	ChangeRole(ctx context.Context, companyID, actorID, userID string, role domain.Role) error
	ChangeStatus(ctx context.Context, companyID, actorID, userID string, status domain.UserStatus) error
	AssignArea(ctx context.Context, companyID, actorID, userID, areaID string) error
	ListUsers(ctx context.Context, companyID string) ([]domain.User, error)
	ListAreaUsers(ctx context.Context, companyID, areaID string) ([]domain.User, error)
}

// AreaManager covers the admin-side area operations.
type AreaManager interface {
	CreateArea(ctx context.Context, companyID, actorID, name, description string) (*domain.Area, error)
	UpdateArea(ctx context.Context, companyID, actorID, areaID, name, description string) (*domain.Area, error)
	DeleteArea(ctx context.Context, companyID, actorID, areaID string) error
	ListAreas(ctx context.Context, companyID string) ([]domain.AreaSummary, error)
}

// DashboardReader serves the aggregate counters and feeds the dashboard
// shows.
type DashboardReader interface {
	Stats(ctx context.Context, companyID string) (*domain.DashboardStats, error)
	RecentDocuments(ctx context.Context, companyID string) ([]domain.Document, error)
	RecentActivity(ctx context.Context, companyID string) ([]domain.ActivityEntry, error)
}

// NotificationService is the recipient-facing surface.
type NotificationService interface {
	ListNotifications(ctx context.Context, companyID, userID string, unreadOnly bool) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, companyID, userID, notificationID string) error
}
