package ports

import (
	"context"
	"io"
	"time"

	"github.com/stephanofer/atlas/internal/core/domain"
)

// CompanyRepository persists tenant roots.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Company, error)
	// Delete exists only for registration rollback. Companies are never
	// removed in normal flow.
	Delete(ctx context.Context, id string) error
}

// UserRepository persists principals. Every read is tenant-scoped.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, companyID, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByCompany(ctx context.Context, companyID string) ([]domain.User, error)
	// ListByArea returns users of an area restricted to the given
	// statuses, ordered by full name.
	ListByArea(ctx context.Context, companyID, areaID string, statuses []domain.UserStatus) ([]domain.User, error)
	// UpdateRole and UpdateStatus enforce the active-admin floor inside
	// the same transaction as the write: any change that would leave the
	// company with zero active admins fails with domain.ErrPermission
	// and leaves all rows unchanged.
	UpdateRole(ctx context.Context, companyID, userID string, role domain.Role) error
	UpdateStatus(ctx context.Context, companyID, userID string, status domain.UserStatus) error
	UpdateArea(ctx context.Context, companyID, userID, areaID string) error
	CountActive(ctx context.Context, companyID string) (int, error)
}

// AreaRepository persists departments.
type AreaRepository interface {
	Create(ctx context.Context, area *domain.Area) error
	Update(ctx context.Context, area *domain.Area) error
	GetByID(ctx context.Context, companyID, areaID string) (*domain.Area, error)
	// ListByCompany includes per-area user and document counts.
	ListByCompany(ctx context.Context, companyID string) ([]domain.AreaSummary, error)
	// Delete refuses with domain.ErrConflict while any document has the
	// area as its current location. The guard and the delete run in one
	// transaction.
	Delete(ctx context.Context, companyID, areaID string) error
}

// DocumentRepository persists documents and the transactional pieces of
// their lifecycle.
type DocumentRepository interface {
	// Create inserts the document and its `created` ledger entry in a
	// single transaction: creation is not complete without the entry.
	Create(ctx context.Context, doc *domain.Document, entry *domain.HistoryEntry) error
	GetByID(ctx context.Context, companyID, documentID string) (*domain.Document, error)
	// GetDetail fetches the document joined with its referenced
	// area/user display names in one read.
	GetDetail(ctx context.Context, companyID, documentID string) (*domain.DocumentDetail, error)
	List(ctx context.Context, companyID string, filter domain.DocumentFilter) ([]domain.Document, error)
	CountByCompany(ctx context.Context, companyID string, status domain.DocumentStatus) (int, error)
	// ApplyDerivation updates the document's location/status and appends
	// the `derived` ledger entry in a single transaction. The update is
	// guarded by expectedVersion: on a version miss it returns
	// domain.ErrConflict without writing anything, so the caller can
	// re-read and retry with a fresh from-snapshot.
	ApplyDerivation(ctx context.Context, mutation domain.DerivationMutation) (*domain.Document, error)
}

// HistoryRepository is the append-only ledger. No update or delete is
// exposed: entries are write-once, read-many.
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.HistoryEntry) error
	ListByDocument(ctx context.Context, companyID, documentID string, order domain.HistoryOrder) ([]domain.HistoryEntry, error)
	CountDerivedSince(ctx context.Context, companyID string, since time.Time) (int, error)
	ListRecentActivity(ctx context.Context, companyID string, limit int) ([]domain.ActivityEntry, error)
}

// NotificationRepository persists recipient-facing alerts.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, companyID, userID string, unreadOnly bool) ([]domain.Notification, error)
	MarkRead(ctx context.Context, companyID, userID, notificationID string) error
}

// ObjectStorage stores uploaded files. Keys are namespaced per company.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// SignedURL returns a temporary read URL for the key.
	SignedURL(key string, ttl time.Duration) (string, error)
}

// NotificationQueue carries derivation alerts out of the consistency
// boundary. Publish failures are logged by callers, never propagated.
type NotificationQueue interface {
	PublishDerived(ctx context.Context, event domain.NotificationEvent) error
	SubscribeDerived(ctx context.Context, handler func(context.Context, domain.NotificationEvent) error) error
}

// CredentialStore owns sign-in secrets. The core never sees passwords
// beyond handing them over at registration.
type CredentialStore interface {
	Create(ctx context.Context, userID, email, password string) error
	Verify(ctx context.Context, email, password string) (userID string, err error)
	// Delete removes a user's credential. Emails are globally unique in
	// the store, so callers must compensate a half-finished signup with
	// this or the address stays burned forever.
	Delete(ctx context.Context, userID string) error
}
