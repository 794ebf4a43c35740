package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/stephanofer/atlas/internal/core/domain"
)

var errFakeNotConfigured = errors.New("fake: not configured")

type docRepoFake struct {
	createFn func(doc *domain.Document, entry *domain.HistoryEntry) error
	getFn    func(companyID, documentID string) (*domain.Document, error)
	detailFn func(companyID, documentID string) (*domain.DocumentDetail, error)
	listFn   func(companyID string, filter domain.DocumentFilter) ([]domain.Document, error)
	countFn  func(companyID string, status domain.DocumentStatus) (int, error)
	applyFn  func(mutation domain.DerivationMutation) (*domain.Document, error)
}

func (f *docRepoFake) Create(_ context.Context, doc *domain.Document, entry *domain.HistoryEntry) error {
	if f.createFn == nil {
		return errFakeNotConfigured
	}
	return f.createFn(doc, entry)
}

func (f *docRepoFake) GetByID(_ context.Context, companyID, documentID string) (*domain.Document, error) {
	if f.getFn == nil {
		return nil, errFakeNotConfigured
	}
	return f.getFn(companyID, documentID)
}

func (f *docRepoFake) GetDetail(_ context.Context, companyID, documentID string) (*domain.DocumentDetail, error) {
	if f.detailFn == nil {
		return nil, errFakeNotConfigured
	}
	return f.detailFn(companyID, documentID)
}

func (f *docRepoFake) List(_ context.Context, companyID string, filter domain.DocumentFilter) ([]domain.Document, error) {
	if f.listFn == nil {
		return nil, errFakeNotConfigured
	}
	return f.listFn(companyID, filter)
}

func (f *docRepoFake) CountByCompany(_ context.Context, companyID string, status domain.DocumentStatus) (int, error) {
	if f.countFn == nil {
		return 0, errFakeNotConfigured
	}
	return f.countFn(companyID, status)
}

func (f *docRepoFake) ApplyDerivation(_ context.Context, mutation domain.DerivationMutation) (*domain.Document, error) {
	if f.applyFn == nil {
		return nil, errFakeNotConfigured
	}
	return f.applyFn(mutation)
}

type historyRepoFake struct {
	appended []domain.HistoryEntry

	appendErr    error
	entries      []domain.HistoryEntry
	derivedCount int
	activity     []domain.ActivityEntry
}

func (f *historyRepoFake) Append(_ context.Context, entry *domain.HistoryEntry) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appended = append(f.appended, *entry)
	return nil
}

func (f *historyRepoFake) ListByDocument(_ context.Context, _, _ string, _ domain.HistoryOrder) ([]domain.HistoryEntry, error) {
	return f.entries, nil
}

func (f *historyRepoFake) CountDerivedSince(_ context.Context, _ string, _ time.Time) (int, error) {
	return f.derivedCount, nil
}

func (f *historyRepoFake) ListRecentActivity(_ context.Context, _ string, _ int) ([]domain.ActivityEntry, error) {
	return f.activity, nil
}

type areaRepoFake struct {
	areas     map[string]*domain.Area
	summaries []domain.AreaSummary

	createErr error
	updateErr error
	deleteErr error
	created   *domain.Area
	updated   *domain.Area
	deletedID string
}

func (f *areaRepoFake) Create(_ context.Context, area *domain.Area) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *area
	f.created = &copied
	return nil
}

func (f *areaRepoFake) Update(_ context.Context, area *domain.Area) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	copied := *area
	f.updated = &copied
	return nil
}

func (f *areaRepoFake) GetByID(_ context.Context, _, areaID string) (*domain.Area, error) {
	area, ok := f.areas[areaID]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "fake get area", errors.New("no such area"))
	}
	return area, nil
}

func (f *areaRepoFake) ListByCompany(_ context.Context, _ string) ([]domain.AreaSummary, error) {
	return f.summaries, nil
}

func (f *areaRepoFake) Delete(_ context.Context, _, areaID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedID = areaID
	return nil
}

type userRepoFake struct {
	users       map[string]*domain.User
	byEmail     map[string]*domain.User
	companyList []domain.User
	areaList    []domain.User
	activeCount int

	created       *domain.User
	createErr     error
	updateRoleErr error
	roleSet       domain.Role
	statusSet     domain.UserStatus
	areaSet       string
	areaStatuses  []domain.UserStatus
}

func (f *userRepoFake) Create(_ context.Context, user *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *user
	f.created = &copied
	return nil
}

func (f *userRepoFake) GetByID(_ context.Context, _, userID string) (*domain.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "fake get user", errors.New("no such user"))
	}
	return user, nil
}

func (f *userRepoFake) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "fake get user", errors.New("no such email"))
	}
	return user, nil
}

func (f *userRepoFake) ListByCompany(_ context.Context, _ string) ([]domain.User, error) {
	return f.companyList, nil
}

func (f *userRepoFake) ListByArea(_ context.Context, _, _ string, statuses []domain.UserStatus) ([]domain.User, error) {
	f.areaStatuses = statuses
	return f.areaList, nil
}

func (f *userRepoFake) UpdateRole(_ context.Context, _, _ string, role domain.Role) error {
	if f.updateRoleErr != nil {
		return f.updateRoleErr
	}
	f.roleSet = role
	return nil
}

func (f *userRepoFake) UpdateStatus(_ context.Context, _, _ string, status domain.UserStatus) error {
	f.statusSet = status
	return nil
}

func (f *userRepoFake) UpdateArea(_ context.Context, _, _, areaID string) error {
	f.areaSet = areaID
	return nil
}

func (f *userRepoFake) CountActive(_ context.Context, _ string) (int, error) {
	return f.activeCount, nil
}

type storageFake struct {
	savedKey  string
	savedBody string
	saveErr   error
	openErr   error
	openBody  string
	signedURL string
	signErr   error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *storageFake) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(strings.NewReader(f.openBody)), nil
}

func (f *storageFake) SignedURL(_ string, _ time.Duration) (string, error) {
	if f.signErr != nil {
		return "", f.signErr
	}
	return f.signedURL, nil
}

type queueFake struct {
	published  []domain.NotificationEvent
	publishErr error
}

func (f *queueFake) PublishDerived(_ context.Context, event domain.NotificationEvent) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, event)
	return nil
}

func (f *queueFake) SubscribeDerived(context.Context, func(context.Context, domain.NotificationEvent) error) error {
	return errors.New("not implemented")
}

type credentialStoreFake struct {
	createdUserID string
	createdEmail  string
	createErr     error
	verifyUserID  string
	verifyErr     error
	deletedUserID string
	deleteErr     error
}

func (f *credentialStoreFake) Create(_ context.Context, userID, email, _ string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.createdUserID = userID
	f.createdEmail = email
	return nil
}

func (f *credentialStoreFake) Verify(_ context.Context, _, _ string) (string, error) {
	if f.verifyErr != nil {
		return "", f.verifyErr
	}
	return f.verifyUserID, nil
}

func (f *credentialStoreFake) Delete(_ context.Context, userID string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedUserID = userID
	return nil
}

type companyRepoFake struct {
	created   *domain.Company
	createErr error
	deletedID string
}

func (f *companyRepoFake) Create(_ context.Context, company *domain.Company) error {
	if f.createErr != nil {
		return f.createErr
	}
	copied := *company
	f.created = &copied
	return nil
}

func (f *companyRepoFake) GetByID(context.Context, string) (*domain.Company, error) {
	return nil, errors.New("not implemented")
}

func (f *companyRepoFake) GetBySlug(context.Context, string) (*domain.Company, error) {
	return nil, errors.New("not implemented")
}

func (f *companyRepoFake) Delete(_ context.Context, id string) error {
	f.deletedID = id
	return nil
}
