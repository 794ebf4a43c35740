package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/stephanofer/atlas/internal/core/domain"
	"github.com/stephanofer/atlas/internal/core/ports"
)

// CreatedComment is the fixed ledger comment on the `created` entry.
const CreatedComment = "Documento subido al sistema"

type DocumentUseCase struct {
	docs     ports.DocumentRepository
	history  ports.HistoryRepository
	areas    ports.AreaRepository
	users    ports.UserRepository
	storage  ports.ObjectStorage
	activity *ActivityUseCase
}

func NewDocumentUseCase(
	docs ports.DocumentRepository,
	history ports.HistoryRepository,
	areas ports.AreaRepository,
	users ports.UserRepository,
	storage ports.ObjectStorage,
) *DocumentUseCase {
	return &DocumentUseCase{
		docs:     docs,
		history:  history,
		areas:    areas,
		users:    users,
		storage:  storage,
		activity: NewActivityUseCase(docs, history),
	}
}

// Create validates the upload, writes the blob, then inserts the
// document and its `created` ledger entry in one transaction. The blob
// write gates the metadata write: if it fails, no rows exist.
func (uc *DocumentUseCase) Create(ctx context.Context, input ports.CreateDocumentInput) (*domain.Document, error) {
	if err := domain.ValidateUpload(input.Title, input.Description, input.FileName, input.MimeType, input.FileSize); err != nil {
		return nil, err
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}

	if input.TargetAreaID == "" {
		return nil, domain.WrapError(domain.ErrValidation, "create document", errors.New("target area is required"))
	}
	if _, err := uc.areas.GetByID(ctx, input.CompanyID, input.TargetAreaID); err != nil {
		if domain.IsKind(err, domain.ErrNotFound) {
			return nil, domain.WrapError(domain.ErrValidation, "create document", fmt.Errorf("target area %s does not exist", input.TargetAreaID))
		}
		return nil, fmt.Errorf("resolve target area: %w", err)
	}
	if input.TargetUserID != "" {
		if _, err := uc.users.GetByID(ctx, input.CompanyID, input.TargetUserID); err != nil {
			if domain.IsKind(err, domain.ErrNotFound) {
				return nil, domain.WrapError(domain.ErrValidation, "create document", fmt.Errorf("target user %s does not exist", input.TargetUserID))
			}
			return nil, fmt.Errorf("resolve target user: %w", err)
		}
	}

	id := uuid.NewString()
	ext := domain.FileExtension(input.FileName)
	storageKey := fmt.Sprintf("%s/documents/%s.%s", input.CompanyID, id, ext)

	if err := uc.storage.Save(ctx, storageKey, input.Body); err != nil {
		return nil, domain.WrapError(domain.ErrStorage, "save to object storage", err)
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:            id,
		CompanyID:     input.CompanyID,
		Title:         input.Title,
		Description:   input.Description,
		FileName:      input.FileName,
		FilePath:      storageKey,
		FileSize:      input.FileSize,
		FileType:      ext,
		MimeType:      input.MimeType,
		CurrentAreaID: input.TargetAreaID,
		CurrentUserID: input.TargetUserID,
		OriginAreaID:  input.OriginAreaID,
		CreatedBy:     input.ActorID,
		Status:        domain.StatusPending,
		Priority:      priority,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	entry := &domain.HistoryEntry{
		ID:         uuid.NewString(),
		DocumentID: id,
		CompanyID:  input.CompanyID,
		UserID:     input.ActorID,
		Action:     domain.ActionCreated,
		ToAreaID:   input.TargetAreaID,
		ToUserID:   input.TargetUserID,
		Comment:    CreatedComment,
		CreatedAt:  now,
	}

	if err := uc.docs.Create(ctx, doc, entry); err != nil {
		return nil, fmt.Errorf("create document metadata: %w", err)
	}
	return doc, nil
}

func (uc *DocumentUseCase) Get(ctx context.Context, companyID, documentID string) (*domain.DocumentDetail, error) {
	detail, err := uc.docs.GetDetail(ctx, companyID, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document detail: %w", err)
	}
	return detail, nil
}

func (uc *DocumentUseCase) List(ctx context.Context, companyID string, filter domain.DocumentFilter) ([]domain.Document, error) {
	docs, err := uc.docs.List(ctx, companyID, filter)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// Download opens the blob and, once open, records the `downloaded`
// ledger entry. The entry is appended only after the store confirmed it
// can deliver the bytes.
func (uc *DocumentUseCase) Download(ctx context.Context, companyID, actorID, documentID string) (io.ReadCloser, *domain.Document, error) {
	doc, err := uc.docs.GetByID(ctx, companyID, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch document: %w", err)
	}
	reader, err := uc.storage.Open(ctx, doc.FilePath)
	if err != nil {
		return nil, nil, domain.WrapError(domain.ErrStorage, "open blob", err)
	}
	if err := uc.activity.RecordDownload(ctx, companyID, actorID, documentID); err != nil {
		_ = reader.Close()
		return nil, nil, err
	}
	return reader, doc, nil
}

// PreviewURL issues a temporary signed read URL for previewable types.
func (uc *DocumentUseCase) PreviewURL(ctx context.Context, companyID, documentID string, ttl time.Duration) (string, error) {
	doc, err := uc.docs.GetByID(ctx, companyID, documentID)
	if err != nil {
		return "", fmt.Errorf("fetch document: %w", err)
	}
	if !doc.Previewable() {
		return "", domain.WrapError(domain.ErrValidation, "preview document", fmt.Errorf("file type %s has no preview", doc.FileType))
	}
	url, err := uc.storage.SignedURL(doc.FilePath, ttl)
	if err != nil {
		return "", domain.WrapError(domain.ErrStorage, "sign preview url", err)
	}
	return url, nil
}
