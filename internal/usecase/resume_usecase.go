package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"
	"go-jobboard-backend/pkg/document"
	"go-jobboard-backend/pkg/logger"
	"go-jobboard-backend/pkg/security"
	"go-jobboard-backend/pkg/security/antivirus"

	"github.com/google/uuid"
)

const msgResumeNotFoundOrForbidden = "Resume not found or you do not have access to it"

type resumeUsecase struct {
	repo     domain.ResumeRepository
	blobs    domain.BlobStore
	scanner  antivirus.Scanner
	maxBytes int64
	audit    *security.AuditLogger
}

func NewResumeUsecase(repo domain.ResumeRepository, blobs domain.BlobStore, scanner antivirus.Scanner, maxBytes int64, audit *security.AuditLogger) domain.ResumeUsecase {
	if scanner == nil {
		scanner = antivirus.NoOpScanner{}
	}
	return &resumeUsecase{
		repo:     repo,
		blobs:    blobs,
		scanner:  scanner,
		maxBytes: maxBytes,
		audit:    audit,
	}
}

// checkedFile is an upload that passed every content check.
type checkedFile struct {
	name      string
	ext       string
	mime      string
	pageCount *int
	data      []byte
}

func (u *resumeUsecase) Upload(ctx context.Context, candidateID string, file domain.ResumeFile) (*domain.Resume, error) {
	// The unique index decides races; this only spares a blob upload in the common case.
	if _, err := u.repo.GetByCandidateID(ctx, candidateID); err == nil {
		return nil, apperror.Conflict("You already have a resume. Replace it instead of uploading a new one")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	checked, err := u.check(ctx, candidateID, file)
	if err != nil {
		return nil, err
	}

	ref, err := u.store(ctx, candidateID, checked)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	resume := &domain.Resume{
		ID:          uuid.New(),
		CandidateID: candidateID,
		File:        *ref,
		FileName:    checked.name,
		FileSize:    int64(len(checked.data)),
		MimeType:    checked.mime,
		PageCount:   checked.pageCount,
		Status:      domain.ResumeStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := u.repo.Create(ctx, resume); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// lost a race with a concurrent upload; this blob is ours to drop
			u.discardBlob(ctx, candidateID, ref.BlobID)
			return nil, apperror.Conflict("You already have a resume. Replace it instead of uploading a new one")
		}
		u.orphaned(ctx, candidateID, ref.BlobID, err)
		return nil, apperror.Internal(err)
	}

	u.audit.Log(ctx, security.AuditEvent{
		Event:    security.EventResumeUploaded,
		ActorID:  candidateID,
		Resource: "resume",
		TargetID: resume.ID.String(),
		Details:  map[string]interface{}{"size": resume.FileSize, "mime": resume.MimeType},
	})
	return resume, nil
}

// Replace stores the new blob and metadata before deleting the old blob, so a
// failure part-way never leaves the candidate without a resume.
func (u *resumeUsecase) Replace(ctx context.Context, candidateID, resumeID string, file domain.ResumeFile) (*domain.Resume, error) {
	id, err := parseID(resumeID, "resume")
	if err != nil {
		return nil, err
	}

	current, err := u.getOwned(ctx, id, candidateID)
	if err != nil {
		return nil, err
	}

	checked, err := u.check(ctx, candidateID, file)
	if err != nil {
		return nil, err
	}

	ref, err := u.store(ctx, candidateID, checked)
	if err != nil {
		return nil, err
	}

	oldBlob := current.File.BlobID
	updated := *current
	updated.File = *ref
	updated.FileName = checked.name
	updated.FileSize = int64(len(checked.data))
	updated.MimeType = checked.mime
	updated.PageCount = checked.pageCount
	updated.Status = domain.ResumeStatusActive
	updated.UpdatedAt = time.Now()

	if err := u.repo.UpdateFile(ctx, &updated); err != nil {
		u.orphaned(ctx, candidateID, ref.BlobID, err)
		if errors.Is(err, domain.ErrNotFound) {
			// deleted concurrently
			return nil, apperror.NotFoundOrForbidden(msgResumeNotFoundOrForbidden)
		}
		return nil, apperror.Internal(err)
	}

	if err := u.blobs.Delete(ctx, oldBlob); err != nil {
		u.orphaned(ctx, candidateID, oldBlob, err)
	}

	u.audit.Log(ctx, security.AuditEvent{
		Event:    security.EventResumeReplaced,
		ActorID:  candidateID,
		Resource: "resume",
		TargetID: resumeID,
	})
	return &updated, nil
}

func (u *resumeUsecase) Get(ctx context.Context, candidateID string) (*domain.Resume, error) {
	resume, err := u.repo.GetByCandidateID(ctx, candidateID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.NotFound("Resume not found")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return resume, nil
}

// GetActiveResume reports an inactive resume the same as a missing one.
func (u *resumeUsecase) GetActiveResume(ctx context.Context, candidateID string) (*domain.Resume, error) {
	resume, err := u.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if resume.Status != domain.ResumeStatusActive {
		return nil, apperror.NotFound("Resume not found")
	}
	return resume, nil
}

// Delete removes the blob first, then the record. Applications keep their snapshot.
func (u *resumeUsecase) Delete(ctx context.Context, candidateID, resumeID string) error {
	id, err := parseID(resumeID, "resume")
	if err != nil {
		return err
	}

	resume, err := u.getOwned(ctx, id, candidateID)
	if err != nil {
		return err
	}

	if err := u.blobs.Delete(ctx, resume.File.BlobID); err != nil {
		return apperror.Storage(err)
	}
	if err := u.repo.Delete(ctx, id, candidateID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return apperror.Internal(err)
	}

	u.audit.Log(ctx, security.AuditEvent{
		Event:    security.EventResumeDeleted,
		ActorID:  candidateID,
		Resource: "resume",
		TargetID: resumeID,
	})
	return nil
}

func (u *resumeUsecase) getOwned(ctx context.Context, id uuid.UUID, candidateID string) (*domain.Resume, error) {
	resume, err := u.repo.GetByIDForCandidate(ctx, id, candidateID)
	if errors.Is(err, domain.ErrNotFound) {
		u.audit.Denied(ctx, candidateID, "resume", id.String())
		return nil, apperror.NotFoundOrForbidden(msgResumeNotFoundOrForbidden)
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return resume, nil
}

// check runs the format, structure and malware checks.
func (u *resumeUsecase) check(ctx context.Context, candidateID string, file domain.ResumeFile) (*checkedFile, error) {
	name := filepath.Base(strings.TrimSpace(file.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return nil, apperror.Validation("File name is required")
	}

	result := security.ValidateResumeFile(name, file.Data, u.maxBytes)
	if !result.Valid {
		u.rejected(ctx, candidateID, result.Error)
		return nil, apperror.Validation("Invalid resume file: " + result.Error)
	}

	checked := &checkedFile{name: name, ext: result.Extension, mime: result.DetectedMIME, data: file.Data}

	if result.Extension == ".pdf" {
		info, err := document.InspectPDF(file.Data)
		if err != nil {
			u.rejected(ctx, candidateID, err.Error())
			return nil, apperror.Validation("Invalid resume file: PDF is corrupted or unreadable")
		}
		checked.pageCount = &info.Pages
	}

	verdict := u.scanner.Scan(ctx, name, file.Data)
	if verdict.Infected {
		u.rejected(ctx, candidateID, "malware: "+verdict.Threat)
		return nil, apperror.Validation("Invalid resume file: malware detected")
	}
	if verdict.Err != nil {
		logger.Log.Error("Resume scan failed", "scanner", verdict.Scanner, "error", verdict.Err)
		return nil, apperror.Unavailable("File scanning is unavailable, please try again later", verdict.Err)
	}

	return checked, nil
}

func (u *resumeUsecase) store(ctx context.Context, candidateID string, f *checkedFile) (*domain.FileReference, error) {
	ref, err := u.blobs.Store(ctx, domain.BlobObject{
		Key:         fmt.Sprintf("resumes/%s/%s%s", candidateID, uuid.New(), f.ext),
		Data:        f.data,
		ContentType: f.mime,
		FileName:    f.name,
	})
	if err != nil {
		return nil, apperror.Storage(err)
	}
	return ref, nil
}

func (u *resumeUsecase) discardBlob(ctx context.Context, candidateID, blobID string) {
	if err := u.blobs.Delete(ctx, blobID); err != nil {
		u.orphaned(ctx, candidateID, blobID, err)
	}
}

func (u *resumeUsecase) orphaned(ctx context.Context, candidateID, blobID string, cause error) {
	u.audit.Log(ctx, security.AuditEvent{
		Event:    security.EventBlobOrphaned,
		ActorID:  candidateID,
		Resource: "blob",
		TargetID: blobID,
		Details:  map[string]interface{}{"cause": cause.Error()},
	})
}

func (u *resumeUsecase) rejected(ctx context.Context, candidateID, reason string) {
	u.audit.Log(ctx, security.AuditEvent{
		Event:    security.EventUploadRejected,
		ActorID:  candidateID,
		Resource: "resume",
		Details:  map[string]interface{}{"reason": reason},
	})
}
