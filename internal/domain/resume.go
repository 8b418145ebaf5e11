package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	ResumeStatusActive = "active"
	// ResumeStatusInactive is reserved for moderation; nothing sets it yet, and
	// lookups treat such a resume as absent.
	ResumeStatusInactive = "inactive"
)

// FileReference points at a blob held by the external Blob Store.
type FileReference struct {
	BlobID string `json:"blob_id"`
	URL    string `json:"url"`
}

// Resume is a candidate's single uploaded document.
type Resume struct {
	ID          uuid.UUID     `json:"id"`
	CandidateID string        `json:"candidate_id"`
	File        FileReference `json:"file"`
	FileName    string        `json:"file_name"`
	FileSize    int64         `json:"file_size"`
	MimeType    string        `json:"mime_type"`
	PageCount   *int          `json:"page_count,omitempty"`
	Status      string        `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ResumeFile is an upload as received at the boundary.
type ResumeFile struct {
	FileName string
	Data     []byte
}

// BlobObject is what the Blob Store is asked to persist.
type BlobObject struct {
	Key         string
	Data        []byte
	ContentType string
	FileName    string
}

// BlobStore is the external durable file storage.
type BlobStore interface {
	Store(ctx context.Context, obj BlobObject) (*FileReference, error)
	Delete(ctx context.Context, blobID string) error
}

type ResumeRepository interface {
	// Create fails with ErrDuplicate when the candidate already has a resume.
	Create(ctx context.Context, resume *Resume) error
	GetByCandidateID(ctx context.Context, candidateID string) (*Resume, error)
	GetByIDForCandidate(ctx context.Context, id uuid.UUID, candidateID string) (*Resume, error)
	UpdateFile(ctx context.Context, resume *Resume) error
	Delete(ctx context.Context, id uuid.UUID, candidateID string) error
}

// ResumeLookup is the part of the resume registry the application flow depends on.
type ResumeLookup interface {
	GetActiveResume(ctx context.Context, candidateID string) (*Resume, error)
}

type ResumeUsecase interface {
	ResumeLookup
	Upload(ctx context.Context, candidateID string, file ResumeFile) (*Resume, error)
	Replace(ctx context.Context, candidateID, resumeID string, file ResumeFile) (*Resume, error)
	Get(ctx context.Context, candidateID string) (*Resume, error)
	Delete(ctx context.Context, candidateID, resumeID string) error
}
