package postgres

import (
	"context"

	"go-jobboard-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const resumeColumns = `id, candidate_id, blob_id, file_url, file_name, file_size, mime_type, page_count, status, created_at, updated_at`

type resumeRepo struct {
	db *pgxpool.Pool
}

func NewResumeRepository(db *pgxpool.Pool) domain.ResumeRepository {
	return &resumeRepo{db: db}
}

func scanResume(row rowScanner) (*domain.Resume, error) {
	var res domain.Resume
	err := row.Scan(
		&res.ID, &res.CandidateID, &res.File.BlobID, &res.File.URL, &res.FileName,
		&res.FileSize, &res.MimeType, &res.PageCount, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &res, nil
}

// Create fails with ErrDuplicate via the UNIQUE(candidate_id) constraint.
func (r *resumeRepo) Create(ctx context.Context, res *domain.Resume) error {
	query := `INSERT INTO resumes (` + resumeColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, query,
		res.ID, res.CandidateID, res.File.BlobID, res.File.URL, res.FileName,
		res.FileSize, res.MimeType, res.PageCount, res.Status, res.CreatedAt, res.UpdatedAt,
	)
	return translate(err)
}

func (r *resumeRepo) GetByCandidateID(ctx context.Context, candidateID string) (*domain.Resume, error) {
	return scanResume(r.db.QueryRow(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE candidate_id = $1`, candidateID))
}

func (r *resumeRepo) GetByIDForCandidate(ctx context.Context, id uuid.UUID, candidateID string) (*domain.Resume, error) {
	return scanResume(r.db.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE id = $1 AND candidate_id = $2`, id, candidateID))
}

func (r *resumeRepo) UpdateFile(ctx context.Context, res *domain.Resume) error {
	query := `UPDATE resumes SET blob_id = $3, file_url = $4, file_name = $5, file_size = $6,
	              mime_type = $7, page_count = $8, status = $9, updated_at = $10
              WHERE id = $1 AND candidate_id = $2`
	return requireAffected(r.db.Exec(ctx, query,
		res.ID, res.CandidateID, res.File.BlobID, res.File.URL, res.FileName,
		res.FileSize, res.MimeType, res.PageCount, res.Status, res.UpdatedAt,
	))
}

func (r *resumeRepo) Delete(ctx context.Context, id uuid.UUID, candidateID string) error {
	return requireAffected(r.db.Exec(ctx, `DELETE FROM resumes WHERE id = $1 AND candidate_id = $2`, id, candidateID))
}
