package postgres

import (
	"context"

	"go-jobboard-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type applicationRepo struct {
	db *pgxpool.Pool
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *pgxpool.Pool) domain.ApplicationRepository {
	return &applicationRepo{db: db}
}

// Create relies on applications_job_candidate_key to settle concurrent applies;
// the loser gets ErrDuplicate.
func (r *applicationRepo) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications (id, job_id, candidate_id, recruiter_id, resume_id,
			resume_snapshot_url, resume_snapshot_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		app.ID,
		app.JobID,
		app.CandidateID,
		app.RecruiterID,
		app.ResumeID,
		app.ResumeSnapshot.FileURL,
		app.ResumeSnapshot.FileName,
		app.Status,
		app.CreatedAt,
		app.UpdatedAt,
	)
	return translate(err)
}

func (r *applicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	query := `
		SELECT id, job_id, candidate_id, recruiter_id, resume_id,
			resume_snapshot_url, resume_snapshot_name, status, created_at, updated_at
		FROM applications
		WHERE id = $1`

	var app domain.Application
	err := r.db.QueryRow(ctx, query, id).Scan(
		&app.ID, &app.JobID, &app.CandidateID, &app.RecruiterID, &app.ResumeID,
		&app.ResumeSnapshot.FileURL, &app.ResumeSnapshot.FileName, &app.Status,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (r *applicationRepo) Exists(ctx context.Context, jobID uuid.UUID, candidateID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM applications WHERE job_id = $1 AND candidate_id = $2)`,
		jobID, candidateID,
	).Scan(&exists)
	return exists, err
}

// ListByJob inner-joins users, so applications whose candidate account is gone drop out.
func (r *applicationRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]domain.Applicant, error) {
	query := `
		SELECT a.id, a.candidate_id, NULLIF(u.full_name, ''), NULLIF(u.email, ''),
			a.resume_id, a.resume_snapshot_url, a.resume_snapshot_name, a.status, a.created_at
		FROM applications a
		JOIN users u ON u.id = a.candidate_id
		WHERE a.job_id = $1
		ORDER BY a.created_at DESC`

	rows, err := r.db.Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applicants := []domain.Applicant{}
	for rows.Next() {
		var a domain.Applicant
		if err := rows.Scan(
			&a.ApplicationID, &a.CandidateID, &a.CandidateName, &a.CandidateEmail,
			&a.ResumeID, &a.Resume.FileURL, &a.Resume.FileName, &a.Status, &a.AppliedAt,
		); err != nil {
			return nil, err
		}
		applicants = append(applicants, a)
	}
	return applicants, rows.Err()
}

func (r *applicationRepo) ListByCandidate(ctx context.Context, candidateID string) ([]domain.CandidateApplication, error) {
	query := `
		SELECT a.id, a.job_id, j.title, j.company_name, j.status, a.status, a.created_at
		FROM applications a
		JOIN jobs j ON j.id = a.job_id
		WHERE a.candidate_id = $1
		ORDER BY a.created_at DESC`

	rows, err := r.db.Query(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := []domain.CandidateApplication{}
	for rows.Next() {
		var a domain.CandidateApplication
		if err := rows.Scan(
			&a.ApplicationID, &a.JobID, &a.JobTitle, &a.CompanyName, &a.JobStatus, &a.Status, &a.AppliedAt,
		); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}

func (r *applicationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return requireAffected(r.db.Exec(ctx,
		`UPDATE applications SET status = $2, updated_at = now() WHERE id = $1`, id, status))
}
