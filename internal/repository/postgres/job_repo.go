package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-jobboard-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const jobColumns = `id, recruiter_id, title, description, required_skills, location, job_type, is_remote,
	experience_level, salary_range, company_name, status, application_count, expires_at, created_at, updated_at`

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var job domain.Job
	err := row.Scan(
		&job.ID, &job.RecruiterID, &job.Title, &job.Description, pq.Array(&job.RequiredSkills),
		&job.Location, &job.JobType, &job.IsRemote, &job.ExperienceLevel, &job.SalaryRange,
		&job.CompanyName, &job.Status, &job.ApplicationCount, &job.ExpiresAt, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) Create(ctx context.Context, job *domain.Job) error {
	query := `INSERT INTO jobs (id, recruiter_id, title, description, required_skills, location, job_type, is_remote,
	              experience_level, salary_range, company_name, status, application_count, expires_at, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.db.Exec(ctx, query,
		job.ID, job.RecruiterID, job.Title, job.Description, pq.Array(job.RequiredSkills), job.Location,
		job.JobType, job.IsRemote, job.ExperienceLevel, job.SalaryRange, job.CompanyName, job.Status,
		job.ApplicationCount, job.ExpiresAt, job.CreatedAt, job.UpdatedAt,
	)
	return translate(err)
}

func (r *jobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	job, err := scanJob(r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err)
	}
	return job, nil
}

// FetchPublic hardcodes the visibility predicate so no filter can widen it.
func (r *jobRepo) FetchPublic(ctx context.Context, filter domain.JobFilter, now time.Time) ([]domain.Job, int64, error) {
	where := []string{"status = 'open'", "expires_at > $1"}
	return r.fetchPage(ctx, filter, where, []any{now})
}

func (r *jobRepo) FetchAll(ctx context.Context, filter domain.JobFilter) ([]domain.Job, int64, error) {
	return r.fetchPage(ctx, filter, nil, nil)
}

func (r *jobRepo) fetchPage(ctx context.Context, filter domain.JobFilter, where []string, args []any) ([]domain.Job, int64, error) {
	where, args = appendJobFilter(filter, where, args)

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s FROM jobs%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		jobColumns, clause, len(args)+1, len(args)+2)
	jobs, err := r.queryJobs(ctx, query, append(args, filter.PageSize, filter.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func appendJobFilter(filter domain.JobFilter, where []string, args []any) ([]string, []any) {
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if filter.Title != "" {
		add("strpos(lower(title), lower($%d)) > 0", filter.Title)
	}
	if filter.Location != "" {
		add("strpos(lower(location), lower($%d)) > 0", filter.Location)
	}
	if filter.JobType != "" {
		add("job_type = $%d", filter.JobType)
	}
	if filter.IsRemote != nil {
		add("is_remote = $%d", *filter.IsRemote)
	}
	if filter.Skill != "" {
		add("EXISTS (SELECT 1 FROM unnest(required_skills) s WHERE lower(s) = lower($%d))", filter.Skill)
	}
	return where, args
}

func (r *jobRepo) FetchByRecruiter(ctx context.Context, recruiterID string) ([]domain.Job, error) {
	return r.queryJobs(ctx, `SELECT `+jobColumns+` FROM jobs WHERE recruiter_id = $1 ORDER BY created_at DESC`, recruiterID)
}

func (r *jobRepo) queryJobs(ctx context.Context, query string, args ...any) ([]domain.Job, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// Update writes the mutable fields. recruiter_id and application_count are never touched here.
// A job closed since it was read is left alone; jobs are never deleted, so no
// matching row means it is closed.
func (r *jobRepo) Update(ctx context.Context, job *domain.Job) error {
	query := `UPDATE jobs SET title = $2, description = $3, required_skills = $4, location = $5, job_type = $6,
	              is_remote = $7, experience_level = $8, salary_range = $9, company_name = $10, status = $11,
	              expires_at = $12, updated_at = $13
              WHERE id = $1 AND status <> 'closed'`
	err := requireAffected(r.db.Exec(ctx, query,
		job.ID, job.Title, job.Description, pq.Array(job.RequiredSkills), job.Location, job.JobType,
		job.IsRemote, job.ExperienceLevel, job.SalaryRange, job.CompanyName, job.Status,
		job.ExpiresAt, job.UpdatedAt,
	))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrJobClosed
	}
	return err
}

func (r *jobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return requireAffected(r.db.Exec(ctx,
		`UPDATE jobs SET status = $2, updated_at = now() WHERE id = $1`, id, status))
}

// IncrementApplicationCount is a single UPDATE so concurrent applies never lose a count.
func (r *jobRepo) IncrementApplicationCount(ctx context.Context, id uuid.UUID) error {
	return requireAffected(r.db.Exec(ctx,
		`UPDATE jobs SET application_count = application_count + 1 WHERE id = $1`, id))
}
