package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ComplaintFilter captures list parameters.
type ComplaintFilter struct {
	ReporterID  *string
	Statuses    []domain.Status
	Categories  []domain.Category
	Escalated   *bool
	PublicOnly  bool
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	// Limit <= 0 returns every match.
	Limit  int
	Offset int
}

// MutateFunc changes a locked complaint and returns the timeline entries the
// change produced. Returning ErrNoChange aborts without writing.
type MutateFunc func(c *domain.Complaint) ([]domain.TimelineEntry, error)

// VoteFunc runs after the upvote counter changed, under the same lock.
type VoteFunc func(c *domain.Complaint) error

// ComplaintRepository encapsulates complaint, timeline and vote persistence.
// Update and ToggleVote serialize writers per complaint.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint, entries []domain.TimelineEntry) error
	Get(ctx context.Context, id string) (*domain.Complaint, error)
	GetMany(ctx context.Context, ids []string) ([]domain.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	ListOpen(ctx context.Context, limit, offset int) ([]domain.Complaint, error)
	Update(ctx context.Context, id string, fn MutateFunc) (*domain.Complaint, error)
	Timeline(ctx context.Context, complaintID string) ([]domain.TimelineEntry, error)
	ToggleVote(ctx context.Context, complaintID, voterID string, fn VoteFunc) (*domain.Complaint, bool, error)
	HasVoted(ctx context.Context, complaintID, voterID string) (bool, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository returns a Postgres-backed implementation.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, reporter_id, title, description, category, photo_url, latitude, longitude,
        address, is_public, is_anonymous, status, priority_score, upvotes, is_escalated, escalated_at,
        sla_hours, sla_deadline, resolution_photo_url, resolution_type, fraud_flags, suggested_category,
        classifier_confidence, version, created_at, updated_at, resolved_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint, entries []domain.TimelineEntry) error {
	if complaint.ID == "" {
		complaint.ID = uuid.NewString()
	}
	if complaint.Version == 0 {
		complaint.Version = 1
	}
	flags, err := encodeFlags(complaint.FraudFlags)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const query = `
        INSERT INTO complaints (` + complaintColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27)`
	if _, err := tx.Exec(ctx, query,
		complaint.ID,
		complaint.ReporterID,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.PhotoURL,
		complaint.Latitude,
		complaint.Longitude,
		complaint.Address,
		complaint.IsPublic,
		complaint.IsAnonymous,
		complaint.Status,
		complaint.PriorityScore,
		complaint.Upvotes,
		complaint.IsEscalated,
		complaint.EscalatedAt,
		complaint.SLAHours,
		complaint.SLADeadline,
		complaint.ResolutionPhotoURL,
		complaint.ResolutionType,
		flags,
		complaint.SuggestedCategory,
		complaint.ClassifierConfidence,
		complaint.Version,
		complaint.CreatedAt,
		complaint.UpdatedAt,
		complaint.ResolvedAt,
	); err != nil {
		return mapPgError(err)
	}

	if err := insertTimeline(ctx, tx, complaint.ID, entries); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *complaintRepository) Get(ctx context.Context, id string) (*domain.Complaint, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	row := r.pool.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id=$1`, id)
	complaint, err := scanComplaint(row)
	if err != nil {
		return nil, mapPgError(err)
	}
	return complaint, nil
}

func (r *complaintRepository) GetMany(ctx context.Context, ids []string) ([]domain.Complaint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return nil, err
	}
	return collectComplaints(rows)
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	base := `SELECT ` + complaintColumns + ` FROM complaints`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.ReporterID != nil {
		args = append(args, *filter.ReporterID)
		clauses = append(clauses, fmt.Sprintf("reporter_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, category := range filter.Categories {
			args = append(args, category)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Escalated != nil {
		args = append(args, *filter.Escalated)
		clauses = append(clauses, fmt.Sprintf("is_escalated=$%d", len(args)))
	}
	if filter.PublicOnly {
		clauses = append(clauses, "is_public")
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(description) LIKE $%d)", len(args), len(args)))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY priority_score DESC, created_at DESC", base, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		args = append(args, filter.Limit, filter.Offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectComplaints(rows)
}

func (r *complaintRepository) ListOpen(ctx context.Context, limit, offset int) ([]domain.Complaint, error) {
	const query = `SELECT ` + complaintColumns + ` FROM complaints
        WHERE status IN ('submitted','assigned','in_progress')
        ORDER BY created_at ASC, id ASC
        LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectComplaints(rows)
}

func (r *complaintRepository) Update(ctx context.Context, id string, fn MutateFunc) (*domain.Complaint, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	complaint, err := lockComplaint(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	entries, err := fn(complaint)
	if errors.Is(err, ErrNoChange) {
		return complaint, nil
	}
	if err != nil {
		return nil, err
	}

	if err := writeComplaint(ctx, tx, complaint); err != nil {
		return nil, err
	}
	if err := insertTimeline(ctx, tx, complaint.ID, entries); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return complaint, nil
}

func (r *complaintRepository) Timeline(ctx context.Context, complaintID string) ([]domain.TimelineEntry, error) {
	const query = `
        SELECT id, complaint_id, action, details, actor_id, actor_role, from_status, to_status, created_at
        FROM complaint_timeline WHERE complaint_id=$1 ORDER BY seq ASC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TimelineEntry
	for rows.Next() {
		var entry domain.TimelineEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ComplaintID,
			&entry.Action,
			&entry.Details,
			&entry.ActorID,
			&entry.ActorRole,
			&entry.FromStatus,
			&entry.ToStatus,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *complaintRepository) ToggleVote(ctx context.Context, complaintID, voterID string, fn VoteFunc) (*domain.Complaint, bool, error) {
	if _, err := uuid.Parse(complaintID); err != nil {
		return nil, false, ErrNotFound
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	complaint, err := lockComplaint(ctx, tx, complaintID)
	if err != nil {
		return nil, false, err
	}

	cmd, err := tx.Exec(ctx, `DELETE FROM complaint_votes WHERE complaint_id=$1 AND voter_id=$2`, complaintID, voterID)
	if err != nil {
		return nil, false, err
	}
	voted := cmd.RowsAffected() == 0
	if voted {
		if _, err := tx.Exec(ctx, `INSERT INTO complaint_votes (complaint_id, voter_id) VALUES ($1,$2)`, complaintID, voterID); err != nil {
			return nil, false, mapPgError(err)
		}
		complaint.Upvotes++
	} else if complaint.Upvotes > 0 {
		complaint.Upvotes--
	}

	if fn != nil {
		if err := fn(complaint); err != nil {
			return nil, false, err
		}
	}
	if err := writeComplaint(ctx, tx, complaint); err != nil {
		return nil, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return complaint, voted, nil
}

func (r *complaintRepository) HasVoted(ctx context.Context, complaintID, voterID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM complaint_votes WHERE complaint_id=$1 AND voter_id=$2)`,
		complaintID, voterID,
	).Scan(&exists)
	return exists, err
}

func lockComplaint(ctx context.Context, tx pgx.Tx, id string) (*domain.Complaint, error) {
	row := tx.QueryRow(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id=$1 FOR UPDATE`, id)
	complaint, err := scanComplaint(row)
	if err != nil {
		return nil, mapPgError(err)
	}
	return complaint, nil
}

func writeComplaint(ctx context.Context, tx pgx.Tx, complaint *domain.Complaint) error {
	flags, err := encodeFlags(complaint.FraudFlags)
	if err != nil {
		return err
	}
	const query = `
        UPDATE complaints SET category=$1, status=$2, priority_score=$3, upvotes=$4, is_escalated=$5,
            escalated_at=$6, resolution_photo_url=$7, resolution_type=$8, fraud_flags=$9,
            is_public=$10, resolved_at=$11, updated_at=$12, version=version+1
        WHERE id=$13 AND version=$14
        RETURNING version`
	var version int64
	if err := tx.QueryRow(ctx, query,
		complaint.Category,
		complaint.Status,
		complaint.PriorityScore,
		complaint.Upvotes,
		complaint.IsEscalated,
		complaint.EscalatedAt,
		complaint.ResolutionPhotoURL,
		complaint.ResolutionType,
		flags,
		complaint.IsPublic,
		complaint.ResolvedAt,
		complaint.UpdatedAt,
		complaint.ID,
		complaint.Version,
	).Scan(&version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrConflict
		}
		return err
	}
	complaint.Version = version
	return nil
}

func insertTimeline(ctx context.Context, tx pgx.Tx, complaintID string, entries []domain.TimelineEntry) error {
	const query = `
        INSERT INTO complaint_timeline (id, complaint_id, action, details, actor_id, actor_role, from_status, to_status, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	for i := range entries {
		entry := &entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		entry.ComplaintID = complaintID
		if _, err := tx.Exec(ctx, query,
			entry.ID,
			entry.ComplaintID,
			entry.Action,
			entry.Details,
			entry.ActorID,
			entry.ActorRole,
			entry.FromStatus,
			entry.ToStatus,
			entry.CreatedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var (
		complaint domain.Complaint
		flags     []byte
	)
	if err := row.Scan(
		&complaint.ID,
		&complaint.ReporterID,
		&complaint.Title,
		&complaint.Description,
		&complaint.Category,
		&complaint.PhotoURL,
		&complaint.Latitude,
		&complaint.Longitude,
		&complaint.Address,
		&complaint.IsPublic,
		&complaint.IsAnonymous,
		&complaint.Status,
		&complaint.PriorityScore,
		&complaint.Upvotes,
		&complaint.IsEscalated,
		&complaint.EscalatedAt,
		&complaint.SLAHours,
		&complaint.SLADeadline,
		&complaint.ResolutionPhotoURL,
		&complaint.ResolutionType,
		&flags,
		&complaint.SuggestedCategory,
		&complaint.ClassifierConfidence,
		&complaint.Version,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
		&complaint.ResolvedAt,
	); err != nil {
		return nil, err
	}
	if len(flags) > 0 {
		if err := json.Unmarshal(flags, &complaint.FraudFlags); err != nil {
			return nil, fmt.Errorf("decode fraud_flags: %w", err)
		}
	}
	return &complaint, nil
}

func collectComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	defer rows.Close()
	var result []domain.Complaint
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *complaint)
	}
	return result, rows.Err()
}

func encodeFlags(flags []domain.FraudFlag) ([]byte, error) {
	if flags == nil {
		flags = []domain.FraudFlag{}
	}
	return json.Marshal(flags)
}
