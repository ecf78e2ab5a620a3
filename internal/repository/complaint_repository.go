package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/civicvoice/complaint-service/internal/domain"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrNoChange may be returned by a MutateFunc to skip the write and keep the stored record.
var ErrNoChange = errors.New("no change")

// MutateFunc edits a locked copy of a complaint inside Update.
type MutateFunc func(c *domain.Complaint) error

// ComplaintFilter captures list parameters.
type ComplaintFilter struct {
	Department *domain.Department
	Status     *domain.ComplaintStatus
	City       *string
	Emergency  *bool

	// HasLocation keeps only complaints with coordinates.
	HasLocation bool
	Limit       int
	Offset      int
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, int, error)
	// Update applies mutate atomically: no other Update on the same id interleaves.
	Update(ctx context.Context, id string, mutate MutateFunc) (*domain.Complaint, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, filter StatsFilter) (*ComplaintStats, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates the Postgres-backed repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, title, description, department, city, address, lat, lng, tags, images,
               citizen_id, assigned_to, status, emergency, votes, voted_by, priority_score,
               escalation_level, sla_deadline, resolved_at, resolution_time, satisfaction_rating,
               rated_by, activity_log, created_at, updated_at`

func (r *complaintRepository) Create(ctx context.Context, c *domain.Complaint) error {
	if err := ValidateComplaint(c); err != nil {
		return err
	}
	const query = `
        INSERT INTO complaints (id, title, description, department, city, address, lat, lng, tags, images,
            citizen_id, assigned_to, status, emergency, votes, voted_by, priority_score, escalation_level,
            sla_deadline, resolved_at, resolution_time, satisfaction_rating, rated_by, activity_log,
            created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26)`
	_, err := r.pool.Exec(ctx, query,
		c.ID,
		c.Title,
		c.Description,
		c.Department,
		c.City,
		c.Location.Address,
		c.Location.Lat,
		c.Location.Lng,
		nonNilStrings(c.Tags),
		nonNilImages(c.Images),
		c.CitizenID,
		c.AssignedTo,
		c.Status,
		c.Emergency,
		c.Votes,
		nonNilStrings(c.VotedBy),
		c.PriorityScore,
		c.EscalationLevel,
		c.SLADeadline,
		c.ResolvedAt,
		c.ResolutionTime,
		c.SatisfactionRating,
		c.RatedBy,
		nonNilActivity(c.ActivityLog),
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	c, err := scanComplaint(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, int, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.City != nil {
		args = append(args, *filter.City)
		clauses = append(clauses, fmt.Sprintf("city=$%d", len(args)))
	}
	if filter.Emergency != nil {
		args = append(args, *filter.Emergency)
		clauses = append(clauses, fmt.Sprintf("emergency=$%d", len(args)))
	}
	if filter.HasLocation {
		clauses = append(clauses, "lat IS NOT NULL AND lng IS NOT NULL")
	}
	where := strings.Join(clauses, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM complaints WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s
        ORDER BY priority_score DESC, created_at DESC, id ASC LIMIT %d OFFSET %d`,
		complaintColumns, where, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *c)
	}
	return result, total, rows.Err()
}

func (r *complaintRepository) Update(ctx context.Context, id string, mutate MutateFunc) (*domain.Complaint, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1 FOR UPDATE`
	current, err := scanComplaint(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := mutate(current); err != nil {
		if errors.Is(err, ErrNoChange) {
			return current, tx.Commit(ctx)
		}
		return nil, err
	}
	if err := ValidateComplaint(current); err != nil {
		return nil, err
	}

	const update = `
        UPDATE complaints SET assigned_to=$1, status=$2, votes=$3, voted_by=$4, priority_score=$5,
            escalation_level=$6, resolved_at=$7, resolution_time=$8, satisfaction_rating=$9, rated_by=$10,
            activity_log=$11, tags=$12, images=$13, updated_at=$14
        WHERE id=$15`
	cmd, err := tx.Exec(ctx, update,
		current.AssignedTo,
		current.Status,
		current.Votes,
		nonNilStrings(current.VotedBy),
		current.PriorityScore,
		current.EscalationLevel,
		current.ResolvedAt,
		current.ResolutionTime,
		current.SatisfactionRating,
		current.RatedBy,
		nonNilActivity(current.ActivityLog),
		nonNilStrings(current.Tags),
		nonNilImages(current.Images),
		current.UpdatedAt,
		current.ID,
	)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return current, nil
}

func (r *complaintRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM complaints WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Department,
		&c.City,
		&c.Location.Address,
		&c.Location.Lat,
		&c.Location.Lng,
		&c.Tags,
		&c.Images,
		&c.CitizenID,
		&c.AssignedTo,
		&c.Status,
		&c.Emergency,
		&c.Votes,
		&c.VotedBy,
		&c.PriorityScore,
		&c.EscalationLevel,
		&c.SLADeadline,
		&c.ResolvedAt,
		&c.ResolutionTime,
		&c.SatisfactionRating,
		&c.RatedBy,
		&c.ActivityLog,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

const maxPageSize = 500

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func nonNilStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilImages(in []domain.Image) []domain.Image {
	if in == nil {
		return []domain.Image{}
	}
	return in
}

func nonNilActivity(in []domain.ActivityEntry) []domain.ActivityEntry {
	if in == nil {
		return []domain.ActivityEntry{}
	}
	return in
}

// StatsFilter narrows the aggregate projection.
type StatsFilter struct {
	Department  *domain.Department
	CreatedFrom *time.Time
	CreatedTo   *time.Time

	// ResolvedFrom keeps only complaints resolved at or after the instant.
	ResolvedFrom *time.Time
}

// DepartmentBreakdown is a per-department slice of ComplaintStats.
type DepartmentBreakdown struct {
	Department  domain.Department `json:"department"`
	Total       int               `json:"total"`
	Resolved    int               `json:"resolved"`
	Pending     int               `json:"pending"`
	Overdue     int               `json:"overdue"`
	AvgPriority float64           `json:"avg_priority"`
}

// ComplaintStats is the read-only aggregate used by dashboards and report rendering.
type ComplaintStats struct {
	Total              int                   `json:"total"`
	Pending            int                   `json:"pending"`
	InProgress         int                   `json:"in_progress"`
	Resolved           int                   `json:"resolved"`
	Overdue            int                   `json:"overdue"`
	Escalated          int                   `json:"escalated"`
	AvgResolutionHours *float64              `json:"avg_resolution_hours"`
	AvgRating          *float64              `json:"avg_rating"`
	ByDepartment       []DepartmentBreakdown `json:"by_department,omitempty"`
}

// ResolutionRate returns the resolved share in percent.
func (s *ComplaintStats) ResolutionRate() float64 {
	if s == nil || s.Total == 0 {
		return 0
	}
	return float64(s.Resolved) / float64(s.Total) * 100
}

func (r *complaintRepository) Stats(ctx context.Context, filter StatsFilter) (*ComplaintStats, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if filter.ResolvedFrom != nil {
		args = append(args, *filter.ResolvedFrom)
		clauses = append(clauses, fmt.Sprintf("resolved_at >= $%d", len(args)))
	}
	where := strings.Join(clauses, " AND ")

	var stats ComplaintStats
	query := `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status='Pending'),
               COUNT(*) FILTER (WHERE status='In Progress'),
               COUNT(*) FILTER (WHERE status='Resolved'),
               COUNT(*) FILTER (WHERE status='Overdue'),
               COUNT(*) FILTER (WHERE status='Escalated'),
               AVG(resolution_time),
               AVG(satisfaction_rating)::float8
        FROM complaints WHERE ` + where
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.InProgress,
		&stats.Resolved,
		&stats.Overdue,
		&stats.Escalated,
		&stats.AvgResolutionHours,
		&stats.AvgRating,
	); err != nil {
		return nil, err
	}

	if filter.Department != nil {
		return &stats, nil
	}

	breakdown := `
        SELECT department, COUNT(*),
               COUNT(*) FILTER (WHERE status='Resolved'),
               COUNT(*) FILTER (WHERE status='Pending'),
               COUNT(*) FILTER (WHERE status='Overdue'),
               COALESCE(AVG(priority_score), 0)::float8
        FROM complaints WHERE ` + where + `
        GROUP BY department ORDER BY COUNT(*) DESC, department ASC`
	rows, err := r.pool.Query(ctx, breakdown, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var d DepartmentBreakdown
		if err := rows.Scan(&d.Department, &d.Total, &d.Resolved, &d.Pending, &d.Overdue, &d.AvgPriority); err != nil {
			return nil, err
		}
		stats.ByDepartment = append(stats.ByDepartment, d)
	}
	return &stats, rows.Err()
}
