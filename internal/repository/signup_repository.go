package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/crewcall/crewcall-api/internal/models"
)

// ErrAlreadyArrived indicates the arrival flag was already set for a signup.
var ErrAlreadyArrived = errors.New("signup already arrived")

// SignupRepository handles persistence for volunteer signups.
type SignupRepository struct {
	db *sqlx.DB
}

// NewSignupRepository constructs the repository.
func NewSignupRepository(db *sqlx.DB) *SignupRepository {
	return &SignupRepository{db: db}
}

// ListEligibleByPosition returns not-yet-arrived signups for a position,
// ordered by scheduled start then id so the display order is stable.
func (r *SignupRepository) ListEligibleByPosition(ctx context.Context, positionID string) ([]models.Signup, error) {
	query := `SELECT id, position_id, volunteer_name, email, phone, start_time, end_time, arrived, created_at, updated_at
FROM signups
WHERE position_id = $1 AND arrived = false
ORDER BY start_time ASC, id ASC`
	var rows []models.Signup
	if err := r.db.SelectContext(ctx, &rows, query, positionID); err != nil {
		return nil, fmt.Errorf("list eligible signups: %w", err)
	}
	return rows, nil
}

// List returns signups matching the provided filter.
func (r *SignupRepository) List(ctx context.Context, filter models.SignupFilter) ([]models.Signup, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, position_id, volunteer_name, email, phone, start_time, end_time, arrived, created_at, updated_at
FROM signups
WHERE ($1 = '' OR position_id = $1) AND ($2::boolean IS NULL OR arrived = $2)
ORDER BY start_time ASC, id ASC
LIMIT %d OFFSET %d`, size, offset)

	var rows []models.Signup
	if err := r.db.SelectContext(ctx, &rows, query, filter.PositionID, filter.Arrived); err != nil {
		return nil, 0, fmt.Errorf("list signups: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM signups WHERE ($1 = '' OR position_id = $1) AND ($2::boolean IS NULL OR arrived = $2)`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, filter.PositionID, filter.Arrived); err != nil {
		return nil, 0, fmt.Errorf("count signups: %w", err)
	}
	return rows, total, nil
}

// MarkArrived performs the conditional arrival transition for a signup and
// recomputes the position fill count in the same transaction. The update is
// a single field set keyed by id, so re-applying it is safe; a signup whose
// flag is already set yields ErrAlreadyArrived, an absent one sql.ErrNoRows.
func (r *SignupRepository) MarkArrived(ctx context.Context, signupID, positionID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin arrival: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	var updatedID string
	err = tx.QueryRowxContext(ctx,
		`UPDATE signups SET arrived = true, updated_at = $3
WHERE id = $1 AND position_id = $2 AND arrived = false
RETURNING id`, signupID, positionID, time.Now().UTC()).Scan(&updatedID)
	if err != nil {
		if err != sql.ErrNoRows {
			return fmt.Errorf("mark arrived: %w", err)
		}
		var arrived bool
		getErr := tx.GetContext(ctx, &arrived,
			"SELECT arrived FROM signups WHERE id = $1 AND position_id = $2", signupID, positionID)
		if getErr != nil {
			return getErr
		}
		if arrived {
			return ErrAlreadyArrived
		}
		return sql.ErrNoRows
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE positions SET filled = (SELECT COUNT(*) FROM signups WHERE position_id = $1 AND arrived = true), updated_at = $2
WHERE id = $1`, positionID, time.Now().UTC()); err != nil {
		return fmt.Errorf("recompute filled: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit arrival: %w", err)
	}
	commit = true
	return nil
}

// Create inserts a new signup.
func (r *SignupRepository) Create(ctx context.Context, signup *models.Signup) (*models.Signup, error) {
	now := time.Now().UTC()
	if signup.ID == "" {
		signup.ID = uuid.NewString()
	}
	signup.CreatedAt = now
	signup.UpdatedAt = now
	query := `INSERT INTO signups (id, position_id, volunteer_name, email, phone, start_time, end_time, arrived, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8, $9)
RETURNING id, position_id, volunteer_name, email, phone, start_time, end_time, arrived, created_at, updated_at`
	var stored models.Signup
	if err := r.db.GetContext(ctx, &stored, query, signup.ID, signup.PositionID, signup.VolunteerName,
		signup.Email, signup.Phone, signup.StartTime, signup.EndTime, signup.CreatedAt, signup.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create signup: %w", err)
	}
	return &stored, nil
}

// BulkInsert stores imported roster rows in one transaction.
func (r *SignupRepository) BulkInsert(ctx context.Context, signups []models.Signup) ([]models.Signup, error) {
	if len(signups) == 0 {
		return nil, nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin bulk signups: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	query := `INSERT INTO signups (id, position_id, volunteer_name, email, phone, start_time, end_time, arrived, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8, $9)`
	stored := make([]models.Signup, 0, len(signups))
	for i := range signups {
		rec := &signups[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.CreatedAt = now
		rec.UpdatedAt = now
		if _, err := tx.ExecContext(ctx, query, rec.ID, rec.PositionID, rec.VolunteerName,
			rec.Email, rec.Phone, rec.StartTime, rec.EndTime, rec.CreatedAt, rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("bulk insert signups: %w", err)
		}
		stored = append(stored, *rec)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit bulk signups: %w", err)
	}
	commit = true
	return stored, nil
}

// Delete removes a signup.
func (r *SignupRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM signups WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete signup: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete signup: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete signup: no row with id %s", id)
	}
	return nil
}

// RosterByEvent returns all signups for an event grouped by position,
// used by roster exports.
func (r *SignupRepository) RosterByEvent(ctx context.Context, eventID string) ([]models.RosterRow, error) {
	query := `SELECT p.name AS position_name, s.volunteer_name, s.email, s.phone, s.start_time, s.end_time, s.arrived
FROM signups s
JOIN positions p ON p.id = s.position_id
WHERE p.event_id = $1
ORDER BY p.name ASC, s.start_time ASC, s.id ASC`
	var rows []models.RosterRow
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("event roster: %w", err)
	}
	return rows, nil
}
