package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/crewcall/crewcall-api/internal/models"
)

// PositionRepository handles persistence for staffing positions.
type PositionRepository struct {
	db *sqlx.DB
}

// NewPositionRepository constructs the repository.
func NewPositionRepository(db *sqlx.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// GetDetail fetches a position joined with its parent event in one read.
// sql.ErrNoRows passes through so callers can map it to NotFound.
func (r *PositionRepository) GetDetail(ctx context.Context, id string) (*models.PositionDetail, error) {
	query := `SELECT p.id, p.event_id, p.name, p.needed, p.filled, p.description, p.skill_level,
p.latitude, p.longitude, p.created_at, p.updated_at,
e.name AS event_name, e.date AS event_date, e.time AS event_time, e.location AS event_location
FROM positions p
JOIN events e ON e.id = p.event_id
WHERE p.id = $1`
	var detail models.PositionDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListSummaries returns dashboard projections of positions, optionally
// scoped to a single event.
func (r *PositionRepository) ListSummaries(ctx context.Context, eventID string) ([]models.PositionSummary, error) {
	query := `SELECT p.id, p.event_id, e.name AS event_name, p.name, p.needed, p.filled, p.latitude, p.longitude
FROM positions p
JOIN events e ON e.id = p.event_id
WHERE ($1 = '' OR p.event_id = $1)
ORDER BY e.date ASC, p.name ASC`
	var rows []models.PositionSummary
	if err := r.db.SelectContext(ctx, &rows, query, eventID); err != nil {
		return nil, fmt.Errorf("list position summaries: %w", err)
	}
	return rows, nil
}

// List returns positions matching the provided filter.
func (r *PositionRepository) List(ctx context.Context, filter models.PositionFilter) ([]models.Position, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.EventID != "" {
		where = append(where, fmt.Sprintf("event_id = $%d", len(args)+1))
		args = append(args, filter.EventID)
	}
	whereClause := strings.Join(where, " AND ")

	allowedSort := map[string]string{
		"name":       "name",
		"needed":     "needed",
		"created_at": "created_at",
	}
	sortColumn, ok := allowedSort[filter.SortBy]
	if !ok {
		sortColumn = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, event_id, name, needed, filled, description, skill_level, latitude, longitude, created_at, updated_at
FROM positions WHERE %s
ORDER BY %s %s
LIMIT %d OFFSET %d`, whereClause, sortColumn, order, size, offset)

	var rows []models.Position
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list positions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM positions WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count positions: %w", err)
	}
	return rows, total, nil
}

// FindByID returns a single position.
func (r *PositionRepository) FindByID(ctx context.Context, id string) (*models.Position, error) {
	query := `SELECT id, event_id, name, needed, filled, description, skill_level, latitude, longitude, created_at, updated_at
FROM positions WHERE id = $1`
	var position models.Position
	if err := r.db.GetContext(ctx, &position, query, id); err != nil {
		return nil, err
	}
	return &position, nil
}

// Create inserts a new position.
func (r *PositionRepository) Create(ctx context.Context, position *models.Position) (*models.Position, error) {
	now := time.Now().UTC()
	if position.ID == "" {
		position.ID = uuid.NewString()
	}
	position.CreatedAt = now
	position.UpdatedAt = now
	query := `INSERT INTO positions (id, event_id, name, needed, filled, description, skill_level, latitude, longitude, created_at, updated_at)
VALUES ($1, $2, $3, $4, 0, $5, $6, $7, $8, $9, $10)
RETURNING id, event_id, name, needed, filled, description, skill_level, latitude, longitude, created_at, updated_at`
	var stored models.Position
	if err := r.db.GetContext(ctx, &stored, query, position.ID, position.EventID, position.Name, position.Needed,
		position.Description, position.SkillLevel, position.Latitude, position.Longitude, position.CreatedAt, position.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create position: %w", err)
	}
	return &stored, nil
}

// Update applies organizer edits to a position. Filled is never written
// directly; it is recomputed from arrivals.
func (r *PositionRepository) Update(ctx context.Context, position *models.Position) (*models.Position, error) {
	position.UpdatedAt = time.Now().UTC()
	query := `UPDATE positions SET name = $2, needed = $3, description = $4, skill_level = $5,
latitude = $6, longitude = $7, updated_at = $8
WHERE id = $1
RETURNING id, event_id, name, needed, filled, description, skill_level, latitude, longitude, created_at, updated_at`
	var stored models.Position
	if err := r.db.GetContext(ctx, &stored, query, position.ID, position.Name, position.Needed,
		position.Description, position.SkillLevel, position.Latitude, position.Longitude, position.UpdatedAt); err != nil {
		return nil, err
	}
	return &stored, nil
}

// Delete removes a position and its signups.
func (r *PositionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM positions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete position: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete position: no row with id %s", id)
	}
	return nil
}
