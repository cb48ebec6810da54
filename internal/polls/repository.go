package polls

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Chetan8299/live-polling-backend/internal/models"
)

// Repository handles poll persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a polls repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new poll and fills in its id and creation time.
func (r *Repository) Create(ctx context.Context, p *models.Poll) error {
	const query = `INSERT INTO polls (id, question, options, time_limit, owner_id)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at`
	err := r.pool.QueryRow(ctx, query, p.Question, p.Options, p.TimeLimit, p.OwnerID).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert poll: %w", err)
	}
	return nil
}

// GetByID returns a poll with its responses, or nil when no such poll exists.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Poll, error) {
	const query = `SELECT id, question, options, time_limit, owner_id, created_at
		FROM polls WHERE id = $1`
	var p models.Poll
	err := r.pool.QueryRow(ctx, query, id).
		Scan(&p.ID, &p.Question, &p.Options, &p.TimeLimit, &p.OwnerID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select poll: %w", err)
	}
	if err := r.loadResponses(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByOwner returns all polls created by a teacher connection, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Poll, error) {
	const query = `SELECT id, question, options, time_limit, owner_id, created_at
		FROM polls WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("select polls by owner: %w", err)
	}
	defer rows.Close()

	var result []*models.Poll
	for rows.Next() {
		var p models.Poll
		if err := rows.Scan(&p.ID, &p.Question, &p.Options, &p.TimeLimit, &p.OwnerID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan poll: %w", err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate polls: %w", err)
	}
	for _, p := range result {
		if err := r.loadResponses(ctx, p); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ListOrphaned returns polls with no recorded owner (rows predating owner tracking).
func (r *Repository) ListOrphaned(ctx context.Context) ([]*models.Poll, error) {
	const query = `SELECT id, question, options, time_limit, owner_id, created_at
		FROM polls WHERE owner_id = '' ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select orphaned polls: %w", err)
	}
	defer rows.Close()

	var result []*models.Poll
	for rows.Next() {
		var p models.Poll
		if err := rows.Scan(&p.ID, &p.Question, &p.Options, &p.TimeLimit, &p.OwnerID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan poll: %w", err)
		}
		result = append(result, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate polls: %w", err)
	}
	for _, p := range result {
		if err := r.loadResponses(ctx, p); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// AppendResponse records one respondent's answer to a poll. Deduplication is
// the session's job, not the store's; the table accepts repeated names.
func (r *Repository) AppendResponse(ctx context.Context, pollID uuid.UUID, res models.PollResponse) error {
	const query = `INSERT INTO poll_responses (poll_id, student_name, answer) VALUES ($1, $2, $3)`
	if _, err := r.pool.Exec(ctx, query, pollID, res.StudentName, res.Answer); err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

func (r *Repository) loadResponses(ctx context.Context, p *models.Poll) error {
	const query = `SELECT student_name, answer FROM poll_responses
		WHERE poll_id = $1 ORDER BY answered_at, id`
	rows, err := r.pool.Query(ctx, query, p.ID)
	if err != nil {
		return fmt.Errorf("select responses: %w", err)
	}
	defer rows.Close()

	p.Responses = p.Responses[:0]
	for rows.Next() {
		var res models.PollResponse
		if err := rows.Scan(&res.StudentName, &res.Answer); err != nil {
			return fmt.Errorf("scan response: %w", err)
		}
		p.Responses = append(p.Responses, res)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate responses: %w", err)
	}
	return nil
}
