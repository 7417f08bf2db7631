package poll

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores polls in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Exists reports whether a poll already uses the code.
func (r *PostgresRepository) Exists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM polls WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

// CreatePoll inserts the poll and its roster in one transaction. The insert
// is conditional on the code being absent; a conflicting code returns
// ErrCodeTaken and leaves the store untouched.
func (r *PostgresRepository) CreatePoll(ctx context.Context, info Info, participants []Participant) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `INSERT INTO polls (code, title, description, candidate_count, is_public, created_at)
        VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (code) DO NOTHING`,
		info.Code, info.Title, info.Description, info.CandidateCount, info.IsPublic, info.CreatedAt.UTC())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCodeTaken
	}

	for _, p := range participants {
		participantID, err := uuid.Parse(p.ID)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO participants (id, poll_code, name, phone, affiliation, student_id)
            VALUES ($1, $2, $3, $4, $5, $6)`,
			participantID, info.Code, p.Name, p.Phone, p.Affiliation, p.StudentID); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Get fetches poll metadata by code.
func (r *PostgresRepository) Get(ctx context.Context, code string) (Info, error) {
	row := r.db.QueryRow(ctx, `SELECT code, title, description, candidate_count, is_public, created_at
        FROM polls WHERE code = $1`, code)
	var info Info
	var createdAt time.Time
	if err := row.Scan(&info.Code, &info.Title, &info.Description, &info.CandidateCount, &info.IsPublic, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Info{}, ErrNotFound
		}
		return Info{}, err
	}
	info.CreatedAt = createdAt.UTC()
	return info, nil
}

// GetParticipants fetches a poll's roster. Unknown codes return ErrNotFound
// so callers can distinguish "no such poll" from an empty roster.
func (r *PostgresRepository) GetParticipants(ctx context.Context, code string) ([]Participant, error) {
	if _, err := r.Get(ctx, code); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT id, name, phone, affiliation, student_id
        FROM participants WHERE poll_code = $1 ORDER BY name`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []Participant
	for rows.Next() {
		var p Participant
		var id uuid.UUID
		if err := rows.Scan(&id, &p.Name, &p.Phone, &p.Affiliation, &p.StudentID); err != nil {
			return nil, err
		}
		p.ID = id.String()
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
