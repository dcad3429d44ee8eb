package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"adoption-center/internal/domain/followups"
)

type FollowUpsRepo struct {
	db *sql.DB
}

func NewFollowUpsRepo(db *sql.DB) *FollowUpsRepo {
	return &FollowUpsRepo{db: db}
}

const followUpColumns = `
	id, pet_id, request_id, type, scheduled,
	completed, completed_at, condition, observations, responsible_by,
	created_at, updated_at, version
`

func (r *FollowUpsRepo) Create(ctx context.Context, f followups.FollowUp) error {
	if f.Version == 0 {
		f.Version = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO follow_ups (`+followUpColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		f.ID, f.PetID, f.RequestID, f.Type, f.Scheduled,
		f.Completed, toNullTime(f.CompletedAt), f.Condition, f.Observations, f.ResponsibleBy,
		f.CreatedAt, f.UpdatedAt, f.Version,
	)
	return err
}

func (r *FollowUpsRepo) GetByID(ctx context.Context, id string) (followups.FollowUp, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return followups.FollowUp{}, followups.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+followUpColumns+` FROM follow_ups WHERE id = $1`, id)
	return scanFollowUp(row)
}

func (r *FollowUpsRepo) Update(ctx context.Context, f followups.FollowUp) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE follow_ups SET
			type = $2, scheduled = $3, completed = $4, completed_at = $5,
			condition = $6, observations = $7, responsible_by = $8,
			updated_at = $9, version = version + 1
		WHERE id = $1 AND version = $10
	`,
		f.ID, f.Type, f.Scheduled, f.Completed, toNullTime(f.CompletedAt),
		f.Condition, f.Observations, f.ResponsibleBy,
		f.UpdatedAt, f.Version,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM follow_ups WHERE id = $1`, f.ID).Scan(&exists); err == nil && exists == 0 {
			return followups.ErrNotFound
		}
		return followups.ErrConflict
	}
	return nil
}

func (r *FollowUpsRepo) ListByPet(ctx context.Context, petID string) ([]followups.FollowUp, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+followUpColumns+` FROM follow_ups
		WHERE pet_id = $1
		ORDER BY scheduled ASC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFollowUps(rows)
}

func (r *FollowUpsRepo) List(ctx context.Context, f followups.ListFilter) ([]followups.FollowUp, error) {
	query := `SELECT ` + followUpColumns + ` FROM follow_ups`
	var args []any
	var conds []string

	if len(f.Types) > 0 {
		ph := make([]string, len(f.Types))
		for i, t := range f.Types {
			args = append(args, string(t))
			ph[i] = fmt.Sprintf("$%d", len(args))
		}
		conds = append(conds, "type IN ("+strings.Join(ph, ",")+")")
	}
	if f.Completed != nil {
		args = append(args, *f.Completed)
		conds = append(conds, fmt.Sprintf("completed = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY scheduled ASC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFollowUps(rows)
}

func collectFollowUps(rows *sql.Rows) ([]followups.FollowUp, error) {
	out := make([]followups.FollowUp, 0)
	for rows.Next() {
		f, err := scanFollowUp(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanFollowUp(row rowScanner) (followups.FollowUp, error) {
	var f followups.FollowUp
	var fuType, condition string
	var completedAt sql.NullTime

	err := row.Scan(
		&f.ID, &f.PetID, &f.RequestID, &fuType, &f.Scheduled,
		&f.Completed, &completedAt, &condition, &f.Observations, &f.ResponsibleBy,
		&f.CreatedAt, &f.UpdatedAt, &f.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return followups.FollowUp{}, followups.ErrNotFound
		}
		return followups.FollowUp{}, err
	}

	f.Type = followups.Type(fuType)
	f.Condition = followups.Condition(condition)
	f.CompletedAt = fromNullTime(completedAt)
	return f, nil
}
