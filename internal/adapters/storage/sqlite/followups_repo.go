package sqlite

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
	return insertFollowUpTx(ctx, r.db, f)
}

func insertFollowUpTx(ctx context.Context, q queryer, f followups.FollowUp) error {
	if f.Version == 0 {
		f.Version = 1
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO follow_ups (`+followUpColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		f.ID, f.PetID, f.RequestID, string(f.Type), fmtTime(f.Scheduled),
		f.Completed, fmtTimePtr(f.CompletedAt), string(f.Condition), f.Observations, f.ResponsibleBy,
		fmtTime(f.CreatedAt), fmtTime(f.UpdatedAt), f.Version,
	)
	if err != nil {
		return fmt.Errorf("sqlite: create follow-up: %w", err)
	}
	return nil
}

func (r *FollowUpsRepo) GetByID(ctx context.Context, id string) (followups.FollowUp, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return followups.FollowUp{}, followups.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+followUpColumns+` FROM follow_ups WHERE id = ?`, id)
	return scanFollowUp(row)
}

func (r *FollowUpsRepo) Update(ctx context.Context, f followups.FollowUp) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE follow_ups SET
			type = ?, scheduled = ?, completed = ?, completed_at = ?,
			condition = ?, observations = ?, responsible_by = ?,
			updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`,
		string(f.Type), fmtTime(f.Scheduled), f.Completed, fmtTimePtr(f.CompletedAt),
		string(f.Condition), f.Observations, f.ResponsibleBy,
		fmtTime(f.UpdatedAt),
		f.ID, f.Version,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update follow-up: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM follow_ups WHERE id = ?`, f.ID).Scan(&exists); err == nil && exists == 0 {
			return followups.ErrNotFound
		}
		return followups.ErrConflict
	}
	return nil
}

func (r *FollowUpsRepo) ListByPet(ctx context.Context, petID string) ([]followups.FollowUp, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+followUpColumns+` FROM follow_ups
		WHERE pet_id = ?
		ORDER BY scheduled ASC
	`, petID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list follow-ups by pet: %w", err)
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
			ph[i] = "?"
			args = append(args, string(t))
		}
		conds = append(conds, "type IN ("+strings.Join(ph, ",")+")")
	}
	if f.Completed != nil {
		conds = append(conds, "completed = ?")
		args = append(args, *f.Completed)
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
		return nil, fmt.Errorf("sqlite: list follow-ups: %w", err)
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
	var fuType, condition, scheduled, createdAt, updatedAt string
	var completedAt sql.NullString

	err := row.Scan(
		&f.ID, &f.PetID, &f.RequestID, &fuType, &scheduled,
		&f.Completed, &completedAt, &condition, &f.Observations, &f.ResponsibleBy,
		&createdAt, &updatedAt, &f.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return followups.FollowUp{}, followups.ErrNotFound
		}
		return followups.FollowUp{}, fmt.Errorf("sqlite: scan follow-up: %w", err)
	}

	f.Type = followups.Type(fuType)
	f.Condition = followups.Condition(condition)

	if f.Scheduled, err = parseTime(scheduled); err != nil {
		return followups.FollowUp{}, fmt.Errorf("sqlite: follow-up scheduled: %w", err)
	}
	if f.CompletedAt, err = parseTimePtr(completedAt); err != nil {
		return followups.FollowUp{}, fmt.Errorf("sqlite: follow-up completed_at: %w", err)
	}
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return followups.FollowUp{}, fmt.Errorf("sqlite: follow-up created_at: %w", err)
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return followups.FollowUp{}, fmt.Errorf("sqlite: follow-up updated_at: %w", err)
	}
	return f, nil
}
