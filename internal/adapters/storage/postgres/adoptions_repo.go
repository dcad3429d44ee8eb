package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"adoption-center/internal/domain/adoptions"
	"adoption-center/internal/domain/followups"
	"adoption-center/internal/domain/pets"
)

type AdoptionsRepo struct {
	db *sql.DB
}

func NewAdoptionsRepo(db *sql.DB) *AdoptionsRepo {
	return &AdoptionsRepo{db: db}
}

const requestColumns = `
	id, pet_id, applicant_id, applicant_name, applicant_contact,
	status, review_at, interview_at, trial_at, adoption_at,
	notes, created_at, updated_at, version
`

func (r *AdoptionsRepo) Create(ctx context.Context, req adoptions.AdoptionRequest) error {
	if req.Version == 0 {
		req.Version = 1
	}
	notes, err := json.Marshal(req.Notes)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO adoption_requests (`+requestColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		req.ID, req.PetID, req.ApplicantID, req.ApplicantName, req.ApplicantContact,
		req.Status, toNullTime(req.ReviewAt), toNullTime(req.InterviewAt),
		toNullTime(req.TrialAt), toNullTime(req.AdoptionAt),
		notes, req.CreatedAt, req.UpdatedAt, req.Version,
	)
	return err
}

func (r *AdoptionsRepo) GetByID(ctx context.Context, id string) (adoptions.AdoptionRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return adoptions.AdoptionRequest{}, adoptions.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM adoption_requests WHERE id = $1`, id)
	return scanRequest(row)
}

func (r *AdoptionsRepo) Update(ctx context.Context, req adoptions.AdoptionRequest) error {
	return updateRequestTx(ctx, r.db, req)
}

func updateRequestTx(ctx context.Context, q queryer, req adoptions.AdoptionRequest) error {
	notes, err := json.Marshal(req.Notes)
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}
	res, err := q.ExecContext(ctx, `
		UPDATE adoption_requests SET
			status = $2, review_at = $3, interview_at = $4, trial_at = $5, adoption_at = $6,
			notes = $7, updated_at = $8, version = version + 1
		WHERE id = $1 AND version = $9
	`,
		req.ID, req.Status, toNullTime(req.ReviewAt), toNullTime(req.InterviewAt),
		toNullTime(req.TrialAt), toNullTime(req.AdoptionAt),
		notes, req.UpdatedAt, req.Version,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		var exists int
		if err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM adoption_requests WHERE id = $1`, req.ID).Scan(&exists); err == nil && exists == 0 {
			return adoptions.ErrNotFound
		}
		return adoptions.ErrConflict
	}
	return nil
}

func (r *AdoptionsRepo) List(ctx context.Context, f adoptions.ListFilter) ([]adoptions.AdoptionRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM adoption_requests`
	var args []any
	var conds []string

	if f.PetID != "" {
		args = append(args, f.PetID)
		conds = append(conds, fmt.Sprintf("pet_id = $%d", len(args)))
	}
	if len(f.Statuses) > 0 {
		ph := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			args = append(args, string(s))
			ph[i] = fmt.Sprintf("$%d", len(args))
		}
		conds = append(conds, "status IN ("+strings.Join(ph, ",")+")")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at ASC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]adoptions.AdoptionRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// ApplyApproval: los tres writes de una aprobación en una sola transacción.
func (r *AdoptionsRepo) ApplyApproval(ctx context.Context, p pets.Pet, req adoptions.AdoptionRequest, f followups.FollowUp) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin approval: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := updatePetTx(ctx, tx, p); err != nil {
		return err
	}
	if err := updateRequestTx(ctx, tx, req); err != nil {
		return err
	}
	if f.Version == 0 {
		f.Version = 1
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO follow_ups (
			id, pet_id, request_id, type, scheduled,
			completed, completed_at, condition, observations, responsible_by,
			created_at, updated_at, version
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		f.ID, f.PetID, f.RequestID, f.Type, f.Scheduled,
		f.Completed, toNullTime(f.CompletedAt), f.Condition, f.Observations, f.ResponsibleBy,
		f.CreatedAt, f.UpdatedAt, f.Version,
	); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit approval: %w", err)
	}
	return nil
}

func scanRequest(row rowScanner) (adoptions.AdoptionRequest, error) {
	var req adoptions.AdoptionRequest
	var reqStatus string
	var notesRaw []byte
	var reviewAt, interviewAt, trialAt, adoptionAt sql.NullTime

	err := row.Scan(
		&req.ID, &req.PetID, &req.ApplicantID, &req.ApplicantName, &req.ApplicantContact,
		&reqStatus, &reviewAt, &interviewAt, &trialAt, &adoptionAt,
		&notesRaw, &req.CreatedAt, &req.UpdatedAt, &req.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return adoptions.AdoptionRequest{}, adoptions.ErrNotFound
		}
		return adoptions.AdoptionRequest{}, err
	}

	req.Status = adoptions.Status(reqStatus)
	if len(notesRaw) > 0 {
		if err := json.Unmarshal(notesRaw, &req.Notes); err != nil {
			return adoptions.AdoptionRequest{}, fmt.Errorf("decode notes: %w", err)
		}
	}
	req.ReviewAt = fromNullTime(reviewAt)
	req.InterviewAt = fromNullTime(interviewAt)
	req.TrialAt = fromNullTime(trialAt)
	req.AdoptionAt = fromNullTime(adoptionAt)
	return req, nil
}
