package sqlite

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
	notes, err := encodeNotes(req.Notes)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO adoption_requests (`+requestColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		req.ID, req.PetID, req.ApplicantID, req.ApplicantName, req.ApplicantContact,
		string(req.Status), fmtTimePtr(req.ReviewAt), fmtTimePtr(req.InterviewAt),
		fmtTimePtr(req.TrialAt), fmtTimePtr(req.AdoptionAt),
		notes, fmtTime(req.CreatedAt), fmtTime(req.UpdatedAt), req.Version,
	)
	if err != nil {
		return fmt.Errorf("sqlite: create request: %w", err)
	}
	return nil
}

func (r *AdoptionsRepo) GetByID(ctx context.Context, id string) (adoptions.AdoptionRequest, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return adoptions.AdoptionRequest{}, adoptions.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM adoption_requests WHERE id = ?`, id)
	return scanRequest(row)
}

func (r *AdoptionsRepo) Update(ctx context.Context, req adoptions.AdoptionRequest) error {
	return updateRequestTx(ctx, r.db, req)
}

func updateRequestTx(ctx context.Context, q queryer, req adoptions.AdoptionRequest) error {
	notes, err := encodeNotes(req.Notes)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
		UPDATE adoption_requests SET
			status = ?, review_at = ?, interview_at = ?, trial_at = ?, adoption_at = ?,
			notes = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`,
		string(req.Status), fmtTimePtr(req.ReviewAt), fmtTimePtr(req.InterviewAt),
		fmtTimePtr(req.TrialAt), fmtTimePtr(req.AdoptionAt),
		notes, fmtTime(req.UpdatedAt),
		req.ID, req.Version,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update request: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		var exists int
		if err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM adoption_requests WHERE id = ?`, req.ID).Scan(&exists); err == nil && exists == 0 {
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
		conds = append(conds, "pet_id = ?")
		args = append(args, f.PetID)
	}
	if len(f.Statuses) > 0 {
		ph := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			ph[i] = "?"
			args = append(args, string(s))
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
		return nil, fmt.Errorf("sqlite: list requests: %w", err)
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

// ApplyApproval aplica los tres writes de una aprobación en una sola
// transacción: o entran todos o rollback.
func (r *AdoptionsRepo) ApplyApproval(ctx context.Context, p pets.Pet, req adoptions.AdoptionRequest, f followups.FollowUp) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin approval: %w", err)
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
	if err := insertFollowUpTx(ctx, tx, f); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit approval: %w", err)
	}
	return nil
}

func encodeNotes(notes []adoptions.Note) (string, error) {
	if len(notes) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(notes)
	if err != nil {
		return "", fmt.Errorf("sqlite: encode notes: %w", err)
	}
	return string(b), nil
}

func scanRequest(row rowScanner) (adoptions.AdoptionRequest, error) {
	var req adoptions.AdoptionRequest
	var reqStatus, notesRaw, createdAt, updatedAt string
	var reviewAt, interviewAt, trialAt, adoptionAt sql.NullString

	err := row.Scan(
		&req.ID, &req.PetID, &req.ApplicantID, &req.ApplicantName, &req.ApplicantContact,
		&reqStatus, &reviewAt, &interviewAt, &trialAt, &adoptionAt,
		&notesRaw, &createdAt, &updatedAt, &req.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return adoptions.AdoptionRequest{}, adoptions.ErrNotFound
		}
		return adoptions.AdoptionRequest{}, fmt.Errorf("sqlite: scan request: %w", err)
	}

	req.Status = adoptions.Status(reqStatus)
	if notesRaw != "" {
		if err := json.Unmarshal([]byte(notesRaw), &req.Notes); err != nil {
			return adoptions.AdoptionRequest{}, fmt.Errorf("sqlite: decode notes: %w", err)
		}
	}

	if req.ReviewAt, err = parseTimePtr(reviewAt); err != nil {
		return adoptions.AdoptionRequest{}, fmt.Errorf("sqlite: request review_at: %w", err)
	}
	if req.InterviewAt, err = parseTimePtr(interviewAt); err != nil {
		return adoptions.AdoptionRequest{}, fmt.Errorf("sqlite: request interview_at: %w", err)
	}
	if req.TrialAt, err = parseTimePtr(trialAt); err != nil {
		return adoptions.AdoptionRequest{}, fmt.Errorf("sqlite: request trial_at: %w", err)
	}
	if req.AdoptionAt, err = parseTimePtr(adoptionAt); err != nil {
		return adoptions.AdoptionRequest{}, fmt.Errorf("sqlite: request adoption_at: %w", err)
	}
	if req.CreatedAt, err = parseTime(createdAt); err != nil {
		return adoptions.AdoptionRequest{}, fmt.Errorf("sqlite: request created_at: %w", err)
	}
	if req.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return adoptions.AdoptionRequest{}, fmt.Errorf("sqlite: request updated_at: %w", err)
	}
	return req, nil
}
