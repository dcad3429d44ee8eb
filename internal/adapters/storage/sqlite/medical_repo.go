package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"adoption-center/internal/domain/medical"
)

type MedicalRepo struct {
	db *sql.DB
}

func NewMedicalRepo(db *sql.DB) *MedicalRepo {
	return &MedicalRepo{db: db}
}

const medicalColumns = `
	id, pet_id, kind, event_date, next_dose, sterilizing, notes, created_at
`

func (r *MedicalRepo) Create(ctx context.Context, rec medical.MedicalRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO medical_records (`+medicalColumns+`)
		VALUES (?,?,?,?,?,?,?,?)
	`,
		rec.ID, rec.PetID, string(rec.Kind), fmtTime(rec.EventDate),
		fmtTimePtr(rec.NextDose), rec.Sterilizing, rec.Notes, fmtTime(rec.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: create medical record: %w", err)
	}
	return nil
}

func (r *MedicalRepo) GetByID(ctx context.Context, id string) (medical.MedicalRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medical.MedicalRecord{}, medical.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+medicalColumns+` FROM medical_records WHERE id = ?`, id)
	return scanMedicalRecord(row)
}

func (r *MedicalRepo) ListByPet(ctx context.Context, petID string, f medical.ListFilter) ([]medical.MedicalRecord, error) {
	query := `SELECT ` + medicalColumns + ` FROM medical_records WHERE pet_id = ?`
	args := []any{petID}

	if len(f.Kinds) > 0 {
		ph := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			ph[i] = "?"
			args = append(args, string(k))
		}
		query += " AND kind IN (" + strings.Join(ph, ",") + ")"
	}
	query += " ORDER BY event_date DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list medical records: %w", err)
	}
	defer rows.Close()

	out := make([]medical.MedicalRecord, 0)
	for rows.Next() {
		rec, err := scanMedicalRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanMedicalRecord(row rowScanner) (medical.MedicalRecord, error) {
	var rec medical.MedicalRecord
	var kind, eventDate, createdAt string
	var nextDose sql.NullString

	err := row.Scan(
		&rec.ID, &rec.PetID, &kind, &eventDate,
		&nextDose, &rec.Sterilizing, &rec.Notes, &createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return medical.MedicalRecord{}, medical.ErrNotFound
		}
		return medical.MedicalRecord{}, fmt.Errorf("sqlite: scan medical record: %w", err)
	}

	rec.Kind = medical.Kind(kind)
	if rec.EventDate, err = parseTime(eventDate); err != nil {
		return medical.MedicalRecord{}, fmt.Errorf("sqlite: medical event_date: %w", err)
	}
	if rec.NextDose, err = parseTimePtr(nextDose); err != nil {
		return medical.MedicalRecord{}, fmt.Errorf("sqlite: medical next_dose: %w", err)
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return medical.MedicalRecord{}, fmt.Errorf("sqlite: medical created_at: %w", err)
	}
	return rec, nil
}
