package postgres

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
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		rec.ID, rec.PetID, rec.Kind, rec.EventDate,
		toNullTime(rec.NextDose), rec.Sterilizing, rec.Notes, rec.CreatedAt,
	)
	return err
}

func (r *MedicalRepo) GetByID(ctx context.Context, id string) (medical.MedicalRecord, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return medical.MedicalRecord{}, medical.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+medicalColumns+` FROM medical_records WHERE id = $1`, id)
	return scanMedicalRecord(row)
}

func (r *MedicalRepo) ListByPet(ctx context.Context, petID string, f medical.ListFilter) ([]medical.MedicalRecord, error) {
	query := `SELECT ` + medicalColumns + ` FROM medical_records WHERE pet_id = $1`
	args := []any{petID}

	if len(f.Kinds) > 0 {
		ph := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			args = append(args, string(k))
			ph[i] = fmt.Sprintf("$%d", len(args))
		}
		query += " AND kind IN (" + strings.Join(ph, ",") + ")"
	}
	query += " ORDER BY event_date DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
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
	var kind string
	var nextDose sql.NullTime

	err := row.Scan(
		&rec.ID, &rec.PetID, &kind, &rec.EventDate,
		&nextDose, &rec.Sterilizing, &rec.Notes, &rec.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return medical.MedicalRecord{}, medical.ErrNotFound
		}
		return medical.MedicalRecord{}, err
	}

	rec.Kind = medical.Kind(kind)
	rec.NextDose = fromNullTime(nextDose)
	return rec, nil
}
