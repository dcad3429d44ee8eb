package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"adoption-center/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, name, species, breed, sex, birth_date,
	intake_type, intake_date, status,
	vaccinated, sterilized, dewormed,
	adoption_date, adopter_id, adopter_name,
	notes, created_at, updated_at, version
`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	if p.Version == 0 {
		p.Version = 1
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (`+petColumns+`)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		p.ID, p.Name, string(p.Species), p.Breed, string(p.Sex), fmtTimePtr(p.BirthDate),
		string(p.IntakeType), fmtTime(p.IntakeDate), string(p.Status),
		p.Vaccinated, p.Sterilized, p.Dewormed,
		fmtTimePtr(p.AdoptionDate), p.AdopterID, p.AdopterName,
		p.Notes, fmtTime(p.CreatedAt), fmtTime(p.UpdatedAt), p.Version,
	)
	if err != nil {
		return fmt.Errorf("sqlite: create pet: %w", err)
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = ?`, id)
	return scanPet(row)
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	return updatePetTx(ctx, r.db, p)
}

// updatePetTx corre sobre *sql.DB o *sql.Tx; la aprobación lo reutiliza
// dentro de su transacción.
func updatePetTx(ctx context.Context, q queryer, p pets.Pet) error {
	res, err := q.ExecContext(ctx, `
		UPDATE pets SET
			name = ?, species = ?, breed = ?, sex = ?, birth_date = ?,
			intake_type = ?, intake_date = ?, status = ?,
			vaccinated = ?, sterilized = ?, dewormed = ?,
			adoption_date = ?, adopter_id = ?, adopter_name = ?,
			notes = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`,
		p.Name, string(p.Species), p.Breed, string(p.Sex), fmtTimePtr(p.BirthDate),
		string(p.IntakeType), fmtTime(p.IntakeDate), string(p.Status),
		p.Vaccinated, p.Sterilized, p.Dewormed,
		fmtTimePtr(p.AdoptionDate), p.AdopterID, p.AdopterName,
		p.Notes, fmtTime(p.UpdatedAt),
		p.ID, p.Version,
	)
	if err != nil {
		return fmt.Errorf("sqlite: update pet: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// Sin fila tocada: o no existe o la versión no coincidió.
		var exists int
		if err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM pets WHERE id = ?`, p.ID).Scan(&exists); err == nil && exists == 0 {
			return pets.ErrNotFound
		}
		return pets.ErrConflict
	}
	return nil
}

func (r *PetsRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	query := `SELECT ` + petColumns + ` FROM pets`
	var args []any
	var conds []string

	if len(f.Statuses) > 0 {
		ph := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			ph[i] = "?"
			args = append(args, string(s))
		}
		conds = append(conds, "status IN ("+strings.Join(ph, ",")+")")
	}
	if len(f.IntakeTypes) > 0 {
		ph := make([]string, len(f.IntakeTypes))
		for i, t := range f.IntakeTypes {
			ph[i] = "?"
			args = append(args, string(t))
		}
		conds = append(conds, "intake_type IN ("+strings.Join(ph, ",")+")")
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
		return nil, fmt.Errorf("sqlite: list pets: %w", err)
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var species, sex, intakeType, petStatus string
	var birthDate, adoptionDate sql.NullString
	var intakeDate, createdAt, updatedAt string

	err := row.Scan(
		&p.ID, &p.Name, &species, &p.Breed, &sex, &birthDate,
		&intakeType, &intakeDate, &petStatus,
		&p.Vaccinated, &p.Sterilized, &p.Dewormed,
		&adoptionDate, &p.AdopterID, &p.AdopterName,
		&p.Notes, &createdAt, &updatedAt, &p.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, fmt.Errorf("sqlite: scan pet: %w", err)
	}

	p.Species = pets.Species(species)
	p.Sex = pets.Sex(sex)
	p.IntakeType = pets.IntakeType(intakeType)
	p.Status = pets.AvailabilityStatus(petStatus)

	if p.BirthDate, err = parseTimePtr(birthDate); err != nil {
		return pets.Pet{}, fmt.Errorf("sqlite: pet birth_date: %w", err)
	}
	if p.AdoptionDate, err = parseTimePtr(adoptionDate); err != nil {
		return pets.Pet{}, fmt.Errorf("sqlite: pet adoption_date: %w", err)
	}
	if p.IntakeDate, err = parseTime(intakeDate); err != nil {
		return pets.Pet{}, fmt.Errorf("sqlite: pet intake_date: %w", err)
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return pets.Pet{}, fmt.Errorf("sqlite: pet created_at: %w", err)
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return pets.Pet{}, fmt.Errorf("sqlite: pet updated_at: %w", err)
	}
	return p, nil
}
