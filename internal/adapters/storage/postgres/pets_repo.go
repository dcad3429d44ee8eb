package postgres

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
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`,
		p.ID, p.Name, p.Species, p.Breed, p.Sex, toNullTime(p.BirthDate),
		p.IntakeType, p.IntakeDate, p.Status,
		p.Vaccinated, p.Sterilized, p.Dewormed,
		toNullTime(p.AdoptionDate), p.AdopterID, p.AdopterName,
		p.Notes, p.CreatedAt, p.UpdatedAt, p.Version,
	)
	return err
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, pets.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+petColumns+` FROM pets WHERE id = $1`, id)
	return scanPet(row)
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	return updatePetTx(ctx, r.db, p)
}

func updatePetTx(ctx context.Context, q queryer, p pets.Pet) error {
	res, err := q.ExecContext(ctx, `
		UPDATE pets SET
			name = $2, species = $3, breed = $4, sex = $5, birth_date = $6,
			intake_type = $7, intake_date = $8, status = $9,
			vaccinated = $10, sterilized = $11, dewormed = $12,
			adoption_date = $13, adopter_id = $14, adopter_name = $15,
			notes = $16, updated_at = $17, version = version + 1
		WHERE id = $1 AND version = $18
	`,
		p.ID, p.Name, p.Species, p.Breed, p.Sex, toNullTime(p.BirthDate),
		p.IntakeType, p.IntakeDate, p.Status,
		p.Vaccinated, p.Sterilized, p.Dewormed,
		toNullTime(p.AdoptionDate), p.AdopterID, p.AdopterName,
		p.Notes, p.UpdatedAt, p.Version,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		var exists int
		if err := q.QueryRowContext(ctx, `SELECT COUNT(1) FROM pets WHERE id = $1`, p.ID).Scan(&exists); err == nil && exists == 0 {
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
			args = append(args, string(s))
			ph[i] = fmt.Sprintf("$%d", len(args))
		}
		conds = append(conds, "status IN ("+strings.Join(ph, ",")+")")
	}
	if len(f.IntakeTypes) > 0 {
		ph := make([]string, len(f.IntakeTypes))
		for i, t := range f.IntakeTypes {
			args = append(args, string(t))
			ph[i] = fmt.Sprintf("$%d", len(args))
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
		return nil, err
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
	var birthDate, adoptionDate sql.NullTime

	err := row.Scan(
		&p.ID, &p.Name, &species, &p.Breed, &sex, &birthDate,
		&intakeType, &p.IntakeDate, &petStatus,
		&p.Vaccinated, &p.Sterilized, &p.Dewormed,
		&adoptionDate, &p.AdopterID, &p.AdopterName,
		&p.Notes, &p.CreatedAt, &p.UpdatedAt, &p.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return pets.Pet{}, pets.ErrNotFound
		}
		return pets.Pet{}, err
	}

	p.Species = pets.Species(species)
	p.Sex = pets.Sex(sex)
	p.IntakeType = pets.IntakeType(intakeType)
	p.Status = pets.AvailabilityStatus(petStatus)
	p.BirthDate = fromNullTime(birthDate)
	p.AdoptionDate = fromNullTime(adoptionDate)
	return p, nil
}
