package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"adoption-center/internal/domain/adoptions"
	"adoption-center/internal/domain/followups"
	"adoption-center/internal/domain/pets"
)

func openTestDB(t *testing.T) *PetsRepo {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewPetsRepo(db)
}

func samplePet(id string) pets.Pet {
	birth := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	return pets.Pet{
		ID:         id,
		Name:       "Milo",
		Species:    pets.SpeciesDog,
		Breed:      "mestizo",
		Sex:        pets.SexMale,
		BirthDate:  &birth,
		IntakeType: pets.IntakeRescue,
		IntakeDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:     pets.StatusAvailable,
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Version:    1,
	}
}

func TestPetsRepo_RoundTrip(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	p := samplePet("pet-1")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, "pet-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != p.Name || got.Species != p.Species || got.Status != p.Status {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.BirthDate == nil || !got.BirthDate.Equal(*p.BirthDate) {
		t.Fatalf("birth date mismatch: %v", got.BirthDate)
	}
	if !got.IntakeDate.Equal(p.IntakeDate) {
		t.Fatalf("intake date mismatch: %v", got.IntakeDate)
	}

	if _, err := repo.GetByID(ctx, "ghost"); !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPetsRepo_UpdateCAS(t *testing.T) {
	repo := openTestDB(t)
	ctx := context.Background()

	p := samplePet("pet-1")
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	p.Name = "Milo II"
	if err := repo.Update(ctx, p); err != nil {
		t.Fatalf("first update: %v", err)
	}

	// Misma versión otra vez: el writer concurrente pierde.
	p.Name = "Milo III"
	if err := repo.Update(ctx, p); !errors.Is(err, pets.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	ghost := samplePet("ghost")
	if err := repo.Update(ctx, ghost); !errors.Is(err, pets.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	got, _ := repo.GetByID(ctx, "pet-1")
	if got.Name != "Milo II" || got.Version != 2 {
		t.Fatalf("stored state wrong after conflict: %+v", got)
	}
}

func TestAdoptionsRepo_NotesSurviveRoundTrip(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	repo := NewAdoptionsRepo(db)
	ctx := context.Background()

	if err := NewPetsRepo(db).Create(ctx, samplePet("pet-1")); err != nil {
		t.Fatalf("create pet: %v", err)
	}

	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	r := adoptions.AdoptionRequest{
		ID:            "req-1",
		PetID:         "pet-1",
		ApplicantName: "Ana",
		Status:        adoptions.StatusNew,
		Notes: []adoptions.Note{
			{Author: "admin", At: at, Content: "referencias verificadas"},
		},
		CreatedAt: at,
		UpdatedAt: at,
		Version:   1,
	}
	if err := repo.Create(ctx, r); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByID(ctx, "req-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Notes) != 1 || got.Notes[0].Content != "referencias verificadas" {
		t.Fatalf("notes lost in round trip: %+v", got.Notes)
	}
}

func TestApplyApproval_Transactional(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	petRepo := NewPetsRepo(db)
	reqRepo := NewAdoptionsRepo(db)
	fuRepo := NewFollowUpsRepo(db)
	ctx := context.Background()

	p := samplePet("pet-1")
	if err := petRepo.Create(ctx, p); err != nil {
		t.Fatalf("create pet: %v", err)
	}
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	r := adoptions.AdoptionRequest{
		ID: "req-1", PetID: "pet-1", ApplicantName: "Ana",
		Status: adoptions.StatusNew, CreatedAt: at, UpdatedAt: at, Version: 1,
	}
	if err := reqRepo.Create(ctx, r); err != nil {
		t.Fatalf("create request: %v", err)
	}

	p.Status = pets.StatusAdopted
	p.AdoptionDate = &at
	r.Status = adoptions.StatusApproved
	r.AdoptionAt = &at
	fu := followups.NewInitial(p.ID, r.ID, at)

	if err := reqRepo.ApplyApproval(ctx, p, r, fu); err != nil {
		t.Fatalf("apply approval: %v", err)
	}

	gotPet, _ := petRepo.GetByID(ctx, "pet-1")
	if gotPet.Status != pets.StatusAdopted || gotPet.Version != 2 {
		t.Fatalf("pet not applied: %+v", gotPet)
	}
	gotReq, _ := reqRepo.GetByID(ctx, "req-1")
	if gotReq.Status != adoptions.StatusApproved || gotReq.Version != 2 {
		t.Fatalf("request not applied: %+v", gotReq)
	}
	gotFu, err := fuRepo.GetByID(ctx, fu.ID)
	if err != nil {
		t.Fatalf("follow-up not applied: %v", err)
	}
	if gotFu.Type != followups.TypeInitial || !gotFu.Scheduled.Equal(at.Add(followups.InitialDelay)) {
		t.Fatalf("unexpected follow-up %+v", gotFu)
	}
}

func TestApplyApproval_StaleVersionRollsBack(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	petRepo := NewPetsRepo(db)
	reqRepo := NewAdoptionsRepo(db)
	fuRepo := NewFollowUpsRepo(db)
	ctx := context.Background()

	p := samplePet("pet-1")
	if err := petRepo.Create(ctx, p); err != nil {
		t.Fatalf("create pet: %v", err)
	}
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	r := adoptions.AdoptionRequest{
		ID: "req-1", PetID: "pet-1", ApplicantName: "Ana",
		Status: adoptions.StatusNew, CreatedAt: at, UpdatedAt: at, Version: 1,
	}
	if err := reqRepo.Create(ctx, r); err != nil {
		t.Fatalf("create request: %v", err)
	}

	adopted := p
	adopted.Status = pets.StatusAdopted
	adopted.AdoptionDate = &at
	stale := r
	stale.Status = adoptions.StatusApproved
	stale.Version = 99
	fu := followups.NewInitial(p.ID, r.ID, at)

	err = reqRepo.ApplyApproval(ctx, adopted, stale, fu)
	if !errors.Is(err, adoptions.ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// La transacción revirtió el write de la mascota.
	gotPet, _ := petRepo.GetByID(ctx, "pet-1")
	if gotPet.Status != pets.StatusAvailable || gotPet.Version != 1 {
		t.Fatalf("pet must be untouched after rollback: %+v", gotPet)
	}
	if _, err := fuRepo.GetByID(ctx, fu.ID); !errors.Is(err, followups.ErrNotFound) {
		t.Fatalf("follow-up must not exist, got %v", err)
	}
}
