package reports

import (
	"context"
	"testing"
	"time"

	"adoption-center/internal/domain/adoptions"
	"adoption-center/internal/domain/followups"
	"adoption-center/internal/domain/pets"
)

type testPetRepo struct{ items []pets.Pet }

func (r *testPetRepo) Create(ctx context.Context, p pets.Pet) error { return nil }
func (r *testPetRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	return pets.Pet{}, pets.ErrNotFound
}
func (r *testPetRepo) Update(ctx context.Context, p pets.Pet) error { return nil }
func (r *testPetRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	return r.items, nil
}

type testReqRepo struct{ items []adoptions.AdoptionRequest }

func (r *testReqRepo) Create(ctx context.Context, req adoptions.AdoptionRequest) error { return nil }
func (r *testReqRepo) GetByID(ctx context.Context, id string) (adoptions.AdoptionRequest, error) {
	return adoptions.AdoptionRequest{}, adoptions.ErrNotFound
}
func (r *testReqRepo) Update(ctx context.Context, req adoptions.AdoptionRequest) error { return nil }
func (r *testReqRepo) List(ctx context.Context, f adoptions.ListFilter) ([]adoptions.AdoptionRequest, error) {
	return r.items, nil
}

type testFuRepo struct{ items []followups.FollowUp }

func (r *testFuRepo) Create(ctx context.Context, f followups.FollowUp) error { return nil }
func (r *testFuRepo) GetByID(ctx context.Context, id string) (followups.FollowUp, error) {
	return followups.FollowUp{}, followups.ErrNotFound
}
func (r *testFuRepo) Update(ctx context.Context, f followups.FollowUp) error { return nil }
func (r *testFuRepo) ListByPet(ctx context.Context, petID string) ([]followups.FollowUp, error) {
	return r.items, nil
}
func (r *testFuRepo) List(ctx context.Context, f followups.ListFilter) ([]followups.FollowUp, error) {
	return r.items, nil
}

func newFixture(now time.Time) (*Service, *testPetRepo, *testReqRepo, *testFuRepo) {
	petRepo := &testPetRepo{}
	reqRepo := &testReqRepo{}
	fuRepo := &testFuRepo{}
	svc := NewService(petRepo, reqRepo, fuRepo)
	svc.now = func() time.Time { return now }
	return svc, petRepo, reqRepo, fuRepo
}

func TestDashboard_EmptyDataset(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _, _ := newFixture(now)

	d, err := svc.Dashboard(context.Background(), 0)
	if err != nil {
		t.Fatalf("dashboard on empty data: %v", err)
	}
	if d.Perritos.Total != 0 || d.Solicitudes.Total != 0 || d.Seguimientos.Pendientes != 0 {
		t.Fatalf("expected zeroed metrics, got %+v", d)
	}
	if d.Solicitudes.TasaAprobacion != 0 {
		t.Fatalf("approval rate with no closed requests must be 0, got %v", d.Solicitudes.TasaAprobacion)
	}
	if d.Solicitudes.TieneDatosLatencia {
		t.Fatal("empty dataset must report no latency data")
	}
	if d.Perritos.PorIngreso == nil {
		t.Fatal("intake breakdown must be an empty map, not nil")
	}
}

func TestDashboard_CountsAndRates(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	svc, petRepo, reqRepo, fuRepo := newFixture(now)

	adoptedAt := now.Add(-10 * 24 * time.Hour)
	petRepo.items = []pets.Pet{
		{ID: "p1", Status: pets.StatusAvailable, IntakeType: pets.IntakeRescue},
		{ID: "p2", Status: pets.StatusInProcess, IntakeType: pets.IntakeRescue, Vaccinated: true},
		{ID: "p3", Status: pets.StatusAdopted, IntakeType: pets.IntakeSurrender, AdoptionDate: &adoptedAt},
	}

	created := adoptedAt.Add(-4 * 24 * time.Hour)
	reqRepo.items = []adoptions.AdoptionRequest{
		{ID: "r1", PetID: "p3", Status: adoptions.StatusApproved, CreatedAt: created, AdoptionAt: &adoptedAt},
		{ID: "r2", PetID: "p1", Status: adoptions.StatusRejected, CreatedAt: created},
		{ID: "r3", PetID: "p2", Status: adoptions.StatusReview, CreatedAt: created},
	}

	fuRepo.items = []followups.FollowUp{
		{ID: "f1", PetID: "p3", Scheduled: now.Add(30 * 24 * time.Hour)},                                   // pending
		{ID: "f2", PetID: "p3", Scheduled: now.Add(3 * 24 * time.Hour)},                                    // due soon
		{ID: "f3", PetID: "p3", Scheduled: now.Add(-24 * time.Hour)},                                       // overdue
		{ID: "f4", PetID: "p3", Scheduled: now.Add(-48 * time.Hour), Completed: true, Condition: followups.ConditionConcerning}, // completed, issue
	}

	d, err := svc.Dashboard(context.Background(), 0)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if d.Perritos.Total != 3 || d.Perritos.Disponibles != 1 || d.Perritos.EnProceso != 1 || d.Perritos.Adoptados != 1 {
		t.Fatalf("pet counts wrong: %+v", d.Perritos)
	}
	if d.Perritos.PorIngreso["rescue"] != 2 || d.Perritos.PorIngreso["surrender"] != 1 {
		t.Fatalf("intake breakdown wrong: %+v", d.Perritos.PorIngreso)
	}

	if d.Solicitudes.Aprobadas != 1 || d.Solicitudes.Rechazadas != 1 || d.Solicitudes.EnRevision != 1 {
		t.Fatalf("request counts wrong: %+v", d.Solicitudes)
	}
	if d.Solicitudes.TasaAprobacion != 0.5 {
		t.Fatalf("approval rate should be 0.5, got %v", d.Solicitudes.TasaAprobacion)
	}
	if !d.Solicitudes.TieneDatosLatencia {
		t.Fatal("expected latency data")
	}
	if d.Solicitudes.DiasPromedioAdopcion != 4 {
		t.Fatalf("adoption latency should be 4 days, got %v", d.Solicitudes.DiasPromedioAdopcion)
	}

	if d.Seguimientos.Pendientes != 1 || d.Seguimientos.Proximos != 1 || d.Seguimientos.Vencidos != 1 || d.Seguimientos.Completados != 1 {
		t.Fatalf("follow-up counts wrong: %+v", d.Seguimientos)
	}
	if d.Seguimientos.ProblemasDetectados != 1 {
		t.Fatalf("expected one detected issue, got %d", d.Seguimientos.ProblemasDetectados)
	}
}

func TestDashboard_HealthBacklogOnlyActivePets(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	svc, petRepo, _, _ := newFixture(now)

	petRepo.items = []pets.Pet{
		{ID: "p1", Status: pets.StatusAvailable},                                                // cuenta en los tres backlogs
		{ID: "p2", Status: pets.StatusInProcess, Vaccinated: true, Sterilized: true, Dewormed: true}, // al día
		{ID: "p3", Status: pets.StatusAdopted},                                                  // fuera del refugio, no cuenta
	}

	d, err := svc.Dashboard(context.Background(), 0)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.Salud.SinVacunar != 1 || d.Salud.SinEsterilizar != 1 || d.Salud.SinDesparasitar != 1 {
		t.Fatalf("health backlog must count only active pets: %+v", d.Salud)
	}
}

func TestDashboard_LatencyWindowExcludesOldAdoptions(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	svc, _, reqRepo, _ := newFixture(now)

	oldAdoption := now.Add(-200 * 24 * time.Hour)
	recent := now.Add(-5 * 24 * time.Hour)
	reqRepo.items = []adoptions.AdoptionRequest{
		{ID: "r1", Status: adoptions.StatusApproved, CreatedAt: oldAdoption.Add(-10 * 24 * time.Hour), AdoptionAt: &oldAdoption},
		{ID: "r2", Status: adoptions.StatusApproved, CreatedAt: recent.Add(-2 * 24 * time.Hour), AdoptionAt: &recent},
	}

	d, err := svc.Dashboard(context.Background(), 90*24*time.Hour)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if !d.Solicitudes.TieneDatosLatencia {
		t.Fatal("recent adoption should produce latency data")
	}
	if d.Solicitudes.DiasPromedioAdopcion != 2 {
		t.Fatalf("only the in-window adoption counts: want 2 days, got %v", d.Solicitudes.DiasPromedioAdopcion)
	}
}
