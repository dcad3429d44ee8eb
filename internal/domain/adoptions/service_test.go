package adoptions

import (
	"context"
	"errors"
	"testing"
	"time"

	"adoption-center/internal/domain/followups"
	"adoption-center/internal/domain/pets"
	"adoption-center/internal/ports/notify"
)

// -------------------------
// Test repos (in-memory)
// -------------------------

type testPetRepo struct {
	byID    map[string]pets.Pet
	failGet bool
}

func newTestPetRepo() *testPetRepo {
	return &testPetRepo{byID: map[string]pets.Pet{}}
}

func (r *testPetRepo) Create(ctx context.Context, p pets.Pet) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testPetRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	if r.failGet {
		return pets.Pet{}, errors.New("repo: boom")
	}
	p, ok := r.byID[id]
	if !ok {
		return pets.Pet{}, pets.ErrNotFound
	}
	return p, nil
}

func (r *testPetRepo) Update(ctx context.Context, p pets.Pet) error {
	current, ok := r.byID[p.ID]
	if !ok {
		return pets.ErrNotFound
	}
	if current.Version != p.Version {
		return pets.ErrConflict
	}
	p.Version++
	r.byID[p.ID] = p
	return nil
}

func (r *testPetRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, error) {
	out := make([]pets.Pet, 0)
	for _, p := range r.byID {
		out = append(out, p)
	}
	return out, nil
}

type testReqRepo struct {
	byID         map[string]AdoptionRequest
	failUpdate   bool
	conflictOnce bool
}

func newTestReqRepo() *testReqRepo {
	return &testReqRepo{byID: map[string]AdoptionRequest{}}
}

func (r *testReqRepo) Create(ctx context.Context, req AdoptionRequest) error {
	r.byID[req.ID] = req
	return nil
}

func (r *testReqRepo) GetByID(ctx context.Context, id string) (AdoptionRequest, error) {
	req, ok := r.byID[id]
	if !ok {
		return AdoptionRequest{}, ErrNotFound
	}
	return req, nil
}

func (r *testReqRepo) Update(ctx context.Context, req AdoptionRequest) error {
	if r.failUpdate {
		return errors.New("repo: boom")
	}
	if r.conflictOnce {
		r.conflictOnce = false
		return ErrConflict
	}
	current, ok := r.byID[req.ID]
	if !ok {
		return ErrNotFound
	}
	if current.Version != req.Version {
		return ErrConflict
	}
	req.Version++
	r.byID[req.ID] = req
	return nil
}

func (r *testReqRepo) List(ctx context.Context, f ListFilter) ([]AdoptionRequest, error) {
	out := make([]AdoptionRequest, 0)
	for _, req := range r.byID {
		if f.PetID != "" && req.PetID != f.PetID {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

type testFuRepo struct {
	byID       map[string]followups.FollowUp
	failCreate bool
}

func newTestFuRepo() *testFuRepo {
	return &testFuRepo{byID: map[string]followups.FollowUp{}}
}

func (r *testFuRepo) Create(ctx context.Context, f followups.FollowUp) error {
	if r.failCreate {
		return errors.New("repo: boom")
	}
	r.byID[f.ID] = f
	return nil
}

func (r *testFuRepo) GetByID(ctx context.Context, id string) (followups.FollowUp, error) {
	f, ok := r.byID[id]
	if !ok {
		return followups.FollowUp{}, followups.ErrNotFound
	}
	return f, nil
}

func (r *testFuRepo) Update(ctx context.Context, f followups.FollowUp) error {
	r.byID[f.ID] = f
	return nil
}

func (r *testFuRepo) ListByPet(ctx context.Context, petID string) ([]followups.FollowUp, error) {
	out := make([]followups.FollowUp, 0)
	for _, f := range r.byID {
		if f.PetID == petID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *testFuRepo) List(ctx context.Context, f followups.ListFilter) ([]followups.FollowUp, error) {
	out := make([]followups.FollowUp, 0)
	for _, fu := range r.byID {
		out = append(out, fu)
	}
	return out, nil
}

type testNotifier struct {
	events []notify.TransitionEvent
	fail   bool
}

func (n *testNotifier) Notify(ctx context.Context, ev notify.TransitionEvent) error {
	n.events = append(n.events, ev)
	if n.fail {
		return errors.New("notifier: down")
	}
	return nil
}

// -------------------------
// Helpers
// -------------------------

type fixture struct {
	svc      *Service
	pets     *testPetRepo
	reqs     *testReqRepo
	fus      *testFuRepo
	notifier *testNotifier
}

func newFixture() *fixture {
	petRepo := newTestPetRepo()
	reqRepo := newTestReqRepo()
	fuRepo := newTestFuRepo()
	n := &testNotifier{}
	return &fixture{
		svc:      NewService(reqRepo, petRepo, fuRepo, n, nil),
		pets:     petRepo,
		reqs:     reqRepo,
		fus:      fuRepo,
		notifier: n,
	}
}

func (fx *fixture) addPet(id string) pets.Pet {
	p := pets.Pet{
		ID:        id,
		Name:      "Milo",
		Species:   pets.SpeciesDog,
		Status:    pets.StatusAvailable,
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Version:   1,
	}
	fx.pets.byID[id] = p
	return p
}

func (fx *fixture) submit(t *testing.T, petID string) AdoptionRequest {
	t.Helper()
	r, err := fx.svc.Submit(context.Background(), SubmitInput{
		PetID:            petID,
		ApplicantID:      "applicant-1",
		ApplicantName:    "Ana",
		ApplicantContact: "ana@example.com",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return r
}

// -------------------------
// Tests
// -------------------------

func TestSubmit_UnknownPet_NotFound(t *testing.T) {
	fx := newFixture()
	_, err := fx.svc.Submit(context.Background(), SubmitInput{PetID: "ghost", ApplicantName: "Ana"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSubmit_AdoptedPet_Rejected(t *testing.T) {
	fx := newFixture()
	p := fx.addPet("pet-1")
	p.Status = pets.StatusAdopted
	fx.pets.byID[p.ID] = p

	_, err := fx.svc.Submit(context.Background(), SubmitInput{PetID: "pet-1", ApplicantName: "Ana"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestTransition_FullFlow_StampsMonotonic(t *testing.T) {
	fx := newFixture()
	fx.addPet("pet-1")

	t0 := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	fx.svc.now = func() time.Time { return t0 }
	r := fx.submit(t, "pet-1")

	times := []time.Time{
		t0.Add(1 * time.Hour), // review
		t0.Add(2 * time.Hour), // interview
		t0.Add(3 * time.Hour), // trial
		t0.Add(4 * time.Hour), // approved
	}
	steps := []Status{StatusReview, StatusInterview, StatusTrial, StatusApproved}

	for i, target := range steps {
		tick := times[i]
		fx.svc.now = func() time.Time { return tick }
		var err error
		r, err = fx.svc.Transition(context.Background(), r.ID, target, nil)
		if err != nil {
			t.Fatalf("transition to %s: %v", target, err)
		}
	}

	if r.ReviewAt == nil || r.InterviewAt == nil || r.TrialAt == nil || r.AdoptionAt == nil {
		t.Fatal("expected all stage timestamps set")
	}
	if r.ReviewAt.After(*r.InterviewAt) || r.InterviewAt.After(*r.TrialAt) || r.TrialAt.After(*r.AdoptionAt) {
		t.Fatal("stage timestamps must be non-decreasing in workflow order")
	}
	if r.ReviewAt.Before(r.CreatedAt) {
		t.Fatal("review timestamp cannot precede creation")
	}

	// Efectos de la aprobación.
	p := fx.pets.byID["pet-1"]
	if p.Status != pets.StatusAdopted {
		t.Fatalf("pet should be adopted, got %s", p.Status)
	}
	if p.AdoptionDate == nil || !p.AdoptionDate.Equal(times[3]) {
		t.Fatalf("adoption date should be approval time, got %v", p.AdoptionDate)
	}
	if p.AdopterName != "Ana" {
		t.Fatalf("adopter should come from the request, got %q", p.AdopterName)
	}

	fus, _ := fx.fus.ListByPet(context.Background(), "pet-1")
	if len(fus) != 1 {
		t.Fatalf("expected exactly one follow-up, got %d", len(fus))
	}
	fu := fus[0]
	if fu.Type != followups.TypeInitial {
		t.Fatalf("expected initial follow-up, got %s", fu.Type)
	}
	if !fu.Scheduled.Equal(times[3].Add(followups.InitialDelay)) {
		t.Fatalf("initial follow-up should be due 7 days after approval, got %v", fu.Scheduled)
	}
	if fu.Completed {
		t.Fatal("initial follow-up must start uncompleted")
	}

	// Un evento por transición aplicada.
	if len(fx.notifier.events) != 4 {
		t.Fatalf("expected 4 transition events, got %d", len(fx.notifier.events))
	}
	last := fx.notifier.events[3]
	if last.From != "trial" || last.To != "approved" {
		t.Fatalf("unexpected last event %s → %s", last.From, last.To)
	}
}

func TestTransition_DirectApproval_CreatesFollowUpAndAdopts(t *testing.T) {
	fx := newFixture()
	fx.addPet("pet-1")
	r := fx.submit(t, "pet-1")

	at := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	fx.svc.now = func() time.Time { return at }

	r, err := fx.svc.Transition(context.Background(), r.ID, StatusApproved, nil)
	if err != nil {
		t.Fatalf("direct approval: %v", err)
	}
	if r.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", r.Status)
	}
	if r.AdoptionAt == nil || !r.AdoptionAt.Equal(at) {
		t.Fatalf("adoption_at should be approval time, got %v", r.AdoptionAt)
	}

	p := fx.pets.byID["pet-1"]
	if p.Status != pets.StatusAdopted || p.AdoptionDate == nil || !p.AdoptionDate.Equal(at) {
		t.Fatalf("pet not adopted correctly: %+v", p)
	}

	fus, _ := fx.fus.ListByPet(context.Background(), "pet-1")
	if len(fus) != 1 || fus[0].Type != followups.TypeInitial {
		t.Fatalf("expected exactly one initial follow-up, got %+v", fus)
	}
	if !fus[0].Scheduled.Equal(at.Add(7 * 24 * time.Hour)) {
		t.Fatalf("follow-up due should be approval + 7d, got %v", fus[0].Scheduled)
	}
}

func TestTransition_Regression_FailsAndLeavesTimestamps(t *testing.T) {
	fx := newFixture()
	fx.addPet("pet-1")
	r := fx.submit(t, "pet-1")

	var err error
	r, err = fx.svc.Transition(context.Background(), r.ID, StatusInterview, nil)
	if err != nil {
		t.Fatalf("to interview: %v", err)
	}
	before, _ := fx.svc.GetByID(context.Background(), r.ID)

	_, err = fx.svc.Transition(context.Background(), r.ID, StatusReview, nil)
	if !errors.Is(err, ErrIllegalRegression) {
		t.Fatalf("expected illegal regression, got %v", err)
	}

	after, _ := fx.svc.GetByID(context.Background(), r.ID)
	if after.Status != before.Status {
		t.Fatalf("status changed on failed transition: %s", after.Status)
	}
	if (after.ReviewAt == nil) != (before.ReviewAt == nil) || after.InterviewAt == nil || !after.InterviewAt.Equal(*before.InterviewAt) {
		t.Fatal("timestamps changed on failed transition")
	}
	if after.UpdatedAt != before.UpdatedAt {
		t.Fatal("record mutated on failed transition")
	}
}

func TestTransition_OutOfTerminal_Fails(t *testing.T) {
	fx := newFixture()
	fx.addPet("pet-1")
	r := fx.submit(t, "pet-1")

	if _, err := fx.svc.Transition(context.Background(), r.ID, StatusRejected, nil); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err := fx.svc.Transition(context.Background(), r.ID, StatusNew, nil)
	if !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("expected illegal transition out of rejected, got %v", err)
	}
}

func TestTransition_NoOpWithNote_AppendsOnly(t *testing.T) {
	fx := newFixture()
	fx.addPet("pet-1")
	r := fx.submit(t, "pet-1")

	updated, err := fx.svc.Transition(context.Background(), r.ID, StatusNew, &NoteInput{Author: "vet", Content: "llamó para preguntar"})
	if err != nil {
		t.Fatalf("no-op with note: %v", err)
	}
	if updated.Status != StatusNew {
		t.Fatalf("status should stay new, got %s", updated.Status)
	}
	if len(updated.Notes) != 1 || updated.Notes[0].Author != "vet" {
		t.Fatalf("expected one note, got %+v", updated.Notes)
	}
	if len(fx.notifier.events) != 0 {
		t.Fatal("no-op must not emit transition events")
	}
}

func TestTransition_EmptyTargetNoNote_IsPureNoOp(t *testing.T) {
	fx := newFixture()
	fx.addPet("pet-1")
	r := fx.submit(t, "pet-1")

	updated, err := fx.svc.Transition(context.Background(), r.ID, "", nil)
	if err != nil {
		t.Fatalf("pure no-op: %v", err)
	}
	if updated.Version != r.Version {
		t.Fatal("pure no-op must not write")
	}
}

func TestTransition_MovesPetInProcess(t *testing.T) {
	fx := newFixture()
	fx.addPet("pet-1")
	r := fx.submit(t, "pet-1")

	if _, err := fx.svc.Transition(context.Background(), r.ID, StatusReview, nil); err != nil {
		t.Fatalf("to review: %v", err)
	}
	if got := fx.pets.byID["pet-1"].Status; got != pets.StatusInProcess {
		t.Fatalf("pet should be in_process, got %s", got)
	}
}

func TestTransition_Conflict_Surfaced(t *testing.T) {
	fx := newFixture()
	fx.addPet("pet-1")
	r := fx.submit(t, "pet-1")

	// Simula un writer concurrente que gana la carrera entre la lectura
	// del servicio y su write.
	fx.reqs.conflictOnce = true

	got, err := fx.svc.Transition(context.Background(), r.ID, StatusRejected, nil)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// El registro que acompaña al error es el del store, no la copia local
	// ya mutada: el caller decide el reintento mirando ese estado.
	if got.Status != StatusNew {
		t.Fatalf("error must carry the stored state, got %s", got.Status)
	}
	if !got.UpdatedAt.Equal(r.UpdatedAt) {
		t.Fatal("failed transition must not surface a mutated record")
	}
	if got.Version != r.Version {
		t.Fatalf("version should match the store, got %d want %d", got.Version, r.Version)
	}
}

func TestTransition_TerminalRequest_AcceptsNoteOnly(t *testing.T) {
	fx := newFixture()
	fx.addPet("pet-1")
	r := fx.submit(t, "pet-1")

	var err error
	r, err = fx.svc.Transition(context.Background(), r.ID, StatusRejected, nil)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}

	// Cerrada la solicitud, lo único que entra son notas: mismo estado como
	// target o target vacío, nunca un cambio de estado.
	r, err = fx.svc.Transition(context.Background(), r.ID, StatusRejected, &NoteInput{Author: "admin", Content: "el solicitante pidió revisión"})
	if err != nil {
		t.Fatalf("note on terminal request: %v", err)
	}
	r, err = fx.svc.Transition(context.Background(), r.ID, "", &NoteInput{Author: "admin", Content: "revisión denegada"})
	if err != nil {
		t.Fatalf("second note on terminal request: %v", err)
	}

	if r.Status != StatusRejected {
		t.Fatalf("request must stay rejected, got %s", r.Status)
	}
	if len(r.Notes) != 2 {
		t.Fatalf("expected two notes, got %d", len(r.Notes))
	}
	stored, _ := fx.svc.GetByID(context.Background(), r.ID)
	if len(stored.Notes) != 2 || stored.Status != StatusRejected {
		t.Fatalf("store out of sync: %+v", stored)
	}
	// Solo el rechazo emitió evento; las notas no son transiciones.
	if len(fx.notifier.events) != 1 {
		t.Fatalf("expected one transition event, got %d", len(fx.notifier.events))
	}
}

func TestApproval_PartialApply_SurfacedAndNotAutoCorrected(t *testing.T) {
	fx := newFixture()
	fx.addPet("pet-1")
	r := fx.submit(t, "pet-1")

	fx.fus.failCreate = true

	_, err := fx.svc.Transition(context.Background(), r.ID, StatusApproved, nil)
	if !errors.Is(err, ErrPartialApply) {
		t.Fatalf("expected partial apply error, got %v", err)
	}

	// La mascota quedó adoptada y la solicitud aprobada, sin follow-up:
	// exactamente lo que el reporte de consistencia NO debe encontrar roto
	// (pet adopted ⇔ approved request se sostiene) pero el error avisó.
	p := fx.pets.byID["pet-1"]
	if p.Status != pets.StatusAdopted {
		t.Fatalf("pet write committed before failure, got %s", p.Status)
	}
}

func TestNotifierFailure_DoesNotRollBack(t *testing.T) {
	fx := newFixture()
	fx.addPet("pet-1")
	r := fx.submit(t, "pet-1")
	fx.notifier.fail = true

	updated, err := fx.svc.Transition(context.Background(), r.ID, StatusReview, nil)
	if err != nil {
		t.Fatalf("transition must survive notifier failure: %v", err)
	}
	if updated.Status != StatusReview {
		t.Fatalf("expected review, got %s", updated.Status)
	}
}

func TestCheckConsistency_DetectsOrphanAdoption(t *testing.T) {
	fx := newFixture()
	p := fx.addPet("pet-1")

	// Mascota adoptada por fuera del motor, sin solicitud aprobada.
	adopted := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	p.Status = pets.StatusAdopted
	p.AdoptionDate = &adopted
	fx.pets.byID[p.ID] = p

	fx.svc.now = func() time.Time { return adopted.Add(24 * time.Hour) }
	report, err := fx.svc.CheckConsistency(context.Background())
	if err != nil {
		t.Fatalf("check consistency: %v", err)
	}
	if len(report.Issues) != 1 || report.Issues[0].Kind != IssueAdoptedWithoutRequest {
		t.Fatalf("expected one orphan-adoption issue, got %+v", report.Issues)
	}
}

func TestCheckConsistency_CleanAfterApproval(t *testing.T) {
	fx := newFixture()
	fx.addPet("pet-1")
	r := fx.submit(t, "pet-1")
	if _, err := fx.svc.Transition(context.Background(), r.ID, StatusApproved, nil); err != nil {
		t.Fatalf("approve: %v", err)
	}

	report, err := fx.svc.CheckConsistency(context.Background())
	if err != nil {
		t.Fatalf("check consistency: %v", err)
	}
	if len(report.Issues) != 0 {
		t.Fatalf("expected no issues, got %+v", report.Issues)
	}
}
