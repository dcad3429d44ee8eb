package adoptions

import (
	"context"
	"time"

	"adoption-center/internal/domain/pets"
)

// ConsistencyIssue es una inconsistencia entre mascotas y solicitudes que
// dejó una aplicación parcial (o un dato tocado por fuera del motor).
type ConsistencyIssue struct {
	Kind      string `json:"kind"`
	PetID     string `json:"pet_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Detail    string `json:"detail"`
}

const (
	IssueAdoptedWithoutRequest = "adopted_pet_without_approved_request"
	IssueApprovedPetNotAdopted = "approved_request_pet_not_adopted"
	IssueAdoptedWithoutDate    = "adopted_pet_without_adoption_date"
	IssueDateWithoutAdoption   = "adoption_date_on_non_adopted_pet"
)

type ConsistencyReport struct {
	CheckedAt time.Time          `json:"checked_at"`
	Issues    []ConsistencyIssue `json:"issues"`
}

// CheckConsistency es el pase de reconciliación de solo lectura: detecta
// aplicaciones parciales de aprobaciones sin corregir nada. La corrección es
// decisión de un operador, nunca del motor.
func (s *Service) CheckConsistency(ctx context.Context) (ConsistencyReport, error) {
	report := ConsistencyReport{
		CheckedAt: s.now(),
		Issues:    []ConsistencyIssue{},
	}

	allPets, err := s.pets.List(ctx, pets.ListFilter{})
	if err != nil {
		return ConsistencyReport{}, err
	}
	allReqs, err := s.reqs.List(ctx, ListFilter{})
	if err != nil {
		return ConsistencyReport{}, err
	}

	approvedByPet := make(map[string]AdoptionRequest)
	for _, r := range allReqs {
		if r.Status == StatusApproved {
			approvedByPet[r.PetID] = r
		}
	}

	for _, p := range allPets {
		switch p.Status {
		case pets.StatusAdopted:
			if _, ok := approvedByPet[p.ID]; !ok {
				report.Issues = append(report.Issues, ConsistencyIssue{
					Kind:   IssueAdoptedWithoutRequest,
					PetID:  p.ID,
					Detail: "pet is adopted but no approved request references it",
				})
			}
			if p.AdoptionDate == nil {
				report.Issues = append(report.Issues, ConsistencyIssue{
					Kind:   IssueAdoptedWithoutDate,
					PetID:  p.ID,
					Detail: "pet is adopted but adoption date is not set",
				})
			}
		default:
			if p.AdoptionDate != nil {
				report.Issues = append(report.Issues, ConsistencyIssue{
					Kind:   IssueDateWithoutAdoption,
					PetID:  p.ID,
					Detail: "pet has an adoption date but is not adopted",
				})
			}
		}
	}

	petByID := make(map[string]pets.Pet, len(allPets))
	for _, p := range allPets {
		petByID[p.ID] = p
	}
	for _, r := range allReqs {
		if r.Status != StatusApproved {
			continue
		}
		p, ok := petByID[r.PetID]
		if !ok || p.Status != pets.StatusAdopted {
			report.Issues = append(report.Issues, ConsistencyIssue{
				Kind:      IssueApprovedPetNotAdopted,
				PetID:     r.PetID,
				RequestID: r.ID,
				Detail:    "request is approved but its pet is not adopted",
			})
		}
	}

	return report, nil
}
