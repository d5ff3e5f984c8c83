package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/civicworks/civic-backend/internal/models"
)

type ChangeStatusRequest struct {
	Status        models.ReportStatus `json:"status"`
	Justification string              `json:"justification"`
}

type AssignDirectRequest struct {
	ContractorID  *uuid.UUID `json:"contractor_id"`
	DepartmentID  *uuid.UUID `json:"department_id"`
	Justification string     `json:"justification"`
	AgreedCost    float64    `json:"agreed_cost"`
	Deadline      *time.Time `json:"deadline"`
}

type AcceptBidRequest struct {
	Justification string     `json:"justification"`
	Deadline      *time.Time `json:"deadline"`
}

type ModerateRequest struct {
	Action        string     `json:"action"`
	Justification string     `json:"justification"`
	DuplicateOfID *uuid.UUID `json:"duplicate_of_id"`
}

type ReviewProofRequest struct {
	Approve       bool   `json:"approve"`
	Justification string `json:"justification"`
}

type BlockContractorRequest struct {
	Blocked       bool   `json:"blocked"`
	Justification string `json:"justification"`
}
