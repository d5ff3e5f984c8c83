package dto

import "github.com/google/uuid"

type SubmitBidRequest struct {
	ProposedCost  float64 `json:"proposed_cost"`
	EstimatedDays int     `json:"estimated_days"`
	Note          string  `json:"note"`
}

type SubmitProofRequest struct {
	AssignmentID uuid.UUID `json:"assignment_id"`
	Notes        string    `json:"notes"`
	ImageURL     string    `json:"image_url"`
}
