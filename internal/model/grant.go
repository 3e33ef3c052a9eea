package model

import "time"

type Grant struct {
	ID               string  `json:"id"`
	Title            string  `json:"title" binding:"required"`
	FunderID         *string `json:"funder_id"`
	FunderName       string  `json:"funder_name"`
	AmountRequested  float64 `json:"amount_requested" binding:"gte=0"`
	AmountAwarded    float64 `json:"amount_awarded" binding:"gte=0"`
	Stage            string  `json:"stage" binding:"omitempty,oneof=researching writing submitted pending awarded declined closed"`
	Deadline         string  `json:"deadline"`
	SubmittedDate    string  `json:"submitted_date"`
	DecisionDate     string  `json:"decision_date"`
	GrantPeriodStart string  `json:"grant_period_start"`
	GrantPeriodEnd   string  `json:"grant_period_end"`
	Program          string  `json:"program"`
	Notes            string  `json:"notes"`
	CreatedAt        string  `json:"created_at"`
	UpdatedAt        string  `json:"updated_at"`
}

func (g *Grant) Stamp(id string, now time.Time) {
	g.ID = id
	g.Stage = orDefault(g.Stage, StageResearching)
	g.CreatedAt = Timestamp(now)
	g.UpdatedAt = g.CreatedAt
}

func (g *Grant) Touch(now time.Time) {
	g.UpdatedAt = Timestamp(now)
}

// GrantUpdate is a partial update; nil fields are left unchanged.
type GrantUpdate struct {
	Title            *string  `json:"title,omitempty" binding:"omitempty,min=1"`
	FunderID         *string  `json:"funder_id,omitempty"`
	FunderName       *string  `json:"funder_name,omitempty"`
	AmountRequested  *float64 `json:"amount_requested,omitempty" binding:"omitempty,gte=0"`
	AmountAwarded    *float64 `json:"amount_awarded,omitempty" binding:"omitempty,gte=0"`
	Stage            *string  `json:"stage,omitempty" binding:"omitempty,oneof=researching writing submitted pending awarded declined closed"`
	Deadline         *string  `json:"deadline,omitempty"`
	SubmittedDate    *string  `json:"submitted_date,omitempty"`
	DecisionDate     *string  `json:"decision_date,omitempty"`
	GrantPeriodStart *string  `json:"grant_period_start,omitempty"`
	GrantPeriodEnd   *string  `json:"grant_period_end,omitempty"`
	Program          *string  `json:"program,omitempty"`
	Notes            *string  `json:"notes,omitempty"`
}
