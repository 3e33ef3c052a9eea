package model

import "time"

type ComplianceItem struct {
	ID          string `json:"id"`
	GrantID     string `json:"grant_id" binding:"required"`
	Requirement string `json:"requirement" binding:"required"`
	Category    string `json:"category" binding:"omitempty,oneof=spending documentation programmatic audit other"`
	Deadline    string `json:"deadline"`
	IsCompleted bool   `json:"is_completed"`
	Notes       string `json:"notes"`
}

func (c *ComplianceItem) Stamp(id string, _ time.Time) {
	c.ID = id
	c.Category = orDefault(c.Category, DefaultCategory)
}

type ComplianceUpdate struct {
	Requirement *string `json:"requirement,omitempty" binding:"omitempty,min=1"`
	Category    *string `json:"category,omitempty" binding:"omitempty,oneof=spending documentation programmatic audit other"`
	Deadline    *string `json:"deadline,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}
