package model

import "time"

type LineItem struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Notes       string  `json:"notes"`
}

// BudgetTemplate keeps Total equal to the sum of its line items.
type BudgetTemplate struct {
	ID        string     `json:"id"`
	Name      string     `json:"name" binding:"required"`
	GrantID   *string    `json:"grant_id"`
	LineItems []LineItem `json:"line_items"`
	Total     float64    `json:"total"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
}

func (b *BudgetTemplate) Stamp(id string, now time.Time) {
	b.ID = id
	b.CreatedAt = Timestamp(now)
	b.Touch(now)
}

func (b *BudgetTemplate) Touch(now time.Time) {
	b.LineItems = nonNil(b.LineItems)
	b.Total = SumLineItems(b.LineItems)
	b.UpdatedAt = Timestamp(now)
}

func SumLineItems(items []LineItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Amount
	}
	return total
}

type BudgetUpdate struct {
	Name      *string     `json:"name,omitempty" binding:"omitempty,min=1"`
	GrantID   *string     `json:"grant_id,omitempty"`
	LineItems *[]LineItem `json:"line_items,omitempty"`
}
