package model

import "time"

// ContentItem is a reusable block of organizational boilerplate.
type ContentItem struct {
	ID        string   `json:"id"`
	Category  string   `json:"category" binding:"omitempty,oneof=mission history leadership programs financials boilerplate other"`
	Title     string   `json:"title" binding:"required"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	UpdatedAt string   `json:"updated_at"`
}

func (c *ContentItem) Stamp(id string, now time.Time) {
	c.ID = id
	c.Category = orDefault(c.Category, DefaultCategory)
	c.Tags = nonNil(c.Tags)
	c.UpdatedAt = Timestamp(now)
}

func (c *ContentItem) Touch(now time.Time) {
	c.Tags = nonNil(c.Tags)
	c.UpdatedAt = Timestamp(now)
}

type ContentItemUpdate struct {
	Category *string   `json:"category,omitempty" binding:"omitempty,oneof=mission history leadership programs financials boilerplate other"`
	Title    *string   `json:"title,omitempty" binding:"omitempty,min=1"`
	Content  *string   `json:"content,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}
