package model

import "time"

type OutcomeMetric struct {
	ID         string `json:"id"`
	Program    string `json:"program" binding:"required"`
	MetricType string `json:"metric_type" binding:"required,oneof=output outcome testimonial demographic"`
	Title      string `json:"title" binding:"required"`
	Value      string `json:"value"`
	TimePeriod string `json:"time_period"`
	Source     string `json:"source"`
	Notes      string `json:"notes"`
	UpdatedAt  string `json:"updated_at"`
}

func (o *OutcomeMetric) Stamp(id string, now time.Time) {
	o.ID = id
	o.UpdatedAt = Timestamp(now)
}

func (o *OutcomeMetric) Touch(now time.Time) {
	o.UpdatedAt = Timestamp(now)
}

type OutcomeUpdate struct {
	Program    *string `json:"program,omitempty" binding:"omitempty,min=1"`
	MetricType *string `json:"metric_type,omitempty" binding:"omitempty,oneof=output outcome testimonial demographic"`
	Title      *string `json:"title,omitempty" binding:"omitempty,min=1"`
	Value      *string `json:"value,omitempty"`
	TimePeriod *string `json:"time_period,omitempty"`
	Source     *string `json:"source,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}
