package model

import "time"

type ReportingRequirement struct {
	ID            string `json:"id"`
	GrantID       string `json:"grant_id" binding:"required"`
	ReportType    string `json:"report_type" binding:"omitempty,oneof=financial narrative progress final audit other"`
	Title         string `json:"title" binding:"required"`
	Description   string `json:"description"`
	DueDate       string `json:"due_date"`
	Frequency     string `json:"frequency" binding:"omitempty,oneof=one-time monthly quarterly semi-annual annual"`
	Status        string `json:"status" binding:"omitempty,oneof=upcoming in-progress submitted approved"`
	SubmittedDate string `json:"submitted_date"`
	Notes         string `json:"notes"`
}

func (r *ReportingRequirement) Stamp(id string, _ time.Time) {
	r.ID = id
	r.ReportType = orDefault(r.ReportType, DefaultReportType)
	r.Frequency = orDefault(r.Frequency, DefaultFrequency)
	r.Status = orDefault(r.Status, ReportUpcoming)
}

type ReportingUpdate struct {
	ReportType    *string `json:"report_type,omitempty" binding:"omitempty,oneof=financial narrative progress final audit other"`
	Title         *string `json:"title,omitempty" binding:"omitempty,min=1"`
	Description   *string `json:"description,omitempty"`
	DueDate       *string `json:"due_date,omitempty"`
	Frequency     *string `json:"frequency,omitempty" binding:"omitempty,oneof=one-time monthly quarterly semi-annual annual"`
	Status        *string `json:"status,omitempty" binding:"omitempty,oneof=upcoming in-progress submitted approved"`
	SubmittedDate *string `json:"submitted_date,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}
