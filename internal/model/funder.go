package model

import "time"

type FunderProfile struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name" binding:"required"`
	Website                 string   `json:"website"`
	PortalURL               string   `json:"portal_url"`
	PortalLoginNotes        string   `json:"portal_login_notes"`
	Priorities              string   `json:"priorities"`
	Restrictions            string   `json:"restrictions"`
	TypicalAwardRange       string   `json:"typical_award_range"`
	ApplicationRequirements []string `json:"application_requirements"`
	ContactName             string   `json:"contact_name"`
	ContactEmail            string   `json:"contact_email" binding:"omitempty,email"`
	RelationshipNotes       string   `json:"relationship_notes"`
	CreatedAt               string   `json:"created_at"`
}

func (f *FunderProfile) Stamp(id string, now time.Time) {
	f.ID = id
	f.ApplicationRequirements = nonNil(f.ApplicationRequirements)
	f.CreatedAt = Timestamp(now)
}

type FunderUpdate struct {
	Name                    *string   `json:"name,omitempty" binding:"omitempty,min=1"`
	Website                 *string   `json:"website,omitempty"`
	PortalURL               *string   `json:"portal_url,omitempty"`
	PortalLoginNotes        *string   `json:"portal_login_notes,omitempty"`
	Priorities              *string   `json:"priorities,omitempty"`
	Restrictions            *string   `json:"restrictions,omitempty"`
	TypicalAwardRange       *string   `json:"typical_award_range,omitempty"`
	ApplicationRequirements *[]string `json:"application_requirements,omitempty"`
	ContactName             *string   `json:"contact_name,omitempty"`
	ContactEmail            *string   `json:"contact_email,omitempty" binding:"omitempty,email"`
	RelationshipNotes       *string   `json:"relationship_notes,omitempty"`
}
