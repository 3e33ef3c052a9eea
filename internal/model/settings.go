package model

// SettingsID is the fixed key of the organization settings record.
const SettingsID = "default"

type OrgSettings struct {
	ID             string `json:"id"`
	OrgName        string `json:"org_name"`
	EIN            string `json:"ein"`
	FiscalYearEnd  string `json:"fiscal_year_end"`
	PrimaryContact string `json:"primary_contact"`
	PrimaryEmail   string `json:"primary_email" binding:"omitempty,email"`
}
