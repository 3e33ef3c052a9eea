package extraction

import (
	"strconv"
	"strings"

	"grantpilot/internal/model"
)

// GrantInfo is the award metadata found in a document.
type GrantInfo struct {
	AwardAmount      float64 `json:"award_amount"`
	GrantPeriodStart string  `json:"grant_period_start"`
	GrantPeriodEnd   string  `json:"grant_period_end"`
	FunderName       string  `json:"funder_name"`
}

type ReportRequirement struct {
	ReportType  string `json:"report_type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"due_date"`
	Frequency   string `json:"frequency"`
}

type ComplianceRequirement struct {
	Requirement string `json:"requirement"`
	Category    string `json:"category"`
	Deadline    string `json:"deadline"`
}

// Result is the model output after every field has been checked.
type Result struct {
	GrantInfo             GrantInfo               `json:"grant_info"`
	ReportingRequirements []ReportRequirement     `json:"reporting_requirements"`
	ComplianceItems       []ComplianceRequirement `json:"compliance_items"`
	Restrictions          []string                `json:"restrictions"`
}

// coerce reads an untrusted decoded JSON object field by field. Wrong types
// become zero values and out-of-range enums become their defaults.
func coerce(raw map[string]any) Result {
	res := Result{
		ReportingRequirements: []ReportRequirement{},
		ComplianceItems:       []ComplianceRequirement{},
		Restrictions:          []string{},
	}

	if info, ok := raw["grant_info"].(map[string]any); ok {
		res.GrantInfo = GrantInfo{
			AwardAmount:      number(info["award_amount"]),
			GrantPeriodStart: str(info["grant_period_start"]),
			GrantPeriodEnd:   str(info["grant_period_end"]),
			FunderName:       str(info["funder_name"]),
		}
	}

	for _, item := range objects(raw["reporting_requirements"]) {
		res.ReportingRequirements = append(res.ReportingRequirements, ReportRequirement{
			ReportType:  model.OneOf(strings.ToLower(str(item["report_type"])), model.ReportTypes, model.DefaultReportType),
			Title:       orDefault(str(item["title"]), model.DefaultReportTitle),
			Description: str(item["description"]),
			DueDate:     str(item["due_date"]),
			Frequency:   model.OneOf(strings.ToLower(str(item["frequency"])), model.Frequencies, model.DefaultFrequency),
		})
	}

	for _, item := range objects(raw["compliance_items"]) {
		res.ComplianceItems = append(res.ComplianceItems, ComplianceRequirement{
			Requirement: str(item["requirement"]),
			Category:    model.OneOf(strings.ToLower(str(item["category"])), model.ComplianceCategories, model.DefaultCategory),
			Deadline:    str(item["deadline"]),
		})
	}

	if list, ok := raw["restrictions"].([]any); ok {
		for _, v := range list {
			if s := str(v); s != "" {
				res.Restrictions = append(res.Restrictions, s)
			}
		}
	}
	return res
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// number accepts JSON numbers and numeric strings such as "$50,000".
func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(n)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func objects(v any) []map[string]any {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
