package seed

import (
	"time"

	"grantpilot/internal/model"
)

// references between demo records are slice indexes, resolved to ids on insert
type demoGrant struct {
	grant  model.Grant
	funder int
}

type demoReport struct {
	report model.ReportingRequirement
	grant  int
}

type demoCompliance struct {
	item  model.ComplianceItem
	grant int
}

type demo struct {
	funders    []model.FunderProfile
	grants     []demoGrant
	reports    []demoReport
	compliance []demoCompliance
	content    []model.ContentItem
	budgets    []model.BudgetTemplate
	outcomes   []model.OutcomeMetric
}

// dataset dates are relative to today so the dashboard always has
// something upcoming and something overdue.
func dataset(today time.Time) demo {
	day := func(offset int) string {
		return today.AddDate(0, 0, offset).Format(model.DateLayout)
	}

	return demo{
		funders: []model.FunderProfile{
			{
				Name:                    "Riverbend Community Foundation",
				Website:                 "https://riverbend.example.org",
				Priorities:              "Youth development, food security",
				TypicalAwardRange:       "$10,000 - $50,000",
				ApplicationRequirements: []string{"Narrative", "Budget", "Board list", "990"},
				ContactName:             "Dana Whitfield",
				ContactEmail:            "dana@riverbend.example.org",
				RelationshipNotes:       "Met at spring convening; open to a site visit.",
			},
			{
				Name:                    "Harbor Light Trust",
				Website:                 "https://harborlight.example.org",
				Priorities:              "Arts education, literacy",
				Restrictions:            "No capital campaigns",
				TypicalAwardRange:       "$5,000 - $25,000",
				ApplicationRequirements: []string{"Letter of inquiry", "Budget"},
			},
			{
				Name:              "State Department of Human Services",
				PortalURL:         "https://grants.example.gov",
				PortalLoginNotes:  "Login held by the executive director.",
				Priorities:        "Workforce readiness",
				TypicalAwardRange: "$50,000 - $150,000",
			},
		},
		grants: []demoGrant{
			{funder: 0, grant: model.Grant{
				Title:           "After-School Meals Expansion",
				AmountRequested: 40000,
				Stage:           model.StageWriting,
				Deadline:        day(6),
				Program:         "Youth Nutrition",
			}},
			{funder: 1, grant: model.Grant{
				Title:           "Reading Buddies 2025",
				AmountRequested: 15000,
				Stage:           model.StageResearching,
				Deadline:        day(21),
				Program:         "Literacy",
			}},
			{funder: 2, grant: model.Grant{
				Title:           "Job Skills Pathway",
				AmountRequested: 120000,
				Stage:           model.StagePending,
				Deadline:        day(-30),
				SubmittedDate:   day(-35),
				Program:         "Workforce",
			}},
			{funder: 0, grant: model.Grant{
				Title:            "Community Garden Operating Support",
				AmountRequested:  25000,
				AmountAwarded:    22000,
				Stage:            model.StageAwarded,
				Deadline:         day(-120),
				SubmittedDate:    day(-125),
				DecisionDate:     day(-60),
				GrantPeriodStart: day(-45),
				GrantPeriodEnd:   day(320),
				Program:          "Food Security",
			}},
			{funder: 1, grant: model.Grant{
				Title:           "Summer Theater Workshop",
				AmountRequested: 8000,
				Stage:           model.StageDeclined,
				Deadline:        day(-200),
				DecisionDate:    day(-150),
				Program:         "Arts",
			}},
		},
		reports: []demoReport{
			{grant: 3, report: model.ReportingRequirement{
				ReportType:  "financial",
				Title:       "Q1 Financial Report",
				Description: "Budget vs. actual with receipts over $500.",
				DueDate:     day(10),
				Frequency:   "quarterly",
			}},
			{grant: 3, report: model.ReportingRequirement{
				ReportType:  "narrative",
				Title:       "Interim Narrative",
				Description: "Progress toward garden plot and volunteer goals.",
				DueDate:     day(-3),
				Status:      model.ReportInProgress,
			}},
			{grant: 3, report: model.ReportingRequirement{
				ReportType: "final",
				Title:      "Final Report",
				DueDate:    day(350),
			}},
		},
		compliance: []demoCompliance{
			{grant: 3, item: model.ComplianceItem{
				Requirement: "Funds may not be used for land purchase.",
				Category:    "spending",
			}},
			{grant: 3, item: model.ComplianceItem{
				Requirement: "Acknowledge the foundation in all printed materials.",
				Category:    "programmatic",
				Deadline:    day(4),
			}},
			{grant: 3, item: model.ComplianceItem{
				Requirement: "Retain volunteer sign-in sheets for three years.",
				Category:    "documentation",
				IsCompleted: true,
			}},
		},
		content: []model.ContentItem{
			{
				Category: "mission",
				Title:    "Mission Statement",
				Content:  "We connect families in our neighborhood with food, learning and work.",
				Tags:     []string{"core"},
			},
			{
				Category: "history",
				Title:    "Organizational History",
				Content:  "Founded in 2009 by parents running a weekend meal program out of a church basement.",
			},
			{
				Category: "programs",
				Title:    "Youth Nutrition Program",
				Content:  "Serves 180 students a hot meal each school day across three sites.",
				Tags:     []string{"youth", "nutrition"},
			},
		},
		budgets: []model.BudgetTemplate{
			{
				Name: "Standard Program Budget",
				LineItems: []model.LineItem{
					{Category: "Personnel", Description: "Program coordinator (0.5 FTE)", Amount: 24000},
					{Category: "Supplies", Description: "Food and kitchen supplies", Amount: 11000},
					{Category: "Indirect", Description: "Administrative overhead", Amount: 5000},
				},
			},
		},
		outcomes: []model.OutcomeMetric{
			{
				Program:    "Youth Nutrition",
				MetricType: "output",
				Title:      "Meals served",
				Value:      "31,400",
				TimePeriod: "FY2024",
				Source:     "Site logs",
			},
			{
				Program:    "Literacy",
				MetricType: "outcome",
				Title:      "Students reading at grade level",
				Value:      "68%",
				TimePeriod: "Spring 2024",
				Source:     "Partner school assessments",
			},
			{
				Program:    "Workforce",
				MetricType: "testimonial",
				Title:      "Graduate story",
				Value:      "\"The program gave me the confidence to apply for my first warehouse lead role.\"",
			},
		},
	}
}
