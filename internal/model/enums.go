package model

import "slices"

// Grant pipeline stages.
const (
	StageResearching = "researching"
	StageWriting     = "writing"
	StageSubmitted   = "submitted"
	StagePending     = "pending"
	StageAwarded     = "awarded"
	StageDeclined    = "declined"
	StageClosed      = "closed"
)

var Stages = []string{
	StageResearching,
	StageWriting,
	StageSubmitted,
	StagePending,
	StageAwarded,
	StageDeclined,
	StageClosed,
}

// OpenStages are the stages still competing for funding.
var OpenStages = []string{StageResearching, StageWriting, StageSubmitted, StagePending}

// Reporting requirement statuses.
const (
	ReportUpcoming   = "upcoming"
	ReportInProgress = "in-progress"
	ReportSubmitted  = "submitted"
	ReportApproved   = "approved"
)

var ReportStatuses = []string{ReportUpcoming, ReportInProgress, ReportSubmitted, ReportApproved}

var ReportTypes = []string{"financial", "narrative", "progress", "final", "audit", "other"}

var Frequencies = []string{"one-time", "monthly", "quarterly", "semi-annual", "annual"}

var ComplianceCategories = []string{"spending", "documentation", "programmatic", "audit", "other"}

var ContentCategories = []string{"mission", "history", "leadership", "programs", "financials", "boilerplate", "other"}

var MetricTypes = []string{"output", "outcome", "testimonial", "demographic"}

const (
	DefaultReportType  = "other"
	DefaultReportTitle = "Report"
	DefaultFrequency   = "one-time"
	DefaultCategory    = "other"
)

// IsOpenStage reports whether stage counts toward pending totals.
func IsOpenStage(stage string) bool {
	return slices.Contains(OpenStages, stage)
}

// IsOpenReport reports whether a requirement still needs work.
func IsOpenReport(status string) bool {
	return status == ReportUpcoming || status == ReportInProgress
}

// OneOf returns v when it is in allowed, otherwise def.
func OneOf(v string, allowed []string, def string) string {
	if slices.Contains(allowed, v) {
		return v
	}
	return def
}
