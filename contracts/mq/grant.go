package mq

// Routing keys on the events exchange.
const (
	EventGrantDeleted   = "grant.deleted"
	EventAwardExtracted = "award.extracted"
)

// GrantDeletedPayload is published when a grant is removed. Consumers sweep
// records that still point at GrantID.
type GrantDeletedPayload struct {
	GrantID string `json:"grant_id"`
	TraceID string `json:"trace_id,omitempty"`
}

type AwardExtractedPayload struct {
	GrantID           string `json:"grant_id"`
	CreatedReports    int    `json:"created_reports"`
	CreatedCompliance int    `json:"created_compliance"`
	TraceID           string `json:"trace_id,omitempty"`
}
