package entity

import (
	"encoding/json"

	"github.com/gofrs/uuid/v5"
)

type SubmissionFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// SubmissionPayload is assembled per user action and sent to the webhook
// exactly once. It is never persisted.
type SubmissionPayload struct {
	ID             uuid.UUID
	ClientName     string
	CustomerNumber string
	// SpreadsheetTitle is the resolved human-readable title of the price
	// sheet. Empty when resolution degraded to the raw link.
	SpreadsheetTitle string
	// PriceSheetID is the file id extracted from the stored link. Empty when
	// the link does not match any known pattern.
	PriceSheetID string
	// Schema is the imported pricing document for the client, nil when no
	// price sheet has been imported.
	Schema json.RawMessage
	Files  []SubmissionFile
}
