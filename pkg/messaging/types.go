package messaging

import "github.com/matst80/slask-catalogue/pkg/types"

type ChangeTopic string

const (
	RubricsChanged   ChangeTopic = "rubrics_changed"
	DocumentsChanged ChangeTopic = "documents_changed"
)

// DocumentsChange carries upserts for one collection. Documents flagged
// Deleted are removed.
type DocumentsChange struct {
	Collection string           `json:"collection"`
	Documents  []types.Document `json:"documents"`
}
