package beer

import (
	"context"
	"encoding/json"
	"time"

	"beercatalog/internal/core/id"
)

// HistoryEntry is one recorded change of a beer.
type HistoryEntry struct {
	ID        id.ID           `json:"id"`
	Action    Action          `json:"action"`
	Changes   json.RawMessage `json:"changes"`
	RequestID string          `json:"requestId,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// HistoryReader returns recorded changes of a beer, newest first.
type HistoryReader interface {
	History(ctx context.Context, beerID id.ID, limit int) ([]HistoryEntry, error)
}
