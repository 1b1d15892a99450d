package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	appctx "beercatalog/internal/core/context"
	"beercatalog/internal/core/id"
	"beercatalog/internal/domain"
	"beercatalog/internal/domain/beer"
)

const auditTable = "sys_audit"

// CompressionAlgo specifies the compression algorithm used for stored changes.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// AuditEntry is a row of sys_audit.
type AuditEntry struct {
	ID                id.ID           `db:"id"`
	EntityType        string          `db:"entity_type"`
	EntityID          id.ID           `db:"entity_id"`
	Action            string          `db:"action"`
	Changes           json.RawMessage `db:"changes"`
	ChangesCompressed []byte          `db:"changes_compressed"`
	CompressionAlgo   CompressionAlgo `db:"compression_algo"`
	RequestID         string          `db:"request_id"`
	CreatedAt         time.Time       `db:"created_at"`
}

// AuditService records field-level change history.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ beer.HistoryReader = (*AuditService)(nil)

// NewAuditService creates an audit service. Changes larger than 10KB are stored zstd-compressed.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// Close releases the codec resources.
func (s *AuditService) Close() {
	_ = s.encoder.Close()
	s.decoder.Close()
}

func (s *AuditService) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Log records an audit entry.
func (s *AuditService) Log(ctx context.Context, entry AuditEntry) error {
	if id.IsNil(entry.ID) {
		entry.ID = id.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.RequestID == "" {
		entry.RequestID = appctx.GetRequestID(ctx)
	}

	entry = s.compress(entry)

	sql, args, err := s.builder().
		Insert(auditTable).
		Columns("id", "entity_type", "entity_id", "action", "changes",
			"changes_compressed", "compression_algo", "request_id", "created_at").
		Values(entry.ID, entry.EntityType, entry.EntityID, entry.Action, entry.Changes,
			entry.ChangesCompressed, string(entry.CompressionAlgo), entry.RequestID, entry.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build audit insert: %w", err)
	}

	if _, err := s.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// compress moves large change sets into the compressed column.
func (s *AuditService) compress(entry AuditEntry) AuditEntry {
	entry.CompressionAlgo = CompressionNone
	if len(entry.Changes) > s.compressThreshold {
		entry.ChangesCompressed = s.encoder.EncodeAll(entry.Changes, nil)
		entry.Changes = nil
		entry.CompressionAlgo = CompressionZstd
	}
	return entry
}

func (s *AuditService) decompress(entry AuditEntry) (AuditEntry, error) {
	if entry.CompressionAlgo == CompressionZstd && len(entry.ChangesCompressed) > 0 {
		decompressed, err := s.decoder.DecodeAll(entry.ChangesCompressed, nil)
		if err != nil {
			return entry, fmt.Errorf("decompress changes: %w", err)
		}
		entry.Changes = decompressed
		entry.ChangesCompressed = nil
	}
	return entry, nil
}

// LogChange records the diff carried by c.
func (s *AuditService) LogChange(ctx context.Context, c beer.Change) error {
	before, err := toFieldMap(c.Before)
	if err != nil {
		return err
	}
	after, err := toFieldMap(c.After)
	if err != nil {
		return err
	}

	changesJSON, err := json.Marshal(Diff(before, after))
	if err != nil {
		return fmt.Errorf("marshal changes: %w", err)
	}

	return s.Log(ctx, AuditEntry{
		EntityType: beer.EntityName,
		EntityID:   c.BeerID(),
		Action:     string(c.Action),
		Changes:    changesJSON,
	})
}

// Hook adapts LogChange to the beer service hook registry.
func (s *AuditService) Hook() domain.Hook[beer.Change] {
	return s.LogChange
}

// GetEntityHistory retrieves audit history for an entity, newest first.
func (s *AuditService) GetEntityHistory(ctx context.Context, entityType string, entityID id.ID, limit int) ([]AuditEntry, error) {
	sql, args, err := s.builder().
		Select("id", "entity_type", "entity_id", "action", "changes",
			"changes_compressed", "compression_algo", "request_id", "created_at").
		From(auditTable).
		Where(squirrel.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}

	var rows []AuditEntry
	if err := pgxscan.Select(ctx, s.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	for i := range rows {
		if rows[i], err = s.decompress(rows[i]); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// History implements beer.HistoryReader.
func (s *AuditService) History(ctx context.Context, beerID id.ID, limit int) ([]beer.HistoryEntry, error) {
	rows, err := s.GetEntityHistory(ctx, beer.EntityName, beerID, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]beer.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, beer.HistoryEntry{
			ID:        row.ID,
			Action:    beer.Action(row.Action),
			Changes:   row.Changes,
			RequestID: row.RequestID,
			CreatedAt: row.CreatedAt,
		})
	}
	return entries, nil
}

// toFieldMap renders b as its JSON field map; nil yields an empty map.
func toFieldMap(b *beer.Beer) (map[string]any, error) {
	out := map[string]any{}
	if b == nil {
		return out, nil
	}
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshal beer: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal beer: %w", err)
	}
	return out, nil
}

// Diff calculates the difference between old and new entity states.
func Diff(oldState, newState map[string]any) map[string]any {
	changes := make(map[string]any)

	for key, newVal := range newState {
		oldVal, exists := oldState[key]
		if !exists {
			changes[key] = map[string]any{"old": nil, "new": newVal}
		} else if !reflect.DeepEqual(oldVal, newVal) {
			changes[key] = map[string]any{"old": oldVal, "new": newVal}
		}
	}

	for key, oldVal := range oldState {
		if _, exists := newState[key]; !exists {
			changes[key] = map[string]any{"old": oldVal, "new": nil}
		}
	}

	return changes
}
