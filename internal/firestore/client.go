package firestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"songrank/internal/model"
)

// maxBatchWrites is Firestore's limit on writes in one atomic batch.
const maxBatchWrites = 500

// Client wraps the Firestore client for chart row operations.
type Client struct {
	client     *firestore.Client
	collection string
}

// New creates a new Firestore client.
func New(ctx context.Context, projectID, collection string) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &Client{
		client:     client,
		collection: collection,
	}, nil
}

// Close closes the Firestore client.
func (c *Client) Close() error {
	return c.client.Close()
}

// ReplaceRowsForDate replaces the stored chart for date with rows. Stale
// documents are deleted and new ones set in the same batch, so the
// replacement is atomic whenever it fits in maxBatchWrites writes. Larger
// replacements are split into several batches and are not.
func (c *Client) ReplaceRowsForDate(ctx context.Context, date string, rows []model.ChartRow, batchID string) error {
	coll := c.client.Collection(c.collection)

	existing, err := c.docIDsForDate(ctx, date)
	if err != nil {
		return fmt.Errorf("listing existing rows: %w", err)
	}

	newIDs := make([]string, len(rows))
	for pos, row := range rows {
		newIDs[pos] = generateDocID(date, pos, row)
	}
	stale := staleDocIDs(existing, newIDs)

	total := len(stale) + len(rows)
	for _, b := range batchBounds(total, maxBatchWrites) {
		batch := c.client.Batch()
		for i := b[0]; i < b[1]; i++ {
			if i < len(stale) {
				batch.Delete(coll.Doc(stale[i]))
				continue
			}
			pos := i - len(stale)
			batch.Set(coll.Doc(newIDs[pos]), rowToMap(date, pos, rows[pos], batchID))
		}
		if _, err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("committing batch: %w", err)
		}
	}

	return nil
}

// docIDsForDate lists the IDs of all documents stored for a chart date.
func (c *Client) docIDsForDate(ctx context.Context, date string) ([]string, error) {
	iter := c.client.Collection(c.collection).Where("date", "==", date).Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating documents: %w", err)
		}
		ids = append(ids, doc.Ref.ID)
	}
	return ids, nil
}

// staleDocIDs returns the existing IDs that the new rows do not overwrite.
func staleDocIDs(existing, newIDs []string) []string {
	keep := make(map[string]bool, len(newIDs))
	for _, id := range newIDs {
		keep[id] = true
	}
	var stale []string
	for _, id := range existing {
		if !keep[id] {
			stale = append(stale, id)
		}
	}
	return stale
}

// batchBounds splits total writes into [start, end) ranges of at most size.
func batchBounds(total, size int) [][2]int {
	var bounds [][2]int
	for start := 0; start < total; start += size {
		end := start + size
		if end > total {
			end = total
		}
		bounds = append(bounds, [2]int{start, end})
	}
	return bounds
}

// GetRowsForDate returns the stored chart for date in chart order.
func (c *Client) GetRowsForDate(ctx context.Context, date string) ([]model.ChartRow, error) {
	iter := c.client.Collection(c.collection).Where("date", "==", date).Documents(ctx)

	var stored []storedRow
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating documents: %w", err)
		}
		stored = append(stored, mapToRow(doc.Data()))
	}

	return orderRows(stored), nil
}

// CountByDate returns the number of stored rows per chart date.
func (c *Client) CountByDate(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)

	iter := c.client.Collection(c.collection).Documents(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating documents: %w", err)
		}
		date, _ := doc.Data()["date"].(string)
		counts[date]++
	}

	return counts, nil
}

type storedRow struct {
	position int
	row      model.ChartRow
}

// orderRows sorts by stored position. Sorting happens here rather than in
// the query so no composite index on (date, position) is needed.
func orderRows(stored []storedRow) []model.ChartRow {
	sort.SliceStable(stored, func(i, j int) bool {
		return stored[i].position < stored[j].position
	})
	rows := make([]model.ChartRow, len(stored))
	for i, s := range stored {
		rows[i] = s.row
	}
	return rows
}

// generateDocID creates a stable document ID for a row of a chart.
func generateDocID(date string, position int, row model.ChartRow) string {
	data := fmt.Sprintf("%s|%d|%s|%s", date, position, row.Title, row.Artist)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:16]) // Use first 16 bytes for shorter ID
}

// rowToMap converts a ChartRow to a Firestore document map.
func rowToMap(date string, position int, row model.ChartRow, batchID string) map[string]interface{} {
	return map[string]interface{}{
		"date":          date,
		"position":      position,
		"current_rank":  row.CurrentRank,
		"previous_rank": row.PreviousRank,
		"title":         row.Title,
		"artist":        row.Artist,
		"batch_id":      batchID,
	}
}

// mapToRow converts a Firestore document map back to a row and its position.
func mapToRow(m map[string]interface{}) storedRow {
	var s storedRow

	// Firestore returns integers as int64.
	switch v := m["position"].(type) {
	case int64:
		s.position = int(v)
	case int:
		s.position = v
	}
	if v, ok := m["current_rank"].(string); ok {
		s.row.CurrentRank = v
	}
	if v, ok := m["previous_rank"].(string); ok {
		s.row.PreviousRank = v
	}
	if v, ok := m["title"].(string); ok {
		s.row.Title = v
	}
	if v, ok := m["artist"].(string); ok {
		s.row.Artist = v
	}
	return s
}
