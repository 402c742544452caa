package reliability

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/turnips/internal/domain"
	"github.com/aristath/turnips/internal/modules/dataset"
)

// SnapshotVersion is bumped when the snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is the exported training set of one batch.
type Snapshot struct {
	Version   int              `msgpack:"version"`
	BatchID   string           `msgpack:"batch_id"`
	Source    string           `msgpack:"source"`
	Layout    string           `msgpack:"layout"`
	CreatedAt time.Time        `msgpack:"created_at"`
	Records   []SnapshotRecord `msgpack:"records"`
	Features  [][]float64      `msgpack:"features"`
	Labels    []int            `msgpack:"labels"`
}

// SnapshotRecord is the wire form of a weekly record.
type SnapshotRecord struct {
	Owner           string `msgpack:"owner"`
	IslandName      string `msgpack:"island_name"`
	WeekIndex       int    `msgpack:"week_index"`
	PurchasePrice   int    `msgpack:"purchase_price"`
	Prices          []*int `msgpack:"prices"`
	PreviousPattern int    `msgpack:"previous_pattern"`
	CurrentPattern  int    `msgpack:"current_pattern"`
}

// NewSnapshot builds the perfect-data snapshot of records.
func NewSnapshot(batchID, source, layout string, records []domain.WeeklyRecord, now time.Time) *Snapshot {
	ds := dataset.PerfectData(records)

	snap := &Snapshot{
		Version:   SnapshotVersion,
		BatchID:   batchID,
		Source:    source,
		Layout:    layout,
		CreatedAt: now.UTC(),
		Records:   make([]SnapshotRecord, len(ds.Records)),
		Features:  ds.Features,
		Labels:    ds.Labels,
	}
	for i, rec := range ds.Records {
		snap.Records[i] = toSnapshotRecord(rec)
	}
	return snap
}

func toSnapshotRecord(rec domain.WeeklyRecord) SnapshotRecord {
	prices := make([]*int, len(rec.Prices))
	for i, p := range rec.Prices {
		prices[i] = p.Ptr()
	}
	return SnapshotRecord{
		Owner:           rec.Owner,
		IslandName:      rec.IslandName,
		WeekIndex:       rec.WeekIndex,
		PurchasePrice:   rec.PurchasePrice,
		Prices:          prices,
		PreviousPattern: rec.PreviousPattern.Ordinal(),
		CurrentPattern:  rec.CurrentPattern.Ordinal(),
	}
}

// WeeklyRecords converts the snapshot records back to domain values.
func (s *Snapshot) WeeklyRecords() []domain.WeeklyRecord {
	out := make([]domain.WeeklyRecord, len(s.Records))
	for i, r := range s.Records {
		rec := domain.WeeklyRecord{
			Owner:           r.Owner,
			IslandName:      r.IslandName,
			WeekIndex:       r.WeekIndex,
			PurchasePrice:   r.PurchasePrice,
			PreviousPattern: domain.PatternCategory(r.PreviousPattern),
			CurrentPattern:  domain.PatternCategory(r.CurrentPattern),
		}
		for j := 0; j < len(r.Prices) && j < domain.PriceSlots; j++ {
			rec.Prices[j] = domain.PriceFromPtr(r.Prices[j])
		}
		out[i] = rec
	}
	return out
}

// Encode serializes the snapshot with msgpack.
func (s *Snapshot) Encode() ([]byte, error) {
	data, err := msgpack.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses an encoded snapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", s.Version)
	}
	return &s, nil
}
