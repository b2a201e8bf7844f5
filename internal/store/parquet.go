package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"
)

// Compile-time interface check.
var _ QuoteArchive = (*ParquetArchive)(nil)

// ParquetArchive implements QuoteArchive using Parquet files on disk, one
// file per instrument code per day:
//
//	<DataDir>/quotes/<CODE>/<YYYY-MM-DD>.parquet
type ParquetArchive struct {
	DataDir string
}

// NewParquetArchive creates an archive rooted at dataDir.
func NewParquetArchive(dataDir string) *ParquetArchive {
	return &ParquetArchive{DataDir: dataDir}
}

// quoteRow is the Parquet schema for archived quotes.
type quoteRow struct {
	Code          string `parquet:"code"`
	CorrelationID string `parquet:"correlation_id"`
	Price         int64  `parquet:"price"`
	Volume        int64  `parquet:"volume"`
	ObservedAt    int64  `parquet:"observed_at,timestamp(millisecond)"` // Unix ms
}

func (a *ParquetArchive) quotePath(code string, day time.Time) string {
	return filepath.Join(a.DataDir, "quotes", code, day.Format("2006-01-02")+".parquet")
}

// AppendQuotes merges the given quotes into the per-code per-day files.
// Records are deduplicated by correlation id, preferring incoming rows.
func (a *ParquetArchive) AppendQuotes(_ context.Context, quotes []QuoteRecord) error {
	if len(quotes) == 0 {
		return nil
	}

	type key struct {
		code string
		date string
	}
	groups := make(map[key][]quoteRow)
	for _, q := range quotes {
		k := key{code: q.Code, date: q.ObservedAt.UTC().Format("2006-01-02")}
		groups[k] = append(groups[k], quoteRow{
			Code:          q.Code,
			CorrelationID: q.CorrelationID,
			Price:         q.Price,
			Volume:        q.Volume,
			ObservedAt:    q.ObservedAt.UnixMilli(),
		})
	}

	for k, rows := range groups {
		day, _ := time.Parse("2006-01-02", k.date)
		path := a.quotePath(k.code, day)

		existing, _ := readQuoteFile(path)
		merged := mergeQuoteRows(existing, rows)

		if err := writeQuoteFile(path, merged); err != nil {
			return fmt.Errorf("writing quotes for %s/%s: %w", k.code, k.date, err)
		}
	}
	return nil
}

// ReadQuotes returns archived quotes for a code on the given day, oldest
// first. A missing file yields no quotes, not an error.
func (a *ParquetArchive) ReadQuotes(_ context.Context, code string, day time.Time) ([]QuoteRecord, error) {
	rows, err := readQuoteFile(a.quotePath(code, day))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	records := make([]QuoteRecord, 0, len(rows))
	for _, r := range rows {
		records = append(records, QuoteRecord{
			Code:          r.Code,
			CorrelationID: r.CorrelationID,
			Price:         r.Price,
			Volume:        r.Volume,
			ObservedAt:    time.UnixMilli(r.ObservedAt).UTC(),
		})
	}
	return records, nil
}

func writeQuoteFile(path string, rows []quoteRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return parquet.WriteFile(path, rows)
}

func readQuoteFile(path string) ([]quoteRow, error) {
	return parquet.ReadFile[quoteRow](path)
}

// mergeQuoteRows deduplicates by correlation id, preferring incoming rows.
// Results are sorted by observation time.
func mergeQuoteRows(existing, incoming []quoteRow) []quoteRow {
	seen := make(map[string]quoteRow, len(existing)+len(incoming))
	for _, r := range existing {
		seen[r.CorrelationID] = r
	}
	for _, r := range incoming {
		seen[r.CorrelationID] = r
	}

	merged := make([]quoteRow, 0, len(seen))
	for _, r := range seen {
		merged = append(merged, r)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].ObservedAt < merged[j].ObservedAt
	})
	return merged
}
