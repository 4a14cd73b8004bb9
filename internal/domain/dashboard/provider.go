package dashboard

import "context"

// SummaryProvider defines the interface for the upstream invoice and stock summaries
type SummaryProvider interface {
	// InvoiceSummary returns the all-time invoice totals
	InvoiceSummary(ctx context.Context) (InvoiceSummary, error)

	// StockSummary returns stock totals and daily records bounded by window
	StockSummary(ctx context.Context, window TimeWindow) (StockSummary, error)
}

// SnapshotArchive stores serialized snapshots
type SnapshotArchive interface {
	// Put stores data under key
	Put(ctx context.Context, key string, data []byte) error

	// Get returns the data stored under key
	Get(ctx context.Context, key string) ([]byte, error)
}
