package finance

import (
	"context"

	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// ReceiptUpload is a receipt file received from a client
type ReceiptUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// BlobStore persists receipt files and hands back where they live
type BlobStore interface {
	// Store saves the file and returns its public URL and storage identifier
	Store(ctx context.Context, file ReceiptUpload) (finance.Receipt, error)

	// Delete removes a stored file. It returns false if nothing was stored
	// under identifier.
	Delete(ctx context.Context, identifier string) (bool, error)
}

// BusinessMetrics records ledger activity for dashboards
type BusinessMetrics interface {
	RecordTransaction(ctx context.Context, status string, amount decimal.Decimal)
	RecordCommission(ctx context.Context, commissionType string, amount decimal.Decimal)
}
