// Package storage provides blob stores for transaction receipts.
package storage

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	financeapp "github.com/jneralrex/stratos-backend/internal/application/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/shared"
)

// ReceiptPrefix is the key prefix every receipt is stored under
const ReceiptPrefix = "receipts/"

// DefaultMaxReceiptSize is used when no size limit is configured
const DefaultMaxReceiptSize int64 = 5 << 20

// allowedReceiptTypes maps accepted content types to the extension used in
// the storage key
var allowedReceiptTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// prepareReceipt validates an upload and returns its storage key and
// normalized content type
func prepareReceipt(file financeapp.ReceiptUpload, maxSize int64) (key, contentType string, err error) {
	if len(file.Data) == 0 {
		return "", "", shared.NewValidationError("Receipt file is empty")
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxReceiptSize
	}
	if int64(len(file.Data)) > maxSize {
		return "", "", shared.NewValidationError(fmt.Sprintf("Receipt exceeds the %d byte limit", maxSize))
	}

	contentType = normalizeContentType(file.ContentType)
	if _, ok := allowedReceiptTypes[contentType]; !ok {
		contentType = normalizeContentType(http.DetectContentType(file.Data))
	}
	defaultExt, ok := allowedReceiptTypes[contentType]
	if !ok {
		return "", "", shared.NewValidationError("Receipt must be a JPEG, PNG, WebP or PDF file")
	}

	ext := strings.ToLower(path.Ext(file.Filename))
	if ext == "" || len(ext) > 6 {
		ext = defaultExt
	}
	return ReceiptPrefix + uuid.NewString() + ext, contentType, nil
}

func normalizeContentType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
