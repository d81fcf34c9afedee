package payment

import (
	"github.com/skip2/go-qrcode"
)

// QRGenerator renders payment links as scannable PNG codes.
type QRGenerator struct {
	table *LinkTable
}

func NewQRGenerator(table *LinkTable) *QRGenerator {
	return &QRGenerator{table: table}
}

// GenerateLinkQR encodes the payment link for the amount's tier as a
// 256x256 PNG.
func (q *QRGenerator) GenerateLinkQR(amount int) ([]byte, error) {
	return qrcode.Encode(q.table.ResolveLink(amount), qrcode.Medium, 256)
}
