package report

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// QRPNG renders the report URL as a PNG QR code for the share sheet.
func QRPNG(reportID string) ([]byte, error) {
	png, err := qrcode.Encode(URL(reportID), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
