// utils/qr.go
package utils

import (
	"net/url"

	"github.com/gosimple/slug"
	"github.com/skip2/go-qrcode"
)

const reviewURLBase = "https://search.google.com/local/writereview?placeid="

// ReviewURL builds the public Google review deep link for a place.
func ReviewURL(placeID string) string {
	return reviewURLBase + url.QueryEscape(placeID)
}

// EncodeReviewQR renders the QR PNG for a place's review link.
// size is the square pixel size; values <= 0 fall back to 512.
func EncodeReviewQR(placeID string, size int) ([]byte, error) {
	if size <= 0 {
		size = 512
	}
	return qrcode.Encode(ReviewURL(placeID), qrcode.Medium, size)
}

// QRFilename builds a download filename from a business name.
func QRFilename(name string) string {
	s := slug.Make(name)
	if s == "" {
		s = "qr-code"
	}
	return s + ".png"
}
