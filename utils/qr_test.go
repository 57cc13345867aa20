package utils

import (
	"bytes"
	"testing"
)

func TestReviewURLEscapesPlaceID(t *testing.T) {
	got := ReviewURL("ChIJabc 123&x=y")
	want := "https://search.google.com/local/writereview?placeid=ChIJabc+123%26x%3Dy"
	if got != want {
		t.Fatalf("ReviewURL = %q, want %q", got, want)
	}
}

func TestEncodeReviewQRProducesPNG(t *testing.T) {
	png, err := EncodeReviewQR("ChIJN1t_tDeuEmsRUsoyG83frY4", 256)
	if err != nil {
		t.Fatalf("EncodeReviewQR error: %v", err)
	}
	if !bytes.HasPrefix(png, []byte("\x89PNG")) {
		t.Fatalf("expected PNG output, got %x...", png[:8])
	}
}

func TestQRFilename(t *testing.T) {
	cases := map[string]string{
		"Kawiarnia Pod Różą": "kawiarnia-pod-roza.png",
		"Cafe  Central!":     "cafe-central.png",
		"":                   "qr-code.png",
		"   ":                "qr-code.png",
	}
	for name, want := range cases {
		if got := QRFilename(name); got != want {
			t.Errorf("QRFilename(%q) = %q, want %q", name, got, want)
		}
	}
}
