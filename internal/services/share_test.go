package services_test

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/abrezinsky/councilvote/internal/errors"
	"github.com/abrezinsky/councilvote/internal/services"
)

func TestShare_PublicURL(t *testing.T) {
	svc := services.NewShareService("http://192.168.1.20:8080/")
	if got := svc.PublicURL(); got != "http://192.168.1.20:8080/results" {
		t.Errorf("unexpected public URL %q", got)
	}
}

func TestShare_PublicQRCode(t *testing.T) {
	svc := services.NewShareService("http://192.168.1.20:8080")

	data, err := svc.PublicQRCode(0)
	if err != nil {
		t.Fatalf("PublicQRCode failed: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("expected a PNG, got %v", err)
	}
	if w := img.Bounds().Dx(); w != 256 {
		t.Errorf("expected default size 256, got %d", w)
	}

	_, err = svc.PublicQRCode(2048)
	expectKind(t, err, errors.ErrInvalidInput)
}
