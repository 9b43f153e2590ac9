package services

import (
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/councilvote/internal/errors"
)

// PublicResultsPath is where the public dashboard is served
const PublicResultsPath = "/results"

// ShareService builds links and QR codes for the public dashboard
type ShareService struct {
	baseURL string
}

// NewShareService creates a new ShareService. baseURL is the externally
// reachable origin, for example http://192.168.1.20:8080.
func NewShareService(baseURL string) *ShareService {
	return &ShareService{baseURL: strings.TrimRight(baseURL, "/")}
}

// PublicURL returns the full public dashboard URL
func (s *ShareService) PublicURL() string {
	return s.baseURL + PublicResultsPath
}

// PublicQRCode returns a PNG QR code pointing at the public dashboard
func (s *ShareService) PublicQRCode(size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	if size > 1024 {
		return nil, errors.InvalidInputf("size %d is too large", size)
	}
	png, err := qrcode.Encode(s.PublicURL(), qrcode.Medium, size)
	if err != nil {
		return nil, errors.Internal(err)
	}
	return png, nil
}
