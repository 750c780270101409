package household

import (
	"context"
	"fmt"

	"github.com/skip2/go-qrcode"
)

const (
	DefaultBadgeSize = 256
	maxBadgeSize     = 1024
)

// Badge renders the person's check-in QR code as PNG. The code carries the
// bare person id, which is what the desk scanner posts to the check-in API.
func (s *Service) Badge(ctx context.Context, householdID, personID string, size int) ([]byte, error) {
	p, err := s.Person(ctx, householdID, personID)
	if err != nil {
		return nil, err
	}
	if size <= 0 || size > maxBadgeSize {
		size = DefaultBadgeSize
	}
	png, err := qrcode.Encode(p.ID, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr badge: %w", err)
	}
	return png, nil
}
