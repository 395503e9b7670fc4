package notify

import (
	"context"
	"errors"
)

// Disabled is the notifier used when WhatsApp is turned off by config.
// Campaigns still run and log every attempt as failed.
type Disabled struct{}

func (Disabled) SendText(ctx context.Context, merchantID, phone, text string) error {
	return errors.New("whatsapp channel is disabled")
}
