// Package terminal fronts the card payment terminal.
package terminal

import (
	"context"

	"github.com/yonetake/cafe-pos/internal/service"
)

// AutoApprove is the development terminal: every authorization is
// approved immediately. The reference doubles as the terminal-side
// transaction id, so repeated calls with one reference report the
// same authorization.
type AutoApprove struct{}

func (AutoApprove) Authorize(ctx context.Context, amountMinor int64, reference string) (service.Authorization, error) {
	return service.Authorization{Status: service.AuthApproved, TenderID: reference}, nil
}

var _ service.TenderAuthorizer = AutoApprove{}
