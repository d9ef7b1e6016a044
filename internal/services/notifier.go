package services

import "context"

// CodeSender delivers one-time verification codes. Implementations must not
// block the caller on delivery.
type CodeSender interface {
	SendVerificationCode(ctx context.Context, email, code string) error
}

// StatusNotifier tells a client that their order moved to a new status.
type StatusNotifier interface {
	NotifyOrderStatus(ctx context.Context, orderID, status string) error
}

// Throttle limits how often a key may perform an action.
type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
}
