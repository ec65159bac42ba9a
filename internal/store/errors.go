package store

import "errors"

var (
	// ErrNotFound wraps GORM's not found error for consistency
	ErrNotFound = errors.New("record not found")

	// ErrConflict is returned on unique-constraint collisions
	// (username, email, invite code).
	ErrConflict = errors.New("record already exists")

	// ErrAuthCodeConsumed is returned by ConsumeAuthCode when the code is
	// missing, expired, or was already consumed by a concurrent request
	// (0 rows updated). The cases are deliberately indistinguishable.
	ErrAuthCodeConsumed = errors.New("authorization code not consumable")

	// Invite consumption failure kinds, in check order.

	// ErrInviteNotFound indicates the code does not exist (or was revoked)
	ErrInviteNotFound = errors.New("invite code not found")

	// ErrInviteExpired indicates the code's expires_at has passed
	ErrInviteExpired = errors.New("invite code expired")

	// ErrInviteUsedUp indicates used_count reached max_uses
	ErrInviteUsedUp = errors.New("invite code has been fully used")
)
