package auth

import (
	"context"
	"errors"
)

var (
	ErrNoAuth        = errors.New("no auth found")
	ErrUserNotFound  = errors.New("user not found")
	ErrUnknownNonce  = errors.New("unknown nonce")
	ErrStaleNonce    = errors.New("stale nonce")
	ErrNonceReplay   = errors.New("nonce count replayed")
	ErrURIMismatch   = errors.New("digest uri not match request uri")
	ErrRealmMismatch = errors.New("realm not match")
	ErrBadResponse   = errors.New("digest response not match")
)

// UserQueryFunc returns the password of user ak.
type UserQueryFunc func(ctx context.Context, ak string) (string, bool, error)

func MapUserMatch(ud map[string]string) UserQueryFunc {
	return func(ctx context.Context, ak string) (string, bool, error) {
		usk, ok := ud[ak]
		if !ok {
			return "", false, nil
		}
		return usk, true, nil
	}
}
