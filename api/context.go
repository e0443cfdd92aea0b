package api

import (
	"context"
)

// Identity is the caller identity extracted from a verified bearer token.
// Blog authorship is recorded as either the username or the email, so both
// travel together through the request context.
type Identity struct {
	Username string
	Email    string
}

// Name is the canonical identity string stored as a post's author: the
// username when present, the email otherwise.
func (id Identity) Name() string {
	if id.Username != "" {
		return id.Username
	}
	return id.Email
}

func (id Identity) Zero() bool {
	return id.Username == "" && id.Email == ""
}

type keyType string

const identityKey keyType = "identity"

// ctxWithIdentity attaches the caller identity to the context.
func ctxWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// identityFromCtx retrieves the caller identity, reporting whether one was
// attached. Optional-auth routes see ok == false for anonymous callers.
func identityFromCtx(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok && !identity.Zero()
}
