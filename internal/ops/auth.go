package ops

import (
	"context"

	"github.com/hpungsan/chronobox/internal/session"
)

// StatusOutput describes the authentication session.
type StatusOutput struct {
	State    session.State `json:"state"`
	SignedIn bool          `json:"signed_in"`
}

// SignIn acquires an access token for the session.
func SignIn(ctx context.Context, sess *session.Session) (*StatusOutput, error) {
	if err := sess.SignIn(ctx); err != nil {
		return nil, err
	}
	return Status(sess), nil
}

// SignOut revokes the session token and clears the local cache.
func SignOut(ctx context.Context, sess *session.Session) (*StatusOutput, error) {
	if err := sess.SignOut(ctx); err != nil {
		return nil, err
	}
	return Status(sess), nil
}

// Status reports the session state and signed-in flag.
func Status(sess *session.Session) *StatusOutput {
	return &StatusOutput{
		State:    sess.State(),
		SignedIn: sess.IsSignedIn(),
	}
}
