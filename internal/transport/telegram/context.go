package telegram

import (
	"context"

	userDomain "github.com/reshetovitsme/lecture-telegram-bot/internal/modules/user/domain"
)

type userKey struct{}

func withUser(ctx context.Context, user *userDomain.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// userFrom returns the sender resolved by Middleware, or nil
func userFrom(ctx context.Context) *userDomain.User {
	user, _ := ctx.Value(userKey{}).(*userDomain.User)
	return user
}

func actorFrom(ctx context.Context) userDomain.Actor {
	return userDomain.ActorFor(userFrom(ctx))
}
