package ctxkeys

import (
	"context"

	"github.com/templui/goalcoach/internal/config"
	"github.com/templui/goalcoach/internal/model"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	UserKey    contextKey = "user"
	ProfileKey contextKey = "profile"
	ConfigKey  contextKey = "config"
	BearerKey  contextKey = "bearer"
)

func User(ctx context.Context) *model.User {
	user, _ := ctx.Value(UserKey).(*model.User)
	return user
}

func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func Profile(ctx context.Context) *model.Profile {
	profile, _ := ctx.Value(ProfileKey).(*model.Profile)
	return profile
}

func WithProfile(ctx context.Context, profile *model.Profile) context.Context {
	return context.WithValue(ctx, ProfileKey, profile)
}

func Config(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(ConfigKey).(*config.Config)
	return cfg
}

func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, ConfigKey, cfg)
}

// Bearer reports whether the request authenticated with an Authorization
// header rather than the session cookie.
func Bearer(ctx context.Context) bool {
	bearer, _ := ctx.Value(BearerKey).(bool)
	return bearer
}

func WithBearer(ctx context.Context) context.Context {
	return context.WithValue(ctx, BearerKey, true)
}
