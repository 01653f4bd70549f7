package config

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Env is a key/value configuration source. The context is passed through
// untouched so request-scoped sources can read from it.
type Env interface {
	Lookup(ctx context.Context, key string) (string, bool)
}

type MapEnv map[string]string

func (m MapEnv) Lookup(_ context.Context, key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// ProcessEnv reads the process environment. Prefix, if set, is prepended to
// every key.
type ProcessEnv struct {
	Prefix string
}

func (p ProcessEnv) Lookup(_ context.Context, key string) (string, bool) {
	return os.LookupEnv(p.Prefix + key)
}

// Chain consults each source in order and returns the first hit.
type Chain []Env

func (c Chain) Lookup(ctx context.Context, key string) (string, bool) {
	for _, e := range c {
		if e == nil {
			continue
		}
		if v, ok := e.Lookup(ctx, key); ok {
			return v, true
		}
	}
	return "", false
}

type envKey struct{}

// NewContext returns a copy of ctx carrying env, for use with ContextEnv.
func NewContext(ctx context.Context, env Env) context.Context {
	return context.WithValue(ctx, envKey{}, env)
}

// ContextEnv looks keys up in the Env attached to the request context.
type ContextEnv struct{}

func (ContextEnv) Lookup(ctx context.Context, key string) (string, bool) {
	if ctx == nil {
		return "", false
	}
	env, ok := ctx.Value(envKey{}).(Env)
	if !ok || env == nil {
		return "", false
	}
	return env.Lookup(ctx, key)
}

// ReadDotEnv loads a .env file without touching the process environment.
func ReadDotEnv(path string) (MapEnv, error) {
	m, err := godotenv.Read(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read env file %s", path)
	}
	return MapEnv(m), nil
}
