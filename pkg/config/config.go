package config

import (
	"context"
	"io/ioutil"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

const (
	KeyHost        = "HOST"
	KeyChannel     = "CHANNEL"
	KeyStaticProxy = "STATIC_PROXY"

	DefaultHost        = "t.me"
	DefaultStaticProxy = "/static/"
)

// File is the on-disk YAML configuration. Unset fields are reported as
// missing, so other sources in a Chain can supply them.
type File struct {
	Host        *string `json:"host,omitempty"`
	Channel     *string `json:"channel,omitempty"`
	StaticProxy *string `json:"staticProxy,omitempty"`
}

func ReadConfig(path string) (*File, error) {
	cb, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	out := File{}
	err = yaml.Unmarshal(cb, &out)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}

	return &out, nil
}

func (f *File) Lookup(_ context.Context, key string) (string, bool) {
	if f == nil {
		return "", false
	}
	var v *string
	switch key {
	case KeyHost:
		v = f.Host
	case KeyChannel:
		v = f.Channel
	case KeyStaticProxy:
		v = f.StaticProxy
	}
	if v == nil {
		return "", false
	}
	return *v, true
}

// Settings are the resolved values the scraper runs with.
type Settings struct {
	Host        string
	Channel     string
	StaticProxy string
}

// Resolve reads the scraper settings from env. Defaults are applied only to
// keys that are unset; an explicitly empty value is kept as-is.
func Resolve(ctx context.Context, env Env) Settings {
	s := Settings{
		Host:        DefaultHost,
		StaticProxy: DefaultStaticProxy,
	}
	if env == nil {
		return s
	}

	if v, ok := env.Lookup(ctx, KeyHost); ok {
		s.Host = v
	}
	if v, ok := env.Lookup(ctx, KeyChannel); ok {
		s.Channel = v
	}
	if v, ok := env.Lookup(ctx, KeyStaticProxy); ok {
		s.StaticProxy = v
	}
	return s
}
