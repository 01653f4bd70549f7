package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"k8s.io/klog"

	"github.com/squeed/tgcomments/pkg/comments"
	"github.com/squeed/tgcomments/pkg/config"
	"github.com/squeed/tgcomments/pkg/fetch"
	"github.com/squeed/tgcomments/pkg/scrape"
)

func main() {
	err := exec()
	klog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func exec() error {
	var (
		configPath string
		envPath    string
		id         string
		limit      int
		output     string
		timeout    time.Duration
		userAgent  string
	)
	klog.InitFlags(nil)
	flag.StringVar(&configPath, "config", "", "path to YAML config file (host, channel, staticProxy)")
	flag.StringVar(&envPath, "env-file", "", "path to a .env file with HOST, CHANNEL, STATIC_PROXY")
	flag.StringVar(&id, "id", "", "channel post id")
	flag.IntVar(&limit, "limit", scrape.DefaultLimit, "number of discussion messages to inspect")
	flag.StringVar(&output, "output", "yaml", "output format: yaml or json")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "overall timeout")
	flag.StringVar(&userAgent, "user-agent", "", "User-Agent header for upstream requests")
	flag.Parse()

	if id == "" {
		return errors.New("--id is required")
	}
	if output != "yaml" && output != "json" {
		return errors.Errorf("unknown output format %q", output)
	}

	env, err := buildEnv(configPath, envPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s := comments.New(env, fetch.New(fetch.WithUserAgent(userAgent)))
	res := s.GetComments(ctx, comments.Request{ID: id, Limit: limit})
	klog.Infof("found %d images and %d videos for post %s", len(res.Images), len(res.Videos), id)

	return write(res, output)
}

// buildEnv layers the configuration sources: request context, .env file,
// config file, then the process environment.
func buildEnv(configPath, envPath string) (config.Env, error) {
	chain := config.Chain{config.ContextEnv{}}

	if envPath != "" {
		dotenv, err := config.ReadDotEnv(envPath)
		if err != nil {
			return nil, err
		}
		chain = append(chain, dotenv)
	}

	if configPath != "" {
		conf, err := config.ReadConfig(configPath)
		if err != nil {
			return nil, err
		}
		chain = append(chain, conf)
	}

	return append(chain, config.ProcessEnv{}), nil
}

func write(res scrape.Media, output string) error {
	var (
		b   []byte
		err error
	)
	if output == "json" {
		b, err = json.MarshalIndent(res, "", "  ")
		b = append(b, '\n')
	} else {
		b, err = yaml.Marshal(res)
	}
	if err != nil {
		return errors.Wrap(err, "failed to encode result")
	}

	_, err = os.Stdout.Write(b)
	return err
}
