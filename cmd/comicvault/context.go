package main

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/five82/comicvault/internal/app"
)

type commandContext struct {
	configFlag *string
	apiFlag    *string

	envOnce sync.Once
	env     *app.Env
	envErr  error
}

func newCommandContext(configFlag, apiFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		apiFlag:    apiFlag,
	}
}

func (c *commandContext) ensureEnv() (*app.Env, error) {
	c.envOnce.Do(func() {
		opts := app.Options{}
		if c.configFlag != nil {
			opts.ConfigPath = strings.TrimSpace(*c.configFlag)
		}
		if c.apiFlag != nil {
			opts.APIURL = strings.TrimSpace(*c.apiFlag)
		}
		c.env, c.envErr = app.Setup(opts)
	})
	return c.env, c.envErr
}

// requestContext bounds a single backend call by the configured timeout.
func requestContext(parent context.Context, env *app.Env) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if d := env.Config.RequestTimeout; d > 0 {
		return context.WithTimeout(parent, d)
	}
	return context.WithCancel(parent)
}

func isTerminal(v any) bool {
	file, ok := v.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shouldColorize(writer io.Writer) bool {
	return isTerminal(writer)
}
