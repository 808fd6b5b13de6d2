package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mealhub-dev/mealhub/internal/app"
	"github.com/mealhub-dev/mealhub/internal/cli/config"
	"github.com/mealhub-dev/mealhub/internal/cli/navigate"
	"github.com/mealhub-dev/mealhub/internal/guard"
	"github.com/mealhub-dev/mealhub/internal/identity"
	"github.com/mealhub-dev/mealhub/internal/logger"
	"github.com/mealhub-dev/mealhub/internal/session"
)

// settleTimeout bounds how long a command waits for the auth pipeline to
// leave its loading window.
const settleTimeout = 30 * time.Second

// cliSession is one command invocation's view of the auth pipeline.
type cliSession struct {
	cfg *config.Config
	app *app.App
	nav *navigate.Navigator
	out io.Writer
}

// providerFactory builds the identity provider for a deployment. Tests swap
// it for a fake.
type providerFactory func(cfg *config.Config, store identity.TokenStore) session.IdentityProvider

func defaultProvider(cfg *config.Config, store identity.TokenStore) session.IdentityProvider {
	return identity.New(cfg.IdentityURL, cfg.IdentityAPIKey, cfg.Host(), store)
}

// newSession loads the project config, assembles the pipeline and starts
// session restore. Callers must Close the returned session.
func newSession(out io.Writer, store identity.TokenStore, factory providerFactory) (*cliSession, error) {
	cfg, err := config.LoadFromCurrentDir()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w\nRun 'mealhub init' to create a configuration file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if factory == nil {
		factory = defaultProvider
	}

	nav := navigate.New(out)
	a := app.New(factory(cfg, store), cfg.APIURL, nav, logger.GetLogger())
	a.Start(context.Background())

	return &cliSession{cfg: cfg, app: a, nav: nav, out: out}, nil
}

func (s *cliSession) Close() {
	s.app.Close()
}

// requireAllowed waits out the Pending window, showing the loading indicator,
// then runs the guard chain for the attempted surface. It returns the settled
// snapshot and whether the caller may proceed; on deny the guard has already
// issued its redirect.
func (s *cliSession) requireAllowed(ctx context.Context, attempted string, guards ...guard.Guard) (guard.AuthSnapshot, bool, error) {
	waitCtx, cancel := context.WithTimeout(ctx, settleTimeout)
	defer cancel()

	if s.app.Watcher.Snapshot().Unknown() {
		fmt.Fprintln(s.out, "Checking session...")
	}
	snap, err := s.app.Watcher.WaitSettled(waitCtx)
	if err != nil {
		return snap, false, fmt.Errorf("timed out waiting for session state: %w", err)
	}

	state, g := guard.Chain(snap, guards...)
	if state == guard.Denied {
		g.Deny(s.nav, attempted)
		return snap, false, nil
	}
	return snap, true, nil
}
