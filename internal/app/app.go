// Package app wires configuration, device access, presentation and
// observability into the mmetest executable: it opens the accelerator (or
// its software model), drives random test vectors through it and checks
// every result against a software reference.
package app

import (
	"errors"
	"flag"
	"io"

	"github.com/dramco-iot/mme1536/internal/config"
	"github.com/dramco-iot/mme1536/internal/mme"
)

// Version is the application version, overridable at build time with
// -ldflags "-X .../internal/app.Version=...".
var Version = "dev"

// Application represents one mmetest invocation.
type Application struct {
	Config    config.AppConfig
	ErrWriter io.Writer

	// bus, when set, overrides device discovery. Used by tests to run the
	// application against an injected bus.
	bus mme.Bus
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithBus runs the application against the given bus instead of opening
// the configured device.
func WithBus(b mme.Bus) AppOption {
	return func(a *Application) { a.bus = b }
}

// New creates an Application by parsing command-line arguments. args is
// os.Args-shaped: the leading program name is ignored.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}

	var cmdArgs []string
	if len(args) > 0 {
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}

	app.Config = cfg
	return app, nil
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
