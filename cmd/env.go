package cmd

import (
	"context"
	"fmt"

	"github.com/fifo-tools/jadm/pkg/brand"
	"github.com/fifo-tools/jadm/pkg/config"
	"github.com/fifo-tools/jadm/pkg/jails"
	"github.com/fifo-tools/jadm/pkg/jdb"
	"github.com/fifo-tools/jadm/pkg/tools"
	"github.com/fifo-tools/jadm/pkg/types"
	"github.com/fifo-tools/jadm/pkg/zfs"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cmdLog = logrus.WithField("source", "cmd")

// env is what every command needs to talk to the host: settings, the
// command runner and the jail inspector.
type env struct {
	settings  types.Settings
	runner    tools.Runner
	inspector jails.Inspector
	brands    *brand.Registry
}

// newEnv loads the settings and wires the host facilities. With the
// hidden --simulate flag no host command is actually run and the stub
// inspector stands in for jls.
func newEnv(cmd *cobra.Command) (*env, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	e := &env{settings: settings}
	simulate, _ := cmd.Flags().GetBool("simulate")
	if simulate {
		cmdLog.Warn("simulation mode, no host command is run")
		e.runner = jails.NewSimulatedRunner()
		e.inspector = jails.StubInspector()
	} else {
		e.runner = tools.NewExecRunner()
		e.inspector = jails.NewOSInspector(e.runner)
	}

	if e.brands, err = brand.Load(settings.BrandRoot, e.runner); err != nil {
		return nil, fmt.Errorf("failed to load brands: %w", err)
	}
	return e, nil
}

// open opens the jail database holding the directory lock.
func (e *env) open(ctx context.Context) (*jdb.Database, error) {
	return jdb.Open(ctx, e.settings, e.inspector, jdb.WithLock())
}

func (e *env) controller() *jails.Controller {
	return jails.NewController(e.settings, e.runner, e.brands)
}

func (e *env) storage() *zfs.ZFS {
	return zfs.New(e.runner)
}
