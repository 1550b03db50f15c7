// Package jails drives the host jail facility: it inspects running jails
// and translates a jail configuration into the start and stop sequences of
// jail(8), rctl(8) and ifconfig(8).
package jails

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fifo-tools/jadm/pkg/brand"
	"github.com/fifo-tools/jadm/pkg/tools"
	"github.com/fifo-tools/jadm/pkg/types"
	"github.com/sirupsen/logrus"
)

// Host binaries used by the controller.
const (
	JailBin     = "/usr/sbin/jail"
	JlsBin      = "/usr/sbin/jls"
	RctlBin     = "/usr/bin/rctl"
	IfconfigBin = "/sbin/ifconfig"
)

var jailLog = logrus.WithField("source", "jails")

// Jail is a jail as seen by the lifecycle controller: its index entry, its
// configuration and what the OS reports about it.
type Jail struct {
	// Idx is the persisted index entry.
	Idx types.IndexEntry

	// Config is the jail configuration.
	Config types.JailConfig

	// Outer is the OS record of the jail itself, nil when not running.
	Outer *types.JailOSEntry

	// Inner is the OS record of the jail nested inside Outer, if any.
	Inner *types.JailOSEntry
}

// UUID of the jail.
func (j *Jail) UUID() string {
	return j.Idx.UUID
}

// InnerName is the OS name of the jail nested in the jail called uuid.
func InnerName(uuid string) string {
	return uuid + "." + uuid
}

// State is the observed lifecycle state. A running OS jail overrides
// whatever label was persisted.
func (j *Jail) State() string {
	if j.Outer != nil {
		return types.StateRunning
	}
	return j.Idx.State
}

// ID returns the OS jail id, 0 when the jail is not running.
func (j *Jail) ID() uint64 {
	if j.Outer == nil {
		return 0
	}
	return j.Outer.ID
}

func (j *Jail) target() brand.Target {
	return brand.NewTarget(j.Idx.UUID, j.Idx.Root, j.Config)
}

// Controller executes jail start and stop sequences.
type Controller struct {
	settings types.Settings
	runner   tools.Runner
	brands   *brand.Registry
}

// NewController returns a controller running host commands through runner
// and resolving brands in brands.
func NewController(settings types.Settings, runner tools.Runner, brands *brand.Registry) *Controller {
	return &Controller{
		settings: settings,
		runner:   runner,
		brands:   brands,
	}
}

// Start brings the jail up and returns its OS jail id.
//
// Resource limits are applied first, then the brand is initialised and one
// epair per NIC is allocated, and finally the jail is created. Each of
// those steps registers a compensating action; if a later step fails the
// actions run in reverse order before the error is returned. Renaming the
// host side of the epairs after creation is best effort.
func (c *Controller) Start(ctx context.Context, j *Jail) (id uint64, err error) {
	log := jailLog.WithField("vm", j.UUID())
	if j.Outer != nil {
		return j.Outer.ID, fmt.Errorf("jail %s is already running with id %d", j.UUID(), j.Outer.ID)
	}

	rb := newRollback(log)
	defer func() {
		if err != nil {
			// undo even when ctx was cancelled mid-step
			err = rb.run(context.WithoutCancel(ctx), err)
		}
	}()

	limited, err := c.setRctl(ctx, j)
	if err != nil {
		return 0, err
	}
	if limited {
		rb.add("remove resource limits", func(ctx context.Context) error {
			return c.removeRctl(ctx, j)
		})
	}

	b, err := c.brands.Lookup(j.Config.Brand)
	if err != nil {
		return 0, err
	}
	target := j.target()
	if err = b.Init(ctx, target); err != nil {
		return 0, fmt.Errorf("brand init failed: %w", err)
	}
	rb.add("brand halt", func(ctx context.Context) error {
		return b.Halt(ctx, target)
	})

	ifs := make([]types.IFace, 0, len(j.Config.Nics))
	for _, nic := range j.Config.Nics {
		var epair string
		epair, err = c.createEpair(ctx)
		if err != nil {
			return 0, err
		}
		hostSide := epair + "a"
		rb.add("destroy "+hostSide, func(ctx context.Context) error {
			return c.destroyInterface(ctx, hostSide)
		})
		if err = c.attachHostSide(ctx, log, epair, nic); err != nil {
			return 0, err
		}
		ifs = append(ifs, NewIFace(epair, nic))
	}

	boot, err := b.Boot(target)
	if err != nil {
		return 0, fmt.Errorf("brand boot failed: %w", err)
	}
	args := c.CreateArgs(j, ifs, boot)
	log.WithField("args", strings.Join(args, " ")).Debug("Start jail")

	id, err = c.createJail(ctx, j, args)
	if err != nil {
		return 0, err
	}

	for _, iface := range ifs {
		hostSide := iface.Epair + "a"
		name := HostName(id, iface.Iface)
		log.WithField("args", hostSide+" name "+name).Debug("renaming epair")
		if err := c.renameInterface(ctx, hostSide, name); err != nil {
			log.WithError(err).WithField("critical", true).Error("failed to rename interface")
		}
	}
	return id, nil
}

// CreateArgs assembles the jail(8) arguments creating j with the given
// interfaces and brand boot fragment.
func (c *Controller) CreateArgs(j *Jail, ifs []types.IFace, boot string) []string {
	uuid := j.UUID()
	args := []string{
		"-i",
		"-c",
		"persist",
		"name=" + uuid,
		"path=" + brand.RootPath(j.Idx.Root),
		"host.hostuuid=" + uuid,
		"host.hostname=" + j.Config.Hostname,
		"devfs_ruleset=" + strconv.Itoa(c.settings.DevfsRuleset),
		"securelevel=2",
		"sysvmsg=new",
		"sysvsem=new",
		"sysvshm=new",
		// for nested jails
		"allow.raw_sockets",
		"children.max=1",
		"vnet=new",
	}

	var execStart strings.Builder
	for _, iface := range ifs {
		args = append(args, "vnet.interface="+iface.Epair+"b")
		execStart.WriteString(iface.StartScript)
	}
	if len(ifs) > 0 {
		execStart.WriteString(LoopbackScript)
	}
	execStart.WriteString(boot)

	return append(args, "exec.start="+execStart.String())
}

// createJail runs jail(8) and returns the id it prints. jail does not
// honour -q, so everything after the first line may be garbage and is
// ignored.
func (c *Controller) createJail(ctx context.Context, j *Jail, args []string) (uint64, error) {
	out, err := c.runner.Run(ctx, JailBin, args...)
	if err != nil {
		jailLog.WithField("vm", j.UUID()).WithField("critical", true).Error("Failed to start jail")
		return 0, fmt.Errorf("could not start jail: %w", err)
	}

	first := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	id, err := strconv.ParseUint(first, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("could not parse jail id from %q: %w", first, err)
	}
	return id, nil
}

// Stop halts the brand, removes the jail and releases its resource limits
// and interfaces. Releasing limits and interfaces is best effort; without
// a known OS id the interfaces are left behind and only logged.
func (c *Controller) Stop(ctx context.Context, j *Jail) error {
	log := jailLog.WithField("vm", j.UUID())
	log.Debug("Deleting jail")

	b, err := c.brands.Lookup(j.Config.Brand)
	if err != nil {
		return err
	}
	if err := b.Halt(ctx, j.target()); err != nil {
		return fmt.Errorf("brand halt failed: %w", err)
	}

	if _, err := c.runner.Run(ctx, JailBin, "-r", j.UUID()); err != nil {
		log.WithField("critical", true).Error("Failed to stop jail")
		return fmt.Errorf("could not stop jail: %w", err)
	}

	if err := c.removeRctl(ctx, j); err != nil {
		log.WithError(err).Warn("failed to remove resource limits")
	}

	if j.Outer == nil {
		log.WithField("critical", true).Error("Failed to get outer jail id to delete interfaces")
		return nil
	}

	for _, nic := range j.Config.Nics {
		name := HostName(j.Outer.ID, nic.Interface)
		log.WithField("args", name+" destroy").Debug("destroying epair")
		if err := c.destroyInterface(ctx, name); err != nil {
			log.WithError(err).WithField("critical", true).Error("failed to destroy interface")
		}
	}
	return nil
}
