package jails

import (
	"context"
	"fmt"
	"strings"

	"github.com/fifo-tools/jadm/pkg/types"
	"github.com/sirupsen/logrus"
)

// LoopbackScript brings up lo0 inside a jail that has its own vnet stack.
const LoopbackScript = "/sbin/ifconfig lo0 127.0.0.1 up; "

// HostName is the name the host side of a jail's epair is given once the
// jail runs. It is scoped by the OS jail id, so the current id must be
// resolved before renaming or destroying it.
func HostName(id uint64, iface string) string {
	return fmt.Sprintf("j%d:%s", id, iface)
}

// NewIFace derives the interface description of nic once its epair is
// known. The jail side, <epair>b, is renamed and configured by the
// returned start script from inside the jail.
func NewIFace(epair string, nic types.NIC) types.IFace {
	jailSide := epair + "b"

	var script strings.Builder
	fmt.Fprintf(&script, "/sbin/ifconfig %s name %s; ", jailSide, nic.Interface)
	if nic.MAC != "" {
		fmt.Fprintf(&script, "/sbin/ifconfig %s ether %s; ", nic.Interface, nic.MAC)
	}
	switch {
	case nic.IP == "dhcp":
		fmt.Fprintf(&script, "/sbin/dhclient %s; ", nic.Interface)
	case nic.IP != "":
		fmt.Fprintf(&script, "/sbin/ifconfig %s inet %s", nic.Interface, nic.IP)
		if nic.Netmask != "" {
			fmt.Fprintf(&script, " netmask %s", nic.Netmask)
		}
		script.WriteString(" up; ")
	default:
		fmt.Fprintf(&script, "/sbin/ifconfig %s up; ", nic.Interface)
	}
	if nic.Primary && nic.Gateway != "" {
		fmt.Fprintf(&script, "/sbin/route add default %s; ", nic.Gateway)
	}

	return types.IFace{
		Epair:       epair,
		Iface:       nic.Interface,
		StartScript: script.String(),
	}
}

// createEpair allocates a new epair and returns its base name. ifconfig
// prints the host side, e.g. "epair3a".
func (c *Controller) createEpair(ctx context.Context) (string, error) {
	out, err := c.runner.Run(ctx, IfconfigBin, "epair", "create")
	if err != nil {
		return "", fmt.Errorf("failed to create epair: %w", err)
	}
	hostSide := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	if !strings.HasPrefix(hostSide, "epair") || !strings.HasSuffix(hostSide, "a") {
		return "", fmt.Errorf("unexpected epair name %q", hostSide)
	}
	return strings.TrimSuffix(hostSide, "a"), nil
}

// attachHostSide adds the host side of an epair to the bridge of its NIC
// tag, if one is configured, and brings it up.
func (c *Controller) attachHostSide(ctx context.Context, log *logrus.Entry, epair string, nic types.NIC) error {
	hostSide := epair + "a"
	if bridge, ok := c.settings.NicTags[nic.NicTag]; ok && nic.NicTag != "" {
		log.WithField("args", bridge+" addm "+hostSide).Debug("attaching epair to bridge")
		if _, err := c.runner.Run(ctx, IfconfigBin, bridge, "addm", hostSide); err != nil {
			return fmt.Errorf("failed to attach %s to %s: %w", hostSide, bridge, err)
		}
	} else if nic.NicTag != "" {
		log.Warnf("no bridge configured for nic tag %s", nic.NicTag)
	}
	if _, err := c.runner.Run(ctx, IfconfigBin, hostSide, "up"); err != nil {
		return fmt.Errorf("failed to bring up %s: %w", hostSide, err)
	}
	return nil
}

func (c *Controller) renameInterface(ctx context.Context, from, to string) error {
	_, err := c.runner.Run(ctx, IfconfigBin, from, "name", to)
	return err
}

func (c *Controller) destroyInterface(ctx context.Context, name string) error {
	_, err := c.runner.Run(ctx, IfconfigBin, name, "destroy")
	return err
}
