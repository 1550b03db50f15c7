package jails

import (
	"context"
	"fmt"
	"strings"

	"github.com/fifo-tools/jadm/pkg/types"
	"github.com/sirupsen/logrus"
)

// RctlSubject is the rctl(8) subject naming a jail.
func RctlSubject(uuid string) string {
	return "jail:" + uuid
}

// RctlLimits encodes the resource caps of config as rctl -a arguments.
// It returns nil when the jail has no caps at all.
func RctlLimits(config types.JailConfig) []string {
	subject := RctlSubject(config.UUID)

	var rules []string
	if config.MaxPhysicalMemory > 0 {
		rules = append(rules, fmt.Sprintf("%s:memoryuse:deny=%dM", subject, config.MaxPhysicalMemory))
	}
	if config.CPUCap > 0 {
		rules = append(rules, fmt.Sprintf("%s:pcpu:deny=%d", subject, config.CPUCap))
	}
	if len(rules) == 0 {
		return nil
	}
	return append([]string{"-a"}, rules...)
}

func (c *Controller) setRctl(ctx context.Context, j *Jail) (bool, error) {
	log := jailLog.WithField("vm", j.UUID())
	limits := RctlLimits(j.Config)
	if limits == nil {
		log.Debug("no resource limits configured")
		return false, nil
	}

	log.WithField("limits", strings.Join(limits, " ")).Debug("Setting jail limits")
	if _, err := c.runner.Run(ctx, RctlBin, limits...); err != nil {
		log.WithField("critical", true).Error("failed to set resource limits")
		return false, fmt.Errorf("could not set jail limits: %w", err)
	}
	return true, nil
}

func (c *Controller) removeRctl(ctx context.Context, j *Jail) error {
	args := []string{"-r", RctlSubject(j.UUID())}
	jailLog.WithFields(logrus.Fields{
		"vm":   j.UUID(),
		"args": strings.Join(args, " "),
	}).Debug("removing rctl limits")
	if _, err := c.runner.Run(ctx, RctlBin, args...); err != nil {
		return fmt.Errorf("could not remove resource limits: %w", err)
	}
	return nil
}
