// Package zfs provisions jail storage through the zfs(8) command.
package zfs

import (
	"context"
	"fmt"
	"strings"

	"github.com/fifo-tools/jadm/pkg/tools"
	"github.com/sirupsen/logrus"
)

// Bin is the zfs binary.
const Bin = "/sbin/zfs"

var zfsLog = logrus.WithField("source", "zfs")

// ZFS runs dataset operations through a Runner.
type ZFS struct {
	runner tools.Runner
}

func New(runner tools.Runner) *ZFS {
	return &ZFS{runner: runner}
}

func (z *ZFS) run(ctx context.Context, args ...string) (string, error) {
	zfsLog.WithField("args", strings.Join(args, " ")).Debug("zfs")
	out, err := z.runner.Run(ctx, Bin, args...)
	if err != nil {
		return "", fmt.Errorf("zfs %s failed: %w", args[0], err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Snapshot creates dataset@name and returns the snapshot id.
func (z *ZFS) Snapshot(ctx context.Context, dataset, name string) (string, error) {
	snapshot := dataset + "@" + name
	if _, err := z.run(ctx, "snapshot", snapshot); err != nil {
		return "", err
	}
	return snapshot, nil
}

// Clone creates the dataset target from snapshot.
func (z *ZFS) Clone(ctx context.Context, snapshot, target string) error {
	_, err := z.run(ctx, "clone", snapshot, target)
	return err
}

func (z *ZFS) Destroy(ctx context.Context, dataset string) error {
	_, err := z.run(ctx, "destroy", dataset)
	return err
}

// Origin returns the snapshot dataset was cloned from. ok is false for
// datasets that are not clones.
func (z *ZFS) Origin(ctx context.Context, dataset string) (origin string, ok bool, err error) {
	origin, err = z.run(ctx, "get", "-H", "-o", "value", "origin", dataset)
	if err != nil {
		return "", false, err
	}
	if origin == "" || origin == "-" {
		return "", false, nil
	}
	return origin, true, nil
}

// SetQuota caps dataset at gib GiB, 0 removes the quota.
func (z *ZFS) SetQuota(ctx context.Context, dataset string, gib uint64) error {
	quota := "quota=none"
	if gib > 0 {
		quota = fmt.Sprintf("quota=%dG", gib)
	}
	_, err := z.run(ctx, "set", quota, dataset)
	return err
}
