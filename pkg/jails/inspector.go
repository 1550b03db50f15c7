package jails

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fifo-tools/jadm/pkg/tools"
	"github.com/fifo-tools/jadm/pkg/types"
)

// Inspector reports the jails currently running on the host, keyed by jail
// name (the jail UUID).
type Inspector interface {
	List(ctx context.Context) (map[string]types.JailOSEntry, error)
}

// OSInspector asks jls(8) for the running jails.
type OSInspector struct {
	runner tools.Runner
}

// NewOSInspector returns an Inspector backed by jls.
func NewOSInspector(runner tools.Runner) *OSInspector {
	return &OSInspector{runner: runner}
}

// List returns an empty map when no jail is running.
func (i *OSInspector) List(ctx context.Context) (map[string]types.JailOSEntry, error) {
	jailLog.Debug("Listing jails")
	out, err := i.runner.Run(ctx, JlsBin, "-q", "jid", "name")
	if err != nil {
		return nil, fmt.Errorf("failed to list jails: %w", err)
	}
	return ParseList(string(out))
}

// ParseList parses jls output, one "<jid> <name>" record per line. Any
// malformed line fails the whole listing.
func ParseList(reply string) (map[string]types.JailOSEntry, error) {
	res := make(map[string]types.JailOSEntry)
	for _, line := range strings.Split(reply, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := parseEntry(line)
		if err != nil {
			return nil, err
		}
		res[entry.UUID] = entry
	}
	return res, nil
}

func parseEntry(line string) (types.JailOSEntry, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return types.JailOSEntry{}, fmt.Errorf("NAME field missing in jls line %q", line)
	}
	id, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return types.JailOSEntry{}, fmt.Errorf("invalid JID in jls line %q: %w", line, err)
	}
	return types.JailOSEntry{UUID: fields[1], ID: id}, nil
}

// StaticInspector reports a fixed set of jails. It stands in for jls on
// hosts without jail support and in tests.
type StaticInspector map[string]types.JailOSEntry

// NewStaticInspector returns an inspector reporting exactly entries.
func NewStaticInspector(entries ...types.JailOSEntry) StaticInspector {
	s := make(StaticInspector, len(entries))
	for _, e := range entries {
		s[e.UUID] = e
	}
	return s
}

func (s StaticInspector) List(ctx context.Context) (map[string]types.JailOSEntry, error) {
	res := make(map[string]types.JailOSEntry, len(s))
	for k, v := range s {
		res[k] = v
	}
	return res, nil
}
