package tools

import (
	"context"
	"path/filepath"
	"strings"
)

// SimulatedRunner pretends to run host commands. It logs every invocation
// and answers with the canned reply registered for the command, or with
// empty output.
//
// Replies are keyed by the command base name followed by its leading
// arguments, e.g. "ifconfig epair create". The longest matching key wins.
type SimulatedRunner struct {
	Replies map[string]string
}

func (r *SimulatedRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmdline := strings.Join(append([]string{filepath.Base(name)}, args...), " ")
	runnerLog.WithField("args", cmdline).Info("simulating command")

	best := ""
	for key := range r.Replies {
		if len(key) > len(best) && (cmdline == key || strings.HasPrefix(cmdline, key+" ")) {
			best = key
		}
	}
	if best == "" {
		return nil, nil
	}
	return []byte(r.Replies[best]), nil
}
