package jails

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
)

type undo struct {
	name string
	fn   func(ctx context.Context) error
}

// rollback records compensating actions while a lifecycle transition
// progresses and replays them in reverse when it fails.
type rollback struct {
	log   *logrus.Entry
	undos []undo
}

func newRollback(log *logrus.Entry) *rollback {
	return &rollback{log: log}
}

func (r *rollback) add(name string, fn func(ctx context.Context) error) {
	r.undos = append(r.undos, undo{name: name, fn: fn})
}

// run executes every recorded undo, newest first, and returns cause with
// the undo failures appended.
func (r *rollback) run(ctx context.Context, cause error) error {
	var result *multierror.Error
	for i := len(r.undos) - 1; i >= 0; i-- {
		u := r.undos[i]
		r.log.Debugf("rolling back: %s", u.name)
		if err := u.fn(ctx); err != nil {
			r.log.WithError(err).Errorf("rollback step %q failed", u.name)
			result = multierror.Append(result, fmt.Errorf("rollback %s: %w", u.name, err))
		}
	}
	r.undos = nil

	if result == nil {
		return cause
	}
	return fmt.Errorf("%w (%v)", cause, result.ErrorOrNil())
}
