package jails

import (
	"github.com/fifo-tools/jadm/pkg/tools"
	"github.com/fifo-tools/jadm/pkg/types"
)

// StubUUID is the jail reported by the stub inspector.
const StubUUID = "00000000-1f3e-4b11-b0ae-8494bb6ecd52"

// StubInspector reports a fixed running jail together with its nested
// inner jail. It is used in simulation mode on hosts without jail support.
func StubInspector() StaticInspector {
	return NewStaticInspector(
		types.JailOSEntry{UUID: StubUUID, ID: 1},
		types.JailOSEntry{UUID: InnerName(StubUUID), ID: 2},
	)
}

// NewSimulatedRunner returns a runner answering the jail and ifconfig
// invocations of a start sequence with plausible output.
func NewSimulatedRunner() *tools.SimulatedRunner {
	return &tools.SimulatedRunner{
		Replies: map[string]string{
			"jail -i -c":            "42\n",
			"ifconfig epair create": "epair0a\n",
			"jls -q jid name":       "1 " + StubUUID + "\n2 " + InnerName(StubUUID) + "\n",
		},
	}
}
