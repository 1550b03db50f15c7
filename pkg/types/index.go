package types

// IndexVersion is the only schema version of the index document.
const IndexVersion = 0

// Known values for IndexEntry.State.
const (
	StateInstalling = "installing"
	StateStarting   = "starting"
	StateRunning    = "running"
	StateStopping   = "stopping"
	StateStopped    = "stopped"
)

// JailTypeBase is the only jail flavour currently supported.
const JailTypeBase = "base"

// IndexEntry is the minimal persisted record of a jail: its identity,
// where its storage lives and its coarse lifecycle state.
type IndexEntry struct {
	// Version is the schema version of the entry, always IndexVersion.
	Version int `json:"version"`

	// UUID is the canonical hyphenated identity of the jail. It never
	// changes and is unique across the index.
	UUID string `json:"uuid"`

	// Root is the dataset backing the jail, <pool>/<uuid>.
	Root string `json:"root"`

	// State is the persisted lifecycle label. It is only authoritative
	// until the OS reports the jail as running.
	State string `json:"state"`

	// JailType is reserved for future jail flavours, always JailTypeBase.
	JailType string `json:"jail_type"`
}

// Index is the on-disk index document.
type Index struct {
	Version int          `json:"version"`
	Entries []IndexEntry `json:"entries"`
}

// JailOSEntry is what the host jail facility reports for a running jail.
// It is never persisted.
type JailOSEntry struct {
	// UUID is the jail name as reported by the OS.
	UUID string

	// ID is the numeric jail id assigned by the OS.
	ID uint64
}
