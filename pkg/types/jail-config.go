package types

// DefaultBrand is used when a configuration does not select a brand.
const DefaultBrand = "jail"

// JailConfig is the full declarative configuration of a jail. One document
// per jail is stored next to the index, keyed by UUID.
type JailConfig struct {
	// UUID always equals the UUID of the owning IndexEntry.
	UUID string `json:"uuid" jsonschema:"format=uuid"`

	// ImageUUID is the image dataset the jail root is cloned from.
	ImageUUID string `json:"image_uuid" jsonschema:"required,format=uuid"`

	Alias    string `json:"alias"`
	Hostname string `json:"hostname"`

	// MaxPhysicalMemory is the memory cap in MiB, 0 means unlimited.
	MaxPhysicalMemory uint64 `json:"max_physical_memory"`

	// CPUCap is the CPU cap in percent of a single core, 0 means unlimited.
	CPUCap uint64 `json:"cpu_cap"`

	// Quota is the disk quota in GiB applied to the jail dataset, 0 means
	// unlimited.
	Quota uint64 `json:"quota"`

	// Autostart marks the jail to be started by `jadm startup`.
	Autostart bool `json:"autostart"`

	// Nics is the ordered list of network interfaces of the jail.
	Nics []NIC `json:"nics"`

	// Brand selects the brand plug-in handling init, boot and halt.
	Brand string `json:"brand"`
}

// NIC describes a single virtual network interface of a jail.
type NIC struct {
	// Interface is the name of the interface inside the jail, e.g. net0.
	Interface string `json:"interface" jsonschema:"required"`

	// NicTag selects the host bridge the host side is attached to.
	NicTag string `json:"nic_tag,omitempty"`

	IP      string `json:"ip,omitempty"`
	Netmask string `json:"netmask,omitempty"`
	Gateway string `json:"gateway,omitempty"`
	MAC     string `json:"mac,omitempty"`

	// Primary marks the interface whose gateway becomes the default route.
	Primary bool `json:"primary,omitempty"`
}

// IFace is derived from a NIC every time a jail starts. It is never
// persisted.
type IFace struct {
	// Epair is the epair base name without the a/b suffix, e.g. epair3.
	Epair string

	// Iface is the name of the interface inside the jail.
	Iface string

	// StartScript configures the interface from inside the jail at boot.
	StartScript string
}
