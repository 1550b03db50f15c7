package types

// Settings is the host-wide configuration of jadm.
type Settings struct {
	// Pool is the ZFS dataset under which jail roots and images live.
	Pool string `toml:"pool"`

	// ConfDir holds the index document and one <uuid>.json per jail.
	ConfDir string `toml:"conf_dir"`

	// DevfsRuleset is the devfs ruleset number applied to every jail.
	DevfsRuleset int `toml:"devfs_ruleset"`

	// BrandRoot is the directory holding one sub-directory per brand,
	// each with a brand.yaml manifest.
	BrandRoot string `toml:"brand_root"`

	// NicTags maps a NIC tag to the host bridge interface that the host
	// side of an epair is attached to.
	NicTags map[string]string `toml:"nic_tags"`
}
