package version

// RootCmdVersion is reported by `logspy --version`.
const RootCmdVersion = "0.4.0"

// CfgVersion must match `config_version` in any config file handed to logspy.
const CfgVersion = 1
