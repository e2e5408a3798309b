package photoframed

import _ "embed"

// Version is stamped by the release workflow; "dev" for local builds.
var Version = "dev"

//go:embed photoframed.toml
var DefaultConfig string
