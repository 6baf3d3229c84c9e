package cmd

// Set at build time with -ldflags "-X github.com/pedrokiefer/exposure/cmd.Version=..."
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)
