// Package version holds the build version, set with
// -ldflags "-X github.com/ndewijer/stock-portfolio-tracker/internal/version.Version=v1.2.3".
package version

var Version = "dev"
