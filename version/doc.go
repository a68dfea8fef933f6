// Package version reports the build of a seqkit binary.
//
// Version and BuildTime are set with -ldflags; the commit comes from the
// VCS stamp the Go toolchain embeds:
//
//	go build -ldflags "-X github.com/kbukum/seqkit/version.Version=1.2.0" ./cmd/seqctl
package version
