package domain

import (
	"strings"

	"go.trai.ch/zerr"
)

// OS identifies the operating system of a build agent.
type OS string

const (
	// OSLinux selects Linux agents.
	OSLinux OS = "linux"
	// OSWindows selects Windows agents.
	OSWindows OS = "windows"
	// OSMacOS selects macOS agents.
	OSMacOS OS = "macos"
)

// ParseOS converts a configuration value into an OS.
func ParseOS(s string) (OS, error) {
	switch OS(strings.ToLower(strings.TrimSpace(s))) {
	case OSLinux:
		return OSLinux, nil
	case OSWindows:
		return OSWindows, nil
	case OSMacOS:
		return OSMacOS, nil
	default:
		return "", zerr.With(zerr.Wrap(ErrConfiguration, "unknown operating system"), "os", s)
	}
}

// String returns the configuration name of the OS.
func (o OS) String() string {
	return string(o)
}

// AgentName returns the value agents report as their JVM os.name, used for agent requirements.
func (o OS) AgentName() string {
	switch o {
	case OSWindows:
		return "Windows"
	case OSMacOS:
		return "Mac OS X"
	default:
		return "Linux"
	}
}

// UnixLike reports whether the OS uses a POSIX shell.
func (o OS) UnixLike() bool {
	return o == OSLinux || o == OSMacOS
}

// QuoteStyle returns how command lines are quoted on agents running the OS.
func (o OS) QuoteStyle() QuoteStyle {
	if o == OSWindows {
		return QuoteCmd
	}
	return QuotePOSIX
}
