// Package platform detects the host operating system and decides whether
// spinup can provision it.
package platform

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spinup-io/spinup/errs"
)

// DefaultOSReleasePath is where Linux distributions describe themselves.
const DefaultOSReleasePath = "/etc/os-release"

// Info describes the detected distribution.
type Info struct {
	// ID is the lowercase distribution identifier, e.g. "ubuntu".
	ID string
	// VersionID is the release version, e.g. "14.04".
	VersionID string
	// Pretty is the human-readable name reported by the OS.
	Pretty string
}

// Detect reads /etc/os-release and returns the distribution info.
func Detect() (Info, error) {
	return DetectFromFile(DefaultOSReleasePath)
}

// DetectFromFile parses the os-release file at path.
func DetectFromFile(path string) (Info, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("platform: read %s: %w", path, err)
	}
	return parseOSRelease(string(contents)), nil
}

func parseOSRelease(contents string) Info {
	fields := map[string]string{}
	for _, line := range strings.Split(contents, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		fields[key] = strings.Trim(value, `"`)
	}
	return Info{
		ID:        strings.ToLower(fields["ID"]),
		VersionID: fields["VERSION_ID"],
		Pretty:    fields["PRETTY_NAME"],
	}
}

// CheckSupported returns an UnsupportedOS error unless info names a
// distribution spinup can provision: Ubuntu 14.04+ or Debian 8+.
func CheckSupported(info Info) error {
	major, minor := parseVersion(info.VersionID)
	switch info.ID {
	case "ubuntu":
		if major > 14 || (major == 14 && minor >= 4) {
			return nil
		}
	case "debian":
		if major >= 8 {
			return nil
		}
	}
	return errs.UnsupportedOS(info.ID, info.VersionID)
}

func parseVersion(versionID string) (major, minor int) {
	parts := strings.SplitN(versionID, ".", 2)
	major, _ = strconv.Atoi(parts[0])
	if len(parts) > 1 {
		minor, _ = strconv.Atoi(parts[1])
	}
	return major, minor
}
