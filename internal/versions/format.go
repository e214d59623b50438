package versions

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// OutputFormat is the version of the partition output documents this build writes
const OutputFormat = "1.1.0"

// CheckOutputFormat returns an error when a stored output document cannot be
// read by this build. Documents from an older minor or patch release are fine;
// a different major version or a newer minor version is rejected.
func CheckOutputFormat(stored string) error {
	if stored == "" {
		return fmt.Errorf("output format version is missing")
	}

	have, err := semver.NewVersion(stored)
	if err != nil {
		return fmt.Errorf("invalid output format version %q: %w", stored, err)
	}
	want := semver.MustParse(OutputFormat)

	if have.Major() != want.Major() {
		return fmt.Errorf("output format %s is not compatible with %s", have, want)
	}
	if have.Minor() > want.Minor() {
		return fmt.Errorf("output format %s is newer than supported %s", have, want)
	}
	return nil
}
