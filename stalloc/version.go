package stalloc

import (
	"fmt"

	"github.com/EmilChoparinov/csdsa/csdsaerr"
	"github.com/Masterminds/semver/v3"
)

// FormatVersionString identifies the guard-word/block layout this build
// writes and reads. It follows semver so a tuning file can declare the
// minimum layout it was written against (see AllocatorTuning.MinFormatVersion
// and CheckFormatCompatibility), the same way the teacher's
// internal/packagemanager/lockfile.go pins dependency versions with
// github.com/Masterminds/semver/v3 constraints.
const FormatVersionString = "1.0.0"

// FormatVersion is the parsed form of FormatVersionString.
var FormatVersion = semver.MustParse(FormatVersionString)

// CheckFormatCompatibility parses constraint as a semver constraint string
// (e.g. ">=1.0.0, <2.0.0") and panics with csdsaerr.InvalidConfig if either
// the constraint is malformed or this build's FormatVersion doesn't satisfy
// it. An empty constraint is always satisfied.
func CheckFormatCompatibility(constraint string) {
	if constraint == "" {
		return
	}

	c, err := semver.NewConstraint(constraint)
	if err != nil {
		csdsaerr.InvalidConfig(fmt.Sprintf("invalid min_format_version constraint %q: %v", constraint, err))
	}

	if !c.Check(FormatVersion) {
		csdsaerr.InvalidConfig(fmt.Sprintf("block format %s does not satisfy constraint %q", FormatVersionString, constraint))
	}
}
