package precheck

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/cursor-tools/cursor-patch/internal/patching"
)

var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Version is a MAJOR.MINOR.PATCH triple.
type Version struct {
	Major, Minor, Patch uint64
}

// ParseVersion accepts exactly MAJOR.MINOR.PATCH with decimal components.
// Pre-release and build suffixes are rejected rather than ignored.
func ParseVersion(s string) (Version, error) {
	if !versionPattern.MatchString(s) {
		return Version{}, patching.Errorf(patching.InvalidVersionFormat, "", "invalid version %q, want MAJOR.MINOR.PATCH", s)
	}

	parts := strings.Split(s, ".")
	var nums [3]uint64
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return Version{}, patching.Wrap(patching.InvalidVersionFormat, "", fmt.Sprintf("invalid version %q", s), err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func (v Version) semver() *semver.Version {
	return semver.New(v.Major, v.Minor, v.Patch, "", "")
}

// Compare returns -1, 0 or 1 comparing major, then minor, then patch.
func (v Version) Compare(o Version) int {
	return v.semver().Compare(o.semver())
}

// Constraint is an inclusive version range; a nil bound is open.
type Constraint struct {
	Min *Version
	Max *Version
}

// NewConstraint parses optional bounds. Empty strings leave a side open.
func NewConstraint(min, max string) (Constraint, error) {
	var c Constraint
	if min != "" {
		v, err := ParseVersion(min)
		if err != nil {
			return Constraint{}, fmt.Errorf("min version: %w", err)
		}
		c.Min = &v
	}
	if max != "" {
		v, err := ParseVersion(max)
		if err != nil {
			return Constraint{}, fmt.Errorf("max version: %w", err)
		}
		c.Max = &v
	}
	if c.Min != nil && c.Max != nil && c.Min.Compare(*c.Max) > 0 {
		return Constraint{}, fmt.Errorf("min version %s is greater than max version %s", c.Min, c.Max)
	}
	return c, nil
}

// Check fails with VersionOutOfRange when v is outside the bounds.
func (c Constraint) Check(v Version) error {
	if c.Min != nil && v.Compare(*c.Min) < 0 {
		return patching.Errorf(patching.VersionOutOfRange, "", "version %s is below minimum %s", v, c.Min)
	}
	if c.Max != nil && v.Compare(*c.Max) > 0 {
		return patching.Errorf(patching.VersionOutOfRange, "", "version %s is above maximum %s", v, c.Max)
	}
	return nil
}

func (c Constraint) String() string {
	switch {
	case c.Min != nil && c.Max != nil:
		return fmt.Sprintf(">= %s, <= %s", c.Min, c.Max)
	case c.Min != nil:
		return fmt.Sprintf(">= %s", c.Min)
	case c.Max != nil:
		return fmt.Sprintf("<= %s", c.Max)
	default:
		return "any"
	}
}
