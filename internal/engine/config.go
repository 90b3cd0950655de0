package engine

import (
	"fmt"
	"strings"
)

// AssertConfig is the value assert_configuration calls are replaced with.
type AssertConfig int

const (
	// AssertDisabled leaves assert_configuration and conditionallyUnreachable
	// calls alone.
	AssertDisabled  AssertConfig = -1
	AssertDebug     AssertConfig = 0
	AssertRelease   AssertConfig = 1
	AssertUnchecked AssertConfig = 2
)

func (c AssertConfig) String() string {
	switch c {
	case AssertDisabled:
		return "disabled"
	case AssertDebug:
		return "debug"
	case AssertRelease:
		return "release"
	case AssertUnchecked:
		return "unchecked"
	}
	return fmt.Sprintf("AssertConfig(%d)", int(c))
}

// Enabled reports whether calls are replaced at all.
func (c AssertConfig) Enabled() bool { return c != AssertDisabled }

// ParseAssertConfig parses the names printed by String.
func ParseAssertConfig(s string) (AssertConfig, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disabled", "":
		return AssertDisabled, nil
	case "debug":
		return AssertDebug, nil
	case "release":
		return AssertRelease, nil
	case "unchecked":
		return AssertUnchecked, nil
	}
	return AssertDisabled, fmt.Errorf("unknown assert configuration %q (want disabled, debug, release or unchecked)", s)
}
