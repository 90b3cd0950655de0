//go:build !linux && !darwin

package cli

import "io"

func isTerminal(io.Writer) bool { return false }
