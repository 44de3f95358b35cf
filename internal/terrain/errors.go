package terrain

import (
	"fmt"
	"strings"
)

// Mandatory identifies a marker a floor cannot be played without.
type Mandatory int

const (
	MandatoryPlayer Mandatory = iota
	MandatoryPortal
	MandatoryInfinitePortal
)

func (m Mandatory) String() string {
	switch m {
	case MandatoryPlayer:
		return "player"
	case MandatoryPortal:
		return "portal"
	case MandatoryInfinitePortal:
		return "infinite portal"
	default:
		return fmt.Sprintf("mandatory(%d)", int(m))
	}
}

// GenerationFailedError reports the mandatory markers the populator could not
// place within its attempt budget. Callers may retry with a larger size or a
// different seed.
type GenerationFailedError struct {
	Floor   string
	Missing []Mandatory
}

func (e *GenerationFailedError) Error() string {
	names := make([]string, len(e.Missing))
	for i, m := range e.Missing {
		names[i] = m.String()
	}
	return fmt.Sprintf("generate floor %s: missing %s", e.Floor, strings.Join(names, ", "))
}
