package ranking

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/listenupapp/movienight/internal/errors"
)

// Area is one of the two kinds of container a movie can sit in.
type Area int

// Containers.
const (
	AreaPool Area = iota
	AreaSlot
)

// PoolEnd as a destination index appends to the available pool.
const PoolEnd = -1

// Location addresses a position in the pool or a ranking slot. Index is
// 0-based.
type Location struct {
	Area  Area
	Index int
}

// InPool addresses the available pool at index i.
func InPool(i int) Location { return Location{Area: AreaPool, Index: i} }

// InSlot addresses ranking slot i.
func InSlot(i int) Location { return Location{Area: AreaSlot, Index: i} }

// String renders the location the way users type it: "p3" or "s1", 1-based.
func (l Location) String() string {
	prefix := "p"
	if l.Area == AreaSlot {
		prefix = "s"
	}
	if l.Index < 0 {
		return prefix + "end"
	}
	return prefix + strconv.Itoa(l.Index+1)
}

// ParseLocation parses "p<n>" or "s<n>" with a 1-based n. "p" alone means
// the end of the pool.
func ParseLocation(s string) (Location, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Location{}, errors.Validation("missing location")
	}

	var area Area
	switch s[0] {
	case 'p':
		area = AreaPool
	case 's':
		area = AreaSlot
	default:
		return Location{}, errors.Validationf("location %q must start with p (pool) or s (slot)", s)
	}

	rest := s[1:]
	if rest == "" && area == AreaPool {
		return InPool(PoolEnd), nil
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return Location{}, errors.Validationf("location %q needs a position of 1 or more", s)
	}
	return Location{Area: area, Index: n - 1}, nil
}

func (l Location) describe() string {
	if l.Area == AreaSlot {
		return fmt.Sprintf("slot %d", l.Index+1)
	}
	return fmt.Sprintf("pool position %d", l.Index+1)
}
