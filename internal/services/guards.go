package services

import (
	"sort"
	"strings"
	"time"

	"github.com/Ananth-NQI/servicebook-backend/internal/utils"
)

// ServiceArea is the allow-list of postal codes we cover
type ServiceArea struct {
	codes map[string]struct{}
}

// NewServiceArea builds an area from codes; blanks are ignored and entries trimmed.
func NewServiceArea(codes []string) *ServiceArea {
	area := &ServiceArea{codes: make(map[string]struct{}, len(codes))}
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			area.codes[c] = struct{}{}
		}
	}
	return area
}

// IsServiceable reports whether code is covered. Unknown codes are rejected.
func (a *ServiceArea) IsServiceable(code string) bool {
	_, ok := a.codes[strings.TrimSpace(code)]
	return ok
}

// Codes returns the covered codes in ascending order.
func (a *ServiceArea) Codes() []string {
	out := make([]string, 0, len(a.codes))
	for c := range a.codes {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// IsPast reports whether the local slot date+clock is strictly before now.
// A malformed or missing date is not past; callers enforce presence separately.
func IsPast(date, clock string, now time.Time) bool {
	if date == "" {
		return false
	}
	slot, err := utils.ParseLocalSlot(date, clock, now.Location())
	if err != nil {
		return false
	}
	return slot.Before(now)
}
