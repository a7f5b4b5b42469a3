package main

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/station-geocode-migrator/internal/domain"
)

// maxReported caps the errors kept per phase.
const maxReported = 50

// phase tracks pass/fail for a verification phase.
type phase struct {
	name     string
	errors   []string
	warnings []string
}

func (p *phase) errorf(format string, args ...any) {
	if len(p.errors) == maxReported {
		p.errors = append(p.errors, "further errors suppressed")
	}
	if len(p.errors) > maxReported {
		return
	}
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// checkCounts fails when the target holds more documents than the source,
// which only happens after repeated insert-mode runs.
func checkCounts(source, target int64) *phase {
	p := &phase{name: "Document counts"}
	switch {
	case target > source:
		p.errorf("target has %d documents, source has %d: migration was likely run more than once", target, source)
	case target < source:
		p.warnf("%d source records were not migrated (geocoding failures are dropped)", source-target)
	}
	return p
}

// checkRecordShape validates every enriched record.
func checkRecordShape(records []domain.TargetRecord) *phase {
	p := &phase{name: "Record shape"}
	for _, r := range records {
		id := r.Zipcode
		if !strings.HasSuffix(r.City, ", "+r.State) {
			p.errorf("%s: city %q is not composed as \"<city>, %s\"", id, r.City, r.State)
		}
		if r.PlaceID == "" {
			p.errorf("%s: missing place_id", id)
		}
		if r.Location.Type != "Point" {
			p.errorf("%s: location type %q, want Point", id, r.Location.Type)
		}
		if lng := r.Location.Lng(); lng < -180 || lng > 180 {
			p.errorf("%s: longitude %v out of range", id, lng)
		}
		if lat := r.Location.Lat(); lat < -90 || lat > 90 {
			p.errorf("%s: latitude %v out of range (coordinates swapped?)", id, lat)
		}
	}
	return p
}

// checkDuplicates reports zipcodes present more than once.
func checkDuplicates(records []domain.TargetRecord, strict bool) *phase {
	p := &phase{name: "Duplicate zipcodes"}
	seen := make(map[string]int, len(records))
	var order []string
	for _, r := range records {
		if seen[r.Zipcode] == 0 {
			order = append(order, r.Zipcode)
		}
		seen[r.Zipcode]++
	}
	for _, zip := range order {
		if n := seen[zip]; n > 1 {
			if strict {
				p.errorf("zipcode %s appears %d times", zip, n)
			} else {
				p.warnf("zipcode %s appears %d times", zip, n)
			}
		}
	}
	return p
}
