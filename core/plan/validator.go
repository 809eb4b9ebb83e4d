package plan

import (
	"fmt"

	"github.com/railyard-ops/railyard/core/location"
	"github.com/railyard-ops/railyard/core/model"
)

// Validator checks movement records against the known-location
// vocabulary and basic temporal ordering. Failures are returned as
// data, never as errors: the approver decides what to do with an
// invalid proposal.
type Validator struct {
	known location.Vocabulary
}

// NewValidator builds a Validator over the given vocabulary.
func NewValidator(known location.Vocabulary) *Validator {
	return &Validator{known: known}
}

// Validate normalizes the record's endpoints in place and reports every
// problem found, with nearest-match suggestions for unknown locations.
func (v *Validator) Validate(m *model.MovementRecord) model.Validation {
	res := model.Validation{Valid: true}
	fail := func(format string, args ...any) {
		res.Valid = false
		res.Errors = append(res.Errors, fmt.Sprintf(format, args...))
	}
	suggest := func(field, value string) {
		if s := v.known.Suggest(value); len(s) > 0 {
			if res.Suggestions == nil {
				res.Suggestions = make(map[string][]string)
			}
			res.Suggestions[field] = s
		}
	}

	m.Source = location.Normalize(m.Source)
	m.Destination = location.Normalize(m.Destination)

	if m.VehicleID == "" {
		fail("vehicle id is required")
	}
	switch {
	case m.Source == "":
		fail("source is required")
	case !v.known.Contains(m.Source):
		fail("unknown source: %s", m.Source)
		suggest("source", m.Source)
	}
	switch {
	case m.Destination == "":
		fail("destination is required")
	case !v.known.Contains(m.Destination):
		fail("unknown destination: %s", m.Destination)
		suggest("destination", m.Destination)
	}

	switch {
	case m.Start.IsZero():
		fail("start time is invalid")
	case m.End.IsZero():
		fail("end time is invalid")
	case !m.End.After(m.Start):
		fail("end time must be after start time")
	}
	return res
}
