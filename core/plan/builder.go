// Package plan produces the unapproved movement proposals of a
// planning pass: entrance rotation, cleaning, maintenance and interval
// service checks, plus the branding accrual that rides along with the
// pass payload.
package plan

import (
	"time"

	"github.com/google/uuid"

	"github.com/railyard-ops/railyard/core/geometry"
	"github.com/railyard-ops/railyard/core/model"
)

// Builder assembles validated movement records. Start is the build
// time; End is derived from the topology's travel duration, so a
// missing edge yields a zero-length movement that validation rejects.
type Builder struct {
	geo *geometry.Resolver
	val *Validator
	now func() time.Time
}

// NewBuilder wires a Builder. A nil clock means wall clock.
func NewBuilder(geo *geometry.Resolver, val *Validator, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{geo: geo, val: val, now: now}
}

// Movement builds one record and validates it. The returned record has
// normalized endpoints regardless of the verdict.
func (b *Builder) Movement(vehicleID, source, destination, action string) (model.MovementRecord, model.Validation) {
	start := b.now()
	m := model.MovementRecord{
		VehicleID:   vehicleID,
		Source:      source,
		Destination: destination,
		Start:       start,
		End:         start.Add(b.geo.Lookup(source, destination).Duration),
		Action:      action,
	}
	res := b.val.Validate(&m)
	return m, res
}

func (b *Builder) info(vehicleID string, rec model.MovementRecord, checks model.Validation) model.ProposalInfo {
	return model.ProposalInfo{
		ID:      uuid.NewString(),
		Vehicle: vehicleID,
		Record:  rec,
		Checks:  checks,
	}
}
