package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/railyard-ops/railyard/core/metrics"
	"github.com/railyard-ops/railyard/infra/logger"
)

// InfluxSink writes engine events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so a down backend never blocks
// planning.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordPlanningPass writes one point per proposal kind plus a pass
// summary point.
func (s *InfluxSink) RecordPlanningPass(ev coremetrics.PassEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	total := 0
	for _, n := range ev.ProposalsByKind {
		total += n
	}
	p := write.NewPointWithMeasurement("planning_pass").
		AddTag("pass_id", ev.PassID).
		AddField("proposals", total).
		AddField("invalid", ev.Invalid).
		AddField("degraded_branches", ev.DegradedBranch).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		return err
	}
	for kind, n := range ev.ProposalsByKind {
		kp := write.NewPointWithMeasurement("proposal").
			AddTag("pass_id", ev.PassID).
			AddTag("kind", string(kind)).
			AddField("count", n).
			SetTime(ev.Time)
		if err := s.writeAPI.WritePoint(ctx, kp); err != nil {
			return err
		}
	}
	return nil
}

// RecordCommit writes the per-class effect counts.
func (s *InfluxSink) RecordCommit(ev coremetrics.CommitEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("commit").
		AddTag("pass_id", ev.PassID).
		AddField("logs_appended", ev.Result.LogsAppended).
		AddField("slots_occupied", ev.Result.SlotsOccupied).
		AddField("work_orders_closed", ev.Result.WorkOrdersClosed).
		AddField("service_checks_updated", ev.Result.ServiceChecksUpdated).
		AddField("branding_updated", ev.Result.BrandingUpdated).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordMovements writes the observed movement log growth.
func (s *InfluxSink) RecordMovements(ev coremetrics.MovementsEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("movement_log").
		AddField("new_rows", ev.NewRows).
		AddField("total_rows", ev.TotalRows).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close flushes and closes the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

var _ coremetrics.CommitRecorder = (*InfluxSink)(nil)
var _ coremetrics.MovementsRecorder = (*InfluxSink)(nil)
