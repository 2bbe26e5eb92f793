package influx

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"yard-tracker/internal/interfaces"
	"yard-tracker/internal/models"
)

const PositionMeasurement = "position"

// PointWriter is the part of api.WriteAPI the writer needs.
type PointWriter interface {
	WritePoint(point *write.Point)
}

type PositionWriter struct {
	writeAPI PointWriter
	logger   zerolog.Logger
}

func NewPositionWriter(writeAPI PointWriter, logger zerolog.Logger) *PositionWriter {
	return &PositionWriter{
		writeAPI: writeAPI,
		logger:   logger,
	}
}

// WritePosition queues one point per report. Reports without a fix carry no
// coordinates and only record the failed attempt.
func (w *PositionWriter) WritePosition(ctx context.Context, report *models.PositionReport) error {
	if report == nil {
		return fmt.Errorf("position report is nil")
	}

	tags := map[string]string{
		"device_id": report.DeviceID,
		"method":    string(report.Method),
	}

	fields := map[string]interface{}{
		"valid":        report.Valid,
		"stale":        report.Stale,
		"anchors_used": report.AnchorsUsed,
		"simulated":    report.Simulated,
	}
	if report.HasFix {
		fields["x"] = report.X
		fields["y"] = report.Y
	}
	if report.MeasuredDistance != nil {
		fields["measured_distance"] = *report.MeasuredDistance
	}

	point := influxdb2.NewPoint(
		PositionMeasurement,
		tags,
		fields,
		report.Timestamp,
	)

	w.writeAPI.WritePoint(point)

	w.logger.Debug().
		Str("device_id", report.DeviceID).
		Bool("valid", report.Valid).
		Float64("x", report.X).
		Float64("y", report.Y).
		Msg("Added position to InfluxDB")

	return nil
}

var _ interfaces.IPositionWriter = (*PositionWriter)(nil)
