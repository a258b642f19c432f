// Package services runs every engine operation as one transactional unit of work over the
// repositories and reports it to logs, metrics and traces.
package services

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Dosada05/padel-circuit/metrics"
	"github.com/Dosada05/padel-circuit/repositories"
)

const tracerName = "github.com/Dosada05/padel-circuit/services"

// Store bundles the repositories a service may touch.
type Store struct {
	Tournaments repositories.TournamentRepository
	Competitors repositories.CompetitorRepository
	Pairs       repositories.PairRepository
	Zones       repositories.ZoneRepository
	ZoneMatches repositories.ZoneMatchRepository
	Brackets    repositories.BracketRepository
	Points      repositories.PointsRepository
}

// Notifier pushes live updates to the viewers of a tournament.
type Notifier interface {
	BroadcastTournament(tournamentID int, eventType string, payload interface{})
}

type noopNotifier struct{}

func (noopNotifier) BroadcastTournament(int, string, interface{}) {}

// Deps are the collaborators shared by every service. Zero fields get working defaults.
type Deps struct {
	Tx       repositories.Transactor
	Logger   *slog.Logger
	Metrics  metrics.Recorder
	Tracer   trace.Tracer
	Notifier Notifier
	Now      func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.Noop{}
	}
	if d.Tracer == nil {
		d.Tracer = otel.Tracer(tracerName)
	}
	if d.Notifier == nil {
		d.Notifier = noopNotifier{}
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

// observe runs op inside a span, classifies its error and records the outcome.
func (d Deps) observe(ctx context.Context, operation string, op func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := d.Tracer.Start(ctx, operation, trace.WithAttributes(attrs...))
	defer span.End()

	start := time.Now()
	err := classify(op(ctx))
	class := ErrorClass(err)
	d.Metrics.ObserveOperation(operation, class, time.Since(start))

	if err == nil {
		return nil
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, class)

	logAttrs := []any{slog.String("operation", operation), slog.String("class", class), slog.Any("error", err)}
	for _, a := range attrs {
		logAttrs = append(logAttrs, slog.String(string(a.Key), a.Value.Emit()))
	}
	if class == "internal" {
		d.Logger.ErrorContext(ctx, "operation failed", logAttrs...)
	} else {
		d.Logger.InfoContext(ctx, "operation rejected", logAttrs...)
	}
	return err
}

func intPtr(v int) *int {
	return &v
}
