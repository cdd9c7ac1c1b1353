package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"

	"github.com/i474232898/weather-notifier/internal/metrics"
)

// Orchestrator runs fetch cycles against a single provider and emits every
// dataset a cycle produces.
type Orchestrator struct {
	provider Provider
	emitter  Emitter
	logger   *zap.Logger

	now   func() time.Time
	newID func() string
}

// NewOrchestrator creates a new Orchestrator. emitter may be nil, in which case
// datasets are only returned in the CycleResult.
func NewOrchestrator(provider Provider, emitter Emitter, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		provider: provider,
		emitter:  emitter,
		logger:   logger.Named("orchestrator"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// ProviderName returns the name of the provider cycles run against.
func (o *Orchestrator) ProviderName() string {
	return o.provider.Name()
}

type branchOutcome struct {
	endpoint Endpoint
	dataset  Dataset
	err      error
}

// RunCycle resolves the provider's endpoints, fetches every dependent dataset
// concurrently and waits for all of them to settle. Failed branches are logged
// and recorded; they never abort their siblings. Each successful dataset is
// emitted as soon as its branch settles.
func (o *Orchestrator) RunCycle(ctx context.Context) CycleResult {
	start := o.now()
	result := CycleResult{
		ID:        o.newID(),
		Provider:  o.provider.Name(),
		StartedAt: start.UTC(),
	}
	log := o.logger.With(zap.String("cycle", result.ID), zap.String("provider", result.Provider))
	log.Debug("cycle started")

	res, err := o.provider.ResolveEndpoints(ctx)
	if err != nil {
		log.Error("endpoint resolution failed; no dependent requests issued",
			zap.String("kind", ErrorKind(err)), zap.Error(err))
		result.ResolveErr = err
		return o.finish(log, result, start)
	}

	pending := make(map[DatasetName]Dataset, len(res.Datasets)+len(res.Endpoints))
	for _, ds := range res.Datasets {
		o.emit(ctx, log, &result, pending, ds)
	}

	settled := make(chan branchOutcome, len(res.Endpoints))
	var wg conc.WaitGroup
	for _, ep := range res.Endpoints {
		wg.Go(func() {
			settled <- o.fetchBranch(ctx, ep)
		})
	}
	go func() {
		wg.Wait()
		close(settled)
	}()

	for out := range settled {
		if out.err != nil {
			kind := ErrorKind(out.err)
			log.Warn("dataset fetch failed",
				zap.String("dataset", string(out.endpoint.Dataset)),
				zap.String("url", out.endpoint.URL),
				zap.String("kind", kind),
				zap.Error(out.err))
			result.Failures = append(result.Failures, BranchFailure{
				Dataset: out.endpoint.Dataset,
				Kind:    kind,
				Error:   out.err.Error(),
			})
			metrics.BranchFailed(result.Provider, string(out.endpoint.Dataset), kind)
			continue
		}
		o.emit(ctx, log, &result, pending, out.dataset)
	}

	return o.finish(log, result, start)
}

func (o *Orchestrator) fetchBranch(ctx context.Context, ep Endpoint) (out branchOutcome) {
	out.endpoint = ep

	var pc panics.Catcher
	pc.Try(func() {
		out.dataset, out.err = o.provider.FetchDataset(ctx, ep)
	})
	if r := pc.Recovered(); r != nil {
		out.err = fmt.Errorf("%w: %v", errBranchPanic, r.Value)
		return out
	}
	if out.err == nil && out.dataset.Name == "" {
		out.dataset.Name = ep.Dataset
	}
	return out
}

// emit stamps ds with the cycle's identity and hands it to the emitter, at
// most once per dataset name.
func (o *Orchestrator) emit(ctx context.Context, log *zap.Logger, result *CycleResult, pending map[DatasetName]Dataset, ds Dataset) {
	if _, dup := pending[ds.Name]; dup {
		log.Warn("dataset already emitted this cycle; dropping duplicate", zap.String("dataset", string(ds.Name)))
		return
	}
	ds.CycleID = result.ID
	if ds.FetchedAt.IsZero() {
		ds.FetchedAt = o.now().UTC()
	}
	pending[ds.Name] = ds
	result.Datasets = append(result.Datasets, ds)

	log.Info("dataset loaded", zap.String("dataset", string(ds.Name)))
	metrics.DatasetEmitted(result.Provider, string(ds.Name))

	if o.emitter == nil {
		return
	}
	if err := o.emitter.Emit(ctx, ds); err != nil {
		log.Warn("dataset emission failed", zap.String("dataset", string(ds.Name)), zap.Error(err))
	}
}

func (o *Orchestrator) finish(log *zap.Logger, result CycleResult, start time.Time) CycleResult {
	result.Duration = o.now().Sub(start)

	outcome := "success"
	switch {
	case result.ResolveErr != nil || len(result.Datasets) == 0:
		outcome = "failed"
	case len(result.Failures) > 0:
		outcome = "partial"
	}
	metrics.CycleCompleted(result.Provider, outcome, result.Duration)

	log.Info("cycle completed",
		zap.String("outcome", outcome),
		zap.Int("datasets", len(result.Datasets)),
		zap.Int("failures", len(result.Failures)),
		zap.Duration("duration", result.Duration))
	return result
}
