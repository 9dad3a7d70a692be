// Package orchestrator dispatches calls to the original and candidate
// implementations of a registered type.
package orchestrator

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"go.trai.ch/twin/internal/core/domain"
	"go.trai.ch/twin/internal/core/ports"
	"go.trai.ch/twin/internal/engine/comparator"
	"go.trai.ch/twin/internal/engine/monitor"
	"go.trai.ch/twin/internal/engine/resultcache"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Orchestrator owns a registry of implementation pairs and executes them
// in parallel or adaptively. It is safe for concurrent use.
type Orchestrator struct {
	settings domain.Settings
	logger   ports.Logger
	tracer   ports.Tracer
	monitor  *monitor.Monitor
	cache    *resultcache.Cache
	now      func() time.Time

	mu        sync.RWMutex
	registry  map[string]domain.Registration
	instances map[instanceKey]*slot
}

type instanceKey struct {
	typeName string
	id       domain.Identity
}

// slot holds a lazily constructed instance. Its mutex serializes construction.
type slot struct {
	mu   sync.Mutex
	impl domain.Implementation
}

// side is one implementation resolved for a call.
type side struct {
	id   domain.Identity
	name string
	fn   domain.OperationFunc
	// err is set when the instance could not be constructed.
	err error
}

type parallelEntry struct {
	original  domain.Value
	candidate domain.Value
}

type adaptiveEntry struct {
	id      domain.Identity
	payload domain.Value
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSettings overrides the default settings.
func WithSettings(s domain.Settings) Option {
	return func(o *Orchestrator) {
		o.settings = s
	}
}

// WithLogger sets the logger.
func WithLogger(l ports.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithTracer sets the tracer.
func WithTracer(t ports.Tracer) Option {
	return func(o *Orchestrator) {
		o.tracer = t
	}
}

// WithMonitor supplies a pre-populated monitor, e.g. one restored from disk.
func WithMonitor(m *monitor.Monitor) Option {
	return func(o *Orchestrator) {
		o.monitor = m
	}
}

// WithClock overrides the time source used for durations and cache expiry.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an Orchestrator with an empty registry.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		settings:  domain.DefaultSettings(),
		logger:    nopLogger{},
		tracer:    nopTracer{},
		now:       time.Now,
		registry:  make(map[string]domain.Registration),
		instances: make(map[instanceKey]*slot),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.monitor == nil {
		o.monitor = monitor.New(
			monitor.WithClock(o.now),
			monitor.WithErrorHistory(o.settings.ErrorHistory),
		)
	}
	o.cache = resultcache.New(o.settings.CacheTTL, resultcache.WithClock(o.now))
	return o
}

// Register stores the constructor pair of a type.
// Registering a name twice fails until it is unregistered.
func (o *Orchestrator) Register(typeName string, original, candidate domain.Constructor) error {
	if typeName == "" || original == nil || candidate == nil {
		return domain.Annotate(domain.ErrInvalidRegistration, "type", typeName)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.registry[typeName]; exists {
		return domain.Annotate(domain.ErrTypeAlreadyRegistered, "type", typeName)
	}
	o.registry[typeName] = domain.Registration{
		TypeName:  typeName,
		Original:  original,
		Candidate: candidate,
	}
	o.logger.Debug(fmt.Sprintf("registered type %q", typeName))
	return nil
}

// Unregister removes a type and drops its instances.
// It reports whether the type was registered.
func (o *Orchestrator) Unregister(typeName string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, exists := o.registry[typeName]; !exists {
		return false
	}
	delete(o.registry, typeName)
	for _, id := range domain.Identities {
		delete(o.instances, instanceKey{typeName: typeName, id: id})
	}
	return true
}

// Types returns the registered type names in sorted order.
func (o *Orchestrator) Types() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return slices.Sorted(maps.Keys(o.registry))
}

// ExecuteParallel runs the operation on both implementations concurrently and
// waits for both. A failing side is reported inline as a failure result and
// never affects its sibling.
//
// The returned error is reserved for unregistered types, unsupported
// operations and uncacheable arguments.
func (o *Orchestrator) ExecuteParallel(
	ctx context.Context,
	typeName, op string,
	args ...domain.Value,
) (domain.ParallelResult, error) {
	reg, err := o.registration(typeName)
	if err != nil {
		return domain.ParallelResult{}, err
	}

	ctx, span := o.tracer.Start(ctx, "parallel "+typeName+"."+op, callAttributes(typeName, op, domain.ModeParallel)...)
	defer span.End()

	key, err := o.cacheKey(domain.ModeParallel, typeName, op, args)
	if err != nil {
		span.RecordError(err)
		return domain.ParallelResult{}, err
	}
	if res, ok := o.cachedParallel(key); ok {
		span.SetAttribute("twin.cached", true)
		return res, nil
	}

	var sides [2]side
	var resolve errgroup.Group
	for i, id := range domain.Identities {
		resolve.Go(func() error {
			s, err := o.resolve(ctx, reg, id, op)
			sides[i] = s
			return err
		})
	}
	if err := resolve.Wait(); err != nil {
		span.RecordError(err)
		return domain.ParallelResult{}, err
	}

	var out domain.ParallelResult
	var g errgroup.Group
	g.Go(func() error {
		out.Original = o.run(ctx, sides[0], args, false)
		return nil
	})
	g.Go(func() error {
		out.Candidate = o.run(ctx, sides[1], args, false)
		return nil
	})
	_ = g.Wait()

	o.monitor.TrackParallelInvocation()

	if out.OK() {
		if key != "" {
			o.cache.Put(key, parallelEntry{
				original:  resultcache.Clone(out.Original.Payload),
				candidate: resultcache.Clone(out.Candidate.Payload),
			})
		}
	} else {
		o.logger.Debug(fmt.Sprintf("parallel %s.%s: at least one implementation failed", typeName, op))
	}
	return out, nil
}

// ExecuteAdaptive runs the implementation chosen by Select. If it fails, the
// other implementation is attempted exactly once, strictly afterwards, and
// its result is returned whether it succeeds or not.
//
// Implementation failures are reported through the result. The returned
// error is reserved for unregistered types, unsupported operations and
// uncacheable arguments.
func (o *Orchestrator) ExecuteAdaptive(
	ctx context.Context,
	typeName, op string,
	args ...domain.Value,
) (domain.OperationResult, error) {
	reg, err := o.registration(typeName)
	if err != nil {
		return domain.OperationResult{}, err
	}

	ctx, span := o.tracer.Start(ctx, "adaptive "+typeName+"."+op, callAttributes(typeName, op, domain.ModeAdaptive)...)
	defer span.End()

	key, err := o.cacheKey(domain.ModeAdaptive, typeName, op, args)
	if err != nil {
		span.RecordError(err)
		return domain.OperationResult{}, err
	}
	if res, ok := o.cachedAdaptive(key); ok {
		span.SetAttribute("twin.cached", true)
		return res, nil
	}

	decision := Select(o.settings, o.monitor.Snapshot())
	span.SetAttribute("twin.selected", decision.Identity.String())
	span.SetAttribute("twin.reason", string(decision.Reason))
	o.logger.Debug(fmt.Sprintf("adaptive %s.%s: selected %s (%s)", typeName, op, decision.Identity, decision.Reason))

	first, err := o.resolve(ctx, reg, decision.Identity, op)
	if err != nil {
		span.RecordError(err)
		return domain.OperationResult{}, err
	}
	res := o.run(ctx, first, args, false)

	if !res.OK() {
		fallback := decision.Identity.Other()
		o.logger.Warn(fmt.Sprintf("adaptive %s.%s: %s failed, falling back to %s", typeName, op, decision.Identity, fallback))

		second, err := o.resolve(ctx, reg, fallback, op)
		if err != nil {
			span.RecordError(err)
			return domain.OperationResult{}, err
		}
		res = o.run(ctx, second, args, true)
		res.Fallback = true
	}

	if !res.OK() {
		span.RecordError(res.Err())
		return res, nil
	}
	if key != "" {
		o.cache.Put(key, adaptiveEntry{id: res.Identity, payload: resultcache.Clone(res.Payload)})
	}
	return res, nil
}

// Compare diffs the payloads of a prior parallel execution.
func (o *Orchestrator) Compare(p domain.ParallelResult) domain.ComparisonReport {
	return comparator.Compare(p.Original.Payload, p.Candidate.Payload)
}

// Metrics returns a snapshot of the monitor.
func (o *Orchestrator) Metrics() domain.MetricsSnapshot {
	return o.monitor.Snapshot()
}

// Summary renders the monitor as a human-readable report.
func (o *Orchestrator) Summary() string {
	return o.monitor.Summary()
}

// ResetMetrics clears the monitor.
func (o *Orchestrator) ResetMetrics() {
	o.monitor.Reset()
}

// Monitor exposes the monitor for persistence.
func (o *Orchestrator) Monitor() *monitor.Monitor {
	return o.monitor
}

// Settings returns the active settings.
func (o *Orchestrator) Settings() domain.Settings {
	return o.settings
}

func (o *Orchestrator) registration(typeName string) (domain.Registration, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	reg, ok := o.registry[typeName]
	if !ok {
		return domain.Registration{}, domain.Annotate(domain.ErrUnregisteredType, "type", typeName)
	}
	return reg, nil
}

// instance returns the living instance of a type side, constructing it on first use.
// Failed constructions are not cached.
func (o *Orchestrator) instance(ctx context.Context, reg domain.Registration, id domain.Identity) (domain.Implementation, error) {
	key := instanceKey{typeName: reg.TypeName, id: id}

	o.mu.Lock()
	s, ok := o.instances[key]
	if !ok {
		s = &slot{}
		o.instances[key] = s
	}
	o.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.impl != nil {
		return s.impl, nil
	}

	impl, err := reg.Constructor(id)(ctx)
	if err == nil && impl == nil {
		err = zerr.New("constructor returned no implementation")
	}
	if err != nil {
		return nil, zerr.With(zerr.With(domain.Tag(domain.ErrConstructFailed, err), "type", reg.TypeName), "identity", id.String())
	}
	s.impl = impl
	return impl, nil
}

// resolve looks up the operation handle of one side. A construction failure
// is kept on the side so it surfaces as that side's failure result.
func (o *Orchestrator) resolve(ctx context.Context, reg domain.Registration, id domain.Identity, op string) (side, error) {
	s := side{id: id, name: reg.TypeName + "/" + id.String()}

	impl, err := o.instance(ctx, reg, id)
	if err != nil {
		o.logger.Warn(fmt.Sprintf("%s: %v", s.name, err))
		s.err = err
		return s, nil
	}
	if name := impl.Name(); name != "" {
		s.name = name
	}

	fn, ok := impl.Operation(op)
	if !ok {
		err := domain.Annotate(domain.ErrUnsupportedOperation, "operation", op)
		return s, zerr.With(zerr.With(err, "type", reg.TypeName), "identity", id.String())
	}
	s.fn = fn
	return s, nil
}

// run executes one side under its own span and records the outcome.
func (o *Orchestrator) run(ctx context.Context, s side, args []domain.Value, fallback bool) domain.OperationResult {
	ctx, span := o.tracer.Start(ctx, s.name,
		ports.WithAttribute("twin.identity", s.id.String()),
		ports.WithAttribute("twin.fallback", fallback),
	)
	defer span.End()

	var res domain.OperationResult
	if s.err != nil {
		res = domain.Failed(s.id, s.err, 0)
		// Construction time is not an execution latency.
		o.monitor.TrackCall(s.id, false, -1, errorDetail(res))
	} else {
		start := o.now()
		payload, err := o.call(ctx, s, span, args)
		d := o.now().Sub(start)
		if err != nil {
			res = domain.Failed(s.id, err, d)
		} else {
			res = domain.Succeeded(s.id, payload, d)
		}
		o.monitor.TrackCall(s.id, res.OK(), d, errorDetail(res))
	}

	span.SetAttribute("twin.duration_ms", res.Duration.Milliseconds())
	if !res.OK() {
		span.RecordError(res.Err())
	}
	return res
}

// call invokes the operation handle, converting panics into errors.
func (o *Orchestrator) call(ctx context.Context, s side, span ports.Span, args []domain.Value) (payload domain.Value, err error) {
	defer zerr.Defer(func(perr error) {
		payload, err = nil, perr
	})

	ctx = domain.WithUsageSink(ctx, func(u domain.ResourceUsage) {
		o.monitor.TrackUsage(s.id, u)
	})
	ctx = domain.WithOutput(ctx, span)
	return s.fn(ctx, args...)
}

func (o *Orchestrator) cacheKey(mode domain.Mode, typeName, op string, args []domain.Value) (string, error) {
	if !o.cache.Enabled() {
		return "", nil
	}
	key, err := resultcache.Key(typeName, op, args)
	if err != nil {
		return "", err
	}
	return string(mode) + "|" + key, nil
}

func (o *Orchestrator) cachedParallel(key string) (domain.ParallelResult, bool) {
	if key == "" {
		return domain.ParallelResult{}, false
	}
	v, ok := o.cache.Get(key)
	if !ok {
		return domain.ParallelResult{}, false
	}
	entry, ok := v.(parallelEntry)
	if !ok {
		return domain.ParallelResult{}, false
	}
	out := domain.ParallelResult{
		Original:  domain.Succeeded(domain.Original, resultcache.Clone(entry.original), 0),
		Candidate: domain.Succeeded(domain.Candidate, resultcache.Clone(entry.candidate), 0),
	}
	out.Original.Cached = true
	out.Candidate.Cached = true
	return out, true
}

func (o *Orchestrator) cachedAdaptive(key string) (domain.OperationResult, bool) {
	if key == "" {
		return domain.OperationResult{}, false
	}
	v, ok := o.cache.Get(key)
	if !ok {
		return domain.OperationResult{}, false
	}
	entry, ok := v.(adaptiveEntry)
	if !ok {
		return domain.OperationResult{}, false
	}
	res := domain.Succeeded(entry.id, resultcache.Clone(entry.payload), 0)
	res.Cached = true
	return res, true
}

func callAttributes(typeName, op string, mode domain.Mode) []ports.SpanOption {
	return []ports.SpanOption{
		ports.WithAttribute("twin.type", typeName),
		ports.WithAttribute("twin.operation", op),
		ports.WithAttribute("twin.mode", string(mode)),
	}
}

// errorDetail is the message recorded to the monitor for a failed result.
func errorDetail(res domain.OperationResult) string {
	if res.OK() {
		return ""
	}
	if res.Failure.Detail == "" {
		return res.Failure.Message
	}
	return res.Failure.Message + "\n" + res.Failure.Detail
}
