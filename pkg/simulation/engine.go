// Package simulation produces synthetic per-field sensor readings over a
// simulated clock that runs faster than real time.
//
// The Engine owns the clock and every FieldState. Its ticker goroutine is the
// only writer; readers receive copies, and a tick publishes the new clock and
// all field states under a single lock so no reader sees half a tick.
package simulation

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Source is the random source used for seeding and sensor noise.
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Ticker abstracts the periodic timer so tests can drive ticks by hand.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

func newTimeTicker(d time.Duration) Ticker { return timeTicker{time.NewTicker(d)} }

// FieldState is one field's reading at a point of simulated time.
type FieldState struct {
	FieldID      string    `json:"field_id"`
	Timestamp    time.Time `json:"timestamp"`
	SoilMoisture float64   `json:"soil_moisture"` // %
	Temperature  float64   `json:"temperature"`   // °C
	Humidity     float64   `json:"humidity"`      // %
	EC           float64   `json:"ec"`            // dS/m
}

// Snapshot is everything published by one tick.
type Snapshot struct {
	SimulatedTime time.Time             `json:"simulated_time"`
	Tick          uint64                `json:"tick"`
	Fields        map[string]FieldState `json:"fields"`
}

// Option customises an Engine at construction.
type Option func(*Engine)

// WithSource sets the random source. Use a seeded source for reproducible runs.
func WithSource(src Source) Option {
	return func(e *Engine) { e.rng = src }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithNow sets the wall-clock function used to pick the starting date.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithTicker replaces the timer factory used by Start.
func WithTicker(factory func(time.Duration) Ticker) Option {
	return func(e *Engine) { e.newTicker = factory }
}

// Engine advances a fixed set of fields through simulated time.
type Engine struct {
	cfg       Config
	log       *zap.Logger
	rng       Source
	now       func() time.Time
	newTicker func(time.Duration) Ticker

	mu      sync.RWMutex
	clock   time.Time
	tick    uint64
	fields  map[string]FieldState
	history *history

	ticking atomic.Bool
	running atomic.Bool

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}

	obsMu     sync.Mutex
	observers map[uint64]func(Snapshot)
	nextObs   uint64
}

// NewEngine validates cfg, seeds every field and sets the clock to
// cfg.StartHour on the current date. It returns a *ConfigurationError when
// cfg is invalid.
func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	cfg = cfg.normalized()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		log:       zap.NewNop(),
		now:       time.Now,
		newTicker: newTimeTicker,
		history:   newHistory(cfg.HistoryCapacity),
		observers: make(map[uint64]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(uint64(e.now().UnixNano()), 0x9e3779b97f4a7c15))
	}

	today := e.now().In(cfg.Location)
	e.clock = time.Date(today.Year(), today.Month(), today.Day(), cfg.StartHour, 0, 0, 0, cfg.Location)

	p := cfg.Physics
	e.fields = make(map[string]FieldState, len(cfg.FieldIDs))
	for _, id := range cfg.FieldIDs {
		e.fields[id] = FieldState{
			FieldID:      id,
			Timestamp:    e.clock,
			SoilMoisture: between(e.rng, p.SeedMoistureMin, p.SeedMoistureMax),
			Temperature:  p.NominalTemp,
			Humidity:     p.NominalHumidity,
			EC:           between(e.rng, p.SeedECMin, p.SeedECMax),
		}
	}

	e.log.Info("simulation engine ready",
		zap.Strings("fields", cfg.FieldIDs),
		zap.Time("start", e.clock),
		zap.Duration("tick_interval", cfg.TickInterval),
		zap.Duration("tick_advance", cfg.TickAdvance),
		zap.Float64("dilation", cfg.Dilation()),
	)
	return e, nil
}

// Start begins periodic ticking. Calling it while running is a no-op.
func (e *Engine) Start() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	if e.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	t := e.newTicker(e.cfg.TickInterval)
	e.cancel, e.done = cancel, done
	e.running.Store(true)

	go e.loop(ctx, t, done)
	e.log.Info("simulation started")
}

// Stop halts ticking and waits for an in-flight tick to finish, so no state
// changes after it returns. Calling it while stopped is a no-op. Observers
// must not call Stop.
func (e *Engine) Stop() {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	if e.cancel == nil {
		return
	}

	e.cancel()
	<-e.done
	e.cancel, e.done = nil, nil
	e.running.Store(false)
	e.log.Info("simulation stopped", zap.Uint64("tick", e.Tick()))
}

// Running reports whether the periodic ticker is active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

func (e *Engine) loop(ctx context.Context, t Ticker, done chan struct{}) {
	defer close(done)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			e.Step()
		}
	}
}

// Step runs exactly one tick synchronously. It returns false without doing
// anything if another tick is still executing.
func (e *Engine) Step() bool {
	if !e.ticking.CompareAndSwap(false, true) {
		e.log.Debug("tick skipped, previous tick still running")
		return false
	}
	defer e.ticking.Store(false)

	// Only a tick writes clock and fields, and ticks are serialised by the
	// flag above, so they can be read here without the lock.
	clock := e.clock.Add(e.cfg.TickAdvance)
	amb := e.cfg.Physics.AmbientAt(HourOfDay(clock))

	next := make(map[string]FieldState, len(e.fields))
	for _, id := range e.cfg.FieldIDs {
		next[id] = e.advance(e.fields[id], amb, clock)
	}

	e.mu.Lock()
	e.clock = clock
	e.fields = next
	e.tick++
	e.history.push(next[e.cfg.ReferenceField])
	snap := e.snapshotLocked()
	e.mu.Unlock()

	e.log.Debug("tick",
		zap.Uint64("tick", snap.Tick),
		zap.Time("simulated_time", clock),
		zap.Float64("ambient_temp", amb.Temperature),
		zap.Float64("ambient_humidity", amb.Humidity),
	)
	e.notify(snap)
	return true
}

func (e *Engine) advance(prev FieldState, amb Ambient, at time.Time) FieldState {
	p := e.cfg.Physics
	floor := e.cfg.MoistureFloor

	moisture := prev.SoilMoisture - p.EvaporationRate(amb.Temperature)
	if moisture < floor {
		moisture = floor
	}
	moisture = clamp(moisture+jitter(e.rng, p.MoistureNoise), floor, 100)

	return FieldState{
		FieldID:      prev.FieldID,
		Timestamp:    at,
		SoilMoisture: moisture,
		Temperature:  amb.Temperature + jitter(e.rng, p.TemperatureNoise),
		Humidity:     clamp(amb.Humidity+jitter(e.rng, p.HumidityNoise), 0, 100),
		EC:           prev.EC,
	}
}

// FieldState returns the current state of one field.
func (e *Engine) FieldState(id string) (FieldState, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.fields[id]
	if !ok {
		return FieldState{}, &NotFoundError{FieldID: id}
	}
	return s, nil
}

// AllFieldStates returns a copy of every field's current state.
func (e *Engine) AllFieldStates() map[string]FieldState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneFields(e.fields)
}

// History returns the recorded reference-field readings, oldest first.
func (e *Engine) History() []FieldState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.history.items()
}

// SimulatedTime returns the current simulated clock.
func (e *Engine) SimulatedTime() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.clock
}

// Tick returns the number of completed ticks.
func (e *Engine) Tick() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.tick
}

// Snapshot returns the clock, tick count and all field states as of the same
// tick.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{SimulatedTime: e.clock, Tick: e.tick, Fields: cloneFields(e.fields)}
}

// FieldIDs returns the configured field ids in configuration order.
func (e *Engine) FieldIDs() []string {
	return append([]string(nil), e.cfg.FieldIDs...)
}

// ReferenceField is the field whose readings make up History.
func (e *Engine) ReferenceField() string { return e.cfg.ReferenceField }

// Physics returns the model constants in use.
func (e *Engine) Physics() Physics { return e.cfg.Physics }

// Subscribe registers fn to receive every published snapshot. fn runs on the
// ticking goroutine after the lock is released and must not block. The
// returned func removes the subscription.
func (e *Engine) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	e.obsMu.Lock()
	id := e.nextObs
	e.nextObs++
	e.observers[id] = fn
	e.obsMu.Unlock()

	return func() {
		e.obsMu.Lock()
		delete(e.observers, id)
		e.obsMu.Unlock()
	}
}

func (e *Engine) notify(s Snapshot) {
	e.obsMu.Lock()
	fns := make([]func(Snapshot), 0, len(e.observers))
	for _, fn := range e.observers {
		fns = append(fns, fn)
	}
	e.obsMu.Unlock()

	for _, fn := range fns {
		fn(Snapshot{SimulatedTime: s.SimulatedTime, Tick: s.Tick, Fields: cloneFields(s.Fields)})
	}
}

func cloneFields(in map[string]FieldState) map[string]FieldState {
	out := make(map[string]FieldState, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
