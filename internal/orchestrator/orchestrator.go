// Package orchestrator implements the session lifecycle (spec §4.5): the
// single owner of all mutable analysis state (the stats map, the chain
// analyzer's pending window, the suggester's view of both), driven by a
// single-threaded cooperative event loop exactly as spec §5 requires. A
// transport's ReadLoop runs on its own goroutine and forwards decoded
// messages here; everything that touches orchestrator state happens on
// the one loop goroutine, mirroring the teacher's ReadLoop/WriteLoop/
// EventLoop split in its own session type.
package orchestrator

import (
	"context"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/reactcheck/reactcheck/internal/bus"
	"github.com/reactcheck/reactcheck/internal/chain"
	"github.com/reactcheck/reactcheck/internal/errs"
	"github.com/reactcheck/reactcheck/internal/metrics"
	"github.com/reactcheck/reactcheck/internal/model"
	"github.com/reactcheck/reactcheck/internal/stats"
	"github.com/reactcheck/reactcheck/internal/suggest"
	"github.com/reactcheck/reactcheck/internal/tracing"
	"github.com/reactcheck/reactcheck/internal/wire"
)

type cmdKind int

const (
	cmdStart cmdKind = iota
	cmdPause
	cmdResume
	cmdReset
	cmdConfigure
	cmdStop
)

type command struct {
	kind   cmdKind
	cfg    model.Configuration
	reply  chan error
	report chan model.SessionReport
}

// Orchestrator owns one session: its state machine, its stats collector
// and chain analyzer, and the bus its caller subscribes to. Create one
// per probe connection (or per synthetic test session); it is not
// reusable across sessions once Stop has returned.
type Orchestrator struct {
	bus    *bus.Bus
	logger *slog.Logger

	control chan command
	q       *queue
	done    chan struct{}

	conn closer

	mu          sync.Mutex
	state       State
	cfg         model.Configuration
	dispatching bool // true while the loop goroutine is inside bus.Publish

	statsImpl *stats.Collector
	chainImpl *chain.Analyzer
	tracer    *tracing.Tracer
	metrics   *metrics.Collector

	session     model.SessionDescriptor
	framework   *model.FrameworkDescriptor
	probeErrors int

	chains []model.RenderChain

	fpsSum   float64
	fpsCount int
	fpsMin   float64
	fpsSeen  bool

	stopOnce   sync.Once
	stopReport model.SessionReport
	stopErr    error
	stopped    chan struct{}

	loopExited chan struct{}
}

// closer is the subset of transport.Conn the orchestrator needs to
// release a session's socket on every exit path (spec §4.5's "sockets
// are scoped to a session" requirement). A nil closer is valid: tests
// driving the orchestrator with synthetic events need no real socket.
type closer interface {
	Close(code int, message string) error
}

// New creates an idle Orchestrator for one session. conn may be nil, as
// may logger (defaulting to slog.Default).
func New(session model.SessionDescriptor, cfg model.Configuration, conn closer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	b := bus.New()
	o := &Orchestrator{
		bus:        b,
		logger:     logger.With("component", "orchestrator", "session_id", session.SessionID),
		control:    make(chan command),
		done:       make(chan struct{}),
		conn:       conn,
		state:      StateIdle,
		cfg:        cfg,
		session:    session,
		stopped:    make(chan struct{}),
		loopExited: make(chan struct{}),
		tracer:     tracing.New(""),
	}
	o.q = newQueue(cfg.MaxQueuedEvents, o.recordDrop, o.isChainRoot)
	o.statsImpl = stats.New(Thresholds(cfg), cfg.TrackUnnecessary, b)
	o.chainImpl = chain.New(cfg.ChainWindow, cfg.ContextTriggerMinConsumers, b)
	b.Subscribe(bus.TopicChain, func(payload any) {
		rc, ok := payload.(model.RenderChain)
		if !ok {
			return
		}
		o.mu.Lock()
		o.chains = append(o.chains, rc)
		o.mu.Unlock()
		for _, name := range rc.Components {
			o.statsImpl.SetChain(name, rc.Components)
		}
	})
	go o.run()
	return o
}

// Thresholds adapts a Configuration's render-count floors to the stats
// package's Thresholds type.
func Thresholds(cfg model.Configuration) stats.Thresholds {
	return stats.Thresholds{Critical: cfg.CriticalThreshold, Warning: cfg.WarningThreshold}
}

// Subscribe registers fn for events published on topic. Must not be
// called from within a handler already subscribed on this bus.
func (o *Orchestrator) Subscribe(topic bus.Topic, fn bus.Handler) {
	o.bus.Subscribe(topic, fn)
}

// SetMetrics attaches a Prometheus collector to this session's event
// bus. Callers own the Collector's lifetime (and registry) so that
// multiple sessions in the same process can share one registration.
// Must be called before Start.
func (o *Orchestrator) SetMetrics(m *metrics.Collector) {
	o.metrics = m
	if m != nil {
		m.Attach(o.bus)
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// HandleInbound is the transport's ReadLoop callback: it enqueues a
// decoded message for the owning loop goroutine, coalescing under
// back-pressure per spec §5.
func (o *Orchestrator) HandleInbound(msg wire.Inbound) {
	o.q.push(msg)
}

// HandleMalformed is the transport's ReadLoop callback for a frame that
// failed to decode: it counts toward the report's probeErrors without
// otherwise affecting session state, per spec §4.1's failure semantics.
func (o *Orchestrator) HandleMalformed() {
	o.mu.Lock()
	o.probeErrors++
	o.mu.Unlock()
}

// HandleConnectionLoss signals that the transport connection ended
// unexpectedly. Per spec §7, loss of the probe connection surfaces to
// the orchestrator, which transitions to stopped.
func (o *Orchestrator) HandleConnectionLoss() {
	select {
	case <-o.done:
	default:
		close(o.done)
	}
}

// Ingest feeds a single RenderEvent directly, bypassing the wire codec.
// Intended for embedding without a live probe connection and for tests
// exercising the orchestrator's dispatch without a transport.
func (o *Orchestrator) Ingest(ev model.RenderEvent) {
	o.HandleInbound(wire.Inbound{
		Type: wire.InboundRender,
		Render: &wire.RenderPayload{
			ComponentName: ev.ComponentName,
			RenderTime:    ev.RenderTime,
			Phase:         ev.Phase,
			Necessary:     ev.Necessary,
			Timestamp:     ev.Timestamp,
			InstanceID:    ev.InstanceID,
			ChangedProps:  ev.ChangedProps,
			ChangedState:  ev.ChangedState,
		},
	})
}

// Configure applies a new, already-validated Configuration (see
// internal/config.Validate); it performs no validation itself. Allowed in any
// non-stopped state; threshold and filter changes take effect
// immediately (spec §8 scenario 5). The chain window and context-trigger
// K are fixed at construction and are not live-reconfigurable.
func (o *Orchestrator) Configure(cfg model.Configuration) error {
	return o.submit(command{kind: cmdConfigure, cfg: cfg, reply: make(chan error, 1)})
}

// Start transitions idle → running.
func (o *Orchestrator) Start() error {
	return o.submit(command{kind: cmdStart, reply: make(chan error, 1)})
}

// Pause transitions running → paused.
func (o *Orchestrator) Pause() error {
	return o.submit(command{kind: cmdPause, reply: make(chan error, 1)})
}

// Resume transitions paused → running.
func (o *Orchestrator) Resume() error {
	return o.submit(command{kind: cmdResume, reply: make(chan error, 1)})
}

// Reset clears all collected stats and detected chains (any open chain
// window is closed and discarded) without changing the lifecycle state.
// Recorded parent edges are kept.
func (o *Orchestrator) Reset() error {
	return o.submit(command{kind: cmdReset, reply: make(chan error, 1)})
}

// Stop flushes the open chain window, enumerates suggestions, assembles
// the SessionReport, and transitions to stopped (terminal). Stop is
// idempotent: a second call returns the same report without re-running
// assembly.
func (o *Orchestrator) Stop() (model.SessionReport, error) {
	select {
	case <-o.stopped:
		return o.stopReport, o.stopErr
	default:
	}

	cmd := command{kind: cmdStop, reply: make(chan error, 1), report: make(chan model.SessionReport, 1)}
	if err := o.submit(cmd); err != nil {
		// The loop may have exited through connection loss, which already
		// assembled and stored a partial report.
		select {
		case <-o.stopped:
			return o.stopReport, o.stopErr
		default:
		}
		return model.SessionReport{}, err
	}
	select {
	case r := <-cmd.report:
		return r, nil
	case <-o.stopped:
		return o.stopReport, o.stopErr
	}
}

// submit sends cmd to the loop and waits for its reply. It panics
// immediately, rather than deadlocking, if called while the calling
// goroutine is itself the loop goroutine mid-dispatch — the forbidden
// re-entrant-call-from-a-handler pattern in spec §6.3.
func (o *Orchestrator) submit(cmd command) error {
	o.mu.Lock()
	if o.dispatching {
		o.mu.Unlock()
		panic("orchestrator: control method called re-entrantly from within a bus handler")
	}
	o.mu.Unlock()

	select {
	case o.control <- cmd:
	case <-o.loopExited:
		return errs.New(errs.ConnectionFailed, "orchestrator", "session already stopped")
	}
	select {
	case err := <-cmd.reply:
		return err
	case <-o.loopExited:
		return nil
	}
}

func (o *Orchestrator) run() {
	defer close(o.loopExited)

	interval := o.cfg.ChainWindow
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case cmd := <-o.control:
			stop := o.handleControl(cmd)
			if stop {
				return
			}
		case <-o.q.notify:
			o.drainQueue()
		case <-ticker.C:
			o.publish(func() { o.chainImpl.Flush() })
		case <-o.done:
			o.handleConnectionLoss()
			return
		}
	}
}

// publish runs fn (expected to call into the bus) with the re-entrancy
// guard engaged, so a handler it triggers cannot call back into a
// control method without tripping submit's panic.
func (o *Orchestrator) publish(fn func()) {
	o.mu.Lock()
	o.dispatching = true
	o.mu.Unlock()

	fn()

	o.mu.Lock()
	o.dispatching = false
	o.mu.Unlock()
}

func (o *Orchestrator) handleControl(cmd command) (stop bool) {
	// Drain whatever has already been pushed onto the inbound queue before
	// acting on the command: a control call issued after a run of Ingest
	// calls must observe their effects, not race the queue's own notify
	// signal for the loop's attention.
	o.drainQueue()

	o.mu.Lock()
	st := o.state
	o.mu.Unlock()

	switch cmd.kind {
	case cmdConfigure:
		o.mu.Lock()
		o.cfg = cmd.cfg
		o.mu.Unlock()
		o.publish(func() {
			o.statsImpl.SetThresholds(Thresholds(cmd.cfg))
		})
		cmd.reply <- nil

	case cmdStart:
		if st == StateIdle {
			o.setState(StateRunning)
		}
		cmd.reply <- nil

	case cmdPause:
		if st == StateRunning {
			o.setState(StatePaused)
		}
		cmd.reply <- nil

	case cmdResume:
		if st == StatePaused {
			o.setState(StateRunning)
		}
		cmd.reply <- nil

	case cmdReset:
		o.publish(func() { o.chainImpl.Flush() })
		o.statsImpl.Reset()
		o.mu.Lock()
		o.chains = nil
		o.probeErrors = 0
		o.fpsSum, o.fpsCount, o.fpsMin, o.fpsSeen = 0, 0, 0, false
		o.mu.Unlock()
		cmd.reply <- nil

	case cmdStop:
		report := o.assembleReport()
		o.finishStop(report, nil)
		cmd.reply <- nil
		if cmd.report != nil {
			cmd.report <- report
		}
		return true
	}
	return false
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	prev := o.state
	o.state = s
	o.mu.Unlock()
	o.logger.Debug("state transition", "from", prev.String(), "to", s.String())
}

func (o *Orchestrator) finishStop(report model.SessionReport, err error) {
	o.stopOnce.Do(func() {
		o.stopReport, o.stopErr = report, err
		o.setState(StateStopped)
		if o.conn != nil {
			o.conn.Close(1001, "session stopped")
		}
		close(o.stopped)
	})
}

// handleConnectionLoss implements spec §7's "loss of probe connection"
// propagation: transition to stopped and assemble whatever partial
// report has been collected so far.
func (o *Orchestrator) handleConnectionLoss() {
	o.logger.Warn("probe connection lost, assembling partial report")
	o.drainQueue()
	report := o.assembleReport()
	o.finishStop(report, nil)
}

func (o *Orchestrator) drainQueue() {
	msgs := o.q.drain()
	for _, msg := range msgs {
		o.dispatch(msg)
	}
}

func (o *Orchestrator) dispatch(msg wire.Inbound) {
	o.mu.Lock()
	st := o.state
	cfg := o.cfg
	o.mu.Unlock()

	switch msg.Type {
	case wire.InboundRender:
		if msg.Render == nil || !st.canIngest() {
			return
		}
		if filteredOut(cfg, msg.Render.ComponentName) {
			return
		}
		ev := msg.Render.ToEvent()
		_, span := o.tracer.Ingest(context.Background(), ev.ComponentName)
		o.publish(func() {
			o.statsImpl.Ingest(ev)
			o.chainImpl.Ingest(ev)
		})
		tracing.End(span, nil)

	case wire.InboundChain:
		// Probe-supplied chains are advisory only (spec §4.5); the
		// analyzer's own output remains authoritative, so this is a
		// deliberate no-op.

	case wire.InboundFPS:
		if msg.FPS == nil {
			return
		}
		o.recordFPS(*msg.FPS, cfg)

	case wire.InboundComponentTree:
		o.applyComponentTree(msg.ComponentTree, "")

	case wire.InboundReady:
		if msg.Ready == nil {
			return
		}
		o.publish(func() { o.bus.Publish(bus.TopicReady, *msg.Ready) })

	case wire.InboundError:
		if msg.Error == nil {
			return
		}
		o.logger.Warn("probe reported error", "code", msg.Error.Code, "message", msg.Error.Message)
		o.mu.Lock()
		o.probeErrors++
		o.mu.Unlock()
		o.publish(func() { o.bus.Publish(bus.TopicError, *msg.Error) })

	default:
		// Unknown types are decoded as Unknown:true with no typed
		// field populated; nothing to dispatch.
	}
}

func (o *Orchestrator) recordFPS(fps float64, cfg model.Configuration) {
	o.mu.Lock()
	o.fpsSum += fps
	o.fpsCount++
	if !o.fpsSeen || fps < o.fpsMin {
		o.fpsMin = fps
		o.fpsSeen = true
	}
	o.mu.Unlock()

	if fps < cfg.FPSThreshold {
		o.publish(func() { o.bus.Publish(bus.TopicFPSDrop, fps) })
	}
}

func (o *Orchestrator) applyComponentTree(nodes []wire.ComponentNode, parent string) {
	for _, n := range nodes {
		if parent != "" {
			o.statsImpl.SetParent(n.Name, parent)
			o.chainImpl.SetParent(n.Name, parent)
		}
		o.applyComponentTree(n.Children, n.Name)
	}
}

func (o *Orchestrator) recordDrop(component string) {
	o.logger.Debug("coalesced event under back-pressure", "target_component", component)
	o.statsImpl.RecordDrop(component)
	if o.metrics != nil {
		o.metrics.RecordDrop()
	}
}

// isChainRoot reports whether component was the root cause of the most
// recent chain it appeared on (its recorded ChainPath starts with it);
// the back-pressure queue must never silently drop such an
// event, per spec §5's "not on a chain root" carve-out.
func (o *Orchestrator) isChainRoot(component string) bool {
	st := o.statsImpl.Get(component)
	return st != nil && len(st.ChainPath) > 0 && st.ChainPath[0] == component
}

func filteredOut(cfg model.Configuration, name string) bool {
	for _, pat := range cfg.Exclude {
		if ok, _ := path.Match(pat, name); ok {
			return true
		}
	}
	if len(cfg.Include) == 0 {
		return false
	}
	for _, pat := range cfg.Include {
		if ok, _ := path.Match(pat, name); ok {
			return false
		}
	}
	return true
}

// assembleReport implements the three-step `stop` sequence from spec
// §4.5: flush the open chain window, enumerate suggestions for every
// component at warning-or-above, and assemble the SessionReport.
func (o *Orchestrator) assembleReport() model.SessionReport {
	o.mu.Lock()
	sessionID := o.session.SessionID
	o.mu.Unlock()
	_, span := o.tracer.ReportAssembly(context.Background(), sessionID)
	defer tracing.End(span, nil)

	_, chainSpan := o.tracer.ChainClose(context.Background())
	o.chainImpl.Flush()
	tracing.End(chainSpan, nil)

	snapshot := o.statsImpl.Snapshot()
	if o.metrics != nil {
		o.metrics.SetSnapshot(snapshot)
	}
	byName := make(map[string]*model.ComponentStats, len(snapshot))
	for _, st := range snapshot {
		byName[st.ComponentName] = st
	}

	o.mu.Lock()
	cfg := o.cfg
	chains := append([]model.RenderChain(nil), o.chains...)
	o.mu.Unlock()

	ctx := suggest.Context{
		Stats:              byName,
		Chains:             chains,
		WarningThreshold:   cfg.WarningThreshold,
		CriticalThreshold:  cfg.CriticalThreshold,
		AvgTimeThresholdMs: cfg.UsefulComputationThresholdMs,
	}

	var suggestions []model.FixSuggestion
	for _, st := range snapshot {
		if st.Severity.Rank() < model.SeverityWarning.Rank() {
			continue
		}
		fs := suggest.For(ctx, st)
		st.Suggestions = fs
		suggestions = append(suggestions, fs...)
	}

	summary := o.statsImpl.Summary()
	o.mu.Lock()
	summary.ProbeErrors = o.probeErrors
	if o.fpsCount > 0 {
		summary.AverageFPS = o.fpsSum / float64(o.fpsCount)
	}
	if o.fpsSeen {
		summary.MinFPS = o.fpsMin
	}
	session := o.session
	framework := o.framework
	o.mu.Unlock()

	generatedAt := time.Now().UnixMilli()
	if session.StartedAt > 0 {
		session.Duration = time.Duration(generatedAt-session.StartedAt) * time.Millisecond
		session.DurationMs = generatedAt - session.StartedAt
	}

	o.logger.Info("report assembled",
		"components", summary.UniqueComponents,
		"renders", summary.TotalRenders,
		"chains", len(chains),
		"suggestions", len(suggestions),
		"critical", summary.CriticalCount)

	return model.SessionReport{
		Version:     model.ReportFormatVersion,
		GeneratedAt: generatedAt,
		Session:     session,
		Summary:     summary,
		Components:  snapshot,
		Chains:      chains,
		Suggestions: suggestions,
		Framework:   framework,
		Timeline:    []any{},
	}
}
