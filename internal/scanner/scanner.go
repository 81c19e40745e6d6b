package scanner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"ecosort/internal/capture"
	"ecosort/internal/classify"
	"ecosort/internal/store"
	"ecosort/internal/types"
	"ecosort/internal/vision"
)

// State of the scan controller.
type State string

const (
	// StateIdle: camera off, nothing running.
	StateIdle State = "idle"
	// StateCameraOn: device acquired but auto-scanning not yet active.
	// Start passes through it on the way to AutoScanning.
	StateCameraOn State = "camera_on"
	// StateAutoScanning: camera on, motion-triggered capture active.
	StateAutoScanning State = "auto_scanning"
	// StateClassifying: a classification call is in flight. The tick loop
	// withholds new triggers until it resolves.
	StateClassifying State = "classifying"
)

// Config holds controller tuning.
type Config struct {
	// TickInterval is the motion-detection poll cadence.
	TickInterval time.Duration

	// Cooldown is the minimum time between classification triggers, so a
	// held-steady object does not re-trigger every tick.
	Cooldown time.Duration

	// MotionThreshold is the minimum motion score that counts as a new
	// object presented.
	MotionThreshold int64

	// RefreshInterval is how often the reference frame is replaced so the
	// baseline adapts to slow lighting drift. Independent of Cooldown;
	// a refresh never counts as a trigger.
	RefreshInterval time.Duration
}

// DefaultConfig returns the tuning used by the demo app.
func DefaultConfig() Config {
	return Config{
		TickInterval:    500 * time.Millisecond,
		Cooldown:        3 * time.Second,
		MotionThreshold: 50000,
		RefreshInterval: 5 * time.Second,
	}
}

// Ledger records classification results against the active user.
// This allows mocking the progress store in tests.
type Ledger interface {
	AddCurrentEvent(category classify.Category, confidence float64) (store.Progress, error)
}

// subscriber wraps a channel with safe close handling
type subscriber struct {
	ch        chan *types.ScanEvent
	closeOnce sync.Once
	closed    bool
}

func (sub *subscriber) close() {
	sub.closeOnce.Do(func() {
		sub.closed = true
		close(sub.ch)
	})
}

func (sub *subscriber) send(event *types.ScanEvent) bool {
	if sub.closed {
		return false
	}
	select {
	case sub.ch <- event:
		return true
	default:
		return false
	}
}

// Controller is the automatic-scan state machine. It owns the capture
// cadence, the cooldown, and the reference-frame lifecycle, and invokes the
// classifier when motion crosses the threshold.
type Controller struct {
	device     capture.Device
	classifier classify.Classifier
	ledger     Ledger
	cfg        Config
	now        func() time.Time

	mu          sync.Mutex
	state       State
	reference   *vision.Frame
	lastTrigger time.Time
	lastRefresh time.Time
	generation  uint64 // bumped on every Start/Stop; stale results are discarded
	cancel      context.CancelFunc
	stopChan    chan struct{}
	wg          sync.WaitGroup // tracks the run loop and in-flight classification

	subMu       sync.RWMutex
	subscribers []*subscriber
}

// New creates a scan controller. Nothing runs until Start.
func New(device capture.Device, classifier classify.Classifier, ledger Ledger, cfg Config) *Controller {
	return &Controller{
		device:     device,
		classifier: classifier,
		ledger:     ledger,
		cfg:        cfg,
		now:        time.Now,
		state:      StateIdle,
	}
}

// State returns the current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe subscribes to controller events.
func (c *Controller) Subscribe() chan *types.ScanEvent {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	sub := &subscriber{
		ch: make(chan *types.ScanEvent, 16),
	}
	c.subscribers = append(c.subscribers, sub)
	return sub.ch
}

// Unsubscribe removes a subscriber
func (c *Controller) Unsubscribe(ch chan *types.ScanEvent) {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	for i, sub := range c.subscribers {
		if sub.ch == ch {
			// Remove from slice first, then close safely
			c.subscribers = append(c.subscribers[:i], c.subscribers[i+1:]...)
			sub.close()
			break
		}
	}
}

// broadcast sends an event to all subscribers
func (c *Controller) broadcast(event *types.ScanEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = c.now()
	}

	c.subMu.RLock()
	// Make a copy of the slice to avoid holding lock during send
	subs := make([]*subscriber, len(c.subscribers))
	copy(subs, c.subscribers)
	c.subMu.RUnlock()

	for _, sub := range subs {
		sub.send(event)
	}
}

// Start acquires the capture device and begins auto-scanning. Fails fast
// with capture.ErrDeviceUnavailable if acquisition fails, leaving the
// controller Idle. Starting while already running is a no-op.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return nil
	}

	if err := c.device.Acquire(ctx); err != nil {
		c.mu.Unlock()
		if errors.Is(err, capture.ErrDeviceUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", capture.ErrDeviceUnavailable, err)
	}

	// The nil reference makes the first sampled frame the baseline; the
	// zero trigger time means the first real motion is never cooldown
	// gated.
	c.state = StateAutoScanning
	c.reference = nil
	c.lastTrigger = time.Time{}
	c.lastRefresh = time.Time{}
	c.generation++
	c.stopChan = make(chan struct{})

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(runCtx)

	c.broadcast(&types.ScanEvent{Name: types.EventScanStarted})
	return nil
}

// Stop halts scanning from any state, cancels any in-flight classification,
// and releases the capture device exactly once. Idempotent from Idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	if c.state == StateIdle {
		c.mu.Unlock()
		return
	}
	c.state = StateIdle
	c.reference = nil
	c.generation++
	if c.cancel != nil {
		c.cancel()
	}
	close(c.stopChan)
	c.mu.Unlock()

	// Wait for the tick loop and any classification goroutine so a stale
	// result cannot race the device release.
	c.wg.Wait()
	c.device.Release()

	c.broadcast(&types.ScanEvent{Name: types.EventScanStopped})
}

// run is the tick loop.
func (c *Controller) run(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx, c.now())
		}
	}
}

// tick runs one motion-detection step. It is a non-blocking poll: it skips
// cleanly while a classification is in flight or the cooldown has not
// elapsed.
func (c *Controller) tick(ctx context.Context, now time.Time) {
	c.mu.Lock()

	if c.state != StateAutoScanning {
		c.mu.Unlock()
		return
	}

	if now.Sub(c.lastTrigger) < c.cfg.Cooldown {
		c.mu.Unlock()
		return
	}

	frame, err := c.device.SampleFrame()
	if err != nil {
		c.mu.Unlock()
		if !errors.Is(err, capture.ErrNoFrame) {
			log.Printf("scanner: frame sample failed: %v", err)
		}
		return
	}

	if c.reference == nil {
		// First sample becomes the baseline, never a trigger.
		c.reference = frame
		c.lastRefresh = now
		c.mu.Unlock()
		c.broadcast(&types.ScanEvent{Name: types.EventFrameCaptured})
		return
	}

	score, err := vision.MotionScore(c.reference, frame)
	if err != nil {
		c.mu.Unlock()
		// Dimension mismatch is an invariant violation: fatal to the
		// session. Stop must not run on the tick goroutine itself, as
		// it waits for the tick loop to drain.
		log.Printf("scanner: motion scoring failed, stopping: %v", err)
		go c.Stop()
		return
	}

	// Refresh the baseline on its own cadence so a removed object does
	// not leave a permanent false motion floor. Never a trigger, and
	// deliberately on a separate timer from the cooldown.
	if now.Sub(c.lastRefresh) >= c.cfg.RefreshInterval {
		c.reference = frame
		c.lastRefresh = now
	}

	if score <= c.cfg.MotionThreshold {
		c.mu.Unlock()
		c.broadcast(&types.ScanEvent{Name: types.EventFrameCaptured})
		return
	}

	c.lastTrigger = now
	c.state = StateClassifying
	generation := c.generation
	c.mu.Unlock()

	c.broadcast(&types.ScanEvent{Name: types.EventMotionTriggered, Score: score})

	c.wg.Add(1)
	go c.classifyFrame(ctx, generation, frame)
}

// classifyFrame runs one classification and forwards the result to the
// ledger. A result arriving after Stop (or after a restart) is discarded.
func (c *Controller) classifyFrame(ctx context.Context, generation uint64, frame *vision.Frame) {
	defer c.wg.Done()

	result, err := c.classifier.Classify(ctx, frame)

	c.mu.Lock()
	if c.generation != generation || c.state != StateClassifying || ctx.Err() != nil {
		c.mu.Unlock()
		log.Printf("scanner: discarding classification result after stop")
		return
	}
	c.mu.Unlock()

	// The state stays Classifying until the result is fully applied, so
	// the tick loop cannot trigger while the ledger write is in flight.
	defer func() {
		c.mu.Lock()
		if c.generation == generation && c.state == StateClassifying {
			c.state = StateAutoScanning
		}
		c.mu.Unlock()
	}()

	if err != nil {
		// Transient: the loop continues on the next tick, no points
		// awarded.
		log.Printf("scanner: classifier failed: %v", err)
		c.broadcast(&types.ScanEvent{Name: types.EventClassifierError, Error: err.Error()})
		return
	}

	progress, err := c.ledger.AddCurrentEvent(result.Category, result.Confidence)
	if err != nil {
		log.Printf("scanner: failed to record result: %v", err)
		c.broadcast(&types.ScanEvent{
			Name:       types.EventClassifierError,
			Category:   string(result.Category),
			Confidence: result.Confidence,
			Error:      err.Error(),
		})
		return
	}

	c.broadcast(&types.ScanEvent{
		Name:       types.EventClassificationResult,
		Category:   string(result.Category),
		Confidence: result.Confidence,
		Level:      classify.ConfidenceLevel(result.Confidence),
		Points:     progress.Points,
		BadgeTier:  progress.BadgeTier,
	})
}
