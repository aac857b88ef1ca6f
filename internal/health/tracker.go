package health

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"moviehub/internal/appconfig"
	"moviehub/internal/errlog"
	"moviehub/internal/events"
	"moviehub/pkg/models"
)

// windowSize bounds the moving window used for success_rate and
// avg_response_time_ms: the last 50 outcomes per source.
const windowSize = 50

type outcome struct {
	success   bool
	latencyMs float64
}

// sourceState carries the per-source lock and the in-memory outcome
// window. The lock serializes ReportOutcome/SetEnabled per source so
// the threshold crossing is detected exactly once; different sources
// never contend.
type sourceState struct {
	mu     sync.Mutex
	window []outcome
}

// Tracker owns source health state: rolling statistics, the derived
// online flag, and the consecutive-failure circuit breaker.
type Tracker struct {
	Repo   *Repo
	Ledger *errlog.Repo
	Config *appconfig.Store
	Hub    *events.Hub

	mu     sync.Mutex
	states map[string]*sourceState
}

func NewTracker(repo *Repo, ledger *errlog.Repo, cfg *appconfig.Store, hub *events.Hub) *Tracker {
	return &Tracker{
		Repo:   repo,
		Ledger: ledger,
		Config: cfg,
		Hub:    hub,
		states: make(map[string]*sourceState),
	}
}

func (t *Tracker) state(name string) *sourceState {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.states[name]
	if !ok {
		st = &sourceState{}
		t.states[name] = st
	}
	return st
}

// ReportOutcome ingests one fetch result for a source. On the
// configured run of consecutive failures it disables the source and
// records a single critical event on the ledger.
func (t *Tracker) ReportOutcome(ctx context.Context, name string, success bool, latencyMs float64) (*models.SourceHealth, error) {
	if name == "" {
		return nil, models.NewValidationError("source_name", "required")
	}

	threshold, err := t.Config.GetInt(ctx, appconfig.KeyFailureThreshold)
	if err != nil {
		return nil, err
	}
	onlineWindow, err := t.onlineWindow(ctx)
	if err != nil {
		return nil, err
	}

	st := t.state(name)
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := t.Repo.GetOrCreate(ctx, name)
	if err != nil {
		return nil, err
	}

	st.window = append(st.window, outcome{success: success, latencyMs: latencyMs})
	if len(st.window) > windowSize {
		st.window = st.window[len(st.window)-windowSize:]
	}

	successes := 0
	var latencySum float64
	for _, o := range st.window {
		if o.success {
			successes++
		}
		latencySum += o.latencyMs
	}
	s.SuccessRate = float64(successes) / float64(len(st.window))
	s.AvgResponseTimeMs = latencySum / float64(len(st.window))

	now := time.Now().UTC()
	s.LastCheck = &now

	tripped := false
	if success {
		s.ConsecutiveFailures = 0
		s.LastSuccess = &now
	} else {
		s.ConsecutiveFailures++
		// exactly-once trip: only the report that reaches the
		// threshold flips the breaker
		if s.IsEnabled && s.ConsecutiveFailures == threshold {
			s.IsEnabled = false
			tripped = true
		}
	}
	s.IsOnline = online(s, now, onlineWindow)

	if err := t.Repo.Update(ctx, s); err != nil {
		return nil, err
	}

	if tripped {
		msg := fmt.Sprintf("source %s auto-disabled after %d consecutive failures", name, s.ConsecutiveFailures)
		log.Printf("[health] %s", msg)
		if _, err := t.Ledger.Record(ctx, errlog.RecordInput{
			Severity:  models.SeverityCritical,
			Source:    name,
			ErrorType: "circuit_breaker",
			Message:   msg,
		}); err != nil {
			log.Printf("[health] record trip event for %s: %v", name, err)
		}
		if t.Hub != nil {
			t.Hub.Broadcast(events.SourceTripped(name, msg))
		}
	}

	return s, nil
}

// SetEnabled is the operator override. Enabling always clears the
// failure counter so a fixed source gets a clean run at the breaker.
func (t *Tracker) SetEnabled(ctx context.Context, name string, enabled bool) (*models.SourceHealth, error) {
	st := t.state(name)
	st.mu.Lock()
	defer st.mu.Unlock()

	s, err := t.Repo.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("source %s: %w", name, models.ErrNotFound)
	}

	s.IsEnabled = enabled
	if enabled {
		s.ConsecutiveFailures = 0
	}
	if err := t.Repo.Update(ctx, s); err != nil {
		return nil, err
	}

	if t.Hub != nil {
		t.Hub.Broadcast(events.SourceToggled(name, enabled))
	}
	return s, nil
}

// ListSources returns all tracked sources ordered by name, with
// IsOnline recomputed against the current clock.
func (t *Tracker) ListSources(ctx context.Context) ([]models.SourceHealth, error) {
	onlineWindow, err := t.onlineWindow(ctx)
	if err != nil {
		return nil, err
	}
	sources, err := t.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	for i := range sources {
		sources[i].IsOnline = online(&sources[i], now, onlineWindow)
	}
	return sources, nil
}

// IsEligible reports whether a source may participate in resolution:
// operator-enabled and online. A source not seen before starts being
// tracked here, enabled and online by default.
func (t *Tracker) IsEligible(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, nil
	}
	onlineWindow, err := t.onlineWindow(ctx)
	if err != nil {
		return false, err
	}
	s, err := t.Repo.GetOrCreate(ctx, name)
	if err != nil {
		return false, err
	}
	return s.IsEnabled && online(s, time.Now().UTC(), onlineWindow), nil
}

func (t *Tracker) onlineWindow(ctx context.Context) (time.Duration, error) {
	minutes, err := t.Config.GetInt(ctx, appconfig.KeyOnlineWindowMin)
	if err != nil {
		return 0, err
	}
	return time.Duration(minutes) * time.Minute, nil
}

// online derives the heartbeat flag: a success inside the recency
// window, or no observed activity yet (a never-probed source gets the
// benefit of the doubt until its first failure is recorded).
func online(s *models.SourceHealth, now time.Time, window time.Duration) bool {
	if s.LastSuccess != nil {
		return now.Sub(*s.LastSuccess) <= window
	}
	return s.LastCheck == nil
}
