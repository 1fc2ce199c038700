package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// State of one attempt session. Transitions:
// checking-existing -> {no-diagnostic, has-existing} -> starting/resuming ->
// in-progress -> submitting -> done, with error reachable from the three
// transient states and recoverable by manual retry.
type State string

const (
	StateNoDiagnostic State = "no-diagnostic"
	StateHasExisting  State = "has-existing"
	StateInProgress   State = "in-progress"
	StateSubmitting   State = "submitting"
	StateDone         State = "done"
	StateError        State = "error"
)

var (
	ErrInvalidChoice = errors.New("answer must be a single letter A-D")
	ErrNoSession     = errors.New("no active diagnostic session")
)

// StartInfo is what a start or resume call yields from the diagnostic layer.
type StartInfo struct {
	DiagnosticID   uuid.UUID
	CreatedAt      time.Time
	TimeLimit      int // minutes
	TotalQuestions int
	IsExisting     bool
}

// Submitter hands a finished answer set to the grading layer.
type Submitter interface {
	Submit(key Key, diagnosticID uuid.UUID, answers map[string]string) (resultID string, err error)
}

// Session is one user's in-flight timed attempt for one chapter.
type Session struct {
	mu sync.Mutex

	key            Key
	state          State
	diagnosticID   uuid.UUID
	createdAt      time.Time
	timeLimit      int
	totalQuestions int
	isExisting     bool
	answers        map[string]string
	resultID       string
	lastErr        error
	submitting     bool

	stopTick chan struct{}
	tickOnce sync.Once
}

// Remaining seconds, derived from the server-assigned creation timestamp so a
// resume or late arrival reflects elapsed time instead of resetting the clock.
func (s *Session) remainingAt(now time.Time) int {
	total := s.timeLimit * 60
	elapsed := int(now.Sub(s.createdAt).Seconds())
	if elapsed >= total {
		return 0
	}
	return total - elapsed
}

// Snapshot is a consistent read of the session for rendering state.
type Snapshot struct {
	State          State
	DiagnosticID   uuid.UUID
	Chapter        string
	Remaining      int
	TotalQuestions int
	AnsweredCount  int
	Answers        map[string]string
	IsExisting     bool
	ResultID       string
	Err            error
}

func (s *Session) snapshot(now time.Time) Snapshot {
	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	return Snapshot{
		State:          s.state,
		DiagnosticID:   s.diagnosticID,
		Chapter:        s.key.Chapter,
		Remaining:      s.remainingAt(now),
		TotalQuestions: s.totalQuestions,
		AnsweredCount:  len(answers),
		Answers:        answers,
		IsExisting:     s.isExisting,
		ResultID:       s.resultID,
		Err:            s.lastErr,
	}
}

// Manager owns every active attempt session and the start-lock store.
type Manager struct {
	mu       sync.Mutex
	sessions map[Key]*Session
	starting map[Key]chan struct{}
	locks    *LockStore

	submitter Submitter
	now       func() time.Time
	tick      time.Duration
}

func NewManager(submitter Submitter, locks *LockStore) *Manager {
	return &Manager{
		sessions:  make(map[Key]*Session),
		starting:  make(map[Key]chan struct{}),
		locks:     locks,
		submitter: submitter,
		now:       time.Now,
		tick:      time.Second,
	}
}

// SetClock overrides the time source and tick interval. Test hook.
func (m *Manager) SetClock(now func() time.Time, tick time.Duration) {
	m.now = now
	m.tick = tick
}

// Start begins (or resumes, when the lock is already held) an attempt.
// start is invoked only when no lock is held for the key; a second start
// attempt in the same server session is a no-op returning the live session.
// The lock is marked only after start succeeds, so a transient failure can be
// retried.
func (m *Manager) Start(key Key, start func() (*StartInfo, error)) (Snapshot, error) {
	// Claim the key before invoking start. A concurrent second call for the
	// same key waits on the first attempt's pending channel instead of
	// issuing its own generation call; it retries the claim only if the
	// first attempt failed.
	var pending chan struct{}
	for {
		m.mu.Lock()
		if existing, ok := m.sessions[key]; ok && m.locks.Held(key) {
			m.mu.Unlock()
			existing.mu.Lock()
			defer existing.mu.Unlock()
			return existing.snapshot(m.now()), nil
		}
		inFlight, ok := m.starting[key]
		if !ok {
			pending = make(chan struct{})
			m.starting[key] = pending
			m.mu.Unlock()
			break
		}
		m.mu.Unlock()
		<-inFlight
	}

	info, err := start()
	if err != nil {
		m.abandonStart(key, pending)
		return Snapshot{State: StateError, Chapter: key.Chapter, Err: err}, err
	}
	if info.DiagnosticID == uuid.Nil {
		err := fmt.Errorf("diagnostic record is missing an identifier")
		m.abandonStart(key, pending)
		return Snapshot{State: StateError, Chapter: key.Chapter, Err: err}, err
	}

	sess := &Session{
		key:            key,
		state:          StateInProgress,
		diagnosticID:   info.DiagnosticID,
		createdAt:      info.CreatedAt,
		timeLimit:      info.TimeLimit,
		totalQuestions: info.TotalQuestions,
		isExisting:     info.IsExisting,
		answers:        make(map[string]string),
		stopTick:       make(chan struct{}),
	}

	// Mark the lock before releasing the mutex so a waiter retrying the
	// claim observes the session and the held lock together.
	m.mu.Lock()
	m.sessions[key] = sess
	m.locks.Mark(key)
	delete(m.starting, key)
	m.mu.Unlock()
	close(pending)

	now := m.now()
	if sess.remainingAt(now) <= 0 {
		// Arrived after expiry: consume the attempt immediately.
		go m.submit(sess)
	} else {
		go m.runCountdown(sess)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(now), nil
}

// abandonStart releases the in-flight claim after a failed start so the
// attempt can be retried, by this caller or a waiting one.
func (m *Manager) abandonStart(key Key, pending chan struct{}) {
	m.mu.Lock()
	delete(m.starting, key)
	m.mu.Unlock()
	close(pending)
}

// runCountdown ticks once a second while time remains and no submission has
// begun. Reaching zero triggers exactly one submit; the ticker is stopped,
// not rescheduled, the moment submission starts.
func (m *Manager) runCountdown(sess *Session) {
	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()
	for {
		select {
		case <-sess.stopTick:
			return
		case <-ticker.C:
			sess.mu.Lock()
			expired := sess.remainingAt(m.now()) <= 0 && !sess.submitting && sess.state == StateInProgress
			sess.mu.Unlock()
			if expired {
				m.submit(sess)
				return
			}
		}
	}
}

// Answer records or overwrites one choice. Never blocks submission when the
// set is incomplete.
func (m *Manager) Answer(key Key, questionID, choice string) (Snapshot, error) {
	sess := m.get(key)
	if sess == nil {
		return Snapshot{State: StateNoDiagnostic, Chapter: key.Chapter}, ErrNoSession
	}
	choice = strings.ToUpper(strings.TrimSpace(choice))
	if len(choice) != 1 || choice[0] < 'A' || choice[0] > 'D' {
		return Snapshot{}, ErrInvalidChoice
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state == StateInProgress {
		sess.answers[questionID] = choice
	}
	return sess.snapshot(m.now()), nil
}

// Submit triggers grading. No-op when a submission is already underway or no
// diagnostic is loaded.
func (m *Manager) Submit(key Key) (Snapshot, error) {
	sess := m.get(key)
	if sess == nil {
		return Snapshot{State: StateNoDiagnostic, Chapter: key.Chapter}, ErrNoSession
	}
	m.submit(sess)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	snap := sess.snapshot(m.now())
	return snap, sess.lastErr
}

// State reports the live session, if any.
func (m *Manager) State(key Key) (Snapshot, bool) {
	sess := m.get(key)
	if sess == nil {
		return Snapshot{State: StateNoDiagnostic, Chapter: key.Chapter}, false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(m.now()), true
}

func (m *Manager) get(key Key) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[key]
}

func (m *Manager) submit(sess *Session) {
	sess.mu.Lock()
	if sess.submitting || sess.state == StateDone || sess.diagnosticID == uuid.Nil {
		sess.mu.Unlock()
		return
	}
	sess.submitting = true
	sess.state = StateSubmitting
	answers := make(map[string]string, len(sess.answers))
	for k, v := range sess.answers {
		answers[k] = v
	}
	diagnosticID := sess.diagnosticID
	sess.mu.Unlock()

	sess.tickOnce.Do(func() { close(sess.stopTick) })

	resultID, err := m.submitter.Submit(sess.key, diagnosticID, answers)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err != nil {
		// Submit failed: surface the error and re-enable submission. The
		// start lock is NOT released; a failed submit must not allow a
		// fresh diagnostic for the same chapter in this session.
		log.Error().Err(err).Str("chapter", sess.key.Chapter).Msg("Diagnostic submission failed")
		sess.submitting = false
		sess.state = StateError
		sess.lastErr = err
		return
	}
	sess.state = StateDone
	sess.resultID = resultID
	sess.lastErr = nil
	log.Info().Str("chapter", sess.key.Chapter).Str("result_id", resultID).Msg("Diagnostic submitted")
}
