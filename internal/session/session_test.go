package session

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	mu       sync.Mutex
	calls    int
	err      error
	resultID string
	done     chan struct{}
}

func newFakeSubmitter() *fakeSubmitter {
	return &fakeSubmitter{resultID: "result-1", done: make(chan struct{}, 16)}
}

func (f *fakeSubmitter) Submit(key Key, diagnosticID uuid.UUID, answers map[string]string) (string, error) {
	f.mu.Lock()
	f.calls++
	err := f.err
	f.mu.Unlock()
	f.done <- struct{}{}
	if err != nil {
		return "", err
	}
	return f.resultID, nil
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestManager(submitter Submitter, tick time.Duration) (*Manager, *fakeClock, *LockStore) {
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	locks := NewLockStore()
	m := NewManager(submitter, locks)
	m.SetClock(clock.Now, tick)
	return m, clock, locks
}

func startInfo(createdAt time.Time) *StartInfo {
	return &StartInfo{
		DiagnosticID:   uuid.New(),
		CreatedAt:      createdAt,
		TimeLimit:      30,
		TotalQuestions: 9,
	}
}

func TestStartCreatesInProgressSession(t *testing.T) {
	submitter := newFakeSubmitter()
	m, clock, locks := newTestManager(submitter, time.Hour)
	key := Key{UserID: uuid.New(), Chapter: "Stoichiometry"}

	snap, err := m.Start(key, func() (*StartInfo, error) {
		return startInfo(clock.Now()), nil
	})
	require.NoError(t, err)

	assert.Equal(t, StateInProgress, snap.State)
	assert.Equal(t, 30*60, snap.Remaining)
	assert.Equal(t, 9, snap.TotalQuestions)
	assert.True(t, locks.Held(key))
}

func TestSecondStartIsNoOp(t *testing.T) {
	submitter := newFakeSubmitter()
	m, clock, _ := newTestManager(submitter, time.Hour)
	key := Key{UserID: uuid.New(), Chapter: "Stoichiometry"}

	startCalls := 0
	start := func() (*StartInfo, error) {
		startCalls++
		return startInfo(clock.Now()), nil
	}

	first, err := m.Start(key, start)
	require.NoError(t, err)
	second, err := m.Start(key, start)
	require.NoError(t, err)

	assert.Equal(t, 1, startCalls)
	assert.Equal(t, first.DiagnosticID, second.DiagnosticID)
	assert.Equal(t, StateInProgress, second.State)
}

func TestConcurrentStartGeneratesOnce(t *testing.T) {
	submitter := newFakeSubmitter()
	m, clock, locks := newTestManager(submitter, time.Hour)
	key := Key{UserID: uuid.New(), Chapter: "Stoichiometry"}

	var startCalls int32
	entered := make(chan struct{})
	release := make(chan struct{})
	start := func() (*StartInfo, error) {
		atomic.AddInt32(&startCalls, 1)
		close(entered)
		<-release
		return startInfo(clock.Now()), nil
	}

	var wg sync.WaitGroup
	snaps := make([]Snapshot, 2)
	errs := make([]error, 2)
	for i := range snaps {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snaps[i], errs[i] = m.Start(key, start)
		}(i)
	}

	// Hold the first call inside the generation callback long enough for
	// the second to hit the duplicate-start guard, then let it finish.
	<-entered
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	assert.EqualValues(t, 1, atomic.LoadInt32(&startCalls))
	assert.Equal(t, snaps[0].DiagnosticID, snaps[1].DiagnosticID)
	assert.Equal(t, StateInProgress, snaps[0].State)
	assert.Equal(t, StateInProgress, snaps[1].State)
	assert.True(t, locks.Held(key))
}

func TestConcurrentStartRetriesAfterWinnerFails(t *testing.T) {
	submitter := newFakeSubmitter()
	m, clock, locks := newTestManager(submitter, time.Hour)
	key := Key{UserID: uuid.New(), Chapter: "Stoichiometry"}

	entered := make(chan struct{})
	release := make(chan struct{})
	failing := func() (*StartInfo, error) {
		close(entered)
		<-release
		return nil, errors.New("generation unavailable")
	}

	done := make(chan error, 1)
	go func() {
		_, err := m.Start(key, failing)
		done <- err
	}()
	<-entered

	// The second caller blocks on the in-flight attempt, then runs its own
	// start once the first one fails.
	second := make(chan Snapshot, 1)
	go func() {
		snap, _ := m.Start(key, func() (*StartInfo, error) {
			return startInfo(clock.Now()), nil
		})
		second <- snap
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)

	require.Error(t, <-done)
	select {
	case snap := <-second:
		assert.Equal(t, StateInProgress, snap.State)
	case <-time.After(2 * time.Second):
		t.Fatal("waiting start never completed after the first attempt failed")
	}
	assert.True(t, locks.Held(key))
}

func TestResumeRemainingReflectsElapsedTime(t *testing.T) {
	submitter := newFakeSubmitter()
	m, clock, _ := newTestManager(submitter, time.Hour)
	key := Key{UserID: uuid.New(), Chapter: "Acids and Bases"}

	// Created 10 minutes ago; 30 minute limit leaves 20 minutes.
	snap, err := m.Start(key, func() (*StartInfo, error) {
		return startInfo(clock.Now().Add(-10 * time.Minute)), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 20*60, snap.Remaining)

	clock.Advance(5 * time.Minute)
	snap, ok := m.State(key)
	require.True(t, ok)
	assert.Equal(t, 15*60, snap.Remaining)
}

func TestRemainingNeverNegative(t *testing.T) {
	sess := &Session{createdAt: time.Now().Add(-2 * time.Hour), timeLimit: 30}
	assert.Equal(t, 0, sess.remainingAt(time.Now()))
}

func TestStartAfterExpirySubmitsImmediately(t *testing.T) {
	submitter := newFakeSubmitter()
	m, clock, locks := newTestManager(submitter, time.Hour)
	key := Key{UserID: uuid.New(), Chapter: "Stoichiometry"}

	_, err := m.Start(key, func() (*StartInfo, error) {
		return startInfo(clock.Now().Add(-45 * time.Minute)), nil
	})
	require.NoError(t, err)

	select {
	case <-submitter.done:
	case <-time.After(2 * time.Second):
		t.Fatal("expired session was not submitted")
	}

	snap, ok := m.State(key)
	require.True(t, ok)
	assert.Equal(t, StateDone, snap.State)
	assert.Equal(t, "result-1", snap.ResultID)
	assert.True(t, locks.Held(key))
}

func TestCountdownAutoSubmitsExactlyOnce(t *testing.T) {
	submitter := newFakeSubmitter()
	m, clock, _ := newTestManager(submitter, time.Millisecond)
	key := Key{UserID: uuid.New(), Chapter: "Stoichiometry"}

	_, err := m.Start(key, func() (*StartInfo, error) {
		return startInfo(clock.Now()), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, submitter.callCount())

	clock.Advance(31 * time.Minute)

	select {
	case <-submitter.done:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not trigger submission")
	}

	// The ticker is stopped once submission begins; give any stray tick a
	// chance to land before asserting.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, submitter.callCount())

	snap, ok := m.State(key)
	require.True(t, ok)
	assert.Equal(t, StateDone, snap.State)
}

func TestAnswerRecordsAndOverwrites(t *testing.T) {
	submitter := newFakeSubmitter()
	m, clock, _ := newTestManager(submitter, time.Hour)
	key := Key{UserID: uuid.New(), Chapter: "Stoichiometry"}

	_, err := m.Start(key, func() (*StartInfo, error) {
		return startInfo(clock.Now()), nil
	})
	require.NoError(t, err)

	snap, err := m.Answer(key, "0", "b")
	require.NoError(t, err)
	assert.Equal(t, "B", snap.Answers["0"])

	snap, err = m.Answer(key, "0", "C")
	require.NoError(t, err)
	assert.Equal(t, "C", snap.Answers["0"])
	assert.Equal(t, 1, snap.AnsweredCount)
}

func TestAnswerRejectsInvalidChoices(t *testing.T) {
	submitter := newFakeSubmitter()
	m, clock, _ := newTestManager(submitter, time.Hour)
	key := Key{UserID: uuid.New(), Chapter: "Stoichiometry"}

	_, err := m.Start(key, func() (*StartInfo, error) {
		return startInfo(clock.Now()), nil
	})
	require.NoError(t, err)

	for _, choice := range []string{"E", "AB", "", "1"} {
		_, err := m.Answer(key, "0", choice)
		assert.ErrorIs(t, err, ErrInvalidChoice, "choice %q", choice)
	}
}

func TestAnswerWithoutSession(t *testing.T) {
	submitter := newFakeSubmitter()
	m, _, _ := newTestManager(submitter, time.Hour)
	key := Key{UserID: uuid.New(), Chapter: "Stoichiometry"}

	snap, err := m.Answer(key, "0", "A")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, StateNoDiagnostic, snap.State)
}

func TestFailedStartDoesNotMarkLock(t *testing.T) {
	submitter := newFakeSubmitter()
	m, clock, locks := newTestManager(submitter, time.Hour)
	key := Key{UserID: uuid.New(), Chapter: "Stoichiometry"}

	startErr := errors.New("generation unavailable")
	_, err := m.Start(key, func() (*StartInfo, error) { return nil, startErr })
	assert.ErrorIs(t, err, startErr)
	assert.False(t, locks.Held(key))

	// The failure must not consume the attempt; a retry runs start again.
	snap, err := m.Start(key, func() (*StartInfo, error) {
		return startInfo(clock.Now()), nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateInProgress, snap.State)
	assert.True(t, locks.Held(key))
}

func TestStartRejectsMissingDiagnosticID(t *testing.T) {
	submitter := newFakeSubmitter()
	m, clock, locks := newTestManager(submitter, time.Hour)
	key := Key{UserID: uuid.New(), Chapter: "Stoichiometry"}

	info := startInfo(clock.Now())
	info.DiagnosticID = uuid.Nil
	snap, err := m.Start(key, func() (*StartInfo, error) { return info, nil })
	require.Error(t, err)
	assert.Equal(t, StateError, snap.State)
	assert.False(t, locks.Held(key))
}

func TestFailedSubmitKeepsLockAndAllowsRetry(t *testing.T) {
	submitter := newFakeSubmitter()
	m, clock, locks := newTestManager(submitter, time.Hour)
	key := Key{UserID: uuid.New(), Chapter: "Stoichiometry"}

	startCalls := 0
	start := func() (*StartInfo, error) {
		startCalls++
		return startInfo(clock.Now()), nil
	}
	_, err := m.Start(key, start)
	require.NoError(t, err)

	submitter.mu.Lock()
	submitter.err = errors.New("grading backend down")
	submitter.mu.Unlock()

	snap, err := m.Submit(key)
	require.Error(t, err)
	assert.Equal(t, StateError, snap.State)
	assert.True(t, locks.Held(key), "failed submit must not release the start lock")

	// Starting again must not generate a fresh diagnostic.
	_, err = m.Start(key, start)
	require.NoError(t, err)
	assert.Equal(t, 1, startCalls)

	submitter.mu.Lock()
	submitter.err = nil
	submitter.mu.Unlock()

	snap, err = m.Submit(key)
	require.NoError(t, err)
	assert.Equal(t, StateDone, snap.State)
	assert.Equal(t, "result-1", snap.ResultID)
}

func TestSubmitTwiceIsNoOp(t *testing.T) {
	submitter := newFakeSubmitter()
	m, clock, _ := newTestManager(submitter, time.Hour)
	key := Key{UserID: uuid.New(), Chapter: "Stoichiometry"}

	_, err := m.Start(key, func() (*StartInfo, error) {
		return startInfo(clock.Now()), nil
	})
	require.NoError(t, err)

	_, err = m.Submit(key)
	require.NoError(t, err)
	_, err = m.Submit(key)
	require.NoError(t, err)
	assert.Equal(t, 1, submitter.callCount())
}
