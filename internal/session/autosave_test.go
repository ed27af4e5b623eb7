package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingBackend struct {
	mu        sync.Mutex
	saveCalls int
	lastSaved map[string]string
}

func (r *recordingBackend) LoadProgress(ctx context.Context, quizID string) (map[string]string, error) {
	return nil, nil
}

func (r *recordingBackend) SaveProgress(ctx context.Context, quizID string, answers map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	r.lastSaved = answers
	return nil
}

func (r *recordingBackend) ClearProgress(ctx context.Context, quizID string) error {
	return nil
}

func (r *recordingBackend) Submit(ctx context.Context, quizID string, req SubmitRequest) (*GradingResult, error) {
	return &GradingResult{}, nil
}

func (r *recordingBackend) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveCalls
}

func TestAutosaverDebounce(t *testing.T) {
	backend := &recordingBackend{}
	a := NewAutosaver(backend, "quiz-1", 20*time.Millisecond)
	defer a.Close()

	// 窗口内的连续调度只落一次盘，内容是最后那份
	a.Schedule(map[string]string{"q1": "optA"})
	a.Schedule(map[string]string{"q1": "optB"})
	a.Schedule(map[string]string{"q1": "optC"})

	assert.Eventually(t, func() bool {
		return backend.calls() == 1
	}, time.Second, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, 1, backend.saveCalls)
	assert.Equal(t, map[string]string{"q1": "optC"}, backend.lastSaved)
}

func TestAutosaverCancelDropsPendingWrite(t *testing.T) {
	backend := &recordingBackend{}
	a := NewAutosaver(backend, "quiz-1", 20*time.Millisecond)
	defer a.Close()

	a.Schedule(map[string]string{"q1": "optA"})
	a.Cancel()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, backend.calls())
}

func TestAutosaverClosedIgnoresSchedule(t *testing.T) {
	backend := &recordingBackend{}
	a := NewAutosaver(backend, "quiz-1", 10*time.Millisecond)
	a.Close()

	a.Schedule(map[string]string{"q1": "optA"})
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, 0, backend.calls())
}

func TestAutosaverSpacedWritesEachLand(t *testing.T) {
	backend := &recordingBackend{}
	a := NewAutosaver(backend, "quiz-1", 10*time.Millisecond)
	defer a.Close()

	a.Schedule(map[string]string{"q1": "optA"})
	assert.Eventually(t, func() bool { return backend.calls() == 1 }, time.Second, 2*time.Millisecond)

	a.Schedule(map[string]string{"q1": "optA", "q2": "optB"})
	assert.Eventually(t, func() bool { return backend.calls() == 2 }, time.Second, 2*time.Millisecond)
}
