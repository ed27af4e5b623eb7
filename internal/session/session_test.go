package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend 记录调用并允许注入失败，测试无需真实服务端
type fakeBackend struct {
	mu sync.Mutex

	saved      map[string]string
	saveCalls  int
	clearCalls int

	loadAnswers map[string]string
	loadErr     error

	submitErr     error
	submitCalls   int
	lastSubmit    SubmitRequest
	submitBlocked chan struct{} // 非 nil 时 Submit 阻塞直到关闭
}

func (f *fakeBackend) LoadProgress(ctx context.Context, quizID string) (map[string]string, error) {
	return f.loadAnswers, f.loadErr
}

func (f *fakeBackend) SaveProgress(ctx context.Context, quizID string, answers map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveCalls++
	f.saved = answers
	return nil
}

func (f *fakeBackend) ClearProgress(ctx context.Context, quizID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	return nil
}

func (f *fakeBackend) Submit(ctx context.Context, quizID string, req SubmitRequest) (*GradingResult, error) {
	f.mu.Lock()
	blocked := f.submitBlocked
	f.mu.Unlock()
	if blocked != nil {
		<-blocked
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitCalls++
	f.lastSubmit = req
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	correct := 0
	for _, a := range req.Answers {
		if a == "optA" {
			correct++
		}
	}
	return &GradingResult{
		QuizID:         quizID,
		Score:          correct * 50,
		CorrectAnswers: correct,
		TotalQuestions: 2,
		IsPassed:       correct == 2,
	}, nil
}

func testQuiz(timeLimit int) Quiz {
	return Quiz{
		ID:           "quiz-1",
		Title:        "Pointers Basics",
		TimeLimit:    timeLimit,
		PassingScore: 60,
		Questions: []Question{
			{ID: "q1", Options: []Option{{ID: "optA"}, {ID: "optB"}}},
			{ID: "q2", Options: []Option{{ID: "optA"}, {ID: "optB"}}},
		},
	}
}

func newTestSession(backend *fakeBackend, timeLimit int) *Session {
	return New(testQuiz(timeLimit), backend, Config{AutosaveDelay: 10 * time.Millisecond})
}

func TestStartSeedsFromSavedProgress(t *testing.T) {
	backend := &fakeBackend{loadAnswers: map[string]string{"q1": "optB"}}
	s := newTestSession(backend, 10)

	s.Start(context.Background())

	answered, total := s.Answered()
	assert.Equal(t, 1, answered)
	assert.Equal(t, 2, total)
	assert.Equal(t, "optB", s.Answers()["q1"])
}

func TestStartLoadFailureIsFreshSession(t *testing.T) {
	backend := &fakeBackend{loadErr: errors.New("redis down")}
	s := newTestSession(backend, 10)

	s.Start(context.Background())

	answered, _ := s.Answered()
	assert.Equal(t, 0, answered)
	assert.Equal(t, StateInProgress, s.State())
}

func TestSetAnswerOverwritesAndAutosaves(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestSession(backend, 10)

	require.NoError(t, s.SetAnswer("q1", "optA"))
	require.NoError(t, s.SetAnswer("q1", "optB"))

	assert.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return backend.saveCalls > 0
	}, time.Second, 5*time.Millisecond)

	backend.mu.Lock()
	defer backend.mu.Unlock()
	// 防抖把两次变更坍缩成一次写入，写出的是最后的快照
	assert.Equal(t, 1, backend.saveCalls)
	assert.Equal(t, map[string]string{"q1": "optB"}, backend.saved)
}

func TestSubmitHappyPath(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestSession(backend, 10)

	require.NoError(t, s.SetAnswer("q1", "optA"))
	require.NoError(t, s.SetAnswer("q2", "optA"))

	require.NoError(t, s.RequestSubmit())
	assert.Equal(t, StateConfirming, s.State())

	result, err := s.ConfirmSubmit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateGraded, s.State())
	assert.Equal(t, 100, result.Score)
	assert.True(t, result.IsPassed)
	assert.False(t, backend.lastSubmit.IsTimeout)
}

func TestRequestSubmitNeedsAtLeastOneAnswer(t *testing.T) {
	s := newTestSession(&fakeBackend{}, 10)

	assert.ErrorIs(t, s.RequestSubmit(), ErrNoAnswers)
	assert.Equal(t, StateInProgress, s.State())
}

func TestCancelSubmitReturnsToInProgress(t *testing.T) {
	s := newTestSession(&fakeBackend{}, 10)
	require.NoError(t, s.SetAnswer("q1", "optA"))

	require.NoError(t, s.RequestSubmit())
	s.CancelSubmit()
	assert.Equal(t, StateInProgress, s.State())

	// 取消后可以继续改答案
	assert.NoError(t, s.SetAnswer("q1", "optB"))
}

func TestSubmitFailureRevertsState(t *testing.T) {
	backend := &fakeBackend{submitErr: errors.New("network unreachable")}
	s := newTestSession(backend, 10)
	require.NoError(t, s.SetAnswer("q1", "optA"))

	require.NoError(t, s.RequestSubmit())
	_, err := s.ConfirmSubmit(context.Background())
	require.Error(t, err)

	// 失败不推进状态：回到可编辑，错误可供展示，答案保留
	assert.Equal(t, StateInProgress, s.State())
	assert.Error(t, s.LastSubmitError())
	assert.Nil(t, s.Result())
	assert.Equal(t, "optA", s.Answers()["q1"])

	// 用户重新触发，这次成功
	backend.mu.Lock()
	backend.submitErr = nil
	backend.mu.Unlock()
	require.NoError(t, s.RequestSubmit())
	_, err = s.ConfirmSubmit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateGraded, s.State())
	assert.NoError(t, s.LastSubmitError())
}

func TestOnlyOneSubmitInFlight(t *testing.T) {
	release := make(chan struct{})
	backend := &fakeBackend{submitBlocked: release}
	s := newTestSession(backend, 10)
	require.NoError(t, s.SetAnswer("q1", "optA"))
	require.NoError(t, s.RequestSubmit())

	done := make(chan struct{})
	go func() {
		s.ConfirmSubmit(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return s.State() == StateSubmitting
	}, time.Second, 5*time.Millisecond)

	// 提交挂起期间答案冻结，重复确认被拒绝
	assert.ErrorIs(t, s.SetAnswer("q2", "optB"), ErrFrozen)
	_, err := s.ConfirmSubmit(context.Background())
	assert.Error(t, err)

	close(release)
	<-done
	assert.Equal(t, StateGraded, s.State())
	assert.Equal(t, 1, backend.submitCalls)
}

func TestAnswersFrozenAfterGrading(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestSession(backend, 10)
	require.NoError(t, s.SetAnswer("q1", "optA"))
	require.NoError(t, s.RequestSubmit())
	_, err := s.ConfirmSubmit(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetAnswer("q2", "optB"), ErrFrozen)
	assert.ErrorIs(t, s.RequestSubmit(), ErrInvalidState)
}

func TestTimerExpiryAutoSubmitsOnce(t *testing.T) {
	backend := &fakeBackend{}
	s := New(testQuiz(1), backend, Config{AutosaveDelay: 10 * time.Millisecond})
	require.NoError(t, s.SetAnswer("q1", "optA"))

	ctx := context.Background()
	for i := 0; i < 65; i++ {
		s.Tick(ctx)
	}

	assert.Equal(t, StateGraded, s.State())
	assert.Equal(t, 1, backend.submitCalls)
	assert.True(t, backend.lastSubmit.IsTimeout)
}

func TestTimerExpiryDuringConfirmationSubmits(t *testing.T) {
	backend := &fakeBackend{}
	s := New(testQuiz(1), backend, Config{AutosaveDelay: 10 * time.Millisecond})
	require.NoError(t, s.SetAnswer("q1", "optA"))
	require.NoError(t, s.RequestSubmit())

	ctx := context.Background()
	for i := 0; i < 60; i++ {
		s.Tick(ctx)
	}

	// 确认对话开着也一样：到期跳过确认直接提交
	assert.Equal(t, StateGraded, s.State())
	assert.True(t, backend.lastSubmit.IsTimeout)
}

func TestTimerExpiryWithZeroAnswers(t *testing.T) {
	backend := &fakeBackend{}
	s := New(testQuiz(1), backend, Config{AutosaveDelay: 10 * time.Millisecond})

	ctx := context.Background()
	for i := 0; i < 60; i++ {
		s.Tick(ctx)
	}

	// 空白卷也要交：与手动提交的最少一题限制不同
	assert.Equal(t, StateGraded, s.State())
	assert.Equal(t, 1, backend.submitCalls)
	assert.Empty(t, backend.lastSubmit.Answers)
}

func TestTickAfterGradedIsInert(t *testing.T) {
	backend := &fakeBackend{}
	s := New(testQuiz(1), backend, Config{AutosaveDelay: 10 * time.Millisecond})

	ctx := context.Background()
	for i := 0; i < 120; i++ {
		s.Tick(ctx)
	}
	assert.Equal(t, 1, backend.submitCalls)
}

func TestExitFlow(t *testing.T) {
	backend := &fakeBackend{}
	s := newTestSession(backend, 10)
	require.NoError(t, s.SetAnswer("q1", "optA"))

	require.NoError(t, s.RequestExit())
	assert.Equal(t, StateExitConfirming, s.State())

	s.CancelExit()
	assert.Equal(t, StateInProgress, s.State())

	require.NoError(t, s.RequestExit())
	require.NoError(t, s.ConfirmExit(context.Background()))
	assert.Equal(t, StateExited, s.State())
	assert.Equal(t, 1, backend.clearCalls)

	// 离场后一切冻结
	assert.ErrorIs(t, s.SetAnswer("q2", "optB"), ErrFrozen)

	// 退出不做离场保存，且丢弃防抖窗口里尚未触发的那次写入
	time.Sleep(50 * time.Millisecond)
	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, 0, backend.saveCalls)
}

func TestRetakeResetsEverything(t *testing.T) {
	backend := &fakeBackend{}
	s := New(testQuiz(1), backend, Config{AutosaveDelay: 10 * time.Millisecond})
	require.NoError(t, s.SetAnswer("q1", "optB"))
	require.NoError(t, s.RequestSubmit())
	_, err := s.ConfirmSubmit(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.Retake(context.Background()))

	assert.Equal(t, StateInProgress, s.State())
	assert.Nil(t, s.Result())
	answered, _ := s.Answered()
	assert.Equal(t, 0, answered)
	assert.Equal(t, 60, s.Remaining())
	assert.GreaterOrEqual(t, backend.clearCalls, 1)

	// 新一轮可以正常作答和自动保存
	require.NoError(t, s.SetAnswer("q2", "optA"))
	assert.Eventually(t, func() bool {
		backend.mu.Lock()
		defer backend.mu.Unlock()
		return backend.saved != nil && backend.saved["q2"] == "optA"
	}, time.Second, 5*time.Millisecond)
}

func TestRetakeOnlyAfterGrading(t *testing.T) {
	s := newTestSession(&fakeBackend{}, 10)
	assert.ErrorIs(t, s.Retake(context.Background()), ErrInvalidState)
}
