package session

import (
	"context"
	"sync"
	"time"
)

// State 答题会话的状态。用单一标签状态代替散落的布尔量，
// 杜绝 isSubmitting/showResults 之类互相矛盾的组合。
type State int

const (
	StateInProgress State = iota
	StateConfirming
	StateSubmitting
	StateGraded
	StateExitConfirming
	StateExited
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateConfirming:
		return "confirming"
	case StateSubmitting:
		return "submitting"
	case StateGraded:
		return "graded"
	case StateExitConfirming:
		return "exit_confirming"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

type Config struct {
	// AutosaveDelay 答案变更到触发自动保存的防抖窗口，默认 1s
	AutosaveDelay time.Duration
	// SubmitTimeout 提交请求的上限时长，超时按失败上报给用户，默认 30s
	SubmitTimeout time.Duration
}

// Session 一次答题会话：从进入试卷到被评分（或放弃）。
// 所有状态迁移只由成功回调驱动，失败的请求不会破坏状态。
type Session struct {
	quiz    Quiz
	backend Backend
	cfg     Config

	buffer    *AnswerBuffer
	timer     *Timer
	autosaver *Autosaver

	mu             sync.Mutex
	state          State
	result         *GradingResult
	submitInFlight bool
	startedAt      time.Time
	lastSubmitErr  error
}

func New(quiz Quiz, backend Backend, cfg Config) *Session {
	if cfg.AutosaveDelay <= 0 {
		cfg.AutosaveDelay = time.Second
	}
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 30 * time.Second
	}
	return &Session{
		quiz:      quiz,
		backend:   backend,
		cfg:       cfg,
		buffer:    NewAnswerBuffer(),
		timer:     NewTimer(quiz.TimeLimit),
		autosaver: NewAutosaver(backend, quiz.ID, cfg.AutosaveDelay),
		state:     StateInProgress,
		startedAt: time.Now(),
	}
}

// Start 拉取此前保存的进度来恢复答案。失败按无进度处理，
// 绝不因此阻塞进入答题。
func (s *Session) Start(ctx context.Context) {
	saved, err := s.backend.LoadProgress(ctx, s.quiz.ID)
	if err != nil || saved == nil {
		return
	}
	s.buffer.Seed(saved)
}

func (s *Session) Quiz() Quiz {
	return s.quiz
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Result() *GradingResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// LastSubmitError 上一次提交失败的原因，提交成功后清空
func (s *Session) LastSubmitError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSubmitErr
}

func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.Remaining()
}

func (s *Session) Unlimited() bool {
	return s.timer.Unlimited()
}

// Answered 已答题数和总题数，用于“N of M answered”
func (s *Session) Answered() (answered, total int) {
	return s.buffer.Len(), len(s.quiz.Questions)
}

func (s *Session) Answers() map[string]string {
	return s.buffer.Snapshot()
}

// SetAnswer 记录一次选择并登记自动保存。评分后的会话拒绝修改。
func (s *Session) SetAnswer(questionID, optionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateGraded, StateSubmitting, StateExited:
		return ErrFrozen
	}

	if changed := s.buffer.Set(questionID, optionID); changed {
		s.autosaver.Schedule(s.buffer.Snapshot())
	}
	return nil
}

// RequestSubmit 用户主动交卷，进入确认态。至少需要一个答案。
func (s *Session) RequestSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return ErrInvalidState
	}
	if s.buffer.Len() == 0 {
		return ErrNoAnswers
	}
	s.state = StateConfirming
	return nil
}

// CancelSubmit 收回确认对话，回到答题
func (s *Session) CancelSubmit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateConfirming {
		s.state = StateInProgress
	}
}

// ConfirmSubmit 确认交卷。同一时刻只允许一次在途提交，
// 失败时回到 in_progress 并把错误暴露给用户，由用户重新触发。
func (s *Session) ConfirmSubmit(ctx context.Context) (*GradingResult, error) {
	s.mu.Lock()
	if s.state != StateConfirming {
		s.mu.Unlock()
		return nil, ErrInvalidState
	}
	if s.submitInFlight {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	s.submitInFlight = true
	s.state = StateSubmitting
	s.mu.Unlock()

	return s.doSubmit(ctx, false)
}

// doSubmit 网络调用期间不持锁，界面在请求挂起时保持可交互
func (s *Session) doSubmit(ctx context.Context, isTimeout bool) (*GradingResult, error) {
	// 交卷前丢弃尚未触发的自动保存，避免覆盖服务端随后的清理
	s.autosaver.Cancel()

	startedAt := s.startedAt
	req := SubmitRequest{
		Answers:   s.buffer.Snapshot(),
		IsTimeout: isTimeout,
		StartedAt: &startedAt,
	}

	submitCtx, cancel := context.WithTimeout(ctx, s.cfg.SubmitTimeout)
	defer cancel()

	result, err := s.backend.Submit(submitCtx, s.quiz.ID, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitInFlight = false

	if err != nil {
		// 状态只由成功响应推进，失败回到可编辑
		s.state = StateInProgress
		s.lastSubmitErr = err
		return nil, err
	}

	s.state = StateGraded
	s.result = result
	s.lastSubmitErr = nil
	s.timer.Stop()
	return result, nil
}

// Tick 推进一秒。计时归零时走与手动交卷相同的提交路径，
// 跳过用户确认，恰好触发一次，哪怕一题未答。
func (s *Session) Tick(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateInProgress && s.state != StateConfirming && s.state != StateExitConfirming {
		s.mu.Unlock()
		return
	}
	expired := s.timer.Tick()
	if !expired {
		s.mu.Unlock()
		return
	}
	if s.submitInFlight {
		s.mu.Unlock()
		return
	}
	s.submitInFlight = true
	s.state = StateSubmitting
	s.mu.Unlock()

	s.doSubmit(ctx, true)
}

// Run 以 1Hz 驱动计时器，直到会话终结或 ctx 取消。
// 不限时的试卷直接返回。
func (s *Session) Run(ctx context.Context) {
	if s.timer.Unlimited() {
		return
	}
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
			switch s.State() {
			case StateGraded, StateExited:
				return
			}
		}
	}
}

// RequestExit 交卷前要求离开，进入退出确认
func (s *Session) RequestExit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return ErrInvalidState
	}
	s.state = StateExitConfirming
	return nil
}

// CancelExit 留在答题，状态原样返回
func (s *Session) CancelExit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateExitConfirming {
		s.state = StateInProgress
	}
}

// ConfirmExit 放弃本次作答：丢弃未保存的答案并清除服务端进度。
// 明确不做离场自动保存。
func (s *Session) ConfirmExit(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateExitConfirming {
		s.mu.Unlock()
		return ErrInvalidState
	}
	s.state = StateExited
	s.timer.Stop()
	s.mu.Unlock()

	s.autosaver.Close()
	// 尽力而为的清理，失败静默
	_ = s.backend.ClearProgress(ctx, s.quiz.ID)
	return nil
}

// Retake 评分后重新开卷：清掉服务端进度，答案与计时器
// 回到初始状态，开始一次全新的作答。
func (s *Session) Retake(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateGraded {
		s.mu.Unlock()
		return ErrInvalidState
	}
	s.mu.Unlock()

	_ = s.backend.ClearProgress(ctx, s.quiz.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer.Reset()
	s.timer.Reset()
	s.result = nil
	s.lastSubmitErr = nil
	s.startedAt = time.Now()
	s.autosaver = NewAutosaver(s.backend, s.quiz.ID, s.cfg.AutosaveDelay)
	s.state = StateInProgress
	return nil
}
