package session

import (
	"context"
	"sync"
	"time"
)

// Autosaver 把密集的答案变更坍缩成一次延迟写入。
// 新的调度会取消尚未触发的旧调度，只有最后一份快照会被写出。
// 写入失败静默忽略：下一次变更的自动保存即可弥补。
type Autosaver struct {
	backend Backend
	quizID  string
	delay   time.Duration

	mu      sync.Mutex
	pending *time.Timer
	cancel  context.CancelFunc
	closed  bool
}

func NewAutosaver(backend Backend, quizID string, delay time.Duration) *Autosaver {
	if delay <= 0 {
		delay = time.Second
	}
	return &Autosaver{
		backend: backend,
		quizID:  quizID,
		delay:   delay,
	}
}

// Schedule 登记一次延迟写入，覆盖之前未触发的调度
func (a *Autosaver) Schedule(snapshot map[string]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}

	if a.pending != nil {
		a.pending.Stop()
	}

	a.pending = time.AfterFunc(a.delay, func() {
		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			return
		}
		// 为本次写入持有独立的取消令牌，Cancel 时一并中止
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		a.cancel = cancel
		a.mu.Unlock()

		defer cancel()
		_ = a.backend.SaveProgress(ctx, a.quizID, snapshot)
	})
}

// Cancel 丢弃未触发的调度并中止在途写入
func (a *Autosaver) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// Close 关闭后不再接受任何调度
func (a *Autosaver) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	if a.pending != nil {
		a.pending.Stop()
		a.pending = nil
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}
