package session

// Timer 倒计时。由会话在单线程协作式的节拍里驱动，
// 归零后保持为零并只报告一次到期。
type Timer struct {
	limitSeconds int
	remaining    int
	running      bool
	expired      bool
}

// NewTimer limitMinutes 为 0 时计时器不生效（不限时）
func NewTimer(limitMinutes int) *Timer {
	t := &Timer{
		limitSeconds: limitMinutes * 60,
		remaining:    limitMinutes * 60,
	}
	t.running = t.limitSeconds > 0
	return t
}

func (t *Timer) Unlimited() bool {
	return t.limitSeconds == 0
}

func (t *Timer) Remaining() int {
	return t.remaining
}

// Tick 减一秒。首次归零时返回 true，之后永远返回 false。
func (t *Timer) Tick() bool {
	if !t.running || t.expired {
		return false
	}
	t.remaining--
	if t.remaining <= 0 {
		t.remaining = 0
		t.expired = true
		t.running = false
		return true
	}
	return false
}

func (t *Timer) Stop() {
	t.running = false
}

// Reset 恢复到完整时长，用于重考
func (t *Timer) Reset() {
	t.remaining = t.limitSeconds
	t.expired = false
	t.running = t.limitSeconds > 0
}
