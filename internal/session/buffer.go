package session

import "sync"

// AnswerBuffer 当前答题快照：题目ID -> 选中的选项ID。
// 每题至多一个选择，后写覆盖先写。
type AnswerBuffer struct {
	mu      sync.RWMutex
	answers map[string]string
}

func NewAnswerBuffer() *AnswerBuffer {
	return &AnswerBuffer{answers: make(map[string]string)}
}

// Set 覆盖该题之前的选择。返回内容是否发生变化。
func (b *AnswerBuffer) Set(questionID, optionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.answers[questionID] == optionID {
		return false
	}
	b.answers[questionID] = optionID
	return true
}

func (b *AnswerBuffer) Get(questionID string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	optionID, ok := b.answers[questionID]
	return optionID, ok
}

func (b *AnswerBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.answers)
}

// Snapshot 返回当前内容的拷贝，调用方可安全持有
func (b *AnswerBuffer) Snapshot() map[string]string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	snapshot := make(map[string]string, len(b.answers))
	for q, o := range b.answers {
		snapshot[q] = o
	}
	return snapshot
}

// Seed 用服务端保存的进度初始化
func (b *AnswerBuffer) Seed(saved map[string]string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.answers = make(map[string]string, len(saved))
	for q, o := range saved {
		b.answers[q] = o
	}
}

func (b *AnswerBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.answers = make(map[string]string)
}
