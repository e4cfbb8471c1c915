package notify

import (
	"sync"
	"time"
)

// Тайминги всплывающего предупреждения: полностью видно 3 секунды,
// затем плавно гаснет примерно за полсекунды.
const (
	VisibleDuration = 3000 * time.Millisecond
	FadeDuration    = 500 * time.Millisecond
)

// State — фаза жизни предупреждения
type State int

const (
	Hidden State = iota
	Visible
	Fading
)

// Notifier показывает одно временное предупреждение за раз.
// Повторный Notify во время активного предупреждения заменяет его
// и перезапускает таймер, очереди нет.
type Notifier struct {
	mu      sync.Mutex
	state   State
	message string
	seq     uint64

	visibleFor time.Duration
	fadeFor    time.Duration
}

func New() *Notifier {
	return NewWithTiming(VisibleDuration, FadeDuration)
}

// NewWithTiming — для тестов, чтобы не ждать 3 секунды
func NewWithTiming(visible, fade time.Duration) *Notifier {
	return &Notifier{visibleFor: visible, fadeFor: fade}
}

// Notify показывает предупреждение. Сообщение становится видимым сразу.
func (n *Notifier) Notify(message string) {
	n.mu.Lock()
	n.seq++
	seq := n.seq
	n.message = message
	n.state = Visible
	n.mu.Unlock()

	time.AfterFunc(n.visibleFor, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if n.seq != seq {
			return // предупреждение уже заменено новым
		}
		n.state = Fading

		time.AfterFunc(n.fadeFor, func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			if n.seq != seq {
				return
			}
			n.state = Hidden
			n.message = ""
		})
	})
}

// Active сообщает, видно ли сейчас предупреждение (включая фазу угасания)
func (n *Notifier) Active() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state != Hidden
}

// Message возвращает текущий текст предупреждения, пустую строку если его нет
func (n *Notifier) Message() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.message
}

// Snapshot возвращает фазу и текст одним снимком
func (n *Notifier) Snapshot() (State, string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state, n.message
}
