package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
)

// NoticeLevel grades a notification.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarn
	NoticeError
)

// Notifier is the sink for transient user-facing messages. Notify returns the
// command that delivers the message to the app.
type Notifier interface {
	Notify(level NoticeLevel, text string) tea.Cmd
}

// notifyMsg asks the app to show a notification.
type notifyMsg struct {
	level NoticeLevel
	text  string
}

// noticeExpiredMsg clears one notification by id.
type noticeExpiredMsg struct{ id string }

// msgNotifier delivers notifications through the tea event loop.
type msgNotifier struct{}

func (msgNotifier) Notify(level NoticeLevel, text string) tea.Cmd {
	return func() tea.Msg { return notifyMsg{level: level, text: text} }
}

type notice struct {
	id      string
	level   NoticeLevel
	text    string
	expires time.Time
}

// noticeBoard holds the visible notifications, newest last.
type noticeBoard struct {
	items []notice
	ttl   time.Duration
	max   int
}

func newNoticeBoard(ttl time.Duration) noticeBoard {
	if ttl <= 0 {
		ttl = 4 * time.Second
	}
	return noticeBoard{ttl: ttl, max: 3}
}

// push adds a notification and returns the tick that expires it.
func (b *noticeBoard) push(level NoticeLevel, text string, now time.Time) tea.Cmd {
	n := notice{id: uuid.NewString(), level: level, text: text, expires: now.Add(b.ttl)}
	b.items = append(b.items, n)
	if len(b.items) > b.max {
		b.items = b.items[len(b.items)-b.max:]
	}
	id := n.id
	return tea.Tick(b.ttl, func(time.Time) tea.Msg { return noticeExpiredMsg{id: id} })
}

// expire drops the notification with id; other ids are untouched.
func (b *noticeBoard) expire(id string) {
	out := b.items[:0]
	for _, n := range b.items {
		if n.id != id {
			out = append(out, n)
		}
	}
	b.items = out
}

func (b noticeBoard) view(width int) string {
	if len(b.items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(b.items))
	for _, n := range b.items {
		style, ok := noticeStyles[n.level]
		if !ok {
			style = subtleStyle
		}
		lines = append(lines, style.Render(truncate(n.text, max(10, width-2))))
	}
	return strings.Join(lines, "\n")
}
