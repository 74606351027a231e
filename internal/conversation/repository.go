// Package conversation holds the ordered list of conversations and the active cursor.
package conversation

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"

	"lenai/internal/chat"
	"lenai/internal/storage"
)

// ErrIndexOutOfRange is returned when an index doesn't name an existing conversation.
var ErrIndexOutOfRange = errors.New("conversation index out of range")

// Summary is one row of the conversation list.
type Summary struct {
	Index  int
	Title  string
	Active bool
}

// Persister saves the full conversation list. storage.State satisfies it.
type Persister interface {
	SaveHistory([]chat.Conversation)
}

// Repository 会话仓库：始终非空，每次变更后整体持久化
// Repository owns the conversation sequence. It is never empty, and every
// mutation persists the whole sequence before returning.
type Repository struct {
	mu           sync.Mutex
	convs        []chat.Conversation
	active       int
	persist      Persister
	defaultTitle string
}

// New builds a repository over a loaded history. The cursor starts on the last
// conversation. An empty history gets one default conversation.
func New(history []chat.Conversation, persist Persister, defaultTitle string) *Repository {
	if strings.TrimSpace(defaultTitle) == "" {
		defaultTitle = storage.DefaultTitle
	}
	r := &Repository{persist: persist, defaultTitle: defaultTitle}
	for _, c := range history {
		r.convs = append(r.convs, c.Clone())
	}
	if len(r.convs) == 0 {
		r.convs = append(r.convs, r.shell())
	}
	r.active = len(r.convs) - 1
	return r
}

// Load builds a repository from the persisted history.
func Load(state *storage.State) *Repository {
	return New(state.LoadHistory(), state, state.DefaultTitle)
}

// DisplayTitle returns the title shown for conversation i, falling back to "Chat <n>".
func DisplayTitle(i int, title string) string {
	if strings.TrimSpace(title) == "" {
		return fmt.Sprintf("Chat %d", i+1)
	}
	return title
}

// ListSummaries 以倒序惰性产出会话摘要，每次调用重新计算
// ListSummaries yields conversations newest first. The sequence reads the
// repository lazily, so it reflects the state at iteration time.
func (r *Repository) ListSummaries() iter.Seq[Summary] {
	return func(yield func(Summary) bool) {
		r.mu.Lock()
		n := len(r.convs)
		r.mu.Unlock()
		for i := n - 1; i >= 0; i-- {
			r.mu.Lock()
			if i >= len(r.convs) {
				r.mu.Unlock()
				continue
			}
			s := Summary{Index: i, Title: DisplayTitle(i, r.convs[i].Title), Active: i == r.active}
			r.mu.Unlock()
			if !yield(s) {
				return
			}
		}
	}
}

// Activate moves conversation i to the end and makes it active.
// It returns the relocated index.
func (r *Repository) Activate(i int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.valid(i) {
		return 0, fmt.Errorf("activate %d: %w", i, ErrIndexOutOfRange)
	}
	conv := r.convs[i]
	r.convs = append(r.convs[:i], r.convs[i+1:]...)
	r.convs = append(r.convs, conv)
	r.active = len(r.convs) - 1
	r.save()
	return r.active, nil
}

// CreateNew appends an empty default conversation and makes it active.
func (r *Repository) CreateNew() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createNewLocked()
}

// Delete removes conversation i. Confirmation is the caller's job.
func (r *Repository) Delete(i int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.valid(i) {
		return fmt.Errorf("delete %d: %w", i, ErrIndexOutOfRange)
	}
	r.convs = append(r.convs[:i], r.convs[i+1:]...)
	if len(r.convs) == 0 {
		r.createNewLocked()
		return nil
	}
	switch {
	case i == r.active:
		r.active = len(r.convs) - 1
	case i < r.active:
		r.active--
	}
	r.save()
	return nil
}

// ClearAll drops every conversation and starts a fresh one.
func (r *Repository) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.convs = r.convs[:0]
	r.createNewLocked()
}

// Rename sets the title of conversation i. A blank title is ignored.
func (r *Repository) Rename(i int, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.valid(i) {
		return fmt.Errorf("rename %d: %w", i, ErrIndexOutOfRange)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}
	r.convs[i].Title = title
	r.save()
	return nil
}

// SetTitle is Rename for automatic titles; a stale index is ignored.
func (r *Repository) SetTitle(i int, title string) {
	_ = r.Rename(i, title)
}

// AppendMessage appends msg to conversation i. When i is stale, a default
// conversation is appended and written instead. It returns the index written.
func (r *Repository) AppendMessage(i int, msg chat.Message) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.valid(i) {
		r.convs = append(r.convs, r.shell())
		i = len(r.convs) - 1
	}
	r.convs[i].Messages = append(r.convs[i].Messages, msg)
	r.save()
	return i
}

// Active returns the active index and a copy of its conversation.
func (r *Repository) Active() (int, chat.Conversation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active, r.convs[r.active].Clone()
}

// Get returns a copy of conversation i.
func (r *Repository) Get(i int) (chat.Conversation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.valid(i) {
		return chat.Conversation{}, false
	}
	return r.convs[i].Clone(), true
}

func (r *Repository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.convs)
}

// Snapshot returns a deep copy of every conversation in order.
func (r *Repository) Snapshot() []chat.Conversation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Repository) createNewLocked() int {
	r.convs = append(r.convs, r.shell())
	r.active = len(r.convs) - 1
	r.save()
	return r.active
}

func (r *Repository) shell() chat.Conversation {
	return chat.Conversation{Title: r.defaultTitle, Messages: []chat.Message{}}
}

func (r *Repository) valid(i int) bool {
	return i >= 0 && i < len(r.convs)
}

func (r *Repository) snapshotLocked() []chat.Conversation {
	out := make([]chat.Conversation, len(r.convs))
	for i, c := range r.convs {
		out[i] = c.Clone()
	}
	return out
}

func (r *Repository) save() {
	if r.persist == nil {
		return
	}
	r.persist.SaveHistory(r.snapshotLocked())
}
