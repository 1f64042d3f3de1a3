package drafts

import (
	"errors"
	"sync"
	"time"

	"github.com/postdock/postdock/internal/models"
	"github.com/postdock/postdock/internal/platform"
)

// Source tags where a draft version came from.
type Source string

const (
	SourceUser Source = "user"
	SourceAI   Source = "ai"
)

type Version struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Source    Source    `json:"source"`
}

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// PlatformDraft is the editing state for one platform inside a session.
type PlatformDraft struct {
	Content       string              `json:"content"`
	HackerNewsURL string              `json:"hackernews_url,omitempty"`
	Versions      []Version           `json:"versions"` // newest first
	Images        []models.ImageAsset `json:"images"`
}

type Session struct {
	ActivePlatform platform.Platform                    `json:"active_platform"`
	PageContext    models.PageContext                   `json:"page_context"`
	Conversation   []Message                            `json:"conversation"`
	Drafts         map[platform.Platform]*PlatformDraft `json:"drafts"`
}

var (
	ErrVersionIndex   = errors.New("version index out of range")
	ErrImageIndex     = errors.New("image index out of range")
	ErrImageCap       = errors.New("image limit reached for platform")
	ErrEmptyDraft     = errors.New("draft is empty")
	ErrImagesDisabled = errors.New("platform does not support images")
)

// Store holds the in-memory editing sessions, one per user. Sessions are not
// persisted; only the scheduled post record survives the session.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*Session),
		now:      time.Now,
	}
}

// session returns the user's session, creating it on first touch.
// Callers must hold s.mu.
func (s *Store) session(userID int64) *Session {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &Session{
			ActivePlatform: platform.Twitter,
			Drafts:         make(map[platform.Platform]*PlatformDraft),
		}
		s.sessions[userID] = sess
	}
	return sess
}

func (s *Session) draft(p platform.Platform) *PlatformDraft {
	d, ok := s.Drafts[p]
	if !ok {
		d = &PlatformDraft{}
		s.Drafts[p] = d
	}
	return d
}

// SelectPlatform switches the active editing context. Other platforms keep
// their state.
func (s *Store) SelectPlatform(userID int64, p platform.Platform) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	sess.ActivePlatform = p
	sess.draft(p)
}

func (s *Store) SetPageContext(userID int64, pc models.PageContext) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.session(userID).PageContext = pc
}

// EditDraft overwrites the live draft. Hacker News content pasted with an
// embedded "Learn more: <url>" trailer is split into title and link.
func (s *Store) EditDraft(userID int64, p platform.Platform, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.session(userID).draft(p)
	if p == platform.HackerNews {
		if title, url, ok := platform.SplitLearnMore(content); ok {
			d.Content = title
			d.HackerNewsURL = url
			return
		}
	}
	d.Content = content
}

// SaveVersion snapshots the live draft at the front of the version list. The
// Hacker News snapshot folds the link back in so history is self-contained.
func (s *Store) SaveVersion(userID int64, p platform.Platform) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.session(userID).draft(p)
	if d.Content == "" {
		return ErrEmptyDraft
	}

	content := d.Content
	if p == platform.HackerNews {
		content = platform.JoinLearnMore(d.Content, d.HackerNewsURL)
	}

	d.Versions = append([]Version{{
		Content:   content,
		Timestamp: s.now(),
		Source:    SourceUser,
	}}, d.Versions...)
	return nil
}

// SelectVersion copies a historical version back into the live draft without
// removing it from history.
func (s *Store) SelectVersion(userID int64, p platform.Platform, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.session(userID).draft(p)
	if index < 0 || index >= len(d.Versions) {
		return ErrVersionIndex
	}

	content := d.Versions[index].Content
	if p == platform.HackerNews {
		if title, url, ok := platform.SplitLearnMore(content); ok {
			d.Content = title
			d.HackerNewsURL = url
			return nil
		}
	}
	d.Content = content
	return nil
}

// ApplyAIDraft sets generated content as the live draft and records it in
// version history.
func (s *Store) ApplyAIDraft(userID int64, p platform.Platform, content, hnURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.session(userID).draft(p)
	d.Content = content
	if p == platform.HackerNews {
		d.HackerNewsURL = hnURL
	}

	saved := content
	if p == platform.HackerNews {
		saved = platform.JoinLearnMore(content, hnURL)
	}
	d.Versions = append([]Version{{
		Content:   saved,
		Timestamp: s.now(),
		Source:    SourceAI,
	}}, d.Versions...)
}

func (s *Store) AppendMessage(userID int64, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.session(userID)
	sess.Conversation = append(sess.Conversation, Message{
		Role:      role,
		Content:   content,
		Timestamp: s.now(),
	})
}

func (s *Store) Conversation(userID int64) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return nil
	}
	out := make([]Message, len(sess.Conversation))
	copy(out, sess.Conversation)
	return out
}

// AddImage appends an uploaded image, enforcing the platform cap.
func (s *Store) AddImage(userID int64, p platform.Platform, img models.ImageAsset) error {
	rules, err := platform.RulesFor(p)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.session(userID).draft(p)
	max := rules.MaxImages()
	if max == 0 {
		return ErrImagesDisabled
	}
	if len(d.Images) >= max {
		return ErrImageCap
	}
	d.Images = append(d.Images, img)
	return nil
}

func (s *Store) RemoveImage(userID int64, p platform.Platform, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.session(userID).draft(p)
	if index < 0 || index >= len(d.Images) {
		return ErrImageIndex
	}
	d.Images = append(d.Images[:index], d.Images[index+1:]...)
	return nil
}

// Draft returns a copy of the platform's editing state.
func (s *Store) Draft(userID int64, p platform.Platform) (PlatformDraft, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return PlatformDraft{}, false
	}
	d, ok := sess.Drafts[p]
	if !ok {
		return PlatformDraft{}, false
	}

	out := PlatformDraft{Content: d.Content, HackerNewsURL: d.HackerNewsURL}
	out.Versions = append(out.Versions, d.Versions...)
	out.Images = append(out.Images, d.Images...)
	return out, true
}

// Snapshot returns a copy of the whole session for the API surface.
func (s *Store) Snapshot(userID int64) Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	if !ok {
		return Session{
			ActivePlatform: platform.Twitter,
			Drafts:         make(map[platform.Platform]*PlatformDraft),
		}
	}

	out := Session{
		ActivePlatform: sess.ActivePlatform,
		PageContext:    sess.PageContext,
		Drafts:         make(map[platform.Platform]*PlatformDraft, len(sess.Drafts)),
	}
	out.Conversation = append(out.Conversation, sess.Conversation...)
	for p, d := range sess.Drafts {
		cp := PlatformDraft{Content: d.Content, HackerNewsURL: d.HackerNewsURL}
		cp.Versions = append(cp.Versions, d.Versions...)
		cp.Images = append(cp.Images, d.Images...)
		out.Drafts[p] = &cp
	}
	return out
}

// Reset clears a user's session, used after scheduling completes.
func (s *Store) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
}
