package server

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html"

	"swagger_interface_helper/editor"
	"swagger_interface_helper/page"
)

// session 对应浏览器里的一个助手面板：一个挂载容器、一个编辑器和若干订阅者。
type session struct {
	id      string
	created time.Time
	doc     *html.Node
	editor  *editor.Editor

	mu          sync.Mutex
	subscribers map[chan []byte]struct{}
	closed      bool
}

type streamMessage struct {
	Type  string `json:"type"`
	Data  string `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

const (
	msgReady = "ready"
	msgStart = "start"
	msgChunk = "chunk"
	msgDone  = "done"
	msgError = "error"
)

func newSession(cfg editor.Config) (*session, error) {
	doc := page.NewDocument()
	container, _, err := page.Mount(doc)
	if err != nil {
		return nil, err
	}
	ed := editor.Create(container, cfg)
	if ed == nil {
		return nil, errors.New("failed to create editor")
	}
	return &session{
		id:          uuid.New().String(),
		created:     time.Now(),
		doc:         doc,
		editor:      ed,
		subscribers: make(map[chan []byte]struct{}),
	}, nil
}

func (s *session) subscribe() (chan []byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	ch := make(chan []byte, 256)
	s.subscribers[ch] = struct{}{}
	return ch, true
}

func (s *session) unsubscribe(ch chan []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.subscribers[ch]; ok {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// publish never blocks; slow subscribers miss messages.
func (s *session) publish(msg streamMessage) {
	b, _ := json.Marshal(msg)
	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- b:
		default:
		}
	}
}

func (s *session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (s *sessionStore) set(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.id] = sess
}

func (s *sessionStore) get(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *sessionStore) remove(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	return sess, ok
}

func (s *sessionStore) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.close()
		delete(s.sessions, id)
	}
}
