package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	imapv2 "github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"

	"reservation-backend/internal/reservation/domain"
)

// Options configures one mailbox connection.
type Options struct {
	Host        string
	Port        string
	Username    string
	Password    string
	UseTLS      bool
	ConnTimeout time.Duration
	AuthTimeout time.Duration
}

// Service dials and authenticates mailbox sessions. One session is
// opened per ingestion cycle and closed on every exit path.
type Service struct {
	opts Options
}

// NewService creates an IMAP service for the configured mailbox.
func NewService(opts Options) *Service {
	return &Service{opts: opts}
}

// Open establishes a connection and logs in. Connection establishment
// and authentication each run against their own fixed deadline;
// exceeding either is a hard error for the whole cycle.
func (s *Service) Open(ctx context.Context) (*Session, error) {
	addr := net.JoinHostPort(s.opts.Host, s.opts.Port)

	dialer := &net.Dialer{Timeout: s.opts.ConnTimeout}

	var (
		conn net.Conn
		err  error
	)
	if s.opts.UseTLS {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: s.opts.Host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("dial imap %s: %w", addr, err)
	}

	client := imapclient.New(conn, &imapclient.Options{})

	login := client.Login(s.opts.Username, s.opts.Password)
	done := make(chan error, 1)
	go func() { done <- login.Wait() }()

	select {
	case err = <-done:
	case <-time.After(s.opts.AuthTimeout):
		err = fmt.Errorf("authentication timed out after %s", s.opts.AuthTimeout)
	}
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("imap login failed: %w", err)
	}

	return &Session{client: client}, nil
}

// Session is one authenticated connection. Exactly one search and one
// fetch pass are expected before Close.
type Session struct {
	client    *imapclient.Client
	closeOnce sync.Once
}

// Search selects INBOX and returns the identifiers of all messages
// received since the given time. An empty result is a successful,
// empty cycle, not an error.
func (s *Session) Search(since time.Time) ([]uint32, error) {
	if _, err := s.client.Select("INBOX", nil).Wait(); err != nil {
		return nil, fmt.Errorf("selecting INBOX: %w", err)
	}

	criteria := &imapv2.SearchCriteria{Since: since}
	data, err := s.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("searching messages since %s: %w", since.Format(time.DateOnly), err)
	}

	uids := data.AllUIDs()
	ids := make([]uint32, len(uids))
	for i, uid := range uids {
		ids[i] = uint32(uid)
	}
	return ids, nil
}

// Fetch retrieves the full body of every identified message and
// delivers them on the returned channel in protocol arrival order.
// The channel is closed when the server signals end-of-results. The
// sequence is consumed exactly once; it cannot be restarted.
func (s *Session) Fetch(ids []uint32) <-chan domain.RawMessage {
	out := make(chan domain.RawMessage)

	uids := make([]imapv2.UID, len(ids))
	for i, id := range ids {
		uids[i] = imapv2.UID(id)
	}

	bodySection := &imapv2.FetchItemBodySection{Peek: true}
	fetchOpts := &imapv2.FetchOptions{
		Envelope:     true,
		UID:          true,
		InternalDate: true,
		BodySection:  []*imapv2.FetchItemBodySection{bodySection},
	}

	go func() {
		defer close(out)

		cmd := s.client.Fetch(imapv2.UIDSetNum(uids...), fetchOpts)

		for {
			msg := cmd.Next()
			if msg == nil {
				break
			}
			buf, err := msg.Collect()
			if err != nil {
				log.Printf("[IMAP] collecting message: %v", err)
				continue
			}
			out <- domain.RawMessage{
				SeqID:        uint32(buf.SeqNum),
				Body:         buf.FindBodySection(bodySection),
				InternalDate: buf.InternalDate,
			}
		}

		if err := cmd.Close(); err != nil {
			log.Printf("[IMAP] closing fetch: %v", err)
		}
	}()

	return out
}

// Close logs out and releases the connection. Idempotent; safe to
// call on every exit path, including after a failed search.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if logoutErr := s.client.Logout().Wait(); logoutErr != nil {
			log.Printf("[IMAP] logout failed: %v", logoutErr)
		}
		err = s.client.Close()
	})
	return err
}
