package listener

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pixil98/go-mud-client/internal"
	"github.com/pixil98/go-mud-client/internal/api"
	"github.com/pixil98/go-mud-client/internal/messaging"
	"github.com/pixil98/go-mud-client/internal/render"
	"github.com/pixil98/go-mud-client/internal/reply"
	"github.com/pixil98/go-mud-client/internal/store"
)

const maxLoginTries = 3

// Session runs one attached terminal: a login flow when the store isn't
// authenticated yet, then the REPL, with pushed replies interleaved at the
// prompt the way the realtime channel delivers them.
type Session struct {
	store    *store.Store
	registry *render.Registry
	bus      Subscriber
}

func (s *Session) Run(ctx context.Context, rw io.ReadWriter) error {
	rw.Write([]byte("Welcome back to the world.\n"))

	if !s.store.Authenticated() {
		if err := s.login(ctx, rw); err != nil {
			return err
		}
	}

	return s.repl(ctx, rw)
}

func (s *Session) login(ctx context.Context, rw io.ReadWriter) error {
	for tries := 0; tries < maxLoginTries; tries++ {
		username, err := internal.Prompt(rw, "By what name are you known? ",
			internal.WithValidator(func(str string) (bool, string) {
				if len(str) == 0 {
					return false, "A name is required.\n"
				}
				return true, ""
			}))
		if err != nil {
			return err
		}

		password, err := internal.Prompt(rw, "Password: ")
		if err != nil {
			return err
		}

		err = s.store.Login(ctx, strings.TrimSpace(username), password, "", "")
		if err == nil {
			rw.Write([]byte("You are in.\n\n"))
			return nil
		}
		if api.IsAuthError(err) {
			rw.Write([]byte("That's not it. Try again.\n"))
			continue
		}
		return err
	}

	return fmt.Errorf("too many login attempts")
}

func (s *Session) repl(ctx context.Context, rw io.ReadWriter) error {
	msgs := make(chan string, 16)

	unsubscribe, err := s.bus.Subscribe(messaging.SubjectReplies, func(data []byte) {
		var ev messaging.ReplyEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			return
		}
		if text, ok := s.describeEvent(ev); ok {
			select {
			case msgs <- text:
			default:
				// A slow terminal drops pushes rather than stalling the bus.
			}
		}
	})
	if err != nil {
		return fmt.Errorf("subscribing to replies: %w", err)
	}
	defer unsubscribe()

	// Start goroutine to read input lines into a channel
	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(rw)
		for scanner.Scan() {
			inputChan <- scanner.Text()
		}
		inputErrChan <- scanner.Err()
		close(inputChan)
	}()

	s.store.Submit(ctx, "look")
	s.prompt(rw)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case text := <-msgs:
			rw.Write([]byte("\n" + text + "\n"))
			s.prompt(rw)

		case line, ok := <-inputChan:
			if !ok {
				select {
				case err := <-inputErrChan:
					return err
				default:
					return nil
				}
			}

			line = strings.TrimSpace(line)
			if line == "" {
				s.prompt(rw)
				continue
			}

			done, err := s.handle(ctx, rw, line)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
			s.prompt(rw)
		}
	}
}

// handle runs one line: local slash commands stay in the session, anything
// else goes to the language evaluator.
func (s *Session) handle(ctx context.Context, rw io.ReadWriter, line string) (bool, error) {
	switch line {
	case "/quit":
		rw.Write([]byte("Goodbye!\n"))
		return true, nil

	case "/logout":
		s.store.Logout()
		rw.Write([]byte("Logged out. Goodbye!\n"))
		return true, nil

	case "/dismiss":
		if pending := s.store.Interactables(); len(pending) > 0 {
			s.store.RemoveHistoryEntry(pending[0])
			rw.Write([]byte("Dismissed.\n"))
		} else {
			rw.Write([]byte("Nothing to dismiss.\n"))
		}
		return false, nil

	default:
		s.store.Submit(ctx, line)
		return false, nil
	}
}

// describeEvent turns a bus notification into terminal text by rendering
// the tail of the sequence it touched.
func (s *Session) describeEvent(ev messaging.ReplyEvent) (string, bool) {
	switch {
	case ev.Tag == reply.TagWaiting:
		return "", false

	case ev.Cleared:
		return "Screen Cleared", true

	case ev.Interactive:
		pending := s.store.Interactables()
		if len(pending) == 0 {
			return "", false
		}
		tail := pending[len(pending)-1]
		return s.registry.Render(tail) + "\n(/dismiss to continue)", true

	default:
		responses := s.store.Responses()
		if len(responses) == 0 {
			return "", false
		}
		return s.registry.Render(responses[len(responses)-1]), true
	}
}

func (s *Session) prompt(rw io.ReadWriter) {
	rw.Write([]byte("> "))
}
