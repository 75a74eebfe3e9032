package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/levanminh04/Network-Programming/internal/actor"
	"github.com/levanminh04/Network-Programming/internal/game"
	"github.com/levanminh04/Network-Programming/internal/session"
)

var errQuit = errors.New("quit")

const helpText = `commands:
  login <user>                     log in (prompts for password)
  register <user> <email> [name]  create an account (prompts for password)
  find                             look for an opponent
  cancel                           stop looking
  play <cardId|index>              play a card this round
  lobby                            leave a finished game
  leaderboard                      fetch the leaderboard
  logout                           end the session
  reconnect                        retry after the connection gave up
  dismiss                          clear the error line
  state                            dump the current state as JSON
  help                             show this text
  quit                             exit
`

type backend interface {
	Dispatch(in actor.Input) error
	NowMs() int64
	Snapshot() session.Snapshot
	Subscribe() (<-chan session.Snapshot, func())
}

type repl struct {
	b   backend
	in  *bufio.Reader
	out io.Writer

	outMu sync.Mutex

	readPassword func(prompt string) (string, error)
}

func newREPL(b backend, in io.Reader, out io.Writer) *repl {
	r := &repl{b: b, in: bufio.NewReader(in), out: out}
	r.readPassword = r.promptLine
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		r.readPassword = func(prompt string) (string, error) {
			r.printf("%s", prompt)
			pw, err := term.ReadPassword(fd)
			r.printf("\n")
			return string(pw), err
		}
	}
	return r
}

// Run renders snapshots and executes input lines until quit, end of input or
// ctx is done.
func (r *repl) Run(ctx context.Context) error {
	snaps, unsubscribe := r.b.Subscribe()
	defer unsubscribe()

	r.printf("%s", helpText)
	prev := session.Snapshot{}
	r.render(prev, r.b.Snapshot())
	prev = r.b.Snapshot()

	done := make(chan error, 1)
	go func() { done <- r.readLoop() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-done:
			return err
		case snap, ok := <-snaps:
			if !ok {
				return nil
			}
			r.render(prev, snap)
			prev = snap
		}
	}
}

func (r *repl) readLoop() error {
	for {
		line, err := r.in.ReadString('\n')
		if line != "" {
			switch execErr := r.execute(line); {
			case errors.Is(execErr, errQuit):
				return nil
			case execErr != nil:
				r.printf("error: %v\n", execErr)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}
}

func (r *repl) promptLine(prompt string) (string, error) {
	r.printf("%s", prompt)
	line, err := r.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *repl) execute(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var in actor.Input
	switch cmd {
	case "login":
		if len(args) != 1 {
			return errors.New("usage: login <user>")
		}
		pw, err := r.readPassword("password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		in = game.Login(args[0], pw)
	case "register":
		if len(args) < 2 {
			return errors.New("usage: register <user> <email> [display name]")
		}
		pw, err := r.readPassword("password: ")
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		in = game.Register(args[0], pw, args[1], strings.Join(args[2:], " "))
	case "find":
		in = game.FindMatch(r.b.NowMs())
	case "cancel":
		in = game.CancelMatch()
	case "play":
		if len(args) != 1 {
			return errors.New("usage: play <cardId|index>")
		}
		id, err := resolveCard(r.b.Snapshot().State.Round, args[0])
		if err != nil {
			return err
		}
		in = game.PlayCard(id, r.b.NowMs())
	case "lobby":
		in = game.BackToLobby()
	case "leaderboard":
		in = game.RequestLeaderboard()
	case "logout":
		in = game.Logout()
	case "reconnect":
		in = game.Reconnect()
	case "dismiss":
		in = game.DismissError()
	case "state":
		data, err := json.MarshalIndent(r.b.Snapshot(), "", "  ")
		if err != nil {
			return err
		}
		r.printf("%s\n", data)
		return nil
	case "help", "?":
		r.printf("%s", helpText)
		return nil
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}

	if err := r.b.Dispatch(in); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

// resolveCard accepts a card id or a 1-based position in the hand.
func resolveCard(round game.Round, arg string) (string, error) {
	if _, ok := round.FindCard(arg); ok {
		return arg, nil
	}
	if idx, err := strconv.Atoi(arg); err == nil && idx >= 1 && idx <= len(round.AvailableCards) {
		return round.AvailableCards[idx-1].ID, nil
	}
	if len(round.AvailableCards) == 0 {
		return "", errors.New("no cards in hand")
	}
	return "", fmt.Errorf("no card %q in hand", arg)
}

func (r *repl) printf(format string, args ...any) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

func (r *repl) render(prev, next session.Snapshot) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	render(r.out, prev, next)
}
