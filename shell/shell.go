// Package shell implements the interactive REPL: a readline-backed
// command loop over one live Position, driving the solver and an
// optional opening book.
package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/afero"

	"github.com/gopherfour/solver/bitboard"
	"github.com/gopherfour/solver/book"
	"github.com/gopherfour/solver/cache"
	"github.com/gopherfour/solver/config"
	"github.com/gopherfour/solver/solver"
)

// Controller owns the REPL's state: the readline instance, the
// current position, the search's solver, the config driving table
// sizing and weak/strong mode, and an optionally loaded opening book.
type Controller struct {
	l   *readline.Instance
	out io.Writer

	cfg     *config.Config
	pos     bitboard.Position
	sv      *solver.Solver
	weak    bool
	theBook *book.Book
}

func filterInput(r rune) (rune, bool) {
	if r == readline.CharCtrlZ {
		return r, false
	}
	return r, true
}

// New creates a Controller. cfg.TTLogSize sizes the solver's
// transposition table; if cfg.BookPath is set, the book is loaded
// eagerly and any load error is returned.
func New(cfg *config.Config) (*Controller, error) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:              "\033[32mconnect4>\033[0m ",
		HistoryFile:         "/tmp/gopherfour_readline.tmp",
		EOFPrompt:           "exit",
		InterruptPrompt:     "^C",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, fmt.Errorf("shell: initializing readline: %w", err)
	}

	c := &Controller{
		l:    l,
		out:  l.Stderr(),
		cfg:  cfg,
		pos:  bitboard.Empty(),
		sv:   solver.New(cfg.TTLogSize),
		weak: cfg.Weak,
	}

	if cfg.BookPath != "" {
		b, err := cache.Load(cfg, cfg.BookPath, loadBook)
		if err != nil {
			return nil, fmt.Errorf("shell: loading book %s: %w", cfg.BookPath, err)
		}
		c.theBook = b
	}
	return c, nil
}

func loadBook(cfg *config.Config, path string) (*book.Book, error) {
	return book.Load(afero.NewOsFs(), path)
}

// newHeadless builds a Controller with no live readline instance,
// writing output to out instead. Used by tests to exercise dispatch
// without needing a real terminal.
func newHeadless(cfg *config.Config, out io.Writer) *Controller {
	return &Controller{
		out:  out,
		cfg:  cfg,
		pos:  bitboard.Empty(),
		sv:   solver.New(cfg.TTLogSize),
		weak: cfg.Weak,
	}
}

func (c *Controller) showMessage(msg string) {
	io.WriteString(c.out, msg)
	io.WriteString(c.out, "\n")
}

func (c *Controller) showError(err error) {
	c.showMessage("error: " + err.Error())
}

func (c *Controller) showBoard() {
	c.showMessage(renderBoard(c.pos))
}

// dispatch interprets one input line. It returns nothing: command
// errors are printed and the loop keeps running, and the "exit"/"bye"
// commands signal termination by sending to sig — matching the
// teacher's loop-keeps-running-on-command-errors convention.
func (c *Controller) dispatch(line string, sig chan os.Signal) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return

	case line == "new":
		c.pos = bitboard.Empty()
		c.sv.Reset()
		c.showMessage("new game")
		c.showBoard()

	case line == "show":
		c.showBoard()

	case line == "weak":
		c.weak = !c.weak
		c.showMessage(fmt.Sprintf("weak mode: %v", c.weak))

	case strings.HasPrefix(line, "play "):
		c.handlePlay(strings.TrimSpace(line[len("play "):]))

	case strings.HasPrefix(line, "load "):
		c.handleLoad(strings.TrimSpace(line[len("load "):]))

	case line == "solve":
		c.handleSolve()

	case line == "analyze":
		c.handleAnalyze()

	case strings.HasPrefix(line, "book "):
		c.handleBook(strings.TrimSpace(line[len("book "):]))

	case line == "help":
		c.showMessage(helpText)

	case line == "bye" || line == "exit":
		sig <- syscall.SIGINT

	default:
		c.showError(fmt.Errorf("unrecognized command %q (try `help`)", line))
	}
}

func (c *Controller) handlePlay(arg string) {
	col, err := strconv.Atoi(arg)
	if err != nil {
		c.showError(fmt.Errorf("play expects a column number: %w", err))
		return
	}
	col--
	if col < 0 || col >= bitboard.Width || !c.pos.CanPlay(col) {
		c.showError(fmt.Errorf("column %s is not playable", arg))
		return
	}
	c.pos = c.pos.Play(col)
	c.sv.Reset()
	c.showBoard()
}

func (c *Controller) handleLoad(seq string) {
	p, err := bitboard.ParseSequence(seq)
	if err != nil {
		c.showError(err)
		return
	}
	c.pos = p
	c.sv.Reset()
	c.showBoard()
}

func (c *Controller) handleSolve() {
	if bookScore, ok := c.bookLookup(); ok {
		c.showMessage(fmt.Sprintf("score: %d (from book)", bookScore))
		return
	}
	if c.pos.CanWinNext() {
		c.showMessage("score: immediate win available")
		return
	}
	score := c.sv.Solve(c.pos, c.weak)
	c.showMessage(fmt.Sprintf("score: %d (nodes: %d)", score, c.sv.NodeCount()))
}

func (c *Controller) handleAnalyze() {
	scores := c.sv.Analyze(c.pos, c.weak)
	var b strings.Builder
	for col := 0; col < bitboard.Width; col++ {
		if col > 0 {
			b.WriteString(" ")
		}
		if scores[col] == nil {
			b.WriteString("_")
		} else {
			fmt.Fprintf(&b, "%d", *scores[col])
		}
	}
	c.showMessage(b.String())
}

func (c *Controller) handleBook(arg string) {
	switch {
	case strings.HasPrefix(arg, "load "):
		path := strings.TrimSpace(arg[len("load "):])
		b, err := cache.Load(c.cfg, path, loadBook)
		if err != nil {
			c.showError(err)
			return
		}
		c.theBook = b
		c.showMessage("book loaded: " + path)
	default:
		c.showError(fmt.Errorf("unrecognized book subcommand %q", arg))
	}
}

func (c *Controller) bookLookup() (int, bool) {
	if c.theBook == nil {
		return 0, false
	}
	return c.theBook.Get(c.pos)
}

// Loop drives the readline prompt until EOF, Ctrl-C, or an explicit
// exit command, signalling termination on sig exactly as the command
// loop's sender expects.
func (c *Controller) Loop(sig chan os.Signal) {
	defer c.l.Close()
	for {
		line, err := c.l.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				return
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			return
		}
		c.dispatch(line, sig)
	}
}

const helpText = `commands:
  new              start a fresh empty board
  play <col>       drop a stone in column 1..7
  load <moves>     replace the board with the result of a move string
  show             display the current board
  solve            compute the game-theoretic score of the current position
  analyze          compute the score of every playable column
  weak             toggle weak (sign-only) solving
  book load <path> load an opening book file
  help             show this text
  exit, bye        quit
`

func renderBoard(p bitboard.Position) string {
	var b strings.Builder
	for row := bitboard.Height - 1; row >= 0; row-- {
		for col := 0; col < bitboard.Width; col++ {
			b.WriteString(cellGlyph(p, col, row))
		}
		b.WriteString("\n")
	}
	for col := 1; col <= bitboard.Width; col++ {
		fmt.Fprintf(&b, "%d", col)
	}
	return b.String()
}

func cellGlyph(p bitboard.Position, col, row int) string {
	bit := uint64(1) << (col*(bitboard.Height+1) + row)
	switch {
	case p.Mask()&bit == 0:
		return "."
	case p.Current()&bit != 0:
		return "x"
	default:
		return "o"
	}
}
