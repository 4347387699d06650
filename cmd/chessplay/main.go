// Command chessplay plays chess in the terminal against the built-in engine.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/pkg/profile"

	"github.com/hailam/chesscore/internal/engine"
	"github.com/hailam/chesscore/internal/game"
	"github.com/hailam/chesscore/internal/storage"
)

var (
	depth      = flag.Int("depth", engine.DefaultDepth, "search depth in plies")
	parallel   = flag.Bool("parallel", false, "search root moves concurrently")
	workers    = flag.Int("workers", engine.DefaultConfig().Workers, "concurrent root searches with -parallel")
	white      = flag.String("white", "human", "white player: human or engine")
	black      = flag.String("black", "engine", "black player: human or engine")
	fen        = flag.String("fen", "", "start from this FEN instead of the initial position")
	dbDir      = flag.String("db", "", "database directory (default: platform data directory)")
	noDB       = flag.Bool("nodb", false, "do not load preferences or archive games")
	cpuprofile = flag.String("cpuprofile", "", "write a CPU profile into this directory")
	seed       = flag.Int64("seed", 0, "random seed for move ordering (0 = time based)")
	verbosity  = flag.Int("v", 0, "log verbosity")
)

func main() {
	os.Exit(runMain(os.Args[1:]))
}

// runMain parses args, runs the program and returns the exit code. The CPU
// profile is stopped before it returns, so failing runs keep their profile.
func runMain(args []string) int {
	_ = flag.CommandLine.Parse(args) // exits on bad flags

	stdr.SetVerbosity(*verbosity)
	logger := stdr.New(log.New(os.Stderr, "", log.LstdFlags))

	if *cpuprofile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuprofile), profile.NoShutdownHook, profile.Quiet).Stop()
	}

	if err := run(logger); err != nil {
		logger.Error(err, "chessplay failed")
		return 1
	}
	return 0
}

func run(logger logr.Logger) error {
	var store *storage.Storage
	if !*noDB {
		var err error
		if *dbDir != "" {
			store, err = storage.Open(*dbDir, logger)
		} else {
			store, err = storage.NewStorage(logger)
		}
		if err != nil {
			return err
		}
		defer store.Close()
	}

	prefs := storage.DefaultPreferences()
	if store != nil {
		loaded, err := store.LoadPreferences()
		if err != nil {
			return fmt.Errorf("load preferences: %w", err)
		}
		prefs = loaded
	}
	if err := applyFlags(prefs); err != nil {
		return err
	}

	cfg := engine.Config{Depth: prefs.Depth, Parallel: prefs.Parallel, Workers: prefs.Workers}
	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	eng, err := engine.NewEngine(cfg,
		engine.WithRand(rand.New(rand.NewSource(rngSeed))),
		engine.WithLogger(logger.WithName("engine")))
	if err != nil {
		return err
	}
	eng.OnInfo = func(info engine.SearchInfo) {
		fmt.Printf("info depth %d score %s nodes %d time %v\n",
			info.Depth, engine.ScoreToString(info.Score), info.Nodes, info.Time.Round(time.Millisecond))
	}

	sessionOpts := []game.Option{
		game.WithLogger(logger.WithName("game")),
		game.WithPlayers(player(prefs.WhiteHuman), player(prefs.BlackHuman)),
	}
	if *fen != "" {
		sessionOpts = append(sessionOpts, game.WithFEN(*fen))
	}
	if store != nil {
		sessionOpts = append(sessionOpts, game.WithRecorder(store))
		if err := store.SavePreferences(prefs); err != nil {
			logger.Error(err, "failed to save preferences")
		}
	}

	session, err := game.NewSession(eng, sessionOpts...)
	if err != nil {
		return err
	}
	return play(session, eng, store, os.Stdin, os.Stdout)
}

// applyFlags overrides stored preferences with the flags given on the
// command line.
func applyFlags(prefs *storage.Preferences) error {
	var err error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "depth":
			prefs.Depth = *depth
		case "parallel":
			prefs.Parallel = *parallel
		case "workers":
			prefs.Workers = *workers
		case "white":
			prefs.WhiteHuman, err = parsePlayer(*white, err)
		case "black":
			prefs.BlackHuman, err = parsePlayer(*black, err)
		}
	})
	if prefs.Workers < 1 {
		prefs.Workers = 1
	}
	return err
}

func parsePlayer(s string, prev error) (bool, error) {
	switch strings.ToLower(s) {
	case "human":
		return true, prev
	case "engine", "computer":
		return false, prev
	}
	return false, fmt.Errorf("unknown player %q: want human or engine", s)
}

func player(human bool) game.Player {
	if human {
		return game.Human
	}
	return game.Computer
}

const help = `Commands:
  e2e4, e7e8n   play a move (long algebraic, optional promotion letter)
  moves         list legal moves
  undo          take back the last move
  reset         start a new game
  history       show the move log
  depth N       set the search depth
  level L       set the search depth by level: easy, medium or hard
  perft N       count leaf nodes of the current position
  stats         show archived game statistics
  quit          leave
`

// play runs the terminal loop until the input ends or the user quits.
func play(s *game.Session, eng *engine.Engine, store *storage.Storage, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, help)

	for {
		fmt.Fprint(out, s.State().String())

		if s.Over() {
			fmt.Fprintf(out, "Game over: %s (%s). Type reset or quit.\n", s.Result(), s.Status())
		} else if s.EngineToMove() {
			m, err := s.EngineReply()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Engine plays %s\n", m.String())
			continue
		}

		fmt.Fprintf(out, "%s> ", s.State().SideToMove())
		if !scanner.Scan() {
			return scanner.Err()
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "":
		case "quit", "exit":
			return nil
		case "help":
			fmt.Fprint(out, help)
		case "moves":
			var list []string
			for _, m := range s.LegalMoves() {
				list = append(list, m.String())
			}
			fmt.Fprintln(out, strings.Join(list, " "))
		case "undo":
			if !s.Undo() {
				fmt.Fprintln(out, "Nothing to undo.")
				break
			}
			// Keep going until a human's own move has been taken back.
			for s.Player(s.State().SideToMove()) == game.Computer && s.Undo() {
			}
		case "reset":
			if err := s.Reset(); err != nil {
				return err
			}
		case "history":
			printHistory(out, s.Notation())
		case "depth":
			n, err := strconv.Atoi(arg)
			if err == nil {
				err = eng.SetDepth(n)
			}
			if err != nil {
				fmt.Fprintf(out, "Invalid depth %q: want 0..%d\n", arg, engine.MaxDepth)
			}
		case "level":
			d, ok := parseLevel(arg)
			if !ok {
				fmt.Fprintf(out, "Unknown level %q: want easy, medium or hard\n", arg)
				break
			}
			eng.SetDifficulty(d)
		case "perft":
			n, err := strconv.Atoi(arg)
			if err != nil || n < 0 {
				fmt.Fprintf(out, "Invalid perft depth %q\n", arg)
				break
			}
			start := time.Now()
			nodes := eng.Perft(s.State().Clone(), n)
			fmt.Fprintf(out, "Nodes: %d (%v)\n", nodes, time.Since(start).Round(time.Millisecond))
		case "stats":
			printStats(out, store)
		default:
			if err := s.PlayString(cmd); err != nil {
				fmt.Fprintf(out, "Invalid move %q. Type moves for the legal list.\n", cmd)
			}
		}
	}
}

func parseLevel(s string) (engine.Difficulty, bool) {
	for _, d := range []engine.Difficulty{engine.Easy, engine.Medium, engine.Hard} {
		if strings.EqualFold(s, d.String()) {
			return d, true
		}
	}
	return 0, false
}

func printHistory(out io.Writer, notation []string) {
	for i := 0; i < len(notation); i += 2 {
		line := fmt.Sprintf("%d. %s", i/2+1, notation[i])
		if i+1 < len(notation) {
			line += " " + notation[i+1]
		}
		fmt.Fprintln(out, line)
	}
}

func printStats(out io.Writer, store *storage.Storage) {
	if store == nil {
		fmt.Fprintln(out, "No database (started with -nodb).")
		return
	}
	stats, err := store.LoadStats()
	if err != nil {
		fmt.Fprintf(out, "Cannot load stats: %v\n", err)
		return
	}
	fmt.Fprintf(out, "Games: %d  White wins: %d  Black wins: %d  Draws: %d (%.0f%%)\n",
		stats.GamesPlayed, stats.WhiteWins, stats.BlackWins, stats.Draws, stats.DrawRate())

	games, err := store.ListGames(5)
	if err != nil {
		fmt.Fprintf(out, "Cannot list games: %v\n", err)
		return
	}
	for _, g := range games {
		fmt.Fprintf(out, "  %s  %s  %s vs %s  %d plies\n",
			g.Finished.Format(time.DateTime), g.Result, g.White, g.Black, len(g.Moves))
	}
}
