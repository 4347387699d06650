package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-logr/logr"
)

// Storage keys
const (
	keyPreferences = "preferences"
	keyStats       = "stats"
	gamePrefix     = "game/"
)

// ErrGameNotFound is returned when no game is archived under an ID.
var ErrGameNotFound = errors.New("game not found")

// Preferences stores the settings a session starts from.
type Preferences struct {
	Depth      int       `json:"depth"`
	Parallel   bool      `json:"parallel"`
	Workers    int       `json:"workers"`
	WhiteHuman bool      `json:"white_human"`
	BlackHuman bool      `json:"black_human"`
	LastPlayed time.Time `json:"last_played"`
}

// DefaultPreferences returns default preferences: a human playing white
// against a three-ply engine.
func DefaultPreferences() *Preferences {
	return &Preferences{
		Depth:      3,
		Workers:    1,
		WhiteHuman: true,
		BlackHuman: false,
	}
}

// GameRecord is an archived game.
type GameRecord struct {
	ID       string    `json:"id"`
	StartFEN string    `json:"start_fen"`
	Moves    []string  `json:"moves"`    // long algebraic, e.g. e7e8q
	Notation []string  `json:"notation"` // short notation as shown in the move log
	Result   string    `json:"result"`   // 1-0, 0-1, 1/2-1/2 or *
	Reason   string    `json:"reason"`
	White    string    `json:"white"`
	Black    string    `json:"black"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

// GameStats stores game statistics
type GameStats struct {
	GamesPlayed int            `json:"games_played"`
	WhiteWins   int            `json:"white_wins"`
	BlackWins   int            `json:"black_wins"`
	Draws       int            `json:"draws"`
	Unfinished  int            `json:"unfinished"`
	ByReason    map[string]int `json:"by_reason"`
	TotalPlies  int            `json:"total_plies"`
	LongestGame int            `json:"longest_game"`
}

// NewGameStats returns empty game statistics
func NewGameStats() *GameStats {
	return &GameStats{
		ByReason: make(map[string]int),
	}
}

// DrawRate returns the share of finished games that were drawn (0-100).
func (s *GameStats) DrawRate() float64 {
	finished := s.GamesPlayed - s.Unfinished
	if finished == 0 {
		return 0
	}
	return float64(s.Draws) / float64(finished) * 100
}

// Storage wraps BadgerDB for persistent storage
type Storage struct {
	db  *badger.DB
	log logr.Logger
}

// NewStorage opens the database in the platform data directory.
func NewStorage(log logr.Logger) (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}
	return Open(dbDir, log)
}

// Open opens or creates the database in dir.
func Open(dir string, log logr.Logger) (*Storage, error) {
	return open(badger.DefaultOptions(dir), log)
}

// OpenInMemory opens a database that lives only as long as the process.
func OpenInMemory(log logr.Logger) (*Storage, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), log)
}

func open(opts badger.Options, log logr.Logger) (*Storage, error) {
	opts.Logger = &badgerLogger{log: log.WithName("badger")}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.V(1).Info("database opened", "dir", opts.Dir, "inMemory", opts.InMemory)

	return &Storage{db: db, log: log}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SavePreferences saves preferences
func (s *Storage) SavePreferences(prefs *Preferences) error {
	prefs.LastPlayed = time.Now()

	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPreferences), data)
	})
}

// LoadPreferences loads preferences, returns defaults if not found
func (s *Storage) LoadPreferences() (*Preferences, error) {
	prefs := DefaultPreferences()
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, keyPreferences, prefs)
	})
	return prefs, err
}

// LoadStats loads game statistics, returns empty stats if not found
func (s *Storage) LoadStats() (*GameStats, error) {
	stats := NewGameStats()
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, keyStats, stats)
	})
	return stats, err
}

// RecordGame archives a game and updates the statistics in one transaction.
// A record without an ID gets one derived from its finish time.
func (s *Storage) RecordGame(rec *GameRecord) error {
	if rec.Finished.IsZero() {
		rec.Finished = time.Now()
	}
	if rec.ID == "" {
		rec.ID = fmt.Sprintf("%020d", rec.Finished.UnixNano())
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		stats := NewGameStats()
		if err := getJSON(txn, keyStats, stats); err != nil {
			return err
		}
		stats.add(rec)

		if err := setJSON(txn, gamePrefix+rec.ID, rec); err != nil {
			return err
		}
		return setJSON(txn, keyStats, stats)
	})
	if err != nil {
		return fmt.Errorf("record game %s: %w", rec.ID, err)
	}

	s.log.V(1).Info("game recorded", "id", rec.ID, "result", rec.Result, "plies", len(rec.Moves))
	return nil
}

// add folds one game into the totals.
func (s *GameStats) add(rec *GameRecord) {
	s.GamesPlayed++
	switch rec.Result {
	case "1-0":
		s.WhiteWins++
	case "0-1":
		s.BlackWins++
	case "1/2-1/2":
		s.Draws++
	default:
		s.Unfinished++
	}
	if rec.Reason != "" {
		s.ByReason[rec.Reason]++
	}

	s.TotalPlies += len(rec.Moves)
	if len(rec.Moves) > s.LongestGame {
		s.LongestGame = len(rec.Moves)
	}
}

// LoadGame returns the archived game with the given ID.
func (s *Storage) LoadGame(id string) (*GameRecord, error) {
	rec := &GameRecord{}
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(gamePrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrGameNotFound, id)
		}
		if err != nil {
			return err
		}
		return getJSON(txn, gamePrefix+id, rec)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListGames returns up to limit archived games, newest first. A limit of zero
// or less returns all of them.
func (s *Storage) ListGames(limit int) ([]*GameRecord, error) {
	var games []*GameRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(gamePrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts from the largest key under the prefix.
		seek := []byte(gamePrefix + "\xff")
		for it.Seek(seek); it.ValidForPrefix(opts.Prefix); it.Next() {
			if limit > 0 && len(games) >= limit {
				break
			}
			rec := &GameRecord{}
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, rec)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			games = append(games, rec)
		}
		return nil
	})

	return games, err
}

// getJSON decodes the value under key into v. A missing key leaves v as is.
func getJSON(txn *badger.Txn, key string, v any) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set([]byte(key), data)
}

// badgerLogger routes badger's printf-style logging into logr. Badger is
// chatty at info level, so only warnings and errors show at V(0).
type badgerLogger struct {
	log logr.Logger
}

func (l *badgerLogger) Errorf(format string, args ...any) {
	l.log.Error(nil, trimLine(format, args))
}

func (l *badgerLogger) Warningf(format string, args ...any) {
	l.log.Info(trimLine(format, args), "level", "warning")
}

func (l *badgerLogger) Infof(format string, args ...any) {
	l.log.V(2).Info(trimLine(format, args))
}

func (l *badgerLogger) Debugf(format string, args ...any) {
	l.log.V(3).Info(trimLine(format, args))
}

func trimLine(format string, args []any) string {
	return strings.TrimSpace(fmt.Sprintf(format, args...))
}
