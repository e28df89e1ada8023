/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
)

//go:embed decks/*.json
var builtinDecks embed.FS

const deckIndexFile = "index.json"

// Deck is an immutable content bundle for one game. Decks are produced by
// the external generation pipeline and never modified here.
type Deck struct {
	SchemaVersion int        `json:"schemaVersion"`
	DeckID        string     `json:"deckId"`
	Version       string     `json:"version"`
	Name          string     `json:"name"`
	GameType      GameType   `json:"gameType"`
	Language      string     `json:"language"`
	Difficulty    Difficulty `json:"difficulty"`
	Topics        []string   `json:"topics"`
	NSFW          bool       `json:"nsfw"`
	Cards         cardList   `json:"cards"`
}

// CardByID returns the card with the given id, or nil.
func (d *Deck) CardByID(cardID string) Card {
	for _, card := range d.Cards {
		if card.ID() == cardID {
			return card
		}
	}
	return nil
}

// CardIDs returns the deck's card ids in catalog order.
func (d *Deck) CardIDs() []string {
	ids := make([]string, 0, len(d.Cards))
	for _, card := range d.Cards {
		ids = append(ids, card.ID())
	}
	return ids
}

func (d *Deck) validate() error {
	if d.DeckID == "" {
		return errors.New("deck is missing deckId")
	}
	if d.Version == "" {
		return fmt.Errorf("deck %q is missing a version", d.DeckID)
	}
	if !isGameType(string(d.GameType)) {
		return fmt.Errorf("deck %q has unknown game type %q", d.DeckID, d.GameType)
	}

	seen := make(map[string]bool, len(d.Cards))
	for _, card := range d.Cards {
		if card.Game() != d.GameType {
			return fmt.Errorf("deck %q contains a %s card", d.DeckID, card.Game())
		}
		if seen[card.ID()] {
			return fmt.Errorf("deck %q contains duplicate card id %q", d.DeckID, card.ID())
		}
		seen[card.ID()] = true
	}

	return nil
}

// DeckMeta is the per-deck summary listed in the catalog, used for
// browsing before a full deck is fetched.
type DeckMeta struct {
	DeckID      string     `json:"deckId"`
	Name        string     `json:"name"`
	GameType    GameType   `json:"gameType"`
	Language    string     `json:"language"`
	Difficulty  Difficulty `json:"difficulty"`
	Topics      []string   `json:"topics"`
	Recommended bool       `json:"recommended"`
	NSFW        bool       `json:"nsfw"`
	Version     string     `json:"version"`
	CardCount   int        `json:"cardCount"`
}

// DeckIndex is the catalog file shipped alongside the decks.
type DeckIndex struct {
	SchemaVersion int        `json:"schemaVersion"`
	Decks         []DeckMeta `json:"decks"`
}

// errDeckNotFound distinguishes a missing deck from a transient load
// failure, so handlers can answer 404 instead of 500.
var errDeckNotFound = errors.New("deck not found")

// Library loads and caches deck content. Decks come from the embedded
// catalog by default, or from an external directory when one is
// configured. The cache is owned by the Library and cleared explicitly
// via Invalidate, never shared as package state.
type Library struct {
	dir string

	mu    sync.RWMutex
	index *DeckIndex
	decks map[string]*Deck
}

func newLibrary(dir string) *Library {
	return &Library{
		dir:   dir,
		decks: make(map[string]*Deck),
	}
}

func (l *Library) readFile(name string) ([]byte, error) {
	if l.dir != "" {
		return os.ReadFile(filepath.Join(l.dir, name))
	}
	return builtinDecks.ReadFile("decks/" + name)
}

// Index returns the deck catalog, loading it on first use.
func (l *Library) Index() (*DeckIndex, error) {
	l.mu.RLock()
	cached := l.index
	l.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	data, err := l.readFile(deckIndexFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load deck index: %w", err)
	}

	index := &DeckIndex{}
	if err := json.Unmarshal(data, index); err != nil {
		return nil, fmt.Errorf("failed to parse deck index: %w", err)
	}

	l.mu.Lock()
	l.index = index
	l.mu.Unlock()

	return index, nil
}

// Deck returns the full deck with the given id, loading and caching it on
// first use. Returns errDeckNotFound if no such deck exists.
func (l *Library) Deck(deckID string) (*Deck, error) {
	l.mu.RLock()
	cached := l.decks[deckID]
	l.mu.RUnlock()
	if cached != nil {
		return cached, nil
	}

	// Deck ids become filenames; refuse anything that could escape the
	// deck directory.
	if deckID == "" || strings.ContainsAny(deckID, `/\`) || strings.Contains(deckID, "..") {
		return nil, errDeckNotFound
	}

	data, err := l.readFile(deckID + ".json")
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errDeckNotFound
		}
		return nil, fmt.Errorf("failed to load deck %q: %w", deckID, err)
	}

	deck := &Deck{}
	if err := json.Unmarshal(data, deck); err != nil {
		return nil, fmt.Errorf("failed to parse deck %q: %w", deckID, err)
	}
	if err := deck.validate(); err != nil {
		return nil, err
	}
	if deck.DeckID != deckID {
		return nil, fmt.Errorf("deck file %q declares deckId %q", deckID, deck.DeckID)
	}

	l.mu.Lock()
	l.decks[deckID] = deck
	l.mu.Unlock()

	return deck, nil
}

// Meta returns the catalog entry for one deck, or nil if not listed.
func (l *Library) Meta(deckID string) (*DeckMeta, error) {
	index, err := l.Index()
	if err != nil {
		return nil, err
	}
	for i := range index.Decks {
		if index.Decks[i].DeckID == deckID {
			return &index.Decks[i], nil
		}
	}
	return nil, nil
}

// DecksForGame returns catalog entries for one game type.
func (l *Library) DecksForGame(gameType GameType) ([]DeckMeta, error) {
	index, err := l.Index()
	if err != nil {
		return nil, err
	}
	var decks []DeckMeta
	for _, meta := range index.Decks {
		if meta.GameType == gameType {
			decks = append(decks, meta)
		}
	}
	return decks, nil
}

// Languages returns the sorted set of languages across all decks.
func (l *Library) Languages() ([]string, error) {
	index, err := l.Index()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, meta := range index.Decks {
		seen[meta.Language] = true
	}
	languages := make([]string, 0, len(seen))
	for language := range seen {
		languages = append(languages, language)
	}
	sort.Strings(languages)
	return languages, nil
}

// Topics returns the sorted set of topics across decks for one game type.
func (l *Library) Topics(gameType GameType) ([]string, error) {
	decks, err := l.DecksForGame(gameType)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, meta := range decks {
		for _, topic := range meta.Topics {
			seen[topic] = true
		}
	}
	topics := make([]string, 0, len(seen))
	for topic := range seen {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return topics, nil
}

// Invalidate drops all cached content, forcing a reload on next access.
func (l *Library) Invalidate() {
	l.mu.Lock()
	l.index = nil
	l.decks = make(map[string]*Deck)
	l.mu.Unlock()
}

func writeJSON(cfg *Config, w http.ResponseWriter, status int, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	securityHeaders(cfg, w)
	w.WriteHeader(status)

	_, err = w.Write(data)
	return err
}

func serveDeckIndex(cfg *Config, library *Library, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		index, err := library.Index()
		if err != nil {
			errs <- err
			http.Error(w, "failed to load deck index", http.StatusInternalServerError)
			return
		}

		if err := writeJSON(cfg, w, http.StatusOK, index); err != nil {
			errs <- err
			return
		}

		logf(cfg, "DECKS: Index (%d decks) to %s in %s",
			len(index.Decks),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

// serveDeck handles both /decks/index.json and /decks/<deckId>.json, since
// httprouter cannot mix a static child with a wildcard at the same position.
func serveDeck(cfg *Config, library *Library, errs chan<- error) httprouter.Handle {
	index := serveDeckIndex(cfg, library, errs)

	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		if p.ByName("deck") == deckIndexFile {
			index(w, r, p)
			return
		}

		deckID := strings.TrimSuffix(p.ByName("deck"), ".json")

		deck, err := library.Deck(deckID)
		switch {
		case errors.Is(err, errDeckNotFound):
			http.NotFound(w, r)
			return
		case err != nil:
			errs <- err
			http.Error(w, "failed to load deck", http.StatusInternalServerError)
			return
		}

		if err := writeJSON(cfg, w, http.StatusOK, deck); err != nil {
			errs <- err
			return
		}

		logf(cfg, "DECKS: %s (%d cards) to %s in %s",
			deck.DeckID,
			len(deck.Cards),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}

func registerDecks(cfg *Config, library *Library, mux *httprouter.Router, errs chan<- error) {
	mux.GET(cfg.prefix+"/decks/:deck", serveDeck(cfg, library, errs))
}
