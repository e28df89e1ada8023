/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// keyValue is the minimal durable storage contract the session store is
// built on. Backends only need get/set/remove/keys, so the store works the
// same over SQLite, an in-memory map in tests, or any other medium.
type keyValue interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
	Keys() ([]string, error)
}

// memoryKV is the non-durable fallback backend, also used in tests.
type memoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: make(map[string][]byte)}
}

func (m *memoryKV) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *memoryKV) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memoryKV) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *memoryKV) Keys() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.values))
	for key := range m.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// sqliteKV persists keys in a single SQLite table. The updated_at column
// orders Keys() most-recent-first, which the store's eviction leans on.
type sqliteKV struct {
	db *sql.DB
}

func newSqliteKV(path string) (*sqliteKV, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL,
		updated_at INTEGER NOT NULL DEFAULT (unixepoch())
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &sqliteKV{db: db}, nil
}

func (s *sqliteKV) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *sqliteKV) Set(key string, value []byte) error {
	_, err := s.db.Exec(`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, unixepoch())
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value)
	return err
}

func (s *sqliteKV) Remove(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}

func (s *sqliteKV) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT key FROM kv ORDER BY updated_at DESC, key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *sqliteKV) Close() error {
	return s.db.Close()
}

// SessionStore persists one session per deck id over a keyValue backend.
// Persistence is best-effort caching: corrupt entries are erased rather
// than surfaced, and failed writes are dropped after one eviction retry.
type SessionStore struct {
	cfg *Config
	kv  keyValue

	// maxSessions bounds how many sessions eviction keeps around when a
	// write fails for capacity reasons.
	maxSessions int
}

func newSessionStore(cfg *Config, kv keyValue) *SessionStore {
	max := cfg.maxSessions
	if max < 1 {
		max = 10
	}
	return &SessionStore{
		cfg:         cfg,
		kv:          kv,
		maxSessions: max,
	}
}

// Load returns the stored session for a deck, or nil if none exists.
// Stored bytes that fail to parse, or that lack the identity fields needed
// to even judge them, are treated as corrupt: silently erased, nil
// returned. A parse error never reaches the caller.
func (s *SessionStore) Load(deckID string) *Session {
	data, ok, err := s.kv.Get(sessionKey(deckID))
	if err != nil {
		logf(s.cfg, "STORE: Failed to read session for %s: %v", deckID, err)
		return nil
	}
	if !ok {
		return nil
	}

	session := &Session{}
	if err := json.Unmarshal(data, session); err != nil {
		logf(s.cfg, "STORE: Erasing corrupt session for %s: %v", deckID, err)
		s.Clear(deckID)
		return nil
	}

	if session.DeckID == "" || session.DeckVersion == "" || session.GameType == "" {
		logf(s.cfg, "STORE: Erasing session for %s with missing identity fields", deckID)
		s.Clear(deckID)
		return nil
	}

	return session
}

// Save writes the session keyed by its own deck id. On failure it evicts
// down to the configured cap and retries exactly once; a second failure is
// logged and dropped, never returned.
func (s *SessionStore) Save(session Session) {
	data, err := json.Marshal(session)
	if err != nil {
		logf(s.cfg, "STORE: Failed to encode session for %s: %v", session.DeckID, err)
		return
	}

	key := sessionKey(session.DeckID)

	err = s.kv.Set(key, data)
	if err == nil {
		return
	}
	logf(s.cfg, "STORE: Failed to save session for %s, evicting: %v", session.DeckID, err)

	s.evictOld()

	if err := s.kv.Set(key, data); err != nil {
		logf(s.cfg, "STORE: Failed to save session for %s after eviction: %v", session.DeckID, err)
	}
}

// evictOld keeps the first maxSessions sessions in listing order and
// removes the rest. Listing order is most-recently-written first on the
// SQLite backend, so this approximates LRU; elsewhere it is best-effort.
func (s *SessionStore) evictOld() {
	deckIDs := s.List()
	if len(deckIDs) <= s.maxSessions {
		return
	}

	for _, deckID := range deckIDs[s.maxSessions:] {
		s.Clear(deckID)
	}
}

// Clear removes the stored session for a deck.
func (s *SessionStore) Clear(deckID string) {
	if err := s.kv.Remove(sessionKey(deckID)); err != nil {
		logf(s.cfg, "STORE: Failed to clear session for %s: %v", deckID, err)
	}
}

// Has reports whether a session is stored for a deck.
func (s *SessionStore) Has(deckID string) bool {
	_, ok, err := s.kv.Get(sessionKey(deckID))
	return err == nil && ok
}

// List returns the deck ids of all stored sessions, in backend listing
// order.
func (s *SessionStore) List() []string {
	keys, err := s.kv.Keys()
	if err != nil {
		logf(s.cfg, "STORE: Failed to list sessions: %v", err)
		return nil
	}

	var deckIDs []string
	for _, key := range keys {
		if strings.HasPrefix(key, sessionKeyPrefix) {
			deckIDs = append(deckIDs, strings.TrimPrefix(key, sessionKeyPrefix))
		}
	}
	return deckIDs
}

// Count returns the number of stored sessions.
func (s *SessionStore) Count() int {
	return len(s.List())
}

// ClearAll removes every stored session.
func (s *SessionStore) ClearAll() {
	for _, deckID := range s.List() {
		s.Clear(deckID)
	}
}

// ExportAll returns all stored sessions keyed by deck id.
func (s *SessionStore) ExportAll() map[string]Session {
	sessions := make(map[string]Session)
	for _, deckID := range s.List() {
		if session := s.Load(deckID); session != nil {
			sessions[deckID] = *session
		}
	}
	return sessions
}

// ImportAll stores the given sessions, skipping entries whose embedded
// deck id does not match their map key.
func (s *SessionStore) ImportAll(sessions map[string]Session) {
	for deckID, session := range sessions {
		if session.DeckID != deckID {
			logf(s.cfg, "STORE: Skipping import of session keyed %s with deck id %s", deckID, session.DeckID)
			continue
		}
		s.Save(session)
	}
}
