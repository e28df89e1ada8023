// Partydeck play channel
//
// Each deck gets its own play hub at /play/:deckid/ws. The hub owns that
// deck's session: clients send intent messages (start, resume, next, pass,
// reveal, correct, end_turn, next_round, restart, clear) and the hub runs
// the matching engine transition, persists the result through the session
// manager, and broadcasts the new state to every connected client.
//
// Play is single-party by design: a second tab on the same deck shares the
// session, last write wins, no locking beyond the hub's own goroutine.
// Hubs are reaped after a configurable idle timeout, like game hubs in the
// rest of the app. A QR endpoint shares the play URL, backed by go-qrcode.

package main

import (
	_ "embed"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

// PlayAction is a message coming from clients.
type PlayAction struct {
	Type    string `json:"type"`              // "start", "resume", "next", "pass", ...
	Shuffle *bool  `json:"shuffle,omitempty"` // start
}

// StateMessage carries the full play state to clients after every change.
type StateMessage struct {
	Type          string            `json:"type"` // "session_state"
	Started       bool              `json:"started"`
	HasSaved      bool              `json:"hasSaved"`
	Session       *Session          `json:"session,omitempty"`
	Card          Card              `json:"card,omitempty"`
	Progress      *Progress         `json:"progress,omitempty"`
	Complete      bool              `json:"complete"`
	RoundComplete bool              `json:"roundComplete"`
	Invalid       *ValidationResult `json:"invalid,omitempty"`
}

// ErrorMessage is addressed to a single client rather than broadcast,
// for problems only the sender needs to hear about.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// DeckInfoMessage is sent once on connect so the client can render the
// deck header without a second fetch.
type DeckInfoMessage struct {
	Type       string     `json:"type"` // "deck_info"
	DeckID     string     `json:"deckId"`
	Name       string     `json:"name"`
	GameType   GameType   `json:"gameType"`
	Game       GameInfo   `json:"game"`
	Language   string     `json:"language"`
	Difficulty Difficulty `json:"difficulty"`
	CardCount  int        `json:"cardCount"`
}

type playClient struct {
	conn     *websocket.Conn
	send     chan any
	clientID string
}

type playRequest struct {
	client *playClient
	msg    PlayAction
}

// playHub owns the play state for a single deck. The clients map belongs
// to the run goroutine alone; everything else reaches it only through the
// register/unreg/actions channels, and the reaper through done. Closing
// done is the only shutdown signal, so close-of-closed can't happen.
type playHub struct {
	deck    *Deck
	manager *SessionManager

	clients  map[*playClient]bool
	register chan *playClient
	unreg    chan *playClient
	actions  chan playRequest
	done     chan struct{}

	mu         sync.RWMutex
	lastActive time.Time

	// session is the active state; nil until started or resumed. invalid
	// holds the validation failure for a stored session that cannot be
	// resumed, so clients can offer the start-new flow with a reason.
	session *Session
	invalid *ValidationResult
}

func newPlayHub(deck *Deck, manager *SessionManager) *playHub {
	return &playHub{
		deck:       deck,
		manager:    manager,
		clients:    make(map[*playClient]bool),
		register:   make(chan *playClient),
		unreg:      make(chan *playClient),
		actions:    make(chan playRequest),
		done:       make(chan struct{}),
		lastActive: time.Now(),
	}
}

func (h *playHub) run(cfg *Config) {
	// Try to pick up where a previous visit left off. An invalid stored
	// session is surfaced, not deleted; only an explicit clear erases it.
	session, invalid := h.manager.Resume(h.deck)
	h.mu.Lock()
	h.session = session
	h.invalid = invalid
	h.mu.Unlock()

	for {
		select {
		case c := <-h.register:
			h.touch()

			h.clients[c] = true

			c.send <- DeckInfoMessage{
				Type:       "deck_info",
				DeckID:     h.deck.DeckID,
				Name:       h.deck.Name,
				GameType:   h.deck.GameType,
				Game:       Games[h.deck.GameType],
				Language:   h.deck.Language,
				Difficulty: h.deck.Difficulty,
				CardCount:  len(h.deck.Cards),
			}
			c.send <- h.stateMessage()

		case c := <-h.unreg:
			h.touch()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				logf(cfg, "PLAY: Client %s disconnected from %s", c.clientID, h.deck.DeckID)
			}

		case req := <-h.actions:
			h.touch()
			h.handleAction(cfg, req)

		case <-h.done:
			h.closeAll()
			return
		}
	}
}

func (h *playHub) touch() {
	h.mu.Lock()
	h.lastActive = time.Now()
	h.mu.Unlock()
}

// stateMessage snapshots the hub state for broadcast.
func (h *playHub) stateMessage() StateMessage {
	msg := StateMessage{
		Type:     "session_state",
		HasSaved: h.manager.store.Has(h.deck.DeckID),
		Invalid:  h.invalid,
	}

	if h.session != nil {
		progress := sessionProgress(*h.session)

		msg.Started = true
		msg.Session = h.session
		msg.Card = getCurrentCard(*h.session, h.deck)
		msg.Progress = &progress
		msg.Complete = isSessionComplete(*h.session)
		msg.RoundComplete = isRoundComplete(*h.session)
	}

	return msg
}

func (h *playHub) broadcastState() {
	msg := h.stateMessage()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *playHub) handleAction(cfg *Config, req playRequest) {
	msg := req.msg

	switch msg.Type {
	case "start":
		shuffle := msg.Shuffle != nil && *msg.Shuffle
		session := h.manager.Start(h.deck, shuffle)
		h.session = &session
		h.invalid = nil
		logf(cfg, "PLAY: Started %s session for %s (shuffle=%t)", h.deck.GameType, h.deck.DeckID, shuffle)

	case "resume":
		// The initial resume already ran when the hub came up; this
		// re-checks in case the stored session changed underneath us.
		session, invalid := h.manager.Resume(h.deck)
		h.session = session
		h.invalid = invalid

	case "clear":
		h.manager.Clear(h.deck.DeckID)
		h.session = nil
		h.invalid = nil
		logf(cfg, "PLAY: Cleared session for %s", h.deck.DeckID)

	default:
		if h.session == nil {
			h.sendError(req.client, "no active session")
			return
		}
		session, ok := h.manager.Apply(*h.session, h.deck, msg.Type)
		if !ok {
			logf(cfg, "PLAY: Client %s sent unknown action %q for %s", req.client.clientID, msg.Type, h.deck.DeckID)
			h.sendError(req.client, "unknown action: "+msg.Type)
			return
		}
		h.session = &session
	}

	h.broadcastState()
}

// sendError addresses one client without touching the others, dropping
// the message if that client's buffer is full.
func (h *playHub) sendError(c *playClient, message string) {
	select {
	case c.send <- ErrorMessage{Type: "error", Message: message}:
	default:
	}
}

// closeAll disconnects every client. Called only from the run goroutine,
// on its way out.
func (h *playHub) closeAll() {
	for c := range h.clients {
		close(c.send)
		if c.conn != nil {
			_ = c.conn.Close()
		}
		delete(h.clients, c)
	}
}

// PlayManager holds one hub per deck id, creating them on demand and
// reaping them after the configured idle timeout.
type PlayManager struct {
	cfg     *Config
	library *Library
	manager *SessionManager

	mu          sync.Mutex
	hubs        map[string]*playHub
	idleTimeout time.Duration
}

func newPlayManager(cfg *Config, library *Library, manager *SessionManager) *PlayManager {
	pm := &PlayManager{
		cfg:         cfg,
		library:     library,
		manager:     manager,
		hubs:        make(map[string]*playHub),
		idleTimeout: cfg.sessionTimeout,
	}
	if pm.idleTimeout > 0 {
		go pm.reaperLoop()
	}
	return pm
}

func (pm *PlayManager) getHub(deck *Deck) *playHub {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	if hub, ok := pm.hubs[deck.DeckID]; ok {
		return hub
	}

	hub := newPlayHub(deck, pm.manager)
	pm.hubs[deck.DeckID] = hub
	go hub.run(pm.cfg)
	return hub
}

// reaperLoop periodically retires hubs that have been idle longer than
// idleTimeout. Closing done hands shutdown to the hub's own goroutine,
// which disconnects its clients and returns. Sessions stay in the store;
// a fresh hub resumes them.
func (pm *PlayManager) reaperLoop() {
	ticker := time.NewTicker(pm.idleTimeout / 2)
	for range ticker.C {
		cutoff := time.Now().Add(-pm.idleTimeout)

		pm.mu.Lock()
		for id, hub := range pm.hubs {
			hub.mu.RLock()
			last := hub.lastActive
			hub.mu.RUnlock()

			if last.Before(cutoff) {
				delete(pm.hubs, id)
				close(hub.done)
			}
		}
		pm.mu.Unlock()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func servePlayWS(cfg *Config, pm *PlayManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		deckID := ps.ByName("deckid")
		if deckID == "" {
			http.Error(w, "missing deck id", http.StatusBadRequest)
			return
		}

		deck, err := pm.library.Deck(deckID)
		if err != nil {
			http.NotFound(w, r)
			return
		}

		hub := pm.getHub(deck)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade error:", err)
			return
		}

		client := &playClient{
			conn:     conn,
			send:     make(chan any, 8),
			clientID: uuid.NewString(),
		}

		logf(cfg, "PLAY: Client %s connected to %s from %s", client.clientID, deckID, realIP(r))

		for {
			select {
			case hub.register <- client:
			case <-hub.done:
				// Reaped between lookup and register; a fresh hub takes over.
				hub = pm.getHub(deck)
				continue
			}
			break
		}

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *playClient) readPump(h *playHub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg PlayAction
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		select {
		case h.actions <- playRequest{client: c, msg: msg}:
		case <-h.done:
			return
		}
	}
}

func (c *playClient) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code for the current play URL.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	deckID := ps.ByName("deckid")
	if deckID == "" {
		http.Error(w, "missing deck id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /play/:deckid/qr; strip trailing "/qr" to get the play URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// ---- Static file paths ----

//go:embed play/index.html
var playHTML []byte

//go:embed play/app.css
var playCSS []byte

//go:embed play/app.js
var playJS []byte

func getPlayHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(playHTML)
	}
}

func getPlayCssHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/css; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(playCSS)
	}
}

func getPlayJsHandler(cfg *Config) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		securityHeaders(cfg, w)

		_, _ = w.Write(playJS)
	}
}

// registerPlay sets up routes so that:
//   - /play/:deckid          → HTML client
//   - /play/:deckid/ws       → WebSocket for that deck's session
//   - /play/:deckid/qr       → PNG QR code for that play URL
func registerPlay(cfg *Config, library *Library, manager *SessionManager, mux *httprouter.Router) {
	pm := newPlayManager(cfg, library, manager)

	// Per-deck client view (HTML)
	mux.GET(cfg.prefix+"/play/:deckid", getPlayHandler(cfg))

	// Shared assets (no deckid in route)
	mux.GET(cfg.prefix+"/assets/play/app.css", getPlayCssHandler(cfg))
	mux.GET(cfg.prefix+"/assets/play/app.js", getPlayJsHandler(cfg))

	// Per-deck websocket
	mux.GET(cfg.prefix+"/play/:deckid/ws", servePlayWS(cfg, pm))

	// Per-deck QR code
	mux.GET(cfg.prefix+"/play/:deckid/qr", qrHandler)
}
