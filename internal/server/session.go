package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/samifarahneto/gamecartas/internal/cache"
	"github.com/samifarahneto/gamecartas/internal/holdem"
	"github.com/samifarahneto/gamecartas/internal/store"
)

// client is the session layer's view of a connection. *Connection satisfies
// it; tests substitute fakes.
type client interface {
	Nick() string
	Send(payload []byte) error
	Close() error
}

// tableSession binds one table's state machine to its live connections.
// The session mutex serializes every mutation of the table, so the state
// machine itself needs no locking.
type tableSession struct {
	mu    sync.Mutex
	id    string
	game  string
	name  string
	table *holdem.Table
	conns map[client]struct{}
}

func (ts *tableSession) nicks() []string {
	nicks := make([]string, 0, len(ts.conns))
	for c := range ts.conns {
		nicks = append(nicks, c.Nick())
	}
	sort.Strings(nicks)
	return nicks
}

// hasOtherConn reports whether a second connection shares the nickname.
func (ts *tableSession) hasOtherConn(nick string, except client) bool {
	for c := range ts.conns {
		if c != except && c.Nick() == nick {
			return true
		}
	}
	return false
}

// SessionManager owns the table registry and routes connections, frames and
// disconnects to the right table session.
type SessionManager struct {
	cfg     holdem.Config
	logger  *log.Logger
	store   *store.Store
	cache   *cache.Cache
	metrics *Metrics

	mu       sync.Mutex
	sessions map[string]*tableSession
	byClient map[client]*tableSession
}

// NewSessionManager wires the manager. Store and cache may be nil; both are
// best-effort dependencies.
func NewSessionManager(cfg holdem.Config, logger *log.Logger, st *store.Store, ca *cache.Cache, m *Metrics) *SessionManager {
	return &SessionManager{
		cfg:      cfg,
		logger:   logger.WithPrefix("session"),
		store:    st,
		cache:    ca,
		metrics:  m,
		sessions: make(map[string]*tableSession),
		byClient: make(map[client]*tableSession),
	}
}

// ResolveTableID maps the client-supplied table parameter to a canonical
// identifier. "new" (or empty) lands on the game's default table.
func ResolveTableID(game, tableID string) string {
	if tableID == "" || tableID == "new" {
		return game + "-table-1"
	}
	return tableID
}

// Connect seats a client at a table, creating the session on first use.
// A full table gets an error frame and an immediate close.
func (sm *SessionManager) Connect(c client, game, tableID string) error {
	id := ResolveTableID(game, tableID)

	sm.mu.Lock()
	ts, ok := sm.sessions[id]
	if !ok {
		ts = &tableSession{
			id:    id,
			game:  game,
			name:  id,
			table: holdem.NewTable(sm.cfg),
			conns: make(map[client]struct{}),
		}
		sm.sessions[id] = ts
		if sm.metrics != nil {
			sm.metrics.TablesOpen.Inc()
		}
	}
	sm.byClient[c] = ts
	sm.mu.Unlock()

	ts.mu.Lock()
	defer ts.mu.Unlock()

	// Reclaim seats abandoned between hands before deciding on capacity.
	ts.table.PurgeDisconnected()

	if err := ts.table.AddSeat(c.Nick()); err != nil {
		sm.mu.Lock()
		delete(sm.byClient, c)
		sm.mu.Unlock()
		_ = c.Send(errorFrame(err.Error()))
		_ = c.Close()
		return err
	}
	ts.conns[c] = struct{}{}

	if sm.metrics != nil {
		sm.metrics.ConnectionsActive.Inc()
	}
	if sm.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		if err := sm.store.RecordNickname(ctx, c.Nick()); err != nil {
			sm.logger.Warn("Failed to record nickname", "nick", c.Nick(), "error", err)
		}
		cancel()
	}
	sm.logger.Info("Player connected", "nick", c.Nick(), "table", id)

	sm.broadcastLocked(ts)
	return nil
}

// Disconnect detaches a client. Its seat stays reserved while a hand is
// running; with fewer than two connected seats left the hand is cancelled and
// committed chips are refunded. The last connection tears the session down.
func (sm *SessionManager) Disconnect(c client) {
	sm.mu.Lock()
	ts, ok := sm.byClient[c]
	delete(sm.byClient, c)
	sm.mu.Unlock()
	if !ok {
		return
	}

	ts.mu.Lock()
	if _, present := ts.conns[c]; !present {
		ts.mu.Unlock()
		return
	}
	delete(ts.conns, c)

	if !ts.hasOtherConn(c.Nick(), c) {
		ts.table.SetConnected(c.Nick(), false)
	}

	// Showdown means the hand is already paid out; only a live hand can be
	// cancelled.
	if ts.table.Started() && ts.table.Street() != holdem.Showdown && ts.table.ConnectedSeats() < 2 {
		ts.table.CancelHand()
		sm.logger.Info("Hand cancelled, not enough connected players", "table", ts.id)
	}

	empty := len(ts.conns) == 0
	if !empty {
		sm.broadcastLocked(ts)
	}
	ts.mu.Unlock()

	if empty {
		sm.mu.Lock()
		if cur, ok := sm.sessions[ts.id]; ok && cur == ts {
			delete(sm.sessions, ts.id)
			if sm.metrics != nil {
				sm.metrics.TablesOpen.Dec()
			}
		}
		sm.mu.Unlock()
		sm.logger.Info("Table session closed", "table", ts.id)
	}

	if sm.metrics != nil {
		sm.metrics.ConnectionsActive.Dec()
	}
	sm.logger.Info("Player disconnected", "nick", c.Nick(), "table", ts.id)
}

// HandleFrame dispatches one inbound frame from a client. Malformed frames
// and illegal actions are dropped without a reply; precondition failures get
// an error frame.
func (sm *SessionManager) HandleFrame(c client, data []byte) {
	sm.mu.Lock()
	ts, ok := sm.byClient[c]
	sm.mu.Unlock()
	if !ok {
		return
	}

	var frame ClientFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		sm.logger.Debug("Dropping malformed frame", "nick", c.Nick(), "error", err)
		return
	}

	ts.mu.Lock()
	defer ts.mu.Unlock()

	switch frame.Type {
	case FrameTypeChat:
		payload := encodeFrame(ChatFrame{Type: FrameTypeChat, From: c.Nick(), Text: frame.Text})
		for conn := range ts.conns {
			if err := conn.Send(payload); err != nil {
				sm.dropConnLocked(ts, conn)
			}
		}

	case FrameTypeStart:
		sm.startHandLocked(ts, c)

	case FrameTypeAction:
		if frame.Action == "new_hand" {
			sm.startHandLocked(ts, c)
			return
		}
		applied := ts.table.Apply(c.Nick(), frame.Action, frame.Amount)
		if applied {
			ts.table.AutoAdvance()
			if sm.metrics != nil {
				sm.metrics.ActionsTotal.WithLabelValues(frame.Action).Inc()
			}
		}
		sm.broadcastLocked(ts)

	default:
		// Unknown frames still trigger a state refresh so stale clients
		// resynchronize.
		sm.broadcastLocked(ts)
	}
}

func (sm *SessionManager) startHandLocked(ts *tableSession, c client) {
	if ts.table.EligibleSeats() < 2 {
		_ = c.Send(errorFrame(holdem.ErrNotEnoughPlayers.Error()))
		sm.broadcastLocked(ts)
		return
	}
	if err := ts.table.StartHand(); err != nil {
		_ = c.Send(errorFrame(err.Error()))
		sm.broadcastLocked(ts)
		return
	}
	if sm.metrics != nil {
		sm.metrics.HandsStarted.Inc()
	}
	sm.logger.Info("Hand started", "table", ts.id, "players", ts.table.SeatCount())
	sm.broadcastLocked(ts)
}

// broadcastLocked sends each connection its own projection of the table.
// A failed send drops the connection; final cleanup happens when its read
// pump exits and calls Disconnect.
func (sm *SessionManager) broadcastLocked(ts *tableSession) {
	players := ts.nicks()
	for c := range ts.conns {
		frame := BuildStateFrame(ts.table, players, c.Nick())
		if err := c.Send(encodeFrame(frame)); err != nil {
			sm.dropConnLocked(ts, c)
		}
	}

	if sm.cache != nil {
		snapshot := cache.TableSnapshot{
			ID:      ts.id,
			Game:    ts.game,
			Players: players,
			Started: ts.table.Started(),
			Street:  ts.table.Street().String(),
			Pot:     ts.table.Pot(),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if err := sm.cache.SetTableSnapshot(ctx, snapshot); err != nil {
				sm.logger.Debug("Snapshot write failed", "table", snapshot.ID, "error", err)
			}
		}()
	}
}

func (sm *SessionManager) dropConnLocked(ts *tableSession, c client) {
	delete(ts.conns, c)
	_ = c.Close()
	if sm.metrics != nil {
		sm.metrics.BroadcastFailures.Inc()
	}
	sm.logger.Warn("Dropped unresponsive connection", "nick", c.Nick(), "table", ts.id)
}

// TableInfo is the admin-facing summary of one table.
type TableInfo struct {
	ID          string   `json:"id"`
	Game        string   `json:"game"`
	Name        string   `json:"name"`
	Players     []string `json:"players"`
	PlayerCount int      `json:"player_count"`
	MaxPlayers  int      `json:"max_players"`
	Started     bool     `json:"started"`
}

// TableDetail extends TableInfo with live hand state.
type TableDetail struct {
	TableInfo
	Street         string `json:"street"`
	Pot            int    `json:"pot"`
	Dealer         string `json:"dealer"`
	SmallBlind     string `json:"sb"`
	BigBlind       string `json:"bb"`
	AvailableSlots int    `json:"available_slots"`
}

// ListTables merges live sessions with tables registered in the store.
func (sm *SessionManager) ListTables(ctx context.Context) []TableInfo {
	seen := make(map[string]bool)
	var infos []TableInfo

	sm.mu.Lock()
	live := make([]*tableSession, 0, len(sm.sessions))
	for _, ts := range sm.sessions {
		live = append(live, ts)
	}
	sm.mu.Unlock()

	for _, ts := range live {
		ts.mu.Lock()
		infos = append(infos, TableInfo{
			ID:          ts.id,
			Game:        ts.game,
			Name:        ts.name,
			Players:     ts.nicks(),
			PlayerCount: len(ts.conns),
			MaxPlayers:  ts.table.MaxPlayers(),
			Started:     ts.table.Started(),
		})
		seen[ts.id] = true
		ts.mu.Unlock()
	}

	if sm.store != nil {
		rows, err := sm.store.ListTables(ctx)
		if err != nil {
			sm.logger.Warn("Failed to list stored tables", "error", err)
		}
		for _, row := range rows {
			if seen[row.ID] {
				continue
			}
			infos = append(infos, TableInfo{
				ID:         row.ID,
				Game:       row.Game,
				Name:       row.Name,
				Players:    []string{},
				MaxPlayers: sm.cfg.MaxPlayers,
			})
		}
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// GetTable returns the detail view for one table, live or registered.
func (sm *SessionManager) GetTable(ctx context.Context, id string) (TableDetail, bool) {
	sm.mu.Lock()
	ts, ok := sm.sessions[id]
	sm.mu.Unlock()

	if ok {
		ts.mu.Lock()
		defer ts.mu.Unlock()
		return TableDetail{
			TableInfo: TableInfo{
				ID:          ts.id,
				Game:        ts.game,
				Name:        ts.name,
				Players:     ts.nicks(),
				PlayerCount: len(ts.conns),
				MaxPlayers:  ts.table.MaxPlayers(),
				Started:     ts.table.Started(),
			},
			Street:         ts.table.Street().String(),
			Pot:            ts.table.Pot(),
			Dealer:         ts.table.Dealer(),
			SmallBlind:     ts.table.SmallBlindPlayer(),
			BigBlind:       ts.table.BigBlindPlayer(),
			AvailableSlots: ts.table.MaxPlayers() - ts.table.SeatCount(),
		}, true
	}

	if sm.store != nil {
		row, err := sm.store.GetTable(ctx, id)
		if err == nil {
			detail := TableDetail{
				TableInfo: TableInfo{
					ID:         row.ID,
					Game:       row.Game,
					Name:       row.Name,
					Players:    []string{},
					MaxPlayers: sm.cfg.MaxPlayers,
				},
				Street:         holdem.Preflop.String(),
				AvailableSlots: sm.cfg.MaxPlayers,
			}
			// A recently closed session may still have a cached summary.
			if sm.cache != nil {
				if snap, err := sm.cache.GetTableSnapshot(ctx, id); err == nil {
					detail.Players = snap.Players
					detail.PlayerCount = len(snap.Players)
					detail.Started = snap.Started
					detail.Street = snap.Street
					detail.Pot = snap.Pot
				}
			}
			return detail, true
		}
	}
	return TableDetail{}, false
}

// ErrTableExists reports a create against an already-registered table id.
var ErrTableExists = errors.New("table already exists")

// CreateTable registers a new table. With an explicit id a duplicate is
// ErrTableExists; otherwise the next free sequence number for the game is
// allocated. The live session is created lazily on first connect.
func (sm *SessionManager) CreateTable(ctx context.Context, game, name, id string) (TableInfo, error) {
	if game == "" {
		game = "holdem"
	}

	if id != "" {
		if sm.tableExists(ctx, id) {
			return TableInfo{}, ErrTableExists
		}
	} else {
		for n := 1; ; n++ {
			candidate := fmt.Sprintf("%s-table-%d", game, n)
			if sm.tableExists(ctx, candidate) {
				continue
			}
			id = candidate
			break
		}
	}
	if name == "" {
		name = id
	}

	if sm.store != nil {
		if err := sm.store.CreateTable(ctx, id, game, name); err != nil {
			return TableInfo{}, err
		}
	}
	sm.logger.Info("Table created", "table", id, "game", game)

	return TableInfo{
		ID:         id,
		Game:       game,
		Name:       name,
		Players:    []string{},
		MaxPlayers: sm.cfg.MaxPlayers,
	}, nil
}

func (sm *SessionManager) tableExists(ctx context.Context, id string) bool {
	sm.mu.Lock()
	_, live := sm.sessions[id]
	sm.mu.Unlock()
	if live {
		return true
	}
	if sm.store != nil {
		if _, err := sm.store.GetTable(ctx, id); err == nil {
			return true
		}
	}
	return false
}
