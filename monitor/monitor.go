package monitor

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// HolderSource fetches the SBT holder set from chain state
type HolderSource interface {
	SBTHolders(ctx context.Context, contract string) (map[string]struct{}, error)
}

// Store is the slice of the trait store the monitor writes through
type Store interface {
	HasProcessed(ctx context.Context, txHash string) (bool, error)
	MarkProcessed(ctx context.Context, txHash string) error
	EnsureUser(ctx context.Context, address string) error
	AddPoints(ctx context.Context, address string, points int, amount float64) error
	IncTotalSent(ctx context.Context, address string, amount float64) error
	IncDexVolume(ctx context.Context, address string, volume float64) error
	StakeStartOrRefresh(ctx context.Context, address string, now time.Time) error
	StakeStop(ctx context.Context, address string, now time.Time) error
}

// Config holds monitor wiring
type Config struct {
	WSURL          string
	Contract       string
	Rules          []WatchRule
	RefreshEvery   time.Duration
	ReconnectDelay time.Duration
}

// Monitor subscribes to chain Tx events and accrues scores for SBT holders.
type Monitor struct {
	cfg     Config
	holders HolderSource
	store   Store
	log     *zap.Logger

	holderSet   map[string]struct{}
	lastRefresh time.Time
}

// New creates a Monitor
func New(cfg Config, holders HolderSource, store Store, log *zap.Logger) *Monitor {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 3 * time.Second
	}
	if len(cfg.Rules) == 0 {
		cfg.Rules = DefaultRules()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Monitor{
		cfg:     cfg,
		holders: holders,
		store:   store,
		log:     log,
	}
}

// Run subscribes to Tx events and processes them until ctx is cancelled.
// Dropped connections reconnect after a short backoff.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("starting tx monitor",
		zap.String("ws_url", m.cfg.WSURL),
		zap.String("contract", m.cfg.Contract))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.refreshHolders(ctx)

		if err := m.stream(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.log.Warn("websocket stream ended", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.cfg.ReconnectDelay):
		}
	}
}

// refreshHolders reloads the SBT holder set when the refresh interval has
// passed. A failed refresh keeps the previous set.
func (m *Monitor) refreshHolders(ctx context.Context) {
	if len(m.holderSet) > 0 && time.Since(m.lastRefresh) < m.cfg.RefreshEvery {
		return
	}

	holders, err := m.holders.SBTHolders(ctx, m.cfg.Contract)
	if err != nil {
		m.log.Warn("failed to refresh SBT holders", zap.Error(err))
		return
	}

	m.holderSet = holders
	m.lastRefresh = time.Now()
	m.log.Info("refreshed SBT holders", zap.Int("count", len(holders)))
}

// subscribeRequest is the CometBFT JSON-RPC subscription for Tx events
var subscribeRequest = map[string]any{
	"jsonrpc": "2.0",
	"method":  "subscribe",
	"id":      1,
	"params":  map[string]any{"query": "tm.event='Tx'"},
}

// txEvent is the CometBFT subscription envelope for one transaction
type txEvent struct {
	Result struct {
		Events map[string][]string `json:"events"`
		Data   struct {
			Value struct {
				TxResult struct {
					Tx string `json:"tx"`
				} `json:"TxResult"`
			} `json:"value"`
		} `json:"data"`
	} `json:"result"`
}

// stream holds one websocket subscription open and processes its messages
func (m *Monitor) stream(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, m.cfg.WSURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Unblock ReadMessage on cancellation
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := conn.WriteJSON(subscribeRequest); err != nil {
		return err
	}
	m.log.Info("subscribed to tx events")

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		m.refreshHolders(ctx)
		m.handleMessage(ctx, msg)
	}
}

// handleMessage decodes one subscription message and scores the transaction
func (m *Monitor) handleMessage(ctx context.Context, msg []byte) {
	var event txEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		m.log.Debug("skipping unparsable message", zap.Error(err))
		return
	}

	txB64 := event.Result.Data.Value.TxResult.Tx
	if txB64 == "" {
		// subscription confirmations and heartbeats carry no tx
		return
	}

	var txHash string
	if hashes := event.Result.Events["tx.hash"]; len(hashes) > 0 {
		txHash = hashes[0]
	}

	if txHash != "" {
		seen, err := m.store.HasProcessed(ctx, txHash)
		if err != nil {
			m.log.Warn("failed to check processed tx", zap.String("tx_hash", txHash), zap.Error(err))
			return
		}
		if seen {
			return
		}
	}

	payload, err := DecodeTx(txB64)
	if err != nil {
		m.log.Warn("failed to decode tx", zap.String("tx_hash", txHash), zap.Error(err))
		// mark anyway so a permanently malformed tx is not retried forever
		m.markProcessed(ctx, txHash)
		return
	}

	m.process(ctx, payload, txHash)
}

// process applies the watch rules to one decoded transaction. Every seen tx
// hash is marked processed, matched or not.
func (m *Monitor) process(ctx context.Context, p *TxPayload, txHash string) {
	defer m.markProcessed(ctx, txHash)

	rule, ok := MatchRule(m.cfg.Rules, p.Contract, p.Function)
	if !ok {
		return
	}

	if _, holder := m.holderSet[p.Sender]; !holder {
		return
	}

	if err := m.store.EnsureUser(ctx, p.Sender); err != nil {
		m.log.Warn("failed to ensure user", zap.String("address", p.Sender), zap.Error(err))
		return
	}

	now := time.Now()
	var (
		err    error
		msg    string
		fields []zap.Field
	)
	switch rule.Action {
	case ActionTransfer:
		amount := amountOf(p.Kwargs, 0, rule.AmountField)
		if err = m.store.AddPoints(ctx, p.Sender, rule.Points, amount); err == nil {
			err = m.store.IncTotalSent(ctx, p.Sender, amount)
		}
		msg = "transfer scored"
		fields = []zap.Field{zap.String("address", p.Sender), zap.Float64("amount", amount)}

	case ActionDexSwap:
		volume := amountOf(p.Kwargs, 1, rule.AmountField, "amount_in", "amount")
		if err = m.store.AddPoints(ctx, p.Sender, rule.Points, 0); err == nil {
			err = m.store.IncDexVolume(ctx, p.Sender, volume)
		}
		msg = "swap scored"
		fields = []zap.Field{zap.String("address", p.Sender), zap.Float64("volume", volume)}

	case ActionStakeStart:
		if err = m.store.AddPoints(ctx, p.Sender, rule.Points, 0); err == nil {
			err = m.store.StakeStartOrRefresh(ctx, p.Sender, now)
		}
		msg = "stake started"
		fields = []zap.Field{zap.String("address", p.Sender)}

	case ActionStakeStop:
		err = m.store.StakeStop(ctx, p.Sender, now)
		msg = "stake stopped"
		fields = []zap.Field{zap.String("address", p.Sender)}

	default:
		err = m.store.AddPoints(ctx, p.Sender, rule.Points, 0)
		msg = "activity scored"
		fields = []zap.Field{
			zap.String("address", p.Sender),
			zap.String("contract", p.Contract),
			zap.String("function", p.Function),
			zap.Int("points", rule.Points),
		}
	}
	if err != nil {
		m.log.Warn("failed to record activity", zap.String("address", p.Sender), zap.Error(err))
		return
	}
	m.log.Info(msg, fields...)
}

// markProcessed records the tx hash when one is known
func (m *Monitor) markProcessed(ctx context.Context, txHash string) {
	if txHash == "" {
		return
	}
	if err := m.store.MarkProcessed(ctx, txHash); err != nil {
		m.log.Warn("failed to mark tx processed", zap.String("tx_hash", txHash), zap.Error(err))
	}
}
