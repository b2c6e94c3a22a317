package traits

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xiantools/sbt-sync/internal/client"
	"github.com/xiantools/sbt-sync/internal/common"
	"github.com/xiantools/sbt-sync/internal/model"
)

// CompareService fetches the off-chain/on-chain comparison for one address.
type CompareService interface {
	CompareTraits(ctx context.Context, address string) (*model.ComparisonResult, error)
}

// WalletBridge is the slice of the bridge daemon the controller needs.
type WalletBridge interface {
	RequestWalletInfo(ctx context.Context) (*client.WalletInfo, error)
	SendTransaction(ctx context.Context, contract, method string, kwargs map[string]any, stampLimit uint64) (*client.TxResult, error)
}

// Options carries the chain constants and pacing knobs for a Controller.
type Options struct {
	Contract     string
	UpdateMethod string
	StampLimit   uint64
	TraitKeys    []string
	ChainFields  map[string]string
	Debounce     time.Duration
	RecheckDelay time.Duration
}

// Controller owns the compare-and-conditionally-update workflow. All state
// (session, last comparison, busy flag, debounce timestamp) lives behind one
// mutex; session and result are only ever replaced wholesale.
type Controller struct {
	compare CompareService
	bridge  WalletBridge
	opts    Options
	log     *zap.Logger

	mu         sync.Mutex
	session    *model.WalletSession
	last       *model.ComparisonResult
	busy       bool
	lastUpdate time.Time

	// swappable in tests
	now      func() time.Time
	schedule func(d time.Duration, f func())
}

// NewController creates a Controller wired to the given compare backend and
// wallet bridge.
func NewController(compare CompareService, bridge WalletBridge, opts Options, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		compare:  compare,
		bridge:   bridge,
		opts:     opts,
		log:      log,
		now:      time.Now,
		schedule: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// Session returns the current wallet session, nil when not connected.
func (c *Controller) Session() *model.WalletSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// LastResult returns the most recent comparison, nil when none is stored.
func (c *Controller) LastResult() *model.ComparisonResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}

// Connect requests the wallet identity from the bridge and stores a session.
// Idempotent: each success replaces any prior session. Failure leaves state
// untouched.
func (c *Controller) Connect(ctx context.Context) (*model.WalletSession, error) {
	info, err := c.bridge.RequestWalletInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrWalletUnavailable, err)
	}

	display := info.TruncatedAddress
	if display == "" {
		display = common.TruncateAddress(info.Address)
	}

	session := &model.WalletSession{
		Address:        info.Address,
		DisplayAddress: display,
	}

	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	c.log.Info("wallet connected", zap.String("address", display))
	return session, nil
}

// Compare resolves the target address (explicit argument, else the connected
// wallet), fetches the comparison and stores it. The previous result is
// cleared before the network call so a failure never leaves stale state
// behind.
func (c *Controller) Compare(ctx context.Context, address string) (*model.CompareOutcome, error) {
	c.mu.Lock()
	if address == "" && c.session != nil {
		address = c.session.Address
	}
	c.mu.Unlock()

	if address == "" {
		return nil, model.ErrNoAddress
	}

	c.mu.Lock()
	c.last = nil
	c.mu.Unlock()

	result, err := c.compare.CompareTraits(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrAPIFailure, err)
	}

	c.mu.Lock()
	c.last = result
	session := c.session
	c.mu.Unlock()

	outcome := &model.CompareOutcome{
		Result:        result,
		Rows:          buildRows(result, c.opts.TraitKeys),
		ScoreMismatch: !common.ValuesEqual(result.OffChain[ScoreKey], result.OnChain[ScoreKey]),
		OwnsAddress:   session != nil && session.Address == result.Address,
		UpdateEnabled: UpdateEligible(result, session, c.opts.TraitKeys),
	}

	c.log.Info("comparison stored",
		zap.String("address", result.Address),
		zap.Int("diffs", len(result.Diffs)),
		zap.Bool("update_enabled", outcome.UpdateEnabled))
	return outcome, nil
}

// Update submits one batched trait update for the compared address.
//
// The busy flag and the debounce window are checked before anything else so
// rapid repeated calls cannot reach the bridge twice. Then, in order: a
// comparison must exist, a session must exist (one implicit connect is
// attempted), and the connected address must equal the compared address
// exactly. The ownership check is the one invariant that must never be
// weakened. The busy flag is released on every exit path.
func (c *Controller) Update(ctx context.Context) (*model.UpdateResponse, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, model.ErrUpdateInFlight
	}
	if !c.lastUpdate.IsZero() && c.now().Sub(c.lastUpdate) < c.opts.Debounce {
		c.mu.Unlock()
		return nil, model.ErrUpdateDebounced
	}
	c.busy = true
	last := c.last
	session := c.session
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	if last == nil {
		return nil, model.ErrNoComparison
	}

	if session == nil {
		var err error
		session, err = c.Connect(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: implicit connect failed", model.ErrWalletUnavailable)
		}
	}

	if session.Address != last.Address {
		return nil, &model.OwnershipMismatchError{
			Connected: session.Address,
			Compared:  last.Address,
		}
	}

	intent := BuildUpdateIntent(last, c.opts.TraitKeys, c.opts.ChainFields)
	if len(intent.Fields) == 0 {
		return nil, model.ErrNothingToUpdate
	}

	// Accepted: start the debounce window before touching the network
	c.mu.Lock()
	c.lastUpdate = c.now()
	c.mu.Unlock()

	kwargs := map[string]any{"traits": intent.Fields}
	result, err := c.bridge.SendTransaction(ctx, c.opts.Contract, c.opts.UpdateMethod, kwargs, c.opts.StampLimit)
	if err != nil {
		c.log.Warn("trait update rejected", zap.String("address", intent.Address), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", model.ErrTransactionFailed, err)
	}

	c.log.Info("trait update submitted",
		zap.String("address", intent.Address),
		zap.String("tx_hash", result.TxHash),
		zap.Int("fields", len(intent.Fields)))

	// Chain state is eventually consistent; schedule a one-shot re-compare
	// so the stored result catches up with the submitted values.
	address := intent.Address
	c.schedule(c.opts.RecheckDelay, func() {
		if _, err := c.Compare(context.Background(), address); err != nil {
			c.log.Warn("post-update re-compare failed", zap.String("address", address), zap.Error(err))
		}
	})

	return &model.UpdateResponse{
		TxHash:  result.TxHash,
		Address: intent.Address,
		Fields:  intent.Fields,
		Tier:    intent.Tier,
	}, nil
}

// buildRows renders one comparison row per tracked trait key
func buildRows(result *model.ComparisonResult, keys []string) []model.TraitRow {
	rows := make([]model.TraitRow, 0, len(keys))
	for _, key := range keys {
		off := result.OffChain[key]
		on := result.OnChain[key]
		rows = append(rows, model.TraitRow{
			Key:       key,
			OffChain:  off,
			OnChain:   on,
			Different: !common.ValuesEqual(off, on),
		})
	}
	return rows
}
