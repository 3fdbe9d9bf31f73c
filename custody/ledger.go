package custody

import (
	"context"
	"fmt"
	"sync"

	"pairbook/domain/book"
)

var (
	ErrInsufficientBalance   = fmt.Errorf("%w: insufficient balance", ErrTransferFailed)
	ErrInsufficientAllowance = fmt.Errorf("%w: insufficient allowance", ErrTransferFailed)
	ErrNothingEscrowed       = fmt.Errorf("%w: escrow underflow", ErrTransferFailed)
)

// Ledger is an in-memory Custodian for local runs and tests. Debits move
// collateral from a participant balance into a per-asset escrow pool and
// consume allowance; credits release escrow back to the participant.
type Ledger struct {
	mu         sync.Mutex
	balances   map[AssetID]map[book.ParticipantID]uint64
	allowances map[AssetID]map[book.ParticipantID]uint64
	escrowed   map[AssetID]uint64
}

func NewLedger() *Ledger {
	return &Ledger{
		balances:   make(map[AssetID]map[book.ParticipantID]uint64),
		allowances: make(map[AssetID]map[book.ParticipantID]uint64),
		escrowed:   make(map[AssetID]uint64),
	}
}

// Mint credits amount of asset to a participant out of thin air.
func (l *Ledger) Mint(asset AssetID, to book.ParticipantID, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.account(l.balances, asset)[to] += amount
}

// Approve authorizes the operator to debit up to amount of asset from a
// participant. Repeated approvals replace the previous allowance.
func (l *Ledger) Approve(asset AssetID, from book.ParticipantID, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.account(l.allowances, asset)[from] = amount
}

func (l *Ledger) Debit(ctx context.Context, asset AssetID, from book.ParticipantID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	allowed := l.account(l.allowances, asset)
	if allowed[from] < amount {
		return fmt.Errorf("%w: %s on %s has %d, needs %d", ErrInsufficientAllowance, from, asset, allowed[from], amount)
	}
	bal := l.account(l.balances, asset)
	if bal[from] < amount {
		return fmt.Errorf("%w: %s on %s has %d, needs %d", ErrInsufficientBalance, from, asset, bal[from], amount)
	}

	allowed[from] -= amount
	bal[from] -= amount
	l.escrowed[asset] += amount
	return nil
}

func (l *Ledger) Credit(ctx context.Context, asset AssetID, to book.ParticipantID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.escrowed[asset] < amount {
		return fmt.Errorf("%w: %s escrow holds %d, releasing %d", ErrNothingEscrowed, asset, l.escrowed[asset], amount)
	}
	l.escrowed[asset] -= amount
	l.account(l.balances, asset)[to] += amount
	return nil
}

// BalanceOf returns a participant's free (non-escrowed) balance.
func (l *Ledger) BalanceOf(asset AssetID, id book.ParticipantID) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[asset][id]
}

// Allowance returns the remaining operator allowance for a participant.
func (l *Ledger) Allowance(asset AssetID, id book.ParticipantID) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.allowances[asset][id]
}

// Escrowed returns the total collateral held for an asset.
func (l *Ledger) Escrowed(asset AssetID) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.escrowed[asset]
}

func (l *Ledger) account(m map[AssetID]map[book.ParticipantID]uint64, asset AssetID) map[book.ParticipantID]uint64 {
	acc, ok := m[asset]
	if !ok {
		acc = make(map[book.ParticipantID]uint64)
		m[asset] = acc
	}
	return acc
}
