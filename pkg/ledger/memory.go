package ledger

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/vaultlane/custody/pkg/address"
	"github.com/vaultlane/custody/pkg/hash"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownSymbol is returned for transfers of unregistered tokens.
	ErrUnknownSymbol = errors.New("Token symbol not registered")

	// ErrInsufficientBalance is returned when the sending address does not
	// hold enough of the token.
	ErrInsufficientBalance = errors.New("Insufficient token balance")
)

// TransferArgs is the argument payload of a delegated "Transfer" call.
type TransferArgs struct {
	To     address.Address `json:"to"`
	Symbol string          `json:"symbol"`
	Amount int64           `json:"amount"`
}

// LockArgs is the argument payload of delegated "Lock" and "Unlock" calls.
type LockArgs struct {
	Symbol string `json:"symbol"`
	Amount int64  `json:"amount"`
}

type lockKey struct {
	owner  address.Address
	symbol string
}

// Memory is an in process Ledger and VirtualSender. It backs tests and local
// tooling; production deployments talk to the real token ledger instead.
type Memory struct {
	mu       sync.Mutex
	identity address.Address
	tokens   map[string]*TokenInfo
	balances map[string]map[address.Address]int64
	locks    map[lockKey]int64
}

// NewMemory returns an empty in memory ledger.
func NewMemory() *Memory {
	return &Memory{
		identity: address.FromVirtual(hash.FromString("ledger.memory")),
		tokens:   make(map[string]*TokenInfo),
		balances: make(map[string]map[address.Address]int64),
		locks:    make(map[lockKey]int64),
	}
}

// Identity is the address delegated calls must target to reach this ledger.
func (m *Memory) Identity() address.Address {
	return m.identity
}

// RegisterToken creates a token and issues the full supply to one address.
func (m *Memory) RegisterToken(symbol, name string, supply int64, issueTo address.Address) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[symbol] = &TokenInfo{
		Symbol:      symbol,
		TokenName:   name,
		Decimals:    8,
		TotalSupply: supply,
	}
	m.balances[symbol] = map[address.Address]int64{issueTo: supply}
}

// Transfer implements Ledger.
func (m *Memory) Transfer(ctx context.Context, from, to address.Address,
	symbol string, amount int64) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.transfer(from, to, symbol, amount)
}

func (m *Memory) transfer(from, to address.Address, symbol string, amount int64) error {
	if amount <= 0 {
		return errors.Errorf("Invalid transfer amount : %d", amount)
	}
	holders, exists := m.balances[symbol]
	if !exists {
		return errors.Wrap(ErrUnknownSymbol, symbol)
	}
	if holders[from] < amount {
		return errors.Wrapf(ErrInsufficientBalance, "%s has %d of %s, need %d",
			from, holders[from], symbol, amount)
	}

	holders[from] -= amount
	holders[to] += amount
	return nil
}

// GetBalance implements Ledger.
func (m *Memory) GetBalance(ctx context.Context, owner address.Address,
	symbol string) (int64, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	holders, exists := m.balances[symbol]
	if !exists {
		return 0, errors.Wrap(ErrUnknownSymbol, symbol)
	}
	return holders[owner], nil
}

// GetTokenInfo implements Ledger.
func (m *Memory) GetTokenInfo(ctx context.Context, symbol string) (*TokenInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	token, exists := m.tokens[symbol]
	if !exists {
		return nil, errors.Wrap(ErrUnknownSymbol, symbol)
	}
	result := *token
	return &result, nil
}

// LockedBalance returns the amount an address has locked of a symbol.
func (m *Memory) LockedBalance(owner address.Address, symbol string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.locks[lockKey{owner: owner, symbol: symbol}]
}

// SendAsVirtual implements VirtualSender. The memory ledger understands the
// "Transfer", "Lock" and "Unlock" methods on its own identity.
func (m *Memory) SendAsVirtual(ctx context.Context, virtualID hash.Hash,
	target address.Address, method string, args []byte) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	if !target.Equal(m.identity) {
		return errors.Errorf("Unknown call target : %s", target)
	}

	sender := address.FromVirtual(virtualID)

	switch method {
	case "Transfer":
		var params TransferArgs
		if err := json.Unmarshal(args, &params); err != nil {
			return errors.Wrap(err, "transfer args")
		}
		return m.transfer(sender, params.To, params.Symbol, params.Amount)

	case "Lock":
		var params LockArgs
		if err := json.Unmarshal(args, &params); err != nil {
			return errors.Wrap(err, "lock args")
		}
		if err := m.debit(sender, params.Symbol, params.Amount); err != nil {
			return err
		}
		m.locks[lockKey{owner: sender, symbol: params.Symbol}] += params.Amount
		return nil

	case "Unlock":
		var params LockArgs
		if err := json.Unmarshal(args, &params); err != nil {
			return errors.Wrap(err, "unlock args")
		}
		key := lockKey{owner: sender, symbol: params.Symbol}
		if m.locks[key] < params.Amount {
			return errors.Wrapf(ErrInsufficientBalance, "locked %d, need %d",
				m.locks[key], params.Amount)
		}
		m.locks[key] -= params.Amount
		m.balances[params.Symbol][sender] += params.Amount
		return nil
	}

	return errors.Errorf("Unknown call method : %s", method)
}

func (m *Memory) debit(owner address.Address, symbol string, amount int64) error {
	if amount <= 0 {
		return errors.Errorf("Invalid amount : %d", amount)
	}
	holders, exists := m.balances[symbol]
	if !exists {
		return errors.Wrap(ErrUnknownSymbol, symbol)
	}
	if holders[owner] < amount {
		return errors.Wrapf(ErrInsufficientBalance, "%s has %d of %s, need %d",
			owner, holders[owner], symbol, amount)
	}
	holders[owner] -= amount
	return nil
}
