package domain

import (
	"fmt"
	"math"
)

// Party 参与方标识
type Party string

// Obligation 双边债务，Amount 为最小货币单位
type Obligation struct {
	Payer  Party `json:"payer"`
	Payee  Party `json:"payee"`
	Amount int64 `json:"amount"`
}

type pairKey struct {
	payer Party
	payee Party
}

// LedgerOption 账本选项
type LedgerOption func(*Ledger)

// WithParticipants 只接受名单内参与方的债务
func WithParticipants(parties ...Party) LedgerOption {
	return func(l *Ledger) {
		l.participants = make(map[Party]struct{}, len(parties))
		for _, p := range parties {
			l.participants[p] = struct{}{}
		}
	}
}

// Ledger 双边债务账本
// 按有序对 (payer, payee) 累加金额，并记录参与方首次出现的顺序。
// 单写者使用，不做并发保护。
type Ledger struct {
	amounts      map[pairKey]int64
	pairs        []pairKey
	parties      []Party
	seen         map[Party]struct{}
	participants map[Party]struct{}
	total        int64
}

// NewLedger 创建空账本
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		amounts: make(map[pairKey]int64),
		seen:    make(map[Party]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add 登记一笔债务，同一有序对的金额累加而不是覆盖
func (l *Ledger) Add(payer, payee Party, amount int64) error {
	if err := l.validate(payer, payee, amount); err != nil {
		return err
	}
	if amount > math.MaxInt64-l.total {
		return fmt.Errorf("%w: amount %d overflows ledger total %d", ErrInvalidObligation, amount, l.total)
	}

	key := pairKey{payer: payer, payee: payee}
	if _, ok := l.amounts[key]; !ok {
		l.pairs = append(l.pairs, key)
	}
	l.amounts[key] += amount
	l.total += amount

	l.track(payer)
	l.track(payee)
	return nil
}

// Submit 登记一笔 Obligation
func (l *Ledger) Submit(o Obligation) error {
	return l.Add(o.Payer, o.Payee, o.Amount)
}

func (l *Ledger) validate(payer, payee Party, amount int64) error {
	switch {
	case payer == "" || payee == "":
		return fmt.Errorf("%w: empty party", ErrInvalidObligation)
	case payer == payee:
		return fmt.Errorf("%w: %s owes itself", ErrInvalidObligation, payer)
	case amount < 0:
		return fmt.Errorf("%w: negative amount %d", ErrInvalidObligation, amount)
	}
	if l.participants != nil {
		for _, p := range [...]Party{payer, payee} {
			if _, ok := l.participants[p]; !ok {
				return fmt.Errorf("%w: %s is not a participant", ErrInvalidObligation, p)
			}
		}
	}
	return nil
}

func (l *Ledger) track(p Party) {
	if _, ok := l.seen[p]; ok {
		return
	}
	l.seen[p] = struct{}{}
	l.parties = append(l.parties, p)
}

// Total 账本总额（毛额）
func (l *Ledger) Total() int64 {
	return l.total
}

// Parties 按首次出现顺序返回所有参与方
func (l *Ledger) Parties() []Party {
	out := make([]Party, len(l.parties))
	copy(out, l.parties)
	return out
}

// Amount 返回有序对的累计金额
func (l *Ledger) Amount(payer, payee Party) int64 {
	return l.amounts[pairKey{payer: payer, payee: payee}]
}

// Entries 每个有序对一条，按首次出现顺序
func (l *Ledger) Entries() []Obligation {
	out := make([]Obligation, 0, len(l.pairs))
	for _, key := range l.pairs {
		out = append(out, Obligation{Payer: key.payer, Payee: key.payee, Amount: l.amounts[key]})
	}
	return out
}

// Len 有序对数量，即逐笔双边结算需要的笔数
func (l *Ledger) Len() int {
	return len(l.pairs)
}
