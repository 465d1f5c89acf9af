package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Settlement 一笔净额划转：From 向 To 支付 Amount（最小货币单位，恒为正）
type Settlement struct {
	From   Party `json:"from"`
	To     Party `json:"to"`
	Amount int64 `json:"amount"`
}

// Ordering 债权方与债务方的撮合顺序
type Ordering int

const (
	// OrderInsertion 按参与方首次出现顺序撮合（默认）
	OrderInsertion Ordering = iota
	// OrderMagnitude 按金额从大到小撮合，金额相同时保持首次出现顺序
	OrderMagnitude
)

func (o Ordering) String() string {
	switch o {
	case OrderInsertion:
		return "insertion"
	case OrderMagnitude:
		return "magnitude"
	default:
		return fmt.Sprintf("ordering(%d)", int(o))
	}
}

// ParseOrdering 解析撮合顺序，空字符串为 OrderInsertion
func ParseOrdering(s string) (Ordering, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "insertion":
		return OrderInsertion, nil
	case "magnitude":
		return OrderMagnitude, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOrdering, s)
	}
}

// MatcherOption 撮合器选项
type MatcherOption func(*Matcher)

// WithOrdering 指定撮合顺序
func WithOrdering(o Ordering) MatcherOption {
	return func(m *Matcher) { m.ordering = o }
}

// Matcher 多边净额撮合器（贪心债务化简）
type Matcher struct {
	ordering Ordering
}

// NewMatcher 创建撮合器，默认 OrderInsertion
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{ordering: OrderInsertion}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Ordering 当前撮合顺序
func (m *Matcher) Ordering() Ordering {
	return m.ordering
}

type balance struct {
	party  Party
	amount int64
}

// Match 将净头寸化简为最少的点对点划转
// 每个债务方依次对债权方撮合 min(剩余债务, 剩余债权)，任一侧归零即前进。
// 划转笔数不超过 债权方数 + 债务方数 - 1，总量等于 Σ|value|/2。
func (m *Matcher) Match(positions NetPositions) ([]Settlement, error) {
	if err := checkPositions(positions); err != nil {
		return nil, err
	}

	var creditors, debtors []balance
	for _, pos := range positions {
		switch {
		case pos.Value > 0:
			creditors = append(creditors, balance{party: pos.Party, amount: pos.Value})
		case pos.Value < 0:
			debtors = append(debtors, balance{party: pos.Party, amount: -pos.Value})
		}
	}
	if len(debtors) == 0 {
		return []Settlement{}, nil
	}

	if m.ordering == OrderMagnitude {
		byMagnitude(creditors)
		byMagnitude(debtors)
	}

	settlements := make([]Settlement, 0, len(creditors)+len(debtors)-1)
	next := 0
	for _, d := range debtors {
		debt := d.amount
		for debt > 0 && next < len(creditors) {
			c := &creditors[next]
			amount := min(debt, c.amount)
			settlements = append(settlements, Settlement{From: d.party, To: c.party, Amount: amount})
			debt -= amount
			c.amount -= amount
			if c.amount == 0 {
				next++
			}
		}
	}
	return settlements, nil
}

func byMagnitude(side []balance) {
	sort.SliceStable(side, func(i, j int) bool {
		return side[i].amount > side[j].amount
	})
}

// checkPositions 校验参与方唯一且净头寸之和为零
func checkPositions(positions NetPositions) error {
	seen := make(map[Party]struct{}, len(positions))
	for _, pos := range positions {
		if _, ok := seen[pos.Party]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateParty, pos.Party)
		}
		seen[pos.Party] = struct{}{}
	}

	credit, debit, err := positions.totals()
	if err != nil {
		return err
	}
	if credit != debit {
		return fmt.Errorf("%w: positions sum to %d", ErrUnbalancedLedger, credit-debit)
	}
	return nil
}

// Apply 把划转作用到净头寸的副本上
// 付款方头寸增加、收款方头寸减少，与 NetPosition 的口径一致。
func Apply(positions NetPositions, settlements []Settlement) (NetPositions, error) {
	out := make(NetPositions, len(positions))
	copy(out, positions)

	index := make(map[Party]int, len(out))
	for i, pos := range out {
		if _, ok := index[pos.Party]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateParty, pos.Party)
		}
		index[pos.Party] = i
	}

	for _, s := range settlements {
		if s.Amount <= 0 {
			return nil, fmt.Errorf("%w: non-positive settlement %s -> %s: %d", ErrUnbalancedLedger, s.From, s.To, s.Amount)
		}
		from, ok := index[s.From]
		if !ok {
			return nil, fmt.Errorf("%w: settlement from unknown party %s", ErrUnbalancedLedger, s.From)
		}
		to, ok := index[s.To]
		if !ok {
			return nil, fmt.Errorf("%w: settlement to unknown party %s", ErrUnbalancedLedger, s.To)
		}
		out[from].Value += s.Amount
		out[to].Value -= s.Amount
	}
	return out, nil
}

// Verify 校验划转能把所有净头寸清零
func Verify(positions NetPositions, settlements []Settlement) error {
	residual, err := Apply(positions, settlements)
	if err != nil {
		return err
	}
	for _, pos := range residual {
		if pos.Value != 0 {
			return fmt.Errorf("%w: %s keeps residual %d", ErrUnbalancedLedger, pos.Party, pos.Value)
		}
	}
	return nil
}
