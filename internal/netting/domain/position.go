package domain

import (
	"fmt"
	"math"
)

// NetPosition 参与方净头寸
// Value = 应付出总额 - 应收入总额：正数展示为"收款"，负数为"付款"。
type NetPosition struct {
	Party Party `json:"party"`
	Value int64 `json:"value"`
}

// Direction 头寸方向
func (p NetPosition) Direction() string {
	switch {
	case p.Value > 0:
		return "receives"
	case p.Value < 0:
		return "pays"
	default:
		return "balanced"
	}
}

// NetPositions 按参与方首次出现顺序排列的净头寸
type NetPositions []NetPosition

// Value 查询参与方净头寸
func (ps NetPositions) Value(p Party) (int64, bool) {
	for _, pos := range ps {
		if pos.Party == p {
			return pos.Value, true
		}
	}
	return 0, false
}

// AsMap 转为 Party -> Value
func (ps NetPositions) AsMap() map[Party]int64 {
	out := make(map[Party]int64, len(ps))
	for _, pos := range ps {
		out[pos.Party] += pos.Value
	}
	return out
}

// Sum 净头寸之和；ok 为 false 表示中间结果无法用 int64 表示
func (ps NetPositions) Sum() (sum int64, ok bool) {
	credit, debit, err := ps.totals()
	if err != nil {
		return 0, false
	}
	return credit - debit, true
}

// NetVolume 净额结算量：所有正头寸之和，对平衡的头寸等于 Σ|value|/2
func (ps NetPositions) NetVolume() int64 {
	var volume int64
	for _, pos := range ps {
		if pos.Value > 0 {
			volume += pos.Value
		}
	}
	return volume
}

// NonZero 非零头寸的参与方数量
func (ps NetPositions) NonZero() int {
	n := 0
	for _, pos := range ps {
		if pos.Value != 0 {
			n++
		}
	}
	return n
}

// totals 分别累加应收与应付，任一侧溢出即报错
func (ps NetPositions) totals() (credit, debit int64, err error) {
	for _, pos := range ps {
		switch {
		case pos.Value > 0:
			if credit > math.MaxInt64-pos.Value {
				return 0, 0, fmt.Errorf("%w: credit total overflows", ErrUnbalancedLedger)
			}
			credit += pos.Value
		case pos.Value < 0:
			if pos.Value == math.MinInt64 || debit > math.MaxInt64+pos.Value {
				return 0, 0, fmt.Errorf("%w: debit total overflows", ErrUnbalancedLedger)
			}
			debit -= pos.Value
		}
	}
	return credit, debit, nil
}

// CalculatorOption 净头寸计算选项
type CalculatorOption func(*Calculator)

// WithStrict 严格模式：空账本返回 ErrIncompleteLedger
func WithStrict() CalculatorOption {
	return func(c *Calculator) { c.strict = true }
}

// Calculator 净头寸计算器
type Calculator struct {
	strict bool
}

// NewCalculator 创建净头寸计算器
func NewCalculator(opts ...CalculatorOption) *Calculator {
	c := &Calculator{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compute 计算每个参与方的净头寸，O(E)
// 净头寸为零的参与方同样输出。空账本返回空结果，严格模式下返回 ErrIncompleteLedger。
func (c *Calculator) Compute(l *Ledger) (NetPositions, error) {
	if l == nil || len(l.parties) == 0 {
		if c.strict {
			return nil, fmt.Errorf("%w: ledger has no parties", ErrIncompleteLedger)
		}
		return NetPositions{}, nil
	}

	values := make(map[Party]int64, len(l.parties))
	for _, key := range l.pairs {
		amount := l.amounts[key]
		values[key.payer] += amount
		values[key.payee] -= amount
	}

	positions := make(NetPositions, 0, len(l.parties))
	for _, p := range l.parties {
		positions = append(positions, NetPosition{Party: p, Value: values[p]})
	}
	return positions, nil
}
