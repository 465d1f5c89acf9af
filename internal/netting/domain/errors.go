package domain

import "errors"

var (
	// ErrInvalidObligation 非法债务：负金额、自付、空参与方、非成员或总额溢出
	ErrInvalidObligation = errors.New("netting: invalid obligation")

	// ErrUnbalancedLedger 净头寸之和不为零，属于调用方契约错误
	ErrUnbalancedLedger = errors.New("netting: unbalanced ledger")

	// ErrIncompleteLedger 严格模式下账本没有任何参与方
	ErrIncompleteLedger = errors.New("netting: incomplete ledger")

	// ErrDuplicateParty 同一参与方在净头寸中出现多次
	ErrDuplicateParty = errors.New("netting: duplicate party")

	// ErrUnknownPeriod 无法识别的结算周期
	ErrUnknownPeriod = errors.New("netting: unknown settlement period")

	// ErrUnknownOrdering 无法识别的撮合顺序
	ErrUnknownOrdering = errors.New("netting: unknown ordering")
)
