package domain

// BilateralNet 双边净额：每对参与方独立轧差，不跨对抵消
// 结果按参与方对首次出现的顺序排列，轧差为零的对不产生划转。
func BilateralNet(l *Ledger) []Settlement {
	if l == nil {
		return []Settlement{}
	}

	settlements := make([]Settlement, 0, len(l.pairs))
	done := make(map[pairKey]struct{}, len(l.pairs))
	for _, key := range l.pairs {
		reverse := pairKey{payer: key.payee, payee: key.payer}
		if _, ok := done[reverse]; ok {
			continue
		}
		done[key] = struct{}{}

		// 与 NetPosition 口径一致：net > 0 时 payer 为收款方
		net := l.amounts[key] - l.amounts[reverse]
		switch {
		case net > 0:
			settlements = append(settlements, Settlement{From: key.payee, To: key.payer, Amount: net})
		case net < 0:
			settlements = append(settlements, Settlement{From: key.payer, To: key.payee, Amount: -net})
		}
	}
	return settlements
}
