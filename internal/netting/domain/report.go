package domain

import (
	"github.com/shopspring/decimal"
)

// Report 净额结算效果统计
type Report struct {
	GrossTotal         int64           `json:"gross_total"`
	GrossCount         int             `json:"gross_count"`
	BilateralCount     int             `json:"bilateral_count"`
	BilateralVolume    int64           `json:"bilateral_volume"`
	NetVolume          int64           `json:"net_volume"`
	SettlementCount    int             `json:"settlement_count"`
	CompressionRatio   decimal.Decimal `json:"compression_ratio"`
	CompressionDefined bool            `json:"compression_defined"`
	AutoAcceptedCount  int             `json:"auto_accepted_count"`
	ReviewCount        int             `json:"review_count"`
	ReviewVolume       int64           `json:"review_volume"`
}

// BuildReport 汇总毛额、双边轧差与多边净额的对比
// CompressionRatio = 1 - NetVolume/GrossTotal，GrossTotal 为零时无定义。
func BuildReport(l *Ledger, positions NetPositions, settlements []Settlement) Report {
	r := Report{
		NetVolume:       positions.NetVolume(),
		SettlementCount: len(settlements),
	}
	if l != nil {
		r.GrossTotal = l.Total()
		r.GrossCount = l.Len()
		for _, s := range BilateralNet(l) {
			r.BilateralCount++
			r.BilateralVolume += s.Amount
		}
	}

	if r.GrossTotal > 0 {
		net := decimal.NewFromInt(r.NetVolume)
		gross := decimal.NewFromInt(r.GrossTotal)
		r.CompressionRatio = decimal.NewFromInt(1).Sub(net.Div(gross))
		r.CompressionDefined = true
	}
	return r
}

// CompressionPercent 以百分比展示压缩率，保留一位小数；无定义时为 N/A
func (r Report) CompressionPercent() string {
	if !r.CompressionDefined {
		return "N/A"
	}
	return r.CompressionRatio.Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
}

// CountApprovals 统计自动接受与待审批的划转
func (r *Report) CountApprovals(approved ApprovedSettlements) {
	r.AutoAcceptedCount, r.ReviewCount, r.ReviewVolume = 0, 0, 0
	for _, a := range approved {
		if a.Approval == ApprovalAutoAccepted {
			r.AutoAcceptedCount++
			continue
		}
		r.ReviewCount++
		r.ReviewVolume += a.Amount
	}
}
