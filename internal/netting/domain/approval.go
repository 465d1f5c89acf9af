package domain

// Approval 划转的审批状态
type Approval string

const (
	// ApprovalAutoAccepted 金额不超过自动接受阈值，无需人工审批
	ApprovalAutoAccepted Approval = "AUTO_ACCEPTED"
	// ApprovalReviewRequired 金额超过阈值，需人工审批
	ApprovalReviewRequired Approval = "REVIEW_REQUIRED"
)

// ApprovedSettlement 带审批状态的划转
type ApprovedSettlement struct {
	Settlement
	Approval Approval `json:"approval"`
}

// ApprovedSettlements 保持撮合顺序的带审批状态划转列表
type ApprovedSettlements []ApprovedSettlement

// Classify 按自动接受阈值为每笔划转标注审批状态，Amount <= threshold 时自动接受
// threshold 为最小货币单位，<= 0 表示所有划转都需审批。
func Classify(settlements []Settlement, threshold int64) ApprovedSettlements {
	out := make(ApprovedSettlements, 0, len(settlements))
	for _, s := range settlements {
		approval := ApprovalReviewRequired
		if s.Amount <= threshold {
			approval = ApprovalAutoAccepted
		}
		out = append(out, ApprovedSettlement{Settlement: s, Approval: approval})
	}
	return out
}

// Plain 去掉审批状态
func (as ApprovedSettlements) Plain() []Settlement {
	out := make([]Settlement, len(as))
	for i, a := range as {
		out[i] = a.Settlement
	}
	return out
}
