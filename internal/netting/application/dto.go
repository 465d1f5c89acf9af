package application

import (
	"github.com/wyfcoding/netsettlement/internal/netting/domain"
	"github.com/wyfcoding/netsettlement/pkg/utils"
)

// RejectCodeInvalidObligation 被账本拒绝的债务记录
const RejectCodeInvalidObligation = "INVALID_OBLIGATION"

// ObligationInput 一条待登记的债务，Amount 为最小货币单位
type ObligationInput struct {
	Payer  string
	Payee  string
	Amount int64
}

// RunCycleCommand 执行一个结算周期
type RunCycleCommand struct {
	// 为空时自动生成
	CycleID string
	// DAILY/WEEKLY/MONTHLY/QUARTERLY，为空时按月结
	Period      string
	Obligations []ObligationInput
}

// RejectedObligationDTO 被拒绝的债务及原因
type RejectedObligationDTO struct {
	Index  int                 `json:"index"`
	Payer  string              `json:"payer"`
	Payee  string              `json:"payee"`
	Amount int64               `json:"amount"`
	Error  *utils.ErrorWrapper `json:"error"`
}

// CycleResultDTO 一个结算周期的完整结果
type CycleResultDTO struct {
	CycleID      string        `json:"cycle_id"`
	Period       domain.Period `json:"period"`
	Ordering     string        `json:"ordering"`
	Multilateral bool          `json:"multilateral"`
	// 自动接受阈值，最小货币单位
	AutoAcceptThreshold int64                      `json:"auto_accept_threshold"`
	Obligations         []domain.Obligation        `json:"obligations"`
	Positions           domain.NetPositions        `json:"positions"`
	Settlements         domain.ApprovedSettlements `json:"settlements"`
	Rejected            []RejectedObligationDTO    `json:"rejected,omitempty"`
	Report              domain.Report              `json:"report"`
}
