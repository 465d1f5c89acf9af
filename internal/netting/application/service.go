package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wyfcoding/netsettlement/internal/netting/domain"
	"github.com/wyfcoding/netsettlement/pkg/logger"
	"github.com/wyfcoding/netsettlement/pkg/metrics"
	"github.com/wyfcoding/netsettlement/pkg/utils"
)

// Options 净额结算服务配置
type Options struct {
	Ordering     domain.Ordering
	Strict       bool
	Multilateral bool
	// 为空表示不限制参与方
	Participants []string
	// RunCycles 的并发上限，<=0 时不限制
	Concurrency int
	// 不超过该金额（最小货币单位）的划转自动接受，其余需人工审批
	AutoAcceptThreshold int64
}

// NettingService 净额结算应用服务
// 每个周期独立创建账本，服务本身无可变状态，可并发调用。
type NettingService struct {
	opts       Options
	calculator *domain.Calculator
	matcher    *domain.Matcher
	collector  metrics.Collector
	ids        *utils.IDGenerator
}

// NewNettingService 创建服务，collector 为 nil 时不记录指标
func NewNettingService(opts Options, collector metrics.Collector, ids *utils.IDGenerator) *NettingService {
	if collector == nil {
		collector = metrics.NopCollector{}
	}
	var calcOpts []domain.CalculatorOption
	if opts.Strict {
		calcOpts = append(calcOpts, domain.WithStrict())
	}
	return &NettingService{
		opts:       opts,
		calculator: domain.NewCalculator(calcOpts...),
		matcher:    domain.NewMatcher(domain.WithOrdering(opts.Ordering)),
		collector:  collector,
		ids:        ids,
	}
}

// RunCycle 执行一个结算周期：登记债务、计算净头寸、生成划转并校验
// 单条非法债务只会被拒绝并记录，不影响其余债务；净头寸不平衡时整个周期失败。
func (s *NettingService) RunCycle(ctx context.Context, cmd *RunCycleCommand) (*CycleResultDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cmd == nil {
		return nil, errors.New("run cycle: nil command")
	}

	period, err := domain.ParsePeriod(cmd.Period)
	if err != nil {
		return nil, err
	}
	cycleID := cmd.CycleID
	if cycleID == "" {
		cycleID = s.nextCycleID()
	}

	ctx = logger.WithCycle(ctx, cycleID, string(period))
	defer logger.LogDuration(ctx, "netting cycle finished")()
	start := time.Now()

	result, err := s.settle(ctx, cycleID, period, cmd.Obligations)
	if err != nil {
		s.collector.RecordCycle(metrics.OutcomeFailed, time.Since(start), 0)
		logger.Error(ctx, "netting cycle failed", "error", err)
		return nil, fmt.Errorf("cycle %s: %w", cycleID, err)
	}

	s.collector.RecordCycle(metrics.OutcomeSettled, time.Since(start), len(result.Settlements))
	ratio, _ := result.Report.CompressionRatio.Float64()
	s.collector.ObserveCompression(ratio, result.Report.CompressionDefined)

	logger.Info(ctx, "netting cycle settled",
		"obligations", len(result.Obligations),
		"rejected", len(result.Rejected),
		"parties", len(result.Positions),
		"settlements", len(result.Settlements),
		"gross", result.Report.GrossTotal,
		"net", result.Report.NetVolume,
		"compression", result.Report.CompressionPercent(),
		"auto_accepted", result.Report.AutoAcceptedCount,
	)
	return result, nil
}

func (s *NettingService) settle(ctx context.Context, cycleID string, period domain.Period, inputs []ObligationInput) (*CycleResultDTO, error) {
	ledger := s.newLedger()

	var rejected []RejectedObligationDTO
	for i, in := range inputs {
		err := ledger.Add(domain.Party(in.Payer), domain.Party(in.Payee), in.Amount)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrInvalidObligation) {
			return nil, err
		}
		logger.Warn(ctx, "obligation rejected", "index", i, "payer", in.Payer, "payee", in.Payee, "amount", in.Amount, "error", err)
		rejected = append(rejected, RejectedObligationDTO{
			Index:  i,
			Payer:  in.Payer,
			Payee:  in.Payee,
			Amount: in.Amount,
			Error:  utils.NewErrorWrapper(RejectCodeInvalidObligation, "obligation rejected", err).
				WithDetails(map[string]string{"reason": err.Error()}),
		})
	}
	s.collector.RecordRejected(len(rejected))

	positions, err := s.calculator.Compute(ledger)
	if err != nil {
		return nil, err
	}

	var settlements []domain.Settlement
	if s.opts.Multilateral {
		settlements, err = s.matcher.Match(positions)
		if err != nil {
			return nil, err
		}
	} else {
		settlements = domain.BilateralNet(ledger)
	}
	if err := domain.Verify(positions, settlements); err != nil {
		return nil, err
	}
	logger.Debug(ctx, "settlements verified", "count", len(settlements))

	approved := domain.Classify(settlements, s.opts.AutoAcceptThreshold)
	report := domain.BuildReport(ledger, positions, settlements)
	report.CountApprovals(approved)
	if report.ReviewCount > 0 {
		logger.Info(ctx, "settlements require manual approval",
			"count", report.ReviewCount,
			"volume", report.ReviewVolume,
			"threshold", s.opts.AutoAcceptThreshold,
		)
	}

	return &CycleResultDTO{
		CycleID:             cycleID,
		Period:              period,
		Ordering:            s.matcher.Ordering().String(),
		Multilateral:        s.opts.Multilateral,
		AutoAcceptThreshold: s.opts.AutoAcceptThreshold,
		Obligations:         ledger.Entries(),
		Positions:           positions,
		Settlements:         approved,
		Rejected:            rejected,
		Report:              report,
	}, nil
}

// RunCycles 并发执行多个互不相关的结算周期，结果顺序与输入一致
// 任一周期失败时取消其余周期并返回第一个错误。
func (s *NettingService) RunCycles(ctx context.Context, cmds []*RunCycleCommand) ([]*CycleResultDTO, error) {
	results := make([]*CycleResultDTO, len(cmds))

	g, gctx := errgroup.WithContext(ctx)
	if s.opts.Concurrency > 0 {
		g.SetLimit(s.opts.Concurrency)
	}
	for i, cmd := range cmds {
		i, cmd := i, cmd
		g.Go(func() error {
			res, err := s.RunCycle(gctx, cmd)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *NettingService) newLedger() *domain.Ledger {
	if len(s.opts.Participants) == 0 {
		return domain.NewLedger()
	}
	parties := make([]domain.Party, len(s.opts.Participants))
	for i, p := range s.opts.Participants {
		parties[i] = domain.Party(p)
	}
	return domain.NewLedger(domain.WithParticipants(parties...))
}

func (s *NettingService) nextCycleID() string {
	if s.ids == nil {
		return fmt.Sprintf("NET-%d", time.Now().UnixNano())
	}
	return s.ids.NextID("NET")
}
