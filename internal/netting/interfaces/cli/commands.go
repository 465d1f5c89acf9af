// Package cli 把配置中的结算周期转换为应用层命令，并渲染结算结果
package cli

import (
	"fmt"

	"github.com/wyfcoding/netsettlement/internal/netting/application"
	"github.com/wyfcoding/netsettlement/pkg/config"
	"github.com/wyfcoding/netsettlement/pkg/money"
)

// BuildCommands 将配置中的周期转换为 RunCycleCommand，金额按 scale 转为最小货币单位
// 负数金额照常转换，由账本拒绝；无法解析或精度超限的金额视为配置错误。
func BuildCommands(cycles []config.CycleConfig, scale int32) ([]*application.RunCycleCommand, error) {
	cmds := make([]*application.RunCycleCommand, 0, len(cycles))
	for i, cycle := range cycles {
		obligations := make([]application.ObligationInput, 0, len(cycle.Obligations))
		for j, o := range cycle.Obligations {
			amount, err := money.Parse(o.Amount, scale)
			if err != nil {
				return nil, fmt.Errorf("cycles[%d].obligations[%d]: %w", i, j, err)
			}
			obligations = append(obligations, application.ObligationInput{
				Payer:  o.Payer,
				Payee:  o.Payee,
				Amount: amount,
			})
		}
		cmds = append(cmds, &application.RunCycleCommand{
			CycleID:     cycle.ID,
			Period:      cycle.Period,
			Obligations: obligations,
		})
	}
	return cmds, nil
}

// SelectCycle 按 ID 过滤周期，id 为空时返回全部
func SelectCycle(cycles []config.CycleConfig, id string) ([]config.CycleConfig, error) {
	if id == "" {
		return cycles, nil
	}
	for _, cycle := range cycles {
		if cycle.ID == id {
			return []config.CycleConfig{cycle}, nil
		}
	}
	return nil, fmt.Errorf("cycle %q not found in config", id)
}
