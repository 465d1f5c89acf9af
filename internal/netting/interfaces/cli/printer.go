package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/wyfcoding/netsettlement/internal/netting/application"
	"github.com/wyfcoding/netsettlement/pkg/money"
)

// 输出格式
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Printer 结算结果渲染器
type Printer struct {
	w        io.Writer
	currency string
	scale    int32
}

// NewPrinter 创建渲染器
func NewPrinter(w io.Writer, currency string, scale int32) *Printer {
	return &Printer{w: w, currency: currency, scale: scale}
}

// Print 按格式输出
func (p *Printer) Print(format string, results []*application.CycleResultDTO) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		return p.PrintText(results)
	case FormatJSON:
		return p.PrintJSON(results)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// PrintText 输出可读的结算报告
func (p *Printer) PrintText(results []*application.CycleResultDTO) error {
	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n")
		}
		p.writeCycle(&b, res)
	}
	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Printer) writeCycle(b *strings.Builder, res *application.CycleResultDTO) {
	mode := "multilateral, " + res.Ordering
	if !res.Multilateral {
		mode = "bilateral only"
	}
	title := fmt.Sprintf("Netting cycle %s (%s, %s)", res.CycleID, res.Period, mode)
	fmt.Fprintf(b, "%s\n%s\n", title, strings.Repeat("=", len(title)))

	b.WriteString("Gross bilateral obligations:\n")
	for _, o := range res.Obligations {
		fmt.Fprintf(b, "  %s -> %s: %s\n", o.Payer, o.Payee, p.amount(o.Amount))
	}
	fmt.Fprintf(b, "Total gross amount: %s\n", p.amount(res.Report.GrossTotal))

	b.WriteString("\nNet settlement positions:\n")
	for _, pos := range res.Positions {
		switch {
		case pos.Value > 0:
			fmt.Fprintf(b, "  %s: +%s (%s)\n", pos.Party, p.amount(pos.Value), pos.Direction())
		case pos.Value < 0:
			fmt.Fprintf(b, "  %s: -%s (%s)\n", pos.Party, p.amount(-pos.Value), pos.Direction())
		default:
			fmt.Fprintf(b, "  %s: %s (%s)\n", pos.Party, p.amount(0), pos.Direction())
		}
	}

	fmt.Fprintf(b, "\nTotal net settlement volume: %s\n", p.amount(res.Report.NetVolume))
	fmt.Fprintf(b, "Bilateral netting: %d transfers, %s\n", res.Report.BilateralCount, p.amount(res.Report.BilateralVolume))
	fmt.Fprintf(b, "Savings vs gross: %s\n", res.Report.CompressionPercent())

	b.WriteString("\nFinal settlements:\n")
	if len(res.Settlements) == 0 {
		b.WriteString("  none\n")
	}
	for _, s := range res.Settlements {
		fmt.Fprintf(b, "  %s -> %s: %s [%s]\n", s.From, s.To, p.amount(s.Amount), s.Approval)
	}
	fmt.Fprintf(b, "Auto-accepted (<= %s): %d, manual approval: %d (%s)\n",
		p.amount(res.AutoAcceptThreshold), res.Report.AutoAcceptedCount, res.Report.ReviewCount, p.amount(res.Report.ReviewVolume))
	fmt.Fprintf(b, "\nReduced from %d gross obligations to %d settlements\n", res.Report.GrossCount, res.Report.SettlementCount)

	if len(res.Rejected) > 0 {
		b.WriteString("\nRejected obligations:\n")
		for _, r := range res.Rejected {
			fmt.Fprintf(b, "  #%d %s -> %s: %v\n", r.Index, r.Payer, r.Payee, r.Error)
		}
	}
}

func (p *Printer) amount(minor int64) string {
	if p.currency == "" {
		return money.Format(minor, p.scale)
	}
	return p.currency + " " + money.Format(minor, p.scale)
}

type jsonOutput struct {
	Currency string                        `json:"currency"`
	Scale    int32                         `json:"scale"`
	Cycles   []*application.CycleResultDTO `json:"cycles"`
}

// PrintJSON 输出 JSON，金额保持最小货币单位
func (p *Printer) PrintJSON(results []*application.CycleResultDTO) error {
	if results == nil {
		results = []*application.CycleResultDTO{}
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonOutput{Currency: p.currency, Scale: p.scale, Cycles: results})
}
