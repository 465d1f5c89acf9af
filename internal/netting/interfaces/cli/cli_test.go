package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/netsettlement/internal/netting/application"
	"github.com/wyfcoding/netsettlement/internal/netting/interfaces/cli"
	"github.com/wyfcoding/netsettlement/pkg/config"
	"github.com/wyfcoding/netsettlement/pkg/money"
)

func roamingCycle() config.CycleConfig {
	return config.CycleConfig{
		ID:     "2024-01",
		Period: "monthly",
		Obligations: []config.ObligationConfig{
			{Payer: "T-Mobile", Payee: "Vodafone", Amount: "500.00"},
			{Payer: "Vodafone", Payee: "Orange", Amount: "750.00"},
			{Payer: "Orange", Payee: "T-Mobile", Amount: "250.00"},
			{Payer: "Vodafone", Payee: "T-Mobile", Amount: "100.00"},
			{Payer: "Orange", Payee: "Vodafone", Amount: "150.00"},
			{Payer: "T-Mobile", Payee: "Orange", Amount: "75.00"},
		},
	}
}

func runRoaming(t *testing.T, extra ...config.ObligationConfig) *application.CycleResultDTO {
	t.Helper()
	cycle := roamingCycle()
	cycle.Obligations = append(cycle.Obligations, extra...)

	cmds, err := cli.BuildCommands([]config.CycleConfig{cycle}, 2)
	require.NoError(t, err)

	svc := application.NewNettingService(application.Options{Multilateral: true, AutoAcceptThreshold: 21000}, nil, nil)
	res, err := svc.RunCycle(context.Background(), cmds[0])
	require.NoError(t, err)
	return res
}

func TestBuildCommands(t *testing.T) {
	cmds, err := cli.BuildCommands([]config.CycleConfig{roamingCycle()}, 2)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	assert.Equal(t, "2024-01", cmds[0].CycleID)
	assert.Equal(t, "monthly", cmds[0].Period)
	require.Len(t, cmds[0].Obligations, 6)
	assert.Equal(t, application.ObligationInput{Payer: "T-Mobile", Payee: "Vodafone", Amount: 50000}, cmds[0].Obligations[0])
}

func TestBuildCommandsRejectsBadAmount(t *testing.T) {
	cycle := config.CycleConfig{Obligations: []config.ObligationConfig{{Payer: "A", Payee: "B", Amount: "1.234"}}}
	_, err := cli.BuildCommands([]config.CycleConfig{cycle}, 2)
	require.ErrorIs(t, err, money.ErrPrecision)
	assert.Contains(t, err.Error(), "cycles[0].obligations[0]")
}

func TestSelectCycle(t *testing.T) {
	cycles := []config.CycleConfig{{ID: "a"}, {ID: "b"}}

	all, err := cli.SelectCycle(cycles, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	one, err := cli.SelectCycle(cycles, "b")
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "b", one[0].ID)

	_, err = cli.SelectCycle(cycles, "c")
	assert.Error(t, err)
}

func TestPrintText(t *testing.T) {
	res := runRoaming(t, config.ObligationConfig{Payer: "Orange", Payee: "Orange", Amount: "1.00"})

	var buf bytes.Buffer
	require.NoError(t, cli.NewPrinter(&buf, "EUR", 2).Print("text", []*application.CycleResultDTO{res}))
	out := buf.String()

	for _, want := range []string{
		"Netting cycle 2024-01 (MONTHLY, multilateral, insertion)",
		"  T-Mobile -> Vodafone: EUR 500.00\n",
		"Total gross amount: EUR 1825.00\n",
		"  T-Mobile: +EUR 225.00 (receives)\n",
		"  Vodafone: +EUR 200.00 (receives)\n",
		"  Orange: -EUR 425.00 (pays)\n",
		"Total net settlement volume: EUR 425.00\n",
		"Bilateral netting: 3 transfers, EUR 1175.00\n",
		"Savings vs gross: 76.7%\n",
		"  Orange -> T-Mobile: EUR 225.00 [REVIEW_REQUIRED]\n",
		"  Orange -> Vodafone: EUR 200.00 [AUTO_ACCEPTED]\n",
		"Auto-accepted (<= EUR 210.00): 1, manual approval: 1 (EUR 225.00)\n",
		"Reduced from 6 gross obligations to 2 settlements\n",
		"  #6 Orange -> Orange: [INVALID_OBLIGATION]",
	} {
		assert.Contains(t, out, want)
	}
}

func TestPrintTextEmptyCycle(t *testing.T) {
	svc := application.NewNettingService(application.Options{Multilateral: true}, nil, nil)
	res, err := svc.RunCycle(context.Background(), &application.RunCycleCommand{CycleID: "empty"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, cli.NewPrinter(&buf, "", 2).PrintText([]*application.CycleResultDTO{res}))
	assert.Contains(t, buf.String(), "Savings vs gross: N/A\n")
	assert.Contains(t, buf.String(), "Final settlements:\n  none\n")
	assert.Contains(t, buf.String(), "Total gross amount: 0.00\n")
}

func TestPrintJSON(t *testing.T) {
	res := runRoaming(t)

	var buf bytes.Buffer
	require.NoError(t, cli.NewPrinter(&buf, "EUR", 2).Print("json", []*application.CycleResultDTO{res}))

	var decoded struct {
		Currency string `json:"currency"`
		Scale    int32  `json:"scale"`
		Cycles   []struct {
			CycleID     string `json:"cycle_id"`
			Period      string `json:"period"`
			Settlements []struct {
				From     string `json:"from"`
				To       string `json:"to"`
				Amount   int64  `json:"amount"`
				Approval string `json:"approval"`
			} `json:"settlements"`
			AutoAcceptThreshold int64 `json:"auto_accept_threshold"`
			Report              struct {
				GrossTotal        int64 `json:"gross_total"`
				NetVolume         int64 `json:"net_volume"`
				AutoAcceptedCount int   `json:"auto_accepted_count"`
				ReviewCount       int   `json:"review_count"`
				ReviewVolume      int64 `json:"review_volume"`
			} `json:"report"`
		} `json:"cycles"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "EUR", decoded.Currency)
	assert.Equal(t, int32(2), decoded.Scale)
	require.Len(t, decoded.Cycles, 1)
	c := decoded.Cycles[0]
	assert.Equal(t, "2024-01", c.CycleID)
	assert.Equal(t, "MONTHLY", c.Period)
	require.Len(t, c.Settlements, 2)
	assert.Equal(t, "Orange", c.Settlements[0].From)
	assert.Equal(t, int64(22500), c.Settlements[0].Amount)
	assert.Equal(t, "REVIEW_REQUIRED", c.Settlements[0].Approval)
	assert.Equal(t, "AUTO_ACCEPTED", c.Settlements[1].Approval)
	assert.Equal(t, int64(21000), c.AutoAcceptThreshold)
	assert.Equal(t, 1, c.Report.AutoAcceptedCount)
	assert.Equal(t, 1, c.Report.ReviewCount)
	assert.Equal(t, int64(22500), c.Report.ReviewVolume)
	assert.Equal(t, int64(182500), c.Report.GrossTotal)
	assert.Equal(t, int64(42500), c.Report.NetVolume)
}

func TestPrintUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, cli.NewPrinter(&buf, "EUR", 2).Print("xml", nil))
}
