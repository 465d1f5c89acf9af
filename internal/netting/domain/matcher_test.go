package domain_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/netsettlement/internal/netting/domain"
)

func TestMatchRoamingScenario(t *testing.T) {
	positions, err := domain.NewCalculator().Compute(roamingLedger(t))
	require.NoError(t, err)

	settlements, err := domain.NewMatcher().Match(positions)
	require.NoError(t, err)
	assert.Equal(t, []domain.Settlement{
		{From: orange, To: tmobile, Amount: 22500},
		{From: orange, To: vodafone, Amount: 20000},
	}, settlements)
	require.NoError(t, domain.Verify(positions, settlements))
}

func TestMatchOrderings(t *testing.T) {
	positions := domain.NetPositions{
		{Party: "A", Value: 100},
		{Party: "B", Value: 300},
		{Party: "C", Value: -50},
		{Party: "D", Value: -350},
	}

	cases := []struct {
		ordering domain.Ordering
		want     []domain.Settlement
	}{
		{domain.OrderInsertion, []domain.Settlement{
			{From: "C", To: "A", Amount: 50},
			{From: "D", To: "A", Amount: 50},
			{From: "D", To: "B", Amount: 300},
		}},
		{domain.OrderMagnitude, []domain.Settlement{
			{From: "D", To: "B", Amount: 300},
			{From: "D", To: "A", Amount: 50},
			{From: "C", To: "A", Amount: 50},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.ordering.String(), func(t *testing.T) {
			got, err := domain.NewMatcher(domain.WithOrdering(tc.ordering)).Match(positions)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			require.NoError(t, domain.Verify(positions, got))
		})
	}
}

func TestMatchMagnitudeTiesKeepFirstSeenOrder(t *testing.T) {
	positions := domain.NetPositions{
		{Party: "A", Value: 100},
		{Party: "B", Value: 100},
		{Party: "C", Value: -200},
	}
	got, err := domain.NewMatcher(domain.WithOrdering(domain.OrderMagnitude)).Match(positions)
	require.NoError(t, err)
	assert.Equal(t, []domain.Settlement{
		{From: "C", To: "A", Amount: 100},
		{From: "C", To: "B", Amount: 100},
	}, got)
}

func TestMatchEmptyAndBalanced(t *testing.T) {
	got, err := domain.NewMatcher().Match(domain.NetPositions{})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = domain.NewMatcher().Match(domain.NetPositions{{Party: "A"}, {Party: "B"}})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMatchRejectsUnbalancedPositions(t *testing.T) {
	_, err := domain.NewMatcher().Match(domain.NetPositions{
		{Party: "A", Value: 100},
		{Party: "B", Value: -90},
	})
	require.ErrorIs(t, err, domain.ErrUnbalancedLedger)

	_, err = domain.NewMatcher().Match(domain.NetPositions{
		{Party: "A", Value: math.MaxInt64},
		{Party: "B", Value: math.MaxInt64},
		{Party: "C", Value: -1},
	})
	require.ErrorIs(t, err, domain.ErrUnbalancedLedger)
}

func TestMatchRejectsDuplicateParty(t *testing.T) {
	_, err := domain.NewMatcher().Match(domain.NetPositions{
		{Party: "A", Value: 100},
		{Party: "A", Value: -100},
	})
	require.ErrorIs(t, err, domain.ErrDuplicateParty)
}

func TestApplyAndVerify(t *testing.T) {
	positions := domain.NetPositions{{Party: "A", Value: 10}, {Party: "B", Value: -10}}

	residual, err := domain.Apply(positions, []domain.Settlement{{From: "B", To: "A", Amount: 4}})
	require.NoError(t, err)
	assert.Equal(t, domain.NetPositions{{Party: "A", Value: 6}, {Party: "B", Value: -6}}, residual)
	assert.Equal(t, int64(10), positions[0].Value, "input must not be mutated")

	err = domain.Verify(positions, []domain.Settlement{{From: "B", To: "A", Amount: 4}})
	require.ErrorIs(t, err, domain.ErrUnbalancedLedger)

	err = domain.Verify(positions, []domain.Settlement{{From: "B", To: "X", Amount: 10}})
	require.ErrorIs(t, err, domain.ErrUnbalancedLedger)

	err = domain.Verify(positions, []domain.Settlement{{From: "B", To: "A", Amount: 0}})
	require.ErrorIs(t, err, domain.ErrUnbalancedLedger)

	require.NoError(t, domain.Verify(positions, []domain.Settlement{{From: "B", To: "A", Amount: 10}}))
}

func TestParseOrdering(t *testing.T) {
	for in, want := range map[string]domain.Ordering{
		"":           domain.OrderInsertion,
		"insertion":  domain.OrderInsertion,
		" Magnitude": domain.OrderMagnitude,
	} {
		got, err := domain.ParseOrdering(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := domain.ParseOrdering("random")
	require.ErrorIs(t, err, domain.ErrUnknownOrdering)
	assert.Equal(t, "ordering(7)", domain.Ordering(7).String())
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]domain.Period{
		"":          domain.PeriodMonthly,
		"daily":     domain.PeriodDaily,
		"Weekly":    domain.PeriodWeekly,
		"QUARTERLY": domain.PeriodQuarterly,
	} {
		got, err := domain.ParsePeriod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := domain.ParsePeriod("hourly")
	require.ErrorIs(t, err, domain.ErrUnknownPeriod)
}
