package domain_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/netsettlement/internal/netting/domain"
)

const (
	tmobile  domain.Party = "T-Mobile-DE"
	vodafone domain.Party = "Vodafone-UK"
	orange   domain.Party = "Orange-FR"
)

// roamingLedger 三家运营商的漫游结算样例，金额为欧分
func roamingLedger(t testing.TB) *domain.Ledger {
	t.Helper()
	l := domain.NewLedger()
	for _, o := range []domain.Obligation{
		{Payer: tmobile, Payee: vodafone, Amount: 50000},
		{Payer: vodafone, Payee: orange, Amount: 75000},
		{Payer: orange, Payee: tmobile, Amount: 25000},
		{Payer: vodafone, Payee: tmobile, Amount: 10000},
		{Payer: orange, Payee: vodafone, Amount: 15000},
		{Payer: tmobile, Payee: orange, Amount: 7500},
	} {
		require.NoError(t, l.Submit(o))
	}
	return l
}

// randomLedger 随机账本，参与方与金额由 seed 决定
func randomLedger(t testing.TB, seed int64) *domain.Ledger {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	parties := make([]domain.Party, 2+rng.Intn(12))
	for i := range parties {
		parties[i] = domain.Party(string(rune('A' + i)))
	}

	l := domain.NewLedger()
	n := rng.Intn(60)
	for i := 0; i < n; i++ {
		payer := parties[rng.Intn(len(parties))]
		payee := parties[rng.Intn(len(parties))]
		if payer == payee {
			continue
		}
		require.NoError(t, l.Add(payer, payee, rng.Int63n(1_000_000)))
	}
	return l
}
