package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/config"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/repository"
)

func newTestReferralService(store *memReferralStore) *ReferralService {
	return NewReferralService(store, &config.Config{ReferralLevel2Percent: 5, ReferralLevel3Percent: 2})
}

func TestRegister_UnknownCode(t *testing.T) {
	store := &memReferralStore{}
	svc := newTestReferralService(store)

	ok, err := svc.Register(context.Background(), "nope", uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, store.regs)
}

func TestRegister_NormalizesCode(t *testing.T) {
	store := &memReferralStore{}
	orgA, orgB := uuid.New(), uuid.New()
	promo := store.addPromo("agency2024", orgA, uuid.New())
	svc := newTestReferralService(store)

	ok, err := svc.Register(context.Background(), "  Agency 2024 ", orgB)
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, store.regs, 1)
	assert.Equal(t, 1, store.regs[0].Level)
	assert.Equal(t, orgA, store.regs[0].ReferrerOrganizationID)
	assert.Equal(t, promo.UserID, store.regs[0].ReferrerUserID)
	assert.Equal(t, 1, store.promo[0].RegistrationsCount)
}

func TestRegister_SelfReferral(t *testing.T) {
	store := &memReferralStore{}
	orgA := uuid.New()
	store.addPromo("self", orgA, uuid.New())
	svc := newTestReferralService(store)

	ok, err := svc.Register(context.Background(), "self", orgA)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, store.regs)
}

func TestRegister_InactiveCode(t *testing.T) {
	store := &memReferralStore{}
	store.addPromo("old", uuid.New(), uuid.New())
	store.promo[0].IsActive = false
	svc := newTestReferralService(store)

	ok, err := svc.Register(context.Background(), "old", uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegister_BuildsChain(t *testing.T) {
	store := &memReferralStore{}
	orgA, orgB, orgC, orgD := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	userA, userB := uuid.New(), uuid.New()
	store.addPromo("aaa", orgA, userA)
	store.addPromo("bbb", orgB, userB)
	store.addPromo("ccc", orgC, uuid.New())
	svc := newTestReferralService(store)
	ctx := context.Background()

	ok, err := svc.Register(ctx, "aaa", orgB)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.Register(ctx, "bbb", orgC)
	require.NoError(t, err)
	require.True(t, ok)

	regsC := store.registrations(orgC)
	require.Len(t, regsC, 2)
	assert.Equal(t, 1, regsC[0].Level)
	assert.Equal(t, orgB, regsC[0].ReferrerOrganizationID)
	assert.Equal(t, 2, regsC[1].Level)
	assert.Equal(t, orgA, regsC[1].ReferrerOrganizationID)
	assert.Equal(t, userA, regsC[1].ReferrerUserID)

	ok, err = svc.Register(ctx, "ccc", orgD)
	require.NoError(t, err)
	require.True(t, ok)

	regsD := store.registrations(orgD)
	require.Len(t, regsD, 3)
	assert.Equal(t, []uuid.UUID{orgC, orgB, orgA}, []uuid.UUID{
		regsD[0].ReferrerOrganizationID, regsD[1].ReferrerOrganizationID, regsD[2].ReferrerOrganizationID,
	})
	assert.Equal(t, 3, regsD[2].Level)
}

func TestRegister_ChainStopsAtThreeLevels(t *testing.T) {
	store := &memReferralStore{}
	orgs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	codes := []string{"l0", "l1", "l2", "l3"}
	for i, code := range codes {
		store.addPromo(code, orgs[i], uuid.New())
	}
	svc := newTestReferralService(store)
	ctx := context.Background()

	for i := 1; i < len(orgs); i++ {
		ok, err := svc.Register(ctx, codes[i-1], orgs[i])
		require.NoError(t, err)
		require.True(t, ok)
	}

	regs := store.registrations(orgs[4])
	require.Len(t, regs, 3)
	for _, r := range regs {
		assert.NotEqual(t, orgs[0], r.ReferrerOrganizationID)
	}
}

func TestRegister_ChainFailureKeepsLevelOne(t *testing.T) {
	store := &memReferralStore{}
	orgA, orgB, orgC := uuid.New(), uuid.New(), uuid.New()
	store.addPromo("aaa", orgA, uuid.New())
	store.addPromo("bbb", orgB, uuid.New())
	svc := newTestReferralService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, "aaa", orgB)
	require.NoError(t, err)

	store.CreateRegistrationFunc = func(arg repository.CreateReferralRegistrationParams) error {
		if arg.Level > 1 {
			return ErrMockStore
		}
		return nil
	}
	ok, err := svc.Register(ctx, "bbb", orgC)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, store.registrations(orgC), 1)
}

func TestRegister_LevelOneFailureReturnsError(t *testing.T) {
	store := &memReferralStore{
		CreateRegistrationFunc: func(repository.CreateReferralRegistrationParams) error { return ErrMockStore },
	}
	store.addPromo("aaa", uuid.New(), uuid.New())
	svc := newTestReferralService(store)

	ok, err := svc.Register(context.Background(), "aaa", uuid.New())
	require.ErrorIs(t, err, ErrMockStore)
	assert.False(t, ok)
}

func TestRegister_TwiceCreatesTwoEdges(t *testing.T) {
	store := &memReferralStore{}
	orgA, orgB := uuid.New(), uuid.New()
	store.addPromo("aaa", orgA, uuid.New())
	svc := newTestReferralService(store)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := svc.Register(ctx, "aaa", orgB)
		require.NoError(t, err)
		require.True(t, ok)
	}

	assert.Len(t, store.registrations(orgB), 2)
	assert.Equal(t, 2, store.promo[0].RegistrationsCount)
}

func TestStats(t *testing.T) {
	store := &memReferralStore{}
	orgA, userA := uuid.New(), uuid.New()
	store.addPromo("aaa", orgA, userA)
	svc := newTestReferralService(store)
	ctx := context.Background()

	referred := make([]uuid.UUID, 7)
	for i := range referred {
		referred[i] = uuid.New()
		_, err := svc.Register(ctx, "aaa", referred[i])
		require.NoError(t, err)
	}
	require.NoError(t, svc.SetReferralActive(ctx, orgA, referred[0], false))

	_, err := svc.RecordPayment(ctx, referred[1], decimal.NewFromInt(1000))
	require.NoError(t, err)
	txs, err := svc.RecordPayment(ctx, referred[2], decimal.NewFromInt(200))
	require.NoError(t, err)
	require.Len(t, txs, 1)
	_, err = svc.AdvanceTransaction(ctx, orgA, txs[0].ID, domain.ReferralTxReady)
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, orgA, userA)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalReferred)
	assert.Equal(t, 6, stats.ActiveClients)
	assert.Equal(t, 25, stats.TierPercent)
	assert.Equal(t, 1, stats.TierIndex)
	assert.True(t, stats.Pending.Equal(decimal.NewFromInt(250)), stats.Pending.String())
	assert.True(t, stats.ReadyToPay.Equal(decimal.NewFromInt(50)), stats.ReadyToPay.String())
	assert.True(t, stats.TotalPaid.IsZero())
}

func TestStats_NoReferrals(t *testing.T) {
	svc := newTestReferralService(&memReferralStore{})

	stats, err := svc.Stats(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalReferred)
	assert.Equal(t, 20, stats.TierPercent)
	assert.Equal(t, 0, stats.TierIndex)
}

func TestRecordPayment_Levels(t *testing.T) {
	store := &memReferralStore{}
	orgA, orgB, orgC := uuid.New(), uuid.New(), uuid.New()
	store.addPromo("aaa", orgA, uuid.New())
	store.addPromo("bbb", orgB, uuid.New())
	svc := newTestReferralService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, "aaa", orgB)
	require.NoError(t, err)
	_, err = svc.Register(ctx, "bbb", orgC)
	require.NoError(t, err)

	txs, err := svc.RecordPayment(ctx, orgC, decimal.RequireFromString("99.99"))
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, orgB, txs[0].ReferrerOrganizationID)
	assert.True(t, txs[0].CommissionPercent.Equal(decimal.NewFromInt(20)))
	assert.True(t, txs[0].CommissionAmount.Equal(decimal.NewFromInt(20)), txs[0].CommissionAmount.String())

	assert.Equal(t, orgA, txs[1].ReferrerOrganizationID)
	assert.True(t, txs[1].CommissionPercent.Equal(decimal.NewFromInt(5)))
	assert.True(t, txs[1].CommissionAmount.Equal(decimal.NewFromInt(5)), txs[1].CommissionAmount.String())

	assert.Equal(t, 1, store.PaymentsIncrements)
}

func TestRecordPayment_InvalidAmount(t *testing.T) {
	svc := newTestReferralService(&memReferralStore{})

	_, err := svc.RecordPayment(context.Background(), uuid.New(), decimal.Zero)
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestAdvanceTransaction(t *testing.T) {
	store := &memReferralStore{}
	orgA, orgB := uuid.New(), uuid.New()
	store.addPromo("aaa", orgA, uuid.New())
	svc := newTestReferralService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, "aaa", orgB)
	require.NoError(t, err)
	txs, err := svc.RecordPayment(ctx, orgB, decimal.NewFromInt(100))
	require.NoError(t, err)
	id := txs[0].ID

	_, err = svc.AdvanceTransaction(ctx, orgA, id, domain.ReferralTxPaid)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	tx, err := svc.AdvanceTransaction(ctx, orgA, id, domain.ReferralTxReady)
	require.NoError(t, err)
	assert.Equal(t, domain.ReferralTxReady, tx.Status)
	assert.NotNil(t, tx.ReadyAt)

	tx, err = svc.AdvanceTransaction(ctx, orgA, id, domain.ReferralTxPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.ReferralTxPaid, tx.Status)

	_, err = svc.AdvanceTransaction(ctx, orgA, id, domain.ReferralTxPaid)
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.AdvanceTransaction(ctx, orgB, id, domain.ReferralTxReady)
	require.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestSetReferralActive_NotFound(t *testing.T) {
	svc := newTestReferralService(&memReferralStore{})

	err := svc.SetReferralActive(context.Background(), uuid.New(), uuid.New(), false)
	require.ErrorIs(t, err, domain.ErrReferralNotFound)
}

func TestCreatePromoCode(t *testing.T) {
	store := &memReferralStore{}
	svc := newTestReferralService(store)
	ctx := context.Background()
	orgA, userA := uuid.New(), uuid.New()

	promo, err := svc.CreatePromoCode(ctx, orgA, userA, " Spring Sale ")
	require.NoError(t, err)
	assert.Equal(t, "springsale", promo.Code)

	_, err = svc.CreatePromoCode(ctx, uuid.New(), uuid.New(), "SPRINGSALE")
	require.ErrorIs(t, err, domain.ErrPromoCodeTaken)

	_, err = svc.CreatePromoCode(ctx, orgA, userA, "a!")
	require.ErrorIs(t, err, domain.ErrPromoCodeInvalid)

	generated, err := svc.CreatePromoCode(ctx, orgA, userA, "")
	require.NoError(t, err)
	assert.Len(t, generated.Code, config.PromoCodeLength)

	found, err := svc.PromoCodeForUser(ctx, orgA, userA)
	require.NoError(t, err)
	require.NotNil(t, found)

	require.NoError(t, svc.DeactivatePromoCode(ctx, orgA, promo.ID))
	require.ErrorIs(t, svc.DeactivatePromoCode(ctx, orgA, promo.ID), domain.ErrPromoNotFound)
}

func TestPromoCodeForUser_None(t *testing.T) {
	svc := newTestReferralService(&memReferralStore{})

	promo, err := svc.PromoCodeForUser(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, promo)
}
