package integration_test

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ivankudzin/paquera/internal/domain/enums"
	pgrepo "github.com/ivankudzin/paquera/internal/repo/postgres"
	entsvc "github.com/ivankudzin/paquera/internal/services/entitlements"
	likessvc "github.com/ivankudzin/paquera/internal/services/likes"
	matchessvc "github.com/ivankudzin/paquera/internal/services/matches"
	paymentsvc "github.com/ivankudzin/paquera/internal/services/payments"
	profilesvc "github.com/ivankudzin/paquera/internal/services/profiles"
	swipesvc "github.com/ivankudzin/paquera/internal/services/swipes"
)

const postgresDSNEnv = "PAQUERA_TEST_POSTGRES_DSN"

type engine struct {
	matchRepo    *pgrepo.MatchRepo
	profiles     *profilesvc.Service
	swipes       *swipesvc.Service
	matches      *matchessvc.Service
	entitlements *entsvc.Service
	payments     *paymentsvc.Service
}

func newEngine(t *testing.T, freeLimit int) engine {
	t.Helper()

	dsn := os.Getenv(postgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s is not set", postgresDSNEnv)
	}

	ctx := context.Background()
	pool, err := pgrepo.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pgrepo.Migrate(ctx, pool))

	tx := pgrepo.NewTxManager(pool)
	profileRepo := pgrepo.NewProfileRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	entitlementRepo := pgrepo.NewEntitlementRepo(pool)

	profiles := profilesvc.NewService(profileRepo, profilesvc.Config{})
	likes := likessvc.NewService(likessvc.Dependencies{
		LikeStore:  pgrepo.NewLikeRepo(pool),
		MatchStore: matchRepo,
	})
	entitlements := entsvc.NewService(entitlementRepo, tx, entsvc.Config{FreeInteractionsLimit: freeLimit})

	return engine{
		matchRepo: matchRepo,
		profiles:  profiles,
		swipes: swipesvc.NewService(swipesvc.Dependencies{
			Profiles: profiles,
			Ledger:   entitlements,
			Graph:    likes,
			Tx:       tx,
		}, swipesvc.Config{}),
		matches: matchessvc.NewService(matchessvc.Dependencies{
			MatchStore: matchRepo,
			Profiles:   profiles,
		}),
		entitlements: entitlements,
		payments: paymentsvc.NewService(paymentsvc.Dependencies{
			Receipts:     pgrepo.NewReceiptRepo(pool),
			Entitlements: entitlementRepo,
			Tx:           tx,
			Logger:       zaptest.NewLogger(t),
		}, paymentsvc.Config{FreeInteractionsLimit: freeLimit}),
	}
}

// uniqueOwner keeps runs against a shared database from colliding.
func uniqueOwner(offset int64) int64 {
	return time.Now().UnixNano()/1000 + offset
}

func createProfile(t *testing.T, e engine, ownerID int64, gender, lookingFor string) int64 {
	t.Helper()

	p, err := e.profiles.CreateOrUpdate(context.Background(), ownerID, profilesvc.Input{
		Gender:            gender,
		LookingFor:        lookingFor,
		SexualOrientation: "hetero",
		City:              "Florianopolis",
		Hobbies:           []string{"surf"},
	})
	require.NoError(t, err)
	return p.ID
}

func TestPostgresMutualLikeCreatesSingleMatch(t *testing.T) {
	e := newEngine(t, 10)
	ctx := context.Background()

	aliceOwner, bobOwner := uniqueOwner(1), uniqueOwner(2)
	aliceID := createProfile(t, e, aliceOwner, "female", "male")
	bobID := createProfile(t, e, bobOwner, "male", "female")

	first, err := e.swipes.Like(ctx, aliceOwner, bobID, false)
	require.NoError(t, err)
	require.False(t, first.Matched)
	require.Equal(t, 9, first.Access.InteractionsRemaining)

	second, err := e.swipes.Like(ctx, bobOwner, aliceID, true)
	require.NoError(t, err)
	require.True(t, second.Matched)

	again, err := e.swipes.Like(ctx, aliceOwner, bobID, false)
	require.NoError(t, err)
	require.True(t, again.AlreadyLiked)
	require.Equal(t, 9, again.Access.InteractionsRemaining)

	items, err := e.matches.List(ctx, aliceID, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, bobID, items[0].Profile.ID)
	require.Empty(t, items[0].Profile.SexualOrientation)
}

func TestPostgresQuotaThenApprovedPayment(t *testing.T) {
	e := newEngine(t, 2)
	ctx := context.Background()

	owner := uniqueOwner(3)
	profileID := createProfile(t, e, owner, "male", "any")

	for i := 0; i < 2; i++ {
		res, err := e.entitlements.RecordInteraction(ctx, profileID)
		require.NoError(t, err)
		require.False(t, res.LimitReached)
	}
	res, err := e.entitlements.RecordInteraction(ctx, profileID)
	require.NoError(t, err)
	require.True(t, res.LimitReached)
	require.True(t, res.Access.NeedsPayment)

	receipt, err := e.payments.SubmitReceipt(ctx, profileID, paymentsvc.SubmitInput{
		AmountMinor:       1990,
		ReceiptRef:        "receipts/manual/1",
		PaymentIdentifier: "pix-integration",
	})
	require.NoError(t, err)
	require.Equal(t, enums.ReceiptStatusPending, receipt.Status)

	_, err = e.payments.SubmitReceipt(ctx, profileID, paymentsvc.SubmitInput{
		AmountMinor:       1990,
		ReceiptRef:        "receipts/manual/2",
		PaymentIdentifier: "pix-integration-2",
	})
	require.ErrorIs(t, err, paymentsvc.ErrAlreadyPending)

	review, err := e.payments.Approve(ctx, receipt.ID, 1, 30)
	require.NoError(t, err)
	require.NotNil(t, review.Entitlement)
	require.Equal(t, enums.SubscriptionStatusActive, review.Entitlement.Status)

	_, err = e.payments.Approve(ctx, receipt.ID, 1, 30)
	require.ErrorIs(t, err, paymentsvc.ErrAlreadyReviewed)

	access, err := e.entitlements.CheckAccess(ctx, profileID)
	require.NoError(t, err)
	require.True(t, access.CanInteract)
	require.Equal(t, enums.SubscriptionStatusActive, access.Status)
}

func TestPostgresConcurrentMutualLikesCreateOneMatch(t *testing.T) {
	e := newEngine(t, 100)
	ctx := context.Background()

	for round := int64(0); round < 10; round++ {
		aliceOwner, bobOwner := uniqueOwner(100+2*round), uniqueOwner(101+2*round)
		aliceID := createProfile(t, e, aliceOwner, "female", "male")
		bobID := createProfile(t, e, bobOwner, "male", "female")

		var (
			wg       sync.WaitGroup
			outcomes [2]swipesvc.LikeOutcome
			errs     [2]error
		)
		likes := [2][2]int64{{aliceOwner, bobID}, {bobOwner, aliceID}}
		start := make(chan struct{})
		for i := range likes {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				outcomes[i], errs[i] = e.swipes.Like(ctx, likes[i][0], likes[i][1], false)
			}(i)
		}
		close(start)
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])
		require.NotEqual(t, outcomes[0].Matched, outcomes[1].Matched, "round %d: exactly one like reports the match", round)

		count, err := e.matchRepo.CountForPair(ctx, aliceID, bobID)
		require.NoError(t, err)
		require.Equal(t, 1, count, "round %d", round)

		reverse, err := e.matchRepo.CountForPair(ctx, bobID, aliceID)
		require.NoError(t, err)
		require.Equal(t, count, reverse)
	}
}

func TestPostgresConcurrentInteractionsRespectLimit(t *testing.T) {
	const limit = 5
	e := newEngine(t, limit)
	ctx := context.Background()

	profileID := createProfile(t, e, uniqueOwner(300), "male", "any")
	for i := 0; i < limit-1; i++ {
		res, err := e.entitlements.RecordInteraction(ctx, profileID)
		require.NoError(t, err)
		require.False(t, res.LimitReached)
	}

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
		start   = make(chan struct{})
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := e.entitlements.RecordInteraction(ctx, profileID)
			if err != nil {
				t.Errorf("record interaction: %v", err)
				return
			}
			if !res.LimitReached {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	require.Equal(t, 1, granted)

	access, err := e.entitlements.CheckAccess(ctx, profileID)
	require.NoError(t, err)
	require.False(t, access.CanInteract)
	require.Equal(t, 0, access.InteractionsRemaining)
	require.Equal(t, enums.SubscriptionStatusBlocked, access.Status)
}

func TestPostgresRejectedReceiptReturnsToBlocked(t *testing.T) {
	e := newEngine(t, 1)
	ctx := context.Background()

	profileID := createProfile(t, e, uniqueOwner(400), "female", "any")
	receipt, err := e.payments.SubmitReceipt(ctx, profileID, paymentsvc.SubmitInput{
		AmountMinor:       1990,
		ReceiptRef:        "receipts/manual/rejected",
		PaymentIdentifier: "pix-rejected",
	})
	require.NoError(t, err)

	res, err := e.entitlements.RecordInteraction(ctx, profileID)
	require.NoError(t, err)
	require.False(t, res.LimitReached)
	require.Equal(t, enums.SubscriptionStatusPendingPayment, res.Access.Status)
	require.True(t, res.Access.PaymentPending)

	_, err = e.payments.Reject(ctx, receipt.ID, 1, "amount does not match")
	require.NoError(t, err)

	access, err := e.entitlements.CheckAccess(ctx, profileID)
	require.NoError(t, err)
	require.False(t, access.PaymentPending)
	require.True(t, access.NeedsPayment)
	require.Equal(t, enums.SubscriptionStatusBlocked, access.Status)
}
