package clickhouse_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"solana-token-detector/internal/domain"
	chstore "solana-token-detector/internal/storage/clickhouse"
)

func testEvaluation(mint string, score int, accepted bool) *domain.Evaluation {
	tier := domain.TierHigh
	if accepted {
		tier = domain.TierLow
	}
	return &domain.Evaluation{
		Mint:           mint,
		Symbol:         "TST",
		Score:          score,
		Threshold:      81,
		Tier:           tier,
		Recommendation: tier.Recommendation(),
		Fingerprint:    "fp-" + mint,
		Accepted:       accepted,
		EvaluatedAt:    time.Now().UnixMilli(),
	}
}

func TestEvaluationStore_InsertAndQuery(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := chstore.NewEvaluationStore(conn)

	e := testEvaluation("mint1", 95, true)
	require.NoError(t, store.Insert(ctx, e))

	got, err := store.ByMint(ctx, "mint1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, e.Mint, got[0].Mint)
	require.Equal(t, e.Score, got[0].Score)
	require.Equal(t, e.Threshold, got[0].Threshold)
	require.Equal(t, domain.TierLow, got[0].Tier)
	require.True(t, got[0].Accepted)
}

func TestEvaluationStore_DuplicateInsertAbsorbed(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := chstore.NewEvaluationStore(conn)

	e := testEvaluation("mint1", 40, false)
	require.NoError(t, store.Insert(ctx, e))
	require.NoError(t, store.Insert(ctx, e))

	// FINAL collapses rows with the same deterministic evaluation id
	got, err := store.ByMint(ctx, "mint1")
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestEvaluationStore_InvalidInput(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := chstore.NewEvaluationStore(conn)

	require.Error(t, store.Insert(ctx, nil))
	require.Error(t, store.Insert(ctx, &domain.Evaluation{}))
}
