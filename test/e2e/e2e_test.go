// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qris-workers/internal/common/config"
	"qris-workers/internal/common/database"
	"qris-workers/internal/common/logger"
	"qris-workers/internal/qris"

	indexpaymentcode "qris-workers/internal/workers/data-access/index-payment-code"
	generateqris "qris-workers/internal/workers/payment/generate-qris"
	updatepaymentstatus "qris-workers/internal/workers/payment/update-payment-status"
	verifyqris "qris-workers/internal/workers/payment/verify-qris"
)

// The suite needs Postgres, Redis and Elasticsearch from configs/config.yaml,
// with ZEEBE_ADDRESS and DB_USER set so the config validates.
// Run it with E2E=1 go test ./test/e2e/...
func TestMain(m *testing.M) {
	if os.Getenv("E2E") != "1" {
		fmt.Println("skipping e2e tests: set E2E=1 to run against live services")
		os.Exit(0)
	}
	os.Exit(m.Run())
}

type services struct {
	cfg   *config.Config
	gen   *qris.Generator
	pg    *database.PostgresClient
	redis *database.RedisClient
	es    *database.ElasticsearchClient
}

func connect(t *testing.T) *services {
	t.Helper()
	ctx := context.Background()

	cfg, err := config.Load()
	require.NoError(t, err, "config")

	gen, err := qris.NewGenerator(cfg.QRIS.BaseTemplate)
	require.NoError(t, err)

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	require.NoError(t, err)
	require.NoError(t, pg.Ping(ctx), "postgres")
	require.NoError(t, pg.EnsureSchema(ctx))
	t.Cleanup(func() { _ = pg.Close() })

	rdb, err := database.NewRedis(cfg.Database.Redis)
	require.NoError(t, err)
	require.NoError(t, rdb.Ping(ctx), "redis")
	t.Cleanup(func() { _ = rdb.Close() })

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
	require.NoError(t, err)
	require.NoError(t, es.Ping(ctx), "elasticsearch")
	require.NoError(t, es.EnsureIndex(ctx, cfg.Search.PaymentIndex))

	return &services{cfg: cfg, gen: gen, pg: pg, redis: rdb, es: es}
}

func TestPaymentCodeLifecycle(t *testing.T) {
	s := connect(t)
	log := logger.NewTestLogger(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	orderID := fmt.Sprintf("E2E-%d", time.Now().UnixNano())
	const amount = int64(150000)
	t.Cleanup(func() {
		_, _ = s.pg.DB.Exec("DELETE FROM payment_codes WHERE order_id = $1", orderID)
	})

	generate, err := generateqris.NewHandler(generateqris.LoadConfig(), s.gen, s.pg.DB, s.redis.Client, log)
	require.NoError(t, err)

	first, err := generate.Execute(ctx, &generateqris.Input{OrderID: orderID, Amount: amount})
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.True(t, qris.ValidateChecksum(first.QRISString))

	second, err := generate.Execute(ctx, &generateqris.Input{OrderID: orderID, Amount: amount})
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.QRISString, second.QRISString)

	verify, err := verifyqris.NewHandler(verifyqris.LoadConfig(), log)
	require.NoError(t, err)
	expected := amount
	verdict, err := verify.Execute(ctx, &verifyqris.Input{QRISString: first.QRISString, ExpectedAmount: &expected})
	require.NoError(t, err)
	assert.True(t, verdict.Valid, verdict.ReasonDetail)

	idxCfg := indexpaymentcode.LoadConfig()
	idxCfg.Index = s.cfg.Search.PaymentIndex
	idxCfg.Refresh = "true"
	indexed, err := indexpaymentcode.NewHandler(idxCfg, s.es.Client, log).Execute(ctx, &indexpaymentcode.Input{
		OrderID:    orderID,
		Amount:     amount,
		QRISString: first.QRISString,
		Checksum:   first.Checksum,
	})
	require.NoError(t, err)
	assert.Equal(t, "created", indexed.Result)

	updated, err := updatepaymentstatus.NewHandler(updatepaymentstatus.LoadConfig(), s.pg.DB, s.redis.Client, log).
		Execute(ctx, &updatepaymentstatus.Input{OrderID: orderID, Status: "paid", ConfirmedBy: "e2e"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.CacheKeysRemoved)

	var status string
	require.NoError(t, s.pg.DB.QueryRowContext(ctx,
		"SELECT payment_status FROM payment_codes WHERE order_id = $1", orderID).Scan(&status))
	assert.Equal(t, "paid", status)
}

func BenchmarkGenerator_Generate(b *testing.B) {
	gen, err := qris.NewGenerator("00020101021126670016COM.NOBUBANK.WWW01189360050300000879140214353153527368570303UMI51440014ID.CO.QRIS.WWW0215ID20232679645180303UMI5204481253033605802ID5920MEFZ STORE OK11724136006BEKASI61051711162070703A016304DE60")
	require.NoError(b, err)

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := gen.Generate(int64(i)); err != nil {
			b.Fatal(err)
		}
	}
}
