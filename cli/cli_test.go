package cli

import (
	"bytes"
	"context"
	"net"
	"os"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/istore/storefront/common"
	"github.com/istore/storefront/config"
	"github.com/istore/storefront/notify"
	"github.com/istore/storefront/store/memory"
	"github.com/istore/storefront/storefront"
)

func TestLoadSeed_parsesProducts(t *testing.T) {
	f, err := os.Open("testdata/products.yaml")
	require.NoError(t, err)
	defer f.Close()

	products, err := LoadSeed(f)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "CUP-90", products[0].Code)
	assert.True(t, decimal.RequireFromString("6.5").Equal(products[0].Price))
	assert.True(t, products[0].Status)

	assert.Equal(t, "lamp-1", products[1].ID)
	assert.False(t, products[1].Status)
	assert.Equal(t, "seller-1", products[1].Owner)
	assert.Equal(t, []string{"lamp-front.png"}, products[1].Thumbnails)
}

func TestLoadSeed_rejectsBadPrice(t *testing.T) {
	_, err := LoadSeed(strings.NewReader("products:\n  - code: X\n    price: cheap\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid price")
}

func TestLoadSeed_rejectsUnknownFields(t *testing.T) {
	_, err := LoadSeed(strings.NewReader("products:\n  - code: X\n    colour: red\n"))
	require.Error(t, err)
}

func TestLoadSeed_emptyFile(t *testing.T) {
	products, err := LoadSeed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestRunSeed_createsAndSkipsDuplicates(t *testing.T) {
	store, err := memory.New()
	require.NoError(t, err)
	srv := storefront.NewServer(storefront.Deps{
		Products: store.Products(),
		Carts:    store.Carts(),
		Tickets:  store.Tickets(),
	})

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = common.Serve(ctx, zap.NewNop(), lis, common.ServerConfig{Name: "seed-test"}, func(s *grpc.Server) {
			storefront.RegisterStorefrontServer(s, srv)
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	opts := &SeedOptions{RootOptions: &RootOptions{}, Addr: lis.Addr().String(), ActorID: "admin", Role: "admin"}
	var out bytes.Buffer
	require.NoError(t, runSeed(context.Background(), opts, "testdata/products.yaml", &out))
	assert.Contains(t, out.String(), "created 2 products, skipped 0")

	out.Reset()
	require.NoError(t, runSeed(context.Background(), opts, "testdata/products.yaml", &out))
	assert.Contains(t, out.String(), "created 0 products, skipped 2")

	lamp, err := store.Products().Get(context.Background(), "lamp-1")
	require.NoError(t, err)
	assert.Equal(t, 5, lamp.Stock)
}

func TestNewLogger_rejectsUnknownLevel(t *testing.T) {
	_, err := newLogger("loud")
	require.Error(t, err)

	logger, err := newLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestNotificationSink_fallsBackToMailer(t *testing.T) {
	cfg := config.Default()
	sink, closeSink := notificationSink(cfg, zap.NewNop())
	defer closeSink()
	assert.IsType(t, &notify.Mailer{}, sink)
}

func TestNotificationSink_usesKafkaWhenBrokersSet(t *testing.T) {
	cfg := config.Default()
	cfg.Kafka.Brokers = "localhost:9092"
	sink, closeSink := notificationSink(cfg, zap.NewNop())
	defer closeSink()
	assert.IsType(t, &notify.Publisher{}, sink)
}

func TestRootCommand_listsSubcommands(t *testing.T) {
	root := NewRootCommand()
	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "notifier", "seed"})
}
