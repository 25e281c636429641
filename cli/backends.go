package cli

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/istore/storefront/config"
	"github.com/istore/storefront/domain"
	"github.com/istore/storefront/store/memory"
	"github.com/istore/storefront/store/mongo"
	"github.com/istore/storefront/store/sqlite"
)

// backends are the stores selected by configuration.
type backends struct {
	products domain.ProductStore
	carts    domain.CartStore
	tickets  domain.TicketStore
	closers  []func(context.Context) error
}

func openBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*backends, error) {
	b := &backends{}
	switch cfg.Store.Driver {
	case config.DriverMongo:
		st, err := mongo.Open(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			return nil, err
		}
		b.products, b.carts, b.tickets = st.Products(), st.Carts(), st.Tickets()
		b.closers = append(b.closers, st.Close)
	default:
		st, err := memory.New()
		if err != nil {
			return nil, err
		}
		b.products, b.carts, b.tickets = st.Products(), st.Carts(), st.Tickets()
	}
	logger.Info("store opened", zap.String("driver", cfg.Store.Driver))

	if cfg.Tickets.Driver == config.DriverSQLite {
		ledger, err := sqlite.Open(cfg.Tickets.SQLitePath)
		if err != nil {
			_ = b.Close(ctx)
			return nil, err
		}
		b.tickets = ledger
		b.closers = append(b.closers, func(context.Context) error { return ledger.Close() })
		logger.Info("ticket ledger opened", zap.String("path", cfg.Tickets.SQLitePath))
	}
	return b, nil
}

// Close releases every backend, newest first.
func (b *backends) Close(ctx context.Context) error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i](ctx))
	}
	return errors.Join(errs...)
}
