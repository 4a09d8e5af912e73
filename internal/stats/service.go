package stats

import (
	"context"
	"time"

	"boutique-be/internal/apperr"
	"boutique-be/internal/logger"
	"boutique-be/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	topProductsLimit  = 3
	recentOrdersLimit = 5
)

type Service interface {
	Dashboard(ctx context.Context, rangeParam string) (*Dashboard, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

// Dashboard runs the reads concurrently; the first failure cancels the rest.
func (s *service) Dashboard(ctx context.Context, rangeParam string) (*Dashboard, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Dashboard"),
	)
	timer := metrics.StartTimer()

	rng := ParseRange(rangeParam)
	d := &Dashboard{Range: rng, Since: rng.Since(s.now())}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		d.TotalRevenue, err = s.repo.TotalRevenue(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalOrders, err = s.repo.CountOrders(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalProducts, err = s.repo.CountProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.TotalCustomers, err = s.repo.CountCustomers(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.NewCustomers, err = s.repo.CountNewCustomers(gctx, d.Since)
		return err
	})
	g.Go(func() (err error) {
		d.TopProducts, err = s.repo.TopProducts(gctx, d.Since, topProductsLimit)
		return err
	})
	g.Go(func() (err error) {
		d.RecentOrders, err = s.repo.RecentOrders(gctx, recentOrdersLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error("dashboard aggregation failed", zap.String("range", string(rng)), zap.Error(err))
		return nil, apperr.Wrap(apperr.ErrInternal, err)
	}

	if d.TopProducts == nil {
		d.TopProducts = []TopProduct{}
	}
	if d.RecentOrders == nil {
		d.RecentOrders = []RecentOrder{}
	}

	log.Debug("dashboard computed",
		zap.String("range", string(rng)),
		zap.Duration("duration", timer.Duration()),
	)
	return d, nil
}
