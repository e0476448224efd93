package worker

import (
	"context"
	"errors"
	"time"

	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"

	"github.com/hibiken/asynq"
)

const cartSlotSweepInterval = time.Hour

// Service 通知队列消费服务，购物车落库时顺带清理过期槽位
type Service struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	sweeper *cartSlotSweeper
}

// NewService 创建通知队列消费服务，队列未启用时返回错误
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	svc := &Service{server: asynq.NewServer(opt, serverCfg), mux: mux}
	// Redis 槽位依赖 TTL 过期，无需清理
	if !cache.Enabled() && consumer.Container != nil && consumer.Config != nil {
		svc.sweeper = newCartSlotSweeper(consumer.CartSlotRepo, consumer.Config.Cart.TTLHours)
	}
	return svc, nil
}

// Name 服务名称
func (s *Service) Name() string { return "worker" }

// Start 启动消费并阻塞到 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	if s.sweeper != nil {
		go s.sweeper.run(ctx, cartSlotSweepInterval)
	}
	<-ctx.Done()
	return nil
}

// Stop 等待进行中的任务处理完毕后退出
func (s *Service) Stop(context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}

type cartSlotSweeper struct {
	repo repository.CartSlotRepository
	ttl  time.Duration
	now  func() time.Time
}

func newCartSlotSweeper(repo repository.CartSlotRepository, ttlHours int) *cartSlotSweeper {
	if repo == nil || ttlHours <= 0 {
		return nil
	}
	return &cartSlotSweeper{repo: repo, ttl: time.Duration(ttlHours) * time.Hour, now: time.Now}
}

// sweep 删除超过 TTL 未更新的槽位
func (w *cartSlotSweeper) sweep() (int64, error) {
	return w.repo.DeleteUpdatedBefore(w.now().Add(-w.ttl))
}

func (w *cartSlotSweeper) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		removed, err := w.sweep()
		switch {
		case err != nil:
			logger.Warnw("worker_cart_slot_sweep_failed", "error", err)
		case removed > 0:
			logger.Infow("worker_cart_slot_sweep_done", "removed", removed)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
