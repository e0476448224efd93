package provider

import (
	"time"

	"github.com/storefront-next/internal/authz"
	"github.com/storefront-next/internal/cache"
	"github.com/storefront-next/internal/config"
	"github.com/storefront-next/internal/logger"
	"github.com/storefront-next/internal/models"
	"github.com/storefront-next/internal/queue"
	"github.com/storefront-next/internal/repository"
	"github.com/storefront-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo        repository.AdminRepository
	ProductRepo      repository.ProductRepository
	OrderRepo        repository.OrderRepository
	CartSlotRepo     repository.CartSlotRepository
	InboxMessageRepo repository.InboxMessageRepository
	SettingRepo      repository.SettingRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	CaptchaService      *service.CaptchaService
	SettingService      *service.SettingService
	EmailService        *service.EmailService
	NotificationService *service.NotificationService
	NotificationQueue   *service.NotificationQueue
	Analytics           service.AnalyticsPublisher
	ProductService      *service.ProductService
	CartService         *service.CartService
	OrderService        *service.OrderService
	InboxFeed           *service.InboxFeed
	InboxService        *service.InboxService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.CartSlotRepo = repository.NewCartSlotRepository(db)
	c.InboxMessageRepo = repository.NewInboxMessageRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	shopDefaults := service.ShopSettingsFromConfig(c.Config.Shop)
	c.SettingService = service.NewSettingService(c.SettingRepo, shopDefaults)

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.CaptchaService = service.NewCaptchaService(c.Config.Captcha)

	c.EmailService = service.NewEmailService(&c.Config.Email)
	c.NotificationService = service.NewNotificationService(c.EmailService, c.Config.Shop)
	c.NotificationQueue = service.NewNotificationQueue(c.QueueClient, c.NotificationService)
	c.Analytics = service.NewAnalyticsPublisher(c.Config.Analytics)

	c.ProductService = service.NewProductService(c.ProductRepo)
	c.CartService = service.NewCartService(c.buildCartStore(), c.ProductRepo, c.Analytics, shopDefaults.Currency)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.CartService, c.SettingService, c.NotificationQueue, c.Analytics)

	c.InboxFeed = service.NewInboxFeed(cache.Client(), cache.BuildKey(c.Config.Inbox.Channel), c.Config.Inbox.FeedSize)
	c.InboxService = service.NewInboxService(c.InboxMessageRepo, c.InboxFeed)
}

// buildCartStore Redis 可用时使用 Redis 槽位，否则落库
func (c *Container) buildCartStore() service.CartStore {
	if cache.Enabled() {
		ttl := time.Duration(c.Config.Cart.TTLHours) * time.Hour
		return service.NewRedisCartStore(cache.Client(), cache.Prefix(), ttl)
	}
	logger.Infow("provider_cart_store_fallback_db")
	return service.NewDBCartStore(c.CartSlotRepo)
}

// Close 释放容器持有的外部连接
func (c *Container) Close() {
	if c.NotificationQueue != nil {
		c.NotificationQueue.Wait()
	}
	if c.Analytics != nil {
		if err := c.Analytics.Close(); err != nil {
			logger.Warnw("provider_close_analytics_failed", "error", err)
		}
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
