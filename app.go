package main

import (
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	"shop/pkg/domain/model"
	"shop/pkg/domain/service"
	"shop/pkg/infrastructure/catalog"
	"shop/pkg/infrastructure/event"
	"shop/pkg/infrastructure/gateway"
	"shop/pkg/infrastructure/memory"
	"shop/pkg/infrastructure/metrics"
	"shop/pkg/infrastructure/mysql"
	"shop/pkg/infrastructure/notify"
	"shop/pkg/infrastructure/password"
	"shop/transport"
)

type repositories struct {
	users    model.UserRepository
	products model.ProductRepository
	orders   model.OrderRepository
	payments model.PaymentRepository
	reviews  model.ReviewRepository

	notifications model.NotificationRepository
}

type app struct {
	services transport.Services
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	db       *sqlx.DB
}

func newApp(c *config) (*app, error) {
	policy, err := service.ParseTransitionPolicy(c.TransitionPolicy)
	if err != nil {
		return nil, err
	}

	a := &app{registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)

	repos, err := a.openRepositories(c)
	if err != nil {
		return nil, err
	}

	observers := event.Multi{
		event.NewLogDispatcher(log.WithField("component", "events")),
		a.metrics,
	}
	notifications := service.NewNotificationService(
		repos.notifications,
		repos.users,
		notify.NewLogSender(log.WithField("component", "notifications")),
		observers,
	)
	dispatcher := event.Multi{observers, service.NewNotifier(notifications)}

	seed := c.PaymentSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	paymentGateway := gateway.NewBreaker(
		gateway.NewRandom(c.PaymentSuccessRate, seed),
		gateway.BreakerSettings{
			Name:         "payment-gateway",
			MaxRequests:  c.BreakerMaxRequests,
			Interval:     c.BreakerInterval,
			Timeout:      c.BreakerTimeout,
			MinRequests:  c.BreakerMinRequests,
			FailureRatio: c.BreakerFailureRatio,
		},
		a.metrics,
	)

	orderLocks := service.NewKeyedMutex()
	productLocks := service.NewKeyedMutex()
	ledger := service.NewInventoryLedger(repos.products, productLocks, dispatcher)

	a.services = transport.Services{
		Users:    service.NewUserService(repos.users, password.NewBcryptManager(0), dispatcher),
		Products: service.NewProductService(repos.products, ledger, productLocks, dispatcher),
		Orders: service.NewOrderService(repos.orders, repos.users, ledger, orderLocks, dispatcher,
			service.WithTransitionPolicy(policy)),
		Payments: service.NewPaymentService(repos.payments, repos.orders, paymentGateway, orderLocks, dispatcher),
		Reviews:  service.NewReviewService(repos.reviews, repos.products, repos.users, productLocks, dispatcher),

		Notifications: notifications,
	}

	if c.CatalogSeedFile != "" {
		seedCatalog, err := catalog.Load(c.CatalogSeedFile)
		if err != nil {
			a.close()
			return nil, err
		}
		if _, err := catalog.Apply(a.services.Products, seedCatalog); err != nil {
			a.close()
			return nil, err
		}
	}
	return a, nil
}

func (a *app) openRepositories(c *config) (repositories, error) {
	if c.StoreDriver != "mysql" {
		log.Info("using in-memory store")
		return repositories{
			users:    memory.NewUserRepository(),
			products: memory.NewProductRepository(),
			orders:   memory.NewOrderRepository(),
			payments: memory.NewPaymentRepository(),
			reviews:  memory.NewReviewRepository(),

			notifications: memory.NewNotificationRepository(),
		}, nil
	}

	db, err := mysql.Open(c.MySQLDSN)
	if err != nil {
		return repositories{}, err
	}
	if c.MigrateOnStart {
		if err := mysql.Migrate(db, false); err != nil {
			_ = db.Close()
			return repositories{}, err
		}
	}
	a.db = db
	log.Info("using mysql store")
	return repositories{
		users:    mysql.NewUserRepository(db),
		products: mysql.NewProductRepository(db),
		orders:   mysql.NewOrderRepository(db),
		payments: mysql.NewPaymentRepository(db),
		reviews:  mysql.NewReviewRepository(db),

		notifications: mysql.NewNotificationRepository(db),
	}, nil
}

func (a *app) close() {
	if a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		log.WithError(err).Error("failed to close database")
	}
}
