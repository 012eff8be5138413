package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/mkovacev/liftwatch/internal/cache"
	"github.com/mkovacev/liftwatch/internal/config"
	"github.com/mkovacev/liftwatch/internal/db"
	"github.com/mkovacev/liftwatch/internal/notifications"
	"github.com/mkovacev/liftwatch/internal/telemetry/metrics"
	"github.com/mkovacev/liftwatch/internal/telemetry/tracing"
	"github.com/mkovacev/liftwatch/internal/training"
	"github.com/mkovacev/liftwatch/internal/training/readiness"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"
)

// Notifier wires the analyzers, the notification service and the cache
// together and runs the periodic refresh over all active users.
type Notifier struct {
	config       *config.Config
	dbPool       *pgxpool.Pool
	redisClient  *redis.Client
	trainingRepo *training.Repo
	service      *notifications.Service

	httpServer *http.Server

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewNotifierParams struct {
	Config                  *config.Config
	DBPassword              string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewNotifier(ctx context.Context, params NewNotifierParams) (*Notifier, error) {
	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		DBUser:         params.Config.PostgresUser,
		DBPassword:     params.DBPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": "liftwatch_db"},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("liftwatch", "notifier", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "liftwatch-notifier", rdb)
	if err != nil {
		return nil, err
	}

	trainingRepo := training.NewRepo(dbPool)
	service := notifications.NewService(
		notifications.NewRepo(dbPool),
		notifications.NewPrefsRepo(dbPool),
		trainingRepo,
		readiness.NewChecker(trainingRepo),
		cache.NewAnalytics(rdb, metricsManager),
		metricsManager,
	)

	return &Notifier{
		config:       params.Config,
		dbPool:       dbPool,
		redisClient:  rdb,
		trainingRepo: trainingRepo,
		service:      service,

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (n *Notifier) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("notifier-router"))

	r.Handle("/metrics", promhttp.HandlerFor(
		n.promRegistry,
		promhttp.HandlerOpts{},
	))
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")

	return r
}

func (n *Notifier) Serve(ctx context.Context, host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	n.httpServer = &http.Server{
		Handler:      n.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
	}

	go func() {
		log.Infof(" > notifier listening on: [%s]", ipAndPort)
		err := n.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("notifier, listen and serve: %s", err)
		}
	}()

	go n.refreshLoop(ctx)

	n.metricsManager.GaugeLifeSignal.Set(1)
}

func (n *Notifier) refreshLoop(ctx context.Context) {
	interval := n.config.RefreshInterval()
	log.Debugf("refreshing notifications every %s", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := n.RefreshAllUsers(ctx); err != nil {
		log.Errorf("notifications refresh: %s", err)
	}
	for {
		select {
		case <-ctx.Done():
			log.Debugln("refresh loop stopping ...")
			return
		case <-ticker.C:
			if err := n.RefreshAllUsers(ctx); err != nil {
				log.Errorf("notifications refresh: %s", err)
			}
		}
	}
}

// RefreshAllUsers runs one refresh pass over every recently active user.
// One user's failure never aborts the others; the errors are collected
// and returned together.
func (n *Notifier) RefreshAllUsers(ctx context.Context) error {
	since := time.Now().Add(-n.config.ActiveUserWindow())
	userIDs, err := n.trainingRepo.ListActiveUserIDs(ctx, since)
	if err != nil {
		return fmt.Errorf("list active users: %w", err)
	}
	log.Debugf("refreshing notifications for %d active users", len(userIDs))

	var refreshErrs error
	for _, userID := range userIDs {
		if _, err := n.service.Refresh(ctx, userID); err != nil {
			n.metricsManager.CounterRefreshErrors.Inc()
			log.Errorf("refresh user %d: %s", userID, err)
			refreshErrs = multierr.Append(refreshErrs, fmt.Errorf("user %d: %w", userID, err))
		}
	}
	return refreshErrs
}

func (n *Notifier) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	n.metricsManager.GaugeLifeSignal.Set(0)

	n.otelShutdown()
	log.Trace("otel shut down ...")

	if n.redisClient != nil {
		if err := n.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if n.dbPool != nil {
		log.Debugln("closing db pool ...")
		n.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if n.httpServer != nil {
		if err := n.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
	}
	log.Warnln("notifier shut down")
}
