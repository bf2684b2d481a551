package bootstrap

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"lunaura/app/http/controllers/api/v1/health"
	"lunaura/app/repositories"
	"lunaura/pkg/config"
	"lunaura/pkg/database"
	"lunaura/pkg/lifecycle"
	"lunaura/pkg/limiter"
	"lunaura/pkg/logger"
	"lunaura/pkg/openai"
	"lunaura/pkg/payment"
	"lunaura/pkg/queue"
	"lunaura/pkg/redis"
	"lunaura/routes"
)

// Application 运行期组件，关闭时按相反顺序释放
type Application struct {
	Deps    routes.Deps
	worker  *queue.Worker
	sweeper *lifecycle.Sweeper
}

// SetupApplication 组装解读流程、支付和后台任务
// 需在 SetupDB 之后调用；Redis 不可用时队列降级为进程内异步执行
func SetupApplication(ctx context.Context) (*Application, error) {
	redisReady := SetupRedis() == nil

	client, err := SetupOpenAI()
	if err != nil {
		return nil, err
	}
	files, err := SetupStorage()
	if err != nil {
		return nil, errors.Wrap(err, "setup storage")
	}

	db := database.DB
	store := lifecycle.NewStore(db, lifecycle.DefaultProducts(
		config.GetInt("upload.min_photos"), config.GetInt("upload.max_photos")))
	validator := openai.NewImageValidator(client, files)
	staleAfter := time.Duration(config.GetInt("cron.stale_seconds")) * time.Second
	taskTimeout := time.Duration(config.GetInt("queue.task_timeout")) * time.Second
	if err := lifecycle.CheckTimeouts(taskTimeout, staleAfter); err != nil {
		return nil, errors.Wrap(err, "queue.task_timeout / cron.stale_seconds")
	}
	engine := lifecycle.NewEngine(store, validator, openai.NewWriter(client, files),
		lifecycle.WithStaleAfter(staleAfter), lifecycle.WithTaskTimeout(taskTimeout))
	unlocker := lifecycle.NewUnlocker(store)

	app := &Application{}
	app.setupDispatcher(engine, redisReady, taskTimeout)

	app.sweeper = lifecycle.NewSweeper(store, engine.StaleAfter())
	if err := app.sweeper.Start(config.GetString("cron.sweep_schedule")); err != nil {
		return nil, errors.Wrap(err, "start sweeper")
	}

	paymentRepo := repositories.NewPaymentRepository(db)
	payments := payment.NewService(payment.NewLedger(paymentRepo, unlocker), unlocker, SetupVerifiers(ctx))

	checks := map[string]health.Checker{
		"database": func(context.Context) error { return database.Ping() },
		"redis":    nil,
	}
	var verifyLimit *limiter.Limiter
	if redisReady {
		checks["redis"] = redis.Ping
		verifyLimit, err = limiter.New(redis.GetRedis(redis.MainDB).Client, "lunaura:limit", config.GetString("app.verify_rate_limit"))
		if err != nil {
			logger.ErrorString("Limiter", "Setup", "支付校验限流初始化失败："+err.Error())
		}
	}

	app.Deps = routes.Deps{
		Store:        store,
		Intake:       lifecycle.NewIntake(store, files, validator),
		Unlocker:     unlocker,
		Engine:       engine,
		Payments:     payments,
		PaymentRepo:  paymentRepo,
		Profiles:     repositories.NewProfileRepository(db),
		Consents:     repositories.NewConsentRepository(db),
		Health:       checks,
		VerifyLimit:  verifyLimit,
		GlobalLimit:  config.GetString("app.api_rate_limit"),
		CorsOrigins:  splitList(config.GetString("app.cors_origins")),
		AdminToken:   config.GetString("app.admin_token"),
		MaxFileBytes: int64(config.GetInt("upload.max_file_mb")) << 20,
	}
	return app, nil
}

// setupDispatcher 按 queue.driver 选择投递方式：redis、memory 或 sync
func (a *Application) setupDispatcher(engine *lifecycle.Engine, redisReady bool, taskTimeout time.Duration) {
	driver := config.GetString("queue.driver")

	if driver == "redis" && !redisReady {
		logger.WarnString("Queue", "Setup", "Redis 不可用，生成任务改为进程内异步执行")
		driver = "memory"
	}

	switch driver {
	case "redis":
		qs := queue.NewQueueService(redis.GetRedis(redis.QueueDB).Client, queue.Options{
			Prefix:    config.GetString("redis.queue_prefix"),
			Timeout:   time.Duration(config.GetInt("redis.queue_timeout")) * time.Second,
			RateLimit: config.GetInt("queue.rate_limit"),
			RateBurst: config.GetInt("queue.rate_burst"),
		})
		a.worker = queue.NewWorker(qs, engine, queue.WorkerConfig{
			WorkerCount: config.GetInt("queue.worker_count"),
			TaskTimeout: taskTimeout,
		})
		engine.SetDispatcher(qs)
		go a.worker.Start()
		logger.InfoString("Queue", "Setup", "队列服务启动成功")
	case "sync":
		engine.SetDispatcher(lifecycle.NewInlineDispatcher(engine))
		logger.InfoString("Queue", "Setup", "生成任务同步执行")
	default:
		engine.SetDispatcher(lifecycle.NewAsyncDispatcher(engine, taskTimeout))
		logger.InfoString("Queue", "Setup", "生成任务进程内异步执行")
	}
}

// Shutdown 停止后台任务并关闭连接
func (a *Application) Shutdown() {
	if a.worker != nil {
		a.worker.Stop()
	}
	if a.sweeper != nil {
		a.sweeper.Stop()
	}
	redis.Close()
}
