package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"lunaura/bootstrap"
	btsConfig "lunaura/config"
	"lunaura/pkg/app"
	"lunaura/pkg/config"
	"lunaura/routes"
)

// 加载应用程序的基础配置
func init() {
	// 加载 config 目录下的配置信息
	btsConfig.Initialize()
}

// App 应用程序上下文，用于优雅关闭
type App struct {
	server *http.Server
	app    *bootstrap.Application
}

func main() {
	// 解析命令行参数
	env := parseFlags()

	// 初始化应用配置
	application, err := setupApplication(env)
	if err != nil {
		log.Fatalf("初始化应用程序失败: %v", err)
	}

	// 创建并配置 Gin 服务器
	router := setupServer(application.Deps)

	a := &App{
		server: &http.Server{
			Addr:              ":" + config.Get("app.port"),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		app: application,
	}

	// 启动服务器（包含优雅关闭）
	a.start()
}

// parseFlags 解析命令行参数
func parseFlags() string {
	var env string
	flag.StringVar(&env, "env", "", "加载 .env 文件，例如 --env=testing 将加载 .env.testing 文件")
	flag.Parse()
	return env
}

// setupApplication 初始化应用程序所需的各种组件
func setupApplication(env string) (*bootstrap.Application, error) {
	// 先初始化配置
	config.InitConfig(env)

	// 然后初始化日志
	bootstrap.SetupLogger()

	// 初始化数据库
	bootstrap.SetupDB()

	// 初始化 Redis、队列、OpenAI、存储和支付
	return bootstrap.SetupApplication(context.Background())
}

// setupServer 配置并返回 Gin 服务器实例
func setupServer(deps routes.Deps) *gin.Engine {
	if !app.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	bootstrap.SetupRoute(router, deps)
	return router
}

// start 启动服务器并处理优雅关闭
func (a *App) start() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("服务器正在启动，监听端口 %s\n", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待中断信号
	<-quit
	log.Println("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		log.Printf("服务器关闭异常: %v", err)
	}

	// 等待后台任务结束
	a.app.Shutdown()

	log.Println("服务器已成功关闭")
}
