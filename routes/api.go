// Package routes 注册路由
package routes

import (
	"github.com/gin-gonic/gin"

	"lunaura/app/http/controllers/api/v1/admin"
	"lunaura/app/http/controllers/api/v1/health"
	"lunaura/app/http/controllers/api/v1/legal"
	paymentController "lunaura/app/http/controllers/api/v1/payment"
	"lunaura/app/http/controllers/api/v1/profile"
	"lunaura/app/http/controllers/api/v1/readings"
	"lunaura/app/http/middlewares"
	"lunaura/app/repositories"
	"lunaura/pkg/lifecycle"
	"lunaura/pkg/limiter"
	"lunaura/pkg/metrics"
	"lunaura/pkg/payment"
)

// 路由限流配置
const (
	// 🖼 上传图片：每小时每IP 60 次
	UploadLimit = "60-H"
	// ✨ 触发生成：每分钟每IP 30 次
	GenerateLimit = "30-M"
)

// Deps 路由依赖的服务
type Deps struct {
	Store        *lifecycle.Store
	Intake       *lifecycle.Intake
	Unlocker     *lifecycle.Unlocker
	Engine       *lifecycle.Engine
	Payments     *payment.Service
	PaymentRepo  *repositories.PaymentRepository
	Profiles     *repositories.ProfileRepository
	Consents     *repositories.ConsentRepository
	Health       map[string]health.Checker
	VerifyLimit  *limiter.Limiter
	GlobalLimit  string
	CorsOrigins  []string
	AdminToken   string
	MaxFileBytes int64
}

// RegisterAPIRoutes 注册所有 API 路由
func RegisterAPIRoutes(r *gin.Engine, d Deps) {
	hc := health.NewHealthController(d.Health)
	r.GET("/health", hc.Check)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(
		middlewares.SecurityHeaders(),
		middlewares.Cors(d.CorsOrigins),
		middlewares.LimitIP(d.GlobalLimit),
	)

	rc := readings.NewReadingController(d.Store, d.Intake, d.Unlocker, d.Engine, d.MaxFileBytes)
	device := v1.Group("", middlewares.RequireDevice())
	{
		starts := map[string]gin.HandlerFunc{
			lifecycle.Coffee:      rc.StartCoffee,
			lifecycle.Hand:        rc.StartHand,
			lifecycle.Tarot:       rc.StartTarot,
			lifecycle.Numerology:  rc.StartNumerology,
			lifecycle.Birthchart:  rc.StartBirthchart,
			lifecycle.Personality: rc.StartPersonality,
			lifecycle.Synastry:    rc.StartSynastry,
		}
		for _, kind := range d.Store.Kinds() {
			g := device.Group("/" + kind)
			// 📝 创建解读 POST /api/v1/<product>/start
			g.POST("/start", starts[kind])
			// 📊 查询解读 GET /api/v1/<product>/:id
			g.GET("/:id", rc.Show(kind))
			// 🧪 旧版测试解锁 POST /api/v1/<product>/:id/mark-paid
			g.POST("/:id/mark-paid", rc.MarkPaid(kind))
			// ✨ 触发生成 POST /api/v1/<product>/:id/generate
			g.POST("/:id/generate", middlewares.LimitIP(GenerateLimit), rc.Generate(kind))
			// ⭐ 评分 POST /api/v1/<product>/:id/rate
			g.POST("/:id/rate", rc.Rate(kind))

			if kind == lifecycle.Coffee || kind == lifecycle.Hand {
				g.POST("/:id/upload-images", middlewares.LimitIP(UploadLimit), rc.UploadImages(kind))
			}
			if kind == lifecycle.Tarot {
				g.POST("/:id/select-cards", rc.SelectCards)
			}
		}

		pc := paymentController.NewPaymentController(d.Payments, d.Store)
		payments := device.Group("/payments")
		payments.POST("/start", pc.Start)
		payments.POST("/intent", pc.CreateIntent)
		payments.POST("/verify", middlewares.LimitDevice(d.VerifyLimit), pc.Verify)
		payments.GET("/:id", pc.Show)

		prc := profile.NewProfileController(d.Profiles, d.Store)
		profiles := device.Group("/profile")
		profiles.GET("/me", prc.Me)
		profiles.POST("/me", prc.Update)
		profiles.GET("/summary", prc.Summary)
		profiles.GET("/history", prc.History)

		cc := legal.NewConsentController(d.Consents)
		device.POST("/legal/consent", cc.Store)
		device.GET("/legal/consent/status", cc.Status)
	}

	sc := admin.NewStatsController(d.Store, d.PaymentRepo)
	v1.GET("/admin/db-stats", middlewares.RequireAdminToken(d.AdminToken), sc.DBStats)
}
