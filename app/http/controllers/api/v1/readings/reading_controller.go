// Package readings 各产品解读记录的 HTTP 接口
package readings

import (
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	"lunaura/app/http/middlewares"
	"lunaura/app/models/reading"
	"lunaura/app/requests"
	"lunaura/pkg/lifecycle"
	"lunaura/pkg/response"
	"lunaura/pkg/storage"
)

// ReadingController 七个产品共用的解读接口，产品由路由决定
type ReadingController struct {
	store        *lifecycle.Store
	guard        *lifecycle.Guard
	intake       *lifecycle.Intake
	unlocker     *lifecycle.Unlocker
	engine       *lifecycle.Engine
	maxFileBytes int64
}

// NewReadingController 创建解读控制器
func NewReadingController(store *lifecycle.Store, intake *lifecycle.Intake, unlocker *lifecycle.Unlocker,
	engine *lifecycle.Engine, maxFileBytes int64) *ReadingController {
	return &ReadingController{
		store:        store,
		guard:        lifecycle.NewGuard(store),
		intake:       intake,
		unlocker:     unlocker,
		engine:       engine,
		maxFileBytes: maxFileBytes,
	}
}

// create 绑定设备后保存新记录
func (rc *ReadingController) create(c *gin.Context, kind string, rec reading.Record) {
	rec.State().DeviceID = middlewares.DeviceID(c)
	if err := rc.store.Create(c.Request.Context(), kind, rec); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

// resolve 读取记录并校验归属，失败时已写入响应
func (rc *ReadingController) resolve(c *gin.Context, kind string) (reading.Record, bool) {
	rec, err := rc.guard.Resolve(c.Request.Context(), kind, c.Param("id"), middlewares.DeviceID(c))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return rec, true
}

// Show 获取解读记录
// GET /api/v1/<product>/:id
func (rc *ReadingController) Show(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, ok := rc.resolve(c, kind)
		if !ok {
			return
		}
		response.Data(c, rec)
	}
}

// Generate 触发生成
// POST /api/v1/<product>/:id/generate
func (rc *ReadingController) Generate(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, ok := rc.resolve(c, kind)
		if !ok {
			return
		}
		rec, err := rc.engine.Generate(c.Request.Context(), kind, rec)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Data(c, rec)
	}
}

// Rate 评分
// POST /api/v1/<product>/:id/rate
func (rc *ReadingController) Rate(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := requests.RateRequest{}
		if ok := requests.Validate(c, &request, requests.Rate); !ok {
			return
		}
		rec, ok := rc.resolve(c, kind)
		if !ok {
			return
		}
		rec, err := rc.engine.Rate(c.Request.Context(), kind, rec, request.Rating)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Data(c, rec)
	}
}

// MarkPaid 旧版直接解锁，只接受测试单号
// POST /api/v1/<product>/:id/mark-paid
func (rc *ReadingController) MarkPaid(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		request := requests.MarkPaidRequest{}
		if ok := requests.Validate(c, &request, requests.MarkPaid); !ok {
			return
		}
		rec, ok := rc.resolve(c, kind)
		if !ok {
			return
		}
		rec, err := rc.unlocker.MarkPaid(c.Request.Context(), kind, rec.State().ID, request.Ref())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Data(c, rec)
	}
}

// UploadImages 上传并校验图片，表单字段 files
// POST /api/v1/<product>/:id/upload-images
func (rc *ReadingController) UploadImages(kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, ok := rc.resolve(c, kind)
		if !ok {
			return
		}
		form, err := c.MultipartForm()
		if err != nil {
			response.BadRequest(c, err, "Multipart form with files is required")
			return
		}
		files, err := rc.readFiles(form.File["files"])
		if err != nil {
			response.Error(c, err)
			return
		}

		paths, err := rc.intake.Submit(c.Request.Context(), kind, rec, files)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Data(c, gin.H{
			"id":     rec.State().ID,
			"status": rec.State().Status,
			"images": paths,
		})
	}
}

func (rc *ReadingController) readFiles(headers []*multipart.FileHeader) ([]storage.File, error) {
	files := make([]storage.File, 0, len(headers))
	for _, fh := range headers {
		if rc.maxFileBytes > 0 && fh.Size > rc.maxFileBytes {
			return nil, lifecycle.E(lifecycle.InvalidInput, "Uploaded file is too large")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, lifecycle.Wrap(lifecycle.InvalidInput, err, "Uploaded file could not be read")
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, lifecycle.Wrap(lifecycle.InvalidInput, err, "Uploaded file could not be read")
		}
		files = append(files, storage.File{Name: fh.Filename, Data: data})
	}
	return files, nil
}
