package lifecycle

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"lunaura/app/models/reading"
	"lunaura/pkg/logger"
	"lunaura/pkg/openai"
	"lunaura/pkg/storage"
)

// 小于该字节数的文件视为无效
const minFileBytes = 100

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Validator 图片校验
type Validator interface {
	Validate(ctx context.Context, kind string, paths []string) (openai.Verdict, error)
}

// Intake 图片上传
type Intake struct {
	store     *Store
	files     storage.Store
	validator Validator
}

// NewIntake 创建 Intake
func NewIntake(store *Store, files storage.Store, validator Validator) *Intake {
	return &Intake{
		store:     store,
		files:     files,
		validator: validator,
	}
}

// Submit 保存图片、校验并写入记录，返回保存后的路径
func (in *Intake) Submit(ctx context.Context, kind string, rec reading.Record, files []storage.File) ([]string, error) {
	p, repo, err := in.store.Product(kind)
	if err != nil {
		return nil, err
	}
	if p.Precondition != NeedsAssets {
		return nil, E(InvalidInput, "This product does not accept photos")
	}
	st := rec.State()
	if st.HasResult() {
		return nil, E(PreconditionFailed, "Reading already completed")
	}
	if len(files) < p.MinAssets || len(files) > p.MaxAssets {
		return nil, E(InvalidInput, fmt.Sprintf("Please upload %d-%d photos", p.MinAssets, p.MaxAssets))
	}
	for _, f := range files {
		if len(f.Data) < minFileBytes {
			return nil, E(InvalidInput, "Uploaded file is empty or too small")
		}
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		key := assetKey(st.ID, f.Name)
		if err := in.files.Put(ctx, key, f.Data); err != nil {
			in.discard(ctx, paths)
			logger.ErrorString("Lifecycle", "Intake", fmt.Sprintf("保存图片失败 %s/%s: %v", kind, st.ID, err))
			return nil, Wrap(ServiceUnavailable, err, "Photo storage is temporarily unavailable, please try again")
		}
		paths = append(paths, key)
	}

	verdict, err := in.validator.Validate(ctx, kind, paths)
	if err != nil {
		// 文件保留，客户端可以稍后重试
		logger.WarnString("Lifecycle", "Intake", fmt.Sprintf("图片校验服务不可用 %s/%s: %v", kind, st.ID, err))
		return nil, Wrap(ServiceUnavailable, err, "Image validation is temporarily unavailable, please try again")
	}
	if !verdict.OK {
		in.discard(ctx, paths)
		msg := "Photos are not suitable for this reading"
		if verdict.Reason != "" {
			msg = msg + ": " + verdict.Reason
		}
		return nil, E(ValidationRejected, msg)
	}

	status := ""
	if !st.IsPaid {
		status = reading.StatusPhotosUploaded
	}
	if err := repo.SetAssets(ctx, st.ID, paths, status); err != nil {
		return nil, errors.Wrap(err, "save assets")
	}
	if status != "" {
		st.Status = status
	}
	return paths, nil
}

// discard 尽力删除，失败只记日志
func (in *Intake) discard(ctx context.Context, paths []string) {
	for _, p := range paths {
		if err := in.files.Delete(ctx, p); err != nil {
			logger.WarnString("Lifecycle", "Intake", fmt.Sprintf("删除文件失败 %s: %v", p, err))
		}
	}
}

// assetKey uploads/<reading_id>/<uuid><ext>
func assetKey(readingID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if !allowedExt[ext] {
		ext = ".jpg"
	}
	return path.Join("uploads", readingID, uuid.NewString()+ext)
}
