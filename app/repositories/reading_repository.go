package repositories

import (
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lunaura/app/models/reading"
)

// ReadingRepository 解读记录仓库，一个实例对应一个产品表
type ReadingRepository struct {
	db        *gorm.DB
	newRecord func() reading.Record
}

// DeviceCounts 设备在某个产品下的统计
type DeviceCounts struct {
	Total     int64 `json:"total"`
	Paid      int64 `json:"paid"`
	Completed int64 `json:"completed"`
}

// NewReadingRepository 创建仓库实例
func NewReadingRepository(db *gorm.DB, newRecord func() reading.Record) *ReadingRepository {
	return &ReadingRepository{
		db:        db,
		newRecord: newRecord,
	}
}

// Table 表名
func (r *ReadingRepository) Table() string {
	return r.newRecord().TableName()
}

// model 用于条件更新的空模型，保证 updated_at 自动维护
func (r *ReadingRepository) model(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(r.newRecord())
}

// Create 创建解读记录
func (r *ReadingRepository) Create(ctx context.Context, rec reading.Record) error {
	state := rec.State()
	if state.ID == "" {
		state.ID = uuid.NewString()
	}
	return errors.Wrapf(r.db.WithContext(ctx).Create(rec).Error, "create %s", r.Table())
}

// Get 根据 ID 获取记录
func (r *ReadingRepository) Get(ctx context.Context, id string) (reading.Record, error) {
	rec := r.newRecord()
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(rec).Error; err != nil {
		return nil, notFound(err)
	}
	return rec, nil
}

// Update 整行保存，updated_at 由 gorm 刷新
func (r *ReadingRepository) Update(ctx context.Context, rec reading.Record) error {
	return errors.Wrapf(r.db.WithContext(ctx).Save(rec).Error, "update %s", r.Table())
}

// AssignDevice 为无主记录绑定设备，已有归属时不修改
func (r *ReadingRepository) AssignDevice(ctx context.Context, id, deviceID string) (bool, error) {
	res := r.model(ctx).
		Where("id = ? AND (device_id IS NULL OR device_id = '')", id).
		Update("device_id", deviceID)
	return res.RowsAffected == 1, res.Error
}

// SetAssets 保存图片列表，status 为空时不修改状态
func (r *ReadingRepository) SetAssets(ctx context.Context, id string, paths []string, status string) error {
	values := map[string]interface{}{"images_json": reading.StringList(paths)}
	if status != "" {
		values["status"] = status
	}
	return r.model(ctx).Where("id = ?", id).Updates(values).Error
}

// SetCards 保存选中的卡牌，status 为空时不修改状态
func (r *ReadingRepository) SetCards(ctx context.Context, id string, cards []string, status string) error {
	values := map[string]interface{}{"cards_json": reading.StringList(cards)}
	if status != "" {
		values["status"] = status
	}
	return r.model(ctx).Where("id = ?", id).Updates(values).Error
}

// SetStatus 更新状态，scopes 为附加条件，返回是否命中
func (r *ReadingRepository) SetStatus(ctx context.Context, id, status string, scopes ...func(*gorm.DB) *gorm.DB) (bool, error) {
	res := r.model(ctx).Where("id = ?", id).Scopes(scopes...).Update("status", status)
	return res.RowsAffected == 1, res.Error
}

// heldBy 仍处于编号为 claim 的认领中且尚无结果
func heldBy(claim int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("status = ? AND generation_attempts = ? AND COALESCE(result_text, '') = ''",
			reading.StatusProcessing, claim)
	}
}

// SetRating 写入评分，覆盖旧值
func (r *ReadingRepository) SetRating(ctx context.Context, id string, rating int) error {
	return r.model(ctx).Where("id = ?", id).Update("rating", rating).Error
}

// MarkPaid 解锁记录，已付款时不做任何修改
func (r *ReadingRepository) MarkPaid(ctx context.Context, id, paymentRef string) (bool, error) {
	res := r.model(ctx).
		Where("id = ? AND is_paid = ?", id, false).
		Updates(map[string]interface{}{
			"is_paid":     true,
			"payment_ref": paymentRef,
			"status":      reading.StatusPaid,
		})
	return res.RowsAffected == 1, res.Error
}

// TryClaim 原子认领生成任务，返回本次认领的编号
// 只有已付款、无结果、未完成，且不在有效的 processing 窗口内的记录才能被认领；
// attempts 是调用方读到的认领次数，其间被别人认领过则不命中
func (r *ReadingRepository) TryClaim(ctx context.Context, id, terminal string, attempts int, staleBefore time.Time) (int, bool, error) {
	claim := attempts + 1
	res := r.model(ctx).
		Where("id = ? AND is_paid = ? AND COALESCE(result_text, '') = '' AND status <> ?", id, true, terminal).
		Where("generation_attempts = ?", attempts).
		Where("(status <> ? OR updated_at < ?)", reading.StatusProcessing, staleBefore).
		Updates(map[string]interface{}{
			"status":              reading.StatusProcessing,
			"updated_at":          time.Now().UTC(),
			"generation_attempts": claim,
		})
	if res.Error != nil {
		return 0, false, res.Error
	}
	return claim, res.RowsAffected == 1, nil
}

// Touch 刷新认领时间，认领已被取代时返回 false
func (r *ReadingRepository) Touch(ctx context.Context, id string, claim int) (bool, error) {
	res := r.model(ctx).Where("id = ?", id).Scopes(heldBy(claim)).Update("updated_at", time.Now().UTC())
	return res.RowsAffected == 1, res.Error
}

// SetResult 写入结果并同时切换到完成状态，已有结果时不覆盖
func (r *ReadingRepository) SetResult(ctx context.Context, id, text, terminal string) (bool, error) {
	res := r.model(ctx).
		Where("id = ? AND is_paid = ? AND COALESCE(result_text, '') = ''", id, true).
		Updates(map[string]interface{}{
			"result_text": text,
			"status":      terminal,
		})
	return res.RowsAffected == 1, res.Error
}

// Release 编号为 claim 的认领回退为 paid，已被更新的认领取代时不做修改
func (r *ReadingRepository) Release(ctx context.Context, id string, claim int) (bool, error) {
	return r.SetStatus(ctx, id, reading.StatusPaid, heldBy(claim))
}

// ReleaseStale 回退所有过期的 processing 记录
func (r *ReadingRepository) ReleaseStale(ctx context.Context, staleBefore time.Time) (int64, error) {
	res := r.model(ctx).
		Where("status = ? AND COALESCE(result_text, '') = '' AND updated_at < ?", reading.StatusProcessing, staleBefore).
		Update("status", reading.StatusPaid)
	return res.RowsAffected, res.Error
}

// CountByDevice 设备维度统计
func (r *ReadingRepository) CountByDevice(ctx context.Context, deviceID string) (DeviceCounts, error) {
	var counts DeviceCounts
	base := func() *gorm.DB {
		return r.model(ctx).Where("device_id = ?", deviceID)
	}
	if err := base().Count(&counts.Total).Error; err != nil {
		return counts, err
	}
	if err := base().Where("is_paid = ?", true).Count(&counts.Paid).Error; err != nil {
		return counts, err
	}
	if err := base().Where("status IN ?", reading.CompletedStatuses).Count(&counts.Completed).Error; err != nil {
		return counts, err
	}
	return counts, nil
}

// LatestByDevice 设备最近的记录，按创建时间倒序
func (r *ReadingRepository) LatestByDevice(ctx context.Context, deviceID string, limit, offset int) ([]reading.Record, error) {
	// []*<产品模型>
	slice := reflect.New(reflect.SliceOf(reflect.TypeOf(r.newRecord())))
	err := r.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(slice.Interface()).Error
	if err != nil {
		return nil, err
	}

	rows := slice.Elem()
	records := make([]reading.Record, 0, rows.Len())
	for i := 0; i < rows.Len(); i++ {
		records = append(records, rows.Index(i).Interface().(reading.Record))
	}
	return records, nil
}

// Count 表内记录总数
func (r *ReadingRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.model(ctx).Count(&total).Error
	return total, err
}
