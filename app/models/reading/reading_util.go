package reading

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// 解读状态
const (
	StatusCreated        = "created"
	StatusStarted        = "started"
	StatusPendingPayment = "pending_payment"
	StatusPhotosUploaded = "photos_uploaded"
	StatusSelected       = "selected"
	StatusPaid           = "paid"
	StatusProcessing     = "processing"
	StatusCompleted      = "completed"
	StatusDone           = "done"
)

// CompletedStatuses 视为已完成的状态
var CompletedStatuses = []string{StatusCompleted, StatusDone}

// StringList 以 JSON 数组形式存储的字符串列表（图片路径、卡牌）
type StringList []string

// Value 实现 driver.Valuer 接口
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 实现 sql.Scanner 接口
func (l *StringList) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*l = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("invalid type for string list")
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(raw, l)
}

// HasResult 是否已有解读结果
func (l *Lifecycle) HasResult() bool {
	return l.ResultText != ""
}

// IsProcessing 检查是否解读中
func (l *Lifecycle) IsProcessing() bool {
	return l.Status == StatusProcessing
}

// IsTerminal 检查是否处于完成状态
func (l *Lifecycle) IsTerminal() bool {
	return l.Status == StatusCompleted || l.Status == StatusDone
}

// OwnedBy 是否属于该设备
func (l *Lifecycle) OwnedBy(deviceID string) bool {
	return l.DeviceID == deviceID
}
