// Package consent 法律文本同意记录
package consent

import "time"

// DefaultDocumentType 默认文档类型
const DefaultDocumentType = "terms"

// Consent 同意记录模型，只追加不修改
type Consent struct {
	ID              string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	DeviceID        string    `gorm:"type:varchar(128);index" json:"device_id"`
	DocumentType    string    `gorm:"type:varchar(40);index" json:"document_type"`
	DocumentVersion string    `gorm:"type:varchar(20)" json:"document_version,omitempty"`
	AcceptedAt      time.Time `gorm:"index" json:"accepted_at"`
}

// TableName 表名
func (Consent) TableName() string {
	return "legal_consents"
}
