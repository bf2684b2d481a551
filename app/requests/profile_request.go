package requests

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

// ProfileRequest 个人资料
type ProfileRequest struct {
	DisplayName string `json:"display_name" valid:"display_name"`
	BirthDate   string `json:"birth_date" valid:"birth_date"`
	BirthPlace  string `json:"birth_place" valid:"birth_place"`
	BirthTime   string `json:"birth_time" valid:"birth_time"`
}

// Profile 个人资料参数校验
func Profile(data interface{}, c *gin.Context) map[string][]string {
	rules := govalidator.MapData{
		"display_name": []string{"max:80"},
		"birth_date":   []string{"date"},
		"birth_place":  []string{"max:120"},
		"birth_time":   []string{timePattern},
	}
	return validate(data, rules, nil)
}

// ConsentRequest 法律文件同意记录
type ConsentRequest struct {
	DocumentType    string     `json:"document_type" valid:"document_type"`
	DocumentVersion string     `json:"document_version" valid:"document_version"`
	AcceptedAt      *time.Time `json:"accepted_at"`
}

// Consent 同意记录参数校验
func Consent(data interface{}, c *gin.Context) map[string][]string {
	rules := govalidator.MapData{
		"document_type":    []string{"max:40"},
		"document_version": []string{"max:40"},
	}
	return validate(data, rules, nil)
}
