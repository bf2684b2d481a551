// Package requests 处理请求数据和表单验证
package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"

	"lunaura/pkg/response"
)

// ValidatorFunc 验证函数类型
type ValidatorFunc func(interface{}, *gin.Context) map[string][]string

// Validate 控制器里调用示例：
//
//	request := requests.CoffeeStartRequest{}
//	if ok := requests.Validate(c, &request, requests.CoffeeStart); !ok {
//	    return
//	}
func Validate(c *gin.Context, obj interface{}, handler ValidatorFunc) bool {
	// 1. 解析请求，支持 JSON 数据、表单请求和 URL Query
	if err := c.ShouldBind(obj); err != nil {
		response.BadRequest(c, err, "Request body could not be parsed")
		return false
	}

	// 2. 表单验证
	errs := handler(obj, c)

	// 3. 判断验证是否通过
	if len(errs) > 0 {
		response.ValidationError(c, errs)
		return false
	}

	return true
}

// validate 执行 govalidator 结构体校验
func validate(data interface{}, rules govalidator.MapData, messages govalidator.MapData) map[string][]string {
	opts := govalidator.Options{
		Data:          data,
		Rules:         rules,
		TagIdentifier: "valid", // 模型中的 Struct 标签标识符
		Messages:      messages,
	}
	return govalidator.New(opts).ValidateStruct()
}

// validAge 年龄可选，填写时必须在 1..120
func validAge(age *int, errs map[string][]string) map[string][]string {
	if age != nil && (*age < 1 || *age > 120) {
		if errs == nil {
			errs = make(map[string][]string)
		}
		errs["age"] = append(errs["age"], "age must be between 1 and 120")
	}
	return errs
}
