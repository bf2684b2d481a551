package requests

import (
	"github.com/gin-gonic/gin"
	"github.com/thedevsaddam/govalidator"
)

const timePattern = `regex:^([01][0-9]|2[0-3]):[0-5][0-9]$`

// CoffeeStartRequest 咖啡解读
type CoffeeStartRequest struct {
	Name               string `json:"name" valid:"name"`
	Age                *int   `json:"age"`
	Topic              string `json:"topic" valid:"topic"`
	Question           string `json:"question" valid:"question"`
	RelationshipStatus string `json:"relationship_status" valid:"relationship_status"`
	BigDecision        string `json:"big_decision" valid:"big_decision"`
}

// CoffeeStart 咖啡解读参数校验
func CoffeeStart(data interface{}, c *gin.Context) map[string][]string {
	rules := govalidator.MapData{
		"name":                []string{"max:80"},
		"topic":               []string{"max:40"},
		"question":            []string{"max:2000"},
		"relationship_status": []string{"max:40"},
		"big_decision":        []string{"max:2000"},
	}
	messages := govalidator.MapData{
		"name":     []string{"max:name may not exceed 80 characters"},
		"topic":    []string{"max:topic may not exceed 40 characters"},
		"question": []string{"max:question may not exceed 2000 characters"},
	}
	req := data.(*CoffeeStartRequest)
	return validAge(req.Age, validate(data, rules, messages))
}

// HandStartRequest 手相解读
type HandStartRequest struct {
	CoffeeStartRequest
	DominantHand string `json:"dominant_hand" valid:"dominant_hand"`
	PhotoHand    string `json:"photo_hand" valid:"photo_hand"`
}

// HandStart 手相解读参数校验
func HandStart(data interface{}, c *gin.Context) map[string][]string {
	req := data.(*HandStartRequest)
	errs := CoffeeStart(&req.CoffeeStartRequest, c)
	more := validate(data, govalidator.MapData{
		"dominant_hand": []string{"in:right,left"},
		"photo_hand":    []string{"in:right,left"},
	}, govalidator.MapData{
		"dominant_hand": []string{"in:dominant_hand must be right or left"},
		"photo_hand":    []string{"in:photo_hand must be right or left"},
	})
	return merge(errs, more)
}

// TarotStartRequest 塔罗解读
type TarotStartRequest struct {
	Name       string `json:"name" valid:"name"`
	Age        *int   `json:"age"`
	Topic      string `json:"topic" valid:"topic"`
	Question   string `json:"question" valid:"question"`
	SpreadType string `json:"spread_type" valid:"spread_type"`
}

// TarotStart 塔罗解读参数校验，牌阵未填时默认 three
func TarotStart(data interface{}, c *gin.Context) map[string][]string {
	req := data.(*TarotStartRequest)
	if req.SpreadType == "" {
		req.SpreadType = "three"
	}
	rules := govalidator.MapData{
		"name":        []string{"max:80"},
		"topic":       []string{"max:40"},
		"question":    []string{"max:2000"},
		"spread_type": []string{"in:three,six,twelve"},
	}
	messages := govalidator.MapData{
		"spread_type": []string{"in:spread_type must be one of three, six, twelve"},
	}
	return validAge(req.Age, validate(data, rules, messages))
}

// SelectCardsRequest 塔罗选牌
type SelectCardsRequest struct {
	Cards []string `json:"cards"`
}

// SelectCards 选牌参数校验，数量由牌阵决定
func SelectCards(data interface{}, c *gin.Context) map[string][]string {
	req := data.(*SelectCardsRequest)
	if len(req.Cards) == 0 {
		return map[string][]string{"cards": {"cards is required"}}
	}
	return nil
}

// NumerologyStartRequest 数字命理
type NumerologyStartRequest struct {
	Name      string `json:"name" valid:"name"`
	BirthDate string `json:"birth_date" valid:"birth_date"`
	Topic     string `json:"topic" valid:"topic"`
	Question  string `json:"question" valid:"question"`
}

// NumerologyStart 数字命理参数校验
func NumerologyStart(data interface{}, c *gin.Context) map[string][]string {
	rules := govalidator.MapData{
		"name":       []string{"required", "min:1", "max:80"},
		"birth_date": []string{"required", "date"},
		"topic":      []string{"max:40"},
		"question":   []string{"max:2000"},
	}
	messages := govalidator.MapData{
		"name":       []string{"required:name is required"},
		"birth_date": []string{"required:birth_date is required", "date:birth_date must be YYYY-MM-DD"},
	}
	return validate(data, rules, messages)
}

// BirthStartRequest 星盘和性格分析共用
type BirthStartRequest struct {
	Name         string `json:"name" valid:"name"`
	BirthDate    string `json:"birth_date" valid:"birth_date"`
	BirthTime    string `json:"birth_time" valid:"birth_time"`
	BirthCity    string `json:"birth_city" valid:"birth_city"`
	BirthCountry string `json:"birth_country" valid:"birth_country"`
	Topic        string `json:"topic" valid:"topic"`
	Question     string `json:"question" valid:"question"`
}

// BirthStart 出生信息参数校验
func BirthStart(data interface{}, c *gin.Context) map[string][]string {
	rules := govalidator.MapData{
		"name":          []string{"max:80"},
		"birth_date":    []string{"required", "date"},
		"birth_time":    []string{timePattern},
		"birth_city":    []string{"required", "min:2", "max:120"},
		"birth_country": []string{"max:4"},
		"topic":         []string{"max:40"},
		"question":      []string{"max:2000"},
	}
	messages := govalidator.MapData{
		"birth_date": []string{"required:birth_date is required", "date:birth_date must be YYYY-MM-DD"},
		"birth_time": []string{"regex:birth_time must be HH:MM"},
		"birth_city": []string{"required:birth_city is required"},
	}
	return validate(data, rules, messages)
}

// SynastryStartRequest 合盘
type SynastryStartRequest struct {
	NameA         string `json:"name_a" valid:"name_a"`
	BirthDateA    string `json:"birth_date_a" valid:"birth_date_a"`
	BirthTimeA    string `json:"birth_time_a" valid:"birth_time_a"`
	BirthCityA    string `json:"birth_city_a" valid:"birth_city_a"`
	BirthCountryA string `json:"birth_country_a" valid:"birth_country_a"`
	NameB         string `json:"name_b" valid:"name_b"`
	BirthDateB    string `json:"birth_date_b" valid:"birth_date_b"`
	BirthTimeB    string `json:"birth_time_b" valid:"birth_time_b"`
	BirthCityB    string `json:"birth_city_b" valid:"birth_city_b"`
	BirthCountryB string `json:"birth_country_b" valid:"birth_country_b"`
	Topic         string `json:"topic" valid:"topic"`
	Question      string `json:"question" valid:"question"`
}

// SynastryStart 合盘参数校验
func SynastryStart(data interface{}, c *gin.Context) map[string][]string {
	rules := govalidator.MapData{
		"name_a":          []string{"required", "max:80"},
		"birth_date_a":    []string{"required", "date"},
		"birth_time_a":    []string{timePattern},
		"birth_city_a":    []string{"required", "max:120"},
		"birth_country_a": []string{"max:4"},
		"name_b":          []string{"required", "max:80"},
		"birth_date_b":    []string{"required", "date"},
		"birth_time_b":    []string{timePattern},
		"birth_city_b":    []string{"required", "max:120"},
		"birth_country_b": []string{"max:4"},
		"topic":           []string{"max:40"},
		"question":        []string{"max:2000"},
	}
	return validate(data, rules, nil)
}

// RateRequest 评分
type RateRequest struct {
	Rating int `json:"rating"`
}

// Rate 评分参数解析，范围由业务层校验
func Rate(data interface{}, c *gin.Context) map[string][]string {
	return nil
}

func merge(a, b map[string][]string) map[string][]string {
	if len(a) == 0 {
		return b
	}
	for k, v := range b {
		a[k] = append(a[k], v...)
	}
	return a
}
