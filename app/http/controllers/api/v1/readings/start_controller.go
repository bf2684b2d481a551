package readings

import (
	"strings"

	"github.com/gin-gonic/gin"

	"lunaura/app/models/birthchart"
	"lunaura/app/models/coffee"
	"lunaura/app/models/hand"
	"lunaura/app/models/numerology"
	"lunaura/app/models/personality"
	"lunaura/app/models/synastry"
	"lunaura/app/models/tarot"
	"lunaura/app/requests"
	"lunaura/pkg/lifecycle"
	"lunaura/pkg/response"
)

const guestName = "Misafir"

// StartCoffee 创建咖啡解读
// POST /api/v1/coffee/start
func (rc *ReadingController) StartCoffee(c *gin.Context) {
	request := requests.CoffeeStartRequest{}
	if ok := requests.Validate(c, &request, requests.CoffeeStart); !ok {
		return
	}
	rc.create(c, lifecycle.Coffee, &coffee.Reading{
		Name:               or(request.Name, guestName),
		Age:                request.Age,
		Topic:              or(request.Topic, "Genel"),
		Question:           strings.TrimSpace(request.Question),
		RelationshipStatus: request.RelationshipStatus,
		BigDecision:        request.BigDecision,
	})
}

// StartHand 创建手相解读
// POST /api/v1/hand/start
func (rc *ReadingController) StartHand(c *gin.Context) {
	request := requests.HandStartRequest{}
	if ok := requests.Validate(c, &request, requests.HandStart); !ok {
		return
	}
	rc.create(c, lifecycle.Hand, &hand.Reading{
		Name:               or(request.Name, guestName),
		Age:                request.Age,
		Topic:              or(request.Topic, "Genel"),
		Question:           strings.TrimSpace(request.Question),
		RelationshipStatus: request.RelationshipStatus,
		BigDecision:        request.BigDecision,
		DominantHand:       or(request.DominantHand, "right"),
		PhotoHand:          or(request.PhotoHand, "right"),
	})
}

// StartTarot 创建塔罗解读
// POST /api/v1/tarot/start
func (rc *ReadingController) StartTarot(c *gin.Context) {
	request := requests.TarotStartRequest{}
	if ok := requests.Validate(c, &request, requests.TarotStart); !ok {
		return
	}
	if _, known := tarot.CardCount(request.SpreadType); !known {
		response.Abort400(c, "Unknown spread type")
		return
	}
	rc.create(c, lifecycle.Tarot, &tarot.Reading{
		Name:       or(request.Name, guestName),
		Age:        request.Age,
		Topic:      or(request.Topic, "genel"),
		Question:   strings.TrimSpace(request.Question),
		SpreadType: request.SpreadType,
	})
}

// SelectCards 保存塔罗选牌
// POST /api/v1/tarot/:id/select-cards
func (rc *ReadingController) SelectCards(c *gin.Context) {
	request := requests.SelectCardsRequest{}
	if ok := requests.Validate(c, &request, requests.SelectCards); !ok {
		return
	}
	rec, ok := rc.resolve(c, lifecycle.Tarot)
	if !ok {
		return
	}
	updated, err := rc.engine.SelectCards(c.Request.Context(), rec.(*tarot.Reading), request.Cards)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Data(c, updated)
}

// StartNumerology 创建数字命理解读
// POST /api/v1/numerology/start
func (rc *ReadingController) StartNumerology(c *gin.Context) {
	request := requests.NumerologyStartRequest{}
	if ok := requests.Validate(c, &request, requests.NumerologyStart); !ok {
		return
	}
	rc.create(c, lifecycle.Numerology, &numerology.Reading{
		Name:      strings.TrimSpace(request.Name),
		BirthDate: request.BirthDate,
		Topic:     or(request.Topic, "genel"),
		Question:  strings.TrimSpace(request.Question),
	})
}

// StartBirthchart 创建星盘解读
// POST /api/v1/birthchart/start
func (rc *ReadingController) StartBirthchart(c *gin.Context) {
	request := requests.BirthStartRequest{}
	if ok := requests.Validate(c, &request, requests.BirthStart); !ok {
		return
	}
	rc.create(c, lifecycle.Birthchart, &birthchart.Reading{
		Name:         or(request.Name, guestName),
		BirthDate:    request.BirthDate,
		BirthTime:    request.BirthTime,
		BirthCity:    strings.TrimSpace(request.BirthCity),
		BirthCountry: strings.ToUpper(or(request.BirthCountry, "TR")),
		Topic:        or(request.Topic, "genel"),
		Question:     strings.TrimSpace(request.Question),
	})
}

// StartPersonality 创建性格分析
// POST /api/v1/personality/start
func (rc *ReadingController) StartPersonality(c *gin.Context) {
	request := requests.BirthStartRequest{}
	if ok := requests.Validate(c, &request, requests.BirthStart); !ok {
		return
	}
	rc.create(c, lifecycle.Personality, &personality.Reading{
		Name:         or(request.Name, guestName),
		BirthDate:    request.BirthDate,
		BirthTime:    request.BirthTime,
		BirthCity:    strings.TrimSpace(request.BirthCity),
		BirthCountry: strings.ToUpper(or(request.BirthCountry, "TR")),
		Topic:        or(request.Topic, "genel"),
		Question:     strings.TrimSpace(request.Question),
	})
}

// StartSynastry 创建合盘解读
// POST /api/v1/synastry/start
func (rc *ReadingController) StartSynastry(c *gin.Context) {
	request := requests.SynastryStartRequest{}
	if ok := requests.Validate(c, &request, requests.SynastryStart); !ok {
		return
	}
	rc.create(c, lifecycle.Synastry, &synastry.Reading{
		NameA:         strings.TrimSpace(request.NameA),
		BirthDateA:    request.BirthDateA,
		BirthTimeA:    request.BirthTimeA,
		BirthCityA:    strings.TrimSpace(request.BirthCityA),
		BirthCountryA: strings.ToUpper(or(request.BirthCountryA, "TR")),
		NameB:         strings.TrimSpace(request.NameB),
		BirthDateB:    request.BirthDateB,
		BirthTimeB:    request.BirthTimeB,
		BirthCityB:    strings.TrimSpace(request.BirthCityB),
		BirthCountryB: strings.ToUpper(or(request.BirthCountryB, "TR")),
		Topic:         or(request.Topic, "genel"),
		Question:      strings.TrimSpace(request.Question),
	})
}

func or(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
