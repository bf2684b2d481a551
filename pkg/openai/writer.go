package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"lunaura/app/models/birthchart"
	"lunaura/app/models/coffee"
	"lunaura/app/models/hand"
	"lunaura/app/models/numerology"
	"lunaura/app/models/personality"
	"lunaura/app/models/reading"
	"lunaura/app/models/synastry"
	"lunaura/app/models/tarot"
	"lunaura/pkg/app"
	"lunaura/pkg/storage"
)

// Writer 按产品生成解读文本
type Writer struct {
	client Completer
	store  storage.Store
	now    func() time.Time
}

// NewWriter 创建 Writer
func NewWriter(client Completer, store storage.Store) *Writer {
	return &Writer{
		client: client,
		store:  store,
		now:    app.Now,
	}
}

// Generate 生成解读文本，截断时最多续写 maxHops 次
func (w *Writer) Generate(ctx context.Context, rec reading.Record, maxHops int) (string, error) {
	switch r := rec.(type) {
	case *coffee.Reading:
		return w.coffee(ctx, r, maxHops)
	case *hand.Reading:
		return w.hand(ctx, r, maxHops)
	case *tarot.Reading:
		return w.tarot(ctx, r, maxHops)
	case *numerology.Reading:
		return w.numerology(ctx, r.Name, r.BirthDate, r.Topic, r.Question, maxHops)
	case *birthchart.Reading:
		return w.birthchart(ctx, birthInfo{r.Name, r.BirthDate, r.BirthTime, r.BirthCity, r.BirthCountry}, r.Topic, r.Question, maxHops)
	case *personality.Reading:
		return w.personality(ctx, r, maxHops)
	case *synastry.Reading:
		return w.synastry(ctx, r, maxHops)
	default:
		return "", errors.Errorf("openai: unsupported reading type %T", rec)
	}
}

func (w *Writer) stitch(ctx context.Context, p Prompt, maxHops int, cont func(string) string) (string, error) {
	return Stitch(ctx, w.client, p, StitchOptions{
		MaxHops:        maxHops,
		ContinueTokens: 1400,
		Continue:       cont,
	})
}

func (w *Writer) coffee(ctx context.Context, r *coffee.Reading, maxHops int) (string, error) {
	images, err := loadImages(ctx, w.store, r.Images)
	if err != nil {
		return "", err
	}
	user := fmt.Sprintf("Kişi: %s\nYaş: %s\nKonu: %s\nSoru: %s\nİlişki durumu: %s\nBüyük karar: %s\n\n"+
		"Fincan fotoğraflarına bakarak kahve falını yaz.",
		orDefault(r.Name, "Misafir"), ageText(r.Age), orDefault(r.Topic, "Genel"),
		orDefault(r.Question, "-"), orDefault(r.RelationshipStatus, "-"), orDefault(r.BigDecision, "-"))
	return w.stitch(ctx, Prompt{System: coffeeSystem(), User: user, Images: images, MaxTokens: 2200}, maxHops, nil)
}

// hand 先做视觉观察，再基于观察结果写解读
func (w *Writer) hand(ctx context.Context, r *hand.Reading, maxHops int) (string, error) {
	images, err := loadImages(ctx, w.store, r.Images)
	if err != nil {
		return "", err
	}
	observation, err := w.client.Respond(ctx, Prompt{
		System:    handObservePrompt,
		User:      fmt.Sprintf("Baskın el: %s. Fotoğraftaki el: %s.", orDefault(r.DominantHand, "unknown"), orDefault(r.PhotoHand, "unknown")),
		Images:    images,
		MaxTokens: 900,
	})
	if err != nil {
		return "", err
	}
	if raw := extractJSON(observation); raw != "" {
		observation = raw
	}

	now := w.now()
	user := fmt.Sprintf("Kişi: %s\nYaş: %s\nKonu: %s\nSoru: %s\nİlişki durumu: %s\nBüyük karar: %s\n"+
		"Baskın el: %s\nFotoğraftaki el: %s\nBugün: %s\n\n[GÖZLEM]\n%s\n\n"+
		"14 günlük plan için şu tarihleri kullan:\n%s",
		orDefault(r.Name, "Misafir"), ageText(r.Age), orDefault(r.Topic, "Genel"),
		orDefault(r.Question, "-"), orDefault(r.RelationshipStatus, "-"), orDefault(r.BigDecision, "-"),
		orDefault(r.DominantHand, "-"), orDefault(r.PhotoHand, "-"), today(now), observation, next14Days(now))
	return w.stitch(ctx, Prompt{System: handSystem(), User: user, MaxTokens: 3200}, maxHops, nil)
}

// tarotWords 牌阵越大篇幅越长
var tarotWords = map[string][2]int{
	tarot.SpreadThree:  {1100, 1500},
	tarot.SpreadSix:    {1500, 2000},
	tarot.SpreadTwelve: {2200, 3000},
}

func (w *Writer) tarot(ctx context.Context, r *tarot.Reading, maxHops int) (string, error) {
	words, ok := tarotWords[r.SpreadType]
	if !ok {
		words = tarotWords[tarot.SpreadThree]
	}

	lines := make([]string, 0, len(r.Cards))
	for i, raw := range r.Cards {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, tarot.ParseCard(raw).Label()))
	}

	now := w.now()
	user := fmt.Sprintf("Kişi: %s\nYaş: %s\nKonu: %s\nSoru: %s\nAçılım: %s\nBugün: %s\n\n[KARTLAR]\n%s\n\n"+
		"14 günlük plan için şu tarihleri kullan:\n%s",
		orDefault(r.Name, "Misafir"), ageText(r.Age), orDefault(r.Topic, "genel"),
		orDefault(r.Question, "-"), orDefault(r.SpreadType, tarot.SpreadThree), today(now),
		strings.Join(lines, "\n"), next14Days(now))
	return w.stitch(ctx, Prompt{System: tarotSystem(words[0], words[1]), User: user, MaxTokens: 3600}, maxHops, nil)
}

func (w *Writer) numerology(ctx context.Context, name, birthDate, topic, question string, maxHops int) (string, error) {
	now := w.now()
	user := fmt.Sprintf("İsim: %s\nDoğum tarihi: %s\nKonu: %s\nSoru: %s\nBugün: %s\n\n"+
		"14 günlük plan için şu tarihleri kullan:\n%s",
		orDefault(name, "Misafir"), birthDate, orDefault(topic, "genel"),
		orDefault(question, "-"), today(now), next14Days(now))
	return w.stitch(ctx, Prompt{System: numerologySystem(), User: user, MaxTokens: 4000}, maxHops, numerologyContinuePrompt)
}

type birthInfo struct {
	Name, Date, Time, City, Country string
}

func (b birthInfo) String() string {
	return fmt.Sprintf("İsim: %s\nDoğum tarihi: %s\nDoğum saati: %s\nDoğum yeri: %s / %s",
		orDefault(b.Name, "Misafir"), b.Date, orDefault(b.Time, "bilinmiyor"), b.City, orDefault(b.Country, "TR"))
}

func (w *Writer) birthchart(ctx context.Context, b birthInfo, topic, question string, maxHops int) (string, error) {
	user := fmt.Sprintf("%s\nKonu: %s\nSoru: %s\nBugün: %s\n\nDoğum haritası yorumunu yaz.",
		b, orDefault(topic, "genel"), orDefault(question, "-"), today(w.now()))
	return w.stitch(ctx, Prompt{System: birthchartSystem(), User: user, MaxTokens: 3500}, maxHops, nil)
}

// personality 数字命理和星盘并发生成，再融合成一份
func (w *Writer) personality(ctx context.Context, r *personality.Reading, maxHops int) (string, error) {
	b := birthInfo{r.Name, r.BirthDate, r.BirthTime, r.BirthCity, r.BirthCountry}

	var numText, chartText string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		numText, err = w.numerology(gctx, r.Name, r.BirthDate, r.Topic, r.Question, maxHops)
		return err
	})
	g.Go(func() error {
		var err error
		chartText, err = w.birthchart(gctx, b, r.Topic, r.Question, maxHops)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	now := w.now()
	user := fmt.Sprintf("%s\nKonu: %s\nSoru: %s\nBugün: %s\n\n[NUMEROLOJİ]\n%s\n\n[DOĞUM HARİTASI]\n%s\n\n"+
		"14 günlük plan için şu tarihleri kullan:\n%s",
		b, orDefault(r.Topic, "genel"), orDefault(r.Question, "-"), today(now), numText, chartText, next14Days(now))
	return w.stitch(ctx, Prompt{System: personalitySystem(), User: user, MaxTokens: 6000}, maxHops, nil)
}

func (w *Writer) synastry(ctx context.Context, r *synastry.Reading, maxHops int) (string, error) {
	a := birthInfo{r.NameA, r.BirthDateA, r.BirthTimeA, r.BirthCityA, r.BirthCountryA}
	b := birthInfo{r.NameB, r.BirthDateB, r.BirthTimeB, r.BirthCityB, r.BirthCountryB}
	user := fmt.Sprintf("[KİŞİ A]\n%s\n\n[KİŞİ B]\n%s\n\nKonu: %s\nSoru: %s\nBugün: %s",
		a, b, orDefault(r.Topic, "genel"), orDefault(r.Question, "-"), today(w.now()))
	return w.stitch(ctx, Prompt{System: synastrySystem(), User: user, MaxTokens: 5000}, maxHops, nil)
}

func ageText(age *int) string {
	if age == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *age)
}
