package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"lunaura/app/models/reading"
	"lunaura/app/models/tarot"
	"lunaura/pkg/logger"
	"lunaura/pkg/metrics"
	"lunaura/pkg/openai"
)

// DefaultStaleAfter processing 超过该时长视为过期，可被重新认领
const DefaultStaleAfter = 120 * time.Second

// CheckTimeouts 单个任务的执行上限必须小于过期时长，否则仍在执行的认领会被当成过期
func CheckTimeouts(taskTimeout, staleAfter time.Duration) error {
	if taskTimeout <= 0 || staleAfter <= 0 {
		return errors.New("task timeout and stale window must be positive")
	}
	if taskTimeout >= staleAfter {
		return errors.Errorf("task timeout %v must be shorter than the stale window %v", taskTimeout, staleAfter)
	}
	return nil
}

// defaultTaskTimeout 留出回退和写入结果的余量
func defaultTaskTimeout(staleAfter time.Duration) time.Duration {
	return staleAfter - staleAfter/12
}

// Generator 生成解读文本
type Generator interface {
	Generate(ctx context.Context, rec reading.Record, maxHops int) (string, error)
}

// Dispatcher 投递生成任务，claim 为认领编号，随任务交给 Run
type Dispatcher interface {
	Dispatch(ctx context.Context, product, readingID string, claim int) error
}

// Engine 生成流程：付款检查、认领、投递、执行、回写
type Engine struct {
	store       *Store
	validator   Validator
	generator   Generator
	dispatcher  Dispatcher
	staleAfter  time.Duration
	taskTimeout time.Duration
	now         func() time.Time
}

// Option Engine 可选参数
type Option func(*Engine)

// WithDispatcher 指定任务投递方式，默认同步执行
func WithDispatcher(d Dispatcher) Option {
	return func(e *Engine) {
		e.dispatcher = d
	}
}

// WithStaleAfter 指定 processing 过期时长
func WithStaleAfter(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.staleAfter = d
		}
	}
}

// WithTaskTimeout 指定单次生成的执行上限，默认略小于过期时长
func WithTaskTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.taskTimeout = d
		}
	}
}

// WithClock 指定时钟，测试用
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine 创建 Engine
func NewEngine(store *Store, validator Validator, generator Generator, opts ...Option) *Engine {
	e := &Engine{
		store:      store,
		validator:  validator,
		generator:  generator,
		staleAfter: DefaultStaleAfter,
		now:        time.Now,
	}
	e.dispatcher = InlineDispatcher{engine: e}
	for _, opt := range opts {
		opt(e)
	}
	if e.taskTimeout <= 0 || e.taskTimeout >= e.staleAfter {
		e.taskTimeout = defaultTaskTimeout(e.staleAfter)
	}
	return e
}

// SetDispatcher 替换任务投递方式，队列依赖 Engine 时在构造后注入
func (e *Engine) SetDispatcher(d Dispatcher) {
	e.dispatcher = d
}

// StaleAfter processing 过期时长
func (e *Engine) StaleAfter() time.Duration {
	return e.staleAfter
}

func (e *Engine) staleBefore() time.Time {
	return e.now().UTC().Add(-e.staleAfter)
}

// Generate 触发生成，返回最新的记录
// 未付款返回 PaymentRequired；已有结果或正在生成时原样返回
func (e *Engine) Generate(ctx context.Context, kind string, rec reading.Record) (reading.Record, error) {
	p, repo, err := e.store.Product(kind)
	if err != nil {
		return nil, err
	}
	st := rec.State()

	if !st.IsPaid {
		return nil, E(PaymentRequired, "Payment required")
	}
	if st.HasResult() || st.IsTerminal() {
		return rec, nil
	}
	if st.IsProcessing() && !st.UpdatedAt.Before(e.staleBefore()) {
		return rec, nil
	}

	if p.Revalidate {
		if err := e.revalidate(ctx, p, rec); err != nil {
			return nil, err
		}
	}

	claim, claimed, err := repo.TryClaim(ctx, st.ID, p.TerminalStatus, st.Attempts, e.staleBefore())
	if err != nil {
		return nil, errors.Wrapf(err, "claim %s/%s", kind, st.ID)
	}
	if !claimed {
		return e.store.Load(ctx, kind, st.ID)
	}

	if err := e.dispatcher.Dispatch(ctx, kind, st.ID, claim); err != nil {
		var le *Error
		if errors.As(err, &le) {
			return nil, err
		}
		// 投递失败，释放认领
		_, relErr := repo.Release(context.WithoutCancel(ctx), st.ID, claim)
		logger.LogIf(relErr)
		return nil, Wrap(ServiceUnavailable, err, "Generation queue is unavailable, please try again")
	}
	return e.store.Load(ctx, kind, st.ID)
}

func (e *Engine) revalidate(ctx context.Context, p Product, rec reading.Record) error {
	holder, ok := rec.(reading.AssetHolder)
	if !ok || len(holder.Assets()) == 0 {
		return E(PreconditionFailed, "Please upload your photos first")
	}
	verdict, err := e.validator.Validate(ctx, p.Kind, holder.Assets())
	if err != nil {
		return Wrap(ServiceUnavailable, err, "Image validation is temporarily unavailable, please try again")
	}
	if !verdict.OK {
		return E(ValidationRejected, "Photos are not suitable for this reading: "+verdict.Reason)
	}
	return nil
}

// Run 执行编号为 claim 的生成任务，由 Worker 或同步投递调用
// 认领已被取代时跳过；失败时先把记录退回 paid 再返回错误
func (e *Engine) Run(ctx context.Context, kind, readingID string, claim int) error {
	p, repo, err := e.store.Product(kind)
	if err != nil {
		return err
	}
	// 续期认领，排队期间的耗时不计入执行窗口
	held, err := repo.Touch(ctx, readingID, claim)
	if err != nil {
		return errors.Wrapf(err, "touch claim %s/%s", kind, readingID)
	}
	if !held {
		logger.DebugString("Lifecycle", "Run", fmt.Sprintf("跳过 %s/%s 认领 %d 已失效", kind, readingID, claim))
		return nil
	}
	rec, err := e.store.Load(ctx, kind, readingID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, e.taskTimeout)
	defer cancel()

	start := e.now()
	text, genErr := e.generator.Generate(ctx, rec, p.MaxHops)
	text = strings.TrimSpace(text)
	if genErr == nil && text == "" {
		genErr = openai.ErrEmptyOutput
	}
	metrics.Generation(kind, genErr, e.now().Sub(start))
	if genErr != nil {
		// 上游可能已取消，回退使用独立的 context
		released, err := repo.Release(context.WithoutCancel(ctx), readingID, claim)
		if err != nil {
			logger.ErrorString("Lifecycle", "Run", fmt.Sprintf("回退状态失败 %s/%s: %v", kind, readingID, err))
		} else if !released {
			logger.WarnString("Lifecycle", "Run", fmt.Sprintf("认领 %s/%s#%d 已被取代，不回退", kind, readingID, claim))
		}
		logger.WarnString("Lifecycle", "Run", fmt.Sprintf("生成失败 %s/%s: %v", kind, readingID, genErr))
		if openai.IsTemporary(genErr) {
			return Wrap(ServiceUnavailable, genErr, "AI service is temporarily unavailable, please try again later")
		}
		return Wrap(GenerationFailed, genErr, "Reading generation failed, please try again")
	}

	written, err := repo.SetResult(context.WithoutCancel(ctx), readingID, text, p.TerminalStatus)
	if err != nil {
		return errors.Wrapf(err, "save result %s/%s", kind, readingID)
	}
	logger.InfoString("Lifecycle", "Run", fmt.Sprintf(
		"生成完成 %s/%s 耗时:%v 长度:%d 写入:%v", kind, readingID, e.now().Sub(start), len(text), written))
	return nil
}

// Rate 评分 1..5，覆盖旧值
func (e *Engine) Rate(ctx context.Context, kind string, rec reading.Record, rating int) (reading.Record, error) {
	_, repo, err := e.store.Product(kind)
	if err != nil {
		return nil, err
	}
	if rating < 1 || rating > 5 {
		return nil, E(InvalidInput, "Rating must be between 1 and 5")
	}
	st := rec.State()
	if err := repo.SetRating(ctx, st.ID, rating); err != nil {
		return nil, errors.Wrapf(err, "rate %s/%s", kind, st.ID)
	}
	st.Rating = &rating
	return rec, nil
}

// SelectCards 保存塔罗选牌，数量必须与牌阵一致
func (e *Engine) SelectCards(ctx context.Context, rec *tarot.Reading, cards []string) (*tarot.Reading, error) {
	repo := e.store.Repo(Tarot)
	if repo == nil {
		return nil, E(NotFound, "Unknown product")
	}
	if rec.HasResult() {
		return nil, E(PreconditionFailed, "Cards cannot be changed after the reading is ready")
	}

	want, ok := tarot.CardCount(rec.SpreadType)
	if !ok {
		return nil, E(InvalidInput, "Unknown spread type")
	}
	cleaned := make([]string, 0, len(cards))
	for _, c := range cards {
		if c = strings.TrimSpace(c); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	if len(cleaned) != want {
		return nil, E(InvalidInput, fmt.Sprintf("This spread needs exactly %d cards", want))
	}

	status := ""
	if !rec.IsPaid {
		status = reading.StatusSelected
	}
	if err := repo.SetCards(ctx, rec.ID, cleaned, status); err != nil {
		return nil, errors.Wrapf(err, "select cards %s", rec.ID)
	}
	rec.Cards = cleaned
	if status != "" {
		rec.Status = status
	}
	return rec, nil
}
