package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petlink/app/pet/internal/engine"
	"github.com/lk2023060901/petlink/app/pet/internal/metrics"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/app/pet/internal/publisher"
	"github.com/lk2023060901/petlink/app/pet/internal/repository"
	"github.com/lk2023060901/petlink/pkg/logger"
	"github.com/lk2023060901/petlink/pkg/otel"
)

// Leaderboard 排行榜缓存
type Leaderboard interface {
	Update(ctx context.Context, userID string, totalXP int64) error
	Top(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
	Replace(ctx context.Context, entries []*model.LeaderboardEntry) error
}

// Option PetService 选项
type Option func(*PetService)

// WithClock 替换时钟，测试使用
func WithClock(clock func() time.Time) Option {
	return func(s *PetService) {
		s.clock = clock
	}
}

// WithLeaderboard 设置排行榜缓存
func WithLeaderboard(lb Leaderboard) Option {
	return func(s *PetService) {
		s.leaderboard = lb
	}
}

// PetService 宠物服务，每个命令是一个原子工作单元
type PetService struct {
	gateway     repository.Gateway
	engine      *engine.Engine
	publisher   publisher.Publisher
	leaderboard Leaderboard
	tracer      otel.Tracer
	metrics     *metrics.PetMetrics
	logger      logger.Logger
	clock       func() time.Time
}

func NewPetService(
	gateway repository.Gateway,
	eng *engine.Engine,
	pub publisher.Publisher,
	tp *otel.TracerProvider,
	m *metrics.PetMetrics,
	l logger.Logger,
	opts ...Option,
) *PetService {
	s := &PetService{
		gateway:   gateway,
		engine:    eng,
		publisher: pub,
		tracer:    tp.Tracer("service.pet"),
		metrics:   m,
		logger:    l.Named("service.pet"),
		clock:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mutation 在聚合快照上执行的引擎调用
type mutation func(agg *engine.Aggregate, now time.Time) (*engine.Outcome, error)

// preload 在引擎调用前向快照补充数据
type preload func(ctx context.Context, st repository.Store, agg *engine.Aggregate) error

// withMission 今日任务中没有时按 id 加载往日任务
func withMission(missionID string) preload {
	return func(ctx context.Context, st repository.Store, agg *engine.Aggregate) error {
		if agg.Mission(missionID) != nil {
			return nil
		}
		m, err := st.GetMission(ctx, agg.Pet.UserID, missionID)
		switch {
		case err == nil:
			agg.Carried = append(agg.Carried, m)
		case !errors.Is(err, model.ErrNotFound):
			return err
		}
		return nil
	}
}

// execute 读取快照、运行引擎并提交，提交冲突时用新快照重试
func (s *PetService) execute(ctx context.Context, command, userID string, fn mutation, preloads ...preload) (*engine.Aggregate, *engine.Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "PetService."+command,
		otel.WithSpanKind(otel.SpanKindInternal),
		otel.WithAttributes(otel.String("user.id", userID)),
	)
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordCommand(command, time.Since(start).Seconds()) }()

	var (
		agg *engine.Aggregate
		out *engine.Outcome
		err error
	)
	maxRetries := s.engine.Config().MaxRetries
	for attempt := 0; ; attempt++ {
		err = s.gateway.WithinTx(ctx, func(ctx context.Context, st repository.Store) error {
			now := s.clock()
			var err error
			agg, err = s.loadAggregate(ctx, st, userID, now)
			if err != nil {
				return err
			}
			for _, load := range preloads {
				if err := load(ctx, st, agg); err != nil {
					return err
				}
			}
			out, err = fn(agg, now)
			if err != nil {
				return err
			}
			return s.commit(ctx, st, agg, out)
		})
		if err == nil || !errors.Is(err, model.ErrConflict) {
			break
		}
		s.metrics.RecordConflict(command)
		if attempt >= maxRetries {
			s.logger.WarnContext(ctx, "commit conflict, retries exhausted",
				"command", command,
				"user_id", userID,
				"attempts", attempt+1,
			)
			break
		}
		s.metrics.RecordRetry(command)
		span.AddEvent("retry")
	}

	span.SetAttributes(otel.Bool("conflict", errors.Is(err, model.ErrConflict)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otel.CodeError, err.Error())
		if !model.IsDomainError(err) {
			s.logger.ErrorContext(ctx, "command failed",
				"command", command,
				"user_id", userID,
				"error", err,
			)
		}
		return nil, nil, err
	}
	span.SetStatus(otel.CodeOk, "")

	s.afterCommit(ctx, agg.Pet, out)
	return agg, out, nil
}

// loadAggregate 在事务内读取用户聚合，必要时创建宠物并生成当日任务
func (s *PetService) loadAggregate(ctx context.Context, st repository.Store, userID string, now time.Time) (*engine.Aggregate, error) {
	pet, err := st.GetPet(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		pet = s.engine.NewPet(userID, now)
	} else if err != nil {
		return nil, err
	}

	agg := engine.NewAggregate(pet, s.engine.Day(now))

	items, err := st.GetInventory(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		agg.Inventory[item.ItemID] = item
	}

	catalog, err := st.ListShopItems(ctx, model.ShopFilter{})
	if err != nil {
		return nil, err
	}
	for _, item := range catalog {
		agg.Catalog[item.ID] = item
	}
	if len(agg.Catalog) == 0 {
		// 商品表尚未同步时使用配置表
		agg.Catalog = s.engine.Tables().Catalog()
	}

	agg.Missions, err = st.ListMissions(ctx, userID, agg.Today)
	if err != nil {
		return nil, err
	}
	if len(agg.Missions) == 0 {
		generated := s.engine.GenerateDailyMissions(userID, agg.Today, now)
		if agg.Missions, err = st.GenerateDailyMissions(ctx, userID, agg.Today, generated); err != nil {
			return nil, err
		}
	}

	streak, err := st.GetStreak(ctx, userID)
	switch {
	case err == nil:
		agg.Streak = streak
	case !errors.Is(err, model.ErrNotFound):
		return nil, err
	}
	return agg, nil
}

// commit 按固定顺序写入变更集，宠物行的版本检查最先执行
func (s *PetService) commit(ctx context.Context, st repository.Store, agg *engine.Aggregate, out *engine.Outcome) error {
	userID := agg.Pet.UserID

	saved, err := st.UpsertPet(ctx, agg.Pet)
	if err != nil {
		return err
	}
	agg.Pet = saved

	for _, d := range out.InventoryDeltas {
		if _, err := st.AdjustInventory(ctx, userID, d.ItemID, d.Delta); err != nil {
			return err
		}
	}
	if out.Equip != nil {
		if err := st.SetEquipped(ctx, userID, out.Equip.ItemID, out.Equip.Equipped); err != nil {
			return err
		}
	}
	for _, p := range out.MissionProgress {
		if _, err := st.UpdateMissionProgress(ctx, userID, agg.Today, p.Action, p.Increment); err != nil {
			return err
		}
	}
	if out.ClaimedMission != "" {
		if _, err := st.ClaimMissionReward(ctx, userID, out.ClaimedMission); err != nil {
			return err
		}
	}
	if out.StreakClaim {
		if err := st.ClaimDailyReward(ctx, userID, agg.Today, agg.Streak); err != nil {
			return err
		}
	}
	for _, tx := range out.Transactions {
		if err := st.RecordTransaction(ctx, tx); err != nil {
			return err
		}
	}
	for _, a := range out.Activities {
		if err := st.RecordActivity(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// afterCommit 发布事件并刷新排行榜，失败只记录日志
func (s *PetService) afterCommit(ctx context.Context, pet *model.Pet, out *engine.Outcome) {
	if s.publisher != nil && len(out.Events) > 0 {
		if err := s.publisher.Publish(ctx, out.Events); err != nil {
			s.logger.WarnContext(ctx, "event publish incomplete", "user_id", pet.UserID, "error", err)
		}
	}
	if s.leaderboard != nil {
		if err := s.leaderboard.Update(ctx, pet.UserID, pet.TotalXP); err != nil {
			s.logger.WarnContext(ctx, "failed to update leaderboard", "user_id", pet.UserID, "error", err)
		}
	}
}

func newResult(agg *engine.Aggregate, out *engine.Outcome) Result {
	events := out.Events
	if events == nil {
		events = []model.Event{}
	}
	return Result{
		Pet:               agg.Pet,
		LevelUps:          out.LevelUps,
		CompletedMissions: out.CompletedMissions,
		Events:            events,
	}
}

// outcomeLabel 指标中的结果标签
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, model.ErrValidation):
		return "invalid"
	case errors.Is(err, model.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, model.ErrItemNotAvailable):
		return "item_not_available"
	case errors.IsAny(err, model.ErrAlreadyClaimed, model.ErrAlreadyClaimedToday):
		return "already_claimed"
	case errors.Is(err, model.ErrNotCompleted):
		return "not_completed"
	case errors.Is(err, model.ErrConflict):
		return "conflict"
	default:
		return "error"
	}
}
