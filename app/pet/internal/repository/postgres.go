package repository

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petlink/app/pet/internal/dao"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/pkg/database/postgres"
	"github.com/lk2023060901/petlink/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// PostgresGateway 基于 PostgreSQL 的网关
type PostgresGateway struct {
	db        *postgres.Client
	txOptions postgres.TxOptions

	pets      *dao.PetDAO
	inventory *dao.InventoryDAO
	shop      *dao.ShopDAO
	missions  *dao.MissionDAO
	streaks   *dao.StreakDAO
	ledger    *dao.LedgerDAO

	clock  func() time.Time
	logger logger.Logger
}

// NewPostgresGateway 创建 PostgreSQL 网关
func NewPostgresGateway(
	db *postgres.Client,
	pets *dao.PetDAO,
	inventory *dao.InventoryDAO,
	shop *dao.ShopDAO,
	missions *dao.MissionDAO,
	streaks *dao.StreakDAO,
	ledger *dao.LedgerDAO,
	l logger.Logger,
) *PostgresGateway {
	return &PostgresGateway{
		db:        db,
		txOptions: postgres.TxOptions{IsoLevel: postgres.TxIsolationLevelReadCommitted},
		pets:      pets,
		inventory: inventory,
		shop:      shop,
		missions:  missions,
		streaks:   streaks,
		ledger:    ledger,
		clock:     time.Now,
		logger:    l.Named("repository.postgres"),
	}
}

// WithinTx 实现 Gateway
func (g *PostgresGateway) WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	err := g.db.WithTxOptions(ctx, g.txOptions, func(tx postgres.Tx) error {
		return fn(ctx, &pgStore{g: g, q: tx})
	})
	return classify(err)
}

// Snapshot 实现 Gateway，互不依赖的读取并发执行
func (g *PostgresGateway) Snapshot(ctx context.Context, userID string, day time.Time) (*Snapshot, error) {
	snap := &Snapshot{}
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		pet, err := g.pets.Get(ctx, g.db, userID)
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		snap.Pet = pet
		return err
	})
	eg.Go(func() (err error) {
		snap.Inventory, err = g.inventory.List(ctx, g.db, userID)
		return err
	})
	eg.Go(func() (err error) {
		snap.Missions, err = g.missions.List(ctx, g.db, userID, day)
		return err
	})
	eg.Go(func() error {
		streak, err := g.streaks.Get(ctx, g.db, userID)
		if errors.Is(err, model.ErrNotFound) {
			return nil
		}
		snap.Streak = streak
		return err
	})
	eg.Go(func() (err error) {
		snap.Shop, err = g.shop.List(ctx, g.db, model.ShopFilter{})
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, classify(err)
	}
	return snap, nil
}

// Migrate 创建表结构
func (g *PostgresGateway) Migrate(ctx context.Context) error {
	return dao.Migrate(ctx, g.db)
}

// classify 把底层错误归类为领域错误，业务错误原样返回
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case model.IsDomainError(err), errors.IsAny(err, model.ErrConflict, model.ErrNotFound, model.ErrPersistence):
		return err
	case postgres.IsSerializationFailure(err):
		return errors.Mark(err, model.ErrConflict)
	case errors.IsAny(err, context.Canceled, context.DeadlineExceeded):
		return err
	default:
		return errors.Mark(err, model.ErrPersistence)
	}
}

// pgStore 绑定在单个事务上的 Store
type pgStore struct {
	g *PostgresGateway
	q postgres.Querier
}

var _ Store = (*pgStore)(nil)

func (s *pgStore) GetPet(ctx context.Context, userID string) (*model.Pet, error) {
	return s.g.pets.Get(ctx, s.q, userID)
}

func (s *pgStore) UpsertPet(ctx context.Context, pet *model.Pet) (*model.Pet, error) {
	saved := pet.Clone()
	saved.Version = pet.Version + 1

	if pet.Version == 0 {
		inserted, err := s.g.pets.Insert(ctx, s.q, saved)
		if err != nil {
			return nil, err
		}
		if !inserted {
			return nil, errors.Wrapf(model.ErrConflict, "pet of %s already exists", pet.UserID)
		}
		return saved, nil
	}

	n, err := s.g.pets.Update(ctx, s.q, saved, pet.Version)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, errors.Wrapf(model.ErrConflict, "pet of %s is no longer at version %d", pet.UserID, pet.Version)
	}
	return saved, nil
}

func (s *pgStore) GetInventory(ctx context.Context, userID string) ([]*model.InventoryItem, error) {
	return s.g.inventory.List(ctx, s.q, userID)
}

func (s *pgStore) AdjustInventory(ctx context.Context, userID, itemID string, delta int) (*model.InventoryItem, error) {
	return s.g.inventory.Adjust(ctx, s.q, userID, itemID, delta, s.g.clock())
}

func (s *pgStore) SetEquipped(ctx context.Context, userID, itemID string, equipped bool) error {
	return s.g.inventory.SetEquipped(ctx, s.q, userID, itemID, equipped, s.g.clock())
}

func (s *pgStore) ListShopItems(ctx context.Context, filter model.ShopFilter) ([]*model.ShopItem, error) {
	return s.g.shop.List(ctx, s.q, filter)
}

func (s *pgStore) UpsertShopItems(ctx context.Context, items []*model.ShopItem) error {
	return s.g.shop.Upsert(ctx, s.q, items)
}

func (s *pgStore) GenerateDailyMissions(ctx context.Context, userID string, day time.Time, missions []*model.Mission) ([]*model.Mission, error) {
	if err := s.g.missions.InsertIgnore(ctx, s.q, missions); err != nil {
		return nil, err
	}
	return s.g.missions.List(ctx, s.q, userID, day)
}

func (s *pgStore) ListMissions(ctx context.Context, userID string, day time.Time) ([]*model.Mission, error) {
	return s.g.missions.List(ctx, s.q, userID, day)
}

func (s *pgStore) UpdateMissionProgress(ctx context.Context, userID string, day time.Time, action model.ActionType, increment int) ([]*model.Mission, error) {
	return s.g.missions.IncrementProgress(ctx, s.q, userID, day, action, increment)
}

func (s *pgStore) GetMission(ctx context.Context, userID, missionID string) (*model.Mission, error) {
	return s.g.missions.Get(ctx, s.q, userID, missionID)
}

func (s *pgStore) ClaimMissionReward(ctx context.Context, userID, missionID string) (*model.Mission, error) {
	return s.g.missions.Claim(ctx, s.q, userID, missionID)
}

func (s *pgStore) ClaimDailyReward(ctx context.Context, userID string, day time.Time, streak *model.Streak) error {
	record := streak.Clone()
	record.UserID = userID
	return s.g.streaks.Claim(ctx, s.q, day, record)
}

func (s *pgStore) GetStreak(ctx context.Context, userID string) (*model.Streak, error) {
	return s.g.streaks.Get(ctx, s.q, userID)
}

func (s *pgStore) RecordTransaction(ctx context.Context, tx *model.Transaction) error {
	return s.g.ledger.InsertTransaction(ctx, s.q, tx)
}

func (s *pgStore) RecordActivity(ctx context.Context, entry *model.ActivityEntry) error {
	return s.g.ledger.InsertActivity(ctx, s.q, entry)
}

func (s *pgStore) ListTransactions(ctx context.Context, userID string, limit int) ([]*model.Transaction, error) {
	return s.g.ledger.ListTransactions(ctx, s.q, userID, limit)
}

func (s *pgStore) TopByTotalXP(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	return s.g.pets.TopByTotalXP(ctx, s.q, limit)
}
