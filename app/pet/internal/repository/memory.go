package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/lk2023060901/petlink/pkg/logger"
)

// userState 单个用户的全部数据
type userState struct {
	pet          *model.Pet
	inventory    map[string]*model.InventoryItem
	missions     map[string]*model.Mission
	streak       *model.Streak
	claims       map[time.Time]bool
	transactions []*model.Transaction
	activities   []*model.ActivityEntry
}

func newUserState() *userState {
	return &userState{
		inventory: make(map[string]*model.InventoryItem),
		missions:  make(map[string]*model.Mission),
		claims:    make(map[time.Time]bool),
	}
}

func (u *userState) clone() *userState {
	c := newUserState()
	c.pet = u.pet.Clone()
	for k, v := range u.inventory {
		c.inventory[k] = v.Clone()
	}
	for k, v := range u.missions {
		c.missions[k] = v.Clone()
	}
	c.streak = u.streak.Clone()
	for k, v := range u.claims {
		c.claims[k] = v
	}
	// 流水只追加，共享底层数组时截断容量避免互相覆盖
	c.transactions = u.transactions[:len(u.transactions):len(u.transactions)]
	c.activities = u.activities[:len(u.activities):len(u.activities)]
	return c
}

func (u *userState) version() int64 {
	if u.pet == nil {
		return 0
	}
	return u.pet.Version
}

func (u *userState) sortedMissions(day time.Time) []*model.Mission {
	out := make([]*model.Mission, 0, len(u.missions))
	for _, m := range u.missions {
		if m.AssignedDate.Equal(day) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TemplateID < out[j].TemplateID })
	return out
}

// MemoryGateway 进程内网关，用于测试与单机演示
// 提交时比较宠物版本号，与快照时不一致则返回 model.ErrConflict
type MemoryGateway struct {
	mu     sync.Mutex
	users  map[string]*userState
	shop   map[string]*model.ShopItem
	clock  func() time.Time
	logger logger.Logger
}

// NewMemoryGateway 创建内存网关
func NewMemoryGateway(l logger.Logger) *MemoryGateway {
	return &MemoryGateway{
		users:  make(map[string]*userState),
		shop:   make(map[string]*model.ShopItem),
		clock:  time.Now,
		logger: l.Named("repository.memory"),
	}
}

// WithinTx 实现 Gateway
func (g *MemoryGateway) WithinTx(ctx context.Context, fn func(ctx context.Context, s Store) error) error {
	tx := &memoryTx{
		g:       g,
		working: make(map[string]*userState),
		base:    make(map[string]int64),
		dirty:   make(map[string]bool),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

// Snapshot 实现 Gateway
func (g *MemoryGateway) Snapshot(_ context.Context, userID string, day time.Time) (*Snapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := &Snapshot{
		Inventory: []*model.InventoryItem{},
		Missions:  []*model.Mission{},
		Shop:      g.listShop(model.ShopFilter{}),
	}
	u, ok := g.users[userID]
	if !ok {
		return snap, nil
	}
	snap.Pet = u.pet.Clone()
	snap.Streak = u.streak.Clone()
	for _, item := range sortedInventory(u) {
		snap.Inventory = append(snap.Inventory, item.Clone())
	}
	for _, m := range u.sortedMissions(day) {
		snap.Missions = append(snap.Missions, m.Clone())
	}
	return snap, nil
}

func (g *MemoryGateway) listShop(filter model.ShopFilter) []*model.ShopItem {
	items := make([]*model.ShopItem, 0, len(g.shop))
	for _, item := range g.shop {
		if filter.Match(item) {
			c := *item
			items = append(items, &c)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Price != items[j].Price {
			return items[i].Price < items[j].Price
		}
		return items[i].ID < items[j].ID
	})
	return items
}

func sortedInventory(u *userState) []*model.InventoryItem {
	items := make([]*model.InventoryItem, 0, len(u.inventory))
	for _, item := range u.inventory {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	return items
}

// memoryTx 事务内的工作副本，首次访问用户时复制
type memoryTx struct {
	g       *MemoryGateway
	working map[string]*userState
	base    map[string]int64
	dirty   map[string]bool
	shop    []*model.ShopItem
}

var _ Store = (*memoryTx)(nil)

func (t *memoryTx) user(userID string) *userState {
	if u, ok := t.working[userID]; ok {
		return u
	}
	t.g.mu.Lock()
	u := newUserState()
	if live, ok := t.g.users[userID]; ok {
		u = live.clone()
	}
	t.g.mu.Unlock()

	t.working[userID] = u
	t.base[userID] = u.version()
	return u
}

func (t *memoryTx) touch(userID string) *userState {
	t.dirty[userID] = true
	return t.user(userID)
}

func (t *memoryTx) commit() error {
	g := t.g
	g.mu.Lock()
	defer g.mu.Unlock()

	for userID := range t.dirty {
		var live int64
		if u, ok := g.users[userID]; ok {
			live = u.version()
		}
		if live != t.base[userID] {
			return errors.Wrapf(model.ErrConflict, "pet of %s changed from version %d to %d", userID, t.base[userID], live)
		}
	}
	for userID := range t.dirty {
		g.users[userID] = t.working[userID]
	}
	for _, item := range t.shop {
		g.shop[item.ID] = item
	}
	return nil
}

func (t *memoryTx) GetPet(_ context.Context, userID string) (*model.Pet, error) {
	u := t.user(userID)
	if u.pet == nil {
		return nil, errors.Wrapf(model.ErrNotFound, "pet of user %s", userID)
	}
	return u.pet.Clone(), nil
}

func (t *memoryTx) UpsertPet(_ context.Context, pet *model.Pet) (*model.Pet, error) {
	u := t.touch(pet.UserID)
	if u.version() != pet.Version {
		return nil, errors.Wrapf(model.ErrConflict, "pet of %s at version %d, got %d", pet.UserID, u.version(), pet.Version)
	}
	saved := pet.Clone()
	saved.Version = pet.Version + 1
	u.pet = saved
	return saved.Clone(), nil
}

func (t *memoryTx) GetInventory(_ context.Context, userID string) ([]*model.InventoryItem, error) {
	u := t.user(userID)
	items := make([]*model.InventoryItem, 0, len(u.inventory))
	for _, item := range sortedInventory(u) {
		items = append(items, item.Clone())
	}
	return items, nil
}

func (t *memoryTx) AdjustInventory(_ context.Context, userID, itemID string, delta int) (*model.InventoryItem, error) {
	u := t.touch(userID)
	item, ok := u.inventory[itemID]
	current := 0
	if ok {
		current = item.Quantity
	}
	if current+delta < 0 {
		return nil, errors.Wrapf(model.ErrItemNotAvailable, "%s holds %d of %s", userID, current, itemID)
	}
	if current+delta == 0 {
		delete(u.inventory, itemID)
		return nil, nil
	}
	if !ok {
		item = &model.InventoryItem{UserID: userID, ItemID: itemID}
		u.inventory[itemID] = item
	}
	item.Quantity += delta
	item.UpdatedAt = t.g.clock()
	return item.Clone(), nil
}

func (t *memoryTx) SetEquipped(_ context.Context, userID, itemID string, equipped bool) error {
	u := t.touch(userID)
	item, ok := u.inventory[itemID]
	if !ok {
		return errors.Wrapf(model.ErrItemNotAvailable, "%s does not hold %s", userID, itemID)
	}
	item.Equipped = equipped
	item.UpdatedAt = t.g.clock()
	return nil
}

func (t *memoryTx) ListShopItems(_ context.Context, filter model.ShopFilter) ([]*model.ShopItem, error) {
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	return t.g.listShop(filter), nil
}

func (t *memoryTx) UpsertShopItems(_ context.Context, items []*model.ShopItem) error {
	for _, item := range items {
		c := *item
		t.shop = append(t.shop, &c)
	}
	return nil
}

func (t *memoryTx) GenerateDailyMissions(ctx context.Context, userID string, day time.Time, missions []*model.Mission) ([]*model.Mission, error) {
	u := t.user(userID)
	existing := make(map[string]bool)
	for _, m := range u.sortedMissions(day) {
		existing[m.TemplateID] = true
	}
	for _, m := range missions {
		if existing[m.TemplateID] {
			continue
		}
		u.missions[m.ID] = m.Clone()
		existing[m.TemplateID] = true
		t.dirty[userID] = true
	}
	return t.ListMissions(ctx, userID, day)
}

func (t *memoryTx) ListMissions(_ context.Context, userID string, day time.Time) ([]*model.Mission, error) {
	u := t.user(userID)
	out := make([]*model.Mission, 0, len(u.missions))
	for _, m := range u.sortedMissions(day) {
		out = append(out, m.Clone())
	}
	return out, nil
}

func (t *memoryTx) UpdateMissionProgress(_ context.Context, userID string, day time.Time, action model.ActionType, increment int) ([]*model.Mission, error) {
	u := t.touch(userID)
	var updated []*model.Mission
	for _, m := range u.sortedMissions(day) {
		if m.Type != action || m.Completed {
			continue
		}
		m.Completed = m.Progress+increment >= m.TargetCount
		m.Progress = min(m.Progress+increment, m.TargetCount)
		updated = append(updated, m.Clone())
	}
	return updated, nil
}

func (t *memoryTx) GetMission(_ context.Context, userID, missionID string) (*model.Mission, error) {
	m, ok := t.user(userID).missions[missionID]
	if !ok {
		return nil, errors.Wrapf(model.ErrNotFound, "mission %s", missionID)
	}
	return m.Clone(), nil
}

func (t *memoryTx) ClaimMissionReward(_ context.Context, userID, missionID string) (*model.Mission, error) {
	u := t.touch(userID)
	m, ok := u.missions[missionID]
	switch {
	case !ok:
		return nil, errors.Wrapf(model.ErrNotFound, "mission %s", missionID)
	case m.RewardClaimed:
		return nil, errors.Wrapf(model.ErrAlreadyClaimed, "mission %s", missionID)
	case !m.Completed:
		return nil, errors.Wrapf(model.ErrNotCompleted, "mission %s at %d/%d", missionID, m.Progress, m.TargetCount)
	}
	m.RewardClaimed = true
	return m.Clone(), nil
}

func (t *memoryTx) ClaimDailyReward(_ context.Context, userID string, day time.Time, streak *model.Streak) error {
	u := t.touch(userID)
	if u.claims[day] {
		return errors.Wrapf(model.ErrAlreadyClaimedToday, "%s on %s", userID, day.Format(time.DateOnly))
	}
	u.claims[day] = true
	s := streak.Clone()
	s.UserID = userID
	s.LastClaimDate = day
	u.streak = s
	return nil
}

func (t *memoryTx) GetStreak(_ context.Context, userID string) (*model.Streak, error) {
	u := t.user(userID)
	if u.streak == nil {
		return nil, errors.Wrapf(model.ErrNotFound, "streak of user %s", userID)
	}
	return u.streak.Clone(), nil
}

func (t *memoryTx) RecordTransaction(_ context.Context, tx *model.Transaction) error {
	u := t.touch(tx.UserID)
	c := *tx
	u.transactions = append(u.transactions, &c)
	return nil
}

func (t *memoryTx) RecordActivity(_ context.Context, entry *model.ActivityEntry) error {
	u := t.touch(entry.UserID)
	c := *entry
	u.activities = append(u.activities, &c)
	return nil
}

func (t *memoryTx) ListTransactions(_ context.Context, userID string, limit int) ([]*model.Transaction, error) {
	u := t.user(userID)
	out := make([]*model.Transaction, 0, min(limit, len(u.transactions)))
	for i := len(u.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		c := *u.transactions[i]
		out = append(out, &c)
	}
	return out, nil
}

func (t *memoryTx) TopByTotalXP(_ context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	t.g.mu.Lock()
	entries := make([]*model.LeaderboardEntry, 0, len(t.g.users))
	for userID, u := range t.g.users {
		if u.pet == nil {
			continue
		}
		entries = append(entries, &model.LeaderboardEntry{UserID: userID, Name: u.pet.Name, TotalXP: u.pet.TotalXP})
	}
	t.g.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalXP != entries[j].TotalXP {
			return entries[i].TotalXP > entries[j].TotalXP
		}
		return entries[i].UserID < entries[j].UserID
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i, e := range entries {
		e.Rank = int64(i + 1)
	}
	return entries, nil
}
