package engine

import (
	"math/rand/v2"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/lk2023060901/petlink/app/pet/internal/gameconfig"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
)

const dateLayout = "2006-01-02"

// missionNamespace 任务 id 命名空间，同一 (用户, 日期, 模板) 在任意节点生成相同 id
var missionNamespace = uuid.MustParse("5b0c9a4e-8f7e-4d0c-9a51-6f1f2d7c3e10")

// missionSeed 由用户与日期确定的随机种子
func missionSeed(userID string, day time.Time) uint64 {
	return xxhash.Sum64String(userID + "|" + day.Format(dateLayout))
}

// GenerateDailyMissions 生成当日任务集合，结果只取决于 (用户, 日期, 模板表)
func (e *Engine) GenerateDailyMissions(userID string, day time.Time, now time.Time) []*model.Mission {
	templates := append([]gameconfig.MissionTemplate(nil), e.Tables().MissionTemplates...)
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })

	seed := missionSeed(userID, day)
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	r.Shuffle(len(templates), func(i, j int) { templates[i], templates[j] = templates[j], templates[i] })

	n := e.config.MissionsPerDay
	if n > len(templates) {
		n = len(templates)
	}
	missions := make([]*model.Mission, 0, n)
	for _, tpl := range templates[:n] {
		missions = append(missions, &model.Mission{
			ID:           uuid.NewSHA1(missionNamespace, []byte(userID+"|"+day.Format(dateLayout)+"|"+tpl.ID)).String(),
			UserID:       userID,
			TemplateID:   tpl.ID,
			Type:         tpl.Type,
			Title:        tpl.Title,
			TargetCount:  tpl.Target,
			RewardCoins:  tpl.RewardCoins,
			RewardXP:     tpl.RewardXP,
			AssignedDate: day,
			CreatedAt:    now,
		})
	}
	return missions
}

// UpdateProgress 推进匹配类型的当日任务，进度不超过目标，返回本次变化与本次完成的任务
func UpdateProgress(missions []*model.Mission, action model.ActionType, increment int, day time.Time) (updated, completed []*model.Mission) {
	if increment <= 0 {
		return nil, nil
	}
	for _, m := range missions {
		if m.Type != action || m.Completed || !m.AssignedDate.Equal(day) {
			continue
		}
		m.Progress += increment
		if m.Progress >= m.TargetCount {
			m.Progress = m.TargetCount
			m.Completed = true
			completed = append(completed, m)
		}
		updated = append(updated, m)
	}
	return updated, completed
}

// progressMissions 推进任务并记录完成事件
func (e *Engine) progressMissions(out *Outcome, agg *Aggregate, action model.ActionType, increment int, now time.Time) {
	updated, completed := UpdateProgress(agg.Missions, action, increment, agg.Today)
	if len(updated) == 0 {
		return
	}
	out.MissionProgress = append(out.MissionProgress, MissionProgress{Action: action, Increment: increment})
	for _, m := range completed {
		out.CompletedMissions = append(out.CompletedMissions, m)
		out.emit(agg.Pet.UserID, model.EventMissionCompleted, now, m.Clone())
	}
}

// ClaimMission 领取任务奖励
func (e *Engine) ClaimMission(agg *Aggregate, missionID string, now time.Time) (*Outcome, error) {
	m := agg.Mission(missionID)
	if m == nil {
		return nil, model.Validationf("mission %q not found", missionID)
	}
	if !m.Completed {
		return nil, errors.Wrapf(model.ErrNotCompleted, "mission %q at %d/%d", missionID, m.Progress, m.TargetCount)
	}
	if m.RewardClaimed {
		return nil, errors.Wrapf(model.ErrAlreadyClaimed, "mission %q", missionID)
	}

	pet := agg.Pet
	e.CatchUp(pet, now)
	m.RewardClaimed = true

	out := &Outcome{ClaimedMission: m.ID}
	if m.RewardCoins > 0 {
		earn(out, pet, m.RewardCoins, model.TxEarn, "mission:"+m.TemplateID, now)
	}
	out.emit(pet.UserID, model.EventMissionClaimed, now, model.MissionClaimedPayload{
		MissionID: m.ID,
		Coins:     m.RewardCoins,
		XP:        m.RewardXP,
	})
	e.grantXP(out, pet, m.RewardXP, now)
	pet.UpdatedAt = now
	return out, nil
}
