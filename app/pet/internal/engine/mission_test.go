package engine

import (
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/petlink/app/pet/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missionKey(ms []*model.Mission) []string {
	keys := make([]string, 0, len(ms))
	for _, m := range ms {
		keys = append(keys, m.ID+"/"+m.TemplateID)
	}
	return keys
}

func TestGenerateDailyMissionsDeterministic(t *testing.T) {
	e := newTestEngine(t)
	day := e.Day(testNow)

	a := e.GenerateDailyMissions("user-1", day, testNow)
	b := e.GenerateDailyMissions("user-1", day, testNow.Add(5*time.Hour))
	require.Len(t, a, 3)
	assert.Equal(t, missionKey(a), missionKey(b))

	seen := make(map[string]bool)
	for _, m := range a {
		assert.False(t, seen[m.TemplateID], "duplicate template %s", m.TemplateID)
		seen[m.TemplateID] = true
		assert.Equal(t, day, m.AssignedDate)
		assert.Equal(t, 0, m.Progress)
		assert.Equal(t, model.MissionAssigned, m.State())
	}

	// 不同日期的任务 id 不同，组合也会变化
	distinct := make(map[string]bool)
	for i := 1; i <= 30; i++ {
		ms := e.GenerateDailyMissions("user-1", day.AddDate(0, 0, i), testNow)
		assert.NotEqual(t, a[0].ID, ms[0].ID)
		distinct[ms[0].TemplateID+ms[1].TemplateID+ms[2].TemplateID] = true
	}
	assert.Greater(t, len(distinct), 1)
}

func TestCareCompletesMission(t *testing.T) {
	e := newTestEngine(t)
	agg := newTestAggregate(e)
	agg.Pet.CoinBalance = 100
	agg.Missions = []*model.Mission{
		{ID: "m-feed", TemplateID: "feed_3", Type: model.ActionFeed, TargetCount: 3, Progress: 2,
			RewardCoins: 10, RewardXP: 20, AssignedDate: agg.Today},
		{ID: "m-play", TemplateID: "play_3", Type: model.ActionPlay, TargetCount: 3,
			RewardCoins: 10, RewardXP: 25, AssignedDate: agg.Today},
	}

	out, err := e.Care(agg, model.ActionFeed, "", testNow)
	require.NoError(t, err)

	feed := agg.Mission("m-feed")
	assert.Equal(t, 3, feed.Progress)
	assert.True(t, feed.Completed)
	assert.Equal(t, model.MissionCompleted, feed.State())
	assert.Equal(t, 0, agg.Mission("m-play").Progress)

	require.Len(t, out.CompletedMissions, 1)
	assert.Equal(t, "m-feed", out.CompletedMissions[0].ID)
	var completedEvents int
	for _, ev := range out.Events {
		if ev.Type == model.EventMissionCompleted {
			completedEvents++
		}
	}
	assert.Equal(t, 1, completedEvents)

	// 已完成的任务进度不再增长
	out, err = e.Care(agg, model.ActionFeed, "", testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, feed.Progress)
	assert.Empty(t, out.CompletedMissions)
	assert.Empty(t, out.MissionProgress)
}

func TestUpdateProgress(t *testing.T) {
	e := newTestEngine(t)
	today := e.Day(testNow)
	missions := []*model.Mission{
		{ID: "a", Type: model.ActionClean, TargetCount: 2, AssignedDate: today},
		{ID: "b", Type: model.ActionClean, TargetCount: 2, AssignedDate: today.AddDate(0, 0, -1)},
	}

	updated, completed := UpdateProgress(missions, model.ActionClean, 5, today)
	require.Len(t, updated, 1)
	require.Len(t, completed, 1)
	assert.Equal(t, 2, missions[0].Progress)
	assert.Equal(t, 0, missions[1].Progress)

	updated, completed = UpdateProgress(missions, model.ActionClean, 0, today)
	assert.Nil(t, updated)
	assert.Nil(t, completed)
}

func TestClaimMission(t *testing.T) {
	e := newTestEngine(t)
	agg := newTestAggregate(e)
	agg.Missions = []*model.Mission{
		{ID: "m1", TemplateID: "feed_3", Type: model.ActionFeed, TargetCount: 3, Progress: 1,
			RewardCoins: 10, RewardXP: 20, AssignedDate: agg.Today},
	}

	_, err := e.ClaimMission(agg, "missing", testNow)
	assert.True(t, errors.Is(err, model.ErrValidation))

	_, err = e.ClaimMission(agg, "m1", testNow)
	assert.True(t, errors.Is(err, model.ErrNotCompleted))

	m := agg.Mission("m1")
	m.Progress, m.Completed = 3, true
	out, err := e.ClaimMission(agg, "m1", testNow)
	require.NoError(t, err)
	assert.Equal(t, "m1", out.ClaimedMission)
	assert.Equal(t, int64(10), agg.Pet.CoinBalance)
	assert.Equal(t, int64(20), agg.Pet.XP)
	assert.Equal(t, model.MissionClaimed, m.State())
	require.Len(t, out.Transactions, 1)
	assert.Equal(t, "mission:feed_3", out.Transactions[0].Reason)

	_, err = e.ClaimMission(agg, "m1", testNow)
	assert.True(t, errors.Is(err, model.ErrAlreadyClaimed))
	assert.Equal(t, int64(10), agg.Pet.CoinBalance)
}

func TestClaimCarriedMission(t *testing.T) {
	e := newTestEngine(t)
	agg := newTestAggregate(e)
	yesterday := agg.Today.AddDate(0, 0, -1)
	agg.Carried = []*model.Mission{
		{ID: "old", TemplateID: "play_2", Type: model.ActionPlay, TargetCount: 2, Progress: 2, Completed: true,
			RewardCoins: 6, AssignedDate: yesterday},
	}

	updated, _ := UpdateProgress(agg.Carried, model.ActionPlay, 1, agg.Today)
	assert.Empty(t, updated)

	out, err := e.ClaimMission(agg, "old", testNow)
	require.NoError(t, err)
	assert.Equal(t, "old", out.ClaimedMission)
	assert.Equal(t, int64(6), agg.Pet.CoinBalance)

	_, err = e.ClaimMission(agg, "old", testNow)
	assert.True(t, errors.Is(err, model.ErrAlreadyClaimed))
}
