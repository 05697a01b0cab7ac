package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/blues/fms/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Project{},
		&model.Submission{},
		&model.Skill{},
		&model.UserSkill{},
		&model.Balance{},
	))

	return New(db)
}

func TestFindByPullRequest_PicksNewest(t *testing.T) {
	s := newTestStore(t)

	older := &model.Submission{
		ProjectID: 1, FreelancerEns: "a.eth", FreelancerAddress: "0xA",
		RepoOwner: "acme", RepoName: "dapp", PrNumber: 7,
		Status: model.SubmissionStatusRejected,
	}
	older.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, s.CreateSubmission(older))

	newer := &model.Submission{
		ProjectID: 1, FreelancerEns: "b.eth", FreelancerAddress: "0xB",
		RepoOwner: "acme", RepoName: "dapp", PrNumber: 7,
		Status: model.SubmissionStatusPending,
	}
	newer.CreatedAt = time.Now()
	require.NoError(t, s.CreateSubmission(newer))

	found, err := s.FindByPullRequest("acme", "dapp", 7)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, newer.ID, found.ID)
}

func TestFindByPullRequest_NoMatch(t *testing.T) {
	s := newTestStore(t)

	found, err := s.FindByPullRequest("acme", "dapp", 7)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFindByProjectAndFreelancer(t *testing.T) {
	s := newTestStore(t)

	sub := &model.Submission{
		ProjectID: 3, FreelancerEns: "dev.eth", FreelancerAddress: "0xDev",
		RepoOwner: "acme", RepoName: "dapp", PrNumber: 1,
	}
	require.NoError(t, s.CreateSubmission(sub))

	found, err := s.FindByProjectAndFreelancer(3, "0xDev")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, sub.ID, found.ID)

	missing, err := s.FindByProjectAndFreelancer(3, "0xOther")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMarkSubmissionProcessing_Guard(t *testing.T) {
	s := newTestStore(t)

	sub := &model.Submission{
		ProjectID: 1, FreelancerEns: "dev.eth", FreelancerAddress: "0xDev",
		RepoOwner: "acme", RepoName: "dapp", PrNumber: 1,
		Status: model.SubmissionStatusPending,
	}
	require.NoError(t, s.CreateSubmission(sub))

	// 第一次抢占成功
	won, err := s.MarkSubmissionProcessing(sub.ID)
	require.NoError(t, err)
	assert.True(t, won)

	// 并发重投递抢不到
	won, err = s.MarkSubmissionProcessing(sub.ID)
	require.NoError(t, err)
	assert.False(t, won)

	// award_failed 可以再次抢占
	require.NoError(t, s.UpdateSubmissionStatus(sub.ID, model.SubmissionStatusAwardFailed))
	won, err = s.MarkSubmissionProcessing(sub.ID)
	require.NoError(t, err)
	assert.True(t, won)

	// awarded 是终态，抢不到
	require.NoError(t, s.UpdateSubmissionStatus(sub.ID, model.SubmissionStatusAwarded))
	won, err = s.MarkSubmissionProcessing(sub.ID)
	require.NoError(t, err)
	assert.False(t, won)
}

func TestCloseProject_OnlyOnce(t *testing.T) {
	s := newTestStore(t)

	project := &model.Project{
		Title: "p1", OwnerEns: "acme.eth", OwnerAddress: "0xOwner",
		TokenReward: 10, Status: model.ProjectStatusOpen,
	}
	require.NoError(t, s.CreateProject(project))

	require.NoError(t, s.CloseProject(project.ID, "dev.eth", "0xDev"))

	got, err := s.GetProject(project.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusClosed, got.Status)
	require.NotNil(t, got.AssignedFreelancerEns)
	assert.Equal(t, "dev.eth", *got.AssignedFreelancerEns)
	require.NotNil(t, got.AssignedFreelancerAddress)
	assert.Equal(t, "0xDev", *got.AssignedFreelancerAddress)

	// open -> closed 只发生一次
	assert.Error(t, s.CloseProject(project.ID, "other.eth", "0xOther"))
}

func TestAddBalance_Upsert(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddBalance("0xDev", 10))
	require.NoError(t, s.AddBalance("0xDev", 5))
	require.NoError(t, s.AddBalance("0xOther", 3))

	amount, err := s.GetBalance("0xDev")
	require.NoError(t, err)
	assert.Equal(t, int64(15), amount)

	amount, err = s.GetBalance("0xOther")
	require.NoError(t, err)
	assert.Equal(t, int64(3), amount)

	amount, err = s.GetBalance("0xNobody")
	require.NoError(t, err)
	assert.Zero(t, amount)
}

func TestGetOrCreateSkill_CaseInsensitive(t *testing.T) {
	s := newTestStore(t)

	first, err := s.GetOrCreateSkill("Solidity")
	require.NoError(t, err)

	second, err := s.GetOrCreateSkill("solidity")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Solidity", second.Name)
}

func TestGrantSkill_DuplicateIsNoOp(t *testing.T) {
	s := newTestStore(t)

	skill, err := s.GetOrCreateSkill("react")
	require.NoError(t, err)

	granted, err := s.GrantSkill("0xDev", skill.ID)
	require.NoError(t, err)
	assert.True(t, granted)

	// 重复授予不是错误，报告"已持有"
	granted, err = s.GrantSkill("0xDev", skill.ID)
	require.NoError(t, err)
	assert.False(t, granted)

	count, err := s.CountUserSkills("0xDev")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestListAwardedWithoutTxHash(t *testing.T) {
	s := newTestStore(t)

	reconciled := &model.Submission{
		ProjectID: 1, FreelancerEns: "a.eth", FreelancerAddress: "0xA",
		RepoOwner: "acme", RepoName: "dapp", PrNumber: 1,
		Status: model.SubmissionStatusAwarded, TxHash: "0xdone",
	}
	require.NoError(t, s.CreateSubmission(reconciled))

	missing := &model.Submission{
		ProjectID: 2, FreelancerEns: "b.eth", FreelancerAddress: "0xB",
		RepoOwner: "acme", RepoName: "dapp", PrNumber: 2,
		Status: model.SubmissionStatusAwarded,
	}
	require.NoError(t, s.CreateSubmission(missing))

	pending := &model.Submission{
		ProjectID: 3, FreelancerEns: "c.eth", FreelancerAddress: "0xC",
		RepoOwner: "acme", RepoName: "dapp", PrNumber: 3,
		Status: model.SubmissionStatusPending,
	}
	require.NoError(t, s.CreateSubmission(pending))

	subs, err := s.ListAwardedWithoutTxHash()
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, missing.ID, subs[0].ID)
}

func TestSetSubmissionTxHashAndMerged(t *testing.T) {
	s := newTestStore(t)

	sub := &model.Submission{
		ProjectID: 1, FreelancerEns: "a.eth", FreelancerAddress: "0xA",
		RepoOwner: "acme", RepoName: "dapp", PrNumber: 1,
	}
	require.NoError(t, s.CreateSubmission(sub))

	require.NoError(t, s.SetSubmissionTxHash(sub.ID, "0xfeed"))
	require.NoError(t, s.MarkSubmissionMerged(sub.ID))

	found, err := s.FindByPullRequest("acme", "dapp", 1)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "0xfeed", found.TxHash)
	assert.True(t, found.Merged)
}
