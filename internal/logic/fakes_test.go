package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/blues/fms/internal/model"
)

// 端口的内存实现，结算逻辑的测试替身

type fakeSubmissionStore struct {
	subs            map[int64]*model.Submission
	findErr         error
	statusErr       error
	processingCalls int
}

func newFakeSubmissionStore(subs ...*model.Submission) *fakeSubmissionStore {
	s := &fakeSubmissionStore{subs: make(map[int64]*model.Submission)}
	for _, sub := range subs {
		s.subs[sub.ID] = sub
	}
	return s
}

func (s *fakeSubmissionStore) FindByPullRequest(owner, repo string, number int) (*model.Submission, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	var latest *model.Submission
	for _, sub := range s.subs {
		if sub.RepoOwner != owner || sub.RepoName != repo || sub.PrNumber != number {
			continue
		}
		if latest == nil || sub.CreatedAt.After(latest.CreatedAt) {
			latest = sub
		}
	}
	return latest, nil
}

func (s *fakeSubmissionStore) FindByProjectAndFreelancer(projectID int64, freelancerAddress string) (*model.Submission, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	for _, sub := range s.subs {
		if sub.ProjectID == projectID && sub.FreelancerAddress == freelancerAddress {
			return sub, nil
		}
	}
	return nil, nil
}

func (s *fakeSubmissionStore) MarkSubmissionProcessing(id int64) (bool, error) {
	s.processingCalls++
	sub, ok := s.subs[id]
	if !ok {
		return false, nil
	}
	if sub.Status != model.SubmissionStatusPending && sub.Status != model.SubmissionStatusAwardFailed {
		return false, nil
	}
	sub.Status = model.SubmissionStatusProcessing
	return true, nil
}

func (s *fakeSubmissionStore) UpdateSubmissionStatus(id int64, status model.SubmissionStatus) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	if sub, ok := s.subs[id]; ok {
		sub.Status = status
	}
	return nil
}

func (s *fakeSubmissionStore) SetSubmissionTxHash(id int64, txHash string) error {
	if sub, ok := s.subs[id]; ok {
		sub.TxHash = txHash
	}
	return nil
}

func (s *fakeSubmissionStore) MarkSubmissionMerged(id int64) error {
	if sub, ok := s.subs[id]; ok {
		sub.Merged = true
	}
	return nil
}

func (s *fakeSubmissionStore) ListAwardedWithoutTxHash() ([]model.Submission, error) {
	var out []model.Submission
	for _, sub := range s.subs {
		if sub.Status == model.SubmissionStatusAwarded && sub.TxHash == "" {
			out = append(out, *sub)
		}
	}
	return out, nil
}

type fakeProjectStore struct {
	projects map[int64]*model.Project
	closeErr error
}

func newFakeProjectStore(projects ...*model.Project) *fakeProjectStore {
	s := &fakeProjectStore{projects: make(map[int64]*model.Project)}
	for _, p := range projects {
		s.projects[p.ID] = p
	}
	return s
}

func (s *fakeProjectStore) GetProject(id int64) (*model.Project, error) {
	return s.projects[id], nil
}

func (s *fakeProjectStore) CloseProject(id int64, freelancerEns, freelancerAddress string) error {
	if s.closeErr != nil {
		return s.closeErr
	}
	p, ok := s.projects[id]
	if !ok || p.Status != model.ProjectStatusOpen {
		return errors.New("project missing or not open")
	}
	p.Status = model.ProjectStatusClosed
	p.AssignedFreelancerEns = &freelancerEns
	p.AssignedFreelancerAddress = &freelancerAddress
	return nil
}

type fakeAwardStore struct {
	balances    map[string]int64
	skills      map[string]int64 // 小写技能名 -> id
	grants      map[string]bool  // 地址+技能id
	nextSkillID int64
	balanceErr  error
	grantErr    error
}

func newFakeAwardStore() *fakeAwardStore {
	return &fakeAwardStore{
		balances:    make(map[string]int64),
		skills:      make(map[string]int64),
		grants:      make(map[string]bool),
		nextSkillID: 1,
	}
}

func (s *fakeAwardStore) AddBalance(walletAddress string, amount int64) error {
	if s.balanceErr != nil {
		return s.balanceErr
	}
	s.balances[walletAddress] += amount
	return nil
}

func (s *fakeAwardStore) GetOrCreateSkill(name string) (*model.Skill, error) {
	key := strings.ToLower(name)
	if id, ok := s.skills[key]; ok {
		return &model.Skill{ID: id, Name: name}, nil
	}
	id := s.nextSkillID
	s.nextSkillID++
	s.skills[key] = id
	return &model.Skill{ID: id, Name: name}, nil
}

func (s *fakeAwardStore) GrantSkill(walletAddress string, skillID int64) (bool, error) {
	if s.grantErr != nil {
		return false, s.grantErr
	}
	key := fmt.Sprintf("%s/%d", walletAddress, skillID)
	if s.grants[key] {
		return false, nil
	}
	s.grants[key] = true
	return true, nil
}

type fakeLedger struct {
	txHash string
	err    error
	calls  int
}

func (l *fakeLedger) ApproveSubmission(ctx context.Context, freelancerAddress string, chainSubmissionID int64) (string, error) {
	l.calls++
	if l.err != nil {
		return "", l.err
	}
	return l.txHash, nil
}
