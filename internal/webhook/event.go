package webhook

import (
	"encoding/json"
	"regexp"
	"strconv"
)

// MergedPR 合并事件的统一内部表示
type MergedPR struct {
	RepoOwner string
	RepoName  string
	PrNumber  int
}

// pull_request 事件载荷
type pullRequestPayload struct {
	Action      string `json:"action"`
	PullRequest struct {
		Number int  `json:"number"`
		Merged bool `json:"merged"`
	} `json:"pull_request"`
	Repository repositoryPayload `json:"repository"`
}

// push 事件载荷，合并信息编码在head_commit的提交信息里
type pushPayload struct {
	HeadCommit struct {
		Message string `json:"message"`
	} `json:"head_commit"`
	Repository repositoryPayload `json:"repository"`
}

type repositoryPayload struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
		Name  string `json:"name"`
	} `json:"owner"`
}

var mergeCommitPattern = regexp.MustCompile(`^Merge pull request #(\d+)`)

// ClassifyMergeEvent 判断webhook载荷是否表示"PR已合并"
// 上游根据配置可能投递两种形态：pull_request关闭事件，或合并提交的push事件，
// 两种形态统一归一化成 MergedPR；无法识别时返回 false（不是错误）
func ClassifyMergeEvent(eventType string, body []byte) (*MergedPR, bool) {
	switch eventType {
	case "pull_request":
		var payload pullRequestPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, false
		}
		if payload.Action != "closed" || !payload.PullRequest.Merged {
			return nil, false
		}
		owner := payload.Repository.Owner.Login
		if owner == "" {
			owner = payload.Repository.Owner.Name
		}
		if owner == "" || payload.Repository.Name == "" || payload.PullRequest.Number == 0 {
			return nil, false
		}
		return &MergedPR{
			RepoOwner: owner,
			RepoName:  payload.Repository.Name,
			PrNumber:  payload.PullRequest.Number,
		}, true

	case "push":
		var payload pushPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, false
		}
		matches := mergeCommitPattern.FindStringSubmatch(payload.HeadCommit.Message)
		if matches == nil {
			return nil, false
		}
		number, err := strconv.Atoi(matches[1])
		if err != nil {
			return nil, false
		}
		owner := payload.Repository.Owner.Login
		if owner == "" {
			owner = payload.Repository.Owner.Name
		}
		if owner == "" || payload.Repository.Name == "" {
			return nil, false
		}
		return &MergedPR{
			RepoOwner: owner,
			RepoName:  payload.Repository.Name,
			PrNumber:  number,
		}, true

	default:
		return nil, false
	}
}
