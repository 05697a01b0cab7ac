package logic

import "strings"

// ParseSkillList 解析逗号分隔的技能列表：逐项去空白，丢弃空项
// 输入是宽松校验的外部格式，例如 "solidity, react" 或 "go,,  rust "
func ParseSkillList(raw string) []string {
	if raw == "" {
		return nil
	}

	var skills []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		skills = append(skills, name)
	}
	return skills
}
