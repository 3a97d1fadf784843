// pkg/engine/condition.go
package engine

import (
	"fmt"
	"strings"

	"InvestRadar/pkg/model"
)

// evaluateConditions 评估 THRESHOLD / MULTI_CONDITION 规则。
// 组内条件按组声明的 AND/OR 组合，组与组之间为 OR：任意一组成立即触发，
// 成立组内满足的条件描述汇入输出列表，未成立组不贡献任何描述。
func evaluateConditions(alert *model.Alert, market model.MarketData, news *model.NewsData) (evalOutcome, error) {
	triggered := false
	var met []string

	for _, group := range alert.ConditionGroups {
		results := make([]bool, 0, len(group.Conditions))
		groupMet := make([]string, 0, len(group.Conditions))

		for _, cond := range group.Conditions {
			actual := extractField(cond.Field, market, news)
			if actual == nil {
				// 数据缺失的条件视为不满足
				results = append(results, false)
				continue
			}

			ok := compareValues(cond.Operator, *actual, cond.Value)
			results = append(results, ok)
			if ok {
				groupMet = append(groupMet, describeCondition(cond, *actual))
			}
		}

		if combineResults(group.Logic, results) {
			triggered = true
			met = append(met, groupMet...)
		}
	}

	reason := "No conditions met"
	if triggered {
		reason = strings.Join(met, ", ")
	}

	return evalOutcome{triggered: triggered, reason: reason, conditionsMet: met}, nil
}

// combineResults 按组逻辑合并条件结果，AND 要求全部成立，OR 要求任一成立
func combineResults(logic model.GroupLogic, results []bool) bool {
	if logic == model.LogicOr {
		for _, r := range results {
			if r {
				return true
			}
		}
		return false
	}

	for _, r := range results {
		if !r {
			return false
		}
	}
	return true
}

// describeCondition 生成已满足条件的可读描述
func describeCondition(cond model.Condition, actual float64) string {
	return fmt.Sprintf("%s %s %.2f (current: %.2f)", cond.Field, cond.Operator, cond.Value, actual)
}
