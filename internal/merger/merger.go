// Package merger 汇总多个检测器的占位符报告，去重并消除重叠。
package merger

import (
	"sort"

	"github.com/momomo623/smart-word-completion/internal/domain"
)

// Merge 将同一容器内所有检测器报告的占位符合并为有序且互不重叠的列表。
//
// 排序规则：Start 升序；Start 相同时按检测器优先级
// （表格 > 字符 > 下划线空格 > 大模型），高优先级检测器的报告
// 即使区间更短也胜出；同一优先级内 End 降序（更大的区间更具体）。
// 随后从左到右扫描，与最近一个已接受占位符重叠的一律丢弃（先接受者胜出）。
// 给定相同的检测器输出，结果是确定的。
func Merge(occs []domain.Occurrence) []domain.Occurrence {
	if len(occs) == 0 {
		return nil
	}
	sorted := make([]domain.Occurrence, len(occs))
	copy(sorted, occs)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.Kind.Priority() != b.Kind.Priority() {
			return a.Kind.Priority() < b.Kind.Priority()
		}
		return a.End > b.End
	})

	result := make([]domain.Occurrence, 0, len(sorted))
	prevEnd := -1
	for _, occ := range sorted {
		if len(result) > 0 && occ.Start < prevEnd {
			continue // 与已接受占位符重叠，丢弃
		}
		// 空单元格占位符使用退化区间 [0,0)，同一容器只保留一个
		if len(result) > 0 && occ.Start == occ.End && occ.Start == prevEnd && result[len(result)-1].Start == result[len(result)-1].End {
			continue
		}
		result = append(result, occ)
		prevEnd = occ.End
	}
	return result
}
