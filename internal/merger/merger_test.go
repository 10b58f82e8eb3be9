package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/momomo623/smart-word-completion/internal/domain"
)

func occ(start, end int, kind domain.OccurrenceKind) domain.Occurrence {
	return domain.Occurrence{Start: start, End: end, Kind: kind}
}

func TestMerge_Empty(t *testing.T) {
	assert.Nil(t, Merge(nil))
	assert.Nil(t, Merge([]domain.Occurrence{}))
}

func TestMerge_Overlap(t *testing.T) {
	tests := []struct {
		name     string
		input    []domain.Occurrence
		expected []domain.Occurrence
	}{
		{
			name: "互不重叠保持原样",
			input: []domain.Occurrence{
				occ(10, 14, domain.KindCharacterRun),
				occ(0, 4, domain.KindCharacterRun),
			},
			expected: []domain.Occurrence{
				occ(0, 4, domain.KindCharacterRun),
				occ(10, 14, domain.KindCharacterRun),
			},
		},
		{
			name: "重叠时先接受者胜出",
			input: []domain.Occurrence{
				occ(5, 9, domain.KindCharacterRun),
				occ(0, 8, domain.KindCharacterRun),
			},
			expected: []domain.Occurrence{occ(0, 8, domain.KindCharacterRun)},
		},
		{
			name: "起点相同时更大的区间胜出",
			input: []domain.Occurrence{
				occ(3, 6, domain.KindCharacterRun),
				occ(3, 10, domain.KindCharacterRun),
			},
			expected: []domain.Occurrence{occ(3, 10, domain.KindCharacterRun)},
		},
		{
			name: "起点相同时高优先级检测器即使区间更短也胜出",
			input: []domain.Occurrence{
				occ(5, 12, domain.KindModelDetected),
				occ(5, 10, domain.KindTableCellFill),
			},
			expected: []domain.Occurrence{occ(5, 10, domain.KindTableCellFill)},
		},
		{
			name: "区间相同时按检测器优先级",
			input: []domain.Occurrence{
				occ(2, 8, domain.KindModelDetected),
				occ(2, 8, domain.KindCharacterRun),
			},
			expected: []domain.Occurrence{occ(2, 8, domain.KindCharacterRun)},
		},
		{
			name: "相邻区间不算重叠",
			input: []domain.Occurrence{
				occ(0, 4, domain.KindCharacterRun),
				occ(4, 8, domain.KindUnderlineSpace),
			},
			expected: []domain.Occurrence{
				occ(0, 4, domain.KindCharacterRun),
				occ(4, 8, domain.KindUnderlineSpace),
			},
		},
		{
			name: "同位置的退化区间只保留一个",
			input: []domain.Occurrence{
				occ(0, 0, domain.KindTableCellFill),
				occ(0, 0, domain.KindModelDetected),
			},
			expected: []domain.Occurrence{occ(0, 0, domain.KindTableCellFill)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Merge(tt.input))
		})
	}
}

// TestMerge_ThreeDetectors 三个检测器对同一区域的交叉报告
func TestMerge_ThreeDetectors(t *testing.T) {
	input := []domain.Occurrence{
		occ(0, 6, domain.KindModelDetected),
		occ(0, 6, domain.KindUnderlineSpace),
		occ(2, 4, domain.KindCharacterRun),
		occ(8, 12, domain.KindCharacterRun),
	}
	merged := Merge(input)

	assert.Equal(t, []domain.Occurrence{
		occ(0, 6, domain.KindUnderlineSpace),
		occ(8, 12, domain.KindCharacterRun),
	}, merged)
}

// TestMerge_Deterministic 相同输入（任意顺序）必须得到相同输出
func TestMerge_Deterministic(t *testing.T) {
	a := []domain.Occurrence{
		occ(0, 4, domain.KindCharacterRun),
		occ(2, 6, domain.KindUnderlineSpace),
		occ(8, 10, domain.KindModelDetected),
	}
	b := []domain.Occurrence{a[2], a[0], a[1]}

	assert.Equal(t, Merge(a), Merge(b))
}

// TestMerge_NoOverlapInvariant 输出中任意两个占位符不得重叠
func TestMerge_NoOverlapInvariant(t *testing.T) {
	input := []domain.Occurrence{
		occ(0, 10, domain.KindModelDetected),
		occ(3, 5, domain.KindCharacterRun),
		occ(5, 12, domain.KindUnderlineSpace),
		occ(11, 15, domain.KindCharacterRun),
		occ(14, 20, domain.KindModelDetected),
	}
	merged := Merge(input)

	for i := 1; i < len(merged); i++ {
		assert.GreaterOrEqual(t, merged[i].Start, merged[i-1].End,
			"占位符 %d 与前一个重叠", i)
	}
}
