// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sections

import (
	"strings"
	"unicode"

	"github.com/pdiddy/paperminer/pkg/types"
)

// synonymTable maps each canonical section to its recognized heading
// aliases, in normalized form (lowercase, no numbering, half-width
// punctuation). The table is package state loaded once and never mutated;
// resolution order follows types.CanonicalOrder.
//
// The vocabulary mirrors the heading variants observed across MinerU
// output from engineering and natural-science journals, including the
// common Chinese forms.
var synonymTable = map[types.CanonicalSection][]string{
	types.SectionAbstract: {
		"abstract",
		"executive summary",
		"摘要",
	},
	types.SectionIntroduction: {
		"introduction",
		"background and motivation",
		"background and related work",
		"background",
		"motivation",
		"overview",
		"related work",
		"related works",
		"literature review",
		"preliminaries",
		"problem statement",
		"problem definition",
		"state of the art",
		"prior work",
		"previous work",
		"theoretical background",
		"context",
		"scope",
		"objective",
		"objectives",
		"aims and objectives",
		"引言", "绪论", "前言", "背景", "研究背景", "相关工作", "文献综述", "理论基础", "预备知识",
	},
	types.SectionMethods: {
		"materials and methods",
		"methods",
		"method",
		"methodology",
		"materials",
		"experimental methods",
		"experimental procedures",
		"experimental section",
		"experimental setup",
		"experimental design",
		"experimental",
		"procedure",
		"procedures",
		"simulation setup",
		"simulation model",
		"simulation framework",
		"simulation environment",
		"simulation",
		"numerical simulation",
		"numerical methods",
		"model description",
		"model formulation",
		"model development",
		"model construction",
		"models",
		"model",
		"modeling",
		"modelling",
		"mathematical model",
		"mathematical formulation",
		"mathematical framework",
		"theoretical model",
		"theoretical framework",
		"theoretical formulation",
		"implementation",
		"system design",
		"system architecture",
		"system implementation",
		"system description",
		"design",
		"architecture",
		"framework",
		"algorithm",
		"algorithms",
		"approach",
		"proposed method",
		"proposed approach",
		"proposed algorithm",
		"proposed model",
		"proposed system",
		"proposed framework",
		"our method",
		"our approach",
		"the proposed method",
		"the proposed approach",
		"technical approach",
		"data collection",
		"data acquisition",
		"data preparation",
		"data processing",
		"dataset",
		"sample preparation",
		"classification",
		"problem formulation",
		"formulation",
		"computational methods",
		"方法", "实验方法", "研究方法", "材料与方法", "实验设计", "仿真", "数值仿真", "模型", "建模", "数学模型", "系统设计", "算法", "实现", "计算方法",
	},
	types.SectionResults: {
		"results and discussion",
		"results and discussions",
		"result and discussion",
		"results",
		"result",
		"experimental results",
		"simulation results",
		"numerical results",
		"findings",
		"observations",
		"discussion",
		"discussions",
		"evaluation",
		"performance evaluation",
		"performance analysis",
		"performance assessment",
		"performance",
		"experimental evaluation",
		"experimental analysis",
		"experimental validation",
		"data analysis",
		"statistical analysis",
		"analysis",
		"verification",
		"validation",
		"model verification",
		"model validation",
		"case study",
		"case studies",
		"application",
		"applications",
		"experiments",
		"experiment",
		"comparison",
		"comparative analysis",
		"comparative study",
		"comparative evaluation",
		"benchmark",
		"benchmarking",
		"结果", "讨论", "结果与讨论", "实验结果", "仿真结果", "分析", "性能分析", "数据分析", "评估", "验证", "案例研究", "应用", "对比分析",
	},
	types.SectionConclusion: {
		"conclusions and future work",
		"conclusions and outlook",
		"conclusion and future work",
		"conclusions",
		"conclusion",
		"concluding remarks",
		"summary and conclusions",
		"summary and conclusion",
		"summary and future work",
		"summary and outlook",
		"summary",
		"final remarks",
		"closing remarks",
		"future work",
		"future works",
		"future directions",
		"future research",
		"future perspectives",
		"outlook",
		"perspectives",
		"contributions",
		"implications",
		"结论", "总结", "结束语", "展望", "未来工作", "总结与展望", "结论与展望",
	},
}

// boundaryHeadings are headings that close the open section without
// opening a new one: back matter that must never be absorbed into a
// canonical body.
var boundaryHeadings = []string{
	"acknowledgement",
	"acknowledgements",
	"acknowledgment",
	"acknowledgments",
	"funding",
	"declaration",
	"declarations",
	"references",
	"reference",
	"appendix",
	"appendices",
	"bibliography",
	"competing interests",
	"competing interest",
	"conflict of interest",
	"conflicts of interest",
	"author contributions",
	"author contribution",
	"data availability",
	"availability of data and materials",
	"ethics statement",
	"ethics declarations",
	"consent for publication",
	"consent to participate",
	"supplementary material",
	"supplementary materials",
	"supplementary information",
	"abbreviations",
	"nomenclature",
	"glossary",
	"article info",
	"致谢", "参考文献", "附录", "资助", "基金", "利益冲突", "作者贡献", "伦理声明", "补充材料", "缩略语",
}

// resolve maps a normalized heading to its canonical section using
// case-insensitive exact-or-prefix alias matching. The longest matching
// alias wins; ties resolve in canonical order. The second return is false
// for headings outside the vocabulary.
func resolve(normalized string) (types.CanonicalSection, bool) {
	var (
		best    types.CanonicalSection
		bestLen = -1
	)
	for _, canon := range types.CanonicalOrder() {
		for _, alias := range synonymTable[canon] {
			if !aliasMatches(normalized, alias) {
				continue
			}
			if len(alias) > bestLen {
				best = canon
				bestLen = len(alias)
			}
		}
	}
	if bestLen < 0 {
		return "", false
	}
	return best, true
}

// isBoundary reports whether a normalized heading is back matter that
// terminates section bodies.
func isBoundary(normalized string) bool {
	for _, alias := range boundaryHeadings {
		if aliasMatches(normalized, alias) {
			return true
		}
	}
	return false
}

// isExactHeading reports whether a normalized heading is, in full, one of
// the vocabulary aliases or boundary headings. Prefix matches do not count.
func isExactHeading(normalized string) bool {
	for _, canon := range types.CanonicalOrder() {
		for _, alias := range synonymTable[canon] {
			if normalized == alias {
				return true
			}
		}
	}
	for _, alias := range boundaryHeadings {
		if normalized == alias {
			return true
		}
	}
	return false
}

// aliasMatches reports whether heading equals alias or starts with alias
// followed by a non-letter rune. The boundary check keeps "method" from
// claiming "methodical review" while still letting "results" claim
// "results: case study".
func aliasMatches(heading, alias string) bool {
	if heading == alias {
		return true
	}
	if !strings.HasPrefix(heading, alias) {
		return false
	}
	rest := []rune(heading[len(alias):])
	return len(rest) > 0 && !unicode.IsLetter(rest[0])
}
