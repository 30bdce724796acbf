// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report defines the fixed section layout of a whistleblowing report
// draft. The layout is consumed verbatim by prompt assembly; section IDs are
// stable and referenced by name, so they must never be renamed.
package report

import (
	"fmt"
	"strings"
)

// Section IDs. Stable identifiers referenced by prompts and front-ends.
const (
	SectionType       = "type"
	SectionSummary    = "summary"
	SectionTimeframe  = "timeframe"
	SectionEvidence   = "evidence"
	SectionRegulation = "regulation"
	SectionDiscovery  = "discovery"
	SectionNotes      = "notes"
)

// Section is one heading of the report form.
type Section struct {
	// ID is the stable identifier.
	ID string `json:"id" yaml:"id"`

	// Label is the heading shown in the draft, e.g. "신고 유형".
	Label string `json:"label" yaml:"label"`

	// Guidance tells the drafter what belongs under the heading.
	Guidance string `json:"guidance" yaml:"guidance"`
}

var sections = [...]Section{
	{ID: SectionType, Label: "신고 유형", Guidance: "핵심 위반 유형"},
	{ID: SectionSummary, Label: "사건 개요", Guidance: "2~3문장으로 요약"},
	{ID: SectionTimeframe, Label: "발생 시기", Guidance: "대략적 시기"},
	{ID: SectionEvidence, Label: "관련 정황 및 증거", Guidance: "신고자가 언급한 정황/증거를 구체적으로 정리"},
	{ID: SectionRegulation, Label: "위반 의심 법령/규정", Guidance: "관련 법률 조문과 내부규정 조항을 구체적으로 인용"},
	{ID: SectionDiscovery, Label: "인지 경위", Guidance: "신고자가 어떻게 알게 되었는지, 단 신고자를 특정할 수 있는 정보는 제외"},
	{ID: SectionNotes, Label: "기타 참고사항", Guidance: "추가 정보"},
}

// Cautions are the anonymity rules appended to every drafting request.
var cautions = [...]string{
	"특정 개인의 실명은 절대 포함하지 마세요",
	`부서명 대신 "해당 부서"로 표기하세요`,
	`객관적 사실만 기재하고, 추측은 "~로 의심됨"으로 표기하세요`,
}

// Template returns the report sections in order. Each call returns a fresh
// copy; the shared definition cannot be modified through it.
func Template() []Section {
	out := make([]Section, len(sections))
	copy(out, sections[:])
	return out
}

// Lookup returns the section with the given ID.
func Lookup(id string) (Section, bool) {
	for _, s := range sections {
		if s.ID == id {
			return s, true
		}
	}
	return Section{}, false
}

// Outline renders the compact one-line-per-section form used in the system
// prompt: "- [신고 유형]: 핵심 위반 유형".
func Outline() string {
	var b strings.Builder
	for i, s := range sections {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "- [%s]: %s", s.Label, s.Guidance)
	}
	return b.String()
}

// Render renders the full form with each heading followed by its guidance
// in parentheses, then the anonymity cautions.
func Render() string {
	var b strings.Builder
	for _, s := range sections {
		fmt.Fprintf(&b, "[%s]\n(%s)\n\n", s.Label, s.Guidance)
	}
	b.WriteString("※ 주의사항:")
	for _, c := range cautions {
		fmt.Fprintf(&b, "\n- %s", c)
	}
	return b.String()
}
