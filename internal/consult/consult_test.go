// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package consult

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/whistle-consult/internal/gemini"
	"github.com/pdiddy/whistle-consult/internal/knowledge"
	"github.com/pdiddy/whistle-consult/internal/report"
	"github.com/pdiddy/whistle-consult/pkg/types"
)

const corpus = `
version: test
stopwords: [관련, 같습니다]
concepts:
  - name: bribery
    terms: [금품, 뇌물]
documents:
  - id: wpa-2
    category: statute
    title: Whistleblower Protection Act §2
    keywords: [bribery, report]
    body: Reports of bribery are protected.
  - id: card-4
    category: internal-regulation
    title: Corporate Card Rule §4
    keywords: [card, expense]
    body: Corporate cards are for business expenses only.
`

// fakeGenerator records the last request and returns a canned result.
type fakeGenerator struct {
	configured bool
	reply      string
	err        error
	calls      int
	last       gemini.Request
}

func (f *fakeGenerator) Configured() bool { return f.configured }

func (f *fakeGenerator) Generate(_ context.Context, req gemini.Request) (string, error) {
	f.calls++
	f.last = req
	return f.reply, f.err
}

func newService(t *testing.T, gen Generator) *Service {
	t.Helper()
	kb, err := knowledge.Load([]byte(corpus))
	require.NoError(t, err)
	return New(kb, gen, types.KnowledgeBaseConfig{}, nil)
}

func user(s string) types.ChatMessage {
	return types.ChatMessage{Role: types.RoleUser, Content: s}
}

func assistant(s string) types.ChatMessage {
	return types.ChatMessage{Role: types.RoleAssistant, Content: s}
}

func TestChat_GroundsPromptInLatestUserMessage(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: "답변"}
	svc := newService(t, gen)

	msgs := []types.ChatMessage{
		user("법인 card 문제"),
		assistant("자세히 말씀해 주세요."),
		user("관련 직원이 금품을 받은 것 같습니다"),
	}
	reply := svc.Chat(context.Background(), msgs)

	assert.Equal(t, "답변", reply)
	require.Equal(t, 1, gen.calls)
	assert.Equal(t, msgs, gen.last.Messages)
	assert.Contains(t, gen.last.SystemPrompt, ragHeader)
	assert.Contains(t, gen.last.SystemPrompt, "[1] 법률 | Whistleblower Protection Act §2")
	assert.NotContains(t, gen.last.SystemPrompt, "Corporate Card Rule")
}

func TestChat_NoMatchOmitsReferenceSection(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: "답변"}
	svc := newService(t, gen)

	svc.Chat(context.Background(), []types.ChatMessage{user("안녕하세요")})

	assert.Equal(t, SystemPrompt(""), gen.last.SystemPrompt)
	assert.NotContains(t, gen.last.SystemPrompt, ragHeader)
}

func TestGenerateReport_AppendsDraftingInstruction(t *testing.T) {
	gen := &fakeGenerator{configured: true, reply: "초안"}
	svc := newService(t, gen)

	msgs := []types.ChatMessage{
		user("금품을 받았습니다"),
		assistant("언제였나요?"),
		user("card 로 결제했습니다"),
	}
	out := svc.GenerateReport(context.Background(), msgs)

	assert.Equal(t, "초안", out)
	require.Len(t, gen.last.Messages, 4)
	last := gen.last.Messages[3]
	assert.Equal(t, types.RoleUser, last.Role)
	assert.True(t, strings.HasPrefix(last.Content, reportInstruction))
	assert.True(t, strings.HasSuffix(last.Content, report.Render()))

	// Retrieval used every user message, so both documents are referenced.
	assert.Contains(t, gen.last.SystemPrompt, "Whistleblower Protection Act §2")
	assert.Contains(t, gen.last.SystemPrompt, "Corporate Card Rule §4")
}

func TestEmptyConversation(t *testing.T) {
	gen := &fakeGenerator{configured: true}
	svc := newService(t, gen)

	assert.Equal(t, MsgEmptyChat, svc.Chat(context.Background(), nil))
	assert.Equal(t, MsgEmptyReport, svc.GenerateReport(context.Background(), []types.ChatMessage{}))
	assert.Zero(t, gen.calls)
}

func TestMissingAPIKey(t *testing.T) {
	gen := &fakeGenerator{configured: false}
	svc := newService(t, gen)

	assert.Equal(t, MsgNoAPIKey, svc.Chat(context.Background(), []types.ChatMessage{user("질문")}))
	assert.Equal(t, MsgNoAPIKey, svc.GenerateReport(context.Background(), []types.ChatMessage{user("질문")}))
	assert.Zero(t, gen.calls)
}

func TestGeneratorFailuresMapToFixedMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"quota", &gemini.StatusError{StatusCode: 429, Body: "quota"}, MsgQuotaExceeded},
		{"other status", &gemini.StatusError{StatusCode: 503, Body: "upstream detail"}, "⚠️ API 오류가 발생했습니다. (상태 코드: 503)"},
		{"wrapped status", errors.Join(errors.New("ctx"), &gemini.StatusError{StatusCode: 400}), "⚠️ API 오류가 발생했습니다. (상태 코드: 400)"},
		{"empty", gemini.ErrEmptyResponse, MsgNoResponse},
		{"transport", errors.New("dial tcp: connection refused"), MsgServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, &fakeGenerator{configured: true, err: tt.err})
			got := svc.Chat(context.Background(), []types.ChatMessage{user("질문")})
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "upstream detail")
		})
	}
}

func TestSystemPrompt(t *testing.T) {
	p := SystemPrompt("")
	assert.True(t, strings.HasPrefix(p, "당신은 금융회사의 내부자신고 사전상담 AI 어시스턴트입니다."))
	assert.Contains(t, p, report.Outline())
	assert.True(t, strings.HasSuffix(p, "반드시 한국어로 응답하세요."))

	withRefs := SystemPrompt("[1] 법률 | X\nbody")
	assert.True(t, strings.HasPrefix(withRefs, p))
	assert.True(t, strings.HasSuffix(withRefs, "\n\n[1] 법률 | X\nbody"))
}

func TestNew_TopKDefaults(t *testing.T) {
	kb, err := knowledge.Load([]byte(corpus))
	require.NoError(t, err)

	svc := New(kb, &fakeGenerator{}, types.KnowledgeBaseConfig{}, nil)
	assert.Equal(t, 3, svc.chatTopK)
	assert.Equal(t, 5, svc.reportTopK)

	svc = New(kb, &fakeGenerator{}, types.KnowledgeBaseConfig{ChatTopK: 1, ReportTopK: 2}, nil)
	assert.Equal(t, 1, svc.chatTopK)
	assert.Equal(t, 2, svc.reportTopK)
}
