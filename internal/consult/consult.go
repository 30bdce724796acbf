// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package consult runs a pre-report consultation turn: it retrieves reference
// material for the user's words, assembles the system prompt, and asks the
// generator for a reply or a report draft.
//
// Nothing here stores or logs message content. Upstream failures are logged
// by status code only and surface to the user as fixed messages.
package consult

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/whistle-consult/internal/gemini"
	"github.com/pdiddy/whistle-consult/internal/knowledge"
	"github.com/pdiddy/whistle-consult/internal/report"
	"github.com/pdiddy/whistle-consult/pkg/types"
)

// User-facing messages returned instead of a generated reply.
const (
	MsgEmptyChat     = "메시지를 입력해 주세요."
	MsgEmptyReport   = "대화 내용이 없습니다."
	MsgNoAPIKey      = "⚠️ API 키가 설정되지 않았습니다. 서버의 GEMINI_API_KEY 환경변수를 확인해 주세요."
	MsgQuotaExceeded = "⚠️ API 요청 한도를 초과했습니다. 잠시 후 다시 시도해 주세요."
	MsgServerError   = "⚠️ 서버 오류가 발생했습니다. 잠시 후 다시 시도해 주세요."
	MsgNoResponse    = "응답을 생성할 수 없습니다. 다시 시도해 주세요."
)

const ragHeader = "## 참고 자료 (RAG 검색 결과)\n" +
	"다음은 사용자의 질의와 관련된 법률, 내부규정, 기신고사례입니다. " +
	"답변 시 이 자료를 참고하되, 자연스럽게 대화에 녹여내세요."

const reportInstruction = "지금까지의 대화를 바탕으로 레드휘슬 신고서 초안을 작성해 주세요.\n\n" +
	"아래 양식에 맞춰 작성해 주세요:\n\n"

// Generator produces text for a prompt and conversation.
type Generator interface {
	Generate(ctx context.Context, req gemini.Request) (string, error)
	Configured() bool
}

// Service answers consultation turns.
type Service struct {
	kb         *knowledge.Base
	gen        Generator
	chatTopK   int
	reportTopK int
	logger     *zap.Logger
}

// New creates a Service. Zero top-k values in cfg fall back to 3 and 5.
func New(kb *knowledge.Base, gen Generator, cfg types.KnowledgeBaseConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		kb:         kb,
		gen:        gen,
		chatTopK:   cfg.ChatTopK,
		reportTopK: cfg.ReportTopK,
		logger:     logger,
	}
	if s.chatTopK == 0 {
		s.chatTopK = 3
	}
	if s.reportTopK == 0 {
		s.reportTopK = 5
	}
	return s
}

// Chat replies to the conversation, grounding the reply in the documents
// that match the latest user message.
func (s *Service) Chat(ctx context.Context, messages []types.ChatMessage) string {
	if len(messages) == 0 {
		return MsgEmptyChat
	}
	refs := s.kb.Search(types.UserText(messages, true), s.chatTopK)
	return s.generate(ctx, "chat", messages, refs)
}

// GenerateReport drafts a report from the whole conversation. Retrieval runs
// on every user message joined together.
func (s *Service) GenerateReport(ctx context.Context, messages []types.ChatMessage) string {
	if len(messages) == 0 {
		return MsgEmptyReport
	}
	refs := s.kb.Search(types.UserText(messages, false), s.reportTopK)

	all := make([]types.ChatMessage, 0, len(messages)+1)
	all = append(all, messages...)
	all = append(all, types.ChatMessage{
		Role:    types.RoleUser,
		Content: reportInstruction + report.Render(),
	})
	return s.generate(ctx, "report", all, refs)
}

func (s *Service) generate(ctx context.Context, op string, messages []types.ChatMessage, refs string) string {
	if !s.gen.Configured() {
		s.logger.Warn("generator not configured", zap.String("op", op))
		return MsgNoAPIKey
	}

	text, err := s.gen.Generate(ctx, gemini.Request{
		SystemPrompt: SystemPrompt(refs),
		Messages:     messages,
	})
	if err != nil {
		return s.failure(op, err)
	}
	return text
}

// failure maps a generator error to the message shown to the user.
func (s *Service) failure(op string, err error) string {
	var se *gemini.StatusError
	switch {
	case errors.As(err, &se):
		s.logger.Warn("generator returned error status",
			zap.String("op", op), zap.Int("status", se.StatusCode))
		if se.StatusCode == 429 {
			return MsgQuotaExceeded
		}
		return fmt.Sprintf("⚠️ API 오류가 발생했습니다. (상태 코드: %d)", se.StatusCode)
	case errors.Is(err, gemini.ErrEmptyResponse):
		s.logger.Warn("generator returned no text", zap.String("op", op))
		return MsgNoResponse
	default:
		s.logger.Error("generator call failed", zap.String("op", op), zap.Error(err))
		return MsgServerError
	}
}
