package tutor

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tracked-edu/tracked/core"
	"github.com/tracked-edu/tracked/core/module"
)

// Replies used instead of an error when the model cannot answer.
const (
	FallbackEmptyReply = "I'm sorry, I couldn't generate a response right now."
	FallbackErrorReply = "There was an error communicating with the AI. Please check your connection."
)

const (
	DefaultTemperature = 0.7

	// maxContextRunes bounds the module content sent along with a question.
	maxContextRunes = 4000

	systemInstruction = `You are an expert AI Study Tutor.
Your goal is to help students understand complex topics, summarize modules, and test their knowledge.
Be encouraging, clear, and concise.`
)

// Request is one chat completion call.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
}

// Client talks to a chat completion model.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Question is what a student asks, optionally about one module.
type Question struct {
	Prompt   string `json:"prompt" validate:"required,notblank"`
	ModuleID string `json:"module_id"`
}

type Service struct {
	client      Client
	modules     module.Repository
	validate    *validator.Validate
	log         core.Logger
	temperature float64
}

func NewService(client Client, modules module.Repository, validate *validator.Validate, logger core.Logger, temperature float64) *Service {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	return &Service{
		client:      client,
		modules:     modules,
		validate:    validate,
		log:         logger,
		temperature: temperature,
	}
}

// Validate checks a question before it is asked.
func (svc *Service) Validate(q *Question) error {
	q.Prompt = core.CleanString(q.Prompt)
	q.ModuleID = core.CleanString(q.ModuleID)
	return svc.validate.Struct(q)
}

// Ask returns the tutor reply to q. Model failures never surface as errors,
// they are logged and replaced by a fallback reply.
func (svc *Service) Ask(ctx context.Context, q Question) string {
	req := Request{
		System:      systemInstruction,
		Prompt:      q.Prompt,
		Temperature: svc.temperature,
	}
	if q.ModuleID != "" {
		if mod, err := svc.modules.GetModuleByID(ctx, q.ModuleID); err == nil {
			req.System += "\nContext about the current study module: " + ModuleContext(mod)
		} else {
			svc.log.Warn("tutor: module context unavailable", "module_id", q.ModuleID, err)
		}
	}

	reply, err := svc.client.Complete(ctx, req)
	if err != nil {
		svc.log.Error("tutor: completion failed", err)
		return FallbackErrorReply
	}
	if strings.TrimSpace(reply) == "" {
		return FallbackEmptyReply
	}
	return reply
}

// ModuleContext summarises a module for the system instruction.
func ModuleContext(mod module.Module) string {
	content := []rune(module.PlainText(mod.Content))
	if len(content) > maxContextRunes {
		content = content[:maxContextRunes]
	}
	return fmt.Sprintf("%s. %s\n%s", mod.Title, mod.Description, string(content))
}
