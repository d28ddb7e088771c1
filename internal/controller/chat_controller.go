package controller

import (
	"strings"

	"aura-support-be/internal/dto"
	"aura-support-be/internal/pkg/logger"
	"aura-support-be/internal/pkg/serverutils"
	"aura-support-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IConversationService
	logger  logger.ILogger
}

func NewChatController(service service.IConversationService, log logger.ILogger) IChatController {
	return &chatController{service: service, logger: log}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	r.Post("/chat", c.Chat)
}

// Chat never answers 5xx for pipeline failures; those come back as an
// apology reply.
func (c *chatController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if strings.TrimSpace(req.Message) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Message cannot be empty")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	sessionId := strings.TrimSpace(req.SessionId)
	if sessionId == "" {
		sessionId = newSessionId()
	}

	out := c.service.HandleMessage(ctx.UserContext(), sessionId, req.Message)

	return ctx.JSON(dto.ChatResponse{
		Reply:     out.Reply,
		Escalated: out.Escalated,
		SessionId: out.SessionId,
	})
}

func newSessionId() string {
	return "session_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
