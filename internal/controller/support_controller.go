package controller

import (
	"strings"

	"aura-support-be/internal/dto"
	"aura-support-be/internal/entity"
	"aura-support-be/internal/pkg/serverutils"
	"aura-support-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISupportController interface {
	RegisterRoutes(r fiber.Router)
	History(ctx *fiber.Ctx) error
	IngestKnowledge(ctx *fiber.Ctx) error
}

type supportController struct {
	conversations service.IConversationService
	publisher     service.IPublisherService
	jwtSecret     string
}

func NewSupportController(conversations service.IConversationService, publisher service.IPublisherService, jwtSecret string) ISupportController {
	return &supportController{
		conversations: conversations,
		publisher:     publisher,
		jwtSecret:     jwtSecret,
	}
}

func (c *supportController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/support")
	h.Use(serverutils.NewJwtMiddleware(c.jwtSecret))
	h.Get("/sessions/:id/history", c.History)
	h.Post("/knowledge", c.IngestKnowledge)
}

func (c *supportController) History(ctx *fiber.Ctx) error {
	sessionId := strings.TrimSpace(ctx.Params("id"))
	if sessionId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Session id is required")
	}
	limit := ctx.QueryInt("limit", 0)
	if limit < 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must not be negative")
	}

	session := c.conversations.History(ctx.UserContext(), sessionId, limit)

	res := dto.SessionHistoryResponse{
		SessionId: sessionId,
		Escalated: session.Escalated,
		Turns:     make([]dto.TurnResponse, 0, len(session.Turns)),
	}
	for _, t := range session.Turns {
		res.Turns = append(res.Turns, toTurnResponse(t))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get session history", res))
}

func (c *supportController) IngestKnowledge(ctx *fiber.Ctx) error {
	var req dto.IngestKnowledgeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	err := c.publisher.SendKnowledgeDocument(ctx.UserContext(), dto.PublishKnowledgeMessage{
		DocumentId: req.DocumentId,
		Text:       req.Text,
	})
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Knowledge document queued", dto.IngestKnowledgeResponse{
		DocumentId: req.DocumentId,
		Queued:     true,
	}))
}

func toTurnResponse(t entity.Turn) dto.TurnResponse {
	chunkIds := t.ChunkIds
	if chunkIds == nil {
		chunkIds = []string{}
	}
	return dto.TurnResponse{
		Id:          t.Id,
		UserMessage: t.UserMessage,
		Reply:       t.Reply,
		ChunkIds:    chunkIds,
		Escalation:  string(t.Escalation),
		Reason:      t.Reason,
		Degraded:    t.Degraded,
		CreatedAt:   t.CreatedAt,
	}
}
