package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-qbank-api/internal/dto"
	"github.com/noah-isme/gema-qbank-api/internal/service"
	"github.com/noah-isme/gema-qbank-api/internal/utils"
)

// QuestionHandler exposes the approval pipeline over HTTP.
type QuestionHandler struct {
	service service.QuestionWorkflowService
	logger  zerolog.Logger
}

// NewQuestionHandler constructs the handler.
func NewQuestionHandler(service service.QuestionWorkflowService, logger zerolog.Logger) *QuestionHandler {
	return &QuestionHandler{
		service: service,
		logger:  logger.With().Str("component", "question_handler").Logger(),
	}
}

// RouteGuard returns the middleware placed in front of the route serving op.
// It runs before the id or body is parsed, so a caller in the wrong role
// gets 403 even when the request is also malformed.
type RouteGuard func(op service.Operation) []fiber.Handler

// Register attaches question routes to the router group. The published list
// carries no guard; every other route is guarded by its workflow operation.
// The workflow service repeats the role check.
func (h *QuestionHandler) Register(router fiber.Router, guard RouteGuard) {
	route := func(op service.Operation, handler fiber.Handler) []fiber.Handler {
		if guard == nil {
			return []fiber.Handler{handler}
		}
		return append(guard(op), handler)
	}

	router.Get("/published", h.listPublished)
	router.Post("", route(service.OperationCreate, h.create)...)
	router.Get("", route(service.OperationList, h.listByStatus)...)
	router.Get("/queue", route(service.OperationList, h.queue)...)
	router.Get("/:id", route(service.OperationView, h.get)...)
	router.Put("/:id/revision", route(service.OperationRevise, h.revise)...)
	router.Put("/:id/explanation", route(service.OperationExplain, h.explain)...)
	router.Post("/:id/approve", route(service.OperationApprove, h.approve)...)
	router.Post("/:id/reject", route(service.OperationReject, h.reject)...)
}

func (h *QuestionHandler) create(c *fiber.Ctx) error {
	var payload dto.QuestionCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	question, err := h.service.Create(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create question")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "question submitted", question)
}

func (h *QuestionHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	question, err := h.service.GetByID(requestContext(c), actorFromContext(c), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load question")
	}

	return utils.SendSuccess(c, "question", question)
}

func (h *QuestionHandler) listByStatus(c *fiber.Ctx) error {
	var filter dto.QuestionListFilter
	if err := c.QueryParser(&filter); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
	}

	questions, err := h.service.ListByStatus(requestContext(c), actorFromContext(c), filter)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list questions")
	}

	return utils.OK(c, questions, "questions", fiber.Map{"status": filter.Status, "count": len(questions)})
}

func (h *QuestionHandler) queue(c *fiber.Ctx) error {
	questions, err := h.service.Queue(requestContext(c), actorFromContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to load queue")
	}

	return utils.OK(c, questions, "queue", fiber.Map{"count": len(questions)})
}

func (h *QuestionHandler) listPublished(c *fiber.Ctx) error {
	var filter dto.PublishedQuestionFilter
	var err error
	if filter.ExamID, err = parseQueryUint(c, "exam_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid exam id")
	}
	if filter.SubjectID, err = parseQueryUint(c, "subject_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid subject id")
	}
	if filter.TopicID, err = parseQueryUint(c, "topic_id"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid topic id")
	}

	questions, err := h.service.ListPublished(requestContext(c), filter)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list published questions")
	}

	return utils.OK(c, questions, "published questions", fiber.Map{"count": len(questions)})
}

func (h *QuestionHandler) revise(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.QuestionRevisionRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	question, err := h.service.ReviseByAuthor(requestContext(c), actorFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to revise question")
	}

	return utils.SendSuccess(c, "question revised", question)
}

func (h *QuestionHandler) explain(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	var payload dto.QuestionExplanationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	question, err := h.service.SupplyExplanation(requestContext(c), actorFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to record explanation")
	}

	return utils.SendSuccess(c, "explanation recorded", question)
}

func (h *QuestionHandler) approve(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	question, err := h.service.Approve(requestContext(c), actorFromContext(c), id)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to approve question")
	}

	return utils.SendSuccess(c, "question approved", question)
}

func (h *QuestionHandler) reject(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid identifier")
	}

	// the reason is optional, so an empty body is accepted
	var payload dto.QuestionRejectRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		}
	}

	question, err := h.service.Reject(requestContext(c), actorFromContext(c), id, payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to reject question")
	}

	return utils.SendSuccess(c, "question rejected", question)
}
