package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-qbank-api/internal/dto"
	"github.com/noah-isme/gema-qbank-api/internal/service"
	"github.com/noah-isme/gema-qbank-api/internal/utils"
)

// ClassificationHandler exposes exam/subject/topic reference data.
type ClassificationHandler struct {
	service service.ClassificationService
	logger  zerolog.Logger
}

// NewClassificationHandler constructs the handler.
func NewClassificationHandler(service service.ClassificationService, logger zerolog.Logger) *ClassificationHandler {
	return &ClassificationHandler{
		service: service,
		logger:  logger.With().Str("component", "classification_handler").Logger(),
	}
}

// Register attaches classification routes to the router group.
func (h *ClassificationHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("/exams", h.createExam)
	router.Post("/subjects", h.createSubject)
	router.Post("/topics", h.createTopic)
}

func (h *ClassificationHandler) list(c *fiber.Ctx) error {
	response, err := h.service.List(requestContext(c))
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to list classification")
	}

	return utils.SendSuccess(c, "classification", response)
}

func (h *ClassificationHandler) createExam(c *fiber.Ctx) error {
	var payload dto.ExamCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	exam, err := h.service.CreateExam(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create exam")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "exam created", exam)
}

func (h *ClassificationHandler) createSubject(c *fiber.Ctx) error {
	var payload dto.SubjectCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	subject, err := h.service.CreateSubject(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create subject")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "subject created", subject)
}

func (h *ClassificationHandler) createTopic(c *fiber.Ctx) error {
	var payload dto.TopicCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	topic, err := h.service.CreateTopic(requestContext(c), actorFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, h.logger, err, "failed to create topic")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "topic created", topic)
}
