package handlers

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/anjiri1684/driving_school/middleware"
	"github.com/anjiri1684/driving_school/models"
	"github.com/anjiri1684/driving_school/scheduling"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LessonHandler struct {
	Lessons *scheduling.Manager
	// Location is the school's time zone; lesson dates and times are wall
	// clock values in it.
	Location *time.Location
}

func NewLessonHandler(lessons *scheduling.Manager, loc *time.Location) *LessonHandler {
	return &LessonHandler{Lessons: lessons, Location: loc}
}

var statusByCode = map[scheduling.Code]int{
	scheduling.CodeContractNotActive:     fiber.StatusConflict,
	scheduling.CodeNoCreditsAvailable:    fiber.StatusConflict,
	scheduling.CodeResourceConflict:      fiber.StatusConflict,
	scheduling.CodeLessonNotSchedulable:  fiber.StatusConflict,
	scheduling.CodeInstructorUnavailable: fiber.StatusUnprocessableEntity,
	scheduling.CodeCategoryMismatch:      fiber.StatusUnprocessableEntity,
	scheduling.CodeVehicleUnavailable:    fiber.StatusUnprocessableEntity,
	scheduling.CodeNotLessonItem:         fiber.StatusUnprocessableEntity,
	scheduling.CodeNotFound:              fiber.StatusNotFound,
	scheduling.CodeReasonRequired:        fiber.StatusBadRequest,
}

func rejection(err error) fiber.Map {
	body := fiber.Map{"error": err.Error(), "code": scheduling.CodeOf(err)}
	var e *scheduling.Error
	if errors.As(err, &e) {
		body["error"] = e.Message
		if e.Detail != "" {
			body["detail"] = e.Detail
		}
	}
	return body
}

func respondError(c *fiber.Ctx, err error, action string) error {
	code := scheduling.CodeOf(err)
	if code == "" {
		log.Printf("🔥 %s failed: %v", action, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to " + action})
	}
	return c.Status(statusByCode[code]).JSON(rejection(err))
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid " + param + " format"})
	}
	return id, true, nil
}

type ScheduleLessonRequest struct {
	ContractItemID string  `json:"contract_item_id" validate:"required,uuid"`
	InstructorID   string  `json:"instructor_id" validate:"required,uuid"`
	VehicleID      string  `json:"vehicle_id" validate:"required,uuid"`
	LessonDate     string  `json:"lesson_date" validate:"required,datetime=2006-01-02"`
	StartTime      string  `json:"start_time" validate:"required,datetime=15:04"`
	Topic          *string `json:"topic,omitempty" validate:"omitempty,max=255"`
	Location       *string `json:"location,omitempty" validate:"omitempty,max=255"`
	Notes          *string `json:"notes,omitempty"`
}

func (r ScheduleLessonRequest) booking(actor uuid.UUID) (scheduling.BookingRequest, error) {
	date, err := models.ParseDate(r.LessonDate)
	if err != nil {
		return scheduling.BookingRequest{}, err
	}
	start, err := models.ParseClock(r.StartTime)
	if err != nil {
		return scheduling.BookingRequest{}, err
	}
	return scheduling.BookingRequest{
		ContractItemID: uuid.MustParse(r.ContractItemID),
		InstructorID:   uuid.MustParse(r.InstructorID),
		VehicleID:      uuid.MustParse(r.VehicleID),
		Date:           date,
		StartTime:      start,
		Topic:          r.Topic,
		Location:       r.Location,
		Notes:          r.Notes,
		Actor:          actor,
	}, nil
}

func (h *LessonHandler) bindBooking(c *fiber.Ctx) (scheduling.BookingRequest, bool, error) {
	actor, err := middleware.ActorID(c)
	if err != nil {
		return scheduling.BookingRequest{}, false, c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user in token"})
	}
	var req ScheduleLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return scheduling.BookingRequest{}, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return scheduling.BookingRequest{}, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	booking, err := req.booking(actor)
	if err != nil {
		return scheduling.BookingRequest{}, false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return booking, true, nil
}

// CheckLesson answers whether a lesson could be booked right now. A
// rejection is a normal answer here, so it comes back with 200.
func (h *LessonHandler) CheckLesson(c *fiber.Ctx) error {
	booking, ok, err := h.bindBooking(c)
	if !ok {
		return err
	}
	end, err := h.Lessons.CanSchedule(c.UserContext(), booking)
	if err != nil {
		if scheduling.CodeOf(err) == "" {
			return respondError(c, err, "check lesson")
		}
		body := rejection(err)
		body["can_schedule"] = false
		return c.JSON(body)
	}
	return c.JSON(fiber.Map{"can_schedule": true, "end_time": models.ClockString(end)})
}

func (h *LessonHandler) CreateLesson(c *fiber.Ctx) error {
	booking, ok, err := h.bindBooking(c)
	if !ok {
		return err
	}
	lesson, err := h.Lessons.CreateLesson(c.UserContext(), booking)
	if err != nil {
		return respondError(c, err, "schedule lesson")
	}
	return c.Status(fiber.StatusCreated).JSON(lesson)
}

func (h *LessonHandler) GetLesson(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "lessonId")
	if !ok {
		return err
	}
	lesson, err := h.Lessons.Lesson(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "load lesson")
	}
	return c.JSON(lesson)
}

type CancelLessonRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

func (h *LessonHandler) CancelLesson(c *fiber.Ctx) error {
	var req CancelLessonRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return h.transition(c, "cancel lesson", func(ctx context.Context, id, actor uuid.UUID) (*models.Lesson, error) {
		return h.Lessons.CancelLesson(ctx, id, req.Reason, actor)
	})
}

type LessonNotesRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

func (h *LessonHandler) notes(c *fiber.Ctx) (*string, error) {
	var req LessonNotesRequest
	if len(c.Body()) == 0 {
		return nil, nil
	}
	if err := c.BodyParser(&req); err != nil {
		return nil, err
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	return req.Notes, nil
}

func (h *LessonHandler) MarkNoShow(c *fiber.Ctx) error {
	notes, err := h.notes(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return h.transition(c, "mark no-show", func(ctx context.Context, id, actor uuid.UUID) (*models.Lesson, error) {
		return h.Lessons.MarkNoShow(ctx, id, notes, actor)
	})
}

func (h *LessonHandler) MarkCompleted(c *fiber.Ctx) error {
	notes, err := h.notes(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return h.transition(c, "complete lesson", func(ctx context.Context, id, actor uuid.UUID) (*models.Lesson, error) {
		return h.Lessons.MarkCompleted(ctx, id, notes, actor)
	})
}

func (h *LessonHandler) transition(c *fiber.Ctx, action string, apply func(ctx context.Context, id, actor uuid.UUID) (*models.Lesson, error)) error {
	id, ok, err := parseID(c, "lessonId")
	if !ok {
		return err
	}
	actor, err := middleware.ActorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user in token"})
	}
	lesson, err := apply(c.UserContext(), id, actor)
	if err != nil {
		return respondError(c, err, action)
	}
	return c.JSON(lesson)
}

// GetUnmarkedLessons lists lessons that already ended but are still scheduled.
func (h *LessonHandler) GetUnmarkedLessons(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 500 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be between 1 and 500"})
	}
	lessons, err := h.Lessons.UnmarkedLessons(c.UserContext(), time.Now().In(h.Location), limit)
	if err != nil {
		return respondError(c, err, "load unmarked lessons")
	}
	if lessons == nil {
		lessons = []models.Lesson{}
	}
	return c.JSON(lessons)
}

func (h *LessonHandler) GetItemCredits(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "itemId")
	if !ok {
		return err
	}
	credits, err := h.Lessons.AvailableCredits(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "load credits")
	}
	return c.JSON(fiber.Map{"contract_item_id": id, "available_credits": credits})
}

func (h *LessonHandler) GetItemProgress(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "itemId")
	if !ok {
		return err
	}
	progress, err := h.Lessons.Progress(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "load progress")
	}
	return c.JSON(progress)
}

func (h *LessonHandler) GetItemLessons(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "itemId")
	if !ok {
		return err
	}
	lessons, err := h.Lessons.LessonsForItem(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "load lessons")
	}
	return c.JSON(lessons)
}

func (h *LessonHandler) GetContractSummary(c *fiber.Ctx) error {
	id, ok, err := parseID(c, "contractId")
	if !ok {
		return err
	}
	summary, err := h.Lessons.ContractSummary(c.UserContext(), id)
	if err != nil {
		return respondError(c, err, "load contract summary")
	}
	return c.JSON(summary)
}
