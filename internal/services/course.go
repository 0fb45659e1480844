package services

import (
	"context"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/anamul94/AITutor/internal/logger"
	"github.com/anamul94/AITutor/internal/repos"
	"github.com/anamul94/AITutor/internal/types"
)

const syllabusSchemaName = "course_syllabus"

// CourseService owns the course lifecycle: syllabus generation, retrieval
// with progress percentages, and deletion.
type CourseService interface {
	GenerateCourse(ctx context.Context, user *types.User, input *SyllabusInput) (*types.Course, error)
	GetCourse(ctx context.Context, userID, courseID uuid.UUID) (*types.Course, error)
	ListCourses(ctx context.Context, userID uuid.UUID) ([]*types.Course, error)
	DeleteCourse(ctx context.Context, userID, courseID uuid.UUID) error
}

type courseService struct {
	db           *gorm.DB
	courseRepo   repos.CourseRepo
	moduleRepo   repos.CourseModuleRepo
	lessonRepo   repos.LessonRepo
	progressRepo repos.UserProgressRepo
	usageRepo    repos.TokenUsageRepo
	planService  PlanService
	llm          LLMClient
	log          *logger.Logger
}

func NewCourseService(
	db *gorm.DB,
	courseRepo repos.CourseRepo,
	moduleRepo repos.CourseModuleRepo,
	lessonRepo repos.LessonRepo,
	progressRepo repos.UserProgressRepo,
	usageRepo repos.TokenUsageRepo,
	planService PlanService,
	llm LLMClient,
	baseLog *logger.Logger,
) CourseService {
	return &courseService{
		db:           db,
		courseRepo:   courseRepo,
		moduleRepo:   moduleRepo,
		lessonRepo:   lessonRepo,
		progressRepo: progressRepo,
		usageRepo:    usageRepo,
		planService:  planService,
		llm:          llm,
		log:          baseLog.With("service", "CourseService"),
	}
}

// GenerateCourse asks the model for a full syllabus and persists the course
// tree plus the usage log in one transaction. The quota check happens before
// the model call so a rejected request never spends tokens.
func (cs *courseService) GenerateCourse(ctx context.Context, user *types.User, input *SyllabusInput) (*types.Course, error) {
	if err := cs.planService.EnforceCourseLimit(ctx, nil, user); err != nil {
		return nil, err
	}

	// The model call plus persist run to completion even if the client
	// disconnects, otherwise tokens get spent with nothing saved.
	genCtx := context.WithoutCancel(ctx)

	raw, usage, err := cs.llm.GenerateJSON(genCtx, syllabusSystemPrompt, buildSyllabusUserPrompt(input), syllabusSchemaName, syllabusSchema())
	if err != nil {
		return nil, &GenerationError{Err: err}
	}
	syllabus, err := decodeSyllabus(raw)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	course := &types.Course{
		UserID:         user.ID,
		Title:          syllabus.Title,
		Description:    syllabus.Description,
		Topic:          input.Topic,
		LearningGoal:   input.LearningGoal,
		PreferredLevel: input.PreferredLevel,
		Language:       input.Language,
	}

	err = cs.db.WithContext(genCtx).Transaction(func(tx *gorm.DB) error {
		if _, txErr := cs.courseRepo.Create(genCtx, tx, []*types.Course{course}); txErr != nil {
			return txErr
		}
		for _, genModule := range syllabus.Modules {
			module := &types.CourseModule{
				CourseID:   course.ID,
				Title:      genModule.Title,
				OrderIndex: genModule.OrderIndex,
			}
			if _, txErr := cs.moduleRepo.Create(genCtx, tx, []*types.CourseModule{module}); txErr != nil {
				return txErr
			}
			lessons := make([]*types.Lesson, 0, len(genModule.Lessons))
			for _, genLesson := range genModule.Lessons {
				lessons = append(lessons, &types.Lesson{
					ModuleID:    module.ID,
					Title:       genLesson.Title,
					Description: genLesson.Description,
					OrderIndex:  genLesson.OrderIndex,
				})
			}
			if _, txErr := cs.lessonRepo.Create(genCtx, tx, lessons); txErr != nil {
				return txErr
			}
		}
		userID := user.ID
		_, txErr := cs.usageRepo.Create(genCtx, tx, []*types.TokenUsageLog{{
			UserID:       &userID,
			Operation:    types.UsageOperationCourseSyllabus,
			InputTokens:  usage.InputTokens,
			OutputTokens: usage.OutputTokens,
			TotalTokens:  usage.TotalTokens,
		}})
		return txErr
	})
	if err != nil {
		return nil, err
	}

	cs.log.Info("Course generated",
		"course_id", course.ID,
		"user_id", user.ID,
		"modules", len(syllabus.Modules),
		"total_tokens", usage.TotalTokens,
	)
	return cs.GetCourse(genCtx, user.ID, course.ID)
}

func (cs *courseService) GetCourse(ctx context.Context, userID, courseID uuid.UUID) (*types.Course, error) {
	course, err := cs.courseRepo.GetOwnedByID(ctx, nil, courseID, userID, true)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, ErrNotFound
	}
	if err := cs.attachProgress(ctx, userID, []*types.Course{course}); err != nil {
		return nil, err
	}
	return course, nil
}

func (cs *courseService) ListCourses(ctx context.Context, userID uuid.UUID) ([]*types.Course, error) {
	courses, err := cs.courseRepo.ListByUserID(ctx, nil, userID)
	if err != nil {
		return nil, err
	}
	if err := cs.attachProgress(ctx, userID, courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (cs *courseService) DeleteCourse(ctx context.Context, userID, courseID uuid.UUID) error {
	course, err := cs.courseRepo.GetOwnedByID(ctx, nil, courseID, userID, false)
	if err != nil {
		return err
	}
	if course == nil {
		return ErrNotFound
	}
	// FK cascades remove modules, lessons, and progress rows.
	return cs.courseRepo.DeleteByID(ctx, nil, courseID)
}

// attachProgress fills the transient ProgressPercentage on each course from
// the user's completed-lesson counts. Courses with no lessons report 0.
func (cs *courseService) attachProgress(ctx context.Context, userID uuid.UUID, courses []*types.Course) error {
	if len(courses) == 0 {
		return nil
	}
	courseIDs := make([]uuid.UUID, 0, len(courses))
	totalByCourse := make(map[uuid.UUID]int, len(courses))
	for _, course := range courses {
		courseIDs = append(courseIDs, course.ID)
		total := 0
		for _, module := range course.Modules {
			total += len(module.Lessons)
		}
		totalByCourse[course.ID] = total
	}

	completedRows, err := cs.progressRepo.CountCompletedByCourseIDs(ctx, nil, userID, courseIDs)
	if err != nil {
		return err
	}
	completedByCourse := make(map[uuid.UUID]int64, len(completedRows))
	for _, row := range completedRows {
		completedByCourse[row.CourseID] = row.Count
	}

	for _, course := range courses {
		total := totalByCourse[course.ID]
		if total == 0 {
			course.ProgressPercentage = 0
			continue
		}
		completed := completedByCourse[course.ID]
		pct := float64(completed) * 100.0 / float64(total)
		course.ProgressPercentage = math.Round(pct*10) / 10
	}
	return nil
}
