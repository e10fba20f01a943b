package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"codequest/internal/cache"
	"codequest/internal/metrics"
	"codequest/internal/models"
	"codequest/internal/repositories"
	"codequest/internal/utils"
)

const (
	kindExplain     = "explain"
	kindReview      = "review"
	kindProjectIdea = "project_idea"
)

// AIService generates, parses and stores AI tutoring results.
type AIService interface {
	ExplainConcept(ctx context.Context, userID primitive.ObjectID, req models.ExplainRequest) (*models.Concept, error)
	ReviewCode(ctx context.Context, userID primitive.ObjectID, req models.CodeReviewRequest) (*models.CodeReview, error)
	SuggestProjectIdea(ctx context.Context, userID primitive.ObjectID, req models.ProjectIdeaRequest) (*models.ProjectIdea, error)
	ListConcepts(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Concept, error)
	ListCodeReviews(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.CodeReview, error)
	ListProjectIdeas(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.ProjectIdea, error)
}

type AISettings struct {
	CacheTTL time.Duration
	Timeout  time.Duration
}

type aiService struct {
	generator   Generator
	cache       cache.Cache
	userRepo    repositories.UserRepository
	conceptRepo repositories.ConceptRepository
	reviewRepo  repositories.CodeReviewRepository
	ideaRepo    repositories.ProjectIdeaRepository
	settings    AISettings
}

func NewAIService(
	generator Generator,
	c cache.Cache,
	userRepo repositories.UserRepository,
	conceptRepo repositories.ConceptRepository,
	reviewRepo repositories.CodeReviewRepository,
	ideaRepo repositories.ProjectIdeaRepository,
	settings AISettings,
) AIService {
	if c == nil {
		c = cache.NopCache{}
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Second
	}
	return &aiService{
		generator:   generator,
		cache:       c,
		userRepo:    userRepo,
		conceptRepo: conceptRepo,
		reviewRepo:  reviewRepo,
		ideaRepo:    ideaRepo,
		settings:    settings,
	}
}

func (s *aiService) ExplainConcept(ctx context.Context, userID primitive.ObjectID, req models.ExplainRequest) (*models.Concept, error) {
	text, ok := s.generate(ctx, kindExplain, buildExplainPrompt(req), true)
	if !ok {
		return &models.Concept{
			Topic:       req.Concept,
			AgeGroup:    req.AgeGroup,
			Title:       req.Concept,
			Explanation: FallbackText,
			KeyPoints:   []string{},
			Fallback:    true,
			CreatedAt:   time.Now().UTC(),
		}, nil
	}

	concept := ParseExplanation(text, req.Concept)
	concept.ID = primitive.NewObjectID()
	concept.UserID = userID
	concept.AgeGroup = req.AgeGroup
	concept.CreatedAt = time.Now().UTC()

	if err := s.conceptRepo.Create(ctx, &concept); err != nil {
		return nil, utils.Internal("Failed to save explanation", err)
	}
	if err := s.link(ctx, userID, repositories.ConceptsField, concept.ID); err != nil {
		discardUnlinked(ctx, s.conceptRepo, userID, concept.ID)
		return nil, err
	}
	log.Info().Str("user_id", userID.Hex()).Str("concept_id", concept.ID.Hex()).Msg("Concept explanation saved")
	return &concept, nil
}

func (s *aiService) ReviewCode(ctx context.Context, userID primitive.ObjectID, req models.CodeReviewRequest) (*models.CodeReview, error) {
	if strings.TrimSpace(req.Code) == "" {
		return nil, utils.BadRequest("Code must not be empty")
	}

	text, ok := s.generate(ctx, kindReview, buildReviewPrompt(req), true)
	if !ok {
		return &models.CodeReview{
			Code:         req.Code,
			Language:     req.Language,
			Summary:      FallbackText,
			Strengths:    []string{},
			Improvements: []string{},
			Bugs:         []string{},
			Fallback:     true,
			CreatedAt:    time.Now().UTC(),
		}, nil
	}

	review := ParseCodeReview(text)
	review.ID = primitive.NewObjectID()
	review.UserID = userID
	review.Code = req.Code
	review.Language = req.Language
	review.CreatedAt = time.Now().UTC()

	if err := s.reviewRepo.Create(ctx, &review); err != nil {
		return nil, utils.Internal("Failed to save code review", err)
	}
	if err := s.link(ctx, userID, repositories.CodeReviewsField, review.ID); err != nil {
		discardUnlinked(ctx, s.reviewRepo, userID, review.ID)
		return nil, err
	}
	log.Info().Str("user_id", userID.Hex()).Str("review_id", review.ID.Hex()).Int("score", review.Score).Msg("Code review saved")
	return &review, nil
}

func (s *aiService) SuggestProjectIdea(ctx context.Context, userID primitive.ObjectID, req models.ProjectIdeaRequest) (*models.ProjectIdea, error) {
	difficulty := orDefault(req.Difficulty, defaultDifficulty)
	language := orDefault(req.Language, defaultLanguage)

	// not cached: asking twice should give a new idea
	text, ok := s.generate(ctx, kindProjectIdea, buildProjectIdeaPrompt(req), false)
	if !ok {
		return &models.ProjectIdea{
			Interests:   req.Interests,
			Difficulty:  difficulty,
			Language:    language,
			Description: FallbackText,
			Features:    []string{},
			Steps:       []string{},
			Concepts:    []string{},
			Fallback:    true,
			CreatedAt:   time.Now().UTC(),
		}, nil
	}

	idea := ParseProjectIdea(text)
	idea.ID = primitive.NewObjectID()
	idea.UserID = userID
	idea.Interests = req.Interests
	idea.Difficulty = difficulty
	idea.Language = language
	idea.CreatedAt = time.Now().UTC()

	if err := s.ideaRepo.Create(ctx, &idea); err != nil {
		return nil, utils.Internal("Failed to save project idea", err)
	}
	if err := s.link(ctx, userID, repositories.ProjectIdeasField, idea.ID); err != nil {
		discardUnlinked(ctx, s.ideaRepo, userID, idea.ID)
		return nil, err
	}
	log.Info().Str("user_id", userID.Hex()).Str("project_idea_id", idea.ID.Hex()).Msg("Project idea saved")
	return &idea, nil
}

func (s *aiService) ListConcepts(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Concept, error) {
	items, err := s.conceptRepo.FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, utils.Internal("Failed to fetch concepts", err)
	}
	return items, nil
}

func (s *aiService) ListCodeReviews(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.CodeReview, error) {
	items, err := s.reviewRepo.FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, utils.Internal("Failed to fetch code reviews", err)
	}
	return items, nil
}

func (s *aiService) ListProjectIdeas(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.ProjectIdea, error) {
	items, err := s.ideaRepo.FindByUser(ctx, userID, limit)
	if err != nil {
		return nil, utils.Internal("Failed to fetch project ideas", err)
	}
	return items, nil
}

// generate returns the model's answer for prompt. ok is false when the provider failed or
// answered with nothing; the failure is logged and never reaches the caller.
func (s *aiService) generate(ctx context.Context, kind, prompt string, cacheable bool) (text string, ok bool) {
	key := kind + ":" + utils.HashToken(prompt)
	if cacheable {
		cached, hit, err := s.cache.Get(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("kind", kind).Msg("AI cache lookup failed")
		}
		if hit && strings.TrimSpace(cached) != "" {
			metrics.AIRequestsTotal.WithLabelValues(kind, "cache_hit").Inc()
			return cached, true
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.settings.Timeout)
	defer cancel()

	start := time.Now()
	text, err := s.generator.Generate(callCtx, prompt)
	metrics.AIRequestDurationSeconds.WithLabelValues(kind, s.generator.Name()).Observe(time.Since(start).Seconds())

	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty response")
	}
	if err != nil {
		metrics.AIRequestsTotal.WithLabelValues(kind, "fallback").Inc()
		log.Warn().Err(err).Str("kind", kind).Str("provider", s.generator.Name()).Msg("AI generation failed, returning placeholder")
		return "", false
	}

	metrics.AIRequestsTotal.WithLabelValues(kind, "generated").Inc()
	if cacheable {
		if err := s.cache.Set(ctx, key, text, s.settings.CacheTTL); err != nil {
			log.Warn().Err(err).Str("kind", kind).Msg("Failed to cache AI response")
		}
	}
	return text, true
}

// discardUnlinked removes a result that could not be referenced from its user.
func discardUnlinked[T any](ctx context.Context, repo repositories.HistoryRepository[T], userID, id primitive.ObjectID) {
	if _, err := repo.Delete(context.WithoutCancel(ctx), userID, id); err != nil {
		log.Error().Err(err).Str("user_id", userID.Hex()).Str("id", id.Hex()).Msg("Failed to remove unlinked AI result")
	}
}

func (s *aiService) link(ctx context.Context, userID primitive.ObjectID, field string, refID primitive.ObjectID) error {
	if err := s.userRepo.AddReference(ctx, userID, field, refID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return utils.NotFound("User not found")
		}
		return utils.Internal("Failed to link result to user", err)
	}
	return nil
}
