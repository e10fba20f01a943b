package handlers

import (
	"net/http"

	"codequest/internal/models"
	"codequest/internal/services"
	"codequest/internal/utils"
)

const fallbackMessage = "AI mentor is unavailable, showing a placeholder"

type AIHandler struct {
	aiService services.AIService
}

func NewAIHandler(aiService services.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

func (h *AIHandler) ExplainConcept(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	var req models.ExplainRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.HandleError(w, err)
		return
	}

	concept, err := h.aiService.ExplainConcept(r.Context(), userID, req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, concept, resultMessage(concept.Fallback, "Concept explained"))
}

func (h *AIHandler) ReviewCode(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	var req models.CodeReviewRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.HandleError(w, err)
		return
	}

	review, err := h.aiService.ReviewCode(r.Context(), userID, req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, review, resultMessage(review.Fallback, "Code reviewed"))
}

func (h *AIHandler) SuggestProjectIdea(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	var req models.ProjectIdeaRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.HandleError(w, err)
		return
	}

	idea, err := h.aiService.SuggestProjectIdea(r.Context(), userID, req)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, idea, resultMessage(idea.Fallback, "Project idea generated"))
}

func resultMessage(fallback bool, ok string) string {
	if fallback {
		return fallbackMessage
	}
	return ok
}
