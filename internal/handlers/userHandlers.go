package handlers

import (
	"net/http"

	"codequest/internal/models"
	"codequest/internal/services"
	"codequest/internal/utils"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type UserHandler struct {
	userService  services.UserService
	aiService    services.AIService
	cookieSecure bool
}

func NewUserHandler(userService services.UserService, aiService services.AIService, cookieSecure bool) *UserHandler {
	return &UserHandler{userService: userService, aiService: aiService, cookieSecure: cookieSecure}
}

func (u *UserHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	user, err := u.userService.GetUserProfile(r.Context(), userID)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, user, "User profile fetched")
}

func (u *UserHandler) UpdateMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	var update models.UserProfileUpdate
	if err := utils.DecodeJSON(w, r, &update); err != nil {
		utils.HandleError(w, err)
		return
	}

	user, err := u.userService.UpdateUserProfile(r.Context(), userID, &update)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, user, "Profile updated")
}

func (u *UserHandler) DeleteMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	if err := u.userService.DeleteUser(r.Context(), userID); err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.ClearAuthCookies(w, u.cookieSecure)
	utils.RespondWithData(w, http.StatusOK, nil, "Account deleted")
}

func (u *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	var update models.PreferencesUpdate
	if err := utils.DecodeJSON(w, r, &update); err != nil {
		utils.HandleError(w, err)
		return
	}

	user, err := u.userService.UpdatePreferences(r.Context(), userID, &update)
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, user, "Preferences updated")
}

func (u *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	var req models.ChangePasswordRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.HandleError(w, err)
		return
	}

	if err := u.userService.ChangePassword(r.Context(), userID, &req); err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, nil, "Password changed")
}

func (u *UserHandler) ListConcepts(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	items, err := u.aiService.ListConcepts(r.Context(), userID, utils.ParseLimit(r, defaultHistoryLimit, maxHistoryLimit))
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, items, "Concepts fetched")
}

func (u *UserHandler) ListCodeReviews(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	items, err := u.aiService.ListCodeReviews(r.Context(), userID, utils.ParseLimit(r, defaultHistoryLimit, maxHistoryLimit))
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, items, "Code reviews fetched")
}

func (u *UserHandler) ListProjectIdeas(w http.ResponseWriter, r *http.Request) {
	userID, err := utils.GetUserIDFromContext(r)
	if err != nil {
		utils.HandleError(w, err)
		return
	}

	items, err := u.aiService.ListProjectIdeas(r.Context(), userID, utils.ParseLimit(r, defaultHistoryLimit, maxHistoryLimit))
	if err != nil {
		utils.HandleError(w, err)
		return
	}
	utils.RespondWithData(w, http.StatusOK, items, "Project ideas fetched")
}
