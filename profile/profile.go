// Package profile serves the caller's own account.
package profile

import (
	"net/http"

	"recipebook/logging"
	"recipebook/recipes"
	"recipebook/users"
	"recipebook/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	users   users.Store
	recipes *recipes.Service
	log     logging.Logger
}

func NewHandler(us users.Store, rs *recipes.Service, log logging.Logger) *Handler {
	return &Handler{users: us, recipes: rs, log: logging.OrNop(log)}
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := utils.UserFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, user.Summary())
}

// DeleteProfile removes the caller's recipes, then the caller.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := utils.UserFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	n, err := h.recipes.DeleteByAuthor(r.Context(), user.ID)
	if err != nil {
		utils.RespondWithAppError(w, r, h.log, err)
		return
	}
	if err := h.users.Delete(r.Context(), user.ID); err != nil {
		utils.RespondWithAppError(w, r, h.log, err)
		return
	}

	h.log.Info(r.Context(), "account deleted", "user_id", user.ID.Hex(), "recipes_deleted", n)
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":         "Account deleted successfully",
		"recipes_deleted": n,
	})
}
