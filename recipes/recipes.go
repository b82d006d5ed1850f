package recipes

import (
	"io"
	"net/http"
	"strconv"

	"recipebook/common"
	"recipebook/logging"
	"recipebook/models"
	"recipebook/uploads"
	"recipebook/utils"

	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	svc      *Service
	log      logging.Logger
	maxBytes int64
}

func NewHandler(svc *Service, log logging.Logger, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, log: logging.OrNop(log), maxBytes: maxUploadBytes}
}

func (h *Handler) caller(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	u, ok := utils.UserFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return u, ok
}

// Get all recipes
func (h *Handler) GetRecipes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	views, err := h.svc.List(r.Context(), FilterFromQuery(r.URL.Query()))
	if err != nil {
		utils.RespondWithAppError(w, r, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, views)
}

func (h *Handler) GetMyRecipes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}
	views, err := h.svc.ListByAuthor(r.Context(), user.ID)
	if err != nil {
		utils.RespondWithAppError(w, r, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, views)
}

func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	var in CreateInput
	if utils.IsJSON(r) {
		if err := utils.DecodeJSON(w, r, h.maxBytes, &in); err != nil {
			utils.RespondWithAppError(w, r, h.log, err)
			return
		}
	} else {
		if err := utils.ParseForm(w, r, h.maxBytes); err != nil {
			utils.RespondWithAppError(w, r, h.log, err)
			return
		}
		p, err := patchFromForm(r)
		if err != nil {
			utils.RespondWithAppError(w, r, h.log, err)
			return
		}
		in = inputFromPatch(p)

		image, closer, err := formImage(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Error reading file")
			return
		}
		if closer != nil {
			defer closer.Close()
		}
		in.Image = image
	}

	recipe, err := h.svc.Create(r.Context(), user, in)
	if err != nil {
		utils.RespondWithAppError(w, r, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":   "Recipe added successfully",
		"recipe_id": recipe.ID.Hex(),
	})
}

func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}

	var (
		patch models.RecipePatch
		image *uploads.File
	)
	if utils.IsJSON(r) {
		if err := utils.DecodeJSON(w, r, h.maxBytes, &patch); err != nil {
			utils.RespondWithAppError(w, r, h.log, err)
			return
		}
	} else {
		if err := utils.ParseForm(w, r, h.maxBytes); err != nil {
			utils.RespondWithAppError(w, r, h.log, err)
			return
		}
		var err error
		if patch, err = patchFromForm(r); err != nil {
			utils.RespondWithAppError(w, r, h.log, err)
			return
		}
		var closer io.Closer
		image, closer, err = formImage(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Error reading file")
			return
		}
		if closer != nil {
			defer closer.Close()
		}
	}

	recipe, err := h.svc.Update(r.Context(), user, ps.ByName("id"), patch, image)
	if err != nil {
		utils.RespondWithAppError(w, r, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Recipe updated successfully",
		"recipe":  recipe,
	})
}

func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), user, ps.ByName("id")); err != nil {
		utils.RespondWithAppError(w, r, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Recipe deleted successfully"})
}

func (h *Handler) ToggleLike(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}
	liked, count, err := h.svc.ToggleLike(r.Context(), user, ps.ByName("id"))
	if err != nil {
		utils.RespondWithAppError(w, r, h.log, err)
		return
	}
	msg := "Recipe unliked"
	if liked {
		msg = "Recipe liked"
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message":     msg,
		"liked":       liked,
		"likes_count": count,
	})
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := h.caller(w, r)
	if !ok {
		return
	}
	var req commentRequest
	if err := utils.DecodeJSON(w, r, 1<<20, &req); err != nil {
		utils.RespondWithAppError(w, r, h.log, err)
		return
	}

	c, err := h.svc.AddComment(r.Context(), user, ps.ByName("id"), req.Content)
	if err != nil {
		utils.RespondWithAppError(w, r, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Comment added successfully",
		"comment": models.CommentView{User: user.Username, Content: c.Content, CreatedAt: c.CreatedAt},
	})
}

// patchFromForm collects the recipe fields present in a parsed form. List
// fields accept both "key" and "key[]".
func patchFromForm(r *http.Request) (models.RecipePatch, error) {
	var p models.RecipePatch
	if v, ok := utils.FormValue(r, "title"); ok {
		p.Title = &v
	}
	if v, ok := utils.FormValue(r, "description"); ok {
		p.Description = &v
	}
	if vs, ok := utils.FormValues(r, "ingredients"); ok {
		p.Ingredients = &vs
	}
	if vs, ok := utils.FormValues(r, "steps"); ok {
		p.Steps = &vs
	}
	if v, ok := utils.FormValue(r, "image_url"); ok {
		p.ImageURL = &v
	}
	if v, ok := utils.FormValue(r, "cuisine"); ok && v != "" {
		c := models.Cuisine(v)
		p.Cuisine = &c
	}
	if v, ok := utils.FormValue(r, "difficulty"); ok && v != "" {
		d := models.Difficulty(v)
		p.Difficulty = &d
	}
	if v, ok := utils.FormValue(r, "cooking_time"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, common.Validation("Cooking time must be a non-negative integer")
		}
		p.CookingTime = &n
	}
	return p, nil
}

func inputFromPatch(p models.RecipePatch) CreateInput {
	var in CreateInput
	if p.Title != nil {
		in.Title = *p.Title
	}
	if p.Description != nil {
		in.Description = *p.Description
	}
	if p.Ingredients != nil {
		in.Ingredients = *p.Ingredients
	}
	if p.Steps != nil {
		in.Steps = *p.Steps
	}
	if p.ImageURL != nil {
		in.ImageURL = *p.ImageURL
	}
	if p.Cuisine != nil {
		in.Cuisine = *p.Cuisine
	}
	if p.Difficulty != nil {
		in.Difficulty = *p.Difficulty
	}
	if p.CookingTime != nil {
		in.CookingTime = *p.CookingTime
	}
	return in
}

// formImage opens the optional "image" upload. Both results are nil when no
// file was sent.
func formImage(r *http.Request) (*uploads.File, io.Closer, error) {
	fh := utils.FormFile(r, "image")
	if fh == nil {
		return nil, nil, nil
	}
	f, closer, err := uploads.FromHeader(fh)
	if err != nil {
		return nil, nil, err
	}
	return &f, closer, nil
}
