package auth

import (
	"net/http"

	"recipebook/logging"
	"recipebook/uploads"
	"recipebook/utils"

	"github.com/julienschmidt/httprouter"
)

// Handler exposes the Service over HTTP.
type Handler struct {
	svc      *Service
	log      logging.Logger
	maxBytes int64
}

func NewHandler(svc *Service, log logging.Logger, maxUploadBytes int64) *Handler {
	return &Handler{svc: svc, log: logging.OrNop(log), maxBytes: maxUploadBytes}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register accepts a multipart/urlencoded form (with an optional
// profile_picture file) or a JSON body.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var in RegisterInput

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
		in.Username, _ = utils.FormValue(r, "username")
		in.Email, _ = utils.FormValue(r, "email")
		in.Password = r.FormValue("password")

		if fh := utils.FormFile(r, "profile_picture"); fh != nil {
			file, closer, err := uploads.FromHeader(fh)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "Error reading file")
				return
			}
			defer closer.Close()
			in.ProfilePicture = &file
		}
	}

	if _, err := h.svc.Register(r.Context(), in); err != nil {
		utils.RespondWithAppError(w, r, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"message": "User registered successfully"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := utils.DecodeJSON(w, r, 1<<20, &req); err != nil {
		utils.RespondWithAppError(w, r, h.log, err)
		return
	}

	token, user, err := h.svc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		utils.RespondWithAppError(w, r, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"message": "Logged in successfully",
		"token":   token,
		"user":    user.Summary(),
	})
}

// Logout is a no-op on the server: tokens are stateless and the client
// discards its copy.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if u, ok := utils.UserFromContext(r.Context()); ok {
		h.log.Info(r.Context(), "user logged out", "user_id", u.ID.Hex())
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"message": "Logged out successfully"})
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := utils.UserFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	token, err := h.svc.Refresh(r.Context(), user)
	if err != nil {
		utils.RespondWithAppError(w, r, h.log, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"token": token})
}

