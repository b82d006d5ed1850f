package middleware

import (
	"context"
	"net/http"

	"recipebook/logging"
	"recipebook/models"
	"recipebook/utils"

	"github.com/julienschmidt/httprouter"
)

// Validator resolves an Authorization header to a user. auth.Service
// implements it.
type Validator interface {
	Authenticate(ctx context.Context, header string) (*models.User, error)
}

type Authenticator struct {
	v   Validator
	log logging.Logger
}

func NewAuthenticator(v Validator, log logging.Logger) *Authenticator {
	return &Authenticator{v: v, log: logging.OrNop(log)}
}

// Authenticate gates next behind a valid bearer token and puts the resolved
// user in the request context. OPTIONS requests skip the gate and get the
// preflight response instead.
func (a *Authenticator) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if r.Method == http.MethodOptions {
			Preflight(w, r, ps)
			return
		}

		user, err := a.v.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			a.log.Debug(r.Context(), "authentication failed", "path", r.URL.Path, "error", err)
			utils.RespondWithAppError(w, r, a.log, err)
			return
		}
		next(w, r.WithContext(utils.WithUser(r.Context(), user)), ps)
	}
}

// SetPreflightHeaders writes the fixed CORS permissions.
func SetPreflightHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}

func Preflight(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	SetPreflightHeaders(w)
	w.WriteHeader(http.StatusOK)
}
