package routes

import (
	"fmt"
	"net/http"

	"recipebook/auth"
	"recipebook/feed"
	"recipebook/middleware"
	"recipebook/profile"
	"recipebook/ratelim"
	"recipebook/recipes"

	"github.com/julienschmidt/httprouter"
)

// Deps are the handlers the router mounts. Feed may be nil.
type Deps struct {
	Auth      *auth.Handler
	Recipes   *recipes.Handler
	Profile   *profile.Handler
	Gate      *middleware.Authenticator
	Limiter   *ratelim.RateLimiter
	Feed      *feed.Hub
	UploadDir string
}

func NewRouter(d Deps) *httprouter.Router {
	router := httprouter.New()
	router.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.Preflight(w, r, nil)
	})

	AddUtilityRoutes(router)
	AddAuthRoutes(router, d.Auth, d.Gate, d.Limiter)
	AddRecipeRoutes(router, d.Recipes, d.Gate)
	AddProfileRoutes(router, d.Profile, d.Gate)
	AddStaticRoutes(router, d.UploadDir)
	if d.Feed != nil {
		AddFeedRoutes(router, d.Feed)
	}
	return router
}

func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func AddUtilityRoutes(router *httprouter.Router) {
	router.GET("/health", Index)
}

func AddAuthRoutes(router *httprouter.Router, h *auth.Handler, gate *middleware.Authenticator, lim *ratelim.RateLimiter) {
	router.POST("/register", lim.Limit(h.Register))
	router.POST("/login", lim.Limit(h.Login))
	router.GET("/logout", gate.Authenticate(h.Logout))
	router.POST("/token/refresh", lim.Limit(gate.Authenticate(h.RefreshToken)))
}

// AddRecipeRoutes mounts the recipe endpoints. There is no GET /recipes/:id:
// httprouter cannot hold it next to GET /recipes/my.
func AddRecipeRoutes(router *httprouter.Router, h *recipes.Handler, gate *middleware.Authenticator) {
	router.GET("/recipes", h.GetRecipes)
	router.GET("/recipes/my", gate.Authenticate(h.GetMyRecipes))
	router.POST("/recipes", gate.Authenticate(h.CreateRecipe))
	router.PUT("/recipes/:id", gate.Authenticate(h.UpdateRecipe))
	router.DELETE("/recipes/:id", gate.Authenticate(h.DeleteRecipe))
	router.POST("/recipes/:id/like", gate.Authenticate(h.ToggleLike))
	router.POST("/recipes/:id/comment", gate.Authenticate(h.AddComment))
}

func AddProfileRoutes(router *httprouter.Router, h *profile.Handler, gate *middleware.Authenticator) {
	router.GET("/profile", gate.Authenticate(h.GetProfile))
	router.DELETE("/profile", gate.Authenticate(h.DeleteProfile))
}

func AddStaticRoutes(router *httprouter.Router, uploadDir string) {
	router.ServeFiles("/uploads/*filepath", http.Dir(uploadDir))
}

func AddFeedRoutes(router *httprouter.Router, hub *feed.Hub) {
	router.GET("/ws/feed", hub.Serve)
}
