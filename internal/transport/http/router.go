package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"blogpulse/internal/handler"
	"blogpulse/internal/httputil"
	authmw "blogpulse/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler       *handler.AuthHandler
	PostHandler       *handler.PostHandler
	EngagementHandler *handler.EngagementHandler
	CommentHandler    *handler.CommentHandler
	AdminHandler      *handler.AdminHandler
	MediaHandler      *handler.MediaHandler
	JWTSecret         string
}

// NewRouter creates and configures a new Chi router with all route groups
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	// Public post and engagement routes. Engagement writes carry a client
	// fingerprint in the body; they need no authentication.
	r.Route("/posts", func(r chi.Router) {
		r.Get("/", cfg.PostHandler.List)
		r.Get("/{id}", cfg.PostHandler.Get)
		r.Get("/{id}/stats", cfg.PostHandler.Stats)

		r.Post("/{id}/views", cfg.EngagementHandler.RegisterView)
		r.Post("/{id}/likes", cfg.EngagementHandler.ToggleLike)
		r.Get("/{id}/likes/status", cfg.EngagementHandler.GetLikeStatus)

		r.Post("/{id}/comments", cfg.CommentHandler.Submit)
		r.Get("/{id}/comments/tree", cfg.CommentHandler.Tree)
	})

	r.Route("/comments", func(r chi.Router) {
		r.Post("/{commentId}/likes", cfg.EngagementHandler.ToggleCommentLike)
		r.Get("/{commentId}/likes/status", cfg.EngagementHandler.GetCommentLikeStatus)
	})

	// Admin login is public; everything else under /admin requires the token.
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", cfg.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authmw.AdminAuth(cfg.JWTSecret))

			r.Get("/comments/pending", cfg.AdminHandler.PendingComments)
			r.Post("/comments/{commentId}/moderate", cfg.AdminHandler.ModerateComment)
			r.Delete("/comments/{commentId}", cfg.AdminHandler.DeleteComment)

			r.Post("/posts", cfg.AdminHandler.CreatePost)
			r.Delete("/posts/{id}", cfg.AdminHandler.DeletePost)

			if cfg.MediaHandler != nil {
				r.Post("/media/featured", cfg.MediaHandler.UploadFeaturedImage)
			}
		})
	})

	return r
}
