package router

import (
	"net/http"

	"github.com/pizzanight/server/cliparse"
	"github.com/pizzanight/server/handlers"
	"github.com/pizzanight/server/middleware"
	"github.com/pizzanight/server/session"
)

func NewRouter(sess *session.Session, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	statusHandler := handlers.NewStatusHandler(sess, cfg)
	entriesHandler := handlers.NewEntriesHandler(sess, cfg)
	socialHandler := handlers.NewSocialHandler(sess, cfg)
	usersHandler := handlers.NewUsersHandler(sess, cfg)
	adminHandler := handlers.NewAdminHandler(sess, cfg)

	// Health and sync status
	mux.HandleFunc("GET /health", statusHandler.Health)
	mux.HandleFunc("GET /status", middleware.WithLogging(statusHandler.Status))
	mux.HandleFunc("POST /sync", middleware.WithLogging(statusHandler.ForceSync))
	mux.HandleFunc("PUT /online", middleware.WithLogging(statusHandler.SetOnline))

	// Document and entries
	mux.HandleFunc("GET /document", middleware.WithLogging(entriesHandler.GetDocument))
	mux.HandleFunc("POST /entries", middleware.WithLogging(entriesHandler.AddEntry))
	mux.HandleFunc("DELETE /entries/{id}", middleware.WithLogging(entriesHandler.DeleteEntry))
	mux.HandleFunc("PUT /entries/{id}/votes", middleware.WithLogging(entriesHandler.SetVote))
	mux.HandleFunc("PUT /entries/{id}/confirm", middleware.WithLogging(entriesHandler.ConfirmVote))
	mux.HandleFunc("PUT /entries/{id}/notes", middleware.WithLogging(entriesHandler.SetGlobalNote))
	mux.HandleFunc("PUT /entries/{id}/date", middleware.WithLogging(entriesHandler.SetDate))

	// Media, comments and reactions
	mux.HandleFunc("POST /entries/{id}/media", middleware.WithLogging(socialHandler.AddMedia))
	mux.HandleFunc("PUT /media/{mediaId}", middleware.WithLogging(socialHandler.UpdateMedia))
	mux.HandleFunc("DELETE /media/{mediaId}", middleware.WithLogging(socialHandler.DeleteMedia))
	mux.HandleFunc("POST /media/{mediaId}/comments", middleware.WithLogging(socialHandler.AddComment))
	mux.HandleFunc("PUT /media/{mediaId}/comments/{commentId}", middleware.WithLogging(socialHandler.EditComment))
	mux.HandleFunc("DELETE /media/{mediaId}/comments/{commentId}", middleware.WithLogging(socialHandler.DeleteComment))
	mux.HandleFunc("PUT /media/{mediaId}/reactions", middleware.WithLogging(socialHandler.SetReaction))
	mux.HandleFunc("PUT /media/{mediaId}/comments/{commentId}/reactions", middleware.WithLogging(socialHandler.SetCommentReaction))
	mux.HandleFunc("POST /media/{mediaId}/comments/{commentId}/replies", middleware.WithLogging(socialHandler.AddReply))
	mux.HandleFunc("PUT /media/{mediaId}/comments/{commentId}/replies/{replyId}", middleware.WithLogging(socialHandler.EditReply))
	mux.HandleFunc("DELETE /media/{mediaId}/comments/{commentId}/replies/{replyId}", middleware.WithLogging(socialHandler.DeleteReply))
	mux.HandleFunc("PUT /media/{mediaId}/comments/{commentId}/replies/{replyId}/reactions", middleware.WithLogging(socialHandler.SetReplyReaction))
	mux.HandleFunc("PUT /media/{mediaId}/poll-votes", middleware.WithLogging(socialHandler.SetPollVote))

	// Users and gamification
	mux.HandleFunc("POST /users", middleware.WithLogging(usersHandler.Register))
	mux.HandleFunc("POST /users/login", middleware.WithLogging(usersHandler.Login))
	mux.HandleFunc("PUT /users/{nickname}", middleware.WithLogging(usersHandler.Update))
	mux.HandleFunc("POST /users/{nickname}/xp", middleware.WithLogging(usersHandler.Stats))
	mux.HandleFunc("POST /notifications", middleware.WithLogging(usersHandler.Notify))

	// Admin operations
	mux.HandleFunc("POST /admin/reset", middleware.WithLogging(adminHandler.ResetVotes))
	mux.HandleFunc("POST /admin/release", middleware.WithLogging(adminHandler.ReleaseVoting))
	mux.HandleFunc("POST /admin/users/{nickname}/reset-xp", middleware.WithLogging(adminHandler.ResetUserXP))
	mux.HandleFunc("POST /admin/snapshots", middleware.WithLogging(adminHandler.CreateSnapshot))
	mux.HandleFunc("GET /admin/snapshots", middleware.WithLogging(adminHandler.ListSnapshots))
	mux.HandleFunc("DELETE /admin/snapshots/{id}", middleware.WithLogging(adminHandler.DeleteSnapshot))
	mux.HandleFunc("POST /admin/snapshots/{id}/restore", middleware.WithLogging(adminHandler.RestoreSnapshot))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pizzanight API v1"))
	})

	return mux
}
