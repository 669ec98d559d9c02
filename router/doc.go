/*
Package router defines HTTP routes for the pizzanight API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(sess, cfg)

# Endpoints

Health and sync:

	GET  /health
	GET  /status  - peer count, syncing window, mirror flags
	POST /sync    - force a manual resync
	PUT  /online  - toggle the connectivity switch

Document and entries:

	GET    /document
	POST   /entries
	DELETE /entries/{id}
	PUT    /entries/{id}/votes
	PUT    /entries/{id}/confirm
	PUT    /entries/{id}/notes
	PUT    /entries/{id}/date

Media and social:

	POST   /entries/{id}/media
	PUT    /media/{mediaId}
	DELETE /media/{mediaId}
	POST   /media/{mediaId}/comments
	PUT    /media/{mediaId}/comments/{commentId}
	DELETE /media/{mediaId}/comments/{commentId}
	PUT    /media/{mediaId}/reactions
	PUT    /media/{mediaId}/comments/{commentId}/reactions
	POST   /media/{mediaId}/comments/{commentId}/replies
	PUT    /media/{mediaId}/comments/{commentId}/replies/{replyId}
	DELETE /media/{mediaId}/comments/{commentId}/replies/{replyId}
	PUT    /media/{mediaId}/comments/{commentId}/replies/{replyId}/reactions
	PUT    /media/{mediaId}/poll-votes

Users and gamification:

	POST /users
	POST /users/login
	PUT  /users/{nickname}
	POST /users/{nickname}/xp
	POST /notifications

Admin (requires X-Admin-PIN when configured):

	POST   /admin/reset
	POST   /admin/release
	POST   /admin/users/{nickname}/reset-xp
	POST   /admin/snapshots
	GET    /admin/snapshots
	DELETE /admin/snapshots/{id}
	POST   /admin/snapshots/{id}/restore

# Handler Initialization

The router creates handler instances with dependency injection:

	statusHandler := handlers.NewStatusHandler(sess, cfg)
	entriesHandler := handlers.NewEntriesHandler(sess, cfg)
	socialHandler := handlers.NewSocialHandler(sess, cfg)
	usersHandler := handlers.NewUsersHandler(sess, cfg)
	adminHandler := handlers.NewAdminHandler(sess, cfg)

All handlers receive the session handle and configuration.
*/
package router
