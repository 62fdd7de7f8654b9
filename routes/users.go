package routes

import (
	"net/http"
	"time"

	"github.com/MeAsCoder/PaidTasks/controllers/auth"
	"github.com/MeAsCoder/PaidTasks/controllers/users"
	"github.com/MeAsCoder/PaidTasks/middleware"

	"github.com/gorilla/mux"
)

// UsersRoutes registers every user-facing route on the given subrouter.
func UsersRoutes(api *mux.Router) {
	// Rate limiter login/register: 60 per IP per 5 minutes
	loginLimiter := middleware.NewIPRateLimiter(60, 5*time.Minute)
	// Rate limiter session: 120 reads / 60 writes per user per minute
	userLimiter := middleware.NewUserRateLimiter(120, 60, 60)

	authed := func(h http.HandlerFunc) http.Handler {
		return userLimiter.Middleware(middleware.AuthMiddleware(h))
	}

	// Register & Login
	api.Handle("/register", loginLimiter.Middleware(http.HandlerFunc(auth.RegisterHandler))).Methods(http.MethodPost)
	api.Handle("/login", loginLimiter.Middleware(http.HandlerFunc(auth.LoginHandler))).Methods(http.MethodPost)
	api.Handle("/refresh", loginLimiter.Middleware(http.HandlerFunc(auth.RefreshHandler))).Methods(http.MethodPost)
	api.Handle("/logout", authed(auth.LogoutHandler)).Methods(http.MethodPost)
	api.Handle("/logout-all", authed(auth.LogoutAllHandler)).Methods(http.MethodPost)

	// Forgot Password
	api.Handle("/auth/forgot-password/request-code", loginLimiter.Middleware(http.HandlerFunc(auth.ForgotPasswordRequestCodeHandler))).Methods(http.MethodPost)
	api.Handle("/auth/forgot-password/verify-code", loginLimiter.Middleware(http.HandlerFunc(auth.ForgotPasswordVerifyCodeHandler))).Methods(http.MethodPost)
	api.Handle("/auth/forgot-password/reset-password", loginLimiter.Middleware(http.HandlerFunc(auth.ForgotPasswordResetPasswordHandler))).Methods(http.MethodPost)

	// Account
	api.Handle("/users/info", authed(users.InfoHandler)).Methods(http.MethodGet)
	api.Handle("/users/profile", authed(users.UpdateProfileHandler)).Methods(http.MethodPut)
	api.Handle("/users/profile/photo", authed(users.DeletePhotoHandler)).Methods(http.MethodDelete)
	api.Handle("/users/change-password", authed(users.ChangePasswordHandler)).Methods(http.MethodPost)

	// Task catalog
	api.Handle("/users/tasks", authed(users.TaskCatalogHandler)).Methods(http.MethodGet)
	api.Handle("/users/tasks/{categoryId:[0-9]+}", authed(users.TaskCategoryHandler)).Methods(http.MethodGet)

	// Task flows
	api.Handle("/users/flows/start", authed(users.StartFlowHandler)).Methods(http.MethodPost)
	api.Handle("/users/flows/{sessionId:[0-9]+}", authed(users.GetFlowHandler)).Methods(http.MethodGet)
	api.Handle("/users/flows/{sessionId:[0-9]+}/answer", authed(users.AnswerFlowHandler)).Methods(http.MethodPost)
	api.Handle("/users/flows/{sessionId:[0-9]+}/advance", authed(users.AdvanceFlowHandler)).Methods(http.MethodPost)
	api.Handle("/users/flows/{sessionId:[0-9]+}/submit", authed(users.SubmitFlowHandler)).Methods(http.MethodPost)
	api.Handle("/users/flows/{sessionId:[0-9]+}/abandon", authed(users.AbandonFlowHandler)).Methods(http.MethodPost)

	// Account activation
	api.Handle("/users/activation", authed(users.ActivationStatusHandler)).Methods(http.MethodGet)
	api.Handle("/users/activation", authed(users.ActivateHandler)).Methods(http.MethodPost)

	// Payout accounts
	api.Handle("/users/payout-accounts", authed(users.AddPayoutAccountHandler)).Methods(http.MethodPost)
	api.Handle("/users/payout-accounts", authed(users.ListPayoutAccountsHandler)).Methods(http.MethodGet)
	api.Handle("/users/payout-accounts", authed(users.EditPayoutAccountHandler)).Methods(http.MethodPut)
	api.Handle("/users/payout-accounts", authed(users.DeletePayoutAccountHandler)).Methods(http.MethodDelete)

	// Withdrawals
	api.Handle("/users/withdrawal", authed(users.WithdrawalHandler)).Methods(http.MethodPost)
	api.Handle("/users/withdrawal", authed(users.ListWithdrawalHandler)).Methods(http.MethodGet)

	// Transaction history
	api.Handle("/users/transaction", authed(users.GetTransactionHistory)).Methods(http.MethodGet)
}
