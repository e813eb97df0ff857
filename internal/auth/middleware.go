package auth

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/adityavardhansharma/ai-mock-interview/internal/models"
	"github.com/adityavardhansharma/ai-mock-interview/internal/utils"
)

// Middleware rejects requests without a valid token and stores the user ID
// in the request context.
func Middleware(secret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := VerifyToken(r, secret)
			if err != nil {
				logger.Debug("Rejected request", zap.String("path", r.URL.Path), zap.Error(err))
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "unauthorized",
					Message: "Missing or invalid credentials",
				})
				return
			}

			userID, err := UserIDFromClaims(claims)
			if err != nil {
				utils.JSON(w, http.StatusUnauthorized, models.ErrorResponse{
					Code:    "unauthorized",
					Message: "Invalid token claims",
				})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
