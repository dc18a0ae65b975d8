package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	errorvalues "github.com/saati/saati/internal/error_values"
	"github.com/saati/saati/pkg/entity"
	"github.com/saati/saati/pkg/httputil"
)

var (
	requestIDKContextKey = "Request-ID"
	loggerContextKey     = "Logger"
	identityContextKey   = "Identity"
)

func (s *Server) RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.New()
		ctx := context.WithValue(r.Context(), requestIDKContextKey, reqID.String())
		r = r.WithContext(ctx)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) SettingUpLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.Default()
		reqID, ok := r.Context().Value(requestIDKContextKey).(string)
		if ok && reqID != "" {
			logger = logger.With(slog.String("request_id", reqID))
		}
		logger = logger.With(slog.String("from", r.RemoteAddr))
		ctx := context.WithValue(r.Context(), loggerContextKey, logger)
		r = r.WithContext(ctx)
		next.ServeHTTP(w, r)
	})
}

// IdentityMiddleware resolves the acting owner. A bearer token resolves to
// an authenticated user (remote backend); an X-Guest-ID header to a guest
// session (local backend). This is the single point where the storage
// routing decision is made; everything downstream sees only an Identity.
func (s *Server) IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLoggerFromCtx(r.Context())
		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			tokenString, err := GetTokenFromHeader(r)
			if err != nil {
				logger.Error("auth failed: invalid token")
				httputil.WriteErrorResponse(w, http.StatusUnauthorized, "authorization failed: invalid token", nil)
				return
			}
			tokenClaims, err := s.jwtService.ParseToken(tokenString)
			if err != nil {
				switch {
				case errors.Is(err, errorvalues.ErrInvalidToken):
					logger.Error("auth failed: error parsing token")
					httputil.WriteErrorResponse(w, http.StatusUnauthorized, "authorization failed: invalid token", nil)
					return
				default:
					logger.Error("auth failed: internal error while parsing token", slog.String("error", err.Error()))
					httputil.WriteErrorResponse(w, http.StatusUnauthorized, "error parsing token", nil)
					return
				}
			}
			now := time.Now()
			if tokenClaims.ExpiresAt.Time.Before(now) || tokenClaims.NotBefore.Time.After(now) {
				logger.Error("tried to auth with expired or not ready token")
				httputil.WriteErrorResponse(w, http.StatusUnauthorized, "token expired or not ready", nil)
				return
			}
			uid, err := uuid.Parse(tokenClaims.UserID)
			if err != nil {
				logger.Error("invalid uid in token claims")
				httputil.WriteErrorResponse(w, http.StatusUnauthorized, "invalid token payload", nil)
				return
			}
			// Assuring if user still exists
			ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			user, err := s.userService.GetByID(ctx, uid)
			if err != nil {
				if errors.Is(err, errorvalues.ErrUserNotFound) {
					logger.Error("user doesn't exist")
					httputil.WriteErrorResponse(w, http.StatusNotFound, "auth failed: user not found", nil)
					return
				}
				logger.Error("error while searching for user", slog.String("error", err.Error()))
				httputil.WriteErrorResponse(w, http.StatusInternalServerError, "internal error while searching for user", nil)
				return
			}
			reqCtx := context.WithValue(r.Context(), identityContextKey, entity.UserIdentity(uid, user.Name))
			next.ServeHTTP(w, r.WithContext(reqCtx))
			return
		}
		if guestHeader := r.Header.Get("X-Guest-ID"); guestHeader != "" {
			gid, err := uuid.Parse(guestHeader)
			if err != nil {
				logger.Error("invalid guest session id")
				httputil.WriteErrorResponse(w, http.StatusUnauthorized, "invalid guest session id", nil)
				return
			}
			reqCtx := context.WithValue(r.Context(), identityContextKey, entity.GuestIdentity(gid))
			next.ServeHTTP(w, r.WithContext(reqCtx))
			return
		}
		logger.Error("request without token or guest session")
		httputil.WriteErrorResponse(w, http.StatusUnauthorized, "no authorization", nil)
	})
}

func (s *Server) LoggerExtensionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := GetLoggerFromCtx(r.Context())
		owner, ok := r.Context().Value(identityContextKey).(entity.Identity)
		if ok {
			logger = logger.With(slog.String("owner", owner.Key()))
		}
		ctx := context.WithValue(r.Context(), loggerContextKey, logger)
		r = r.WithContext(ctx)
		next.ServeHTTP(w, r)
	})
}

func GetLoggerFromCtx(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerContextKey).(*slog.Logger)
	if ok {
		return logger
	}
	return slog.Default()
}

func GetTokenFromHeader(r *http.Request) (string, error) {
	token := r.Header.Get("Authorization")
	if token == "" {
		return "", errorvalues.ErrInvalidToken
	}
	parts := strings.Split(token, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", errorvalues.ErrInvalidToken
	}
	return parts[1], nil
}

func GetIdentityFromContext(r *http.Request) (entity.Identity, error) {
	owner, ok := r.Context().Value(identityContextKey).(entity.Identity)
	if !ok {
		return entity.Identity{}, errors.New("identity invalid or doesn't exists")
	}
	return owner, nil
}
