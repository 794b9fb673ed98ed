package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"uoauth/adapters/records"
	"uoauth/adapters/teamspeak"
	"uoauth/api/openapi"
)

const (
	HEADER_API_KEY = "X-API-KEY"

	// TokenTTL 是驗證碼的有效時間
	TokenTTL    = 300 * time.Second
	tokenLength = 9
)

// groupDecoration 是 TeamSpeak 群組名稱前的裝飾符號
var groupDecoration = regexp.MustCompile(`\*\s+`)

// APIKeyMiddleware 檢查 X-API-KEY 是否在允許的清單中
func (impl *ServerImpl) APIKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HEADER_API_KEY)
		valid := key != "" && lo.ContainsBy(impl.config.APIKeys, func(allowed string) bool {
			return subtle.ConstantTimeCompare([]byte(key), []byte(allowed)) == 1
		})
		if !valid {
			c.AbortWithStatusJSON(http.StatusForbidden, openapi.Error{Error: "invalid or missing API key in headers."})
			return
		}
		c.Next()
	}
}

// Issue one-time token
// (POST /auth/token)
func (impl *ServerImpl) PostAuthToken(ctx context.Context, request openapi.PostAuthTokenRequestObject) (openapi.PostAuthTokenResponseObject, error) {
	const op = "PostAuthToken"
	logger := impl.logger.With(slog.String("op", op))
	if request.Body == nil || request.Body.Username == "" {
		return openapi.PostAuthToken400JSONResponse{Error: "username is required"}, nil
	}
	username := request.Body.Username

	reqCtx := ctx.(*gin.Context).Request.Context()
	record, err := impl.records.FindActiveByUsername(reqCtx, username)
	if errors.Is(err, records.ErrNotFound) {
		return openapi.PostAuthToken404JSONResponse{Error: "no authenticated user found for " + username}, nil
	}
	if err != nil {
		logger.Error("Fail to find user", slog.Any("error", err))
		return openapi.PostAuthToken500JSONResponse{Error: "fail to find user"}, nil
	}

	token := lo.RandomString(tokenLength, lo.AlphanumericCharset)
	if err := impl.mailer.SendToken(reqCtx, record.Email, token, TokenTTL); err != nil {
		logger.Error("Fail to send token", slog.String("username", username), slog.Any("error", err))
		return openapi.PostAuthToken500JSONResponse{Error: "fail to send token"}, nil
	}
	impl.metrics.TokensIssued.Inc()
	return openapi.PostAuthToken200JSONResponse{Ttl: int(TokenTTL / time.Second), Token: token}, nil
}

// List authenticated users
// (GET /users)
func (impl *ServerImpl) GetUsers(ctx context.Context, request openapi.GetUsersRequestObject) (openapi.GetUsersResponseObject, error) {
	const op = "GetUsers"
	reqCtx := ctx.(*gin.Context).Request.Context()

	if username := lo.FromPtr(request.Params.Username); username != "" {
		record, err := impl.records.FindActiveByUsername(reqCtx, username)
		if err != nil {
			if !errors.Is(err, records.ErrNotFound) {
				impl.logger.Error("Fail to find user", slog.String("op", op), slog.Any("error", err))
			}
			return openapi.GetUsers404JSONResponse{Error: lo.ToPtr("no authenticated user found for " + username)}, nil
		}
		return openapi.GetUsers200JSONResponse{Users: &[]openapi.User{newUser(record)}}, nil
	}

	active, err := impl.records.ListActive(reqCtx)
	if err != nil {
		impl.logger.Error("Fail to list users", slog.String("op", op), slog.Any("error", err))
		return openapi.GetUsers404JSONResponse{Error: lo.ToPtr("fail to list users")}, nil
	}
	users := make([]openapi.User, len(active))
	for i := range active {
		users[i] = newUser(&active[i])
	}
	return openapi.GetUsers200JSONResponse{Users: &users}, nil
}

// List TeamSpeak server groups of a client
// (GET /users/teamspeak/roles)
func (impl *ServerImpl) GetUsersTeamspeakRoles(ctx context.Context, request openapi.GetUsersTeamspeakRolesRequestObject) (openapi.GetUsersTeamspeakRolesResponseObject, error) {
	const op = "GetUsersTeamspeakRoles"
	databaseID, err := strconv.ParseUint(request.Params.Id, 10, 64)
	if err != nil {
		return openapi.GetUsersTeamspeakRoles400JSONResponse{Error: lo.ToPtr("invalid client database id")}, nil
	}

	groups, err := impl.teamspeak.ServerGroupsByClientID(ctx.(*gin.Context).Request.Context(), databaseID)
	if err != nil {
		impl.logger.Warn("Fail to list server groups", slog.String("op", op), slog.Uint64("id", databaseID), slog.Any("error", err))
		return openapi.GetUsersTeamspeakRoles404JSONResponse{Error: lo.ToPtr("no server groups found for client " + request.Params.Id)}, nil
	}
	return openapi.GetUsersTeamspeakRoles200JSONResponse{
		Groups: lo.ToPtr(lo.Map(groups, func(g teamspeak.ServerGroup, _ int) openapi.TeamSpeakGroup {
			return openapi.TeamSpeakGroup{Sgid: int64(g.ID), Name: groupDecoration.ReplaceAllString(g.Name, "")}
		})),
	}, nil
}
