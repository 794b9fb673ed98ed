package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"uoauth/adapters/discord"
	"uoauth/adapters/session"
	"uoauth/adapters/sse"
	"uoauth/api/openapi"
	"uoauth/verification"
)

// Open event channel
// (GET /events)
func (impl *ServerImpl) GetEvents(ctx context.Context, request openapi.GetEventsRequestObject) (openapi.GetEventsResponseObject, error) {
	const op = "GetEvents"
	logger := impl.logger.With(slog.String("op", op))
	sess, err := loadSession(ctx)
	if err != nil {
		logger.Error("Fail to load session", slog.Any("error", err))
		return openapi.GetEvents500JSONResponse{Error: "session unavailable"}, nil
	}

	// 綁定此連線與 session，之後的 callback 以 session 找到這個連線
	c := ctx.(*gin.Context)
	reqCtx := c.Request.Context()
	correlationID := uuid.NewString()
	if err := impl.correlations.Bind(reqCtx, sess.ID(), correlationID); err != nil {
		logger.Error("Fail to bind correlation id", slog.Any("error", err))
		return openapi.GetEvents500JSONResponse{Error: "fail to open event channel"}, nil
	}
	ch, err := impl.sseManager.Subscribe(correlationID)
	if err != nil {
		logger.Error("Fail to subscribe event channel", slog.Any("error", err))
		return openapi.GetEvents503JSONResponse{Error: "fail to open event channel"}, nil
	}
	impl.metrics.OpenChannels.Inc()
	defer func() {
		impl.metrics.OpenChannels.Dec()
		impl.sseManager.Unsubscribe(correlationID, ch)
		// 連線已經斷開，解除綁定不能使用請求的 context
		if _, err := impl.correlations.Unbind(context.WithoutCancel(reqCtx), sess.ID(), correlationID); err != nil {
			logger.Warn("Fail to unbind correlation id", slog.Any("error", err))
		}
	}()

	// SSE請求合法，開始初始化串流
	c.SetCookie(COOKIE_KEY_CORRELATION_ID, correlationID, 0, "/", "", impl.config.Session.CookieSecure, true)
	w := c.Writer
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(200)

	connected, err := sse.NewEvent(sse.EventConnected, gin.H{"id": correlationID})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to build connected event, err=%w", op, err)
	}
	c.SSEvent(connected.Type, connected.Data)
	w.Flush()

	heartbeat := time.NewTicker(impl.config.HeartbeatInterval)
	defer heartbeat.Stop()
LOOP:
	for {
		select {
		case <-reqCtx.Done():
			break LOOP
		case event, ok := <-ch:
			if !ok {
				break LOOP
			}
			c.SSEvent(event.Type, event.Data)
			w.Flush()
		// 沒有事件時送出註解行，避免瀏覽器和代理伺服器斷開連線
		case <-heartbeat.C:
			if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
				break LOOP
			}
			w.Flush()
		}
	}
	return openapi.GetEvents200Response{}, nil
}

// Get verification progress
// (GET /auth/state)
func (impl *ServerImpl) GetAuthState(ctx context.Context, request openapi.GetAuthStateRequestObject) (openapi.GetAuthStateResponseObject, error) {
	sess, err := loadSession(ctx)
	if err != nil {
		impl.logger.Error("Fail to load session", slog.String("op", "GetAuthState"), slog.Any("error", err))
		return openapi.GetAuthState500JSONResponse{Error: "session unavailable"}, nil
	}
	return openapi.GetAuthState200JSONResponse(newProgress(impl.controller.Progress(sess))), nil
}

// Start verification step
// (GET /auth/{provider})
func (impl *ServerImpl) GetAuthProvider(ctx context.Context, request openapi.GetAuthProviderRequestObject) (openapi.GetAuthProviderResponseObject, error) {
	const op = "GetAuthProvider"
	logger := impl.logger.With(slog.String("op", op))
	provider, ok := verification.ParseProvider(string(request.Provider))
	if !ok {
		return openapi.GetAuthProvider404JSONResponse{Error: "unknown provider"}, nil
	}
	redirect := func(location string) openapi.GetAuthProviderResponseObject {
		return openapi.GetAuthProvider302Response{
			Headers: openapi.GetAuthProvider302ResponseHeaders{Location: location},
		}
	}
	sess, err := loadSession(ctx)
	if err != nil {
		logger.Error("Fail to load session", slog.Any("error", err))
		return redirect(completeURL(provider, verification.StatusError)), nil
	}

	reqCtx := ctx.(*gin.Context).Request.Context()
	identity := session.LoadIdentity(sess)
	var result verification.StepResult
	switch {
	case provider == verification.ProviderDiscord:
		// 導向 Discord 授權頁面，state 保存在 session 中
		state := discord.NewState()
		sess.Set(SESSION_KEY_OAUTH_STATE, state)
		if err := sess.Save(); err != nil {
			logger.Error("Fail to save oauth state", slog.Any("error", err))
			return redirect(completeURL(provider, verification.StatusError)), nil
		}
		return redirect(impl.discord.AuthURL(state)), nil
	case !verification.Ready(identity, provider):
		result = verification.Errored(verification.ErrStepOutOfOrder)
	case provider == verification.ProviderForums:
		result = verification.LookupForums(reqCtx, impl.forums, identity.Username)
	case provider == verification.ProviderTeamSpeak:
		result = verification.LookupTeamSpeak(reqCtx, impl.teamspeak, identity.Username)
	}
	return redirect(impl.finishStep(reqCtx, sess, provider, result)), nil
}

// OAuth2 callback
// (GET /auth/{provider}/callback)
func (impl *ServerImpl) GetAuthProviderCallback(ctx context.Context, request openapi.GetAuthProviderCallbackRequestObject) (openapi.GetAuthProviderCallbackResponseObject, error) {
	const op = "GetAuthProviderCallback"
	logger := impl.logger.With(slog.String("op", op))
	provider, ok := verification.ParseProvider(string(request.Provider))
	if !ok || provider != verification.ProviderDiscord {
		return openapi.GetAuthProviderCallback404JSONResponse{Error: "unknown provider"}, nil
	}
	redirect := func(location string) openapi.GetAuthProviderCallbackResponseObject {
		return openapi.GetAuthProviderCallback302Response{
			Headers: openapi.GetAuthProviderCallback302ResponseHeaders{Location: location},
		}
	}
	sess, err := loadSession(ctx)
	if err != nil {
		logger.Error("Fail to load session", slog.Any("error", err))
		return redirect(completeURL(provider, verification.StatusError)), nil
	}

	// state 只能使用一次
	verifier := discord.NewExchangeVerifier(sess.Get(SESSION_KEY_OAUTH_STATE))
	sess.Delete(SESSION_KEY_OAUTH_STATE)
	if err := sess.Save(); err != nil {
		logger.Warn("Fail to clear oauth state", slog.Any("error", err))
	}

	reqCtx := ctx.(*gin.Context).Request.Context()
	code := lo.FromPtr(request.Params.Code)
	state := lo.FromPtr(request.Params.State)
	var result verification.StepResult
	token, err := impl.discord.Exchange(reqCtx, verifier, code, state)
	switch {
	case errors.Is(err, discord.ErrStateMismatch), errors.Is(err, discord.ErrMissingCode):
		// 使用者拒絕授權或 state 不符
		result = verification.Failed(err)
	case err != nil:
		result = verification.Errored(err)
	default:
		result = verification.DiscordResult(impl.discord.FetchUser(reqCtx, token))
	}
	return redirect(impl.finishStep(reqCtx, sess, provider, result)), nil
}

// finishStep 將步驟結果交給驗證流程，回傳完成頁面的位置
func (impl *ServerImpl) finishStep(ctx context.Context, sess session.ISession, provider verification.Provider, result verification.StepResult) string {
	status := result.Status
	if _, err := impl.controller.HandleProviderCallback(ctx, sess, provider, result); err != nil {
		impl.logger.Error("Fail to handle verification step",
			slog.String("provider", string(provider)),
			slog.Any("error", err),
		)
		status = verification.StatusError
	}
	return completeURL(provider, status)
}

func completeURL(provider verification.Provider, status verification.Status) string {
	query := url.Values{}
	query.Set("ref", string(provider))
	query.Set("status", string(status))
	return "/auth/complete?" + query.Encode()
}

// Step completed page
// (GET /auth/complete)
func (impl *ServerImpl) GetAuthComplete(ctx context.Context, request openapi.GetAuthCompleteRequestObject) (openapi.GetAuthCompleteResponseObject, error) {
	const op = "GetAuthComplete"
	provider, _ := verification.ParseProvider(lo.FromPtr(request.Params.Ref))
	status := verification.ParseStatus(lo.FromPtr(request.Params.Status))
	var page bytes.Buffer
	if err := renderComplete(&page, provider, status); err != nil {
		return nil, fmt.Errorf("[%s] Fail to render complete page, err=%w", op, err)
	}
	ctx.(*gin.Context).Header("Cache-Control", "no-store")
	return openapi.GetAuthComplete200TexthtmlResponse{
		Body:          &page,
		ContentLength: int64(page.Len()),
	}, nil
}

// Destroy session
// (GET /auth/logout)
func (impl *ServerImpl) GetAuthLogout(ctx context.Context, request openapi.GetAuthLogoutRequestObject) (openapi.GetAuthLogoutResponseObject, error) {
	sess, err := loadSession(ctx)
	if err == nil {
		err = sess.Destroy()
	}
	if err != nil {
		impl.logger.Warn("Fail to destroy session", slog.String("op", "GetAuthLogout"), slog.Any("error", err))
	}
	c := ctx.(*gin.Context)
	session.ClearCookie(c, impl.sessionOptions()...)
	c.SetCookie(COOKIE_KEY_CORRELATION_ID, "", -1, "/", "", impl.config.Session.CookieSecure, true)
	return openapi.GetAuthLogout200Response{}, nil
}

// Save completed verification
// (PUT /auth/save)
func (impl *ServerImpl) PutAuthSave(ctx context.Context, request openapi.PutAuthSaveRequestObject) (openapi.PutAuthSaveResponseObject, error) {
	const op = "PutAuthSave"
	logger := impl.logger.With(slog.String("op", op))
	sess, err := loadSession(ctx)
	if err != nil {
		logger.Error("Fail to load session", slog.Any("error", err))
		return openapi.PutAuthSave500JSONResponse{Error: "session unavailable"}, nil
	}

	result, err := impl.controller.Finalize(ctx.(*gin.Context).Request.Context(), session.LoadIdentity(sess))
	if errors.Is(err, verification.ErrIncomplete) {
		return openapi.PutAuthSave400JSONResponse{Error: verification.ErrIncomplete.Error()}, nil
	}
	if err != nil {
		logger.Error("Fail to save authentication", slog.Any("error", err))
		return openapi.PutAuthSave500JSONResponse{Error: "fail to save authentication"}, nil
	}
	return openapi.PutAuthSave200JSONResponse{
		HadPrevious: result.HadPrevious,
		User:        newUser(result.Record),
	}, nil
}
