package api

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"uoauth/adapters/session"
)

const (
	SESSION_KEY_OAUTH_STATE = "oauth_state"

	// COOKIE_KEY_CORRELATION_ID 保存事件連線的 correlation id
	COOKIE_KEY_CORRELATION_ID = "ioId"
)

func (impl *ServerImpl) sessionOptions() []session.MiddlewareOption {
	opts := []session.MiddlewareOption{
		session.WithCookieSecure(impl.config.Session.CookieSecure),
	}
	if impl.config.Session.KeyForCookie != "" {
		opts = append(opts, session.WithSessionKeyForCookie(impl.config.Session.KeyForCookie))
	}
	if impl.config.Session.CookieMaxAge > 0 {
		opts = append(opts, session.WithCookieMaxAge(impl.config.Session.CookieMaxAge))
	}
	return opts
}

func (impl *ServerImpl) SessionMiddleware() gin.HandlerFunc {
	return session.GinMiddleware(impl.sessionStore, impl.sessionOptions()...)
}

// loadSession 從 context 取得並載入 session，ctx 需為經過 session middleware 的 *gin.Context
func loadSession(ctx context.Context) (session.ISession, error) {
	sess, err := session.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("fail to load session, err=%w", err)
	}
	return sess, nil
}
