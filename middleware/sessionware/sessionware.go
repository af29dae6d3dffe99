// Package sessionware guards routes behind a verified session token. The
// token is read from the session cookie first and only then from the
// Authorization bearer header; that precedence is a compatibility contract.
package sessionware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bookwhim/auth"
)

// Config holds the middleware options.
type Config struct {
	// Authenticator resolves the raw token into an Account. Usually
	// auth.NewSessionTokenAuthenticator.
	Authenticator auth.Authenticator

	// CookieName is the session cookie; defaults to auth.DefaultCookieName.
	CookieName string

	// ErrorHandler renders rejections; defaults to a 401 AUTH_ERROR envelope.
	ErrorHandler fiber.ErrorHandler

	Logger auth.Logger
}

// New returns a handler that rejects requests without a verifiable session
// and stores the resolved account and session in the request context for
// downstream handlers.
func New(cfg Config) fiber.Handler {
	if cfg.Authenticator == nil {
		panic("sessionware: missing Authenticator")
	}

	if cfg.CookieName == "" {
		cfg.CookieName = auth.DefaultCookieName
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	return func(c *fiber.Ctx) error {
		token, err := auth.TokenFromRequest(c, cfg.CookieName)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		account, err := cfg.Authenticator.Authenticate(c.UserContext(), token, "")
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Debug("session rejected: %v", err)
			}
			return cfg.ErrorHandler(c, err)
		}

		ctx := auth.WithAccount(c.UserContext(), account)
		ctx = auth.WithSession(ctx, &auth.SessionObject{AccountID: account.ID.String()})
		c.SetUserContext(ctx)
		c.Locals("account", account)

		return c.Next()
	}
}

func defaultErrorHandler(c *fiber.Ctx, _ error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(auth.ErrorResponse{
		Error:  true,
		Errors: []auth.ErrorObject{{Code: auth.CodeAuthError, Msg: auth.MsgAuthFailed}},
	})
}
