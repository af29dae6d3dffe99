package auth

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// Controller exposes one route per flow as a JSON API. Failures use the
// ErrorResponse envelope; successes return a code/msg pair plus the public
// account data relevant to the flow.
type Controller struct {
	Debug      bool
	Logger     Logger
	Service    *Service
	CookieName string
	CookieTTL  time.Duration

	// Protect guards the session-check route. Usually sessionware.New.
	Protect fiber.Handler
}

// ControllerOption customizes controller construction.
type ControllerOption func(*Controller) *Controller

// NewController builds the HTTP controller for the auth flows.
func NewController(service *Service, opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger:     defLogger{},
		Service:    service,
		CookieName: DefaultCookieName,
		CookieTTL:  time.Duration(DefaultSessionTTLSeconds) * time.Second,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Service == nil {
		panic("Missing Service in auth controller...")
	}

	return c
}

// WithControllerLogger overrides the controller logger.
func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithControllerProtect sets the middleware guarding the session-check route.
func WithControllerProtect(protect fiber.Handler) ControllerOption {
	return func(c *Controller) *Controller {
		c.Protect = protect
		return c
	}
}

// WithControllerDebug toggles request dumping.
func WithControllerDebug(debug bool) ControllerOption {
	return func(c *Controller) *Controller {
		c.Debug = debug
		return c
	}
}

// RegisterRoutes mounts the flows under /api.
func RegisterRoutes(app fiber.Router, controller *Controller) {
	api := app.Group("/api")

	api.Post("/register", controller.Register).Name("register.post")
	api.Post("/login", controller.Login).Name("login.post")

	if controller.Protect != nil {
		api.Get("/test-auth", controller.Protect, controller.TestAuth).Name("test-auth.get")
	}

	account := api.Group("/account")
	account.Post("/activate", controller.Activate).Name("activate.post")
	account.Post("/resend-activation-link", controller.ResendActivationLink).Name("resend-activation.post")
	account.Post("/reset-password-link", controller.ResetPasswordLink).Name("reset-link.post")
	account.Post("/reset-password", controller.ResetPassword).Name("reset-password.post")
}

type registerPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/register.
func (a *Controller) Register(ctx *fiber.Ctx) error {
	payload := new(registerPayload)
	if err := ctx.BodyParser(payload); err != nil {
		return a.badBody(ctx, err)
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	account, err := a.Service.Register(ctx.Context(), RegisterInput{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return a.writeError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"code":    "REGISTERED",
		"msg":     MsgRegisterSuccess,
		"account": account,
	})
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/login. The session token is returned in the body
// and set as a cookie; subsequent requests may present either.
func (a *Controller) Login(ctx *fiber.Ctx) error {
	payload := new(loginPayload)
	if err := ctx.BodyParser(payload); err != nil {
		return a.badBody(ctx, err)
	}

	result, err := a.Service.Login(ctx.Context(), LoginInput{
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return a.writeError(ctx, err)
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     a.CookieName,
		Value:    result.Token,
		Expires:  time.Now().Add(a.CookieTTL),
		HTTPOnly: true,
		SameSite: "Lax",
	})

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"code":    "LOGGED_IN",
		"token":   result.Token,
		"account": result.Account,
	})
}

// TestAuth handles GET /api/test-auth. The Protect middleware resolved the
// session and account before this runs.
func (a *Controller) TestAuth(ctx *fiber.Ctx) error {
	authenticated := a.Service.TestAuth(ctx.UserContext())

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"authenticated": authenticated,
	})
}

type activatePayload struct {
	ActivationToken string `json:"activationToken"`
}

// Activate handles POST /api/account/activate.
func (a *Controller) Activate(ctx *fiber.Ctx) error {
	payload := new(activatePayload)
	if err := ctx.BodyParser(payload); err != nil {
		return a.badBody(ctx, err)
	}

	email, err := a.Service.Activate(ctx.Context(), payload.ActivationToken)
	if err != nil {
		return a.writeError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"code":  "ACTIVATED",
		"msg":   MsgActivateSuccess,
		"email": email,
	})
}

type emailPayload struct {
	Email string `json:"email"`
}

// ResendActivationLink handles POST /api/account/resend-activation-link.
// The response is identical whether or not anything was sent.
func (a *Controller) ResendActivationLink(ctx *fiber.Ctx) error {
	payload := new(emailPayload)
	if err := ctx.BodyParser(payload); err != nil {
		return a.badBody(ctx, err)
	}

	if err := a.Service.ResendActivationLink(ctx.Context(), payload.Email); err != nil {
		return a.writeError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"code": "ACTIVATION_LINK_SENT",
		"msg":  MsgActivationLinkSent,
	})
}

// ResetPasswordLink handles POST /api/account/reset-password-link. The
// success response is identical whether or not an account matched.
func (a *Controller) ResetPasswordLink(ctx *fiber.Ctx) error {
	payload := new(emailPayload)
	if err := ctx.BodyParser(payload); err != nil {
		return a.badBody(ctx, err)
	}

	if err := a.Service.RequestPasswordResetLink(ctx.Context(), payload.Email); err != nil {
		return a.writeError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"code": "RESET_LINK_SENT",
		"msg":  MsgResetLinkSent,
	})
}

type resetPasswordPayload struct {
	ResetPasswordToken string `json:"resetPasswordToken"`
	Password           string `json:"password"`
}

// ResetPassword handles POST /api/account/reset-password.
func (a *Controller) ResetPassword(ctx *fiber.Ctx) error {
	payload := new(resetPasswordPayload)
	if err := ctx.BodyParser(payload); err != nil {
		return a.badBody(ctx, err)
	}

	if err := a.Service.ResetPassword(ctx.Context(), payload.ResetPasswordToken, payload.Password); err != nil {
		return a.writeError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"code": "PASSWORD_UPDATED",
		"msg":  MsgResetSuccess,
	})
}

func (a *Controller) badBody(ctx *fiber.Ctx, err error) error {
	a.Logger.Error("failed to parse request body: %v", err)
	return ctx.Status(fiber.StatusUnprocessableEntity).JSON(ErrorResponse{
		Error:  true,
		Errors: []ErrorObject{{Code: CodeValidationError, Msg: "Could not parse request body."}},
	})
}

// writeError renders the failure envelope. Internal detail never reaches the
// client; it is logged here instead.
func (a *Controller) writeError(ctx *fiber.Ctx, err error) error {
	status := HTTPStatusFor(err)
	if status == fiber.StatusInternalServerError {
		a.Logger.Error("internal error handling %s: %v", ctx.Path(), err)
	}

	return ctx.Status(status).JSON(ErrorResponse{
		Error:  true,
		Errors: ErrorObjectsFor(err),
	})
}
