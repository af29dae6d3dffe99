package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

// Flow messages. Like the validation messages these are part of the client
// contract; the uniform ones double as anti-enumeration measures.
const (
	MsgRegisterSuccess = "User created successfully! Please check your email for an activation link."

	MsgActivationTokenRequired = "You must provide an activation token"
	MsgActivationLinkInvalid   = "This activation link is invalid."
	MsgActivateSuccess         = "Your account has been activated!"

	// MsgActivationLinkSent is returned whether or not an email matched an
	// unactivated account.
	MsgActivationLinkSent = "If your account requires activation, a new activation link has been sent to your email address."

	// MsgResetLinkSent is returned whether or not an email matched an account.
	MsgResetLinkSent     = "If an account exists for that email address, a password reset link has been sent."
	MsgResetLinkThrottle = "A password reset link was already sent. Please wait before requesting another."

	MsgResetFieldsRequired = "Could not update password."
	MsgResetLinkInvalid    = "This password reset link is invalid or has expired."
	MsgResetSuccess        = "Your password has been updated. You can now log in with your new password."
)

// Service is the auth orchestrator: it ties the validator, hasher, token
// generator, session signer, store, and mailer together for each flow.
// Construct one per process; it holds no per-request state.
type Service struct {
	store        AccountStore
	hasher       PasswordAuthenticator
	tokens       TokenGenerator
	sessions     *TokenService
	passwordAuth Authenticator
	mail         MailDispatcher
	activity     ActivitySink
	logger       Logger
	now          func() time.Time

	// useHashid derives account ids deterministically from the email.
	useHashid bool
}

// ServiceOption customizes Service construction.
type ServiceOption func(*Service)

// WithLogger overrides the service logger.
func WithLogger(logger Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMailDispatcher overrides the mail dispatcher.
func WithMailDispatcher(mail MailDispatcher) ServiceOption {
	return func(s *Service) {
		if mail != nil {
			s.mail = mail
		}
	}
}

// WithActivitySink sets the sink used to emit auth events.
func WithActivitySink(sink ActivitySink) ServiceOption {
	return func(s *Service) {
		s.activity = normalizeActivitySink(sink)
	}
}

// WithTokenGenerator overrides the opaque token generator.
func WithTokenGenerator(tokens TokenGenerator) ServiceOption {
	return func(s *Service) {
		if tokens != nil {
			s.tokens = tokens
		}
	}
}

// WithClock injects a custom clock (useful for tests).
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.now = clock
			s.sessions.WithClock(clock)
		}
	}
}

// WithPasswordAuthenticator overrides the credential hasher.
func WithPasswordAuthenticator(hasher PasswordAuthenticator) ServiceOption {
	return func(s *Service) {
		if hasher != nil {
			s.hasher = hasher
			s.passwordAuth = nil
		}
	}
}

// WithAuthenticator substitutes the login strategy.
func WithAuthenticator(authenticator Authenticator) ServiceOption {
	return func(s *Service) {
		if authenticator != nil {
			s.passwordAuth = authenticator
		}
	}
}

// WithDeterministicIDs derives account ids from the registered email instead
// of random UUIDs.
func WithDeterministicIDs(enabled bool) ServiceOption {
	return func(s *Service) {
		s.useHashid = enabled
	}
}

// NewService returns a configured auth orchestrator.
func NewService(store AccountStore, cfg Config, opts ...ServiceOption) *Service {
	logger := defLogger{}
	hasher := NewHasher(cfg.GetBcryptCost())

	s := &Service{
		store:    store,
		hasher:   hasher,
		tokens:   UUIDTokenGenerator{},
		sessions: NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetTokenExpiration(), logger),
		activity: noopActivitySink{},
		logger:   logger,
		now:      time.Now,
	}

	s.mail = NewDispatcher(&LogMailer{BaseURL: cfg.GetBaseURL(), Logger: logger}, logger, 0)

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	if s.passwordAuth == nil {
		s.passwordAuth = NewLocalPasswordAuthenticator(s.store, s.hasher)
	}

	return s
}

// Sessions exposes the session signer, used by middleware to build the
// session-check authenticator from the same signing configuration.
func (s *Service) Sessions() *TokenService {
	return s.sessions
}

// RegisterInput is the parsed register request body.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new unactivated account and queues the activation
// email. Duplicate emails are rejected regardless of the existing account's
// activation state; an unactivated ghost still blocks re-registration.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*PublicAccount, error) {
	if errs := ValidateCredentials(input.Email, input.Password); len(errs) > 0 {
		return nil, errs
	}

	email := NormalizeEmail(input.Email)

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return nil, ValidationError(MsgEmailExists, "email")
	} else if !IsAccountNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing account")
	}

	account := &Account{Email: email}
	account.SetPassword(input.Password)
	if err := account.EnsureHashed(s.hasher); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	account.IssueActivationToken(s.tokens.NewToken(), s.now())

	if s.useHashid {
		if id, err := hashid.NewUUID(email); err == nil {
			account.ID = id
		}
	}

	created, err := s.store.Insert(ctx, account)
	if err != nil {
		// a concurrent registration may win the race between the lookup
		// above and this insert; the unique index settles it
		if IsDuplicateAccount(err) {
			return nil, ValidationError(MsgEmailExists, "email")
		}
		s.logger.Error("register insert failed: %v", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create account")
	}

	s.mail.DispatchActivationEmail(created)
	s.emitActivity(ctx, ActivityEventRegistered, created.ID.String(), map[string]any{"email": created.Email})

	return created.Public(), nil
}

// LoginInput is the parsed login request body.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult carries the issued session token and the account projection.
type LoginResult struct {
	Token   string         `json:"token"`
	Account *PublicAccount `json:"account"`
}

// Login verifies the credentials and issues a session token. Activation is
// not required to log in. Unknown emails and wrong passwords fail with the
// same error.
func (s *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if errs := ValidateCredentials(input.Email, input.Password); len(errs) > 0 {
		return nil, errs
	}

	account, err := s.passwordAuth.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		s.emitActivity(ctx, ActivityEventLoginFailure, "", map[string]any{"email": NormalizeEmail(input.Email)})
		if goerrors.IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, err
	}

	token, err := s.sessions.Issue(account.ID.String())
	if err != nil {
		s.logger.Error("login token issuance failed: %v", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue session token")
	}

	s.emitActivity(ctx, ActivityEventLoginSuccess, account.ID.String(), map[string]any{"email": account.Email})

	return &LoginResult{Token: token, Account: account.Public()}, nil
}

// TestAuth reports whether the request context carries a resolved account.
// Session verification itself happens in the routing layer's middleware;
// this only inspects the result.
func (s *Service) TestAuth(ctx context.Context) bool {
	_, ok := AccountFromContext(ctx)
	return ok
}

// Activate consumes an activation token: the account flips to activated,
// ActivatedAt is stamped, and the token is cleared so a second call with the
// same token fails like any unknown token.
func (s *Service) Activate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ValidationError(MsgActivationTokenRequired, "activationToken")
	}

	account, err := s.store.FindByToken(ctx, TokenFieldActivation, token)
	if err != nil {
		if IsAccountNotFound(err) {
			// "already used" and "never existed" are indistinguishable
			return "", ValidationError(MsgActivationLinkInvalid, "activationToken")
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up activation token")
	}

	if err := CanActivate(account); err != nil {
		return "", ValidationError(MsgActivationLinkInvalid, "activationToken")
	}

	account.MarkActivated(s.now())

	if _, err := s.store.Save(ctx, account); err != nil {
		s.logger.Error("activation save failed: %v", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to activate account")
	}

	s.emitActivity(ctx, ActivityEventActivated, account.ID.String(), map[string]any{"email": account.Email})

	return account.Email, nil
}

// ResendActivationLink issues a fresh activation token when the email maps
// to an unactivated account. When it does not (unknown email, or already
// activated) nothing is mutated and no email is sent, but the caller gets
// the same success response either way. Unlike reset links, activation
// resends carry no throttle; the asymmetry is inherited and deliberate.
func (s *Service) ResendActivationLink(ctx context.Context, email string) error {
	if email == "" {
		return ValidationError(MsgEmailRequired, "email")
	}

	account, err := s.store.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if IsAccountNotFound(err) {
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account for activation resend")
	}

	if account.Activated {
		return nil
	}

	account.IssueActivationToken(s.tokens.NewToken(), s.now())

	if _, err := s.store.Save(ctx, account); err != nil {
		s.logger.Error("activation resend save failed: %v", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to refresh activation token")
	}

	s.mail.DispatchActivationEmail(account)
	s.emitActivity(ctx, ActivityEventActivationLinkResent, account.ID.String(), map[string]any{"email": account.Email})

	return nil
}

// RequestPasswordResetLink issues a one-time reset token, subject to the
// resend throttle. Unknown emails return success with no mutation. The
// throttle failure is the one observable difference from the uniform
// response; it only confirms a recent request, not that the email exists.
func (s *Service) RequestPasswordResetLink(ctx context.Context, email string) error {
	if email == "" {
		return ValidationError(MsgEmailRequired, "email")
	}

	account, err := s.store.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if IsAccountNotFound(err) {
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up account for password reset")
	}

	if err := CanIssueReset(account, s.now()); err != nil {
		return ValidationError(MsgResetLinkThrottle, "email")
	}

	account.IssueResetToken(s.tokens.NewToken(), s.now())

	if _, err := s.store.Save(ctx, account); err != nil {
		s.logger.Error("reset link save failed: %v", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue reset token")
	}

	s.mail.DispatchPasswordResetEmail(account)
	s.emitActivity(ctx, ActivityEventPasswordResetRequest, account.ID.String(), map[string]any{"email": account.Email})

	return nil
}

// ResetPassword consumes a reset token and replaces the credential. The new
// password is re-validated against the strength rule before hashing; the
// legacy system skipped that check.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return ValidationError(MsgResetFieldsRequired, "")
	}

	if errs := ValidatePassword(newPassword); len(errs) > 0 {
		return errs
	}

	account, err := s.store.FindByToken(ctx, TokenFieldReset, token)
	if err != nil {
		if IsAccountNotFound(err) {
			return ValidationError(MsgResetLinkInvalid, "resetPasswordToken")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up reset token")
	}

	if err := CanConsumeReset(account); err != nil {
		return ValidationError(MsgResetLinkInvalid, "resetPasswordToken")
	}

	account.SetPassword(newPassword)
	if err := account.EnsureHashed(s.hasher); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash new password")
	}
	account.ClearResetToken()

	if _, err := s.store.Save(ctx, account); err != nil {
		s.logger.Error("password reset save failed: %v", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
	}

	s.emitActivity(ctx, ActivityEventPasswordResetSuccess, account.ID.String(), map[string]any{"email": account.Email})

	return nil
}

func (s *Service) emitActivity(ctx context.Context, eventType ActivityEventType, accountID string, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		AccountID:  accountID,
		Metadata:   metadata,
		OccurredAt: s.now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := normalizeActivitySink(s.activity).Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}
