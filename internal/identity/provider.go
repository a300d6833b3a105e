// Package identity signs users in and out and issues the tokens the API
// accepts. Passwords are bcrypt hashes, tokens are HS256 JWTs.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"vacai/internal/domain"
	"vacai/internal/domain/models"
	"vacai/internal/event"
	"vacai/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/crypto/bcrypt"
)

const (
	ProviderPassword  = "password"
	ProviderFederated = "federated"

	maxPasswordBytes = 72
)

type UserStore interface {
	Create(ctx context.Context, u models.User) error
	GetByEmail(ctx context.Context, email string) (models.User, error)
	GetByUID(ctx context.Context, uid string) (models.User, error)
}

type Publisher interface {
	Publish(topic event.Topic, key string, payload any) error
}

type Options struct {
	Secret            []byte
	TokenTTL          time.Duration
	MinPasswordLength int
	HashCost          int
	FederatedIssuer   string
	FederatedSecret   []byte
	Now               func() time.Time
}

type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type federatedClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type Session struct {
	User      models.PublicUser `json:"user"`
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

type Provider struct {
	users    UserStore
	events   Publisher
	opts     Options
	revoked  *cache.Cache
	validate *validator.Validate
}

func NewProvider(users UserStore, events Publisher, opts Options) *Provider {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = 6
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Provider{
		users:    users,
		events:   events,
		opts:     opts,
		revoked:  cache.New(opts.TokenTTL, 10*time.Minute),
		validate: validator.New(),
	}
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (Session, error) {
	email = utils.NormalizeEmail(email)
	if err := p.checkEmail(email); err != nil {
		return Session{}, err
	}
	if utf8.RuneCountInString(password) < p.opts.MinPasswordLength {
		return Session{}, weakPassword(p.opts.MinPasswordLength)
	}
	// bcrypt only sees the first 72 bytes and refuses anything longer.
	if len(password) > maxPasswordBytes {
		return Session{}, fail(CodePasswordTooLong, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.opts.HashCost)
	if err != nil {
		return Session{}, fail(CodeInternal, err)
	}

	user := models.User{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Provider:     ProviderPassword,
		CreatedAt:    p.opts.Now().UTC(),
	}
	if err := p.users.Create(ctx, user); err != nil {
		if domain.IsConflict(err) {
			return Session{}, fail(CodeEmailInUse, err)
		}
		return Session{}, fail(CodeInternal, err)
	}
	return p.start(user)
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = utils.NormalizeEmail(email)
	if err := p.checkEmail(email); err != nil {
		return Session{}, err
	}

	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return Session{}, fail(CodeUserNotFound, err)
		}
		return Session{}, fail(CodeInternal, err)
	}
	if user.PasswordHash == "" {
		// Federated account without a password.
		return Session{}, fail(CodeInvalidCredential, nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return Session{}, fail(CodeWrongPassword, nil)
	}
	return p.start(user)
}

// SignInFederated accepts an ID token from the configured trusted issuer and
// creates the account on first use.
func (p *Provider) SignInFederated(ctx context.Context, idToken string) (Session, error) {
	if p.opts.FederatedIssuer == "" || len(p.opts.FederatedSecret) == 0 {
		return Session{}, fail(CodeInvalidCredential, errors.New("federated sign-in not configured"))
	}

	var claims federatedClaims
	_, err := jwt.ParseWithClaims(idToken, &claims, func(*jwt.Token) (any, error) {
		return p.opts.FederatedSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.opts.FederatedIssuer),
		jwt.WithTimeFunc(p.opts.Now),
	)
	if err != nil {
		return Session{}, fail(CodeInvalidCredential, err)
	}
	email := utils.NormalizeEmail(claims.Email)
	if claims.Subject == "" {
		return Session{}, fail(CodeInvalidCredential, errors.New("missing subject"))
	}
	if err := p.checkEmail(email); err != nil {
		return Session{}, err
	}

	uid := uuid.NewSHA1(uuid.NameSpaceURL, []byte(p.opts.FederatedIssuer+"#"+claims.Subject)).String()
	user, err := p.users.GetByUID(ctx, uid)
	switch {
	case err == nil:
	case domain.IsNotFound(err):
		user = models.User{
			UID:       uid,
			Email:     email,
			Provider:  ProviderFederated,
			CreatedAt: p.opts.Now().UTC(),
		}
		if err := p.users.Create(ctx, user); err != nil {
			if domain.IsConflict(err) {
				return Session{}, fail(CodeEmailInUse, err)
			}
			return Session{}, fail(CodeInternal, err)
		}
	default:
		return Session{}, fail(CodeInternal, err)
	}
	return p.start(user)
}

// SignOut revokes the token until it would have expired anyway.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := p.Verify(token)
	if err != nil {
		return err
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		ttl = time.Minute
	}
	p.revoked.Set(claims.ID, struct{}{}, ttl)
	p.notify(claims.Subject, claims.Email, false)
	return nil
}

// Verify checks signature, expiry and revocation.
func (p *Provider) Verify(token string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(strings.TrimSpace(token), &claims, func(*jwt.Token) (any, error) {
		return p.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.opts.Now),
	)
	if err != nil {
		return Claims{}, fail(CodeInvalidToken, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return Claims{}, fail(CodeInvalidToken, errors.New("incomplete claims"))
	}
	if _, revoked := p.revoked.Get(claims.ID); revoked {
		return Claims{}, fail(CodeInvalidToken, errors.New("token revoked"))
	}
	return claims, nil
}

func (p *Provider) checkEmail(email string) error {
	if err := p.validate.Var(email, "required,email"); err != nil {
		return fail(CodeInvalidEmail, err)
	}
	return nil
}

func (p *Provider) start(user models.User) (Session, error) {
	now := p.opts.Now()
	expires := now.Add(p.opts.TokenTTL)
	claims := Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.opts.Secret)
	if err != nil {
		return Session{}, fail(CodeInternal, fmt.Errorf("sign token: %w", err))
	}
	p.notify(user.UID, user.Email, true)
	return Session{User: user.ToPublic(), Token: signed, ExpiresAt: expires}, nil
}

func (p *Provider) notify(uid, email string, signedIn bool) {
	if p.events == nil {
		return
	}
	change := event.AuthChange{UID: uid, Email: email, SignedIn: signedIn}
	if err := p.events.Publish(event.AuthState, uid, change); err != nil {
		utils.LogError("", "identity", "notify", err)
	}
}
