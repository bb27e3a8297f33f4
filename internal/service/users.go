package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"estate-api/internal/apperr"
	"estate-api/internal/model"
	"estate-api/pkg/security"
	"estate-api/pkg/validators"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	errEmailTaken         = apperr.New(apperr.Conflict, "This email is already registered. Please login or use a different email")
	errInvalidCredentials = apperr.New(apperr.Unauthorized, "Invalid credentials")
	errUserNotFound       = apperr.New(apperr.NotFound, "User not found")
)

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username" binding:"max=64"`
	Phone    string `json:"phone" binding:"max=32"`
}

type UserService struct {
	DB       *gorm.DB
	Argon    *security.ArgonHash
	Secret   []byte
	TokenTTL time.Duration
	Log      *zap.Logger
}

func NewUserService(db *gorm.DB, argon *security.ArgonHash, secret []byte, ttl time.Duration, log *zap.Logger) *UserService {
	return &UserService{DB: db, Argon: argon, Secret: secret, TokenTTL: ttl, Log: orNop(log)}
}

// Addresses are stored lower-cased, so uniqueness ignores case
func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	const op = "user.register"

	in.Email = normalizeEmail(in.Email)

	if err := validators.EmailValidator(in.Email); err != nil {
		return nil, fail(s.Log, op, "", in.Email, err)
	}

	if err := validators.PasswordValidator(in.Password); err != nil {
		return nil, fail(s.Log, op, "", in.Email, err)
	}

	hash, err := s.Argon.GenerateFromPassword(in.Password)
	if err != nil {
		return nil, fail(s.Log, op, "", in.Email, apperr.Wrap(apperr.Internal, "failed to hash password", err))
	}

	userID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		return nil, fail(s.Log, op, "", in.Email, apperr.Wrap(apperr.Internal, "failed to generate user id", err))
	}

	username := in.Username
	if username == "" {
		username, _, _ = strings.Cut(in.Email, "@")
	}

	u := model.User{
		ID:           userID,
		Email:        in.Email,
		Username:     username,
		Phone:        in.Phone,
		PasswordHash: hash,
	}

	if err := s.DB.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fail(s.Log, op, "", in.Email, errEmailTaken)
		}

		return nil, fail(s.Log, op, "", in.Email, dbErr(err))
	}

	return &u, nil
}

// Login checks the credentials and returns a fresh auth token
func (s *UserService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	const op = "user.login"

	if email == "" || password == "" {
		return "", nil, fail(s.Log, op, "", email, apperr.New(apperr.InvalidArgument, "Email and password are required"))
	}

	var u model.User
	if err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, fail(s.Log, op, "", email, errInvalidCredentials)
		}

		return "", nil, fail(s.Log, op, "", email, dbErr(err))
	}

	ok, err := s.Argon.VerifyPasswd(password, u.PasswordHash)
	if err != nil {
		return "", nil, fail(s.Log, op, u.ID, email, apperr.Wrap(apperr.Internal, "failed to verify password", err))
	}

	if !ok {
		return "", nil, fail(s.Log, op, u.ID, email, errInvalidCredentials)
	}

	if s.Argon.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, &u, password)
	}

	token, err := security.MakeToken(s.Secret, u.ID, s.TokenTTL)
	if err != nil {
		return "", nil, fail(s.Log, op, u.ID, email, apperr.Wrap(apperr.Internal, "failed to generate token", err))
	}

	return token, &u, nil
}

// rehash upgrades a hash made with older cost parameters. Failing here
// doesn't fail the login.
func (s *UserService) rehash(ctx context.Context, u *model.User, password string) {
	hash, err := s.Argon.GenerateFromPassword(password)
	if err != nil {
		s.Log.Warn("Failed to rehash password", zap.String("userID", u.ID), zap.Error(err))
		return
	}

	err = s.DB.
		WithContext(ctx).
		Model(u).
		Update("password_hash", hash).
		Error
	if err != nil {
		s.Log.Warn("Failed to store rehashed password", zap.String("userID", u.ID), zap.Error(err))
		return
	}

	s.Log.Debug("Password hash upgraded", zap.String("userID", u.ID))
}

func (s *UserService) Me(ctx context.Context, actor string) (*model.User, error) {
	var u model.User
	if err := s.DB.WithContext(ctx).Where("id = ?", actor).First(&u).Error; err != nil {
		return nil, fail(s.Log, "user.me", actor, actor, notFound(err, errUserNotFound.Msg))
	}

	return &u, nil
}

// ByID returns what anyone may see about a user
func (s *UserService) ByID(ctx context.Context, id string) (*model.PublicUser, error) {
	var u model.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, fail(s.Log, "user.by_id", "", id, notFound(err, errUserNotFound.Msg))
	}

	pub := u.Public()
	return &pub, nil
}
