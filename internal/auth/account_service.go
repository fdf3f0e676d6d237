// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Icy Contributors

package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/icyfeed/icy/internal/i18n"
)

// usernamePattern allows ASCII letters and digits only.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)

// Column limits shared by signup and profile updates.
var (
	nicknameLength = validation.RuneLength(1, 50)
	introLength    = validation.RuneLength(0, 255)
)

// SignupRequest carries the fields of a new account.
type SignupRequest struct {
	Username string
	Password string
	Nickname string
	Email    string
	Intro    string
}

// Validate checks field formats. The password must satisfy IsValidPassword.
func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.RuneLength(4, 20), validation.Match(usernamePattern)),
		validation.Field(&r.Password, validation.Required, validation.By(passwordRule)),
		validation.Field(&r.Nickname, validation.Required, nicknameLength),
		validation.Field(&r.Email, validation.Required, validation.RuneLength(3, 255), is.Email),
		validation.Field(&r.Intro, introLength),
	)
}

func passwordRule(value interface{}) error {
	s, _ := value.(string)
	if !IsValidPassword(s) {
		return errors.New("must be at least 8 characters with a letter, a digit and a special character")
	}
	return nil
}

// UpdateProfileRequest carries a profile change. Nil fields are left unchanged.
type UpdateProfileRequest struct {
	CurrentPassword string
	NewPassword     *string
	Nickname        *string
	Intro           *string
}

// Validate checks the profile fields that are being changed. Password
// rules are applied by UpdateProfile after the current password verifies.
func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nickname, validation.NilOrNotEmpty, nicknameLength),
		validation.Field(&r.Intro, introLength),
	)
}

// WithdrawOutcome is the internal result of a withdrawal attempt.
type WithdrawOutcome int

// Withdrawal outcomes.
const (
	WithdrawSucceeded WithdrawOutcome = iota
	WithdrawAlreadyWithdrawn
	WithdrawWrongPassword
)

func (o WithdrawOutcome) String() string {
	switch o {
	case WithdrawSucceeded:
		return "success"
	case WithdrawAlreadyWithdrawn:
		return "already_withdrawn"
	case WithdrawWrongPassword:
		return "wrong_password"
	default:
		return "unknown"
	}
}

// AccountServiceConfig holds the dependencies of an AccountService.
// Messages, Metrics, Logger and Clock are optional.
type AccountServiceConfig struct {
	Users      UserRepository
	Hasher     PasswordHasher
	Transactor Transactor
	Audit      *AuditLog
	Messages   MessageResolver
	Metrics    Metrics
	Logger     *slog.Logger
	Clock      func() time.Time
}

// AccountService manages signup, profiles and withdrawal.
type AccountService struct {
	users   UserRepository
	hasher  PasswordHasher
	tx      Transactor
	audit   *AuditLog
	fail    failures
	metrics Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewAccountService creates an AccountService.
func NewAccountService(cfg AccountServiceConfig) (*AccountService, error) {
	if cfg.Users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if cfg.Hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if cfg.Transactor == nil {
		return nil, oops.Errorf("transactor is required")
	}
	if cfg.Audit == nil {
		return nil, oops.Errorf("audit log is required")
	}

	s := &AccountService{
		users:   cfg.Users,
		hasher:  cfg.Hasher,
		tx:      cfg.Transactor,
		audit:   cfg.Audit,
		fail:    failures{messages: cfg.Messages},
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
		now:     cfg.Clock,
	}
	if s.fail.messages == nil {
		s.fail.messages = defaultMessages
	}
	if s.metrics == nil {
		s.metrics = NopMetrics{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s, nil
}

// Signup creates an active account.
func (s *AccountService) Signup(ctx context.Context, req SignupRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, s.fail.new(ctx, KindInvalidArgument, i18n.CodeInvalidInput).
			With("fields", err.Error()).
			Wrap(err)
	}

	_, err := s.users.GetByUsername(ctx, req.Username)
	switch {
	case err == nil:
		return nil, s.duplicate(ctx, req.Username)
	case !errors.Is(err, ErrNotFound):
		return nil, oops.Code("SIGNUP_FAILED").
			With("operation", "get user by username").
			With("username", req.Username).
			Wrap(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, oops.Code("SIGNUP_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(req.Username, req.Nickname, hash, req.Email, req.Intro, s.now())
	if err != nil {
		return nil, oops.Code("SIGNUP_FAILED").
			With("operation", "create user").
			Wrap(err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, s.duplicate(ctx, req.Username)
		}
		return nil, oops.Code("SIGNUP_FAILED").
			With("operation", "insert user").
			With("username", req.Username).
			Wrap(err)
	}
	return user, nil
}

func (s *AccountService) duplicate(ctx context.Context, username string) error {
	return s.fail.new(ctx, KindAlreadyExists, i18n.CodeAlreadyExist).
		With("username", username).
		Errorf("username already exists")
}

// GetProfile returns the public profile of an active user.
func (s *AccountService) GetProfile(ctx context.Context, userID ulid.ULID) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, s.lookupFailure(ctx, err, userID, "GET_PROFILE_FAILED")
	}
	if user.IsWithdrawn() {
		return nil, s.withdrawnFailure(ctx, userID)
	}
	profile := user.Profile()
	return &profile, nil
}

// UpdateProfile changes the caller's own profile in one transaction.
func (s *AccountService) UpdateProfile(ctx context.Context, caller Identity, userID ulid.ULID, req UpdateProfileRequest) (*User, error) {
	if !caller.Owns(userID) {
		return nil, s.fail.new(ctx, KindUnauthorized, i18n.CodeInvalidAuth).
			With("caller", caller.Username()).
			With("user_id", userID.String()).
			Errorf("caller does not own this account")
	}
	if err := req.Validate(); err != nil {
		return nil, s.fail.new(ctx, KindInvalidArgument, i18n.CodeInvalidInput).
			With("fields", err.Error()).
			Wrap(err)
	}

	var updated *User
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		user, err := s.users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return s.lookupFailure(ctx, err, userID, "UPDATE_PROFILE_FAILED")
		}
		if user.IsWithdrawn() {
			return s.withdrawnFailure(ctx, userID)
		}

		valid, err := s.hasher.Verify(req.CurrentPassword, user.PasswordHash)
		if err != nil {
			return oops.Code("UPDATE_PROFILE_FAILED").
				With("operation", "verify password").
				With("user_id", userID.String()).
				Wrap(err)
		}
		if !valid || (req.NewPassword != nil && !IsValidPassword(*req.NewPassword)) {
			return s.fail.new(ctx, KindInvalidCredentials, i18n.CodeInvalidPassword).
				With("user_id", userID.String()).
				Errorf("invalid current or new password")
		}

		if req.NewPassword != nil {
			// CurrentPassword verified against the stored hash above, so
			// comparing plaintexts detects reuse of the stored password.
			if subtle.ConstantTimeCompare([]byte(*req.NewPassword), []byte(req.CurrentPassword)) == 1 {
				return s.fail.new(ctx, KindInvalidArgument, i18n.CodeSamePassword).
					With("user_id", userID.String()).
					Errorf("new password equals the current password")
			}
			hash, err := s.hasher.Hash(*req.NewPassword)
			if err != nil {
				return oops.Code("UPDATE_PROFILE_FAILED").
					With("operation", "hash password").
					Wrap(err)
			}
			user.PasswordHash = hash
		}
		if req.Nickname != nil {
			user.Nickname = *req.Nickname
		}
		if req.Intro != nil {
			user.Intro = *req.Intro
		}
		user.UpdatedAt = s.now()

		if err := s.users.Update(ctx, user); err != nil {
			return oops.Code("UPDATE_PROFILE_FAILED").
				With("operation", "update user").
				With("user_id", userID.String()).
				Wrap(err)
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Withdraw deactivates the account permanently. It returns false when the
// account is already withdrawn or the password is wrong; the reason is
// logged. Errors are reserved for a missing user and storage failures.
func (s *AccountService) Withdraw(ctx context.Context, username, password string) (bool, error) {
	outcome, err := s.withdraw(ctx, username, password)
	if err != nil {
		return false, err
	}
	s.metrics.Withdrawn(outcome)

	if outcome != WithdrawSucceeded {
		s.logger.WarnContext(ctx, "withdrawal refused",
			"username", username,
			"outcome", outcome.String(),
		)
		return false, nil
	}

	s.audit.Record(ctx, username, ActionWithdraw)
	return true, nil
}

func (s *AccountService) withdraw(ctx context.Context, username, password string) (WithdrawOutcome, error) {
	outcome := WithdrawSucceeded
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		found, err := s.users.GetByUsername(ctx, username)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return s.fail.new(ctx, KindNotFound, i18n.CodeUserNotFound).
					With("username", username).
					Errorf("user not found")
			}
			return oops.Code("WITHDRAW_FAILED").
				With("operation", "get user by username").
				With("username", username).
				Wrap(err)
		}

		user, err := s.users.GetByIDForUpdate(ctx, found.ID)
		if err != nil {
			return s.lookupFailure(ctx, err, found.ID, "WITHDRAW_FAILED")
		}
		if user.IsWithdrawn() {
			outcome = WithdrawAlreadyWithdrawn
			return nil
		}

		valid, err := s.hasher.Verify(password, user.PasswordHash)
		if err != nil {
			return oops.Code("WITHDRAW_FAILED").
				With("operation", "verify password").
				With("username", username).
				Wrap(err)
		}
		if !valid {
			outcome = WithdrawWrongPassword
			return nil
		}

		if err := user.TransitionTo(StatusSecession, s.now()); err != nil {
			return oops.Code("WITHDRAW_FAILED").
				With("username", username).
				Wrap(err)
		}
		if err := s.users.Update(ctx, user); err != nil {
			return oops.Code("WITHDRAW_FAILED").
				With("operation", "update user").
				With("username", username).
				Wrap(err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return outcome, nil
}

func (s *AccountService) lookupFailure(ctx context.Context, err error, userID ulid.ULID, code string) error {
	if errors.Is(err, ErrNotFound) {
		return s.fail.new(ctx, KindNotFound, i18n.CodeUserNotFound).
			With("user_id", userID.String()).
			Errorf("user not found")
	}
	return oops.Code(code).
		With("operation", "get user by id").
		With("user_id", userID.String()).
		Wrap(err)
}

func (s *AccountService) withdrawnFailure(ctx context.Context, userID ulid.ULID) error {
	return s.fail.new(ctx, KindInvalidState, i18n.CodeInvalidUser).
		With("user_id", userID.String()).
		Errorf("user is withdrawn")
}
