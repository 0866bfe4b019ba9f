package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/clipsum/backend/internal/database/models"
	"github.com/clipsum/backend/internal/mail"
	"github.com/clipsum/backend/pkg/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound         = apperr.New(apperr.NotFound, "USER_NOT_FOUND", "User not found")
	ErrEmailRegistered      = apperr.New(apperr.Conflict, "EMAIL_ALREADY_REGISTERED", "Email is already registered")
	ErrInvalidCredentials   = apperr.New(apperr.Authentication, "INVALID_CREDENTIALS", "Invalid credentials")
	ErrEmailNotVerified     = apperr.New(apperr.Authentication, "EMAIL_NOT_VERIFIED", "Please verify your email first")
	ErrInvalidOTP           = apperr.New(apperr.NotFound, "OTP_INVALID", "Invalid or expired OTP")
	ErrCurrentPasswordWrong = apperr.New(apperr.Authentication, "CURRENT_PASSWORD_INCORRECT", "Current password is incorrect")
)

type Service struct {
	db     *gorm.DB
	jwt    *JWTService
	mailer mail.Dispatcher
	otpTTL time.Duration
}

func NewService(db *gorm.DB, jwt *JWTService, mailer mail.Dispatcher, otpTTL time.Duration) *Service {
	return &Service{db: db, jwt: jwt, mailer: mailer, otpTTL: otpTTL}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates an unverified user and emails a verification OTP. Calling
// it again for a not-yet-verified email invalidates prior verification codes
// and resends, which makes registration idempotent until verification.
func (s *Service) Register(ctx context.Context, input RegisterInput) (string, error) {
	var existing models.User
	err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error
	switch {
	case err == nil && existing.IsVerified:
		return "", ErrEmailRegistered
	case err == nil:
		// Unverified re-register: drop outstanding verification codes and resend.
		if err := s.db.WithContext(ctx).
			Where("user_id = ? AND type = ?", existing.ID, models.OTPTypeVerification).
			Delete(&models.OTP{}).Error; err != nil {
			return "", err
		}
		if err := s.issueOTP(ctx, &existing, models.OTPTypeVerification); err != nil {
			return "", err
		}
		return "Verification OTP resent. Please check your email.", nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return "", err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return "", err
	}

	user := models.User{
		Email:        input.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		IsVerified:   false,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return "", err
	}

	if err := s.issueOTP(ctx, &user, models.OTPTypeVerification); err != nil {
		return "", err
	}

	return "Registration successful. Please check your email for verification OTP.", nil
}

// Login authenticates and issues a bearer token. Unknown email and wrong
// password fail with the same error so neither half is revealed.
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsVerified {
		return nil, ErrEmailNotVerified
	}

	token, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		Token: token,
		User:  &user,
	}, nil
}

// VerifyEmail consumes a VERIFICATION code and flips the user verified.
func (s *Service) VerifyEmail(ctx context.Context, email, code string) (*models.User, error) {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	otp, err := s.matchOTP(ctx, user.ID, code, models.OTPTypeVerification)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("is_verified", true).Error; err != nil {
		return nil, err
	}

	// Single-use: the matched code is gone regardless of later requests.
	if err := s.db.WithContext(ctx).Delete(otp).Error; err != nil {
		return nil, err
	}

	user.IsVerified = true
	return user, nil
}

// RequestPasswordReset emails a PASSWORD_RESET code to a known user.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}
	return s.issueOTP(ctx, user, models.OTPTypePasswordReset)
}

// ResetPassword consumes a PASSWORD_RESET code and stores a new password.
// The current password is not required; this is the forgot-password path.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		return err
	}

	otp, err := s.matchOTP(ctx, user.ID, code, models.OTPTypePasswordReset)
	if err != nil {
		return err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Model(user).Update("password_hash", hash).Error; err != nil {
		return err
	}

	return s.db.WithContext(ctx).Delete(otp).Error
}

// ChangePassword rotates the password for an authenticated user holding the
// current one. No OTP involved.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	if !CheckPassword(currentPassword, user.PasswordHash) {
		return ErrCurrentPasswordWrong
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Model(&user).Update("password_hash", hash).Error
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) findByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// matchOTP finds an unexpired code of the requested purpose. A code issued
// for another purpose never matches, even with the same value.
func (s *Service) matchOTP(ctx context.Context, userID uuid.UUID, code string, otpType models.OTPType) (*models.OTP, error) {
	var otp models.OTP
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND code = ? AND type = ? AND expires_at > ?", userID, code, otpType, time.Now()).
		First(&otp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, err
	}
	return &otp, nil
}

// issueOTP stores a fresh code and dispatches it. A dispatch failure is an
// upstream error, distinct from any OTP lookup failure.
func (s *Service) issueOTP(ctx context.Context, user *models.User, otpType models.OTPType) error {
	code := GenerateOTPCode()

	otp := models.OTP{
		UserID:    user.ID,
		Code:      code,
		Type:      otpType,
		ExpiresAt: time.Now().Add(s.otpTTL),
	}
	if err := s.db.WithContext(ctx).Create(&otp).Error; err != nil {
		return err
	}

	subject := "Email Verification OTP"
	if otpType == models.OTPTypePasswordReset {
		subject = "Password Reset OTP"
	}
	text := fmt.Sprintf("Your OTP is: %s. This OTP will expire in %d minutes.", code, int(s.otpTTL.Minutes()))

	if err := s.mailer.Send(ctx, user.Email, subject, text); err != nil {
		return apperr.Wrap(err, apperr.Upstream, "EMAIL_DISPATCH_FAILED", "Failed to send OTP email")
	}

	return nil
}
