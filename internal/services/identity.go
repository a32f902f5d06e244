package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/localnerve/videohost/internal/models"
	"github.com/localnerve/videohost/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength is the shortest password accepted
const MinPasswordLength = 6

// ValidatePassword returns every policy violation, or nil
func ValidatePassword(password string) []string {
	var errs []string
	if len(password) < MinPasswordLength {
		errs = append(errs, "Passwords must be at least 6 characters.")
	}

	var digit, lower, upper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		}
	}
	if !digit {
		errs = append(errs, "Passwords must have at least one digit ('0'-'9').")
	}
	if !lower {
		errs = append(errs, "Passwords must have at least one lowercase ('a'-'z').")
	}
	if !upper {
		errs = append(errs, "Passwords must have at least one uppercase ('A'-'Z').")
	}
	return errs
}

// HashPassword bcrypt-hashes a password that already passed the policy
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// UserProfile is the public profile of a user
type UserProfile struct {
	DisplayName      string    `json:"displayName"`
	RegistrationDate time.Time `json:"registrationDate"`
}

// AccountView is what a user sees of their own account
type AccountView struct {
	ID               uint        `json:"id"`
	DisplayName      string      `json:"displayName"`
	Email            string      `json:"email"`
	Role             models.Role `json:"role"`
	RegistrationDate time.Time   `json:"registrationDate"`
}

func accountView(u *models.User) AccountView {
	return AccountView{
		ID:               u.ID,
		DisplayName:      u.DisplayName,
		Email:            u.Email,
		Role:             u.Role,
		RegistrationDate: u.RegistrationDate,
	}
}

// FindUser loads a user, NotFound when missing
func FindUser(ctx context.Context, db *gorm.DB, userID uint) (*models.User, error) {
	var u models.User
	if err := db.WithContext(ctx).First(&u, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("User not found.")
		}
		return nil, err
	}
	return &u, nil
}

// GetUserProfile returns the public profile
func GetUserProfile(ctx context.Context, db *gorm.DB, userID uint) (*UserProfile, error) {
	u, err := FindUser(ctx, quiet(db), userID)
	if err != nil {
		return nil, err
	}
	return &UserProfile{DisplayName: u.DisplayName, RegistrationDate: u.RegistrationDate}, nil
}

// GetAccount returns the caller's own account
func GetAccount(ctx context.Context, db *gorm.DB, userID uint) (*AccountView, error) {
	u, err := FindUser(ctx, quiet(db), userID)
	if err != nil {
		return nil, err
	}
	v := accountView(u)
	return &v, nil
}

// RegisterInput is a new account request
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email,max=256"`
	Password    string `json:"password" validate:"required"`
	DisplayName string `json:"username" validate:"required,max=256"`
}

// Register creates an account with the User role
func Register(ctx context.Context, db *gorm.DB, in RegisterInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := checkStruct(in, "Invalid registration."); err != nil {
		return nil, err
	}
	if errs := ValidatePassword(in.Password); len(errs) > 0 {
		return nil, types.BadRequest("Invalid password.", errs...)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, types.Internal("Failed to register user.", err)
	}

	user := &models.User{
		DisplayName:      in.DisplayName,
		Email:            in.Email,
		PasswordHash:     hash,
		Role:             models.RoleUser,
		RegistrationDate: time.Now().UTC(),
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureEmailFree(tx, in.Email, 0); err != nil {
			return err
		}
		return tx.Create(user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, emailTaken(in.Email)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func emailTaken(email string) error {
	return types.Conflict("Email '" + email + "' is already taken.")
}

// ensureEmailFree compares case-insensitively, the way the login lookup does
func ensureEmailFree(tx *gorm.DB, email string, exceptID uint) error {
	var count int64
	q := tx.Model(&models.User{}).Where("LOWER(email) = ?", strings.ToLower(email))
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return emailTaken(email)
	}
	return nil
}

// Authenticate checks credentials. Unknown email is NotFound, a wrong password Unauthorized.
func Authenticate(ctx context.Context, db *gorm.DB, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, types.BadRequest("Email and password are required.")
	}

	var u models.User
	err := db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound("User not found.")
	}
	if err != nil {
		return nil, err
	}
	if !checkPassword(u.PasswordHash, password) {
		return nil, types.Unauthorized("Invalid password.")
	}
	return &u, nil
}

// AccountUpdate changes the caller's own account. Empty fields are left alone.
// A new password requires the current one.
type AccountUpdate struct {
	DisplayName     string `json:"displayName" validate:"max=256"`
	Email           string `json:"email" validate:"omitempty,email,max=256"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// UpdateAccount applies a self-service update
func UpdateAccount(ctx context.Context, db *gorm.DB, userID uint, in AccountUpdate) (*AccountView, error) {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Email = strings.TrimSpace(in.Email)
	if err := checkStruct(in, "Invalid account update."); err != nil {
		return nil, err
	}

	var out AccountView
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := FindUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		if in.NewPassword != "" && !checkPassword(u.PasswordHash, in.CurrentPassword) {
			return types.Unauthorized("Current password is incorrect.")
		}
		if err := applyUserChanges(tx, u, in.DisplayName, in.Email, in.NewPassword, ""); err != nil {
			return err
		}
		out = accountView(u)
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, emailTaken(in.Email)
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// applyUserChanges validates and saves the non-empty changes onto u
func applyUserChanges(tx *gorm.DB, u *models.User, displayName, email, newPassword, role string) error {
	updates := map[string]any{}

	if displayName != "" && displayName != u.DisplayName {
		updates["display_name"] = displayName
		u.DisplayName = displayName
	}

	if email != "" && !strings.EqualFold(email, u.Email) {
		if err := ensureEmailFree(tx, email, u.ID); err != nil {
			return err
		}
		updates["email"] = email
		u.Email = email
	} else if email != "" && email != u.Email {
		// same address, different case
		updates["email"] = email
		u.Email = email
	}

	if newPassword != "" {
		if errs := ValidatePassword(newPassword); len(errs) > 0 {
			return types.BadRequest("Invalid password.", errs...)
		}
		hash, err := HashPassword(newPassword)
		if err != nil {
			return types.Internal("Failed to update password.", err)
		}
		updates["password_hash"] = hash
		u.PasswordHash = hash
	}

	if role != "" {
		r, ok := models.ParseRole(role)
		if !ok {
			return types.BadRequest("Invalid role '" + role + "'.")
		}
		if r != u.Role {
			updates["role"] = r
			u.Role = r
		}
	}

	if len(updates) == 0 {
		return nil
	}
	return tx.Model(&models.User{}).Where("id = ?", u.ID).Updates(updates).Error
}
