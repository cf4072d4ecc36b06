package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/app/repositories"
	"github.com/shashiranjanraj/marketplace/pkg/auth"
	"github.com/shashiranjanraj/marketplace/pkg/logger"
	"gorm.io/gorm"
)

// RegisterInput is the sign-up payload. Role may be "customer" (default)
// or "seller"; sellers must name their store and start unapproved.
type RegisterInput struct {
	Name             string `json:"name"     validate:"required,min=2,max=100"`
	Email            string `json:"email"    validate:"required,email"`
	Password         string `json:"password" validate:"required,min=6"`
	Role             string `json:"role"     validate:"nullable,in=customer|seller"`
	StoreName        string `json:"storeName"`
	StoreDescription string `json:"storeDescription"`
	Phone            string `json:"phone"`
}

type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{users: repositories.NewUserRepository(db)}
}

// Register creates the account and returns it with a signed token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", invalid("email", "User with this email already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		Password: hash,
		Role:     models.RoleCustomer,
		Phone:    in.Phone,
	}
	if in.Role == models.RoleSeller {
		if strings.TrimSpace(in.StoreName) == "" {
			return nil, "", invalid("storeName", "Store name is required for seller registration")
		}
		user.Role = models.RoleSeller
		user.StoreName = strings.TrimSpace(in.StoreName)
		user.StoreDescription = in.StoreDescription
		user.IsApproved = false
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	logger.WithCtx(ctx).Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

// Login checks the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", &UnauthorizedError{Message: "Invalid email or password"}
	}
	if err != nil {
		return nil, "", err
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, "", &UnauthorizedError{Message: "Invalid email or password"}
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Profile returns the user behind an authenticated request.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User")
	}
	return user, nil
}
