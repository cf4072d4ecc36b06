package services

import (
	"context"

	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/app/repositories"
	"github.com/shashiranjanraj/marketplace/pkg/logger"
	"gorm.io/gorm"
)

// AdminService gates which sellers may use the seller endpoints.
type AdminService struct {
	users *repositories.UserRepository
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{users: repositories.NewUserRepository(db)}
}

// Sellers lists every seller account, newest first.
func (s *AdminService) Sellers(ctx context.Context) ([]models.User, error) {
	sellers, err := s.users.Sellers(ctx)
	if err != nil {
		return nil, err
	}
	if sellers == nil {
		sellers = []models.User{}
	}
	return sellers, nil
}

// Approve opens the seller endpoints to the seller.
func (s *AdminService) Approve(ctx context.Context, sellerID uint) (*models.User, error) {
	return s.setApproval(ctx, sellerID, true)
}

// Reject closes the seller endpoints again.
func (s *AdminService) Reject(ctx context.Context, sellerID uint) (*models.User, error) {
	return s.setApproval(ctx, sellerID, false)
}

func (s *AdminService) setApproval(ctx context.Context, sellerID uint, approved bool) (*models.User, error) {
	user, err := s.users.FindByID(ctx, sellerID)
	if err != nil {
		return nil, notFound(err, "Seller")
	}
	if !user.IsSeller() {
		return nil, &NotFoundError{Resource: "Seller"}
	}

	if err := s.users.SetApproval(ctx, sellerID, approved); err != nil {
		return nil, err
	}
	user.IsApproved = approved
	logger.WithCtx(ctx).Info("seller approval changed", "seller_id", sellerID, "approved", approved)
	return user, nil
}
