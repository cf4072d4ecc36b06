package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/marketplace/app/controllers"
	"github.com/shashiranjanraj/marketplace/app/models"
	"github.com/shashiranjanraj/marketplace/app/repositories"
	"github.com/shashiranjanraj/marketplace/app/schema"
	"github.com/shashiranjanraj/marketplace/app/services"
	"github.com/shashiranjanraj/marketplace/pkg/ctx"
	"github.com/shashiranjanraj/marketplace/pkg/database"
	"github.com/shashiranjanraj/marketplace/pkg/graphql"
	"github.com/shashiranjanraj/marketplace/pkg/middleware"
	"github.com/shashiranjanraj/marketplace/pkg/rbac"
	"github.com/shashiranjanraj/marketplace/pkg/response"
	"github.com/shashiranjanraj/marketplace/pkg/router"
	"github.com/shashiranjanraj/marketplace/pkg/ws"
)

// Deps are the handles the API needs. Hub may be nil, which turns the
// websocket endpoint into a 503.
type Deps struct {
	DB  *gorm.DB
	Hub *ws.Hub
}

// Lookup reloads the caller on every request so approvals and role
// changes apply to tokens already issued.
func Lookup(db *gorm.DB) middleware.LookupFunc {
	users := repositories.NewUserRepository(db)
	return func(ctx context.Context, id uint) (*middleware.Principal, error) {
		u, err := users.FindByID(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &middleware.Principal{ID: u.ID, Role: u.Role, Approved: u.IsApproved}, nil
	}
}

func RegisterAPI(r *router.Router, d Deps) error {
	orders := services.NewOrderService(d.DB)

	authController := controllers.NewAuthController(services.NewAuthService(d.DB))
	cartController := controllers.NewCartController(services.NewCartService(d.DB))
	orderController := controllers.NewOrderController(orders)
	sellerController := controllers.NewSellerController(orders)
	adminController := controllers.NewAdminController(services.NewAdminService(d.DB), orders)
	healthController := controllers.NewHealthController(func(context.Context) error {
		return database.Ping(d.DB)
	})

	gqlSchema, err := schema.OrderSchema(orders)
	if err != nil {
		return fmt.Errorf("routes: build graphql schema: %w", err)
	}

	authenticate := middleware.Authenticate(Lookup(d.DB))

	api := r.Group("/api")
	api.Get("/health", "health", ctx.Wrap(healthController.Show))

	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", "auth.register", ctx.Wrap(authController.Register))
	authRoutes.Post("/login", "auth.login", ctx.Wrap(authController.Login))
	authRoutes.Get("/profile", "auth.profile", ctx.Wrap(authController.Profile), authenticate)

	cart := api.Group("/cart", authenticate)
	cart.Get("", "cart.show", ctx.Wrap(cartController.Show))
	cart.Post("", "cart.add", ctx.Wrap(cartController.Add))
	cart.Delete("", "cart.clear", ctx.Wrap(cartController.Clear))
	cart.Put("/{productId}", "cart.update", ctx.Wrap(cartController.Update))
	cart.Delete("/{productId}", "cart.remove", ctx.Wrap(cartController.Remove))

	orderRoutes := api.Group("/orders", authenticate)
	orderRoutes.Post("", "orders.place", ctx.Wrap(orderController.Place))
	orderRoutes.Get("/my", "orders.mine", ctx.Wrap(orderController.Mine))
	orderRoutes.Get("/{id}", "orders.show", ctx.Wrap(orderController.Show))
	orderRoutes.Put("/{id}/cancel", "orders.cancel", ctx.Wrap(orderController.Cancel))

	seller := api.Group("/seller", authenticate, rbac.HasRole(models.RoleSeller))
	seller.Get("/orders", "seller.orders", ctx.Wrap(sellerController.Orders))
	seller.Put("/orders/{id}/status", "seller.orders.status", ctx.Wrap(sellerController.UpdateStatus))

	admin := api.Group("/admin", authenticate, rbac.HasRole(models.RoleAdmin))
	admin.Get("/orders", "admin.orders", ctx.Wrap(adminController.Orders))
	admin.Get("/sellers", "admin.sellers", ctx.Wrap(adminController.Sellers))
	admin.Put("/sellers/{id}/approve", "admin.sellers.approve", ctx.Wrap(adminController.Approve))
	admin.Put("/sellers/{id}/reject", "admin.sellers.reject", ctx.Wrap(adminController.Reject))

	api.Handle(http.MethodPost, "/graphql", "graphql", graphql.Handler(gqlSchema), authenticate)
	api.Get("/ws/orders", "ws.orders", func(w http.ResponseWriter, r *http.Request) {
		if d.Hub == nil {
			response.Error(w, http.StatusServiceUnavailable, "Live updates are disabled")
			return
		}
		id, _ := middleware.UserIDFromCtx(r)
		d.Hub.ServeWS(w, r, id)
	}, authenticate)

	return nil
}
