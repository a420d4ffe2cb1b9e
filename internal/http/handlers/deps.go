package handlers

import (
	"fandomia/internal/repos"
	"fandomia/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler      *AuthHandler
	RoleHandler      *RoleHandler
	CartItemsHandler *CartItemsHandler
	ProductHandler   *ProductHandler
	SearchHandler    *SearchHandler
}

func NewDeps(db *sqlx.DB) *Deps {
	userRepo := repos.NewUserRepo(db)
	profileRepo := repos.NewProfileRepo(db)
	roleRepo := repos.NewRoleRepo(db)
	cartRepo := repos.NewCartItemRepo(db)
	prodRepo := repos.NewProductRepo(db)
	catRepo := repos.NewCategoryRepo(db)

	authSvc := services.NewAuthService(userRepo, profileRepo, roleRepo)
	rowSvc := services.NewCartRowService(cartRepo)
	catalogSvc := services.NewCatalogService(prodRepo, catRepo)

	return &Deps{
		Auth:             authSvc,
		AuthHandler:      &AuthHandler{Auth: authSvc},
		RoleHandler:      &RoleHandler{Auth: authSvc},
		CartItemsHandler: &CartItemsHandler{Rows: rowSvc},
		ProductHandler:   &ProductHandler{Catalog: catalogSvc},
		SearchHandler:    &SearchHandler{Catalog: catalogSvc},
	}
}
