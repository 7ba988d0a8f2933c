package server

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/carhome/carhome/internal/auth"
	"github.com/carhome/carhome/internal/handlers"
	"github.com/carhome/carhome/internal/httpx"
	"github.com/carhome/carhome/internal/middleware"
	"github.com/carhome/carhome/internal/models"
	"github.com/carhome/carhome/internal/services"
	"github.com/carhome/carhome/internal/view"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, log *logrus.Logger) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth checks the session user still exists; RequireAdmin asks
	// for the role. Both injected here so the auth package stays free of
	// model imports.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})
	auth.SetRoleResolver(func(_ context.Context, uid uint) string {
		var user models.User
		if err := db.Select("role").First(&user, uid).Error; err != nil {
			return ""
		}
		return user.Role
	})

	catalogSvc := services.NewCatalogService(db)
	inventorySvc := services.NewInventoryService(db)
	bookingSvc := services.NewBookingService(db)

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "degraded", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Static assets
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// Public routes
	authHandler := handlers.NewAuthHandler(db, bookingSvc)
	authHandler.Register(mux)
	catalogHandler := handlers.NewCatalogHandler(catalogSvc)
	catalogHandler.Register(mux)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		if err := view.Render(w, r, "index.html", nil); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			if _, werr := w.Write([]byte("render error")); werr != nil {
				_ = werr
			}
		}
	})

	// Account-scoped routes
	requireAuth := func(h http.HandlerFunc) http.Handler { return auth.RequireAuth(h) }
	mux.Handle("GET /account", requireAuth(authHandler.Account))
	mux.Handle("POST /update-user", requireAuth(authHandler.UpdateUser))
	mux.Handle("GET /get-user", requireAuth(authHandler.GetUser))

	tdHandler := handlers.NewTestDriveHandler(catalogSvc, bookingSvc)
	mux.Handle("GET /test-drive", requireAuth(tdHandler.Page))
	mux.Handle("POST /test-drive", requireAuth(tdHandler.Book))
	mux.Handle("POST /cancel-test-drive", requireAuth(tdHandler.Cancel))

	// Admin routes
	adminHandler := handlers.NewAdminHandler(db, catalogSvc, inventorySvc, bookingSvc)
	requireAdmin := func(h http.HandlerFunc) http.Handler { return auth.RequireAdmin(h) }
	mux.Handle("GET /admin-panel", requireAdmin(adminHandler.Panel))
	mux.Handle("GET /admin-panel/{section}", requireAdmin(adminHandler.Section))
	mux.Handle("GET /add-car", requireAdmin(adminHandler.AddCarForm))
	mux.Handle("POST /admin-panel/add-car", requireAdmin(adminHandler.AddCar))
	mux.Handle("GET /edit-car/{id}", requireAdmin(adminHandler.EditCarForm))
	mux.Handle("POST /edit-car", requireAdmin(adminHandler.EditCar))
	mux.Handle("GET /delete-car/{id}", requireAdmin(adminHandler.DeleteCar))
	mux.Handle("GET /add-user", requireAdmin(adminHandler.AddUserForm))
	mux.Handle("POST /add-user", requireAdmin(adminHandler.AddUser))
	mux.Handle("GET /edit-user/{id}", requireAdmin(adminHandler.EditUserForm))
	mux.Handle("POST /edit-user/{id}", requireAdmin(adminHandler.EditUser))
	mux.Handle("GET /delete-user/{id}", requireAdmin(adminHandler.DeleteUser))
	mux.Handle("GET /edit-test-drive/{id}", requireAdmin(adminHandler.EditTestDriveForm))
	mux.Handle("POST /edit-test-drive/{id}", requireAdmin(adminHandler.EditTestDrive))
	mux.Handle("GET /delete-test-drive/{id}", requireAdmin(adminHandler.DeleteTestDrive))

	var root http.Handler = mux
	root = auth.Middleware(root)
	root = middleware.Logging(log, root)
	root = middleware.Recover(log, root)
	root = middleware.RequestID(root)
	return root
}
