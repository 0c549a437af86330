package server

import (
	"github.com/gofiber/fiber/v3"

	"teamhub/internal/accounts"
	"teamhub/internal/authz"
	"teamhub/internal/handlers/api"
	"teamhub/internal/maintenance"
	"teamhub/internal/middleware"
	"teamhub/internal/models"
	"teamhub/internal/outreach"
	"teamhub/internal/store"
)

// Deps are the services the routes are wired to.
type Deps struct {
	Store       store.Store
	Gate        *authz.Gate
	Maintenance *maintenance.Service
	Outreach    *outreach.Service
	Accounts    *accounts.Service
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(d Deps) {
	auth := middleware.NewAuthMiddleware(s.Cfg.JWTSecret, s.Cfg.JWTIssuer, d.Store.Users(), s.Log)

	healthHandler := api.NewHealthHandler(d.Store)
	maintenanceHandler := api.NewMaintenanceHandler(d.Maintenance)
	outreachHandler := api.NewOutreachHandler(d.Outreach)
	accountHandler := api.NewAccountHandler(d.Accounts, d.Gate)

	s.App.Get("/healthz", healthHandler.Check)

	// Maintenance workflow
	m := s.App.Group("/maintenance", auth.RequireAuth)
	m.Get("/change-types", maintenanceHandler.ChangeTypes)
	m.Get("/proposals", maintenanceHandler.List)
	m.Get("/proposals/:id", maintenanceHandler.Get)
	m.Get("/proposals/:id/diff", maintenanceHandler.Diff)
	m.Post("/propose", maintenanceHandler.Propose)
	m.Put("/proposals/:id/approve", maintenanceHandler.Approve)
	m.Put("/proposals/:id/reject", maintenanceHandler.Reject)

	// Public content with direct operator edits
	robots := api.NewContentHandler(d.Maintenance, d.Gate, d.Store.Robots,
		models.ChangeRobot, models.ChangeRobot, models.ChangeRobotDelete)
	sponsors := api.NewContentHandler(d.Maintenance, d.Gate, d.Store.Sponsors,
		models.ChangeSponsor, models.ChangeSponsor, models.ChangeSponsorDelete)
	categories := api.NewContentHandler(d.Maintenance, d.Gate, d.Store.ResourceCategories,
		models.ChangeResourceCategory, models.ChangeResourceCategory, models.ChangeResourceCategoryDelete)
	resources := api.NewContentHandler(d.Maintenance, d.Gate, func() store.Repository[models.Resource] { return d.Store.Resources() },
		models.ChangeResource, models.ChangeResource, models.ChangeResourceDelete)
	subteams := api.NewContentHandler(d.Maintenance, d.Gate, d.Store.Subteams,
		models.ChangeSubteamCreate, models.ChangeSubteamUpdate, models.ChangeSubteamDelete)
	slideshow := api.NewContentHandler(d.Maintenance, d.Gate, d.Store.SlideshowImages,
		models.ChangeSlideshowImage, models.ChangeSlideshowImage, models.ChangeSlideshowImageDelete)
	pages := api.NewPageHandler(d.Maintenance, d.Gate, d.Store)

	// Categories register before resources so /resources/categories is not
	// taken for a resource id.
	registerContent(s, auth, "/resources/categories", categories)
	registerContent(s, auth, "/robots", robots)
	registerContent(s, auth, "/sponsors", sponsors)
	registerContent(s, auth, "/resources", resources)
	registerContent(s, auth, "/subteams", subteams)
	registerContent(s, auth, "/slideshow", slideshow)
	s.App.Get("/pages/slug/:slug", auth.OptionalAuth, pages.GetBySlug)
	registerContent(s, auth, "/pages", pages.ContentHandler)

	// Outreach
	o := s.App.Group("/outreach", auth.RequireAuth)
	o.Get("/events", outreachHandler.ListEvents)
	o.Post("/events", outreachHandler.CreateEvent)
	o.Get("/events/:id/participants", outreachHandler.Participants)
	o.Post("/events/:id/participants", outreachHandler.AddParticipant)
	o.Get("/leaderboard", outreachHandler.Leaderboard)

	// Accounts
	s.App.Get("/me", auth.RequireAuth, accountHandler.Me)
	u := s.App.Group("/users", auth.RequireAuth)
	u.Get("/", accountHandler.ListUsers)
	u.Put("/:id/role", accountHandler.SetRole)
	u.Put("/:id/maintenance-access", accountHandler.SetMaintenanceAccess)
	u.Delete("/:id", accountHandler.DeleteUser)

	s.App.Get("/settings", accountHandler.Settings)
	s.App.Get("/settings/:key", accountHandler.Setting)
	s.App.Put("/settings/:key", auth.RequireAuth, accountHandler.SetSetting)
}

type contentRoutes interface {
	List(fiber.Ctx) error
	Get(fiber.Ctx) error
	Create(fiber.Ctx) error
	Update(fiber.Ctx) error
	Patch(fiber.Ctx) error
	Delete(fiber.Ctx) error
}

func registerContent(s *Server, auth *middleware.AuthMiddleware, prefix string, h contentRoutes) {
	s.App.Get(prefix, auth.OptionalAuth, h.List)
	s.App.Get(prefix+"/:id", auth.OptionalAuth, h.Get)
	s.App.Post(prefix, auth.RequireAuth, h.Create)
	s.App.Put(prefix+"/:id", auth.RequireAuth, h.Update)
	s.App.Patch(prefix+"/:id", auth.RequireAuth, h.Patch)
	s.App.Delete(prefix+"/:id", auth.RequireAuth, h.Delete)
}
