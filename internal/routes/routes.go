package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/family-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/family-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// Handlers groups the route handlers Setup mounts.
type Handlers struct {
	Auth   *handlers.AuthHandler
	Health *handlers.HealthHandler
	User   *handlers.UserHandler
	Family *handlers.FamilyHandler
	Invite *handlers.InviteHandler
	Photo  *handlers.PhotoHandler
}

func Setup(
	app *fiber.App,
	cfg *config.Config,
	users repository.UserStore,
	gate *services.MembershipGate,
	h Handlers,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", h.Health.Check)

	// Middleware is applied per route: Group.Use would also run for the
	// public routes that share a prefix.
	jwt := middleware.JWTProtected(cfg)
	current := middleware.CurrentUser(users)
	member := middleware.FamilyMember(gate)
	admin := middleware.FamilyAdmin(gate)

	// Auth: stricter limit of 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/forgot-password", h.Auth.ForgotPassword)
	auth.Post("/reset-password", h.Auth.ResetPassword)
	auth.Get("/verify-email/:token", h.Auth.VerifyEmail)
	auth.Post("/logout", jwt, h.Auth.Logout)
	auth.Post("/send-verification", jwt, current, h.Auth.SendVerification)

	api.Get("/users/profile", jwt, current, h.User.GetProfile)
	api.Put("/users/profile", jwt, current, h.User.UpdateProfile)

	// Families. Static segments are registered before :familyId.
	api.Post("/families", jwt, current, h.Family.Create)
	api.Get("/families", jwt, current, h.Family.ListMine)
	api.Get("/families/by-code/:code", h.Invite.FamilyByCode)
	api.Post("/families/join", jwt, current, h.Invite.Join)
	api.Post("/families/join/token", jwt, current, h.Invite.JoinByToken)
	api.Post("/families/join/code", jwt, current, h.Invite.Join)

	api.Get("/families/:familyId", jwt, current, member, h.Family.Get)
	api.Put("/families/:familyId", jwt, current, admin, h.Family.Update)
	api.Delete("/families/:familyId", jwt, current, admin, h.Family.Delete)
	api.Post("/families/:familyId/invite-link", jwt, current, admin, h.Invite.CreateLink)
	api.Post("/families/:familyId/invite-code", jwt, current, admin, h.Invite.CreateCode)
	api.Get("/families/:familyId/invites", jwt, current, admin, h.Invite.List)

	api.Get("/families/:familyId/children", jwt, current, member, h.Family.ListChildren)
	api.Post("/families/:familyId/children", jwt, current, admin, h.Family.CreateChild)
	api.Get("/families/:familyId/children/:childId", jwt, current, member, h.Family.GetChild)
	api.Put("/families/:familyId/children/:childId", jwt, current, admin, h.Family.UpdateChild)
	api.Delete("/families/:familyId/children/:childId", jwt, current, admin, h.Family.DeleteChild)

	// Photos
	api.Get("/photos/:familyId", jwt, current, member, h.Photo.List)
	api.Post("/photos/:familyId/upload", jwt, current, member, h.Photo.Upload)
	api.Delete("/photos/:photoId", jwt, current, h.Photo.Delete)

	// Invites: check and by-code are public previews.
	api.Get("/invites/check/:code", h.Invite.Check)
	api.Get("/invites/by-code/:code", h.Invite.FamilyByCode)
	api.Post("/invites", jwt, current, h.Invite.Create)
	api.Post("/invites/invite-link", jwt, current, h.Invite.CreateLink)
	api.Post("/invites/invite-code", jwt, current, h.Invite.CreateCode)
	api.Post("/invites/accept/:code", jwt, current, h.Invite.Accept)
	api.Post("/invites/join", jwt, current, h.Invite.Join)
	api.Delete("/invites/:inviteId", jwt, current, h.Invite.Revoke)
}
