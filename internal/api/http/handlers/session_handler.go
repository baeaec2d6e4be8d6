package handlers

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/dashboard-session/internal/api/dto"
	"github.com/spec-kit/dashboard-session/internal/service"
	apperrors "github.com/spec-kit/dashboard-session/pkg/util/errorutil"
)

// SessionHandler exposes the locally held session.
type SessionHandler struct {
	sessions   *service.SessionService
	signInPath string
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions *service.SessionService, signInPath string) *SessionHandler {
	return &SessionHandler{sessions: sessions, signInPath: signInPath}
}

// State handles GET /api/session/state.
func (h *SessionHandler) State(c *fiber.Ctx) error {
	state := h.sessions.State(c.UserContext())
	return c.JSON(fiber.Map{"data": dto.SessionStateResponse{
		LocallyComplete: state.IsLocallyComplete(),
		Missing:         state.Missing(),
	}})
}

// Credential handles GET /api/session/credential.
func (h *SessionHandler) Credential(c *fiber.Ctx) error {
	status, err := h.sessions.Credential(c.UserContext())
	if err != nil {
		return err
	}
	resp := dto.CredentialResponse{Kind: string(status.Kind), Live: status.Live}
	if !status.ExpiresAt.IsZero() {
		exp := status.ExpiresAt.UTC()
		resp.ExpiresAt = &exp
	}
	return c.JSON(fiber.Map{"data": resp})
}

// Identity handles GET /api/session/identity.
func (h *SessionHandler) Identity(c *fiber.Ctx) error {
	id, err := h.sessions.Identity(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewIdentityResponse(id)})
}

// Language handles GET /api/session/language.
func (h *SessionHandler) Language(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": dto.LanguageResponse{Language: h.sessions.Language(c.UserContext())}})
}

// SetLanguage handles PUT /api/session/language.
func (h *SessionHandler) SetLanguage(c *fiber.Ctx) error {
	var req dto.LanguageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError("invalid payload", validationDetails(err))
	}
	lang, err := h.sessions.SetLanguage(c.UserContext(), req.Language)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LanguageResponse{Language: lang}})
}

// SignOut handles POST /api/session/sign-out.
func (h *SessionHandler) SignOut(c *fiber.Ctx) error {
	if err := h.sessions.SignOut(c.UserContext(), "user"); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SignOutResponse{SignedOut: true, Redirect: h.signInPath}})
}

// SignOutPage handles GET on the sign-out page: it clears the session and
// sends the browser to sign-in.
func (h *SessionHandler) SignOutPage(c *fiber.Ctx) error {
	if err := h.sessions.SignOut(c.UserContext(), "user"); err != nil {
		return err
	}
	return c.Redirect(h.signInPath, fiber.StatusSeeOther)
}

func validationDetails(err error) map[string]any {
	details := map[string]any{}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		for field, fieldErr := range fieldErrs {
			details[field] = fieldErr.Error()
		}
		return details
	}
	details["payload"] = err.Error()
	return details
}
