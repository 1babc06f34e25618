package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/middleware"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/optimistic"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/services"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/session"
	"github.com/faistasortieaToulouse/ToulouseRendonneesPWA2/internal/validation"
)

// User-facing messages, verbatim from the club's forms. The login
// failure message is deliberately the same whether the identifiant or
// the password was wrong.
const (
	MsgUsernameTaken = "Cet identifiant est déjà utilisé par un autre membre."
	MsgLoginFailed   = "L'identifiant ou le mot de passe est incorrect."
	MsgSignupFailed  = "Une erreur est survenue lors de l'inscription."
	MsgLoginUnknown  = "Une erreur inconnue s'est produite lors de la connexion."
)

type Handler struct {
	svc      services.MemberService
	sessions *session.Manager
	writer   *optimistic.Writer
	log      *zap.SugaredLogger
}

func NewHandler(svc services.MemberService, sessions *session.Manager, writer *optimistic.Writer, log *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, sessions: sessions, writer: writer, log: log}
}

// Signup handles POST /auth/signup.
func (h *Handler) Signup(c *fiber.Ctx) error {
	var req validation.SignupInput
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	member, err := h.svc.Signup(c.Context(), req)
	if err != nil {
		var ve *services.ValidationError
		switch {
		case errors.As(err, &ve):
			return fiber.NewError(fiber.StatusBadRequest, ve.Msg)
		case errors.Is(err, services.ErrUsernameTaken):
			return fiber.NewError(fiber.StatusConflict, MsgUsernameTaken)
		default:
			h.log.Errorw("signup failed", "error", err)
			return fiber.NewError(fiber.StatusInternalServerError, MsgSignupFailed)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Compte créé pour %s! Vous pouvez maintenant vous connecter.", member.Username),
		"user":    member,
	})
}

type loginReq struct {
	Username string `json:"identite"`
	Password string `json:"password"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginReq
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, validation.MsgMissingFields)
	}

	member, err := h.svc.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, MsgLoginFailed)
		}
		h.log.Errorw("login failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, MsgLoginUnknown)
	}

	sess, err := h.sessions.Open(c.Context(), member.Username)
	if err != nil {
		h.log.Errorw("session open failed", "identite", member.Username, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, MsgLoginUnknown)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Connexion réussie ! Bienvenue, %s.", member.Username),
		"user":    member,
		"session": sess,
	})
}

type sessionTokenReq struct {
	SessionToken string `json:"session_token"`
}

// RestoreSession handles POST /session/restore: the startup step that
// rebuilds a session from the durable token.
func (h *Handler) RestoreSession(c *fiber.Ctx) error {
	var req sessionTokenReq
	if err := c.BodyParser(&req); err != nil || req.SessionToken == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_token required")
	}

	identity, sess, err := h.sessions.Restore(c.Context(), req.SessionToken)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return fiber.NewError(fiber.StatusUnauthorized, "session expired")
		}
		h.log.Errorw("session restore failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "session restore failed")
	}

	member, err := h.svc.Lookup(c.Context(), identity)
	if err != nil {
		// Session outlived the profile; treat it as gone.
		if errors.Is(err, services.ErrMemberNotFound) {
			_ = h.sessions.Revoke(c.Context(), req.SessionToken)
			return fiber.NewError(fiber.StatusUnauthorized, "session expired")
		}
		h.log.Errorw("session profile lookup failed", "identite", identity, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "session restore failed")
	}

	return c.JSON(fiber.Map{"user": member, "session": sess})
}

// Logout handles POST /auth/logout, revoking the durable token.
func (h *Handler) Logout(c *fiber.Ctx) error {
	var req sessionTokenReq
	if err := c.BodyParser(&req); err != nil || req.SessionToken == "" {
		return fiber.NewError(fiber.StatusBadRequest, "session_token required")
	}
	if err := h.sessions.Revoke(c.Context(), req.SessionToken); err != nil {
		h.log.Errorw("logout failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "logout failed")
	}
	return c.JSON(fiber.Map{"message": "logged_out"})
}

// Me handles GET /members/me behind the session middleware.
func (h *Handler) Me(c *fiber.Ctx) error {
	identity, _ := c.Locals(middleware.IdentityKey).(string)
	if identity == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing session")
	}

	member, err := h.svc.Lookup(c.Context(), identity)
	if err != nil {
		if errors.Is(err, services.ErrMemberNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "session expired")
		}
		h.log.Errorw("me lookup failed", "identite", identity, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "lookup failed")
	}
	return c.JSON(fiber.Map{"user": member})
}

// WriteFailures handles GET /members/write-failures: the feed the UI
// polls to surface abandoned optimistic writes as a retry banner.
func (h *Handler) WriteFailures(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"failures": h.writer.Failures()})
}
