package http

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"vidtube-server/internal/apierr"
	"vidtube-server/internal/service"
	"vidtube-server/internal/token"
)

const (
	accessCookie  = "accessToken"
	refreshCookie = "refreshToken"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	sessions   service.SessionService
	registrar  service.RegisterService
	codec      *token.Codec
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *logrus.Logger
}

func NewHandler(sessions service.SessionService, registrar service.RegisterService, codec *token.Codec, accessTTL, refreshTTL time.Duration, logger *logrus.Logger) *Handler {
	return &Handler{
		sessions:   sessions,
		registrar:  registrar,
		codec:      codec,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestLogger(h.logger))

	api := router.Group("/api/v1")
	{
		users := api.Group("/users")
		users.POST("/register", h.register)
		users.POST("/login", h.login)
		users.POST("/refresh-token", h.refreshToken)

		authed := users.Group("", h.requireAuth())
		authed.POST("/logout", h.logout)
		authed.GET("/current-user", h.currentUser)

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}
}

func (h *Handler) register(c *gin.Context) {
	in := service.RegisterInput{
		FullName: c.PostForm("fullName"),
		Email:    c.PostForm("email"),
		Username: c.PostForm("username"),
		Password: c.PostForm("password"),
	}

	avatar, avatarClose, err := formUpload(c, "avatar")
	if err != nil {
		respondError(c, apierr.Validation("avatar is required"))
		return
	}
	defer avatarClose()

	// optional; absence is not an error
	cover, coverClose, err := formUpload(c, "coverImage")
	if err == nil {
		defer coverClose()
	}

	view, err := h.registrar.Register(c.Request.Context(), in, avatar, cover)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": view})
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierr.Validation("invalid request body"))
		return
	}

	pair, view, err := h.sessions.Login(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"user":         view,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *Handler) refreshToken(c *gin.Context) {
	presented, err := c.Cookie(refreshCookie)
	if err != nil || presented == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			presented = req.RefreshToken
		}
	}

	pair, err := h.sessions.Rotate(c.Request.Context(), presented)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setAuthCookies(c, pair)
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (h *Handler) logout(c *gin.Context) {
	userID := c.GetString(ctxUserID)
	if err := h.sessions.Logout(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) currentUser(c *gin.Context) {
	view, err := h.sessions.GetUser(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": view})
}

func (h *Handler) setAuthCookies(c *gin.Context, pair *service.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookie, pair.AccessToken, int(h.accessTTL.Seconds()), "/", "", true, true)
	c.SetCookie(refreshCookie, pair.RefreshToken, int(h.refreshTTL.Seconds()), "/", "", true, true)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessCookie, "", -1, "/", "", true, true)
	c.SetCookie(refreshCookie, "", -1, "/", "", true, true)
}

func formUpload(c *gin.Context, field string) (*service.FileUpload, func(), error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	file, err := header.Open()
	if err != nil {
		return nil, nil, err
	}
	return &service.FileUpload{
		Name:        header.Filename,
		ContentType: contentType(header),
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

func contentType(header *multipart.FileHeader) string {
	if header.Header == nil {
		return ""
	}
	return header.Header.Get("Content-Type")
}

func respondError(c *gin.Context, err error) {
	status, msg := apierr.StatusOf(err)
	c.AbortWithStatusJSON(status, gin.H{
		"statusCode": status,
		"message":    msg,
		"success":    false,
	})
}
