package core

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// NewRouter constructs the Gin engine with routes wired.
func NewRouter(cfg Config, authService AuthService, validator *TokenValidator, userRepo UserRepository) *gin.Engine {
	r := gin.Default()

	// Global middleware: request id -> origin/CORS -> token interceptor
	r.Use(RequestIDMiddleware())
	r.Use(OriginMiddleware(cfg))
	r.Use(AuthTokenMiddleware(validator, userRepo))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/auth/signin", func(c *gin.Context) {
			var req struct {
				Username string `json:"username"`
				Password string `json:"password"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "invalid json")
				return
			}

			token, user, err := authService.SignIn(c.Request.Context(), req.Username, req.Password)
			if err != nil {
				respondError(c, http.StatusUnauthorized, "invalid username or password")
				return
			}

			setTokenCookie(c, cfg, token, cfg.JWTExpirationMs/1000)
			c.JSON(http.StatusOK, gin.H{
				"id":       user.ID,
				"username": user.Username,
				"email":    user.Email,
				"roles":    roleStrings(user.Roles),
				"token":    token,
			})
		})

		api.POST("/auth/signup", func(c *gin.Context) {
			var req struct {
				Username string   `json:"username"`
				Password string   `json:"password"`
				Email    string   `json:"email"`
				Roles    []string `json:"roles"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				respondError(c, http.StatusBadRequest, "invalid json")
				return
			}

			user, err := authService.SignUp(c.Request.Context(), req.Username, req.Password, req.Email, req.Roles)
			if err != nil {
				switch {
				case errors.Is(err, ErrDuplicateUsername):
					respondError(c, http.StatusBadRequest, "username is already taken")
				case errors.Is(err, ErrDuplicateEmail):
					respondError(c, http.StatusBadRequest, "email is already in use")
				case errors.Is(err, ErrValidation):
					respondError(c, http.StatusBadRequest, err.Error())
				default:
					respondError(c, http.StatusInternalServerError, "failed to register user")
				}
				return
			}

			c.JSON(http.StatusCreated, gin.H{
				"id":       user.ID,
				"username": user.Username,
				"email":    user.Email,
				"roles":    roleStrings(user.Roles),
				"message":  "user registered successfully",
			})
		})

		api.POST("/auth/signout", func(c *gin.Context) {
			// Tokens are not revoked server-side; sign-out just clears the
			// carrying cookie and the client discards the token.
			setTokenCookie(c, cfg, "", -1)
			c.JSON(http.StatusOK, gin.H{"message": "you've been signed out"})
		})

		content := api.Group("/content")
		{
			content.GET("/all", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"content": "public content"})
			})
			content.GET("/user", RequireRoles(RoleUser, RoleModerator, RoleAdmin), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"content": "user content"})
			})
			content.GET("/moderator", RequireRoles(RoleModerator, RoleAdmin), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"content": "moderator content"})
			})
			content.GET("/admin", RequireRoles(RoleAdmin), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"content": "admin content"})
			})
		}

		users := api.Group("/users")
		{
			users.GET("", RequireRoles(RoleModerator, RoleAdmin), func(c *gin.Context) {
				page, perPage, err := parsePagination(c.Query("page"), c.Query("per_page"))
				if err != nil {
					respondError(c, http.StatusBadRequest, err.Error())
					return
				}
				items, total, err := userRepo.List(c.Request.Context(), page, perPage)
				if err != nil {
					respondError(c, http.StatusInternalServerError, "failed to fetch users")
					return
				}
				c.JSON(http.StatusOK, gin.H{
					"items":       items,
					"page":        page,
					"per_page":    perPage,
					"total_items": total,
					"total_pages": calcTotalPages(total, perPage),
				})
			})

			users.GET("/:id", RequireRoles(RoleModerator, RoleAdmin), func(c *gin.Context) {
				id, ok := pathID(c)
				if !ok {
					return
				}
				u, err := userRepo.FindByID(c.Request.Context(), id)
				if err != nil {
					if errors.Is(err, ErrUserNotFound) {
						respondError(c, http.StatusNotFound, "user not found")
						return
					}
					respondError(c, http.StatusInternalServerError, "failed to fetch user")
					return
				}
				c.JSON(http.StatusOK, userResponse(u))
			})

			users.PUT("/:id", RequireRoles(RoleModerator, RoleAdmin), func(c *gin.Context) {
				id, ok := pathID(c)
				if !ok {
					return
				}
				var req struct {
					Username string `json:"username"`
				}
				if err := c.ShouldBindJSON(&req); err != nil {
					respondError(c, http.StatusBadRequest, "invalid json")
					return
				}
				req.Username = strings.TrimSpace(req.Username)
				if req.Username == "" {
					respondError(c, http.StatusBadRequest, "username is required")
					return
				}
				ctx := c.Request.Context()
				if err := userRepo.UpdateUsername(ctx, id, req.Username); err != nil {
					if errors.Is(err, ErrUserNotFound) {
						respondError(c, http.StatusNotFound, "user not found")
						return
					}
					respondError(c, http.StatusInternalServerError, "failed to update user")
					return
				}
				u, err := userRepo.FindByID(ctx, id)
				if err != nil {
					respondError(c, http.StatusInternalServerError, "failed to load updated user")
					return
				}
				c.JSON(http.StatusOK, userResponse(u))
			})

			users.DELETE("/:id", RequireRoles(RoleAdmin), func(c *gin.Context) {
				id, ok := pathID(c)
				if !ok {
					return
				}
				if err := userRepo.Delete(c.Request.Context(), id); err != nil {
					if errors.Is(err, ErrUserNotFound) {
						respondError(c, http.StatusNotFound, "user not found")
						return
					}
					respondError(c, http.StatusInternalServerError, "failed to delete user")
					return
				}
				c.Status(http.StatusNoContent)
			})

			users.DELETE("", RequireRoles(RoleAdmin), func(c *gin.Context) {
				if err := userRepo.DeleteAll(c.Request.Context()); err != nil {
					respondError(c, http.StatusInternalServerError, "failed to delete users")
					return
				}
				c.Status(http.StatusNoContent)
			})
		}
	}

	return r
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func userResponse(u *UserRecord) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"roles":      u.Roles,
		"created_at": u.CreatedAt,
	}
}

// setTokenCookie writes (or clears, with negative maxAge) the cookie carrying
// the access token.
func setTokenCookie(c *gin.Context, cfg Config, token string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/api",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: sameSiteFromString(cfg.CookieSameSite),
	})
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

func parsePagination(pageStr, perPageStr string) (int, int, error) {
	page := 1
	perPage := defaultPerPage
	if strings.TrimSpace(pageStr) != "" {
		p, err := strconv.Atoi(pageStr)
		if err != nil || p <= 0 {
			return 0, 0, errors.New("page must be a positive integer")
		}
		page = p
	}
	if strings.TrimSpace(perPageStr) != "" {
		p, err := strconv.Atoi(perPageStr)
		if err != nil || p <= 0 {
			return 0, 0, errors.New("per_page must be a positive integer")
		}
		if p > maxPerPage {
			p = maxPerPage
		}
		perPage = p
	}
	return page, perPage, nil
}

func calcTotalPages(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}
