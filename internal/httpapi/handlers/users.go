package handlers

import (
	"crypto/rand"
	"errors"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/udyamsetu/platform/internal/auth"
	"github.com/udyamsetu/platform/internal/common"
	"github.com/udyamsetu/platform/internal/httpapi/middleware"
	"github.com/udyamsetu/platform/internal/models"
	"github.com/udyamsetu/platform/internal/ws"
)

type createUserReq struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Username     string `json:"username"`
	BusinessName string `json:"business_name"`
}

// generate an 11 digit random username
func randomUsername11() (string, error) {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	out := make([]byte, 11)
	for i := 0; i < 11; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
		if err != nil {
			return "", err
		}
		out[i] = letters[n.Int64()]
	}
	return string(out), nil
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if req.Email == "" || req.Password == "" {
		common.Fail(c, http.StatusBadRequest, 10002, "email and password required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20002, "failed to hash password")
		return
	}

	username := req.Username
	if username == "" {
		// allocate a random username, retrying on collision
		for i := 0; i < 5; i++ {
			u, err := randomUsername11()
			if err != nil {
				common.Fail(c, http.StatusInternalServerError, 20004, "failed to generate username")
				return
			}
			var cnt int64
			if err := h.DB.Model(&models.User{}).Where("username = ?", u).Count(&cnt).Error; err != nil {
				common.Fail(c, http.StatusInternalServerError, 20005, "failed to check username")
				return
			}
			if cnt == 0 {
				username = u
				break
			}
		}
		if username == "" {
			common.Fail(c, http.StatusInternalServerError, 20006, "failed to allocate username")
			return
		}
	}

	user := models.User{
		Email:        req.Email,
		Username:     username,
		BusinessName: req.BusinessName,
		PasswordHash: hash,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		common.Fail(c, http.StatusBadRequest, 10003, "failed to create user (maybe email or username already exists)")
		return
	}

	common.OK(c, gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"username":      user.Username,
		"business_name": user.BusinessName,
	})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login issues both credentials: the session cookie consumed by the browser
// and the websocket gateway, and a JWT for non-browser API clients.
func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		common.Fail(c, http.StatusUnauthorized, 40110, "invalid email or password")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		common.Fail(c, http.StatusUnauthorized, 40110, "invalid email or password")
		return
	}

	sid, err := h.Sessions.CreateSession(c.Request.Context(), user.ID)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "session store error")
		return
	}

	token, err := auth.SignJWT(user.ID, h.Cfg.JWTSecret, h.Cfg.SessionTTL)
	if err != nil {
		common.Fail(c, http.StatusInternalServerError, 20003, "failed to sign token")
		return
	}

	c.SetCookie(ws.SessionCookie, sid, int(h.Cfg.SessionTTL/time.Second), "/", "", false, true)

	common.OK(c, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.Username,
		"token":    token,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	sid, err := c.Cookie(ws.SessionCookie)
	if err == nil && sid != "" {
		_ = h.Sessions.DeleteSession(c.Request.Context(), sid)
	}
	c.SetCookie(ws.SessionCookie, "", -1, "/", "", false, true)
	common.OK(c, nil)
}

func (h *Handler) Me(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		common.Fail(c, http.StatusNotFound, 40401, "user not found")
		return
	}

	common.OK(c, gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"username":      user.Username,
		"business_name": user.BusinessName,
		"created_at":    user.CreatedAt,
	})
}

func (h *Handler) GetUserByID(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10004, "invalid user id")
		return
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, 40401, "user not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}

	common.OK(c, gin.H{
		"id":            user.ID,
		"username":      user.Username,
		"business_name": user.BusinessName,
		"created_at":    user.CreatedAt,
	})
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
