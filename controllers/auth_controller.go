package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/cppla/sharedrop/config"
	"github.com/cppla/sharedrop/middleware"
	"github.com/cppla/sharedrop/models"
	"github.com/cppla/sharedrop/repository"
	"github.com/cppla/sharedrop/storage"
	"github.com/cppla/sharedrop/utils"
)

const tokenDuration = 24 * time.Hour

// AuthController handles registration, login and logout. Authentication
// stops here: the file services below it only ever see resolved usernames.
type AuthController struct {
	users *repository.UserRepository
}

// NewAuthController creates the controller over a user repository.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{users: repository.NewUserRepository(db)}
}

// Register creates a new account. The form may carry an optional avatar
// image; registration succeeds without one.
func (a *AuthController) Register(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.PostForm("username"))
	password := ctx.PostForm("password")
	if username == "" {
		utils.Error(ctx, http.StatusBadRequest, 40001, "missing username")
		return
	}
	if password == "" {
		utils.Error(ctx, http.StatusBadRequest, 40002, "missing password")
		return
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to hash password")
		return
	}

	user := &models.User{Username: username, PasswordHash: hash}
	if err := a.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			utils.Error(ctx, http.StatusConflict, 40901, fmt.Sprintf("username %q already in use", username))
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50002, "failed to create user")
		return
	}

	// Avatar is best-effort; a bad image aborts registration only because
	// the account row already exists and the client should retry the upload.
	if file, err := ctx.FormFile("avatar"); err == nil && file != nil {
		if err := a.saveAvatar(ctx, username, file.Filename); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40003, err.Error())
			return
		}
	}

	utils.Success(ctx, gin.H{"username": username})
}

// saveAvatar copies the uploaded avatar into the public avatar directory,
// accepting image extensions only.
func (a *AuthController) saveAvatar(ctx *gin.Context, username, originalName string) error {
	_, ext, err := storage.SplitExtension(originalName)
	if err != nil {
		return err
	}
	if storage.Categorize(ext) != "image" {
		return errors.New("avatar file must be an image")
	}

	cfg := config.Get()
	if err := os.MkdirAll(cfg.AvatarDir, 0o755); err != nil {
		return err
	}
	file, err := ctx.FormFile("avatar")
	if err != nil {
		return err
	}
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dstPath := filepath.Join(cfg.AvatarDir, username+"."+ext)
	dst, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return err
	}

	return a.users.SetAvatarURL(username, "/avatars/"+username+"."+ext)
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Login checks credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBind(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid login payload")
		return
	}

	user, err := a.users.FindByUsername(req.Username)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to look up user")
		return
	}
	if user == nil {
		utils.Error(ctx, http.StatusUnauthorized, 40110, fmt.Sprintf("username %q not found", req.Username))
		return
	}
	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40111, fmt.Sprintf("invalid password for account %q", req.Username))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, tokenDuration)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token":    token,
		"username": user.Username,
	})
}

// Logout revokes the presented token until its natural expiry.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 {
		token := strings.TrimSpace(parts[1])
		if claims, err := utils.ParseToken(token); err == nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	}
	utils.Success(ctx, gin.H{"message": "you are now logged out"})
}

// Me returns the authenticated account.
func (a *AuthController) Me(ctx *gin.Context) {
	username := middleware.Username(ctx)
	user, err := a.users.FindByUsername(username)
	if err != nil || user == nil {
		utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
		return
	}
	utils.Success(ctx, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"avatar_url": user.AvatarURL,
	})
}
