package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"vibeapps/internal/middleware"
	"vibeapps/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	oauthStateKey     = "oauth_state"
)

// AuthHandler is the identity boundary: it turns a Google login into a session user id.
type AuthHandler struct {
	db          *gorm.DB
	oauth       *oauth2.Config
	userInfoURL string
}

// NewGoogleAuthHandler 初始化 Google OAuth 配置
func NewGoogleAuthHandler(db *gorm.DB, clientID, clientSecret, siteURL string) *AuthHandler {
	return NewAuthHandler(db, &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  strings.TrimRight(siteURL, "/") + "/auth/google/callback",
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}, googleUserInfoURL)
}

func NewAuthHandler(db *gorm.DB, cfg *oauth2.Config, userInfoURL string) *AuthHandler {
	return &AuthHandler{db: db, oauth: cfg, userInfoURL: userInfoURL}
}

// GoogleUserInfo Google 用户信息结构
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
}

// generateStateToken 生成随机 state token
func generateStateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Login 发起 Google OAuth 登录
func (h *AuthHandler) Login(c *gin.Context) {
	state, err := generateStateToken()
	if err != nil {
		RenderError(c, pkgerrors.Wrap(err, "generate oauth state"))
		return
	}

	// 将 state 存储到 session 中,用于验证回调
	session := sessions.Default(c)
	session.Set(oauthStateKey, state)
	if err := session.Save(); err != nil {
		RenderError(c, pkgerrors.Wrap(err, "save session"))
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.oauth.AuthCodeURL(state))
}

// Callback 处理 Google OAuth 回调
func (h *AuthHandler) Callback(c *gin.Context) {
	session := sessions.Default(c)
	savedState, _ := session.Get(oauthStateKey).(string)
	if savedState == "" || c.Query("state") != savedState {
		badRequest(c, "invalid oauth state")
		return
	}
	session.Delete(oauthStateKey)

	code := c.Query("code")
	if code == "" {
		badRequest(c, "missing authorization code")
		return
	}

	ctx := c.Request.Context()
	token, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		RenderError(c, pkgerrors.Wrap(err, "exchange oauth code"))
		return
	}
	info, err := h.fetchUserInfo(c, token)
	if err != nil {
		RenderError(c, err)
		return
	}
	if !info.VerifiedEmail {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden", "message": "google email is not verified"})
		return
	}

	user, err := h.upsertUser(c, info)
	if err != nil {
		RenderError(c, err)
		return
	}

	// 登录
	session.Set(middleware.SessionUserKey, user.ID)
	if err := session.Save(); err != nil {
		RenderError(c, pkgerrors.Wrap(err, "save session"))
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) fetchUserInfo(c *gin.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	resp, err := h.oauth.Client(c.Request.Context(), token).Get(h.userInfoURL)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "fetch google user info")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch google user info: status %d", resp.StatusCode)
	}
	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, pkgerrors.Wrap(err, "decode google user info")
	}
	if info.ID == "" {
		return nil, errors.New("google user info has no id")
	}
	return &info, nil
}

// upsertUser finds the account by provider subject, creating it on first login.
func (h *AuthHandler) upsertUser(c *gin.Context, info *GoogleUserInfo) (*models.User, error) {
	db := h.db.WithContext(c.Request.Context())
	externalID := "google:" + info.ID

	var user models.User
	found := db.Where("external_id = ?", externalID).Limit(1).Find(&user)
	if found.Error != nil {
		return nil, pkgerrors.Wrap(found.Error, "find user")
	}
	if found.RowsAffected > 0 {
		if user.Email != info.Email {
			user.Email = info.Email
			if err := db.Model(&user).Update("email", info.Email).Error; err != nil {
				return nil, pkgerrors.Wrap(err, "update user email")
			}
		}
		return &user, nil
	}

	// 新用户,自动注册
	username := info.GivenName
	if username == "" {
		username = strings.Split(info.Email, "@")[0]
	}
	user = models.User{ExternalID: externalID, Username: username, Email: info.Email, Role: models.RoleUser}
	if err := db.Create(&user).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "create user")
	}
	return &user, nil
}

// Logout 退出登录
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		RenderError(c, pkgerrors.Wrap(err, "clear session"))
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the logged-in user.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}
