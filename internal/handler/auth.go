package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/erd-lab/procatalog/dao/model"
	"github.com/erd-lab/procatalog/internal/resputil"
	"github.com/erd-lab/procatalog/internal/util"
	"github.com/erd-lab/procatalog/pkg/config"
	"github.com/erd-lab/procatalog/pkg/logutils"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewAuthMgr)
}

type AuthMgr struct {
	name     string
	db       *gorm.DB
	tokenMgr *util.TokenManager
	twoFA    config.TwoFAConf
}

func NewAuthMgr(conf *RegisterConfig) Manager {
	return &AuthMgr{
		name:     "auth",
		db:       conf.DB,
		tokenMgr: conf.TokenMgr,
		twoFA:    conf.TwoFA,
	}
}

func (mgr *AuthMgr) GetName() string { return mgr.name }

func (mgr *AuthMgr) RegisterPublic(g *gin.RouterGroup) {
	g.POST("token", mgr.Login)
	g.POST("token/refresh", mgr.RefreshToken)
	g.POST("register", mgr.Register)
	g.POST("two-fa/setup-verify", mgr.TwoFASetupVerify)
}

func (mgr *AuthMgr) RegisterProtected(g *gin.RouterGroup) {
	g.POST("two-fa/verify", mgr.TwoFALoginVerify)
}

func (mgr *AuthMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	LoginReq struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	LoginResp struct {
		AccessToken  string `json:"access"`
		RefreshToken string `json:"refresh"`
		TwoFAEnabled bool   `json:"two_fa_enabled"`
	}

	RefreshReq struct {
		RefreshToken string `json:"refresh" binding:"required"`
	}

	RefreshResp struct {
		AccessToken string `json:"access"`
	}

	RegisterReq struct {
		Email     string `json:"email" binding:"required,email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Password  string `json:"password" binding:"required,min=8"`
		Password2 string `json:"password2" binding:"required"`
	}

	RegisterResp struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
	}

	TwoFASetupReq struct {
		Email string `json:"email" binding:"required,email"`
		Code1 string `json:"code1" binding:"required"`
		Code2 string `json:"code2" binding:"required"`
	}

	TwoFAVerifyReq struct {
		Code string `json:"code" binding:"required"`
	}
)

// Login godoc
// @Summary exchange credentials for tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param data body LoginReq true "credentials"
// @Success 200 {object} resputil.Response[LoginResp]
// @Failure 401 {object} resputil.Response[any] "wrong email or password"
// @Router /v1/token [post]
func (mgr *AuthMgr) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	l := logutils.Log.WithFields(logutils.Fields{"email": req.Email})

	var account model.Account
	err := mgr.db.WithContext(c).Where("email = ?", strings.ToLower(req.Email)).First(&account).Error
	if err != nil {
		l.Error("invalid credentials: ", err)
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
		return
	}
	if account.Password == nil ||
		bcrypt.CompareHashAndPassword([]byte(*account.Password), []byte(req.Password)) != nil {
		l.Error("invalid credentials: password mismatch")
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid credentials", resputil.InvalidCredentials)
		return
	}
	if !account.IsActive {
		l.Error("account is not active")
		resputil.HTTPError(c, http.StatusUnauthorized, "Account is not active", resputil.InvalidCredentials)
		return
	}

	msg := util.JWTMessage{
		AccountID:   account.ID,
		Email:       account.Email,
		IsStaff:     account.IsStaff,
		IsSuperuser: account.IsSuperuser,
	}
	accessToken, refreshToken, err := mgr.tokenMgr.CreateTokens(&msg)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, LoginResp{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TwoFAEnabled: account.TwoFAEnabled,
	})
}

// RefreshToken godoc
// @Summary exchange a refresh token for a new access token
// @Tags auth
// @Accept json
// @Produce json
// @Param data body RefreshReq true "refresh token"
// @Success 200 {object} resputil.Response[RefreshResp]
// @Failure 401 {object} resputil.Response[any] "invalid refresh token"
// @Router /v1/token/refresh [post]
func (mgr *AuthMgr) RefreshToken(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	msg, err := mgr.tokenMgr.CheckRefreshToken(req.RefreshToken)
	if err != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid refresh token", resputil.TokenInvalid)
		return
	}

	// The account may have been deactivated since the token was issued.
	var account model.Account
	if err = mgr.db.WithContext(c).First(&account, msg.AccountID).Error; err != nil || !account.IsActive {
		resputil.HTTPError(c, http.StatusUnauthorized, "Account not available", resputil.TokenInvalid)
		return
	}

	accessToken, _, err := mgr.tokenMgr.CreateTokens(&msg)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, RefreshResp{AccessToken: accessToken})
}

// Register godoc
// @Summary create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param data body RegisterReq true "account fields"
// @Success 200 {object} resputil.Response[RegisterResp]
// @Failure 400 {object} resputil.Response[any] "passwords do not match or email taken"
// @Router /v1/register [post]
func (mgr *AuthMgr) Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if req.Password != req.Password2 {
		resputil.BadRequestError(c, "passwords do not match")
		return
	}
	email := strings.ToLower(req.Email)

	var count int64
	if err := mgr.db.WithContext(c).Model(&model.Account{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to check email: %v", err), resputil.NotSpecified)
		return
	}
	if count > 0 {
		resputil.BadRequestError(c, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	hashed := string(hash)

	account := model.Account{
		Email:     email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  &hashed,
		IsActive:  true,
	}
	if err := mgr.db.WithContext(c).Create(&account).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to create account: %v", err), resputil.NotSpecified)
		return
	}
	logutils.Log.WithFields(logutils.Fields{"email": email}).Info("account registered")
	resputil.Success(c, RegisterResp{ID: account.ID, Email: account.Email})
}

// TwoFASetupVerify godoc
// @Summary enable 2FA for an account
// @Description Stub flow: both static registration codes must match the
// @Description configured values, then the account flag is flipped.
// @Tags auth
// @Accept json
// @Produce json
// @Param data body TwoFASetupReq true "email and codes"
// @Success 200 {object} resputil.Response[string]
// @Failure 400 {object} resputil.Response[any] "wrong codes"
// @Failure 404 {object} resputil.Response[any] "account not found"
// @Router /v1/two-fa/setup-verify [post]
func (mgr *AuthMgr) TwoFASetupVerify(c *gin.Context) {
	var req TwoFASetupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	if req.Code1 != mgr.twoFA.RegistrationCode1 || req.Code2 != mgr.twoFA.RegistrationCode2 {
		resputil.HTTPError(c, http.StatusBadRequest, "Wrong codes", resputil.TwoFACodeInvalid)
		return
	}

	var account model.Account
	err := mgr.db.WithContext(c).Where("email = ?", strings.ToLower(req.Email)).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.NotFoundError(c, "account not found")
			return
		}
		resputil.Error(c, fmt.Sprintf("failed to get account: %v", err), resputil.NotSpecified)
		return
	}

	if err := mgr.db.WithContext(c).Model(&account).Update("two_fa_enabled", true).Error; err != nil {
		resputil.Error(c, fmt.Sprintf("failed to enable 2FA: %v", err), resputil.NotSpecified)
		return
	}
	resputil.Success(c, "2FA enabled")
}

// TwoFALoginVerify godoc
// @Summary verify the 2FA login code
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Param data body TwoFAVerifyReq true "login code"
// @Success 200 {object} resputil.Response[string]
// @Failure 400 {object} resputil.Response[any] "wrong code"
// @Router /v1/two-fa/verify [post]
func (mgr *AuthMgr) TwoFALoginVerify(c *gin.Context) {
	var req TwoFAVerifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if req.Code != mgr.twoFA.LoginCode {
		resputil.HTTPError(c, http.StatusBadRequest, "Wrong code", resputil.TwoFACodeInvalid)
		return
	}
	resputil.Success(c, "verified")
}
