package services

import (
	"errors"
	"strings"
	"time"

	"colorrush/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken     = errors.New("username already taken")
	ErrAddressRegistered = errors.New("address already registered")
	ErrUserNotFound      = errors.New("user not found")
)

type AuthService struct {
	db        *gorm.DB
	jwtSecret string
}

func NewAuthService(db *gorm.DB, jwtSecret string) *AuthService {
	return &AuthService{db: db, jwtSecret: jwtSecret}
}

type RegisterRequest struct {
	Address  string `json:"address" binding:"required"`
	Username string `json:"username" binding:"required,min=1,max=20"`
}

type ConnectRequest struct {
	Address string `json:"address" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a wallet-keyed account and returns a session token.
// There is no password: the wallet signature happens client-side, the
// username is just a display handle (stored alongside a bcrypt hash of
// itself, matching the registration records of earlier deployments).
func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if !ValidAddress(req.Address) {
		return nil, ErrInvalidAddress
	}
	address := strings.ToLower(req.Address)

	var existing models.User
	if err := s.db.Where("username = ?", req.Username).First(&existing).Error; err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr("find user by username", err)
	}

	if err := s.db.Where("address = ?", address).First(&existing).Error; err == nil {
		return nil, ErrAddressRegistered
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeErr("find user by address", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Username), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Address:        address,
		Username:       req.Username,
		HashedUsername: string(hashed),
	}

	if err := s.db.Create(&user).Error; err != nil {
		return nil, storeErr("create user", err)
	}

	token, err := s.generateToken(address)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

// Connect re-issues a session token for a registered wallet.
func (s *AuthService) Connect(req *ConnectRequest) (*AuthResponse, error) {
	if !ValidAddress(req.Address) {
		return nil, ErrInvalidAddress
	}
	address := strings.ToLower(req.Address)

	var user models.User
	if err := s.db.Where("address = ?", address).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeErr("find user", err)
	}

	token, err := s.generateToken(address)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user}, nil
}

// GetProfile returns the account for a wallet address.
func (s *AuthService) GetProfile(address string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("address = ?", strings.ToLower(address)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storeErr("find user", err)
	}
	return &user, nil
}

func (s *AuthService) generateToken(address string) (string, error) {
	claims := jwt.MapClaims{
		"address": address,
		"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
