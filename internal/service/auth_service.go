package service

import (
	"github.com/onursal82-hash/Vortexbot/internal/ledger"
	"github.com/onursal82-hash/Vortexbot/internal/model"
	"github.com/onursal82-hash/Vortexbot/internal/util"
	"github.com/onursal82-hash/Vortexbot/pkg/crypto"
	"github.com/onursal82-hash/Vortexbot/pkg/jwt"
	"github.com/onursal82-hash/Vortexbot/pkg/logger"
)

// AuthService handles workspace registration and login
type AuthService struct {
	ledger     *ledger.Ledger
	jwtManager *jwt.Manager
	bypass     bool
	log        *logger.Logger
}

func NewAuthService(led *ledger.Ledger, jwtManager *jwt.Manager, bypass bool) *AuthService {
	return &AuthService{
		ledger:     led,
		jwtManager: jwtManager,
		bypass:     bypass,
		log:        logger.GetLogger(),
	}
}

// Register creates a new workspace account and issues a token
func (s *AuthService) Register(req *model.RegisterRequest) (*model.AuthResponse, error) {
	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return nil, util.ErrInternalServer("Failed to hash password")
	}

	if err := s.ledger.Register(req.Username, hash); err != nil {
		return nil, err
	}

	token, err := s.jwtManager.GenerateAccessToken(req.Username)
	if err != nil {
		return nil, util.ErrInternalServer("Failed to generate token")
	}

	s.log.Infof("Workspace registered: %s", req.Username)
	return &model.AuthResponse{Token: token, Username: req.Username}, nil
}

// Login verifies credentials and issues a token. In bypass mode any
// credentials succeed and the workspace is created on first login.
func (s *AuthService) Login(req *model.LoginRequest) (*model.AuthResponse, error) {
	if s.bypass {
		s.ledger.EnsureWorkspace(req.Username)
		token, err := s.jwtManager.GenerateAccessToken(req.Username)
		if err != nil {
			return nil, util.ErrInternalServer("Failed to generate token")
		}
		return &model.AuthResponse{Token: token, Username: req.Username}, nil
	}

	hash, ok := s.ledger.Credentials(req.Username)
	if !ok || !crypto.CheckPassword(req.Password, hash) {
		return nil, util.NewAppError(401, util.ErrCodeInvalidCredentials, "Invalid username or password")
	}

	token, err := s.jwtManager.GenerateAccessToken(req.Username)
	if err != nil {
		return nil, util.ErrInternalServer("Failed to generate token")
	}

	return &model.AuthResponse{Token: token, Username: req.Username}, nil
}
