package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/qs3c/workshop_server/config"
	"github.com/qs3c/workshop_server/internal/model"
	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/pkg/jwt"
	"github.com/qs3c/workshop_server/internal/repository"
)

type AuthService struct {
	store *repository.Store
	gifts *GiftService
	cfg   *config.Config
}

func NewAuthService(store *repository.Store, gifts *GiftService, cfg *config.Config) *AuthService {
	return &AuthService{
		store: store,
		gifts: gifts,
		cfg:   cfg,
	}
}

// Register 用户注册，注册成功后自动领取发给该手机号或邮箱的礼物。
// 管理员代领礼物时创建的无密码账号在此设置密码后启用
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	if req.Email == "" && req.Phone == "" {
		return nil, ErrContactRequired
	}

	// 加密密码
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	passwordStr := string(hashedPassword)

	resp := &dto.RegisterResponse{}
	var user *model.User
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		existing, err := findUnclaimedAccount(tx.Users, req.Email, req.Phone)
		if err != nil {
			return err
		}

		if existing != nil {
			fields := map[string]interface{}{"password_hash": passwordStr, "name": req.Name}
			if existing.Email == nil && req.Email != "" {
				fields["email"] = req.Email
			}
			if existing.Phone == nil && req.Phone != "" {
				fields["phone"] = req.Phone
			}
			if err := tx.Users.UpdateFields(existing.ID, fields); err != nil {
				return err
			}
			user, err = tx.Users.GetByID(existing.ID)
			resp.Activated = true
			return err
		}

		user = &model.User{
			Name:         req.Name,
			Email:        optional(req.Email),
			Phone:        optional(req.Phone),
			PasswordHash: &passwordStr,
			Role:         model.RoleUser,
		}
		return tx.Users.Create(user)
	})
	if err != nil {
		return nil, err
	}

	resp.UserID = user.ID
	if s.gifts != nil {
		claimed, err := s.gifts.ClaimGiftsForUser(ctx, user)
		if err != nil {
			// 领取失败不影响注册结果
			log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to claim gifts on signup")
		}
		resp.ClaimedGifts = claimed
	}

	return resp, nil
}

// findUnclaimedAccount 按邮箱和手机号查找已有账号。
// 已设置密码的账号视为重复；两个联系方式指向不同账号时同样拒绝
func findUnclaimedAccount(users *repository.UserRepository, email, phone string) (*model.User, error) {
	var byEmail, byPhone *model.User
	if email != "" {
		user, err := users.GetByEmail(email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if user != nil && user.PasswordHash != nil {
			return nil, ErrEmailExists
		}
		byEmail = user
	}
	if phone != "" {
		user, err := users.GetByPhone(phone)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if user != nil && user.PasswordHash != nil {
			return nil, ErrPhoneExists
		}
		byPhone = user
	}

	switch {
	case byEmail != nil && byPhone != nil && byEmail.ID != byPhone.ID:
		return nil, ErrPhoneExists
	case byEmail != nil:
		return byEmail, nil
	default:
		return byPhone, nil
	}
}

// Login 邮箱或手机号登录
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	users := s.store.WithContext(ctx).Users

	var (
		user *model.User
		err  error
	)
	switch {
	case req.Email != "":
		user, err = users.GetByEmail(req.Email)
	case req.Phone != "":
		user, err = users.GetByPhone(req.Phone)
	default:
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 管理员代领礼物创建的账号没有密码
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 生成 Token
	token, err := jwt.GenerateToken(user.ID, user.Role, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  toUserInfo(user),
	}, nil
}

// GetUserByID 根据 ID 获取用户
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.store.WithContext(ctx).Users.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}
