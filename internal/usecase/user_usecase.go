package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"civicsolve/internal/domain/entity"
	"civicsolve/internal/domain/repository"
	"civicsolve/pkg/errors"
	"civicsolve/pkg/logger"
	"civicsolve/pkg/utils"
)

const dashboardRecentComplaints = 5

type UserUseCase struct {
	userRepo   repository.UserRepository
	complaints *ComplaintUseCase
	stats      *StatsUseCase
	identity   IdentityProvider
}

func NewUserUseCase(
	userRepo repository.UserRepository,
	complaints *ComplaintUseCase,
	stats *StatsUseCase,
	identity IdentityProvider,
) *UserUseCase {
	return &UserUseCase{
		userRepo:   userRepo,
		complaints: complaints,
		stats:      stats,
		identity:   identity,
	}
}

type RegisterInput struct {
	Name      string
	Phone     string
	CitizenID string
	DOB       time.Time
	Location  string
	Gender    entity.Gender
	Email     string
	Password  string
}

// Register creates a citizen profile. An authenticated caller keeps its identity id; a
// password provisions a new identity; otherwise the profile gets a fresh id.
func (uc *UserUseCase) Register(ctx context.Context, actorID string, input RegisterInput) (*entity.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.CitizenID = strings.TrimSpace(input.CitizenID)

	existing, err := uc.userRepo.FindConflict(ctx, input.Email, input.Phone, input.CitizenID, "")
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, errors.Conflict("User with this email, phone, or citizen ID already exists")
	}

	id := actorID
	if id == "" && input.Password != "" && uc.identity != nil {
		id, err = uc.identity.CreateUser(ctx, input.Email, input.Password, input.Name)
		if err != nil {
			return nil, errors.Internal("Failed to create user in authentication provider", err)
		}
	}
	if id == "" {
		id = uuid.New().String()
	}

	now := time.Now()
	user := &entity.User{
		ID:        id,
		Name:      input.Name,
		Phone:     input.Phone,
		CitizenID: input.CitizenID,
		DOB:       input.DOB,
		Location:  strings.TrimSpace(input.Location),
		Gender:    input.Gender,
		Email:     input.Email,
		Role:      entity.RoleCitizen,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Info("Registered user %s", user.ID)
	return user, nil
}

// EnsureUser returns the user with profile's email, creating it from profile when absent.
func (uc *UserUseCase) EnsureUser(ctx context.Context, profile *entity.User) (*entity.User, error) {
	profile.Email = strings.ToLower(profile.Email)

	existing, err := uc.userRepo.GetByEmail(ctx, profile.Email)
	if err == nil {
		return existing, nil
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	if profile.Role == "" {
		profile.Role = entity.RoleCitizen
	}
	profile.IsActive = true
	if err := uc.userRepo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (uc *UserUseCase) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	if userID == "" {
		return nil, errors.AuthRequired()
	}
	return uc.userRepo.GetByID(ctx, userID)
}

func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID string, input entity.ProfileUpdate) (*entity.User, error) {
	user, err := uc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	phone := strings.TrimSpace(input.Phone)

	var checkEmail, checkPhone string
	if email != "" && email != user.Email {
		checkEmail = email
	}
	if phone != "" && phone != user.Phone {
		checkPhone = phone
	}
	if checkEmail != "" || checkPhone != "" {
		conflict, err := uc.userRepo.FindConflict(ctx, checkEmail, checkPhone, "", user.ID)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, errors.Conflict("Email or phone number already in use")
		}
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		user.Name = name
	}
	if location := strings.TrimSpace(input.Location); location != "" {
		user.Location = location
	}
	if email != "" {
		user.Email = email
	}
	if phone != "" {
		user.Phone = phone
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

type Dashboard struct {
	User             *entity.User        `json:"user"`
	Stats            entity.StatusCounts `json:"stats"`
	RecentComplaints []*entity.Complaint `json:"recentComplaints"`
}

func (uc *UserUseCase) GetDashboard(ctx context.Context, userID string) (*Dashboard, error) {
	user, err := uc.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := uc.stats.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := uc.complaints.RecentComplaints(ctx, userID, dashboardRecentComplaints)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		User:             user,
		Stats:            stats,
		RecentComplaints: recent,
	}, nil
}

func (uc *UserUseCase) SearchUsers(ctx context.Context, search string, page utils.PaginationParams) ([]*entity.User, int64, error) {
	users, total, err := uc.userRepo.Search(ctx, search, page.PageSize, page.Offset)
	if err != nil {
		return nil, 0, err
	}
	if users == nil {
		users = []*entity.User{}
	}
	return users, total, nil
}
