package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/agape-academy/academy-api/internal/models"
	"github.com/agape-academy/academy-api/internal/repository"
	appErrors "github.com/agape-academy/academy-api/pkg/errors"
)

// SeedService creates sample data upstream so the frontend can run without
// real accounts. Registered only outside production.
type SeedService struct {
	users   userRepository
	courses courseRepository
	blogs   blogRepository
	auth    *AuthService
	logger  *zap.Logger
}

// NewSeedService constructs the service.
func NewSeedService(users userRepository, courses courseRepository, blogs blogRepository, auth *AuthService, logger *zap.Logger) *SeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SeedService{users: users, courses: courses, blogs: blogs, auth: auth, logger: logger}
}

// SeedResult reports what the seed run created.
type SeedResult struct {
	Users   []models.User `json:"users"`
	Courses int           `json:"courses"`
	Posts   int           `json:"posts"`
	// Password is shared by every seeded account.
	Password string `json:"password"`
}

type seedUser struct {
	uid         string
	email       string
	displayName string
	role        models.UserRole
}

var seedUsers = []seedUser{
	{uid: "dev_admin", email: "admin@agape.dev", displayName: "Dev Admin", role: models.RoleAdmin},
	{uid: "dev_teacher", email: "teacher@agape.dev", displayName: "Dev Teacher", role: models.RoleTeacher},
	{uid: "dev_student", email: "student@agape.dev", displayName: "Dev Student", role: models.RoleStudent},
}

const seedPassword = "agape-dev"

// Run creates the sample users, one course and one blog post. Existing
// seeded users are reused, so the endpoint is idempotent.
func (s *SeedService) Run(ctx context.Context) (*SeedResult, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash seed password")
	}

	result := &SeedResult{Password: seedPassword}
	var teacher *models.User
	for _, spec := range seedUsers {
		user, err := s.ensureUser(ctx, spec)
		if err != nil {
			return nil, err
		}
		if s.auth != nil {
			s.auth.RegisterDevCredential(user.Email, user.UID, string(hash))
		}
		if spec.role == models.RoleTeacher {
			teacher = user
		}
		result.Users = append(result.Users, *user)
	}

	if teacher != nil {
		created, err := s.courses.Create(ctx, &models.Course{
			Title:       "Foundations of Faith",
			Description: "An introductory walk through core doctrine and practice.",
			Syllabus:    "Week by week study of foundational texts and traditions.",
			Category:    "theology",
			Duration:    12,
			MaxStudents: 30,
			IsActive:    true,
			Instructor:  models.UserRef{ID: teacher.ID},
		})
		if err != nil {
			s.logger.Warn("seed course", zap.Error(err))
		} else if created != nil {
			result.Courses++
		}

		post, err := s.blogs.Create(ctx, &models.BlogPost{
			Title:         "Welcome to the Academy",
			Content:       "This space carries announcements, reflections and community news.",
			Slug:          "welcome-to-the-academy",
			Status:        models.BlogStatusPublished,
			Category:      "announcements",
			AllowComments: true,
			Author:        models.UserRef{ID: teacher.ID},
		})
		if err != nil {
			s.logger.Warn("seed blog post", zap.Error(err))
		} else if post != nil {
			result.Posts++
		}
	}

	return result, nil
}

func (s *SeedService) ensureUser(ctx context.Context, spec seedUser) (*models.User, error) {
	existing, err := s.users.FindByUID(ctx, spec.uid)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to look up seed user")
	}
	created, err := s.users.Create(ctx, &models.User{
		UID:         spec.uid,
		Email:       spec.email,
		DisplayName: spec.displayName,
		Role:        spec.role,
		IsActive:    true,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, fmt.Sprintf("failed to seed user %s", spec.email))
	}
	return created, nil
}
