package repository

import (
	"context"
	"fmt"

	"github.com/agape-academy/academy-api/internal/hygraph"
	"github.com/agape-academy/academy-api/internal/models"
)

const userFields = `
    id
    uid
    email
    displayName
    role
    isActive
    passwordChanged
    dateCreated: createdAt
    dateUpdated: updatedAt`

const getUsersQuery = `query GetUsers($where: AppUserWhereInput, $first: Int, $skip: Int) {
  appUsers(where: $where, first: $first, skip: $skip, orderBy: createdAt_DESC) {` + userFields + `
  }
  appUsersConnection(where: $where) { aggregate { count } }
}`

const getUserQuery = `query GetUser($where: AppUserWhereUniqueInput!) {
  appUser(where: $where) {` + userFields + `
  }
}`

const getUserByUIDQuery = `query GetUserByUID($uid: String!) {
  appUsers(where: {uid: $uid}, first: 1) {` + userFields + `
  }
}`

const createUserMutation = `mutation CreateUser($data: AppUserCreateInput!) {
  createAppUser(data: $data) {` + userFields + `
  }
}`

const updateUserMutation = `mutation UpdateUser($where: AppUserWhereUniqueInput!, $data: AppUserUpdateInput!) {
  updateAppUser(where: $where, data: $data) {` + userFields + `
  }
}`

// UserRepository proxies user persistence to Hygraph.
type UserRepository struct {
	client *hygraph.Client
}

// NewUserRepository constructs the repository.
func NewUserRepository(client *hygraph.Client) *UserRepository {
	return &UserRepository{client: client}
}

// List returns users narrowed by the filter plus the aggregate count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	where := map[string]interface{}{}
	if filter.Role != nil {
		where["role"] = *filter.Role
	}
	if filter.IsActive != nil {
		where["isActive"] = *filter.IsActive
	}
	if filter.Search != "" {
		where["_search"] = filter.Search
	}

	var out struct {
		AppUsers   []models.User  `json:"appUsers"`
		Connection aggregateCount `json:"appUsersConnection"`
	}
	vars := map[string]interface{}{"where": where, "first": filter.Limit, "skip": filter.Offset()}
	if err := r.client.Do(ctx, getUsersQuery, vars, &out); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	return out.AppUsers, out.Connection.Aggregate.Count, nil
}

// FindByID returns a user by the backend id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, map[string]interface{}{"id": id})
}

// FindByEmail returns a user by email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, map[string]interface{}{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, where map[string]interface{}) (*models.User, error) {
	var out struct {
		AppUser *models.User `json:"appUser"`
	}
	if err := r.client.Do(ctx, getUserQuery, map[string]interface{}{"where": where}, &out); err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if out.AppUser == nil {
		return nil, ErrNotFound
	}
	return out.AppUser, nil
}

// FindByUID resolves the identity provider subject id to the backend user.
func (r *UserRepository) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	var out struct {
		AppUsers []models.User `json:"appUsers"`
	}
	if err := r.client.Do(ctx, getUserByUIDQuery, map[string]interface{}{"uid": uid}, &out); err != nil {
		return nil, fmt.Errorf("get user by uid: %w", err)
	}
	if len(out.AppUsers) == 0 {
		return nil, ErrNotFound
	}
	return &out.AppUsers[0], nil
}

// Create persists a new user upstream.
func (r *UserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	data := map[string]interface{}{
		"uid":             user.UID,
		"email":           user.Email,
		"displayName":     user.DisplayName,
		"role":            user.Role,
		"isActive":        user.IsActive,
		"passwordChanged": user.PasswordChanged,
	}
	var out struct {
		CreateAppUser *models.User `json:"createAppUser"`
	}
	if err := r.client.Do(ctx, createUserMutation, map[string]interface{}{"data": data}, &out); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return out.CreateAppUser, nil
}

// Update applies a sparse change set to the user.
func (r *UserRepository) Update(ctx context.Context, id string, changes map[string]interface{}) (*models.User, error) {
	var out struct {
		UpdateAppUser *models.User `json:"updateAppUser"`
	}
	vars := map[string]interface{}{"where": whereID(id), "data": changes}
	if err := r.client.Do(ctx, updateUserMutation, vars, &out); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if out.UpdateAppUser == nil {
		return nil, ErrNotFound
	}
	return out.UpdateAppUser, nil
}
