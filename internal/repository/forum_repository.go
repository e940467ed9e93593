package repository

import (
	"context"
	"fmt"

	"github.com/agape-academy/academy-api/internal/hygraph"
	"github.com/agape-academy/academy-api/internal/models"
)

const forumThreadFields = `
    id
    title
    body
    category
    isPinned
    isLocked
    isActive
    likes
    views
    author { id uid displayName }
    dateCreated: createdAt
    dateUpdated: updatedAt`

const forumPostFields = `
    id
    body
    author { id uid displayName }
    thread { id }
    parentPost { id }
    dateCreated: createdAt
    dateUpdated: updatedAt`

const getThreadsQuery = `query GetForumThreads($where: ForumThreadWhereInput, $first: Int, $skip: Int) {
  forumThreads(where: $where, first: $first, skip: $skip, orderBy: createdAt_DESC) {` + forumThreadFields + `
  }
  forumThreadsConnection(where: $where) { aggregate { count } }
}`

const getThreadQuery = `query GetForumThread($where: ForumThreadWhereUniqueInput!) {
  forumThread(where: $where) {` + forumThreadFields + `
  }
}`

const createThreadMutation = `mutation CreateForumThread($data: ForumThreadCreateInput!) {
  createForumThread(data: $data) {` + forumThreadFields + `
  }
}`

const updateThreadMutation = `mutation UpdateForumThread($where: ForumThreadWhereUniqueInput!, $data: ForumThreadUpdateInput!) {
  updateForumThread(where: $where, data: $data) {` + forumThreadFields + `
  }
}`

const deleteThreadMutation = `mutation DeleteForumThread($where: ForumThreadWhereUniqueInput!) {
  deleteForumThread(where: $where) { id }
}`

const getPostsQuery = `query GetForumPosts($where: ForumPostWhereInput, $first: Int, $skip: Int) {
  forumPosts(where: $where, first: $first, skip: $skip, orderBy: createdAt_ASC) {` + forumPostFields + `
  }
  forumPostsConnection(where: $where) { aggregate { count } }
}`

const getPostQuery = `query GetForumPost($where: ForumPostWhereUniqueInput!) {
  forumPost(where: $where) {` + forumPostFields + `
  }
}`

const createPostMutation = `mutation CreateForumPost($data: ForumPostCreateInput!) {
  createForumPost(data: $data) {` + forumPostFields + `
  }
}`

const updatePostMutation = `mutation UpdateForumPost($where: ForumPostWhereUniqueInput!, $data: ForumPostUpdateInput!) {
  updateForumPost(where: $where, data: $data) {` + forumPostFields + `
  }
}`

const deletePostMutation = `mutation DeleteForumPost($where: ForumPostWhereUniqueInput!) {
  deleteForumPost(where: $where) { id }
}`

// ForumRepository proxies thread and post persistence to Hygraph.
type ForumRepository struct {
	client *hygraph.Client
}

// NewForumRepository constructs the repository.
func NewForumRepository(client *hygraph.Client) *ForumRepository {
	return &ForumRepository{client: client}
}

// ListThreads returns threads narrowed by the filter plus the aggregate count.
func (r *ForumRepository) ListThreads(ctx context.Context, filter models.ThreadFilter) ([]models.ForumThread, int, error) {
	where := map[string]interface{}{}
	if filter.Category != "" {
		where["category"] = filter.Category
	}
	if filter.AuthorID != "" {
		where["author"] = whereID(filter.AuthorID)
	}
	if filter.IsPinned != nil {
		where["isPinned"] = *filter.IsPinned
	}
	if filter.IsActive != nil {
		where["isActive"] = *filter.IsActive
	}
	if filter.Search != "" {
		where["title_contains"] = filter.Search
	}

	var out struct {
		Threads    []models.ForumThread `json:"forumThreads"`
		Connection aggregateCount       `json:"forumThreadsConnection"`
	}
	vars := map[string]interface{}{"where": where, "first": filter.Limit, "skip": filter.Offset()}
	if err := r.client.Do(ctx, getThreadsQuery, vars, &out); err != nil {
		return nil, 0, fmt.Errorf("list threads: %w", err)
	}
	return out.Threads, out.Connection.Aggregate.Count, nil
}

// FindThread returns a thread by upstream id.
func (r *ForumRepository) FindThread(ctx context.Context, id string) (*models.ForumThread, error) {
	var out struct {
		Thread *models.ForumThread `json:"forumThread"`
	}
	if err := r.client.Do(ctx, getThreadQuery, map[string]interface{}{"where": whereID(id)}, &out); err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}
	if out.Thread == nil {
		return nil, ErrNotFound
	}
	return out.Thread, nil
}

// CreateThread persists a new thread upstream.
func (r *ForumRepository) CreateThread(ctx context.Context, thread *models.ForumThread) (*models.ForumThread, error) {
	data := map[string]interface{}{
		"title":    thread.Title,
		"body":     thread.Body,
		"category": thread.Category,
		"isPinned": false,
		"isLocked": false,
		"isActive": true,
		"likes":    0,
		"views":    0,
		"author":   connectID(thread.Author.ID),
	}
	var out struct {
		CreateThread *models.ForumThread `json:"createForumThread"`
	}
	if err := r.client.Do(ctx, createThreadMutation, map[string]interface{}{"data": data}, &out); err != nil {
		return nil, fmt.Errorf("create thread: %w", err)
	}
	return out.CreateThread, nil
}

// UpdateThread applies a sparse change set to the thread.
func (r *ForumRepository) UpdateThread(ctx context.Context, id string, changes map[string]interface{}) (*models.ForumThread, error) {
	var out struct {
		UpdateThread *models.ForumThread `json:"updateForumThread"`
	}
	vars := map[string]interface{}{"where": whereID(id), "data": changes}
	if err := r.client.Do(ctx, updateThreadMutation, vars, &out); err != nil {
		return nil, fmt.Errorf("update thread: %w", err)
	}
	if out.UpdateThread == nil {
		return nil, ErrNotFound
	}
	return out.UpdateThread, nil
}

// DeleteThread removes the thread upstream.
func (r *ForumRepository) DeleteThread(ctx context.Context, id string) error {
	var out struct {
		DeleteThread *struct {
			ID string `json:"id"`
		} `json:"deleteForumThread"`
	}
	if err := r.client.Do(ctx, deleteThreadMutation, map[string]interface{}{"where": whereID(id)}, &out); err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}
	if out.DeleteThread == nil {
		return ErrNotFound
	}
	return nil
}

// SetThreadCounters overwrites the thread like and view counters upstream.
// Used by the counter flush job.
func (r *ForumRepository) SetThreadCounters(ctx context.Context, id string, likes, views int) error {
	_, err := r.UpdateThread(ctx, id, map[string]interface{}{"likes": likes, "views": views})
	return err
}

// ListPosts returns posts narrowed by the filter plus the aggregate count.
func (r *ForumRepository) ListPosts(ctx context.Context, filter models.PostFilter) ([]models.ForumPost, int, error) {
	where := map[string]interface{}{}
	if filter.ThreadID != "" {
		where["thread"] = whereID(filter.ThreadID)
	}
	if filter.AuthorID != "" {
		where["author"] = whereID(filter.AuthorID)
	}

	var out struct {
		Posts      []models.ForumPost `json:"forumPosts"`
		Connection aggregateCount     `json:"forumPostsConnection"`
	}
	vars := map[string]interface{}{"where": where, "first": filter.Limit, "skip": filter.Offset()}
	if err := r.client.Do(ctx, getPostsQuery, vars, &out); err != nil {
		return nil, 0, fmt.Errorf("list posts: %w", err)
	}
	return out.Posts, out.Connection.Aggregate.Count, nil
}

// FindPost returns a post by upstream id.
func (r *ForumRepository) FindPost(ctx context.Context, id string) (*models.ForumPost, error) {
	var out struct {
		Post *models.ForumPost `json:"forumPost"`
	}
	if err := r.client.Do(ctx, getPostQuery, map[string]interface{}{"where": whereID(id)}, &out); err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	if out.Post == nil {
		return nil, ErrNotFound
	}
	return out.Post, nil
}

// CreatePost persists a new post upstream.
func (r *ForumRepository) CreatePost(ctx context.Context, post *models.ForumPost) (*models.ForumPost, error) {
	data := map[string]interface{}{
		"body":   post.Body,
		"author": connectID(post.Author.ID),
		"thread": connectID(post.Thread.ID),
	}
	if post.ParentPost != nil {
		data["parentPost"] = connectID(post.ParentPost.ID)
	}
	var out struct {
		CreatePost *models.ForumPost `json:"createForumPost"`
	}
	if err := r.client.Do(ctx, createPostMutation, map[string]interface{}{"data": data}, &out); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return out.CreatePost, nil
}

// UpdatePost applies a sparse change set to the post.
func (r *ForumRepository) UpdatePost(ctx context.Context, id string, changes map[string]interface{}) (*models.ForumPost, error) {
	var out struct {
		UpdatePost *models.ForumPost `json:"updateForumPost"`
	}
	vars := map[string]interface{}{"where": whereID(id), "data": changes}
	if err := r.client.Do(ctx, updatePostMutation, vars, &out); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	if out.UpdatePost == nil {
		return nil, ErrNotFound
	}
	return out.UpdatePost, nil
}

// DeletePost removes the post upstream.
func (r *ForumRepository) DeletePost(ctx context.Context, id string) error {
	var out struct {
		DeletePost *struct {
			ID string `json:"id"`
		} `json:"deleteForumPost"`
	}
	if err := r.client.Do(ctx, deletePostMutation, map[string]interface{}{"where": whereID(id)}, &out); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if out.DeletePost == nil {
		return ErrNotFound
	}
	return nil
}
