package repository

import (
	"context"
	"fmt"

	"github.com/agape-academy/academy-api/internal/hygraph"
	"github.com/agape-academy/academy-api/internal/models"
)

const blogPostFields = `
    id
    title
    content
    excerpt
    slug
    status
    tags
    category
    likes
    views
    isFeatured
    allowComments
    author { id uid displayName }
    publishedAt
    dateCreated: createdAt
    dateUpdated: updatedAt`

const getBlogPostsQuery = `query GetBlogPosts($where: BlogPostWhereInput, $first: Int, $skip: Int) {
  blogPosts(where: $where, first: $first, skip: $skip, orderBy: createdAt_DESC) {` + blogPostFields + `
  }
  blogPostsConnection(where: $where) { aggregate { count } }
}`

const getBlogPostQuery = `query GetBlogPost($where: BlogPostWhereUniqueInput!) {
  blogPost(where: $where) {` + blogPostFields + `
  }
}`

const createBlogPostMutation = `mutation CreateBlogPost($data: BlogPostCreateInput!) {
  createBlogPost(data: $data) {` + blogPostFields + `
  }
}`

const updateBlogPostMutation = `mutation UpdateBlogPost($where: BlogPostWhereUniqueInput!, $data: BlogPostUpdateInput!) {
  updateBlogPost(where: $where, data: $data) {` + blogPostFields + `
  }
}`

const deleteBlogPostMutation = `mutation DeleteBlogPost($where: BlogPostWhereUniqueInput!) {
  deleteBlogPost(where: $where) { id }
}`

// BlogRepository proxies blog post persistence to Hygraph.
type BlogRepository struct {
	client *hygraph.Client
}

// NewBlogRepository constructs the repository.
func NewBlogRepository(client *hygraph.Client) *BlogRepository {
	return &BlogRepository{client: client}
}

// List returns posts narrowed by the filter plus the aggregate count for the
// same where clause.
func (r *BlogRepository) List(ctx context.Context, filter models.BlogFilter) ([]models.BlogPost, int, error) {
	where := map[string]interface{}{}
	if filter.Status != nil {
		where["status"] = *filter.Status
	}
	if filter.Category != "" {
		where["category"] = filter.Category
	}
	if filter.Tag != "" {
		where["tags_contains_some"] = []string{filter.Tag}
	}
	if filter.AuthorID != "" {
		where["author"] = whereID(filter.AuthorID)
	}
	if filter.IsFeatured != nil {
		where["isFeatured"] = *filter.IsFeatured
	}
	if filter.Search != "" {
		where["title_contains"] = filter.Search
	}

	var out struct {
		BlogPosts  []models.BlogPost `json:"blogPosts"`
		Connection aggregateCount    `json:"blogPostsConnection"`
	}
	vars := map[string]interface{}{"where": where, "first": filter.Limit, "skip": filter.Offset()}
	if err := r.client.Do(ctx, getBlogPostsQuery, vars, &out); err != nil {
		return nil, 0, fmt.Errorf("list blog posts: %w", err)
	}
	return out.BlogPosts, out.Connection.Aggregate.Count, nil
}

// FindByID returns a post by upstream id.
func (r *BlogRepository) FindByID(ctx context.Context, id string) (*models.BlogPost, error) {
	return r.findOne(ctx, map[string]interface{}{"id": id})
}

// FindBySlug returns a post by slug.
func (r *BlogRepository) FindBySlug(ctx context.Context, slug string) (*models.BlogPost, error) {
	return r.findOne(ctx, map[string]interface{}{"slug": slug})
}

func (r *BlogRepository) findOne(ctx context.Context, where map[string]interface{}) (*models.BlogPost, error) {
	var out struct {
		BlogPost *models.BlogPost `json:"blogPost"`
	}
	if err := r.client.Do(ctx, getBlogPostQuery, map[string]interface{}{"where": where}, &out); err != nil {
		return nil, fmt.Errorf("get blog post: %w", err)
	}
	if out.BlogPost == nil {
		return nil, ErrNotFound
	}
	return out.BlogPost, nil
}

// Create persists a new post upstream.
func (r *BlogRepository) Create(ctx context.Context, post *models.BlogPost) (*models.BlogPost, error) {
	data := map[string]interface{}{
		"title":         post.Title,
		"content":       post.Content,
		"excerpt":       post.Excerpt,
		"slug":          post.Slug,
		"status":        post.Status,
		"tags":          post.Tags,
		"category":      post.Category,
		"likes":         0,
		"views":         0,
		"isFeatured":    post.IsFeatured,
		"allowComments": post.AllowComments,
		"author":        connectID(post.Author.ID),
	}
	var out struct {
		CreateBlogPost *models.BlogPost `json:"createBlogPost"`
	}
	if err := r.client.Do(ctx, createBlogPostMutation, map[string]interface{}{"data": data}, &out); err != nil {
		return nil, fmt.Errorf("create blog post: %w", err)
	}
	return out.CreateBlogPost, nil
}

// Update applies a sparse change set to the post.
func (r *BlogRepository) Update(ctx context.Context, id string, changes map[string]interface{}) (*models.BlogPost, error) {
	var out struct {
		UpdateBlogPost *models.BlogPost `json:"updateBlogPost"`
	}
	vars := map[string]interface{}{"where": whereID(id), "data": changes}
	if err := r.client.Do(ctx, updateBlogPostMutation, vars, &out); err != nil {
		return nil, fmt.Errorf("update blog post: %w", err)
	}
	if out.UpdateBlogPost == nil {
		return nil, ErrNotFound
	}
	return out.UpdateBlogPost, nil
}

// Delete removes the post upstream.
func (r *BlogRepository) Delete(ctx context.Context, id string) error {
	var out struct {
		DeleteBlogPost *struct {
			ID string `json:"id"`
		} `json:"deleteBlogPost"`
	}
	if err := r.client.Do(ctx, deleteBlogPostMutation, map[string]interface{}{"where": whereID(id)}, &out); err != nil {
		return fmt.Errorf("delete blog post: %w", err)
	}
	if out.DeleteBlogPost == nil {
		return ErrNotFound
	}
	return nil
}

// SetCounters writes the authoritative like/view totals upstream. Called by
// the counter flush worker, never from request handling.
func (r *BlogRepository) SetCounters(ctx context.Context, id string, likes, views int) error {
	_, err := r.Update(ctx, id, map[string]interface{}{"likes": likes, "views": views})
	return err
}
