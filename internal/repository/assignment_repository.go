package repository

import (
	"context"
	"fmt"

	"github.com/agape-academy/academy-api/internal/hygraph"
	"github.com/agape-academy/academy-api/internal/models"
)

const assignmentFields = `
    id
    title
    description
    instructions
    dueDate
    maxPoints
    course { id title }
    teacher { id uid displayName }
    dateCreated: createdAt
    dateUpdated: updatedAt`

const getAssignmentsQuery = `query GetAssignments($where: AssignmentWhereInput, $first: Int, $skip: Int) {
  assignments(where: $where, first: $first, skip: $skip, orderBy: dueDate_ASC) {` + assignmentFields + `
  }
  assignmentsConnection(where: $where) { aggregate { count } }
}`

const getAssignmentQuery = `query GetAssignment($where: AssignmentWhereUniqueInput!) {
  assignment(where: $where) {` + assignmentFields + `
  }
}`

const createAssignmentMutation = `mutation CreateAssignment($data: AssignmentCreateInput!) {
  createAssignment(data: $data) {` + assignmentFields + `
  }
}`

const updateAssignmentMutation = `mutation UpdateAssignment($where: AssignmentWhereUniqueInput!, $data: AssignmentUpdateInput!) {
  updateAssignment(where: $where, data: $data) {` + assignmentFields + `
  }
}`

const deleteAssignmentMutation = `mutation DeleteAssignment($where: AssignmentWhereUniqueInput!) {
  deleteAssignment(where: $where) { id }
}`

// AssignmentRepository proxies assignment persistence to Hygraph.
type AssignmentRepository struct {
	client *hygraph.Client
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(client *hygraph.Client) *AssignmentRepository {
	return &AssignmentRepository{client: client}
}

// List returns assignments narrowed by the filter plus the aggregate count.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	where := map[string]interface{}{}
	if filter.CourseID != "" {
		where["course"] = whereID(filter.CourseID)
	}
	if filter.TeacherID != "" {
		where["teacher"] = whereID(filter.TeacherID)
	}
	if filter.DueBefore != nil {
		where["dueDate_lte"] = filter.DueBefore
	}
	if filter.DueAfter != nil {
		where["dueDate_gte"] = filter.DueAfter
	}

	var out struct {
		Assignments []models.Assignment `json:"assignments"`
		Connection  aggregateCount      `json:"assignmentsConnection"`
	}
	vars := map[string]interface{}{"where": where, "first": filter.Limit, "skip": filter.Offset()}
	if err := r.client.Do(ctx, getAssignmentsQuery, vars, &out); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}
	return out.Assignments, out.Connection.Aggregate.Count, nil
}

// FindByID returns an assignment by upstream id.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	var out struct {
		Assignment *models.Assignment `json:"assignment"`
	}
	if err := r.client.Do(ctx, getAssignmentQuery, map[string]interface{}{"where": whereID(id)}, &out); err != nil {
		return nil, fmt.Errorf("get assignment: %w", err)
	}
	if out.Assignment == nil {
		return nil, ErrNotFound
	}
	return out.Assignment, nil
}

// Create persists a new assignment upstream.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) (*models.Assignment, error) {
	data := map[string]interface{}{
		"title":        assignment.Title,
		"description":  assignment.Description,
		"instructions": assignment.Instructions,
		"dueDate":      assignment.DueDate,
		"maxPoints":    assignment.MaxPoints,
		"course":       connectID(assignment.Course.ID),
		"teacher":      connectID(assignment.Teacher.ID),
	}
	var out struct {
		CreateAssignment *models.Assignment `json:"createAssignment"`
	}
	if err := r.client.Do(ctx, createAssignmentMutation, map[string]interface{}{"data": data}, &out); err != nil {
		return nil, fmt.Errorf("create assignment: %w", err)
	}
	return out.CreateAssignment, nil
}

// Update applies a sparse change set to the assignment.
func (r *AssignmentRepository) Update(ctx context.Context, id string, changes map[string]interface{}) (*models.Assignment, error) {
	var out struct {
		UpdateAssignment *models.Assignment `json:"updateAssignment"`
	}
	vars := map[string]interface{}{"where": whereID(id), "data": changes}
	if err := r.client.Do(ctx, updateAssignmentMutation, vars, &out); err != nil {
		return nil, fmt.Errorf("update assignment: %w", err)
	}
	if out.UpdateAssignment == nil {
		return nil, ErrNotFound
	}
	return out.UpdateAssignment, nil
}

// Delete removes the assignment upstream.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	var out struct {
		DeleteAssignment *struct {
			ID string `json:"id"`
		} `json:"deleteAssignment"`
	}
	if err := r.client.Do(ctx, deleteAssignmentMutation, map[string]interface{}{"where": whereID(id)}, &out); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	if out.DeleteAssignment == nil {
		return ErrNotFound
	}
	return nil
}
