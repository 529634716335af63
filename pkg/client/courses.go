package client

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/goliatone/go-tutordash/pkg/listing"
	"github.com/goliatone/go-tutordash/pkg/model"
)

// Courses lists the instructor's courses.
func (c *Client) Courses(ctx context.Context) ([]Course, error) {
	var courses []Course
	if err := c.getData(ctx, "/api/courses/instructor/courses/", nil, "courses", &courses); err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []Course{}
	}
	return courses, nil
}

// FilterCourses applies the course list search: case-insensitive prefix match
// on title or description.
func FilterCourses(courses []Course, query string) []Course {
	return listing.FilterPrefix(courses, query,
		func(c Course) string { return c.Title },
		func(c Course) string { return c.Description },
	)
}

// Course fetches one course.
func (c *Client) Course(ctx context.Context, id int) (Course, error) {
	var course Course
	err := c.getData(ctx, pathf("/api/courses/%s/", id), nil, "course", &course)
	return course, err
}

// CreateCourse submits the course form as multipart. A non-positive
// max_enrollments is left out.
func (c *Client) CreateCourse(ctx context.Context, values model.Values) (Course, error) {
	values = values.Clone()
	if n, err := strconv.Atoi(strings.TrimSpace(values.String("max_enrollments"))); err != nil || n <= 0 {
		delete(values, "max_enrollments")
	}
	body, err := multipartPayload(values, "title", "description", "category", "image", "max_enrollments", "enrollment_deadline")
	if err != nil {
		return Course{}, err
	}
	var course Course
	err = c.sendData(ctx, http.MethodPost, "/api/courses/instructor/courses/create/", body, "course", &course)
	return course, err
}

// UpdateCourse replaces course fields.
func (c *Client) UpdateCourse(ctx context.Context, id int, fields map[string]any) (Course, error) {
	body, err := jsonPayload(fields)
	if err != nil {
		return Course{}, err
	}
	var course Course
	err = c.sendData(ctx, http.MethodPut, pathf("/api/courses/%s/", id), body, "course", &course)
	return course, err
}

// DeleteCourse removes a course.
func (c *Client) DeleteCourse(ctx context.Context, id int) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: pathf("/api/courses/%s/", id)})
	return err
}

// Categories lists course categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.getData(ctx, "/api/courses/categories/", nil, "categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CategoryOptions converts categories into select options.
func CategoryOptions(categories []Category) []model.Option {
	options := make([]model.Option, 0, len(categories))
	for _, category := range categories {
		options = append(options, model.Option{Value: strconv.Itoa(category.ID), Label: category.Name})
	}
	return options
}

// Units lists a course's units.
func (c *Client) Units(ctx context.Context, courseID int) ([]Unit, error) {
	var units []Unit
	err := c.getData(ctx, pathf("/api/courses/%s/units/", courseID), nil, "units", &units)
	return units, err
}

// CreateUnit adds a unit to a course.
func (c *Client) CreateUnit(ctx context.Context, courseID int, input UnitInput) (Unit, error) {
	body, err := jsonPayload(input)
	if err != nil {
		return Unit{}, err
	}
	var unit Unit
	err = c.sendData(ctx, http.MethodPost, pathf("/api/courses/%s/units/create/", courseID), body, "unit", &unit)
	return unit, err
}

// UpdateUnit replaces a unit.
func (c *Client) UpdateUnit(ctx context.Context, unitID int, input UnitInput) (Unit, error) {
	body, err := jsonPayload(input)
	if err != nil {
		return Unit{}, err
	}
	var unit Unit
	err = c.sendData(ctx, http.MethodPut, pathf("/api/units/%s/update/", unitID), body, "unit", &unit)
	return unit, err
}

// DeleteUnit removes a unit.
func (c *Client) DeleteUnit(ctx context.Context, unitID int) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: pathf("/api/units/%s/delete/", unitID)})
	return err
}

// Goals lists a course's learning goals.
func (c *Client) Goals(ctx context.Context, courseID int) ([]Goal, error) {
	var goals []Goal
	err := c.getData(ctx, pathf("/api/courses/%s/goals/", courseID), nil, "goals", &goals)
	return goals, err
}

// CreateGoal adds a learning goal to a course.
func (c *Client) CreateGoal(ctx context.Context, courseID int, input GoalInput) (Goal, error) {
	body, err := jsonPayload(input)
	if err != nil {
		return Goal{}, err
	}
	var goal Goal
	err = c.sendData(ctx, http.MethodPost, pathf("/api/courses/instructor/courses/%s/goals/create/", courseID), body, "goal", &goal)
	return goal, err
}

// UpdateGoal replaces a goal.
func (c *Client) UpdateGoal(ctx context.Context, goalID int, input GoalInput) (Goal, error) {
	body, err := jsonPayload(input)
	if err != nil {
		return Goal{}, err
	}
	var goal Goal
	err = c.sendData(ctx, http.MethodPut, pathf("/api/courses/instructor/goals/%s/update/", goalID), body, "goal", &goal)
	return goal, err
}

// DeleteGoal removes a goal.
func (c *Client) DeleteGoal(ctx context.Context, goalID int) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: pathf("/api/courses/instructor/goals/%s/delete/", goalID)})
	return err
}

// SetGoalCompleted toggles a goal's completion for the current user.
func (c *Client) SetGoalCompleted(ctx context.Context, goalID int, completed bool) error {
	body, err := jsonPayload(map[string]bool{"completed": completed})
	if err != nil {
		return err
	}
	_, err = c.do(ctx, call{method: http.MethodPost, path: pathf("/api/courses/goals/%s/complete/", goalID), body: body})
	return err
}

// Materials lists a course's materials.
func (c *Client) Materials(ctx context.Context, courseID int) ([]Material, error) {
	var materials []Material
	err := c.getData(ctx, pathf("/api/courses/%s/materials/", courseID), nil, "materials", &materials)
	return materials, err
}

// CreateMaterial uploads a material. The file is sent for upload types, the
// link for link types.
func (c *Client) CreateMaterial(ctx context.Context, courseID int, values model.Values, linkType bool) (Material, error) {
	keys := []string{"title", "resource_type", "file"}
	if linkType {
		keys = []string{"title", "resource_type", "link"}
	}
	body, err := multipartPayload(values, keys...)
	if err != nil {
		return Material{}, err
	}
	var material Material
	err = c.sendData(ctx, http.MethodPost, pathf("/api/courses/instructor/courses/%s/materials/create/", courseID), body, "material", &material)
	return material, err
}

// DeleteMaterial removes a material.
func (c *Client) DeleteMaterial(ctx context.Context, materialID int) error {
	_, err := c.do(ctx, call{method: http.MethodDelete, path: pathf("/api/courses/instructor/materials/%s/delete/", materialID)})
	return err
}
