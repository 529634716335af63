package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/goliatone/go-tutordash/pkg/client"
	"github.com/goliatone/go-tutordash/pkg/form"
	"github.com/goliatone/go-tutordash/pkg/formspec"
	"github.com/goliatone/go-tutordash/pkg/model"
	"github.com/goliatone/go-tutordash/pkg/render"
	"github.com/goliatone/go-tutordash/pkg/visibility/expr"
)

const maxUploadMemory = 32 << 20

// SubmitHandler receives the validated values of a posted form. courseID is
// the course the form was opened for, or 0.
type SubmitHandler func(ctx context.Context, courseID int, values model.Values) error

// errCourseRequired is shown when a course scoped form is posted without one.
var errCourseRequired = formspec.FormError{Message: "Open this form from a course to add items to it"}

// formRequest is the resolved target of a form route.
type formRequest struct {
	spec     model.FormSpec
	courseID int
	hidden   []render.HiddenField
}

func (s *Server) resolveForm(c *gin.Context) (formRequest, bool) {
	id := c.Param("id")
	courseID, _ := strconv.Atoi(firstNonEmpty(c.Query("course"), c.PostForm("course_id")))

	var spec model.FormSpec
	var err error
	switch id {
	case formspec.CourseCreateForm:
		spec, err = s.courseForm(c.Request.Context())
	case formspec.MaterialForm:
		spec = formspec.MaterialFormFor(firstNonEmpty(c.PostForm("resource_type"), c.Query("resource_type")))
	default:
		var ok bool
		spec, ok = s.forms.Get(id)
		if !ok {
			err = fmt.Errorf("%w: %q", formspec.ErrFormNotFound, id)
		}
	}
	if err != nil {
		if errors.Is(err, formspec.ErrFormNotFound) {
			notFound(c, err.Error())
		} else {
			internalError(c, err)
		}
		return formRequest{}, false
	}

	req := formRequest{spec: spec, courseID: courseID}
	if courseID > 0 {
		req.hidden = append(req.hidden, render.Hidden("course_id", courseID))
	}
	return req, true
}

// courseForm fills the category choices from the API, keeping the built-in
// list when the categories cannot be fetched.
func (s *Server) courseForm(ctx context.Context) (model.FormSpec, error) {
	categories, err := s.backend.Categories(ctx)
	if err != nil || len(categories) == 0 {
		if err != nil {
			s.logger.Warn("course categories unavailable", zap.Error(err))
		}
		spec, ok := s.forms.Get(formspec.CourseCreateForm)
		if !ok {
			return model.FormSpec{}, fmt.Errorf("%w: %q", formspec.ErrFormNotFound, formspec.CourseCreateForm)
		}
		return spec, nil
	}
	return s.forms.WithOptions(formspec.CourseCreateForm, "category", client.CategoryOptions(categories))
}

func (s *Server) newEngine(spec model.FormSpec, submit form.SubmitFunc, initial model.Values) (*form.Engine, error) {
	opts := []form.Option{
		form.WithVisibility(expr.New()),
		form.WithLogger(s.logger),
	}
	if submit != nil {
		opts = append(opts, form.WithSubmit(submit))
	}
	switch {
	case initial != nil:
		opts = append(opts, form.WithInitialValues(initial))
	case spec.ActiveTab != "":
		// Tabbed forms share one draft; moving to another tab starts it over.
		return s.auth.Open(spec.ActiveTab, spec.Fields, opts...)
	}
	return form.New(spec.Fields, opts...)
}

func (s *Server) showForm(c *gin.Context) {
	req, ok := s.resolveForm(c)
	if !ok {
		return
	}
	var initial model.Values
	if rt := c.Query("resource_type"); rt != "" && req.spec.ID == formspec.MaterialForm {
		initial = model.Values{"resource_type": rt}
	}
	engine, err := s.newEngine(req.spec, nil, initial)
	if err != nil {
		internalError(c, err)
		return
	}
	s.writeForm(c, http.StatusOK, req, engine.RenderOptions(), c.Query("notice"))
}

func (s *Server) submitForm(c *gin.Context) {
	if err := parseBody(c.Request); err != nil {
		badRequest(c, err.Error())
		return
	}
	req, ok := s.resolveForm(c)
	if !ok {
		return
	}

	handler := s.submitHandler(req.spec.ID)
	if handler == nil {
		badRequest(c, fmt.Sprintf("form %q has no submit handler", req.spec.ID))
		return
	}
	engine, err := s.newEngine(req.spec, func(ctx context.Context, values model.Values) error {
		return handler(ctx, req.courseID, values)
	}, nil)
	if err != nil {
		internalError(c, err)
		return
	}
	if err := applyRequest(engine, c.Request); err != nil {
		badRequest(c, err.Error())
		return
	}

	outcome, err := engine.Submit(c.Request.Context())
	switch outcome {
	case form.OutcomeSubmitted:
		s.logger.Info("form submitted", zap.String("form", req.spec.ID))
		engine.Reset()
		c.Redirect(http.StatusSeeOther, successLocation(req))
		return
	case form.OutcomeFailed:
		engine.ApplySubmitError(err)
		s.logger.Info("form submit rejected", zap.String("form", req.spec.ID), zap.Error(err))
	}

	status := http.StatusUnprocessableEntity
	if outcome == form.OutcomeFailed && client.StatusCode(err) >= http.StatusInternalServerError {
		status = http.StatusBadGateway
	}
	s.writeForm(c, status, req, engine.RenderOptions(), "")
}

func (s *Server) writeForm(c *gin.Context, status int, req formRequest, options render.RenderOptions, notice string) {
	options.HiddenInputs = render.HiddenFields(append(req.hidden, render.CSRFToken(s.csrfToken(c)))...)
	if req.spec.Action == "" {
		req.spec.Action = c.Request.URL.Path
	}
	body, err := s.html.Render(c.Request.Context(), req.spec, options)
	if err != nil {
		internalError(c, err)
		return
	}
	s.renderPage(c, status, firstNonEmpty(req.spec.Title, req.spec.ID), string(body), notice)
}

func (s *Server) submitHandler(id string) SubmitHandler {
	if fn, ok := s.handlers[id]; ok {
		return fn
	}
	return SubmitHandlerFor(s.backend, id)
}

// SubmitHandlerFor returns the API call behind a built-in form, or nil for
// ids it does not know.
func SubmitHandlerFor(backend Backend, formID string) SubmitHandler {
	a := actions{backend: backend}
	switch formID {
	case formspec.LoginForm:
		return a.login
	case formspec.RegisterForm:
		return a.register
	case formspec.ContactManualForm:
		return a.createContact
	case formspec.CourseCreateForm:
		return a.createCourse
	case formspec.UnitCreateForm:
		return a.createUnit
	case formspec.GoalCreateForm:
		return a.createGoal
	case formspec.MaterialForm:
		return a.createMaterial
	default:
		return nil
	}
}

type actions struct {
	backend Backend
}

func (a actions) login(ctx context.Context, _ int, values model.Values) error {
	_, err := a.backend.Login(ctx, values.String("username_or_email"), values.String("password"))
	return err
}

func (a actions) register(ctx context.Context, _ int, values model.Values) error {
	_, err := a.backend.Register(ctx, client.RegisterInput{
		Username: values.String("username"),
		Email:    values.String("email"),
		Name:     values.String("name"),
		Password: values.String("password"),
		Roles:    values.Set("roles"),
	})
	return err
}

func (a actions) createContact(ctx context.Context, _ int, values model.Values) error {
	if err := formspec.RequireEmailOrPhone(values); err != nil {
		return err
	}
	_, err := a.backend.CreateContact(ctx, client.ContactInput{
		Name:        values.String("name"),
		Email:       values.String("email"),
		PhoneNumber: values.String("phone_number"),
	})
	return err
}

func (a actions) createCourse(ctx context.Context, _ int, values model.Values) error {
	_, err := a.backend.CreateCourse(ctx, values)
	return err
}

func (a actions) createUnit(ctx context.Context, courseID int, values model.Values) error {
	if courseID <= 0 {
		return errCourseRequired
	}
	_, err := a.backend.CreateUnit(ctx, courseID, client.UnitInput{
		Title:          values.String("title"),
		Description:    values.String("description"),
		Order:          atoi(values.String("order")),
		MainSessionURL: values.String("main_session_url"),
	})
	return err
}

func (a actions) createGoal(ctx context.Context, courseID int, values model.Values) error {
	if courseID <= 0 {
		return errCourseRequired
	}
	_, err := a.backend.CreateGoal(ctx, courseID, client.GoalInput{
		Title:       values.String("title"),
		Description: values.String("description"),
		TaskType:    values.String("task_type"),
		Order:       atoi(values.String("order")),
	})
	return err
}

func (a actions) createMaterial(ctx context.Context, courseID int, values model.Values) error {
	if courseID <= 0 {
		return errCourseRequired
	}
	linkType := formspec.IsLinkResource(values.String("resource_type"))
	_, err := a.backend.CreateMaterial(ctx, courseID, values, linkType)
	return err
}

// successLocation is where a successful post redirects: the form's close
// target, or the network page.
func successLocation(req formRequest) string {
	switch {
	case req.spec.ID == formspec.LoginForm || req.spec.ID == formspec.RegisterForm:
		return "/network?notice=" + url.QueryEscape("Signed in")
	case req.spec.CloseHref != "" && req.courseID == 0:
		return req.spec.CloseHref
	default:
		target := "/forms/" + req.spec.ID + "?notice=" + url.QueryEscape("Saved")
		if req.courseID > 0 {
			target += "&course=" + strconv.Itoa(req.courseID)
		}
		return target
	}
}

func parseBody(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			return fmt.Errorf("invalid multipart payload: %w", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("invalid form payload: %w", err)
	}
	return nil
}

// applyRequest feeds the posted values into engine the way the browser
// controls would: unchecked checkboxes are absent and files arrive as parts.
// Text values are stored as posted, so passwords keep their spaces.
func applyRequest(engine *form.Engine, r *http.Request) error {
	for _, field := range engine.Fields() {
		var err error
		switch field.Type {
		case model.FieldTypeCheckbox:
			err = engine.OnFieldChange(form.ChangeEvent{Name: field.Name, Checked: r.PostForm.Get(field.Name) != ""})
		case model.FieldTypeCheckboxGroup:
			picked := r.PostForm[field.Name]
			if picked == nil {
				picked = []string{}
			}
			err = engine.SetValue(field.Name, picked)
		case model.FieldTypeFile:
			err = engine.OnFieldChange(form.ChangeEvent{Name: field.Name, Files: uploadedFiles(r, field.Name)})
		default:
			values, ok := r.PostForm[field.Name]
			if !ok || len(values) == 0 {
				continue
			}
			err = engine.OnFieldChange(form.ChangeEvent{Name: field.Name, Value: values[0]})
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func uploadedFiles(r *http.Request, name string) []*model.File {
	if r.MultipartForm == nil {
		return nil
	}
	headers := r.MultipartForm.File[name]
	files := make([]*model.File, 0, len(headers))
	for _, header := range headers {
		if header.Filename == "" {
			continue
		}
		files = append(files, &model.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Open:        openPart(header),
		})
	}
	return files
}

func openPart(header *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return header.Open()
	}
}

func (s *Server) listForms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"forms": s.forms.IDs()})
}

// formDescriptor answers GET /api/forms/:id with the props payload, or with
// another registered renderer picked by ?renderer=.
func (s *Server) formDescriptor(c *gin.Context) {
	req, ok := s.resolveForm(c)
	if !ok {
		return
	}
	renderer, err := s.registry.Get(c.DefaultQuery("renderer", "props"))
	if err != nil {
		notFound(c, err.Error())
		return
	}
	engine, err := s.newEngine(req.spec, nil, nil)
	if err != nil {
		internalError(c, err)
		return
	}
	options := engine.RenderOptions()
	options.HiddenInputs = render.HiddenFields(req.hidden...)
	out, err := renderer.Render(c.Request.Context(), req.spec, options)
	if err != nil {
		internalError(c, err)
		return
	}
	c.Data(http.StatusOK, renderer.ContentType(), out)
}

func atoi(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
