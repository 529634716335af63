package formspec

import (
	"fmt"

	"github.com/goliatone/go-tutordash/pkg/model"
)

// Built-in form ids.
const (
	LoginForm         = "login"
	RegisterForm      = "register"
	ContactManualForm = "contact-manual"
	CourseCreateForm  = "course-create"
	UnitCreateForm    = "unit-create"
	GoalCreateForm    = "goal-create"
	MaterialForm      = "material-create"
)

const emailPattern = `^[^\s@]+@[^\s@]+\.[^\s@]+$`

// ResourceType is a course material kind and the file types it accepts.
type ResourceType struct {
	Value  string
	Label  string
	Accept string
}

// ResourceTypes lists the material kinds in display order. Kinds without an
// accept list are links rather than uploads.
var ResourceTypes = []ResourceType{
	{Value: "pdf", Label: "PDF Document", Accept: ".pdf"},
	{Value: "document", Label: "Document", Accept: ".pdf,.doc,.docx,.txt"},
	{Value: "video_file", Label: "Video File", Accept: ".mp4,.avi,.mov,.wmv"},
	{Value: "video_link", Label: "Video Link"},
	{Value: "audio", Label: "Audio File", Accept: ".mp3,.wav,.ogg"},
	{Value: "image", Label: "Image", Accept: ".jpg,.jpeg,.png,.gif,.bmp"},
	{Value: "link", Label: "External Link"},
	{Value: "code", Label: "Code Sample", Accept: ".txt,.js,.py,.html,.css,.json"},
	{Value: "slide", Label: "Presentation", Accept: ".ppt,.pptx,.pdf"},
}

// DefaultCategories backs the course category select until the live list has
// been fetched.
var DefaultCategories = []model.Option{
	{Value: "programming", Label: "Programming"},
	{Value: "design", Label: "Design"},
	{Value: "business", Label: "Business"},
	{Value: "languages", Label: "Languages"},
	{Value: "other", Label: "Other"},
}

// AcceptFor returns the file accept list for a resource type. Unknown and
// link types accept anything.
func AcceptFor(resourceType string) string {
	for _, rt := range ResourceTypes {
		if rt.Value == resourceType && rt.Accept != "" {
			return rt.Accept
		}
	}
	return "*/*"
}

// IsLinkResource reports whether materials of resourceType carry a link
// instead of an uploaded file.
func IsLinkResource(resourceType string) bool {
	return resourceType == "video_link" || resourceType == "link"
}

// MaterialFormFor returns the material form with the file field's accept list
// narrowed to resourceType.
func MaterialFormFor(resourceType string) model.FormSpec {
	spec := materialCreate()
	for idx := range spec.Fields {
		if spec.Fields[idx].Name == "file" {
			spec.Fields[idx].Accept = AcceptFor(resourceType)
		}
	}
	return spec
}

// Builtin returns a store with the dashboard's forms.
func Builtin() *Store {
	store := NewStore()
	validators := DefaultValidators()
	for _, spec := range []model.FormSpec{
		login(),
		register(),
		contactManual(),
		courseCreate(),
		unitCreate(),
		goalCreate(),
		materialCreate(),
	} {
		if err := validators.Attach(&spec); err != nil {
			panic(fmt.Errorf("formspec: builtin %q: %w", spec.ID, err))
		}
		if err := Check(spec); err != nil {
			panic(fmt.Errorf("formspec: builtin %q: %w", spec.ID, err))
		}
		if err := store.Add(spec); err != nil {
			panic(err)
		}
	}
	return store
}

func authTabs() []model.Tab {
	return []model.Tab{
		{Key: LoginForm, Label: "Login", Href: "/forms/login"},
		{Key: RegisterForm, Label: "Register", Href: "/forms/register"},
	}
}

func submit(label, loading string) model.Action {
	return model.Action{Label: label, LoadingLabel: loading, Variant: model.ActionPrimary, Type: model.ActionTypeSubmit, FullWidth: true}
}

func cancel() model.Action {
	return model.Action{Label: "Cancel", Variant: model.ActionSecondary, Type: model.ActionTypeButton, FullWidth: true, Name: "cancel"}
}

func login() model.FormSpec {
	return model.FormSpec{
		ID:        LoginForm,
		Title:     "Login",
		Method:    "post",
		Tabs:      authTabs(),
		ActiveTab: LoginForm,
		Fields: []model.Field{
			{Name: "username_or_email", Label: "Username or Email", Type: model.FieldTypeText, Placeholder: "Enter your username or email", Required: true},
			{Name: "password", Label: "Password", Type: model.FieldTypePassword, Placeholder: "Enter your password", Required: true},
		},
		Actions: []model.Action{
			submit("Login", "Logging in..."),
			{Label: "Need an account? Register", Variant: model.ActionLink, Type: model.ActionTypeButton, Href: "/forms/register"},
		},
	}
}

func register() model.FormSpec {
	return model.FormSpec{
		ID:        RegisterForm,
		Title:     "Register",
		Method:    "post",
		Tabs:      authTabs(),
		ActiveTab: RegisterForm,
		Fields: []model.Field{
			{Name: "username", Label: "Username", Type: model.FieldTypeText, Placeholder: "Choose a username", Required: true},
			{Name: "email", Label: "Email", Type: model.FieldTypeEmail, Placeholder: "Enter your email address", Required: true, Validation: model.Validation{
				Pattern:        emailPattern,
				PatternMessage: "Please enter a valid email address",
			}},
			{Name: "name", Label: "Full Name", Type: model.FieldTypeText, Placeholder: "Enter your full name", Required: true},
			{Name: "password", Label: "Password", Type: model.FieldTypePassword, Placeholder: "Choose a secure password", Required: true, Validation: model.Validation{
				MinLength:        8,
				MinLengthMessage: "Password must be at least 8 characters",
			}},
			{Name: "roles", Label: "Role Selection", Type: model.FieldTypeCheckboxGroup, Required: true, Options: []model.Option{
				{Value: "Tutor", Label: "Instructor"},
				{Value: "Student", Label: "Student"},
			}},
		},
		Actions: []model.Action{
			submit("Create Account", "Creating Account..."),
			{Label: "Already have an account? Login", Variant: model.ActionLink, Type: model.ActionTypeButton, Href: "/forms/login"},
		},
	}
}

// The email or phone rule is enforced at submit with RequireEmailOrPhone.
func contactManual() model.FormSpec {
	return model.FormSpec{
		ID:        ContactManualForm,
		Title:     "Add Manual Contact",
		Method:    "post",
		ShowClose: true,
		CloseHref: "/network",
		Fields: []model.Field{
			{Name: "name", Label: "Contact Name", Type: model.FieldTypeText, Placeholder: "Enter full name", Required: true, Validation: model.Validation{
				RequiredMessage: "Contact name is required",
			}},
			{Name: "email", Label: "Email Address", Type: model.FieldTypeEmail, Placeholder: "Enter email address", Help: "Email or phone number is required", Validation: model.Validation{
				Pattern:        emailPattern,
				PatternMessage: "Please enter a valid email address",
			}},
			{Name: "phone_number", Label: "Phone Number", Type: model.FieldTypeTel, Placeholder: "Enter phone number", Help: "Include country code (e.g., +1234567890)", Validation: model.Validation{
				CustomName: PhoneValidator,
			}},
		},
		Actions: []model.Action{submit("Add Contact", "Adding Contact..."), cancel()},
	}
}

func courseCreate() model.FormSpec {
	return model.FormSpec{
		ID:        CourseCreateForm,
		Title:     "Create New Course",
		Subtitle:  "Create a new course for your students",
		Method:    "post",
		ShowClose: true,
		CloseHref: "/courses",
		Fields: []model.Field{
			{Name: "title", Label: "Course Title", Type: model.FieldTypeText, Placeholder: "Enter course title", Required: true, Validation: model.Validation{
				MaxLength:        200,
				MaxLengthMessage: "Title must be less than 200 characters",
			}},
			{Name: "description", Label: "Course Description", Type: model.FieldTypeTextarea, Placeholder: "Describe what students will learn in this course...", Required: true, Rows: 4},
			{Name: "category", Label: "Category", Type: model.FieldTypeSelect, Placeholder: "Select a category", Required: true, Options: DefaultCategories, Validation: model.Validation{
				RequiredMessage: "Please select a category",
			}},
			{Name: "image", Label: "Course Image", Type: model.FieldTypeFile, Accept: "image/*", Help: "Optional: Upload a course thumbnail image (JPG, PNG, GIF)"},
			{Name: "max_enrollments", Label: "Maximum Enrollments", Type: model.FieldTypeNumber, Placeholder: "e.g., 50", Min: "1", Help: "Optional: Set maximum number of students (leave empty for unlimited)"},
		},
		Actions: []model.Action{submit("Create Course", "Creating Course..."), cancel()},
	}
}

func unitCreate() model.FormSpec {
	return model.FormSpec{
		ID:        UnitCreateForm,
		Title:     "Create New Unit",
		Subtitle:  "Add a new learning unit to your course",
		Method:    "post",
		ShowClose: true,
		Fields: []model.Field{
			{Name: "title", Label: "Unit Title", Type: model.FieldTypeText, Placeholder: "e.g., Introduction to React", Required: true, Validation: model.Validation{
				MaxLength:        200,
				MaxLengthMessage: "Title must be less than 200 characters",
			}},
			{Name: "description", Label: "Description", Type: model.FieldTypeTextarea, Placeholder: "Describe what students will learn in this unit...", Rows: 3, Help: "Explain the learning objectives and what this unit covers"},
			{Name: "order", Label: "Unit Order", Type: model.FieldTypeNumber, Placeholder: "1", Min: "1", Help: "The order of this unit within the course (1, 2, 3, etc.)"},
			{Name: "main_session_url", Label: "Main Session URL", Type: model.FieldTypeURL, Placeholder: "https://youtube.com/watch?v=...", Help: "Optional: Link to the main video or livestream for this unit"},
		},
		Actions: []model.Action{submit("Create Unit", "Creating Unit..."), cancel()},
	}
}

func goalCreate() model.FormSpec {
	return model.FormSpec{
		ID:        GoalCreateForm,
		Title:     "Create Learning Goal",
		Subtitle:  "Set a clear learning objective for your course",
		Method:    "post",
		ShowClose: true,
		Fields: []model.Field{
			{Name: "title", Label: "Goal Title", Type: model.FieldTypeText, Placeholder: "e.g., Complete React Basics Quiz", Required: true, Validation: model.Validation{
				MaxLength:        255,
				MaxLengthMessage: "Title must be less than 255 characters",
			}},
			{Name: "description", Label: "Description", Type: model.FieldTypeTextarea, Placeholder: "Describe what students need to accomplish...", Rows: 3, Help: "Provide clear instructions and expectations for this learning goal"},
			{Name: "task_type", Label: "Goal Type", Type: model.FieldTypeSelect, Placeholder: "Select goal type", Required: true, Validation: model.Validation{
				RequiredMessage: "Please select a goal type",
			}, Options: []model.Option{
				{Value: "assignment", Label: "📝 Assignment"},
				{Value: "exercise", Label: "💪 Exercise"},
				{Value: "quiz", Label: "❓ Quiz"},
				{Value: "reading", Label: "📖 Reading Material"},
				{Value: "video_watch", Label: "🎥 Video Watch"},
				{Value: "discussion", Label: "💬 Discussion Post"},
				{Value: "project", Label: "🚀 Project Work"},
			}},
			{Name: "order", Label: "Goal Order", Type: model.FieldTypeNumber, Placeholder: "1", Min: "1", Help: "The order of this goal within the course (1, 2, 3, etc.)"},
		},
		Actions: []model.Action{submit("Create Goal", "Creating Goal..."), cancel()},
	}
}

func materialCreate() model.FormSpec {
	options := make([]model.Option, 0, len(ResourceTypes))
	for _, rt := range ResourceTypes {
		options = append(options, model.Option{Value: rt.Value, Label: rt.Label})
	}
	return model.FormSpec{
		ID:        MaterialForm,
		Title:     "Add Course Material",
		Subtitle:  "Upload files or add links to course resources",
		Method:    "post",
		ShowClose: true,
		Fields: []model.Field{
			{Name: "title", Label: "Material Title", Type: model.FieldTypeText, Placeholder: "e.g., Course Syllabus PDF", Required: true, Validation: model.Validation{
				MaxLength:        200,
				MaxLengthMessage: "Title must be less than 200 characters",
			}},
			{Name: "resource_type", Label: "Material Type", Type: model.FieldTypeSelect, Placeholder: "Select material type", Required: true, Default: "document", Options: options, Validation: model.Validation{
				RequiredMessage: "Please select a material type",
			}},
			{Name: "file", Label: "Upload File", Type: model.FieldTypeFile, Required: true, Accept: AcceptFor("document"), VisibleWhen: `!(resource_type in ["video_link", "link"])`},
			{Name: "link", Label: "External Link", Type: model.FieldTypeURL, Placeholder: "https://example.com/resource", Required: true, Help: "Provide the full URL to the external resource", VisibleWhen: `resource_type in ["video_link", "link"]`},
		},
		Actions: []model.Action{submit("Create Material", "Creating Material..."), cancel()},
	}
}
