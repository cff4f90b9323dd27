package course

import (
	"strings"

	"github.com/volatiletech/null/v8"

	"github.com/tulamba/mafunzo/core"
)

// Levels
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Resource types
const (
	ResourcePDF   = "pdf"
	ResourceVideo = "video"
	ResourceLink  = "link"
	ResourceFile  = "file"
	ResourceNone  = "none"
)

// Content types
const (
	ContentVideo    = "video"
	ContentReading  = "reading"
	ContentQuiz     = "quiz"
	ContentActivity = "activity"
	ContentScenario = "scenario"
)

var (
	Levels        = []string{LevelBeginner, LevelIntermediate, LevelAdvanced}
	ResourceTypes = []string{ResourcePDF, ResourceVideo, ResourceLink, ResourceFile, ResourceNone}
	ContentTypes  = []string{ContentVideo, ContentReading, ContentQuiz, ContentActivity, ContentScenario}
)

// Course is the admin-managed learning unit. Its id is referenced (never
// embedded) by employee progress entries.
type Course struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Duration     string   `json:"duration"`
	Category     string   `json:"category"`
	Level        string   `json:"level"`
	ImageURL     string   `json:"image_url"`
	Modules      []Module `json:"modules"`
	ResourceType string   `json:"resource_type,omitempty"`
	ResourceURL  string   `json:"resource_url,omitempty"`
	FileName     string   `json:"file_name,omitempty"`
}

// Module ids are unique within their owning Course only, not globally.
type Module struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Duration     string          `json:"duration"`
	Completed    null.Bool       `json:"completed,omitempty"` // legacy; per-employee status supersedes it
	ResourceType string          `json:"resource_type,omitempty"`
	ResourceURL  string          `json:"resource_url,omitempty"`
	FileName     string          `json:"file_name,omitempty"`
	Content      []ModuleContent `json:"content,omitempty"`
}

// ModuleContent is a purely descriptive leaf; it never carries progress state.
type ModuleContent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Duration    string `json:"duration,omitempty"`
	ResourceURL string `json:"resource_url,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	Description string `json:"description,omitempty"`
}

// Clone returns a deep copy of the course definition: the module and content
// slices are duplicated so mutations on one copy never reach the other.
func (c Course) Clone() Course {
	if c.Modules == nil {
		return c
	}
	modules := make([]Module, len(c.Modules))
	for i, mod := range c.Modules {
		if mod.Content != nil {
			mod.Content = append([]ModuleContent(nil), mod.Content...)
		}
		modules[i] = mod
	}
	c.Modules = modules
	return c
}

// QueryFilter narrows course listings; all set fields must match.
type QueryFilter struct {
	Search   string `query:"search"`
	Category string `query:"category"`
	Level    string `query:"level"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Category == "" && qf.Level == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Category = core.CleanString(qf.Category)
	qf.Level = core.CleanString(qf.Level)
}

func (qf QueryFilter) Match(crs Course) bool {
	if qf.Category != "" && !strings.EqualFold(crs.Category, qf.Category) {
		return false
	}
	if qf.Level != "" && !strings.EqualFold(crs.Level, qf.Level) {
		return false
	}
	if qf.Search != "" {
		s := strings.ToLower(qf.Search)
		if !strings.Contains(strings.ToLower(crs.Title), s) &&
			!strings.Contains(strings.ToLower(crs.Description), s) &&
			!strings.Contains(strings.ToLower(crs.Category), s) {
			return false
		}
	}
	return true
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Title        string      `json:"title" validate:"required"`
	Description  string      `json:"description"`
	Duration     string      `json:"duration"`
	Category     string      `json:"category"`
	Level        string      `json:"level" validate:"required,courselevel"`
	ImageURL     string      `json:"image_url" validate:"omitempty,url"`
	ResourceType string      `json:"resource_type" validate:"omitempty,resourcetype"`
	ResourceURL  string      `json:"resource_url" validate:"omitempty,url"`
	FileName     string      `json:"file_name"`
	Modules      []NewModule `json:"modules" validate:"dive"`
}

func (nc *NewCourse) Validate() error {
	nc.Title = core.CleanString(nc.Title)
	nc.Category = core.CleanString(nc.Category)
	return core.Validate.Struct(nc)
}

type NewModule struct {
	ID           string             `json:"id"` // kept on update; assigned when empty
	Title        string             `json:"title" validate:"required"`
	Duration     string             `json:"duration"`
	ResourceType string             `json:"resource_type" validate:"omitempty,resourcetype"`
	ResourceURL  string             `json:"resource_url" validate:"omitempty,url"`
	FileName     string             `json:"file_name"`
	Content      []NewModuleContent `json:"content" validate:"dive"`
}

type NewModuleContent struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required"`
	Type        string `json:"type" validate:"required,contenttype"`
	Duration    string `json:"duration"`
	ResourceURL string `json:"resource_url" validate:"omitempty,url"`
	FileName    string `json:"file_name"`
	Description string `json:"description"`
}

// UpdateCourse defines what information may be provided to modify an existing
// Course. The whole definition is replaced in place; collection order is kept.
type UpdateCourse struct {
	Title        string      `json:"title" validate:"required"`
	Description  string      `json:"description"`
	Duration     string      `json:"duration"`
	Category     string      `json:"category"`
	Level        string      `json:"level" validate:"required,courselevel"`
	ImageURL     string      `json:"image_url" validate:"omitempty,url"`
	ResourceType string      `json:"resource_type" validate:"omitempty,resourcetype"`
	ResourceURL  string      `json:"resource_url" validate:"omitempty,url"`
	FileName     string      `json:"file_name"`
	Modules      []NewModule `json:"modules" validate:"dive"`
}

func (uc *UpdateCourse) Validate() error {
	uc.Title = core.CleanString(uc.Title)
	uc.Category = core.CleanString(uc.Category)
	return core.Validate.Struct(uc)
}
