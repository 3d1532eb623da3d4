package model

// CourseStatus is the publication state of a course.
type CourseStatus string

const (
	StatusDraft     CourseStatus = "draft"
	StatusPublished CourseStatus = "published"
	StatusArchived  CourseStatus = "archived"
)

// Difficulty is the difficulty tier of a course.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ContentKind describes what a lesson delivers.
type ContentKind string

const (
	KindVideo       ContentKind = "video"
	KindText        ContentKind = "text"
	KindDocument    ContentKind = "document"
	KindQuiz        ContentKind = "quiz"
	KindAssignment  ContentKind = "assignment"
	KindAssessment  ContentKind = "assessment"
	KindLiveSession ContentKind = "live_session"
)

// Course is the top-level container edited in a session.
type Course struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description"` // nil = not set, "" = explicitly empty
	Status      CourseStatus `json:"status"`
	Difficulty  Difficulty   `json:"difficulty"`
	CategoryID  *string      `json:"category_id"`
	TagIDs      []string     `json:"tag_ids"` // set semantics: order is not significant
	Modules     []*Module    `json:"modules"`
}

// Module is an ordered section of a course.
type Module struct {
	ID          string    `json:"id"` // real (server) or placeholder (tmp-...)
	CourseID    string    `json:"course_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Required    bool      `json:"required"`
	Position    int       `json:"position"` // zero-based, equal to index in Course.Modules
	Lessons     []*Lesson `json:"lessons"`
}

// Lesson is an ordered item within a module.
type Lesson struct {
	ID              string      `json:"id"`
	ModuleID        string      `json:"module_id"` // parent reference, reconciled with the module id
	Title           string      `json:"title"`
	Description     *string     `json:"description"`
	Kind            ContentKind `json:"kind"`
	ContentRef      *string     `json:"content_ref"` // "{scheme}:{externalId}", opaque to the editor
	DurationMinutes int         `json:"duration_minutes"`
	Required        bool        `json:"required"`
	Preview         bool        `json:"preview"`
	Position        int         `json:"position"`
}

// Position is one entry of a reorder payload.
type Position struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}
