package model

// CourseFields is the writable part of a course sent on create/update.
type CourseFields struct {
	Title       string       `json:"title" validate:"required"`
	Description *string      `json:"description"`
	Status      CourseStatus `json:"status" validate:"omitempty,oneof=draft published archived"`
	Difficulty  Difficulty   `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	CategoryID  *string      `json:"category_id"`
	TagIDs      []string     `json:"tag_ids"`
}

// ModuleFields is the writable part of a module sent on create/update.
type ModuleFields struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Required    bool    `json:"required"`
	Position    int     `json:"position" validate:"min=0"`
}

// LessonFields is the writable part of a lesson sent on create/update.
type LessonFields struct {
	Title           string      `json:"title" validate:"required"`
	Description     *string     `json:"description"`
	Kind            ContentKind `json:"kind" validate:"required,oneof=video text document quiz assignment assessment live_session"`
	ContentRef      *string     `json:"content_ref"`
	DurationMinutes int         `json:"duration_minutes" validate:"min=0"`
	Required        bool        `json:"required"`
	Preview         bool        `json:"preview"`
	Position        int         `json:"position" validate:"min=0"`
}

// Fields returns the writable fields of the course.
func (c *Course) Fields() CourseFields {
	return CourseFields{
		Title:       c.Title,
		Description: c.Description,
		Status:      c.Status,
		Difficulty:  c.Difficulty,
		CategoryID:  c.CategoryID,
		TagIDs:      append([]string(nil), c.TagIDs...),
	}
}

// Fields returns the writable fields of the module.
func (m *Module) Fields() ModuleFields {
	return ModuleFields{
		Title:       m.Title,
		Description: m.Description,
		Required:    m.Required,
		Position:    m.Position,
	}
}

// Fields returns the writable fields of the lesson.
func (l *Lesson) Fields() LessonFields {
	return LessonFields{
		Title:           l.Title,
		Description:     l.Description,
		Kind:            l.Kind,
		ContentRef:      l.ContentRef,
		DurationMinutes: l.DurationMinutes,
		Required:        l.Required,
		Preview:         l.Preview,
		Position:        l.Position,
	}
}

// Clone returns a deep copy of the course and its whole tree.
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	out := *c
	out.Description = cloneString(c.Description)
	out.CategoryID = cloneString(c.CategoryID)
	if c.TagIDs != nil {
		out.TagIDs = append([]string{}, c.TagIDs...)
	}
	out.Modules = make([]*Module, len(c.Modules))
	for i, m := range c.Modules {
		out.Modules[i] = m.Clone()
	}
	return &out
}

// Clone returns a deep copy of the module and its lessons.
func (m *Module) Clone() *Module {
	if m == nil {
		return nil
	}
	out := *m
	out.Description = cloneString(m.Description)
	out.Lessons = make([]*Lesson, len(m.Lessons))
	for i, l := range m.Lessons {
		out.Lessons[i] = l.Clone()
	}
	return &out
}

// Clone returns a copy of the lesson.
func (l *Lesson) Clone() *Lesson {
	if l == nil {
		return nil
	}
	out := *l
	out.Description = cloneString(l.Description)
	out.ContentRef = cloneString(l.ContentRef)
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
