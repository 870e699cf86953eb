package metadata

// CourseMeta is the root of a crawled course metadata descriptor.
type CourseMeta struct {
	CourseName string       `json:"course_name"`
	CourseSlug string       `json:"course_slug"`
	Modules    []ModuleMeta `json:"modules"`
}

// ModuleMeta describes one module (topic) of a course.
type ModuleMeta struct {
	ModuleName string   `json:"module_name"`
	ModuleSlug string   `json:"module_slug"`
	Lessons    []Lesson `json:"lessons"`
}

// Lesson groups the items of one lesson within a module.
type Lesson struct {
	LessonName string `json:"lesson_name"`
	LessonSlug string `json:"lesson_slug"`
	Items      []Item `json:"items"`
}

// Item is a single lecture item with its crawled content references.
type Item struct {
	Name            string       `json:"name"`
	TransformedSlug string       `json:"transformed_slug"`
	Content         []ContentRef `json:"content"`
}

// ContentRef points at one crawled artifact of an item, e.g. a
// transcript text file or a slide deck.
type ContentRef struct {
	ContentType string `json:"content_type"`
	Path        string `json:"path"`
}
