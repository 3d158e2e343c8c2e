package models

// AdminResource names a back-office CRUD resource backed by the commerce API.
type AdminResource string

const (
	ResourceCategories    AdminResource = "categories"
	ResourceSubcategories AdminResource = "subcategories"
	ResourceCourses       AdminResource = "courses"
	ResourceChapters      AdminResource = "chapters"
	ResourceLectures      AdminResource = "lectures"
)

// AdminResources lists every resource served by the generic CRUD panel.
var AdminResources = []AdminResource{
	ResourceCategories,
	ResourceSubcategories,
	ResourceCourses,
	ResourceChapters,
	ResourceLectures,
}

// Valid reports whether the resource is served by the generic CRUD panel.
func (r AdminResource) Valid() bool {
	for _, known := range AdminResources {
		if r == known {
			return true
		}
	}
	return false
}

// RequiredFields lists the form fields a create/update must carry.
func (r AdminResource) RequiredFields() []string {
	switch r {
	case ResourceCategories:
		return []string{"name"}
	case ResourceSubcategories:
		return []string{"name", "category_id"}
	case ResourceCourses:
		return []string{"title", "price", "category_id"}
	case ResourceChapters:
		return []string{"title", "course_id"}
	case ResourceLectures:
		return []string{"title", "chapter_id", "course_id"}
	}
	return nil
}

// ResourceRecord is a loosely typed row returned by the CRUD endpoints.
type ResourceRecord map[string]interface{}
