package models

// Course is a catalog entry. Description holds HTML authored in the back-office.
type Course struct {
	ID            ID     `json:"id"`
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Subtitle      string `json:"subtitle"`
	Description   string `json:"description,omitempty"`
	Thumbnail     string `json:"thumbnail"`
	Price         Price  `json:"price"`
	Rating        Price  `json:"rating"`
	NumReviews    ID     `json:"num_reviews"`
	CategoryID    ID     `json:"category_id"`
	SubcategoryID ID     `json:"subcategory_id"`
	VideoIntroURL string `json:"video_intro_url,omitempty"`
}

// Chapter groups ordered lectures of a course.
type Chapter struct {
	ID       ID        `json:"id"`
	Title    string    `json:"title"`
	Order    ID        `json:"order"`
	CourseID ID        `json:"course_id"`
	Lectures []Lecture `json:"lectures"`
}

// Lecture is a single video unit.
type Lecture struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	VideoURL    string `json:"video_url"`
	Duration    string `json:"duration,omitempty"`
	OrderIndex  ID     `json:"order_index"`
	ChapterID   ID     `json:"chapter_id"`
	CourseID    ID     `json:"course_id"`
}

// CourseDetail is a course with its chapter and lecture tree.
type CourseDetail struct {
	Course   Course    `json:"course"`
	Chapters []Chapter `json:"chapters"`
}

// LectureCount returns the number of lectures across all chapters.
func (d CourseDetail) LectureCount() int {
	total := 0
	for _, chapter := range d.Chapters {
		total += len(chapter.Lectures)
	}
	return total
}

// HasLecture reports whether the lecture belongs to the course.
func (d CourseDetail) HasLecture(id ID) bool {
	for _, chapter := range d.Chapters {
		for _, lecture := range chapter.Lectures {
			if lecture.ID == id {
				return true
			}
		}
	}
	return false
}

// Category is a top-level catalog grouping.
type Category struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// CatalogSort orders the catalog by price.
type CatalogSort string

const (
	CatalogSortNone CatalogSort = ""
	CatalogSortAsc  CatalogSort = "asc"
	CatalogSortDesc CatalogSort = "desc"
)

// CatalogFilter narrows the public catalog. Filtering happens over the full fetched set.
type CatalogFilter struct {
	Search     string
	CategoryID ID
	Sort       CatalogSort
	Page       int
}
