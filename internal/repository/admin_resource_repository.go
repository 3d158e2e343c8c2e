package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/pkg/commerce"
)

// resourceEndpoints locates the CRUD quartet of a back-office resource. The commerce
// API names them per resource, so they are listed explicitly.
type resourceEndpoints struct {
	list    string
	listKey string
	create  string
	update  string
	delete  string
}

var adminEndpoints = map[models.AdminResource]resourceEndpoints{
	models.ResourceCategories: {
		list:    "/api/categories/fetch_categories.php",
		listKey: "categories",
		create:  "/api/categories/create_category.php",
		update:  "/api/categories/update_category.php",
		delete:  "/api/categories/delete.php",
	},
	models.ResourceSubcategories: {
		list:    "/api/subcategories/fetch.php",
		listKey: "subcategories",
		create:  "/api/subcategories/create_subcategory.php",
		update:  "/api/subcategories/update_subcategory.php",
		delete:  "/api/subcategories/delete_subcategory.php",
	},
	models.ResourceCourses: {
		list:    "/api/courses/get_courses.php",
		listKey: "courses",
		create:  "/api/courses/create_course.php",
		update:  "/api/courses/update_course.php",
		delete:  "/api/courses/delete_course.php",
	},
	models.ResourceChapters: {
		list:    "/api/chapters/fetch.php",
		listKey: "chapters",
		create:  "/api/chapters/create_subcategory.php",
		update:  "/api/chapters/update_chapter.php",
		delete:  "/api/chapters/delete_chapter.php",
	},
	models.ResourceLectures: {
		list:    "/api/lectures/fetch_lectures.php",
		listKey: "lectures",
		create:  "/api/lectures/create_lecture.php",
		update:  "/api/lectures/edit_lecture.php",
		delete:  "/api/lectures/delete_lecture.php",
	},
}

// AdminResourceRepository runs generic CRUD against the commerce API.
type AdminResourceRepository struct {
	client *commerce.Client
}

// NewAdminResourceRepository constructs the repository.
func NewAdminResourceRepository(client *commerce.Client) *AdminResourceRepository {
	return &AdminResourceRepository{client: client}
}

// List fetches every record of the resource.
func (r *AdminResourceRepository) List(ctx context.Context, resource models.AdminResource) ([]models.ResourceRecord, error) {
	endpoints, err := endpointsFor(resource)
	if err != nil {
		return nil, err
	}
	var payload map[string]json.RawMessage
	if err := r.client.GetJSON(ctx, endpoints.list, nil, &payload); err != nil {
		return nil, fmt.Errorf("list %s: %w", resource, err)
	}

	var status commerce.Status
	if raw, ok := payload["status"]; ok {
		_ = json.Unmarshal(raw, &status.Status)
	}
	if raw, ok := payload["message"]; ok {
		_ = json.Unmarshal(raw, &status.Message)
	}
	if status.Reported() {
		if err := commerce.Check(endpoints.list, status); err != nil {
			return nil, fmt.Errorf("list %s: %w", resource, err)
		}
	}

	records := []models.ResourceRecord{}
	if raw, ok := payload[endpoints.listKey]; ok && len(raw) > 0 {
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, fmt.Errorf("decode %s: %w", resource, err)
		}
	}
	return records, nil
}

// Create submits a new record.
func (r *AdminResourceRepository) Create(ctx context.Context, resource models.AdminResource, fields url.Values) error {
	endpoints, err := endpointsFor(resource)
	if err != nil {
		return err
	}
	return r.submit(ctx, endpoints.create, fields)
}

// Update submits changes for the record identified by id.
func (r *AdminResourceRepository) Update(ctx context.Context, resource models.AdminResource, id models.ID, fields url.Values) error {
	endpoints, err := endpointsFor(resource)
	if err != nil {
		return err
	}
	form := cloneValues(fields)
	form.Set("id", id.String())
	return r.submit(ctx, endpoints.update, form)
}

// Delete removes the record identified by id.
func (r *AdminResourceRepository) Delete(ctx context.Context, resource models.AdminResource, id models.ID) error {
	endpoints, err := endpointsFor(resource)
	if err != nil {
		return err
	}
	return r.submit(ctx, endpoints.delete, url.Values{"id": {id.String()}})
}

func (r *AdminResourceRepository) submit(ctx context.Context, path string, form url.Values) error {
	var ack commerce.Status
	if err := r.client.PostForm(ctx, path, form, &ack); err != nil {
		return err
	}
	return commerce.Check(path, ack)
}

func endpointsFor(resource models.AdminResource) (resourceEndpoints, error) {
	endpoints, ok := adminEndpoints[resource]
	if !ok {
		return resourceEndpoints{}, fmt.Errorf("unknown resource %q", resource)
	}
	return endpoints, nil
}

func cloneValues(values url.Values) url.Values {
	out := make(url.Values, len(values)+1)
	for k, v := range values {
		out[k] = append([]string(nil), v...)
	}
	return out
}
