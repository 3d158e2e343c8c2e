package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coursemart-api/internal/dto"
	"github.com/noah-isme/coursemart-api/internal/middleware"
	"github.com/noah-isme/coursemart-api/internal/models"
	"github.com/noah-isme/coursemart-api/internal/service"
	appErrors "github.com/noah-isme/coursemart-api/pkg/errors"
)

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func asUser(c *gin.Context, id models.ID, role models.UserRole) {
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: id, Role: role})
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type cartServiceMock struct {
	snapshot  models.CartSnapshot
	notice    string
	err       error
	removedID models.ID
	added     models.AddToCartRequest
}

func (m *cartServiceMock) Load(ctx context.Context, userID models.ID) models.CartSnapshot {
	return m.snapshot
}

func (m *cartServiceMock) Add(ctx context.Context, userID models.ID, req models.AddToCartRequest) (models.CartSnapshot, error) {
	m.added = req
	return m.snapshot, m.err
}

func (m *cartServiceMock) Remove(ctx context.Context, userID models.ID, courseID models.ID) (models.CartSnapshot, string, error) {
	m.removedID = courseID
	return m.snapshot, m.notice, m.err
}

func TestCartHandlerRequiresUser(t *testing.T) {
	h := NewCartHandler(&cartServiceMock{})
	c, w := newGinContext(http.MethodGet, "/cart", nil)
	h.Get(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCartHandlerRemoveCarriesNotice(t *testing.T) {
	mock := &cartServiceMock{
		snapshot: models.CartSnapshot{Items: []models.CartItem{{ID: 2, CourseID: 11, Price: 2500}}, TotalPrice: 2500},
		notice:   "Removed from cart!",
	}
	h := NewCartHandler(mock)
	c, w := newGinContext(http.MethodDelete, "/cart/items/10", nil)
	c.Params = gin.Params{{Key: "courseId", Value: "10"}}
	asUser(c, 5, models.RoleStudent)

	h.Remove(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ID(10), mock.removedID)
	env := decode(t, w)
	assert.Equal(t, "Removed from cart!", env.Meta["notice"])
}

func TestCartHandlerAddSurfacesRemoteFailure(t *testing.T) {
	mock := &cartServiceMock{err: appErrors.Clone(appErrors.ErrUpstream, "Failed to add to cart: Course already in cart")}
	h := NewCartHandler(mock)
	body, _ := json.Marshal(models.AddToCartRequest{CourseID: 10})
	c, w := newGinContext(http.MethodPost, "/cart/items", body)
	asUser(c, 5, models.RoleStudent)

	h.Add(c)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, models.ID(10), mock.added.CourseID)
	assert.Equal(t, "Failed to add to cart: Course already in cart", decode(t, w).Error.Message)
}

type checkoutServiceMock struct {
	submission dto.BankSubmission
	submitErr  error
	complete   dto.PaystackCompleteRequest
}

func (m *checkoutServiceMock) View(ctx context.Context, userID models.ID) (*dto.CheckoutView, error) {
	return &dto.CheckoutView{}, nil
}

func (m *checkoutServiceMock) SelectMethod(ctx context.Context, userID models.ID, req dto.SelectMethodRequest) (*dto.CheckoutView, error) {
	return &dto.CheckoutView{}, nil
}

func (m *checkoutServiceMock) InitPaystack(ctx context.Context, userID models.ID, req dto.PaystackInitRequest) (*dto.PaystackWidgetConfig, error) {
	return &dto.PaystackWidgetConfig{Email: req.Email, Amount: 750000, Reference: "ref-1"}, nil
}

func (m *checkoutServiceMock) CancelPaystack(ctx context.Context, userID models.ID) string {
	return "Payment window closed."
}

func (m *checkoutServiceMock) CompletePaystack(ctx context.Context, userID models.ID, req dto.PaystackCompleteRequest) (*dto.CheckoutConfirmation, error) {
	m.complete = req
	return &dto.CheckoutConfirmation{Reference: req.Reference, Status: dto.CheckoutStatusCompleted, Message: "Payment successful!"}, nil
}

func (m *checkoutServiceMock) ProceedBank(ctx context.Context, userID models.ID) (*dto.CheckoutView, error) {
	return &dto.CheckoutView{}, nil
}

func (m *checkoutServiceMock) SubmitBank(ctx context.Context, userID models.ID, submission dto.BankSubmission) (*dto.CheckoutConfirmation, error) {
	m.submission = submission
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return &dto.CheckoutConfirmation{Reference: "ref-1", Status: dto.CheckoutStatusPending, Message: "Marked for manual review."}, nil
}

func multipartBody(t *testing.T, fields map[string]string, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if filename != "" {
		part, err := writer.CreateFormFile(evidenceField, filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestCheckoutHandlerSubmitBankMultipart(t *testing.T) {
	mock := &checkoutServiceMock{}
	h := NewCheckoutHandler(mock, 16)
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	body, contentType := multipartBody(t, map[string]string{
		"email":        "ada@example.com",
		"full_name":    "Ada Lovelace",
		"phone_number": "+2348012345678",
	}, "proof.png", append(png, make([]byte, 32)...))

	c, w := newGinContext(http.MethodPost, "/checkout/bank/submit", nil)
	c.Request, _ = http.NewRequest(http.MethodPost, "/checkout/bank/submit", body)
	c.Request.Header.Set("Content-Type", contentType)
	asUser(c, 5, models.RoleStudent)

	h.SubmitBank(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Ada Lovelace", mock.submission.FullName)
	assert.Equal(t, "proof.png", mock.submission.Evidence.Filename)
	assert.Equal(t, int64(40), mock.submission.Evidence.Size)
	assert.Len(t, mock.submission.Evidence.Data, 17)
	assert.Equal(t, "Marked for manual review.", decode(t, w).Meta["notice"])
}

func TestCheckoutHandlerSubmitBankWithoutFile(t *testing.T) {
	mock := &checkoutServiceMock{submitErr: appErrors.Clone(appErrors.ErrValidation, "Please fill in all required fields.")}
	h := NewCheckoutHandler(mock, 0)
	body, contentType := multipartBody(t, map[string]string{"email": "ada@example.com"}, "", nil)

	c, w := newGinContext(http.MethodPost, "/checkout/bank/submit", nil)
	c.Request, _ = http.NewRequest(http.MethodPost, "/checkout/bank/submit", body)
	c.Request.Header.Set("Content-Type", contentType)
	asUser(c, 5, models.RoleStudent)

	h.SubmitBank(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, mock.submission.Evidence.Data)
}

func TestCheckoutHandlerSubmitBankRejectsOversizeBody(t *testing.T) {
	mock := &checkoutServiceMock{}
	h := NewCheckoutHandler(mock, 16)
	body, contentType := multipartBody(t, map[string]string{"email": "ada@example.com"}, "proof.png", make([]byte, evidenceFormHeadroom+1024))

	c, w := newGinContext(http.MethodPost, "/checkout/bank/submit", nil)
	c.Request, _ = http.NewRequest(http.MethodPost, "/checkout/bank/submit", body)
	c.Request.Header.Set("Content-Type", contentType)
	asUser(c, 5, models.RoleStudent)

	h.SubmitBank(c)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "File size must be less than 5MB.", decode(t, w).Error.Message)
	assert.Empty(t, mock.submission.Email)
}

func TestCheckoutHandlerCompletePaystack(t *testing.T) {
	mock := &checkoutServiceMock{}
	h := NewCheckoutHandler(mock, 0)
	body, _ := json.Marshal(dto.PaystackCompleteRequest{Email: "ada@example.com", Reference: "ref-1"})
	c, w := newGinContext(http.MethodPost, "/checkout/paystack/complete", body)
	asUser(c, 5, models.RoleStudent)

	h.CompletePaystack(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ref-1", mock.complete.Reference)
	assert.Equal(t, "Payment successful!", decode(t, w).Meta["notice"])
}

type progressServiceMock struct {
	lectureID   models.ID
	currentTime float64
	duration    float64
}

func (m *progressServiceMock) EnrolledCourses(ctx context.Context, userID models.ID) ([]models.EnrolledCourse, error) {
	return nil, nil
}

func (m *progressServiceMock) Open(ctx context.Context, userID models.ID, slug string) (*models.CourseProgress, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
}

func (m *progressServiceMock) ObservePlayback(ctx context.Context, userID models.ID, slug string, lectureID models.ID, currentTime, duration float64) (*models.PlaybackResult, error) {
	m.lectureID, m.currentTime, m.duration = lectureID, currentTime, duration
	return &models.PlaybackResult{LectureID: lectureID, Marked: true}, nil
}

func (m *progressServiceMock) Reset(ctx context.Context, userID models.ID, slug string, lectureID models.ID) (*models.PlaybackResult, error) {
	return &models.PlaybackResult{LectureID: lectureID}, nil
}

func TestStudentHandlerPlayback(t *testing.T) {
	mock := &progressServiceMock{}
	h := NewStudentHandler(mock)
	body, _ := json.Marshal(dto.PlaybackTick{CurrentTime: 91, Duration: 100})
	c, w := newGinContext(http.MethodPost, "/student/courses/go/lectures/101/progress", body)
	c.Params = gin.Params{{Key: "slug", Value: "go"}, {Key: "lectureId", Value: "101"}}
	asUser(c, 5, models.RoleStudent)

	h.Playback(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ID(101), mock.lectureID)
	assert.Equal(t, 91.0, mock.currentTime)

	c, w = newGinContext(http.MethodPost, "/student/courses/go/lectures/abc/progress", body)
	c.Params = gin.Params{{Key: "slug", Value: "go"}, {Key: "lectureId", Value: "abc"}}
	asUser(c, 5, models.RoleStudent)
	h.Playback(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = newGinContext(http.MethodGet, "/student/courses/missing", nil)
	c.Params = gin.Params{{Key: "slug", Value: "missing"}}
	asUser(c, 5, models.RoleStudent)
	h.Course(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type adminResourceMock struct {
	fields url.Values
	id     models.ID
}

func (m *adminResourceMock) List(ctx context.Context, resource models.AdminResource) ([]models.ResourceRecord, error) {
	return []models.ResourceRecord{{"id": 1}}, nil
}

func (m *adminResourceMock) Save(ctx context.Context, resource models.AdminResource, id models.ID, fields url.Values) ([]models.ResourceRecord, error) {
	m.fields, m.id = fields, id
	return []models.ResourceRecord{{"id": 1}}, nil
}

func (m *adminResourceMock) Delete(ctx context.Context, resource models.AdminResource, id models.ID) ([]models.ResourceRecord, error) {
	return nil, errors.New("boom")
}

type userServiceMock struct {
	actor, target models.ID
}

func (m *userServiceMock) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	return nil, nil
}

func (m *userServiceMock) UpdateRole(ctx context.Context, actorID, userID models.ID, req models.UpdateRoleRequest) ([]models.User, error) {
	m.actor, m.target = actorID, userID
	return []models.User{{ID: userID, Role: req.Role}}, nil
}

func TestAdminHandlerCreateResourceReadsForm(t *testing.T) {
	mock := &adminResourceMock{}
	h := NewAdminHandler(mock, &userServiceMock{})
	c, w := newGinContext(http.MethodPost, "/admin/resources/categories", nil)
	c.Request, _ = http.NewRequest(http.MethodPost, "/admin/resources/categories", strings.NewReader("name=Programming"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Params = gin.Params{{Key: "resource", Value: "categories"}}

	h.CreateResource(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Programming", mock.fields.Get("name"))
	assert.Equal(t, models.ID(0), mock.id)
}

func TestAdminHandlerUpdateRoleUsesActor(t *testing.T) {
	mock := &userServiceMock{}
	h := NewAdminHandler(&adminResourceMock{}, mock)
	body, _ := json.Marshal(models.UpdateRoleRequest{Role: models.RoleStaff})
	c, w := newGinContext(http.MethodPut, "/admin/users/9/role", body)
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	asUser(c, 1, models.RoleAdmin)

	h.UpdateRole(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.ID(1), mock.actor)
	assert.Equal(t, models.ID(9), mock.target)
}

type transferServiceMock struct {
	filter models.TransferFilter
	format models.TransferExportFormat
}

func (m *transferServiceMock) List(ctx context.Context, filter models.TransferFilter) ([]models.Payment, error) {
	m.filter = filter
	return []models.Payment{}, nil
}

func (m *transferServiceMock) Verify(ctx context.Context, actorID, paymentID models.ID, req models.VerifyTransferRequest) (*models.TransferDecision, error) {
	return &models.TransferDecision{Message: "Payment verified successfully!", NotifyURL: "https://wa.me/234"}, nil
}

func (m *transferServiceMock) Export(ctx context.Context, filter models.TransferFilter, format models.TransferExportFormat) (*service.TransferExport, error) {
	m.filter, m.format = filter, format
	return &service.TransferExport{Filename: "bank_transfers_all.csv", ContentType: "text/csv", Data: []byte("Reference\n")}, nil
}

func TestTransferHandlerListDefaultsToPending(t *testing.T) {
	mock := &transferServiceMock{}
	h := NewTransferHandler(mock)
	c, w := newGinContext(http.MethodGet, "/admin/transfers", nil)
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TransferFilterPending, mock.filter)
}

func TestTransferHandlerVerifyAndExport(t *testing.T) {
	mock := &transferServiceMock{}
	h := NewTransferHandler(mock)
	body, _ := json.Marshal(models.VerifyTransferRequest{Status: models.PaymentStatusSuccess})
	c, w := newGinContext(http.MethodPost, "/admin/transfers/7/verify", body)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	asUser(c, 1, models.RoleAdmin)
	h.Verify(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Payment verified successfully!", decode(t, w).Meta["notice"])

	c, w = newGinContext(http.MethodGet, "/admin/transfers/export?format=CSV&filter=all", nil)
	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.TransferExportCSV, mock.format)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "bank_transfers_all.csv")
	assert.Equal(t, "Reference\n", w.Body.String())
}

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{
		"redis": func(ctx context.Context) error { return errors.New("connection refused") },
	})
	c, w := newGinContext(http.MethodGet, "/ready", nil)
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	h = NewMetricsHandler(nil, nil)
	c, w = newGinContext(http.MethodGet, "/ready", nil)
	h.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)
}
