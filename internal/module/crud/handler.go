// Package crud serves the list view, detail, create/edit forms and delete
// operations of one directory resource over the console API.
package crud

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/client"
	"github.com/simp-lee/amcham/internal/domain"
	"github.com/simp-lee/amcham/internal/form"
	"github.com/simp-lee/amcham/internal/listview"
	"github.com/simp-lee/amcham/internal/middleware"
	"github.com/simp-lee/amcham/internal/pkg"
)

// DefaultMaxUpload bounds multipart bodies (logo and banner images).
const DefaultMaxUpload = 8 << 20

// Backend is the resource client behind a handler. *client.Resource[T]
// satisfies it.
type Backend[T domain.Record] interface {
	listview.Source[T]
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, rec T, files ...client.Upload) (T, error)
	Update(ctx context.Context, id int64, rec T, files ...client.Upload) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Config binds a handler to its resource.
type Config[T domain.Record, V any] struct {
	Backend Backend[T]
	List    *listview.Controller[T, V]
	// FilterKeys are the query parameters forwarded to the list view.
	FilterKeys []string
	Schema     *form.Schema
	// Decode builds the record sent to the backend from trimmed form values.
	// id is 0 on create.
	Decode func(id int64, v form.Values) T
	// Encode fills an edit form from the stored record.
	Encode func(rec T) form.Values
	// Uploads lists the multipart file fields accepted on create and update.
	Uploads   []string
	MaxUpload int64
	Logger    *slog.Logger
}

// Handler serves one resource.
type Handler[T domain.Record, V any] struct {
	cfg Config[T, V]
	log *slog.Logger
}

// NewHandler returns a handler for cfg.
func NewHandler[T domain.Record, V any](cfg Config[T, V]) *Handler[T, V] {
	if cfg.Backend == nil || cfg.List == nil || cfg.Schema == nil || cfg.Decode == nil {
		panic("crud.NewHandler: backend, list, schema and decode are required")
	}
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = DefaultMaxUpload
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Handler[T, V]{cfg: cfg, log: log.With(slog.String("form", cfg.Schema.Name()))}
}

// Register mounts the routes under /<name>. Reads go on public, mutations on
// private (session required).
func (h *Handler[T, V]) Register(public, private *gin.RouterGroup, name string) {
	base := "/" + name
	public.GET(base, h.List)
	public.GET(base+"/:id", h.Get)
	public.POST(base+"/validate", h.Validate)

	private.POST(base, h.Create)
	private.PUT(base+"/:id", h.Update)
	private.DELETE(base+"/:id", h.Delete)
}

// List handles GET /<name>: applies search, filters and page from the query
// and answers with the list view state rendered in the request locale.
func (h *Handler[T, V]) List(c *gin.Context) {
	req := pkg.ParseListRequest(c, h.cfg.FilterKeys...)
	ctx := c.Request.Context()

	var err error
	if req.Refresh && emptyPatch(req.Patch) {
		err = h.cfg.List.Refresh(ctx)
	} else {
		err = h.cfg.List.Apply(ctx, req.Patch)
	}
	if err != nil {
		pkg.Error(c, err)
		return
	}
	if loc, ok := middleware.LocaleFrom(c); ok {
		pkg.List(c, h.cfg.List.StateIn(loc))
		return
	}
	pkg.List(c, h.cfg.List.State())
}

// Get handles GET /<name>/:id and returns the record with its edit-form values.
func (h *Handler[T, V]) Get(c *gin.Context) {
	id, ok := pkg.ParseID(c)
	if !ok {
		pkg.Error(c, domain.NewAPIError(http.StatusBadRequest, "invalid id", nil))
		return
	}
	rec, err := h.cfg.Backend.Get(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	data := gin.H{"record": rec}
	if h.cfg.Encode != nil {
		data["values"] = h.cfg.Encode(rec)
	}
	pkg.Success(c, data)
}

// Create handles POST /<name>.
func (h *Handler[T, V]) Create(c *gin.Context) {
	values, uploads, err := h.readBody(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var created T
	ctrl := h.cfg.Schema.New(nil, func(ctx context.Context, v form.Values) error {
		rec, err := h.cfg.Backend.Create(ctx, h.cfg.Decode(0, v), uploads...)
		created = rec
		return err
	}, form.WithRefresher(h.cfg.List), form.WithLogger(h.log))

	if err := submit(c.Request.Context(), ctrl, values); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Created(c, created)
}

// Update handles PUT /<name>/:id. Fields absent from the body keep their
// stored value.
func (h *Handler[T, V]) Update(c *gin.Context) {
	id, ok := pkg.ParseID(c)
	if !ok {
		pkg.Error(c, domain.NewAPIError(http.StatusBadRequest, "invalid id", nil))
		return
	}
	values, uploads, err := h.readBody(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	ctx := c.Request.Context()
	var initial form.Values
	if h.cfg.Encode != nil {
		current, err := h.cfg.Backend.Get(ctx, id)
		if err != nil {
			pkg.Error(c, err)
			return
		}
		initial = h.cfg.Encode(current)
	}

	var updated T
	ctrl := h.cfg.Schema.New(initial, func(ctx context.Context, v form.Values) error {
		rec, err := h.cfg.Backend.Update(ctx, id, h.cfg.Decode(id, v), uploads...)
		updated = rec
		return err
	}, form.WithRefresher(h.cfg.List), form.WithLogger(h.log))

	if err := submit(ctx, ctrl, values); err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, updated)
}

// Delete handles DELETE /<name>/:id, then re-reads the current page.
func (h *Handler[T, V]) Delete(c *gin.Context) {
	id, ok := pkg.ParseID(c)
	if !ok {
		pkg.Error(c, domain.NewAPIError(http.StatusBadRequest, "invalid id", nil))
		return
	}
	ctx := c.Request.Context()
	if err := h.cfg.Backend.Delete(ctx, id); err != nil {
		pkg.Error(c, err)
		return
	}
	if err := h.cfg.List.Refresh(ctx); err != nil {
		h.log.WarnContext(ctx, "list refresh after delete failed", slog.Any("error", err))
	}
	pkg.Success(c, nil)
}

// ValidateRequest is the body of POST /<name>/validate: the values typed so
// far and the fields the user has left.
type ValidateRequest struct {
	Values  map[string]any `json:"values"`
	Touched []string       `json:"touched"`
}

// FieldState reports the live validation state of one field.
type FieldState struct {
	Invalid bool   `json:"invalid"`
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message,omitempty"`
}

// ValidateResponse is the body returned by POST /<name>/validate.
type ValidateResponse struct {
	Valid  bool                  `json:"valid"`
	Fields map[string]FieldState `json:"fields"`
}

// Validate handles POST /<name>/validate. Only fields the user touched or
// changed are reported invalid; Valid covers the whole form.
func (h *Handler[T, V]) Validate(c *gin.Context) {
	var req ValidateRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	ctrl := h.cfg.Schema.New(nil, nil)
	for name, v := range req.Values {
		ctrl.Set(name, client.Stringify(v))
	}
	for _, name := range req.Touched {
		ctrl.Touch(name)
	}

	rules := ctrl.Errors()
	resp := ValidateResponse{Valid: ctrl.Valid(), Fields: make(map[string]FieldState)}
	for _, f := range h.cfg.Schema.Fields() {
		state := FieldState{Invalid: ctrl.IsFieldInvalid(f.Name)}
		if rule, ok := rules[f.Name]; ok {
			tag, param, _ := strings.Cut(rule, "=")
			state.Rule = rule
			state.Message = pkg.RuleMessage(tag, param)
		}
		resp.Fields[f.Name] = state
	}
	pkg.Success(c, resp)
}

func submit(ctx context.Context, ctrl *form.Controller, values form.Values) error {
	for name, v := range values {
		ctrl.Set(name, v)
	}
	return ctrl.Submit(ctx)
}

// readBody accepts a JSON object or a multipart form. Multipart file parts
// named in cfg.Uploads become client uploads.
func (h *Handler[T, V]) readBody(c *gin.Context) (form.Values, []client.Upload, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		return h.readMultipart(c)
	}

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, nil, domain.NewAPIError(http.StatusBadRequest, "invalid request body", err)
	}
	values := make(form.Values, len(body))
	for k, v := range body {
		values[k] = client.Stringify(v)
	}
	return values, nil, nil
}

func (h *Handler[T, V]) readMultipart(c *gin.Context) (form.Values, []client.Upload, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxUpload)
	mf, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, domain.NewAPIError(http.StatusRequestEntityTooLarge, domain.ErrTooLarge.Message, err)
		}
		return nil, nil, domain.NewAPIError(http.StatusBadRequest, "invalid multipart body", err)
	}

	values := make(form.Values, len(mf.Value))
	for k, vs := range mf.Value {
		if len(vs) > 0 {
			values[k] = vs[0]
		}
	}

	var uploads []client.Upload
	for _, field := range h.cfg.Uploads {
		headers := mf.File[field]
		if len(headers) == 0 {
			continue
		}
		u, err := readUpload(field, headers[0])
		if err != nil {
			return nil, nil, domain.NewAPIError(http.StatusBadRequest, "invalid upload", err)
		}
		uploads = append(uploads, u)
	}
	return values, uploads, nil
}

func readUpload(field string, fh *multipart.FileHeader) (client.Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return client.Upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return client.Upload{}, err
	}
	return client.Upload{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func emptyPatch(p listview.Patch) bool {
	return p.Term == nil && p.Filter == nil && p.Page == nil && p.Size == nil
}
