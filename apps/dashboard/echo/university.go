package echoapi

import (
	"fmt"
	"net/http"
	"net/mail"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/unidash/unidash/core"
	"github.com/unidash/unidash/core/mcq"
	"github.com/unidash/unidash/core/university"
)

type universityApi struct {
	svc     *university.Service
	mailSvc core.EmailService
	conf    *core.Config

	mu     sync.Mutex
	views  map[string]*university.ListController
	drafts map[string]*university.Draft
	logger core.Logger
}

func registerUniversityAPI(g *echo.Group, opts *Options) {
	api := universityApi{
		svc:     opts.UniSvc,
		mailSvc: opts.MailSvc,
		conf:    opts.Conf,
		views:   make(map[string]*university.ListController),
		drafts:  make(map[string]*university.Draft),
		logger:  opts.Logger,
	}

	// list view sessions; one controller per open dashboard tab
	vg := g.Group("/views")
	vg.POST("", api.createView)
	dg := vg.Group("/:id")
	dg.GET("", api.retrieveView)
	dg.DELETE("", api.destroyView)
	dg.PUT("/tab", api.setTab)
	dg.PUT("/page", api.setPage)
	dg.PUT("/limit", api.setLimit)
	dg.PUT("/search", api.setSearch)
	dg.PUT("/filters", api.setFilters)
	dg.PUT("/field-search", api.fieldSearch)
	dg.PUT("/selection", api.setSelection)
	dg.POST("/transition", api.transition)
	dg.POST("/delete", api.permanentlyDelete)
	dg.POST("/delete/cancel", api.cancelDelete)
	dg.POST("/confirm-all", api.confirmAll)

	// catalog passthrough
	ug := g.Group("/universities")
	ug.GET("", api.query)
	ug.POST("", api.create)
	ug.GET("/search", api.searchByField)
	ug.POST("/bulk-upload", api.bulkUpload)
	ug.GET("/export", api.export)
	ug.GET("/:id", api.retrieve)
	ug.PUT("/:id", api.update)
	ug.DELETE("/:id", api.destroy)

	// creation workflow
	cg := g.Group("/drafts")
	cg.POST("", api.createDraft)
	cdg := cg.Group("/:id")
	cdg.GET("", api.retrieveDraft)
	cdg.DELETE("", api.destroyDraft)
	cdg.PUT("/basic-info", api.draftBasicInfo)
	cdg.POST("/programs", api.draftAddProgram)
	cdg.PUT("/programs/:pos", api.draftUpdateProgram)
	cdg.DELETE("/programs/:pos", api.draftRemoveProgram)
	cdg.PUT("/merit-formula", api.draftMeritFormula)
	cdg.POST("/submit", api.submitDraft)

	// CSV templates for bulk uploads
	tg := g.Group("/templates")
	tg.GET("/universities.csv", api.universityTemplate)
	tg.GET("/mcqs.csv", api.mcqTemplate)
}

// View handlers
//
// Remote failures surface inside the returned view state (the controller
// keeps its last snapshot and records a user-visible error), so these
// handlers only bubble up binding and validation errors.

// viewJSON renders the session snapshot. Validation failures bubble up to
// the error handler; anything else already landed in the view state and
// still renders as a 200.
func viewJSON(ctx echo.Context, ctrl *university.ListController, err error) error {
	if err != nil && isUserError(err) {
		return err
	}
	return ctx.JSON(http.StatusOK, ViewResponse{ID: ctx.Param("id"), State: ctrl.State()})
}

func isUserError(err error) bool {
	switch errors.Cause(err).(type) {
	case *core.ValidationError, validator.ValidationErrors, *echo.HTTPError:
		return true
	}
	return false
}

func (api *universityApi) view(ctx echo.Context) (*university.ListController, error) {
	api.mu.Lock()
	defer api.mu.Unlock()
	ctrl, ok := api.views[ctx.Param("id")]
	if !ok {
		return nil, errHttpNotFound
	}
	return ctrl, nil
}

func (api *universityApi) createView(ctx echo.Context) error {
	ctrl := university.NewListController(api.svc, api.logger)
	_ = ctrl.Fetch(ctx.Request().Context()) // failure lands in the view state

	id := uuid.New().String()
	api.mu.Lock()
	api.views[id] = ctrl
	api.mu.Unlock()

	return ctx.JSON(http.StatusCreated, ViewResponse{ID: id, State: ctrl.State()})
}

func (api *universityApi) retrieveView(ctx echo.Context) error {
	ctrl, err := api.view(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ViewResponse{ID: ctx.Param("id"), State: ctrl.State()})
}

func (api *universityApi) destroyView(ctx echo.Context) error {
	api.mu.Lock()
	delete(api.views, ctx.Param("id"))
	api.mu.Unlock()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *universityApi) setTab(ctx echo.Context) error {
	ctrl, err := api.view(ctx)
	if err != nil {
		return err
	}

	var data TabRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TabRequest")
	}
	if err := ctrl.SetTab(data.Tab); err != nil {
		return err
	}
	return viewJSON(ctx, ctrl, ctrl.Fetch(ctx.Request().Context()))
}

func (api *universityApi) setPage(ctx echo.Context) error {
	ctrl, err := api.view(ctx)
	if err != nil {
		return err
	}

	var data PageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PageRequest")
	}
	return viewJSON(ctx, ctrl, ctrl.SetPage(ctx.Request().Context(), data.Page))
}

func (api *universityApi) setLimit(ctx echo.Context) error {
	ctrl, err := api.view(ctx)
	if err != nil {
		return err
	}

	var data LimitRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LimitRequest")
	}
	return viewJSON(ctx, ctrl, ctrl.SetLimit(ctx.Request().Context(), data.Limit))
}

func (api *universityApi) setSearch(ctx echo.Context) error {
	ctrl, err := api.view(ctx)
	if err != nil {
		return err
	}

	var data SearchRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SearchRequest")
	}
	return viewJSON(ctx, ctrl, ctrl.SetSearch(ctx.Request().Context(), data.Search))
}

func (api *universityApi) setFilters(ctx echo.Context) error {
	ctrl, err := api.view(ctx)
	if err != nil {
		return err
	}

	var data FiltersRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FiltersRequest")
	}
	return viewJSON(ctx, ctrl, ctrl.SetFilters(ctx.Request().Context(), data.Filters))
}

func (api *universityApi) fieldSearch(ctx echo.Context) error {
	ctrl, err := api.view(ctx)
	if err != nil {
		return err
	}

	var data FieldSearchRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to FieldSearchRequest")
	}
	return viewJSON(ctx, ctrl, ctrl.SearchByField(ctx.Request().Context(), data.Key, data.Value))
}

func (api *universityApi) setSelection(ctx echo.Context) error {
	ctrl, err := api.view(ctx)
	if err != nil {
		return err
	}

	var data SelectionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SelectionRequest")
	}
	if data.All != nil {
		ctrl.SelectAll(*data.All)
	}
	ctrl.Select(data.Select...)
	ctrl.Deselect(data.Deselect...)
	return ctx.JSON(http.StatusOK, ViewResponse{ID: ctx.Param("id"), State: ctrl.State()})
}

func (api *universityApi) transition(ctx echo.Context) error {
	ctrl, err := api.view(ctx)
	if err != nil {
		return err
	}

	var data TransitionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TransitionRequest")
	}
	return viewJSON(ctx, ctrl, ctrl.Transition(ctx.Request().Context(), data.Status))
}

func (api *universityApi) permanentlyDelete(ctx echo.Context) error {
	ctrl, err := api.view(ctx)
	if err != nil {
		return err
	}
	return viewJSON(ctx, ctrl, ctrl.PermanentlyDelete(ctx.Request().Context()))
}

func (api *universityApi) cancelDelete(ctx echo.Context) error {
	ctrl, err := api.view(ctx)
	if err != nil {
		return err
	}
	ctrl.CancelDelete()
	return ctx.JSON(http.StatusOK, ViewResponse{ID: ctx.Param("id"), State: ctrl.State()})
}

func (api *universityApi) confirmAll(ctx echo.Context) error {
	ctrl, err := api.view(ctx)
	if err != nil {
		return err
	}
	return viewJSON(ctx, ctrl, ctrl.ConfirmAll(ctx.Request().Context()))
}

// Catalog handlers

func (api *universityApi) query(ctx echo.Context) error {
	var query ListRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to ListRequest")
	}

	page, err := api.svc.List(ctx.Request().Context(), university.ListQuery{
		Page:   query.Page,
		Limit:  query.Limit,
		Search: query.Search,
		Sector: query.Sector,
		Status: query.Status,
	})
	if err != nil {
		return errors.Wrap(err, "listing universities")
	}
	if page.Data == nil {
		page.Data = []university.University{}
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *universityApi) create(ctx echo.Context) error {
	var data university.NewUniversity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUniversity")
	}

	uni, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating university")
	}
	return ctx.JSON(http.StatusCreated, uni)
}

func (api *universityApi) retrieve(ctx echo.Context) error {
	uni, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting university")
	}
	return ctx.JSON(http.StatusOK, uni)
}

func (api *universityApi) update(ctx echo.Context) error {
	var data university.UpdateUniversity
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUniversity")
	}
	if data.IsZero() {
		return api.retrieve(ctx)
	}

	uni, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating university")
	}
	return ctx.JSON(http.StatusOK, uni)
}

func (api *universityApi) destroy(ctx echo.Context) error {
	if err := api.svc.Remove(ctx.Request().Context(), []string{ctx.Param("id")}); err != nil {
		return errors.Wrap(err, "deleting university")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *universityApi) searchByField(ctx echo.Context) error {
	key := university.FilterKey(ctx.QueryParam("field"))
	unis, err := api.svc.SearchByField(ctx.Request().Context(), key, ctx.QueryParam("q"))
	if err != nil {
		return errors.Wrap(err, "searching universities by field")
	}
	if unis == nil {
		unis = []university.University{}
	}
	return ctx.JSON(http.StatusOK, unis)
}

func (api *universityApi) bulkUpload(ctx echo.Context) error {
	fileHdr, err := ctx.FormFile("file")
	if err != nil {
		return core.NewValidationError(errors.New("a CSV file is required"),
			core.FieldError{Field: "file", Error: "a CSV file is required"})
	}
	file, err := fileHdr.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer file.Close()

	res, err := api.svc.BulkUpload(ctx.Request().Context(), fileHdr.Filename, file)
	if err != nil {
		return errors.Wrap(err, "bulk uploading universities")
	}

	api.sendBulkUploadSummary(fileHdr.Filename, res)
	return ctx.JSON(http.StatusOK, res)
}

func (api *universityApi) sendBulkUploadSummary(filename string, res university.BulkResult) {
	if api.mailSvc == nil || api.conf.AdminEmail == "" {
		return
	}
	api.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: api.conf.AdminEmail}},
		Subject: fmt.Sprintf("Bulk upload processed: %s", filename),
		BodyStr: fmt.Sprintf(
			"The bulk upload %q finished.\n\nCreated: %d\nUpdated: %d\nFailed: %d\n",
			filename, res.Created, res.Updated, res.Failed,
		),
	})
}

func (api *universityApi) export(ctx echo.Context) error {
	format := ctx.QueryParam("format")
	if format == "" {
		format = university.ExportCSV
	}

	data, err := api.svc.Export(ctx.Request().Context(), format)
	if err != nil {
		return errors.Wrap(err, "exporting universities")
	}

	filename := "universities." + exportExt(format)
	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return ctx.Blob(http.StatusOK, exportContentType(format), data)
}

func exportExt(format string) string {
	if format == university.ExportExcel {
		return "xls"
	}
	return "csv"
}

func exportContentType(format string) string {
	if format == university.ExportExcel {
		return "application/vnd.ms-excel"
	}
	return "text/csv"
}

// Draft handlers

func (api *universityApi) draft(ctx echo.Context) (*university.Draft, error) {
	api.mu.Lock()
	defer api.mu.Unlock()
	d, ok := api.drafts[ctx.Param("id")]
	if !ok {
		return nil, errHttpNotFound
	}
	return d, nil
}

func (api *universityApi) draftResponse(ctx echo.Context, d *university.Draft) error {
	return ctx.JSON(http.StatusOK, DraftResponse{
		ID:     ctx.Param("id"),
		Step:   d.Step(),
		Record: d.Record(),
	})
}

func (api *universityApi) createDraft(ctx echo.Context) error {
	d := university.NewDraft()
	id := uuid.New().String()
	api.mu.Lock()
	api.drafts[id] = d
	api.mu.Unlock()

	return ctx.JSON(http.StatusCreated, DraftResponse{ID: id, Step: d.Step(), Record: d.Record()})
}

func (api *universityApi) retrieveDraft(ctx echo.Context) error {
	d, err := api.draft(ctx)
	if err != nil {
		return err
	}
	return api.draftResponse(ctx, d)
}

func (api *universityApi) destroyDraft(ctx echo.Context) error {
	api.mu.Lock()
	delete(api.drafts, ctx.Param("id"))
	api.mu.Unlock()
	return ctx.NoContent(http.StatusNoContent)
}

func (api *universityApi) draftBasicInfo(ctx echo.Context) error {
	d, err := api.draft(ctx)
	if err != nil {
		return err
	}

	var data university.BasicInfo
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BasicInfo")
	}
	if err := d.SetBasicInfo(data); err != nil {
		return err
	}
	return api.draftResponse(ctx, d)
}

func (api *universityApi) draftAddProgram(ctx echo.Context) error {
	d, err := api.draft(ctx)
	if err != nil {
		return err
	}

	var data university.NewProgram
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProgram")
	}
	if err := d.AddProgram(data); err != nil {
		return err
	}
	return api.draftResponse(ctx, d)
}

func (api *universityApi) draftUpdateProgram(ctx echo.Context) error {
	d, err := api.draft(ctx)
	if err != nil {
		return err
	}

	pos, err := intParam(ctx, "pos")
	if err != nil {
		return err
	}
	var data university.NewProgram
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProgram")
	}
	if err := d.UpdateProgram(pos, data); err != nil {
		return err
	}
	return api.draftResponse(ctx, d)
}

func (api *universityApi) draftRemoveProgram(ctx echo.Context) error {
	d, err := api.draft(ctx)
	if err != nil {
		return err
	}

	pos, err := intParam(ctx, "pos")
	if err != nil {
		return err
	}
	if err := d.RemoveProgram(pos); err != nil {
		return err
	}
	return api.draftResponse(ctx, d)
}

func (api *universityApi) draftMeritFormula(ctx echo.Context) error {
	d, err := api.draft(ctx)
	if err != nil {
		return err
	}

	var data university.MeritFormula
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MeritFormula")
	}
	if err := d.SetMeritFormula(data); err != nil {
		return err
	}
	return api.draftResponse(ctx, d)
}

func (api *universityApi) submitDraft(ctx echo.Context) error {
	d, err := api.draft(ctx)
	if err != nil {
		return err
	}

	uni, err := d.Submit(ctx.Request().Context(), api.svc)
	if err != nil {
		return err
	}

	api.mu.Lock()
	delete(api.drafts, ctx.Param("id"))
	api.mu.Unlock()
	return ctx.JSON(http.StatusCreated, uni)
}

// Template handlers

func (api *universityApi) universityTemplate(ctx echo.Context) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, university.CSVTemplateFilename))
	return ctx.Blob(http.StatusOK, "text/csv", []byte(university.CSVTemplate))
}

func (api *universityApi) mcqTemplate(ctx echo.Context) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, mcq.CSVTemplateFilename))
	return ctx.Blob(http.StatusOK, "text/csv", []byte(mcq.CSVTemplate))
}
