package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"partsmcp/internal/decode"
	"partsmcp/internal/metrics"
	"partsmcp/internal/model"
	"partsmcp/internal/protocol"
	"partsmcp/internal/render"
)

var toolOrder = []string{
	protocol.ToolNameListCategories,
	protocol.ToolNameListManufacturers,
	protocol.ToolNameGetCategory,
	protocol.ToolNameGetManufacturer,
	protocol.ToolNameSearchManufacturer,
	protocol.ToolNameSearchSubcategories,
	protocol.ToolNameGetDatasheetURL,
	protocol.ToolNameGetPartImage,
	protocol.ToolNameSearchParts,
}

// toolHandler returns a *model.ValidationError to reject the call. Any other
// error is reported to the caller as text.
type toolHandler func(context.Context, map[string]any) (ToolResult, error)

type toolDefinition struct {
	Name        string
	Description string
	InputSchema *inputSchema
	handler     toolHandler
}

// ToolResult is the transport-neutral result of one tool call.
type ToolResult struct {
	Content []ContentItem
	IsError bool
}

type ContentItem struct {
	Type     string // "text" or "image"
	Text     string
	Data     string
	MIMEType string
}

type toolExecutionError struct {
	Code    string
	Message string
}

func textResult(text string) ToolResult {
	return ToolResult{Content: []ContentItem{{Type: "text", Text: text}}}
}

func newToolErrorResult(toolErr toolExecutionError) ToolResult {
	return ToolResult{
		IsError: true,
		Content: []ContentItem{
			{Type: "text", Text: fmt.Sprintf("ERROR: %s: %s", toolErr.Code, toolErr.Message)},
		},
	}
}

// Dispatcher routes tool calls to handlers over a catalog.
type Dispatcher struct {
	catalog model.Catalog
	images  model.ImageResolver
	logger  *zap.Logger
	tools   map[string]toolDefinition
}

func NewDispatcher(catalog model.Catalog, images model.ImageResolver, logger *zap.Logger) (*Dispatcher, error) {
	if catalog == nil {
		return nil, errors.New("catalog is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{catalog: catalog, images: images, logger: logger}
	tools, err := d.buildToolRegistry()
	if err != nil {
		return nil, err
	}
	d.tools = tools
	return d, nil
}

func (d *Dispatcher) buildToolRegistry() (map[string]toolDefinition, error) {
	none, err := newInputSchema[noArgs]()
	if err != nil {
		return nil, err
	}
	category, err := newInputSchema[categoryArgs]("category_id")
	if err != nil {
		return nil, err
	}
	manufacturer, err := newInputSchema[manufacturerArgs]("manufacturer_id")
	if err != nil {
		return nil, err
	}
	manufacturerName, err := newInputSchema[manufacturerNameArgs]()
	if err != nil {
		return nil, err
	}
	subcategoryName, err := newInputSchema[subcategoryNameArgs]()
	if err != nil {
		return nil, err
	}
	part, err := newInputSchema[partArgs]("part_id")
	if err != nil {
		return nil, err
	}
	search, err := newInputSchema[model.SearchCriteria]("category_id", "manufacturer_id")
	if err != nil {
		return nil, err
	}

	return map[string]toolDefinition{
		protocol.ToolNameListCategories: {
			Name:        protocol.ToolNameListCategories,
			Description: "List all JLCPCB part categories with their subcategories.",
			InputSchema: none,
			handler:     bind(none, d.handleListCategories),
		},
		protocol.ToolNameListManufacturers: {
			Name:        protocol.ToolNameListManufacturers,
			Description: "List all manufacturers of JLCPCB parts.",
			InputSchema: none,
			handler:     bind(none, d.handleListManufacturers),
		},
		protocol.ToolNameGetCategory: {
			Name:        protocol.ToolNameGetCategory,
			Description: "Get the category and subcategory name for a category id.",
			InputSchema: category,
			handler:     bind(category, d.handleGetCategory),
		},
		protocol.ToolNameGetManufacturer: {
			Name:        protocol.ToolNameGetManufacturer,
			Description: "Get the manufacturer name for a manufacturer id.",
			InputSchema: manufacturer,
			handler:     bind(manufacturer, d.handleGetManufacturer),
		},
		protocol.ToolNameSearchManufacturer: {
			Name:        protocol.ToolNameSearchManufacturer,
			Description: "Find manufacturer ids by a substring of the manufacturer name.",
			InputSchema: manufacturerName,
			handler:     bind(manufacturerName, d.handleSearchManufacturer),
		},
		protocol.ToolNameSearchSubcategories: {
			Name:        protocol.ToolNameSearchSubcategories,
			Description: "Find category ids by a substring of the subcategory name (English).",
			InputSchema: subcategoryName,
			handler:     bind(subcategoryName, d.handleSearchSubcategories),
		},
		protocol.ToolNameGetDatasheetURL: {
			Name:        protocol.ToolNameGetDatasheetURL,
			Description: "Get the datasheet URL of a part. Pass only the digits of the LCSC number.",
			InputSchema: part,
			handler:     bind(part, d.handleGetDatasheetURL),
		},
		protocol.ToolNameGetPartImage: {
			Name:        protocol.ToolNameGetPartImage,
			Description: "Get a photo of a part. Pass only the digits of the LCSC number.",
			InputSchema: part,
			handler:     bind(part, d.handleGetPartImage),
		},
		protocol.ToolNameSearchParts: {
			Name:        protocol.ToolNameSearchParts,
			Description: "Search JLCPCB parts. Every given field must match (AND).",
			InputSchema: search,
			handler:     bind(search, d.handleSearchParts),
		},
	}, nil
}

// bind validates and decodes the arguments before fn runs.
func bind[T any](s *inputSchema, fn func(context.Context, T) (ToolResult, error)) toolHandler {
	return func(ctx context.Context, args map[string]any) (ToolResult, error) {
		in, err := bindArgs[T](s, args)
		if err != nil {
			return ToolResult{}, err
		}
		return fn(ctx, in)
	}
}

// orderedTools returns the registry in publication order.
func (d *Dispatcher) orderedTools() []toolDefinition {
	tools := make([]toolDefinition, 0, len(d.tools))
	for _, name := range toolOrder {
		if tool, ok := d.tools[name]; ok {
			tools = append(tools, tool)
		}
	}
	if len(tools) != len(d.tools) {
		var extra []string
		for name := range d.tools {
			if !contains(toolOrder, name) {
				extra = append(extra, name)
			}
		}
		sort.Strings(extra)
		for _, name := range extra {
			tools = append(tools, d.tools[name])
		}
	}
	return tools
}

// Call runs one tool. Unknown tools and invalid arguments give an error
// result; failures inside a handler give a text result. The returned error
// is only the context's.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return ToolResult{}, err
	}
	start := time.Now()
	callID := uuid.NewString()
	log := d.logger.With(zap.String("tool", name), zap.String("call_id", callID))

	tool, ok := d.tools[name]
	if !ok {
		metrics.RecordToolCall("unknown", metrics.OutcomeUnknown, time.Since(start))
		log.Warn("unknown tool")
		return newToolErrorResult(toolExecutionError{
			Code:    protocol.ErrorCodeMethodNotFound,
			Message: fmt.Sprintf("unknown tool: %s", name),
		}), nil
	}
	if args == nil {
		args = map[string]any{}
	}

	result, err := tool.handler(withLogger(ctx, log), args)
	if err != nil {
		var vErr *model.ValidationError
		if errors.As(err, &vErr) {
			metrics.RecordToolCall(name, metrics.OutcomeRejected, time.Since(start))
			log.Info("rejected tool call", zap.String("field", vErr.Field), zap.Error(err))
			return newToolErrorResult(toolExecutionError{Code: protocol.ErrorCodeInvalidField, Message: err.Error()}), nil
		}
		metrics.RecordToolCall(name, metrics.OutcomeFailed, time.Since(start))
		log.Error("tool call failed", zap.Error(err))
		return textResult(render.ErrorText(err)), nil
	}

	metrics.RecordToolCall(name, metrics.OutcomeOK, time.Since(start))
	log.Debug("tool call done", zap.Duration("elapsed", time.Since(start)))
	return result, nil
}

type loggerKey struct{}

func withLogger(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, log)
}

func (d *Dispatcher) loggerFrom(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return log
	}
	return d.logger
}

func (d *Dispatcher) handleListCategories(ctx context.Context, _ noArgs) (ToolResult, error) {
	cats, err := d.catalog.ListCategories(ctx)
	if err != nil {
		return ToolResult{}, err
	}
	return textResult(render.CategoryTable(cats)), nil
}

func (d *Dispatcher) handleListManufacturers(ctx context.Context, _ noArgs) (ToolResult, error) {
	ms, err := d.catalog.ListManufacturers(ctx)
	if err != nil {
		return ToolResult{}, err
	}
	return textResult(render.ManufacturerTable(ms)), nil
}

func (d *Dispatcher) handleGetCategory(ctx context.Context, in categoryArgs) (ToolResult, error) {
	c, err := d.catalog.GetCategory(ctx, in.CategoryID)
	if errors.Is(err, model.ErrNotFound) {
		return textResult(render.CategoryNotFound), nil
	}
	if err != nil {
		return ToolResult{}, err
	}
	return textResult(render.CategoryText(c)), nil
}

func (d *Dispatcher) handleGetManufacturer(ctx context.Context, in manufacturerArgs) (ToolResult, error) {
	m, err := d.catalog.GetManufacturer(ctx, in.ManufacturerID)
	if errors.Is(err, model.ErrNotFound) {
		return textResult(render.ManufacturerNotFound), nil
	}
	if err != nil {
		return ToolResult{}, err
	}
	return textResult(m.Name), nil
}

func (d *Dispatcher) handleSearchManufacturer(ctx context.Context, in manufacturerNameArgs) (ToolResult, error) {
	ms, err := d.catalog.SearchManufacturers(ctx, in.Name)
	if err != nil {
		return ToolResult{}, err
	}
	return textResult(render.ManufacturerSearchTable(ms)), nil
}

func (d *Dispatcher) handleSearchSubcategories(ctx context.Context, in subcategoryNameArgs) (ToolResult, error) {
	cats, err := d.catalog.SearchSubcategories(ctx, in.Name)
	if err != nil {
		return ToolResult{}, err
	}
	return textResult(render.SubcategoryTable(cats)), nil
}

func (d *Dispatcher) handleGetDatasheetURL(ctx context.Context, in partArgs) (ToolResult, error) {
	u, err := d.catalog.GetDatasheetURL(ctx, in.PartID)
	if errors.Is(err, model.ErrNotFound) {
		return textResult(render.PartNotFound), nil
	}
	if err != nil {
		return ToolResult{}, err
	}
	return textResult(u), nil
}

func (d *Dispatcher) handleGetPartImage(ctx context.Context, in partArgs) (ToolResult, error) {
	extra, err := d.catalog.GetComponentExtra(ctx, in.PartID)
	if errors.Is(err, model.ErrNotFound) {
		return textResult(render.PartNotFound), nil
	}
	if err != nil {
		return ToolResult{}, err
	}
	images, err := decode.Images(extra)
	if err != nil {
		return ToolResult{}, err
	}
	if d.images == nil {
		return ToolResult{}, &model.MediaFetchError{Stage: "fetch", Err: errors.New("no image resolver configured")}
	}
	block, err := d.images.Resolve(ctx, images)
	if err != nil {
		return ToolResult{}, err
	}
	return ToolResult{Content: []ContentItem{{Type: "image", Data: block.Data, MIMEType: block.MIMEType}}}, nil
}

func (d *Dispatcher) handleSearchParts(ctx context.Context, in model.SearchCriteria) (ToolResult, error) {
	comps, err := d.catalog.SearchComponents(ctx, in)
	if err != nil {
		return ToolResult{}, err
	}
	log := d.loggerFrom(ctx)
	rows := make([]render.ComponentRow, 0, len(comps))
	for _, c := range comps {
		row := render.ComponentRow{Component: c}
		row.PriceText, err = decode.PriceField(c.Price)
		if err != nil {
			decodeFailure(log, c.LCSC, "price", err)
		}
		row.AttributeText, err = decode.AttributeField(c.Extra)
		if err != nil {
			decodeFailure(log, c.LCSC, "attributes", err)
		}
		rows = append(rows, row)
	}
	log.Debug("search parts", zap.Int("rows", len(rows)))
	return textResult(render.ComponentTable(rows)), nil
}

func decodeFailure(log *zap.Logger, lcsc int64, field string, err error) {
	metrics.RecordDecodeFailure(field)
	log.Debug("field replaced by placeholder", zap.Int64("lcsc", lcsc), zap.String("field", field), zap.Error(err))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
