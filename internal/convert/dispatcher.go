package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nvquang/formatforge/internal/classify"
)

// Request is a single immutable conversion request.
type Request struct {
	Data         []byte
	FileName     string
	TargetFormat string
}

// Result is the outcome of a successful dispatch. Fallback marks a soft
// failure: the adapter substituted fallback output (original bytes for
// media transcodes, a placeholder SVG for icon decodes) instead of
// propagating the engine error.
type Result struct {
	Bytes    []byte
	MIMEType string
	Fallback bool
}

type adapterFunc func(ctx context.Context, source string, data []byte) (*Result, error)

// routeKey addresses one converter in the dispatch table. An empty
// source matches any source extension of the kind.
type routeKey struct {
	kind   classify.Kind
	source string
	target string
}

// Dispatcher maps (kind, sourceExt, targetFormat) to converter
// adapters through an explicit lookup table built at construction.
// Unsupported combinations are a data fact, not scattered branches.
type Dispatcher struct {
	images  *ImageConverter
	vectors *VectorConverter
	media   *MediaConverter
	docs    *DocumentConverter
	code    *CodeConverter

	routes  map[routeKey]adapterFunc
	strict  bool
	timeout time.Duration
	logger  *zap.Logger
}

type DispatcherOptions struct {
	FFmpegPath string
	PandocPath string
	// CommandTimeout bounds a single adapter invocation. Zero means no
	// deadline beyond the request context.
	CommandTimeout time.Duration
	// StrictErrors propagates soft failures as adapter errors instead
	// of serving the fallback output as a success.
	StrictErrors bool
}

func NewDispatcher(opts DispatcherOptions, logger *zap.Logger) *Dispatcher {
	images := NewImageConverter()
	d := &Dispatcher{
		images:  images,
		vectors: NewVectorConverter(images),
		media:   NewMediaConverter(opts.FFmpegPath, logger),
		docs:    NewDocumentConverter(opts.PandocPath),
		code:    NewCodeConverter(),
		strict:  opts.StrictErrors,
		timeout: opts.CommandTimeout,
		logger:  logger,
	}
	d.routes = d.buildRoutes()
	return d
}

func (d *Dispatcher) buildRoutes() map[routeKey]adapterFunc {
	routes := map[routeKey]adapterFunc{}

	// Icon / vector sources. svg and ico are checked before the
	// generic image path.
	for _, target := range []string{"png", "jpeg", "webp"} {
		target := target
		routes[routeKey{classify.KindVector, "svg", target}] = func(ctx context.Context, source string, data []byte) (*Result, error) {
			return d.vectors.Rasterize(data, target, 0, 0)
		}
		routes[routeKey{classify.KindVector, "ico", target}] = func(ctx context.Context, source string, data []byte) (*Result, error) {
			return d.images.Transcode(data, source, target)
		}
	}
	routes[routeKey{classify.KindVector, "svg", "svg"}] = passthrough("image/svg+xml")
	routes[routeKey{classify.KindVector, "ico", "ico"}] = passthrough("image/x-icon")
	routes[routeKey{classify.KindVector, "svg", "ico"}] = func(ctx context.Context, source string, data []byte) (*Result, error) {
		return d.vectors.ToICO(data)
	}
	routes[routeKey{classify.KindVector, "ico", "svg"}] = func(ctx context.Context, source string, data []byte) (*Result, error) {
		return d.vectors.ICOToSVG(data)
	}

	// Raster images. watermark-removed and pdf are special-cased, the
	// rest is a generic transcode. The concrete source extension is
	// forwarded so format-specific decoders apply.
	routes[routeKey{classify.KindImage, "", "watermark-removed"}] = func(ctx context.Context, source string, data []byte) (*Result, error) {
		return d.images.RemoveWatermark(data, source)
	}
	routes[routeKey{classify.KindImage, "", "pdf"}] = func(ctx context.Context, source string, data []byte) (*Result, error) {
		return d.images.ToPDF(data, source, DefaultPDFOptions())
	}
	for _, target := range []string{"jpeg", "png", "webp", "avif"} {
		target := target
		routes[routeKey{classify.KindImage, "", target}] = func(ctx context.Context, source string, data []byte) (*Result, error) {
			return d.images.Transcode(data, source, target)
		}
	}

	// Video sources: audio targets extract, video targets transcode.
	for _, target := range []string{"mp3", "wav", "aac"} {
		target := target
		routes[routeKey{classify.KindVideo, "", target}] = func(ctx context.Context, source string, data []byte) (*Result, error) {
			return d.media.ExtractAudio(ctx, data, target)
		}
	}
	for _, target := range []string{"mp4", "avi", "mov", "webm"} {
		target := target
		routes[routeKey{classify.KindVideo, "", target}] = func(ctx context.Context, source string, data []byte) (*Result, error) {
			return d.media.TranscodeVideo(ctx, data, target)
		}
	}

	// Documents dispatch on the concrete source extension.
	for _, target := range []string{"html", "txt"} {
		target := target
		routes[routeKey{classify.KindDocument, "docx", target}] = func(ctx context.Context, source string, data []byte) (*Result, error) {
			return d.docs.DocxTo(ctx, data, target)
		}
		routes[routeKey{classify.KindDocument, "txt", target}] = func(ctx context.Context, source string, data []byte) (*Result, error) {
			return d.docs.TxtTo(data, target)
		}
		routes[routeKey{classify.KindDocument, "pdf", target}] = func(ctx context.Context, source string, data []byte) (*Result, error) {
			return d.docs.PDFExtract(data, target)
		}
	}

	// Source code pairs.
	routes[routeKey{classify.KindSourceCode, "js", "html"}] = func(ctx context.Context, source string, data []byte) (*Result, error) {
		return d.code.JSToHTML(data)
	}
	routes[routeKey{classify.KindSourceCode, "ts", "js"}] = func(ctx context.Context, source string, data []byte) (*Result, error) {
		return d.code.TSToJS(data)
	}

	return routes
}

func passthrough(mimeType string) adapterFunc {
	return func(ctx context.Context, source string, data []byte) (*Result, error) {
		return &Result{Bytes: data, MIMEType: mimeType}, nil
	}
}

// normalizeTarget lower-cases the requested format and folds the jpg
// alias into jpeg for table lookup.
func normalizeTarget(target string) string {
	t := strings.ToLower(strings.TrimSpace(target))
	if t == "jpg" {
		return "jpeg"
	}
	return t
}

// Validate checks the dispatch table for internal consistency: every
// route target must carry a MIME mapping. Called from tests so a
// missing mapping fails fast rather than serving octet-stream.
func (d *Dispatcher) Validate() error {
	for key, fn := range d.routes {
		if fn == nil {
			return fmt.Errorf("nil adapter for %s/%s -> %s", key.kind, key.source, key.target)
		}
		if classify.MIMEType(key.target) == "application/octet-stream" {
			return fmt.Errorf("no MIME mapping for target %q", key.target)
		}
	}
	return nil
}

// Routes returns every (kind, source, target) triple in the table.
// Used by tests and the formats endpoint.
func (d *Dispatcher) Routes() []string {
	out := make([]string, 0, len(d.routes))
	for key := range d.routes {
		out = append(out, fmt.Sprintf("%s/%s->%s", key.kind, key.source, key.target))
	}
	return out
}

// Dispatch classifies the request's file name, selects the adapter for
// the (kind, sourceExt, targetFormat) triple and invokes it. Exactly
// one attempt is made; adapter panics and errors never escape
// unwrapped.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = adapterErrorf("conversion", fmt.Errorf("adapter panic: %v", r))
		}
	}()

	kind := classify.Detect(req.FileName)
	source := classify.Ext(req.FileName)
	target := normalizeTarget(req.TargetFormat)

	if target == "" {
		return nil, callerErrorf(string(kind), source, target, "no target format specified")
	}
	if kind == classify.KindUnknown {
		return nil, callerErrorf(string(kind), source, target, "unsupported file type: .%s", source)
	}

	fn, ok := d.routes[routeKey{kind, source, target}]
	if !ok {
		fn, ok = d.routes[routeKey{kind, "", target}]
	}
	if !ok {
		return nil, d.unsupported(kind, source, target)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	res, err = fn(ctx, source, req.Data)
	if err != nil {
		if IsCallerError(err) {
			return nil, err
		}
		var ae *AdapterError
		if !errors.As(err, &ae) {
			err = adapterErrorf(fmt.Sprintf("%s to %s", source, target), err)
		}
		return nil, err
	}

	if res.Fallback && d.strict {
		return nil, adapterErrorf(fmt.Sprintf("%s to %s", source, target),
			fmt.Errorf("conversion fell back to substitute output"))
	}
	if res.MIMEType == "" {
		res.MIMEType = classify.MIMEType(target)
	}
	return res, nil
}

func (d *Dispatcher) unsupported(kind classify.Kind, source, target string) *CallerError {
	switch kind {
	case classify.KindVector:
		return callerErrorf(string(kind), source, target,
			"unsupported icon conversion: %s to %s", source, target)
	case classify.KindImage:
		return callerErrorf(string(kind), source, target,
			"unsupported image conversion: %s to %s", source, target)
	case classify.KindVideo:
		return callerErrorf(string(kind), source, target,
			"unsupported video conversion: %s to %s", source, target)
	case classify.KindDocument:
		if source != "docx" && source != "txt" && source != "pdf" {
			return callerErrorf(string(kind), source, target,
				"unsupported document type .%s: only docx, txt and pdf are supported", source)
		}
		return callerErrorf(string(kind), source, target,
			"unsupported document conversion: %s to %s", source, target)
	default:
		return callerErrorf(string(kind), source, target,
			"unsupported conversion: %s to %s", source, target)
	}
}
