package extract

import (
	"net/http"
	"net/url"

	"github.com/Roshick/go-autumn-validation/validation"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const (
	DefaultJSONLimit      int64 = 32768
	DefaultFormLimit      int64 = 16384
	DefaultQueryDelimiter       = '.'
)

// Options are shared by every extractor. A nil Validator selects validation.DefaultStructValidator,
// a nil ErrorHandler selects DefaultErrorHandler.
type Options struct {
	Validator    validation.Validator
	ErrorHandler ErrorHandlerFn
}

// JSONOptions //

type JSONOptions struct {
	Options
	// Limit is the maximum body size in bytes.
	Limit int64
	// ContentType accepts media types beyond application/json and the +json suffix.
	ContentType           func(mediaType string) bool
	DisallowUnknownFields bool
}

func DefaultJSONOptions() *JSONOptions {
	return &JSONOptions{
		Limit: DefaultJSONLimit,
	}
}

func (o *JSONOptions) WithLimit(limit int64) *JSONOptions {
	o.Limit = limit
	return o
}

func (o *JSONOptions) WithContentType(fn func(mediaType string) bool) *JSONOptions {
	o.ContentType = fn
	return o
}

func (o *JSONOptions) WithDisallowUnknownFields(disallow bool) *JSONOptions {
	o.DisallowUnknownFields = disallow
	return o
}

func (o *JSONOptions) WithValidator(validator validation.Validator) *JSONOptions {
	o.Validator = validator
	return o
}

func (o *JSONOptions) WithErrorHandler(fn ErrorHandlerFn) *JSONOptions {
	o.ErrorHandler = fn
	return o
}

// QueryOptions //

type QueryOptions struct {
	Options
	// Delimiter separates nested keys, e.g. address.city. Bracket keys such as address[city] are accepted as well.
	Delimiter           rune
	DisallowUnknownKeys bool
	IgnoreCase          bool
}

func DefaultQueryOptions() *QueryOptions {
	return &QueryOptions{
		Delimiter: DefaultQueryDelimiter,
	}
}

func (o *QueryOptions) WithDelimiter(delimiter rune) *QueryOptions {
	o.Delimiter = delimiter
	return o
}

func (o *QueryOptions) WithDisallowUnknownKeys(disallow bool) *QueryOptions {
	o.DisallowUnknownKeys = disallow
	return o
}

func (o *QueryOptions) WithIgnoreCase(ignoreCase bool) *QueryOptions {
	o.IgnoreCase = ignoreCase
	return o
}

func (o *QueryOptions) WithValidator(validator validation.Validator) *QueryOptions {
	o.Validator = validator
	return o
}

func (o *QueryOptions) WithErrorHandler(fn ErrorHandlerFn) *QueryOptions {
	o.ErrorHandler = fn
	return o
}

// PathOptions //

type ParamsFn func(req *http.Request) url.Values

type PathOptions struct {
	Options
	// ParamsFn reads the matched path parameters. Defaults to ChiURLParams.
	ParamsFn ParamsFn
}

func DefaultPathOptions() *PathOptions {
	return &PathOptions{
		ParamsFn: ChiURLParams,
	}
}

func (o *PathOptions) WithParamsFn(fn ParamsFn) *PathOptions {
	o.ParamsFn = fn
	return o
}

func (o *PathOptions) WithValidator(validator validation.Validator) *PathOptions {
	o.Validator = validator
	return o
}

func (o *PathOptions) WithErrorHandler(fn ErrorHandlerFn) *PathOptions {
	o.ErrorHandler = fn
	return o
}

// FormOptions //

type FormOptions struct {
	Options
	Limit               int64
	Delimiter           rune
	DisallowUnknownKeys bool
}

func DefaultFormOptions() *FormOptions {
	return &FormOptions{
		Limit:     DefaultFormLimit,
		Delimiter: DefaultQueryDelimiter,
	}
}

func (o *FormOptions) WithLimit(limit int64) *FormOptions {
	o.Limit = limit
	return o
}

func (o *FormOptions) WithDelimiter(delimiter rune) *FormOptions {
	o.Delimiter = delimiter
	return o
}

func (o *FormOptions) WithDisallowUnknownKeys(disallow bool) *FormOptions {
	o.DisallowUnknownKeys = disallow
	return o
}

func (o *FormOptions) WithValidator(validator validation.Validator) *FormOptions {
	o.Validator = validator
	return o
}

func (o *FormOptions) WithErrorHandler(fn ErrorHandlerFn) *FormOptions {
	o.ErrorHandler = fn
	return o
}

// HeaderOptions //

type HeaderOptions struct {
	Options
}

func DefaultHeaderOptions() *HeaderOptions {
	return &HeaderOptions{}
}

func (o *HeaderOptions) WithValidator(validator validation.Validator) *HeaderOptions {
	o.Validator = validator
	return o
}

func (o *HeaderOptions) WithErrorHandler(fn ErrorHandlerFn) *HeaderOptions {
	o.ErrorHandler = fn
	return o
}

// ClaimsOptions //

type ClaimsOptions struct {
	Options
	// ParseOptions are passed to jwt.ParseRequest. The default skips signature verification and
	// must only be used behind an authenticating middleware.
	ParseOptions []jwt.ParseOption
}

func DefaultClaimsOptions() *ClaimsOptions {
	return &ClaimsOptions{
		ParseOptions: []jwt.ParseOption{jwt.WithVerify(false)},
	}
}

func (o *ClaimsOptions) WithParseOptions(parseOptions ...jwt.ParseOption) *ClaimsOptions {
	o.ParseOptions = parseOptions
	return o
}

func (o *ClaimsOptions) WithValidator(validator validation.Validator) *ClaimsOptions {
	o.Validator = validator
	return o
}

func (o *ClaimsOptions) WithErrorHandler(fn ErrorHandlerFn) *ClaimsOptions {
	o.ErrorHandler = fn
	return o
}
