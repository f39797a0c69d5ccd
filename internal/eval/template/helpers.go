package template

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/mailgun/raymond/v2"
	"github.com/spf13/cast"

	"github.com/aescanero/dago-node-renderer/internal/helpers"
	"github.com/aescanero/dago-node-renderer/internal/layout"
)

// helper is a registered helper and the way templates call it
type helper struct {
	fn       interface{}
	variadic bool
}

var (
	registerOnce sync.Once
	signatures   map[string]signature
	uniqueIDs    atomic.Uint64
)

// registerHelpers registers every page helper with raymond. raymond keeps
// helpers in a process-wide registry, so this runs once.
func registerHelpers() {
	registerOnce.Do(func() {
		table := builtins()
		signatures = make(map[string]signature, len(table))
		for name, h := range table {
			raymond.RegisterHelper(name, h.fn)
			signatures[name] = signatureOf(h.fn, h.variadic)
		}
		raymond.RegisterHelper(listHelper, listOf)
	})
}

func builtins() map[string]helper {
	return map[string]helper{
		// Conditionals
		"any":         unary(helpers.Any),
		"empty":       unary(helpers.Empty),
		"ifEven":      unary(helpers.IfEven),
		"isArray":     unary(helpers.IsArray),
		"lengthEqual": binary(helpers.LengthEqual),
		"contains":    binary(helpers.Contains),
		"is":          binary(helpers.Is),
		"isnt":        binary(helpers.Isnt),
		"gt":          binary(helpers.Gt),
		"gte":         binary(helpers.Gte),
		"lt":          binary(helpers.Lt),
		"lte":         binary(helpers.Lte),
		"ifNth":       binary(helpers.IfNth),
		"and":         logical(helpers.And),
		"or":          logical(helpers.Or),
		"compare":     {fn: compareHelper},
		"in":          {fn: inHelper, variadic: true},
		"ifAny":       {fn: ifAnyHelper, variadic: true},
		"when":        {fn: whenHelper},

		// Sequences
		"first":  {fn: firstHelper},
		"last":   {fn: lastHelper},
		"after":  {fn: sliceHelper(helpers.After)},
		"before": {fn: sliceHelper(helpers.Before)},
		"array":  {fn: arrayHelper, variadic: true},
		"join":   {fn: helpers.Join},
		"len":    {fn: helpers.Length},

		// Layout
		"extend":  {fn: extendHelper(false)},
		"embed":   {fn: extendHelper(true)},
		"block":   {fn: blockHelper},
		"content": {fn: contentHelper},

		// Loop
		"repeat": {fn: repeatHelper},

		// Formatting
		"timeago":   {fn: timeagoHelper},
		"moment":    {fn: momentHelper},
		"link":      {fn: linkHelper},
		"serialize": {fn: serializeHelper},
		"uniqueId":  {fn: uniqueIDHelper},
		"target":    {fn: targetHelper},
		"slug":      {fn: slugHelper},

		// Text
		"uppercase": {fn: strings.ToUpper},
		"lowercase": {fn: strings.ToLower},
		"trim":      {fn: strings.TrimSpace},
		"default":   {fn: defaultHelper},
		"eq":        {fn: eqHelper},
		"ne":        {fn: neHelper},
	}
}

// call is one helper invocation
type call struct {
	*raymond.Options
}

// tooFew reports that the template wrote fewer than n parameters
func (c call) tooFew(n int) bool {
	v := c.HashProp(argcKey)
	if v == nil {
		return false
	}
	argc, err := cast.ToIntE(v)
	return err == nil && argc < n
}

// isBlock reports that the helper was opened as a block
func (c call) isBlock() bool {
	return c.HashProp(blockKey) == true
}

// branches returns the block renderings, or nil when there is no block
func (c call) branches() *helpers.Branches {
	if !c.isBlock() {
		return nil
	}
	return &helpers.Branches{Fn: c.Fn, Inverse: c.Inverse}
}

// hash returns the keyword arguments written in the template
func (c call) hash() map[string]interface{} {
	out := make(map[string]interface{}, len(c.Hash()))
	for k, v := range c.Hash() {
		if !strings.HasPrefix(k, "__") {
			out[k] = v
		}
	}
	return out
}

func (c call) run() *render {
	r, _ := c.Data(runKey).(*render)
	return r
}

// scope returns the layout context for the current raymond context
func (c call) scope() *layout.Context {
	base, ok := c.Data(scopeKey).(*layout.Context)
	if !ok {
		return layout.NewContext(c.Ctx())
	}
	return base.With(c.Ctx())
}

// frame returns a private data frame rendering against scope
func (c call) frame(scope *layout.Context) *raymond.DataFrame {
	frame := c.NewDataFrame()
	frame.Set(scopeKey, scope)
	return frame
}

// locale picks the lang keyword, then the page lang field, then the engine default
func (c call) locale() string {
	if lang := c.HashStr("lang"); lang != "" {
		return lang
	}
	if lang, ok := c.Value("lang").(string); ok && lang != "" {
		return lang
	}
	return c.run().locale()
}

func unary(test func(interface{}, *helpers.Branches) string) helper {
	return helper{fn: func(v interface{}, options *raymond.Options) string {
		c := call{options}
		if c.tooFew(1) {
			return c.branches().Else()
		}
		return test(v, c.branches())
	}}
}

func binary(test func(a, b interface{}, br *helpers.Branches) string) helper {
	return helper{fn: func(a, b interface{}, options *raymond.Options) string {
		c := call{options}
		if c.tooFew(2) {
			return c.branches().Else()
		}
		return test(a, b, c.branches())
	}}
}

// logical adapts and/or, whose second operand may be left out
func logical(test func(br *helpers.Branches, operands ...interface{}) string) helper {
	return helper{fn: func(a, b interface{}, options *raymond.Options) string {
		c := call{options}
		if c.tooFew(1) {
			return c.branches().Else()
		}
		if c.tooFew(2) {
			return test(c.branches(), a)
		}
		return test(c.branches(), a, b)
	}}
}

func compareHelper(left, operator, right interface{}, options *raymond.Options) string {
	c := call{options}
	if c.tooFew(3) {
		return c.branches().Else()
	}

	out, err := helpers.Compare(left, cast.ToString(operator), right, c.branches())
	if err != nil {
		panic(err)
	}
	return out
}

func inHelper(value, candidates interface{}, options *raymond.Options) string {
	c := call{options}
	if c.tooFew(2) {
		return c.branches().Else()
	}
	list, _ := candidates.([]interface{})
	return helpers.In(value, list, c.branches())
}

func ifAnyHelper(values interface{}, options *raymond.Options) string {
	list, _ := values.([]interface{})
	return helpers.IfAny(list, call{options}.branches())
}

func whenHelper(expression interface{}, options *raymond.Options) string {
	c := call{options}
	if c.tooFew(1) {
		return c.branches().Else()
	}

	ok, err := c.run().when(cast.ToString(expression), c.scope().Map())
	if err != nil {
		panic(err)
	}

	b := c.branches()
	if ok {
		return b.Then()
	}
	return b.Else()
}

func firstHelper(items, count interface{}, options *raymond.Options) interface{} {
	c := call{options}
	if c.tooFew(1) {
		return c.branches().Else()
	}
	if c.tooFew(2) || count == nil {
		return helpers.First(items)
	}
	return helpers.FirstN(items, count)
}

func lastHelper(items, count interface{}, options *raymond.Options) interface{} {
	c := call{options}
	if c.tooFew(1) {
		return c.branches().Else()
	}
	if c.tooFew(2) || count == nil {
		return helpers.Last(items)
	}
	return helpers.LastN(items, count)
}

func sliceHelper(slice func(items, n interface{}) []interface{}) func(items, count interface{}, options *raymond.Options) interface{} {
	return func(items, count interface{}, options *raymond.Options) interface{} {
		c := call{options}
		if c.tooFew(2) {
			return c.branches().Else()
		}
		return slice(items, count)
	}
}

func arrayHelper(values interface{}) interface{} {
	list, _ := values.([]interface{})
	return helpers.Array(list...)
}

// listOf collects the variadic tail of a normalized call. raymond hands a
// missing variadic argument over as a nil []interface{}.
func listOf(values ...interface{}) interface{} {
	for i, v := range values {
		if s, ok := v.([]interface{}); ok && s == nil {
			values[i] = nil
		}
	}
	return values
}

func repeatHelper(until interface{}, options *raymond.Options) string {
	c := call{options}
	b := c.branches()
	if b == nil || c.tooFew(1) {
		return b.Else()
	}

	return helpers.Repeat(until, options.DataStr("contextPath"), func(it helpers.Iteration) string {
		frame := options.NewDataFrame()
		frame.Set("index", it.Index)
		frame.Set("first", it.First)
		frame.Set("last", it.Last)
		frame.Set("contextPath", it.ContextPath)
		return options.FnData(frame)
	}, b.Else)
}

func timeagoHelper(date interface{}, options *raymond.Options) string {
	c := call{options}
	return helpers.TimeAgo(date, c.locale(), c.run().now())
}

// momentHelper formats date. The format is the second argument or the
// format keyword.
func momentHelper(date, format interface{}, options *raymond.Options) string {
	c := call{options}
	pattern := cast.ToString(format)
	if pattern == "" {
		pattern = options.HashStr("format")
	}
	return helpers.FormatDate(date, pattern, c.locale(), c.run().now())
}

func linkHelper(url interface{}, options *raymond.Options) string {
	c := call{options}
	if c.tooFew(1) {
		return ""
	}
	return helpers.Link(url, options.HashStr("hash"))
}

func serializeHelper(value interface{}, options *raymond.Options) raymond.SafeString {
	if (call{options}).tooFew(1) {
		return "{}"
	}

	out, err := helpers.Serialize(value)
	if err != nil {
		panic(err)
	}
	return out
}

// uniqueIDHelper returns an id that stays the same within one private data frame
func uniqueIDHelper(options *raymond.Options) string {
	if id, ok := options.Data(uniqueKey).(string); ok && id != "" {
		return id
	}

	id := fmt.Sprintf("id-%d", uniqueIDs.Add(1))
	options.DataFrame().Set(uniqueKey, id)
	return id
}

func targetHelper(behavior interface{}) string {
	return helpers.Target(cast.ToString(behavior))
}

func slugHelper(text interface{}) string {
	return helpers.Slug(cast.ToString(text))
}

func defaultHelper(value, defaultValue interface{}) interface{} {
	if value == nil || value == "" {
		return defaultValue
	}
	return value
}

func eqHelper(a, b interface{}) bool {
	return helpers.OpStrictEqual.Eval(a, b)
}

func neHelper(a, b interface{}) bool {
	return helpers.OpStrictNotEqual.Eval(a, b)
}
