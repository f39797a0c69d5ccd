package template

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aescanero/dago-node-renderer/internal/eval/cel"
	"github.com/aescanero/dago-node-renderer/internal/helpers"
	"github.com/aescanero/dago-node-renderer/internal/layout"
	"github.com/aescanero/dago-node-renderer/internal/partials"
)

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	return NewEngine(append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func TestRenderText(t *testing.T) {
	engine := newTestEngine(t)

	data := map[string]interface{}{
		"name":   "  Ada  ",
		"status": "active",
		"items":  []string{"a", "b", "c"},
		"empty":  "",
	}

	tests := []struct {
		name string
		tpl  string
		want string
	}{
		{"uppercase", `{{uppercase status}}`, "ACTIVE"},
		{"lowercase", `{{lowercase "MiXeD"}}`, "mixed"},
		{"trim", `[{{trim name}}]`, "[Ada]"},
		{"default empty", `{{default empty "N/A"}}`, "N/A"},
		{"default missing", `{{default missing "N/A"}}`, "N/A"},
		{"default set", `{{default status "N/A"}}`, "active"},
		{"eq", `{{#if (eq status "active")}}on{{else}}off{{/if}}`, "on"},
		{"ne", `{{#if (ne status "active")}}on{{else}}off{{/if}}`, "off"},
		{"join", `{{join items ", "}}`, "a, b, c"},
		{"len", `{{len items}}`, "3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := engine.Render(tt.tpl, data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRenderConditionals(t *testing.T) {
	engine := newTestEngine(t)

	data := map[string]interface{}{
		"items": []interface{}{"a", "b"},
		"none":  []interface{}{},
		"count": 3,
		"price": 3.0,
		"title": "handlebars",
		"flag":  true,
	}

	tests := []struct {
		name string
		tpl  string
		want string
	}{
		{"any", `{{#any items}}yes{{else}}no{{/any}}`, "yes"},
		{"empty", `{{#empty none}}yes{{else}}no{{/empty}}`, "yes"},
		{"lengthEqual", `{{#lengthEqual items 2}}yes{{else}}no{{/lengthEqual}}`, "yes"},
		{"contains", `{{#contains title "bar"}}yes{{else}}no{{/contains}}`, "yes"},
		{"is", `{{#is count price}}yes{{else}}no{{/is}}`, "yes"},
		{"isnt", `{{#isnt count "3"}}yes{{else}}no{{/isnt}}`, "yes"},
		{"gt", `{{#gt count 2}}yes{{else}}no{{/gt}}`, "yes"},
		{"gte", `{{#gte count 4}}yes{{else}}no{{/gte}}`, "no"},
		{"lt", `{{#lt count 4}}yes{{else}}no{{/lt}}`, "yes"},
		{"lte", `{{#lte count 3}}yes{{else}}no{{/lte}}`, "yes"},
		{"ifEven", `{{#ifEven count}}yes{{else}}no{{/ifEven}}`, "no"},
		{"ifNth", `{{#ifNth 3 2}}yes{{else}}no{{/ifNth}}`, "yes"},
		{"and", `{{#and flag count}}yes{{else}}no{{/and}}`, "yes"},
		{"and single", `{{#and flag}}yes{{else}}no{{/and}}`, "yes"},
		{"and explicit nil", `{{#and flag missing}}yes{{else}}no{{/and}}`, "no"},
		{"or", `{{#or missing flag}}yes{{else}}no{{/or}}`, "yes"},
		{"in", `{{#in "b" "a" "b"}}yes{{else}}no{{/in}}`, "yes"},
		{"in single candidate", `{{#in "b" "b"}}yes{{else}}no{{/in}}`, "yes"},
		{"in missing", `{{#in "z" "a" "b"}}yes{{else}}no{{/in}}`, "no"},
		{"isArray", `{{#isArray items}}yes{{else}}no{{/isArray}}`, "yes"},
		{"ifAny", `{{#ifAny flag count}}yes{{else}}no{{/ifAny}}`, "yes"},
		{"ifAny nothing", `{{#ifAny}}yes{{else}}no{{/ifAny}}`, "no"},
		{"compare", `{{#compare count ">" 2}}yes{{else}}no{{/compare}}`, "yes"},
		{"compare typeof", `{{#compare title "typeof" "string"}}yes{{else}}no{{/compare}}`, "yes"},
		{"else chain", `{{#is count 1}}one{{else is count 3}}three{{else}}other{{/is}}`, "three"},
		{"inverse section", `{{^is count 1}}not one{{/is}}`, "not one"},
		{"too few arguments", `{{#is count}}yes{{else}}no{{/is}}`, "no"},
		{"no arguments", `{{#gt}}yes{{else}}no{{/gt}}`, "no"},
		{"inline", `[{{is count 3}}]`, "[]"},
		{"inside each", `{{#each items}}{{#is this "b"}}B{{else}}-{{/is}}{{/each}}`, "-B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := engine.Render(tt.tpl, data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRenderCompareUnknownOperator(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Render(`{{#compare 1 "~" 2}}x{{/compare}}`, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, helpers.ErrUnknownOperator))
}

func TestRenderArrays(t *testing.T) {
	engine := newTestEngine(t)

	data := map[string]interface{}{
		"items": []string{"a", "b", "c", "d"},
	}

	tests := []struct {
		name string
		tpl  string
		want string
	}{
		{"first", `{{first items}}`, "a"},
		{"first n", `{{#each (first items 2)}}{{this}}{{/each}}`, "ab"},
		{"last", `{{last items}}`, "d"},
		{"last n", `{{#each (last items 3)}}{{this}}{{/each}}`, "bcd"},
		{"after", `{{#each (after items 1)}}{{this}}{{/each}}`, "bcd"},
		{"before", `{{#each (before items 1)}}{{this}}{{/each}}`, "abc"},
		{"array", `{{join (array "x" 1 true) "-"}}`, "x-1-true"},
		{"array empty", `{{len (array)}}`, "0"},
		{"first without items", `{{#first}}x{{else}}none{{/first}}`, "none"},
		{"after without count", `{{#after items}}x{{else}}none{{/after}}`, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := engine.Render(tt.tpl, data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRenderRepeat(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name string
		tpl  string
		data interface{}
		want string
	}{
		{"count", `{{#repeat 3}}{{@index}}{{#if @first}}F{{/if}}{{#if @last}}L{{/if}}{{/repeat}}`, nil, "0F12L"},
		{"context", `{{#repeat n}}{{label}}{{/repeat}}`, map[string]interface{}{"n": 2, "label": "x"}, "xx"},
		{"zero", `{{#repeat 0}}x{{else}}none{{/repeat}}`, nil, "none"},
		{"not a number", `{{#repeat "many"}}x{{else}}none{{/repeat}}`, nil, "none"},
		{"context path", `{{#repeat 2}}[{{@contextPath}}]{{/repeat}}`, nil, "[2.0][2.1]"},
		{"inline", `[{{repeat 3}}]`, nil, "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := engine.Render(tt.tpl, tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRenderFormatting(t *testing.T) {
	engine := newTestEngine(t)

	data := map[string]interface{}{
		"posted": fixedNow.Add(-3 * 24 * time.Hour),
		"url":    "http://x.com/p#old",
		"title":  "Getting Started!",
		"obj":    map[string]interface{}{"a": 1},
	}

	tests := []struct {
		name string
		tpl  string
		want string
	}{
		{"timeago", `{{timeago posted}}`, "3 days ago"},
		{"timeago lang", `{{timeago posted lang="fr"}}`, "Il y a 3 jours"},
		{"moment", `{{moment posted "YYYY-MM-DD"}}`, "2024-05-07"},
		{"moment now", `{{moment}}`, "2024-05-10"},
		{"moment format keyword", `{{moment posted format="D MMMM YYYY"}}`, "7 May 2024"},
		{"moment literal text", `{{moment posted "[Week 1 of] YYYY"}}`, "Week 1 of 2024"},
		{"link", `{{link url hash="sec2"}}`, "http://x.com/p#sec2"},
		{"link without url", `[{{link}}]`, "[]"},
		{"serialize", `{{serialize obj}}`, `{"a":1}`},
		{"serialize nothing", `{{serialize}}`, "{}"},
		{"slug", `{{slug title}}`, "getting-started"},
		{"target", `{{target "New Window"}}`, "_blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := engine.Render(tt.tpl, data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRenderLocale(t *testing.T) {
	posted := fixedNow.Add(-3 * 24 * time.Hour)

	engine := newTestEngine(t, WithLocale("de"))
	out, err := engine.Render(`{{timeago posted}}`, map[string]interface{}{"posted": posted})
	require.NoError(t, err)
	assert.Equal(t, "Vor 3 Tagen", out)

	out, err = engine.Render(`{{timeago posted}}`, map[string]interface{}{"posted": posted, "lang": "es"})
	require.NoError(t, err)
	assert.Equal(t, "Hace 3 días", out)
}

func TestRenderUniqueID(t *testing.T) {
	engine := newTestEngine(t)

	out, err := engine.Render(`{{uniqueId}}|{{uniqueId}}`, nil)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^id-\d+\|id-\d+$`), out)

	ids := regexp.MustCompile(`\|`).Split(out, 2)
	assert.Equal(t, ids[0], ids[1])

	again, err := engine.Render(`{{uniqueId}}`, nil)
	require.NoError(t, err)
	assert.NotEqual(t, ids[0], again)
}

func TestRenderWhen(t *testing.T) {
	evaluator, err := cel.NewEvaluator()
	require.NoError(t, err)
	engine := newTestEngine(t, WithEvaluator(evaluator))

	tpl := `{{#when "ctx.count > 2"}}many{{else}}few{{/when}}`

	out, err := engine.Render(tpl, map[string]interface{}{"count": 3})
	require.NoError(t, err)
	assert.Equal(t, "many", out)

	out, err = engine.Render(tpl, map[string]interface{}{"count": 1})
	require.NoError(t, err)
	assert.Equal(t, "few", out)

	_, err = engine.Render(`{{#when "ctx.count + 1"}}x{{/when}}`, map[string]interface{}{"count": 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, cel.ErrNotBoolean))
}

func TestRenderWhenDisabled(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Render(`{{#when "true"}}x{{/when}}`, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrExpressionsDisabled))
}

func TestRenderNestedLayouts(t *testing.T) {
	engine := newTestEngine(t)

	require.NoError(t, engine.RegisterPartial("base",
		`<title>{{#block "title"}}Home{{/block}}</title><body>{{{block "body"}}}</body>`))
	require.NoError(t, engine.RegisterPartial("section",
		`{{#extend "base"}}`+
			`{{#content "title" mode="append"}} / Section{{/content}}`+
			`{{#content "body"}}<main>{{{block "section"}}}</main>{{/content}}`+
			`{{/extend}}`))

	page := `{{#extend "section"}}` +
		`{{#content "title" mode="append"}} / Page{{/content}}` +
		`{{#content "section"}}Hello {{name}}{{/content}}` +
		`{{/extend}}`

	out, err := engine.Render(page, map[string]interface{}{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, `<title>Home / Section / Page</title><body><main>Hello Ada</main></body>`, out)
}

func TestRenderPageReplacesLayoutContent(t *testing.T) {
	engine := newTestEngine(t)

	require.NoError(t, engine.RegisterPartial("base", `<title>{{#block "title"}}Home{{/block}}</title>`))
	require.NoError(t, engine.RegisterPartial("section",
		`{{#extend "base"}}{{#content "title"}}Section{{/content}}{{/extend}}`))

	out, err := engine.Render(`{{#extend "section"}}{{#content "title"}}Page{{/content}}{{/extend}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, `<title>Page</title>`, out)

	out, err = engine.Render(`{{#extend "section"}}{{/extend}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, `<title>Section</title>`, out)
}

func TestRenderLayoutModes(t *testing.T) {
	engine := newTestEngine(t)
	require.NoError(t, engine.RegisterPartial("base", `{{#block "nav"}}[home]{{/block}}`))

	tests := []struct {
		name string
		mode string
		want string
	}{
		{"replace", "", "[docs]"},
		{"append", "append", "[home][docs]"},
		{"prepend", "prepend", "[docs][home]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := `{{#extend "base"}}{{#content "nav" mode=mode}}[docs]{{/content}}{{/extend}}`
			out, err := engine.Render(tpl, map[string]interface{}{"mode": tt.mode})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRenderExtendContext(t *testing.T) {
	engine := newTestEngine(t)
	require.NoError(t, engine.RegisterPartial("card", `<h2>{{title}}</h2><p>{{by}}</p>`))

	out, err := engine.Render(`{{extend "card" meta by="Ada"}}`, map[string]interface{}{
		"title": "Outer",
		"meta":  map[string]interface{}{"title": "Inner"},
	})
	require.NoError(t, err)
	assert.Equal(t, `<h2>Inner</h2><p>Ada</p>`, out)
}

func TestRenderEmbedStartsFreshState(t *testing.T) {
	engine := newTestEngine(t)
	require.NoError(t, engine.RegisterPartial("base", `<title>{{#block "title"}}Home{{/block}}</title>`))

	out, err := engine.Render(`{{#content "title"}}Outer{{/content}}{{embed "base"}}|{{extend "base"}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, `<title>Home</title>|<title>Outer</title>`, out)
}

func TestRenderHasContent(t *testing.T) {
	engine := newTestEngine(t)
	require.NoError(t, engine.RegisterPartial("base",
		`{{#if (content "aside")}}<aside>{{{block "aside"}}}</aside>{{/if}}<main></main>`))

	out, err := engine.Render(`{{extend "base"}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, `<main></main>`, out)

	out, err = engine.Render(`{{#extend "base"}}{{#content "aside"}}tip{{/content}}{{/extend}}`, nil)
	require.NoError(t, err)
	assert.Equal(t, `<aside>tip</aside><main></main>`, out)
}

func TestRenderMissingPartial(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Render(`{{#extend "nope"}}{{/extend}}`, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, layout.ErrMissingPartial))
	assert.Contains(t, err.Error(), "nope")
}

func TestRenderPage(t *testing.T) {
	fsys := fstest.MapFS{
		"layouts/base.hbs": {Data: []byte(`<h1>{{#block "title"}}Site{{/block}}</h1>`)},
		"pages/home.hbs":   {Data: []byte(`{{#extend "layouts/base"}}{{#content "title" mode="append"}}: {{name}}{{/content}}{{/extend}}`)},
	}
	engine := newTestEngine(t, WithSource(partials.NewDirSource(fsys)))

	out, err := engine.RenderPage(context.Background(), "pages/home", map[string]interface{}{"name": "Home"})
	require.NoError(t, err)
	assert.Equal(t, `<h1>Site: Home</h1>`, out)

	_, err = engine.RenderPage(context.Background(), "pages/missing", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, layout.ErrMissingPartial))
}

func TestRenderPageStopsWhenContextDone(t *testing.T) {
	engine := newTestEngine(t)
	require.NoError(t, engine.RegisterPartial("base", `<title>{{#block "title"}}Home{{/block}}</title>`))
	require.NoError(t, engine.RegisterPartial("page", `{{#extend "base"}}{{/extend}}`))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.RenderPage(ctx, "page", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))

	out, err := engine.RenderPage(context.Background(), "page", nil)
	require.NoError(t, err)
	assert.Equal(t, `<title>Home</title>`, out)
}

func TestRegisteredPartialWinsOverSource(t *testing.T) {
	engine := newTestEngine(t, WithSource(partials.MapSource{"greeting": "from source"}))

	out, err := engine.RenderPage(context.Background(), "greeting", nil)
	require.NoError(t, err)
	assert.Equal(t, "from source", out)

	require.NoError(t, engine.RegisterPartial("greeting", "registered"))
	out, err = engine.RenderPage(context.Background(), "greeting", nil)
	require.NoError(t, err)
	assert.Equal(t, "registered", out)
}

func TestRenderCompileErrors(t *testing.T) {
	engine := newTestEngine(t)

	_, err := engine.Render(`{{#is a b}}unclosed`, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile template")

	assert.Error(t, engine.ValidateTemplate(`{{#if}}`))
	assert.NoError(t, engine.ValidateTemplate(`{{#is a b}}x{{/is}}`))
	assert.Error(t, engine.RegisterPartial("bad", `{{#block "x"}}`))
}

func TestTemplateCache(t *testing.T) {
	engine := newTestEngine(t)

	first, err := engine.Compile(`{{uppercase x}}`)
	require.NoError(t, err)
	second, err := engine.Compile(`{{uppercase x}}`)
	require.NoError(t, err)
	assert.Same(t, first, second)

	engine.ClearCache()
	third, err := engine.Compile(`{{uppercase x}}`)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}
