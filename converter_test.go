package jsonapi_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/reoring/jsonapi"
	"github.com/reoring/jsonapi/convert"
)

func newConverter(t *testing.T) *jsonapi.Converter {
	t.Helper()
	c, err := jsonapi.NewBuilder().
		AddResourceTypes(Article{}, (*Person)(nil), Comment{}).
		AddConverters(convert.TimeRFC3339()).
		Build()
	require.NoError(t, err)
	return c
}

func ptr[T any](v T) *T { return &v }

func sampleArticle() *Article {
	return &Article{
		ID:       "1",
		Title:    "Hello",
		Views:    42,
		Rating:   ptr(4.5),
		Author:   &Person{ID: 7, Name: "Ada"},
		Internal: "not serialized",
		Tags:     []string{"unsupported"},
		Base:     Base{Created: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		secret:   "hidden",
	}
}

func TestToJSON_SingleResource(t *testing.T) {
	c := newConverter(t)

	b, err := jsonapi.ToJSON(c, jsonapi.Single(sampleArticle()))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{
		"type":"articles","id":"1",
		"attributes":{
			"title":"Hello","views":42,"rating":4.5,"Draft":false,
			"author":{"type":"people","id":"7","attributes":{"name":"Ada"}},
			"created":"2025-01-01T00:00:00Z"
		}}}`, string(b))
	assert.NotContains(t, string(b), "hidden")
}

func TestToJSON_MemberOrder(t *testing.T) {
	c := newConverter(t)

	b, err := jsonapi.ToJSON(c, jsonapi.Single(&Person{ID: 3, Name: "Grace"}))
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"type":"people","id":"3","attributes":{"name":"Grace"}}}`, string(b))
}

func TestToJSON_NullAndCollection(t *testing.T) {
	c := newConverter(t)

	b, err := jsonapi.ToJSON(c, jsonapi.Null[*Article]())
	require.NoError(t, err)
	assert.Equal(t, `{"data":null}`, string(b))

	b, err = jsonapi.ToJSON(c, jsonapi.Single[*Article](nil))
	require.NoError(t, err)
	assert.Equal(t, `{"data":null}`, string(b))

	b, err = jsonapi.ToJSON(c, jsonapi.Collection[jsonapi.Typed](&Person{ID: 1}, nil, &Comment{Body: "hi"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":[
		{"type":"people","id":"1","attributes":{"name":""}},
		null,
		{"type":"comments","attributes":{"body":"hi"}}]}`, string(b))

	b, err = jsonapi.ToJSON(c, jsonapi.Collection[*Article]())
	require.NoError(t, err)
	assert.Equal(t, `{"data":[]}`, string(b))
}

func TestToJSON_NullAttributesOmitted(t *testing.T) {
	c := newConverter(t)

	b, err := jsonapi.ToJSON(c, jsonapi.Single(&Article{Title: "t"}))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"id":""`)
	assert.NotContains(t, string(b), `"rating"`)
	assert.NotContains(t, string(b), `"author"`)
	assert.NotContains(t, string(b), `"Note"`)
	assert.NotContains(t, string(b), `null`)
}

func TestToJSON_TypeMismatch(t *testing.T) {
	c := newConverter(t)

	_, err := jsonapi.ToJSON(c, jsonapi.Single(&FeaturedArticle{Article: Article{ID: "1"}}))
	require.Error(t, err)
	assert.ErrorIs(t, err, jsonapi.ErrTypeMismatch)
	var tm *jsonapi.TypeMismatchError
	require.ErrorAs(t, err, &tm)
	assert.Equal(t, "articles", tm.Discriminator)

	// unregistered and untyped values fail the same way
	_, err = jsonapi.ToJSON(c, jsonapi.Single[any](&Untyped{ID: "1"}))
	assert.ErrorIs(t, err, jsonapi.ErrTypeMismatch)

	other, err := jsonapi.NewBuilder().AddResourceTypes(Person{}).Build()
	require.NoError(t, err)
	_, err = jsonapi.ToJSON(other, jsonapi.Collection(&Comment{}))
	assert.ErrorIs(t, err, jsonapi.ErrTypeMismatch)
}

func TestRoundTrip_Single(t *testing.T) {
	c := newConverter(t)
	src := sampleArticle()

	b, err := jsonapi.ToJSON(c, jsonapi.Single(src))
	require.NoError(t, err)
	doc, err := jsonapi.FromJSON[*Article](c, b)
	require.NoError(t, err)

	require.True(t, doc.IsSingle())
	got, ok := doc.One()
	require.True(t, ok)

	want := *src
	want.Internal = ""
	want.Tags = nil
	if diff := cmp.Diff(&want, got, cmpopts.IgnoreUnexported(Article{})); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, got.postCreated)
	assert.Empty(t, got.secret)
}

func TestRoundTrip_PostCreateOnce(t *testing.T) {
	c := newConverter(t)

	b, err := jsonapi.ToJSON(c, jsonapi.Collection(&Article{ID: "1"}, &Article{ID: "2"}))
	require.NoError(t, err)
	doc, err := jsonapi.FromJSON[*Article](c, b)
	require.NoError(t, err)

	require.Equal(t, 2, doc.Len())
	for _, a := range doc.Data() {
		assert.Equal(t, 1, a.postCreated, "article %s", a.ID)
	}
}

func TestFromJSON_MissingIDLeavesDefault(t *testing.T) {
	c := newConverter(t)

	doc, err := jsonapi.FromJSON[*Person](c, []byte(`{"data":{"type":"people","attributes":{"name":"Ada"}}}`))
	require.NoError(t, err)
	p, ok := doc.One()
	require.True(t, ok)
	assert.Zero(t, p.ID)
	assert.Equal(t, "Ada", p.Name)
}

func TestFromJSON_NumericAndStringIDs(t *testing.T) {
	c := newConverter(t)

	doc, err := jsonapi.FromJSON[*Person](c, []byte(`{"data":[
		{"type":"people","id":"5"},
		{"type":"people","id":6},
		{"type":"people","id":"x"}]}`))
	require.NoError(t, err)
	require.Equal(t, 3, doc.Len())
	assert.Equal(t, int64(5), doc.Data()[0].ID)
	assert.Equal(t, int64(6), doc.Data()[1].ID)
	assert.Zero(t, doc.Data()[2].ID)
}

func TestFromJSON_UnknownTypeDropped(t *testing.T) {
	c := newConverter(t)

	dm, err := jsonapi.FromJSONWithMeta[*Person](c, []byte(`{"data":[
		{"type":"people","id":"1"},
		{"type":"aliens","id":"2"},
		{"type":"people","id":"3"}]}`))
	require.NoError(t, err)
	assert.False(t, dm.Document.IsSingle())
	require.Equal(t, 2, dm.Document.Len())
	assert.Equal(t, int64(1), dm.Document.Data()[0].ID)
	assert.Equal(t, int64(3), dm.Document.Data()[1].ID)

	require.Len(t, dm.Issues, 1)
	assert.Equal(t, jsonapi.CodeUnknownType, dm.Issues[0].Code)
	assert.Equal(t, "/data/1", dm.Issues[0].Path)
	assert.Equal(t, "aliens", dm.Issues[0].Params["type"])
}

func TestFromJSON_ExpectedTypeFiltersCollection(t *testing.T) {
	c := newConverter(t)
	in := []byte(`{"data":[
		{"type":"people","id":"1"},
		{"type":"comments","attributes":{"body":"b"}},
		"junk"]}`)

	dm, err := jsonapi.FromJSONWithMeta[*Person](c, in)
	require.NoError(t, err)
	require.Equal(t, 1, dm.Document.Len())
	assert.Equal(t, []string{jsonapi.CodeTypeMismatch, jsonapi.CodeInvalidResource}, dm.Issues.Codes())
	assert.Equal(t, "/data/1", dm.Issues[0].Path)
	assert.Equal(t, "/data/2", dm.Issues[1].Path)

	// an interface implemented by every resource keeps both
	all, err := jsonapi.FromJSON[jsonapi.Typed](c, in)
	require.NoError(t, err)
	require.Equal(t, 2, all.Len())
	assert.IsType(t, &Person{}, all.Data()[0])
	assert.IsType(t, &Comment{}, all.Data()[1])
}

func TestFromJSON_ValueType(t *testing.T) {
	c := newConverter(t)

	doc, err := jsonapi.FromJSON[Article](c, []byte(`{"data":{"type":"articles","id":"9"}}`))
	require.NoError(t, err)
	a, ok := doc.One()
	require.True(t, ok)
	assert.Equal(t, "9", a.ID)
	assert.Equal(t, 1, a.postCreated)
}

func TestFromJSON_SingleShapes(t *testing.T) {
	c := newConverter(t)

	for name, in := range map[string]string{
		"null":         `{"data":null}`,
		"empty object": `{"data":{}}`,
		"scalar":       `{"data":"x"}`,
		"mismatch":     `{"data":{"type":"comments"}}`,
	} {
		t.Run(name, func(t *testing.T) {
			doc, err := jsonapi.FromJSON[*Article](c, []byte(in))
			require.NoError(t, err)
			assert.True(t, doc.IsSingle())
			_, ok := doc.One()
			assert.False(t, ok)
		})
	}
}

func TestFromJSON_DocumentErrors(t *testing.T) {
	c := newConverter(t)

	_, err := jsonapi.FromJSON[*Article](c, []byte(`{"meta":{}}`))
	assert.ErrorIs(t, err, jsonapi.ErrUnsupportedDocumentShape)

	for _, in := range []string{`not json`, `[]`, `{"data":[}`} {
		_, err = jsonapi.FromJSON[*Article](c, []byte(in))
		assert.ErrorIs(t, err, jsonapi.ErrMalformedDocument, "input %q", in)
	}
}

func TestFromJSON_FieldFailuresAreIndependent(t *testing.T) {
	c := newConverter(t)

	dm, err := jsonapi.FromJSONWithMeta[*Article](c, []byte(`{"data":{"type":"articles","id":"1",
		"attributes":{"title":"ok","views":"many","rating":"high","Draft":"TRUE","created":"soon","Note":7}}}`))
	require.NoError(t, err)
	a, ok := dm.Document.One()
	require.True(t, ok)

	assert.Equal(t, "ok", a.Title)
	assert.Zero(t, a.Views)
	assert.Nil(t, a.Rating)
	assert.True(t, a.Draft)
	assert.True(t, a.Created.IsZero())
	require.NotNil(t, a.Note)
	assert.Equal(t, "7", *a.Note)

	assert.Equal(t, []string{jsonapi.CodeInvalidValue, jsonapi.CodeInvalidValue, jsonapi.CodeInvalidValue}, dm.Issues.Codes())
	paths := make([]string, len(dm.Issues))
	for i, it := range dm.Issues {
		paths[i] = it.Path
		assert.Error(t, it.Cause)
	}
	assert.Equal(t, []string{"/data/attributes/views", "/data/attributes/rating", "/data/attributes/created"}, paths)
}

func TestFromJSON_NestedResource(t *testing.T) {
	c := newConverter(t)

	dm, err := jsonapi.FromJSONWithMeta[*Article](c, []byte(`{"data":{"type":"articles","attributes":{
		"author":{"type":"comments","attributes":{"body":"wrong type"}}}}}`))
	require.NoError(t, err)
	a, _ := dm.Document.One()
	assert.Nil(t, a.Author)
	require.Len(t, dm.Issues, 1)
	assert.Equal(t, "/data/attributes/author", dm.Issues[0].Path)

	dm, err = jsonapi.FromJSONWithMeta[*Article](c, []byte(`{"data":{"type":"articles","attributes":{
		"author":{"type":"aliens"}}}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{jsonapi.CodeUnknownType}, dm.Issues.Codes())
	assert.Equal(t, "/data/attributes/author", dm.Issues[0].Path)
}

func TestFromJSON_IgnoresOtherMembers(t *testing.T) {
	c := newConverter(t)

	doc, err := jsonapi.FromJSON[*Person](c, []byte(`{
		"jsonapi":{"version":"1.1"},
		"data":{"type":"people","id":"1","attributes":{"name":"Ada","unknown":true},
			"relationships":{"friends":{"data":[]}},"links":{"self":"/people/1"}},
		"included":[{"type":"people","id":"2"}]}`))
	require.NoError(t, err)
	p, ok := doc.One()
	require.True(t, ok)
	assert.Equal(t, &Person{ID: 1, Name: "Ada"}, p)
}

func TestConverterPrecedesNativeHandling(t *testing.T) {
	shout := jsonapi.ConverterFor(
		func(s string) (string, error) { return strings.ToUpper(s), nil },
		func(s string) string { return strings.ToLower(s) },
	)
	c, err := jsonapi.NewBuilder().AddResourceTypes(Person{}).AddConverters(shout).Build()
	require.NoError(t, err)

	doc, err := jsonapi.FromJSON[*Person](c, []byte(`{"data":{"type":"people","attributes":{"name":"ada"}}}`))
	require.NoError(t, err)
	p, _ := doc.One()
	assert.Equal(t, "ADA", p.Name)

	b, err := jsonapi.ToJSON(c, jsonapi.Single(p))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"name":"ada"`)
}

func TestBuild_SchemaErrors(t *testing.T) {
	cases := map[string][]any{
		"duplicate discriminator": {Article{}, otherArticles{}},
		"not typed":               {Untyped{}},
		"empty discriminator":     {emptyType{}},
		"not a struct":            {ptr("x")},
		"nil type":                {nil},
		"multiple ids":            {twoIDs{}},
		"unsupported id":          {badID{}},
		"multiple hooks":          {twoHooks{}},
		"inherited second hook":   {inheritedHook{}},
		"hook with parameters":    {paramHook{}},
		"hook returning error":    {failingHook{}},
		"json alias collision":    {aliased{}},
		"ambiguous embedded":      {ambiguous{}},
	}
	for name, types := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := jsonapi.NewBuilder().AddResourceTypes(types...).Build()
			require.Error(t, err)
			assert.ErrorIs(t, err, jsonapi.ErrSchema)
			var se *jsonapi.SchemaError
			assert.True(t, errors.As(err, &se))
		})
	}
}

func TestBuild_CollidingAttributeNamesFail(t *testing.T) {
	_, err := jsonapi.NewBuilder().AddResourceTypes(aliased{}).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `fields Title and Heading both map to attribute "title"`)
}

func TestBuild_OwnFieldShadowsEmbedded(t *testing.T) {
	c, err := jsonapi.NewBuilder().
		AddResourceTypes(shadowed{}).
		DetectDuplicateMembers().
		Build()
	require.NoError(t, err)

	s, ok := c.Schema("shadowed")
	require.True(t, ok)
	require.Len(t, s.Attributes, 2)
	assert.Equal(t, "Title", s.Attributes[0].Name)
	assert.Equal(t, "title", s.Attributes[0].StorageName)
	assert.Equal(t, "lead", s.Attributes[1].StorageName)

	in := &shadowed{ID: "1", Title: "own", titleBase: titleBase{Title: "base", Lead: "l"}}
	b, err := jsonapi.ToJSON(c, jsonapi.Single(in))
	require.NoError(t, err)
	assert.Equal(t, `{"data":{"type":"shadowed","id":"1","attributes":{"title":"own","lead":"l"}}}`, string(b))

	out, err := jsonapi.FromJSONWithMeta[*shadowed](c, b)
	require.NoError(t, err)
	assert.Empty(t, out.Issues)
	got, ok := out.Document.One()
	require.True(t, ok)
	assert.Equal(t, "own", got.Title)
	assert.Empty(t, got.titleBase.Title)
	assert.Equal(t, "l", got.Lead)
}

func TestToJSON_CyclicResourceFails(t *testing.T) {
	c, err := jsonapi.NewBuilder().AddResourceTypes(node{}).Build()
	require.NoError(t, err)

	n := &node{ID: "1"}
	n.Parent = n
	_, err = jsonapi.ToJSON(c, jsonapi.Single(n))
	assert.ErrorIs(t, err, jsonapi.ErrCyclicResource)

	a, b := &node{ID: "a"}, &node{ID: "b"}
	a.Parent, b.Parent = b, a
	_, err = jsonapi.ToJSON(c, jsonapi.Collection(a, b))
	assert.ErrorIs(t, err, jsonapi.ErrCyclicResource)
}

func TestToJSON_SharedResourceIsNotACycle(t *testing.T) {
	c, err := jsonapi.NewBuilder().AddResourceTypes(node{}).Build()
	require.NoError(t, err)

	root := &node{ID: "root"}
	n := &node{ID: "1", Parent: root, Twin: &node{ID: "2", Parent: root}}
	b, err := jsonapi.ToJSON(c, jsonapi.Collection(n, root))
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(b), `"id":"root"`))
}

func TestBuild_DuplicateDiscriminatorNamesBothTypes(t *testing.T) {
	_, err := jsonapi.NewBuilder().AddResourceTypes(Article{}, otherArticles{}).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"articles"`)
	assert.Contains(t, err.Error(), "Article")
	assert.Contains(t, err.Error(), "otherArticles")
}

func TestBuild_SameTypeTwiceIsIdempotent(t *testing.T) {
	c, err := jsonapi.NewBuilder().AddResourceTypes(Person{}, &Person{}).Build()
	require.NoError(t, err)
	assert.Equal(t, []string{"people"}, c.Discriminators())
}

func TestMustBuild_Panics(t *testing.T) {
	assert.Panics(t, func() { jsonapi.NewBuilder().AddResourceTypes(twoHooks{}).MustBuild() })
}

func TestConverter_SchemaIntrospection(t *testing.T) {
	c := newConverter(t)

	assert.Equal(t, []string{"articles", "people", "comments"}, c.Discriminators())
	assert.True(t, c.Supports(&Article{}))
	assert.False(t, c.Supports(FeaturedArticle{}))

	s, ok := c.Schema("articles")
	require.True(t, ok)
	require.NotNil(t, s.ID)
	assert.Equal(t, "ID", s.ID.Name)
	assert.Equal(t, jsonapi.RoleID, s.ID.Role)
	assert.True(t, s.HasPostCreate())

	names := make([]string, len(s.Attributes))
	for i, f := range s.Attributes {
		names[i] = f.StorageName
	}
	// embedded fields follow the declaring type's own fields
	assert.Equal(t, []string{"title", "views", "rating", "Draft", "author", "created", "Note"}, names)

	comments, ok := c.Schema("comments")
	require.True(t, ok)
	assert.Nil(t, comments.ID)
	assert.False(t, comments.HasPostCreate())

	_, ok = c.Schema("aliens")
	assert.False(t, ok)
}

func TestConverter_WithoutTimeConverterSkipsTimeFields(t *testing.T) {
	c, err := jsonapi.NewBuilder().AddResourceTypes(Article{}, Person{}).Build()
	require.NoError(t, err)

	s, _ := c.Schema("articles")
	for _, f := range s.Attributes {
		assert.NotEqual(t, "created", f.StorageName)
	}
}

func TestConverter_LogsDroppedData(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c, err := jsonapi.NewBuilder().AddResourceTypes(Person{}).WithLogger(zap.New(core)).Build()
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("registered resource type").Len())

	_, err = jsonapi.FromJSON[*Person](c, []byte(`{"data":[{"type":"aliens"},{"type":"people","id":"nope"}]}`))
	require.NoError(t, err)

	dropped := logs.FilterMessage("jsonapi: dropped data").All()
	require.Len(t, dropped, 2)
	assert.Equal(t, jsonapi.CodeUnknownType, dropped[0].ContextMap()["code"])
	assert.Equal(t, "/data/1/id", dropped[1].ContextMap()["path"])
}

type recordingObserver struct {
	encoded, decoded []int
	issues           int
	errs             []error
}

func (o *recordingObserver) ObserveEncode(n int, err error) {
	o.encoded = append(o.encoded, n)
	o.errs = append(o.errs, err)
}

func (o *recordingObserver) ObserveDecode(n int, iss jsonapi.Issues, err error) {
	o.decoded = append(o.decoded, n)
	o.issues += len(iss)
	o.errs = append(o.errs, err)
}

func TestConverter_Observer(t *testing.T) {
	obs := &recordingObserver{}
	c, err := jsonapi.NewBuilder().AddResourceTypes(Person{}).WithObserver(obs).Build()
	require.NoError(t, err)

	_, err = jsonapi.ToJSON(c, jsonapi.Collection(&Person{ID: 1}, &Person{ID: 2}))
	require.NoError(t, err)
	_, err = jsonapi.FromJSON[*Person](c, []byte(`{"data":[{"type":"people"},{"type":"x"}]}`))
	require.NoError(t, err)
	_, err = jsonapi.FromJSON[*Person](c, []byte(`{}`))
	require.Error(t, err)

	assert.Equal(t, []int{2}, obs.encoded)
	assert.Equal(t, []int{1, 0}, obs.decoded)
	assert.Equal(t, 1, obs.issues)
	require.Len(t, obs.errs, 3)
	assert.ErrorIs(t, obs.errs[2], jsonapi.ErrUnsupportedDocumentShape)
}

func TestIssues_Error(t *testing.T) {
	iss := jsonapi.Issues{
		{Code: "a", Path: "/1"}, {Code: "b", Path: "/2"}, {Code: "c", Path: "/3"}, {Code: "d", Path: "/4"},
	}
	assert.Equal(t, "a at /1; b at /2; c at /3; ... (total 4)", iss.Error())

	got, ok := jsonapi.AsIssues(iss)
	assert.True(t, ok)
	assert.Len(t, got, 4)
	_, ok = jsonapi.AsIssues(errors.New("x"))
	assert.False(t, ok)
}

func TestFromJSON_DuplicateMembers(t *testing.T) {
	in := []byte(`{"data":{"type":"people","id":"1","attributes":{"name":"a","name":"b"}}}`)

	dm, err := jsonapi.FromJSONWithMeta[*Person](newConverter(t), in)
	require.NoError(t, err)
	assert.Empty(t, dm.Issues)

	c, err := jsonapi.NewBuilder().AddResourceTypes(Person{}).DetectDuplicateMembers().Build()
	require.NoError(t, err)
	dm, err = jsonapi.FromJSONWithMeta[*Person](c, in)
	require.NoError(t, err)
	p, ok := dm.Document.One()
	require.True(t, ok)
	assert.Equal(t, "b", p.Name)
	require.Equal(t, []string{jsonapi.CodeDuplicateMember}, dm.Issues.Codes())
	assert.Equal(t, "/data/attributes/name", dm.Issues[0].Path)
	assert.Equal(t, "name", dm.Issues[0].Params["field"])
}
