package jsonapi_test

import "time"

type Base struct {
	Created time.Time `jsonapi:"created"`
	Note    *string
}

type Article struct {
	ID       string   `jsonapi:"id"`
	Title    string   `jsonapi:"title"`
	Views    int64    `jsonapi:"views"`
	Rating   *float64 `json:"rating,omitempty"`
	Draft    bool
	Author   *Person `jsonapi:"author"`
	Internal string  `jsonapi:"-"`
	Tags     []string
	Base

	secret      string
	postCreated int
}

func (*Article) ResourceType() string { return "articles" }

func (a *Article) PostCreate() { a.postCreated++ }

type Person struct {
	ID   int64  `jsonapi:"id"`
	Name string `jsonapi:"name"`
}

func (Person) ResourceType() string { return "people" }

// FeaturedArticle inherits the "articles" discriminator through embedding.
type FeaturedArticle struct {
	Article
	Badge string
}

type Comment struct {
	Body string `jsonapi:"body"`
}

func (*Comment) ResourceType() string { return "comments" }

type Untyped struct {
	ID string `jsonapi:"id"`
}

type emptyType struct{}

func (emptyType) ResourceType() string { return "" }

type otherArticles struct {
	ID string `jsonapi:"id"`
}

func (otherArticles) ResourceType() string { return "articles" }

type twoIDs struct {
	ID    string `jsonapi:"id"`
	Other int    `jsonapi:"id"`
}

func (twoIDs) ResourceType() string { return "two-ids" }

type badID struct {
	ID []string `jsonapi:"id"`
}

func (badID) ResourceType() string { return "bad-id" }

type twoHooks struct{}

func (*twoHooks) ResourceType() string { return "two-hooks" }
func (*twoHooks) PostCreate()          {}
func (*twoHooks) PostCreateAgain()     {}

type hookBase struct{}

func (*hookBase) PostCreateBase() {}

type inheritedHook struct {
	hookBase
}

func (*inheritedHook) ResourceType() string { return "inherited-hook" }
func (*inheritedHook) PostCreate()          {}

type paramHook struct{}

func (*paramHook) ResourceType() string { return "param-hook" }
func (*paramHook) PostCreate(string)    {}

type failingHook struct{}

func (*failingHook) ResourceType() string { return "failing-hook" }
func (*failingHook) PostCreate() error    { return nil }

type titleBase struct {
	Title string `jsonapi:"title"`
	Lead  string `jsonapi:"lead"`
}

// shadowed declares its own title, hiding the embedded one.
type shadowed struct {
	ID    string `jsonapi:"id"`
	Title string `jsonapi:"title"`
	titleBase
}

func (*shadowed) ResourceType() string { return "shadowed" }

type aliased struct {
	Title   string `jsonapi:"title"`
	Heading string `json:"title"`
}

func (aliased) ResourceType() string { return "aliased" }

type leadBase struct {
	Lead string `jsonapi:"lead"`
}

type ambiguous struct {
	titleBase
	leadBase
}

func (ambiguous) ResourceType() string { return "ambiguous" }

type node struct {
	ID     string `jsonapi:"id"`
	Parent *node  `jsonapi:"parent"`
	Twin   *node  `jsonapi:"twin"`
}

func (*node) ResourceType() string { return "nodes" }
