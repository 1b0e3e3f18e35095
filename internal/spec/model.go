package spec

// Internal Model (IM) definitions consumed by the type resolver, the path
// compiler and the post-processor. The builder creates these values; later
// stages only fill in the derived fields.

type HttpMethod string

const (
	GET     HttpMethod = "GET"
	POST    HttpMethod = "POST"
	PUT     HttpMethod = "PUT"
	DELETE  HttpMethod = "DELETE"
	PATCH   HttpMethod = "PATCH"
	HEAD    HttpMethod = "HEAD"
	OPTIONS HttpMethod = "OPTIONS"
	TRACE   HttpMethod = "TRACE"
)

type ServiceModel struct {
	Title       string
	Version     string
	Description string
	BasePath    string
	Groups      []*OperationGroup
	Models      []*Model
}

// OperationGroup is the set of operations rendered into one API service.
type OperationGroup struct {
	Name       string // tag, "default" when untagged
	Operations []*Operation

	// Derived by the post-processor.
	ClassName   string
	APIFilename string
	Imports     []OperationImport
}

// OperationImport is a model referenced by an operation group, annotated with
// the file it is imported from.
type OperationImport struct {
	Import    string `json:"import"`
	Filename  string `json:"filename"`
	Classname string `json:"classname"`
}

type Operation struct {
	ID           string // method+path
	NickName     string
	Method       string // upper-case as read from the document; rewritten in place
	Path         string // raw template; rewritten in place
	Summary      string
	Description  string
	Tags         []string
	Parameters   []*Parameter
	ReturnSchema *Schema
	Imports      []string // referenced model class names

	// Derived by the post-processor.
	PathParams []string
	ReturnType string
}

type Parameter struct {
	RawName     string // name as declared in the document
	EncodedName string // target-language variable name
	In          string // path|query|header|cookie|body
	Required    bool
	Schema      *Schema

	// Derived by the post-processor.
	DataType string
}

type Model struct {
	ClassName            string
	Description          string
	Properties           []*Property
	AdditionalProperties *Schema  // non-nil when the model itself is a dictionary
	Imports              []string // referenced class names, may contain ClassName

	// Derived by the post-processor.
	AdditionalPropertiesType string
	TSImports                []ModelImport
}

type Property struct {
	Name     string
	Required bool
	Schema   *Schema

	// Derived by the post-processor.
	DataType string
}

// ModelImport pairs an imported class with the file it lives in.
type ModelImport struct {
	Classname string `json:"classname"`
	Filename  string `json:"filename"`
}

// SchemaKind tags the active variant of a Schema.
type SchemaKind int

const (
	KindPrimitive SchemaKind = iota
	KindArray
	KindMap
	KindObject
	KindFile
	KindReference
)

func (k SchemaKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindObject:
		return "object"
	case KindFile:
		return "file"
	case KindReference:
		return "reference"
	default:
		return "unknown"
	}
}

// Schema is a tagged union over the data shapes a type can take. Exactly one
// Kind is active; Items and Value are owned by this node.
type Schema struct {
	Kind SchemaKind
	// Name is the declared primitive name for KindPrimitive and the referenced
	// class name for KindReference.
	Name  string
	Items *Schema // KindArray
	Value *Schema // KindMap with an explicit value schema
	// AdditionalTrue marks a KindMap declared only as "additionalProperties: true".
	AdditionalTrue bool
	Description    string
}

func Primitive(name string) *Schema { return &Schema{Kind: KindPrimitive, Name: name} }
func ArrayOf(items *Schema) *Schema { return &Schema{Kind: KindArray, Items: items} }
func MapOf(value *Schema) *Schema   { return &Schema{Kind: KindMap, Value: value} }
func FreeFormMap() *Schema          { return &Schema{Kind: KindMap, AdditionalTrue: true} }
func Object() *Schema               { return &Schema{Kind: KindObject} }
func File() *Schema                 { return &Schema{Kind: KindFile} }
func Ref(name string) *Schema       { return &Schema{Kind: KindReference, Name: name} }

// HasValueSchema reports whether a map carries an explicit per-key schema.
func (s *Schema) HasValueSchema() bool {
	return s != nil && s.Kind == KindMap && s.Value != nil
}

// References returns the class names reachable from s through arrays and
// maps, in first-seen order.
func (s *Schema) References() []string {
	var out []string
	seen := map[string]struct{}{}
	var walk func(*Schema)
	walk = func(n *Schema) {
		if n == nil {
			return
		}
		switch n.Kind {
		case KindReference:
			if _, ok := seen[n.Name]; !ok {
				seen[n.Name] = struct{}{}
				out = append(out, n.Name)
			}
		case KindArray:
			walk(n.Items)
		case KindMap:
			walk(n.Value)
		}
	}
	walk(s)
	return out
}
