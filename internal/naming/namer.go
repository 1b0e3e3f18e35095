package naming

// Default package names of the generated client layout.
const (
	DefaultAPIPackage   = "api"
	DefaultModelPackage = "model"
)

// Namer binds the conversions in this package to concrete API and model
// package names. The zero value uses the defaults.
type Namer struct {
	APIPackage   string
	ModelPackage string
}

func (n Namer) apiPackage() string {
	if n.APIPackage == "" {
		return DefaultAPIPackage
	}
	return n.APIPackage
}

func (n Namer) modelPackage() string {
	if n.ModelPackage == "" {
		return DefaultModelPackage
	}
	return n.ModelPackage
}

func (Namer) ToAPIName(name string) string                { return ToAPIName(name) }
func (Namer) ToAPIFilename(name string) string            { return ToAPIFilename(name) }
func (Namer) APIFilenameFromClassname(class string) string { return APIFilenameFromClassname(class) }
func (Namer) ToModelName(name string) string              { return ToModelName(name) }
func (Namer) ToModelFilename(name string) string          { return ToModelFilename(name) }
func (Namer) ToVarName(name string) string                { return ToVarName(name) }

func (n Namer) ToAPIImport(name string) string { return ToAPIImport(n.apiPackage(), name) }

// ToModelImport returns "<modelPackage>/<model filename>" for a class name.
func (n Namer) ToModelImport(name string) string {
	return ToModelImport(n.modelPackage(), ToModelFilename(name))
}

func (n Namer) ModelnameFromModelFilename(filename string) string {
	return ModelnameFromModelFilename(n.modelPackage(), filename)
}
