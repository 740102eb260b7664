package media

import (
	"path"
	"path/filepath"
	"strings"
)

var defaultDirs = map[Category]string{
	CategoryImage: "images",
	CategoryPDF:   "pdf",
	CategoryAudio: "audio",
	CategoryVideo: "video",
}

// StorageConfig describes where assets live. It is built once at startup and
// only read afterwards.
type StorageConfig struct {
	root        string
	servePrefix string
	dirs        map[Category]string
	variants    []VariantSpec
}

func NewStorageConfig(root, servePrefix string) StorageConfig {
	dirs := make(map[Category]string, len(defaultDirs))
	for k, v := range defaultDirs {
		dirs[k] = v
	}
	return StorageConfig{
		root:        root,
		servePrefix: "/" + strings.Trim(servePrefix, "/"),
		dirs:        dirs,
		variants:    append([]VariantSpec(nil), Variants...),
	}
}

func (c StorageConfig) Root() string        { return c.root }
func (c StorageConfig) ServePrefix() string { return c.servePrefix }

// Variants returns the image variant table.
func (c StorageConfig) Variants() []VariantSpec {
	return append([]VariantSpec(nil), c.variants...)
}

// Variant looks up a variant by name.
func (c StorageConfig) Variant(name string) (VariantSpec, bool) {
	for _, v := range c.variants {
		if v.Name == name {
			return v, true
		}
	}
	return VariantSpec{}, false
}

// Dir is the top-level directory of a category.
func (c StorageConfig) Dir(cat Category) string {
	return c.dirs[cat]
}

// CategoryForDir reverses Dir.
func (c StorageConfig) CategoryForDir(dir string) (Category, bool) {
	for cat, d := range c.dirs {
		if d == dir {
			return cat, true
		}
	}
	return "", false
}

// Folder is the value stored on the record: the category directory, followed
// by the normalized folder when there is one.
func (c StorageConfig) Folder(cat Category, folder string) string {
	if folder == "" {
		return c.Dir(cat)
	}
	return c.Dir(cat) + "/" + folder
}

// SubFolder strips the category directory from a stored record folder.
func (c StorageConfig) SubFolder(cat Category, recordFolder string) string {
	dir := c.Dir(cat)
	if recordFolder == dir {
		return ""
	}
	return strings.TrimPrefix(recordFolder, dir+"/")
}

type LayoutInput struct {
	Category  Category
	Folder    string // normalized, without the category directory
	Variant   string // ignored for non-image categories
	BaseName  string
	Extension string // without the leading dot
}

// Location addresses one physical file.
type Location struct {
	// Key is the slash separated path below the storage root.
	Key        string
	DiskPath   string
	PublicPath string
}

// Layout computes where a file is stored. It performs no I/O.
func (c StorageConfig) Layout(in LayoutInput) Location {
	variant := in.Variant
	if in.Category != CategoryImage {
		variant = ""
	}
	name := in.BaseName
	if in.Extension != "" {
		name += "." + in.Extension
	}
	key := path.Join(c.Dir(in.Category), in.Folder, variant, name)
	return Location{
		Key:        key,
		DiskPath:   filepath.Join(c.root, filepath.FromSlash(key)),
		PublicPath: c.PublicPath(key),
	}
}

// PublicPath exposes a storage key under the serving prefix.
func (c StorageConfig) PublicPath(key string) string {
	return path.Join(c.servePrefix, key)
}

// KeyFromPublicPath reverses PublicPath. ok is false for paths outside the prefix.
func (c StorageConfig) KeyFromPublicPath(p string) (string, bool) {
	rest, ok := strings.CutPrefix(p, strings.TrimSuffix(c.servePrefix, "/")+"/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

// ResponsiveKey names a variant entry in the record, e.g. "image_small".
func ResponsiveKey(cat Category, variant string) string {
	return string(cat) + "_" + variant
}
