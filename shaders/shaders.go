package shaders

//
// Embedded GLSL sources of the composite pass and loading of the cloud
// compute shaders
//

import (
	_ "embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/xopoww/go-volcloud/gpu"
)

//go:embed vert.glsl
var Vert string

//go:embed frag.glsl
var Frag string

// Loader reads compute shader sources from a file system. Every file is run
// through text/template with a Params value, so a shader may write
//
//	layout(local_size_x = {{.LocalSizeX}}, local_size_y = {{.LocalSizeY}}, local_size_z = {{.LocalSizeZ}}) in;
//
// to stay in sync with the dispatch size. Files without template actions are
// returned unchanged.
type Loader struct {
	FS fs.FS
}

func NewLoader(fsys fs.FS) *Loader {
	return &Loader{FS: fsys}
}

type Params struct {
	LocalSizeX, LocalSizeY, LocalSizeZ int
}

func (l *Loader) Load(name string, local gpu.Size) (string, error) {
	raw, err := fs.ReadFile(l.FS, name)
	if err != nil {
		return "", err
	}
	return Execute(name, string(raw), Params{
		LocalSizeX: local.X,
		LocalSizeY: local.Y,
		LocalSizeZ: local.Z,
	})
}

// Execute injects data into the template source.
func Execute(name, source string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(source)
	if err != nil {
		return "", fmt.Errorf("parse template %q: %w", name, err)
	}
	bldr := strings.Builder{}
	if err := tmpl.Execute(&bldr, data); err != nil {
		return "", fmt.Errorf("execute template %q: %w", name, err)
	}
	return bldr.String(), nil
}
