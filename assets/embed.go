// Package assets embeds the reference overlays shipped with orthy.
package assets

import (
	"embed"
	"io/fs"

	"github.com/orthybt/orthy/internal/control"
)

//go:embed overlays/*.svg
var embedded embed.FS

// FS holds the embedded overlay files under "overlays/".
var FS fs.FS = embedded

// References lists the reference overlays in panel order.
var References = []control.Reference{
	{Name: "Ruler", File: "overlays/ruler.svg"},
	{Name: "Angulation", File: "overlays/angulation.svg"},
	{Name: "Normal", File: "overlays/normal.svg"},
	{Name: "Tapered", File: "overlays/tapered.svg"},
	{Name: "Ovoide", File: "overlays/ovoide.svg"},
	{Name: "Narrow Tapered", File: "overlays/narrow_tapered.svg"},
	{Name: "Narrow Ovoide", File: "overlays/narrow_ovoide.svg"},
}
