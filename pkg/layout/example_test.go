package layout_test

import (
	"fmt"

	"github.com/matzehuels/anchorlayout/pkg/layout"
)

type box string

func (b box) ID() string { return string(b) }

func ExampleResolver_Resolve() {
	reg := layout.NewRegistry()
	reg.Add(box("header"), layout.Constraints{}.WithHeight(40))
	reg.Add(box("body"), layout.Constraints{}.
		WithTop("header", layout.AlignBottom, 8).
		WithBottom("footer", layout.AlignTop, 8))
	reg.Add(box("footer"), layout.Constraints{}.
		WithBottom("", layout.VAlignDefault, 0).
		WithHeight(24))
	reg.Add(box("logo"), layout.Constraints{}.
		WithCenterX("header", layout.HAlignDefault, 0).
		WithCenterY("header", layout.VAlignDefault, 0).
		WithSize(32, 32))

	res := layout.NewResolver(reg)
	for i, r := range res.Resolve(layout.Extent{Width: 320, Height: 240}) {
		fmt.Println(reg.Entries()[i].ID(), r)
	}
	// Output:
	// header (0,0 320x40)
	// body (0,48 320x160)
	// footer (0,216 320x24)
	// logo (144,4 32x32)
}

func ExampleCollector() {
	reg := layout.NewRegistry()
	reg.Add(box("a"), layout.Constraints{}.WithLeft("b", layout.AlignRight, 0))
	reg.Add(box("b"), layout.Constraints{}.WithLeft("a", layout.AlignRight, 0))

	var diags layout.Collector
	layout.NewResolver(reg, layout.WithSink(&diags)).Resolve(layout.Extent{Width: 100, Height: 100})

	for _, d := range diags.Diagnostics() {
		fmt.Println(d)
	}
	// Output:
	// reference cycle: a -> b -> a
}
