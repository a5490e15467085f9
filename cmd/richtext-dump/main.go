// Command richtext-dump runs the layout pipeline over a UTF-8 text file and
// a JSON attribute-run description, using a stub shaper and font registry
// (advance = 1em per rune) so the whole pipeline can be exercised without a
// HarfBuzz/FreeType font stack, the way gioui.org's own cmd/ tools are thin
// wrappers over the library packages.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"golang.org/x/image/math/fixed"

	ffont "github.com/forenoonwatch/richtext/font"
	"github.com/forenoonwatch/richtext/internal/uax24"
	"github.com/forenoonwatch/richtext/internal/xlog"
	"github.com/forenoonwatch/richtext/layout"
	"github.com/forenoonwatch/richtext/runs"
	"github.com/forenoonwatch/richtext/shaping"
)

// attrRun is one entry of the JSON attribute-run description: a run ending
// at Limit (a byte offset) under the named Typeface.
type attrRun struct {
	Limit    int    `json:"limit"`
	Typeface string `json:"typeface"`
}

func main() {
	textPath := flag.String("text", "", "path to a UTF-8 text file")
	attrsPath := flag.String("attrs", "", "path to a JSON attribute-run description")
	width := flag.Int("width", 0, "text area width in pixels (0 = no wrap)")
	verbose := flag.Bool("v", false, "enable debug tracing")
	flag.Parse()

	log := xlog.Default()
	if *verbose {
		log = xlog.New(os.Stderr, xlog.LevelDebug)
	}

	if *textPath == "" {
		fmt.Fprintln(os.Stderr, "richtext-dump: -text is required")
		os.Exit(2)
	}

	text, err := os.ReadFile(*textPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "richtext-dump: %v\n", err)
		os.Exit(1)
	}

	fonts := runs.New[ffont.Font](4)
	if *attrsPath != "" {
		raw, err := os.ReadFile(*attrsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "richtext-dump: %v\n", err)
			os.Exit(1)
		}
		var attrRuns []attrRun
		if err := json.Unmarshal(raw, &attrRuns); err != nil {
			fmt.Fprintf(os.Stderr, "richtext-dump: parsing %s: %v\n", *attrsPath, err)
			os.Exit(1)
		}
		for _, a := range attrRuns {
			fonts.Add(a.Limit, ffont.Font{Typeface: ffont.Typeface(a.Typeface)})
		}
	}
	if fonts.Len() == 0 {
		fonts.Add(len(text), ffont.Font{})
	}

	builder := &layout.Builder{
		Registry: stubRegistry{},
		Shaper:   stubShaper{},
		OnEvent: func(e layout.Event) {
			log.Debugf("event kind=%d pos=%d: %s", e.Kind, e.Pos, e.Msg)
		},
	}

	params := layout.Params{
		TextAreaWidth:  fixed.I(*width),
		TextAreaHeight: fixed.I(1 << 20),
	}

	info := builder.Build(string(text), fonts, nil, nil, nil, params)
	log.Infof("glyphs=%d visual_runs=%d lines=%d",
		builder.Stats.Glyphs, builder.Stats.VisualRuns, builder.Stats.Lines)

	dump(info)
}

func dump(info *layout.Info) {
	fmt.Printf("lines: %d\n", info.LineCount())
	for i := 0; i < info.LineCount(); i++ {
		fmt.Printf("line %d: width=%s ascent=%s total_descent=%s [%d, %d)\n",
			i, info.LineWidth(i), info.LineAscent(i), info.LineTotalDescent(i),
			info.LineStartPos(i), info.LineEndPos(i))

		start, end := 0, info.LineRunEnd(i)
		if i > 0 {
			start = info.LineRunEnd(i - 1)
		}
		for r := start; r < end; r++ {
			fmt.Printf("  run %d: chars=[%d,%d) rtl=%v glyphs=%d\n",
				r, info.RunCharStart(r), info.RunCharEnd(r), info.RunRTL(r), info.RunGlyphCount(r))
			for j, pos := range info.RunPositions(r) {
				fmt.Printf("    pos %d: (%s, %s)\n", j, pos.X, pos.Y)
			}
		}
	}
}

// stubShaper advances one em per rune, ignoring the face entirely, so the
// tool runs without a real font stack.
type stubShaper struct{}

func (stubShaper) Shape(in shaping.Input) shaping.Output {
	em := fixed.I(12)
	glyphs := make([]shaping.Glyph, len(in.Text))
	for i := range in.Text {
		glyphs[i] = shaping.Glyph{
			XAdvance:     em,
			ClusterIndex: i,
			RuneCount:    1,
		}
	}
	// Like a real shaper, report RTL glyphs in visual order.
	if in.Direction == shaping.RTL {
		for i, j := 0, len(glyphs)-1; i < j; i, j = i+1, j-1 {
			glyphs[i], glyphs[j] = glyphs[j], glyphs[i]
		}
	}
	return shaping.Output{Glyphs: glyphs, Ascent: fixed.I(9), Descent: fixed.I(-3)}
}

// stubRegistry treats an entire requested segment as covered by one
// opaque, faceless SingleScriptFont.
type stubRegistry struct{}

func (stubRegistry) GetSubFont(base ffont.Font, text string, offset *int, limit int,
	script uax24.Script, smallcaps, subscript, superscript bool) (ffont.SingleScriptFont, error) {
	*offset = limit
	return ffont.SingleScriptFont{
		Font:               base,
		SyntheticSmallCaps: smallcaps,
		SyntheticSubscript: subscript,
		SyntheticSuperscript: superscript,
	}, nil
}
