package pptx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"ppt-translator/internal/types"
)

// splice replaces data[start:end] with repl
type splice struct {
	start, end int
	repl       []byte
}

// RewriteSlide applies run replacements to a slide's XML by byte splicing.
// Only the text content of replaced runs, their sz attribute values, and the
// autofit setting of touched shapes change; all other bytes pass through as
// read. A nil sizer disables font shrinking.
func RewriteSlide(data []byte, repls map[RunKey]string, sizer *FontSizer) ([]byte, error) {
	if len(repls) == 0 {
		return data, nil
	}

	scan, err := scanSlide(data)
	if err != nil {
		return nil, err
	}

	var splices []splice
	touched := make(map[string]bool)

	for i := range scan.runs {
		run := &scan.runs[i]
		repl, ok := repls[run.Key()]
		if !ok || run.textStart < 0 {
			continue
		}

		var esc bytes.Buffer
		if err := xml.EscapeText(&esc, []byte(repl)); err != nil {
			return nil, types.NewAppError(types.ErrInternal, "转义译文失败", err)
		}
		splices = append(splices, splice{run.textStart, run.textEnd, esc.Bytes()})
		touched[run.ShapePath] = true

		if sizer == nil || run.Props.SizeHundredths <= 0 || run.szStart < 0 {
			continue
		}
		newSize := sizer.SizeFor(run.Props.SizeHundredths,
			utf8.RuneCountInString(run.Text), utf8.RuneCountInString(repl))
		if newSize != run.Props.SizeHundredths {
			splices = append(splices, splice{run.szStart, run.szEnd,
				[]byte(strconv.Itoa(newSize))})
		}
	}

	for path := range touched {
		info := scan.shapes[path]
		if info == nil || info.bodyPr.end == 0 {
			continue
		}
		splices = append(splices, autofitSplices(data, info)...)
	}

	return applySplices(data, splices)
}

// autofitSplices normalizes a touched shape's text body to normAutofit so the
// box keeps its extent and, if the renderer supports it, scales overset text
// down instead of growing. An existing normAutofit is left alone, scale
// factors included.
func autofitSplices(data []byte, info *shapeInfo) []splice {
	for _, af := range info.autofits {
		if af.local == "normAutofit" {
			return nil
		}
	}

	prefix := nsPrefix(info.bodyPrName)
	normTag := []byte("<" + prefix + "normAutofit/>")

	if len(info.autofits) > 0 {
		// Replace the first autofit element, drop any others
		out := make([]splice, 0, len(info.autofits))
		for i, af := range info.autofits {
			if af.end < 0 {
				continue
			}
			if i == 0 {
				out = append(out, splice{af.start, af.end, normTag})
			} else {
				out = append(out, splice{af.start, af.end, nil})
			}
		}
		return out
	}

	if info.selfClosing {
		// <a:bodyPr .../> becomes <a:bodyPr ...><a:normAutofit/></a:bodyPr>
		raw := data[info.bodyPr.start:info.bodyPr.end]
		slash := bytes.LastIndexByte(raw, '/')
		if slash < 0 {
			return nil
		}
		repl := []byte(">" + string(normTag) + "</" + info.bodyPrName + ">")
		return []splice{{info.bodyPr.start + slash, info.bodyPr.end, repl}}
	}

	// Paired bodyPr without an autofit child: insert one right after the
	// start tag, the position the schema expects it at
	return []splice{{info.bodyPr.end, info.bodyPr.end, normTag}}
}

// nsPrefix returns the namespace prefix of a raw tag name, colon included
// ("a:bodyPr" gives "a:", an unprefixed name gives "").
func nsPrefix(tagName string) string {
	if i := strings.IndexByte(tagName, ':'); i >= 0 {
		return tagName[:i+1]
	}
	return ""
}

// applySplices assembles the output, verifying the splices are in-bounds and
// non-overlapping first.
func applySplices(data []byte, splices []splice) ([]byte, error) {
	sort.Slice(splices, func(i, j int) bool { return splices[i].start < splices[j].start })

	prev := 0
	for _, s := range splices {
		if s.start < prev || s.end < s.start || s.end > len(data) {
			return nil, types.NewAppError(types.ErrInternal, "幻灯片改写区间冲突",
				errors.New("overlapping splices"))
		}
		prev = s.end
	}

	var out bytes.Buffer
	out.Grow(len(data) + 256)
	pos := 0
	for _, s := range splices {
		out.Write(data[pos:s.start])
		out.Write(s.repl)
		pos = s.end
	}
	out.Write(data[pos:])
	return out.Bytes(), nil
}
