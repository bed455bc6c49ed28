package pptx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"ppt-translator/internal/types"
)

// RunKey identifies a text run's structural position within a slide:
// the slash-joined child indices of its shape down the group tree, plus the
// run's ordinal within that shape. The same key addresses the run during
// extraction and during rewrite.
type RunKey struct {
	ShapePath string
	RunIndex  int
}

// RunProps carries the formatting metadata of a run.
type RunProps struct {
	SizeHundredths int // font size in hundredths of a point, 0 when inherited
	Typeface       string
	Bold           bool
	Italic         bool
}

// TextRun is one extracted a:r run.
type TextRun struct {
	SlideIndex int
	ShapePath  string
	RunIndex   int
	Text       string
	Props      RunProps

	// byte offsets into the slide XML, -1 when not addressable
	textStart int
	textEnd   int
	szStart   int
	szEnd     int
}

// Key returns the run's positional key.
func (r *TextRun) Key() RunKey {
	return RunKey{ShapePath: r.ShapePath, RunIndex: r.RunIndex}
}

// span is a byte range in the slide XML
type span struct {
	start, end int
}

// autofitChild is an existing autofit element under a bodyPr
type autofitChild struct {
	span
	local string // noAutofit, normAutofit or spAutoFit
}

// shapeInfo records per-shape rewrite targets
type shapeInfo struct {
	bodyPr      span // full start tag, zero when the shape has no txBody
	bodyPrName  string
	selfClosing bool
	autofits    []autofitChild
}

// slideScan is the result of one pass over a slide's XML
type slideScan struct {
	runs   []TextRun
	shapes map[string]*shapeInfo
}

var szAttrRe = regexp.MustCompile(`\bsz="(\d+)"`)

// shape element names counted as spTree/grpSp children, so sibling indices
// stay stable whether or not a sibling carries text
var shapeChildNames = map[string]bool{
	"sp": true, "grpSp": true, "pic": true, "graphicFrame": true, "cxnSp": true,
}

// ExtractRuns extracts every text run of one slide together with its
// positional key and formatting metadata. Group shapes are walked to any
// depth; only leaf p:sp shapes carry text.
func ExtractRuns(data []byte, slideIndex int) ([]TextRun, error) {
	scan, err := scanSlide(data)
	if err != nil {
		return nil, err
	}
	runs := scan.runs
	for i := range runs {
		runs[i].SlideIndex = slideIndex
	}
	return runs, nil
}

// scanSlide walks the slide XML once, recording text runs with exact byte
// offsets for later splicing. xml.Decoder does the tag parsing; offsets come
// from InputOffset, so the raw bytes outside recorded spans are never
// reinterpreted.
func scanSlide(data []byte) (*slideScan, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = utf8CharsetReader

	scan := &slideScan{shapes: make(map[string]*shapeInfo)}

	var (
		elems     []string // open element local names
		counters  []int    // child counters, one per open spTree/grpSp
		groupPath []int    // indices of enclosing grpSp elements

		curShape    *shapeInfo
		curPath     string // shape path of the open p:sp, "" outside
		curRunIndex int

		inRun   bool
		curRun  TextRun
		textBuf strings.Builder
		inText  bool
	)

	parent := func() string {
		if len(elems) == 0 {
			return ""
		}
		return elems[len(elems)-1]
	}

	for {
		tokStart := int(dec.InputOffset())
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, types.NewAppError(types.ErrInvalidInput, "幻灯片 XML 解析失败", err)
		}
		tokEnd := int(dec.InputOffset())

		switch t := tok.(type) {
		case xml.StartElement:
			local := t.Name.Local

			// Sibling index bookkeeping under spTree/grpSp
			if shapeChildNames[local] && (parent() == "spTree" || parent() == "grpSp") && len(counters) > 0 {
				idx := counters[len(counters)-1]
				counters[len(counters)-1]++

				switch local {
				case "sp":
					curPath = joinPath(groupPath, idx)
					curShape = &shapeInfo{}
					scan.shapes[curPath] = curShape
					curRunIndex = 0
				case "grpSp":
					groupPath = append(groupPath, idx)
				}
			}

			switch local {
			case "spTree", "grpSp":
				counters = append(counters, 0)
			case "r":
				if curPath != "" && parent() == "p" {
					inRun = true
					curRun = TextRun{
						ShapePath: curPath,
						RunIndex:  curRunIndex,
						textStart: -1, textEnd: -1,
						szStart: -1, szEnd: -1,
					}
				}
			case "rPr":
				if inRun && parent() == "r" {
					fillRunProps(&curRun, t, data[tokStart:tokEnd], tokStart)
				}
			case "latin":
				if inRun && parent() == "rPr" {
					for _, a := range t.Attr {
						if a.Name.Local == "typeface" {
							curRun.Props.Typeface = a.Value
						}
					}
				}
			case "t":
				if inRun && parent() == "r" {
					inText = true
					textBuf.Reset()
					curRun.textStart = tokEnd
				}
			case "bodyPr":
				if curShape != nil && curPath != "" {
					curShape.bodyPr = span{tokStart, tokEnd}
					curShape.bodyPrName = rawTagName(data[tokStart:tokEnd])
					curShape.selfClosing = bytes.HasSuffix(bytes.TrimSpace(data[tokStart:tokEnd]), []byte("/>"))
				}
			case "noAutofit", "normAutofit", "spAutoFit":
				if curShape != nil && parent() == "bodyPr" {
					// Span closes on the matching EndElement below
					curShape.autofits = append(curShape.autofits, autofitChild{
						span:  span{tokStart, -1},
						local: local,
					})
				}
			}

			elems = append(elems, local)

		case xml.EndElement:
			local := t.Name.Local
			if len(elems) > 0 {
				elems = elems[:len(elems)-1]
			}

			switch local {
			case "spTree", "grpSp":
				if len(counters) > 0 {
					counters = counters[:len(counters)-1]
				}
				if local == "grpSp" && len(groupPath) > 0 {
					groupPath = groupPath[:len(groupPath)-1]
				}
			case "sp":
				curShape = nil
				curPath = ""
			case "t":
				if inText {
					inText = false
					// Content ends where the closing (or self-closing) tag
					// begins: the last '<' inside the recorded region.
					if idx := bytes.LastIndexByte(data[curRun.textStart:tokEnd], '<'); idx >= 0 {
						curRun.textEnd = curRun.textStart + idx
						curRun.Text = textBuf.String()
					} else {
						// Self-closing <a:t/>: nothing to replace
						curRun.textStart, curRun.textEnd = -1, -1
					}
				}
			case "r":
				if inRun {
					inRun = false
					scan.runs = append(scan.runs, curRun)
					curRunIndex++
				}
			case "noAutofit", "normAutofit", "spAutoFit":
				if curShape != nil && len(curShape.autofits) > 0 {
					last := &curShape.autofits[len(curShape.autofits)-1]
					if last.local == local && last.end < 0 {
						last.end = tokEnd
					}
				}
			}

		case xml.CharData:
			if inText {
				textBuf.Write(t)
			}
		}
	}

	if len(elems) != 0 {
		return nil, types.NewAppError(types.ErrInvalidInput, "幻灯片 XML 结构不完整",
			errors.New("unbalanced elements"))
	}
	return scan, nil
}

// utf8CharsetReader accepts only encoding labels that resolve to UTF-8
// ("utf8", "UTF-8", ...). Splice offsets index the raw slide bytes; a
// transcoded stream would shift every offset, so any other declared encoding
// is rejected instead of decoded.
func utf8CharsetReader(label string, input io.Reader) (io.Reader, error) {
	if _, name := charset.Lookup(label); name == "utf-8" {
		return input, nil
	}
	return nil, fmt.Errorf("unsupported slide encoding %q", label)
}

// fillRunProps reads sz/b/i off an rPr start tag and records the byte range
// of the numeric sz value for splicing. Non-numeric sz values (placeholder
// sizes like "quarter") are left alone.
func fillRunProps(run *TextRun, el xml.StartElement, rawTag []byte, tagOffset int) {
	for _, a := range el.Attr {
		switch a.Name.Local {
		case "sz":
			if v, err := strconv.Atoi(a.Value); err == nil {
				run.Props.SizeHundredths = v
			}
		case "b":
			run.Props.Bold = a.Value == "1" || a.Value == "true"
		case "i":
			run.Props.Italic = a.Value == "1" || a.Value == "true"
		}
	}
	if run.Props.SizeHundredths > 0 {
		if loc := szAttrRe.FindSubmatchIndex(rawTag); loc != nil {
			run.szStart = tagOffset + loc[2]
			run.szEnd = tagOffset + loc[3]
		}
	}
}

// rawTagName returns the tag name as written in the source, prefix included
// (e.g. "a:bodyPr").
func rawTagName(rawTag []byte) string {
	s := strings.TrimPrefix(string(rawTag), "<")
	for i, r := range s {
		if r == ' ' || r == '>' || r == '/' || r == '\t' || r == '\n' {
			return s[:i]
		}
	}
	return s
}

// joinPath renders a shape path like "2" or "1/0/3"
func joinPath(groups []int, leaf int) string {
	var sb strings.Builder
	for _, g := range groups {
		sb.WriteString(strconv.Itoa(g))
		sb.WriteByte('/')
	}
	sb.WriteString(strconv.Itoa(leaf))
	return sb.String()
}
