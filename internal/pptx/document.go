// Package pptx reads and rewrites the slide XML of PowerPoint (.pptx)
// containers. Only text-run content, run-property font sizes, and text-body
// autofit settings are ever touched; every other byte of the container
// passes through unmodified, which keeps output deterministic.
package pptx

import (
	"archive/zip"
	"io"
	"os"
	"path"
	"regexp"
	"sort"
	"strconv"

	"ppt-translator/internal/logger"
	"ppt-translator/internal/types"
)

var slideNameRe = regexp.MustCompile(`^slide(\d+)\.xml$`)

// Document is an opened presentation container.
type Document struct {
	path    string
	zr      *zip.ReadCloser
	slides  []*zip.File // slide entries, sorted by slide number
	updated map[string][]byte
}

// Open opens a .pptx file and indexes its slides in deck order.
func Open(filePath string) (*Document, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, types.NewAppErrorWithDetails(types.ErrFileNotFound, "文件不存在", filePath, err)
	}

	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput, "无法打开 PPTX 文件", filePath, err)
	}

	var slides []*zip.File
	for _, f := range zr.File {
		if path.Dir(f.Name) != "ppt/slides" {
			continue
		}
		if slideNameRe.MatchString(path.Base(f.Name)) {
			slides = append(slides, f)
		} else {
			logger.Debug("skipping non-slide entry", logger.String("name", f.Name))
		}
	}

	sort.Slice(slides, func(i, j int) bool {
		return slideNumber(slides[i].Name) < slideNumber(slides[j].Name)
	})

	logger.Info("presentation opened",
		logger.String("path", filePath), logger.Int("slides", len(slides)))
	return &Document{
		path:    filePath,
		zr:      zr,
		slides:  slides,
		updated: make(map[string][]byte),
	}, nil
}

// slideNumber extracts the number from a slideN.xml entry name.
func slideNumber(name string) int {
	m := slideNameRe.FindStringSubmatch(path.Base(name))
	if len(m) > 1 {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

// Close releases the underlying zip reader.
func (d *Document) Close() error {
	return d.zr.Close()
}

// Path returns the file path the document was opened from.
func (d *Document) Path() string { return d.path }

// SlideCount returns the number of slides in the deck.
func (d *Document) SlideCount() int { return len(d.slides) }

// SlideName returns the container entry name of slide i (0-based deck order).
func (d *Document) SlideName(i int) string { return d.slides[i].Name }

// SlideXML returns the raw XML of slide i, the updated version if one has
// been set.
func (d *Document) SlideXML(i int) ([]byte, error) {
	f := d.slides[i]
	if data, ok := d.updated[f.Name]; ok {
		return data, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput, "无法读取幻灯片", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput, "无法读取幻灯片", f.Name, err)
	}
	return data, nil
}

// SetSlideXML replaces the XML of slide i. The change takes effect on Save.
func (d *Document) SetSlideXML(i int, data []byte) {
	d.updated[d.slides[i].Name] = data
}

// Save writes the document to outPath. Untouched entries are copied raw,
// bit-identical to the source; rewritten slides are re-deflated with the
// source entry's header metadata so repeated runs produce identical bytes.
func (d *Document) Save(outPath string) error {
	out, err := os.Create(outPath)
	if err != nil {
		return types.NewAppErrorWithDetails(types.ErrInvalidInput, "无法创建输出文件", outPath, err)
	}

	zw := zip.NewWriter(out)
	for _, f := range d.zr.File {
		data, rewritten := d.updated[f.Name]
		if !rewritten {
			if err := zw.Copy(f); err != nil {
				return d.saveFailed(out, outPath, f.Name, err)
			}
			continue
		}

		header := f.FileHeader
		header.CRC32 = 0
		header.CompressedSize = 0
		header.CompressedSize64 = 0
		header.UncompressedSize = 0
		header.UncompressedSize64 = 0
		w, err := zw.CreateHeader(&header)
		if err != nil {
			return d.saveFailed(out, outPath, f.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			return d.saveFailed(out, outPath, f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return d.saveFailed(out, outPath, "", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outPath)
		return types.NewAppErrorWithDetails(types.ErrInvalidInput, "保存输出文件失败", outPath, err)
	}

	logger.Info("presentation saved",
		logger.String("path", outPath), logger.Int("rewrittenSlides", len(d.updated)))
	return nil
}

func (d *Document) saveFailed(out *os.File, outPath, entry string, err error) error {
	out.Close()
	os.Remove(outPath)
	return types.NewAppErrorWithDetails(types.ErrInvalidInput, "保存输出文件失败", entry, err)
}
