// Package media turns images linked from slides into files a display can
// show: SVG is rasterized, large images are scaled down. Generated files are
// registered as show artifacts and removed when the show stops.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"slideshow/config"
	"slideshow/misc"
	"slideshow/show"
)

// artifact source key of the directory generated files are put in
const dirSource = "media:dir"

var errUnsupported = errors.New("unsupported media type")

// Preparer implements show.MediaPreparer.
type Preparer struct {
	cfg  *config.MediaConfig
	base string
	log  *zap.Logger
}

// New returns preparer resolving relative links against base directory.
func New(cfg *config.MediaConfig, base string, log *zap.Logger) *Preparer {
	return &Preparer{cfg: cfg, base: base, log: log}
}

// Prepare never fails, links which could not be processed are logged and left
// out of the result.
func (p *Preparer) Prepare(slide show.Slide, links []string, arts *show.Artifacts) map[string]string {
	resolved := make(map[string]string, len(links))
	for _, link := range links {
		path := p.resolve(link)
		if art, ok := arts.Lookup(path); ok {
			resolved[link] = art.Path
			continue
		}
		out, err := p.prepare(path, arts)
		if err != nil {
			p.log.Warn("Unable to prepare media, leaving link as is",
				zap.Int("slide", slide.Ordinal), zap.String("link", link), zap.Error(err))
			continue
		}
		resolved[link] = out
	}
	return resolved
}

func (p *Preparer) resolve(link string) string {
	link = strings.TrimPrefix(link, "file:")
	if strings.HasPrefix(link, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			link = filepath.Join(home, link[2:])
		}
	}
	if !filepath.IsAbs(link) {
		link = filepath.Join(p.base, link)
	}
	if abs, err := filepath.Abs(link); err == nil {
		return abs
	}
	return link
}

func isSVG(path string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		return true
	}
	head := data[:min(len(data), 512)]
	return bytes.Contains(head, []byte("<svg"))
}

// prepare returns path of the file to display instead of path. Images which
// fit and are in a format any display handles are used directly.
func (p *Preparer) prepare(path string, arts *show.Artifacts) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if isSVG(path, data) {
		img, err := rasterizeSVG(data, p.cfg.MaxWidth, p.cfg.MaxHeight)
		if err != nil {
			return "", fmt.Errorf("unable to rasterize svg: %w", err)
		}
		p.log.Debug("SVG rasterized", zap.String("path", path), zap.Stringer("bounds", img.Bounds()))
		return p.store(path, img, "png", arts)
	}

	kind, err := filetype.Match(data)
	if err != nil {
		return "", err
	}
	if !filetype.IsImage(data) {
		return "", fmt.Errorf("%w: %s", errUnsupported, kind.MIME.Value)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("unable to decode %s: %w", kind.MIME.Value, err)
	}

	scaled := p.scale(img)
	if scaled == img && (format == "png" || format == "jpeg" || format == "gif") {
		return path, nil
	}
	if format != "jpeg" {
		format = "png"
	}
	p.log.Debug("Image converted", zap.String("path", path), zap.String("from", kind.Extension),
		zap.Stringer("original", img.Bounds()), zap.Stringer("bounds", scaled.Bounds()))
	return p.store(path, scaled, format, arts)
}

// scale applies scale factor and shrinks image into configured box. Image is
// returned unchanged when nothing has to be done.
func (p *Preparer) scale(img image.Image) image.Image {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if f := p.cfg.ScaleFactor; f > 0 && f != 1.0 {
		w, h = max(int(float64(w)*f), 1), max(int(float64(h)*f), 1)
	}
	w, h = fitBox(w, h, p.cfg.MaxWidth, p.cfg.MaxHeight)
	if w == img.Bounds().Dx() && h == img.Bounds().Dy() {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

func (p *Preparer) store(source string, img image.Image, format string, arts *show.Artifacts) (string, error) {
	dir, err := p.artifactsDir(arts)
	if err != nil {
		return "", err
	}

	if isGrayscale(img) {
		img = toGray(img)
	}

	var data []byte
	switch format {
	case "jpeg":
		data, err = encodeJPEG(img, p.cfg.JPEGQuality)
	default:
		format = "png"
		buf := new(bytes.Buffer)
		err = imaging.Encode(buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestSpeed))
		data = buf.Bytes()
	}
	if err != nil {
		return "", fmt.Errorf("unable to encode %s: %w", format, err)
	}

	name := slug.Make(strings.TrimSuffix(filepath.Base(source), filepath.Ext(source)))
	if len(name) == 0 {
		name = "image"
	}
	out := filepath.Join(dir, fmt.Sprintf("%03d-%s.%s", arts.Len(), name, format))
	if err := os.WriteFile(out, data, 0644); err != nil {
		return "", err
	}
	arts.Add(show.Artifact{Source: source, Path: out})
	return out, nil
}

// artifactsDir creates directory for generated files on first use. It is
// registered before anything it contains, so it is removed last.
func (p *Preparer) artifactsDir(arts *show.Artifacts) (string, error) {
	if art, ok := arts.Lookup(dirSource); ok {
		return art.Path, nil
	}
	parent := p.cfg.ArtifactsDir
	if len(parent) == 0 {
		parent = os.TempDir()
	}
	dir := filepath.Join(parent, misc.GetAppName()+"-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("unable to create directory for generated media: %w", err)
	}
	arts.Add(show.Artifact{Source: dirSource, Path: dir})
	p.log.Debug("Generated media directory created", zap.String("dir", dir))
	return dir, nil
}
