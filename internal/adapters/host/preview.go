package host

import (
	"context"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"

	"github.com/kamal-hamza/px-cli/internal/core/domain"
)

const previewQuality = 90

// previewColors are the card backgrounds, picked by scene name
var previewColors = [][3]float64{
	{0.20, 0.24, 0.32},
	{0.27, 0.20, 0.31},
	{0.18, 0.30, 0.27},
	{0.33, 0.25, 0.18},
	{0.22, 0.22, 0.22},
}

// CapturePreview renders a preview card for the open scene and writes it as a JPEG
func (h *FileHost) CapturePreview(ctx context.Context, path string, width, height int) error {
	if width <= 0 || height <= 0 {
		return domain.NewValidationError("preview size", fmt.Sprintf("%dx%d", width, height))
	}

	s, err := h.view()
	if err != nil {
		return err
	}
	scene := h.scenePath(s)
	outline, err := readOutline(OutlinePath(scene))
	if err != nil {
		return err
	}

	title := domain.Stem(scene)
	if s.Scene == "" {
		title = untitledName
	}

	dc := renderCard(title, len(outline.Objects), width, height)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := gg.SaveJPG(path, dc.Image(), previewQuality); err != nil {
		return fmt.Errorf("failed to write preview: %w", err)
	}
	h.log.Debug("captured preview", "path", path, "width", width, "height", height)
	return nil
}

func renderCard(title string, objects, width, height int) *gg.Context {
	w, hgt := float64(width), float64(height)
	dc := gg.NewContext(width, height)

	bg := previewColors[colorIndex(title)]
	dc.SetRGB(bg[0], bg[1], bg[2])
	dc.Clear()

	// Frame
	dc.SetRGB(0.9, 0.9, 0.9)
	dc.SetLineWidth(2)
	dc.DrawRectangle(4, 4, w-8, hgt-8)
	dc.Stroke()

	dc.DrawStringAnchored(title, w/2, hgt/2, 0.5, 0.5)
	dc.SetRGB(0.7, 0.7, 0.7)
	dc.DrawStringAnchored(fmt.Sprintf("%d objects", objects), w/2, hgt-16, 0.5, 0.5)
	return dc
}

func colorIndex(name string) int {
	h := fnv.New32a()
	h.Write([]byte(name))
	return int(h.Sum32() % uint32(len(previewColors)))
}
