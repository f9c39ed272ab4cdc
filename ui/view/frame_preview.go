package view

import (
	"image"

	"github.com/soocke/viewer-markup/ui/images"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

// FramePreview shows a thumbnail of the captured frame in the main window.
type FramePreview interface {
	UpdatePreview(img image.Image)
	Reset()
}

type framePreview struct {
	label *LabelWidget
	photo *Img // current Tk photo, deleted before it is replaced
}

const (
	maxPreviewW = 400
	maxPreviewH = 225
)

// NewFramePreview creates the preview label spanning columns 0-4 of row.
func NewFramePreview(row int) FramePreview {
	photo := NewPhoto(Data(placeholderPNG()))
	label := Label(Image(photo), Borderwidth(1), Relief("sunken"))
	Grid(label, Row(row), Column(0), Columnspan(5), Sticky("we"), Padx("0.4m"), Pady("0.4m"))
	return &framePreview{label: label, photo: photo}
}

func placeholderPNG() []byte {
	return images.EncodePNG(image.NewRGBA(image.Rect(0, 0, 200, 120)))
}

func (v *framePreview) UpdatePreview(img image.Image) {
	if v.label == nil || img == nil {
		return
	}
	v.set(images.EncodePNG(images.ScaleToFit(img, maxPreviewW, maxPreviewH)))
}

func (v *framePreview) Reset() {
	if v.label == nil {
		return
	}
	v.set(placeholderPNG())
}

func (v *framePreview) set(png []byte) {
	if v.photo != nil {
		v.photo.Delete()
	}
	v.photo = NewPhoto(Data(png))
	v.label.Configure(Image(v.photo))
}
