package imageprocessor

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"shapecluster/types"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// StandardImageLoader decodes files with OpenCV in grayscale mode
type StandardImageLoader struct {
	BaseImageLoader
}

// NewStandardImageLoader creates a new loader for the formats OpenCV reads
func NewStandardImageLoader() *StandardImageLoader {
	return &StandardImageLoader{
		BaseImageLoader: BaseImageLoader{
			SupportedFormats: []FormatType{
				FormatJPEG,
				FormatPNG,
				FormatBMP,
				FormatWEBP,
				FormatTIFF,
			},
		},
	}
}

// LoadSample reads the file with gocv.IMRead and copies the pixels out of the Mat
func (l *StandardImageLoader) LoadSample(path string) (*types.ImageSample, error) {
	img := gocv.IMRead(path, gocv.IMReadGrayScale)
	defer img.Close()

	if img.Empty() {
		return nil, newDecodeError(path, errEmptyMat)
	}
	return matToSample(path, img)
}

// matToSample copies a Mat into a sample, converting to one channel if needed
func matToSample(path string, mat gocv.Mat) (*types.ImageSample, error) {
	gray := mat
	if mat.Channels() != 1 {
		converted := gocv.NewMat()
		defer converted.Close()
		gocv.CvtColor(mat, &converted, gocv.ColorBGRToGray)
		gray = converted
	}
	if gray.Type() != gocv.MatTypeCV8U {
		converted := gocv.NewMat()
		defer converted.Close()
		gray.ConvertTo(&converted, gocv.MatTypeCV8U)
		gray = converted
	}

	pix := gray.ToBytes()
	sample, err := types.NewImageSample(path, gray.Cols(), gray.Rows(), pix)
	if err != nil {
		return nil, newDecodeError(path, err)
	}
	return sample, nil
}

// GoImageLoader decodes files with the Go image packages
type GoImageLoader struct {
	BaseImageLoader
}

// NewGoImageLoader creates a loader backed by image.Decode
func NewGoImageLoader() *GoImageLoader {
	return &GoImageLoader{
		BaseImageLoader: BaseImageLoader{
			SupportedFormats: []FormatType{
				FormatJPEG,
				FormatPNG,
				FormatGIF,
				FormatBMP,
				FormatWEBP,
				FormatTIFF,
			},
		},
	}
}

// LoadSample decodes the file and converts it to grayscale
func (l *GoImageLoader) LoadSample(path string) (*types.ImageSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newDecodeError(path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, newDecodeError(path, err)
	}
	return imageToSample(path, img)
}

// imageToSample converts any image.Image to a grayscale sample using the
// standard luma weights, the same as OpenCV's BGR to gray conversion.
func imageToSample(path string, img image.Image) (*types.ImageSample, error) {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)

	sample, err := types.NewImageSample(path, b.Dx(), b.Dy(), gray.Pix)
	if err != nil {
		return nil, newDecodeError(path, fmt.Errorf("converting to grayscale: %w", err))
	}
	return sample, nil
}
