package classifier

import (
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// modelInputSize is the fixed square input shape the predictor expects.
const modelInputSize = 224

// preprocess decodes an image file and resizes it to the model's fixed
// input shape.
func preprocess(path string) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		// imaging cannot open some formats directly; fall back to the
		// registered stdlib decoders.
		file, openErr := os.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open image: %w", openErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
	}

	return imaging.Resize(img, modelInputSize, modelInputSize, imaging.Linear), nil
}
