package classifier

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"vault-analyzer/internal/logging"
	"vault-analyzer/internal/safety"

	"github.com/goccy/go-json"
)

// weightsFile is the model file looked up under the configured model
// directory. When it is absent the service runs in mock mode.
const weightsFile = "nsfw_linear.json"

// Predictor scores a preprocessed image into category probabilities.
// Implementations must be safe for concurrent use.
type Predictor interface {
	Predict(img image.Image) (safety.Categories, error)
}

// linearPredictor is a lightweight scoring head: a linear map over pooled
// color features followed by a softmax. It stands in for a full CNN where no
// heavyweight inference runtime is deployed, while keeping the service's
// preprocessing, thresholding, and wire contract identical.
type linearPredictor struct {
	// weights[c] = {wR, wG, wB, bias} for category c (safe, suggestive, explicit)
	weights [3][4]float64
}

type weightsDoc struct {
	Weights [3][4]float64 `json:"weights"`
}

// LoadPredictor loads the scoring weights from modelDir. A missing file is
// not an error: it returns (nil, nil) and the caller runs in mock mode.
func LoadPredictor(modelDir string) (Predictor, error) {
	path := filepath.Join(modelDir, weightsFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Warn("No model found at %s, using mock detection", path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var doc weightsDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse model file %s: %w", path, err)
	}

	logging.Info("Model loaded from %s", path)
	return &linearPredictor{weights: doc.Weights}, nil
}

func (p *linearPredictor) Predict(img image.Image) (safety.Categories, error) {
	meanR, meanG, meanB := pooledMeans(img)

	var scores [3]float64
	features := [4]float64{meanR, meanG, meanB, 1}
	for c := 0; c < 3; c++ {
		for i, f := range features {
			scores[c] += p.weights[c][i] * f
		}
	}

	probs := softmax(scores)
	return safety.Categories{
		Safe:       probs[0],
		Suggestive: probs[1],
		Explicit:   probs[2],
	}, nil
}

// pooledMeans averages each channel over the whole image, normalized to [0,1].
func pooledMeans(img image.Image) (r, g, b float64) {
	bounds := img.Bounds()
	pixels := float64(bounds.Dx() * bounds.Dy())
	if pixels == 0 {
		return 0, 0, 0
	}

	var sumR, sumG, sumB float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pr, pg, pb, _ := img.At(x, y).RGBA()
			sumR += float64(pr) / 65535.0
			sumG += float64(pg) / 65535.0
			sumB += float64(pb) / 65535.0
		}
	}
	return sumR / pixels, sumG / pixels, sumB / pixels
}

func softmax(scores [3]float64) [3]float64 {
	max := math.Max(scores[0], math.Max(scores[1], scores[2]))
	var sum float64
	var out [3]float64
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
