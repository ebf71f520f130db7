package sequence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/graphpass/internal/common"
)

var errEmpty = errors.New("sequence is empty")

// wireToken is the JSON form of a structured token.
type wireToken struct {
	ImageIndex *int     `json:"image_index"`
	Grid       []string `json:"grid"`
}

func (t Token) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case KindSimple:
		return json.Marshal(t.cell)
	case KindStructured:
		idx := t.imageIndex
		return json.Marshal(wireToken{ImageIndex: &idx, Grid: t.grid})
	default:
		return nil, fmt.Errorf("token of unknown kind %d", t.kind)
	}
}

func (t *Token) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return errors.New("empty token")
	}

	switch b[0] {
	case '"':
		var cell string
		if err := json.Unmarshal(b, &cell); err != nil {
			return err
		}
		*t = Simple(cell)
		return nil
	case '{':
		var w wireToken
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&w); err != nil {
			return err
		}
		if w.ImageIndex == nil {
			return errors.New("structured token without image_index")
		}
		if *w.ImageIndex < 0 {
			return fmt.Errorf("negative image_index %d", *w.ImageIndex)
		}
		if len(w.Grid) == 0 {
			return errors.New("structured token without grid cells")
		}
		*t = Structured(*w.ImageIndex, w.Grid...)
		return nil
	default:
		return fmt.Errorf("token must be a string or an object, got %q", b)
	}
}

func decode(b []byte) (Sequence, error) {
	var s Sequence
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	if len(s) == 0 {
		return nil, errEmpty
	}
	return s, nil
}

// Parse reads a sequence submitted by a client. It must be a non-empty JSON
// array of tokens.
func Parse(raw []byte) (Sequence, error) {
	s, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInvalidFormat, err)
	}
	return s, nil
}

// Encode returns the canonical text stored for s.
func Encode(s Sequence) (string, error) {
	if len(s) == 0 {
		return "", fmt.Errorf("%w: %v", common.ErrorInvalidFormat, errEmpty)
	}
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInvalidFormat, err)
	}
	return string(b), nil
}

// Decode reads a sequence previously produced by Encode. Failure means the
// stored record is corrupt, which is a server-side integrity problem.
func Decode(text string) (Sequence, error) {
	s, err := decode([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorMalformedStoredData, err)
	}
	return s, nil
}
