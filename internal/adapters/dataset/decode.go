// Package dataset loads the place dataset from local files or S3.
package dataset

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/core/domain"
)

// ErrNoDataset is returned when no candidate yields a non-empty place list.
var ErrNoDataset = errors.New("no place dataset found")

// Decode parses a JSON place list, gunzipping first when gz is set.
// A single top-level object is accepted as a one-element list. Unknown
// fields are ignored.
func Decode(r io.Reader, gz bool) ([]domain.Place, error) {
	if gz {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		r = zr
	}

	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []domain.Place{}, nil
		}
		return nil, err
	}

	dec := json.NewDecoder(br)
	if first == '{' {
		var p domain.Place
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("decode place: %w", err)
		}
		return []domain.Place{p}, nil
	}

	var places []domain.Place
	if err := dec.Decode(&places); err != nil {
		return nil, fmt.Errorf("decode places: %w", err)
	}
	if places == nil {
		places = []domain.Place{}
	}
	return places, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsAny(b, " \t\r\n") {
			return b[0], nil
		}
		if _, err := br.Discard(1); err != nil {
			return 0, err
		}
	}
}
