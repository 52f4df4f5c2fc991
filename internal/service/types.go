package service

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// ErrBadResponse is returned by the client for a response missing its fields.
var ErrBadResponse = errors.New("malformed segment response")

// #region result
// Result is the segmentation of one line.
type Result struct {
	SegText    string
	Boundaries []bool
	Words      []string
}

func (r Result) toStruct() (*structpb.Struct, error) {
	bounds := make([]interface{}, len(r.Boundaries))
	for i, b := range r.Boundaries {
		bounds[i] = b
	}
	words := make([]interface{}, len(r.Words))
	for i, w := range r.Words {
		words[i] = w
	}
	return structpb.NewStruct(map[string]interface{}{
		fieldSegText:    r.SegText,
		fieldBoundaries: bounds,
		fieldWords:      words,
	})
}

func resultFromStruct(s *structpb.Struct) (Result, error) {
	seg, ok := s.GetFields()[fieldSegText]
	if !ok {
		return Result{}, fmt.Errorf("%w: no %s", ErrBadResponse, fieldSegText)
	}
	r := Result{SegText: seg.GetStringValue()}
	for _, v := range s.GetFields()[fieldBoundaries].GetListValue().GetValues() {
		r.Boundaries = append(r.Boundaries, v.GetBoolValue())
	}
	for _, v := range s.GetFields()[fieldWords].GetListValue().GetValues() {
		r.Words = append(r.Words, v.GetStringValue())
	}
	return r, nil
}

// #endregion result
