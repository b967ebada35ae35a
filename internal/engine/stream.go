package engine

import "io"

type sliceStream struct {
	segments []Segment
	pos      int
}

// NewSliceStream serves already-decoded segments through the SegmentStream contract
func NewSliceStream(segments []Segment) SegmentStream {
	return &sliceStream{segments: segments}
}

func (s *sliceStream) Next() (Segment, error) {
	if s.pos >= len(s.segments) {
		return Segment{}, io.EOF
	}
	seg := s.segments[s.pos]
	s.pos++
	return seg, nil
}

func (s *sliceStream) Close() error {
	s.pos = len(s.segments)
	return nil
}
