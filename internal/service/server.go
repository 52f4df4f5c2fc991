package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/unicode/norm"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/lexseg/internal/config"
	"github.com/danielpatrickdp/lexseg/internal/lexicon"
	"github.com/danielpatrickdp/lexseg/internal/metrics"
	"github.com/danielpatrickdp/lexseg/internal/segmenter"
	"github.com/danielpatrickdp/lexseg/internal/segutil"
	"github.com/danielpatrickdp/lexseg/internal/utterance"
)

const phaseServe = "serve"

// DefaultCacheSize bounds the result cache.
const DefaultCacheSize = 4096

// #region server
// Server segments lines against a fixed lexicon. Segmentation runs in test
// mode, so the lexicon never changes; calls are serialized because recall
// may draw from the lexicon's random source.
type Server struct {
	name       string
	dropStress bool

	mu  sync.Mutex
	seg *segmenter.Segmenter

	// nil when results are not reproducible
	cache   *lru.Cache[string, Result]
	metrics *metrics.Recorder
}

// NewServer restores the lexicon from snap under cfg. Subsequence discounts
// are not restored: the counts belong to the training corpus. Results are
// cached for up to cacheSize lines when segmentation is deterministic.
func NewServer(name string, cfg config.Config, snap lexicon.Snapshot, rec *metrics.Recorder, cacheSize int) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new server: %w", err)
	}
	lex := lexicon.Restore(cfg.LexiconConfig(nil), snap)
	seg, err := segmenter.New(cfg.SegmenterConfig(), lex)
	if err != nil {
		return nil, fmt.Errorf("new server: %w", err)
	}
	s := &Server{
		name:       name,
		dropStress: cfg.DropStress,
		seg:        seg,
		metrics:    rec,
	}
	if deterministic(cfg) && cacheSize > 0 {
		s.cache, err = lru.New[string, Result](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("new server: %w", err)
		}
	}
	return s, nil
}

func deterministic(cfg config.Config) bool {
	return !cfg.UseProbMem && !cfg.UseRandomization && cfg.Segmenter != string(segmenter.Random)
}

// Lexicon returns the served lexicon.
func (s *Server) Lexicon() *lexicon.Lexicon { return s.seg.Lexicon() }

// #endregion server

// #region segment
// Segment handles lexseg.Segmenter/Segment.
func (s *Server) Segment(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	v, ok := req.GetFields()[fieldLine]
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "missing %q", fieldLine)
	}
	res, err := s.SegmentLine(ctx, v.GetStringValue())
	switch {
	case errors.Is(err, utterance.ErrEmptyLine), errors.Is(err, utterance.ErrMalformed):
		return nil, status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, status.FromContextError(err).Err()
	case err != nil:
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := res.toStruct()
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}

// SegmentLine segments one corpus-format line. Existing boundaries in the
// line are ignored.
func (s *Server) SegmentLine(ctx context.Context, line string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	start := time.Now()
	defer func() { s.metrics.ObserveSegment(time.Since(start)) }()

	line = norm.NFC.String(strings.TrimSpace(line))
	if s.cache != nil {
		if res, ok := s.cache.Get(line); ok {
			s.metrics.CacheLookup(true)
			return res, nil
		}
		s.metrics.CacheLookup(false)
	}

	u, err := utterance.Parse(line, false)
	if err != nil {
		return Result{}, fmt.Errorf("segment line: %w", err)
	}
	if s.dropStress {
		u.ReduceStresses()
	}

	s.mu.Lock()
	out, err := s.seg.Segment(u, false)
	s.mu.Unlock()
	if err != nil {
		return Result{}, fmt.Errorf("segment line: %w", err)
	}
	u.SetBoundaries(out.Boundaries)
	s.metrics.ObserveUtterance(s.name, phaseServe, out.BeamPeak, false)

	res := Result{SegText: u.SegText(), Boundaries: u.BoundariesCopy()}
	wordUnits := segutil.SlicesFromAllBoundaries(u.Units, u.Boundaries)
	wordStresses := segutil.SlicesFromAllBoundaries(u.Stresses, u.Boundaries)
	for i := range wordUnits {
		res.Words = append(res.Words, utterance.FormatUnits(wordUnits[i], wordStresses[i]))
	}
	if s.cache != nil {
		s.cache.Add(line, res)
	}
	return res, nil
}

// #endregion segment
