package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/patmalib/patma/interpreters/goja"
	"github.com/patmalib/patma/pat"
	"github.com/patmalib/patma/storage/bolt"
)

// Service holds the pattern store and the matching strategy.
type Service struct {
	storage *bolt.Storage

	// eval means match by compiling to ECMAScript and running the
	// result, instead of the interpreting matcher.  Mostly for
	// checking that the two agree.
	eval      bool
	evaluator *goja.Evaluator
}

func NewService(filename string, eval bool) (*Service, error) {
	s, err := bolt.NewStorage(filename)
	if err != nil {
		return nil, err
	}
	if err := s.Open(); err != nil {
		return nil, err
	}
	return &Service{
		storage: s,
		eval:    eval,
	}, nil
}

func (s *Service) Close() error {
	return s.storage.Close()
}

// SOp is a single operation from a client.
type SOp struct {
	Match *MatchOp `json:"match,omitempty"`
	Put   *PutOp   `json:"put,omitempty"`
	Rem   string   `json:"rem,omitempty"`
	Type  *TypeOp  `json:"type,omitempty"`
	List  bool     `json:"list,omitempty"`
}

type MatchOp struct {
	// Pattern or Name (of a stored pattern): exactly one.
	Pattern interface{} `json:"pattern,omitempty"`
	Name    string      `json:"name,omitempty"`

	Value interface{} `json:"value"`
}

type PutOp struct {
	Name    string      `json:"name"`
	Pattern interface{} `json:"pattern"`
}

type TypeOp struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

// ParseSOp decodes a frame, keeping the int/float distinction.
func ParseSOp(frame []byte) (*SOp, error) {
	dec := json.NewDecoder(bytes.NewReader(frame))
	dec.UseNumber()
	var op SOp
	if err := dec.Decode(&op); err != nil {
		return nil, err
	}
	return &op, nil
}

// Do executes the operation, returning a response to send to the
// client.
func (s *Service) Do(ctx context.Context, op *SOp) (interface{}, error) {
	reg, err := s.storage.Registry()
	if err != nil {
		return nil, err
	}

	switch {
	case op.Match != nil:
		return s.match(ctx, op.Match, reg)

	case op.Put != nil:
		if op.Put.Name == "" {
			return nil, fmt.Errorf("put needs a name")
		}
		if err := s.storage.PutPattern(op.Put.Name, op.Put.Pattern, reg); err != nil {
			return nil, err
		}
		return map[string]interface{}{"stored": op.Put.Name}, nil

	case op.Rem != "":
		if err := s.storage.RemPattern(op.Rem); err != nil {
			return nil, err
		}
		return map[string]interface{}{"removed": op.Rem}, nil

	case op.Type != nil:
		if op.Type.Name == "" {
			return nil, fmt.Errorf("type needs a name")
		}
		if err := s.storage.PutType(op.Type.Name, op.Type.Fields); err != nil {
			return nil, err
		}
		return map[string]interface{}{"defined": op.Type.Name}, nil

	case op.List:
		patterns := make(map[string]interface{}, 16)
		err := s.storage.Patterns(func(name string, serialized interface{}) error {
			patterns[name] = serialized
			return nil
		})
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"patterns": patterns}, nil
	}

	return nil, fmt.Errorf("empty op")
}

func (s *Service) match(ctx context.Context, op *MatchOp, reg *pat.Registry) (interface{}, error) {
	var (
		p   pat.Pattern
		err error
	)
	switch {
	case op.Name != "" && op.Pattern != nil:
		return nil, fmt.Errorf("give a pattern or a name, not both")
	case op.Name != "":
		p, err = s.storage.GetPattern(op.Name, reg)
	case op.Pattern != nil:
		p, err = pat.ParsePattern(op.Pattern, reg)
	default:
		return nil, fmt.Errorf("match needs a pattern or a name")
	}
	if err != nil {
		return nil, err
	}

	value, err := pat.ParseValue(op.Value, reg)
	if err != nil {
		return nil, err
	}

	var bs pat.Bindings
	if s.eval {
		if s.evaluator == nil {
			s.evaluator = goja.NewEvaluator(reg)
		} else {
			s.evaluator.Registry = reg
		}
		bs, err = s.evaluator.Eval(ctx, p, "x", value)
	} else {
		bs, err = pat.Match(p, value)
	}
	if err != nil {
		return nil, err
	}

	if bs == nil {
		return map[string]interface{}{"nomatch": true}, nil
	}
	encoded, err := pat.EncodeValue(map[string]interface{}(bs))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"bindings": encoded}, nil
}
