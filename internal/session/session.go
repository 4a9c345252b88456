package session

import (
	"github.com/sirupsen/logrus"

	"github.com/lucasdeeiroz/runlens/internal/config"
	"github.com/lucasdeeiroz/runlens/internal/flatten"
	"github.com/lucasdeeiroz/runlens/internal/hierarchy"
	"github.com/lucasdeeiroz/runlens/pkg/dialect"
)

// Session owns the parsing state for one run: the incremental flattener and
// the tree builder. One session per run; sessions share nothing, so no
// locking is needed anywhere.
type Session struct {
	classifier *dialect.Classifier
	flattener  *flatten.Flattener
	builder    *hierarchy.Builder
	tree       []hierarchy.Node
}

// New creates a session from config
func New(cfg *config.Config, log *logrus.Logger) *Session {
	classifier := dialect.NewClassifier(&cfg.Dialect)
	return &Session{
		classifier: classifier,
		flattener:  flatten.New(classifier),
		builder:    hierarchy.NewBuilder(classifier, log),
	}
}

// Update consumes any lines appended to src since the last call and returns
// the rebuilt tree. A shrinking source resets the session first, so the tree
// always reflects exactly the lines currently in src.
func (s *Session) Update(src flatten.Source) ([]hierarchy.Node, error) {
	if err := s.flattener.Process(src); err != nil {
		return s.tree, err
	}
	s.tree = s.builder.Build(s.flattener.History())
	return s.tree, nil
}

// Tree returns the most recently built tree
func (s *Session) Tree() []hierarchy.Node {
	return s.tree
}

// Processed returns how many raw lines the session has consumed
func (s *Session) Processed() int {
	return s.flattener.Processed()
}

// History returns the flat node history (read-only)
func (s *Session) History() []flatten.Node {
	return s.flattener.History()
}

// Classifier returns the session's line classifier
func (s *Session) Classifier() *dialect.Classifier {
	return s.classifier
}
