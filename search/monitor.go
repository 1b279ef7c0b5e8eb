package search

import "github.com/poiesic/coldmail/core"

// RetrievalMonitor provides hooks to observe a retrieval.
// Implement this interface to trace intermediate steps and scores.
type RetrievalMonitor interface {
	Start(query string, candidates int)
	AfterEmbedding(dimension int)
	Scored(index int, score float64, defined bool)
	Finish(match *core.Match, err error)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)           {}
func (n *noopMonitor) AfterEmbedding(_ int)            {}
func (n *noopMonitor) Scored(_ int, _ float64, _ bool) {}
func (n *noopMonitor) Finish(_ *core.Match, _ error)   {}

// LogMonitor writes each retrieval step to a logger at debug level.
type LogMonitor struct {
	Logger interface {
		Debug(msg string, args ...any)
	}
}

func (m *LogMonitor) Start(query string, candidates int) {
	m.Logger.Debug("retrieval started", "query_length", len(query), "candidates", candidates)
}

func (m *LogMonitor) AfterEmbedding(dimension int) {
	m.Logger.Debug("query embedded", "dimension", dimension)
}

func (m *LogMonitor) Scored(index int, score float64, defined bool) {
	m.Logger.Debug("candidate scored", "index", index, "score", score, "defined", defined)
}

func (m *LogMonitor) Finish(match *core.Match, err error) {
	if err != nil {
		m.Logger.Debug("retrieval failed", "err", err)
		return
	}
	m.Logger.Debug("retrieval finished", "index", match.Index, "id", match.Entry.Id, "score", match.Score)
}
