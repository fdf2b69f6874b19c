package pbg

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// Stats summarizes an Expression's arena sizes, used by cmd/pbg's -stats
// flag.
type Stats struct {
	StaticNodes  int
	DynamicNodes int
	SourceBytes  int
}

// Stats reports e's arena sizes and the byte length of its canonical
// rendering.
func (e *Expression) Stats() Stats {
	rendered, _ := e.Render()
	return Stats{
		StaticNodes:  len(e.tree.Static),
		DynamicNodes: len(e.tree.Dynamic),
		SourceBytes:  len(rendered),
	}
}

// String formats s for human consumption, e.g. "3 static nodes, 1 dynamic
// node, 42 B".
func (s Stats) String() string {
	return fmt.Sprintf("%s static %s, %s dynamic %s, %s",
		humanize.Comma(int64(s.StaticNodes)), pluralNode(s.StaticNodes),
		humanize.Comma(int64(s.DynamicNodes)), pluralNode(s.DynamicNodes),
		humanize.Bytes(uint64(s.SourceBytes)))
}

func pluralNode(n int) string {
	if n == 1 {
		return "node"
	}
	return "nodes"
}
