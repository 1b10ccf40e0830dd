package canvas

import (
	"fmt"

	"github.com/flowgrid/flowgrid/pkg/models"
)

// Path is the visual route of one connection: two quadratic segments
// from the source node's anchor through the midpoint to the target
// node's anchor. It is a pure function of the endpoint positions and
// carries no state of its own.
type Path struct {
	Start models.Position
	Mid   models.Position
	End   models.Position
}

// anchor is the point a connection attaches to: the center of the node
// box.
func anchor(node *models.Node) models.Position {
	return node.Position.Add(models.Position{X: NodeWidth / 2, Y: NodeHeight / 2})
}

// ConnectionPath derives the path for a connection from the current
// endpoint positions in the graph. It reports false when either
// endpoint no longer exists, in which case nothing should be rendered.
func ConnectionPath(graph *Graph, conn *models.Connection) (Path, bool) {
	source, ok := graph.Node(conn.SourceNodeID)
	if !ok {
		return Path{}, false
	}

	target, ok := graph.Node(conn.TargetNodeID)
	if !ok {
		return Path{}, false
	}

	start := anchor(source)
	end := anchor(target)

	return Path{
		Start: start,
		End:   end,
		Mid: models.Position{
			X: (start.X + end.X) / 2,
			Y: (start.Y + end.Y) / 2,
		},
	}, true
}

// SVG renders the path as an SVG path datum: a move to the source
// anchor, then two quadratic curves meeting at the midpoint.
func (p Path) SVG() string {
	return fmt.Sprintf("M %g %g Q %g %g %g %g Q %g %g %g %g",
		p.Start.X, p.Start.Y,
		p.Mid.X, p.Start.Y, p.Mid.X, p.Mid.Y,
		p.Mid.X, p.End.Y, p.End.X, p.End.Y,
	)
}
