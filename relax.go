package firepath

import "log/slog"

// RelaxProposal is a candidate route to ToNode through FromNode.
type RelaxProposal struct {
	FromNode Coord
	ToNode   Coord
	GScore   float64
	FCost    float64
}

func propose(from Coord, fromG float64, to, goal Coord, heuristic Heuristic) RelaxProposal {
	g := fromG + 1
	return RelaxProposal{
		FromNode: from,
		ToNode:   to,
		GScore:   g,
		FCost:    g + heuristic(to, goal),
	}
}

// relax applies a proposal: decrease-key for a queued node, reopening for a
// closed node reached more cheaply, insertion for a new node.
func (s *Stepper) relax(p RelaxProposal) {
	if item, inOpen := s.open.get(p.ToNode); inOpen {
		if p.GScore < item.GScore {
			s.open.decrease(item, p.FromNode, p.GScore, p.FCost)
			s.gScore[p.ToNode] = p.GScore
		}
		return
	}
	if _, isClosed := s.closed[p.ToNode]; isClosed {
		if p.GScore < s.gScore[p.ToNode] {
			delete(s.closed, p.ToNode)
			s.open.push(p.ToNode, p.FromNode, p.GScore, p.FCost)
			s.gScore[p.ToNode] = p.GScore
			s.reopened++
			s.options.Logger.Debug("reopened closed node",
				slog.String("node", p.ToNode.String()),
				slog.Float64("g", p.GScore),
			)
		}
		return
	}
	s.open.push(p.ToNode, p.FromNode, p.GScore, p.FCost)
	s.gScore[p.ToNode] = p.GScore
}
