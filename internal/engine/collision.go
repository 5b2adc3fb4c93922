package engine

import (
	"log/slog"

	"github.com/udisondev/robocombat/internal/geom"
)

// maxCollisionFixes bounds resolveCollisions. Reaching it reverts every robot
// to its start position, which is conflict-free because committed positions
// are always distinct.
const maxCollisionFixes = 1 << 12

// resolveCollisions rewrites moves until no two destinations coincide.
//
// Destinations are scanned pairwise in roster order. For the first conflict
// found both robots take CollisionDamage and one of them backs off a unit
// step against its own heading: the later robot if it moved, otherwise the
// earlier one. The scan then restarts from the beginning. It returns the
// number of fixes applied.
func resolveCollisions(robots []*entity, moves []move) int {
	fixes := 0
	for i := 0; i < len(moves); {
		j := conflict(moves, i)
		if j < 0 {
			i++
			continue
		}

		if fixes == maxCollisionFixes {
			slog.Warn("collision resolution did not converge, reverting moves", "fixes", fixes)
			for k := range moves {
				moves[k].to = moves[k].from
			}
			return fixes
		}
		fixes++

		back := i
		if !moves[i].moved() {
			back = j
		}
		dx, dy := geom.UnitStep(robots[back].state.Direction)
		moves[back].to = geom.ClampPoint(moves[back].to.Add(-dx, -dy))

		robots[i].state.TakeDamage(CollisionDamage)
		robots[j].state.TakeDamage(CollisionDamage)
		i = 0
	}
	return fixes
}

// conflict returns the first index before i sharing i's destination, or -1.
func conflict(moves []move, i int) int {
	for j := range i {
		if moves[j].to == moves[i].to {
			return j
		}
	}
	return -1
}
