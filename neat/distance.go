package neat

import "math"

// GenomeDistance returns the compatibility distance between a and b.
//
// Genes are aligned by marker. Unmatched genes met while both genomes still have genes
// left are disjoint; the unmatched tail of the longer genome is excess:
//
//	excessCoeff*excess/N + disjointCoeff*disjoint/N + weightDiffCoeff*weightDiff^power/max(1, joint)
//
// where N is the larger gene count (at least 1) and weightDiff sums |wa - wb| over shared markers.
func GenomeDistance(a, b *Genome, params SpeciationParams) float64 {
	genesA := a.sortedByMarker()
	genesB := b.sortedByMarker()

	var excess, disjoint, joint, weightDiff float64
	i, j := 0, 0
	for i < len(genesA) && j < len(genesB) {
		switch ga, gb := genesA[i], genesB[j]; {
		case ga.Marker < gb.Marker:
			disjoint++
			i++
		case ga.Marker > gb.Marker:
			disjoint++
			j++
		default:
			weightDiff += math.Abs(ga.Weight - gb.Weight)
			joint++
			i++
			j++
		}
	}
	excess += float64(len(genesA)-i) + float64(len(genesB)-j)

	larger := math.Max(1, float64(max(len(genesA), len(genesB))))
	return params.ExcessCoeff*excess/larger +
		params.DisjointCoeff*disjoint/larger +
		params.WeightDiffCoeff*math.Pow(weightDiff, params.WeightDiffPower)/math.Max(1, joint)
}
