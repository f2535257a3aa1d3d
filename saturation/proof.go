package saturation

import (
	"fmt"
	"io"
	"strings"

	"github.com/crillab/gopherprove/env"
	"github.com/crillab/gopherprove/fol"
)

// collectProof gathers the derivation of root in topological order:
// every clause appears after its premises.
func collectProof(root *fol.Clause) []*fol.Clause {
	var out []*fol.Clause
	seen := make(map[*fol.Clause]bool)
	var visit func(*fol.Clause)
	visit = func(c *fol.Clause) {
		if seen[c] {
			return
		}
		seen[c] = true
		for _, p := range c.Inf.Parents {
			visit(p)
		}
		out = append(out, c)
	}
	visit(root)
	return out
}

// PrintProof writes the derivation of the refutation in the requested
// notation.
func PrintProof(w io.Writer, sig *fol.Signature, root *fol.Clause, style env.Proof) {
	if style == env.ProofOff || root == nil {
		return
	}
	steps := collectProof(root)
	if style == env.ProofTPTP {
		for _, c := range steps {
			if len(c.Inf.Parents) == 0 {
				fmt.Fprintf(w, "cnf(u%d, axiom, (%s)).\n", c.Number(), tptpClause(c, sig))
				continue
			}
			parents := make([]string, len(c.Inf.Parents))
			for i, p := range c.Inf.Parents {
				parents[i] = fmt.Sprintf("u%d", p.Number())
			}
			fmt.Fprintf(w, "cnf(u%d, plain, (%s), inference(%s, [], [%s])).\n",
				c.Number(), tptpClause(c, sig), c.Inf.Rule, strings.Join(parents, ","))
		}
		return
	}
	for _, c := range steps {
		fmt.Fprintf(w, "%d. %s [%s]\n", c.Number(), c.String(sig), c.DescribeInference())
	}
}

func tptpClause(c *fol.Clause, sig *fol.Signature) string {
	if c.IsEmpty() {
		return "$false"
	}
	parts := make([]string, len(c.Lits))
	for i, l := range c.Lits {
		parts[i] = l.String(sig)
	}
	return strings.Join(parts, " | ")
}
