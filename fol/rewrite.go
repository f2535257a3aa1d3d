package fol

// ReplaceAt returns t with the subterm at the given position replaced.
func ReplaceAt(s *Sharing, t *Term, pos []int, repl *Term) *Term {
	if len(pos) == 0 {
		return repl
	}
	args := make([]*Term, len(t.args))
	copy(args, t.args)
	args[pos[0]] = ReplaceAt(s, t.args[pos[0]], pos[1:], repl)
	return s.App(t.functor, args...)
}

// ReplaceInLiteral returns l with the subterm at the given position
// replaced; pos[0] is the argument index, the rest the path inside it.
func ReplaceInLiteral(s *Sharing, l *Literal, pos []int, repl *Term) *Literal {
	args := make([]*Term, len(l.args))
	copy(args, l.args)
	args[pos[0]] = ReplaceAt(s, l.args[pos[0]], pos[1:], repl)
	return s.Literal(l.pred, l.positive, args...)
}
